// Package coordinator decides when sync jobs run.
//
// The Processor holds the per-run gate: it reads the job status, skips idle,
// in-progress and not-ready jobs, turns a pending stop request into stopped,
// loads the saved mapping config and moves the job to running before handing
// off to the sync loop. A missing config is logged and skipped.
//
// The Coordinator replaces the external cron of a hosted connector. It ticks
// on a jittered interval and triggers every configured kind in the background,
// keeping at most one run per kind in flight in this process. Across processes
// the optimistic version check on the status record decides which replica
// starts a run.
package coordinator

// Package sync runs the batch loop that walks the PIM product listing page by
// page and reconciles every item into the commerce catalog.
//
// # Run
//
// A run is driven by a Loop and a RunParams value carrying the starting
// cursor, the delta filter date and two callbacks:
//
//   - ContinueFunc is asked before every page fetch. Built by NewContinuation,
//     it reads the job status, honours a stop request, enforces the failure cap
//     and counts down the remaining estimate.
//   - CheckpointFunc is called after every page. Built by NewCheckpoint, it
//     persists the failures and moves the job to idle or scheduled when the
//     listing is exhausted, or to resumable once the time budget is spent.
//
// Item failures never abort a page. They are collected as job status entries
// and count toward the failure cap. Page failures abort the run and the last
// checkpoint stays the resumption point.
//
// # Coordinator Package
//
// The sync/coordinator subpackage decides when a run starts. It gates on the
// job lifecycle, loads the mapping config, moves the job to running and hands
// off to the loop. It also holds the ticker that replaces an external cron.
package sync

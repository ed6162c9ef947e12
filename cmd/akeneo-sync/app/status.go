package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/composable-com/ct-connect-akeneo/internal/app"
	"github.com/composable-com/ct-connect-akeneo/internal/jobstatus"
)

var statusCmd = &cobra.Command{
	Use:   "status [full|delta]",
	Short: "Show the status of the sync jobs",
	Long: `Show the stored status of the full and delta sync jobs, or of one of them.
With --failures the items that failed in the last run are listed as well.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().String("format", "table", "Output format (table or json)")
	statusCmd.Flags().Bool("failures", false, "List failed items")
}

func runStatus(cmd *cobra.Command, args []string) error {
	kinds := []jobstatus.Kind{jobstatus.KindFull, jobstatus.KindDelta}
	if len(args) == 1 {
		kind, err := parseJobKind(args[0])
		if err != nil {
			return err
		}
		kinds = []jobstatus.Kind{kind}
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	failures, err := cmd.Flags().GetBool("failures")
	if err != nil {
		return fmt.Errorf("failed to get failures flag: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	svc, cleanup, err := app.OpenService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	statuses := make(map[jobstatus.Kind]*jobstatus.JobStatus, len(kinds))
	for _, kind := range kinds {
		status, err := svc.CheckStatus(ctx, kind)
		if err != nil {
			return err
		}
		statuses[kind] = status
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(statuses)
	}

	if err := writeStatusTable(out, kinds, statuses); err != nil {
		return err
	}
	if failures {
		return writeFailureTable(out, kinds, statuses)
	}
	return nil
}

func writeStatusTable(out io.Writer, kinds []jobstatus.Kind, statuses map[jobstatus.Kind]*jobstatus.JobStatus) error {
	table := tablewriter.NewWriter(out)
	table.Header("Job", "Status", "Progress", "Failed", "Last sync", "Cursor")

	for _, kind := range kinds {
		s := statuses[kind]
		if err := table.Append([]string{
			string(kind),
			string(s.Status),
			progress(s),
			strconv.Itoa(len(s.FailedSyncs)),
			formatTime(s.LastSyncDate),
			yesNo(s.LastCursor != nil),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func writeFailureTable(out io.Writer, kinds []jobstatus.Kind, statuses map[jobstatus.Kind]*jobstatus.JobStatus) error {
	table := tablewriter.NewWriter(out)
	table.Header("Job", "Identifier", "Date", "Error")

	for _, kind := range kinds {
		for _, f := range statuses[kind].FailedSyncs {
			if err := table.Append([]string{string(kind), f.Identifier, f.Date, f.ErrorMessage}); err != nil {
				return err
			}
		}
	}
	return table.Render()
}

// progress renders "done/total" once the total is known
func progress(s *jobstatus.JobStatus) string {
	if s.TotalToSync == nil {
		return "-"
	}
	remaining := 0
	if s.RemainingToSync != nil {
		remaining = *s.RemainingToSync
	}
	return fmt.Sprintf("%d/%d", *s.TotalToSync-remaining, *s.TotalToSync)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

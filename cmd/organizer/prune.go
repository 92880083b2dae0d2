package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orsenthil/organizer/internal/executor"
	"github.com/orsenthil/organizer/internal/report"
)

// newPruneEmptyCmd creates the prune-empty subcommand.
func newPruneEmptyCmd() *cobra.Command {
	var (
		reportPath string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "prune-empty <path>",
		Short: "Delete empty directories below a path, children before parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			errors := make(chan error, 100)
			go drainErrors(errors)
			defer close(errors)

			summary := executor.PruneEmpty(args[0], dryRun, errors)
			if err := report.WritePruneSummary(reportPath, summary); err != nil {
				return err
			}
			fmt.Printf("CSV report written to: %s\n", reportPath)
			fmt.Printf("Empty folders cleanup. Deleted: %d, Skipped: %d.\n",
				summary.Applied, summary.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&reportPath, "report", "duplicate_report.csv", "CSV report path")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Preview without deleting")

	return cmd
}

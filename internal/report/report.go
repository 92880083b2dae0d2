// Package report serializes a plan to a CSV report.
//
// The report is written before anything destructive happens, so every
// decision is on record even if the run is interrupted. Reports are
// append-friendly: when the destination file already starts with the same
// header, new rows are appended instead of overwriting history.
package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/orsenthil/organizer/internal/executor"
	"github.com/orsenthil/organizer/internal/types"
)

// header defines the column order. Changing it invalidates append mode for
// existing reports, which then get rewritten.
var header = []string{
	"md5",
	"file_path",
	"original_path",
	"is_original",
	"year",
	"month",
	"created_source",
	"target_path",
	"action",
}

// WriteEntries writes one row per planned entry to path.
func WriteEntries(path string, entries []*types.PlannedEntry) error {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		isOriginal := "no"
		if e.IsOriginal {
			isOriginal = "yes"
		}
		rows = append(rows, []string{
			e.Fingerprint,
			e.Path,
			e.OriginalPath,
			isOriginal,
			e.Year,
			e.Month,
			e.CreatedSource,
			e.TargetPath,
			string(e.Action),
		})
	}
	return write(path, rows)
}

// WritePruneSummary appends a single summary row for an empty-directory
// pruning pass, in the action column like the per-file rows.
func WritePruneSummary(path string, summary executor.Summary) error {
	action := fmt.Sprintf("delete_empty_folders deleted=%d skipped=%d",
		summary.Applied, summary.Skipped)
	return write(path, [][]string{{"", "", "", "", "", "", "", "", action}})
}

// write appends rows when the existing report's header matches, otherwise
// truncates and writes a fresh header first.
func write(path string, rows [][]string) error {
	appendMode := hasMatchingHeader(path)

	flags := os.O_WRONLY | os.O_CREATE
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open report: %w", err)
	}

	w := csv.NewWriter(f)
	if !appendMode {
		if err := w.Write(header); err != nil {
			_ = f.Close()
			return err
		}
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// hasMatchingHeader reports whether path exists and starts with our header.
func hasMatchingHeader(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.TrimRight(line, "\r\n") == strings.Join(header, ",")
}

// Package executor applies a plan: moving originals and duplicates into the
// target layout, deleting duplicates, and pruning empty directories.
//
// # Overview
//
// The executor is the only component that mutates the filesystem. It takes an
// immutable plan and an apply/dry-run flag; planning never touches the
// destination tree, so everything destructive is concentrated - and
// auditable - here.
//
// # Per-Entry State Machine
//
//	planned ──► skipped   dry run, or source already at its destination
//	        ──► applied   move/delete succeeded
//	        ──► failed    I/O error during the move/delete itself
//
// Timestamp restoration after a move is best-effort: a failure there never
// reverts the move and never flips the entry to failed.
//
// # Safety Mechanisms
//
//   - On-disk collision resolution (__<n> suffix, bounded attempts)
//   - Same-file detection before moving (no-op moves are skipped)
//   - Per-entry error isolation: one failure never aborts the run
//   - Dry-run mode for previewing changes
package executor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/orsenthil/organizer/internal/progress"
	"github.com/orsenthil/organizer/internal/types"
)

// maxCollisionAttempts caps the __<n> suffix search. Exhausting it fails
// that single entry, not the run.
const maxCollisionAttempts = 999

// Summary counts per-entry outcomes for one action kind.
type Summary struct {
	Applied int
	Skipped int
	Failed  int
}

// Result records what happened to one entry.
type Result struct {
	Entry  *types.PlannedEntry
	Status types.Status
	Target string // Final target after collision resolution (moves only)
	Err    error
}

func (r *Result) String() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("%s %s: %v", r.Status, r.Entry.Path, r.Err)
	case r.Target != "":
		return fmt.Sprintf("%s %s -> %s", r.Status, r.Entry.Path, r.Target)
	default:
		return fmt.Sprintf("%s %s", r.Status, r.Entry.Path)
	}
}

// Executor applies planned entries sequentially.
//
// The executor is designed for single-use: create with New(), call Organize()
// or DeleteDuplicates() once.
type Executor struct {
	// Config (immutable, set by New)
	entries      []*types.PlannedEntry
	dryRun       bool           // Preview mode (don't modify files)
	verbose      bool           // Print each operation to stdout
	showProgress bool           // Whether to display progress bar
	errCh        chan error     // Non-fatal errors
	restore      TimestampFunc  // Extra timestamp restoration (may be nil)
}

// TimestampFunc restores creation/modification times on a moved file beyond
// what os.Chtimes can do (e.g. via exiftool). Best-effort by contract.
type TimestampFunc func(path string, created, modified time.Time)

// New creates an Executor over a plan.
func New(entries []*types.PlannedEntry, dryRun, verbose, showProgress bool, errCh chan error, restore TimestampFunc) *Executor {
	return &Executor{
		entries:      entries,
		dryRun:       dryRun,
		verbose:      verbose,
		showProgress: showProgress,
		errCh:        errCh,
		restore:      restore,
	}
}

// stats tracks execution progress.
type stats struct {
	verb       string
	total      int
	applied    int
	skipped    int
	failed     int
	movedBytes int64
	startTime  time.Time
}

func (s *stats) String() string {
	return fmt.Sprintf("%s %d/%d files (%s), skipped %d, failed %d in %.1fs",
		s.verb, s.applied, s.total,
		humanize.IBytes(uint64(s.movedBytes)),
		s.skipped, s.failed,
		time.Since(s.startTime).Seconds())
}

// Organize moves keep and duplicate entries to their targets.
func (e *Executor) Organize() Summary {
	moves := make([]*types.PlannedEntry, 0, len(e.entries))
	for _, entry := range e.entries {
		if entry.Action == types.ActionKeep || entry.Action == types.ActionDuplicate {
			moves = append(moves, entry)
		}
	}
	return e.run("Moved", moves, e.moveEntry)
}

// DeleteDuplicates removes non-original entries; originals stay in place.
func (e *Executor) DeleteDuplicates() Summary {
	deletes := make([]*types.PlannedEntry, 0, len(e.entries))
	for _, entry := range e.entries {
		if !entry.IsOriginal {
			deletes = append(deletes, entry)
		}
	}
	return e.run("Deleted", deletes, e.deleteEntry)
}

// run drives the sequential apply loop shared by both modes.
func (e *Executor) run(verb string, entries []*types.PlannedEntry, apply func(*types.PlannedEntry) *Result) Summary {
	bar := progress.New(e.showProgress, int64(len(entries)))
	st := &stats{verb: verb, total: len(entries), startTime: time.Now()}
	bar.Describe(st)

	var summary Summary
	for _, entry := range entries {
		result := apply(entry)
		switch result.Status {
		case types.StatusApplied:
			summary.Applied++
			st.applied++
			st.movedBytes += entry.Record.Size
		case types.StatusFailed:
			summary.Failed++
			st.failed++
			e.sendError(fmt.Errorf("%s: %w", entry.Path, result.Err))
		default:
			summary.Skipped++
			st.skipped++
		}
		if e.verbose {
			fmt.Fprintf(os.Stderr, "\r\033[K") // Clear progress line
			_, _ = fmt.Fprintln(os.Stdout, result)
		}
		bar.Add(1)
		bar.Describe(st)
	}

	bar.Finish(st)
	return summary
}

// moveEntry moves one entry to its (collision-resolved) target.
func (e *Executor) moveEntry(entry *types.PlannedEntry) *Result {
	if e.dryRun {
		return &Result{Entry: entry, Status: types.StatusSkipped, Target: entry.TargetPath}
	}

	// Same-file check comes first: a file already at its destination must
	// not trigger collision renaming, or re-runs would shuffle names.
	if samePath(entry.Path, entry.TargetPath) {
		return &Result{Entry: entry, Status: types.StatusSkipped, Target: entry.TargetPath}
	}

	target, err := ResolveTargetPath(entry.TargetPath)
	if err != nil {
		return &Result{Entry: entry, Status: types.StatusFailed, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return &Result{Entry: entry, Status: types.StatusFailed, Err: err}
	}
	if err := moveFile(entry.Path, target); err != nil {
		return &Result{Entry: entry, Status: types.StatusFailed, Err: err}
	}

	e.restoreTimestamps(target, entry.Record)
	return &Result{Entry: entry, Status: types.StatusApplied, Target: target}
}

// deleteEntry unlinks one duplicate.
func (e *Executor) deleteEntry(entry *types.PlannedEntry) *Result {
	if e.dryRun {
		return &Result{Entry: entry, Status: types.StatusSkipped}
	}
	if samePath(entry.Path, entry.OriginalPath) {
		return &Result{Entry: entry, Status: types.StatusSkipped}
	}
	if err := os.Remove(entry.Path); err != nil {
		return &Result{Entry: entry, Status: types.StatusFailed, Err: err}
	}
	return &Result{Entry: entry, Status: types.StatusApplied}
}

// restoreTimestamps best-effort restores the moved file's times to the
// record's. Failures are deliberately dropped: the move already succeeded.
func (e *Executor) restoreTimestamps(target string, record *types.FileRecord) {
	mtime := record.ModTime
	if mtime.IsZero() || mtime.Unix() <= 0 {
		mtime = record.CreatedTime
	}
	if !mtime.IsZero() && mtime.Unix() > 0 {
		_ = os.Chtimes(target, mtime, mtime)
	}
	if e.restore != nil {
		e.restore(target, record.CreatedTime, mtime)
	}
}

// ResolveTargetPath finds an unused variant of target, appending __<n>
// before the suffix while the path is taken on disk. Bounded attempts;
// exhaustion is an error for this entry only.
func ResolveTargetPath(target string) (string, error) {
	if _, err := os.Lstat(target); os.IsNotExist(err) {
		return target, nil
	}

	ext := filepath.Ext(target)
	stem := target[:len(target)-len(ext)]
	for n := 1; n <= maxCollisionAttempts; n++ {
		candidate := fmt.Sprintf("%s__%d%s", stem, n, ext)
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unable to resolve unique filename for %s", target)
}

// samePath reports whether two paths refer to the same file after symlink
// and case resolution. Falls back to string comparison when either side
// can't be resolved.
func samePath(a, b string) bool {
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return ra == rb
}

// moveFile renames src to dst, falling back to copy+remove across devices.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}

// sendError sends an error to the errors channel if it's not nil.
func (e *Executor) sendError(err error) {
	if e.errCh != nil {
		e.errCh <- err
	}
}

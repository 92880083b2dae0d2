package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/orsenthil/organizer/internal/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func moveEntryFor(src, target string) *types.PlannedEntry {
	return &types.PlannedEntry{
		Path:         src,
		OriginalPath: src,
		IsOriginal:   true,
		TargetPath:   target,
		Action:       types.ActionKeep,
		Record:       &types.FileRecord{Path: src, Size: 4},
	}
}

// TestOrganizeMovesFile tests a straightforward move.
func TestOrganizeMovesFile(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "in", "a.txt")
	target := filepath.Join(root, "out", "2022", "03", "a.txt")
	writeFile(t, src, "data")

	summary := New([]*types.PlannedEntry{moveEntryFor(src, target)},
		false, false, false, nil, nil).Organize()

	if summary.Applied != 1 || summary.Skipped != 0 || summary.Failed != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source should be gone after move")
	}
	data, err := os.ReadFile(target)
	if err != nil || string(data) != "data" {
		t.Errorf("target content wrong: %q, %v", data, err)
	}
}

// TestOrganizeDryRunNeverMutates tests that dry-run leaves the tree alone.
func TestOrganizeDryRunNeverMutates(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "in", "a.txt")
	target := filepath.Join(root, "out", "a.txt")
	writeFile(t, src, "data")

	summary := New([]*types.PlannedEntry{moveEntryFor(src, target)},
		true, false, false, nil, nil).Organize()

	if summary.Skipped != 1 || summary.Applied != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("source should be untouched in dry run")
	}
	if _, err := os.Stat(filepath.Join(root, "out")); !os.IsNotExist(err) {
		t.Error("dry run should not create target directories")
	}
}

// TestOrganizeCollisionResolution tests the __<n> suffix when the target is
// occupied by a different file.
func TestOrganizeCollisionResolution(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "in", "a.txt")
	target := filepath.Join(root, "out", "a.txt")
	writeFile(t, src, "new")
	writeFile(t, target, "existing")

	summary := New([]*types.PlannedEntry{moveEntryFor(src, target)},
		false, false, false, nil, nil).Organize()

	if summary.Applied != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	// Occupant untouched, new file landed beside it
	data, _ := os.ReadFile(target)
	if string(data) != "existing" {
		t.Errorf("occupant was overwritten: %q", data)
	}
	moved, err := os.ReadFile(filepath.Join(root, "out", "a__1.txt"))
	if err != nil || string(moved) != "new" {
		t.Errorf("expected a__1.txt with new content: %q, %v", moved, err)
	}
}

// TestOrganizeAlreadyInPlace tests idempotence: a file already at its
// destination is skipped, never renamed to a __<n> variant.
func TestOrganizeAlreadyInPlace(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "out", "2022", "03", "a.txt")
	writeFile(t, path, "data")

	summary := New([]*types.PlannedEntry{moveEntryFor(path, path)},
		false, false, false, nil, nil).Organize()

	if summary.Skipped != 1 || summary.Applied != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("file should remain at its destination")
	}
	if _, err := os.Stat(filepath.Join(root, "out", "2022", "03", "a__1.txt")); !os.IsNotExist(err) {
		t.Error("re-run must not shuffle names with __<n> suffixes")
	}
}

// TestOrganizeRestoresModTime tests best-effort timestamp restoration.
func TestOrganizeRestoresModTime(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "in", "a.txt")
	target := filepath.Join(root, "out", "a.txt")
	writeFile(t, src, "data")

	mtime := time.Date(2015, 4, 5, 6, 7, 8, 0, time.Local)
	entry := moveEntryFor(src, target)
	entry.Record.ModTime = mtime

	New([]*types.PlannedEntry{entry}, false, false, false, nil, nil).Organize()

	info, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Errorf("expected mtime %v, got %v", mtime, info.ModTime())
	}
}

// TestDeleteDuplicates tests that duplicates vanish and originals stay.
func TestDeleteDuplicates(t *testing.T) {
	root := t.TempDir()
	original := filepath.Join(root, "a.txt")
	duplicate := filepath.Join(root, "b.txt")
	writeFile(t, original, "same")
	writeFile(t, duplicate, "same")

	entries := []*types.PlannedEntry{
		{
			Path: original, OriginalPath: original, IsOriginal: true,
			Action: types.ActionKeep, Record: &types.FileRecord{Path: original},
		},
		{
			Path: duplicate, OriginalPath: original, IsOriginal: false,
			Action: types.ActionDelete, Record: &types.FileRecord{Path: duplicate},
		},
	}

	summary := New(entries, false, false, false, nil, nil).DeleteDuplicates()

	if summary.Applied != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(original); err != nil {
		t.Error("original should remain")
	}
	if _, err := os.Stat(duplicate); !os.IsNotExist(err) {
		t.Error("duplicate should be deleted")
	}
}

// TestDeleteDuplicatesDryRun tests that dry-run deletes nothing.
func TestDeleteDuplicatesDryRun(t *testing.T) {
	root := t.TempDir()
	duplicate := filepath.Join(root, "b.txt")
	writeFile(t, duplicate, "same")

	entries := []*types.PlannedEntry{
		{
			Path: duplicate, OriginalPath: filepath.Join(root, "a.txt"),
			IsOriginal: false, Action: types.ActionDelete,
			Record: &types.FileRecord{Path: duplicate},
		},
	}

	summary := New(entries, true, false, false, nil, nil).DeleteDuplicates()
	if summary.Skipped != 1 || summary.Applied != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(duplicate); err != nil {
		t.Error("dry run should not delete")
	}
}

// TestOrganizeFailedEntryDoesNotAbort tests per-entry error isolation.
func TestOrganizeFailedEntryDoesNotAbort(t *testing.T) {
	root := t.TempDir()
	missing := filepath.Join(root, "gone.txt")
	src := filepath.Join(root, "in", "ok.txt")
	writeFile(t, src, "ok")

	errs := make(chan error, 10)
	entries := []*types.PlannedEntry{
		moveEntryFor(missing, filepath.Join(root, "out", "gone.txt")),
		moveEntryFor(src, filepath.Join(root, "out", "ok.txt")),
	}

	summary := New(entries, false, false, false, errs, nil).Organize()
	close(errs)

	if summary.Failed != 1 || summary.Applied != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if len(errs) != 1 {
		t.Errorf("expected 1 error on channel, got %d", len(errs))
	}
	if _, err := os.Stat(filepath.Join(root, "out", "ok.txt")); err != nil {
		t.Error("second entry should still be applied")
	}
}

// TestResolveTargetPathExhaustion tests the bounded attempt cap.
func TestResolveTargetPathExhaustion(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "a.txt")
	writeFile(t, target, "x")
	for n := 1; n <= maxCollisionAttempts; n++ {
		writeFile(t, filepath.Join(root, fmt.Sprintf("a__%d.txt", n)), "x")
	}

	if _, err := ResolveTargetPath(target); err == nil {
		t.Error("expected exhaustion error")
	}
}

package executor

import (
	"os"
	"path/filepath"
	"testing"
)

func mkdirs(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if err := os.MkdirAll(p, 0o755); err != nil {
			t.Fatal(err)
		}
	}
}

// TestPruneEmptyCascades tests that a truly empty leaf and its now-empty
// parent collapse in one pass while a file-bearing sibling survives.
func TestPruneEmptyCascades(t *testing.T) {
	root := t.TempDir()
	emptyLeaf := filepath.Join(root, "parent", "leaf")
	keeper := filepath.Join(root, "keeper")
	mkdirs(t, emptyLeaf, keeper)
	writeFile(t, filepath.Join(keeper, "file.txt"), "content")

	summary := PruneEmpty(root, false, nil)

	if summary.Applied != 2 {
		t.Errorf("expected 2 deleted (leaf + parent), got %d", summary.Applied)
	}
	if _, err := os.Stat(filepath.Join(root, "parent")); !os.IsNotExist(err) {
		t.Error("empty parent should be gone")
	}
	if _, err := os.Stat(filepath.Join(keeper, "file.txt")); err != nil {
		t.Error("file-bearing branch must be untouched")
	}
}

// TestPruneEmptyRootSurvives tests that the root itself is never removed.
func TestPruneEmptyRootSurvives(t *testing.T) {
	root := t.TempDir()

	PruneEmpty(root, false, nil)

	if _, err := os.Stat(root); err != nil {
		t.Error("root should never be deleted")
	}
}

// TestPruneEmptyRemovesHiddenFiles tests that hidden files don't keep an
// otherwise-empty directory alive.
func TestPruneEmptyRemovesHiddenFiles(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "almost-empty")
	mkdirs(t, dir)
	writeFile(t, filepath.Join(dir, ".DS_Store"), "junk")

	summary := PruneEmpty(root, false, nil)

	if summary.Applied != 1 {
		t.Errorf("expected 1 deleted, got %d", summary.Applied)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("directory with only hidden files should be removed")
	}
}

// TestPruneEmptyHiddenDirBlocks tests the conservative rule: a hidden
// subdirectory's state is unknown, so its parent stays.
func TestPruneEmptyHiddenDirBlocks(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "has-hidden")
	mkdirs(t, filepath.Join(dir, ".git"))

	summary := PruneEmpty(root, false, nil)

	if summary.Applied != 0 {
		t.Errorf("expected 0 deleted, got %d", summary.Applied)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Error("directory with hidden subdirectory must survive")
	}
}

// TestPruneEmptyDryRun tests that dry-run deletes nothing and counts
// candidates as skipped.
func TestPruneEmptyDryRun(t *testing.T) {
	root := t.TempDir()
	empty := filepath.Join(root, "empty")
	mkdirs(t, empty)

	summary := PruneEmpty(root, true, nil)

	if summary.Applied != 0 || summary.Skipped == 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(empty); err != nil {
		t.Error("dry run should not delete")
	}
}

// TestPruneEmptyMissingRoot tests a nonexistent root is a quiet no-op.
func TestPruneEmptyMissingRoot(t *testing.T) {
	summary := PruneEmpty(filepath.Join(t.TempDir(), "nope"), false, nil)
	if summary.Applied != 0 || summary.Skipped != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

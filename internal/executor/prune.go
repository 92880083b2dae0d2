package executor

import (
	"os"
	"path/filepath"
	"strings"
)

// PruneEmpty removes empty directories below root, children before parents so
// cascading empty ancestors collapse in one pass. The root itself is never
// removed.
//
// A directory is deletable when it has no visible entries; hidden files in it
// are removed first, but a hidden subdirectory blocks deletion - its state is
// unknown and this pass does not recurse into hidden trees.
func PruneEmpty(root string, dryRun bool, errCh chan error) Summary {
	var summary Summary
	if _, err := os.Stat(root); err != nil {
		return summary
	}
	pruneDir(root, true, dryRun, errCh, &summary)
	return summary
}

// pruneDir processes one directory post-order and reports whether it was
// removed.
func pruneDir(path string, isRoot, dryRun bool, errCh chan error, summary *Summary) bool {
	entries, err := os.ReadDir(path)
	if err != nil {
		if !isRoot {
			summary.Skipped++
		}
		sendErr(errCh, err)
		return false
	}

	// Children first; visible subdirectories may empty out and disappear
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			pruneDir(filepath.Join(path, entry.Name()), false, dryRun, errCh, summary)
		}
	}

	if isRoot {
		return false
	}

	if dryRun {
		summary.Skipped++
		return false
	}

	entries, err = os.ReadDir(path)
	if err != nil {
		summary.Skipped++
		sendErr(errCh, err)
		return false
	}

	var hiddenFiles []string
	for _, entry := range entries {
		hidden := strings.HasPrefix(entry.Name(), ".")
		switch {
		case !hidden:
			summary.Skipped++
			return false // Visible entry - directory stays
		case entry.IsDir():
			summary.Skipped++
			return false // Hidden subdirectory blocks deletion
		default:
			hiddenFiles = append(hiddenFiles, filepath.Join(path, entry.Name()))
		}
	}

	for _, hf := range hiddenFiles {
		if err := os.Remove(hf); err != nil {
			sendErr(errCh, err)
		}
	}

	if err := os.Remove(path); err != nil {
		summary.Skipped++
		sendErr(errCh, err)
		return false
	}
	summary.Applied++
	return true
}

func sendErr(errCh chan error, err error) {
	if errCh != nil {
		errCh <- err
	}
}

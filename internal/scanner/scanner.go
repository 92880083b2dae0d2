// Package scanner walks a directory tree and produces one FileRecord per
// regular, non-hidden, non-symlink file.
//
// # Data Flow
//
//	Run() starts
//	    │
//	    ├──► walk tree depth-first (excluded/hidden dirs pruned)
//	    │        │
//	    │        └──► per file:
//	    │                 ├──► stat → birth/change/modify times
//	    │                 ├──► fingerprint (cache hit, or streaming MD5)
//	    │                 ├──► embedded metadata candidate
//	    │                 └──► resolve creation time + provenance
//	    │
//	    └──► return []*types.FileRecord
//
// # Why Serial?
//
// The workload is local-filesystem-bound; hashing and metadata extraction are
// dominated by disk reads, so one file at a time keeps the code simple and
// the disk saturated. Records are fully independent once built, so per-file
// hashing could be parallelized later without touching the data model.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/orsenthil/organizer/internal/cache"
	"github.com/orsenthil/organizer/internal/hasher"
	"github.com/orsenthil/organizer/internal/metadata"
	"github.com/orsenthil/organizer/internal/progress"
	"github.com/orsenthil/organizer/internal/timestamp"
	"github.com/orsenthil/organizer/internal/types"
)

// DefaultExcludeDirs are directory names skipped during the walk: version
// control, virtualenv/cache and build-output directories.
var DefaultExcludeDirs = []string{
	".git",
	".venv",
	"__pycache__",
	".pytest_cache",
	".mypy_cache",
	"dist",
	"build",
	"node_modules",
	"target",
}

// Scanner discovers files under a root and resolves their creation times.
//
// The scanner is designed for single-use: create with New(), call Run() once.
type Scanner struct {
	// Config (immutable, set by New)
	root         string              // Root path to scan
	excludes     map[string]struct{} // Directory names to skip
	extractor    *metadata.Extractor // Embedded-metadata collaborator
	fpCache      *cache.Cache        // Fingerprint cache (disabled cache is fine)
	showProgress bool                // Whether to display progress bar
	errCh        chan error          // Non-fatal errors (permission denied, etc.)

	// Runtime (initialized in Run)
	stats *stats
	bar   *progress.Bar
}

// New creates a Scanner rooted at root. Pass nil excludeDirs for defaults.
func New(root string, excludeDirs []string, extractor *metadata.Extractor, fpCache *cache.Cache, showProgress bool, errCh chan error) *Scanner {
	if excludeDirs == nil {
		excludeDirs = DefaultExcludeDirs
	}
	excludes := make(map[string]struct{}, len(excludeDirs))
	for _, name := range excludeDirs {
		excludes[name] = struct{}{}
	}
	return &Scanner{
		root:         root,
		excludes:     excludes,
		extractor:    extractor,
		fpCache:      fpCache,
		showProgress: showProgress,
		errCh:        errCh,
	}
}

// stats tracks scanning progress.
type stats struct {
	scannedFiles int
	scannedBytes int64
	cachedFiles  int
	startTime    time.Time
}

func (s *stats) String() string {
	return fmt.Sprintf("Scanned %d files (%s, %d cached) in %.1fs",
		s.scannedFiles, humanize.IBytes(uint64(s.scannedBytes)),
		s.cachedFiles, time.Since(s.startTime).Seconds())
}

// Run walks the tree and returns one record per kept file.
//
// Per-file failures (stat races, permission denied, unreadable content) go to
// the error channel and exclude that file; they never abort the walk.
func (s *Scanner) Run(ctx context.Context) []*types.FileRecord {
	s.bar = progress.New(s.showProgress, -1)
	s.stats = &stats{startTime: time.Now()}
	s.bar.Describe(s.stats) // Render progress bar immediately

	root, err := filepath.Abs(s.root)
	if err != nil {
		s.sendError(err)
		return nil
	}

	var records []*types.FileRecord
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.sendError(err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && s.shouldSkipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}

		// Hidden files, symlinks, devices, sockets - all skipped
		if strings.HasPrefix(d.Name(), ".") || !d.Type().IsRegular() {
			return nil
		}

		record, err := s.buildRecord(ctx, path, d)
		if err != nil {
			s.sendError(fmt.Errorf("%s: %w", path, err))
			return nil
		}

		records = append(records, record)
		s.stats.scannedFiles++
		s.stats.scannedBytes += record.Size
		s.bar.Describe(s.stats)
		return nil
	})
	if walkErr != nil {
		s.sendError(walkErr)
	}

	s.bar.Finish(s.stats)
	return records
}

// buildRecord stats, fingerprints and timestamps one file.
func (s *Scanner) buildRecord(ctx context.Context, path string, d fs.DirEntry) (*types.FileRecord, error) {
	info, err := d.Info()
	if err != nil {
		return nil, err
	}

	birth, change, mod := statTimes(info)
	if birth.IsZero() {
		// Filesystems without birth time report ctime instead
		birth = change
	}

	fingerprint := s.fpCache.Lookup(path, info.Size(), mod)
	if fingerprint != "" {
		s.stats.cachedFiles++
	} else {
		fingerprint, err = hasher.Fingerprint(path)
		if err != nil {
			return nil, err
		}
		_ = s.fpCache.Store(path, info.Size(), mod, fingerprint)
	}

	created, source := timestamp.Resolve([]timestamp.Candidate{
		s.extractor.Candidate(ctx, path),
		{Label: types.SourceBirthtime, Time: birth},
		{Label: types.SourceCtime, Time: change},
		{Label: types.SourceMtime, Time: mod},
	})

	return &types.FileRecord{
		Path:          path,
		Size:          info.Size(),
		Fingerprint:   fingerprint,
		BirthTime:     birth,
		ChangeTime:    change,
		ModTime:       mod,
		CreatedTime:   created,
		CreatedSource: source,
	}, nil
}

// shouldSkipDir reports whether a directory name is excluded or hidden.
func (s *Scanner) shouldSkipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	_, excluded := s.excludes[name]
	return excluded
}

// sendError sends an error to the errors channel if it's not nil.
func (s *Scanner) sendError(err error) {
	if s.errCh != nil {
		s.errCh <- err
	}
}

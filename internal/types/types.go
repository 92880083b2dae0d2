// Package types provides shared types used across the organizer codebase.
package types

import (
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Timestamp provenance labels recorded in FileRecord.CreatedSource.
// Metadata extractors may append a tag name, e.g. "exiftool:CreateDate".
const (
	SourceMetadata  = "metadata"
	SourceBirthtime = "birthtime"
	SourceCtime     = "ctime"
	SourceMtime     = "mtime"
	SourceUnknown   = "unknown"
)

// FileRecord holds everything the pipeline needs to know about one scanned
// file. Records are immutable after the scan.
type FileRecord struct {
	Path        string // Absolute path
	Size        int64
	Fingerprint string // Hex MD5 of the file contents
	BirthTime   time.Time
	ChangeTime  time.Time
	ModTime     time.Time

	// CreatedTime is the earliest valid timestamp across embedded metadata
	// and filesystem attributes; CreatedSource names where it came from.
	CreatedTime   time.Time
	CreatedSource string
}

// Stem returns the file name without its extension.
func (r *FileRecord) Stem() string {
	base := filepath.Base(r.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Ext returns the file extension including the leading dot.
func (r *FileRecord) Ext() string {
	return filepath.Ext(r.Path)
}

// DuplicateGroup is a set of records sharing one fingerprint. The original is
// the lexicographically first path in the group; re-scanning an unchanged
// tree always elects the same original.
type DuplicateGroup struct {
	Fingerprint string
	Original    *FileRecord
	Duplicates  []*FileRecord // Path-sorted
	Year        string
	Month       string
}

// Action tags for planned entries.
type Action string

const (
	ActionKeep      Action = "keep"
	ActionDuplicate Action = "duplicate"
	ActionDelete    Action = "delete"
)

// Status tracks what happened to a planned entry during execution.
type Status string

const (
	StatusPlanned Status = "planned"
	StatusApplied Status = "applied"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// PlannedEntry is one row of the plan: a source file, the destination derived
// for it, and the action to take. Entries are built once by the planner and
// never mutated afterwards; the executor records outcomes separately.
type PlannedEntry struct {
	Fingerprint   string
	Path          string // Source path
	OriginalPath  string // Path of the group's original
	IsOriginal    bool
	Year          string
	Month         string
	CreatedSource string
	TargetPath    string
	Action        Action

	// Record backs timestamp restoration after a move.
	Record *FileRecord
}

// SortRecords orders records by path ascending, in place.
func SortRecords(records []*FileRecord) {
	slices.SortFunc(records, func(a, b *FileRecord) int {
		return strings.Compare(a.Path, b.Path)
	})
}

// Package timestamp resolves a file's creation time from labeled candidates.
//
// Embedded metadata (a photo's capture time, a document's creation date) is
// frequently correct while filesystem timestamps get rewritten by copies and
// backups, so the earliest valid candidate is the best available proxy for
// the true creation time. The resolver is format-agnostic: callers hand it a
// list of (label, time) pairs and it picks the minimum.
package timestamp

import (
	"time"

	"github.com/orsenthil/organizer/internal/types"
)

// Candidate is one labeled timestamp. A zero or non-positive-epoch time
// means the source had nothing to offer.
type Candidate struct {
	Label string
	Time  time.Time
}

// Valid reports whether the candidate carries a usable timestamp.
func (c Candidate) Valid() bool {
	return !c.Time.IsZero() && c.Time.Unix() > 0
}

// Resolve picks the earliest valid candidate and reports its label.
// Exact-value ties are broken by slice position, so callers encode source
// precedence (metadata, birthtime, ctime, mtime) by candidate order.
// With no valid candidate the result is the zero time and "unknown".
func Resolve(candidates []Candidate) (time.Time, string) {
	var best Candidate
	found := false
	for _, c := range candidates {
		if !c.Valid() {
			continue
		}
		if !found || c.Time.Before(best.Time) {
			best = c
			found = true
		}
	}
	if !found {
		return time.Time{}, types.SourceUnknown
	}
	return best.Time, best.Label
}

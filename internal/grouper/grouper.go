// Package grouper partitions scanned records into duplicate groups.
//
// # Overview
//
// Records sharing a fingerprint are byte-identical files. Within each
// partition the lexicographically first path is elected the original; the
// rest are duplicates in path order. Singleton partitions still form groups
// with zero duplicates - the planner needs them to place unique files too.
//
// # Determinism
//
// Grouping twice over the same record set yields identical group structure
// and identical original election. Map iteration order never leaks into the
// output: members are path-sorted inside each group and groups are sorted by
// original path. Re-running on an unchanged tree therefore produces the same
// plan, which is what makes organize runs idempotent.
package grouper

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/orsenthil/organizer/internal/types"
)

// Group partitions records by fingerprint and elects originals.
// The now argument buckets groups whose original has no resolved creation
// time; inject a fixed value in tests.
func Group(records []*types.FileRecord, now time.Time) []*types.DuplicateGroup {
	byFingerprint := make(map[string][]*types.FileRecord)
	for _, r := range records {
		byFingerprint[r.Fingerprint] = append(byFingerprint[r.Fingerprint], r)
	}

	groups := make([]*types.DuplicateGroup, 0, len(byFingerprint))
	for fingerprint, members := range byFingerprint {
		types.SortRecords(members)
		original := members[0]
		year, month := ChooseYearMonth(original.CreatedTime, now)
		groups = append(groups, &types.DuplicateGroup{
			Fingerprint: fingerprint,
			Original:    original,
			Duplicates:  members[1:],
			Year:        year,
			Month:       month,
		})
	}

	// Stable report order regardless of map iteration
	slices.SortFunc(groups, func(a, b *types.DuplicateGroup) int {
		return strings.Compare(a.Original.Path, b.Original.Path)
	})
	return groups
}

// ChooseYearMonth buckets a resolved creation time into ("2006", "01")
// strings. A zero creation time falls back to now.
func ChooseYearMonth(created, now time.Time) (year, month string) {
	selected := created
	if selected.IsZero() || selected.Unix() <= 0 {
		selected = now
	}
	return fmt.Sprintf("%d", selected.Year()), fmt.Sprintf("%02d", int(selected.Month()))
}

// Package planner derives the destination layout for duplicate groups.
//
// # Processing Pipeline
//
//	Input: []*types.DuplicateGroup (path-sorted, originals elected)
//	    │
//	    ├──► For each group:
//	    │        │
//	    │        ├──► target dir = outputRoot/year/month[/topic]
//	    │        │
//	    │        ├──► original keeps its own name, action "keep"
//	    │        │
//	    │        └──► duplicate i → duplicate_<stem>[__<i>]<suffix>
//	    │             named after the ORIGINAL's stem, so duplicates group
//	    │             visually under the original's identity
//	    │
//	    └──► Output: []*types.PlannedEntry
//
// Planning is a pure function of its input: it never stats or touches the
// destination filesystem. On-disk collision resolution happens at execution
// time, so the plan stays reproducible and safe to write to a report first.
package planner

import (
	"fmt"
	"path/filepath"

	"github.com/orsenthil/organizer/internal/types"
)

// Options adjust how entries are derived.
type Options struct {
	// DuplicateAction is the tag for non-original entries: ActionDuplicate
	// moves them alongside the original, ActionDelete marks them for removal.
	DuplicateAction types.Action

	// TopicFor, when non-nil, supplies the extra path segment appended below
	// year/month. It receives the group's original.
	TopicFor func(*types.FileRecord) string
}

// Plan derives one entry per group member under outputRoot.
// Exactly one keep entry exists per group, and no two entries produced in
// one pass share a target path.
func Plan(groups []*types.DuplicateGroup, outputRoot string, opts Options) []*types.PlannedEntry {
	if opts.DuplicateAction == "" {
		opts.DuplicateAction = types.ActionDuplicate
	}

	var entries []*types.PlannedEntry
	used := make(map[string]struct{})
	for _, group := range groups {
		targetDir := filepath.Join(outputRoot, group.Year, group.Month)
		if opts.TopicFor != nil {
			targetDir = filepath.Join(targetDir, opts.TopicFor(group.Original))
		}

		original := group.Original
		entries = append(entries, &types.PlannedEntry{
			Fingerprint:   group.Fingerprint,
			Path:          original.Path,
			OriginalPath:  original.Path,
			IsOriginal:    true,
			Year:          group.Year,
			Month:         group.Month,
			CreatedSource: original.CreatedSource,
			TargetPath:    allocTarget(targetDir, filepath.Base(original.Path), used),
			Action:        types.ActionKeep,
			Record:        original,
		})

		for i, duplicate := range group.Duplicates {
			entries = append(entries, &types.PlannedEntry{
				Fingerprint:   group.Fingerprint,
				Path:          duplicate.Path,
				OriginalPath:  original.Path,
				IsOriginal:    false,
				Year:          group.Year,
				Month:         group.Month,
				CreatedSource: duplicate.CreatedSource,
				TargetPath:    allocTarget(targetDir, duplicateName(original, i+1), used),
				Action:        opts.DuplicateAction,
				Record:        duplicate,
			})
		}
	}
	return entries
}

// allocTarget reserves a target path unique within this planning pass.
// Same-named files from different source directories landing in the same
// month bucket get __<n> suffixes; this only disambiguates within the plan,
// on-disk collisions are resolved again at execution time.
func allocTarget(dir, name string, used map[string]struct{}) string {
	target := filepath.Join(dir, name)
	if _, taken := used[target]; !taken {
		used[target] = struct{}{}
		return target
	}

	ext := filepath.Ext(name)
	stem := name[:len(name)-len(ext)]
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s__%d%s", stem, n, ext))
		if _, taken := used[candidate]; !taken {
			used[candidate] = struct{}{}
			return candidate
		}
	}
}

// duplicateName builds the i-th duplicate's file name from the original's
// stem and suffix: duplicate_<stem><suffix>, then duplicate_<stem>__<i><suffix>.
func duplicateName(original *types.FileRecord, i int) string {
	if i == 1 {
		return fmt.Sprintf("duplicate_%s%s", original.Stem(), original.Ext())
	}
	return fmt.Sprintf("duplicate_%s__%d%s", original.Stem(), i, original.Ext())
}

// Package metadata extracts embedded creation timestamps from files.
//
// # Overview
//
// The extractor produces one timestamp candidate per file for the resolver
// to weigh against filesystem timestamps. Three sources, in order of cost:
//
//   - exiftool (optional): external tool, widest format coverage, per-call
//     timeout so a hung invocation can't stall the scan
//   - EXIF tags read in-process (images)
//   - a bounded scan for the PDF /CreationDate marker (documents)
//
// All failures - missing tags, malformed dates, unreadable files - yield an
// absent candidate, never an error. A file without embedded metadata is the
// common case, not a fault.
package metadata

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/orsenthil/organizer/internal/timestamp"
	"github.com/orsenthil/organizer/internal/types"
)

// DefaultTimeout bounds a single exiftool invocation.
const DefaultTimeout = 10 * time.Second

// exiftoolTags are requested in this order; the earliest parsed value wins.
var exiftoolTags = []string{
	"DateTimeOriginal",
	"CreateDate",
	"CreationDate",
	"ModifyDate",
	"FileCreateDate",
	"FileModifyDate",
	"FileInodeChangeDate",
}

// Extractor produces embedded-metadata timestamp candidates.
type Extractor struct {
	useExiftool bool
	timeout     time.Duration
}

// New creates an Extractor. With useExiftool=false only in-process sources
// (EXIF tags, PDF markers) are consulted.
func New(useExiftool bool, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Extractor{useExiftool: useExiftool, timeout: timeout}
}

// CheckExiftool verifies the exiftool binary is on PATH.
// Called at startup so a missing tool fails before any scanning begins.
func CheckExiftool() error {
	_, err := exec.LookPath("exiftool")
	return err
}

// Candidate returns the embedded-metadata timestamp candidate for path.
// An absent candidate (zero time) means no usable metadata was found.
func (e *Extractor) Candidate(ctx context.Context, path string) timestamp.Candidate {
	if e.useExiftool {
		if c := e.exiftoolCandidate(ctx, path); c.Valid() {
			return c
		}
	}

	var t time.Time
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		t = pdfCreationTime(path)
	} else {
		t = exifTime(path)
	}
	return timestamp.Candidate{Label: types.SourceMetadata, Time: t}
}

// exiftoolCandidate shells out to exiftool and takes the earliest tag value.
// The label records which tag supplied it, e.g. "exiftool:CreateDate".
func (e *Extractor) exiftoolCandidate(ctx context.Context, path string) timestamp.Candidate {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := []string{"-j", "-d", "%Y-%m-%d %H:%M:%S"}
	for _, tag := range exiftoolTags {
		args = append(args, "-"+tag)
	}
	args = append(args, path)

	out, err := exec.CommandContext(ctx, "exiftool", args...).Output()
	if err != nil || len(out) == 0 {
		return timestamp.Candidate{Label: types.SourceMetadata}
	}

	var payload []map[string]any
	if err := json.Unmarshal(out, &payload); err != nil || len(payload) == 0 {
		return timestamp.Candidate{Label: types.SourceMetadata}
	}

	best := timestamp.Candidate{Label: types.SourceMetadata}
	for _, tag := range exiftoolTags {
		value, ok := payload[0][tag].(string)
		if !ok || value == "" {
			continue
		}
		t, ok := ParseDateTime(value)
		if !ok {
			continue
		}
		if !best.Valid() || t.Before(best.Time) {
			best = timestamp.Candidate{Label: "exiftool:" + tag, Time: t}
		}
	}
	return best
}

// exifTags are consulted in-process, earliest parsed value wins.
var exifTags = []exif.FieldName{exif.DateTimeOriginal, exif.DateTimeDigitized, exif.DateTime}

// exifTime reads EXIF date tags from an image. Most non-image files simply
// fail to decode, which is fine - absent candidate.
func exifTime(path string) time.Time {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}
	}
	defer func() { _ = f.Close() }()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}
	}

	var best time.Time
	for _, name := range exifTags {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		value, err := tag.StringVal()
		if err != nil {
			continue
		}
		t, ok := ParseDateTime(value)
		if !ok {
			continue
		}
		if best.IsZero() || t.Before(best) {
			best = t
		}
	}
	return best
}

// pdfProbeSize bounds how much of a PDF is searched for the date marker.
// The Info dictionary usually sits near the start or in the trailer, so the
// head and tail are probed and the middle skipped.
const pdfProbeSize = 64 * 1024

var pdfDateRe = regexp.MustCompile(`/CreationDate\s*\(D:([0-9]{8,14})`)

// pdfCreationTime scans a PDF for its /CreationDate entry.
func pdfCreationTime(path string) time.Time {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return time.Time{}
	}

	head := make([]byte, min(pdfProbeSize, info.Size()))
	if _, err := io.ReadFull(f, head); err != nil {
		return time.Time{}
	}

	var tail []byte
	if info.Size() > 2*pdfProbeSize {
		tail = make([]byte, pdfProbeSize)
		if _, err := f.ReadAt(tail, info.Size()-pdfProbeSize); err != nil {
			tail = nil
		}
	}

	for _, region := range [][]byte{head, tail} {
		if m := pdfDateRe.FindSubmatch(region); m != nil {
			if t, ok := parseCompact(string(m[1])); ok {
				return t
			}
		}
	}
	return time.Time{}
}

// dateTimeLayouts cover the separators seen in EXIF and exiftool output.
var dateTimeLayouts = []string{
	"2006:01:02 15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
}

var digitRe = regexp.MustCompile(`[0-9]`)

// ParseDateTime parses a metadata timestamp string. Known layouts are tried
// first, then the digits are compacted and matched against shrinking
// precision (seconds, minutes, hours, date only).
func ParseDateTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	digits := strings.Join(digitRe.FindAllString(value, -1), "")
	return parseCompact(digits)
}

// compactLayouts map digit counts to layouts, longest first.
var compactLayouts = []struct {
	n      int
	layout string
}{
	{14, "20060102150405"},
	{12, "200601021504"},
	{10, "2006010215"},
	{8, "20060102"},
}

func parseCompact(digits string) (time.Time, bool) {
	for _, cl := range compactLayouts {
		if len(digits) < cl.n {
			continue
		}
		if t, err := time.ParseInLocation(cl.layout, digits[:cl.n], time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

package topic

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestSanitize tests token capping and special-character stripping.
func TestSanitize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"budget planning", "budget_planning"},
		{"one two three four five six", "one_two_three_four"},
		{"  spaced   out  ", "spaced_out"},
		{"semi;colons&stuff", "semi_colons_stuff"},
		{"", Fallback},
		{"!!!???", Fallback},
	}
	for _, c := range cases {
		if got := Sanitize(c.in); got != c.want {
			t.Errorf("Sanitize(%q): expected %q, got %q", c.in, c.want, got)
		}
	}
}

// TestFromFilename tests filename-derived labels.
func TestFromFilename(t *testing.T) {
	if got := FromFilename("/x/quarterly-budget-review-2024.pdf"); got != "quarterly_budget_review" {
		t.Errorf("expected quarterly_budget_review, got %s", got)
	}
	// Stopwords and short tokens drop out entirely
	if got := FromFilename("/x/a_of_12.bin"); got != Fallback {
		t.Errorf("expected fallback, got %s", got)
	}
}

// TestFromTextRanksByFrequency tests that repeated terms dominate the label.
func TestFromTextRanksByFrequency(t *testing.T) {
	text := strings.Repeat("invoice payment ", 5) + "once upon some words"
	got := FromText(text)
	if !strings.Contains(got, "invoice") || !strings.Contains(got, "payment") {
		t.Errorf("expected invoice and payment in label, got %s", got)
	}
}

// TestFromTextEmpty tests the fallback for contentless text.
func TestFromTextEmpty(t *testing.T) {
	if got := FromText("a an 12 34"); got != Fallback {
		t.Errorf("expected fallback, got %s", got)
	}
}

// TestLabelReadsTextContent tests that text files are labeled from content,
// not their name.
func TestLabelReadsTextContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x9f3.txt")
	content := strings.Repeat("kubernetes deployment checklist ", 4)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got := NewLabeler(nil).Label(path)
	if !strings.Contains(got, "deployment") {
		t.Errorf("expected content-derived label, got %s", got)
	}
	if strings.Contains(got, "x9f3") {
		t.Errorf("label should not derive from the file name: %s", got)
	}
}

// TestLabelBinaryFallsBackToFilename tests non-text files.
func TestLabelBinaryFallsBackToFilename(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vacation-photos.jpg")
	if err := os.WriteFile(path, []byte{0xFF, 0xD8, 0xFF}, 0o644); err != nil {
		t.Fatal(err)
	}

	if got := NewLabeler(nil).Label(path); got != "vacation_photos" {
		t.Errorf("expected vacation_photos, got %s", got)
	}
}

// TestLabelTokenCount tests that labels never exceed four tokens.
func TestLabelTokenCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many.txt")
	if err := os.WriteFile(path, []byte("alpha beta gamma delta epsilon zeta eta theta"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := NewLabeler(nil).Label(path)
	if n := len(strings.Split(got, "_")); n > 4 {
		t.Errorf("label %q has %d tokens, expected at most 4", got, n)
	}
}

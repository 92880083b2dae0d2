// Package topic infers a short label for a file, used as an optional extra
// path segment below year/month.
//
// Plain-text files are labeled from their content: tokens are ranked by
// frequency (unigrams plus adjacent bigrams) after stopword removal, and the
// top keywords become the label. Everything else falls back to tokens from
// the file name. Labels are sanitized to at most four underscore-joined
// tokens; when nothing usable remains the label is "Uncategorized".
package topic

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Fallback is the label used when no usable tokens exist.
const Fallback = "Uncategorized"

const (
	maxLabelTokens = 4
	maxLabelWords  = 3
	maxKeywords    = 6
	maxContentLen  = 10000 // Chars of content considered
)

// DefaultTextExtensions are the suffixes whose content is read for labeling.
var DefaultTextExtensions = []string{".txt", ".md", ".csv", ".log", ".rtf"}

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "and", "for", "with", "from", "this", "that", "you", "your",
		"are", "was", "were", "will", "have", "has", "had", "not", "but",
		"about", "into", "than", "then", "there", "their", "them", "they",
		"what", "when", "where", "which", "who", "why", "how", "also",
		"pdf", "file", "document",
	} {
		stopwords[w] = struct{}{}
	}
}

var (
	tokenRe    = regexp.MustCompile(`[A-Za-z][A-Za-z0-9_-]{2,}`)
	sanitizeRe = regexp.MustCompile(`[^A-Za-z0-9 _-]+`)
)

// Labeler infers topic labels, reading content only for configured
// text extensions.
type Labeler struct {
	textExts map[string]struct{}
}

// NewLabeler creates a Labeler. Pass nil extensions for defaults.
func NewLabeler(textExtensions []string) *Labeler {
	if textExtensions == nil {
		textExtensions = DefaultTextExtensions
	}
	exts := make(map[string]struct{}, len(textExtensions))
	for _, e := range textExtensions {
		exts[strings.ToLower(e)] = struct{}{}
	}
	return &Labeler{textExts: exts}
}

// Label returns the topic label for the file at path.
func (l *Labeler) Label(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := l.textExts[ext]; ok {
		if text := readHead(path, maxContentLen); strings.TrimSpace(text) != "" {
			return FromText(text)
		}
	}
	return FromFilename(path)
}

// FromText labels free text by its top-ranked keywords.
func FromText(text string) string {
	keywords := extractKeywords(text, maxKeywords)
	if len(keywords) == 0 {
		return Fallback
	}
	if len(keywords) > maxLabelWords {
		keywords = keywords[:maxLabelWords]
	}
	words := make([]string, len(keywords))
	for i, kw := range keywords {
		words[i] = strings.ReplaceAll(kw, "_", " ")
	}
	return Sanitize(strings.Join(words, " "))
}

// FromFilename labels a file by tokens from its name.
func FromFilename(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	tokens := tokenize(stem)
	if len(tokens) == 0 {
		return Fallback
	}
	if len(tokens) > maxLabelWords {
		tokens = tokens[:maxLabelWords]
	}
	return Sanitize(strings.Join(tokens, " "))
}

// Sanitize strips a raw label down to at most maxLabelTokens alphanumeric
// tokens joined by underscores.
func Sanitize(label string) string {
	cleaned := sanitizeRe.ReplaceAllString(label, " ")
	tokens := strings.Fields(cleaned)
	if len(tokens) == 0 {
		return Fallback
	}
	if len(tokens) > maxLabelTokens {
		tokens = tokens[:maxLabelTokens]
	}
	return strings.Join(tokens, "_")
}

// tokenize lowercases text and keeps word-like tokens of 3+ chars that are
// not stopwords.
func tokenize(text string) []string {
	words := tokenRe.FindAllString(strings.ToLower(text), -1)
	tokens := words[:0]
	for _, w := range words {
		if _, stop := stopwords[w]; !stop {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// extractKeywords ranks unigrams and adjacent bigrams by count, ties broken
// alphabetically for determinism.
func extractKeywords(text string, max int) []string {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, t := range tokens {
		counts[t]++
	}
	for i := 0; i+1 < len(tokens); i++ {
		counts[tokens[i]+"_"+tokens[i+1]]++
	}

	ranked := make([]string, 0, len(counts))
	for token := range counts {
		ranked = append(ranked, token)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})

	if len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}

// readHead reads up to n bytes of a file, tolerating read errors.
func readHead(path string, n int) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, int64(n)))
	if err != nil {
		return ""
	}
	return string(data)
}

// Package lexical holds the text primitives shared by the matcher and the scorers:
// transcript normalization, whole-phrase presence tests and word counting.
package lexical

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var whitespace = regexp.MustCompile(`\s+`)

// Order matters: the specific forms must be rewritten before the generic "n't".
var contractions = []struct {
	from string
	to   string
}{
	{"won't", "will not"},
	{"can't", "cannot"},
	{"n't", " not"},
	{"'re", " are"},
	{"'ve", " have"},
	{"'ll", " will"},
	{"'d", " would"},
}

// Speech-to-text engines often emit typographic apostrophes.
var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

// Normalize lowercases the text, collapses whitespace runs into a single space and
// expands English contractions. It never fails: empty input yields an empty string.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = norm.NFKC.String(text)
	text = apostrophes.Replace(text)
	text = strings.ToLower(text)
	text = strings.TrimSpace(whitespace.ReplaceAllString(text, " "))

	for _, c := range contractions {
		text = strings.ReplaceAll(text, c.from, c.to)
	}

	return text
}

// WordCount returns the number of whitespace separated tokens in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

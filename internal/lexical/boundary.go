package lexical

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsWordRune reports whether r belongs to a word: any letter, any number or '_'.
// Accented letters are word runes, so "sum" is not a word of "résumé".
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Occurrences counts the non-overlapping occurrences of phrase in text that
// are bounded by non-word runes or the text edges.
func Occurrences(text, phrase string) int {
	if text == "" || phrase == "" {
		return 0
	}

	n := 0
	for i := 0; i < len(text); {
		j := strings.Index(text[i:], phrase)
		if j < 0 {
			break
		}
		start := i + j
		end := start + len(phrase)
		if bounded(text, start, end) {
			n++
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		i = start + size
	}
	return n
}

func bounded(text string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); IsWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); IsWordRune(r) {
			return false
		}
	}
	return true
}

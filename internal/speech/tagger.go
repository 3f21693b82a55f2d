package speech

import (
	"fmt"
	"regexp"
	"strings"
)

// Token is a word with the part of speech information filler detection needs.
type Token struct {
	Text string
	// Interjection marks tokens used as interjections or discourse particles.
	Interjection bool
	// SentenceStart marks tokens opening the text or following punctuation.
	SentenceStart bool
}

// Tagger splits text into tagged tokens. An NLP backed tagger can replace
// RegexTagger to tell filler uses of words like "like" from ordinary ones.
type Tagger interface {
	Tag(text string) []Token
}

var (
	tokenPattern = regexp.MustCompile(`[\p{L}\p{N}']+|[^\s\p{L}\p{N}']`)
	wordPattern  = regexp.MustCompile(`^[\p{L}\p{N}']+$`)
)

// RegexTagger tokenizes with a regular expression and only knows sentence boundaries.
type RegexTagger struct{}

func (RegexTagger) Tag(text string) []Token {
	raw := tokenPattern.FindAllString(text, -1)
	tokens := make([]Token, 0, len(raw))
	start := true
	for _, t := range raw {
		if !wordPattern.MatchString(t) {
			start = true
			continue
		}
		tokens = append(tokens, Token{Text: t, SentenceStart: start})
		start = false
	}
	return tokens
}

// Tagger names accepted by NewTagger.
const (
	TaggerNone  = "none"
	TaggerRegex = "regex"
)

// NewTagger returns the tagger registered under name. An empty name or
// TaggerNone yields a nil tagger, which keeps detection purely regex based.
func NewTagger(name string) (Tagger, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", TaggerNone:
		return nil, nil
	case TaggerRegex:
		return RegexTagger{}, nil
	default:
		return nil, fmt.Errorf("unknown speech tagger %q", name)
	}
}

// tagged counts single-word fillers the tagger marks as filler uses.
func tagged(tagger Tagger, text string) map[string]int {
	out := map[string]int{}
	for _, tok := range tagger.Tag(text) {
		w := strings.ToLower(tok.Text)
		if !IsFiller(w) {
			continue
		}
		if tok.Interjection || tok.SentenceStart {
			out[w]++
		}
	}
	return out
}

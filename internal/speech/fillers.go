// Package speech measures disfluency in a transcript: filler words by
// category, repeated words and the fluency score derived from them.
package speech

import (
	"strings"

	"github.com/spigell/interview-evaluator/internal/lexical"
)

// Filler categories.
const (
	Hesitation       = "hesitation"
	DiscourseMarkers = "discourse_markers"
	Qualification    = "qualification"
	Intensifiers     = "intensifiers"
	Stalling         = "stalling"
	Repetitions      = "repetitions"
)

type category struct {
	name  string
	words []string
}

var fillerCategories = []category{
	{name: Hesitation, words: []string{"uh", "um", "er", "ah", "eh", "mm", "hmm"}},
	{name: DiscourseMarkers, words: []string{"like", "you know", "i mean", "you see", "right", "okay"}},
	{name: Qualification, words: []string{"sort of", "kind of", "pretty much", "more or less", "basically", "essentially"}},
	{name: Intensifiers, words: []string{"literally", "actually", "really", "totally", "absolutely", "definitely"}},
	{name: Stalling, words: []string{"well", "so", "now", "then", "anyway", "anyhow"}},
}

// Multi-word fillers are all booked as discourse markers whatever list they appear in.
var multiWordFillers = []string{"you know", "i mean", "you see", "sort of", "kind of", "pretty much", "more or less"}

type filler struct {
	word     string
	category string
}

var (
	singleWordFillers = buildSingleWordFillers()
	phraseFillers     = buildPhraseFillers()
	fillerCategory    = buildCategoryIndex()
)

func buildSingleWordFillers() []filler {
	var out []filler
	for _, c := range fillerCategories {
		for _, w := range c.words {
			if strings.Contains(w, " ") {
				continue
			}
			out = append(out, filler{word: w, category: c.name})
		}
	}
	return out
}

func buildPhraseFillers() []filler {
	out := make([]filler, 0, len(multiWordFillers))
	for _, w := range multiWordFillers {
		out = append(out, filler{word: w, category: DiscourseMarkers})
	}
	return out
}

func buildCategoryIndex() map[string]string {
	idx := make(map[string]string)
	for _, f := range singleWordFillers {
		idx[f.word] = f.category
	}
	return idx
}

// IsFiller reports whether word is a single-word filler.
func IsFiller(word string) bool {
	_, ok := fillerCategory[strings.ToLower(word)]
	return ok
}

// Fillers is the outcome of filler detection.
type Fillers struct {
	Total      int
	Details    map[string]int
	Categories map[string]int
}

// Detector counts fillers with regular expressions, optionally refined by a Tagger.
type Detector struct {
	tagger Tagger
}

// NewDetector returns a detector. A nil tagger keeps detection purely regex based.
func NewDetector(tagger Tagger) *Detector {
	return &Detector{tagger: tagger}
}

// Detect counts fillers in text.
func (d *Detector) Detect(text string) Fillers {
	res := Fillers{Details: map[string]int{}, Categories: map[string]int{}}
	if strings.TrimSpace(text) == "" {
		return res
	}

	lower := strings.ToLower(text)
	for _, f := range singleWordFillers {
		if n := lexical.Occurrences(lower, f.word); n > 0 {
			res.Details[f.word] = n
			res.Categories[f.category] += n
		}
	}
	for _, f := range phraseFillers {
		if n := lexical.Occurrences(lower, f.word); n > 0 {
			res.Details[f.word] = n
			res.Categories[f.category] += n
		}
	}

	if d != nil && d.tagger != nil {
		for word, n := range tagged(d.tagger, text) {
			if n > res.Details[word] {
				res.Details[word] = n
			}
		}
	}

	if n := CountRepetitions(text); n > 0 {
		res.Details[Repetitions] = n
		res.Categories[Repetitions] = n
	}

	for _, n := range res.Details {
		res.Total += n
	}
	return res
}

// CountRepetitions counts adjacent identical words longer than two characters.
func CountRepetitions(text string) int {
	words := strings.Fields(strings.ToLower(text))
	n := 0
	for i := 0; i+1 < len(words); i++ {
		if words[i] == words[i+1] && len(words[i]) > 2 {
			n++
		}
	}
	return n
}

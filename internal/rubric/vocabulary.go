package rubric

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spigell/interview-evaluator/internal/lexical"
)

// Family is a shared concept family used for partial semantic credit.
type Family struct {
	Name  string
	Words []string

	phrases []*lexical.Phrase
}

// Phrases returns the compiled family words.
func (f *Family) Phrases() []*lexical.Phrase {
	return f.phrases
}

// Overlaps reports whether the family name and keyword contain one another.
func (f *Family) Overlaps(keyword string) bool {
	name := strings.ToLower(f.Name)
	kw := strings.ToLower(keyword)
	if name == "" || kw == "" {
		return false
	}
	return strings.Contains(name, kw) || strings.Contains(kw, name)
}

// Families is an ordered list of concept families, written in YAML as a mapping.
type Families []*Family

// UnmarshalYAML decodes a mapping node while keeping insertion order.
func (fs *Families) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: semantic groups must be a mapping of family name to words", value.Line)
	}

	families := make(Families, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]

		var words []string
		if err := val.Decode(&words); err != nil {
			return fmt.Errorf("line %d: semantic group %q: %w", val.Line, key.Value, err)
		}

		families = append(families, &Family{Name: key.Value, Words: words})
	}

	*fs = families
	return nil
}

// Vocabulary bundles the global tables shared by every rubric entry.
type Vocabulary struct {
	Families Families
	Synonyms map[string][]string

	synonyms map[string][]*lexical.Phrase
}

// SynonymsFor returns the compiled synonyms of keyword, if any.
func (v *Vocabulary) SynonymsFor(keyword string) []*lexical.Phrase {
	if v == nil {
		return nil
	}
	return v.synonyms[strings.ToLower(keyword)]
}

// MatchingFamilies returns every family overlapping at least one of keywords.
func (v *Vocabulary) MatchingFamilies(keywords []string) []*Family {
	if v == nil {
		return nil
	}

	var matched []*Family
	for _, f := range v.Families {
		for _, kw := range keywords {
			if f.Overlaps(kw) {
				matched = append(matched, f)
				break
			}
		}
	}
	return matched
}

func (v *Vocabulary) compile() {
	for _, f := range v.Families {
		f.phrases = compilePhrases(f.Words)
	}

	v.synonyms = make(map[string][]*lexical.Phrase, len(v.Synonyms))
	for term, alternates := range v.Synonyms {
		v.synonyms[strings.ToLower(term)] = compilePhrases(alternates)
	}
}

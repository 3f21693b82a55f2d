// Package rubric holds the per-question scoring configuration and the shared
// vocabulary tables. A Store is built once, validated at load time and is
// read-only afterwards, so it can be shared by concurrent evaluations.
package rubric

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/spigell/interview-evaluator/internal/lexical"
)

// Category names a keyword namespace of a rubric entry.
type Category string

const (
	Essential Category = "essential"
	Bonus     Category = "bonus"
)

// Categories lists the scored keyword categories in evaluation order.
var Categories = []Category{Essential, Bonus}

// Group is a named cluster of keywords inside one category.
type Group struct {
	Name     string
	Keywords []string

	phrases []*lexical.Phrase
}

// Phrases returns the compiled keywords in rubric order.
func (g *Group) Phrases() []*lexical.Phrase {
	return g.phrases
}

// Examples returns at most n keywords of the group, used for suggestions.
func (g *Group) Examples(n int) []string {
	if n > len(g.Keywords) {
		n = len(g.Keywords)
	}
	return g.Keywords[:n]
}

// KeywordGroups is an ordered list of groups. In YAML it is written as a mapping
// from group name to keywords; the mapping order is kept.
type KeywordGroups []*Group

// UnmarshalYAML decodes a mapping node while keeping insertion order.
func (kg *KeywordGroups) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: keyword groups must be a mapping of group name to keywords", value.Line)
	}

	groups := make(KeywordGroups, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]

		var keywords []string
		if err := val.Decode(&keywords); err != nil {
			return fmt.Errorf("line %d: group %q: %w", val.Line, key.Value, err)
		}

		groups = append(groups, &Group{Name: key.Value, Keywords: keywords})
	}

	*kg = groups
	return nil
}

// Names returns the group names in rubric order.
func (kg KeywordGroups) Names() []string {
	names := make([]string, 0, len(kg))
	for _, g := range kg {
		names = append(names, g.Name)
	}
	return names
}

// LengthExpectations defines the answer length curve in words.
type LengthExpectations struct {
	MinWords     int `yaml:"min_words" json:"min_words"`
	OptimalWords int `yaml:"optimal_words" json:"optimal_words"`
	MaxWords     int `yaml:"max_words" json:"max_words"`
}

// ScoringWeights are the category weights of the final composite. They should
// sum to 1.0; the final clamp keeps over-weighted rubrics within range.
type ScoringWeights struct {
	Essential float64 `yaml:"essential" json:"essential"`
	Bonus     float64 `yaml:"bonus" json:"bonus"`
	Structure float64 `yaml:"structure" json:"structure"`
}

// Entry is the rubric of a single question.
type Entry struct {
	Index              int
	Type               string
	Question           string
	EssentialKeywords  KeywordGroups
	BonusKeywords      KeywordGroups
	NegativeKeywords   []string
	ContextPatterns    []string
	LengthExpectations LengthExpectations
	ScoringWeights     ScoringWeights

	negatives []*lexical.Phrase
	patterns  []*regexp.Regexp
}

// Groups returns the keyword groups of the category.
func (e *Entry) Groups(c Category) KeywordGroups {
	switch c {
	case Essential:
		return e.EssentialKeywords
	case Bonus:
		return e.BonusKeywords
	default:
		return nil
	}
}

// Negatives returns the compiled negative phrases.
func (e *Entry) Negatives() []*lexical.Phrase {
	return e.negatives
}

// Patterns returns the compiled, case-insensitive context patterns.
func (e *Entry) Patterns() []*regexp.Regexp {
	return e.patterns
}

func (e *Entry) compile() error {
	for _, c := range Categories {
		for _, g := range e.Groups(c) {
			g.phrases = compilePhrases(g.Keywords)
		}
	}

	e.negatives = compilePhrases(e.NegativeKeywords)

	e.patterns = make([]*regexp.Regexp, 0, len(e.ContextPatterns))
	for _, p := range e.ContextPatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return fmt.Errorf("context pattern %q: %w", p, err)
		}
		e.patterns = append(e.patterns, re)
	}

	return nil
}

func compilePhrases(words []string) []*lexical.Phrase {
	phrases := make([]*lexical.Phrase, 0, len(words))
	for _, w := range words {
		phrases = append(phrases, lexical.Compile(w))
	}
	return phrases
}

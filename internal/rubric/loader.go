package rubric

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTable []byte

type document struct {
	SemanticGroups Families            `yaml:"semantic_groups"`
	Synonyms       map[string][]string `yaml:"synonyms"`
	Questions      []entryDocument     `yaml:"questions"`
}

type entryDocument struct {
	Index              *int            `yaml:"index"`
	Type               string          `yaml:"type"`
	Question           string          `yaml:"question"`
	EssentialKeywords  KeywordGroups   `yaml:"essential_keywords"`
	BonusKeywords      KeywordGroups   `yaml:"bonus_keywords"`
	NegativeKeywords   []string        `yaml:"negative_keywords"`
	ContextPatterns    []string        `yaml:"context_patterns"`
	LengthExpectations *lengthDocument `yaml:"length_expectations"`
	ScoringWeights     *weightDocument `yaml:"scoring_weights"`
}

type lengthDocument struct {
	MinWords     *int `yaml:"min_words"`
	OptimalWords *int `yaml:"optimal_words"`
	MaxWords     *int `yaml:"max_words"`
}

type weightDocument struct {
	Essential *float64 `yaml:"essential"`
	Bonus     *float64 `yaml:"bonus"`
	Structure *float64 `yaml:"structure"`
}

// Default returns the built-in Python/SQL interview rubric.
func Default() (*Store, error) {
	return Parse(defaultTable)
}

// LoadFile reads a YAML rubric table from path. An empty path selects the built-in table.
func LoadFile(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rubric file %q: %w", path, err)
	}

	store, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rubric file %q: %w", path, err)
	}

	return store, nil
}

// Parse decodes, validates and compiles a YAML rubric table.
func Parse(data []byte) (*Store, error) {
	var doc document

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, newConfigurationError(errors.New("rubric table is empty"))
		}
		return nil, newConfigurationError(fmt.Errorf("decode: %w", err))
	}

	entries, err := doc.entries()
	if err != nil {
		return nil, newConfigurationError(err)
	}

	return New(entries, &Vocabulary{Families: doc.SemanticGroups, Synonyms: doc.Synonyms})
}

func (d *document) entries() ([]*Entry, error) {
	var err error

	if len(d.Questions) == 0 {
		err = multierr.Append(err, errors.New("no questions defined"))
	}

	entries := make([]*Entry, 0, len(d.Questions))
	for pos, q := range d.Questions {
		if q.Index == nil {
			err = multierr.Append(err, fmt.Errorf("questions[%d]: index is required", pos))
			continue
		}

		prefix := fmt.Sprintf("question %d", *q.Index)
		e := &Entry{
			Index:             *q.Index,
			Type:              strings.TrimSpace(q.Type),
			Question:          strings.TrimSpace(q.Question),
			EssentialKeywords: q.EssentialKeywords,
			BonusKeywords:     q.BonusKeywords,
			NegativeKeywords:  q.NegativeKeywords,
			ContextPatterns:   q.ContextPatterns,
		}

		l := q.LengthExpectations
		if l == nil || l.MinWords == nil || l.OptimalWords == nil || l.MaxWords == nil {
			err = multierr.Append(err, fmt.Errorf("%s: length_expectations requires min_words, optimal_words and max_words", prefix))
			continue
		}
		e.LengthExpectations = LengthExpectations{MinWords: *l.MinWords, OptimalWords: *l.OptimalWords, MaxWords: *l.MaxWords}

		w := q.ScoringWeights
		if w == nil || w.Essential == nil || w.Bonus == nil || w.Structure == nil {
			err = multierr.Append(err, fmt.Errorf("%s: scoring_weights requires essential, bonus and structure", prefix))
			continue
		}
		e.ScoringWeights = ScoringWeights{Essential: *w.Essential, Bonus: *w.Bonus, Structure: *w.Structure}

		entries = append(entries, e)
	}

	return entries, err
}

package rubric

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/spigell/interview-evaluator/internal/lexical"
)

// Validate checks entries and vocabulary for configuration errors. The returned
// error is a *ConfigurationError listing every problem, or nil.
func Validate(entries []*Entry, vocabulary *Vocabulary) error {
	var err error

	seen := make(map[int]bool, len(entries))
	for _, e := range entries {
		if e == nil {
			err = multierr.Append(err, fmt.Errorf("nil rubric entry"))
			continue
		}
		if e.Index < 0 {
			err = multierr.Append(err, fmt.Errorf("question %d: index must not be negative", e.Index))
		}
		if seen[e.Index] {
			err = multierr.Append(err, fmt.Errorf("question %d: duplicate index", e.Index))
		}
		seen[e.Index] = true

		err = multierr.Append(err, validateEntry(e))
	}

	err = multierr.Append(err, validateVocabulary(vocabulary))

	return newConfigurationError(err)
}

func validateEntry(e *Entry) error {
	var err error
	prefix := fmt.Sprintf("question %d", e.Index)

	l := e.LengthExpectations
	if l.MinWords <= 0 {
		err = multierr.Append(err, fmt.Errorf("%s: length_expectations.min_words must be > 0", prefix))
	}
	if !(l.MinWords < l.OptimalWords && l.OptimalWords < l.MaxWords) {
		err = multierr.Append(err, fmt.Errorf("%s: length_expectations must satisfy min_words < optimal_words < max_words, got %d/%d/%d",
			prefix, l.MinWords, l.OptimalWords, l.MaxWords))
	}

	w := e.ScoringWeights
	if w.Essential < 0 || w.Bonus < 0 || w.Structure < 0 {
		err = multierr.Append(err, fmt.Errorf("%s: scoring_weights must not be negative", prefix))
	}

	for _, c := range Categories {
		err = multierr.Append(err, validateGroups(prefix, c, e.Groups(c)))
	}

	for _, kw := range e.NegativeKeywords {
		if lexical.Normalize(kw) == "" {
			err = multierr.Append(err, fmt.Errorf("%s: empty negative keyword", prefix))
		}
	}

	return err
}

func validateGroups(prefix string, c Category, groups KeywordGroups) error {
	var err error

	names := make(map[string]bool, len(groups))
	owners := make(map[string]string)
	for _, g := range groups {
		switch {
		case g.Name == "":
			err = multierr.Append(err, fmt.Errorf("%s: %s group without a name", prefix, c))
		case names[g.Name]:
			err = multierr.Append(err, fmt.Errorf("%s: duplicate %s group %q", prefix, c, g.Name))
		}
		names[g.Name] = true

		if len(g.Keywords) == 0 {
			err = multierr.Append(err, fmt.Errorf("%s: %s group %q has no keywords", prefix, c, g.Name))
		}

		for _, kw := range g.Keywords {
			normalized := lexical.Normalize(kw)
			if normalized == "" {
				err = multierr.Append(err, fmt.Errorf("%s: %s group %q contains an empty keyword", prefix, c, g.Name))
				continue
			}
			if owner, ok := owners[normalized]; ok && owner != g.Name {
				err = multierr.Append(err, fmt.Errorf("%s: %s keyword %q is listed in groups %q and %q", prefix, c, kw, owner, g.Name))
				continue
			}
			owners[normalized] = g.Name
		}
	}

	return err
}

func validateVocabulary(v *Vocabulary) error {
	if v == nil {
		return nil
	}

	var err error
	names := make(map[string]bool, len(v.Families))
	for _, f := range v.Families {
		if f.Name == "" {
			err = multierr.Append(err, fmt.Errorf("semantic group without a name"))
		}
		if names[f.Name] {
			err = multierr.Append(err, fmt.Errorf("duplicate semantic group %q", f.Name))
		}
		names[f.Name] = true
		if len(f.Words) == 0 {
			err = multierr.Append(err, fmt.Errorf("semantic group %q has no words", f.Name))
		}
	}

	for term, alternates := range v.Synonyms {
		if lexical.Normalize(term) == "" {
			err = multierr.Append(err, fmt.Errorf("synonym entry without a term"))
		}
		if len(alternates) == 0 {
			err = multierr.Append(err, fmt.Errorf("synonym entry %q has no alternates", term))
		}
	}

	return err
}

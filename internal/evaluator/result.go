package evaluator

import (
	"github.com/spigell/interview-evaluator/internal/ai"
	"github.com/spigell/interview-evaluator/internal/rubric"
)

// Status flags whether a result was produced from a known rubric.
type Status string

const (
	StatusOK              Status = "ok"
	StatusUnknownQuestion Status = "unknown_question"
)

const (
	MethodKeyword        = "keyword"
	MethodKeywordWithLLM = "keyword+llm"
)

// GroupMatches maps a group name to the terms found for it.
type GroupMatches map[string][]string

// Has reports whether any term was recorded for group.
func (g GroupMatches) Has(group string) bool {
	return len(g[group]) > 0
}

// CategoryMatches holds the evidence of one strategy for both scored categories.
type CategoryMatches struct {
	Essential GroupMatches `json:"essential"`
	Bonus     GroupMatches `json:"bonus"`
}

func newCategoryMatches() CategoryMatches {
	return CategoryMatches{Essential: GroupMatches{}, Bonus: GroupMatches{}}
}

// Get returns the evidence of category c.
func (m CategoryMatches) Get(c rubric.Category) GroupMatches {
	if c == rubric.Bonus {
		return m.Bonus
	}
	return m.Essential
}

func (m CategoryMatches) add(c rubric.Category, group, term string) {
	g := m.Get(c)
	g[group] = append(g[group], term)
}

// Matches is the evidence collected by the four matching strategies.
type Matches struct {
	Exact    CategoryMatches `json:"exact"`
	Semantic CategoryMatches `json:"semantic"`
	Synonyms CategoryMatches `json:"synonyms"`
	Patterns []string        `json:"patterns"`
}

// Breakdown holds the sub-scores that make up the final score.
type Breakdown struct {
	Essential float64 `json:"essential_score"`
	Bonus     float64 `json:"bonus_score"`
	Structure float64 `json:"structure_score"`
	Penalty   float64 `json:"negative_penalty"`
}

// Coverage describes how many rubric groups were satisfied.
type Coverage struct {
	Essential       float64 `json:"essential_coverage"`
	Bonus           float64 `json:"bonus_coverage"`
	EssentialGroups string  `json:"essential_groups_covered"`
	BonusGroups     string  `json:"bonus_groups_covered"`
}

// Result is the evaluation of one transcript against one rubric entry.
// It is built once and must not be modified afterwards.
type Result struct {
	QuestionIndex int            `json:"question_index"`
	QuestionType  string         `json:"question_type"`
	Status        Status         `json:"status"`
	Detail        string         `json:"detail,omitempty"`
	Method        string         `json:"scoring_method"`
	Score         float64        `json:"combined_score"`
	KeywordScore  float64        `json:"keyword_score"`
	Breakdown     Breakdown      `json:"detailed_breakdown"`
	Matches       Matches        `json:"matches_found"`
	Coverage      Coverage       `json:"coverage_analysis"`
	Suggestions   []string       `json:"improvement_suggestions"`
	LLM           *ai.Assessment `json:"llm_evaluation,omitempty"`
}

// OK reports whether the result comes from a known rubric.
func (r *Result) OK() bool {
	return r != nil && r.Status == StatusOK
}

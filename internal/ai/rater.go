package ai

import "context"

// Request carries everything a generative rater needs to judge one answer.
type Request struct {
	QuestionIndex int
	QuestionType  string
	Question      string
	Transcript    string
	KeywordScore  float64
	Suggestions   []string
}

// Assessment is a generative model's judgement of one answer on a 0-10 scale.
type Assessment struct {
	Ratings           map[string]float64 `json:"ratings,omitempty"`
	Average           float64            `json:"llm_average"`
	Strengths         []string           `json:"strengths,omitempty"`
	Weaknesses        []string           `json:"weaknesses,omitempty"`
	OverallAssessment string             `json:"overall_assessment,omitempty"`
	Raw               string             `json:"-"`
	Error             string             `json:"error,omitempty"`
}

// Rater scores an interview answer with a generative model.
type Rater interface {
	Rate(ctx context.Context, req *Request) (*Assessment, error)
}

package session

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NothingEvaluated is reported instead of statistics when no answer was scored.
const NothingEvaluated = "no answers to evaluate"

const evaluationMethod = "keyword matching with semantic analysis"

// Thresholds separate strong and weak answers in the summary.
type Thresholds struct {
	Strong float64 `json:"strong"`
	Weak   float64 `json:"weak"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{Strong: 7.0, Weak: 5.0}
}

// Distribution buckets scores at 4, 6 and 8.
type Distribution struct {
	Excellent int `json:"excellent (8-10)"`
	Good      int `json:"good (6-7.9)"`
	Fair      int `json:"fair (4-5.9)"`
	Poor      int `json:"poor (0-3.9)"`
}

// Summary aggregates the final scores of a session.
type Summary struct {
	Evaluated    bool         `json:"evaluated"`
	Message      string       `json:"message,omitempty"`
	Average      float64      `json:"average_content_score"`
	Highest      float64      `json:"highest_score"`
	Lowest       float64      `json:"lowest_score"`
	Count        int          `json:"total_questions_evaluated"`
	Strong       int          `json:"strong_answers"`
	Weak         int          `json:"weak_answers"`
	Thresholds   Thresholds   `json:"thresholds"`
	Distribution Distribution `json:"score_distribution"`
	Unknown      int          `json:"unknown_questions,omitempty"`
	Method       string       `json:"evaluation_method"`
}

// Summarize aggregates scores. An empty input yields an explicit "nothing evaluated" summary.
func Summarize(scores []float64, th Thresholds) Summary {
	if len(scores) == 0 {
		return Summary{Message: NothingEvaluated, Thresholds: th, Method: evaluationMethod}
	}

	s := Summary{
		Evaluated:  true,
		Average:    math.Round(stat.Mean(scores, nil)*10) / 10,
		Highest:    floats.Max(scores),
		Lowest:     floats.Min(scores),
		Count:      len(scores),
		Thresholds: th,
		Method:     evaluationMethod,
	}

	for _, v := range scores {
		if v >= th.Strong {
			s.Strong++
		}
		if v < th.Weak {
			s.Weak++
		}

		switch {
		case v >= 8:
			s.Distribution.Excellent++
		case v >= 6:
			s.Distribution.Good++
		case v >= 4:
			s.Distribution.Fair++
		default:
			s.Distribution.Poor++
		}
	}

	return s
}

package evaluator

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/interview-evaluator/internal/ai"
)

type stubRater struct {
	assessment *ai.Assessment
	err        error
	requests   []*ai.Request
}

func (s *stubRater) Rate(_ context.Context, req *ai.Request) (*ai.Assessment, error) {
	s.requests = append(s.requests, req)
	return s.assessment, s.err
}

func TestRescorerBlendsScores(t *testing.T) {
	t.Parallel()

	engine := newDefaultEngine(t)
	rater := &stubRater{assessment: &ai.Assessment{Average: 6}}
	rescorer, err := NewRescorer(engine, rater, 0.5, zap.NewNop())
	if err != nil {
		t.Fatalf("new rescorer: %v", err)
	}

	transcript := "Lists are mutable and tuples are immutable. You use a list when ordered, changeable data is needed, " +
		"and a tuple when you want fixed data. For example, coordinates are often tuples."
	res, err := rescorer.Score(context.Background(), 1, transcript)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.KeywordScore != 8.4 {
		t.Fatalf("keyword score must be kept, got %v", res.KeywordScore)
	}
	if res.Score != 7.2 {
		t.Fatalf("expected blended 7.2, got %v", res.Score)
	}
	if res.Method != MethodKeywordWithLLM || res.LLM == nil {
		t.Fatalf("expected llm evaluation attached, got %+v", res)
	}

	if len(rater.requests) != 1 {
		t.Fatalf("expected one request, got %d", len(rater.requests))
	}
	req := rater.requests[0]
	if req.QuestionIndex != 1 || req.Question == "" || req.KeywordScore != 8.4 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestRescorerFallsBackToKeywordScore(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.WarnLevel)
	engine := newDefaultEngine(t)
	rater := &stubRater{err: errors.New("quota exceeded")}
	rescorer, err := NewRescorer(engine, rater, 0.5, zap.New(core))
	if err != nil {
		t.Fatalf("new rescorer: %v", err)
	}

	res, err := rescorer.Score(context.Background(), 7, "I don't know")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Method != MethodKeyword || res.Score != res.KeywordScore {
		t.Fatalf("expected keyword result, got %+v", res)
	}
	if res.LLM == nil || res.LLM.Error != "quota exceeded" {
		t.Fatalf("expected failure to be recorded, got %+v", res.LLM)
	}
	if observed.FilterMessage("llm rescoring failed, keeping keyword score").Len() != 1 {
		t.Fatalf("expected warning to be logged")
	}
}

func TestRescorerSkipsUnknownQuestions(t *testing.T) {
	t.Parallel()

	rater := &stubRater{assessment: &ai.Assessment{Average: 10}}
	rescorer, err := NewRescorer(newDefaultEngine(t), rater, 1, nil)
	if err != nil {
		t.Fatalf("new rescorer: %v", err)
	}

	res, err := rescorer.Score(context.Background(), 42, "text")
	if !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("expected ErrUnknownQuestion, got %v", err)
	}
	if res.Status != StatusUnknownQuestion || len(rater.requests) != 0 {
		t.Fatalf("rater must not be called for unknown questions")
	}
}

func TestNewRescorerValidatesWeight(t *testing.T) {
	t.Parallel()

	engine := newDefaultEngine(t)
	for _, w := range []float64{-0.1, 1.5} {
		if _, err := NewRescorer(engine, &stubRater{}, w, nil); err == nil {
			t.Fatalf("expected error for weight %v", w)
		}
	}
}

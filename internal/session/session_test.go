package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/interview-evaluator/internal/evaluator"
	"github.com/spigell/interview-evaluator/internal/rubric"
	"github.com/spigell/interview-evaluator/internal/speech"
)

func newEngine(t *testing.T) *evaluator.Engine {
	t.Helper()
	store, err := rubric.Default()
	if err != nil {
		t.Fatalf("load rubric: %v", err)
	}
	engine, err := evaluator.New(store, zap.NewNop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

type stubScorer struct {
	scores map[int]float64
	err    error
	calls  atomic.Int32
}

func (s *stubScorer) Score(_ context.Context, index int, _ string) (*evaluator.Result, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &evaluator.Result{QuestionIndex: index, Status: evaluator.StatusOK, Score: s.scores[index]}, nil
}

func TestEvaluateSkipsEmptyTranscripts(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)
	ev, err := New(&Config{Workers: 2}, Deps{Logger: zap.New(core), Scorer: newEngine(t), Speech: speech.NewAnalyzer(nil)})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	items := []*Item{
		{QuestionNumber: 2, QuestionText: "Lists and tuples?", Transcript: "Lists are mutable and tuples are immutable. " +
			"You use a list when ordered, changeable data is needed, and a tuple when you want fixed data. " +
			"For example, coordinates are often tuples."},
		{QuestionNumber: 3, QuestionText: "Exceptions?", Transcript: "   \n\t"},
		{QuestionNumber: 8, QuestionText: "SQL injection?", Transcript: "I don't know"},
	}

	out, err := ev.Evaluate(context.Background(), items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(out.Items) != 2 {
		t.Fatalf("expected 2 evaluated items, got %d", len(out.Items))
	}
	if out.Items[0].QuestionNumber != 2 || out.Items[1].QuestionNumber != 8 {
		t.Fatalf("input order not kept: %d, %d", out.Items[0].QuestionNumber, out.Items[1].QuestionNumber)
	}
	if out.Items[0].Evaluation.QuestionIndex != 1 {
		t.Fatalf("expected rubric index 1, got %d", out.Items[0].Evaluation.QuestionIndex)
	}
	if out.Items[1].Speech == nil || out.Items[1].Speech.WordCount != 3 {
		t.Fatalf("expected speech analysis, got %+v", out.Items[1].Speech)
	}

	s := out.Summary
	if !s.Evaluated || s.Count != 2 {
		t.Fatalf("expected summary over 2 items, got %+v", s)
	}
	if s.Highest != 8.4 || s.Lowest != 0 || s.Average != 4.2 {
		t.Fatalf("unexpected statistics: %+v", s)
	}
	if s.Strong != 1 || s.Weak != 1 {
		t.Fatalf("unexpected threshold counts: %+v", s)
	}
	if s.Distribution != (Distribution{Excellent: 1, Poor: 1}) {
		t.Fatalf("unexpected distribution: %+v", s.Distribution)
	}

	if items[0].Evaluation != nil {
		t.Fatalf("input items must not be modified")
	}

	steps := observed.FilterMessage("filter step").All()
	if len(steps) != 2 {
		t.Fatalf("expected 2 filter steps logged, got %d", len(steps))
	}
	first := steps[0].ContextMap()
	if first["name"] != "empty_transcript" || first["dropped"] != int64(1) || first["left"] != int64(2) {
		t.Fatalf("unexpected step accounting: %v", first)
	}
}

func TestEvaluateWithNothingLeft(t *testing.T) {
	t.Parallel()

	scorer := &stubScorer{}
	ev, err := New(nil, Deps{Scorer: scorer})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	for _, items := range [][]*Item{nil, {{QuestionNumber: 1, Transcript: ""}}} {
		out, err := ev.Evaluate(context.Background(), items)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Summary.Evaluated || out.Summary.Message != NothingEvaluated || out.Summary.Count != 0 {
			t.Fatalf("expected explicit empty summary, got %+v", out.Summary)
		}
		if len(out.Items) != 0 {
			t.Fatalf("expected no items, got %d", len(out.Items))
		}
	}
	if scorer.calls.Load() != 0 {
		t.Fatalf("scorer must not be called")
	}
}

func TestEvaluateKeepsUnknownQuestions(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.WarnLevel)
	ev, err := New(&Config{}, Deps{Logger: zap.New(core), Scorer: newEngine(t)})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	out, err := ev.Evaluate(context.Background(), []*Item{
		{QuestionNumber: 1, Transcript: "I have five years of Python experience building Django applications"},
		{QuestionNumber: 42, Transcript: "an answer to a question that was never asked"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(out.Items) != 2 {
		t.Fatalf("expected both items, got %d", len(out.Items))
	}
	if out.Items[1].Evaluation.Status != evaluator.StatusUnknownQuestion {
		t.Fatalf("expected flagged result, got %+v", out.Items[1].Evaluation)
	}
	if out.Summary.Count != 1 || out.Summary.Unknown != 1 {
		t.Fatalf("unknown questions must stay out of the statistics: %+v", out.Summary)
	}
	if observed.FilterMessage("question has no rubric; keeping flagged result").Len() != 1 {
		t.Fatalf("expected a warning for the unknown question")
	}
}

func TestEvaluateExcludedQuestions(t *testing.T) {
	t.Parallel()

	scorer := &stubScorer{scores: map[int]float64{0: 9, 2: 3}}
	ev, err := New(&Config{ExcludeQuestions: []int{2}}, Deps{Scorer: scorer})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	out, err := ev.Evaluate(context.Background(), []*Item{
		{QuestionNumber: 1, Transcript: "a"},
		{QuestionNumber: 2, Transcript: "b"},
		{QuestionNumber: 3, Transcript: "c"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Items) != 2 || out.Items[1].QuestionNumber != 3 {
		t.Fatalf("expected question 2 to be excluded, got %d items", len(out.Items))
	}
	if out.Summary.Average != 6 {
		t.Fatalf("expected average 6, got %v", out.Summary.Average)
	}

	statuses := Describe(ev.Filters())
	if statuses[1].Details["questions"] != "2" {
		t.Fatalf("unexpected status: %+v", statuses[1])
	}
}

func TestEvaluateStopsOnScorerFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	ev, err := New(&Config{Workers: 1}, Deps{Scorer: &stubScorer{err: boom}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	_, err = ev.Evaluate(context.Background(), []*Item{{QuestionNumber: 1, Transcript: "text"}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected scorer error, got %v", err)
	}
}

func TestFilterValidation(t *testing.T) {
	t.Parallel()

	ev, err := New(&Config{ExcludeQuestions: []int{0}}, Deps{Scorer: &stubScorer{}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := ev.Evaluate(context.Background(), []*Item{{QuestionNumber: 1, Transcript: "x"}}); err == nil {
		t.Fatalf("expected validation error")
	}

	steps := DefaultFilters()
	if !DisableByName(steps, "excluded_questions", "manual run") {
		t.Fatalf("expected excluded_questions to be found")
	}
	out, err := Run(context.Background(), &Config{ExcludeQuestions: []int{0}}, Deps{}, steps, []*Item{{QuestionNumber: 1, Transcript: "x"}})
	if err != nil {
		t.Fatalf("disabled filters must not be validated: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 item, got %d", len(out))
	}
	if st := Describe(steps)[1]; st.Enabled || st.Reason != "manual run" {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestNewRequiresScorer(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, Deps{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDisableByName(t *testing.T) {
	t.Parallel()

	steps := DefaultFilters()
	if DisableByName(steps, "no_such_filter", "x") {
		t.Fatalf("unknown filter must not be reported as disabled")
	}
	if got := Names(steps); len(got) != 2 || got[0] != "empty_transcript" || got[1] != "excluded_questions" {
		t.Fatalf("unexpected filter names: %v", got)
	}

	if !DisableByName(steps, "empty_transcript", "keep blanks") {
		t.Fatalf("expected empty_transcript to be found")
	}
	items := []*Item{{QuestionNumber: 1, Transcript: "  "}, {QuestionNumber: 2, Transcript: "x"}}
	out, err := Run(context.Background(), &Config{}, Deps{}, steps, items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("disabled empty_transcript must keep blank answers, got %d items", len(out))
	}
	if st := Describe(steps)[0]; st.Enabled || st.Reason != "keep blanks" {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestNewCopiesConfig(t *testing.T) {
	t.Parallel()

	cfg := &Config{ExcludeQuestions: []int{3}}
	ev, err := New(cfg, Deps{Scorer: &stubScorer{}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if cfg.Workers != 0 || cfg.Thresholds != nil {
		t.Fatalf("caller config was modified: %+v", cfg)
	}
	cfg.ExcludeQuestions[0] = 4
	if ev.cfg.ExcludeQuestions[0] != 3 {
		t.Fatalf("evaluator shares the caller's exclude list")
	}
	if ev.cfg.Workers != defaultWorkers || ev.thresholds != DefaultThresholds() {
		t.Fatalf("defaults not applied: workers=%d thresholds=%+v", ev.cfg.Workers, ev.thresholds)
	}
}

func TestNewKeepsExplicitZeroThresholds(t *testing.T) {
	t.Parallel()

	scorer := &stubScorer{scores: map[int]float64{0: 0, 1: 6}}
	ev, err := New(&Config{Thresholds: &Thresholds{}}, Deps{Scorer: scorer})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	out, err := ev.Evaluate(context.Background(), []*Item{
		{QuestionNumber: 1, Transcript: "a"},
		{QuestionNumber: 2, Transcript: "b"},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if out.Summary.Thresholds != (Thresholds{}) {
		t.Fatalf("explicit zero thresholds were replaced: %+v", out.Summary.Thresholds)
	}
	if out.Summary.Strong != 2 || out.Summary.Weak != 0 {
		t.Fatalf("expected every answer strong and none weak, got strong=%d weak=%d", out.Summary.Strong, out.Summary.Weak)
	}
}

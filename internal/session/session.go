// Package session evaluates every answer of an interview and aggregates the scores.
package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/interview-evaluator/internal/evaluator"
	"github.com/spigell/interview-evaluator/internal/logger"
	"github.com/spigell/interview-evaluator/internal/speech"
)

const (
	defaultWorkers = 4
	previewLength  = 60
)

// Item is one asked question and the candidate's answer.
// QuestionNumber is 1-based; the rubric index is QuestionNumber-1.
type Item struct {
	QuestionNumber int               `json:"question_number"`
	QuestionText   string            `json:"question_text"`
	Transcript     string            `json:"transcript"`
	Evaluation     *evaluator.Result `json:"answer_evaluation,omitempty"`
	Speech         *speech.Analysis  `json:"speech_analysis,omitempty"`
}

// Index returns the rubric index of the item.
func (it *Item) Index() int {
	return it.QuestionNumber - 1
}

// Outcome holds the evaluated items, in input order, and their summary.
type Outcome struct {
	Items   []*Item `json:"questions_data"`
	Summary Summary `json:"content_analysis_summary"`
}

// Config controls session evaluation. A nil Thresholds selects DefaultThresholds.
type Config struct {
	Workers          int
	Thresholds       *Thresholds
	ExcludeQuestions []int
}

// Deps aggregates dependencies shared by the session evaluator and its filters.
type Deps struct {
	Logger *zap.Logger
	Scorer evaluator.Scorer
	// Speech is optional; when set every evaluated item gets a fluency analysis.
	Speech *speech.Analyzer
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Evaluator runs filters and scores the remaining items in parallel.
type Evaluator struct {
	cfg        *Config
	thresholds Thresholds
	deps       Deps
	steps      []Filter
}

// New creates a session evaluator. Without explicit steps DefaultFilters is used.
// cfg is copied; the caller's value is never modified.
func New(cfg *Config, deps Deps, steps ...Filter) (*Evaluator, error) {
	if deps.Scorer == nil {
		return nil, errors.New("scorer is required")
	}

	var own Config
	if cfg != nil {
		own = *cfg
		own.ExcludeQuestions = append([]int(nil), cfg.ExcludeQuestions...)
	}
	if own.Workers <= 0 {
		own.Workers = defaultWorkers
	}
	thresholds := DefaultThresholds()
	if own.Thresholds != nil {
		thresholds = *own.Thresholds
	}
	own.Thresholds = &thresholds

	if len(steps) == 0 {
		steps = DefaultFilters()
	}
	return &Evaluator{cfg: &own, thresholds: thresholds, deps: deps, steps: steps}, nil
}

// Filters returns the steps the evaluator runs.
func (e *Evaluator) Filters() []Filter {
	return e.steps
}

// Evaluate scores every retained item. Items for unknown questions keep their
// flagged result and stay out of the summary. Input items are not modified.
func (e *Evaluator) Evaluate(ctx context.Context, items []*Item) (*Outcome, error) {
	log := e.deps.logger()

	retained, err := Run(ctx, e.cfg, e.deps, e.steps, items)
	if err != nil {
		return nil, fmt.Errorf("filtering items: %w", err)
	}

	evaluated := make([]*Item, len(retained))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, it := range retained {
		g.Go(func() error {
			res, err := e.deps.Scorer.Score(gctx, it.Index(), it.Transcript)
			switch {
			case errors.Is(err, evaluator.ErrUnknownQuestion):
				log.Warn("question has no rubric; keeping flagged result",
					zap.Int("question_number", it.QuestionNumber),
					logger.TranscriptPreview(it.Transcript, previewLength),
				)
			case err != nil:
				return fmt.Errorf("question %d: %w", it.QuestionNumber, err)
			}

			out := *it
			out.Evaluation = res
			if e.deps.Speech != nil {
				out.Speech = e.deps.Speech.Analyze(it.Transcript)
			}
			evaluated[i] = &out

			log.Debug("question evaluated",
				append(logger.QuestionFields(it.Index(), res.QuestionType), zap.Float64("score", res.Score))...,
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scores := make([]float64, 0, len(evaluated))
	for _, it := range evaluated {
		if it.Evaluation.OK() {
			scores = append(scores, it.Evaluation.Score)
		}
	}

	summary := Summarize(scores, e.thresholds)
	summary.Unknown = len(evaluated) - len(scores)

	if summary.Evaluated {
		log.Info("session evaluated",
			zap.Int("items", len(items)),
			zap.Int("evaluated", summary.Count),
			zap.Float64("average", summary.Average),
		)
	} else {
		log.Info("session evaluated", zap.String("result", NothingEvaluated))
	}

	return &Outcome{Items: evaluated, Summary: summary}, nil
}

package evaluator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/interview-evaluator/internal/ai"
	"github.com/spigell/interview-evaluator/internal/logger"
)

// Rescorer blends keyword scores with a generative model's ratings.
// When the model fails the keyword result is kept and the failure is recorded on it.
type Rescorer struct {
	engine *Engine
	rater  ai.Rater
	weight float64
	logger *zap.Logger
}

func NewRescorer(engine *Engine, rater ai.Rater, weight float64, log *zap.Logger) (*Rescorer, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if rater == nil {
		return nil, fmt.Errorf("rater is required")
	}
	if weight < 0 || weight > 1 {
		return nil, fmt.Errorf("blend weight must be within [0, 1], got %v", weight)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Rescorer{engine: engine, rater: rater, weight: weight, logger: log}, nil
}

func (r *Rescorer) Score(ctx context.Context, index int, transcript string) (*Result, error) {
	base, err := r.engine.Evaluate(index, transcript)
	if err != nil {
		return base, err
	}

	entry, _ := r.engine.Store().Entry(index)
	log := logger.WithFields(r.logger, logger.QuestionFields(index, entry.Type)...)

	assessment, err := r.rater.Rate(ctx, &ai.Request{
		QuestionIndex: index,
		QuestionType:  entry.Type,
		Question:      entry.Question,
		Transcript:    transcript,
		KeywordScore:  base.Score,
		Suggestions:   base.Suggestions,
	})

	result := *base
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("llm rescoring failed, keeping keyword score", zap.Error(err))
		result.LLM = &ai.Assessment{Error: err.Error()}
		return &result, nil
	}

	result.Method = MethodKeywordWithLLM
	result.LLM = assessment
	result.Score = round(clamp((1-r.weight)*base.Score+r.weight*assessment.Average, 0, maxScore), 1)

	log.Debug("answer rescored",
		zap.Float64("keyword_score", base.Score),
		zap.Float64("llm_average", assessment.Average),
		zap.Float64("score", result.Score),
	)

	return &result, nil
}

package evaluator

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spigell/interview-evaluator/internal/lexical"
	"github.com/spigell/interview-evaluator/internal/logger"
	"github.com/spigell/interview-evaluator/internal/rubric"
)

// Scorer turns a transcript for a question index into a result.
type Scorer interface {
	Score(ctx context.Context, index int, transcript string) (*Result, error)
}

// Engine scores transcripts against a read-only rubric store.
// It holds no mutable state and may be shared between goroutines.
type Engine struct {
	store  *rubric.Store
	logger *zap.Logger
}

func New(store *rubric.Store, log *zap.Logger) (*Engine, error) {
	if store == nil || store.Len() == 0 {
		return nil, errors.New("rubric store is empty")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: store, logger: log}, nil
}

// Store returns the rubric the engine scores against.
func (e *Engine) Store() *rubric.Store {
	return e.store
}

// Score implements Scorer. Keyword scoring never blocks, so ctx is only checked upfront.
func (e *Engine) Score(ctx context.Context, index int, transcript string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.Evaluate(index, transcript)
}

// Evaluate scores transcript against the rubric entry at index.
// For an unknown index it returns a zero-score result flagged StatusUnknownQuestion
// together with an error wrapping ErrUnknownQuestion.
func (e *Engine) Evaluate(index int, transcript string) (*Result, error) {
	entry, ok := e.store.Entry(index)
	if !ok {
		err := &UnknownQuestionError{Index: index}
		e.logger.Warn("question is not in the rubric", zap.Int(logger.FieldQuestionIndex, index))
		return unknownResult(index, err), err
	}

	log := logger.WithFields(e.logger, logger.QuestionFields(index, entry.Type)...)
	vocabulary := e.store.Vocabulary()
	text := lexical.Normalize(transcript)

	exact := findExact(text, entry)
	semantic := findSemantic(text, entry, vocabulary)
	synonyms := findSynonyms(text, entry, vocabulary)
	patterns := findPatterns(transcript, entry)

	breakdown := Breakdown{
		Essential: CategoryScore(exact.Essential, semantic.Essential, entry.Groups(rubric.Essential)),
		Bonus:     CategoryScore(exact.Bonus, semantic.Bonus, entry.Groups(rubric.Bonus)),
		Structure: StructureScore(transcript, entry.LengthExpectations),
		Penalty:   Penalty(text, entry.Negatives()),
	}
	score := FinalScore(breakdown, entry.ScoringWeights)

	result := &Result{
		QuestionIndex: index,
		QuestionType:  entry.Type,
		Status:        StatusOK,
		Method:        MethodKeyword,
		Score:         score,
		KeywordScore:  score,
		Breakdown: Breakdown{
			Essential: round(breakdown.Essential, 2),
			Bonus:     round(breakdown.Bonus, 2),
			Structure: round(breakdown.Structure, 2),
			Penalty:   breakdown.Penalty,
		},
		Matches: Matches{
			Exact:    exact,
			Semantic: semantic,
			Synonyms: synonyms,
			Patterns: patterns,
		},
		Coverage:    analyzeCoverage(entry, exact, semantic),
		Suggestions: suggest(entry, exact),
	}

	log.Debug("answer scored",
		zap.Float64("score", result.Score),
		zap.Float64("essential", result.Breakdown.Essential),
		zap.Float64("bonus", result.Breakdown.Bonus),
		zap.Float64("structure", result.Breakdown.Structure),
		zap.Float64("penalty", result.Breakdown.Penalty),
		zap.Int("patterns", len(patterns)),
	)

	return result, nil
}

func unknownResult(index int, err error) *Result {
	return &Result{
		QuestionIndex: index,
		Status:        StatusUnknownQuestion,
		Detail:        err.Error(),
		Method:        MethodKeyword,
		Matches: Matches{
			Exact:    newCategoryMatches(),
			Semantic: newCategoryMatches(),
			Synonyms: newCategoryMatches(),
			Patterns: []string{},
		},
		Coverage:    Coverage{EssentialGroups: "0/0", BonusGroups: "0/0"},
		Suggestions: []string{},
	}
}

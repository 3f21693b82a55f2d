package logger

import (
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/interview-evaluator/internal/utils"
)

// Structured field keys shared by every component.
const (
	FieldProvider      = "ai_provider"
	FieldModel         = "ai_model"
	FieldQuestionIndex = "question_index"
	FieldQuestionType  = "question_type"
	FieldTranscript    = "transcript_preview"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields. Pairs with a blank
// key or value are dropped.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key, value := strings.TrimSpace(field.Key), strings.TrimSpace(field.Value)
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to logger. A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// ProviderFields describes the LLM provider and model behind a rating.
func ProviderFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithProvider is WithFields with ProviderFields.
func WithProvider(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, ProviderFields(provider, model)...)
}

// QuestionFields describes the question being evaluated.
func QuestionFields(index int, questionType string) []zap.Field {
	return append(
		[]zap.Field{zap.Int(FieldQuestionIndex, index)},
		StringFields(StringField{Key: FieldQuestionType, Value: questionType})...,
	)
}

// TranscriptPreview logs at most limit runes of an answer.
func TranscriptPreview(transcript string, limit int) zap.Field {
	return zap.String(FieldTranscript, utils.TruncateForLog(transcript, limit))
}

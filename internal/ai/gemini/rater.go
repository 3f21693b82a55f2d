package gemini

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	_ "embed"

	json "github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/interview-evaluator/internal/ai"
	"github.com/spigell/interview-evaluator/internal/logger"
	"github.com/spigell/interview-evaluator/internal/utils"
)

const (
	ProviderName = "gemini"

	defaultMaxLogLength = 200
	maxTranscriptRunes  = 6000
	maxRating           = 10.0
)

// Criteria the model rates, in prompt order.
var Criteria = []string{"relevance", "accuracy", "completeness", "clarity"}

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

//go:embed prompt.md
var systemPrompt string

// Rater asks Gemini to grade interview answers.
type Rater struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewRater(generator contentGenerator, maxLogLength int, log *zap.Logger) *Rater {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Rater{
		generator: generator,
		logger:    logger.WithProvider(log, ProviderName, generator.Model()),
		maxLogLen: maxLogLength,
	}
}

func (r *Rater) Rate(ctx context.Context, req *ai.Request) (*ai.Assessment, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if strings.TrimSpace(req.Transcript) == "" {
		return nil, fmt.Errorf("transcript is required")
	}

	message := buildMessage(req)

	r.logger.Debug("gemini generate content request",
		zap.Int(logger.FieldQuestionIndex, req.QuestionIndex),
		zap.Int("message_length", utf8.RuneCountInString(message)),
		zap.String("message_preview", utils.TruncateForLog(message, r.maxLogLen)),
	)

	raw, err := r.generator.GenerateContent(ctx, systemPrompt, message)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("gemini generate content response",
		zap.Int(logger.FieldQuestionIndex, req.QuestionIndex),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, r.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	assessment.Raw = raw
	return assessment, nil
}

func buildMessage(req *ai.Request) string {
	var b strings.Builder

	b.WriteString("[Context]\n")
	fmt.Fprintf(&b, "- Question type: %s\n", sanitizeLine(req.QuestionType))
	fmt.Fprintf(&b, "- Keyword score: %.1f/10\n", req.KeywordScore)
	b.WriteString("- Keyword matcher hints:\n")
	if len(req.Suggestions) == 0 {
		b.WriteString("  - none\n")
	}
	for _, s := range req.Suggestions {
		fmt.Fprintf(&b, "  - %s\n", sanitizeLine(s))
	}

	b.WriteString("\n[Inputs]\n")
	fmt.Fprintf(&b, "Question: %s\n", sanitizeLine(req.Question))
	b.WriteString("Answer transcript:\n")
	b.WriteString(sanitizeBlock(req.Transcript, maxTranscriptRunes))
	b.WriteString("\n\nJSON Response:")

	return b.String()
}

var bracketReplacer = strings.NewReplacer("[", "(", "]", ")")

func sanitizeLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "none"
	}
	return bracketReplacer.Replace(s)
}

func sanitizeBlock(s string, limit int) string {
	s = bracketReplacer.Replace(strings.TrimSpace(s))
	runes := []rune(s)
	if len(runes) > limit {
		s = string(runes[:limit])
	}
	return s
}

type reply struct {
	Relevance         *float64 `mapstructure:"relevance"`
	Accuracy          *float64 `mapstructure:"accuracy"`
	Completeness      *float64 `mapstructure:"completeness"`
	Clarity           *float64 `mapstructure:"clarity"`
	Strengths         []string `mapstructure:"strengths"`
	Weaknesses        []string `mapstructure:"weaknesses"`
	OverallAssessment string   `mapstructure:"overall_assessment"`
}

func (r *reply) ratings() map[string]*float64 {
	return map[string]*float64{
		"relevance":    r.Relevance,
		"accuracy":     r.Accuracy,
		"completeness": r.Completeness,
		"clarity":      r.Clarity,
	}
}

func parseResponse(raw string) (*ai.Assessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	var rep reply
	if err := mapstructure.WeakDecode(data, &rep); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	assessment := &ai.Assessment{
		Ratings:           map[string]float64{},
		Strengths:         trimAll(rep.Strengths),
		Weaknesses:        trimAll(rep.Weaknesses),
		OverallAssessment: strings.TrimSpace(rep.OverallAssessment),
	}

	ratings := rep.ratings()
	sum := 0.0
	for _, name := range Criteria {
		v := ratings[name]
		if v == nil || math.IsNaN(*v) {
			continue
		}
		clamped := math.Max(0, math.Min(maxRating, *v))
		assessment.Ratings[name] = clamped
		sum += clamped
	}
	if len(assessment.Ratings) == 0 {
		return nil, fmt.Errorf("gemini response carries no ratings")
	}
	assessment.Average = math.Round(sum/float64(len(assessment.Ratings))*10) / 10

	return assessment, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

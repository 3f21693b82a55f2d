package evaluator

import (
	"math"
	"strings"

	"github.com/spigell/interview-evaluator/internal/lexical"
	"github.com/spigell/interview-evaluator/internal/rubric"
)

const (
	exactCredit    = 1.0
	semanticCredit = 0.7

	indicatorBonus    = 0.1
	maxIndicatorBonus = 0.3

	overlongWords = 50.0

	penaltyPerPhrase = 1.0
	maxScore         = 10.0
)

// structureIndicators are matched as plain substrings of the lowercased transcript.
var structureIndicators = []string{
	"for example", "for instance", "such as", "specifically",
	"first", "second", "then", "next", "finally",
	"in conclusion", "as a result", "therefore", "consequently", "however",
}

// CategoryScore gives full credit to groups with an exact hit and partial credit
// to groups covered only semantically. A category without groups scores 1.
func CategoryScore(exact, semantic GroupMatches, groups rubric.KeywordGroups) float64 {
	if len(groups) == 0 {
		return 1.0
	}
	total := 0.0
	for _, g := range groups {
		switch {
		case exact.Has(g.Name):
			total += exactCredit
		case semantic.Has(g.Name):
			total += semanticCredit
		}
	}
	return total / float64(len(groups))
}

// LengthScore maps a word count onto the piecewise length curve.
func LengthScore(words int, l rubric.LengthExpectations) float64 {
	n := float64(words)
	minW, optW, maxW := float64(l.MinWords), float64(l.OptimalWords), float64(l.MaxWords)
	switch {
	case n < minW:
		return n / minW * 0.5
	case n <= optW:
		return 0.5 + (n-minW)/(optW-minW)*0.5
	case n <= maxW:
		return 1.0 - (n-optW)/(maxW-optW)*0.2
	default:
		return 0.8 - math.Min((n-maxW)/overlongWords, 0.3)
	}
}

// StructureScore combines the length curve with a capped bonus for discourse indicators.
func StructureScore(raw string, l rubric.LengthExpectations) float64 {
	score := LengthScore(lexical.WordCount(raw), l)

	lower := strings.ToLower(raw)
	bonus := 0.0
	for _, indicator := range structureIndicators {
		if strings.Contains(lower, indicator) {
			bonus += indicatorBonus
		}
	}
	score += math.Min(bonus, maxIndicatorBonus)

	return math.Min(score, 1.0)
}

// Penalty is one point per negative phrase present in the normalized text.
func Penalty(text string, negatives []*lexical.Phrase) float64 {
	total := 0.0
	for _, phrase := range negatives {
		if phrase.In(text) {
			total += penaltyPerPhrase
		}
	}
	return total
}

// FinalScore weights the sub-scores onto the 0-10 scale and subtracts the penalty.
func FinalScore(b Breakdown, w rubric.ScoringWeights) float64 {
	raw := (b.Essential*w.Essential + b.Bonus*w.Bonus + b.Structure*w.Structure) * maxScore
	return round(clamp(raw-b.Penalty, 0, maxScore), 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

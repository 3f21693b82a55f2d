package evaluator

import (
	"fmt"
	"strings"

	"github.com/spigell/interview-evaluator/internal/rubric"
)

const (
	maxSuggestions    = 3
	suggestedKeywords = 3
	starQuestionType  = "behavioral_STAR"
	starSuggestion    = "Use the STAR method: Situation, Task, Action, Result"
)

func analyzeCoverage(entry *rubric.Entry, exact, semantic CategoryMatches) Coverage {
	essential, essentialLabel := coverageOf(entry.Groups(rubric.Essential), exact.Essential, semantic.Essential)
	bonus, bonusLabel := coverageOf(entry.Groups(rubric.Bonus), exact.Bonus, semantic.Bonus)
	return Coverage{
		Essential:       essential,
		Bonus:           bonus,
		EssentialGroups: essentialLabel,
		BonusGroups:     bonusLabel,
	}
}

func coverageOf(groups rubric.KeywordGroups, exact, semantic GroupMatches) (float64, string) {
	covered := 0
	for _, g := range groups {
		if exact.Has(g.Name) || semantic.Has(g.Name) {
			covered++
		}
	}
	label := fmt.Sprintf("%d/%d", covered, len(groups))
	if len(groups) == 0 {
		return 100, label
	}
	return round(float64(covered)/float64(len(groups))*100, 1), label
}

// suggest lists essential groups without an exact hit, then the STAR hint for behavioral questions.
func suggest(entry *rubric.Entry, exact CategoryMatches) []string {
	out := []string{}
	for _, g := range entry.Groups(rubric.Essential) {
		if exact.Essential.Has(g.Name) {
			continue
		}
		name := strings.ReplaceAll(g.Name, "_", " ")
		out = append(out, fmt.Sprintf("Consider mentioning %s: %s", name, strings.Join(g.Examples(suggestedKeywords), ", ")))
	}
	if entry.Type == starQuestionType {
		out = append(out, starSuggestion)
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

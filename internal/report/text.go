package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gonum.org/v1/gonum/stat"

	"github.com/spigell/interview-evaluator/internal/evaluator"
)

const (
	separatorWidth = 60
	topFillers     = 3
	highlights     = 2
)

var titleCaser = cases.Title(language.English)

// ContentBand grades an average content score.
func ContentBand(score float64) string {
	switch {
	case score >= 8.0:
		return "Excellent"
	case score >= 6.5:
		return "Good"
	case score >= 5.0:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

// CoverageBand grades an average keyword coverage percentage.
func CoverageBand(coverage float64) string {
	switch {
	case coverage >= 70:
		return "Good coverage of expected topics"
	case coverage >= 50:
		return "Moderate coverage, some key points missing"
	default:
		return "Poor coverage of expected topics"
	}
}

// FluencyBand grades an average fluency score.
func FluencyBand(fluency float64) string {
	switch {
	case fluency >= 80:
		return "Excellent: very fluent speech with minimal issues"
	case fluency >= 60:
		return "Good: generally fluent with some hesitation"
	case fluency >= 40:
		return "Fair: noticeable issues affecting fluency"
	default:
		return "Needs Improvement: significant communication challenges"
	}
}

type textWriter struct {
	w       io.Writer
	heading lipgloss.Style
	title   lipgloss.Style
	err     error
}

func (t *textWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

func (t *textWriter) section(name string) {
	t.printf("%s\n%s\n", t.heading.Render(name), strings.Repeat("-", len(name)))
}

type totals struct {
	words, fillers   int
	fluency          []float64
	content          []float64
	coverage         []float64
	llm              []float64
	categories       map[string]int
	excellent, needs int
}

func collect(doc *Document) totals {
	t := totals{categories: map[string]int{}}
	for _, it := range doc.Items {
		if it.Speech != nil {
			t.words += it.Speech.WordCount
			t.fillers += it.Speech.FillerCount
			t.fluency = append(t.fluency, it.Speech.FluencyScore)
			for c, n := range it.Speech.FillerCategories {
				t.categories[c] += n
			}
		}
		if !it.Evaluation.OK() {
			continue
		}
		score := it.Evaluation.Score
		t.content = append(t.content, score)
		t.coverage = append(t.coverage, it.Evaluation.Coverage.Essential)
		if llm := it.Evaluation.LLM; llm != nil && llm.Error == "" {
			t.llm = append(t.llm, llm.Average)
		}
		if score >= 8.0 {
			t.excellent++
		}
		if score < 5.0 {
			t.needs++
		}
	}
	return t
}

// mean is stat.Mean with an empty input reported as 0 instead of NaN.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// WriteText renders doc as a plain text report. Headings are styled with
// lipgloss, which falls back to plain text when w is not a terminal.
func WriteText(w io.Writer, doc *Document) error {
	r := lipgloss.NewRenderer(w)
	t := &textWriter{
		w:       w,
		heading: r.NewStyle().Bold(true),
		title:   r.NewStyle().Bold(true).Underline(true),
	}
	tot := collect(doc)

	t.printf("%s\n%s\n\n", t.title.Render("INTERVIEW EVALUATION REPORT"), strings.Repeat("=", separatorWidth))
	t.printf("Session: %s\n", doc.SessionID)
	if doc.Candidate != "" {
		t.printf("Candidate: %s\n", doc.Candidate)
	}
	t.printf("Date: %s\n", doc.StartedAt.Format("2006-01-02 15:04:05"))
	t.printf("Questions Evaluated: %d\n\n", len(doc.Items))

	t.section("OVERALL ANALYSIS")
	if len(tot.fluency) > 0 {
		ratio := 0.0
		if tot.words > 0 {
			ratio = float64(tot.fillers) / float64(tot.words) * 100
		}
		t.printf("Total Words: %d\n", tot.words)
		t.printf("Total Fillers: %d (%.1f%%)\n", tot.fillers, ratio)
		t.printf("Fluency Score: %.1f/100\n", mean(tot.fluency))
	}
	if !doc.Summary.Evaluated {
		t.printf("Content: %s\n\n", doc.Summary.Message)
	} else {
		t.printf("Average Content Score: %.1f/10\n", doc.Summary.Average)
		t.printf("Average Keyword Coverage: %.1f%%\n", mean(tot.coverage))
		if len(tot.llm) > 0 {
			t.printf("Average LLM Assessment: %.1f/10\n", mean(tot.llm))
		}
		t.printf("\n")

		t.section("CONTENT QUALITY ANALYSIS")
		t.printf("Overall: %s\n", strings.ToUpper(ContentBand(doc.Summary.Average)))
		t.printf("Keyword Coverage: %s\n", CoverageBand(mean(tot.coverage)))
		t.printf("Answer Distribution: %d excellent, %d need improvement\n", tot.excellent, tot.needs)
		t.printf("Highest: %.1f | Lowest: %.1f\n\n", doc.Summary.Highest, doc.Summary.Lowest)
	}

	if len(tot.categories) > 0 {
		t.section("FILLER BREAKDOWN BY CATEGORY")
		names := make([]string, 0, len(tot.categories))
		for c := range tot.categories {
			names = append(names, c)
		}
		sort.Strings(names)
		for _, c := range names {
			pct := 0.0
			if tot.fillers > 0 {
				pct = float64(tot.categories[c]) / float64(tot.fillers) * 100
			}
			t.printf("%s: %d (%.1f%%)\n", titleCaser.String(strings.ReplaceAll(c, "_", " ")), tot.categories[c], pct)
		}
		t.printf("\n")
	}

	if len(tot.fluency) > 0 {
		t.section("FLUENCY ASSESSMENT")
		t.printf("%s\n\n", FluencyBand(mean(tot.fluency)))
	}

	t.section("DETAILED QUESTION ANALYSIS")
	for _, it := range doc.Items {
		t.printf("\nQuestion %d: %s\n", it.QuestionNumber, it.QuestionText)
		if s := it.Speech; s != nil {
			t.printf("Words: %d | Fillers: %d (%.1f%%)\n", s.WordCount, s.FillerCount, s.FillerRatio)
			t.printf("Fluency: %.1f/100\n", s.FluencyScore)
			if top := formatTopFillers(s.FillerDetails); top != "" {
				t.printf("Top Fillers: %s\n", top)
			}
		}
		writeEvaluation(t, it.Evaluation)
		t.printf("Transcript: %s\n", it.Transcript)
		t.printf("%s\n", strings.Repeat("-", 40))
	}

	return t.err
}

func writeEvaluation(t *textWriter, res *evaluator.Result) {
	if res == nil {
		return
	}
	if !res.OK() {
		t.printf("Content Score: not available (%s)\n", res.Detail)
		return
	}

	t.printf("Content Score: %.1f/10 (%s)\n", res.Score, ContentBand(res.Score))
	if res.Method == evaluator.MethodKeywordWithLLM {
		t.printf("Keyword Score: %.1f/10\n", res.KeywordScore)
	}
	t.printf("Groups Covered: essential %s, bonus %s\n", res.Coverage.EssentialGroups, res.Coverage.BonusGroups)
	t.printf("Keyword Coverage: %.1f%%\n", res.Coverage.Essential)
	if len(res.Suggestions) > 0 {
		t.printf("Suggestions: %s\n", strings.Join(res.Suggestions, "; "))
	}
	if llm := res.LLM; llm != nil && llm.Error == "" {
		if len(llm.Strengths) > 0 {
			t.printf("Strengths: %s\n", strings.Join(first(llm.Strengths, highlights), ", "))
		}
		if len(llm.Weaknesses) > 0 {
			t.printf("Areas for Improvement: %s\n", strings.Join(first(llm.Weaknesses, highlights), ", "))
		}
	}
}

func first(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}

func formatTopFillers(details map[string]int) string {
	words := make([]string, 0, len(details))
	for w := range details {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if details[words[i]] != details[words[j]] {
			return details[words[i]] > details[words[j]]
		}
		return words[i] < words[j]
	})

	parts := make([]string, 0, topFillers)
	for _, w := range first(words, topFillers) {
		parts = append(parts, fmt.Sprintf("%s(%d)", w, details[w]))
	}
	return strings.Join(parts, ", ")
}

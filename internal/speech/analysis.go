package speech

import (
	"math"
	"strings"
)

const fluencyPenaltyPerPercent = 1.5

// Analysis summarises the disfluency of one transcript.
type Analysis struct {
	WordCount        int            `json:"word_count"`
	FillerCount      int            `json:"filler_count"`
	FillerRatio      float64        `json:"filler_ratio"`
	FillerDetails    map[string]int `json:"filler_details"`
	FillerCategories map[string]int `json:"filler_categories"`
	FluencyScore     float64        `json:"fluency_score"`
}

// Analyzer produces an Analysis for transcripts.
type Analyzer struct {
	detector *Detector
}

// NewAnalyzer builds an analyzer on top of tagger, which may be nil.
func NewAnalyzer(tagger Tagger) *Analyzer {
	return &Analyzer{detector: NewDetector(tagger)}
}

// Analyze measures fillers and fluency. Blank transcripts yield a zero analysis.
func (a *Analyzer) Analyze(transcript string) *Analysis {
	if strings.TrimSpace(transcript) == "" {
		return &Analysis{FillerDetails: map[string]int{}, FillerCategories: map[string]int{}}
	}

	words := len(strings.Fields(transcript))
	fillers := a.detector.Detect(transcript)
	ratio := float64(fillers.Total) / float64(words) * 100

	return &Analysis{
		WordCount:        words,
		FillerCount:      fillers.Total,
		FillerRatio:      round1(ratio),
		FillerDetails:    fillers.Details,
		FillerCategories: fillers.Categories,
		FluencyScore:     round1(math.Max(0, 100-ratio*fluencyPenaltyPerPercent)),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

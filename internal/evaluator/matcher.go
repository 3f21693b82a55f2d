package evaluator

import (
	"fmt"

	"github.com/spigell/interview-evaluator/internal/rubric"
)

// findExact records every rubric keyword present in the normalized text.
func findExact(text string, entry *rubric.Entry) CategoryMatches {
	found := newCategoryMatches()
	for _, c := range rubric.Categories {
		for _, group := range entry.Groups(c) {
			for _, phrase := range group.Phrases() {
				if phrase.In(text) {
					found.add(c, group.Name, phrase.String())
				}
			}
		}
	}
	return found
}

// findSemantic records words of the vocabulary families related to a group.
// A family is related when its name and one of the group keywords contain each other.
func findSemantic(text string, entry *rubric.Entry, vocabulary *rubric.Vocabulary) CategoryMatches {
	found := newCategoryMatches()
	for _, c := range rubric.Categories {
		for _, group := range entry.Groups(c) {
			for _, family := range vocabulary.MatchingFamilies(group.Keywords) {
				for _, phrase := range family.Phrases() {
					if phrase.In(text) {
						found.add(c, group.Name, fmt.Sprintf("%s (semantic)", phrase))
					}
				}
			}
		}
	}
	return found
}

// findSynonyms records alternates of rubric keywords. They are reported but never scored.
func findSynonyms(text string, entry *rubric.Entry, vocabulary *rubric.Vocabulary) CategoryMatches {
	found := newCategoryMatches()
	for _, c := range rubric.Categories {
		for _, group := range entry.Groups(c) {
			for _, keyword := range group.Keywords {
				for _, phrase := range vocabulary.SynonymsFor(keyword) {
					if phrase.In(text) {
						found.add(c, group.Name, fmt.Sprintf("%s (synonym for %s)", phrase, keyword))
					}
				}
			}
		}
	}
	return found
}

// findPatterns runs the context patterns over the raw transcript and keeps every matched substring.
func findPatterns(raw string, entry *rubric.Entry) []string {
	found := []string{}
	for _, re := range entry.Patterns() {
		found = append(found, re.FindAllString(raw, -1)...)
	}
	return found
}

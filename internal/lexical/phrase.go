package lexical

// Phrase is a keyword or multi-word phrase prepared for whole-phrase matching.
// A phrase is present only when it is bounded by non-word runes or the text
// edges, so "art" is not found inside "party" and "sum" not inside "résumé".
type Phrase struct {
	raw        string
	normalized string
}

// Compile prepares phrase for repeated presence tests. The phrase goes through
// Normalize so that it is compared in the same form as the normalized transcript.
func Compile(phrase string) *Phrase {
	return &Phrase{raw: phrase, normalized: Normalize(phrase)}
}

// In reports whether the phrase occurs in normalized text.
func (p *Phrase) In(text string) bool {
	if p == nil {
		return false
	}
	return Occurrences(text, p.normalized) > 0
}

// String returns the phrase as it was written in the rubric.
func (p *Phrase) String() string {
	if p == nil {
		return ""
	}
	return p.raw
}

// Normalized returns the phrase in its normalized form.
func (p *Phrase) Normalized() string {
	if p == nil {
		return ""
	}
	return p.normalized
}

// Present is a one-off presence test of phrase in already normalized text.
func Present(text, phrase string) bool {
	return Compile(phrase).In(text)
}

package paper

import (
	"fmt"
	"strings"
	"unicode"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

var titleStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "on": true, "of": true,
	"for": true, "and": true, "to": true, "in": true, "with": true,
}

// NewRelationshipID returns a random relationship id such as "rel_3k9x0c2m1q8z".
func NewRelationshipID() (string, error) {
	id, err := gonanoid.Generate(idAlphabet, 12)
	if err != nil {
		return "", fmt.Errorf("failed to generate relationship id: %w", err)
	}
	return "rel_" + id, nil
}

// SuggestID derives a citation-key style id from the first author's surname,
// the year and the first significant title word, e.g. "vaswani2017attention".
func SuggestID(p Paper) string {
	var b strings.Builder
	if author := strings.Fields(p.FirstAuthor()); len(author) > 0 {
		b.WriteString(slugWord(author[len(author)-1]))
	}
	if p.Year > 0 {
		fmt.Fprintf(&b, "%d", p.Year)
	}
	for _, word := range strings.Fields(p.Title) {
		w := slugWord(word)
		if w == "" || titleStopWords[w] {
			continue
		}
		b.WriteString(w)
		break
	}
	if b.Len() == 0 {
		suffix, err := gonanoid.Generate(idAlphabet, 8)
		if err != nil {
			return "paper"
		}
		return "paper_" + suffix
	}
	return b.String()
}

// UniqueID appends a short random suffix to base when taken reports a clash.
func UniqueID(base string, taken func(string) bool) (string, error) {
	if !taken(base) {
		return base, nil
	}
	for i := 0; i < 8; i++ {
		suffix, err := gonanoid.Generate(idAlphabet, 4)
		if err != nil {
			return "", err
		}
		candidate := base + "_" + suffix
		if !taken(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not find a free id for %q", base)
}

func slugWord(word string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(word) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

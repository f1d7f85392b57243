package analyzer

import (
	"regexp"
	"strings"
)

var (
	wordRe     = regexp.MustCompile(`[A-Za-z']+`)
	sentenceRe = regexp.MustCompile(`[.!?]+`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// Tokenizer splits a document into word tokens and sentences and decides
// which words count as stopwords. Implementations must treat empty or
// whitespace-only input as valid and return empty results, never an error.
type Tokenizer interface {
	// Words returns maximal runs of ASCII letters (with embedded
	// apostrophes) in document order. Case is preserved.
	Words(text string) []string

	// Sentences splits on runs of sentence-terminal punctuation (.!?),
	// trims each fragment and drops empty ones. A trailing fragment
	// without terminal punctuation is still a sentence.
	Sentences(text string) []string

	// IsStopword reports whether a lowercase word is a function word
	// excluded from frequent-word and rare-word calculations.
	IsStopword(word string) bool
}

// NormalizeWhitespace collapses any run of whitespace (including newlines
// and tabs) to a single space and trims the ends.
func NormalizeWhitespace(text string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// RegexTokenizer is the default tokenizer. It defines the required
// behavior; richer tokenizers may refine its decisions but never depend
// on external resources for correctness.
type RegexTokenizer struct{}

func (RegexTokenizer) Words(text string) []string {
	return wordRe.FindAllString(NormalizeWhitespace(text), -1)
}

func (RegexTokenizer) Sentences(text string) []string {
	parts := sentenceRe.Split(NormalizeWhitespace(text), -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

func (RegexTokenizer) IsStopword(word string) bool {
	return basicStopwords[word]
}

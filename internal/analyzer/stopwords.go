package analyzer

import (
	_ "embed"
	"strings"
	"sync"
)

// basicStopwords is the minimal function-word set the engine is specified
// against. Frequent-word and rare-word behavior must hold with exactly
// this set when no lexicon is loaded.
var basicStopwords = wordSet(`
	the be to of and a in that have i it for not on with he as you do at this
	but his by from they we say her she or an will my one all would there their
	what so up out if about who get which go me
`)

func wordSet(words string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}

//go:embed stopwords.txt
var lexiconData string

var (
	lexiconOnce sync.Once
	lexiconSet  map[string]bool
)

// lexicon returns the extended stopword list, loaded once per process.
// Falls back to the basic set if the embedded list is unusable.
func lexicon() map[string]bool {
	lexiconOnce.Do(func() {
		set := make(map[string]bool)
		for _, line := range strings.Split(lexiconData, "\n") {
			word := strings.ToLower(strings.TrimSpace(line))
			if word == "" || strings.HasPrefix(word, "#") {
				continue
			}
			set[word] = true
		}
		if len(set) == 0 {
			set = basicStopwords
		}
		lexiconSet = set
	})
	return lexiconSet
}

// LexiconTokenizer refines RegexTokenizer's stopword decisions with an
// embedded function-word lexicon. Token and sentence extraction are
// unchanged, so the required contract still holds.
type LexiconTokenizer struct {
	RegexTokenizer
}

func (LexiconTokenizer) IsStopword(word string) bool {
	return lexicon()[word]
}

// ForName selects a tokenizer implementation by configuration name.
// Unknown names fall back to the regex tokenizer.
func ForName(name string) Tokenizer {
	if strings.EqualFold(name, "lexicon") {
		return LexiconTokenizer{}
	}
	return RegexTokenizer{}
}

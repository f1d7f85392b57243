package analyzer

import (
	"sort"
	"strings"
)

// asciiPunctuation mirrors the classic punctuation character class.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// StyleMetrics describes a single piece of writing. All fields are
// recomputed per call; nothing here has persistent identity.
type StyleMetrics struct {
	SentenceLengthAvg float64        `json:"sentence_length_avg"`
	SentenceLengthVar int            `json:"sentence_length_var"`
	VocabRichness     float64        `json:"vocab_richness"`
	FrequentWords     []string       `json:"frequent_words"`
	PunctuationUse    map[string]int `json:"punctuation_use"`
}

// Analyze computes style metrics using the default tokenizer.
func Analyze(text string) StyleMetrics {
	return AnalyzeWith(RegexTokenizer{}, text)
}

// AnalyzeWith computes style metrics for a document. It never fails:
// empty input yields zero metrics, and non-ASCII content simply doesn't
// contribute word tokens.
func AnalyzeWith(tok Tokenizer, text string) StyleMetrics {
	text = NormalizeWhitespace(text)

	sentences := tok.Sentences(text)
	lengths := make([]int, len(sentences))
	for i, s := range sentences {
		lengths[i] = len(tok.Words(s))
	}

	var avgLen float64
	varLen := 0
	if len(lengths) > 0 {
		sum, minLen, maxLen := 0, lengths[0], lengths[0]
		for _, n := range lengths {
			sum += n
			if n < minLen {
				minLen = n
			}
			if n > maxLen {
				maxLen = n
			}
		}
		avgLen = float64(sum) / float64(len(lengths))
		// Historical quirk: "variance" is the max-min range.
		varLen = maxLen - minLen
	}

	words := tok.Words(text)
	richness := 0.0
	if len(words) > 0 {
		types := make(map[string]bool, len(words))
		for _, w := range words {
			types[strings.ToLower(w)] = true
		}
		richness = float64(len(types)) / float64(len(words))
	}

	punct := make(map[string]int)
	for _, r := range text {
		if r < 128 && strings.ContainsRune(asciiPunctuation, r) {
			punct[string(r)]++
		}
	}

	return StyleMetrics{
		SentenceLengthAvg: round2(avgLen),
		SentenceLengthVar: varLen,
		VocabRichness:     round2(richness),
		FrequentWords:     frequentWords(tok, words, 5),
		PunctuationUse:    punct,
	}
}

// frequentWords returns the top-k most frequent lowercase non-stopword
// tokens, ties broken by first appearance in the document.
func frequentWords(tok Tokenizer, words []string, k int) []string {
	type entry struct {
		word  string
		count int
		first int
	}
	counts := make(map[string]*entry)
	order := make([]*entry, 0)
	for i, w := range words {
		w = strings.ToLower(w)
		if tok.IsStopword(w) {
			continue
		}
		e, ok := counts[w]
		if !ok {
			e = &entry{word: w, first: i}
			counts[w] = e
			order = append(order, e)
		}
		e.count++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].first < order[j].first
	})

	if len(order) > k {
		order = order[:k]
	}
	out := make([]string, len(order))
	for i, e := range order {
		out[i] = e.word
	}
	return out
}

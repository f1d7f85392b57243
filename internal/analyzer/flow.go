package analyzer

import (
	"math"
	"regexp"
	"strings"
)

// FlowMetrics are the fast lexical signals computed for a practice burst.
// All ratio fields and scores lie in [0,1]; empty input yields all zeros.
type FlowMetrics struct {
	WordCount        int     `json:"word_count"`
	VocabTypeCount   int     `json:"vocab_type_count"`
	VocabTTR         float64 `json:"vocab_ttr"`
	RepetitionRate   float64 `json:"repetition_rate"`
	PlayfulnessScore float64 `json:"playfulness_score"`
	ClarityScore     float64 `json:"clarity_score"`
	CreativityScore  float64 `json:"creativity_score"`
}

var (
	figurativeRe   = regexp.MustCompile(`\b(like|as if|as though)\b`)
	interjectionRe = regexp.MustCompile(`\b(hey|wow|ah|oh|hmm|ugh|ha)\b`)
	hedgeRe        = regexp.MustCompile(`\b(maybe|kind of|sort of|perhaps|somewhat|a bit)\b`)
	passiveCueRe   = regexp.MustCompile(`\b(be|been|being|is|was|were|are)\b\s+\b\w+ed\b`)
)

// playfulPunct is the fixed mark set counted for punctuation variety.
const playfulPunct = ",.—-:;!?()"

// AnalyzeFlow computes flow metrics using the default tokenizer.
func AnalyzeFlow(text string) FlowMetrics {
	return AnalyzeFlowWith(RegexTokenizer{}, text)
}

// AnalyzeFlowWith computes the flow heuristics. The three goal scores are
// deliberately explainable linear combinations of countable surface
// features so the numbers are reproducible and auditable.
func AnalyzeFlowWith(tok Tokenizer, text string) FlowMetrics {
	tokens := tok.Words(text)
	wordCount := len(tokens)
	if wordCount == 0 {
		return FlowMetrics{}
	}

	lower := make([]string, wordCount)
	types := make(map[string]bool, wordCount)
	for i, t := range tokens {
		lower[i] = strings.ToLower(t)
		types[lower[i]] = true
	}
	typeCount := len(types)
	ttr := float64(typeCount) / float64(wordCount)
	repetition := clamp01(1.0 - ttr)

	txtLower := strings.ToLower(text)

	// Playfulness: punctuation variety + figurative markers + interjections
	// + lexical variety.
	variety := 0
	for _, mark := range playfulPunct {
		if strings.ContainsRune(text, mark) {
			variety++
		}
	}
	figurative := len(figurativeRe.FindAllString(txtLower, -1))
	interjections := len(interjectionRe.FindAllString(txtLower, -1))
	playfulness := clamp01(
		0.15*float64(min(variety, 6)) +
			0.2*float64(figurative) +
			0.1*float64(interjections) +
			0.6*clamp01(ttr/0.6))

	// Clarity: sentences near 18 words, few hedges, few passive cues.
	hedges := len(hedgeRe.FindAllString(txtLower, -1))
	sentences := tok.Sentences(text)
	avgSentLen := 0.0
	if len(sentences) > 0 {
		total := 0
		for _, s := range sentences {
			total += len(tok.Words(s))
		}
		avgSentLen = float64(total) / float64(len(sentences))
	}
	passiveCues := len(passiveCueRe.FindAllString(txtLower, -1))
	clarity := clamp01(
		0.6*clamp01(1.0-math.Max(0, avgSentLen-18.0)/22.0) +
			0.25*clamp01(1.0-float64(hedges)/4.0) +
			0.15*clamp01(1.0-float64(passiveCues)/3.0))

	// Creativity: rare-ish words + lexical variety. A rare word is a
	// non-stopword token longer than 6 characters.
	rare := 0
	for _, w := range lower {
		if len(w) > 6 && !tok.IsStopword(w) {
			rare++
		}
	}
	rareRate := float64(rare) / float64(wordCount)
	creativity := clamp01(0.7*clamp01(rareRate/0.15) + 0.3*clamp01(ttr/0.6))

	return FlowMetrics{
		WordCount:        wordCount,
		VocabTypeCount:   typeCount,
		VocabTTR:         round4(ttr),
		RepetitionRate:   round4(repetition),
		PlayfulnessScore: round4(playfulness),
		ClarityScore:     round4(clarity),
		CreativityScore:  round4(creativity),
	}
}

func clamp01(x float64) float64 {
	return math.Max(0.0, math.Min(1.0, x))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}

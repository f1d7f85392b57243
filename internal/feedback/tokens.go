package feedback

import "strings"

// EstimateTokens gives a rough token count using a words-based heuristic.
// Prompt budgeting only needs ballpark numbers, not exact tokenization.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	// Roughly 1.33 tokens per word for English text.
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// FitExcerpt trims a sample so the whole anchor set stays inside a token
// budget when several excerpts are packed together.
func FitExcerpt(text string, budgetTokens int) string {
	if budgetTokens <= 0 {
		return ""
	}
	if EstimateTokens(text) <= budgetTokens {
		return strings.TrimSpace(text)
	}
	// ~0.75 words per token, inverse of the estimate above.
	maxWords := int(float64(budgetTokens) * 0.75)
	fields := strings.Fields(text)
	if maxWords >= len(fields) {
		return strings.TrimSpace(text)
	}
	if maxWords < 1 {
		maxWords = 1
	}
	return strings.Join(fields[:maxWords], " ") + "…"
}

package feedback

import "strings"

// InferIntention guesses what the writer is trying to do from surface
// cues. Intentionally coarse; it labels a writing, it doesn't judge it.
func InferIntention(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(text, "?"):
		return "inquisitive"
	case containsAny(lower, "i think", "maybe", "perhaps", "wonder"):
		return "exploratory"
	case containsAny(lower, "should", "must", "need to", "important"):
		return "persuasive"
	case containsAny(lower, "i feel", "i'm", "sad", "happy", "excited"):
		return "expressive"
	default:
		return "descriptive"
	}
}

// InferEnergy maps average sentence length onto a pacing label.
func InferEnergy(avgSentenceLength float64) string {
	switch {
	case avgSentenceLength >= 22:
		return "calm/expansive"
	case avgSentenceLength >= 15:
		return "steady"
	default:
		return "brisk"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

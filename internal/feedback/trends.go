package feedback

import (
	"fmt"
	"strings"

	"github.com/underwriterhq/underwriter/internal/analyzer"
)

// Baseline is the slice of a style profile the outlier check compares
// against: how many writings it averages over and the two tracked means.
type Baseline struct {
	Count             int
	AvgSentenceLength float64
	VocabRichness     float64
}

// DetectOutliers compares fresh metrics with a user's running averages
// and returns reader-facing observations. With fewer than three prior
// writings there is no baseline worth comparing to.
func DetectOutliers(m analyzer.StyleMetrics, b Baseline) []string {
	if b.Count < 3 {
		return []string{"Building baseline profile; few comparisons available yet."}
	}

	var out []string
	if diff := m.SentenceLengthAvg - b.AvgSentenceLength; diff > 5 {
		out = append(out, fmt.Sprintf("Your sentences are longer than usual (%.1f vs %.1f) — feels reflective.", m.SentenceLengthAvg, b.AvgSentenceLength))
	} else if diff < -5 {
		out = append(out, fmt.Sprintf("Your sentences are shorter than usual (%.1f vs %.1f) — feels more direct.", m.SentenceLengthAvg, b.AvgSentenceLength))
	}

	if m.VocabRichness > b.VocabRichness+0.05 {
		out = append(out, "More diverse vocabulary than usual — feels exploratory.")
	} else if m.VocabRichness < b.VocabRichness-0.05 {
		out = append(out, "Simpler vocabulary than usual — reads cleaner but less nuanced.")
	}
	return out
}

// GoalDelta is one goal's movement against the rolling baseline.
type GoalDelta struct {
	Goal  string
	Delta float64
}

// FormatTrends renders goal deltas as the compact summary fed back into
// FlowState prompts, e.g. "Clarity +0.07; Playfulness -0.02".
func FormatTrends(deltas []GoalDelta) string {
	if len(deltas) == 0 {
		return "no active goal trend"
	}
	parts := make([]string, 0, len(deltas))
	for _, d := range deltas {
		sign := ""
		if d.Delta >= 0 {
			sign = "+"
		}
		parts = append(parts, fmt.Sprintf("%s %s%.2f", capitalize(d.Goal), sign, d.Delta))
	}
	return strings.Join(parts, "; ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

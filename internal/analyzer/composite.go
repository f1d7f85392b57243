package analyzer

// Goal names a user may focus a practice burst on.
const (
	GoalPlayfulness = "playfulness"
	GoalClarity     = "clarity"
	GoalCreativity  = "creativity"
)

// ScoreForGoal returns the flow score matching a goal name, and whether
// the name is recognized.
func ScoreForGoal(m FlowMetrics, goal string) (float64, bool) {
	switch goal {
	case GoalPlayfulness:
		return m.PlayfulnessScore, true
	case GoalClarity:
		return m.ClarityScore, true
	case GoalCreativity:
		return m.CreativityScore, true
	}
	return 0, false
}

// Composite produces the explainable burst score, baselined at 100:
// a words-per-minute reward (up to 40 wpm), a lexical-diversity reward,
// the average of the selected goal scores, and a repetition penalty.
// Negative elapsed time is treated as no rate signal; unrecognized goal
// names are ignored. No final clamp is applied on purpose.
func Composite(elapsedSeconds float64, m FlowMetrics, goalFocus []string) float64 {
	wpm := 0.0
	if elapsedSeconds > 0 {
		wpm = 60.0 * float64(m.WordCount) / elapsedSeconds
	}

	goalSum, goalN := 0.0, 0
	for _, g := range goalFocus {
		if s, ok := ScoreForGoal(m, g); ok {
			goalSum += s
			goalN++
		}
	}
	goalAvg := 0.0
	if goalN > 0 {
		goalAvg = goalSum / float64(goalN)
	}

	score := 100.0 +
		10.0*clamp01(wpm/40.0) +
		20.0*clamp01(m.VocabTTR/0.6) +
		20.0*clamp01(goalAvg) -
		10.0*clamp01(m.RepetitionRate*2.0)
	return round2(score)
}

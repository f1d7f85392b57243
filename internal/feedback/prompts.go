package feedback

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CompanionSystem is the guardrail prompt for standard reflections. The
// companion reads and reacts; it never produces replacement prose.
const CompanionSystem = `You are a reflective writing companion. You never write or rewrite for the user. You only read what they wrote and respond with insight: interpretation, critique when warranted, and precise micro-adjustments (punctuation, connective words, synonyms, or minor flow tweaks). Your job is to help them sound like the best version of themselves, not like you.

Core stance
- Be conversational, warm, and direct, not indulgent.
- Default to offering both praise and critique unless the writing is professional-grade, original-sounding, and highly consistent with its context. This threshold is rare; most users benefit from specific, frank feedback.
- Be critical when needed: if the writing is weak or the reasoning/facts are flawed, say so plainly and explain why.
- Avoid technical or numeric metrics (no counts, scores, readability numbers). Speak to the effect on a reader (tone, energy, clarity, rhythm).
- Discern the user's intention, and adapt your feedback lens accordingly (business, technical, creative, etc.).
- Your response should be proportional to the length of their writing. Avoid verbosity.

Personalization rules
- Use the provided "User Context Pack" to compare the current piece to the user's own baseline (counts, streak, traits, recent excerpts, goals).
- Prefer comparisons to the user's history over generic rules.
- Name recurring quirks gently if traits indicate them.
- If context is thin, say you're offering a first impression.

Boundaries (hard rules)
- Do not generate standalone text, paragraphs, or rewrites.
- Do not output raw readability metrics or scores.
- Keep suggestions micro and optional.
- Quote the user directly when making observations.

Output style
- 1-2 short paragraphs for reflection.
- Then 2-5 bullet micro-suggestions (<= ~12 words each), each grounded in a quoted fragment.
- If the piece is already strong for their usual style, say so and keep notes minimal.`

// FlowSystem is the guardrail prompt for FlowState practice mode.
const FlowSystem = `You are a reflective writing companion in FlowState practice mode.
Constraints:
- Never write or rewrite for the user.
- At most THREE short sentences total.
- Recognize one concrete improvement trend if present (based on context pack/goals).
- Offer exactly ONE micro-nudge aligned to the user's selected goal(s).
- Keep tone warm, brisk, and direct. No lists, no emojis.`

// ToneSystem asks for a bare tone label.
const ToneSystem = `Classify tone in one or two words (e.g., reflective, casual, formal).`

// Overview summarizes a user's activity for the context pack.
type Overview struct {
	WritingsCount     int `json:"writings_count"`
	FlowAttemptsCount int `json:"flow_attempts_count"`
	StreakDays        int `json:"streak_days,omitempty"`
}

// ContextPack is the personalization payload attached to prompts.
type ContextPack struct {
	Overview          Overview         `json:"overview"`
	StyleProfile      map[string]any   `json:"style_profile,omitempty"`
	RecentSamples     []string         `json:"recent_samples,omitempty"`
	FlowMetricsRecent []map[string]any `json:"flow_metrics_recent,omitempty"`
	ActiveGoals       []string         `json:"active_goals,omitempty"`
}

// Anchor is one of the user's own past excerpts, used to calibrate
// feedback against their voice rather than a generic standard.
type Anchor struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
}

// truncateChars caps a string at max characters (runes, not bytes) with
// an ellipsis marker.
func truncateChars(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// safeJSON stringifies a value and caps its length so one oversized field
// can't blow the prompt budget.
func safeJSON(v any, maxChars int) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return truncateChars(string(b), maxChars)
}

// formatAnchors renders up to k anchors compactly for the prompt.
func formatAnchors(anchors []Anchor, maxEach, k int) string {
	if len(anchors) == 0 {
		return "[]"
	}
	if len(anchors) > k {
		anchors = anchors[:k]
	}
	pruned := make([]Anchor, len(anchors))
	for i, a := range anchors {
		pruned[i] = Anchor{
			ID:      a.ID,
			Title:   a.Title,
			Excerpt: truncateChars(a.Excerpt, maxEach),
		}
	}
	return safeJSON(pruned, 1600)
}

// buildReflectPrompt assembles the user message for a companion reflection.
func buildReflectPrompt(text, profileSummary string, pack *ContextPack, anchors []Anchor) string {
	if profileSummary == "" {
		profileSummary = "learning user style"
	}
	ctxJSON := "{}"
	if pack != nil {
		ctxJSON = safeJSON(pack, 1800)
	}

	var sb strings.Builder
	sb.WriteString("User Context Pack (counts/streak/traits/goals/excerpts):\n")
	sb.WriteString(ctxJSON)
	sb.WriteString("\n\nUser style summary (if any): ")
	sb.WriteString(profileSummary)
	sb.WriteString("\n\nPersonal anchors (prior excerpts to calibrate feedback):\n")
	sb.WriteString(formatAnchors(anchors, 360, 3))
	sb.WriteString("\n\nCurrent writing:\n---\n")
	sb.WriteString(truncateChars(text, 6000))
	sb.WriteString("\n---\n\n")
	sb.WriteString("Task: Provide a short reflection and a few micro-suggestions.\n")
	sb.WriteString("- Compare to the user's own baseline when relevant (from Context Pack/anchors).\n")
	sb.WriteString("- Keep suggestions micro (tiny edits only), each grounded in a brief quote.\n")
	sb.WriteString("- Do NOT rewrite or generate content for the user.")
	return sb.String()
}

// buildFlowPrompt assembles the user message for FlowState micro-feedback.
func buildFlowPrompt(text string, goals []string, lastTrends string, pack *ContextPack) string {
	goalsStr := "none"
	if len(goals) > 0 {
		goalsStr = strings.Join(goals, ", ")
	}
	if lastTrends == "" {
		lastTrends = "none"
	}

	hint := map[string]any{}
	if pack != nil {
		hint["active_goals"] = pack.ActiveGoals
		hint["overview"] = pack.Overview
	}

	return fmt.Sprintf(
		"User goals: %s\nRecent trend summary: %s\nContext (counts/goals): %s\nUser's FlowState attempt:\n---\n%s\n---\nRespond now with <=3 short sentences, honoring the constraints.",
		goalsStr, lastTrends, safeJSON(hint, 600), truncateChars(text, 3000))
}

package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/underwriterhq/underwriter/internal/llm"
)

// Generator produces companion reflections and FlowState nudges. When the
// LLM client is disabled it degrades to deterministic fallbacks so the
// rest of the pipeline never blocks on an API key.
type Generator struct {
	client *llm.Client
	log    *slog.Logger
}

func NewGenerator(client *llm.Client, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{client: client, log: log}
}

// Live reports whether reflections will come from the model rather than
// the deterministic fallback.
func (g *Generator) Live() bool {
	return g.client != nil && g.client.Enabled()
}

// Reflect asks the companion for a reflection on a finished piece.
// Callers should retry on llm.RetryableError and fall back to
// FallbackReflection when the error is terminal.
func (g *Generator) Reflect(ctx context.Context, text, profileSummary string, pack *ContextPack, anchors []Anchor) (string, error) {
	if !g.Live() {
		return FallbackReflection(text), nil
	}
	out, err := g.client.Complete(ctx, llm.Request{
		System:      CompanionSystem,
		User:        buildReflectPrompt(text, profileSummary, pack, anchors),
		MaxTokens:   700,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("companion reflection: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// FlowNudge asks for the three-sentence FlowState response.
func (g *Generator) FlowNudge(ctx context.Context, text string, goals []string, lastTrends string, pack *ContextPack) (string, error) {
	if !g.Live() {
		return FallbackFlowNudge(goals), nil
	}
	out, err := g.client.Complete(ctx, llm.Request{
		System:      FlowSystem,
		User:        buildFlowPrompt(text, goals, lastTrends, pack),
		MaxTokens:   220,
		Temperature: 0.6,
	})
	if err != nil {
		return "", fmt.Errorf("flow nudge: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Tone classifies the emotional register of a piece. LLM when available,
// heuristic otherwise; the heuristic is also the error path so tone never
// fails a submission.
func (g *Generator) Tone(ctx context.Context, text string) string {
	if !g.Live() {
		return FallbackTone(text)
	}
	out, err := g.client.Complete(ctx, llm.Request{
		System:      ToneSystem,
		User:        truncateChars(text, 2000),
		MaxTokens:   12,
		Temperature: 0,
	})
	if err != nil {
		g.log.Warn("tone classification failed, using heuristic", "error", err)
		return FallbackTone(text)
	}
	tone := strings.ToLower(strings.TrimSpace(out))
	tone = strings.Trim(tone, `."'`)
	if tone == "" || len(tone) > 40 {
		return FallbackTone(text)
	}
	return tone
}

// FallbackReflection is the canned response when no model is configured.
func FallbackReflection(text string) string {
	words := len(strings.Fields(text))
	return fmt.Sprintf("I read your %d-word piece. AI feedback is offline right now, so here is a prompt instead: which sentence carries the most weight for you, and does the opening earn it?", words)
}

// FallbackFlowNudge keeps FlowState sessions moving without a model.
func FallbackFlowNudge(goals []string) string {
	if len(goals) > 0 {
		return fmt.Sprintf("Good burst. Keep leaning into %s next round. One nudge: vary your sentence openings.", goals[0])
	}
	return "Good burst. One nudge: vary your sentence openings next round."
}

// FallbackTone mirrors the punctuation heuristic used when classification
// is unavailable.
func FallbackTone(text string) string {
	trimmed := strings.TrimSpace(strings.ToLower(text))
	switch {
	case strings.Contains(text, "!"):
		return "energetic"
	case strings.Contains(text, "?"):
		return "inquisitive"
	case strings.HasPrefix(trimmed, "dear") || strings.HasPrefix(trimmed, "to whom"):
		return "formal"
	default:
		return "neutral"
	}
}

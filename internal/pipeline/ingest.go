package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/underwriterhq/underwriter/internal/analyzer"
	"github.com/underwriterhq/underwriter/internal/feedback"
	"github.com/underwriterhq/underwriter/internal/store"
)

// Ingestor runs the analyze/reflect/store sequence for one writing. The
// HTTP layer uses it directly for pasted text; the worker uses it for
// uploaded files after parsing.
type Ingestor struct {
	store            *store.Store
	gen              *feedback.Generator
	tok              analyzer.Tokenizer
	log              *slog.Logger
	snapshotInterval int
}

func NewIngestor(st *store.Store, gen *feedback.Generator, tok analyzer.Tokenizer, log *slog.Logger, snapshotInterval int) *Ingestor {
	if log == nil {
		log = slog.Default()
	}
	if snapshotInterval <= 0 {
		snapshotInterval = 5
	}
	return &Ingestor{
		store:            st,
		gen:              gen,
		tok:              tok,
		log:              log,
		snapshotInterval: snapshotInterval,
	}
}

// IngestResult is everything produced for one submitted writing.
type IngestResult struct {
	Writing      store.Writing  `json:"writing"`
	Insight      store.Insight  `json:"insight"`
	Feedback     store.Feedback `json:"feedback"`
	Observations []string       `json:"observations"`
	Live         bool           `json:"feedback_live"`
}

// Ingest analyzes a writing, asks the companion for a reflection, and
// persists everything. Reflection failures degrade to the deterministic
// fallback; only storage failures surface as errors.
func (ing *Ingestor) Ingest(ctx context.Context, userID, title, text string, meta map[string]any) (IngestResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return IngestResult{}, fmt.Errorf("ingest: empty text")
	}

	log := ing.log.With("user_id", userID)

	metrics := analyzer.AnalyzeWith(ing.tok, text)
	tone := ing.gen.Tone(ctx, text)
	intention := feedback.InferIntention(text)
	energy := feedback.InferEnergy(metrics.SentenceLengthAvg)

	profile, err := ing.store.GetProfile(ctx, userID)
	if err != nil {
		log.Warn("profile load failed, feedback will be generic", "error", err)
		profile = store.StyleProfile{UserID: userID}
	}
	observations := feedback.DetectOutliers(metrics, feedback.Baseline{
		Count:             profile.Count,
		AvgSentenceLength: profile.AvgSentenceLength,
		VocabRichness:     profile.VocabRichness,
	})

	pack, anchors := ing.buildContext(ctx, userID, profile)

	reflection, live := ing.reflectWithRetry(ctx, text, profile.Summary, pack, anchors)

	writing, err := ing.store.SaveWriting(ctx, store.Writing{
		UserID:   userID,
		Title:    title,
		Text:     text,
		Metadata: meta,
	})
	if err != nil {
		return IngestResult{}, fmt.Errorf("save writing: %w", err)
	}

	insight, err := ing.store.InsertInsight(ctx, store.Insight{
		WritingID:        writing.ID,
		Intention:        intention,
		Tone:             tone,
		Energy:           energy,
		Observations:     strings.Join(observations, " "),
		MicroSuggestions: []string{},
		Metrics: map[string]any{
			"sentence_length_avg": metrics.SentenceLengthAvg,
			"sentence_length_var": metrics.SentenceLengthVar,
			"vocab_richness":      metrics.VocabRichness,
			"frequent_words":      metrics.FrequentWords,
			"punctuation_use":     metrics.PunctuationUse,
		},
	})
	if err != nil {
		return IngestResult{}, fmt.Errorf("insert insight: %w", err)
	}

	fb, err := ing.store.InsertFeedback(ctx, store.Feedback{
		WritingID: writing.ID,
		Feedback:  reflection,
		Mode:      "spotlight",
	})
	if err != nil {
		return IngestResult{}, fmt.Errorf("insert feedback: %w", err)
	}

	if _, err := ing.store.MergeProfile(ctx, userID, metrics.SentenceLengthAvg, metrics.VocabRichness, metrics.FrequentWords); err != nil {
		log.Warn("profile merge failed", "error", err)
	}

	ing.maybeSnapshot(ctx, userID, tone, intention, energy)

	return IngestResult{
		Writing:      writing,
		Insight:      insight,
		Feedback:     fb,
		Observations: observations,
		Live:         live,
	}, nil
}

// reflectWithRetry retries transient LLM failures with backoff, then
// degrades to the fallback reflection.
func (ing *Ingestor) reflectWithRetry(ctx context.Context, text, summary string, pack *feedback.ContextPack, anchors []feedback.Anchor) (string, bool) {
	var reflection string
	var lastErr error
	for attempt := range MaxRetries {
		reflection, lastErr = ing.gen.Reflect(ctx, text, summary, pack, anchors)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		ing.log.Warn("retryable reflection error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			lastErr = ctx.Err()
		}
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr != nil {
		ing.log.Warn("reflection unavailable, using fallback", "error", lastErr)
		return feedback.FallbackReflection(text), false
	}
	return reflection, ing.gen.Live()
}

// buildContext assembles the personalization payload from the user's
// history: activity counts, the running profile, and a few recent
// excerpts that double as anchors.
func (ing *Ingestor) buildContext(ctx context.Context, userID string, profile store.StyleProfile) (*feedback.ContextPack, []feedback.Anchor) {
	writingsCount, err := ing.store.CountWritings(ctx, userID)
	if err != nil {
		writingsCount = profile.Count
	}
	attemptsCount, err := ing.store.CountFlowAttempts(ctx, userID)
	if err != nil {
		attemptsCount = 0
	}

	pack := &feedback.ContextPack{
		Overview: feedback.Overview{
			WritingsCount:     writingsCount,
			FlowAttemptsCount: attemptsCount,
		},
	}
	if profile.Count > 0 {
		pack.StyleProfile = map[string]any{
			"summary":             profile.Summary,
			"count":               profile.Count,
			"avg_sentence_length": profile.AvgSentenceLength,
			"vocab_richness":      profile.VocabRichness,
			"frequent_words":      profile.FrequentWords,
		}
	}

	recent, err := ing.store.ListWritings(ctx, userID, 3)
	if err != nil {
		return pack, nil
	}
	anchors := make([]feedback.Anchor, 0, len(recent))
	for _, w := range recent {
		excerpt := feedback.FitExcerpt(w.Text, 120)
		pack.RecentSamples = append(pack.RecentSamples, excerpt)
		anchors = append(anchors, feedback.Anchor{ID: w.ID, Title: w.Title, Excerpt: excerpt})
	}
	return pack, anchors
}

// maybeSnapshot records a style snapshot on every Nth writing.
func (ing *Ingestor) maybeSnapshot(ctx context.Context, userID, tone, intention, energy string) {
	total, err := ing.store.CountWritings(ctx, userID)
	if err != nil || total == 0 || total%ing.snapshotInterval != 0 {
		return
	}
	snap := fmt.Sprintf("By entry %d, tone leans '%s' with '%s' intent; energy '%s'.", total, tone, intention, energy)
	if err := ing.store.SetProfileSummary(ctx, userID, snap, map[string]any{}); err != nil {
		ing.log.Warn("profile summary update failed", "error", err)
	}
	if err := ing.store.InsertSnapshot(ctx, userID, snap, map[string]any{}); err != nil {
		ing.log.Warn("snapshot insert failed", "error", err)
	}
}

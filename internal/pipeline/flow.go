package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/underwriterhq/underwriter/internal/analyzer"
	"github.com/underwriterhq/underwriter/internal/feedback"
	"github.com/underwriterhq/underwriter/internal/store"
)

// FlowService scores FlowState attempts and persists the results.
type FlowService struct {
	store        *store.Store
	gen          *feedback.Generator
	tok          analyzer.Tokenizer
	log          *slog.Logger
	baselineDays int
}

func NewFlowService(st *store.Store, gen *feedback.Generator, tok analyzer.Tokenizer, log *slog.Logger, baselineDays int) *FlowService {
	if log == nil {
		log = slog.Default()
	}
	if baselineDays <= 0 {
		baselineDays = 7
	}
	return &FlowService{store: st, gen: gen, tok: tok, log: log, baselineDays: baselineDays}
}

// AttemptInput is one submitted practice burst.
type AttemptInput struct {
	SessionID      string   `json:"session_id"`
	UserID         string   `json:"user_id"`
	Text           string   `json:"text"`
	ElapsedSeconds float64  `json:"elapsed_seconds"`
	GoalFocus      []string `json:"goal_focus"`
}

// AttemptResult bundles everything computed for one attempt.
type AttemptResult struct {
	Attempt  store.FlowAttempt    `json:"attempt"`
	Metrics  store.FlowMetricsRow `json:"metrics"`
	Trends   []feedback.GoalDelta `json:"trends"`
	Summary  string               `json:"trend_summary"`
	Feedback string               `json:"feedback"`
	Live     bool                 `json:"feedback_live"`
}

// knownGoals are the scorable goal names; anything else is dropped.
var knownGoals = map[string]bool{
	analyzer.GoalPlayfulness: true,
	analyzer.GoalClarity:     true,
	analyzer.GoalCreativity:  true,
}

func normalizeGoals(goals []string) []string {
	out := make([]string, 0, len(goals))
	seen := map[string]bool{}
	for _, g := range goals {
		g = strings.ToLower(strings.TrimSpace(g))
		if knownGoals[g] && !seen[g] {
			out = append(out, g)
			seen[g] = true
		}
	}
	return out
}

// SubmitAttempt scores one burst, computes goal trends against the
// rolling baseline, asks for micro-feedback, and persists all of it.
func (f *FlowService) SubmitAttempt(ctx context.Context, in AttemptInput) (AttemptResult, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return AttemptResult{}, fmt.Errorf("flow attempt: user_id is required")
	}

	session, err := f.store.GetFlowSession(ctx, in.SessionID)
	if err != nil {
		return AttemptResult{}, fmt.Errorf("flow attempt: %w", err)
	}

	goals := normalizeGoals(in.GoalFocus)
	if len(goals) == 0 {
		goals = normalizeGoals(session.GoalFocus)
	}

	elapsed := in.ElapsedSeconds
	if elapsed < 0 {
		elapsed = 0
	}

	metrics := analyzer.AnalyzeFlowWith(f.tok, in.Text)
	composite := analyzer.Composite(elapsed, metrics, goals)

	wpm := 0.0
	if elapsed > 0 {
		wpm = math.Round(float64(metrics.WordCount)/(elapsed/60)*100) / 100
	}

	now := time.Now()
	attempt, err := f.store.InsertFlowAttempt(ctx, store.FlowAttempt{
		SessionID:    session.ID,
		UserID:       in.UserID,
		ResponseText: in.Text,
		StartedAt:    now.Add(-time.Duration(elapsed * float64(time.Second))),
		EndedAt:      now,
		Meta:         map[string]any{"goal_focus": goals},
	})
	if err != nil {
		return AttemptResult{}, fmt.Errorf("insert attempt: %w", err)
	}

	// Trends compare against the rolling baseline before this attempt
	// lands in it.
	trends := f.goalTrends(ctx, in.UserID, goals, metrics)

	row, err := f.store.InsertFlowMetrics(ctx, store.FlowMetricsRow{
		AttemptID:        attempt.ID,
		UserID:           in.UserID,
		ElapsedSeconds:   elapsed,
		WordCount:        metrics.WordCount,
		WPM:              wpm,
		VocabTypeCount:   metrics.VocabTypeCount,
		VocabTTR:         metrics.VocabTTR,
		RepetitionRate:   metrics.RepetitionRate,
		PlayfulnessScore: metrics.PlayfulnessScore,
		ClarityScore:     metrics.ClarityScore,
		CreativityScore:  metrics.CreativityScore,
		CompositeScore:   composite,
	})
	if err != nil {
		return AttemptResult{}, fmt.Errorf("insert metrics: %w", err)
	}

	summary := feedback.FormatTrends(trends)
	pack := f.buildContext(ctx, in.UserID, goals)
	fb, live := f.nudgeWithRetry(ctx, in.Text, goals, summary, pack)
	if err := f.store.InsertFlowFeedback(ctx, attempt.ID, in.UserID, fb); err != nil {
		f.log.Warn("flow feedback insert failed", "error", err)
	}

	return AttemptResult{
		Attempt:  attempt,
		Metrics:  row,
		Trends:   trends,
		Summary:  summary,
		Feedback: fb,
		Live:     live,
	}, nil
}

// goalTrends computes each focused goal's delta against the user's
// rolling baseline. A missing baseline counts as zero, so first attempts
// read as straight gains.
func (f *FlowService) goalTrends(ctx context.Context, userID string, goals []string, m analyzer.FlowMetrics) []feedback.GoalDelta {
	var out []feedback.GoalDelta
	for _, goal := range goals {
		val, ok := analyzer.ScoreForGoal(m, goal)
		if !ok {
			continue
		}
		baseline, found, err := f.store.MetricBaseline(ctx, userID, goal+"_score", f.baselineDays)
		if err != nil {
			f.log.Warn("baseline lookup failed", "metric", goal, "error", err)
		}
		if !found {
			baseline = 0
		}
		out = append(out, feedback.GoalDelta{
			Goal:  goal,
			Delta: math.Round((val-baseline)*10000) / 10000,
		})
	}
	return out
}

// buildContext gives the nudge prompt a compact view of recent practice.
func (f *FlowService) buildContext(ctx context.Context, userID string, goals []string) *feedback.ContextPack {
	pack := &feedback.ContextPack{ActiveGoals: goals}
	count, err := f.store.CountFlowAttempts(ctx, userID)
	if err == nil {
		pack.Overview.FlowAttemptsCount = count
	}
	recent, err := f.store.RecentFlowMetrics(ctx, userID, 5)
	if err != nil {
		return pack
	}
	for _, m := range recent {
		pack.FlowMetricsRecent = append(pack.FlowMetricsRecent, map[string]any{
			"wpm":               m.WPM,
			"vocab_ttr":         m.VocabTTR,
			"playfulness_score": m.PlayfulnessScore,
			"clarity_score":     m.ClarityScore,
			"creativity_score":  m.CreativityScore,
			"composite_score":   m.CompositeScore,
		})
	}
	return pack
}

func (f *FlowService) nudgeWithRetry(ctx context.Context, text string, goals []string, trendSummary string, pack *feedback.ContextPack) (string, bool) {
	var fb string
	var lastErr error
	for attempt := range MaxRetries {
		fb, lastErr = f.gen.FlowNudge(ctx, text, goals, trendSummary, pack)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		f.log.Warn("retryable flow feedback error", "attempt", attempt, "error", lastErr)
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
		f.log.Warn("flow feedback unavailable, using fallback", "error", lastErr)
		return feedback.FallbackFlowNudge(goals), false
	}
	return fb, f.gen.Live()
}

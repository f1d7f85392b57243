package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "underwriter.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestWritingRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	w, err := s.SaveWriting(ctx, Writing{UserID: "u1", Title: "Draft", Text: "Hello world."})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if w.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := s.GetWriting(ctx, w.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Text != "Hello world." || got.Title != "Draft" || got.UserID != "u1" {
		t.Errorf("unexpected writing: %+v", got)
	}

	n, err := s.CountWritings(ctx, "u1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 writing, got %d", n)
	}
}

func TestListWritingsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, text := range []string{"first", "second", "third"} {
		if _, err := s.SaveWriting(ctx, Writing{UserID: "u1", Text: text}); err != nil {
			t.Fatalf("save %q: %v", text, err)
		}
	}

	list, err := s.ListWritings(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 writings, got %d", len(list))
	}
	if list[0].Text != "third" || list[2].Text != "first" {
		t.Errorf("expected newest first, got %q .. %q", list[0].Text, list[2].Text)
	}
}

func TestInsightAndFeedbackRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	w, _ := s.SaveWriting(ctx, Writing{UserID: "u1", Text: "text"})
	_, err := s.InsertInsight(ctx, Insight{
		WritingID:        w.ID,
		Intention:        "exploratory",
		Tone:             "reflective",
		Energy:           "steady",
		MicroSuggestions: []string{"trim the opener"},
		Metrics:          map[string]any{"avg_sentence_len": 12.5},
	})
	if err != nil {
		t.Fatalf("insert insight: %v", err)
	}

	insights, err := s.ListInsights(ctx, w.ID)
	if err != nil {
		t.Fatalf("list insights: %v", err)
	}
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	if insights[0].Tone != "reflective" {
		t.Errorf("expected tone reflective, got %q", insights[0].Tone)
	}
	if len(insights[0].MicroSuggestions) != 1 {
		t.Errorf("expected suggestions to round-trip, got %v", insights[0].MicroSuggestions)
	}

	if _, err := s.InsertFeedback(ctx, Feedback{WritingID: w.ID, Feedback: "Nice cadence."}); err != nil {
		t.Fatalf("insert feedback: %v", err)
	}
	fbs, err := s.ListFeedback(ctx, w.ID)
	if err != nil {
		t.Fatalf("list feedback: %v", err)
	}
	if len(fbs) != 1 || fbs[0].Mode != "spotlight" {
		t.Errorf("expected default spotlight mode, got %+v", fbs)
	}
}

func TestFlowSessionAttemptMetrics(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sess, err := s.CreateFlowSession(ctx, FlowSession{
		UserID:          "u1",
		Mode:            "timed",
		DurationSeconds: 90,
		GoalFocus:       []string{"clarity"},
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	got, err := s.GetFlowSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Mode != "timed" || len(got.GoalFocus) != 1 || got.GoalFocus[0] != "clarity" {
		t.Errorf("unexpected session: %+v", got)
	}

	att, err := s.InsertFlowAttempt(ctx, FlowAttempt{
		SessionID:    sess.ID,
		UserID:       "u1",
		ResponseText: "burst text",
	})
	if err != nil {
		t.Fatalf("insert attempt: %v", err)
	}

	_, err = s.InsertFlowMetrics(ctx, FlowMetricsRow{
		AttemptID: att.ID, UserID: "u1",
		ElapsedSeconds: 60, WordCount: 40, WPM: 40,
		VocabTTR: 0.6, ClarityScore: 0.8, CompositeScore: 142,
	})
	if err != nil {
		t.Fatalf("insert metrics: %v", err)
	}

	recent, err := s.RecentFlowMetrics(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("recent metrics: %v", err)
	}
	if len(recent) != 1 || recent[0].CompositeScore != 142 {
		t.Errorf("unexpected recent metrics: %+v", recent)
	}

	n, err := s.CountFlowAttempts(ctx, "u1")
	if err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 attempt, got %d", n)
	}
}

func TestMetricBaseline(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, score := range []float64{0.2, 0.4, 0.6} {
		_, err := s.InsertFlowMetrics(ctx, FlowMetricsRow{
			AttemptID: "a", UserID: "u1", ClarityScore: score,
		})
		if err != nil {
			t.Fatalf("insert metrics: %v", err)
		}
	}

	avg, ok, err := s.MetricBaseline(ctx, "u1", "clarity_score", 7)
	if err != nil {
		t.Fatalf("baseline: %v", err)
	}
	if !ok {
		t.Fatal("expected baseline data")
	}
	if math.Abs(avg-0.4) > 1e-9 {
		t.Errorf("expected baseline 0.4, got %v", avg)
	}

	_, ok, err = s.MetricBaseline(ctx, "nobody", "clarity_score", 7)
	if err != nil {
		t.Fatalf("baseline for empty user: %v", err)
	}
	if ok {
		t.Error("expected no baseline for user without attempts")
	}

	if _, _, err := s.MetricBaseline(ctx, "u1", "clarity_score; DROP TABLE writings", 7); err == nil {
		t.Error("expected error for unknown metric name")
	}
}

func TestMergeProfileRunningAverages(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p, err := s.MergeProfile(ctx, "u1", 10.0, 0.5, []string{"river"})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if p.Count != 1 || p.AvgSentenceLength != 10.0 {
		t.Errorf("unexpected first merge: %+v", p)
	}

	p, err = s.MergeProfile(ctx, "u1", 20.0, 0.7, []string{"river", "stone"})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if p.Count != 2 {
		t.Errorf("expected count 2, got %d", p.Count)
	}
	if math.Abs(p.AvgSentenceLength-15.0) > 1e-9 {
		t.Errorf("expected running avg 15.0, got %v", p.AvgSentenceLength)
	}
	if math.Abs(p.VocabRichness-0.6) > 1e-9 {
		t.Errorf("expected running richness 0.6, got %v", p.VocabRichness)
	}
	if len(p.FrequentWords) != 2 {
		t.Errorf("expected merged word set of 2, got %v", p.FrequentWords)
	}

	// Persisted, not just returned.
	stored, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if stored.Count != 2 {
		t.Errorf("expected stored count 2, got %d", stored.Count)
	}
}

func TestGetProfileMissingUserIsZero(t *testing.T) {
	s := openTestStore(t)
	p, err := s.GetProfile(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.Count != 0 || p.UserID != "ghost" {
		t.Errorf("expected zero profile, got %+v", p)
	}
}

func TestSnapshots(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.InsertSnapshot(ctx, "u1", "leans reflective", nil); err != nil {
		t.Fatalf("insert snapshot: %v", err)
	}
	snaps, err := s.ListSnapshots(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(snaps) != 1 || snaps[0] != "leans reflective" {
		t.Errorf("unexpected snapshots: %v", snaps)
	}
}

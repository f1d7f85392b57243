package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/underwriterhq/underwriter/internal/analyzer"
	"github.com/underwriterhq/underwriter/internal/feedback"
	"github.com/underwriterhq/underwriter/internal/store"
)

func newTestIngestor(t *testing.T) (*Ingestor, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	gen := feedback.NewGenerator(nil, nil)
	return NewIngestor(st, gen, analyzer.RegexTokenizer{}, nil, 5), st
}

func TestIngestPersistsEverything(t *testing.T) {
	ing, st := newTestIngestor(t)
	ctx := context.Background()

	res, err := ing.Ingest(ctx, "u1", "Morning pages", "A quiet start. The coffee goes cold while I write.", nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Writing.ID == "" {
		t.Fatal("writing not saved")
	}
	if res.Insight.Tone != "neutral" {
		t.Errorf("tone = %q", res.Insight.Tone)
	}
	if res.Insight.Intention != "descriptive" {
		t.Errorf("intention = %q", res.Insight.Intention)
	}
	if res.Live {
		t.Error("disabled client should not report live feedback")
	}
	if res.Feedback.Feedback == "" {
		t.Error("fallback feedback missing")
	}

	// First writing: baseline still building.
	if len(res.Observations) != 1 || !strings.Contains(res.Observations[0], "Building baseline") {
		t.Errorf("observations = %v", res.Observations)
	}

	got, err := st.GetWriting(ctx, res.Writing.ID)
	if err != nil {
		t.Fatalf("GetWriting: %v", err)
	}
	if got.Title != "Morning pages" {
		t.Errorf("title = %q", got.Title)
	}

	profile, err := st.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.Count != 1 {
		t.Errorf("profile count = %d", profile.Count)
	}
}

func TestIngestRejectsEmptyText(t *testing.T) {
	ing, _ := newTestIngestor(t)
	if _, err := ing.Ingest(context.Background(), "u1", "", "   \n  ", nil); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestIngestSnapshotEveryFifth(t *testing.T) {
	ing, st := newTestIngestor(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := ing.Ingest(ctx, "u2", "", "Plain words about an ordinary street and its trees.", nil); err != nil {
			t.Fatalf("Ingest %d: %v", i, err)
		}
	}

	snaps, err := st.ListSnapshots(ctx, "u2", 10)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot after 5 writings, got %d", len(snaps))
	}
	if !strings.Contains(snaps[0], "By entry 5") {
		t.Errorf("snapshot = %q", snaps[0])
	}

	profile, err := st.GetProfile(ctx, "u2")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if !strings.Contains(profile.Summary, "By entry 5") {
		t.Errorf("profile summary = %q", profile.Summary)
	}
}

package pipeline

import (
	"testing"
	"time"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_DifferentInputs(t *testing.T) {
	h1 := ContentHashHex([]byte("aaa"))
	h2 := ContentHashHex([]byte("bbb"))
	if h1 == h2 {
		t.Error("expected different hashes for different inputs")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing file"},
		{StatusAnalyzing, "computing metrics"},
		{StatusReflecting, "asking the companion"},
		{StatusStoring, "storing results"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("parse failed")
	job.AddError("no extractable text")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "parse failed" {
		t.Errorf("expected first error %q, got %q", "parse failed", snap.Progress.Errors[0])
	}
}

func TestJob_SetWords(t *testing.T) {
	job := &Job{ID: "words-test", UpdatedAt: time.Now()}
	job.SetWords(312)

	snap := job.Snapshot()
	if snap.Progress.Words != 312 {
		t.Errorf("expected 312 words, got %d", snap.Progress.Words)
	}
}

func TestJob_MarkStored(t *testing.T) {
	job := &Job{ID: "stored-test", UpdatedAt: time.Now()}
	job.MarkStored(true, true, false)

	snap := job.Snapshot()
	if !snap.Progress.InsightStored || !snap.Progress.FeedbackStored {
		t.Errorf("expected stored flags set, got %+v", snap.Progress)
	}
	if snap.Progress.FeedbackLive {
		t.Error("expected feedback_live false")
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	data := []byte("file content here")
	job.SetFileData(data)
	got := job.FileData()
	if string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	for attempt := 0; attempt < 8; attempt++ {
		d := Backoff(attempt)
		if d < time.Second {
			t.Errorf("attempt %d: backoff %v below base", attempt, d)
		}
		if d > 45*time.Second {
			t.Errorf("attempt %d: backoff %v above cap+jitter", attempt, d)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(nil) {
		t.Error("nil error should not be retryable")
	}
}

package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// JobStatus represents the state of a writing ingestion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusAnalyzing  JobStatus = "analyzing"
	StatusReflecting JobStatus = "reflecting"
	StatusStoring    JobStatus = "storing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks the state of one uploaded writing as it moves through
// parse, analyze, reflect, store.
type Job struct {
	mu sync.Mutex

	ID        string `json:"job_id"`
	WritingID string `json:"writing_id"`
	UserID    string `json:"user_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	Words          int      `json:"words"`
	InsightStored  bool     `json:"insight_stored"`
	FeedbackStored bool     `json:"feedback_stored"`
	FeedbackLive   bool     `json:"feedback_live"`
	Errors         []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetWords records the parsed word count.
func (j *Job) SetWords(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Words = n
	j.UpdatedAt = time.Now()
}

// MarkStored records which persisted artifacts landed.
func (j *Job) MarkStored(insight, feedback, live bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.InsightStored = insight
	j.Progress.FeedbackStored = feedback
	j.Progress.FeedbackLive = live
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetWritingID links the job to the persisted writing.
func (j *Job) SetWritingID(id string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.WritingID = id
}

// SetContentHash records the hash of the parsed text.
func (j *Job) SetContentHash(h string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = h
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	WritingID string    `json:"writing_id"`
	UserID    string    `json:"user_id"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Filename  string    `json:"filename"`
	Title     string    `json:"title"`
	Progress  Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:        j.ID,
		WritingID: j.WritingID,
		UserID:    j.UserID,
		Status:    j.Status,
		Phase:     j.Phase,
		Filename:  j.Filename,
		Title:     j.Title,
		Progress: Progress{
			Words:          j.Progress.Words,
			InsightStored:  j.Progress.InsightStored,
			FeedbackStored: j.Progress.FeedbackStored,
			FeedbackLive:   j.Progress.FeedbackLive,
			Errors:         errs,
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

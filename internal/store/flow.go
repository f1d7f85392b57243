package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FlowSession is one configured practice run (may hold several attempts).
type FlowSession struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Mode            string    `json:"mode"` // timed | wordcount | free
	DurationSeconds int       `json:"duration_seconds,omitempty"`
	TargetWords     int       `json:"target_words,omitempty"`
	GoalFocus       []string  `json:"goal_focus"`
	CreatedAt       time.Time `json:"created_at"`
}

// FlowAttempt is one submitted burst of writing within a session.
type FlowAttempt struct {
	ID           string         `json:"id"`
	SessionID    string         `json:"session_id"`
	UserID       string         `json:"user_id"`
	ResponseText string         `json:"response_text"`
	StartedAt    time.Time      `json:"started_at"`
	EndedAt      time.Time      `json:"ended_at"`
	Meta         map[string]any `json:"meta,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// FlowMetricsRow is the persisted metric record for an attempt.
type FlowMetricsRow struct {
	ID               string    `json:"id"`
	AttemptID        string    `json:"attempt_id"`
	UserID           string    `json:"user_id"`
	ElapsedSeconds   float64   `json:"elapsed_seconds"`
	WordCount        int       `json:"word_count"`
	WPM              float64   `json:"wpm"`
	VocabTypeCount   int       `json:"vocab_type_count"`
	VocabTTR         float64   `json:"vocab_ttr"`
	RepetitionRate   float64   `json:"repetition_rate"`
	PlayfulnessScore float64   `json:"playfulness_score"`
	ClarityScore     float64   `json:"clarity_score"`
	CreativityScore  float64   `json:"creativity_score"`
	CompositeScore   float64   `json:"composite_score"`
	CreatedAt        time.Time `json:"created_at"`
}

// baselineMetrics whitelists the metric names the rolling-average query
// accepts, mapped to their columns.
var baselineMetrics = map[string]string{
	"wpm":               "wpm",
	"word_count":        "word_count",
	"vocab_ttr":         "vocab_ttr",
	"repetition_rate":   "repetition_rate",
	"playfulness_score": "playfulness_score",
	"clarity_score":     "clarity_score",
	"creativity_score":  "creativity_score",
	"composite_score":   "composite_score",
}

// IsBaselineMetric reports whether a metric name can be queried as a baseline.
func IsBaselineMetric(name string) bool {
	_, ok := baselineMetrics[name]
	return ok
}

// CreateFlowSession persists a new practice session.
func (s *Store) CreateFlowSession(ctx context.Context, fs FlowSession) (FlowSession, error) {
	if fs.ID == "" {
		fs.ID = uuid.NewString()
	}
	created := nowMillis()
	fs.CreatedAt = millisTime(created)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO flow_sessions(id, user_id, mode, duration_seconds, target_words, goal_focus, created_at)
		 VALUES(?,?,?,?,?,?,?)`,
		fs.ID, fs.UserID, fs.Mode, fs.DurationSeconds, fs.TargetWords,
		marshalOr(fs.GoalFocus, "[]"), created,
	)
	if err != nil {
		return FlowSession{}, fmt.Errorf("insert flow session: %w", err)
	}
	return fs, nil
}

// GetFlowSession fetches a session by ID.
func (s *Store) GetFlowSession(ctx context.Context, id string) (FlowSession, error) {
	var fs FlowSession
	var goals string
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, mode, duration_seconds, target_words, goal_focus, created_at
		 FROM flow_sessions WHERE id = ?`, id).
		Scan(&fs.ID, &fs.UserID, &fs.Mode, &fs.DurationSeconds, &fs.TargetWords, &goals, &created)
	if err != nil {
		if err == sql.ErrNoRows {
			return FlowSession{}, fmt.Errorf("flow session not found")
		}
		return FlowSession{}, fmt.Errorf("scan flow session: %w", err)
	}
	_ = json.Unmarshal([]byte(goals), &fs.GoalFocus)
	fs.CreatedAt = millisTime(created)
	return fs, nil
}

// InsertFlowAttempt persists a submitted burst.
func (s *Store) InsertFlowAttempt(ctx context.Context, a FlowAttempt) (FlowAttempt, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	created := nowMillis()
	a.CreatedAt = millisTime(created)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO flow_attempts(id, session_id, user_id, response_text, started_at, ended_at, meta, created_at)
		 VALUES(?,?,?,?,?,?,?,?)`,
		a.ID, a.SessionID, a.UserID, a.ResponseText,
		a.StartedAt.UTC().UnixMilli(), a.EndedAt.UTC().UnixMilli(),
		marshalOr(a.Meta, "{}"), created,
	)
	if err != nil {
		return FlowAttempt{}, fmt.Errorf("insert flow attempt: %w", err)
	}
	return a, nil
}

// InsertFlowMetrics persists the metric record for an attempt.
func (s *Store) InsertFlowMetrics(ctx context.Context, m FlowMetricsRow) (FlowMetricsRow, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	created := nowMillis()
	m.CreatedAt = millisTime(created)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO flow_metrics(id, attempt_id, user_id, elapsed_seconds, word_count, wpm,
		 vocab_type_count, vocab_ttr, repetition_rate, playfulness_score, clarity_score,
		 creativity_score, composite_score, created_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		m.ID, m.AttemptID, m.UserID, m.ElapsedSeconds, m.WordCount, m.WPM,
		m.VocabTypeCount, m.VocabTTR, m.RepetitionRate, m.PlayfulnessScore,
		m.ClarityScore, m.CreativityScore, m.CompositeScore, created,
	)
	if err != nil {
		return FlowMetricsRow{}, fmt.Errorf("insert flow metrics: %w", err)
	}
	return m, nil
}

// MetricBaseline returns the mean of a metric over the user's attempts in
// the last N days. Returns 0 with ok=false when there is no data or the
// metric name is unknown.
func (s *Store) MetricBaseline(ctx context.Context, userID, metric string, days int) (float64, bool, error) {
	col, known := baselineMetrics[metric]
	if !known {
		return 0, false, fmt.Errorf("unknown baseline metric %q", metric)
	}
	if days <= 0 {
		days = 7
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days).UnixMilli()

	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT AVG(`+col+`) FROM flow_metrics WHERE user_id = ? AND created_at >= ?`,
		userID, cutoff).Scan(&avg)
	if err != nil {
		return 0, false, fmt.Errorf("baseline query: %w", err)
	}
	if !avg.Valid {
		return 0, false, nil
	}
	return avg.Float64, true, nil
}

// RecentFlowMetrics returns the user's latest metric rows, newest first.
func (s *Store) RecentFlowMetrics(ctx context.Context, userID string, limit int) ([]FlowMetricsRow, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, attempt_id, user_id, elapsed_seconds, word_count, wpm,
		 vocab_type_count, vocab_ttr, repetition_rate, playfulness_score, clarity_score,
		 creativity_score, composite_score, created_at
		 FROM flow_metrics WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent flow metrics: %w", err)
	}
	defer rows.Close()

	var out []FlowMetricsRow
	for rows.Next() {
		var m FlowMetricsRow
		var created int64
		if err := rows.Scan(&m.ID, &m.AttemptID, &m.UserID, &m.ElapsedSeconds, &m.WordCount,
			&m.WPM, &m.VocabTypeCount, &m.VocabTTR, &m.RepetitionRate, &m.PlayfulnessScore,
			&m.ClarityScore, &m.CreativityScore, &m.CompositeScore, &created); err != nil {
			return nil, fmt.Errorf("scan flow metrics: %w", err)
		}
		m.CreatedAt = millisTime(created)
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountFlowAttempts returns the number of attempts a user has submitted.
func (s *Store) CountFlowAttempts(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM flow_attempts WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count flow attempts: %w", err)
	}
	return n, nil
}

// InsertFlowFeedback stores micro-feedback for an attempt.
func (s *Store) InsertFlowFeedback(ctx context.Context, attemptID, userID, feedback string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO flow_feedback(id, attempt_id, user_id, feedback, created_at) VALUES(?,?,?,?,?)`,
		uuid.NewString(), attemptID, userID, feedback, nowMillis(),
	)
	if err != nil {
		return fmt.Errorf("insert flow feedback: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Writing is one saved piece of user text.
type Writing struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Title     string         `json:"title,omitempty"`
	Text      string         `json:"text"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Insight is the deterministic analysis attached to a writing.
type Insight struct {
	ID               string         `json:"id"`
	WritingID        string         `json:"writing_id"`
	Intention        string         `json:"intention,omitempty"`
	Tone             string         `json:"tone,omitempty"`
	Energy           string         `json:"energy,omitempty"`
	Observations     string         `json:"observations,omitempty"`
	MicroSuggestions []string       `json:"micro_suggestions"`
	Metrics          map[string]any `json:"metrics"`
	CreatedAt        time.Time      `json:"created_at"`
}

// Feedback is a stored companion reflection.
type Feedback struct {
	ID        string    `json:"id"`
	WritingID string    `json:"writing_id"`
	Feedback  string    `json:"feedback"`
	Mode      string    `json:"mode"`
	CreatedAt time.Time `json:"created_at"`
}

func nowMillis() int64 {
	return time.Now().UTC().UnixMilli()
}

func millisTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func marshalOr(v any, fallback string) string {
	if v == nil {
		return fallback
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return string(b)
}

// SaveWriting persists a writing and returns it with ID and timestamp set.
func (s *Store) SaveWriting(ctx context.Context, w Writing) (Writing, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	created := nowMillis()
	w.CreatedAt = millisTime(created)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO writings(id, user_id, title, text, metadata, created_at) VALUES(?,?,?,?,?,?)`,
		w.ID, w.UserID, w.Title, w.Text, marshalOr(w.Metadata, "{}"), created,
	)
	if err != nil {
		return Writing{}, fmt.Errorf("insert writing: %w", err)
	}
	return w, nil
}

// GetWriting fetches one writing by ID.
func (s *Store) GetWriting(ctx context.Context, id string) (Writing, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, text, metadata, created_at FROM writings WHERE id = ?`, id)
	return scanWriting(row)
}

// ListWritings returns a user's writings, newest first.
func (s *Store) ListWritings(ctx context.Context, userID string, limit int) ([]Writing, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, text, metadata, created_at FROM writings
		 WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list writings: %w", err)
	}
	defer rows.Close()

	var out []Writing
	for rows.Next() {
		w, err := scanWriting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// CountWritings returns the number of writings a user has saved.
func (s *Store) CountWritings(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM writings WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count writings: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWriting(row rowScanner) (Writing, error) {
	var w Writing
	var meta string
	var created int64
	if err := row.Scan(&w.ID, &w.UserID, &w.Title, &w.Text, &meta, &created); err != nil {
		if err == sql.ErrNoRows {
			return Writing{}, fmt.Errorf("writing not found")
		}
		return Writing{}, fmt.Errorf("scan writing: %w", err)
	}
	_ = json.Unmarshal([]byte(meta), &w.Metadata)
	w.CreatedAt = millisTime(created)
	return w, nil
}

// InsertInsight attaches analysis results to a writing.
func (s *Store) InsertInsight(ctx context.Context, in Insight) (Insight, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	created := nowMillis()
	in.CreatedAt = millisTime(created)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO writing_insights(id, writing_id, intention, tone, energy, observations, micro_suggestions, metrics, created_at)
		 VALUES(?,?,?,?,?,?,?,?,?)`,
		in.ID, in.WritingID, in.Intention, in.Tone, in.Energy, in.Observations,
		marshalOr(in.MicroSuggestions, "[]"), marshalOr(in.Metrics, "{}"), created,
	)
	if err != nil {
		return Insight{}, fmt.Errorf("insert insight: %w", err)
	}
	return in, nil
}

// ListInsights returns insights for a writing, newest first.
func (s *Store) ListInsights(ctx context.Context, writingID string) ([]Insight, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, writing_id, intention, tone, energy, observations, micro_suggestions, metrics, created_at
		 FROM writing_insights WHERE writing_id = ? ORDER BY created_at DESC, rowid DESC`, writingID)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	defer rows.Close()

	var out []Insight
	for rows.Next() {
		var in Insight
		var suggestions, metrics string
		var created int64
		if err := rows.Scan(&in.ID, &in.WritingID, &in.Intention, &in.Tone, &in.Energy,
			&in.Observations, &suggestions, &metrics, &created); err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		_ = json.Unmarshal([]byte(suggestions), &in.MicroSuggestions)
		_ = json.Unmarshal([]byte(metrics), &in.Metrics)
		in.CreatedAt = millisTime(created)
		out = append(out, in)
	}
	return out, rows.Err()
}

// InsertFeedback stores a companion reflection for a writing.
func (s *Store) InsertFeedback(ctx context.Context, f Feedback) (Feedback, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Mode == "" {
		f.Mode = "spotlight"
	}
	created := nowMillis()
	f.CreatedAt = millisTime(created)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO companion_feedback(id, writing_id, feedback, mode, created_at) VALUES(?,?,?,?,?)`,
		f.ID, f.WritingID, f.Feedback, f.Mode, created,
	)
	if err != nil {
		return Feedback{}, fmt.Errorf("insert feedback: %w", err)
	}
	return f, nil
}

// ListFeedback returns companion feedback for a writing, newest first.
func (s *Store) ListFeedback(ctx context.Context, writingID string) ([]Feedback, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, writing_id, feedback, mode, created_at FROM companion_feedback
		 WHERE writing_id = ? ORDER BY created_at DESC, rowid DESC`, writingID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var out []Feedback
	for rows.Next() {
		var f Feedback
		var created int64
		if err := rows.Scan(&f.ID, &f.WritingID, &f.Feedback, &f.Mode, &created); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		f.CreatedAt = millisTime(created)
		out = append(out, f)
	}
	return out, rows.Err()
}

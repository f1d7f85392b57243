package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StyleProfile is the per-user running view of their writing habits, kept
// as running averages so it can be updated without rescanning history.
type StyleProfile struct {
	UserID            string         `json:"user_id"`
	Summary           string         `json:"summary,omitempty"`
	Traits            map[string]any `json:"traits,omitempty"`
	Count             int            `json:"count"`
	AvgSentenceLength float64        `json:"avg_sentence_length"`
	VocabRichness     float64        `json:"vocab_richness"`
	FrequentWords     []string       `json:"frequent_words"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// GetProfile returns a user's style profile. A missing profile is not an
// error; the zero profile (Count 0) is returned instead.
func (s *Store) GetProfile(ctx context.Context, userID string) (StyleProfile, error) {
	var p StyleProfile
	var traits, words string
	var updated int64
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, summary, traits, count, avg_sentence_length, vocab_richness, frequent_words, updated_at
		 FROM style_profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.Summary, &traits, &p.Count, &p.AvgSentenceLength,
			&p.VocabRichness, &words, &updated)
	if err == sql.ErrNoRows {
		return StyleProfile{UserID: userID}, nil
	}
	if err != nil {
		return StyleProfile{}, fmt.Errorf("get profile: %w", err)
	}
	_ = json.Unmarshal([]byte(traits), &p.Traits)
	_ = json.Unmarshal([]byte(words), &p.FrequentWords)
	p.UpdatedAt = millisTime(updated)
	return p, nil
}

// MergeProfile folds fresh style metrics into the stored profile:
// running averages for the quantitative fields, set-union for the
// frequent words. Returns the updated profile.
func (s *Store) MergeProfile(ctx context.Context, userID string, sentenceLengthAvg, vocabRichness float64, frequentWords []string) (StyleProfile, error) {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return StyleProfile{}, err
	}

	count := p.Count + 1
	p.AvgSentenceLength = (p.AvgSentenceLength*float64(count-1) + sentenceLengthAvg) / float64(count)
	p.VocabRichness = (p.VocabRichness*float64(count-1) + vocabRichness) / float64(count)
	p.Count = count

	seen := make(map[string]bool, len(p.FrequentWords))
	for _, w := range p.FrequentWords {
		seen[w] = true
	}
	for _, w := range frequentWords {
		if !seen[w] {
			seen[w] = true
			p.FrequentWords = append(p.FrequentWords, w)
		}
	}

	if err := s.upsertProfile(ctx, p); err != nil {
		return StyleProfile{}, err
	}
	return p, nil
}

// SetProfileSummary stores the latest narrative summary and traits.
func (s *Store) SetProfileSummary(ctx context.Context, userID, summary string, traits map[string]any) error {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	p.Summary = summary
	if traits != nil {
		p.Traits = traits
	}
	return s.upsertProfile(ctx, p)
}

func (s *Store) upsertProfile(ctx context.Context, p StyleProfile) error {
	updated := nowMillis()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO style_profiles(user_id, summary, traits, count, avg_sentence_length, vocab_richness, frequent_words, updated_at)
		 VALUES(?,?,?,?,?,?,?,?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   summary=excluded.summary, traits=excluded.traits, count=excluded.count,
		   avg_sentence_length=excluded.avg_sentence_length, vocab_richness=excluded.vocab_richness,
		   frequent_words=excluded.frequent_words, updated_at=excluded.updated_at`,
		p.UserID, p.Summary, marshalOr(p.Traits, "{}"), p.Count,
		p.AvgSentenceLength, p.VocabRichness, marshalOr(p.FrequentWords, "[]"), updated,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// InsertSnapshot records a point-in-time style snapshot.
func (s *Store) InsertSnapshot(ctx context.Context, userID, snapshot string, signals map[string]any) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO style_snapshots(id, user_id, snapshot, signals, created_at) VALUES(?,?,?,?,?)`,
		uuid.NewString(), userID, snapshot, marshalOr(signals, "{}"), nowMillis(),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// ListSnapshots returns a user's style snapshots, newest first.
func (s *Store) ListSnapshots(ctx context.Context, userID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT snapshot FROM style_snapshots WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var snap string
		if err := rows.Scan(&snap); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS writings (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    text TEXT NOT NULL,
    metadata TEXT NOT NULL DEFAULT '{}',
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_writings_user ON writings(user_id, created_at);

CREATE TABLE IF NOT EXISTS writing_insights (
    id TEXT PRIMARY KEY,
    writing_id TEXT NOT NULL,
    intention TEXT NOT NULL DEFAULT '',
    tone TEXT NOT NULL DEFAULT '',
    energy TEXT NOT NULL DEFAULT '',
    observations TEXT NOT NULL DEFAULT '',
    micro_suggestions TEXT NOT NULL DEFAULT '[]',
    metrics TEXT NOT NULL DEFAULT '{}',
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_insights_writing ON writing_insights(writing_id, created_at);

CREATE TABLE IF NOT EXISTS companion_feedback (
    id TEXT PRIMARY KEY,
    writing_id TEXT NOT NULL,
    feedback TEXT NOT NULL,
    mode TEXT NOT NULL DEFAULT 'spotlight',
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_feedback_writing ON companion_feedback(writing_id, created_at);

CREATE TABLE IF NOT EXISTS flow_sessions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    mode TEXT NOT NULL,
    duration_seconds INTEGER NOT NULL DEFAULT 0,
    target_words INTEGER NOT NULL DEFAULT 0,
    goal_focus TEXT NOT NULL DEFAULT '[]',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS flow_attempts (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    response_text TEXT NOT NULL,
    started_at INTEGER NOT NULL,
    ended_at INTEGER NOT NULL,
    meta TEXT NOT NULL DEFAULT '{}',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS flow_metrics (
    id TEXT PRIMARY KEY,
    attempt_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    elapsed_seconds REAL NOT NULL,
    word_count INTEGER NOT NULL,
    wpm REAL NOT NULL,
    vocab_type_count INTEGER NOT NULL,
    vocab_ttr REAL NOT NULL,
    repetition_rate REAL NOT NULL,
    playfulness_score REAL NOT NULL,
    clarity_score REAL NOT NULL,
    creativity_score REAL NOT NULL,
    composite_score REAL NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_flow_metrics_user ON flow_metrics(user_id, created_at);

CREATE TABLE IF NOT EXISTS flow_feedback (
    id TEXT PRIMARY KEY,
    attempt_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    feedback TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS style_profiles (
    user_id TEXT PRIMARY KEY,
    summary TEXT NOT NULL DEFAULT '',
    traits TEXT NOT NULL DEFAULT '{}',
    count INTEGER NOT NULL DEFAULT 0,
    avg_sentence_length REAL NOT NULL DEFAULT 0,
    vocab_richness REAL NOT NULL DEFAULT 0,
    frequent_words TEXT NOT NULL DEFAULT '[]',
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS style_snapshots (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    snapshot TEXT NOT NULL,
    signals TEXT NOT NULL DEFAULT '{}',
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_user ON style_snapshots(user_id, created_at);
`

// Store wraps the SQLite database holding writings, flow practice data
// and style profiles.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc sqlite is single-writer; avoid SQLITE_BUSY under the worker pool.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Package store persists quiz sessions, answers, flashcard study
// progress, daily activity, and LLM request events. The primary backend
// is SQLite; an in-memory backend with identical semantics backs
// unauthenticated play and tests.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed implementation of Repos.
type Store struct {
	db *sql.DB
}

var _ Repos = (*Store)(nil)

// Open creates a Store connected to the SQLite database at dsn. It
// applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Sessions() SessionRepo  { return &sessionRepo{db: s.db} }
func (s *Store) Answers() AnswerRepo    { return &answerRepo{db: s.db} }
func (s *Store) Study() StudyRepo       { return &studyRepo{db: s.db} }
func (s *Store) Activity() ActivityRepo { return &activityRepo{db: s.db} }
func (s *Store) Events() EventRepo      { return &eventRepo{db: s.db} }

// applyPragmas configures SQLite for single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// migrate creates the schema. Statements are idempotent so Open can run
// them on every start.
func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS quiz_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			quiz_id TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			status TEXT NOT NULL,
			question_order TEXT NOT NULL,
			current_question_index INTEGER NOT NULL DEFAULT 0,
			total_questions INTEGER NOT NULL,
			correct_count INTEGER NOT NULL DEFAULT 0,
			verification_enabled INTEGER NOT NULL,
			started_at INTEGER NOT NULL,
			completed_at INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_quiz ON quiz_sessions (user_id, quiz_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_status ON quiz_sessions (user_id, status)`,

		`CREATE TABLE IF NOT EXISTS quiz_answers (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES quiz_sessions (id),
			user_id TEXT NOT NULL,
			question_index INTEGER NOT NULL,
			order_position INTEGER NOT NULL,
			selected_answer TEXT NOT NULL,
			justification TEXT NOT NULL,
			is_correct INTEGER NOT NULL,
			ai_verification TEXT,
			UNIQUE (session_id, question_index)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_answers_session_order ON quiz_answers (session_id, order_position)`,

		`CREATE TABLE IF NOT EXISTS study_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			group_id TEXT NOT NULL,
			total_cards INTEGER NOT NULL,
			revealed_count INTEGER NOT NULL DEFAULT 0,
			last_studied_at INTEGER NOT NULL,
			UNIQUE (user_id, group_id)
		)`,
		`CREATE TABLE IF NOT EXISTS card_reveals (
			session_id TEXT NOT NULL REFERENCES study_sessions (id),
			card_index INTEGER NOT NULL,
			revealed_at INTEGER NOT NULL,
			PRIMARY KEY (session_id, card_index)
		)`,

		`CREATE TABLE IF NOT EXISTS daily_activity (
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			quiz_completed INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, date)
		)`,

		`CREATE TABLE IF NOT EXISTS llm_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			purpose TEXT NOT NULL,
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			latency_ms INTEGER NOT NULL DEFAULT 0,
			success INTEGER NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			request_body TEXT NOT NULL DEFAULT '',
			response_body TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. REVISE_DB environment variable
// 2. $XDG_DATA_HOME/revise/revise.db
// 3. ~/.local/share/revise/revise.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("REVISE_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "revise", "revise.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// getOwnedSession loads a session and enforces ownership. Shared by the
// SQLite repos; the answer repo needs the session's shuffle and status.
func getOwnedSession(ctx context.Context, db *sql.DB, userID, sessionID string) (*QuizSession, error) {
	row := db.QueryRowContext(ctx, `SELECT id, user_id, quiz_id, content_hash, status,
		question_order, current_question_index, total_questions, correct_count,
		verification_enabled, started_at, completed_at
		FROM quiz_sessions WHERE id = ?`, sessionID)
	sess, err := scanSession(row)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, ErrNotOwner
	}
	return sess, nil
}

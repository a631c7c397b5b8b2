// Package store persists the exam attempt in SQLite: one key-value slot
// holding the current session as a JSON snapshot, and an append-only
// archive of completed attempts.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/certlab/kcnasim/internal/model"

	_ "modernc.org/sqlite"
)

// sessionSlot is the single key under which the current attempt lives.
const sessionSlot = "session"

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exam_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		completed_at DATETIME NOT NULL,
		score INTEGER NOT NULL,
		passed INTEGER NOT NULL,
		payload TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveSession overwrites the session slot with a full JSON snapshot. There
// is exactly one write per mutation and no partial updates, so a load
// always sees an internally consistent session.
func (s *Store) SaveSession(sess *model.ExamSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO exam_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		sessionSlot, string(data), string(data),
	)
	return err
}

// LoadSession returns the persisted session, or (nil, nil) when the slot is
// absent or its contents do not unmarshal. Resuming is best-effort: a
// corrupted slot degrades to "start fresh", never to an error.
func (s *Store) LoadSession() (*model.ExamSession, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM exam_state WHERE key = ?`, sessionSlot).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sess model.ExamSession
	if err := json.Unmarshal([]byte(value), &sess); err != nil {
		slog.Warn("discarding malformed session slot", "error", err)
		return nil, nil
	}
	return &sess, nil
}

// ClearSession removes the slot.
func (s *Store) ClearSession() error {
	_, err := s.db.Exec(`DELETE FROM exam_state WHERE key = ?`, sessionSlot)
	return err
}

// ArchiveAttempt appends a completed attempt to the attempts table. The
// archived payload is the permanent record of the outcome even if the
// underlying bank later changes.
func (s *Store) ArchiveAttempt(sess *model.ExamSession) error {
	if sess == nil || !sess.Completed || sess.Score == nil || sess.Passed == nil {
		return fmt.Errorf("attempt is not completed")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO attempts (id, started_at, completed_at, score, passed, payload)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.StartTime, time.Now(), *sess.Score, *sess.Passed, string(data),
	)
	return err
}

// AttemptCount returns the number of archived attempts.
func (s *Store) AttemptCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM attempts`).Scan(&count)
	return count, err
}

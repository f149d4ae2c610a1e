package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	rmkerr "github.com/rootagent/rmk/internal/errors"
	"github.com/rootagent/rmk/internal/llm"
	"github.com/rootagent/rmk/internal/logging"
)

// SQLiteSink stores trajectories in a single SQLite database, one row per
// message.
type SQLiteSink struct {
	db  *sql.DB
	log *logging.Logger
}

// NewSQLiteSink opens (and if needed creates) the database at path.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; also keeps :memory: databases on a single connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteSink{db: db, log: logging.Global().WithPrefix("session")}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return s, nil
}

func (s *SQLiteSink) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS messages (
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		record TEXT NOT NULL,
		PRIMARY KEY (session_id, seq)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save replaces the stored trajectory for id in one transaction.
func (s *SQLiteSink) Save(ctx context.Context, id string, msgs []llm.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return rmkerr.SessionSaveFailed(id, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, updated_at) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		id, time.Now().UTC()); err != nil {
		return rmkerr.SessionSaveFailed(id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, id); err != nil {
		return rmkerr.SessionSaveFailed(id, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO messages (session_id, seq, record) VALUES (?, ?, ?)`)
	if err != nil {
		return rmkerr.SessionSaveFailed(id, err)
	}
	defer stmt.Close()

	for i, msg := range msgs {
		record, err := json.Marshal(msg)
		if err != nil {
			return rmkerr.SessionSaveFailed(id, err)
		}
		if _, err := stmt.ExecContext(ctx, id, i, string(record)); err != nil {
			return rmkerr.SessionSaveFailed(id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return rmkerr.SessionSaveFailed(id, err)
	}
	s.log.Event(logging.EventSessionSave, logging.SessionID(id), logging.MessageCount(len(msgs)))
	return nil
}

// Load returns the stored trajectory in order.
func (s *SQLiteSink) Load(ctx context.Context, id string) ([]llm.Message, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return nil, rmkerr.SessionLoadFailed(id, err)
	}
	if exists == 0 {
		return nil, rmkerr.SessionNotFound(id)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT record FROM messages WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, rmkerr.SessionLoadFailed(id, err)
	}
	defer rows.Close()

	var msgs []llm.Message
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, rmkerr.SessionLoadFailed(id, err)
		}
		var msg llm.Message
		if err := json.Unmarshal([]byte(record), &msg); err != nil {
			return nil, rmkerr.SessionLoadFailed(id, err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, rmkerr.SessionLoadFailed(id, err)
	}
	s.log.Event(logging.EventSessionLoad, logging.SessionID(id), logging.MessageCount(len(msgs)))
	return msgs, nil
}

// List returns stored session ids, newest first.
func (s *SQLiteSink) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

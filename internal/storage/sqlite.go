package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"scholarsync/internal/models"
)

// SQLiteActivityLog keeps the activity log in a local SQLite file.
type SQLiteActivityLog struct {
	db *sql.DB
}

func NewSQLiteActivityLog(path string) (*SQLiteActivityLog, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating sqlite directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	l := &SQLiteActivityLog{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

func (l *SQLiteActivityLog) Close() error {
	return l.db.Close()
}

func (l *SQLiteActivityLog) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS activity_logs (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL,
			username TEXT NOT NULL,
			ts_millis INTEGER NOT NULL,
			paper_title TEXT NOT NULL,
			action_type TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_logs_ts ON activity_logs(ts_millis)`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func (l *SQLiteActivityLog) Append(ctx context.Context, e models.ActivityLogEntry) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO activity_logs (id, user_id, username, ts_millis, paper_title, action_type) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Username, e.Timestamp, e.PaperTitle, e.ActionType)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (l *SQLiteActivityLog) List(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, user_id, username, ts_millis, paper_title, action_type FROM activity_logs ORDER BY ts_millis DESC, seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	out := []models.ActivityLogEntry{}
	for rows.Next() {
		var e models.ActivityLogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Username, &e.Timestamp, &e.PaperTitle, &e.ActionType); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (l *SQLiteActivityLog) Clear(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM activity_logs`); err != nil {
		return fmt.Errorf("clear activity: %w", err)
	}
	return nil
}

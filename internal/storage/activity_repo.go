package storage

import (
	"context"
	"fmt"

	"scholarsync/internal/models"
)

// ActivityRepo is the postgres activity log.
type ActivityRepo struct {
	db *DB
}

func NewActivityRepo(db *DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

func (r *ActivityRepo) Append(ctx context.Context, e models.ActivityLogEntry) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO activity_logs (id, user_id, username, ts_millis, paper_title, action_type)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING`,
		e.ID, e.UserID, e.Username, e.Timestamp, e.PaperTitle, e.ActionType)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *ActivityRepo) List(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	q := `SELECT id, user_id, username, ts_millis, paper_title, action_type FROM activity_logs ORDER BY ts_millis DESC, id`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.db.Pool.Query(ctx, q, args...)
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

func (r *ActivityRepo) Clear(ctx context.Context) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM activity_logs`); err != nil {
		return fmt.Errorf("clear activity: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"scholarsync/internal/analysis"
	"scholarsync/internal/models"
)

var ErrNotFound = errors.New("not found")

// AnalysisRepo stores completed results as JSONB rows keyed by run id.
type AnalysisRepo struct {
	db *DB
}

func NewAnalysisRepo(db *DB) *AnalysisRepo {
	return &AnalysisRepo{db: db}
}

func (r *AnalysisRepo) Save(ctx context.Context, runID string, result analysis.AggregateResult) (string, error) {
	b, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode analysis: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO analyses (run_id, paper_title, result)
VALUES ($1, $2, $3::jsonb)
ON CONFLICT (run_id) DO UPDATE SET paper_title = EXCLUDED.paper_title, result = EXCLUDED.result`,
		runID, result.Metadata.Title, string(b))
	if err != nil {
		return "", fmt.Errorf("upsert analysis: %w", err)
	}
	return "postgres://analyses/" + runID, nil
}

func (r *AnalysisRepo) Get(ctx context.Context, runID string) (analysis.AggregateResult, error) {
	var raw []byte
	err := r.db.Pool.QueryRow(ctx, `SELECT result FROM analyses WHERE run_id=$1`, runID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return analysis.AggregateResult{}, fmt.Errorf("analysis %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return analysis.AggregateResult{}, fmt.Errorf("get analysis: %w", err)
	}
	var out analysis.AggregateResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return analysis.AggregateResult{}, fmt.Errorf("decode analysis: %w", err)
	}
	return out, nil
}

func (r *AnalysisRepo) ListRecent(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Pool.Query(ctx, `SELECT run_id, paper_title, created_at FROM analyses ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()
	out := []models.AnalysisRecord{}
	for rows.Next() {
		var rec models.AnalysisRecord
		if err := rows.Scan(&rec.RunID, &rec.PaperTitle, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		rec.Location = "postgres://analyses/" + rec.RunID
		out = append(out, rec)
	}
	return out, rows.Err()
}

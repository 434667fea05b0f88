package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emotewire/emotewire/internal/domain"
)

// StatsRepository records aggregate classification counts per label.
// It stores counts only; message text is never persisted.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a stats repository on the given pool.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// RecordClassification increments the counter for label.
func (r *StatsRepository) RecordClassification(ctx context.Context, label domain.Label) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO classification_stats (label, count, updated_at)
		VALUES ($1, 1, now())
		ON CONFLICT (label)
		DO UPDATE SET count = classification_stats.count + 1, updated_at = now()
	`, string(label))
	if err != nil {
		return fmt.Errorf("failed to record classification: %w", err)
	}
	return nil
}

// Totals returns the accumulated count per label.
func (r *StatsRepository) Totals(ctx context.Context) (map[domain.Label]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT label, count FROM classification_stats`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	totals := make(map[domain.Label]int64)
	for rows.Next() {
		var label string
		var count int64
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		totals[domain.Label(label)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stats rows: %w", err)
	}
	return totals, nil
}

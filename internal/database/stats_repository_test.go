package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emotewire/emotewire/internal/domain"
)

func TestStatsRepository_RecordAndTotals(t *testing.T) {
	pool := setupTestPool(t)
	repo := NewStatsRepository(pool)
	ctx := context.Background()

	totals, err := repo.Totals(ctx)
	require.NoError(t, err)
	assert.Empty(t, totals)

	require.NoError(t, repo.RecordClassification(ctx, domain.LabelJoy))
	require.NoError(t, repo.RecordClassification(ctx, domain.LabelJoy))
	require.NoError(t, repo.RecordClassification(ctx, domain.LabelSadness))

	totals, err = repo.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals[domain.LabelJoy])
	assert.Equal(t, int64(1), totals[domain.LabelSadness])
	assert.Len(t, totals, 2)
}

package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarsync/internal/models"
)

func TestMemoryLogNewestFirst(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryLog()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"a", "b", "c"} {
		require.NoError(t, log.Append(ctx, NewActivityEntry(models.User{}, title, base.Add(time.Duration(i)*time.Minute))))
	}

	all, err := log.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].PaperTitle)
	assert.Equal(t, "a", all[2].PaperTitle)
	assert.Equal(t, models.Anonymous.ID, all[0].UserID)

	two, err := log.List(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, []string{two[0].PaperTitle, two[1].PaperTitle})

	require.NoError(t, log.Clear(ctx))
	all, err = log.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

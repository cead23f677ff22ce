package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/salmaanit26/Query-Management-System/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest []string
	err := repo.Get(ctx, "history:q-1", &dest)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "history:q-1", []string{"a"}, time.Minute))
	require.NoError(t, repo.Delete(ctx, "history:q-1"))
	require.NoError(t, repo.DeleteByPattern(ctx, "history:*"))
	require.NoError(t, repo.Ping(ctx))
	require.NoError(t, repo.Close())
}

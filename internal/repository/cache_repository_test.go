package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/strack-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]string
	assert.ErrorIs(t, repo.Get(ctx, "roster:x", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "roster:x", map[string]string{"a": "b"}, time.Minute))
	generation, err := repo.Incr(ctx, "roster:generation")
	assert.NoError(t, err)
	assert.Zero(t, generation)
	assert.NoError(t, repo.DeleteByPattern(ctx, "roster:*"))
	assert.NoError(t, repo.Close())
}

func TestCacheRepositoryUnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	repo := NewCacheRepository(client, nil)
	defer repo.Close()

	var dest map[string]string
	err := repo.Get(context.Background(), "roster:x", &dest)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)

	_, err = repo.Incr(context.Background(), "roster:generation")
	assert.ErrorContains(t, err, "redis incr roster:generation")
}

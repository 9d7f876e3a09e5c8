package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/strack-api/internal/models"
)

func TestCacheServiceDisabledIsPermanentMiss(t *testing.T) {
	repo := &recordingCacheRepo{}
	svc := NewCacheService(repo, nil, 0, nil, false)

	require.NoError(t, svc.Set(context.Background(), "k", "v", 0))
	var dest string
	hit, err := svc.Get(context.Background(), "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, repo.values)
	require.NoError(t, svc.InvalidateRoster(context.Background()))
	assert.Empty(t, repo.invalidated)
}

func TestCacheServiceNilIsSafe(t *testing.T) {
	var svc *CacheService
	assert.False(t, svc.Enabled())
	hit, err := svc.Get(context.Background(), "k", new(string))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, svc.InvalidateRoster(context.Background()))
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := &recordingCacheRepo{}
	svc := NewCacheService(repo, NewMetricsService(), time.Minute, zap.NewNop(), true)

	require.NoError(t, svc.Set(context.Background(), "k", map[string]int{"a": 1}, 0))
	var dest map[string]int
	hit, err := svc.Get(context.Background(), "k", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, dest["a"])

	hit, err = svc.Get(context.Background(), "other", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRosterKeyIsStable(t *testing.T) {
	q := models.RosterQuery{Course: "Physics", SortKey: models.SortByAge, SortDirection: models.SortAsc, Reveal: 12}
	assert.Equal(t, RosterKey(0, q), RosterKey(0, q))
	assert.True(t, strings.HasPrefix(RosterKey(3, q), "strack:roster:view:3:"))

	q2 := q
	q2.Reveal = 24
	assert.NotEqual(t, RosterKey(0, q), RosterKey(0, q2))
	assert.NotEqual(t, RosterKey(0, q), RosterKey(1, q))
}

func TestCacheServiceInvalidateRosterBumpsGeneration(t *testing.T) {
	repo := &recordingCacheRepo{}
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	generation, err := svc.RosterGeneration(ctx)
	require.NoError(t, err)
	assert.Zero(t, generation)
	require.NoError(t, svc.Set(ctx, RosterKey(0, models.RosterQuery{}), "view", 0))

	require.NoError(t, svc.InvalidateRoster(ctx))
	require.NoError(t, svc.InvalidateRoster(ctx))

	generation, err = svc.RosterGeneration(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, generation)
	assert.Equal(t, []string{"strack:roster:view:*", "strack:roster:view:*"}, repo.invalidated)
	assert.NotContains(t, repo.values, RosterKey(0, models.RosterQuery{}))
	assert.Contains(t, repo.values, "strack:roster:generation")
}

func TestCacheServiceRosterGenerationError(t *testing.T) {
	svc := NewCacheService(&recordingCacheRepo{getErr: errors.New("redis down")}, nil, time.Minute, zap.NewNop(), true)

	_, err := svc.RosterGeneration(context.Background())
	assert.EqualError(t, err, "redis down")
}

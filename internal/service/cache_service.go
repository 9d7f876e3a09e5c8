package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/strack-api/internal/models"
	appErrors "github.com/noah-isme/strack-api/pkg/errors"
)

const (
	rosterViewPrefix    = "strack:roster:view:"
	rosterGenerationKey = "strack:roster:generation"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService orchestrates cache operations and related metrics. A nil or
// disabled service behaves as a permanent miss.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return true, nil
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate removes cached values for the provided pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}

// RosterGeneration returns the current roster generation. Views are cached
// under the generation read before their snapshot was taken.
func (s *CacheService) RosterGeneration(ctx context.Context) (int64, error) {
	if !s.Enabled() {
		return 0, nil
	}
	var generation int64
	if err := s.repo.Get(ctx, rosterGenerationKey, &generation); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return 0, nil
		}
		return 0, err
	}
	return generation, nil
}

// InvalidateRoster moves the roster to a new generation, so views built from
// older snapshots are never read again, then drops the stored views.
func (s *CacheService) InvalidateRoster(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	generation, err := s.repo.Incr(ctx, rosterGenerationKey)
	if err != nil {
		s.logger.Warn("roster generation bump failed", zap.Error(err))
		return err
	}
	s.logger.Debug("roster generation bumped", zap.Int64("generation", generation))
	return s.Invalidate(ctx, rosterViewPrefix+"*")
}

// RosterKey derives a stable cache key from a generation and a normalised query.
func RosterKey(generation int64, q models.RosterQuery) string {
	raw, _ := json.Marshal(q)
	sum := sha1.Sum(raw)
	return fmt.Sprintf("%s%d:%s", rosterViewPrefix, generation, hex.EncodeToString(sum[:]))
}

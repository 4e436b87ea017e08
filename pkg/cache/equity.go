// Package cache keeps computed equity reports in Redis so read-heavy
// dashboards don't rebuild the pie on every request. Mutations invalidate
// eagerly; the TTL is only a backstop.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/fairslice/pie/pkg/models"
	"github.com/fairslice/pie/pkg/redis"
)

// ErrCacheMiss is returned when no report is cached for the workspace
var ErrCacheMiss = errors.New("equity report not cached")

const (
	// KeyPrefix is the prefix for equity report cache keys
	KeyPrefix = "pie:equity:"

	// DefaultTTL is used when the configured TTL is zero
	DefaultTTL = 5 * time.Minute
)

// EquityCache caches one equity report per workspace
type EquityCache struct {
	redisClient *redis.Client
	ttl         time.Duration
	logger      ectologger.Logger
}

// NewEquityCache creates a new EquityCache
func NewEquityCache(redisClient *redis.Client, ttl time.Duration, logger ectologger.Logger) *EquityCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &EquityCache{
		redisClient: redisClient,
		ttl:         ttl,
		logger:      logger,
	}
}

// Get retrieves the cached report for a workspace
func (c *EquityCache) Get(ctx context.Context, workspaceID string) (*models.EquityReport, error) {
	data, err := c.redisClient.Get(ctx, KeyPrefix+workspaceID)
	if err != nil {
		return nil, ErrCacheMiss
	}

	var report models.EquityReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached equity report: %w", err)
	}

	return &report, nil
}

// Set stores the report for a workspace
func (c *EquityCache) Set(ctx context.Context, workspaceID string, report *models.EquityReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal equity report: %w", err)
	}

	return c.redisClient.Set(ctx, KeyPrefix+workspaceID, string(data), c.ttl)
}

// Invalidate drops the cached report for a workspace
func (c *EquityCache) Invalidate(ctx context.Context, workspaceID string) error {
	err := c.redisClient.Del(ctx, KeyPrefix+workspaceID)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Warnf("Failed to invalidate equity cache for workspace %s", workspaceID)
	}
	return err
}

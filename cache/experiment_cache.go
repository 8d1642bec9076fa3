package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mzview/core/msdata"

	"github.com/redis/go-redis/v9"
)

// ExperimentCache keeps parsed experiments in Redis so follow-up EIC,
// peak-table and report requests for a run don't re-parse the raw
// file. A miss is not an error; callers fall back to the raw object
// in storage.
type ExperimentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewExperimentCache creates a cache on the global Redis client.
func NewExperimentCache(ttl time.Duration) *ExperimentCache {
	return &ExperimentCache{client: RedisClient, ttl: ttl}
}

func experimentKey(runID string) string {
	return fmt.Sprintf("experiment:%s", runID)
}

// Save stores an experiment under its run ID.
func (c *ExperimentCache) Save(ctx context.Context, runID string, exp *msdata.Experiment) error {
	if c.client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	data, err := json.Marshal(exp)
	if err != nil {
		return fmt.Errorf("failed to marshal experiment: %w", err)
	}
	if err := c.client.Set(ctx, experimentKey(runID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache experiment: %w", err)
	}
	return nil
}

// Get returns the cached experiment for a run, or (nil, nil) on a miss.
func (c *ExperimentCache) Get(ctx context.Context, runID string) (*msdata.Experiment, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}
	data, err := c.client.Get(ctx, experimentKey(runID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached experiment: %w", err)
	}
	var exp msdata.Experiment
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached experiment: %w", err)
	}
	return &exp, nil
}

// Delete drops the cached experiment for a run.
func (c *ExperimentCache) Delete(ctx context.Context, runID string) error {
	if c.client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return c.client.Del(ctx, experimentKey(runID)).Err()
}

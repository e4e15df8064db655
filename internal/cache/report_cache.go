// Package cache keeps rendered reports in Redis so repeated professor
// lookups skip the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fadilmartias/plan-analyzer/internal/config"
	"github.com/fadilmartias/plan-analyzer/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "report:"

type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a client from cfg. It does not dial; call Ping to check connectivity.
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

func key(submissionID uuid.UUID) string {
	return keyPrefix + submissionID.String()
}

// Get returns the cached analysis; found is false on a miss.
func (c *ReportCache) Get(ctx context.Context, submissionID uuid.UUID) (*model.Analysis, bool, error) {
	raw, err := c.client.Get(ctx, key(submissionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cached report: %w", err)
	}

	var analysis model.Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, false, fmt.Errorf("decode cached report: %w", err)
	}
	return &analysis, true, nil
}

func (c *ReportCache) Set(ctx context.Context, analysis *model.Analysis) error {
	raw, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("encode cached report: %w", err)
	}
	if err := c.client.Set(ctx, key(analysis.SubmissionID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("write cached report: %w", err)
	}
	return nil
}

func (c *ReportCache) Invalidate(ctx context.Context, submissionID uuid.UUID) error {
	return c.client.Del(ctx, key(submissionID)).Err()
}

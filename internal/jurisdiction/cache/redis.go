package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"depositguard/internal/jurisdiction/models"
	id "depositguard/pkg/domain"
)

const ruleSetKeyPrefix = "depositguard:ruleset:"

// Redis shares locked rule sets across server instances. Redis errors degrade
// to cache misses; the store stays the source of truth.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

type RedisOption func(*Redis)

func WithLogger(logger *slog.Logger) RedisOption {
	return func(r *Redis) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRedis(client *redis.Client, ttl time.Duration, opts ...RedisOption) *Redis {
	r := &Redis{client: client, ttl: ttl, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) Get(ctx context.Context, rid id.RuleSetID) (*models.RuleSet, bool) {
	raw, err := r.client.Get(ctx, ruleSetKeyPrefix+rid.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		observe("redis", false)
		return nil, false
	}
	if err != nil {
		r.logger.WarnContext(ctx, "rule set cache read failed", "rule_set_id", rid.String(), "error", err)
		observe("redis", false)
		return nil, false
	}
	var rs models.RuleSet
	if err := json.Unmarshal(raw, &rs); err != nil {
		r.logger.WarnContext(ctx, "rule set cache entry corrupt", "rule_set_id", rid.String(), "error", err)
		observe("redis", false)
		return nil, false
	}
	observe("redis", true)
	return &rs, true
}

func (r *Redis) Set(ctx context.Context, rs *models.RuleSet) {
	raw, err := json.Marshal(rs)
	if err != nil {
		r.logger.WarnContext(ctx, "rule set cache encode failed", "rule_set_id", rs.ID.String(), "error", err)
		return
	}
	if err := r.client.Set(ctx, ruleSetKeyPrefix+rs.ID.String(), raw, r.ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "rule set cache write failed", "rule_set_id", rs.ID.String(), "error", err)
	}
}

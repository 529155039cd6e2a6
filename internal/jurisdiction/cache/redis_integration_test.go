//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"depositguard/internal/jurisdiction/cache"
	"depositguard/internal/jurisdiction/models"
	id "depositguard/pkg/domain"
	"depositguard/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.Redis
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = cache.NewRedis(s.redis.Client, time.Minute)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestRoundTrip() {
	ctx := context.Background()
	locked := time.Now().UTC().Truncate(time.Second)
	rs := &models.RuleSet{
		ID:                 id.RuleSetID(uuid.New()),
		Version:            "2.1.0",
		ReturnDeadlineDays: 21,
		Interest:           models.InterestRule{Required: true, Rate: decimal.RequireFromString("0.05")},
		LockedAt:           &locked,
	}

	_, ok := s.cache.Get(ctx, rs.ID)
	s.False(ok)

	s.cache.Set(ctx, rs)
	got, ok := s.cache.Get(ctx, rs.ID)
	s.Require().True(ok)
	s.Equal("2.1.0", got.Version)
	s.True(got.Interest.Rate.Equal(rs.Interest.Rate))
	s.True(locked.Equal(*got.LockedAt))
}

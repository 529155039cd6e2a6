// Package cache holds rule-set caches. Only locked rule sets are cached: their
// content can never change, so entries never need invalidation.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"depositguard/internal/jurisdiction/models"
	id "depositguard/pkg/domain"
)

// Memory is a per-process rule-set cache backed by go-cache.
type Memory struct {
	c *gocache.Cache
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{c: gocache.New(ttl, 2*ttl)}
}

func (m *Memory) Get(_ context.Context, rid id.RuleSetID) (*models.RuleSet, bool) {
	v, ok := m.c.Get(rid.String())
	observe("memory", ok)
	if !ok {
		return nil, false
	}
	rs := v.(models.RuleSet).Clone()
	return &rs, true
}

func (m *Memory) Set(_ context.Context, rs *models.RuleSet) {
	m.c.SetDefault(rs.ID.String(), rs.Clone())
}

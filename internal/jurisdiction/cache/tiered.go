package cache

import (
	"context"

	"depositguard/internal/jurisdiction/models"
	id "depositguard/pkg/domain"
)

// Layer is one cache level.
type Layer interface {
	Get(ctx context.Context, rid id.RuleSetID) (*models.RuleSet, bool)
	Set(ctx context.Context, rs *models.RuleSet)
}

// Tiered reads levels in order and back-fills the faster levels on a hit in
// a slower one. Writes go to every level.
type Tiered []Layer

func (t Tiered) Get(ctx context.Context, rid id.RuleSetID) (*models.RuleSet, bool) {
	for i, layer := range t {
		rs, ok := layer.Get(ctx, rid)
		if !ok {
			continue
		}
		for _, faster := range t[:i] {
			faster.Set(ctx, rs)
		}
		return rs, true
	}
	return nil, false
}

func (t Tiered) Set(ctx context.Context, rs *models.RuleSet) {
	for _, layer := range t {
		layer.Set(ctx, rs)
	}
}

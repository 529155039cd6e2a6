package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depositguard/internal/jurisdiction/models"
	id "depositguard/pkg/domain"
)

func TestTiered_BackfillsFasterLevels(t *testing.T) {
	ctx := context.Background()
	front, back := NewMemory(time.Minute), NewMemory(time.Minute)
	tiered := Tiered{front, back}
	rs := &models.RuleSet{ID: id.RuleSetID(uuid.New()), Version: "2.0.0"}

	back.Set(ctx, rs)
	_, ok := front.Get(ctx, rs.ID)
	require.False(t, ok)

	got, ok := tiered.Get(ctx, rs.ID)
	require.True(t, ok)
	assert.Equal(t, "2.0.0", got.Version)

	_, ok = front.Get(ctx, rs.ID)
	assert.True(t, ok, "hit in the slower level fills the faster one")
}

func TestTiered_SetWritesEveryLevel(t *testing.T) {
	ctx := context.Background()
	front, back := NewMemory(time.Minute), NewMemory(time.Minute)
	rs := &models.RuleSet{ID: id.RuleSetID(uuid.New())}

	Tiered{front, back}.Set(ctx, rs)
	_, inFront := front.Get(ctx, rs.ID)
	_, inBack := back.Get(ctx, rs.ID)
	assert.True(t, inFront)
	assert.True(t, inBack)

	_, ok := Tiered{}.Get(ctx, rs.ID)
	assert.False(t, ok)
}

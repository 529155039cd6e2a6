package objectstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depositguard/pkg/platform/sentinel"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.now = func() time.Time { return time.Unix(1000, 0) }

	ref, err := m.Put(ctx, "cases/1/notice_letter/v2", []byte("hello"), "text/plain")
	require.NoError(t, err)

	body, ct, ok := m.Get(ref)
	require.True(t, ok)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, "text/plain", ct)

	u, err := m.SignedURL(ctx, ref, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "memory:///cases/1/notice_letter/v2?expires=1060", u)

	_, err = m.SignedURL(ctx, "nope", time.Minute)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

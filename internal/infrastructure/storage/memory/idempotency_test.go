package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laluna/internal/core/apperror"
	"laluna/internal/core/idempotency"
)

func TestIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore(time.Hour)
	clock := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	req := idempotency.Request{Key: "k1", UserID: "u1", Operation: "POST /api/v1/orders", RequestHash: "h1"}

	replay, err := s.Acquire(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, replay)

	_, err = s.Acquire(ctx, req)
	assert.True(t, apperror.HasCode(err, apperror.CodeIdempotency), "in-flight key must conflict")

	other := req
	other.RequestHash = "h2"
	_, err = s.Acquire(ctx, other)
	assert.True(t, apperror.HasCode(err, apperror.CodeIdempotency))

	require.NoError(t, s.Complete(ctx, "k1", idempotency.Replay{StatusCode: 201, Body: []byte(`{"ok":true}`)}))
	replay, err = s.Acquire(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, replay)
	assert.Equal(t, 201, replay.StatusCode)
	assert.Equal(t, "application/json", replay.ContentType)

	clock = clock.Add(2 * time.Hour)
	replay, err = s.Acquire(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, replay, "expired key is acquired again")
}

func TestIdempotencyStore_ReleaseAndStale(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore(time.Hour)
	clock := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }
	req := idempotency.Request{Key: "k2", UserID: "u1", Operation: "POST /x", RequestHash: "h"}

	_, err := s.Acquire(ctx, req)
	require.NoError(t, err)
	require.NoError(t, s.Release(ctx, "k2"))
	replay, err := s.Acquire(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, replay)

	clock = clock.Add(2 * idempotency.StaleAfter)
	replay, err = s.Acquire(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, replay, "stale pending key is reclaimed")
}

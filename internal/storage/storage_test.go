// internal/storage/storage_test.go
package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	rdb, mr := setupRedis(t)
	s := NewRedisStore(rdb, time.Hour, "lab:")

	_, err := s.Get(ctx, "roadmap_x")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "roadmap_x", `{"a":1}`))
	got, err := s.Get(ctx, "roadmap_x")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, got)
	assert.True(t, mr.Exists("lab:roadmap_x"))
	assert.Equal(t, time.Hour, mr.TTL("lab:roadmap_x"))

	mr.FastForward(2 * time.Hour)
	_, err = s.Get(ctx, "roadmap_x")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "roadmap_y", "v"))
	require.NoError(t, s.Delete(ctx, "roadmap_y"))
	_, err = s.Get(ctx, "roadmap_y")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Errors(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	s := NewRedisStore(db, time.Minute, "")

	mock.ExpectGet("canvas_x").SetErr(errors.New("connection reset"))
	_, err := s.Get(ctx, "canvas_x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")

	mock.ExpectSet("canvas_x", "v", time.Minute).SetErr(errors.New("READONLY"))
	err = s.Set(ctx, "canvas_x", "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "READONLY")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryStore_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(0, 2)

	require.NoError(t, m.Set(ctx, "a", "1"))
	require.NoError(t, m.Set(ctx, "b", "2"))
	require.NoError(t, m.Set(ctx, "a", "1b"))
	require.NoError(t, m.Set(ctx, "c", "3"))

	assert.Equal(t, 2, m.Len())
	_, err := m.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound, "overwriting a made b the least recently written")
	v, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1b", v)
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryStore(time.Minute, 0)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", "v"))
	_, err := m.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, m.Len())
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(0, 0)

	type rec struct {
		Progress map[string]bool `json:"progress"`
	}
	require.NoError(t, SetJSON(ctx, m, "k", rec{Progress: map[string]bool{"0-1": true}}))

	var got rec
	require.NoError(t, GetJSON(ctx, m, "k", &got))
	assert.True(t, got.Progress["0-1"])

	require.NoError(t, m.Set(ctx, "bad", "{"))
	assert.Error(t, GetJSON(ctx, m, "bad", &got))
	assert.ErrorIs(t, GetJSON(ctx, m, "missing", &got), ErrNotFound)
}

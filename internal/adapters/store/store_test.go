package store

import (
	"context"
	"imagestudio/internal/core/domain"
	"imagestudio/internal/core/port"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, NewRedis(rdb, "")
}

func TestStores(t *testing.T) {
	_, r := setupRedis(t)

	stores := map[string]port.HistoryStore{
		"redis":  r,
		"memory": NewMemory(),
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			path := domain.HistoryPath("uid-" + name)

			empty, err := s.List(ctx, path)
			require.NoError(t, err)
			assert.Empty(t, empty)

			first := domain.HistoryRecord{ImageURL: "http://img/1", Prompt: "a red fox", Model: domain.FluxPro, CreatedAt: 1}
			second := domain.HistoryRecord{ImageURL: "http://img/2", Prompt: "a blue fox", Model: domain.Ideogram, CreatedAt: 2}

			id1, err := s.Append(ctx, path, first)
			require.NoError(t, err)
			id2, err := s.Append(ctx, path, second)
			require.NoError(t, err)
			assert.NotEmpty(t, id1)
			assert.NotEqual(t, id1, id2)

			got, err := s.List(ctx, path)
			require.NoError(t, err)
			require.Len(t, got, 2)

			first.ID, second.ID = id1, id2
			assert.ElementsMatch(t, []domain.HistoryRecord{first, second}, got)

			other, err := s.List(ctx, domain.HistoryPath("someone-else"))
			require.NoError(t, err)
			assert.Empty(t, other)
		})
	}
}

func TestRedis_KeyLayout(t *testing.T) {
	mr, r := setupRedis(t)

	_, err := r.Append(context.Background(), "users/abc/images", domain.HistoryRecord{ImageURL: "http://img"})
	require.NoError(t, err)

	items, err := mr.List("imagestudio:users/abc/images")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, items[0], `"imageUrl":"http://img"`)
}

func TestRedis_SkipsMalformedRecords(t *testing.T) {
	mr, r := setupRedis(t)

	_, err := mr.Push("imagestudio:users/abc/images", "{broken")
	require.NoError(t, err)
	_, err = r.Append(context.Background(), "users/abc/images", domain.HistoryRecord{ImageURL: "http://img"})
	require.NoError(t, err)

	got, err := r.List(context.Background(), "users/abc/images")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "http://img", got[0].ImageURL)
}

func TestRedis_AppendFailsWhenServerDown(t *testing.T) {
	mr, r := setupRedis(t)
	mr.Close()

	_, err := r.Append(context.Background(), "users/abc/images", domain.HistoryRecord{ImageURL: "http://img"})
	require.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	require.NoError(t, rdb.Close())

	_, err = NewRedisClient(context.Background(), "127.0.0.1:1", "", 0)
	require.Error(t, err)
}

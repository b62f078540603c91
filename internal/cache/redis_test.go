package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/todo-auth/internal/config"
	"github.com/magabrotheeeer/todo-auth/internal/models"
)

type testStruct struct {
	Name string
	Age  int
}

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
		UserTTL:      time.Minute,
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestSetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	expected := testStruct{Name: "Alice", Age: 30}
	require.NoError(t, cache.Set(ctx, "user:1", expected, time.Minute))

	var actual testStruct
	found, err := cache.Get(ctx, "user:1", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	cache, _ := setupTestCache(t)

	var out testStruct
	found, err := cache.Get(context.Background(), "no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
	require.NoError(t, cache.Invalidate(ctx, "key"))

	var out string
	found, err := cache.Get(ctx, "key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetInvalidJSON(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Db.Set(ctx, "bad", []byte("not-json"), time.Minute).Err())

	var out testStruct
	found, err := cache.Get(ctx, "bad", &out)
	assert.False(t, found)
	assert.Error(t, err)
}

func TestUserRoundTripOmitsPasswordHash(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	user := &models.User{
		ID:           "u-1",
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: []byte("$2a$10$secret"),
		IsActive:     true,
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, cache.SetUser(ctx, user))

	raw, err := mr.Get(userKey("alice@example.com"))
	require.NoError(t, err)
	assert.NotContains(t, raw, "secret")

	got, found, err := cache.GetUser(ctx, "alice@example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.Nil(t, got.PasswordHash)
	assert.True(t, got.CreatedAt.Equal(user.CreatedAt))
}

func TestUserExpiresAfterTTL(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetUser(ctx, &models.User{Email: "alice@example.com"}))
	mr.FastForward(2 * time.Minute)

	got, found, err := cache.GetUser(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestInvalidateUser(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetUser(ctx, &models.User{Email: "alice@example.com"}))
	require.NoError(t, cache.InvalidateUser(ctx, "alice@example.com"))

	_, found, err := cache.GetUser(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetUser_ServerDown(t *testing.T) {
	cache, mr := setupTestCache(t)
	mr.Close()

	got, found, err := cache.GetUser(context.Background(), "alice@example.com")
	assert.Error(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestInitServerInvalidAddr(t *testing.T) {
	cfg := config.RedisConnection{
		AddressRedis: "127.0.0.1:1",
		DialTimeout:  100 * time.Millisecond,
	}

	cache, err := InitServer(context.Background(), cfg)
	assert.Nil(t, cache)
	assert.Error(t, err)
}

package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_PutGet(t *testing.T) {
	mr, client := setupRedis(t)
	s := NewRedisStore(client, RedisOptions{KeyPrefix: "jobfit:"})

	_, err := s.Get(t.Context())
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(t.Context(), sampleProfile("first")))
	require.NoError(t, s.Put(t.Context(), sampleProfile("second")))

	got, err := s.Get(t.Context())
	require.NoError(t, err)
	assert.Equal(t, sampleProfile("second"), got)

	raw, err := mr.Get("jobfit:linkedinProfile")
	require.NoError(t, err)
	assert.Contains(t, raw, `"fullName":"second"`)
}

func TestRedisStore_TTL(t *testing.T) {
	mr, client := setupRedis(t)
	s := NewRedisStore(client, RedisOptions{TTL: time.Minute})

	require.NoError(t, s.Put(t.Context(), sampleProfile("jane")))
	assert.Equal(t, time.Minute, mr.TTL("linkedinProfile"))

	mr.FastForward(2 * time.Minute)
	_, err := s.Get(t.Context())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr, client := setupRedis(t)
	s := NewRedisStore(client, RedisOptions{})
	require.NoError(t, mr.Set("linkedinProfile", "{broken"))

	_, err := s.Get(t.Context())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_ServerDown(t *testing.T) {
	mr, client := setupRedis(t)
	s := NewRedisStore(client, RedisOptions{})
	mr.Close()

	assert.Error(t, s.Put(t.Context(), sampleProfile("jane")))
	_, err := s.Get(t.Context())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestDialRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s, err := DialRedis(t.Context(), "redis://"+mr.Addr()+"/0", RedisOptions{})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	require.NoError(t, s.Put(t.Context(), sampleProfile("jane")))

	_, err = DialRedis(t.Context(), "not a url", RedisOptions{})
	assert.Error(t, err)
}

func TestOpen_RedisBackend(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s, closeFn, err := Open(t.Context(), "redis://"+mr.Addr(), "", RedisOptions{})
	require.NoError(t, err)
	defer func() { _ = closeFn() }()

	_, ok := s.(*RedisStore)
	assert.True(t, ok)
}

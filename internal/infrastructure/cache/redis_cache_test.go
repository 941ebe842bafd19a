package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadrisk/acadrisk/internal/domain/port"
	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
	"github.com/acadrisk/acadrisk/internal/infrastructure/cache"
)

type fakeClient struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeClient) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeClient) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeClient) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func TestRedisCache_RoundTrip(t *testing.T) {
	client := newFakeClient()
	c := cache.NewRedisCache(client)
	ctx := context.Background()

	_, err := c.Get(ctx, "k1")
	assert.ErrorIs(t, err, port.ErrNotFound)

	require.NoError(t, c.Set(ctx, "k1", []byte(`{"risk_score":0.2}`), time.Minute))

	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"risk_score":0.2}`, string(got))
	assert.Equal(t, time.Minute, client.ttls["acadrisk:prediction:k1"])
}

func TestRedisCache_Errors(t *testing.T) {
	client := newFakeClient()
	client.getErr = errors.New("connection refused")
	client.setErr = errors.New("connection refused")
	c := cache.NewRedisCache(client)

	_, err := c.Get(context.Background(), "k1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, port.ErrNotFound)

	assert.Error(t, c.Set(context.Background(), "k1", []byte("x"), time.Minute))
}

func TestKey(t *testing.T) {
	row := valueobject.NewFeatureRow(
		valueobject.Feature{Name: "attendance", Value: 80.0},
		valueobject.Feature{Name: "activities", Value: "low"},
	)
	same := valueobject.NewFeatureRow(
		valueobject.Feature{Name: "attendance", Value: 80.0},
		valueobject.Feature{Name: "activities", Value: "low"},
	)
	other := row.With("attendance", 81.0)

	k1, err := cache.Key("abc", row)
	require.NoError(t, err)
	k2, err := cache.Key("abc", same)
	require.NoError(t, err)
	k3, err := cache.Key("abc", other)
	require.NoError(t, err)
	k4, err := cache.Key("def", row)
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.NotEqual(t, k1, k4)
	assert.Len(t, k1, 64)
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/strack-api/pkg/config"
)

func TestOptions(t *testing.T) {
	opts := Options(config.RedisConfig{Host: "cache", Port: 6380, Password: "pw", DB: 2}, 0)

	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, ClientName, opts.ClientName)
	assert.Equal(t, 5*time.Second, opts.DialTimeout)
	assert.Equal(t, opts.DialTimeout, opts.ReadTimeout)
}

func TestNewRedisUnreachable(t *testing.T) {
	client, err := NewRedis(context.Background(), config.RedisConfig{Host: "127.0.0.1", Port: 1}, 50*time.Millisecond)

	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "ping redis 127.0.0.1:1")
}

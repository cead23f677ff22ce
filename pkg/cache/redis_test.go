package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salmaanit26/Query-Management-System/pkg/config"
)

func TestNewRedisDisabled(t *testing.T) {
	client, err := NewRedis(config.RedisConfig{Enabled: false, Host: "localhost", Port: 6379})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRedisUnreachable(t *testing.T) {
	client, err := NewRedis(config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1, DialTimeout: 200 * time.Millisecond})
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "ping redis at 127.0.0.1:1")
}

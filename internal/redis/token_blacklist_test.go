package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddSkipsExpiredToken(t *testing.T) {
	// 已过期的 Token 不会触达 Redis
	bl := NewRedisTokenBlacklist(nil)
	assert.NoError(t, bl.Add(context.Background(), "jti", time.Now().Add(-time.Minute)))
}

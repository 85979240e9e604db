package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-go/internal/config"
)

var testAuthCfg = config.AuthConfig{JWTSecretKey: "test-secret", JWTExpiry: time.Hour, Issuer: "social-go-test"}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("65a1f0c2e4b0a1b2c3d4e5f6", "ann@example.com", testAuthCfg)
	require.NoError(t, err)

	claims, err := ValidateToken(context.Background(), token, testAuthCfg.JWTSecretKey, nil)
	require.NoError(t, err)
	assert.Equal(t, "65a1f0c2e4b0a1b2c3d4e5f6", claims.UserID)
	assert.Equal(t, "ann@example.com", claims.Username)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenWrongKey(t *testing.T) {
	token, err := GenerateToken("65a1f0c2e4b0a1b2c3d4e5f6", "ann@example.com", testAuthCfg)
	require.NoError(t, err)
	_, err = ValidateToken(context.Background(), token, "other-secret", nil)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	cfg := testAuthCfg
	cfg.JWTExpiry = -time.Minute
	token, err := GenerateToken("65a1f0c2e4b0a1b2c3d4e5f6", "ann@example.com", cfg)
	require.NoError(t, err)
	_, err = ValidateToken(context.Background(), token, cfg.JWTSecretKey, nil)
	assert.Error(t, err)
}

func TestValidateTokenRevoked(t *testing.T) {
	ctx := context.Background()
	blacklist := NewMemoryTokenBlacklist()
	token, err := GenerateToken("65a1f0c2e4b0a1b2c3d4e5f6", "ann@example.com", testAuthCfg)
	require.NoError(t, err)

	claims, err := ValidateToken(ctx, token, testAuthCfg.JWTSecretKey, blacklist)
	require.NoError(t, err)

	require.NoError(t, blacklist.Add(ctx, claims.ID, claims.ExpiresAt.Time))
	_, err = ValidateToken(ctx, token, testAuthCfg.JWTSecretKey, blacklist)
	assert.True(t, errors.Is(err, ErrTokenRevoked))
}

func TestMemoryBlacklistIgnoresExpired(t *testing.T) {
	ctx := context.Background()
	blacklist := NewMemoryTokenBlacklist()
	require.NoError(t, blacklist.Add(ctx, "old", time.Now().Add(-time.Second)))
	revoked, err := blacklist.IsBlacklisted(ctx, "old")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
	assert.False(t, CheckPasswordHash("anything", ""))

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	_, err = HashPassword(string(long))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

package auth

import (
	"context"
	"sync"
	"time"
)

// TokenBlacklist 定义了 Token 黑名单的存储操作接口
type TokenBlacklist interface {
	// Add 将 jti 加入黑名单，直到 Token 原本的过期时间。
	Add(ctx context.Context, jti string, originalTokenExpTime time.Time) error
	// IsBlacklisted 检查 jti 是否存在于黑名单中。
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// MemoryTokenBlacklist keeps revoked ids in process memory. It is used when
// Redis is not configured; revocations do not survive a restart.
type MemoryTokenBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemoryTokenBlacklist() *MemoryTokenBlacklist {
	return &MemoryTokenBlacklist{entries: map[string]time.Time{}}
}

func (m *MemoryTokenBlacklist) Add(ctx context.Context, jti string, originalTokenExpTime time.Time) error {
	if !time.Now().Before(originalTokenExpTime) {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[jti] = originalTokenExpTime
	return nil
}

func (m *MemoryTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.entries[jti]
	if !ok {
		return false, nil
	}
	if !time.Now().Before(exp) {
		delete(m.entries, jti)
		return false, nil
	}
	return true, nil
}

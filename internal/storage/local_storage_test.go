package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-go/internal/config"
	"social-go/internal/mediatypes"
)

func TestLocalMediaStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalMediaStore(config.StorageConfig{LocalPath: dir}, "/uploads/")
	require.NoError(t, err)

	ref, err := store.Store(context.Background(), strings.NewReader("png-bytes"), 9, "Photo.PNG", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref.Key, ".png"))
	assert.Equal(t, "/uploads/"+ref.Key, ref.URL)
	assert.EqualValues(t, 9, ref.Size)

	data, err := os.ReadFile(filepath.Join(dir, ref.Key))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Delete(context.Background(), *ref))
	_, err = os.Stat(filepath.Join(dir, ref.Key))
	assert.True(t, os.IsNotExist(err))

	// already gone
	assert.NoError(t, store.Delete(context.Background(), *ref))
}

func TestLocalMediaStoreSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalMediaStore(config.StorageConfig{LocalPath: dir}, "/uploads")
	require.NoError(t, err)

	_, err = store.Store(context.Background(), strings.NewReader("abc"), 10, "a.jpg", "image/jpeg")
	assert.Error(t, err)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestLocalMediaStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalMediaStore(config.StorageConfig{LocalPath: t.TempDir()}, "/uploads")
	require.NoError(t, err)
	assert.Error(t, store.Delete(context.Background(), mediatypes.MediaRef{Key: "../etc/passwd"}))
}

func TestBuildPostgresDSN(t *testing.T) {
	dsn := BuildPostgresDSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", DBName: "social", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u dbname=social sslmode=disable", dsn)
	assert.NotContains(t, dsn, "password")
}

func TestPageQueryOrder(t *testing.T) {
	assert.Equal(t, "created_at DESC, id DESC", PageQuery{Desc: true}.OrderClause())
	assert.Equal(t, "created_at ASC, id ASC", PageQuery{}.OrderClause())
}

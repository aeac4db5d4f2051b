package keystore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.yaml")
	s := NewFileStore(path)

	_, ok, err := s.Get(ctx, NameAPIKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, NameAPIKey, "AIza-secret"))
	require.NoError(t, s.Set(ctx, NameTheme, "dark"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened := NewFileStore(path)
	v, ok, err := reopened.Get(ctx, NameAPIKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "AIza-secret", v)

	require.NoError(t, reopened.Delete(ctx, NameAPIKey, "missing"))
	_, ok, err = reopened.Get(ctx, NameAPIKey)
	require.NoError(t, err)
	assert.False(t, ok)

	v, _, err = reopened.Get(ctx, NameTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", v)
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: [unterminated"), 0o600))

	_, _, err := NewFileStore(path).Get(context.Background(), NameAPIKey)
	assert.Error(t, err)
}

func TestCredentialsRememberAndForget(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := NewCredentials(store)

	_, ok, err := c.Remembered(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.ErrorIs(t, c.Remember(ctx, ""), ErrEmptyKey)
	_, ok, _ = store.Get(ctx, NameRemember)
	assert.False(t, ok, "remember flag must not be set without a key")

	require.NoError(t, c.Remember(ctx, "k1"))
	flag, _, _ := store.Get(ctx, NameRemember)
	assert.Equal(t, "true", flag)
	key, ok, err := c.Remembered(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "k1", key)

	require.NoError(t, c.Forget(ctx))
	_, ok, err = c.Remembered(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, NameAPIKey)
	assert.False(t, ok)
}

func TestCredentialsIgnoresKeyWithoutFlag(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, NameAPIKey, "stale"))

	_, ok, err := NewCredentials(store).Remembered(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCredentialsTheme(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := NewCredentials(store)

	theme, err := c.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeDevice, theme)

	require.NoError(t, c.SetTheme(ctx, ThemeDark))
	theme, _ = c.Theme(ctx)
	assert.Equal(t, ThemeDark, theme)

	require.NoError(t, c.SetTheme(ctx, ThemeDevice))
	_, ok, _ := store.Get(ctx, NameTheme)
	assert.False(t, ok)

	assert.ErrorIs(t, c.SetTheme(ctx, "sepia"), ErrInvalidTheme)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", Mask(""))
	assert.Equal(t, "***", Mask("abc"))
	assert.Equal(t, "AIza******", Mask("AIzaSyDx12"))
	assert.Equal(t, "AIza************", Mask("AIzaSyD0123456789abcdefghijklmnop"))
}

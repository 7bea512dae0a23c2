package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	s := NewFileStorage(path)

	_, ok, err := s.Get(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok, "missing file reads as empty")

	require.NoError(t, s.Set(KeyToken, "abc"))
	require.NoError(t, s.Set(KeyUser, `{"id":"u1"}`))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened := NewFileStorage(path)
	v, ok, err := reopened.Get(KeyUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":"u1"}`, v)

	require.NoError(t, reopened.Remove(KeyToken))
	_, ok, err = reopened.Get(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, reopened.Clear())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: [unterminated"), 0600))

	_, _, err := NewFileStorage(path).Get(KeyToken)
	assert.Error(t, err)
}

func TestMemoryStorage(t *testing.T) {
	m := NewMemoryStorage()
	require.NoError(t, m.Set(KeyToken, "t"))
	require.NoError(t, m.Set(KeyRefreshToken, "r"))
	assert.Equal(t, 2, m.Len())

	require.NoError(t, m.Remove(KeyToken))
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Clear())
	assert.Equal(t, 0, m.Len())
}

package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DinhTQSE/schoolmed-client/session"
)

func tempStore(t *testing.T) (*session.FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "session.json")
	store, err := session.NewFileStore(path)
	require.NoError(t, err)
	return store, path
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, path := tempStore(t)

	require.NoError(t, store.Save("t1", cachedAlice()))

	token, err := store.Token()
	require.NoError(t, err)
	require.Equal(t, "t1", token)

	user, err := store.User()
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, "t1", user.Token)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreEmpty(t *testing.T) {
	store, _ := tempStore(t)

	token, err := store.Token()
	require.NoError(t, err)
	require.Empty(t, token)

	user, err := store.User()
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestFileStoreRequiresPath(t *testing.T) {
	_, err := session.NewFileStore("  ")
	require.Error(t, err)
}

func TestFileStoreCorruptUserDiscarded(t *testing.T) {
	store, path := tempStore(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"token":"t1","user":{"id":"not a number"}}`), 0o600))

	// The token survives even when the cached user record is unreadable.
	token, err := store.Token()
	require.NoError(t, err)
	require.Equal(t, "t1", token)

	user, err := store.User()
	require.NoError(t, err)
	require.Nil(t, user, "corrupt cached user must read as absent")
}

func TestFileStoreCorruptFileTreatedAsEmpty(t *testing.T) {
	store, path := tempStore(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{{{{"), 0o600))

	token, err := store.Token()
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestFileStoreClearIdempotent(t *testing.T) {
	store, path := tempStore(t)
	require.NoError(t, store.Save("t1", cachedAlice()))

	require.NoError(t, store.Clear())
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	require.NoError(t, store.Clear())
}

func TestFileStoreRotationVisible(t *testing.T) {
	// Two stores over the same path model two processes of one installation.
	store, path := tempStore(t)
	other, err := session.NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Save("t1", cachedAlice()))
	require.NoError(t, other.Save("t2", cachedAlice()))

	token, err := store.Token()
	require.NoError(t, err)
	require.Equal(t, "t2", token, "rotation by another process must be visible")
}

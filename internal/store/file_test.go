package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "testnet.store.json")

	s, err := OpenFileStore(path)
	require.NoError(t, err)

	require.NoError(t, s.Set("nearlight:session", json.RawMessage(`{"account_id":"alice.near"}`)))
	require.NoError(t, s.Set("nearlight:nonce", json.RawMessage(`42`)))

	// A fresh open reads back what was written.
	reopened, err := OpenFileStore(path)
	require.NoError(t, err)

	v, ok, err := reopened.Get("nearlight:session")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"account_id":"alice.near"}`, string(v))

	v, ok, err = reopened.Get("nearlight:nonce")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "42", string(v))
}

func TestFileStore_DeletePersists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "s.json")

	s, err := OpenFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("k", json.RawMessage(`1`)))
	require.NoError(t, s.Delete("k"))
	require.NoError(t, s.Delete("never-existed"))

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	_, ok, err := reopened.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	s, err := OpenFileStore(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	_, ok, err := s.Get("anything")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_CorruptFileSidelined(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "s.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := OpenFileStore(path)
	require.ErrorIs(t, err, ErrCorruptStore)
	require.NotNil(t, s, "a corrupt file still yields a usable empty store")

	// The damaged file was moved aside, not deleted.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), ".corrupt.")

	// The store works from empty.
	require.NoError(t, s.Set("k", json.RawMessage(`true`)))
	_, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileStore_Permissions(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "s.json")
	s, err := OpenFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("k", json.RawMessage(`1`)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestJSONHelpers_ApplyNamespace(t *testing.T) {
	t.Parallel()

	s := NewMemStore()

	type session struct {
		AccountID string `json:"account_id"`
	}

	require.NoError(t, SetJSON(s, "session", session{AccountID: "alice.near"}))

	// The raw key carries the namespace prefix.
	_, ok, err := s.Get("nearlight:session")
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = s.Get("session")
	require.NoError(t, err)
	assert.False(t, ok)

	var out session
	found, err := GetJSON(s, "session", &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "alice.near", out.AccountID)

	require.NoError(t, DeleteKey(s, "session"))
	found, err = GetJSON(s, "session", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemStore_CopiesValues(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	buf := json.RawMessage(`"aaa"`)
	require.NoError(t, s.Set("k", buf))
	buf[1] = 'z'

	v, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `"aaa"`, string(v))
}

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mrz1836/nearlight/internal/fileutil"
)

const (
	// storeFilePermissions is the permission mode for the store file. The
	// file can hold a private key, so group read is excluded.
	storeFilePermissions = 0o600

	// storeDirPermissions is the permission mode for the store directory.
	storeDirPermissions = 0o750
)

// ErrCorruptStore indicates the store file is malformed JSON.
var ErrCorruptStore = errors.New("store file is corrupted")

// FileStore implements Store with a single JSON document on disk. Every
// mutation rewrites the file, mirroring the synchronous write-through of a
// browser's local storage.
type FileStore struct {
	mu      sync.Mutex
	path    string
	entries map[string]json.RawMessage
}

// Compile-time interface check
var _ Store = (*FileStore)(nil)

// OpenFileStore loads (or initializes) a file-backed store. A corrupted
// file is moved aside and an empty store is returned along with the error,
// so a damaged history file never bricks the client.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:    path,
		entries: make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(path) // #nosec G304 -- store path is from validated config
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading store file: %w", err)
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		corruptPath := fmt.Sprintf("%s.corrupt.%d", path, time.Now().UTC().UnixNano())
		if renameErr := os.Rename(path, corruptPath); renameErr != nil {
			return s, fmt.Errorf("%w: %w (also failed to move file: %w)", ErrCorruptStore, err, renameErr)
		}
		return s, fmt.Errorf("%w: %w (moved to %s)", ErrCorruptStore, err, corruptPath)
	}

	if s.entries == nil {
		s.entries = make(map[string]json.RawMessage)
	}

	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Get retrieves a value.
func (s *FileStore) Get(key string) (json.RawMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	return v, ok, nil
}

// Set stores a value and persists the store.
func (s *FileStore) Set(key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make(json.RawMessage, len(value))
	copy(cp, value)
	s.entries[key] = cp

	return s.flush()
}

// Delete removes a value and persists the store.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return nil
	}
	delete(s.entries, key)

	return s.flush()
}

// flush writes the store file. Caller holds the lock.
func (s *FileStore) flush() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, storeDirPermissions); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling store: %w", err)
	}

	// Atomic replace keeps a crash mid-write from corrupting the store;
	// the sidelining path in OpenFileStore then only handles external damage.
	if err := fileutil.WriteAtomic(s.path, data, storeFilePermissions); err != nil {
		return fmt.Errorf("writing store file: %w", err)
	}

	return nil
}

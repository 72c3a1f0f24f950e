package store

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"notepad-core/internal/filesystem"
	"notepad-core/internal/lock"
)

const (
	dirPerm  = 0755
	filePerm = 0600
)

var (
	// ErrKeyNotFound is returned by Get for keys that have never been set.
	ErrKeyNotFound = stdErrors.New("key not found")
	// ErrMalformed is returned by Reload when the file is not a JSON object.
	// The in-memory values are reset and the file is left alone until the next Save.
	ErrMalformed = stdErrors.New("malformed store")
)

// Store is a small JSON object persisted to a single file. Values are kept as
// raw JSON and decoded on demand.
type Store struct {
	path      string
	fsAdapter filesystem.FileSystemAdapter
	locker    lock.Locker
	logger    *zap.SugaredLogger

	mu     sync.RWMutex
	values map[string]json.RawMessage
}

// Option customises a Store.
type Option func(*Store)

// WithLogger sets the logger used to report unreadable store files.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open loads the store at path. A missing file yields an empty store. A file
// that cannot be loaded is logged and the store starts empty; callers see the
// failure again on their next Reload.
func Open(ctx context.Context, path string, fsAdapter filesystem.FileSystemAdapter, locker lock.Locker, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if fsAdapter == nil {
		return nil, fmt.Errorf("filesystem adapter is required")
	}
	if locker == nil {
		return nil, fmt.Errorf("locker is required")
	}
	s := &Store{
		path:      path,
		fsAdapter: fsAdapter,
		locker:    locker,
		logger:    zap.NewNop().Sugar(),
		values:    make(map[string]json.RawMessage),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(ctx); err != nil {
		s.logger.Warnw("store unreadable, starting empty", "path", path, "error", err)
	}
	return s, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Reload replaces the in-memory values with the contents of the file.
func (s *Store) Reload(ctx context.Context) error {
	if err := s.fsAdapter.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	return lock.WithLock(ctx, s.locker, s.path, func() error {
		data, err := s.fsAdapter.ReadFileBytes(s.path)
		if stdErrors.Is(err, fs.ErrNotExist) {
			s.mu.Lock()
			s.values = make(map[string]json.RawMessage)
			s.mu.Unlock()
			return nil
		}
		if err != nil {
			return fmt.Errorf("read store %s: %w", s.path, err)
		}

		values := make(map[string]json.RawMessage)
		if len(data) > 0 {
			if err := json.Unmarshal(data, &values); err != nil {
				s.mu.Lock()
				s.values = make(map[string]json.RawMessage)
				s.mu.Unlock()
				return fmt.Errorf("%w %s: %v", ErrMalformed, s.path, err)
			}
		}
		s.mu.Lock()
		s.values = values
		s.mu.Unlock()
		return nil
	})
}

// Get decodes the value stored under key into out.
func (s *Store) Get(key string, out interface{}) error {
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return ErrKeyNotFound
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode key %q: %w", key, err)
	}
	return nil
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

// Set stores value under key. It is not persisted until Save.
func (s *Store) Set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode key %q: %w", key, err)
	}
	s.mu.Lock()
	s.values[key] = raw
	s.mu.Unlock()
	return nil
}

// Delete removes key. It is not persisted until Save.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
}

// Save writes the store to disk under the file lock, replacing the file atomically.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.values, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode store %s: %w", s.path, err)
	}

	if err := s.fsAdapter.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	return lock.WithLock(ctx, s.locker, s.path, func() error {
		if err := s.fsAdapter.WriteFileBytesAtomic(s.path, data, filePerm); err != nil {
			return fmt.Errorf("write store %s: %w", s.path, err)
		}
		return nil
	})
}

// Package store provides crash-safe JSON document persistence with
// per-key exclusive locking.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ErrLockTimeout is returned when a key's lock could not be acquired
// within the configured wait. The operation performed no work.
var ErrLockTimeout = errors.New("store: lock acquisition timed out")

// Store reads and writes JSON documents under a base directory, one file
// per key. Writes are atomic: data lands in a temp file in the same
// directory, is fsynced, then renamed over the destination, so a crash
// leaves either the old or the new content but never a torn file.
type Store struct {
	dir         string
	lockTimeout time.Duration
	log         *zap.SugaredLogger

	mu    sync.Mutex
	locks map[string]*semaphore.Weighted
}

// New creates the base directory if needed and returns a Store over it.
func New(dir string, lockTimeout time.Duration, log *zap.SugaredLogger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &Store{
		dir:         dir,
		lockTimeout: lockTimeout,
		log:         log,
		locks:       make(map[string]*semaphore.Weighted),
	}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) lockFor(key string) *semaphore.Weighted {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = semaphore.NewWeighted(1)
		s.locks[key] = l
	}
	return l
}

// Read unmarshals the document for key into v. A missing file or
// unparseable content leaves v untouched and returns false: callers treat
// both as "start from empty" rather than failing the operation.
func (s *Store) Read(key string, v any) bool {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warnw("record unreadable, starting empty", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.log.Warnw("record corrupt, starting empty", "key", key, "error", err)
		return false
	}
	return true
}

// Write marshals v and atomically replaces the document for key. On any
// failure the previous file content is preserved.
func (s *Store) Write(key string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	dst := s.path(key)
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", key, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp for %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp for %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp for %s: %w", key, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// WithLock runs fn while holding the exclusive lock for key. The lock
// spans the whole read-compute-write sequence so concurrent mutations of
// the same key serialize. Acquisition gives up after the configured
// timeout and returns ErrLockTimeout.
func (s *Store) WithLock(ctx context.Context, key string, fn func() error) error {
	l := s.lockFor(key)

	acquireCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	if err := l.Acquire(acquireCtx, 1); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.log.Warnw("lock wait exceeded", "key", key, "timeout", s.lockTimeout)
			return ErrLockTimeout
		}
		return err
	}
	defer l.Release(1)

	return fn()
}

// Exists reports whether a document is present for key.
func (s *Store) Exists(key string) bool {
	_, err := os.Stat(s.path(key))
	return err == nil
}

// Delete removes the document for key. Missing files are not an error.
func (s *Store) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys lists all document keys currently on disk.
func (s *Store) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list store dir: %w", err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		keys = append(keys, name[:len(name)-len(".json")])
	}
	return keys, nil
}

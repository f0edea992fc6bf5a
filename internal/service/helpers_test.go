package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"akasha-terminal-api/internal/catalog"
	"akasha-terminal-api/internal/repository"
	"akasha-terminal-api/internal/store"
	"akasha-terminal-api/pkg/logger"
)

// scriptedRNG replays a fixed sequence of values, wrapping around.
type scriptedRNG struct {
	vals []float64
	i    int
}

func (s *scriptedRNG) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func newTestUserRepo(t *testing.T) repository.UserRepository {
	t.Helper()
	s, err := store.New(t.TempDir(), time.Second, logger.Nop())
	require.NoError(t, err)
	return repository.NewJSONUserRepository(s)
}

const testWeaponCatalog = `[
	{"id": 300, "name": "Cool Steel", "type": "sword"},
	{"id": 301, "name": "Debate Club", "type": "claymore"},
	{"id": 302, "name": "Slingshot", "type": "bow"},
	{"id": 400, "name": "The Flute", "type": "sword"},
	{"id": 401, "name": "Rust", "type": "bow"},
	{"id": 500, "name": "Aquila Favonia", "type": "sword"},
	{"id": 501, "name": "Amos' Bow", "type": "bow"}
]`

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weapon.json")
	require.NoError(t, os.WriteFile(path, []byte(testWeaponCatalog), 0o644))
	c, err := catalog.Load(path)
	require.NoError(t, err)
	return c
}

var errFakeHistory = errors.New("history down")

// fakeHistory records appended events in memory.
type fakeHistory struct {
	events []repository.DrawEvent
	failed bool
}

func (f *fakeHistory) AppendDraws(_ context.Context, events []repository.DrawEvent) error {
	if f.failed {
		return errFakeHistory
	}
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeHistory) RecentDraws(_ context.Context, userID string, limit int) ([]repository.DrawEvent, error) {
	var out []repository.DrawEvent
	for i := len(f.events) - 1; i >= 0 && len(out) < limit; i-- {
		if f.events[i].UserID == userID {
			out = append(out, f.events[i])
		}
	}
	return out, nil
}

func (f *fakeHistory) GetStats(_ context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{"total_draws": len(f.events)}, nil
}

func (f *fakeHistory) Close() error { return nil }

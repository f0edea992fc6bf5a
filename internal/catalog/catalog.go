// Package catalog loads the weapon reference data and serves immutable
// snapshots of it.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"akasha-terminal-api/internal/model"
	"akasha-terminal-api/pkg/apierror"
)

// Snapshot is one loaded generation of the weapon catalog. It is never
// mutated after construction; reloads swap in a fresh snapshot.
type Snapshot struct {
	byID    map[int]model.Weapon
	byTier  map[model.Rarity][]model.Weapon
	ordered []model.Weapon
}

// Catalog holds the current snapshot behind an RWMutex so a file reload
// never disturbs in-flight draws.
type Catalog struct {
	mu   sync.RWMutex
	cur  *Snapshot
	path string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads and validates the weapon file at path.
func Load(path string) (*Catalog, error) {
	snap, err := loadSnapshot(path)
	if err != nil {
		return nil, err
	}
	return &Catalog{cur: snap, path: path}, nil
}

func loadSnapshot(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weapon catalog: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	var weapons []model.Weapon
	if err := json.Unmarshal(raw, &weapons); err != nil {
		return nil, fmt.Errorf("parse weapon catalog %s: %w", path, err)
	}

	snap := &Snapshot{
		byID:   make(map[int]model.Weapon, len(weapons)),
		byTier: make(map[model.Rarity][]model.Weapon),
	}
	for _, w := range weapons {
		tier := w.Rarity()
		if tier == 0 {
			return nil, fmt.Errorf("weapon catalog %s: id %d outside every rarity range", path, w.ID)
		}
		if w.Name == "" {
			return nil, fmt.Errorf("weapon catalog %s: id %d has no name", path, w.ID)
		}
		if _, dup := snap.byID[w.ID]; dup {
			return nil, fmt.Errorf("weapon catalog %s: duplicate id %d", path, w.ID)
		}
		snap.byID[w.ID] = w
		snap.byTier[tier] = append(snap.byTier[tier], w)
		snap.ordered = append(snap.ordered, w)
	}
	sort.Slice(snap.ordered, func(i, j int) bool { return snap.ordered[i].ID < snap.ordered[j].ID })
	return snap, nil
}

// Reload re-reads the file and atomically swaps the snapshot. A failed
// reload keeps the previous snapshot in service.
func (c *Catalog) Reload() error {
	snap, err := loadSnapshot(c.path)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.cur = snap
	c.mu.Unlock()
	return nil
}

func (c *Catalog) snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cur
}

// Get returns the weapon with the given id.
func (c *Catalog) Get(id int) (model.Weapon, bool) {
	w, ok := c.snapshot().byID[id]
	return w, ok
}

// All returns every weapon, ordered by id.
func (c *Catalog) All() []model.Weapon {
	return c.snapshot().ordered
}

// TierSize returns how many weapons the tier's pool holds.
func (c *Catalog) TierSize(tier model.Rarity) int {
	return len(c.snapshot().byTier[tier])
}

// PickRandom selects a uniformly random weapon from the tier's pool using
// the caller-supplied [0,1) random value. An empty pool is a configuration
// error; there is no silent fallback to another tier.
func (c *Catalog) PickRandom(tier model.Rarity, rnd float64) (model.Weapon, error) {
	pool := c.snapshot().byTier[tier]
	if len(pool) == 0 {
		return model.Weapon{}, apierror.Misconfigured(fmt.Sprintf("weapon catalog has no %d-star entries", tier))
	}
	idx := int(rnd * float64(len(pool)))
	if idx >= len(pool) {
		idx = len(pool) - 1
	}
	return pool[idx], nil
}

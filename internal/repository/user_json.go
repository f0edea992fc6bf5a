package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"akasha-terminal-api/internal/model"
	"akasha-terminal-api/internal/store"
	"akasha-terminal-api/pkg/apierror"
)

// JSONUserRepository keeps one JSON document per user on top of the atomic
// store. All mutation goes through Update/UpdatePair so concurrent writers
// to the same user serialize under the store's per-key lock.
type JSONUserRepository struct {
	store *store.Store
	clock func() time.Time
}

// NewJSONUserRepository creates a repository over the given store.
func NewJSONUserRepository(s *store.Store) *JSONUserRepository {
	return &JSONUserRepository{store: s, clock: time.Now}
}

// sanitizeID rejects ids that could escape the data directory or collide
// with temp-file naming.
func sanitizeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apierror.ValidationError("user id is required")
	}
	if len(id) > 64 {
		return "", apierror.ValidationError("user id too long")
	}
	for _, r := range id {
		ok := r == '-' || r == '_' ||
			(r >= '0' && r <= '9') ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z')
		if !ok {
			return "", apierror.ValidationError("user id may only contain letters, digits, '-' and '_'")
		}
	}
	return id, nil
}

func (r *JSONUserRepository) load(id string) *model.UserRecord {
	rec := &model.UserRecord{}
	r.store.Read(id, rec)
	rec.ID = id
	rec.FillDefaults(r.clock())
	return rec
}

// Get loads the record for id, defaulting any missing section. The result
// is not persisted; first persistence happens on the first Update.
func (r *JSONUserRepository) Get(ctx context.Context, id string) (*model.UserRecord, error) {
	id, err := sanitizeID(id)
	if err != nil {
		return nil, err
	}
	var rec *model.UserRecord
	err = r.store.WithLock(ctx, id, func() error {
		rec = r.load(id)
		return nil
	})
	if err != nil {
		return nil, lockErr(err)
	}
	return rec, nil
}

// Update applies fn to the record under the user's lock and writes the
// result atomically. An error from fn aborts without touching disk.
func (r *JSONUserRepository) Update(ctx context.Context, id string, fn func(*model.UserRecord) error) (*model.UserRecord, error) {
	id, err := sanitizeID(id)
	if err != nil {
		return nil, err
	}
	var rec *model.UserRecord
	err = r.store.WithLock(ctx, id, func() error {
		rec = r.load(id)
		if err := fn(rec); err != nil {
			return err
		}
		if err := r.store.Write(id, rec); err != nil {
			return apierror.StorageFailure(fmt.Sprintf("persist user %s", id))
		}
		return nil
	})
	if err != nil {
		return nil, lockErr(err)
	}
	return rec, nil
}

type userTxn struct {
	repo *JSONUserRepository
	id   string
	rec  *model.UserRecord
}

func (t *userTxn) User() *model.UserRecord { return t.rec }

func (t *userTxn) Save() error {
	if err := t.repo.store.Write(t.id, t.rec); err != nil {
		return apierror.StorageFailure(fmt.Sprintf("persist user %s", t.id))
	}
	return nil
}

// WithLock holds the user's lock across fn and lets fn persist the record
// step by step through the transaction's Save. Writes that already
// happened stay on disk even when fn later fails.
func (r *JSONUserRepository) WithLock(ctx context.Context, id string, fn func(txn UserTxn) error) error {
	id, err := sanitizeID(id)
	if err != nil {
		return err
	}
	err = r.store.WithLock(ctx, id, func() error {
		return fn(&userTxn{repo: r, id: id, rec: r.load(id)})
	})
	return lockErr(err)
}

// UpdatePair mutates two users' records under both locks. Locks are taken
// in lexicographic id order so concurrent pair updates cannot deadlock.
func (r *JSONUserRepository) UpdatePair(ctx context.Context, idA, idB string, fn func(a, b *model.UserRecord) error) error {
	idA, err := sanitizeID(idA)
	if err != nil {
		return err
	}
	idB, err = sanitizeID(idB)
	if err != nil {
		return err
	}
	if idA == idB {
		return apierror.ValidationError("user ids must differ")
	}

	first, second := idA, idB
	if second < first {
		first, second = second, first
	}

	err = r.store.WithLock(ctx, first, func() error {
		return r.store.WithLock(ctx, second, func() error {
			a := r.load(idA)
			b := r.load(idB)
			if err := fn(a, b); err != nil {
				return err
			}
			if err := r.store.Write(idA, a); err != nil {
				return apierror.StorageFailure(fmt.Sprintf("persist user %s", idA))
			}
			if err := r.store.Write(idB, b); err != nil {
				return apierror.StorageFailure(fmt.Sprintf("persist user %s", idB))
			}
			return nil
		})
	})
	return lockErr(err)
}

// List returns the ids of all persisted users.
func (r *JSONUserRepository) List(ctx context.Context) ([]string, error) {
	return r.store.Keys()
}

// Delete removes a user's record from disk.
func (r *JSONUserRepository) Delete(ctx context.Context, id string) error {
	id, err := sanitizeID(id)
	if err != nil {
		return err
	}
	return r.store.WithLock(ctx, id, func() error {
		return r.store.Delete(id)
	})
}

func lockErr(err error) error {
	if err == store.ErrLockTimeout {
		return apierror.StorageFailure("user record is busy, try again")
	}
	return err
}

var _ UserRepository = (*JSONUserRepository)(nil)

package repository

import (
	"context"
	"time"

	"akasha-terminal-api/internal/model"
)

// UserRepository defines access to the per-user JSON records.
type UserRepository interface {
	// Get loads a user record, creating a defaulted in-memory record when
	// none exists on disk. The record is NOT persisted by Get.
	Get(ctx context.Context, id string) (*model.UserRecord, error)

	// Update runs fn against the user's record under the per-user lock and
	// persists the result in a single atomic write. fn returning an error
	// aborts the update and nothing is written.
	Update(ctx context.Context, id string, fn func(*model.UserRecord) error) (*model.UserRecord, error)

	// WithLock opens a critical section over the user's record. fn may call
	// txn.Save any number of times; each call is one atomic write, so a
	// multi-step operation can persist after every settled step. An error
	// from fn does not roll back writes already saved.
	WithLock(ctx context.Context, id string, fn func(txn UserTxn) error) error

	// UpdatePair locks two users in a stable order and runs fn against
	// both records, persisting each in one atomic write per user.
	UpdatePair(ctx context.Context, idA, idB string, fn func(a, b *model.UserRecord) error) error

	// List returns all user ids with a record on disk.
	List(ctx context.Context) ([]string, error)

	// Delete removes a user record.
	Delete(ctx context.Context, id string) error
}

// UserTxn is an open critical section over one user record.
type UserTxn interface {
	// User returns the live record. Mutations become durable on Save.
	User() *model.UserRecord

	// Save persists the record's current state in one atomic write.
	Save() error
}

// DrawEvent is one row of the draw-history log.
type DrawEvent struct {
	UserID   string
	WeaponID int
	Rarity   int
	IsNew    bool
	DrawnAt  time.Time
}

// HistoryRepository defines the draw-history audit log.
type HistoryRepository interface {
	// AppendDraws records a batch of draw events.
	AppendDraws(ctx context.Context, events []DrawEvent) error

	// RecentDraws returns the most recent events for a user, newest first.
	RecentDraws(ctx context.Context, userID string, limit int) ([]DrawEvent, error)

	// GetStats returns aggregate statistics about the history database.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the repository connection.
	Close() error
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"go.uber.org/zap"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteHistoryRepository implements HistoryRepository using SQLite.
// Thread-safe with WAL mode for high-concurrency reads.
type SQLiteHistoryRepository struct {
	db  *sql.DB
	log *zap.SugaredLogger
	mu  sync.RWMutex
}

// NewSQLiteHistoryRepository creates a new SQLite history repository.
// dbPath is the path to the SQLite database file (e.g., "./data/history.db").
func NewSQLiteHistoryRepository(dbPath string, log *zap.SugaredLogger) (*SQLiteHistoryRepository, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createHistoryTable(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Infow("draw history database ready", "backend", "sqlite", "path", dbPath)
	return &SQLiteHistoryRepository{db: db, log: log}, nil
}

func createHistoryTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS draw_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		weapon_id INTEGER NOT NULL,
		rarity INTEGER NOT NULL,
		is_new INTEGER NOT NULL DEFAULT 0,
		drawn_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_draw_user ON draw_history(user_id, drawn_at);
	CREATE INDEX IF NOT EXISTS idx_draw_rarity ON draw_history(rarity);
	`
	_, err := db.Exec(query)
	return err
}

// AppendDraws records a batch of draw events in one transaction.
func (r *SQLiteHistoryRepository) AppendDraws(ctx context.Context, events []DrawEvent) error {
	if len(events) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO draw_history (user_id, weapon_id, rarity, is_new, drawn_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		isNew := 0
		if ev.IsNew {
			isNew = 1
		}
		if _, err := stmt.ExecContext(ctx, ev.UserID, ev.WeaponID, ev.Rarity, isNew, ev.DrawnAt); err != nil {
			return fmt.Errorf("failed to insert draw event for %s: %w", ev.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RecentDraws returns the newest events for a user.
func (r *SQLiteHistoryRepository) RecentDraws(ctx context.Context, userID string, limit int) ([]DrawEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, weapon_id, rarity, is_new, drawn_at
		FROM draw_history WHERE user_id = ?
		ORDER BY drawn_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query draw history: %w", err)
	}
	defer rows.Close()

	var events []DrawEvent
	for rows.Next() {
		var ev DrawEvent
		var isNew int
		if err := rows.Scan(&ev.UserID, &ev.WeaponID, &ev.Rarity, &isNew, &ev.DrawnAt); err != nil {
			return nil, fmt.Errorf("failed to scan draw event: %w", err)
		}
		ev.IsNew = isNew != 0
		events = append(events, ev)
	}
	return events, rows.Err()
}

// GetStats returns statistics about the history database.
func (r *SQLiteHistoryRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]interface{})

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM draw_history").Scan(&total); err != nil {
		return nil, err
	}
	stats["total_draws"] = total

	var fiveStars int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM draw_history WHERE rarity = 5").Scan(&fiveStars); err != nil {
		return nil, err
	}
	stats["five_star_draws"] = fiveStars

	var users int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT user_id) FROM draw_history").Scan(&users); err != nil {
		return nil, err
	}
	stats["distinct_users"] = users

	var lastDraw sql.NullTime
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(drawn_at) FROM draw_history").Scan(&lastDraw); err == nil && lastDraw.Valid {
		stats["last_draw"] = lastDraw.Time
	}

	return stats, nil
}

// Close closes the database connection.
func (r *SQLiteHistoryRepository) Close() error {
	return r.db.Close()
}

var _ HistoryRepository = (*SQLiteHistoryRepository)(nil)

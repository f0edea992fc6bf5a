package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLHistoryRepository implements HistoryRepository using MySQL, for
// deployments that want draw history in a shared database.
type MySQLHistoryRepository struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

// NewMySQLHistoryRepository connects to MySQL and prepares the schema.
func NewMySQLHistoryRepository(dsn string, log *zap.SugaredLogger) (*MySQLHistoryRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS draw_history (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id VARCHAR(64) NOT NULL,
		weapon_id INT NOT NULL,
		rarity TINYINT NOT NULL,
		is_new TINYINT(1) NOT NULL DEFAULT 0,
		drawn_at DATETIME NOT NULL,
		INDEX idx_draw_user (user_id, drawn_at),
		INDEX idx_draw_rarity (rarity)
	)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Infow("draw history database ready", "backend", "mysql")
	return &MySQLHistoryRepository{db: db, log: log}, nil
}

// AppendDraws records a batch of draw events in one transaction.
func (r *MySQLHistoryRepository) AppendDraws(ctx context.Context, events []DrawEvent) error {
	if len(events) == 0 {
		return nil
	}

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
		if _, err := stmt.ExecContext(ctx, ev.UserID, ev.WeaponID, ev.Rarity, ev.IsNew, ev.DrawnAt); err != nil {
			return fmt.Errorf("failed to insert draw event for %s: %w", ev.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RecentDraws returns the newest events for a user.
func (r *MySQLHistoryRepository) RecentDraws(ctx context.Context, userID string, limit int) ([]DrawEvent, error) {
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
		if err := rows.Scan(&ev.UserID, &ev.WeaponID, &ev.Rarity, &ev.IsNew, &ev.DrawnAt); err != nil {
			return nil, fmt.Errorf("failed to scan draw event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// GetStats returns statistics about the history database.
func (r *MySQLHistoryRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
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

	return stats, nil
}

// Close closes the database connection.
func (r *MySQLHistoryRepository) Close() error {
	return r.db.Close()
}

var _ HistoryRepository = (*MySQLHistoryRepository)(nil)

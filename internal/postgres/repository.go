package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"netrunner-rpg-backend/internal/config"
	"netrunner-rpg-backend/internal/models"
)

// Repository is the durable snapshot store behind the live Redis state.
// It is written by the sync worker and read only for recovery.
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a snapshot repository and verifies the connection.
func NewRepository(cfg *config.PostgresConfig, logger *slog.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Repository{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// RunMigrations executes database migrations.
func (r *Repository) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS player_snapshots (
			user_id VARCHAR(64) PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			street_name VARCHAR(64),
			level INT NOT NULL,
			xp INT NOT NULL,
			credits INT NOT NULL,
			data JSONB NOT NULL,
			snapshot_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_player_snapshots_rank ON player_snapshots(level DESC, xp DESC)`,
	}

	for _, migration := range migrations {
		_, err := r.pool.Exec(ctx, migration)
		if err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}

// BatchUpsertPlayers writes a batch of snapshots in one round trip. The
// full record rides in the JSONB column; the scalar columns exist for
// ad hoc queries.
func (r *Repository) BatchUpsertPlayers(ctx context.Context, players []*models.Player) error {
	if len(players) == 0 {
		return nil
	}

	query := `
		INSERT INTO player_snapshots (user_id, username, street_name, level, xp, credits, data, snapshot_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id)
		DO UPDATE SET username = $2, street_name = $3, level = $4, xp = $5, credits = $6, data = $7, snapshot_at = $8
	`
	now := time.Now()

	batch := &pgx.Batch{}
	for _, player := range players {
		data, err := json.Marshal(player)
		if err != nil {
			return fmt.Errorf("marshaling player snapshot: %w", err)
		}
		batch.Queue(query,
			player.UserID,
			player.Username,
			player.StreetName,
			player.Level,
			player.XP,
			player.Credits,
			data,
			now,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range players {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch upserting snapshots: %w", err)
		}
	}
	return nil
}

// DeletePlayer removes a snapshot. The privacy delete path calls this so
// the erased record does not survive in the durable store.
func (r *Repository) DeletePlayer(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM player_snapshots WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("deleting player snapshot: %w", err)
	}
	return nil
}

// LoadAll streams every snapshot, for recovery into the live store.
func (r *Repository) LoadAll(ctx context.Context) ([]*models.Player, error) {
	rows, err := r.pool.Query(ctx, `SELECT data FROM player_snapshots`)
	if err != nil {
		return nil, fmt.Errorf("loading player snapshots: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		var player models.Player
		if err := json.Unmarshal(data, &player); err != nil {
			r.logger.Warn("skipping corrupt snapshot", "error", err)
			continue
		}
		players = append(players, &player)
	}
	return players, nil
}

// Count returns the number of stored snapshots.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM player_snapshots`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting snapshots: %w", err)
	}
	return count, nil
}

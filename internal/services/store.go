package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"netrunner-rpg-backend/internal/config"
	"netrunner-rpg-backend/internal/models"
)

// Store is the keyed player record store the rules engines run against.
// RedisStore is the production implementation; tests substitute their own.
type Store interface {
	Get(ctx context.Context, userID string) (*models.Player, error)
	GetOrCreate(ctx context.Context, userID, username string) (*models.Player, error)
	Update(ctx context.Context, userID string, update *models.PlayerUpdate) (*models.Player, error)
	Delete(ctx context.Context, userID string) error

	TopPlayers(ctx context.Context, n int) ([]models.LeaderboardEntry, error)
	Count(ctx context.Context) (int64, error)
	TotalCredits(ctx context.Context) (int64, error)
	AllPlayers(ctx context.Context) ([]*models.Player, error)

	SavePendingAction(ctx context.Context, action *models.PendingAction) error
	GetPendingAction(ctx context.Context, id string) (*models.PendingAction, error)
	DeletePendingAction(ctx context.Context, id string) error

	CheckRateLimit(ctx context.Context, userID, action string, limit int, window time.Duration) (bool, error)
}

// RedisStore keeps one JSON blob per player plus a sorted set that orders
// players by (level, xp) for the leaderboard and the aggregate queries.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg *config.RedisConfig, logger *slog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisStore{client: client, logger: logger}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func playerKey(userID string) string {
	return fmt.Sprintf(KeyPlayer, userID)
}

// rankScore folds level and xp into one sortable score. XP per level is
// bounded well below the multiplier, so level always dominates.
func rankScore(level, xp int) float64 {
	return float64(level)*1_000_000 + float64(xp)
}

// Get fetches a player record or models.ErrPlayerNotFound.
func (s *RedisStore) Get(ctx context.Context, userID string) (*models.Player, error) {
	data, err := s.client.Get(ctx, playerKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting player: %w", err)
	}

	var player models.Player
	if err := json.Unmarshal([]byte(data), &player); err != nil {
		return nil, fmt.Errorf("unmarshaling player: %w", err)
	}
	return &player, nil
}

// GetOrCreate fetches the record, creating it with defaults on first
// contact.
func (s *RedisStore) GetOrCreate(ctx context.Context, userID, username string) (*models.Player, error) {
	player, err := s.Get(ctx, userID)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, models.ErrPlayerNotFound) {
		return nil, err
	}

	player = models.NewPlayer(userID, username)
	if err := s.save(ctx, player); err != nil {
		return nil, fmt.Errorf("creating player: %w", err)
	}
	return player, nil
}

// Update applies a typed partial update and returns the stored result.
func (s *RedisStore) Update(ctx context.Context, userID string, update *models.PlayerUpdate) (*models.Player, error) {
	player, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	update.Apply(player)

	if err := s.save(ctx, player); err != nil {
		return nil, fmt.Errorf("updating player: %w", err)
	}
	return player, nil
}

// save writes the record and keeps the ranking set in step with it.
func (s *RedisStore) save(ctx context.Context, player *models.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("marshaling player: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, playerKey(player.UserID), data, 0)
	pipe.ZAdd(ctx, KeyLeaderboard, redis.Z{
		Score:  rankScore(player.Level, player.XP),
		Member: player.UserID,
	})
	_, err = pipe.Exec(ctx)
	return err
}

// Delete erases a player and all owned auxiliary records. This is the
// hard delete behind privacy self-service; nothing survives it.
func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, playerKey(userID))
	pipe.Del(ctx, fmt.Sprintf(KeyPlayerInv, userID))
	pipe.ZRem(ctx, KeyLeaderboard, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("deleting player: %w", err)
	}
	return nil
}

// TopPlayers returns the top n entries ordered by level then xp.
func (s *RedisStore) TopPlayers(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	ids, err := s.client.ZRevRange(ctx, KeyLeaderboard, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting top players: %w", err)
	}
	if len(ids) == 0 {
		return []models.LeaderboardEntry{}, nil
	}

	players, err := s.bulkGet(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(players))
	for i, player := range players {
		if player == nil {
			continue
		}
		entries = append(entries, models.LeaderboardEntry{
			Rank:     i + 1,
			UserID:   player.UserID,
			Username: player.DisplayName(),
			Level:    player.Level,
			XP:       player.XP,
			Credits:  player.Credits,
		})
	}
	return entries, nil
}

// Count returns the number of registered players.
func (s *RedisStore) Count(ctx context.Context) (int64, error) {
	count, err := s.client.ZCard(ctx, KeyLeaderboard).Result()
	if err != nil {
		return 0, fmt.Errorf("counting players: %w", err)
	}
	return count, nil
}

// TotalCredits sums the credit balances across every player, the
// circulating-supply figure shown in admin stats.
func (s *RedisStore) TotalCredits(ctx context.Context) (int64, error) {
	players, err := s.AllPlayers(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, player := range players {
		total += int64(player.Credits)
	}
	return total, nil
}

// AllPlayers loads every stored record; the snapshot worker uses this to
// mirror state into the durable store.
func (s *RedisStore) AllPlayers(ctx context.Context) ([]*models.Player, error) {
	ids, err := s.client.ZRange(ctx, KeyLeaderboard, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}

	players, err := s.bulkGet(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*models.Player, 0, len(players))
	for _, p := range players {
		if p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

// bulkGet pipelines record fetches; missing members come back nil.
func (s *RedisStore) bulkGet(ctx context.Context, ids []string) ([]*models.Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, playerKey(id))
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("pipeline execution failed: %w", err)
	}

	players := make([]*models.Player, len(ids))
	for i, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			continue
		}
		var player models.Player
		if err := json.Unmarshal([]byte(data), &player); err != nil {
			s.logger.Warn("skipping corrupt player record", "user_id", ids[i], "error", err)
			continue
		}
		players[i] = &player
	}
	return players, nil
}

// SavePendingAction stores an interactive follow-up with its validity
// window as the TTL.
func (s *RedisStore) SavePendingAction(ctx context.Context, action *models.PendingAction) error {
	data, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("marshaling pending action: %w", err)
	}

	key := fmt.Sprintf(KeyPendingAction, action.ID)
	if err := s.client.Set(ctx, key, data, models.PendingActionTTL).Err(); err != nil {
		return fmt.Errorf("saving pending action: %w", err)
	}
	return nil
}

// GetPendingAction fetches a follow-up record; expiry reads as
// models.ErrActionExpired.
func (s *RedisStore) GetPendingAction(ctx context.Context, id string) (*models.PendingAction, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(KeyPendingAction, id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrActionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("getting pending action: %w", err)
	}

	var action models.PendingAction
	if err := json.Unmarshal([]byte(data), &action); err != nil {
		return nil, fmt.Errorf("unmarshaling pending action: %w", err)
	}
	return &action, nil
}

// DeletePendingAction tears down a follow-up once its terminal step fired.
func (s *RedisStore) DeletePendingAction(ctx context.Context, id string) error {
	return s.client.Del(ctx, fmt.Sprintf(KeyPendingAction, id)).Err()
}

// CheckRateLimit counts actions in a fixed window per user.
func (s *RedisStore) CheckRateLimit(ctx context.Context, userID, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, userID, action)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if count == 1 {
		s.client.Expire(ctx, key, window)
	}
	return count <= int64(limit), nil
}

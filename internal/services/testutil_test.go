package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"

	"netrunner-rpg-backend/internal/models"
)

// memStore is an in-memory Store for engine tests.
type memStore struct {
	players map[string]*models.Player
	pending map[string]*models.PendingAction

	rateLimited bool
	updateCalls int
}

func newMemStore() *memStore {
	return &memStore{
		players: make(map[string]*models.Player),
		pending: make(map[string]*models.PendingAction),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func clonePlayer(p *models.Player) *models.Player {
	c := *p
	return &c
}

func (s *memStore) Get(ctx context.Context, userID string) (*models.Player, error) {
	p, ok := s.players[userID]
	if !ok {
		return nil, models.ErrPlayerNotFound
	}
	return clonePlayer(p), nil
}

func (s *memStore) GetOrCreate(ctx context.Context, userID, username string) (*models.Player, error) {
	if p, ok := s.players[userID]; ok {
		return clonePlayer(p), nil
	}
	p := models.NewPlayer(userID, username)
	s.players[userID] = p
	return clonePlayer(p), nil
}

func (s *memStore) Update(ctx context.Context, userID string, update *models.PlayerUpdate) (*models.Player, error) {
	p, ok := s.players[userID]
	if !ok {
		return nil, models.ErrPlayerNotFound
	}
	update.Apply(p)
	s.updateCalls++
	return clonePlayer(p), nil
}

func (s *memStore) Delete(ctx context.Context, userID string) error {
	if _, ok := s.players[userID]; !ok {
		return models.ErrPlayerNotFound
	}
	delete(s.players, userID)
	return nil
}

func (s *memStore) TopPlayers(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	all := make([]*models.Player, 0, len(s.players))
	for _, p := range s.players {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Level != all[j].Level {
			return all[i].Level > all[j].Level
		}
		return all[i].XP > all[j].XP
	})
	if n > len(all) {
		n = len(all)
	}
	entries := make([]models.LeaderboardEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, models.LeaderboardEntry{
			Rank:     i + 1,
			UserID:   all[i].UserID,
			Username: all[i].DisplayName(),
			Level:    all[i].Level,
			XP:       all[i].XP,
			Credits:  all[i].Credits,
		})
	}
	return entries, nil
}

func (s *memStore) Count(ctx context.Context) (int64, error) {
	return int64(len(s.players)), nil
}

func (s *memStore) TotalCredits(ctx context.Context) (int64, error) {
	var total int64
	for _, p := range s.players {
		total += int64(p.Credits)
	}
	return total, nil
}

func (s *memStore) AllPlayers(ctx context.Context) ([]*models.Player, error) {
	out := make([]*models.Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, clonePlayer(p))
	}
	return out, nil
}

func (s *memStore) SavePendingAction(ctx context.Context, action *models.PendingAction) error {
	s.pending[action.ID] = action
	return nil
}

func (s *memStore) GetPendingAction(ctx context.Context, id string) (*models.PendingAction, error) {
	action, ok := s.pending[id]
	if !ok {
		return nil, models.ErrActionExpired
	}
	return action, nil
}

func (s *memStore) DeletePendingAction(ctx context.Context, id string) error {
	delete(s.pending, id)
	return nil
}

func (s *memStore) CheckRateLimit(ctx context.Context, userID, action string, limit int, window time.Duration) (bool, error) {
	return !s.rateLimited, nil
}

// recordingBroadcaster captures published events for assertions.
type recordingBroadcaster struct {
	events []string
}

func (b *recordingBroadcaster) PublishPlayerEvent(userID, eventType string, data any) {
	b.events = append(b.events, eventType)
}

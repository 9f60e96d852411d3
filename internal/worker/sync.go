package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"netrunner-rpg-backend/internal/config"
	"netrunner-rpg-backend/internal/models"
)

const snapshotBatchSize = 500

// PlayerSource is the live store the worker reads from.
type PlayerSource interface {
	AllPlayers(ctx context.Context) ([]*models.Player, error)
	GetOrCreate(ctx context.Context, userID, username string) (*models.Player, error)
	Update(ctx context.Context, userID string, update *models.PlayerUpdate) (*models.Player, error)
}

// SnapshotStore is the durable side the worker mirrors into and
// recovers from.
type SnapshotStore interface {
	BatchUpsertPlayers(ctx context.Context, players []*models.Player) error
	LoadAll(ctx context.Context) ([]*models.Player, error)
}

// SyncWorker mirrors the live player state into PostgreSQL on an
// interval. Redis remains the source of truth; the snapshots exist for
// recovery and offline analysis.
type SyncWorker struct {
	source    PlayerSource
	snapshots SnapshotStore
	config    *config.SyncConfig
	logger    *slog.Logger
	stopCh    chan struct{}
	doneCh    chan struct{}
	mu        sync.Mutex
	running   bool
}

// NewSyncWorker creates a new sync worker.
func NewSyncWorker(
	source PlayerSource,
	snapshots SnapshotStore,
	cfg *config.SyncConfig,
	logger *slog.Logger,
) *SyncWorker {
	return &SyncWorker{
		source:    source,
		snapshots: snapshots,
		config:    cfg,
		logger:    logger,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background snapshot process.
func (w *SyncWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("snapshot worker started", "interval", w.config.Interval)

	go w.run(ctx)
	return nil
}

// Stop stops the background snapshot process.
func (w *SyncWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("snapshot worker stopped")
	return nil
}

// run is the main worker loop.
func (w *SyncWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.snapshotAll(ctx)
		}
	}
}

// snapshotAll copies every live record to the snapshot store in batches.
func (w *SyncWorker) snapshotAll(ctx context.Context) {
	startTime := time.Now()

	players, err := w.source.AllPlayers(ctx)
	if err != nil {
		w.logger.Error("failed to list players for snapshot", "error", err)
		return
	}
	if len(players) == 0 {
		return
	}

	var written, errored int
	for start := 0; start < len(players); start += snapshotBatchSize {
		end := start + snapshotBatchSize
		if end > len(players) {
			end = len(players)
		}
		if err := w.snapshots.BatchUpsertPlayers(ctx, players[start:end]); err != nil {
			w.logger.Error("failed to write snapshot batch", "error", err)
			errored += end - start
			continue
		}
		written += end - start
	}

	w.logger.Info("snapshot cycle completed",
		"duration", time.Since(startTime),
		"written", written,
		"errors", errored,
	)
}

// RestoreFromDatabase loads snapshots back into the live store. Used at
// startup after a Redis wipe; records already live are left alone.
func (w *SyncWorker) RestoreFromDatabase(ctx context.Context) error {
	players, err := w.snapshots.LoadAll(ctx)
	if err != nil {
		return err
	}

	restored := 0
	for _, snapshot := range players {
		existing, err := w.source.GetOrCreate(ctx, snapshot.UserID, snapshot.Username)
		if err != nil {
			w.logger.Error("failed to restore player", "user_id", snapshot.UserID, "error", err)
			continue
		}
		// GetOrCreate returning a fresh record means the live store lost
		// this player; write the snapshot contents back over it.
		if existing.CreatedAt.After(snapshot.CreatedAt) {
			if _, err := w.source.Update(ctx, snapshot.UserID, snapshotUpdate(snapshot)); err != nil {
				w.logger.Error("failed to restore player", "user_id", snapshot.UserID, "error", err)
				continue
			}
			restored++
		}
	}

	w.logger.Info("restore from database completed", "snapshots", len(players), "restored", restored)
	return nil
}

// IsRunning returns whether the worker is currently running.
func (w *SyncWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// RunOnce runs a single snapshot cycle, the manual trigger path.
func (w *SyncWorker) RunOnce(ctx context.Context) {
	w.snapshotAll(ctx)
}

// snapshotUpdate converts a stored snapshot into a full-record update.
func snapshotUpdate(p *models.Player) *models.PlayerUpdate {
	u := &models.PlayerUpdate{
		Username:         &p.Username,
		StreetName:       &p.StreetName,
		Background:       &p.Background,
		Backstory:        &p.Backstory,
		Level:            &p.Level,
		XP:               &p.XP,
		Credits:          &p.Credits,
		Health:           &p.Health,
		MaxHealth:        &p.MaxHealth,
		Cybernetics:      &p.Cybernetics,
		StreetCred:       &p.StreetCred,
		Netrunning:       &p.Netrunning,
		Combat:           &p.Combat,
		Tech:             &p.Tech,
		TraceLevel:       &p.TraceLevel,
		FailedHacks:      &p.FailedHacks,
		SuccessfulHacks:  &p.SuccessfulHacks,
		CharacterCreated: &p.CharacterCreated,
	}
	if p.LastDaily != nil {
		u.LastDaily = p.LastDaily
	}
	if p.LastHack != nil {
		u.LastHack = p.LastHack
	}
	if p.LastFailedHack != nil {
		u.LastFailedHack = p.LastFailedHack
	}
	if p.PrivacyAccepted != nil {
		u.PrivacyAccepted = p.PrivacyAccepted
	}
	return u
}

package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"netrunner-rpg-backend/internal/services"
	"netrunner-rpg-backend/internal/worker"
)

const (
	giveCreditsMin = 1
	giveCreditsMax = 100000
)

// SnapshotCounter reports how many records the durable snapshot store
// holds. Nil when the snapshot store is disabled.
type SnapshotCounter interface {
	Count(ctx context.Context) (int64, error)
}

// AdminHandler serves the operator routes. Route-level middleware
// decides who gets here; give-credits, reset and shutdown are mounted
// owner-only.
type AdminHandler struct {
	store      services.Store
	economy    *services.EconomyEngine
	syncWorker *worker.SyncWorker
	snapshots  SnapshotCounter
	shutdownCh chan<- struct{}
	startedAt  time.Time
}

func NewAdminHandler(
	store services.Store,
	economy *services.EconomyEngine,
	syncWorker *worker.SyncWorker,
	snapshots SnapshotCounter,
	shutdownCh chan<- struct{},
) *AdminHandler {
	return &AdminHandler{
		store:      store,
		economy:    economy,
		syncWorker: syncWorker,
		snapshots:  snapshots,
		shutdownCh: shutdownCh,
		startedAt:  time.Now(),
	}
}

// Stats reports the aggregate gauges: player count, circulating credits,
// uptime, and the snapshot worker state.
func (h *AdminHandler) Stats(c *gin.Context) {
	count, err := h.store.Count(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	totalCredits, err := h.store.TotalCredits(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"players":        count,
		"total_credits":  totalCredits,
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
		"go_version":     runtime.Version(),
	}
	if h.syncWorker != nil {
		resp["snapshot_worker_running"] = h.syncWorker.IsRunning()
	}
	if h.snapshots != nil {
		snapshotCount, err := h.snapshots.Count(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		resp["snapshots"] = snapshotCount
	}

	c.JSON(http.StatusOK, resp)
}

// ResetUser restores a target record to its starting values, keeping the
// profile fields.
func (h *AdminHandler) ResetUser(c *gin.Context) {
	targetID := c.Param("id")

	player, err := h.economy.ResetPlayer(c.Request.Context(), targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Player reset to starting values",
		"user_id": player.UserID,
		"credits": player.Credits,
		"level":   player.Level,
	})
}

type giveCreditsRequest struct {
	Amount int `json:"amount" binding:"required"`
}

// GiveCredits transfers credits to a target balance, bounded per call.
func (h *AdminHandler) GiveCredits(c *gin.Context) {
	targetID := c.Param("id")

	var req giveCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "INVALID_INPUT"})
		return
	}
	if req.Amount < giveCreditsMin || req.Amount > giveCreditsMax {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Amount out of range",
			"code":  "INVALID_INPUT",
			"min":   giveCreditsMin,
			"max":   giveCreditsMax,
		})
		return
	}

	player, err := h.economy.GiveCredits(c.Request.Context(), targetID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Credits transferred",
		"user_id": player.UserID,
		"credits": player.Credits,
	})
}

// TriggerSnapshot runs a snapshot cycle outside the schedule.
func (h *AdminHandler) TriggerSnapshot(c *gin.Context) {
	if h.syncWorker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Snapshot store disabled"})
		return
	}

	h.syncWorker.RunOnce(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Snapshot cycle completed"})
}

// Shutdown signals the process to stop gracefully.
func (h *AdminHandler) Shutdown(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Shutting down"})

	select {
	case h.shutdownCh <- struct{}{}:
	default:
	}
}

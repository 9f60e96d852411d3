package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"netrunner-rpg-backend/internal/models"
	"netrunner-rpg-backend/internal/services"
)

// SnapshotDeleter erases a player from the durable snapshot store. Nil
// when the snapshot store is disabled.
type SnapshotDeleter interface {
	DeletePlayer(ctx context.Context, userID string) error
}

// PrivacyHandler serves the data self-service routes: policy, export,
// and the hard delete.
type PrivacyHandler struct {
	store     services.Store
	snapshots SnapshotDeleter
	logger    *slog.Logger
}

func NewPrivacyHandler(store services.Store, snapshots SnapshotDeleter, logger *slog.Logger) *PrivacyHandler {
	return &PrivacyHandler{
		store:     store,
		snapshots: snapshots,
		logger:    logger,
	}
}

// GetPolicy shows the policy text and the caller's consent status.
func (h *PrivacyHandler) GetPolicy(c *gin.Context) {
	userID := c.GetString("user_id")

	resp := gin.H{"policy": privacySummary}

	player, err := h.store.Get(c.Request.Context(), userID)
	switch {
	case err == nil:
		resp["consent_given"] = player.HasConsent()
		resp["consent_at"] = player.PrivacyAccepted
	case errors.Is(err, models.ErrPlayerNotFound):
		resp["consent_given"] = false
	default:
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ViewData shows the caller everything stored about them.
func (h *PrivacyHandler) ViewData(c *gin.Context) {
	userID := c.GetString("user_id")

	player, err := h.store.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"player": player})
}

// ExportData returns a portable copy of the record with the platform
// identifier stripped, so the file itself does not tie back to the
// account.
func (h *PrivacyHandler) ExportData(c *gin.Context) {
	userID := c.GetString("user_id")

	player, err := h.store.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	export := *player
	export.UserID = ""

	c.Header("Content-Disposition", "attachment; filename=netrunner-data.json")
	c.JSON(http.StatusOK, export)
}

// DeleteData permanently erases the caller's record and everything owned
// by it, in the live store and the snapshot store both.
func (h *PrivacyHandler) DeleteData(c *gin.Context) {
	userID := c.GetString("user_id")

	if _, err := h.store.Get(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	if err := h.store.Delete(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	if h.snapshots != nil {
		if err := h.snapshots.DeletePlayer(c.Request.Context(), userID); err != nil {
			// The live record is already gone; log so the snapshot can be
			// cleaned up manually.
			h.logger.Error("failed to delete player snapshot", "user_id", userID, "error", err)
		}
	}

	h.logger.Info("player data deleted", "user_id", userID)

	c.JSON(http.StatusOK, gin.H{
		"message": "All your data has been permanently deleted. Stay safe out there.",
	})
}

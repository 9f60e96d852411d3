package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"netrunner-rpg-backend/internal/models"
	"netrunner-rpg-backend/internal/services"
)

// EconomyHandler serves the credit-spending commands: the daily claim,
// healing, and the two-step skill upgrade.
type EconomyHandler struct {
	engine *services.EconomyEngine
}

func NewEconomyHandler(engine *services.EconomyEngine) *EconomyHandler {
	return &EconomyHandler{engine: engine}
}

// ClaimDaily pays the periodic stipend.
func (h *EconomyHandler) ClaimDaily(c *gin.Context) {
	userID := c.GetString("user_id")
	username := c.GetString("username")

	outcome, err := h.engine.ClaimDaily(c.Request.Context(), userID, username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// Heal buys a full restore at the ripperdoc.
func (h *EconomyHandler) Heal(c *gin.Context) {
	userID := c.GetString("user_id")
	username := c.GetString("username")

	outcome, err := h.engine.Heal(c.Request.Context(), userID, username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

type upgradeRequest struct {
	Skill models.SkillKey `json:"skill" binding:"required"`
}

// QuoteUpgrade prices an upgrade and parks it behind a confirmation.
func (h *EconomyHandler) QuoteUpgrade(c *gin.Context) {
	userID := c.GetString("user_id")
	username := c.GetString("username")

	var req upgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "INVALID_INPUT"})
		return
	}

	offer, err := h.engine.QuoteUpgrade(c.Request.Context(), userID, username, req.Skill)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

// ConfirmUpgrade applies a quoted upgrade.
func (h *EconomyHandler) ConfirmUpgrade(c *gin.Context) {
	userID := c.GetString("user_id")
	actionID := c.Param("id")

	outcome, err := h.engine.ConfirmUpgrade(c.Request.Context(), userID, actionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// CancelUpgrade tears down a quoted upgrade.
func (h *EconomyHandler) CancelUpgrade(c *gin.Context) {
	userID := c.GetString("user_id")
	actionID := c.Param("id")

	if err := h.engine.CancelUpgrade(c.Request.Context(), userID, actionID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Upgrade cancelled"})
}

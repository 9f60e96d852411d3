package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"netrunner-rpg-backend/internal/models"
	"netrunner-rpg-backend/internal/services"
)

// HackHandler serves the risky-action flow: the tier menu and the
// resolution of one attempt.
type HackHandler struct {
	engine *services.HackEngine
}

func NewHackHandler(engine *services.HackEngine) *HackHandler {
	return &HackHandler{engine: engine}
}

// BeginHack checks the failure gate and returns the tier menu with the
// player's current odds per tier. Nothing is mutated here.
func (h *HackHandler) BeginHack(c *gin.Context) {
	userID := c.GetString("user_id")
	username := c.GetString("username")

	player, err := h.engine.Begin(c.Request.Context(), userID, username)
	if err != nil {
		respondError(c, err)
		return
	}

	tiers := make([]gin.H, 0, 3)
	for _, tier := range []models.HackTier{models.TierLow, models.TierMedium, models.TierHigh} {
		params, _ := services.TierParamsFor(tier)
		tiers = append(tiers, gin.H{
			"tier":         tier,
			"target":       tier.DisplayName(),
			"success_rate": services.CalculateSuccessRate(player.Netrunning, tier, player.TraceLevel),
			"min_reward":   params.MinReward,
			"max_reward":   params.MaxReward,
			"health_risk":  params.HealthDamage,
			"trace_chance": int(params.TraceChance * 100),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"trace": gin.H{
			"level":  player.TraceLevel,
			"status": models.TraceStatus(player.TraceLevel),
		},
		"tiers": tiers,
	})
}

// ResolveHack runs one attempt at the requested tier.
func (h *HackHandler) ResolveHack(c *gin.Context) {
	userID := c.GetString("user_id")
	tier := models.HackTier(c.Param("tier"))

	if !tier.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown hack tier", "code": "INVALID_INPUT"})
		return
	}

	outcome, err := h.engine.Resolve(c.Request.Context(), userID, tier)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

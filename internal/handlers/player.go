package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"netrunner-rpg-backend/internal/models"
	"netrunner-rpg-backend/internal/services"
)

const progressBarSlots = 20

// PlayerHandler serves the read-only player views: profile, credits,
// and the leaderboard.
type PlayerHandler struct {
	store services.Store
}

func NewPlayerHandler(store services.Store) *PlayerHandler {
	return &PlayerHandler{store: store}
}

// GetProfile renders the character sheet.
func (h *PlayerHandler) GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")
	username := c.GetString("username")

	player, err := h.store.GetOrCreate(c.Request.Context(), userID, username)
	if err != nil {
		respondError(c, err)
		return
	}

	// Total xp is always below the next-level threshold, so the bar
	// renders xp directly against it.
	xpToNext := services.XPToNextLevel(player.Level)

	backgroundName := ""
	if bg, ok := models.LookupBackground(player.Background); ok {
		backgroundName = bg.Name
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":      player.UserID,
		"display_name": player.DisplayName(),
		"street_name":  player.StreetName,
		"background":   backgroundName,
		"backstory":    player.Backstory,
		"level":        player.Level,
		"xp":           player.XP,
		"xp_to_next":   xpToNext,
		"progress_bar": models.ProgressBar(player.XP, xpToNext, progressBarSlots),
		"credits":      player.Credits,
		"health": gin.H{
			"current": player.Health,
			"max":     player.MaxHealth,
			"status":  models.HealthStatus(player.Health),
		},
		"trace": gin.H{
			"level":  player.TraceLevel,
			"max":    models.TraceLevelMax,
			"status": models.TraceStatus(player.TraceLevel),
		},
		"skills": gin.H{
			"cybernetics": player.Cybernetics,
			"street_cred": player.StreetCred,
			"netrunning":  player.Netrunning,
			"combat":      player.Combat,
			"tech":        player.Tech,
		},
		"hacks": gin.H{
			"successful":   player.SuccessfulHacks,
			"failed":       player.FailedHacks,
			"success_rate": models.SuccessPercent(player.SuccessfulHacks, player.FailedHacks),
		},
		"member_since": player.CreatedAt,
	})
}

// GetCredits renders the balance with everything credits can buy right
// now: the priced upgrade list and the heal quote when injured.
func (h *PlayerHandler) GetCredits(c *gin.Context) {
	userID := c.GetString("user_id")
	username := c.GetString("username")

	player, err := h.store.GetOrCreate(c.Request.Context(), userID, username)
	if err != nil {
		respondError(c, err)
		return
	}

	upgrades := services.AvailableUpgrades(player)
	totalCost := 0
	for _, q := range upgrades {
		totalCost += q.Cost
	}

	resp := gin.H{
		"credits":            player.Credits,
		"skill_cap":          services.SkillCap(player.Level, player.StreetCred),
		"upgrades":           upgrades,
		"total_upgrade_cost": totalCost,
	}
	if player.Health < player.MaxHealth {
		cost := services.HealingCost(player.Health, player.MaxHealth)
		resp["healing"] = gin.H{
			"cost":       cost,
			"affordable": player.Credits >= cost,
		}
	}

	c.JSON(http.StatusOK, resp)
}

// GetLeaderboard returns the top players by level then xp.
func (h *PlayerHandler) GetLeaderboard(c *gin.Context) {
	entries, err := h.store.TopPlayers(c.Request.Context(), services.LeaderboardSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

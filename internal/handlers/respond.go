package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"netrunner-rpg-backend/internal/models"
)

// respondError maps domain errors onto HTTP responses. Typed errors
// carry their payload; everything unrecognized is a 500 with a generic
// body so internals never leak to the client.
func respondError(c *gin.Context, err error) {
	var cooldown *models.CooldownError
	if errors.As(err, &cooldown) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":             cooldown.Error(),
			"code":              "ON_COOLDOWN",
			"remaining_seconds": int(cooldown.Remaining.Seconds()),
		})
		return
	}

	var insufficient *models.InsufficientCreditsError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   insufficient.Error(),
			"code":    "INSUFFICIENT_CREDITS",
			"cost":    insufficient.Cost,
			"balance": insufficient.Balance,
		})
		return
	}

	var capped *models.SkillCapError
	if errors.As(err, &capped) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": capped.Error(),
			"code":  "SKILL_CAPPED",
			"skill": capped.Skill,
			"cap":   capped.Cap,
		})
		return
	}

	switch {
	case errors.Is(err, models.ErrPlayerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "PLAYER_NOT_FOUND"})
	case errors.Is(err, models.ErrNoCharacter):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "NO_CHARACTER"})
	case errors.Is(err, models.ErrNoConsent):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "NO_CONSENT"})
	case errors.Is(err, models.ErrCharacterExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "CHARACTER_EXISTS"})
	case errors.Is(err, models.ErrProfileIncomplete):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "PROFILE_INCOMPLETE"})
	case errors.Is(err, models.ErrInvalidBackground),
		errors.Is(err, models.ErrInvalidSkill),
		errors.Is(err, models.ErrInvalidStreetName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INVALID_INPUT"})
	case errors.Is(err, models.ErrNotYourInteraction):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "NOT_YOUR_INTERACTION"})
	case errors.Is(err, models.ErrActionExpired):
		c.JSON(http.StatusGone, gin.H{"error": err.Error(), "code": "ACTION_EXPIRED"})
	case errors.Is(err, models.ErrFullHealth):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "FULL_HEALTH"})
	case errors.Is(err, models.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error(), "code": "RATE_LIMITED"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

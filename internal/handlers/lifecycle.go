package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"netrunner-rpg-backend/internal/models"
	"netrunner-rpg-backend/internal/services"
)

// privacySummary is shown on the consent screen before any record exists.
const privacySummary = "We store your user id, chosen street name, backstory and game progress. " +
	"Your data is never shared and can be exported or permanently deleted at any time."

// LifecycleHandler serves the jack-in flow from consent to background
// selection.
type LifecycleHandler struct {
	lifecycle *services.Lifecycle
}

func NewLifecycleHandler(lifecycle *services.Lifecycle) *LifecycleHandler {
	return &LifecycleHandler{lifecycle: lifecycle}
}

// JackIn reports the player's position in the creation flow and what the
// next step is. A finished character gets an informational response, not
// an error.
func (h *LifecycleHandler) JackIn(c *gin.Context) {
	userID := c.GetString("user_id")

	state, player, err := h.lifecycle.Status(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	switch state {
	case services.StateComplete:
		c.JSON(http.StatusOK, gin.H{
			"state":       state,
			"message":     "You're already jacked in, " + player.DisplayName() + ". The street knows your name.",
			"street_name": player.StreetName,
			"background":  player.Background,
		})
	case services.StateProfileDraft:
		c.JSON(http.StatusOK, gin.H{
			"state":       state,
			"message":     "Profile saved. Choose your background to finish.",
			"street_name": player.StreetName,
			"next":        "background",
		})
	case services.StateConsentGiven:
		c.JSON(http.StatusOK, gin.H{
			"state":   state,
			"message": "Consent recorded. Submit your street name to continue.",
			"next":    "profile",
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"state":   state,
			"message": "Before you jack in, we need your consent to store your data.",
			"privacy": privacySummary,
			"next":    "consent",
		})
	}
}

type consentRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

// Consent records acceptance or renders the decline screen. Declining
// stores nothing at all.
func (h *LifecycleHandler) Consent(c *gin.Context) {
	userID := c.GetString("user_id")
	username := c.GetString("username")

	var req consentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "INVALID_INPUT"})
		return
	}

	if !*req.Accept {
		c.JSON(http.StatusOK, gin.H{
			"accepted": false,
			"message":  "Understood. Nothing was stored. Come back if you change your mind.",
		})
		return
	}

	player, err := h.lifecycle.AcceptConsent(c.Request.Context(), userID, username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accepted":    true,
		"accepted_at": player.PrivacyAccepted,
		"next":        "profile",
	})
}

type profileRequest struct {
	StreetName string `json:"street_name" binding:"required"`
	Backstory  string `json:"backstory"`
}

// SubmitProfile stores the street name and backstory draft.
func (h *LifecycleHandler) SubmitProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "INVALID_INPUT"})
		return
	}

	player, err := h.lifecycle.SubmitProfile(c.Request.Context(), userID, req.StreetName, req.Backstory)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"street_name": player.StreetName,
		"next":        "background",
	})
}

// ListBackgrounds returns the origin catalog in display order.
func (h *LifecycleHandler) ListBackgrounds(c *gin.Context) {
	backgrounds := make([]models.Background, 0, len(models.BackgroundOrder))
	for _, key := range models.BackgroundOrder {
		backgrounds = append(backgrounds, models.Backgrounds[key])
	}
	c.JSON(http.StatusOK, gin.H{"backgrounds": backgrounds})
}

type backgroundRequest struct {
	Background models.BackgroundKey `json:"background" binding:"required"`
}

// SelectBackground finishes character creation.
func (h *LifecycleHandler) SelectBackground(c *gin.Context) {
	userID := c.GetString("user_id")

	var req backgroundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "INVALID_INPUT"})
		return
	}

	player, background, err := h.lifecycle.SelectBackground(c.Request.Context(), userID, req.Background)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Welcome to Night City, " + player.DisplayName() + ".",
		"street_name": player.StreetName,
		"background":  background.Name,
		"credits":     player.Credits,
		"skills": gin.H{
			"cybernetics": player.Cybernetics,
			"street_cred": player.StreetCred,
			"netrunning":  player.Netrunning,
			"combat":      player.Combat,
			"tech":        player.Tech,
		},
	})
}

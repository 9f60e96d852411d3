package models

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors
var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrNoCharacter        = errors.New("character not created")
	ErrNoConsent          = errors.New("privacy consent not given")
	ErrCharacterExists    = errors.New("character already created")
	ErrProfileIncomplete  = errors.New("profile draft not found")
	ErrInvalidBackground  = errors.New("invalid background selection")
	ErrInvalidSkill       = errors.New("invalid skill selection")
	ErrInvalidStreetName  = errors.New("invalid street name")
	ErrNotYourInteraction = errors.New("interaction belongs to another user")
	ErrActionExpired      = errors.New("pending action expired")
	ErrFullHealth         = errors.New("health already at maximum")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrUnauthorized       = errors.New("unauthorized")
)

// CooldownError is returned when a time gate has not elapsed yet. It
// carries the remaining wait so handlers can report it.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("on cooldown for another %s", e.Remaining.Round(time.Minute))
}

// AsCooldown unwraps a CooldownError if err is one.
func AsCooldown(err error) (*CooldownError, bool) {
	var ce *CooldownError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// InsufficientCreditsError is returned when a purchase costs more than the
// player's balance.
type InsufficientCreditsError struct {
	Cost    int
	Balance int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: need %d, have %d", e.Cost, e.Balance)
}

// SkillCapError is returned when an upgrade would push a skill past the
// level-derived cap.
type SkillCapError struct {
	Skill SkillKey
	Cap   int
}

func (e *SkillCapError) Error() string {
	return fmt.Sprintf("%s cannot exceed level %d", e.Skill.DisplayName(), e.Cap)
}

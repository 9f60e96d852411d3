package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"netrunner-rpg-backend/internal/models"
)

// CreationState is the position of a player in the character creation
// flow. The state is derived from the record, never stored separately.
type CreationState string

const (
	StateNoConsent    CreationState = "no_consent"
	StateConsentGiven CreationState = "consent_given"
	StateProfileDraft CreationState = "profile_draft"
	StateComplete     CreationState = "complete"
)

// Lifecycle drives the jack-in flow: consent, profile draft, background
// selection. Declining consent is a terminal display state and persists
// nothing, so it has no method here.
type Lifecycle struct {
	store  Store
	locks  *LockRing
	logger *slog.Logger
}

// NewLifecycle wires the creation flow.
func NewLifecycle(store Store, locks *LockRing, logger *slog.Logger) *Lifecycle {
	return &Lifecycle{store: store, locks: locks, logger: logger}
}

// stateOf derives the creation state from a record.
func stateOf(p *models.Player) CreationState {
	switch {
	case p == nil || !p.HasConsent():
		return StateNoConsent
	case p.CharacterCreated:
		return StateComplete
	case p.StreetName != "":
		return StateProfileDraft
	default:
		return StateConsentGiven
	}
}

// Status reports where the player is in the flow. A missing record is
// simply NoConsent; nothing is created by looking.
func (l *Lifecycle) Status(ctx context.Context, userID string) (CreationState, *models.Player, error) {
	player, err := l.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrPlayerNotFound) {
			return StateNoConsent, nil, nil
		}
		return StateNoConsent, nil, err
	}
	return stateOf(player), player, nil
}

// AcceptConsent records the privacy acceptance, creating the record on
// first contact. Accepting again is harmless and keeps the original
// timestamp.
func (l *Lifecycle) AcceptConsent(ctx context.Context, userID, username string) (*models.Player, error) {
	unlock := l.locks.Lock(userID)
	defer unlock()

	player, err := l.store.GetOrCreate(ctx, userID, username)
	if err != nil {
		return nil, err
	}
	if player.HasConsent() {
		return player, nil
	}

	now := time.Now().UTC()
	updated, err := l.store.Update(ctx, userID, &models.PlayerUpdate{PrivacyAccepted: &now})
	if err != nil {
		return nil, fmt.Errorf("recording consent: %w", err)
	}

	l.logger.Info("privacy consent accepted", "user_id", userID)
	return updated, nil
}

// SubmitProfile stores the street name and optional backstory
// provisionally. Requires consent; the draft can be resubmitted until a
// background is chosen.
func (l *Lifecycle) SubmitProfile(ctx context.Context, userID, streetName, backstory string) (*models.Player, error) {
	if err := models.ValidateStreetName(streetName); err != nil {
		return nil, err
	}
	if err := models.ValidateBackstory(backstory); err != nil {
		return nil, err
	}

	unlock := l.locks.Lock(userID)
	defer unlock()

	player, err := l.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !player.HasConsent() {
		return nil, models.ErrNoConsent
	}
	if player.CharacterCreated {
		return nil, models.ErrCharacterExists
	}

	updated, err := l.store.Update(ctx, userID, &models.PlayerUpdate{
		StreetName: &streetName,
		Backstory:  &backstory,
	})
	if err != nil {
		return nil, fmt.Errorf("storing profile draft: %w", err)
	}
	return updated, nil
}

// SelectBackground completes creation: the background's bonuses are added
// to the (zero) skills, credits are overwritten with the starting amount,
// and the character flag flips. Terminal step of the flow.
func (l *Lifecycle) SelectBackground(ctx context.Context, userID string, key models.BackgroundKey) (*models.Player, *models.Background, error) {
	background, ok := models.LookupBackground(key)
	if !ok {
		return nil, nil, models.ErrInvalidBackground
	}

	unlock := l.locks.Lock(userID)
	defer unlock()

	player, err := l.store.Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if player.CharacterCreated {
		return nil, nil, models.ErrCharacterExists
	}
	if player.StreetName == "" {
		return nil, nil, models.ErrProfileIncomplete
	}

	credits := background.StartingCredits
	created := true
	update := &models.PlayerUpdate{
		Background:       &key,
		Credits:          &credits,
		CharacterCreated: &created,
	}
	for skill, bonus := range background.Bonuses {
		update.SetSkill(skill, player.Skill(skill)+bonus)
	}

	updated, err := l.store.Update(ctx, userID, update)
	if err != nil {
		return nil, nil, fmt.Errorf("completing character creation: %w", err)
	}

	l.logger.Info("character created",
		"user_id", userID,
		"street_name", updated.StreetName,
		"background", key,
	)
	return updated, &background, nil
}

// HasCharacter is the gate check used by the command middleware.
func (l *Lifecycle) HasCharacter(ctx context.Context, userID string) (bool, error) {
	state, _, err := l.Status(ctx, userID)
	if err != nil {
		return false, err
	}
	return state == StateComplete, nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"netrunner-rpg-backend/internal/models"
)

const dailyClaimWindow = 24 * time.Hour

var healingFlavor = []string{
	"The ripperdoc patches your neural pathways.",
	"Synthetic blood flows through fresh IV lines.",
	"Your cortex tingles as damaged neurons regenerate.",
	"Nanobots repair cellular damage throughout your system.",
	"The doc's chrome hands work with precision on your wounds.",
	"Neural stimulants flood your system, restoring vitality.",
}

// DailyOutcome reports a successful daily claim.
type DailyOutcome struct {
	BaseReward      int  `json:"base_reward"`
	LevelBonus      int  `json:"level_bonus"`
	StreetCredBonus int  `json:"street_cred_bonus"`
	TotalReward     int  `json:"total_reward"`
	XPGain          int  `json:"xp_gain"`
	StreetCredGain  int  `json:"street_cred_gain"`
	LeveledUp       bool `json:"leveled_up"`
	NewLevel        int  `json:"new_level"`
	Credits         int  `json:"credits"`
}

// HealOutcome reports a completed ripperdoc visit.
type HealOutcome struct {
	HealthBefore int    `json:"health_before"`
	HealthAfter  int    `json:"health_after"`
	Cost         int    `json:"cost"`
	Credits      int    `json:"credits"`
	Flavor       string `json:"flavor"`
}

// UpgradeOffer is the confirmation step of a skill upgrade. The quoted
// cost is pinned in a pending action; the player confirms or cancels it.
type UpgradeOffer struct {
	ActionID string          `json:"action_id"`
	Skill    models.SkillKey `json:"skill"`
	Current  int             `json:"current"`
	Next     int             `json:"next"`
	Cost     int             `json:"cost"`
	Cap      int             `json:"cap"`
	Balance  int             `json:"balance"`
	TTL      time.Duration   `json:"ttl_seconds"`
}

// UpgradeOutcome reports a confirmed upgrade.
type UpgradeOutcome struct {
	Skill   models.SkillKey `json:"skill"`
	From    int             `json:"from"`
	To      int             `json:"to"`
	Cost    int             `json:"cost"`
	Credits int             `json:"credits"`
}

// EconomyEngine owns the credit-touching commands outside of hacking:
// the daily claim, healing, skill upgrades, and the admin transfers.
type EconomyEngine struct {
	store       Store
	locks       *LockRing
	broadcaster Broadcaster
	logger      *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEconomyEngine wires the engine. broadcaster may be nil.
func NewEconomyEngine(store Store, locks *LockRing, rng *rand.Rand, logger *slog.Logger) *EconomyEngine {
	return &EconomyEngine{
		store:  store,
		locks:  locks,
		rng:    rng,
		logger: logger,
	}
}

// SetBroadcaster attaches the live event push once the hub exists.
func (e *EconomyEngine) SetBroadcaster(b Broadcaster) {
	e.broadcaster = b
}

func (e *EconomyEngine) roll() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Float64()
}

func (e *EconomyEngine) pickFlavor() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return healingFlavor[e.rng.Intn(len(healingFlavor))]
}

// ClaimDaily pays out the periodic stipend, once per 24 hours.
func (e *EconomyEngine) ClaimDaily(ctx context.Context, userID, username string) (*DailyOutcome, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	player, err := e.store.GetOrCreate(ctx, userID, username)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if player.LastDaily != nil {
		elapsed := now.Sub(*player.LastDaily)
		if elapsed < dailyClaimWindow {
			return nil, &models.CooldownError{Remaining: dailyClaimWindow - elapsed}
		}
	}

	outcome := &DailyOutcome{
		BaseReward:      dailyBaseReward,
		LevelBonus:      player.Level * dailyLevelBonus,
		StreetCredBonus: player.StreetCred * dailyStreetCredBonus,
		XPGain:          dailyXPGain,
	}
	outcome.TotalReward = DailyReward(player.Level, player.StreetCred)

	if e.roll() < DailyStreetCredChance(player.Level) {
		outcome.StreetCredGain = 1
	}

	newXP := player.XP + outcome.XPGain
	newLevel := LevelForXP(newXP)
	outcome.LeveledUp = newLevel > player.Level
	outcome.NewLevel = newLevel

	credits := player.Credits + outcome.TotalReward
	streetCred := player.StreetCred + outcome.StreetCredGain

	updated, err := e.store.Update(ctx, userID, &models.PlayerUpdate{
		Credits:    &credits,
		XP:         &newXP,
		Level:      &newLevel,
		StreetCred: &streetCred,
		LastDaily:  &now,
	})
	if err != nil {
		return nil, fmt.Errorf("applying daily claim: %w", err)
	}
	outcome.Credits = updated.Credits

	if e.broadcaster != nil {
		e.broadcaster.PublishPlayerEvent(userID, EventCreditsChanged, map[string]int{"credits": updated.Credits})
		if outcome.LeveledUp {
			e.broadcaster.PublishPlayerEvent(userID, EventLevelUp, map[string]int{"level": newLevel})
		}
	}

	return outcome, nil
}

// Heal restores health to maximum, paid in full or not at all.
func (e *EconomyEngine) Heal(ctx context.Context, userID, username string) (*HealOutcome, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	player, err := e.store.GetOrCreate(ctx, userID, username)
	if err != nil {
		return nil, err
	}

	if player.Health >= player.MaxHealth {
		return nil, models.ErrFullHealth
	}

	cost := HealingCost(player.Health, player.MaxHealth)
	if player.Credits < cost {
		return nil, &models.InsufficientCreditsError{Cost: cost, Balance: player.Credits}
	}

	credits := player.Credits - cost
	health := player.MaxHealth

	updated, err := e.store.Update(ctx, userID, &models.PlayerUpdate{
		Credits: &credits,
		Health:  &health,
	})
	if err != nil {
		return nil, fmt.Errorf("applying heal: %w", err)
	}

	return &HealOutcome{
		HealthBefore: player.Health,
		HealthAfter:  updated.Health,
		Cost:         cost,
		Credits:      updated.Credits,
		Flavor:       e.pickFlavor(),
	}, nil
}

// QuoteUpgrade validates an upgrade request and parks it behind a
// confirmation. The cap and funds are checked again at confirm time; the
// quote only filters out requests that could never succeed.
func (e *EconomyEngine) QuoteUpgrade(ctx context.Context, userID, username string, skill models.SkillKey) (*UpgradeOffer, error) {
	if !skill.Valid() {
		return nil, models.ErrInvalidSkill
	}

	player, err := e.store.GetOrCreate(ctx, userID, username)
	if err != nil {
		return nil, err
	}

	current := player.Skill(skill)
	cost := UpgradeCost(current)

	// The cap is computed from the pre-transaction street cred, for the
	// street cred upgrade itself as well.
	cap := SkillCap(player.Level, player.StreetCred)
	if current+1 > cap {
		return nil, &models.SkillCapError{Skill: skill, Cap: cap}
	}
	if player.Credits < cost {
		return nil, &models.InsufficientCreditsError{Cost: cost, Balance: player.Credits}
	}

	action := &models.PendingAction{
		ID:        models.GeneratePendingActionID(),
		OwnerID:   userID,
		Kind:      models.ActionUpgradeConfirm,
		Skill:     skill,
		Cost:      cost,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.store.SavePendingAction(ctx, action); err != nil {
		return nil, err
	}

	return &UpgradeOffer{
		ActionID: action.ID,
		Skill:    skill,
		Current:  current,
		Next:     current + 1,
		Cost:     cost,
		Cap:      cap,
		Balance:  player.Credits,
		TTL:      models.PendingActionTTL,
	}, nil
}

// ConfirmUpgrade applies a quoted upgrade. The acting identity must match
// the quote's owner; conditions are revalidated against current state.
func (e *EconomyEngine) ConfirmUpgrade(ctx context.Context, userID, actionID string) (*UpgradeOutcome, error) {
	action, err := e.store.GetPendingAction(ctx, actionID)
	if err != nil {
		return nil, err
	}
	if action.OwnerID != userID {
		return nil, models.ErrNotYourInteraction
	}
	if action.Kind != models.ActionUpgradeConfirm {
		return nil, models.ErrActionExpired
	}

	unlock := e.locks.Lock(userID)
	defer unlock()

	player, err := e.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	current := player.Skill(action.Skill)
	cost := UpgradeCost(current)
	cap := SkillCap(player.Level, player.StreetCred)

	if current+1 > cap {
		return nil, &models.SkillCapError{Skill: action.Skill, Cap: cap}
	}
	if player.Credits < cost {
		return nil, &models.InsufficientCreditsError{Cost: cost, Balance: player.Credits}
	}

	credits := player.Credits - cost
	update := &models.PlayerUpdate{Credits: &credits}
	update.SetSkill(action.Skill, current+1)

	updated, err := e.store.Update(ctx, userID, update)
	if err != nil {
		return nil, fmt.Errorf("applying upgrade: %w", err)
	}

	if err := e.store.DeletePendingAction(ctx, actionID); err != nil {
		e.logger.Warn("failed to delete pending upgrade", "action_id", actionID, "error", err)
	}

	e.logger.Info("skill upgraded",
		"user_id", userID,
		"skill", action.Skill,
		"from", current,
		"to", current+1,
		"cost", cost,
	)

	if e.broadcaster != nil {
		e.broadcaster.PublishPlayerEvent(userID, EventCreditsChanged, map[string]int{"credits": updated.Credits})
	}

	return &UpgradeOutcome{
		Skill:   action.Skill,
		From:    current,
		To:      current + 1,
		Cost:    cost,
		Credits: updated.Credits,
	}, nil
}

// CancelUpgrade tears down a quoted upgrade without touching state.
func (e *EconomyEngine) CancelUpgrade(ctx context.Context, userID, actionID string) error {
	action, err := e.store.GetPendingAction(ctx, actionID)
	if err != nil {
		return err
	}
	if action.OwnerID != userID {
		return models.ErrNotYourInteraction
	}
	return e.store.DeletePendingAction(ctx, actionID)
}

// GiveCredits adds credits to a target balance, the admin wire transfer.
func (e *EconomyEngine) GiveCredits(ctx context.Context, userID string, amount int) (*models.Player, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	player, err := e.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	credits := player.Credits + amount
	updated, err := e.store.Update(ctx, userID, &models.PlayerUpdate{Credits: &credits})
	if err != nil {
		return nil, fmt.Errorf("transferring credits: %w", err)
	}

	if e.broadcaster != nil {
		e.broadcaster.PublishPlayerEvent(userID, EventCreditsChanged, map[string]int{"credits": updated.Credits})
	}
	return updated, nil
}

// ResetPlayer restores a record to its starting values, keeping the
// profile fields.
func (e *EconomyEngine) ResetPlayer(ctx context.Context, userID string) (*models.Player, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	updated, err := e.store.Update(ctx, userID, models.ResetUpdate())
	if err != nil {
		return nil, fmt.Errorf("resetting player: %w", err)
	}
	return updated, nil
}

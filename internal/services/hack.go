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

// TierParams fixes the odds and stakes of one difficulty tier.
type TierParams struct {
	BaseRate         int
	MinReward        int
	MaxReward        int
	StreetCredChance float64
	TraceChance      float64
	HealthDamage     int
}

var tierParams = map[models.HackTier]TierParams{
	models.TierLow: {
		BaseRate:         90,
		MinReward:        50,
		MaxReward:        150,
		StreetCredChance: 0.1,
		TraceChance:      0.3,
		HealthDamage:     0,
	},
	models.TierMedium: {
		BaseRate:         70,
		MinReward:        100,
		MaxReward:        300,
		StreetCredChance: 0.2,
		TraceChance:      0.5,
		HealthDamage:     10,
	},
	models.TierHigh: {
		BaseRate:         50,
		MinReward:        200,
		MaxReward:        500,
		StreetCredChance: 0.3,
		TraceChance:      0.7,
		HealthDamage:     15,
	},
}

// TierParamsFor exposes the tier table for views.
func TierParamsFor(tier models.HackTier) (TierParams, bool) {
	p, ok := tierParams[tier]
	return p, ok
}

const (
	successRateFloor = 10
	successRateCeil  = 95

	netrunningRateBonus   = 2
	traceRatePenalty      = 5
	netrunningRewardBonus = 0.1

	failureCooldownBase     = 60 * time.Minute
	failureCooldownPerTrace = 30 * time.Minute

	traceRecoveryChance = 0.2
	highTierBonusChance = 0.1

	highTraceWarnAt = 7
)

// CalculateSuccessRate returns the percent chance of a successful hack,
// clamped to [10, 95] no matter how extreme the inputs.
func CalculateSuccessRate(netrunning int, tier models.HackTier, traceLevel int) int {
	rate := tierParams[tier].BaseRate
	rate += netrunning * netrunningRateBonus
	rate -= traceLevel * traceRatePenalty

	if rate < successRateFloor {
		return successRateFloor
	}
	if rate > successRateCeil {
		return successRateCeil
	}
	return rate
}

// FailureCooldown returns how long a failed hack locks the player out.
func FailureCooldown(traceLevel int) time.Duration {
	return failureCooldownBase + time.Duration(traceLevel)*failureCooldownPerTrace
}

// CooldownRemaining reports the wait left on the failure gate, zero when
// clear. Successful hacks never arm the gate.
func CooldownRemaining(p *models.Player, now time.Time) time.Duration {
	if p.LastFailedHack == nil {
		return 0
	}
	remaining := FailureCooldown(p.TraceLevel) - now.Sub(*p.LastFailedHack)
	if remaining < 0 {
		return 0
	}
	return remaining
}

var failureConsequences = map[models.HackTier][]string{
	models.TierLow: {
		"Your connection was traced but you escaped.",
		"Minor ICE detected your presence.",
		"A firewall slowed your data extraction.",
	},
	models.TierMedium: {
		"Corporate countermeasures activated!",
		"Your neural implants sparked from feedback.",
		"ICE nearly trapped you in a recursive loop.",
		"Security algorithms adapted to your methods.",
	},
	models.TierHigh: {
		"Black ICE nearly fried your cortex!",
		"Military-grade countermeasures engaged!",
		"Your neural pathways are damaged from feedback.",
		"Corporate hunters are now tracking your signal.",
		"Quantum encryption overwhelmed your processors.",
	},
}

// HackOutcome reports a resolved attempt with everything the response
// renderer needs: the roll, the deltas, and the follow-on state.
type HackOutcome struct {
	Tier        models.HackTier `json:"tier"`
	Target      string          `json:"target"`
	Success     bool            `json:"success"`
	SuccessRate int             `json:"success_rate"`

	CreditsDelta   int `json:"credits_delta"`
	XPGain         int `json:"xp_gain"`
	StreetCredGain int `json:"street_cred_gain"`
	HealthLost     int `json:"health_lost"`

	TraceBefore int `json:"trace_before"`
	TraceAfter  int `json:"trace_after"`

	LeveledUp bool `json:"leveled_up"`
	NewLevel  int  `json:"new_level"`

	CooldownMinutes  int    `json:"cooldown_minutes,omitempty"`
	Consequence      string `json:"consequence,omitempty"`
	HighTraceWarning bool   `json:"high_trace_warning"`

	Credits         int `json:"credits"`
	SuccessfulHacks int `json:"successful_hacks"`
	FailedHacks     int `json:"failed_hacks"`
}

// HackEngine resolves risky actions against the player store. All
// randomness flows through the injected source so tests can seed it.
type HackEngine struct {
	store       Store
	locks       *LockRing
	broadcaster Broadcaster
	logger      *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewHackEngine wires the resolver. broadcaster may be nil.
func NewHackEngine(store Store, locks *LockRing, rng *rand.Rand, logger *slog.Logger) *HackEngine {
	return &HackEngine{
		store:  store,
		locks:  locks,
		rng:    rng,
		logger: logger,
	}
}

// SetBroadcaster attaches the live event push once the hub exists.
func (e *HackEngine) SetBroadcaster(b Broadcaster) {
	e.broadcaster = b
}

func (e *HackEngine) roll() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Float64()
}

func (e *HackEngine) rollRange(min, max int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Intn(max-min+1) + min
}

func (e *HackEngine) pickConsequence(tier models.HackTier) string {
	options := failureConsequences[tier]
	e.mu.Lock()
	defer e.mu.Unlock()
	return options[e.rng.Intn(len(options))]
}

// Begin fetches (or creates) the player and checks the failure gate.
// It performs no mutation; the caller shows the tier selection next.
func (e *HackEngine) Begin(ctx context.Context, userID, username string) (*models.Player, error) {
	player, err := e.store.GetOrCreate(ctx, userID, username)
	if err != nil {
		return nil, err
	}

	if remaining := CooldownRemaining(player, time.Now()); remaining > 0 {
		return nil, &models.CooldownError{Remaining: remaining}
	}
	return player, nil
}

// Resolve runs one attempt at the given tier: outcome roll, reward and
// penalty computation, trace transition, and the single atomic record
// mutation. A cooldown rejection mutates nothing, including the counters.
func (e *HackEngine) Resolve(ctx context.Context, userID string, tier models.HackTier) (*HackOutcome, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("unknown hack tier: %s", tier)
	}

	allowed, err := e.store.CheckRateLimit(ctx, userID, "hack", DefaultRateLimitHacks, RateLimitWindow)
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		return nil, models.ErrRateLimited
	}

	unlock := e.locks.Lock(userID)
	defer unlock()

	player, err := e.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if remaining := CooldownRemaining(player, now); remaining > 0 {
		return nil, &models.CooldownError{Remaining: remaining}
	}

	params := tierParams[tier]
	successRate := CalculateSuccessRate(player.Netrunning, tier, player.TraceLevel)
	success := e.roll()*100 <= float64(successRate)

	outcome := &HackOutcome{
		Tier:        tier,
		Target:      tier.DisplayName(),
		Success:     success,
		SuccessRate: successRate,
		TraceBefore: player.TraceLevel,
	}

	reward := e.rollRange(params.MinReward, params.MaxReward)
	if success {
		reward = int(float64(reward) * (1 + float64(player.Netrunning)*netrunningRewardBonus))
		outcome.CreditsDelta = reward
		outcome.XPGain = reward / 8
	} else {
		penalty := 0.2 + e.roll()*0.3
		reward = int(float64(reward) * penalty)
		outcome.CreditsDelta = -reward
		outcome.XPGain = reward / 15
	}

	if success && e.roll() < params.StreetCredChance {
		outcome.StreetCredGain = 1
		if tier == models.TierHigh && e.roll() < highTierBonusChance {
			outcome.StreetCredGain = 2
		}
	}

	traceAfter := player.TraceLevel
	if success {
		if player.TraceLevel > 0 && e.roll() < traceRecoveryChance {
			traceAfter--
		}
	} else if e.roll() < params.TraceChance {
		traceAfter++
	}
	if traceAfter < 0 {
		traceAfter = 0
	}
	if traceAfter > models.TraceLevelMax {
		traceAfter = models.TraceLevelMax
	}
	outcome.TraceAfter = traceAfter
	outcome.HighTraceWarning = traceAfter >= highTraceWarnAt

	newXP := player.XP + outcome.XPGain
	newLevel := LevelForXP(newXP)
	outcome.LeveledUp = newLevel > player.Level
	outcome.NewLevel = newLevel

	credits := player.Credits + outcome.CreditsDelta
	if credits < 0 {
		// Losses are capped at the balance; the attempt itself is never
		// rejected for being unable to absorb the worst case.
		credits = 0
	}

	streetCred := player.StreetCred + outcome.StreetCredGain

	update := &models.PlayerUpdate{
		Credits:    &credits,
		XP:         &newXP,
		Level:      &newLevel,
		StreetCred: &streetCred,
		TraceLevel: &traceAfter,
		LastHack:   &now,
	}

	if success {
		n := player.SuccessfulHacks + 1
		update.SuccessfulHacks = &n
		outcome.SuccessfulHacks = n
		outcome.FailedHacks = player.FailedHacks
	} else {
		n := player.FailedHacks + 1
		update.FailedHacks = &n
		update.LastFailedHack = &now
		outcome.FailedHacks = n
		outcome.SuccessfulHacks = player.SuccessfulHacks
		outcome.Consequence = e.pickConsequence(tier)
		outcome.CooldownMinutes = int(FailureCooldown(traceAfter).Minutes())

		if params.HealthDamage > 0 {
			health := player.Health - params.HealthDamage
			if health < 0 {
				health = 0
			}
			outcome.HealthLost = player.Health - health
			update.Health = &health
		}
	}

	updated, err := e.store.Update(ctx, userID, update)
	if err != nil {
		return nil, fmt.Errorf("applying hack outcome: %w", err)
	}
	outcome.Credits = updated.Credits

	e.logger.Info("hack resolved",
		"user_id", userID,
		"tier", tier,
		"success", success,
		"rate", successRate,
		"credits_delta", outcome.CreditsDelta,
		"trace", traceAfter,
	)

	if e.broadcaster != nil {
		e.broadcaster.PublishPlayerEvent(userID, EventHackResolved, outcome)
		if outcome.LeveledUp {
			e.broadcaster.PublishPlayerEvent(userID, EventLevelUp, map[string]int{"level": newLevel})
		}
		if outcome.HighTraceWarning {
			e.broadcaster.PublishPlayerEvent(userID, EventTraceWarning, map[string]int{"trace_level": traceAfter})
		}
	}

	return outcome, nil
}

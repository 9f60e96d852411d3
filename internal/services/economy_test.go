package services

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"netrunner-rpg-backend/internal/models"
)

func newEconomyEngine(store Store) *EconomyEngine {
	return NewEconomyEngine(store, NewLockRing(), rand.New(rand.NewSource(1)), testLogger())
}

func TestClaimDaily(t *testing.T) {
	store := newMemStore()
	engine := newEconomyEngine(store)
	ctx := context.Background()

	outcome, err := engine.ClaimDaily(ctx, "u1", "tester")
	if err != nil {
		t.Fatalf("ClaimDaily failed: %v", err)
	}

	if outcome.TotalReward != 125 {
		t.Errorf("level 1 reward = %d, want 125", outcome.TotalReward)
	}
	if outcome.XPGain != 25 {
		t.Errorf("xp gain = %d, want 25", outcome.XPGain)
	}
	if outcome.Credits != models.DefaultCredits+125 {
		t.Errorf("balance = %d, want %d", outcome.Credits, models.DefaultCredits+125)
	}

	stored, _ := store.Get(ctx, "u1")
	if stored.LastDaily == nil {
		t.Fatal("daily timestamp not recorded")
	}
}

func TestClaimDailyGate(t *testing.T) {
	store := newMemStore()
	engine := newEconomyEngine(store)
	ctx := context.Background()

	if _, err := engine.ClaimDaily(ctx, "u1", "tester"); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}

	_, err := engine.ClaimDaily(ctx, "u1", "tester")
	cd, ok := models.AsCooldown(err)
	if !ok {
		t.Fatalf("want cooldown error, got %v", err)
	}
	if cd.Remaining > 24*time.Hour {
		t.Errorf("remaining = %v, want at most 24h", cd.Remaining)
	}

	// A stale claim from yesterday opens the gate again.
	old := time.Now().UTC().Add(-25 * time.Hour)
	store.Update(ctx, "u1", &models.PlayerUpdate{LastDaily: &old})
	if _, err := engine.ClaimDaily(ctx, "u1", "tester"); err != nil {
		t.Fatalf("claim after 25h failed: %v", err)
	}
}

func TestHeal(t *testing.T) {
	store := newMemStore()
	engine := newEconomyEngine(store)
	ctx := context.Background()

	store.GetOrCreate(ctx, "u1", "tester")
	health := 70
	store.Update(ctx, "u1", &models.PlayerUpdate{Health: &health})

	outcome, err := engine.Heal(ctx, "u1", "tester")
	if err != nil {
		t.Fatalf("Heal failed: %v", err)
	}

	if outcome.Cost != 300 {
		t.Errorf("cost = %d, want 300 for 30 missing hp", outcome.Cost)
	}
	if outcome.HealthAfter != models.DefaultMaxHealth {
		t.Errorf("health after = %d, want full restore", outcome.HealthAfter)
	}
	if outcome.Credits != models.DefaultCredits-300 {
		t.Errorf("balance = %d, want %d", outcome.Credits, models.DefaultCredits-300)
	}
	if outcome.Flavor == "" {
		t.Error("heal outcome missing flavor line")
	}
}

func TestHealAtFullHealth(t *testing.T) {
	store := newMemStore()
	engine := newEconomyEngine(store)

	_, err := engine.Heal(context.Background(), "u1", "tester")
	if !errors.Is(err, models.ErrFullHealth) {
		t.Fatalf("want ErrFullHealth, got %v", err)
	}
}

func TestHealAllOrNothing(t *testing.T) {
	store := newMemStore()
	engine := newEconomyEngine(store)
	ctx := context.Background()

	store.GetOrCreate(ctx, "u1", "tester")
	health, credits := 10, 50
	store.Update(ctx, "u1", &models.PlayerUpdate{Health: &health, Credits: &credits})

	_, err := engine.Heal(ctx, "u1", "tester")
	var insufficient *models.InsufficientCreditsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("want InsufficientCreditsError, got %v", err)
	}
	if insufficient.Cost != 900 {
		t.Errorf("quoted cost = %d, want 900", insufficient.Cost)
	}

	stored, _ := store.Get(ctx, "u1")
	if stored.Health != 10 || stored.Credits != 50 {
		t.Error("failed heal must not touch the record")
	}
}

func TestUpgradeFlow(t *testing.T) {
	store := newMemStore()
	engine := newEconomyEngine(store)
	ctx := context.Background()

	offer, err := engine.QuoteUpgrade(ctx, "u1", "tester", models.SkillNetrunning)
	if err != nil {
		t.Fatalf("QuoteUpgrade failed: %v", err)
	}
	if offer.Cost != 100 {
		t.Errorf("cost = %d, want 100 for 0 -> 1", offer.Cost)
	}

	outcome, err := engine.ConfirmUpgrade(ctx, "u1", offer.ActionID)
	if err != nil {
		t.Fatalf("ConfirmUpgrade failed: %v", err)
	}
	if outcome.From != 0 || outcome.To != 1 {
		t.Errorf("upgrade %d -> %d, want 0 -> 1", outcome.From, outcome.To)
	}
	if outcome.Credits != models.DefaultCredits-100 {
		t.Errorf("balance = %d, want %d", outcome.Credits, models.DefaultCredits-100)
	}

	stored, _ := store.Get(ctx, "u1")
	if stored.Netrunning != 1 {
		t.Errorf("stored netrunning = %d, want 1", stored.Netrunning)
	}

	// The confirmation is single-use.
	if _, err := engine.ConfirmUpgrade(ctx, "u1", offer.ActionID); !errors.Is(err, models.ErrActionExpired) {
		t.Fatalf("second confirm: want ErrActionExpired, got %v", err)
	}
}

func TestUpgradeConfirmWrongOwner(t *testing.T) {
	store := newMemStore()
	engine := newEconomyEngine(store)
	ctx := context.Background()

	offer, err := engine.QuoteUpgrade(ctx, "u1", "tester", models.SkillCombat)
	if err != nil {
		t.Fatalf("QuoteUpgrade failed: %v", err)
	}

	if _, err := engine.ConfirmUpgrade(ctx, "u2", offer.ActionID); !errors.Is(err, models.ErrNotYourInteraction) {
		t.Fatalf("want ErrNotYourInteraction, got %v", err)
	}

	// The rejection leaves the offer alive for its real owner.
	if _, err := engine.ConfirmUpgrade(ctx, "u1", offer.ActionID); err != nil {
		t.Fatalf("owner confirm after stranger rejection failed: %v", err)
	}
}

func TestUpgradeCapUsesPreUpgradeStreetCred(t *testing.T) {
	store := newMemStore()
	engine := newEconomyEngine(store)
	ctx := context.Background()

	store.GetOrCreate(ctx, "u1", "tester")
	// Level 1, street cred 1: the cap is 2, computed before the upgrade
	// applies, so street cred itself can reach 2 but not 3.
	sc := 1
	credits := 10000
	store.Update(ctx, "u1", &models.PlayerUpdate{StreetCred: &sc, Credits: &credits})

	offer, err := engine.QuoteUpgrade(ctx, "u1", "tester", models.SkillStreetCred)
	if err != nil {
		t.Fatalf("quote 1 -> 2 failed: %v", err)
	}
	if _, err := engine.ConfirmUpgrade(ctx, "u1", offer.ActionID); err != nil {
		t.Fatalf("confirm 1 -> 2 failed: %v", err)
	}

	// Now street cred 2, cap 3: 2 -> 3 still fits.
	offer, err = engine.QuoteUpgrade(ctx, "u1", "tester", models.SkillStreetCred)
	if err != nil {
		t.Fatalf("quote 2 -> 3 failed: %v", err)
	}
	if _, err := engine.ConfirmUpgrade(ctx, "u1", offer.ActionID); err != nil {
		t.Fatalf("confirm 2 -> 3 failed: %v", err)
	}

	// Combat is at 0 against cap 4: fine. Netrunning at 0: fine. But a
	// skill already at the cap is rejected with the cap attached.
	combat := 4
	store.Update(ctx, "u1", &models.PlayerUpdate{Combat: &combat})
	_, err = engine.QuoteUpgrade(ctx, "u1", "tester", models.SkillCombat)
	var capped *models.SkillCapError
	if !errors.As(err, &capped) {
		t.Fatalf("want SkillCapError, got %v", err)
	}
	if capped.Cap != 4 {
		t.Errorf("reported cap = %d, want 4", capped.Cap)
	}
}

func TestUpgradeConfirmRevalidates(t *testing.T) {
	store := newMemStore()
	engine := newEconomyEngine(store)
	ctx := context.Background()

	offer, err := engine.QuoteUpgrade(ctx, "u1", "tester", models.SkillTech)
	if err != nil {
		t.Fatalf("QuoteUpgrade failed: %v", err)
	}

	// Credits drained between quote and confirm.
	broke := 0
	store.Update(ctx, "u1", &models.PlayerUpdate{Credits: &broke})

	_, err = engine.ConfirmUpgrade(ctx, "u1", offer.ActionID)
	var insufficient *models.InsufficientCreditsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("want InsufficientCreditsError, got %v", err)
	}
}

func TestCancelUpgrade(t *testing.T) {
	store := newMemStore()
	engine := newEconomyEngine(store)
	ctx := context.Background()

	offer, err := engine.QuoteUpgrade(ctx, "u1", "tester", models.SkillCombat)
	if err != nil {
		t.Fatalf("QuoteUpgrade failed: %v", err)
	}

	if err := engine.CancelUpgrade(ctx, "u2", offer.ActionID); !errors.Is(err, models.ErrNotYourInteraction) {
		t.Fatalf("stranger cancel: want ErrNotYourInteraction, got %v", err)
	}
	if err := engine.CancelUpgrade(ctx, "u1", offer.ActionID); err != nil {
		t.Fatalf("owner cancel failed: %v", err)
	}
	if _, err := engine.ConfirmUpgrade(ctx, "u1", offer.ActionID); !errors.Is(err, models.ErrActionExpired) {
		t.Fatalf("confirm after cancel: want ErrActionExpired, got %v", err)
	}
}

func TestGiveCredits(t *testing.T) {
	store := newMemStore()
	engine := newEconomyEngine(store)
	ctx := context.Background()

	store.GetOrCreate(ctx, "u1", "tester")

	player, err := engine.GiveCredits(ctx, "u1", 1000)
	if err != nil {
		t.Fatalf("GiveCredits failed: %v", err)
	}
	if player.Credits != models.DefaultCredits+1000 {
		t.Errorf("balance = %d, want %d", player.Credits, models.DefaultCredits+1000)
	}

	if _, err := engine.GiveCredits(ctx, "ghost", 100); !errors.Is(err, models.ErrPlayerNotFound) {
		t.Fatalf("want ErrPlayerNotFound, got %v", err)
	}
}

func TestResetPlayerKeepsProfile(t *testing.T) {
	store := newMemStore()
	engine := newEconomyEngine(store)
	ctx := context.Background()

	store.GetOrCreate(ctx, "u1", "tester")
	name := "V"
	bg := models.BackgroundSolo
	level, xp, combat := 5, 450, 6
	now := time.Now().UTC()
	store.Update(ctx, "u1", &models.PlayerUpdate{
		StreetName:     &name,
		Background:     &bg,
		Level:          &level,
		XP:             &xp,
		Combat:         &combat,
		LastFailedHack: &now,
	})

	player, err := engine.ResetPlayer(ctx, "u1")
	if err != nil {
		t.Fatalf("ResetPlayer failed: %v", err)
	}

	if player.Level != 1 || player.XP != 0 || player.Combat != 0 {
		t.Errorf("progression not reset: level=%d xp=%d combat=%d", player.Level, player.XP, player.Combat)
	}
	if player.Credits != models.DefaultCredits {
		t.Errorf("credits = %d, want %d", player.Credits, models.DefaultCredits)
	}
	if player.StreetName != "V" || player.Background != models.BackgroundSolo {
		t.Error("profile fields must survive a reset")
	}
	if player.LastFailedHack != nil {
		t.Error("cooldown state must not survive a reset")
	}
}

package models

import (
	"testing"
	"time"
)

func TestNewPlayerDefaults(t *testing.T) {
	p := NewPlayer("u1", "tester")

	if p.Level != 1 {
		t.Errorf("level = %d, want 1", p.Level)
	}
	if p.Credits != DefaultCredits {
		t.Errorf("credits = %d, want %d", p.Credits, DefaultCredits)
	}
	if p.Health != DefaultMaxHealth || p.MaxHealth != DefaultMaxHealth {
		t.Errorf("health = %d/%d, want %d/%d", p.Health, p.MaxHealth, DefaultMaxHealth, DefaultMaxHealth)
	}
	for _, skill := range AllSkills {
		if p.Skill(skill) != 0 {
			t.Errorf("skill %s = %d, want 0", skill, p.Skill(skill))
		}
	}
	if p.CharacterCreated {
		t.Error("fresh record should not have a character")
	}
	if p.HasConsent() {
		t.Error("fresh record should not carry consent")
	}
}

func TestPlayerUpdateApply(t *testing.T) {
	p := NewPlayer("u1", "tester")
	now := time.Now().UTC()
	p.LastFailedHack = &now

	credits := 750
	trace := 3
	update := &PlayerUpdate{
		Credits:             &credits,
		TraceLevel:          &trace,
		ClearLastFailedHack: true,
	}
	update.SetSkill(SkillTech, 4)
	update.Apply(p)

	if p.Credits != 750 {
		t.Errorf("credits = %d, want 750", p.Credits)
	}
	if p.TraceLevel != 3 {
		t.Errorf("trace = %d, want 3", p.TraceLevel)
	}
	if p.Tech != 4 {
		t.Errorf("tech = %d, want 4", p.Tech)
	}
	if p.LastFailedHack != nil {
		t.Error("clear flag did not wipe the failed-hack timestamp")
	}
	// Untouched fields stay put.
	if p.Level != 1 || p.Health != DefaultMaxHealth {
		t.Error("nil fields were modified")
	}
}

func TestResetUpdateKeepsProfile(t *testing.T) {
	p := NewPlayer("u1", "tester")
	p.StreetName = "V"
	p.Background = BackgroundNetrunner
	p.Backstory = "ran the net before it ran me"
	p.Level = 7
	p.XP = 640
	p.Credits = 12345
	p.Netrunning = 8
	p.TraceLevel = 6
	now := time.Now().UTC()
	p.LastDaily = &now
	p.LastFailedHack = &now

	ResetUpdate().Apply(p)

	if p.StreetName != "V" || p.Background != BackgroundNetrunner || p.Backstory == "" {
		t.Error("profile fields must survive a reset")
	}
	if p.Level != 1 || p.XP != 0 || p.Credits != DefaultCredits {
		t.Errorf("progression not reset: level=%d xp=%d credits=%d", p.Level, p.XP, p.Credits)
	}
	if p.Netrunning != 0 || p.TraceLevel != 0 {
		t.Errorf("skills/trace not reset: net=%d trace=%d", p.Netrunning, p.TraceLevel)
	}
	if p.LastDaily != nil || p.LastFailedHack != nil {
		t.Error("cooldown timestamps must not survive a reset")
	}
}

func TestDisplayName(t *testing.T) {
	p := NewPlayer("u1", "tester")
	if p.DisplayName() != "tester" {
		t.Errorf("display name = %q, want username fallback", p.DisplayName())
	}
	p.StreetName = "V"
	if p.DisplayName() != "V" {
		t.Errorf("display name = %q, want street name", p.DisplayName())
	}
}

func TestBackgroundCatalog(t *testing.T) {
	if len(BackgroundOrder) != 6 {
		t.Fatalf("catalog has %d entries, want 6", len(BackgroundOrder))
	}

	for _, key := range BackgroundOrder {
		bg, ok := LookupBackground(key)
		if !ok {
			t.Fatalf("ordered key %s missing from catalog", key)
		}
		if bg.StartingCredits <= 0 {
			t.Errorf("%s starting credits = %d", key, bg.StartingCredits)
		}
		total := 0
		for skill, bonus := range bg.Bonuses {
			if !skill.Valid() {
				t.Errorf("%s grants unknown skill %s", key, skill)
			}
			total += bonus
		}
		if total != 7 {
			t.Errorf("%s bonus total = %d, want 7", key, total)
		}
	}

	if _, ok := LookupBackground("fixer"); ok {
		t.Error("unknown key should not resolve")
	}
}

package services

import (
	"testing"

	"netrunner-rpg-backend/internal/models"
)

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{250, 3},
		{999, 10},
		{1000, 11},
	}

	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.level {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.level)
		}
	}
}

func TestXPToNextLevel(t *testing.T) {
	if got := XPToNextLevel(1); got != 100 {
		t.Errorf("XPToNextLevel(1) = %d, want 100", got)
	}
	if got := XPToNextLevel(7); got != 700 {
		t.Errorf("XPToNextLevel(7) = %d, want 700", got)
	}
}

func TestSkillCap(t *testing.T) {
	if got := SkillCap(1, 0); got != 1 {
		t.Errorf("SkillCap(1, 0) = %d, want 1", got)
	}
	if got := SkillCap(3, 5); got != 8 {
		t.Errorf("SkillCap(3, 5) = %d, want 8", got)
	}
}

func TestUpgradeCost(t *testing.T) {
	tests := []struct {
		current int
		cost    int
	}{
		{0, 100},
		{1, 200},
		{5, 600},
	}
	for _, tt := range tests {
		if got := UpgradeCost(tt.current); got != tt.cost {
			t.Errorf("UpgradeCost(%d) = %d, want %d", tt.current, got, tt.cost)
		}
	}
}

func TestHealingCost(t *testing.T) {
	if got := HealingCost(100, 100); got != 0 {
		t.Errorf("HealingCost(100, 100) = %d, want 0", got)
	}
	if got := HealingCost(40, 100); got != 600 {
		t.Errorf("HealingCost(40, 100) = %d, want 600", got)
	}
}

func TestDailyReward(t *testing.T) {
	if got := DailyReward(1, 0); got != 125 {
		t.Errorf("DailyReward(1, 0) = %d, want 125", got)
	}
	// 100 + 4*25 + 6*5
	if got := DailyReward(4, 6); got != 230 {
		t.Errorf("DailyReward(4, 6) = %d, want 230", got)
	}
}

func TestDailyStreetCredChance(t *testing.T) {
	if got := DailyStreetCredChance(1); got != 0.15 {
		t.Errorf("DailyStreetCredChance(1) = %v, want 0.15", got)
	}
	// level 10 adds two steps of 0.02
	if got := DailyStreetCredChance(10); got != 0.19 {
		t.Errorf("DailyStreetCredChance(10) = %v, want 0.19", got)
	}
}

func TestAvailableUpgrades(t *testing.T) {
	p := models.NewPlayer("u1", "tester")
	p.Level = 2
	p.StreetCred = 1
	p.Netrunning = 3 // at the cap of 3
	p.Credits = 150

	quotes := AvailableUpgrades(p)

	for _, q := range quotes {
		if q.Skill == models.SkillNetrunning {
			t.Error("capped skill should not be offered")
		}
		if q.Skill == models.SkillCombat {
			if q.Cost != 100 {
				t.Errorf("combat upgrade cost = %d, want 100", q.Cost)
			}
			if !q.Affordable {
				t.Error("combat upgrade should be affordable at 150 credits")
			}
		}
		if q.Skill == models.SkillStreetCred && q.Cost != 200 {
			t.Errorf("street cred upgrade cost = %d, want 200", q.Cost)
		}
	}

	// street cred at 1 is below cap 3, so it shows up along with the
	// three zero skills.
	if len(quotes) != 4 {
		t.Errorf("got %d quotes, want 4", len(quotes))
	}
}

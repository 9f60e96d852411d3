package services

import "netrunner-rpg-backend/internal/models"

// Progression math. These are the pure rules every mutating command runs
// through; all derived values come from here so views and engines cannot
// drift apart.

// XPToNextLevel returns the xp required to finish the given level.
func XPToNextLevel(level int) int {
	return level * 100
}

// LevelForXP returns the level implied by a total xp amount. Level-ups
// are detected by comparing this against the stored level before a write.
func LevelForXP(xp int) int {
	return xp/100 + 1
}

// SkillCap returns the highest value any skill may reach.
func SkillCap(level, streetCred int) int {
	return level + streetCred
}

// UpgradeCost returns the credit price of raising a skill from its
// current value.
func UpgradeCost(currentSkillLevel int) int {
	return (currentSkillLevel + 1) * 100
}

// HealingCost prices a full heal; there is no partial purchase.
func HealingCost(health, maxHealth int) int {
	return (maxHealth - health) * 10
}

const (
	dailyBaseReward        = 100
	dailyLevelBonus        = 25
	dailyStreetCredBonus   = 5
	dailyXPGain            = 25
	dailyStreetCredBase    = 0.15
	dailyStreetCredPerFive = 0.02
)

// DailyReward returns the credit payout of a daily claim.
func DailyReward(level, streetCred int) int {
	return dailyBaseReward + level*dailyLevelBonus + streetCred*dailyStreetCredBonus
}

// DailyStreetCredChance returns the probability of a bonus street-cred
// point on a daily claim.
func DailyStreetCredChance(level int) float64 {
	return dailyStreetCredBase + float64(level/5)*dailyStreetCredPerFive
}

// UpgradeQuote is the priced view of one possible skill upgrade.
type UpgradeQuote struct {
	Skill      models.SkillKey `json:"skill"`
	Current    int             `json:"current"`
	Next       int             `json:"next"`
	Cost       int             `json:"cost"`
	Affordable bool            `json:"affordable"`
}

// AvailableUpgrades lists every skill still below the cap with its cost,
// the breakdown the credits view shows.
func AvailableUpgrades(p *models.Player) []UpgradeQuote {
	cap := SkillCap(p.Level, p.StreetCred)
	var quotes []UpgradeQuote
	for _, skill := range models.AllSkills {
		current := p.Skill(skill)
		if current >= cap {
			continue
		}
		cost := UpgradeCost(current)
		quotes = append(quotes, UpgradeQuote{
			Skill:      skill,
			Current:    current,
			Next:       current + 1,
			Cost:       cost,
			Affordable: p.Credits >= cost,
		})
	}
	return quotes
}

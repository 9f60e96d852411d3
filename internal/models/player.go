package models

import "time"

const (
	DefaultCredits   = 500
	DefaultMaxHealth = 100
	TraceLevelMax    = 10
)

// Player is the single persistent record kept per user. One record per
// external identity; everything the bot knows about a player lives here.
type Player struct {
	UserID   string `json:"user_id" redis:"user_id"`
	Username string `json:"username" redis:"username"`

	StreetName string         `json:"street_name,omitempty" redis:"street_name"`
	Background BackgroundKey  `json:"background,omitempty" redis:"background"`
	Backstory  string         `json:"backstory,omitempty" redis:"backstory"`

	Level   int `json:"level" redis:"level"`
	XP      int `json:"xp" redis:"xp"`
	Credits int `json:"credits" redis:"credits"`

	Health    int `json:"health" redis:"health"`
	MaxHealth int `json:"max_health" redis:"max_health"`

	Cybernetics int `json:"cybernetics" redis:"cybernetics"`
	StreetCred  int `json:"street_cred" redis:"street_cred"`
	Netrunning  int `json:"netrunning" redis:"netrunning"`
	Combat      int `json:"combat" redis:"combat"`
	Tech        int `json:"tech" redis:"tech"`

	TraceLevel      int `json:"trace_level" redis:"trace_level"`
	FailedHacks     int `json:"failed_hacks" redis:"failed_hacks"`
	SuccessfulHacks int `json:"successful_hacks" redis:"successful_hacks"`

	LastDaily      *time.Time `json:"last_daily,omitempty" redis:"last_daily"`
	LastHack       *time.Time `json:"last_hack,omitempty" redis:"last_hack"`
	LastFailedHack *time.Time `json:"last_failed_hack,omitempty" redis:"last_failed_hack"`

	PrivacyAccepted  *time.Time `json:"privacy_accepted,omitempty" redis:"privacy_accepted"`
	CharacterCreated bool       `json:"character_created" redis:"character_created"`

	CreatedAt time.Time `json:"created_at" redis:"created_at"`
}

// NewPlayer returns a record with the starting defaults applied.
func NewPlayer(userID, username string) *Player {
	return &Player{
		UserID:    userID,
		Username:  username,
		Level:     1,
		Credits:   DefaultCredits,
		Health:    DefaultMaxHealth,
		MaxHealth: DefaultMaxHealth,
		CreatedAt: time.Now().UTC(),
	}
}

// Skill returns the current value of one of the five skill counters.
func (p *Player) Skill(s SkillKey) int {
	switch s {
	case SkillCybernetics:
		return p.Cybernetics
	case SkillStreetCred:
		return p.StreetCred
	case SkillNetrunning:
		return p.Netrunning
	case SkillCombat:
		return p.Combat
	case SkillTech:
		return p.Tech
	}
	return 0
}

// DisplayName prefers the chosen street name over the platform username.
func (p *Player) DisplayName() string {
	if p.StreetName != "" {
		return p.StreetName
	}
	return p.Username
}

// HasConsent reports whether the player accepted the privacy terms.
func (p *Player) HasConsent() bool {
	return p.PrivacyAccepted != nil
}

// PlayerUpdate is an explicit partial update of the mutable player fields.
// Nil pointers leave the stored value untouched. Update statements are never
// built from free-form field maps; every mutable column is listed here.
type PlayerUpdate struct {
	Username   *string        `json:"username,omitempty"`
	StreetName *string        `json:"street_name,omitempty"`
	Background *BackgroundKey `json:"background,omitempty"`
	Backstory  *string        `json:"backstory,omitempty"`

	Level   *int `json:"level,omitempty"`
	XP      *int `json:"xp,omitempty"`
	Credits *int `json:"credits,omitempty"`

	Health    *int `json:"health,omitempty"`
	MaxHealth *int `json:"max_health,omitempty"`

	Cybernetics *int `json:"cybernetics,omitempty"`
	StreetCred  *int `json:"street_cred,omitempty"`
	Netrunning  *int `json:"netrunning,omitempty"`
	Combat      *int `json:"combat,omitempty"`
	Tech        *int `json:"tech,omitempty"`

	TraceLevel      *int `json:"trace_level,omitempty"`
	FailedHacks     *int `json:"failed_hacks,omitempty"`
	SuccessfulHacks *int `json:"successful_hacks,omitempty"`

	LastDaily      *time.Time `json:"last_daily,omitempty"`
	LastHack       *time.Time `json:"last_hack,omitempty"`
	LastFailedHack *time.Time `json:"last_failed_hack,omitempty"`

	PrivacyAccepted  *time.Time `json:"privacy_accepted,omitempty"`
	CharacterCreated *bool      `json:"character_created,omitempty"`

	// Clear flags for nullable timestamps; a reset wipes cooldown state
	// rather than leaving stale gates behind.
	ClearLastDaily      bool `json:"clear_last_daily,omitempty"`
	ClearLastHack       bool `json:"clear_last_hack,omitempty"`
	ClearLastFailedHack bool `json:"clear_last_failed_hack,omitempty"`
}

// SetSkill records a new value for the given skill in the update.
func (u *PlayerUpdate) SetSkill(s SkillKey, v int) {
	switch s {
	case SkillCybernetics:
		u.Cybernetics = &v
	case SkillStreetCred:
		u.StreetCred = &v
	case SkillNetrunning:
		u.Netrunning = &v
	case SkillCombat:
		u.Combat = &v
	case SkillTech:
		u.Tech = &v
	}
}

// Apply folds the update into the record in place.
func (u *PlayerUpdate) Apply(p *Player) {
	if u.Username != nil {
		p.Username = *u.Username
	}
	if u.StreetName != nil {
		p.StreetName = *u.StreetName
	}
	if u.Background != nil {
		p.Background = *u.Background
	}
	if u.Backstory != nil {
		p.Backstory = *u.Backstory
	}
	if u.Level != nil {
		p.Level = *u.Level
	}
	if u.XP != nil {
		p.XP = *u.XP
	}
	if u.Credits != nil {
		p.Credits = *u.Credits
	}
	if u.Health != nil {
		p.Health = *u.Health
	}
	if u.MaxHealth != nil {
		p.MaxHealth = *u.MaxHealth
	}
	if u.Cybernetics != nil {
		p.Cybernetics = *u.Cybernetics
	}
	if u.StreetCred != nil {
		p.StreetCred = *u.StreetCred
	}
	if u.Netrunning != nil {
		p.Netrunning = *u.Netrunning
	}
	if u.Combat != nil {
		p.Combat = *u.Combat
	}
	if u.Tech != nil {
		p.Tech = *u.Tech
	}
	if u.TraceLevel != nil {
		p.TraceLevel = *u.TraceLevel
	}
	if u.FailedHacks != nil {
		p.FailedHacks = *u.FailedHacks
	}
	if u.SuccessfulHacks != nil {
		p.SuccessfulHacks = *u.SuccessfulHacks
	}
	if u.LastDaily != nil {
		p.LastDaily = u.LastDaily
	}
	if u.LastHack != nil {
		p.LastHack = u.LastHack
	}
	if u.LastFailedHack != nil {
		p.LastFailedHack = u.LastFailedHack
	}
	if u.PrivacyAccepted != nil {
		p.PrivacyAccepted = u.PrivacyAccepted
	}
	if u.CharacterCreated != nil {
		p.CharacterCreated = *u.CharacterCreated
	}
	if u.ClearLastDaily {
		p.LastDaily = nil
	}
	if u.ClearLastHack {
		p.LastHack = nil
	}
	if u.ClearLastFailedHack {
		p.LastFailedHack = nil
	}
}

// ResetUpdate returns the update that restores a record to its starting
// values. Profile fields (street name, background, backstory) survive a
// reset; progression and cooldown state do not.
func ResetUpdate() *PlayerUpdate {
	level := 1
	zero := 0
	credits := DefaultCredits
	health := DefaultMaxHealth
	maxHealth := DefaultMaxHealth
	return &PlayerUpdate{
		Level:               &level,
		XP:                  &zero,
		Credits:             &credits,
		Health:              &health,
		MaxHealth:           &maxHealth,
		Cybernetics:         &zero,
		StreetCred:          &zero,
		Netrunning:          &zero,
		Combat:              &zero,
		Tech:                &zero,
		TraceLevel:          &zero,
		FailedHacks:         &zero,
		SuccessfulHacks:     &zero,
		ClearLastDaily:      true,
		ClearLastHack:       true,
		ClearLastFailedHack: true,
	}
}

// LeaderboardEntry is one row of the top-N ranking.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Level    int    `json:"level"`
	XP       int    `json:"xp"`
	Credits  int    `json:"credits"`
}

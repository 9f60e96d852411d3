package models

import "time"

// HackTier is the difficulty selector of a risky action.
type HackTier string

const (
	TierLow    HackTier = "low"
	TierMedium HackTier = "medium"
	TierHigh   HackTier = "high"
)

// Valid reports whether the tier names a known difficulty.
func (t HackTier) Valid() bool {
	switch t {
	case TierLow, TierMedium, TierHigh:
		return true
	}
	return false
}

// DisplayName returns the flavor name of the tier's target class.
func (t HackTier) DisplayName() string {
	switch t {
	case TierLow:
		return "Script Kiddie Network"
	case TierMedium:
		return "Corporate Node"
	case TierHigh:
		return "Military ICE"
	}
	return string(t)
}

// ActionKind tags the variant of a pending interactive follow-up. Each
// variant carries its payload in the typed fields of PendingAction; the
// kind is decoded exactly once at the boundary instead of being parsed
// out of an opaque identifier string.
type ActionKind string

const (
	ActionUpgradeConfirm ActionKind = "upgrade_confirm"
)

// PendingAction is a short-lived record for a two-step interaction. It is
// owned by the user who started the flow; any other actor is rejected
// without state change. The record expires after its validity window, at
// which point the follow-up is simply gone.
type PendingAction struct {
	ID      string     `json:"id"`
	OwnerID string     `json:"owner_id"`
	Kind    ActionKind `json:"kind"`

	// Upgrade confirmation payload: the stat and the cost quoted when
	// the confirmation was offered.
	Skill SkillKey `json:"skill,omitempty"`
	Cost  int      `json:"cost,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// PendingActionTTL bounds the validity window of interactive follow-ups.
const PendingActionTTL = 5 * time.Minute

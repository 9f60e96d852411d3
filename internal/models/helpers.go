package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	StreetNameMinLen = 2
	StreetNameMaxLen = 32
	BackstoryMaxLen  = 1000
)

// streetNameDenylist blocks names that could be abused for pings or
// impersonation in chat output.
var streetNameDenylist = []string{"discord", "everyone", "here", "@"}

// ValidateStreetName enforces the 2-32 char window and the denylist.
func ValidateStreetName(name string) error {
	if len(name) < StreetNameMinLen || len(name) > StreetNameMaxLen {
		return fmt.Errorf("%w: must be between %d and %d characters",
			ErrInvalidStreetName, StreetNameMinLen, StreetNameMaxLen)
	}
	lower := strings.ToLower(name)
	for _, word := range streetNameDenylist {
		if strings.Contains(lower, word) {
			return fmt.Errorf("%w: contains disallowed content", ErrInvalidStreetName)
		}
	}
	return nil
}

// ValidateBackstory bounds the optional free-text field.
func ValidateBackstory(backstory string) error {
	if len(backstory) > BackstoryMaxLen {
		return fmt.Errorf("backstory must be at most %d characters", BackstoryMaxLen)
	}
	return nil
}

// GeneratePendingActionID returns the id for an interactive follow-up
// record.
func GeneratePendingActionID() string {
	return fmt.Sprintf("pending_%s_%d", time.Now().Format("20060102"), uuid.New().ID())
}

// ProgressBar renders xp progress as filled/empty slots, the same 20-slot
// bar the profile view shows.
func ProgressBar(xp, xpToNext, slots int) string {
	if xpToNext <= 0 {
		xpToNext = 1
	}
	filled := xp * slots / xpToNext
	if filled > slots {
		filled = slots
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", slots-filled)
}

// HealthStatus bands the current health for display.
func HealthStatus(health int) string {
	switch {
	case health <= 20:
		return "critical"
	case health <= 50:
		return "injured"
	default:
		return "stable"
	}
}

// TraceStatus bands the trace level for display.
func TraceStatus(trace int) string {
	switch {
	case trace >= 7:
		return "hunted"
	case trace >= 4:
		return "tracked"
	case trace > 0:
		return "monitored"
	default:
		return "clear"
	}
}

// SuccessPercent returns the rounded percentage of successful hacks.
func SuccessPercent(successes, failures int) int {
	total := successes + failures
	if total == 0 {
		return 0
	}
	return int(float64(successes)/float64(total)*100 + 0.5)
}

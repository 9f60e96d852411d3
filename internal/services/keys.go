package services

import "time"

const (
	KeyPlayer        = "player:%s"
	KeyPlayerInv     = "player:%s:inventory"
	KeyLeaderboard   = "leaderboard:players"
	KeyPendingAction = "pending:%s"
	KeyRateLimit     = "ratelimit:%s:%s"

	DefaultRateLimitHacks = 30 // max hack resolutions per minute
	RateLimitWindow       = time.Minute

	LeaderboardSize = 10
)

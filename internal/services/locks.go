package services

import (
	"hash/fnv"
	"sync"
)

// LockRing serializes mutating commands per player. The store gives
// read-then-write consistency per key but nothing between the read and
// the conditional write, so every mutating path takes the player's
// stripe for its duration.
type LockRing struct {
	stripes [64]sync.Mutex
}

// NewLockRing returns an empty ring.
func NewLockRing() *LockRing {
	return &LockRing{}
}

// Lock acquires the stripe for the user and returns its unlock func.
func (r *LockRing) Lock(userID string) func() {
	h := fnv.New32a()
	h.Write([]byte(userID))
	stripe := &r.stripes[h.Sum32()%uint32(len(r.stripes))]
	stripe.Lock()
	return stripe.Unlock
}

package models

import "time"

const (
	// MaxLoginAttempts is the number of consecutive failures that locks an account.
	MaxLoginAttempts = 3
	LockDuration     = 24 * time.Hour
)

// Security is the persisted lockout state of an account.
type Security struct {
	FailedAttempts int        `bson:"failedAttempts"`
	LockedUntil    *time.Time `bson:"lockedUntil"`
}

func (s Security) IsLocked(now time.Time) bool {
	return s.LockedUntil != nil && s.LockedUntil.After(now)
}

func (s Security) lockExpired(now time.Time) bool {
	return s.LockedUntil != nil && !s.LockedUntil.After(now)
}

// AfterFailure returns the state following a failed login at now. A failure
// after an expired lock starts counting again from one.
func (s Security) AfterFailure(now time.Time) Security {
	if s.lockExpired(now) {
		return Security{FailedAttempts: 1}
	}

	next := Security{FailedAttempts: s.FailedAttempts + 1, LockedUntil: s.LockedUntil}
	if next.FailedAttempts >= MaxLoginAttempts && !s.IsLocked(now) {
		// mongo keeps milliseconds, keep the in-memory value comparable
		until := now.Add(LockDuration).UTC().Truncate(time.Millisecond)
		next.LockedUntil = &until
	}
	return next
}

// NeedsReset reports whether a successful login has anything to clear.
func (s Security) NeedsReset() bool {
	return s.FailedAttempts > 0 || s.LockedUntil != nil
}

func (s Security) Equal(o Security) bool {
	if s.FailedAttempts != o.FailedAttempts {
		return false
	}
	if s.LockedUntil == nil || o.LockedUntil == nil {
		return s.LockedUntil == nil && o.LockedUntil == nil
	}
	return s.LockedUntil.Equal(*o.LockedUntil)
}

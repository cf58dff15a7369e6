package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountEventKind identifies the lifecycle transition an event describes.
type AccountEventKind string

const (
	EventUserRegistered  AccountEventKind = "user_registered"
	EventEmailVerified   AccountEventKind = "email_verified"
	EventAccountLocked   AccountEventKind = "account_locked"
	EventAccountUnlocked AccountEventKind = "account_unlocked"
	EventRoleChanged     AccountEventKind = "role_changed"
)

// AccountEvent describes a lifecycle transition on a user account, fanned out
// asynchronously to notification workers. The verification token rides along
// only for registration events so the notifier can build the confirmation
// link; it is never logged.
type AccountEvent struct {
	UserID            uuid.UUID
	Email             string
	Kind              AccountEventKind
	VerificationToken string
	OccurredAt        time.Time
}

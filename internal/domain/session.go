package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is the authenticated identity context of one client. A nil *Session is the
// anonymous (signed-out) state.
type Session struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	TokenID   uuid.UUID `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != uuid.Nil
}

// SessionEventKind enumerates session transitions delivered to subscribers.
type SessionEventKind string

const (
	SessionSignedIn  SessionEventKind = "signed_in"
	SessionSignedOut SessionEventKind = "signed_out"
)

// SessionEvent reports one login ending or starting. A signed_out event without a
// TokenID ends every login of the user.
type SessionEvent struct {
	Kind    SessionEventKind `json:"kind"`
	UserID  uuid.UUID        `json:"user_id"`
	TokenID uuid.UUID        `json:"token_id,omitempty"`
	At      time.Time        `json:"at"`
}

// Ends reports whether evt signs out the login identified by sess.
func (evt SessionEvent) Ends(sess *Session) bool {
	if evt.Kind != SessionSignedOut || !sess.Authenticated() || evt.UserID != sess.UserID {
		return false
	}
	return evt.TokenID == uuid.Nil || evt.TokenID == sess.TokenID
}

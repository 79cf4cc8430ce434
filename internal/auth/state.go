package auth

import (
	"time"

	"github.com/anon381/Movie-Search-App/internal/models"
)

// Phase is the explicit auth state, replacing ad hoc flag combinations.
type Phase int

const (
	PhaseAnonymous Phase = iota
	PhaseAuthenticating
	PhaseAwaitingConfirmation
	PhaseLocked
	PhaseAuthenticated
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseAnonymous:
		return "anonymous"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseAwaitingConfirmation:
		return "awaiting_confirmation"
	case PhaseLocked:
		return "locked"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// State is a snapshot of the session manager. Session is non-nil only in
// PhaseAuthenticated; Email carries the address awaiting confirmation;
// LockedUntil is set only in PhaseLocked. SessionExpired is an overlay
// flag: the UI shows a dismissible re-authentication prompt without
// tearing anything down.
type State struct {
	Phase          Phase
	Email          string
	Session        *models.Session
	LockedUntil    time.Time
	SessionExpired bool
}

// EventKind identifies a session-change notification.
type EventKind int

const (
	EventSignedIn EventKind = iota
	EventTokenRefreshed
	EventSignedOut
	EventExpired
)

// Event is a backend-pushed session-change notification.
type Event struct {
	Kind    EventKind
	Session *models.Session
}

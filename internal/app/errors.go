package app

import (
	"errors"
	"fmt"
)

// RejectionKind classifies why a submitted command was refused.
type RejectionKind string

const (
	RejectInvalidTarget RejectionKind = "invalid_target"
	RejectWrongPhase    RejectionKind = "wrong_phase"
	RejectAlreadyActed  RejectionKind = "already_acted"
	RejectNotPermitted  RejectionKind = "not_permitted"
)

// Rejection is returned for a command that was refused. A rejected command
// never mutates the session.
type Rejection struct {
	Kind   RejectionKind
	Reason string
}

func (r *Rejection) Error() string {
	if r.Reason == "" {
		return string(r.Kind)
	}
	return string(r.Kind) + ": " + r.Reason
}

// Is matches any Rejection of the same kind, so errors.Is(err, ErrInvalidTarget)
// holds regardless of the reason text.
func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	return ok && t.Kind == r.Kind
}

var (
	ErrInvalidTarget = &Rejection{Kind: RejectInvalidTarget}
	ErrWrongPhase    = &Rejection{Kind: RejectWrongPhase}
	ErrAlreadyActed  = &Rejection{Kind: RejectAlreadyActed}
	ErrNotPermitted  = &Rejection{Kind: RejectNotPermitted}
)

var (
	ErrNotInLobby      = errors.New("session not in lobby")
	ErrSessionFull     = errors.New("session is full")
	ErrTooFewPlayers   = errors.New("not enough players to start")
	ErrUnknownPlayer   = errors.New("player not found")
	ErrAlreadyResolved = errors.New("phase already resolved")
	ErrNotResolved     = errors.New("phase not resolved yet")
	ErrGameEnded       = errors.New("game has ended")
)

func reject(kind RejectionKind, format string, args ...any) error {
	return &Rejection{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

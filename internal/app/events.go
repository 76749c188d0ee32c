package app

import (
	"time"

	"wolfbot/internal/domain"
)

// EventKind identifies emitted engine events for dispatch.
type EventKind string

const (
	EventPlayerJoined        EventKind = "player_joined"
	EventPlayerLeft          EventKind = "player_left"
	EventGameStarted         EventKind = "game_started"
	EventRoleAssigned        EventKind = "role_assigned"
	EventPhaseStarted        EventKind = "phase_started"
	EventPhaseEnded          EventKind = "phase_ended"
	EventDeathReported       EventKind = "death_reported"
	EventInvestigationResult EventKind = "investigation_result"
	EventTotemDrawn          EventKind = "totem_drawn"
	EventTotemReceived       EventKind = "totem_received"
	EventVoteRecorded        EventKind = "vote_recorded"
	EventActionRecorded      EventKind = "action_recorded"
	EventActionResolved      EventKind = "action_resolved"
	EventShotFired           EventKind = "shot_fired"
	EventRoleRevealed        EventKind = "role_revealed"
	EventGameEnded           EventKind = "game_ended"
)

// Event is an engine event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []domain.PlayerID // empty means broadcast
}

// Private reports whether the event is addressed to specific players.
func (e Event) Private() bool { return len(e.Recipients) > 0 }

func broadcast(kind EventKind, payload any) Event {
	return Event{Kind: kind, Payload: payload}
}

func private(kind EventKind, payload any, to ...domain.PlayerID) Event {
	return Event{Kind: kind, Payload: payload, Recipients: to}
}

// DeathCause names what killed a player.
type DeathCause string

const (
	CauseWolves      DeathCause = "wolves"
	CauseKiller      DeathCause = "killer"
	CauseTotem       DeathCause = "death_totem"
	CauseRetribution DeathCause = "retribution"
	CauseGuarding    DeathCause = "guarding"
	CauseLynch       DeathCause = "lynch"
	CauseDesperation DeathCause = "desperation"
	CauseHeartbreak  DeathCause = "heartbreak"
	CauseAssassin    DeathCause = "assassin"
	CauseCurse       DeathCause = "curse"
	CauseDoom        DeathCause = "doom"
	CauseShot        DeathCause = "shot"
	CauseFled        DeathCause = "fled"
)

// Death is one reported death. Role is empty when roles stay hidden on death.
type Death struct {
	Victim domain.PlayerID
	Cause  DeathCause
	Role   domain.RoleName
}

type PlayerJoinedPayload struct {
	Player domain.PlayerID
	Name   string
}

type PlayerLeftPayload struct {
	Player domain.PlayerID
	// InGame is set when the player walked out of a running game.
	InGame bool
}

type GameStartedPayload struct {
	SessionID string
	Players   int
	Mode      domain.Mode
	Fallback  bool
}

type RoleAssignedPayload struct {
	Player    domain.PlayerID
	Role      domain.RoleName
	Templates []string
	// Teammates lists the pack members a wolf-team player knows about.
	Teammates []domain.PlayerID
}

type PhaseStartedPayload struct {
	Phase    domain.Phase
	Number   int
	Deadline time.Time
}

type PhaseEndedPayload struct {
	Phase  domain.Phase
	Number int
	Night  *NightResult
	Day    *DayResult
}

type InvestigationResultPayload struct {
	Actor  domain.PlayerID
	Target domain.PlayerID
	Kind   domain.ActionKind
	// Role is set for role-revealing visions and the first detective result.
	Role domain.RoleName
	// Team is set for oracle visions.
	Team domain.Team
	// Answer carries yes/no visions and detective matches.
	Answer bool
	// Matches is the earlier detective target sharing the role.
	Matches  domain.PlayerID
	Visitors []domain.PlayerID
}

type TotemDrawnPayload struct {
	Actor domain.PlayerID
	Totem domain.Totem
}

type TotemReceivedPayload struct {
	Target domain.PlayerID
	Totem  domain.Totem
}

type VoteRecordedPayload struct {
	Voter   domain.PlayerID
	Target  domain.PlayerID
	Abstain bool
}

type ActionRecordedPayload struct {
	Actor  domain.PlayerID
	Kind   domain.ActionKind
	Target domain.PlayerID
}

type ActionResolvedPayload struct {
	Actor  domain.PlayerID
	Kind   domain.ActionKind
	Target domain.PlayerID
	Other  domain.PlayerID
}

type ShotFiredPayload struct {
	Shooter domain.PlayerID
	Target  domain.PlayerID
	Hit     bool
}

type RoleRevealedPayload struct {
	Player   domain.PlayerID
	Role     domain.RoleName
	Template string
	Reason   string
}

type GameEndedPayload struct {
	Outcome domain.Outcome
	Roles   map[domain.PlayerID]domain.RoleName
}

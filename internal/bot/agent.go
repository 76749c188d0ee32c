package bot

import (
	"errors"
	"fmt"

	"wolfbot/internal/app"
	"wolfbot/internal/domain"
)

// Agent represents an autonomous bot player seated in a session.
type Agent struct {
	ID     domain.PlayerID
	UserID string
	Name   string
	Brain  Brain

	// actedDay is the last day the bot considered its day ability.
	actedDay int
}

// Act lets the agent take its turn in the current phase. It submits at most
// one night action, or one day ability plus a vote, and never replaces a
// choice already recorded for this phase.
func (a *Agent) Act(svc *app.Service, s *domain.Session) ([]app.Event, error) {
	self := s.Player(a.ID)
	if self == nil || !self.Alive || s.Resolved {
		return nil, nil
	}
	silenced := self.Has(domain.StatusSilenced)

	switch s.Phase {
	case domain.PhaseNight:
		if _, done := s.NightActions[a.ID]; done || silenced {
			return nil, nil
		}
		d, ok := a.Brain.Night(s, self)
		if !ok {
			return nil, nil
		}
		events, err := svc.SubmitNightAction(s, a.ID, d.Kind, d.Target, d.Payload)
		if errors.Is(err, app.ErrInvalidTarget) || errors.Is(err, app.ErrNotPermitted) {
			// Fall back to passing so the night can still end early.
			return svc.SubmitNightAction(s, a.ID, domain.ActionPass, domain.NoPlayer, nil)
		}
		if err != nil {
			return nil, fmt.Errorf("bot %d night %s: %w", a.ID, d.Kind, err)
		}
		return events, nil

	case domain.PhaseDay:
		var events []app.Event
		if a.actedDay != s.DayCount && !silenced {
			a.actedDay = s.DayCount
			if d, ok := a.Brain.Day(s, self); ok {
				evs, err := svc.SubmitDayAction(s, a.ID, d.Kind, d.Target)
				if err != nil && !errors.Is(err, app.ErrAlreadyActed) {
					return nil, fmt.Errorf("bot %d day %s: %w", a.ID, d.Kind, err)
				}
				events = append(events, evs...)
			}
		}
		if !self.Alive || s.Resolved || !self.CanVote() {
			return events, nil
		}
		if _, voted := s.Votes[a.ID]; voted {
			return events, nil
		}
		d := a.Brain.Vote(s, self)
		evs, err := svc.SubmitVote(s, a.ID, d.Target, d.Abstain)
		if errors.Is(err, app.ErrInvalidTarget) {
			evs, err = svc.SubmitVote(s, a.ID, domain.NoPlayer, true)
		}
		if err != nil {
			return events, fmt.Errorf("bot %d vote: %w", a.ID, err)
		}
		return append(events, evs...), nil
	}
	return nil, nil
}

// Observe forwards the events the agent's player is allowed to see.
func (a *Agent) Observe(events []app.Event) {
	for _, ev := range events {
		if ev.Private() && !addressedTo(ev, a.ID) {
			continue
		}
		a.Brain.OnEvent(ev)
	}
}

func addressedTo(ev app.Event, id domain.PlayerID) bool {
	for _, r := range ev.Recipients {
		if r == id {
			return true
		}
	}
	return false
}

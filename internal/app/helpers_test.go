package app

import (
	"fmt"
	"math/rand"
	"testing"

	"wolfbot/internal/domain"
)

func newTestService(opts ...Option) *Service {
	return NewService(rand.New(rand.NewSource(7)), opts...)
}

// newGame seats one player per role, in order, and opens night one.
func newGame(roles ...domain.RoleName) *domain.Session {
	s := domain.NewSession("test")
	for i, role := range roles {
		id := domain.PlayerID(i + 1)
		p := domain.NewPlayer(id, fmt.Sprintf("p%d", id))
		p.Role = role
		s.Players[id] = p
		s.Order = append(s.Order, id)
	}
	s.Phase = domain.PhaseNight
	return s
}

// toDay moves a fresh session straight to day one.
func toDay(s *domain.Session) *domain.Session {
	s.Phase = domain.PhaseDay
	s.DayCount = 1
	s.NightCount = 1
	return s
}

func mustNight(t *testing.T, svc *Service, s *domain.Session, actor domain.PlayerID, kind domain.ActionKind, target domain.PlayerID) []Event {
	t.Helper()
	evs, err := svc.SubmitNightAction(s, actor, kind, target, nil)
	if err != nil {
		t.Fatalf("SubmitNightAction(%d, %s, %d) error: %v", actor, kind, target, err)
	}
	return evs
}

func mustVote(t *testing.T, svc *Service, s *domain.Session, voter, target domain.PlayerID) {
	t.Helper()
	if _, err := svc.SubmitVote(s, voter, target, false); err != nil {
		t.Fatalf("SubmitVote(%d, %d) error: %v", voter, target, err)
	}
}

func resolveNight(t *testing.T, svc *Service, s *domain.Session) (NightResult, []Event) {
	t.Helper()
	res, evs, err := svc.ResolveNight(s)
	if err != nil {
		t.Fatalf("ResolveNight() error: %v", err)
	}
	return res, evs
}

func died(deaths []Death, id domain.PlayerID) (DeathCause, bool) {
	for _, d := range deaths {
		if d.Victim == id {
			return d.Cause, true
		}
	}
	return "", false
}

func eventsOf(evs []Event, kind EventKind) []Event {
	var out []Event
	for _, ev := range evs {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

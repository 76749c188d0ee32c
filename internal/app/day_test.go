package app

import (
	"errors"
	"math/rand"
	"testing"

	"wolfbot/internal/domain"
)

func TestSharpshooterShot(t *testing.T) {
	svc := newTestService()
	s := toDay(newGame(domain.RoleVillager, domain.RoleWolf, domain.RoleVillager, domain.RoleVillager))
	s.Players[1].AddTemplate(domain.TemplateSharpshooter)

	evs, err := svc.SubmitDayAction(s, 1, domain.ActionShoot, 2)
	if err != nil {
		t.Fatalf("SubmitDayAction(shoot) error: %v", err)
	}
	shots := eventsOf(evs, EventShotFired)
	if len(shots) != 1 || !shots[0].Payload.(ShotFiredPayload).Hit {
		t.Fatalf("shot_fired = %v, want a hit", shots)
	}
	if s.Players[2].Alive {
		t.Fatalf("shot wolf should be dead")
	}
	if d := eventsOf(evs, EventDeathReported); len(d) != 1 || d[0].Payload.(Death).Cause != CauseShot {
		t.Fatalf("death reports = %v, want shot", d)
	}
	if s.Players[1].Bullets != 1 {
		t.Fatalf("Bullets = %d, want 1", s.Players[1].Bullets)
	}
}

func TestShotUsesBlessing(t *testing.T) {
	svc := newTestService()
	s := toDay(newGame(domain.RoleVillager, domain.RoleVillager, domain.RoleWolf, domain.RoleVillager))
	s.Players[1].AddTemplate(domain.TemplateSharpshooter)
	s.Players[2].AddTemplate(domain.TemplateBlessed)

	if _, err := svc.SubmitDayAction(s, 1, domain.ActionShoot, 2); err != nil {
		t.Fatalf("SubmitDayAction(shoot) error: %v", err)
	}
	if !s.Players[2].Alive {
		t.Fatalf("blessed target should survive the shot")
	}
	if s.Players[2].Templates.Has(domain.TemplateBlessed) {
		t.Fatalf("blessing should be used up")
	}
}

func TestGunnerShotsAreRandom(t *testing.T) {
	hits := 0
	for seed := 0; seed < 50; seed++ {
		svc := NewService(rand.New(rand.NewSource(int64(seed))))
		s := toDay(newGame(domain.RoleVillager, domain.RoleWolf, domain.RoleVillager, domain.RoleVillager))
		s.Players[1].AddTemplate(domain.TemplateGunner)
		evs, err := svc.SubmitDayAction(s, 1, domain.ActionShoot, 2)
		if err != nil {
			t.Fatalf("SubmitDayAction(shoot) error: %v", err)
		}
		hit := eventsOf(evs, EventShotFired)[0].Payload.(ShotFiredPayload).Hit
		if hit == s.Players[2].Alive {
			t.Fatalf("seed %d: hit %v but target alive %v", seed, hit, s.Players[2].Alive)
		}
		if hit {
			hits++
		}
	}
	if hits == 0 || hits == 50 {
		t.Fatalf("gunner hit %d of 50 shots, want a mix", hits)
	}
}

func TestSubmitDayActionRejections(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(s *domain.Session)
		actor   domain.PlayerID
		kind    domain.ActionKind
		target  domain.PlayerID
		want    error
	}{
		{name: "night", prepare: func(s *domain.Session) { s.Phase = domain.PhaseNight }, actor: 1, kind: domain.ActionShoot, target: 2, want: ErrWrongPhase},
		{name: "no gun", actor: 3, kind: domain.ActionShoot, target: 2, want: ErrNotPermitted},
		{name: "out of bullets", prepare: func(s *domain.Session) { s.Players[1].Bullets = 0 }, actor: 1, kind: domain.ActionShoot, target: 2, want: ErrAlreadyActed},
		{name: "shoot self", actor: 1, kind: domain.ActionShoot, target: 1, want: ErrInvalidTarget},
		{name: "shoot the dead", prepare: func(s *domain.Session) { s.Players[2].Alive = false }, actor: 1, kind: domain.ActionShoot, target: 2, want: ErrInvalidTarget},
		{name: "silenced", prepare: func(s *domain.Session) { s.Players[1].Apply(domain.StatusSilenced, domain.EndOfNight(2)) }, actor: 1, kind: domain.ActionShoot, target: 2, want: ErrNotPermitted},
		{name: "not a mayor", actor: 1, kind: domain.ActionReveal, want: ErrNotPermitted},
		{name: "night kind by day", actor: 1, kind: domain.ActionSee, target: 2, want: ErrNotPermitted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			s := toDay(newGame(domain.RoleVillager, domain.RoleWolf, domain.RoleVillager, domain.RoleVillager))
			s.Players[1].AddTemplate(domain.TemplateGunner)
			if tt.prepare != nil {
				tt.prepare(s)
			}
			bullets := s.Players[1].Bullets
			if _, err := svc.SubmitDayAction(s, tt.actor, tt.kind, tt.target); !errors.Is(err, tt.want) {
				t.Fatalf("SubmitDayAction() err = %v, want %v", err, tt.want)
			}
			if s.Players[1].Bullets != bullets {
				t.Fatalf("rejected action changed the session")
			}
		})
	}
}

func TestMayorReveal(t *testing.T) {
	svc := newTestService()
	s := toDay(newGame(domain.RoleVillager, domain.RoleWolf, domain.RoleVillager, domain.RoleVillager))
	s.Players[1].AddTemplate(domain.TemplateMayor)

	evs, err := svc.SubmitDayAction(s, 1, domain.ActionReveal, domain.NoPlayer)
	if err != nil {
		t.Fatalf("SubmitDayAction(reveal) error: %v", err)
	}
	if !s.Players[1].MayorRevealed || !s.Players[1].Has(domain.StatusRevealed) {
		t.Fatalf("mayor not revealed")
	}
	if len(eventsOf(evs, EventRoleRevealed)) != 1 || evs[0].Private() {
		t.Fatalf("reveal should be public, got %v", evs)
	}
	if _, err := svc.SubmitDayAction(s, 1, domain.ActionReveal, domain.NoPlayer); !errors.Is(err, ErrAlreadyActed) {
		t.Fatalf("second reveal err = %v, want ErrAlreadyActed", err)
	}
	if VoteWeight(s.Players[1]) != 2 {
		t.Fatalf("mayor vote weight = %d, want 2", VoteWeight(s.Players[1]))
	}
}

func TestAssassinTakesTargetAlong(t *testing.T) {
	svc := newTestService()
	s := toDay(newGame(domain.RoleVillager, domain.RoleWolf, domain.RoleVillager, domain.RoleVillager))
	s.Players[1].AddTemplate(domain.TemplateAssassin)

	evs, err := svc.SubmitDayAction(s, 1, domain.ActionTarget, 2)
	if err != nil {
		t.Fatalf("SubmitDayAction(target) error: %v", err)
	}
	if len(evs) != 1 || !evs[0].Private() || evs[0].Recipients[0] != 1 {
		t.Fatalf("assassin target should be private, got %v", evs)
	}
	if _, err := svc.SubmitDayAction(s, 1, domain.ActionTarget, 3); !errors.Is(err, ErrAlreadyActed) {
		t.Fatalf("retarget err = %v, want ErrAlreadyActed", err)
	}

	mustVote(t, svc, s, 2, 1)
	mustVote(t, svc, s, 3, 1)
	mustVote(t, svc, s, 4, 1)
	res, _, err := svc.ResolveDay(s)
	if err != nil {
		t.Fatalf("ResolveDay() error: %v", err)
	}
	if cause, ok := died(res.Deaths, 2); !ok || cause != CauseAssassin {
		t.Fatalf("assassin's target should die with them, deaths %v", res.Deaths)
	}
}

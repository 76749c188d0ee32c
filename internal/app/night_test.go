package app

import (
	"errors"
	"testing"

	"wolfbot/internal/domain"
)

// nextNight runs an empty day and opens the following night.
func nextNight(t *testing.T, svc *Service, s *domain.Session) []Event {
	t.Helper()
	var evs []Event
	day, err := svc.StartDay(s)
	if err != nil {
		t.Fatalf("StartDay() error: %v", err)
	}
	evs = append(evs, day...)
	_, resolved, err := svc.ResolveDay(s)
	if err != nil {
		t.Fatalf("ResolveDay() error: %v", err)
	}
	evs = append(evs, resolved...)
	night, err := svc.StartNight(s)
	if err != nil {
		t.Fatalf("StartNight() error: %v", err)
	}
	return append(evs, night...)
}

func TestPluralityTargetProtectedByTotem(t *testing.T) {
	svc := newTestService()
	s := newGame(domain.RoleWolf, domain.RoleWolf, domain.RoleWolf, domain.RoleVillager, domain.RoleVillager, domain.RoleVillager)
	s.Players[4].Totem = domain.TotemProtection

	mustNight(t, svc, s, 1, domain.ActionKill, 4)
	mustNight(t, svc, s, 2, domain.ActionKill, 4)
	mustNight(t, svc, s, 3, domain.ActionKill, 5)

	res, evs := resolveNight(t, svc, s)
	if len(res.Deaths) != 0 {
		t.Fatalf("deaths = %v, want none", res.Deaths)
	}
	if got := s.Players[4].Totem; got != domain.TotemNone {
		t.Fatalf("protection totem = %q, want consumed", got)
	}
	if n := len(eventsOf(evs, EventDeathReported)); n != 0 {
		t.Fatalf("death reports = %d, want 0", n)
	}
}

func TestLycanthropyConvertsVictim(t *testing.T) {
	svc := newTestService()
	s := newGame(domain.RoleWolf, domain.RoleVillager, domain.RoleVillager, domain.RoleVillager)
	s.Players[2].Totem = domain.TotemLycanthropy

	mustNight(t, svc, s, 1, domain.ActionKill, 2)
	res, evs := resolveNight(t, svc, s)

	p := s.Players[2]
	if !p.Alive || p.Role != domain.RoleWolf || p.Totem != domain.TotemNone {
		t.Fatalf("victim = alive %t role %q totem %q, want alive wolf without totem", p.Alive, p.Role, p.Totem)
	}
	if len(res.Deaths) != 0 {
		t.Fatalf("deaths = %v, want none", res.Deaths)
	}
	assigned := eventsOf(evs, EventRoleAssigned)
	if len(assigned) != 1 || assigned[0].Recipients[0] != 2 {
		t.Fatalf("role_assigned events = %+v, want one for player 2", assigned)
	}
}

func TestProtectionConsumption(t *testing.T) {
	tests := []struct {
		name      string
		prepare   func(p *domain.Player)
		vigilante bool
		wantAlive bool
	}{
		{name: "totem blocks one attack", prepare: func(p *domain.Player) { p.Totem = domain.TotemProtection }, wantAlive: true},
		{name: "totem blocks only one attack", prepare: func(p *domain.Player) { p.Totem = domain.TotemProtection }, vigilante: true},
		{name: "blessing blocks one attack", prepare: func(p *domain.Player) { p.AddTemplate(domain.TemplateBlessed) }, wantAlive: true},
		{name: "blessing blocks only one attack", prepare: func(p *domain.Player) { p.AddTemplate(domain.TemplateBlessed) }, vigilante: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			s := newGame(domain.RoleWolf, domain.RoleVigilante, domain.RoleVillager, domain.RoleVillager, domain.RoleVillager)
			victim := s.Players[3]
			tt.prepare(victim)

			mustNight(t, svc, s, 1, domain.ActionKill, 3)
			if tt.vigilante {
				mustNight(t, svc, s, 2, domain.ActionKill, 3)
			}
			resolveNight(t, svc, s)

			if victim.Alive != tt.wantAlive {
				t.Fatalf("alive = %t, want %t", victim.Alive, tt.wantAlive)
			}
			if victim.Totem != domain.TotemNone || victim.BlessCharges != 0 || victim.Templates.Has(domain.TemplateBlessed) {
				t.Fatalf("protection left over: totem %q charges %d", victim.Totem, victim.BlessCharges)
			}
		})
	}
}

func TestGuardProtection(t *testing.T) {
	tests := []struct {
		name      string
		guard     domain.RoleName
		wantGuard bool
	}{
		{name: "guardian angel survives", guard: domain.RoleGuardianAngel, wantGuard: true},
		{name: "bodyguard dies instead", guard: domain.RoleBodyguard, wantGuard: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			s := newGame(tt.guard, domain.RoleWolf, domain.RoleVillager, domain.RoleVillager, domain.RoleVillager)
			mustNight(t, svc, s, 1, domain.ActionGuard, 3)
			mustNight(t, svc, s, 2, domain.ActionKill, 3)

			res, _ := resolveNight(t, svc, s)
			if !s.Players[3].Alive {
				t.Fatalf("guarded player died")
			}
			if s.Players[1].Alive != tt.wantGuard {
				t.Fatalf("guard alive = %t, want %t", s.Players[1].Alive, tt.wantGuard)
			}
			if !tt.wantGuard {
				if cause, ok := died(res.Deaths, 1); !ok || cause != CauseGuarding {
					t.Fatalf("guard death cause = %q, want %q", cause, CauseGuarding)
				}
			}
			if s.Players[3].Has(domain.StatusProtected) {
				t.Fatalf("protection should be spent")
			}
		})
	}
}

func TestGuardedPlayerFallsToSecondAttack(t *testing.T) {
	svc := newTestService()
	s := newGame(domain.RoleGuardianAngel, domain.RoleWolf, domain.RoleSerialKiller, domain.RoleVillager, domain.RoleVillager)
	mustNight(t, svc, s, 1, domain.ActionGuard, 4)
	mustNight(t, svc, s, 2, domain.ActionKill, 4)
	mustNight(t, svc, s, 3, domain.ActionKill, 4)

	res, _ := resolveNight(t, svc, s)
	if cause, ok := died(res.Deaths, 4); !ok || cause != CauseKiller {
		t.Fatalf("death cause = %q (%t), want %q", cause, ok, CauseKiller)
	}
}

func TestRetributionKillsAnAttacker(t *testing.T) {
	svc := newTestService()
	s := newGame(domain.RoleWolf, domain.RoleWolf, domain.RoleVillager, domain.RoleVillager, domain.RoleVillager)
	s.Players[3].Totem = domain.TotemRetribution
	mustNight(t, svc, s, 1, domain.ActionKill, 3)
	mustNight(t, svc, s, 2, domain.ActionKill, 3)

	res, _ := resolveNight(t, svc, s)
	if _, ok := died(res.Deaths, 3); !ok {
		t.Fatalf("victim should die")
	}
	avenged := 0
	for _, d := range res.Deaths {
		if d.Cause == CauseRetribution && (d.Victim == 1 || d.Victim == 2) {
			avenged++
		}
	}
	if avenged != 1 {
		t.Fatalf("retribution deaths = %d, want 1 (%v)", avenged, res.Deaths)
	}
}

func TestPestilenceSickensWolves(t *testing.T) {
	svc := newTestService()
	s := newGame(domain.RoleWolf, domain.RoleVillager, domain.RoleVillager, domain.RoleVillager, domain.RoleVillager)
	s.Players[2].Totem = domain.TotemPestilence
	mustNight(t, svc, s, 1, domain.ActionKill, 2)
	resolveNight(t, svc, s)
	if s.WolvesSickNight != 2 {
		t.Fatalf("WolvesSickNight = %d, want 2", s.WolvesSickNight)
	}

	nextNight(t, svc, s)
	mustNight(t, svc, s, 1, domain.ActionKill, 3)
	res, _ := resolveNight(t, svc, s)
	if len(res.Deaths) != 0 {
		t.Fatalf("sick wolves killed %v", res.Deaths)
	}
}

func TestWolfImmunities(t *testing.T) {
	tests := []struct {
		name   string
		roles  []domain.RoleName
		before func(t *testing.T, svc *Service, s *domain.Session)
		target domain.PlayerID
		alive  map[domain.PlayerID]bool
	}{
		{
			name:   "monster",
			roles:  []domain.RoleName{domain.RoleWolf, domain.RoleMonster, domain.RoleVillager, domain.RoleVillager},
			target: 2,
			alive:  map[domain.PlayerID]bool{2: true},
		},
		{
			name:  "visiting harlot is not home",
			roles: []domain.RoleName{domain.RoleWolf, domain.RoleHarlot, domain.RoleVillager, domain.RoleVillager},
			before: func(t *testing.T, svc *Service, s *domain.Session) {
				mustNight(t, svc, s, 2, domain.ActionVisit, 3)
			},
			target: 2,
			alive:  map[domain.PlayerID]bool{2: true, 3: true},
		},
		{
			name:  "harlot visiting the victim dies too",
			roles: []domain.RoleName{domain.RoleWolf, domain.RoleHarlot, domain.RoleVillager, domain.RoleVillager},
			before: func(t *testing.T, svc *Service, s *domain.Session) {
				mustNight(t, svc, s, 2, domain.ActionVisit, 3)
			},
			target: 3,
			alive:  map[domain.PlayerID]bool{2: false, 3: false},
		},
		{
			name:  "harlot visiting a wolf dies",
			roles: []domain.RoleName{domain.RoleWolf, domain.RoleHarlot, domain.RoleVillager, domain.RoleVillager},
			before: func(t *testing.T, svc *Service, s *domain.Session) {
				mustNight(t, svc, s, 2, domain.ActionVisit, 1)
			},
			target: 4,
			alive:  map[domain.PlayerID]bool{2: false, 4: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			s := newGame(tt.roles...)
			if tt.before != nil {
				tt.before(t, svc, s)
			}
			mustNight(t, svc, s, 1, domain.ActionKill, tt.target)
			resolveNight(t, svc, s)
			for id, want := range tt.alive {
				if got := s.Players[id].Alive; got != want {
					t.Fatalf("player %d alive = %t, want %t", id, got, want)
				}
			}
		})
	}
}

func TestTotemSingleDraw(t *testing.T) {
	svc := newTestService()
	s := newGame(domain.RoleShaman, domain.RoleVillager, domain.RoleVillager, domain.RoleWolf)

	first := mustNight(t, svc, s, 1, domain.ActionGive, 2)
	second := mustNight(t, svc, s, 1, domain.ActionGive, 3)
	third := mustNight(t, svc, s, 1, domain.ActionGive, 3)

	if n := len(eventsOf(first, EventTotemDrawn)); n != 1 {
		t.Fatalf("first give drew %d totems, want 1", n)
	}
	if n := len(eventsOf(second, EventTotemDrawn)) + len(eventsOf(third, EventTotemDrawn)); n != 0 {
		t.Fatalf("later gives drew %d totems, want 0", n)
	}
	if len(s.AssignedTotems) != 1 || len(s.UsedShamans) != 1 || !s.UsedShamans[1] {
		t.Fatalf("AssignedTotems = %v UsedShamans = %v", s.AssignedTotems, s.UsedShamans)
	}
	drawn := first[0].Payload.(TotemDrawnPayload).Totem

	_, evs := resolveNight(t, svc, s)
	received := eventsOf(evs, EventTotemReceived)
	if len(received) != 1 {
		t.Fatalf("totem_received events = %d, want 1", len(received))
	}
	got := received[0].Payload.(TotemReceivedPayload)
	if got.Target != 3 || got.Totem != drawn {
		t.Fatalf("received = %+v, want %q for player 3", got, drawn)
	}
	if len(s.AssignedTotems) != 0 || len(s.UsedShamans) != 0 {
		t.Fatalf("totem bookkeeping should reset at night end")
	}
}

func TestCrazedShamanIsNotToldItsTotem(t *testing.T) {
	svc := newTestService()
	s := newGame(domain.RoleCrazedShaman, domain.RoleVillager, domain.RoleVillager, domain.RoleWolf)
	evs := mustNight(t, svc, s, 1, domain.ActionGive, 2)
	if n := len(eventsOf(evs, EventTotemDrawn)); n != 0 {
		t.Fatalf("crazed shaman saw %d draws", n)
	}
	if !s.UsedShamans[1] {
		t.Fatalf("draw should still be recorded")
	}
}

func TestPackKillIgnoresPlayersAlreadyDead(t *testing.T) {
	svc := newTestService()
	s := newGame(domain.RoleWolf, domain.RoleWolf, domain.RoleVillager, domain.RoleVillager, domain.RoleVillager, domain.RoleVillager)
	s.Players[3].Totem = domain.TotemDeath
	mustNight(t, svc, s, 1, domain.ActionKill, 3)
	mustNight(t, svc, s, 2, domain.ActionKill, 4)

	res, _ := resolveNight(t, svc, s)
	if cause, ok := died(res.Deaths, 3); !ok || cause != CauseTotem {
		t.Fatalf("player 3 death = %q, %t, want totem", cause, ok)
	}
	if cause, ok := died(res.Deaths, 4); !ok || cause != CauseWolves {
		t.Fatalf("player 4 death = %q, %t, want the pack's kill", cause, ok)
	}
}

func TestImmediateTotems(t *testing.T) {
	tests := []struct {
		name  string
		totem domain.Totem
		check func(t *testing.T, s *domain.Session, res NightResult)
	}{
		{name: "death ignores guards", totem: domain.TotemDeath, check: func(t *testing.T, s *domain.Session, res NightResult) {
			if cause, ok := died(res.Deaths, 2); !ok || cause != CauseTotem {
				t.Fatalf("death cause = %q, want %q", cause, CauseTotem)
			}
		}},
		{name: "cursed adds the template", totem: domain.TotemCursed, check: func(t *testing.T, s *domain.Session, _ NightResult) {
			if !s.Players[2].Templates.Has(domain.TemplateCursed) {
				t.Fatalf("player should be cursed")
			}
		}},
		{name: "blinding injures through the day", totem: domain.TotemBlinding, check: func(t *testing.T, s *domain.Session, _ NightResult) {
			if !s.Players[2].Has(domain.StatusInjured) || s.Players[2].CanVote() {
				t.Fatalf("player should be injured")
			}
		}},
		{name: "silence lasts into the next night", totem: domain.TotemSilence, check: func(t *testing.T, s *domain.Session, _ NightResult) {
			if got := s.Players[2].Expires[domain.StatusSilenced]; got != domain.EndOfNight(2) {
				t.Fatalf("silence expiry = %+v", got)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			s := newGame(domain.RoleShaman, domain.RoleVillager, domain.RoleGuardianAngel, domain.RoleWolf, domain.RoleVillager)
			s.AssignedTotems[1] = tt.totem
			s.UsedShamans[1] = true
			mustNight(t, svc, s, 1, domain.ActionGive, 2)
			mustNight(t, svc, s, 3, domain.ActionGuard, 2)

			res, _ := resolveNight(t, svc, s)
			if s.Players[2].Totem != domain.TotemNone {
				t.Fatalf("immediate totem should be consumed")
			}
			tt.check(t, s, res)
		})
	}
}

func TestSeerVisions(t *testing.T) {
	tests := []struct {
		name     string
		seer     domain.RoleName
		target   domain.RoleName
		cursed   bool
		deceit   bool
		wantRole domain.RoleName
		wantTeam domain.Team
		answer   bool
	}{
		{name: "seer sees wolf", seer: domain.RoleSeer, target: domain.RoleWolf, wantRole: domain.RoleWolf},
		{name: "seer fooled by deceit", seer: domain.RoleSeer, target: domain.RoleWolf, deceit: true, wantRole: domain.RoleVillager},
		{name: "seer sees cursed as wolf", seer: domain.RoleSeer, target: domain.RoleVillager, cursed: true, wantRole: domain.RoleWolf},
		{name: "seer sees traitor as villager", seer: domain.RoleSeer, target: domain.RoleTraitor, wantRole: domain.RoleVillager},
		{name: "oracle sees team", seer: domain.RoleOracle, target: domain.RoleWerecrow, wantTeam: domain.TeamWolf},
		{name: "oracle fooled by deceit", seer: domain.RoleOracle, target: domain.RoleVillager, deceit: true, wantTeam: domain.TeamWolf},
		{name: "augur sees killer", seer: domain.RoleAugur, target: domain.RoleVigilante, answer: true},
		{name: "augur fooled by deceit", seer: domain.RoleAugur, target: domain.RoleVigilante, deceit: true},
		{name: "sorcerer finds seer", seer: domain.RoleSorcerer, target: domain.RoleOracle, answer: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			s := newGame(tt.seer, tt.target, domain.RoleVillager, domain.RoleVillager)
			if tt.cursed {
				s.Players[2].AddTemplate(domain.TemplateCursed)
			}
			if tt.deceit {
				s.Players[2].Totem = domain.TotemDeceit
			}
			mustNight(t, svc, s, 1, domain.ActionSee, 2)

			_, evs := resolveNight(t, svc, s)
			results := eventsOf(evs, EventInvestigationResult)
			if len(results) != 1 || results[0].Recipients[0] != 1 {
				t.Fatalf("investigation events = %+v", results)
			}
			got := results[0].Payload.(InvestigationResultPayload)
			if got.Role != tt.wantRole || got.Team != tt.wantTeam || got.Answer != tt.answer {
				t.Fatalf("result = %+v, want role %q team %q answer %t", got, tt.wantRole, tt.wantTeam, tt.answer)
			}
		})
	}
}

func TestDetectiveComparesWithHistory(t *testing.T) {
	svc := newTestService()
	s := newGame(domain.RoleDetective, domain.RoleVillager, domain.RoleVillager, domain.RoleWolf, domain.RoleVillager)

	mustNight(t, svc, s, 1, domain.ActionID, 2)
	_, evs := resolveNight(t, svc, s)
	first := eventsOf(evs, EventInvestigationResult)[0].Payload.(InvestigationResultPayload)
	if first.Role != domain.RoleVillager {
		t.Fatalf("first result = %+v, want villager named", first)
	}

	for _, tc := range []struct {
		target domain.PlayerID
		want   bool
	}{{3, true}, {4, false}} {
		nextNight(t, svc, s)
		mustNight(t, svc, s, 1, domain.ActionID, tc.target)
		_, evs = resolveNight(t, svc, s)
		got := eventsOf(evs, EventInvestigationResult)[0].Payload.(InvestigationResultPayload)
		if got.Role != "" || got.Answer != tc.want {
			t.Fatalf("investigation of %d = %+v, want match %t without role", tc.target, got, tc.want)
		}
	}
	if len(s.Players[1].Investigations) != 3 {
		t.Fatalf("history length = %d, want 3", len(s.Players[1].Investigations))
	}
}

func TestGuardianAngelCannotRepeatGuard(t *testing.T) {
	svc := newTestService()
	s := newGame(domain.RoleGuardianAngel, domain.RoleWolf, domain.RoleVillager, domain.RoleVillager, domain.RoleVillager)

	mustNight(t, svc, s, 1, domain.ActionGuard, 2)
	resolveNight(t, svc, s)
	nextNight(t, svc, s)

	_, err := svc.SubmitNightAction(s, 1, domain.ActionGuard, 2, nil)
	if !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("repeat guard error = %v, want invalid target", err)
	}
	mustNight(t, svc, s, 1, domain.ActionGuard, 3)
	resolveNight(t, svc, s)
	nextNight(t, svc, s)

	// A night in between lifts the restriction.
	mustNight(t, svc, s, 1, domain.ActionGuard, 2)
}

func TestBodyguardMayRepeatGuard(t *testing.T) {
	svc := newTestService()
	s := newGame(domain.RoleBodyguard, domain.RoleWolf, domain.RoleVillager, domain.RoleVillager, domain.RoleVillager)

	mustNight(t, svc, s, 1, domain.ActionGuard, 3)
	resolveNight(t, svc, s)
	nextNight(t, svc, s)
	mustNight(t, svc, s, 1, domain.ActionGuard, 3)
}

func TestDetectiveMatchesAnyEarlierInvestigation(t *testing.T) {
	svc := newTestService()
	s := newGame(domain.RoleDetective, domain.RoleVillager, domain.RoleVillager, domain.RoleWolf, domain.RoleVillager)

	var last InvestigationResultPayload
	for i, target := range []domain.PlayerID{2, 4, 5} {
		if i > 0 {
			nextNight(t, svc, s)
		}
		mustNight(t, svc, s, 1, domain.ActionID, target)
		_, evs := resolveNight(t, svc, s)
		last = eventsOf(evs, EventInvestigationResult)[0].Payload.(InvestigationResultPayload)
	}

	if !last.Answer || last.Matches != 2 {
		t.Fatalf("investigation of 5 = %+v, want a match with 2", last)
	}
}

func TestLuckRedirectsIncomingAction(t *testing.T) {
	svc := newTestService()
	s := newGame(domain.RoleSeer, domain.RoleWolf, domain.RoleVillager, domain.RoleVillager, domain.RoleVillager)
	s.Players[2].Totem = domain.TotemLuck
	mustNight(t, svc, s, 1, domain.ActionSee, 2)

	_, evs := resolveNight(t, svc, s)
	got := eventsOf(evs, EventInvestigationResult)[0].Payload.(InvestigationResultPayload)
	if got.Target != 3 && got.Target != 5 {
		t.Fatalf("redirected target = %d, want a neighbour of 2", got.Target)
	}
}

func TestWerecrowSeesVisitors(t *testing.T) {
	svc := newTestService()
	s := newGame(domain.RoleWerecrow, domain.RoleSeer, domain.RoleVillager, domain.RoleVillager)
	mustNight(t, svc, s, 1, domain.ActionObserve, 3)
	mustNight(t, svc, s, 2, domain.ActionSee, 3)

	_, evs := resolveNight(t, svc, s)
	for _, ev := range eventsOf(evs, EventInvestigationResult) {
		got := ev.Payload.(InvestigationResultPayload)
		if got.Kind != domain.ActionObserve {
			continue
		}
		if !got.Answer || len(got.Visitors) != 1 || got.Visitors[0] != 2 {
			t.Fatalf("observe result = %+v, want visitor 2", got)
		}
		return
	}
	t.Fatalf("no observe result")
}

func TestMalformedPayloadIsIsolated(t *testing.T) {
	svc := newTestService()
	s := newGame(domain.RoleMatchmaker, domain.RoleSeer, domain.RoleWolf, domain.RoleVillager, domain.RoleVillager)
	if _, err := svc.SubmitNightAction(s, 1, domain.ActionMatch, 4, map[string]string{PayloadPartner: "banana"}); err != nil {
		t.Fatalf("submit match: %v", err)
	}
	mustNight(t, svc, s, 2, domain.ActionSee, 3)
	mustNight(t, svc, s, 3, domain.ActionKill, 5)

	res, evs := resolveNight(t, svc, s)
	if len(res.Failures) != 1 || res.Failures[0].Actor != 1 || res.Failures[0].Kind != domain.ActionMatch {
		t.Fatalf("failures = %v, want the matchmaker only", res.Failures)
	}
	if n := len(eventsOf(evs, EventInvestigationResult)); n != 1 {
		t.Fatalf("seer results = %d, want 1", n)
	}
	if _, ok := died(res.Deaths, 5); !ok {
		t.Fatalf("wolf kill should resolve")
	}
	if s.NightCount != 1 {
		t.Fatalf("NightCount = %d, want 1", s.NightCount)
	}
}

func TestMatchmakerAndHeartbreak(t *testing.T) {
	svc := newTestService()
	s := newGame(domain.RoleMatchmaker, domain.RoleVillager, domain.RoleVillager, domain.RoleWolf, domain.RoleVillager)
	if _, err := svc.SubmitNightAction(s, 1, domain.ActionMatch, 2, map[string]string{PayloadPartner: "3"}); err != nil {
		t.Fatalf("submit match: %v", err)
	}
	resolveNight(t, svc, s)
	if s.Players[2].Lover != 3 || s.Players[3].Lover != 2 {
		t.Fatalf("lovers = %d/%d, want 3/2", s.Players[2].Lover, s.Players[3].Lover)
	}

	nextNight(t, svc, s)
	mustNight(t, svc, s, 4, domain.ActionKill, 2)
	res, _ := resolveNight(t, svc, s)
	if cause, ok := died(res.Deaths, 3); !ok || cause != CauseHeartbreak {
		t.Fatalf("lover death cause = %q, want %q", cause, CauseHeartbreak)
	}
}

func TestDelayedEffects(t *testing.T) {
	t.Run("curse fires two nights later", func(t *testing.T) {
		svc := newTestService()
		s := newGame(domain.RoleWarlock, domain.RoleVillager, domain.RoleVillager, domain.RoleVillager)
		mustNight(t, svc, s, 1, domain.ActionCurse, 3)

		for night := 1; night <= 3; night++ {
			if night > 1 {
				nextNight(t, svc, s)
			}
			res, _ := resolveNight(t, svc, s)
			_, dead := died(res.Deaths, 3)
			if dead != (night == 3) {
				t.Fatalf("night %d: cursed player dead = %t", night, dead)
			}
		}
	})

	t.Run("doom fires at the next day start", func(t *testing.T) {
		svc := newTestService()
		s := newGame(domain.RoleDoomsayer, domain.RoleVillager, domain.RoleVillager, domain.RoleVillager)
		mustNight(t, svc, s, 1, domain.ActionDoom, 3)
		resolveNight(t, svc, s)
		if !s.Players[3].Alive {
			t.Fatalf("doomed player died at night")
		}
		evs, err := svc.StartDay(s)
		if err != nil {
			t.Fatalf("StartDay() error: %v", err)
		}
		if s.Players[3].Alive || len(eventsOf(evs, EventDeathReported)) != 1 {
			t.Fatalf("doomed player should die at day start")
		}
		if s.Players[1].UsesLeft(domain.ActionDoom) != 0 {
			t.Fatalf("doom charge should be spent")
		}
	})

	t.Run("hex swaps roles when the hag dies", func(t *testing.T) {
		svc := newTestService()
		s := newGame(domain.RoleHag, domain.RoleVillager, domain.RoleSeer, domain.RoleVillager)
		mustNight(t, svc, s, 1, domain.ActionHex, 3)
		resolveNight(t, svc, s)
		nextNight(t, svc, s)

		if _, err := svc.Leave(s, 1); err != nil {
			t.Fatalf("Leave() error: %v", err)
		}
		if s.Players[3].Role != domain.RoleHag || s.Players[1].Role != domain.RoleSeer {
			t.Fatalf("roles = %q/%q, want swapped", s.Players[1].Role, s.Players[3].Role)
		}
		if len(s.Delayed) != 0 {
			t.Fatalf("hex should be consumed, pending = %v", s.Delayed)
		}
	})
}

func TestNightCleanup(t *testing.T) {
	svc := newTestService()
	s := newGame(domain.RoleWolf, domain.RoleVillager, domain.RoleVillager, domain.RoleVillager)
	s.Players[2].Totem = domain.TotemProtection
	s.Players[3].Totem = domain.TotemInfluence
	s.Players[4].Apply(domain.StatusProtected, domain.EndOfNight(1))
	mustNight(t, svc, s, 1, domain.ActionPass, domain.NoPlayer)

	resolveNight(t, svc, s)
	if s.Players[2].Totem != domain.TotemNone {
		t.Fatalf("night totem should be cleared")
	}
	if s.Players[3].Totem != domain.TotemInfluence {
		t.Fatalf("day totem should survive the night")
	}
	if s.Players[4].Has(domain.StatusProtected) {
		t.Fatalf("protection should lapse")
	}
	if len(s.NightActions) != 0 || s.NightCount != 1 || !s.Resolved {
		t.Fatalf("cleanup incomplete: actions %v count %d resolved %t", s.NightActions, s.NightCount, s.Resolved)
	}
}

func TestResolveNightIsIdempotent(t *testing.T) {
	svc := newTestService()
	s := newGame(domain.RoleWolf, domain.RoleVillager, domain.RoleVillager, domain.RoleVillager)
	mustNight(t, svc, s, 1, domain.ActionKill, 2)
	res, _ := resolveNight(t, svc, s)
	if len(res.Deaths) != 1 {
		t.Fatalf("deaths = %v, want 1", res.Deaths)
	}

	again, evs, err := svc.ResolveNight(s)
	if !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("second ResolveNight() err = %v, want ErrAlreadyResolved", err)
	}
	if len(again.Deaths) != 0 || len(evs) != 0 || s.NightCount != 1 {
		t.Fatalf("second resolution changed state: %v %v count %d", again.Deaths, evs, s.NightCount)
	}
}

func TestSubmitNightActionRejections(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(s *domain.Session)
		actor   domain.PlayerID
		kind    domain.ActionKind
		target  domain.PlayerID
		want    error
	}{
		{name: "day phase", prepare: func(s *domain.Session) { s.Phase = domain.PhaseDay }, actor: 1, kind: domain.ActionSee, target: 3, want: ErrWrongPhase},
		{name: "villager cannot kill", actor: 3, kind: domain.ActionKill, target: 4, want: ErrNotPermitted},
		{name: "dead target", prepare: func(s *domain.Session) { s.Players[4].Alive = false }, actor: 1, kind: domain.ActionSee, target: 4, want: ErrInvalidTarget},
		{name: "unknown target", actor: 1, kind: domain.ActionSee, target: 42, want: ErrInvalidTarget},
		{name: "seer cannot see self", actor: 1, kind: domain.ActionSee, target: 1, want: ErrInvalidTarget},
		{name: "pack cannot attack a wolf", actor: 2, kind: domain.ActionKill, target: 5, want: ErrInvalidTarget},
		{name: "hunter shot spent", prepare: func(s *domain.Session) { s.Players[6].Uses[domain.ActionKill] = 1 }, actor: 6, kind: domain.ActionKill, target: 2, want: ErrAlreadyActed},
		{name: "silenced seer", prepare: func(s *domain.Session) { s.Players[1].Apply(domain.StatusSilenced, domain.EndOfNight(1)) }, actor: 1, kind: domain.ActionSee, target: 3, want: ErrNotPermitted},
		{name: "matchmaker after night one", prepare: func(s *domain.Session) { s.NightCount = 1 }, actor: 7, kind: domain.ActionMatch, target: 3, want: ErrNotPermitted},
		{name: "dead actor", prepare: func(s *domain.Session) { s.Players[1].Alive = false }, actor: 1, kind: domain.ActionSee, target: 3, want: ErrNotPermitted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			s := newGame(domain.RoleSeer, domain.RoleWolf, domain.RoleVillager, domain.RoleVillager,
				domain.RoleTraitor, domain.RoleHunter, domain.RoleMatchmaker)
			if tt.prepare != nil {
				tt.prepare(s)
			}
			_, err := svc.SubmitNightAction(s, tt.actor, tt.kind, tt.target, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("SubmitNightAction() err = %v, want %v", err, tt.want)
			}
			var rej *Rejection
			if !errors.As(err, &rej) || rej.Reason == "" {
				t.Fatalf("expected a rejection with a reason, got %v", err)
			}
			if len(s.NightActions) != 0 || len(s.UsedShamans) != 0 {
				t.Fatalf("rejected action mutated the session")
			}
		})
	}
}

func TestNightComplete(t *testing.T) {
	svc := newTestService()
	s := newGame(domain.RoleSeer, domain.RoleWolf, domain.RoleVillager, domain.RoleHunter)
	s.Players[4].Uses[domain.ActionKill] = 1

	if NightComplete(s) {
		t.Fatalf("night should wait for the seer and the wolf")
	}
	mustNight(t, svc, s, 1, domain.ActionSee, 3)
	if NightComplete(s) {
		t.Fatalf("night should wait for the wolf")
	}
	mustNight(t, svc, s, 2, domain.ActionPass, domain.NoPlayer)
	if !NightComplete(s) {
		t.Fatalf("night should be complete once every pending actor acted")
	}
}

func TestEveryNightActionHasAResolver(t *testing.T) {
	used := map[domain.ActionKind]bool{domain.ActionPass: true}
	for _, name := range domain.AllRoles() {
		for _, kind := range domain.RoleOf(name).Night {
			used[kind] = true
			if _, ok := nightActors[kind]; !ok {
				t.Fatalf("role %q action %q has no resolver", name, kind)
			}
		}
	}
	for kind := range nightActors {
		if !used[kind] {
			t.Fatalf("resolver %q is not used by any role", kind)
		}
	}

	var all domain.TemplateSet
	for tpl := domain.TemplateCursed; tpl <= domain.TemplateAssassin; tpl <<= 1 {
		all = all.With(tpl)
	}
	for _, kind := range domain.DayActions(&domain.Player{Templates: all}) {
		if _, ok := dayActors[kind]; !ok {
			t.Fatalf("day action %q has no resolver", kind)
		}
	}
}

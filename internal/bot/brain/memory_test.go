package brain

import (
	"testing"

	"wolfbot/internal/app"
	"wolfbot/internal/domain"
)

var testWeights = Weights{VoteAgainstSelf: 1, VoteAgainstCleared: 2, VoteAgainstWolf: -1}

func TestMemoryLearnsPackFromAssignment(t *testing.T) {
	m := NewMemory(testWeights)
	m.Observe(app.Event{Kind: app.EventRoleAssigned, Payload: app.RoleAssignedPayload{
		Player: 3, Role: domain.RoleWolf, Teammates: []domain.PlayerID{5},
	}})

	if m.Self != 3 || m.Team() != domain.TeamWolf {
		t.Fatalf("Self = %d Team() = %s, want 3 wolf", m.Self, m.Team())
	}
	if !m.KnownWolf(5) || m.KnownWolf(4) {
		t.Fatalf("KnownWolf(5)=%v KnownWolf(4)=%v, want true false", m.KnownWolf(5), m.KnownWolf(4))
	}
}

func TestMemoryLearnsFromVisionsAndDeaths(t *testing.T) {
	m := NewMemory(testWeights)
	m.Observe(app.Event{Payload: app.RoleAssignedPayload{Player: 1, Role: domain.RoleSeer}})
	m.Observe(app.Event{Payload: app.InvestigationResultPayload{Actor: 1, Target: 2, Role: domain.RoleWerecrow}})
	m.Observe(app.Event{Payload: app.InvestigationResultPayload{Actor: 1, Target: 4, Team: domain.TeamVillage}})
	m.Observe(app.Event{Payload: app.Death{Victim: 6, Cause: app.CauseWolves, Role: domain.RoleHunter}})

	if !m.KnownWolf(2) {
		t.Fatal("werecrow vision should mark player 2 as a wolf")
	}
	if !m.Cleared(4) || !m.Cleared(6) {
		t.Fatalf("Cleared(4)=%v Cleared(6)=%v, want both true", m.Cleared(4), m.Cleared(6))
	}
	if !m.Dead[6] {
		t.Fatal("death should be recorded")
	}
}

func TestMemoryJudgesVotes(t *testing.T) {
	m := NewMemory(testWeights)
	m.Observe(app.Event{Payload: app.RoleAssignedPayload{Player: 1, Role: domain.RoleVillager}})
	m.Teams[2] = domain.TeamWolf
	m.Teams[3] = domain.TeamVillage

	votes := []app.VoteRecordedPayload{
		{Voter: 4, Target: 1},
		{Voter: 4, Target: 3},
		{Voter: 5, Target: 2},
		{Voter: 6, Abstain: true},
		{Voter: 1, Target: 2},
	}
	for _, v := range votes {
		m.Observe(app.Event{Kind: app.EventVoteRecorded, Payload: v})
	}

	tests := []struct {
		id   domain.PlayerID
		want float64
	}{
		{4, 3},
		{5, -1},
		{6, 0},
		{1, 0},
	}
	for _, tt := range tests {
		if got := m.Suspicion[tt.id]; got != tt.want {
			t.Fatalf("Suspicion[%d] = %v, want %v", tt.id, got, tt.want)
		}
	}

	got, ok := m.MostSuspicious([]domain.PlayerID{5, 6, 4})
	if !ok || got != 4 {
		t.Fatalf("MostSuspicious() = %d, %v, want 4, true", got, ok)
	}
	if _, ok := m.MostSuspicious([]domain.PlayerID{5, 6}); ok {
		t.Fatal("MostSuspicious() should report nothing when no one is suspicious")
	}
}

func TestMemoryReset(t *testing.T) {
	m := NewMemory(testWeights)
	m.Observe(app.Event{Payload: app.RoleAssignedPayload{Player: 1, Role: domain.RoleWolf}})
	m.Suspicion[2] = 4
	m.Reset()
	if m.Self != domain.NoPlayer || len(m.Teams) != 0 || len(m.Suspicion) != 0 {
		t.Fatalf("Reset() left state behind: %+v", m)
	}
}

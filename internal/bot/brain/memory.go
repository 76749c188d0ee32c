package brain

import (
	"wolfbot/internal/app"
	"wolfbot/internal/domain"
)

// Weights scale how strongly observed votes move suspicion.
type Weights struct {
	// VoteAgainstSelf is added to a voter who votes for the bot.
	VoteAgainstSelf float64
	// VoteAgainstCleared is added to a voter who votes for a player known to be innocent.
	VoteAgainstCleared float64
	// VoteAgainstWolf is added (usually negative) to a voter who votes for a known wolf.
	VoteAgainstWolf float64
}

// GameMemory stores the bot's private view of the game.
type GameMemory struct {
	Self domain.PlayerID
	Role domain.RoleName

	// Roles holds exact roles learned from visions, reveals and deaths.
	Roles map[domain.PlayerID]domain.RoleName
	// Teams holds teams learned from visions or from the pack roster.
	Teams map[domain.PlayerID]domain.Team
	// Suspicion grows for players whose votes look wolfish.
	Suspicion map[domain.PlayerID]float64
	Dead      map[domain.PlayerID]bool

	weights Weights
}

// NewMemory initializes a fresh memory state.
func NewMemory(w Weights) *GameMemory {
	m := &GameMemory{weights: w}
	m.Reset()
	return m
}

// Reset clears the memory for a new game.
func (m *GameMemory) Reset() {
	m.Self = domain.NoPlayer
	m.Role = ""
	m.Roles = make(map[domain.PlayerID]domain.RoleName)
	m.Teams = make(map[domain.PlayerID]domain.Team)
	m.Suspicion = make(map[domain.PlayerID]float64)
	m.Dead = make(map[domain.PlayerID]bool)
}

// Observe folds one visible event into memory.
func (m *GameMemory) Observe(ev app.Event) {
	switch p := ev.Payload.(type) {
	case app.RoleAssignedPayload:
		// Role swaps re-send the assignment, so always overwrite.
		m.Self = p.Player
		m.Role = p.Role
		m.Roles[p.Player] = p.Role
		m.Teams[p.Player] = domain.RoleOf(p.Role).Team
		for _, id := range p.Teammates {
			m.Teams[id] = domain.TeamWolf
		}
	case app.InvestigationResultPayload:
		if p.Role != "" {
			m.learnRole(p.Target, p.Role)
		}
		if p.Team != "" {
			m.Teams[p.Target] = p.Team
		}
	case app.RoleRevealedPayload:
		if p.Role != "" {
			m.learnRole(p.Player, p.Role)
		} else if p.Template == domain.TemplateMayor.String() {
			m.Teams[p.Player] = domain.TeamVillage
		}
	case app.Death:
		m.Dead[p.Victim] = true
		if p.Role != "" {
			m.learnRole(p.Victim, p.Role)
		}
	case app.VoteRecordedPayload:
		if !p.Abstain {
			m.judgeVote(p.Voter, p.Target)
		}
	case app.GameEndedPayload:
		for id, role := range p.Roles {
			m.learnRole(id, role)
		}
	}
}

func (m *GameMemory) learnRole(id domain.PlayerID, role domain.RoleName) {
	m.Roles[id] = role
	m.Teams[id] = domain.RoleOf(role).Team
}

func (m *GameMemory) judgeVote(voter, target domain.PlayerID) {
	if voter == m.Self {
		return
	}
	switch {
	case target == m.Self && m.Team() != domain.TeamWolf:
		m.Suspicion[voter] += m.weights.VoteAgainstSelf
	case m.Teams[target] == domain.TeamWolf:
		m.Suspicion[voter] += m.weights.VoteAgainstWolf
	case m.Teams[target] == domain.TeamVillage:
		m.Suspicion[voter] += m.weights.VoteAgainstCleared
	}
}

// Team returns the bot's own team.
func (m *GameMemory) Team() domain.Team {
	return domain.RoleOf(m.Role).Team
}

// KnownWolf reports whether id is known to play for the wolves.
func (m *GameMemory) KnownWolf(id domain.PlayerID) bool {
	return m.Teams[id] == domain.TeamWolf
}

// Cleared reports whether id is known to be on the village team.
func (m *GameMemory) Cleared(id domain.PlayerID) bool {
	return m.Teams[id] == domain.TeamVillage
}

// MostSuspicious returns the candidate with the highest positive suspicion,
// preferring earlier candidates on ties.
func (m *GameMemory) MostSuspicious(candidates []domain.PlayerID) (domain.PlayerID, bool) {
	best, score := domain.NoPlayer, 0.0
	for _, id := range candidates {
		if v := m.Suspicion[id]; v > score {
			best, score = id, v
		}
	}
	return best, best != domain.NoPlayer
}

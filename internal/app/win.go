package app

import "wolfbot/internal/domain"

// EvaluateWin checks the win conditions in priority order and returns the
// first one that holds, or nil while the game goes on.
//
// The order is: an outcome already decided by a lynch, nobody left alive,
// neutral instant wins, village, wolves. Wolf alignment is by team, so the
// traitor counts toward wolf parity while the monster does not.
func EvaluateWin(s *domain.Session) *domain.Outcome {
	if s.Outcome != nil {
		return s.Outcome
	}
	if s.Phase == domain.PhaseLobby {
		return nil
	}

	alive := domain.AlivePlayers(s)
	if len(alive) == 0 {
		return &domain.Outcome{Faction: domain.FactionNone, Reason: "nobody survived"}
	}

	if o := neutralWin(s, alive); o != nil {
		return o
	}

	wolves := domain.CountAliveByTeam(s, domain.TeamWolf)
	village := domain.CountAliveByTeam(s, domain.TeamVillage)
	switch {
	case wolves == 0:
		return teamOutcome(s, domain.FactionVillage, domain.TeamVillage, "all wolves are dead")
	case wolves >= village:
		return teamOutcome(s, domain.FactionWolf, domain.TeamWolf, "wolves reached parity")
	}
	return nil
}

func neutralWin(s *domain.Session, alive []domain.PlayerID) *domain.Outcome {
	for _, id := range alive {
		p := s.Players[id]
		if p.Role != domain.RolePiper {
			continue
		}
		charmed := true
		for _, other := range alive {
			if other != id && !s.Players[other].Has(domain.StatusCharmed) {
				charmed = false
				break
			}
		}
		if charmed {
			return &domain.Outcome{Faction: domain.FactionNeutral, Reason: "everyone is charmed", Winners: []domain.PlayerID{id}}
		}
	}

	if len(alive) == 1 {
		p := s.Players[alive[0]]
		if p.Role == domain.RoleSerialKiller || p.Role == domain.RoleMonster {
			return &domain.Outcome{Faction: domain.FactionNeutral, Reason: string(p.Role) + " is the last one standing", Winners: alive}
		}
	}
	return nil
}

func teamOutcome(s *domain.Session, faction domain.Faction, team domain.Team, reason string) *domain.Outcome {
	var winners []domain.PlayerID
	for _, id := range s.Order {
		if s.Players[id].Team() == team {
			winners = append(winners, id)
		}
	}
	return &domain.Outcome{Faction: faction, Reason: reason, Winners: winners}
}

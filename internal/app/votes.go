package app

import "wolfbot/internal/domain"

// Tally is the weighted result of the day's votes.
type Tally struct {
	Totals   map[domain.PlayerID]int
	Majority int
	// Lynched is NoPlayer when no target is the unique maximum at or above majority.
	Lynched domain.PlayerID
	// Acted holds every eligible voter that has voted or is forced to abstain.
	Acted map[domain.PlayerID]bool
}

// VoteWeight returns how much p's vote counts for.
func VoteWeight(p *domain.Player) int {
	switch {
	case p.Totem == domain.TotemPacifism:
		return 0
	case p.Totem == domain.TotemInfluence, p.Templates.Has(domain.TemplateMayor):
		return 2
	default:
		return 1
	}
}

// TallyVotes computes the weighted totals of the recorded votes. It does not
// modify the session.
func TallyVotes(s *domain.Session) Tally {
	t := Tally{
		Totals:   make(map[domain.PlayerID]int),
		Majority: domain.CountAlive(s)/2 + 1,
		Acted:    make(map[domain.PlayerID]bool),
	}
	alive := domain.AlivePlayers(s)

	for _, id := range alive {
		p := s.Players[id]
		if !p.CanVote() {
			continue
		}
		vote, voted := s.Votes[id]
		switch p.Totem {
		case domain.TotemPacifism:
			t.Acted[id] = true
			continue
		case domain.TotemImpatience:
			t.Acted[id] = true
			for _, other := range alive {
				if other != id {
					t.Totals[other]++
				}
			}
		}
		if !voted {
			continue
		}
		t.Acted[id] = true
		if vote.Abstain || !s.IsAlive(vote.Target) {
			continue
		}
		t.Totals[vote.Target] += VoteWeight(p)
	}

	best, count := 0, 0
	var leader domain.PlayerID
	for target, total := range t.Totals {
		switch {
		case total > best:
			best, count, leader = total, 1, target
		case total == best:
			count++
		}
	}
	if count == 1 && best >= t.Majority {
		t.Lynched = leader
	}
	return t
}

// DayComplete reports whether every eligible voter has voted or abstained.
func DayComplete(s *domain.Session) bool {
	if s.Phase != domain.PhaseDay {
		return false
	}
	t := TallyVotes(s)
	for _, id := range domain.AlivePlayers(s) {
		if s.Players[id].CanVote() && !t.Acted[id] {
			return false
		}
	}
	return true
}

// SubmitVote records voter's vote, replacing any earlier vote today.
func (svc *Service) SubmitVote(s *domain.Session, voterID, targetID domain.PlayerID, abstain bool) ([]Event, error) {
	if s.Phase != domain.PhaseDay || s.Resolved {
		return nil, reject(RejectWrongPhase, "votes are only accepted during the day")
	}
	voter := s.Player(voterID)
	if voter == nil || !voter.Alive {
		return nil, reject(RejectNotPermitted, "player %d is not in the game", voterID)
	}
	if !voter.CanVote() {
		return nil, reject(RejectNotPermitted, "player %d cannot vote today", voterID)
	}
	if !abstain && !s.IsAlive(targetID) {
		return nil, reject(RejectInvalidTarget, "player %d is not a living player", targetID)
	}

	vote := domain.Vote{Target: targetID, Abstain: abstain}
	if abstain {
		vote.Target = domain.NoPlayer
	}
	s.Votes[voterID] = vote
	return []Event{broadcast(EventVoteRecorded, VoteRecordedPayload{
		Voter:   voterID,
		Target:  vote.Target,
		Abstain: abstain,
	})}, nil
}

// DayResult summarizes one resolved day.
type DayResult struct {
	Day      int
	Totals   map[domain.PlayerID]int
	Majority int
	Lynched  domain.PlayerID
	// Spared is set when a revealing totem saved the lynch target.
	Spared bool
	Deaths []Death
}

// ResolveDay resolves the lynch vote and day-end effects, then performs
// day-end cleanup. Calling it again before the next day starts returns
// ErrAlreadyResolved and changes nothing.
func (svc *Service) ResolveDay(s *domain.Session) (DayResult, []Event, error) {
	if s.Phase != domain.PhaseDay {
		return DayResult{}, nil, ErrWrongPhase
	}
	if s.Resolved {
		return DayResult{}, nil, ErrAlreadyResolved
	}

	tally := TallyVotes(s)
	r := svc.newResolution(s)
	result := DayResult{Day: s.DayCount, Totals: tally.Totals, Majority: tally.Majority, Lynched: tally.Lynched}

	if target := s.Player(tally.Lynched); target != nil {
		if target.Totem == domain.TotemRevealing {
			target.Totem = domain.TotemNone
			target.Apply(domain.StatusRevealed, domain.Expiry{})
			result.Spared = true
			r.emit(broadcast(EventRoleRevealed, RoleRevealedPayload{
				Player: target.ID,
				Role:   target.Role,
				Reason: string(domain.TotemRevealing),
			}))
		} else {
			r.kill(target, CauseLynch)
			if target.Role == domain.RoleJester || target.Role == domain.RoleFool {
				s.Outcome = &domain.Outcome{
					Faction: domain.FactionNeutral,
					Reason:  string(target.Role) + " lynched",
					Winners: []domain.PlayerID{target.ID},
				}
			}
		}
	}

	for _, id := range domain.AlivePlayers(s) {
		p := s.Players[id]
		if _, voted := s.Votes[id]; !voted && p.CanVote() && p.Totem == domain.TotemDesperation {
			r.kill(p, CauseDesperation)
		}
	}

	for _, p := range s.Players {
		if info, ok := domain.InfoOf(p.Totem); ok && info.Timing == domain.TimingDay {
			p.Totem = domain.TotemNone
		}
		p.ExpireStatuses(domain.PhaseDay, s.DayCount)
	}
	clear(s.Votes)
	s.Resolved = true

	result.Deaths = r.deaths
	r.emit(broadcast(EventPhaseEnded, PhaseEndedPayload{
		Phase:  domain.PhaseDay,
		Number: s.DayCount,
		Day:    &result,
	}))
	return result, r.events, nil
}

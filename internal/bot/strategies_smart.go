package bot

import (
	"math/rand"
	"sort"

	"wolfbot/internal/app"
	"wolfbot/internal/bot/brain"
	"wolfbot/internal/domain"
)

// SmartBot plays its team's interests using what it has learned: visions,
// reveals, deaths, the pack roster and the voting record.
type SmartBot struct {
	rng    *rand.Rand
	mem    *brain.GameMemory
	tuning Tuning
}

func NewSmartBot(rng *rand.Rand, tuning Tuning) *SmartBot {
	return &SmartBot{rng: rng, mem: brain.NewMemory(tuning.Weights), tuning: tuning}
}

// Memory exposes the bot's view of the game.
func (b *SmartBot) Memory() *brain.GameMemory { return b.mem }

func (b *SmartBot) OnEvent(event app.Event) {
	b.mem.Observe(event)
}

func (b *SmartBot) Night(s *domain.Session, self *domain.Player) (Decision, bool) {
	kinds := nightKinds(s, self)
	if len(kinds) == 0 {
		return Decision{}, false
	}
	// The pack kill matters more than any secondary ability.
	kind := kinds[0]
	targets := ActionTargets(s, self, kind)
	wolf := self.Team() == domain.TeamWolf

	var choice []domain.PlayerID
	switch kind {
	case domain.ActionKill:
		if wolf {
			choice = b.threats(targets)
			break
		}
		choice = b.filter(targets, b.mem.KnownWolf)
		if len(choice) == 0 {
			if id, ok := b.mem.MostSuspicious(targets); ok && b.mem.Suspicion[id] >= b.tuning.KillThreshold {
				choice = []domain.PlayerID{id}
			}
		}
		if len(choice) == 0 {
			return Decision{Kind: domain.ActionPass}, true
		}
	case domain.ActionSee, domain.ActionID, domain.ActionSense, domain.ActionObserve:
		unknown := b.filter(targets, func(id domain.PlayerID) bool { return b.mem.Teams[id] == "" })
		if id, ok := b.mem.MostSuspicious(unknown); ok {
			choice = []domain.PlayerID{id}
		} else {
			choice = unknown
		}
	case domain.ActionGuard, domain.ActionVisit, domain.ActionBless:
		choice = b.filter(targets, func(id domain.PlayerID) bool { return id != self.ID && b.mem.Cleared(id) })
		if len(choice) == 0 {
			choice = b.filter(targets, func(id domain.PlayerID) bool { return b.mem.Suspicion[id] <= 0 })
		}
	case domain.ActionCharm:
		choice = b.filter(targets, func(id domain.PlayerID) bool { return !s.Players[id].Has(domain.StatusCharmed) })
	case domain.ActionCurse, domain.ActionHex, domain.ActionDoom:
		choice = b.threats(b.filter(targets, func(id domain.PlayerID) bool { return !b.mem.KnownWolf(id) }))
	}
	if len(choice) == 0 {
		choice = targets
	}

	d, ok := pick(b.rng, choice, kind)
	if !ok {
		return Decision{Kind: domain.ActionPass}, true
	}
	if kind == domain.ActionMatch {
		return withPartner(b.rng, d, targets)
	}
	return d, true
}

func (b *SmartBot) Day(s *domain.Session, self *domain.Player) (Decision, bool) {
	wolf := self.Team() == domain.TeamWolf
	if self.Bullets > 0 && !wolf {
		targets := ActionTargets(s, self, domain.ActionShoot)
		if known := b.filter(targets, b.mem.KnownWolf); len(known) > 0 {
			return Decision{Kind: domain.ActionShoot, Target: known[0]}, true
		}
		if id, ok := b.mem.MostSuspicious(targets); ok && b.mem.Suspicion[id] >= b.tuning.ShootThreshold {
			return Decision{Kind: domain.ActionShoot, Target: id}, true
		}
	}
	if self.Templates.Has(domain.TemplateMayor) && !self.MayorRevealed && !wolf && s.DayCount >= b.tuning.RevealMayorDay {
		return Decision{Kind: domain.ActionReveal, Target: self.ID}, true
	}
	if self.Templates.Has(domain.TemplateAssassin) && self.AssassinTarget == domain.NoPlayer {
		targets := ActionTargets(s, self, domain.ActionTarget)
		if wolf {
			return pick(b.rng, b.threats(targets), domain.ActionTarget)
		}
		if known := b.filter(targets, b.mem.KnownWolf); len(known) > 0 {
			return Decision{Kind: domain.ActionTarget, Target: known[0]}, true
		}
	}
	return Decision{}, false
}

func (b *SmartBot) Vote(s *domain.Session, self *domain.Player) Decision {
	others := livingOthers(s, self.ID)
	if len(others) == 0 {
		return Decision{Abstain: true}
	}

	switch self.Team() {
	case domain.TeamNeutral:
		if self.Role == domain.RoleJester || self.Role == domain.RoleFool {
			return Decision{Target: self.ID}
		}
		d, _ := pick(b.rng, others, "")
		return d

	case domain.TeamWolf:
		leader, votes := voteLeader(s)
		if votes > 0 && s.IsAlive(leader) && !b.mem.KnownWolf(leader) && leader != self.ID {
			return Decision{Target: leader}
		}
		d, ok := pick(b.rng, b.threats(others), "")
		if !ok {
			return Decision{Abstain: true}
		}
		return d
	}

	if known := b.filter(others, b.mem.KnownWolf); len(known) > 0 {
		return Decision{Target: known[0]}
	}
	leader, votes := voteLeader(s)
	if votes >= b.tuning.BandwagonVotes && leader != self.ID && s.IsAlive(leader) && !b.mem.Cleared(leader) {
		return Decision{Target: leader}
	}
	if id, ok := b.mem.MostSuspicious(others); ok {
		return Decision{Target: id}
	}
	d, ok := pick(b.rng, b.filter(others, func(id domain.PlayerID) bool { return !b.mem.Cleared(id) }), "")
	if !ok {
		return Decision{Abstain: true}
	}
	return d
}

// threats narrows targets to the players a wolf most wants gone: known
// village power roles first, then anyone not on the pack.
func (b *SmartBot) threats(targets []domain.PlayerID) []domain.PlayerID {
	power := b.filter(targets, func(id domain.PlayerID) bool {
		role, ok := b.mem.Roles[id]
		return ok && domain.RoleOf(role).Team == domain.TeamVillage && domain.RoleOf(role).Power
	})
	if len(power) > 0 {
		return power
	}
	return b.filter(targets, func(id domain.PlayerID) bool { return !b.mem.KnownWolf(id) })
}

func (b *SmartBot) filter(ids []domain.PlayerID, keep func(domain.PlayerID) bool) []domain.PlayerID {
	var out []domain.PlayerID
	for _, id := range ids {
		if keep(id) {
			out = append(out, id)
		}
	}
	return out
}

// voteLeader returns the player with the most recorded votes so far today,
// the lowest id winning ties.
func voteLeader(s *domain.Session) (domain.PlayerID, int) {
	counts := make(map[domain.PlayerID]int)
	for _, v := range s.Votes {
		if !v.Abstain {
			counts[v.Target]++
		}
	}
	ids := domain.SortedIDs(counts)
	sort.SliceStable(ids, func(i, j int) bool { return counts[ids[i]] > counts[ids[j]] })
	if len(ids) == 0 {
		return domain.NoPlayer, 0
	}
	return ids[0], counts[ids[0]]
}

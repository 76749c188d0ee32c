package bot

import (
	"math/rand"
	"strconv"

	"wolfbot/internal/app"
	"wolfbot/internal/domain"
)

// RandomBot picks uniformly among legal choices.
type RandomBot struct {
	rng *rand.Rand
}

func NewRandomBot(rng *rand.Rand) *RandomBot {
	return &RandomBot{rng: rng}
}

func (b *RandomBot) Night(s *domain.Session, self *domain.Player) (Decision, bool) {
	kinds := nightKinds(s, self)
	if len(kinds) == 0 {
		return Decision{}, false
	}
	kind := kinds[b.rng.Intn(len(kinds))]
	return randomNight(b.rng, s, self, kind)
}

func (b *RandomBot) Day(s *domain.Session, self *domain.Player) (Decision, bool) {
	switch {
	case self.Bullets > 0 && b.rng.Float64() < 0.15:
		return pick(b.rng, ActionTargets(s, self, domain.ActionShoot), domain.ActionShoot)
	case self.Templates.Has(domain.TemplateMayor) && !self.MayorRevealed && b.rng.Float64() < 0.25:
		return Decision{Kind: domain.ActionReveal, Target: self.ID}, true
	case self.Templates.Has(domain.TemplateAssassin) && self.AssassinTarget == domain.NoPlayer:
		return pick(b.rng, ActionTargets(s, self, domain.ActionTarget), domain.ActionTarget)
	}
	return Decision{}, false
}

func (b *RandomBot) Vote(s *domain.Session, self *domain.Player) Decision {
	d, ok := pick(b.rng, livingOthers(s, self.ID), "")
	if !ok {
		return Decision{Abstain: true}
	}
	return d
}

func (b *RandomBot) OnEvent(app.Event) {}

// nightKinds lists the night actions self may submit right now.
func nightKinds(s *domain.Session, self *domain.Player) []domain.ActionKind {
	role := domain.RoleOf(self.Role)
	if role.FirstNightOnly && s.NightNumber() > 1 {
		return nil
	}
	var out []domain.ActionKind
	for _, k := range role.Night {
		if self.UsesLeft(k) != 0 {
			out = append(out, k)
		}
	}
	return out
}

// ActionTargets lists the players self may legally target with kind.
func ActionTargets(s *domain.Session, self *domain.Player, kind domain.ActionKind) []domain.PlayerID {
	role := domain.RoleOf(self.Role)
	var out []domain.PlayerID
	for _, id := range domain.AlivePlayers(s) {
		if id == self.ID && (!role.AllowSelf || kind == domain.ActionShoot || kind == domain.ActionTarget) {
			continue
		}
		if kind == domain.ActionKill && role.Pack && s.Players[id].Team() == domain.TeamWolf {
			continue
		}
		if kind == domain.ActionGuard && role.NoRepeatGuard && self.GuardedLastNight(s, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func randomNight(rng *rand.Rand, s *domain.Session, self *domain.Player, kind domain.ActionKind) (Decision, bool) {
	targets := ActionTargets(s, self, kind)
	d, ok := pick(rng, targets, kind)
	if !ok {
		return Decision{Kind: domain.ActionPass}, true
	}
	if kind == domain.ActionMatch {
		return withPartner(rng, d, targets)
	}
	return d, true
}

// withPartner completes a matchmaker decision with a second lover.
func withPartner(rng *rand.Rand, d Decision, targets []domain.PlayerID) (Decision, bool) {
	partners := without(targets, d.Target)
	if len(partners) == 0 {
		return Decision{Kind: domain.ActionPass}, true
	}
	partner := partners[rng.Intn(len(partners))]
	d.Payload = map[string]string{app.PayloadPartner: strconv.FormatInt(int64(partner), 10)}
	return d, true
}

func pick(rng *rand.Rand, ids []domain.PlayerID, kind domain.ActionKind) (Decision, bool) {
	if len(ids) == 0 {
		return Decision{}, false
	}
	return Decision{Kind: kind, Target: ids[rng.Intn(len(ids))]}, true
}

func livingOthers(s *domain.Session, self domain.PlayerID) []domain.PlayerID {
	return without(domain.AlivePlayers(s), self)
}

func without(ids []domain.PlayerID, drop domain.PlayerID) []domain.PlayerID {
	out := make([]domain.PlayerID, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

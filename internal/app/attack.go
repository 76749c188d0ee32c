package app

import "wolfbot/internal/domain"

// attack describes one lethal attempt against a player.
type attack struct {
	cause DeathCause
	// wolves is set for the pack kill; lycanthropy, retribution and
	// pestilence only react to it.
	wolves    bool
	attackers []domain.PlayerID
}

// PassiveActor is a role that can avoid an attack without spending a defence.
type PassiveActor interface {
	Evades(r *resolution, holder *domain.Player, a attack) bool
}

type monsterPassive struct{}

// Wolves cannot kill the monster.
func (monsterPassive) Evades(_ *resolution, _ *domain.Player, a attack) bool {
	return a.wolves
}

type harlotPassive struct{}

// A visiting harlot is not home when the wolves come.
func (harlotPassive) Evades(_ *resolution, holder *domain.Player, a attack) bool {
	return a.wolves && holder.Visiting != domain.NoPlayer
}

var passiveActors = map[domain.RoleName]PassiveActor{
	domain.RoleMonster: monsterPassive{},
	domain.RoleHarlot:  harlotPassive{},
}

// attack applies the defence stack to target and reports whether it died.
// Defences are consulted in order: blessed charge, protection totem, guard,
// then for wolf attacks lycanthropy and retribution.
func (r *resolution) attack(target *domain.Player, a attack) bool {
	if target == nil || !target.Alive {
		return false
	}
	if passive, ok := passiveActors[target.Role]; ok && passive.Evades(r, target, a) {
		return false
	}

	switch {
	case target.BlessCharges > 0:
		target.BlessCharges--
		if target.BlessCharges == 0 {
			target.Templates = target.Templates.Without(domain.TemplateBlessed)
		}
		return false
	case target.Totem == domain.TotemProtection:
		target.Totem = domain.TotemNone
		return false
	case target.Has(domain.StatusProtected):
		target.Clear(domain.StatusProtected)
		if guard := r.s.Player(r.guards[target.ID]); guard != nil && guard.Role == domain.RoleBodyguard {
			r.kill(guard, CauseGuarding)
		}
		delete(r.guards, target.ID)
		return false
	case a.wolves && target.Totem == domain.TotemLycanthropy:
		target.Totem = domain.TotemNone
		target.Role = domain.RoleWolf
		r.emit(private(EventRoleAssigned, RoleAssignedPayload{
			Player:    target.ID,
			Role:      target.Role,
			Templates: target.Templates.Names(),
			Teammates: r.packMembers(target.ID),
		}, target.ID))
		return false
	}

	if a.wolves {
		switch target.Totem {
		case domain.TotemRetribution:
			if len(a.attackers) > 0 {
				avenged := a.attackers[r.svc.rng.Intn(len(a.attackers))]
				r.kill(r.s.Player(avenged), CauseRetribution)
			}
		case domain.TotemPestilence:
			r.s.WolvesSickNight = r.s.NightNumber() + 1
		}
	}
	r.kill(target, a.cause)
	return true
}

// packMembers lists the living wolf-team players other than self.
func (r *resolution) packMembers(self domain.PlayerID) []domain.PlayerID {
	var out []domain.PlayerID
	for _, id := range domain.AlivePlayers(r.s) {
		if id != self && r.s.Players[id].Team() == domain.TeamWolf {
			out = append(out, id)
		}
	}
	return out
}

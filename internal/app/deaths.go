package app

import "wolfbot/internal/domain"

// resolution accumulates the deaths and events of one resolution pass.
type resolution struct {
	svc    *Service
	s      *domain.Session
	deaths []Death
	events []Event

	// guards maps a protected player to the guard protecting them tonight.
	guards map[domain.PlayerID]domain.PlayerID
}

func (svc *Service) newResolution(s *domain.Session) *resolution {
	return &resolution{
		svc:    svc,
		s:      s,
		guards: make(map[domain.PlayerID]domain.PlayerID),
	}
}

func (r *resolution) emit(evs ...Event) {
	r.events = append(r.events, evs...)
}

// kill marks p dead and follows the death chain: a lover dies of heartbreak,
// an assassin takes their target along and a hag's hex swaps roles.
func (r *resolution) kill(p *domain.Player, cause DeathCause) {
	if p == nil || !p.Alive {
		return
	}
	p.Alive = false
	p.Totem = domain.TotemNone

	d := Death{Victim: p.ID, Cause: cause}
	if r.svc.revealRoles && !r.s.Mode.HidesRoles() {
		d.Role = p.Role
	}
	r.deaths = append(r.deaths, d)
	r.emit(broadcast(EventDeathReported, d))

	r.triggerHexes(p)
	r.dropEffects(func(e domain.DelayedEffect) bool { return e.Target == p.ID })

	if p.Lover != domain.NoPlayer {
		r.kill(r.s.Player(p.Lover), CauseHeartbreak)
	}
	if p.Templates.Has(domain.TemplateAssassin) && p.AssassinTarget != domain.NoPlayer {
		r.kill(r.s.Player(p.AssassinTarget), CauseAssassin)
	}
}

// triggerHexes swaps roles between a dead hexer and each living hex target.
func (r *resolution) triggerHexes(hexer *domain.Player) {
	var due []domain.DelayedEffect
	r.dropEffects(func(e domain.DelayedEffect) bool {
		if e.Kind == domain.DelayedHex && e.Source == hexer.ID {
			due = append(due, e)
			return true
		}
		return false
	})
	for _, e := range due {
		target := r.s.Player(e.Target)
		if target == nil || !target.Alive {
			continue
		}
		hexer.Role, target.Role = target.Role, hexer.Role
		r.emit(private(EventRoleAssigned, RoleAssignedPayload{
			Player:    target.ID,
			Role:      target.Role,
			Templates: target.Templates.Names(),
		}, target.ID))
	}
}

// dropEffects removes every pending effect matching drop.
func (r *resolution) dropEffects(drop func(domain.DelayedEffect) bool) {
	kept := make([]domain.DelayedEffect, 0, len(r.s.Delayed))
	for _, e := range r.s.Delayed {
		if !drop(e) {
			kept = append(kept, e)
		}
	}
	r.s.Delayed = kept
}

// fireDue removes the pending effects matching due and kills their targets.
func (r *resolution) fireDue(due func(domain.DelayedEffect) bool, cause DeathCause) {
	var fired []domain.DelayedEffect
	r.dropEffects(func(e domain.DelayedEffect) bool {
		if due(e) {
			fired = append(fired, e)
			return true
		}
		return false
	})
	for _, e := range fired {
		r.kill(r.s.Player(e.Target), cause)
	}
}

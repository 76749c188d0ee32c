package app

import "wolfbot/internal/domain"

// DayActor resolves one kind of day action immediately on submission.
type DayActor interface {
	// Check returns a rejection without touching the session.
	Check(s *domain.Session, actor *domain.Player, target *domain.Player) error
	Resolve(r *resolution, actor *domain.Player, target *domain.Player)
}

var dayActors = map[domain.ActionKind]DayActor{
	domain.ActionShoot:  shootActor{},
	domain.ActionReveal: revealActor{},
	domain.ActionTarget: assassinActor{},
}

// SubmitDayAction performs a template ability during the day.
func (svc *Service) SubmitDayAction(s *domain.Session, actorID domain.PlayerID, kind domain.ActionKind, targetID domain.PlayerID) ([]Event, error) {
	if s.Phase != domain.PhaseDay || s.Resolved {
		return nil, reject(RejectWrongPhase, "day actions are only accepted during the day")
	}
	actor := s.Player(actorID)
	if actor == nil || !actor.Alive {
		return nil, reject(RejectNotPermitted, "player %d is not in the game", actorID)
	}
	if actor.Has(domain.StatusSilenced) {
		return nil, reject(RejectNotPermitted, "player %d is silenced", actorID)
	}

	handler, ok := dayActors[kind]
	if !ok || !grants(actor, kind) {
		return nil, reject(RejectNotPermitted, "player %d cannot %s", actorID, kind)
	}
	target := s.Player(targetID)
	if err := handler.Check(s, actor, target); err != nil {
		return nil, err
	}

	r := svc.newResolution(s)
	handler.Resolve(r, actor, target)
	return r.events, nil
}

func grants(p *domain.Player, kind domain.ActionKind) bool {
	for _, k := range domain.DayActions(p) {
		if k == kind {
			return true
		}
	}
	return false
}

func livingOther(actor, target *domain.Player) error {
	if target == nil || !target.Alive {
		return reject(RejectInvalidTarget, "target is not a living player")
	}
	if target.ID == actor.ID {
		return reject(RejectInvalidTarget, "cannot target yourself")
	}
	return nil
}

// shootActor fires one bullet. Sharpshooters never miss.
type shootActor struct{}

func (shootActor) Check(_ *domain.Session, actor, target *domain.Player) error {
	if actor.Bullets <= 0 {
		return reject(RejectAlreadyActed, "no bullets left")
	}
	return livingOther(actor, target)
}

func (shootActor) Resolve(r *resolution, actor, target *domain.Player) {
	actor.Bullets--
	hit := actor.Templates.Has(domain.TemplateSharpshooter) || r.svc.rng.Float64() < GunnerHitChance
	r.emit(broadcast(EventShotFired, ShotFiredPayload{Shooter: actor.ID, Target: target.ID, Hit: hit}))
	if hit {
		r.attack(target, attack{cause: CauseShot, attackers: []domain.PlayerID{actor.ID}})
	}
}

// revealActor discloses the mayor.
type revealActor struct{}

func (revealActor) Check(_ *domain.Session, actor, _ *domain.Player) error {
	if actor.MayorRevealed {
		return reject(RejectAlreadyActed, "already revealed")
	}
	return nil
}

func (revealActor) Resolve(r *resolution, actor, _ *domain.Player) {
	actor.MayorRevealed = true
	actor.Apply(domain.StatusRevealed, domain.Expiry{})
	r.emit(broadcast(EventRoleRevealed, RoleRevealedPayload{
		Player:   actor.ID,
		Template: domain.TemplateMayor.String(),
		Reason:   string(domain.ActionReveal),
	}))
}

// assassinActor picks the player who dies with the assassin.
type assassinActor struct{}

func (assassinActor) Check(_ *domain.Session, actor, target *domain.Player) error {
	if actor.AssassinTarget != domain.NoPlayer {
		return reject(RejectAlreadyActed, "target already chosen")
	}
	return livingOther(actor, target)
}

func (assassinActor) Resolve(r *resolution, actor, target *domain.Player) {
	actor.AssassinTarget = target.ID
	r.emit(private(EventActionResolved, ActionResolvedPayload{
		Actor:  actor.ID,
		Kind:   domain.ActionTarget,
		Target: target.ID,
	}, actor.ID))
}

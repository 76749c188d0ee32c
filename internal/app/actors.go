package app

import (
	"fmt"
	"strconv"

	"wolfbot/internal/domain"
)

// NightStep is a slot in the fixed night resolution order.
type NightStep int

const (
	StepNone NightStep = iota
	StepGive
	StepProtect
	StepKill
	StepInform
	StepDelay
)

// NightActor resolves one kind of night action. Resolve returns an error for a
// failure isolated to this actor.
type NightActor interface {
	Step() NightStep
	Resolve(r *nightRun, actor *domain.Player, act domain.NightAction) error
}

var nightActors = map[domain.ActionKind]NightActor{
	domain.ActionGive:    giveActor{},
	domain.ActionGuard:   guardActor{},
	domain.ActionVisit:   visitActor{},
	domain.ActionKill:    killActor{},
	domain.ActionSee:     seeActor{},
	domain.ActionID:      detectiveActor{},
	domain.ActionSense:   senseActor{},
	domain.ActionObserve: observeActor{},
	domain.ActionCharm:   charmActor{},
	domain.ActionBless:   blessActor{},
	domain.ActionMatch:   matchActor{},
	domain.ActionCurse:   delayActor{kind: domain.DelayedCurse},
	domain.ActionDoom:    delayActor{kind: domain.DelayedDoom},
	domain.ActionHex:     delayActor{kind: domain.DelayedHex},
	domain.ActionPass:    passActor{},
}

func targetOf(r *nightRun, act domain.NightAction) (*domain.Player, error) {
	p := r.s.Player(act.Target)
	if p == nil {
		return nil, reject(RejectInvalidTarget, "player %d does not exist", act.Target)
	}
	return p, nil
}

type passActor struct{}

func (passActor) Step() NightStep { return StepNone }

func (passActor) Resolve(*nightRun, *domain.Player, domain.NightAction) error { return nil }

// giveActor hands the actor's drawn totem to the target.
type giveActor struct{}

func (giveActor) Step() NightStep { return StepGive }

func (giveActor) Resolve(r *nightRun, actor *domain.Player, act domain.NightAction) error {
	target, err := targetOf(r, act)
	if err != nil {
		return err
	}
	totem, _, err := r.svc.totems.Draw(r.s, actor)
	if err != nil {
		return err
	}
	target.Totem = totem
	r.emit(private(EventTotemReceived, TotemReceivedPayload{Target: target.ID, Totem: totem}, target.ID))
	return nil
}

type guardActor struct{}

func (guardActor) Step() NightStep { return StepProtect }

func (guardActor) Resolve(r *nightRun, actor *domain.Player, act domain.NightAction) error {
	target, err := targetOf(r, act)
	if err != nil {
		return err
	}
	target.Apply(domain.StatusProtected, domain.EndOfNight(r.night))
	r.guards[target.ID] = actor.ID
	actor.LastGuarded = act.Target
	actor.GuardedNight = r.night
	return nil
}

// visitActor spends the night at the target's house. Visiting a pack wolf is fatal.
type visitActor struct{}

func (visitActor) Step() NightStep { return StepProtect }

func (visitActor) Resolve(r *nightRun, actor *domain.Player, act domain.NightAction) error {
	target, err := targetOf(r, act)
	if err != nil {
		return err
	}
	actor.Visiting = target.ID
	if domain.RoleOf(target.Role).Pack {
		r.kill(actor, CauseWolves)
	}
	return nil
}

// killActor resolves the kills of roles outside the pack. Pack kills are
// tallied together by packKill.
type killActor struct{}

func (killActor) Step() NightStep { return StepKill }

func (killActor) Resolve(r *nightRun, actor *domain.Player, act domain.NightAction) error {
	if domain.RoleOf(actor.Role).Pack {
		return nil
	}
	target, err := targetOf(r, act)
	if err != nil {
		return err
	}
	r.attack(target, attack{cause: CauseKiller, attackers: []domain.PlayerID{actor.ID}})
	return nil
}

// seeActor answers according to the role's vision. Deceit on the target
// inverts the answer.
type seeActor struct{}

func (seeActor) Step() NightStep { return StepInform }

func (seeActor) Resolve(r *nightRun, actor *domain.Player, act domain.NightAction) error {
	target, err := targetOf(r, act)
	if err != nil {
		return err
	}
	deceit := target.Totem == domain.TotemDeceit
	res := InvestigationResultPayload{Actor: actor.ID, Target: target.ID, Kind: act.Kind}

	switch domain.RoleOf(actor.Role).Vision {
	case domain.VisionRole:
		res.Role = domain.ApparentRole(target)
		if deceit {
			if domain.LooksLikeWolf(target) {
				res.Role = domain.RoleVillager
			} else {
				res.Role = domain.RoleWolf
			}
		}
	case domain.VisionTeam:
		res.Team = domain.RoleOf(domain.ApparentRole(target)).Team
		if deceit {
			switch res.Team {
			case domain.TeamVillage:
				res.Team = domain.TeamWolf
			case domain.TeamWolf:
				res.Team = domain.TeamVillage
			}
		}
	case domain.VisionKiller:
		res.Answer = domain.RoleOf(target.Role).CanKill != deceit
	case domain.VisionSeerType:
		res.Answer = domain.IsSeerType(target.Role) != deceit
	default:
		return fmt.Errorf("%s has no vision", actor.Role)
	}

	r.emit(private(EventInvestigationResult, res, actor.ID))
	return nil
}

// detectiveActor compares the target's role with every earlier investigation
// and names the first player it matches. Only the first investigation names a role.
type detectiveActor struct{}

func (detectiveActor) Step() NightStep { return StepInform }

func (detectiveActor) Resolve(r *nightRun, actor *domain.Player, act domain.NightAction) error {
	target, err := targetOf(r, act)
	if err != nil {
		return err
	}
	deceit := target.Totem == domain.TotemDeceit
	res := InvestigationResultPayload{Actor: actor.ID, Target: target.ID, Kind: act.Kind}

	if n := len(actor.Investigations); n == 0 {
		res.Role = target.Role
		if deceit {
			if target.Team() == domain.TeamWolf {
				res.Role = domain.RoleVillager
			} else {
				res.Role = domain.RoleWolf
			}
		}
	} else {
		match := domain.NoPlayer
		for _, prev := range actor.Investigations {
			if prev.Role == target.Role {
				match = prev.Target
				break
			}
		}
		res.Answer = (match != domain.NoPlayer) != deceit
		switch {
		case res.Answer && match != domain.NoPlayer:
			res.Matches = match
		case res.Answer:
			// Deceit fakes a match with the latest investigation.
			res.Matches = actor.Investigations[n-1].Target
		}
	}
	actor.Investigations = append(actor.Investigations, domain.Investigation{Target: target.ID, Role: target.Role})

	r.emit(private(EventInvestigationResult, res, actor.ID))
	return nil
}

// senseActor tells mystics whether the target holds a power role.
type senseActor struct{}

func (senseActor) Step() NightStep { return StepInform }

func (senseActor) Resolve(r *nightRun, actor *domain.Player, act domain.NightAction) error {
	target, err := targetOf(r, act)
	if err != nil {
		return err
	}
	deceit := target.Totem == domain.TotemDeceit
	r.emit(private(EventInvestigationResult, InvestigationResultPayload{
		Actor:  actor.ID,
		Target: target.ID,
		Kind:   act.Kind,
		Answer: domain.RoleOf(target.Role).Power != deceit,
	}, actor.ID))
	return nil
}

// observeActor tells the werecrow who visited the target tonight.
type observeActor struct{}

func (observeActor) Step() NightStep { return StepInform }

func (observeActor) Resolve(r *nightRun, actor *domain.Player, act domain.NightAction) error {
	target, err := targetOf(r, act)
	if err != nil {
		return err
	}
	var seen []domain.PlayerID
	for _, id := range r.visitors[target.ID] {
		if id != actor.ID {
			seen = append(seen, id)
		}
	}
	r.emit(private(EventInvestigationResult, InvestigationResultPayload{
		Actor:    actor.ID,
		Target:   target.ID,
		Kind:     act.Kind,
		Answer:   len(seen) > 0,
		Visitors: seen,
	}, actor.ID))
	return nil
}

type charmActor struct{}

func (charmActor) Step() NightStep { return StepInform }

func (charmActor) Resolve(r *nightRun, actor *domain.Player, act domain.NightAction) error {
	target, err := targetOf(r, act)
	if err != nil {
		return err
	}
	target.Apply(domain.StatusCharmed, domain.Expiry{})
	r.emit(private(EventActionResolved, ActionResolvedPayload{Actor: actor.ID, Kind: act.Kind, Target: target.ID}, actor.ID))
	return nil
}

type blessActor struct{}

func (blessActor) Step() NightStep { return StepInform }

func (blessActor) Resolve(r *nightRun, actor *domain.Player, act domain.NightAction) error {
	target, err := targetOf(r, act)
	if err != nil {
		return err
	}
	target.AddTemplate(domain.TemplateBlessed)
	r.emit(private(EventActionResolved, ActionResolvedPayload{Actor: actor.ID, Kind: act.Kind, Target: target.ID}, actor.ID, target.ID))
	return nil
}

// PayloadPartner is the night action payload key naming the second lover.
const PayloadPartner = "with"

// matchActor pairs the target with the player named in the payload.
type matchActor struct{}

func (matchActor) Step() NightStep { return StepInform }

func (matchActor) Resolve(r *nightRun, actor *domain.Player, act domain.NightAction) error {
	first, err := targetOf(r, act)
	if err != nil {
		return err
	}
	raw, ok := act.Payload[PayloadPartner]
	if !ok {
		return fmt.Errorf("match: missing %q payload", PayloadPartner)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("match: malformed partner %q: %w", raw, err)
	}
	second := r.s.Player(domain.PlayerID(id))
	if second == nil || !second.Alive || second.ID == first.ID || !first.Alive {
		return reject(RejectInvalidTarget, "cannot match %d with %d", first.ID, id)
	}

	first.Lover = second.ID
	second.Lover = first.ID
	payload := ActionResolvedPayload{Actor: actor.ID, Kind: act.Kind, Target: first.ID, Other: second.ID}
	r.emit(private(EventActionResolved, payload, actor.ID, first.ID, second.ID))
	return nil
}

// delayActor registers a curse, doom or hex for a later phase.
type delayActor struct {
	kind domain.DelayedKind
}

func (delayActor) Step() NightStep { return StepDelay }

func (d delayActor) Resolve(r *nightRun, actor *domain.Player, act domain.NightAction) error {
	target, err := targetOf(r, act)
	if err != nil {
		return err
	}
	effect := domain.DelayedEffect{Kind: d.kind, Source: actor.ID, Target: target.ID}
	switch d.kind {
	case domain.DelayedCurse:
		effect.TriggerNight = r.night + 2
	case domain.DelayedDoom:
		effect.TriggerDay = r.s.DayCount + 1
	case domain.DelayedHex:
		r.dropEffects(func(e domain.DelayedEffect) bool {
			return e.Kind == domain.DelayedHex && e.Source == actor.ID
		})
	}
	r.s.Delayed = append(r.s.Delayed, effect)
	r.emit(private(EventActionResolved, ActionResolvedPayload{Actor: actor.ID, Kind: act.Kind, Target: target.ID}, actor.ID))
	return nil
}

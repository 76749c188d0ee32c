package app

import (
	"fmt"
	"sort"

	"wolfbot/internal/domain"
)

// Failure is one night action that could not be resolved. Other actions
// resolve regardless.
type Failure struct {
	Actor domain.PlayerID
	Kind  domain.ActionKind
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("player %d %s: %v", f.Actor, f.Kind, f.Err)
}

// NightResult summarizes one resolved night.
type NightResult struct {
	Night    int
	Deaths   []Death
	Failures []Failure
}

// SubmitNightAction records the actor's action for the current night,
// replacing any earlier one. A give draws the actor's totem on first use.
func (svc *Service) SubmitNightAction(s *domain.Session, actorID domain.PlayerID, kind domain.ActionKind, targetID domain.PlayerID, payload map[string]string) ([]Event, error) {
	if s.Phase != domain.PhaseNight || s.Resolved {
		return nil, reject(RejectWrongPhase, "night actions are only accepted at night")
	}
	actor := s.Player(actorID)
	if actor == nil || !actor.Alive {
		return nil, reject(RejectNotPermitted, "player %d is not in the game", actorID)
	}
	if actor.Has(domain.StatusSilenced) {
		return nil, reject(RejectNotPermitted, "player %d is silenced", actorID)
	}

	role := domain.RoleOf(actor.Role)
	if !role.Acts(kind) {
		return nil, reject(RejectNotPermitted, "%s cannot %s", actor.Role, kind)
	}
	if role.FirstNightOnly && s.NightNumber() > 1 {
		return nil, reject(RejectNotPermitted, "%s only acts on the first night", actor.Role)
	}
	if actor.UsesLeft(kind) == 0 {
		return nil, reject(RejectAlreadyActed, "%s has no %s left", actor.Role, kind)
	}

	if kind == domain.ActionPass {
		s.NightActions[actorID] = domain.NightAction{Kind: kind}
		return []Event{private(EventActionRecorded, ActionRecordedPayload{Actor: actorID, Kind: kind}, actorID)}, nil
	}

	target := s.Player(targetID)
	if target == nil || !target.Alive {
		return nil, reject(RejectInvalidTarget, "player %d is not a living player", targetID)
	}
	if targetID == actorID && !role.AllowSelf {
		return nil, reject(RejectInvalidTarget, "%s cannot target themselves", actor.Role)
	}
	if kind == domain.ActionGuard && role.NoRepeatGuard && actor.GuardedLastNight(s, targetID) {
		return nil, reject(RejectInvalidTarget, "player %d was guarded last night", targetID)
	}
	if kind == domain.ActionKill && role.Pack && target.Team() == domain.TeamWolf {
		return nil, reject(RejectInvalidTarget, "the pack cannot attack wolf-team player %d", targetID)
	}

	events := make([]Event, 0, 2)
	if kind == domain.ActionGive {
		totem, drawn, err := svc.totems.Draw(s, actor)
		if err != nil {
			return nil, err
		}
		if drawn && !role.HideTotem {
			events = append(events, private(EventTotemDrawn, TotemDrawnPayload{Actor: actorID, Totem: totem}, actorID))
		}
	}

	s.NightActions[actorID] = domain.NightAction{Kind: kind, Target: targetID, Payload: payload}
	events = append(events, private(EventActionRecorded, ActionRecordedPayload{Actor: actorID, Kind: kind, Target: targetID}, actorID))
	return events, nil
}

// NightComplete reports whether every living player with a usable night
// ability has submitted an action.
func NightComplete(s *domain.Session) bool {
	if s.Phase != domain.PhaseNight {
		return false
	}
	for _, id := range domain.AlivePlayers(s) {
		p := s.Players[id]
		if _, ok := s.NightActions[id]; ok {
			continue
		}
		if hasPendingAbility(s, p) {
			return false
		}
	}
	return true
}

func hasPendingAbility(s *domain.Session, p *domain.Player) bool {
	role := domain.RoleOf(p.Role)
	if len(role.Night) == 0 || p.Has(domain.StatusSilenced) {
		return false
	}
	if role.FirstNightOnly && s.NightNumber() > 1 {
		return false
	}
	for _, kind := range role.Night {
		if p.UsesLeft(kind) != 0 {
			return true
		}
	}
	return false
}

// nightRun is the state of one night resolution pass.
type nightRun struct {
	*resolution
	night    int
	actions  map[domain.PlayerID]domain.NightAction
	visitors map[domain.PlayerID][]domain.PlayerID
	failures []Failure
}

// ResolveNight resolves the queued night actions in their fixed order and
// performs end-of-night cleanup. Calling it again before the next night
// starts returns ErrAlreadyResolved and changes nothing.
func (svc *Service) ResolveNight(s *domain.Session) (NightResult, []Event, error) {
	if s.Phase != domain.PhaseNight {
		return NightResult{}, nil, ErrWrongPhase
	}
	if s.Resolved {
		return NightResult{}, nil, ErrAlreadyResolved
	}

	r := &nightRun{
		resolution: svc.newResolution(s),
		night:      s.NightNumber(),
		actions:    make(map[domain.PlayerID]domain.NightAction, len(s.NightActions)),
		visitors:   make(map[domain.PlayerID][]domain.PlayerID),
	}
	for id, act := range s.NightActions {
		r.actions[id] = act
	}

	r.runStep(StepGive)
	r.applyImmediateTotems()
	r.redirect()
	r.recordVisitors()
	r.runStep(StepProtect)
	r.packKill()
	r.runStep(StepKill)
	r.runStep(StepInform)
	r.runStep(StepDelay)
	r.fireDue(func(e domain.DelayedEffect) bool {
		return e.Kind == domain.DelayedCurse && e.TriggerNight <= r.night
	}, CauseCurse)
	r.cleanup()

	result := NightResult{Night: r.night, Deaths: r.deaths, Failures: r.failures}
	r.emit(broadcast(EventPhaseEnded, PhaseEndedPayload{
		Phase:  domain.PhaseNight,
		Number: r.night,
		Night:  &result,
	}))
	return result, r.events, nil
}

// runStep resolves, in seating order, every living actor whose action belongs to step.
func (r *nightRun) runStep(step NightStep) {
	for _, id := range r.s.Order {
		act, ok := r.actions[id]
		if !ok {
			continue
		}
		actor := r.s.Players[id]
		if actor == nil || !actor.Alive {
			continue
		}
		handler, ok := nightActors[act.Kind]
		if !ok {
			if step == StepGive {
				r.fail(id, act.Kind, fmt.Errorf("no resolver for %q", act.Kind))
			}
			continue
		}
		if handler.Step() != step {
			continue
		}
		if actor.UsesLeft(act.Kind) == 0 {
			r.fail(id, act.Kind, ErrAlreadyActed)
			continue
		}
		if err := r.safely(handler, actor, act); err != nil {
			r.fail(id, act.Kind, err)
			continue
		}
		if domain.RoleOf(actor.Role).Limit(act.Kind) > 0 {
			actor.Uses[act.Kind]++
		}
	}
}

// safely runs one actor, converting a panic into a failure.
func (r *nightRun) safely(handler NightActor, actor *domain.Player, act domain.NightAction) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("resolver panic: %v", rec)
		}
	}()
	return handler.Resolve(r, actor, act)
}

func (r *nightRun) fail(actor domain.PlayerID, kind domain.ActionKind, err error) {
	r.failures = append(r.failures, Failure{Actor: actor, Kind: kind, Err: err})
}

// applyImmediateTotems fires and consumes every totem that acts on assignment.
func (r *nightRun) applyImmediateTotems() {
	for _, id := range r.s.Order {
		p := r.s.Players[id]
		info, ok := domain.InfoOf(p.Totem)
		if !p.Alive || !ok || info.Timing != domain.TimingImmediate {
			continue
		}
		p.Totem = domain.TotemNone
		switch info.Name {
		case domain.TotemDeath:
			r.kill(p, CauseTotem)
		case domain.TotemCursed:
			if !p.Templates.Has(domain.TemplateCursed) {
				p.AddTemplate(domain.TemplateCursed)
			}
		case domain.TotemBlinding:
			p.Apply(domain.StatusInjured, domain.EndOfDay(r.s.DayCount+1))
		case domain.TotemSilence:
			p.Apply(domain.StatusSilenced, domain.EndOfNight(r.night+1))
		}
	}
}

// redirect moves targeted actions of misdirection holders, and actions aimed
// at luck holders, onto a random living neighbour of the intended target.
func (r *nightRun) redirect() {
	for _, id := range r.s.Order {
		act, ok := r.actions[id]
		if !ok || act.Target == domain.NoPlayer || act.Kind == domain.ActionGive || act.Kind == domain.ActionPass {
			continue
		}
		actor := r.s.Players[id]
		target := r.s.Player(act.Target)
		if !actor.Alive || target == nil {
			continue
		}
		misdirected := actor.Totem == domain.TotemMisdirection
		lucky := act.Target != id && target.Totem == domain.TotemLuck
		if !misdirected && !lucky {
			continue
		}
		if near := domain.Neighbors(r.s, act.Target, id); len(near) > 0 {
			act.Target = near[r.svc.rng.Intn(len(near))]
			r.actions[id] = act
		}
	}
}

func (r *nightRun) recordVisitors() {
	for _, id := range r.s.Order {
		act, ok := r.actions[id]
		if !ok || act.Target == domain.NoPlayer || act.Target == id {
			continue
		}
		r.visitors[act.Target] = append(r.visitors[act.Target], id)
	}
}

// packKill resolves the shared wolf kill: the plurality target among living
// pack members, ties broken at random.
func (r *nightRun) packKill() {
	if r.s.WolvesSickNight == r.night {
		return
	}

	tally := make(map[domain.PlayerID]int)
	var attackers []domain.PlayerID
	for _, id := range r.s.Order {
		act, ok := r.actions[id]
		p := r.s.Players[id]
		if !ok || act.Kind != domain.ActionKill || !p.Alive || !domain.RoleOf(p.Role).Pack {
			continue
		}
		// Votes for players who already died tonight fall away.
		if t := r.s.Player(act.Target); t == nil || !t.Alive {
			continue
		}
		tally[act.Target]++
		attackers = append(attackers, id)
	}
	if len(tally) == 0 {
		return
	}

	best := 0
	var tied []domain.PlayerID
	for target, n := range tally {
		switch {
		case n > best:
			best = n
			tied = []domain.PlayerID{target}
		case n == best:
			tied = append(tied, target)
		}
	}
	sort.Slice(tied, func(i, j int) bool { return tied[i] < tied[j] })
	victim := r.s.Player(tied[r.svc.rng.Intn(len(tied))])

	if r.attack(victim, attack{cause: CauseWolves, wolves: true, attackers: attackers}) {
		for _, id := range r.visitors[victim.ID] {
			if v := r.s.Players[id]; v.Role == domain.RoleHarlot && v.Visiting == victim.ID {
				r.kill(v, CauseWolves)
			}
		}
	}
}

// cleanup ends the night: night totems and protection lapse, statuses
// expire, the night queues reset and the night counter advances.
func (r *nightRun) cleanup() {
	for _, p := range r.s.Players {
		if info, ok := domain.InfoOf(p.Totem); ok && info.Timing != domain.TimingDay {
			p.Totem = domain.TotemNone
		}
		p.Clear(domain.StatusProtected)
		p.ExpireStatuses(domain.PhaseNight, r.night)
		p.Visiting = domain.NoPlayer
	}
	clear(r.s.NightActions)
	clear(r.s.AssignedTotems)
	clear(r.s.UsedShamans)
	r.s.NightCount++
	r.s.Resolved = true
}

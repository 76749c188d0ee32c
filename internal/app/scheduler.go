package app

import (
	"errors"
	"fmt"
	"time"

	"wolfbot/internal/domain"
)

// Durations are the countdown lengths of each phase.
type Durations struct {
	Day   time.Duration
	Night time.Duration
}

// Scheduler drives a session through its phases: it resolves a phase when
// its countdown expires or when everybody has acted, checks for a winner and
// opens the next phase. Calls for one session must be serialized.
type Scheduler struct {
	svc       *Service
	timer     *PhaseTimer
	durations Durations
	now       func() time.Time

	seq   uint64
	retry bool
}

// NewScheduler constructs a Scheduler that owns timer.
func NewScheduler(svc *Service, timer *PhaseTimer, durations Durations) *Scheduler {
	if durations.Day <= 0 {
		durations.Day = DefaultDayDuration
	}
	if durations.Night <= 0 {
		durations.Night = DefaultNightDuration
	}
	return &Scheduler{
		svc:       svc,
		timer:     timer,
		durations: durations,
		now:       time.Now,
	}
}

// Service returns the use-case service the scheduler resolves with.
func (sc *Scheduler) Service() *Service { return sc.svc }

// C delivers phase countdown expiries.
func (sc *Scheduler) C() <-chan Deadline { return sc.timer.C() }

// Seq returns the sequence number of the current countdown.
func (sc *Scheduler) Seq() uint64 { return sc.seq }

// Holding reports whether the last resolution attempt failed and the phase is being retried.
func (sc *Scheduler) Holding() bool { return sc.retry }

// Stop cancels the countdown and releases the timer.
func (sc *Scheduler) Stop() {
	sc.timer.Cancel()
	sc.timer.Stop()
}

// Begin starts the game and arms the first night.
func (sc *Scheduler) Begin(s *domain.Session) ([]Event, error) {
	events, err := sc.svc.StartGame(s)
	if err != nil {
		return nil, err
	}
	return sc.arm(s, events), nil
}

// Tick runs once per loop iteration. It ends the game when a win condition
// holds, consumes a pending expiry and otherwise checks for early completion.
func (sc *Scheduler) Tick(s *domain.Session) ([]Event, error) {
	if s.Phase != domain.PhaseNight && s.Phase != domain.PhaseDay {
		return nil, nil
	}
	if o := EvaluateWin(s); o != nil {
		return sc.finish(s, nil, *o), nil
	}

	select {
	case d := <-sc.timer.C():
		if d.Seq == sc.seq {
			return sc.advance(s)
		}
	default:
	}

	if sc.retry || sc.complete(s) {
		return sc.advance(s)
	}
	return nil, nil
}

// Expire handles a deadline received from C. Expiries of earlier phases are ignored.
func (sc *Scheduler) Expire(s *domain.Session, d Deadline) ([]Event, error) {
	if d.Seq != sc.seq || (s.Phase != domain.PhaseNight && s.Phase != domain.PhaseDay) {
		return nil, nil
	}
	return sc.advance(s)
}

// ForceEnd ends the current phase immediately.
func (sc *Scheduler) ForceEnd(s *domain.Session) ([]Event, error) {
	if s.Phase != domain.PhaseNight && s.Phase != domain.PhaseDay {
		return nil, reject(RejectWrongPhase, "no phase is running")
	}
	return sc.advance(s)
}

func (sc *Scheduler) complete(s *domain.Session) bool {
	switch s.Phase {
	case domain.PhaseNight:
		return NightComplete(s)
	case domain.PhaseDay:
		return DayComplete(s)
	}
	return false
}

// advance resolves the current phase and opens the next one. On a resolution
// failure the phase is held and retried by the next Tick.
func (sc *Scheduler) advance(s *domain.Session) ([]Event, error) {
	events, err := sc.resolve(s)
	if err != nil {
		sc.retry = true
		return events, err
	}
	sc.retry = false

	if o := EvaluateWin(s); o != nil {
		return sc.finish(s, events, *o), nil
	}

	var next []Event
	switch s.Phase {
	case domain.PhaseNight:
		next, err = sc.svc.StartDay(s)
	case domain.PhaseDay:
		next, err = sc.svc.StartNight(s)
	}
	if err != nil {
		sc.retry = true
		return events, fmt.Errorf("advance from %s: %w", s.Phase, err)
	}
	events = append(events, next...)

	if o := EvaluateWin(s); o != nil {
		return sc.finish(s, events, *o), nil
	}
	return sc.arm(s, events), nil
}

func (sc *Scheduler) resolve(s *domain.Session) (events []Event, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("resolve %s: panic: %v", s.Phase, rec)
		}
	}()

	switch s.Phase {
	case domain.PhaseNight:
		_, events, err = sc.svc.ResolveNight(s)
	case domain.PhaseDay:
		_, events, err = sc.svc.ResolveDay(s)
	}
	if errors.Is(err, ErrAlreadyResolved) {
		return nil, nil
	}
	return events, err
}

// arm starts the countdown of the current phase and stamps its deadline on
// the phase_started event.
func (sc *Scheduler) arm(s *domain.Session, events []Event) []Event {
	d := sc.durations.Night
	if s.Phase == domain.PhaseDay {
		d = sc.durations.Day
	}
	sc.seq++
	deadline := Deadline{Seq: sc.seq, At: sc.now().Add(d)}
	sc.timer.Arm(deadline)

	for i, ev := range events {
		if p, ok := ev.Payload.(PhaseStartedPayload); ok && p.Phase == s.Phase {
			p.Deadline = deadline.At
			events[i].Payload = p
		}
	}
	return events
}

func (sc *Scheduler) finish(s *domain.Session, events []Event, o domain.Outcome) []Event {
	sc.timer.Cancel()
	sc.seq++
	sc.retry = false
	return append(events, sc.svc.EndGame(s, o)...)
}

package app

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"wolfbot/internal/domain"
)

// Command mutates the session on the engine goroutine.
type Command func(s *domain.Session) ([]Event, error)

// EventSink receives every batch of events the engine produces.
type EventSink func([]Event)

// EngineConfig controls an Engine.
type EngineConfig struct {
	Scheduler *Scheduler
	Session   *domain.Session
	Sink      EventSink
	// OnError receives scheduler failures; the phase is held and retried.
	OnError      func(error)
	TickInterval time.Duration
	QueueSize    int
}

// Engine runs one session on a single goroutine. Commands, countdown
// expiries and ticks are all handled there, so the session is never mutated
// concurrently.
type Engine struct {
	sched   *Scheduler
	session *domain.Session
	sink    EventSink
	onError func(error)
	tick    time.Duration

	queue   chan engineRequest
	started atomic.Bool
	done    chan struct{}
}

type engineRequest struct {
	cmd   Command
	reply chan error
}

var (
	ErrEngineStarted = errors.New("engine: run called multiple times")
	ErrEngineStopped = errors.New("engine: stopped")
)

// NewEngine creates an Engine with the supplied configuration.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Scheduler == nil || cfg.Session == nil {
		return nil, errors.New("engine: scheduler and session are required")
	}
	tick := cfg.TickInterval
	if tick <= 0 {
		tick = time.Second
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	sink := cfg.Sink
	if sink == nil {
		sink = func([]Event) {}
	}
	onError := cfg.OnError
	if onError == nil {
		onError = func(error) {}
	}
	return &Engine{
		sched:   cfg.Scheduler,
		session: cfg.Session,
		sink:    sink,
		onError: onError,
		tick:    tick,
		queue:   make(chan engineRequest, queueSize),
		done:    make(chan struct{}),
	}, nil
}

// Run processes commands until the game ends or ctx is cancelled. It returns
// nil once the session has ended.
func (e *Engine) Run(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return ErrEngineStarted
	}
	defer close(e.done)
	defer e.sched.Stop()

	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-e.queue:
			events, err := req.cmd(e.session)
			e.sink(events)
			req.reply <- err
		case d := <-e.sched.C():
			events, err := e.sched.Expire(e.session, d)
			e.publish(events, err)
		case <-ticker.C:
			events, err := e.sched.Tick(e.session)
			e.publish(events, err)
		}
		if e.session.Phase == domain.PhaseEnded {
			return nil
		}
	}
}

func (e *Engine) publish(events []Event, err error) {
	if len(events) > 0 {
		e.sink(events)
	}
	if err != nil {
		e.onError(err)
	}
}

// Submit runs cmd on the engine goroutine and returns its error.
func (e *Engine) Submit(ctx context.Context, cmd Command) error {
	req := engineRequest{cmd: cmd, reply: make(chan error, 1)}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return ErrEngineStopped
	case e.queue <- req:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		select {
		case err := <-req.reply:
			return err
		default:
			return ErrEngineStopped
		}
	case err := <-req.reply:
		return err
	}
}

// Done is closed when Run returns.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

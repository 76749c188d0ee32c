package app

import (
	"sync"
	"time"
)

// Deadline is an armed phase countdown. Seq identifies the phase it belongs to.
type Deadline struct {
	Seq uint64
	At  time.Time
}

type timerRequest struct {
	arm      bool
	deadline Deadline
}

// PhaseTimer owns the single phase countdown. One goroutine holds the
// underlying time.Timer; Arm and Cancel are requests to it, and expiries are
// delivered on C. Arming stops the previous countdown and discards an expiry
// that has not been received yet.
type PhaseTimer struct {
	requests chan timerRequest
	fired    chan Deadline
	done     chan struct{}
	stopOnce sync.Once
}

// NewPhaseTimer starts the supervising goroutine. Call Stop to release it.
func NewPhaseTimer() *PhaseTimer {
	t := &PhaseTimer{
		requests: make(chan timerRequest),
		fired:    make(chan Deadline),
		done:     make(chan struct{}),
	}
	go t.run()
	return t
}

// Arm replaces the current countdown with one expiring at d.At.
func (t *PhaseTimer) Arm(d Deadline) {
	t.send(timerRequest{arm: true, deadline: d})
}

// Cancel stops the current countdown without arming a new one.
func (t *PhaseTimer) Cancel() {
	t.send(timerRequest{})
}

// C delivers expired deadlines.
func (t *PhaseTimer) C() <-chan Deadline {
	return t.fired
}

// Stop terminates the supervising goroutine. It is safe to call more than once.
func (t *PhaseTimer) Stop() {
	t.stopOnce.Do(func() { close(t.done) })
}

func (t *PhaseTimer) send(req timerRequest) {
	select {
	case t.requests <- req:
	case <-t.done:
	}
}

func (t *PhaseTimer) run() {
	var (
		timer   *time.Timer
		expired <-chan time.Time
		current Deadline
		pending Deadline
		out     chan Deadline // nil unless an expiry awaits delivery
	)
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
		expired = nil
		out = nil
	}

	for {
		select {
		case req := <-t.requests:
			stop()
			if req.arm {
				current = req.deadline
				timer = time.NewTimer(time.Until(current.At))
				expired = timer.C
			}
		case <-expired:
			expired = nil
			pending = current
			out = t.fired
		case out <- pending:
			out = nil
		case <-t.done:
			stop()
			return
		}
	}
}

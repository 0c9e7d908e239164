package aio

import (
	"log"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/eapache/queue"
)

// A Loop is the single authority deciding which [Task] runs next and for
// how long the process may idle.
//
// A loop is strictly single-threaded: one task runs at a time, tasks
// become ready in FIFO order and are resumed in that order, and no task
// is ever preempted between two suspension points. The only blocking
// point is the wait for the next deadline when no task is ready.
//
// A loop and everything scheduled on it must be driven from one
// goroutine. The one place where a thread-safe handoff would be needed
// is an external readiness source feeding results in from other
// goroutines; supplying that boundary is the surrounding program's job,
// not this package's.
type Loop struct {
	clock       clock.Clock
	ready       *queue.Queue
	timers      timerqueue
	running     atomic.Bool
	live        int
	stall       chan struct{}
	lostFailure func(t *Task, err error)
}

// Option configures a [Loop].
type Option func(l *Loop)

// WithClock makes the loop take time from c instead of the wall clock.
// Tests use clock.NewMock to drive deadlines deterministically.
func WithClock(c clock.Clock) Option {
	return func(l *Loop) { l.clock = c }
}

// WithLostFailureHandler installs f to be called when a task fails (not
// by cancellation) and nothing ever observed its future. The default
// handler writes to the standard logger; a nil f silences it.
func WithLostFailureHandler(f func(t *Task, err error)) Option {
	return func(l *Loop) {
		if f == nil {
			f = func(*Task, error) {}
		}
		l.lostFailure = f
	}
}

// New creates a [Loop].
func New(opts ...Option) *Loop {
	l := &Loop{
		clock: clock.New(),
		ready: queue.New(),
		stall: make(chan struct{}),
		lostFailure: func(t *Task, err error) {
			log.Printf("aio: task failed with no awaiter: %v", err)
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CreateTask wraps op in a new [Task], puts it at the back of the ready
// queue and returns immediately; it never runs op synchronously.
func (l *Loop) CreateTask(op Operation) *Task {
	t := &Task{loop: l, op: mustOp(op), state: Created, fut: NewFuture[any]()}
	l.live++
	l.schedule(t)
	return t
}

// Run creates a task from entry and steps the loop until that task is
// terminal, then returns its result or propagates its failure. A
// cancelled entry task surfaces as [Canceled].
//
// Other tasks created before or during Run keep running while the entry
// task is live; tasks still pending when the entry task finishes keep
// their state and are picked up by a later Run call.
//
// Run fails with [ErrLoopBusy] when the loop is already running, which
// includes calling Run from inside an [Operation].
func (l *Loop) Run(entry Operation) (any, error) {
	if !l.running.CompareAndSwap(false, true) {
		return nil, ErrLoopBusy
	}
	defer l.running.Store(false)

	t := l.CreateTask(entry)
	t.fut.markObserved()

	for !t.state.Terminal() {
		l.step()
	}

	return t.fut.Value()
}

// Live returns the number of tasks that have not yet reached a terminal
// state.
func (l *Loop) Live() int {
	return l.live
}

// schedule puts t at the back of the ready queue unless it is already
// there or already terminal.
func (l *Loop) schedule(t *Task) {
	if t.state.Terminal() || t.enqueued {
		return
	}
	t.enqueued = true
	t.state = Scheduled
	l.ready.Add(t)
}

// step makes one scheduling decision: fire due deadlines, then resume
// exactly one ready task, or idle until the next deadline, or stall when
// only permanently suspended tasks remain (deadlocks are not detected).
func (l *Loop) step() {
	now := l.clock.Now()
	for !l.timers.Empty() {
		e := l.timers.Peek()
		if e.dead {
			l.timers.Pop()
			continue
		}
		if e.when.After(now) {
			break
		}
		l.timers.Pop()
		e.fire()
	}

	if l.ready.Length() > 0 {
		t := l.ready.Remove().(*Task)
		l.runTask(t)
		return
	}

	if !l.timers.Empty() {
		if d := l.timers.Peek().when.Sub(l.clock.Now()); d > 0 {
			l.clock.Sleep(d)
		}
		return
	}

	// Nothing ready and no deadlines: every live task is suspended on
	// something that will never settle. The loop stalls here.
	<-l.stall
}

func (l *Loop) runTask(t *Task) {
	t.enqueued = false
	if t.state.Terminal() {
		return
	}
	t.state = Running
	t.run()
}

package aio

import (
	"errors"
	"time"
)

type action int8

const (
	_ action = iota
	doEnd
	doFail
	doYield
	doSwitch
)

// TaskState is the lifecycle state of a [Task].
type TaskState int8

const (
	Created TaskState = iota
	Scheduled
	Running
	Suspended
	Done
	Failed
	Cancelled
)

// Terminal reports whether s is one of the final states (Done, Failed or
// Cancelled).
func (s TaskState) Terminal() bool {
	return s >= Done
}

func (s TaskState) String() string {
	switch s {
	case Created:
		return "Created"
	case Scheduled:
		return "Scheduled"
	case Running:
		return "Running"
	case Suspended:
		return "Suspended"
	case Done:
		return "Done"
	case Failed:
		return "Failed"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// An Operation is a resumable piece of work that a [Task] is given to do.
//
// An operation runs until it returns a [Result], which either ends the
// task with a value, fails it, switches to another operation, or
// suspends the task naming what it waits on (a [Future], a duration, or
// another task) together with the operation to resume with. Everything
// an operation does between two suspension points is atomic with respect
// to every other task on the same [Loop].
type Operation func(t *Task) Result

// A Task is one [Operation] driven to completion by a [Loop], similar to
// a goroutine but cooperative and stackless.
//
// A task is created already scheduled. The loop owns it until it reaches
// a terminal state; the creator keeps the task handle (and its [Future])
// only to observe the outcome or to request cancellation.
type Task struct {
	loop  *Loop
	op    Operation
	state TaskState
	fut   *Future[any]

	enqueued        bool
	cancelRequested bool
	cancelDelivered bool
	finishing       bool

	pendingVal any
	pendingErr error
	resumeErr  error
	defers     []Operation

	// detach unregisters the task from whatever it is suspended on,
	// so cancellation never leaves a stale waiter behind. Set while
	// Suspended, nil otherwise.
	detach func()
}

// Loop returns the loop that owns t.
func (t *Task) Loop() *Loop {
	return t.loop
}

// State returns the current lifecycle state of t.
func (t *Task) State() TaskState {
	return t.state
}

// Future returns the future that carries the outcome of t.
func (t *Task) Future() *Future[any] {
	return t.fut
}

// CancelRequested reports whether Cancel has been called on t. It stays
// true even if a deferred operation later suppresses the cancellation,
// which is how callers detect a task that swallowed it.
func (t *Task) CancelRequested() bool {
	return t.cancelRequested
}

// Cancel requests cooperative cancellation of t. It is idempotent.
//
// The effect is deferred: at its next suspension point (or immediately,
// if t is currently suspended or waiting on the ready queue), t receives
// [Canceled] instead of its normal resume value. Deferred operations
// added with [Task.Defer] still run and may consume the cancellation
// with [Task.Recover]; otherwise t finishes Cancelled and its future
// fails with [Canceled] exactly once.
//
// A task suspended on a deadline or on a primitive's waiter list is
// unregistered from it and rescheduled right away.
func (t *Task) Cancel() {
	if t.state.Terminal() || t.cancelRequested {
		return
	}
	t.cancelRequested = true
	if t.state == Suspended {
		if d := t.detach; d != nil {
			t.detach = nil
			d()
		}
		t.resumeErr = nil
		t.loop.schedule(t)
	}
}

// Defer adds op to run after the current operation of t ends, fails, or
// receives cancellation. Deferred operations run in last-in-first-out
// order and may themselves suspend.
func (t *Task) Defer(op Operation) {
	if t.state.Terminal() {
		panic("aio: task has already finished")
	}
	t.defers = append(t.defers, mustOp(op))
}

// Failing reports whether t is running its deferred operations with a
// failure or cancellation still pending.
func (t *Task) Failing() bool {
	return t.finishing && t.pendingErr != nil
}

// Recover consumes and returns the pending failure while t is running
// its deferred operations, or nil if there is none. Recovering a
// cancellation suppresses it: the task finishes Done with a nil result.
func (t *Task) Recover() error {
	if !t.finishing {
		return nil
	}
	err := t.pendingErr
	t.pendingErr = nil
	return err
}

// Result is the type of the return value of an [Operation]. It tells
// the loop what the task does next. Results are created with the
// methods of [Task] ([Task.End], [Task.Return], [Task.Fail],
// [Task.Switch]) and of [Pending].
type Result struct {
	action  action
	op      Operation
	value   any
	err     error
	wait    Awaitable
	delay   time.Duration
	timed   bool
	reraise bool
}

// Pending is an intermediate suspension value returned by [Task.Await],
// [Task.AwaitSettled], [Task.AwaitTask], [Task.Sleep] and [Task.Pause].
// It must be turned into a [Result] with Then or End before returning
// from an [Operation].
type Pending struct {
	res Result
}

// Then names the operation to resume with once the suspension is over.
func (p Pending) Then(op Operation) Result {
	p.res.op = mustOp(op)
	return p.res
}

// End finishes the task (with a nil result) once the suspension is over.
func (p Pending) End() Result {
	return p.res
}

// End returns a [Result] that finishes t with a nil result.
func (t *Task) End() Result {
	return Result{action: doEnd}
}

// Return returns a [Result] that finishes t with the result v.
func (t *Task) Return(v any) Result {
	return Result{action: doEnd, value: v}
}

// Fail returns a [Result] that fails t with err.
func (t *Task) Fail(err error) Result {
	if err == nil {
		panic("aio: Fail called with nil error")
	}
	return Result{action: doFail, err: err}
}

// Switch returns a [Result] that makes t continue with op immediately,
// without suspending.
func (t *Task) Switch(op Operation) Result {
	return Result{action: doSwitch, op: mustOp(op)}
}

// Await suspends t until f settles. If f failed, the failure is
// re-raised inside t at the suspension point: the continuation passed to
// [Pending.Then] does not run, and t's deferred operations see the error.
func (t *Task) Await(f Awaitable) Pending {
	if f == nil {
		panic("aio: Await called with nil Awaitable")
	}
	return Pending{Result{action: doYield, wait: f, reraise: true}}
}

// AwaitSettled suspends t until f settles, without re-raising a failure.
// The continuation runs either way and inspects the outcome itself.
func (t *Task) AwaitSettled(f Awaitable) Pending {
	if f == nil {
		panic("aio: AwaitSettled called with nil Awaitable")
	}
	return Pending{Result{action: doYield, wait: f}}
}

// AwaitTask suspends t until child is terminal. Awaiting a failed task
// re-raises its error; awaiting a cancelled task re-raises [Canceled].
func (t *Task) AwaitTask(child *Task) Pending {
	return t.Await(child.fut)
}

// Sleep suspends t for at least d. Non-positive durations still yield,
// waking on the loop's next pass over the deadline queue.
func (t *Task) Sleep(d time.Duration) Pending {
	return Pending{Result{action: doYield, delay: d, timed: true}}
}

// Pause yields t to the back of the ready queue, giving every task that
// is already ready a chance to run first.
func (t *Task) Pause() Pending {
	return Pending{Result{action: doYield}}
}

// run drives t from a resume until it suspends or finishes. It is the
// only place operations execute; between the moment it is entered and
// the moment it returns, no other task runs.
func (t *Task) run() {
	if t.cancelRequested && !t.cancelDelivered && !t.finishing {
		t.cancelDelivered = true
		t.resumeErr = Canceled
	}

	for {
		var res Result

		switch {
		case t.resumeErr != nil:
			res = Result{action: doFail, err: t.resumeErr}
			t.resumeErr = nil
		case t.op == nil:
			res = Result{action: doEnd}
		default:
			op := t.op
			if err := catch(func() { res = op(t) }); err != nil {
				res = Result{action: doFail, err: err}
			}
		}

		if res.action == doYield && t.cancelRequested && !t.cancelDelivered {
			// Self-cancellation: deliver at this suspension point
			// instead of suspending.
			t.cancelDelivered = true
			res = Result{action: doFail, err: Canceled}
		}

		switch res.action {
		case doSwitch:
			t.op = res.op

		case doYield:
			t.suspend(res)
			return

		case doEnd, doFail:
			if !t.finishing {
				t.finishing = true
				t.pendingVal, t.pendingErr = res.value, res.err
			} else if res.action == doFail {
				t.pendingErr = joinErr(t.pendingErr, res.err)
			}
			if n := len(t.defers); n > 0 {
				t.op = t.defers[n-1]
				t.defers = t.defers[:n-1]
				continue
			}
			t.finalize()
			return

		default:
			panic("aio: internal error: unknown action")
		}
	}
}

func (t *Task) suspend(res Result) {
	t.state = Suspended
	t.op = res.op

	switch {
	case res.wait != nil:
		f := res.wait
		reraise := res.reraise
		h := f.subscribe(func() {
			t.detach = nil
			if reraise {
				if err := f.failure(); err != nil {
					t.resumeErr = err
				}
			}
			t.loop.schedule(t)
		})
		if h >= 0 {
			t.detach = func() { f.unsubscribe(h) }
		}
	case res.timed:
		e := t.loop.timers.Push(t.loop.clock.Now().Add(res.delay), func() {
			t.detach = nil
			t.loop.schedule(t)
		})
		t.detach = e.cancel
	default:
		t.loop.schedule(t)
	}
}

func (t *Task) finalize() {
	err := t.pendingErr
	val := t.pendingVal
	t.finishing = false
	t.op = nil
	t.defers = nil
	t.pendingVal = nil
	t.pendingErr = nil

	switch {
	case err == nil:
		t.state = Done
		t.fut.SetResult(val)
	case errors.Is(err, Canceled):
		t.state = Cancelled
		t.fut.SetError(err)
	default:
		t.state = Failed
		observed := t.fut.observed
		t.fut.SetError(err)
		if !observed {
			t.loop.lostFailure(t, err)
		}
	}

	t.loop.live--
}

func joinErr(pending, next error) error {
	if pending == nil {
		return next
	}
	return errors.Join(pending, next)
}

func mustOp(op Operation) Operation {
	if op == nil {
		panic("aio: nil Operation")
	}
	return op
}

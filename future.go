package aio

type futureState int8

const (
	futurePending futureState = iota
	futureResolved
	futureFailed
)

// Awaitable is the interface of any value a [Task] can suspend on with
// [Task.Await] or [Task.AwaitSettled].
//
// Only [Future] implements Awaitable.
type Awaitable interface {
	settled() bool
	failure() error
	subscribe(fn func()) int
	unsubscribe(h int)
}

// A Future is a single-assignment container for an eventual result or
// failure.
//
// A Future starts out pending. Calling [Future.SetResult] or
// [Future.SetError] settles it, exactly once; settling a settled Future
// panics. When a Future settles, its waiters are notified exactly once,
// in registration order.
//
// A Future must not be shared by more than one [Loop], and must only be
// settled from within the loop's thread of control. Feeding results in
// from other goroutines is the job of whatever readiness source surrounds
// the loop, not of this package.
type Future[T any] struct {
	state    futureState
	value    T
	err      error
	waiters  []futureWaiter
	live     int
	observed bool
}

// Waiter records are addressed by index so that a task can unregister
// itself on cancellation without the Future keeping a pointer back to it.
// Unregistered records become tombstones; the slice is dropped wholesale
// when the Future settles.
type futureWaiter struct {
	notify  func()
	removed bool
}

// NewFuture creates a pending [Future].
func NewFuture[T any]() *Future[T] {
	return new(Future[T])
}

// Settled reports whether f has been resolved or failed.
func (f *Future[T]) Settled() bool {
	return f.state != futurePending
}

// Value returns the result of f, or its error if it failed.
//
// Calling Value on a pending Future is a usage error and panics.
func (f *Future[T]) Value() (T, error) {
	if f.state == futurePending {
		panic("aio: future is not settled")
	}
	f.observed = true
	return f.value, f.err
}

// Err returns the error of f if it failed, and nil if it resolved.
//
// Calling Err on a pending Future is a usage error and panics.
func (f *Future[T]) Err() error {
	_, err := f.Value()
	return err
}

// SetResult resolves f with v and notifies its waiters in registration
// order. Settling a settled Future panics.
func (f *Future[T]) SetResult(v T) {
	if f.state != futurePending {
		panic("aio: future already settled")
	}
	f.state = futureResolved
	f.value = v
	f.settle()
}

// SetError fails f with err and notifies its waiters in registration
// order. Settling a settled Future panics, as does a nil err.
func (f *Future[T]) SetError(err error) {
	if err == nil {
		panic("aio: SetError called with nil error")
	}
	if f.state != futurePending {
		panic("aio: future already settled")
	}
	f.state = futureFailed
	f.err = err
	f.settle()
}

func (f *Future[T]) settle() {
	ws := f.waiters
	f.waiters = nil
	f.live = 0
	for i := range ws {
		if w := &ws[i]; !w.removed {
			w.notify()
		}
	}
}

func (f *Future[T]) settled() bool {
	return f.state != futurePending
}

func (f *Future[T]) failure() error {
	return f.err
}

// subscribe registers fn to run when f settles and returns a handle for
// unsubscribe. If f is already settled, fn runs immediately and the
// returned handle is -1.
func (f *Future[T]) subscribe(fn func()) int {
	f.observed = true
	if f.state != futurePending {
		fn()
		return -1
	}
	f.waiters = append(f.waiters, futureWaiter{notify: fn})
	f.live++
	return len(f.waiters) - 1
}

func (f *Future[T]) unsubscribe(h int) {
	if h < 0 || h >= len(f.waiters) || f.waiters[h].removed {
		return
	}
	f.waiters[h] = futureWaiter{removed: true}
	f.live--
}

func (f *Future[T]) markObserved() {
	f.observed = true
}

// abandoned reports whether every waiter of a still-pending f has
// unregistered. The synchronization primitives use it to skip waiter
// records whose task was canceled while queued.
func (f *Future[T]) abandoned() bool {
	return f.state == futurePending && f.observed && f.live == 0
}

// An Outcome is the tagged per-task result collected by [GatherSettled]:
// either a value, or the error (including [Canceled]) the task finished
// with.
type Outcome struct {
	Value any
	Err   error
}

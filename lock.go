package aio

import "github.com/gammazero/deque"

// A Lock provides mutual exclusion between tasks on the same [Loop].
//
// Acquire on an unheld lock returns immediately; otherwise the task
// joins a FIFO of waiters. Release hands the lock directly to the head
// waiter before any other task gets to run, so a released lock can never
// be stolen by a task that started waiting later (no barging).
//
// The zero Lock is ready to use. A Lock must not be shared by more than
// one [Loop].
type Lock struct {
	holder  *Task
	waiters deque.Deque[*lockWaiter]
}

type lockWaiter struct {
	task *Task
	fut  *Future[any]
}

// Acquire returns an [Operation] that suspends the running task until it
// holds the lock, and then ends. Acquiring a lock the task already holds
// deadlocks it, like every other circular wait; the loop does not detect
// that.
func (l *Lock) Acquire() Operation {
	return func(t *Task) Result {
		if l.holder == nil {
			l.holder = t
			return t.End()
		}
		w := &lockWaiter{task: t, fut: NewFuture[any]()}
		l.waiters.PushBack(w)
		return t.Await(w.fut).End()
	}
}

// Release releases the lock held by t. Releasing a lock t does not hold
// is a usage error and panics.
//
// If tasks are waiting, the head waiter becomes the holder immediately
// and is scheduled; waiters whose task was canceled while queued are
// skipped without any effect on the lock.
func (l *Lock) Release(t *Task) {
	if l.holder != t {
		panic("aio(Lock): release of a lock not held by this task")
	}
	for l.waiters.Len() > 0 {
		w := l.waiters.PopFront()
		if w.fut.abandoned() {
			continue
		}
		l.holder = w.task
		w.fut.SetResult(nil)
		return
	}
	l.holder = nil
}

// Locked reports whether the lock is currently held.
func (l *Lock) Locked() bool {
	return l.holder != nil
}

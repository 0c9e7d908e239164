package aio

import "github.com/gammazero/deque"

// A Semaphore bounds concurrent admission with a count of permits.
//
// Acquire takes a permit when one is free and suspends otherwise, in
// FIFO order. Release hands a freed permit directly to the head waiter
// when one exists, so the permit count never transiently overshoots and
// a waiter can never be overtaken by a later Acquire.
//
// A Semaphore must not be shared by more than one [Loop].
type Semaphore struct {
	permits int
	waiters deque.Deque[*semWaiter]
}

type semWaiter struct {
	fut *Future[any]
}

// NewSemaphore creates a semaphore with n permits. A negative n panics.
func NewSemaphore(n int) *Semaphore {
	if n < 0 {
		panic("aio(Semaphore): negative permit count")
	}
	return &Semaphore{permits: n}
}

// Acquire returns an [Operation] that suspends the running task until a
// permit is available, takes it, and then ends.
func (s *Semaphore) Acquire() Operation {
	return func(t *Task) Result {
		if s.permits > 0 {
			s.permits--
			return t.End()
		}
		w := &semWaiter{fut: NewFuture[any]()}
		s.waiters.PushBack(w)
		return t.Await(w.fut).End()
	}
}

// TryAcquire takes a permit without suspending and reports whether it
// succeeded.
func (s *Semaphore) TryAcquire() bool {
	if s.permits > 0 {
		s.permits--
		return true
	}
	return false
}

// Release returns a permit. If tasks are waiting, the permit goes
// directly to the head waiter and that task is scheduled; waiters whose
// task was canceled while queued are skipped without any effect on the
// count.
func (s *Semaphore) Release() {
	for s.waiters.Len() > 0 {
		w := s.waiters.PopFront()
		if w.fut.abandoned() {
			continue
		}
		w.fut.SetResult(nil)
		return
	}
	s.permits++
}

// Permits returns the number of currently free permits.
func (s *Semaphore) Permits() int {
	return s.permits
}

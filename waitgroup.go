package aio

// A WaitGroup is a counter that tasks can wait on.
//
// Add and Done update the counter; when it reaches zero, every waiting
// task is scheduled, in the order it started waiting.
//
// A WaitGroup must not be shared by more than one [Loop].
type WaitGroup struct {
	n       int
	waiters []*Future[any]
}

// Add adds delta, which may be negative, to the counter. A counter going
// negative panics. Reaching zero releases all waiters.
func (wg *WaitGroup) Add(delta int) {
	wg.n += delta
	if wg.n < 0 {
		panic("aio(WaitGroup): negative counter")
	}
	if wg.n == 0 && delta != 0 {
		waiters := wg.waiters
		wg.waiters = nil
		for _, f := range waiters {
			f.SetResult(nil)
		}
	}
}

// Done decrements the counter by one.
func (wg *WaitGroup) Done() {
	wg.Add(-1)
}

// Wait returns an [Operation] that suspends the running task until the
// counter is zero, and then ends.
func (wg *WaitGroup) Wait() Operation {
	return func(t *Task) Result {
		if wg.n == 0 {
			return t.End()
		}
		f := NewFuture[any]()
		wg.waiters = append(wg.waiters, f)
		return t.Await(f).End()
	}
}

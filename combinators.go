package aio

import "time"

// Do returns an [Operation] that calls f, and then ends.
func Do(f func()) Operation {
	return func(t *Task) Result {
		f()
		return t.End()
	}
}

// Sleep returns an [Operation] that suspends the running task for at
// least d, and then ends.
func Sleep(d time.Duration) Operation {
	return func(t *Task) Result {
		return t.Sleep(d).End()
	}
}

// Pause returns an [Operation] that yields the running task to the back
// of the ready queue once, and then ends.
func Pause() Operation {
	return func(t *Task) Result {
		return t.Pause().End()
	}
}

// Never returns an [Operation] that suspends forever. A task running it
// only finishes through cancellation.
func Never() Operation {
	return func(t *Task) Result {
		return t.Await(NewFuture[any]()).End()
	}
}

// Await returns an [Operation] that suspends the running task until f
// settles and then continues with then, which receives the value. A
// failed f re-raises its error at the suspension point instead.
func Await[T any](f *Future[T], then func(t *Task, v T) Result) Operation {
	return func(t *Task) Result {
		return t.Await(f).Then(func(t *Task) Result {
			v, _ := f.Value()
			if then == nil {
				return t.Return(v)
			}
			return then(t, v)
		})
	}
}

// Block returns an [Operation] that runs each of the given operations in
// sequence; when one ends, the next starts. The task's result is the
// last operation's result; intermediate results are discarded. A failure
// anywhere stops the sequence.
func Block(ops ...Operation) Operation {
	for _, op := range ops {
		mustOp(op)
	}
	switch len(ops) {
	case 0:
		return func(t *Task) Result { return t.End() }
	case 1:
		return ops[0]
	}
	return seq(ops[0], ops[1:])
}

// seq threads rest through every way cur can hand back control: an end
// moves on to the next operation, a switch or suspension re-wraps the
// continuation so that the sequence survives the yield.
func seq(cur Operation, rest []Operation) Operation {
	return func(t *Task) Result {
		res := cur(t)
		switch res.action {
		case doEnd:
			if len(rest) == 0 {
				return res
			}
			return t.Switch(seq(rest[0], rest[1:]))
		case doSwitch:
			return t.Switch(seq(res.op, rest))
		case doYield:
			if res.op != nil {
				res.op = seq(res.op, rest)
			} else if len(rest) > 0 {
				res.op = seq(rest[0], rest[1:])
			}
			return res
		default:
			return res
		}
	}
}

// Forever returns an [Operation] that runs op again each time it ends.
// The loop only breaks when op fails or the task is canceled. An op that
// never suspends starves every other task; scheduling stays cooperative.
func Forever(op Operation) Operation {
	mustOp(op)
	var again Operation
	loopBack := func(t *Task) Result { return t.Switch(again) }
	again = func(t *Task) Result { return t.Switch(seq(op, []Operation{loopBack})) }
	return again
}

// Gather returns a future that resolves, once every given task is
// terminal, with their results in input order regardless of completion
// order.
//
// The first task to fail (or be cancelled) fails the aggregate with that
// error immediately and requests cancellation of every other task that
// is still running. For the collect-everything policy see
// [GatherSettled].
func Gather(tasks ...*Task) *Future[[]any] {
	agg := NewFuture[[]any]()
	n := len(tasks)
	if n == 0 {
		agg.SetResult([]any{})
		return agg
	}
	results := make([]any, n)
	remaining := n
	for i, ct := range tasks {
		ct.fut.subscribe(func() {
			if agg.Settled() {
				return
			}
			v, err := ct.fut.Value()
			if err != nil {
				agg.SetError(err)
				for _, other := range tasks {
					if !other.state.Terminal() {
						other.Cancel()
					}
				}
				return
			}
			results[i] = v
			if remaining--; remaining == 0 {
				agg.SetResult(results)
			}
		})
	}
	return agg
}

// GatherSettled returns a future that resolves, once every given task is
// terminal, with one tagged [Outcome] per input position. It never
// short-circuits and never cancels anything: failures and cancellations
// are collected like results.
func GatherSettled(tasks ...*Task) *Future[[]Outcome] {
	agg := NewFuture[[]Outcome]()
	n := len(tasks)
	if n == 0 {
		agg.SetResult([]Outcome{})
		return agg
	}
	outcomes := make([]Outcome, n)
	remaining := n
	for i, ct := range tasks {
		ct.fut.subscribe(func() {
			v, err := ct.fut.Value()
			outcomes[i] = Outcome{Value: v, Err: err}
			if remaining--; remaining == 0 {
				agg.SetResult(outcomes)
			}
		})
	}
	return agg
}

// WaitFor returns an [Operation] that races child against a deadline of
// d. If child finishes first, the operation continues with then, which
// receives the result (a nil then finishes the task with it). If the
// deadline fires first, child is canceled and [ErrTimeout] is raised to
// the running task. Exactly one of the two happens.
func WaitFor(child *Task, d time.Duration, then func(t *Task, v any) Result) Operation {
	if then == nil {
		then = func(t *Task, v any) Result { return t.Return(v) }
	}
	return func(t *Task) Result {
		race := NewFuture[any]()
		var e *deadlineEntry
		child.fut.subscribe(func() {
			if race.Settled() {
				return
			}
			if e != nil {
				e.cancel()
			}
			if v, err := child.fut.Value(); err != nil {
				race.SetError(err)
			} else {
				race.SetResult(v)
			}
		})
		if !race.Settled() {
			e = t.loop.timers.Push(t.loop.clock.Now().Add(d), func() {
				if race.Settled() {
					return
				}
				race.SetError(ErrTimeout)
				child.Cancel()
			})
		}
		return t.Await(race).Then(func(t *Task) Result {
			v, _ := race.Value()
			return then(t, v)
		})
	}
}

// Retry returns an [Operation] that runs a task built by factory up to
// attempts times, starting each attempt only after the previous one is
// terminal. The first success ends the operation with that attempt's
// result; when every attempt fails, the last error propagates.
func Retry(attempts int, factory func() Operation) Operation {
	if attempts < 1 {
		panic("aio: Retry needs at least one attempt")
	}
	if factory == nil {
		panic("aio: Retry needs a factory")
	}
	var tryOnce func(t *Task, n int) Result
	tryOnce = func(t *Task, n int) Result {
		child := t.loop.CreateTask(factory())
		return t.AwaitSettled(child.fut).Then(func(t *Task) Result {
			v, err := child.fut.Value()
			if err == nil {
				return t.Return(v)
			}
			if n+1 >= attempts {
				return t.Fail(err)
			}
			return tryOnce(t, n+1)
		})
	}
	return func(t *Task) Result {
		return tryOnce(t, 0)
	}
}

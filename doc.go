// Package aio is a cooperative, single-threaded task runtime: an event
// loop that drives stackless coroutines, futures with cancellation and
// timeouts, and synchronization primitives that suspend and resume tasks
// without blocking an OS thread.
//
// Go already has goroutines, so a package like this is not about
// parallelism. A [Loop] runs at most one [Task] at a time, on one
// goroutine, and a task only ever gives up control at an explicit
// suspension point: awaiting a [Future], sleeping, or blocking on a
// [Lock], [Semaphore] or [Queue]. That restriction is the point.
// Everything a task does between two suspension points is atomic with
// respect to every other task, so shared state touched only between
// suspension points needs no locking at all, and the interleavings a
// program can produce are exactly the ones its suspension points allow.
//
// # Tasks and Operations
//
// A task is created from an [Operation], a function that runs until it
// returns a [Result] saying what happens next: end with a value, fail
// with an error, switch to another operation, or suspend on something
// and name the operation to resume with. There is no hidden stack; the
// continuation after a suspension point is spelled out as the next
// operation:
//
//	l := aio.New()
//	v, err := l.Run(func(t *aio.Task) aio.Result {
//		return t.Sleep(time.Second).Then(func(t *aio.Task) aio.Result {
//			return t.Return("done")
//		})
//	})
//
// [Loop.Run] creates the entry task and steps the loop until that task
// is terminal, then hands back its result or failure. [Loop.CreateTask]
// starts background tasks; [Gather] and [WaitFor] compose them.
//
// # Ordering
//
// Tasks become ready in FIFO order relative to when whatever they waited
// on was satisfied, and the loop resumes them in that order. Deadlines
// fire in ascending time order, ties broken by creation order. The
// primitives release waiters strictly FIFO, handing a lock, permit or
// queue slot directly to the head waiter so it cannot be stolen by a
// task that asked later.
//
// No task is preempted. A task that computes forever without suspending
// starves the loop; cooperative scheduling assumes operations that
// eventually yield.
//
// # Failure and cancellation
//
// An error inside a task (via [Task.Fail], or a panic escaping its
// operation) fails that task's future and nothing else; the loop keeps
// running. [Task.Cancel] is a request, not an interruption: the task
// receives [Canceled] at its next suspension point, runs its deferred
// cleanup operations, and finishes Cancelled — unless a cleanup consumes
// the cancellation with [Task.Recover], which is allowed but leaves a
// task that callers can only recognize by [Task.CancelRequested].
// Timeouts ([WaitFor], [ErrTimeout]) are cancellation underneath.
//
// Failures of background tasks that nobody awaits are reported through
// the loop's lost-failure handler; see [WithLostFailureHandler].
//
// Deadlocks are not detected. Two tasks each awaiting a lock the other
// holds suspend forever, and the loop stalls with them.
//
// # What this package is not
//
// The loop consumes a monotonic clock and nothing else. Sockets, files,
// timers backed by hardware, and anything that completes on another
// goroutine live outside it; such a readiness source integrates by
// settling futures or creating tasks from the loop's goroutine, and the
// thread-safe handoff that requires is the surrounding program's
// responsibility. There is no preemption, no work stealing, and no
// second thread of control.
package aio

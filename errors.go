package aio

import "errors"

var (
	// Canceled is the error delivered to a task at its next suspension
	// point after Cancel has been requested. Deferred operations may
	// consume it with [Task.Recover]; otherwise the task finishes in
	// the Cancelled state and its future fails with this error.
	Canceled = errors.New("aio: task canceled")

	// ErrTimeout is the error raised to the caller of [WaitFor] when
	// the deadline fires before the awaited task completes.
	ErrTimeout = errors.New("aio: timeout")

	// ErrLoopBusy is returned by [Loop.Run] when the loop is already
	// running, including re-entrant calls from within an [Operation].
	ErrLoopBusy = errors.New("aio: loop is already running")
)

package aio

import (
	"fmt"
	"runtime/debug"
)

// A panicError carries a panic value that escaped an [Operation], along
// with the stack trace captured at the point of the panic. The task that
// ran the operation fails with it; the loop itself keeps running.
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("aio: panic: %v\n\n%s", e.value, e.stack)
}

func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}

// catch runs f and converts an escaped panic into a *panicError.
func catch(f func()) (err error) {
	normal := false
	defer func() {
		if normal {
			return
		}
		v := recover()
		if v == nil {
			// recover returns nil during a runtime.Goexit unwind.
			panic("aio: operations must not call runtime.Goexit")
		}
		err = &panicError{value: v, stack: debug.Stack()}
	}()
	f()
	normal = true
	return nil
}

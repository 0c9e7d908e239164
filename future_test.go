package aio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aio-run/aio"
)

func TestFutureSingleAssignment(t *testing.T) {
	t.Run("DoubleResolvePanics", func(t *testing.T) {
		f := aio.NewFuture[int]()
		f.SetResult(1)
		assert.Panics(t, func() { f.SetResult(2) })
	})

	t.Run("FailAfterResolvePanics", func(t *testing.T) {
		f := aio.NewFuture[int]()
		f.SetResult(1)
		assert.Panics(t, func() { f.SetError(errBoom) })
	})

	t.Run("NilErrorPanics", func(t *testing.T) {
		f := aio.NewFuture[int]()
		assert.Panics(t, func() { f.SetError(nil) })
	})

	t.Run("ValueOnPendingPanics", func(t *testing.T) {
		f := aio.NewFuture[int]()
		assert.Panics(t, func() { f.Value() })
	})
}

func TestFutureValue(t *testing.T) {
	f := aio.NewFuture[string]()
	assert.False(t, f.Settled())
	f.SetResult("v")
	require.True(t, f.Settled())
	v, err := f.Value()
	require.NoError(t, err)
	assert.Equal(t, "v", v)
	assert.NoError(t, f.Err())
}

// Tasks awaiting the same future are re-admitted to the ready queue in
// the order they started waiting.
func TestFutureWaitersNotifiedInRegistrationOrder(t *testing.T) {
	l := aio.New()
	f := aio.NewFuture[int]()
	var order []int
	_, err := l.Run(func(tk *aio.Task) aio.Result {
		var waiters []*aio.Task
		for i := 0; i < 3; i++ {
			n := i
			waiters = append(waiters, l.CreateTask(func(tk *aio.Task) aio.Result {
				return tk.Await(f).Then(func(tk *aio.Task) aio.Result {
					order = append(order, n)
					return tk.End()
				})
			}))
		}
		return tk.Pause().Then(func(tk *aio.Task) aio.Result {
			f.SetResult(0)
			return tk.AwaitSettled(aio.Gather(waiters...)).End()
		})
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, order)
}

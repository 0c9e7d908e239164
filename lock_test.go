package aio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aio-run/aio"
)

func TestLockMutualExclusion(t *testing.T) {
	l := aio.New()
	var lk aio.Lock
	var trace []string
	section := func(name string) aio.Operation {
		return aio.Block(
			lk.Acquire(),
			aio.Do(func() { trace = append(trace, name+" enter") }),
			aio.Pause(), // give the other task a chance to barge
			aio.Pause(),
			func(tk *aio.Task) aio.Result {
				trace = append(trace, name+" exit")
				lk.Release(tk)
				return tk.End()
			},
		)
	}
	_, err := l.Run(func(tk *aio.Task) aio.Result {
		a := l.CreateTask(section("a"))
		b := l.CreateTask(section("b"))
		return tk.AwaitSettled(aio.Gather(a, b)).End()
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a enter", "a exit", "b enter", "b exit"}, trace)
	assert.False(t, lk.Locked())
}

func TestLockWaitersAcquireInFIFOOrder(t *testing.T) {
	l := aio.New()
	var lk aio.Lock
	var order []int
	_, err := l.Run(func(tk *aio.Task) aio.Result {
		var tasks []*aio.Task
		for i := 0; i < 3; i++ {
			n := i
			tasks = append(tasks, l.CreateTask(aio.Block(
				lk.Acquire(),
				func(tk *aio.Task) aio.Result {
					order = append(order, n)
					lk.Release(tk)
					return tk.End()
				},
			)))
		}
		return tk.AwaitSettled(aio.Gather(tasks...)).End()
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestLockReleaseByNonHolderPanics(t *testing.T) {
	l := aio.New()
	var lk aio.Lock
	_, err := l.Run(func(tk *aio.Task) aio.Result {
		l.CreateTask(aio.Block(lk.Acquire(), aio.Never()))
		return tk.Pause().Then(func(tk *aio.Task) aio.Result {
			lk.Release(tk) // panics, surfaces as the task's failure
			return tk.End()
		})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not held by this task")
}

func TestLockSkipsCancelledWaiters(t *testing.T) {
	l := aio.New()
	var lk aio.Lock
	var got []string
	waiter := func(name string) aio.Operation {
		return aio.Block(
			lk.Acquire(),
			func(tk *aio.Task) aio.Result {
				got = append(got, name)
				lk.Release(tk)
				return tk.End()
			},
		)
	}
	var doomedState aio.TaskState
	_, err := l.Run(func(tk *aio.Task) aio.Result {
		return aio.Block(
			lk.Acquire(),
			func(tk *aio.Task) aio.Result {
				doomed := l.CreateTask(waiter("doomed"))
				survivor := l.CreateTask(waiter("survivor"))
				return tk.Pause().Then(func(tk *aio.Task) aio.Result {
					doomed.Cancel()
					lk.Release(tk)
					return tk.AwaitSettled(aio.Gather(survivor)).Then(func(tk *aio.Task) aio.Result {
						return tk.AwaitSettled(doomed.Future()).Then(func(tk *aio.Task) aio.Result {
							doomedState = doomed.State()
							return tk.End()
						})
					})
				})
			},
		)(tk)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"survivor"}, got)
	assert.Equal(t, aio.Cancelled, doomedState)
	assert.False(t, lk.Locked())
}

package aio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aio-run/aio"
)

func TestQueuePutSuspendsWhenFull(t *testing.T) {
	l := aio.New()
	q := aio.NewQueue[string](1)
	var got []string
	_, err := l.Run(func(tk *aio.Task) aio.Result {
		producer := l.CreateTask(aio.Block(
			q.Put("a"),
			q.Put("b"), // suspends until "a" is taken
		))
		return tk.Pause().Then(func(tk *aio.Task) aio.Result {
			assert.Equal(t, 1, q.Len())
			assert.Equal(t, aio.Suspended, producer.State())
			return q.Get(func(tk *aio.Task, v string) aio.Result {
				got = append(got, v)
				return tk.AwaitTask(producer).Then(func(tk *aio.Task) aio.Result {
					return q.Get(func(tk *aio.Task, v string) aio.Result {
						got = append(got, v)
						return tk.End()
					})(tk)
				})
			})(tk)
		})
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 0, q.Len())
}

func TestQueueGetSuspendsWhenEmpty(t *testing.T) {
	l := aio.New()
	q := aio.NewQueue[int](1)
	var got int
	_, err := l.Run(func(tk *aio.Task) aio.Result {
		consumer := l.CreateTask(q.Get(func(tk *aio.Task, v int) aio.Result {
			got = v
			return tk.End()
		}))
		return tk.Pause().Then(func(tk *aio.Task) aio.Result {
			assert.Equal(t, aio.Suspended, consumer.State())
			// Direct handoff: the item never touches the buffer.
			return aio.Block(
				q.Put(7),
				aio.Do(func() { assert.Equal(t, 0, q.Len()) }),
				func(tk *aio.Task) aio.Result { return tk.AwaitTask(consumer).End() },
			)(tk)
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestQueueConsumersReceiveInArrivalOrder(t *testing.T) {
	l := aio.New()
	q := aio.NewQueue[int](1)
	var pairs [][2]int
	_, err := l.Run(func(tk *aio.Task) aio.Result {
		var consumers []*aio.Task
		for i := 0; i < 3; i++ {
			n := i
			consumers = append(consumers, l.CreateTask(q.Get(func(tk *aio.Task, v int) aio.Result {
				pairs = append(pairs, [2]int{n, v})
				return tk.End()
			})))
		}
		return tk.Pause().Then(func(tk *aio.Task) aio.Result {
			return aio.Block(
				q.Put(10), q.Put(11), q.Put(12),
				func(tk *aio.Task) aio.Result {
					return tk.AwaitSettled(aio.Gather(consumers...)).End()
				},
			)(tk)
		})
	})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 10}, {1, 11}, {2, 12}}, pairs)
}

func TestQueueCancelledGetterDoesNotSwallowItems(t *testing.T) {
	l := aio.New()
	q := aio.NewQueue[int](1)
	var got int
	_, err := l.Run(func(tk *aio.Task) aio.Result {
		doomed := l.CreateTask(q.Get(nil))
		return tk.Pause().Then(func(tk *aio.Task) aio.Result {
			doomed.Cancel()
			return aio.Block(
				q.Put(42), // skips the dead waiter, lands in the buffer
				func(tk *aio.Task) aio.Result {
					return q.Get(func(tk *aio.Task, v int) aio.Result {
						got = v
						return tk.End()
					})(tk)
				},
			)(tk)
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestQueueCancelledPutterDropsItsItem(t *testing.T) {
	l := aio.New()
	q := aio.NewQueue[string](1)
	var got []string
	_, err := l.Run(func(tk *aio.Task) aio.Result {
		return aio.Block(
			q.Put("kept"),
			func(tk *aio.Task) aio.Result {
				doomed := l.CreateTask(q.Put("dropped"))
				return tk.Pause().Then(func(tk *aio.Task) aio.Result {
					doomed.Cancel()
					return q.Get(func(tk *aio.Task, v string) aio.Result {
						got = append(got, v)
						// The canceled putter's item must not have been
						// admitted when space freed up.
						assert.Equal(t, 0, q.Len())
						return tk.End()
					})(tk)
				})
			},
		)(tk)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, got)
}

func TestQueueUnboundedNeverSuspendsPut(t *testing.T) {
	l := aio.New()
	q := aio.NewQueue[int](0)
	_, err := l.Run(func(tk *aio.Task) aio.Result {
		ops := make([]aio.Operation, 0, 100)
		for i := 0; i < 100; i++ {
			ops = append(ops, q.Put(i))
		}
		return aio.Block(ops...)(tk)
	})
	require.NoError(t, err)
	assert.Equal(t, 100, q.Len())
	assert.LessOrEqual(t, q.Cap(), 0)
}

func TestQueueTryPutTryGet(t *testing.T) {
	q := aio.NewQueue[int](2)
	assert.True(t, q.TryPut(1))
	assert.True(t, q.TryPut(2))
	assert.False(t, q.TryPut(3))
	v, ok := q.TryGet()
	require.True(t, ok)
	assert.Equal(t, 1, v)
	v, ok = q.TryGet()
	require.True(t, ok)
	assert.Equal(t, 2, v)
	_, ok = q.TryGet()
	assert.False(t, ok)
}

package aio

import "github.com/gammazero/deque"

// A Queue is a bounded FIFO handoff buffer between producer and consumer
// tasks on the same [Loop].
//
// Put suspends while the buffer is full; Get suspends while it is empty.
// Each waiter list is FIFO on its own: producers are admitted in arrival
// order, consumers receive items in arrival order, and a single Get
// wakes at most one waiting producer (and vice versa).
//
// A Queue must not be shared by more than one [Loop].
type Queue[T any] struct {
	items    deque.Deque[T]
	capacity int
	putters  deque.Deque[*putWaiter[T]]
	getters  deque.Deque[*getWaiter[T]]
}

type putWaiter[T any] struct {
	item T
	fut  *Future[any]
}

type getWaiter[T any] struct {
	fut *Future[T]
}

// NewQueue creates a queue holding at most capacity items. A capacity of
// zero or less means unbounded: Put never suspends.
func NewQueue[T any](capacity int) *Queue[T] {
	return &Queue[T]{capacity: capacity}
}

// Put returns an [Operation] that stores v in the queue, suspending the
// running task while the queue is full, and then ends.
//
// When a consumer is already waiting, the item is handed to it directly
// and its task is scheduled.
func (q *Queue[T]) Put(v T) Operation {
	return func(t *Task) Result {
		if w := q.popGetter(); w != nil {
			w.fut.SetResult(v)
			return t.End()
		}
		if q.capacity <= 0 || q.items.Len() < q.capacity {
			q.items.PushBack(v)
			return t.End()
		}
		w := &putWaiter[T]{item: v, fut: NewFuture[any]()}
		q.putters.PushBack(w)
		return t.Await(w.fut).End()
	}
}

// TryPut stores v without suspending and reports whether it succeeded.
func (q *Queue[T]) TryPut(v T) bool {
	if w := q.popGetter(); w != nil {
		w.fut.SetResult(v)
		return true
	}
	if q.capacity <= 0 || q.items.Len() < q.capacity {
		q.items.PushBack(v)
		return true
	}
	return false
}

// Get returns an [Operation] that removes the head item from the queue,
// suspending the running task while the queue is empty, and then
// continues with then, which receives the item. A nil then finishes the
// task with the item as its result.
//
// A Get that frees space admits at most one waiting producer.
func (q *Queue[T]) Get(then func(t *Task, v T) Result) Operation {
	if then == nil {
		then = func(t *Task, v T) Result { return t.Return(v) }
	}
	return func(t *Task) Result {
		if q.items.Len() > 0 {
			v := q.items.PopFront()
			q.admitPutter()
			return then(t, v)
		}
		w := &getWaiter[T]{fut: NewFuture[T]()}
		q.getters.PushBack(w)
		return t.Await(w.fut).Then(func(t *Task) Result {
			v, _ := w.fut.Value()
			return then(t, v)
		})
	}
}

// TryGet removes and returns the head item without suspending. It does
// not admit waiting producers when it fails.
func (q *Queue[T]) TryGet() (T, bool) {
	if q.items.Len() == 0 {
		var zero T
		return zero, false
	}
	v := q.items.PopFront()
	q.admitPutter()
	return v, true
}

// Len returns the number of buffered items.
func (q *Queue[T]) Len() int {
	return q.items.Len()
}

// Cap returns the queue capacity; zero or less means unbounded.
func (q *Queue[T]) Cap() int {
	return q.capacity
}

// admitPutter moves the item of the first live waiting producer into the
// buffer and schedules that producer's task.
func (q *Queue[T]) admitPutter() {
	for q.putters.Len() > 0 {
		w := q.putters.PopFront()
		if w.fut.abandoned() {
			continue
		}
		q.items.PushBack(w.item)
		w.fut.SetResult(nil)
		return
	}
}

func (q *Queue[T]) popGetter() *getWaiter[T] {
	for q.getters.Len() > 0 {
		w := q.getters.PopFront()
		if w.fut.abandoned() {
			continue
		}
		return w
	}
	return nil
}

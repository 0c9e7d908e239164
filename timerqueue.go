package aio

import (
	"sort"
	"time"
)

// A deadlineEntry is a pending wake-up: at when, fire runs on the loop.
// Entries with equal deadlines keep their creation order (seq).
//
// Canceling an entry tombstones it in place; the queue skips dead
// entries when they surface instead of re-sorting.
type deadlineEntry struct {
	when time.Time
	seq  uint64
	fire func()
	dead bool
}

func (e *deadlineEntry) cancel() {
	e.dead = true
	e.fire = nil
}

func (e *deadlineEntry) before(other *deadlineEntry) bool {
	if !e.when.Equal(other.when) {
		return e.when.Before(other.when)
	}
	return e.seq < other.seq
}

// A timerqueue keeps deadline entries sorted by (when, seq) ascending.
//
// It is two sorted slices sharing one backing array: head is the prefix
// being popped from, tail collects insertions past the head. Insertion
// is a binary search plus a copy within whichever slice the entry lands
// in; popping advances head and swaps in tail when head drains.
type timerqueue struct {
	head, tail []*deadlineEntry
	seq        uint64
}

func (q *timerqueue) Empty() bool {
	return len(q.head) == 0
}

// Push schedules fire to run at when and returns the entry so that the
// caller can cancel it before it is due.
func (q *timerqueue) Push(when time.Time, fire func()) *deadlineEntry {
	q.seq++
	e := &deadlineEntry{when: when, seq: q.seq, fire: fire}
	q.insert(e)
	return e
}

// Peek returns the earliest entry. The queue must not be empty.
func (q *timerqueue) Peek() *deadlineEntry {
	return q.head[0]
}

// Pop removes and returns the earliest entry. The queue must not be
// empty.
func (q *timerqueue) Pop() *deadlineEntry {
	e := q.head[0]
	q.head[0] = nil

	if len(q.head) > 1 {
		q.head = q.head[1:]
	} else {
		q.head, q.tail = q.tail, q.tail[:0]
	}

	return e
}

func (q *timerqueue) insert(e *deadlineEntry) {
	headsize, tailsize := len(q.head), len(q.tail)

	n := headsize + tailsize

	i := sort.Search(n, func(i int) bool {
		if i < headsize {
			return e.before(q.head[i])
		}
		return e.before(q.tail[i-headsize])
	})

	if n == cap(q.tail) {
		// No room behind tail: rebuild into one slice.
		s := append(q.tail[:n], nil)[:0]

		if i < headsize {
			s = append(s, q.head[:i]...)
			s = append(s, e)
			s = append(s, q.head[i:]...)
			s = append(s, q.tail...)
		} else {
			i -= headsize
			s = append(s, q.head...)
			s = append(s, q.tail[:i]...)
			s = append(s, e)
			s = append(s, q.tail[i:]...)
		}

		q.head, q.tail = s, s[:0]

		return
	}

	if headsize < cap(q.head) {
		s := q.head[:headsize+1]
		copy(s[i+1:], s[i:])
		s[i] = e
		q.head = s
		return
	}

	if i < headsize {
		// Shift the head's last entry over into the tail to make room.
		s := q.head
		last := s[headsize-1]
		copy(s[i+1:], s[i:])
		s[i] = e
		e = last
		i = headsize
	}

	i -= headsize

	s := q.tail[:tailsize+1]
	copy(s[i+1:], s[i:])
	s[i] = e
	q.tail = s
}

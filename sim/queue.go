// Implements the RequestQueue, which holds all spectrum requests raised during a slot.
// Requests are enqueued as units refresh demand and drained strictly FIFO.

package sim

import "strings"

// RequestQueue is a FIFO queue of spectrum requests waiting for the allocator.
// The drain order is part of the observable behavior: the shrink path is
// order-dependent, so Reorder is the only sanctioned way to change it.
type RequestQueue struct {
	queue []Request
}

// Enqueue adds a request to the back of the queue.
func (q *RequestQueue) Enqueue(r Request) {
	q.queue = append(q.queue, r)
}

func (q *RequestQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, val := range q.queue {
		sb.WriteString(val.String())
		if i < len(q.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of requests in the queue.
func (q *RequestQueue) Len() int {
	return len(q.queue)
}

// Reorder applies fn to the queue contents before the queue is drained.
// fn may permute the requests in place but cannot add or remove any.
func (q *RequestQueue) Reorder(fn func([]Request)) {
	if fn == nil {
		panic("Reorder: fn must not be nil")
	}
	fn(q.queue)
}

// Dequeue removes and returns the request at the front of the queue.
func (q *RequestQueue) Dequeue() (Request, bool) {
	if len(q.queue) == 0 {
		return Request{}, false
	}
	r := q.queue[0]
	q.queue = q.queue[1:]
	return r, true
}

package session

import "sync"

type EventKind int

const (
	EventState EventKind = iota
	EventTick
	EventStatus
	EventDone
)

func (k EventKind) String() string {
	switch k {
	case EventState:
		return "state"
	case EventTick:
		return "tick"
	case EventStatus:
		return "status"
	case EventDone:
		return "done"
	default:
		return "unknown"
	}
}

// Event is what the controller reports to the shell.
type Event struct {
	Kind EventKind

	State     State  // EventState
	Remaining int    // EventTick
	Message   string // EventStatus and EventTick

	// EventDone
	OK     bool
	Reason string
}

// eventQueue is an unbounded FIFO. push never blocks; a single goroutine
// moves items to out in order and closes out once the queue is closed and
// drained.
type eventQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Event
	closed bool
	out    chan Event
}

func newEventQueue() *eventQueue {
	q := &eventQueue{out: make(chan Event)}
	q.cond = sync.NewCond(&q.mu)
	go q.pump()
	return q
}

func (q *eventQueue) push(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, e)
	q.cond.Signal()
}

func (q *eventQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

func (q *eventQueue) pump() {
	for {
		q.mu.Lock()
		for len(q.items) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.items) == 0 {
			q.mu.Unlock()
			close(q.out)
			return
		}
		e := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		q.out <- e
	}
}

// Package notify holds transient user-facing messages that expire on their own.
package notify

import (
	"sync"
	"time"
)

// TTL is how long a notification stays in the queue.
const TTL = 3 * time.Second

// Severity classifies a notification for display.
type Severity int

const (
	// Normal reports a successful outcome.
	Normal Severity = iota

	// Destructive reports a failure.
	Destructive
)

func (s Severity) String() string {
	if s == Destructive {
		return "destructive"
	}
	return "normal"
}

// Notification is a single message.
// ID is the generation timestamp in nanoseconds and is assigned by Enqueue.
type Notification struct {
	ID          int64
	Title       string
	Description string
	Severity    Severity
}

// Scheduler runs f once after d. The returned func cancels it.
type Scheduler func(d time.Duration, f func()) (stop func())

// AfterFunc is the default Scheduler, backed by time.AfterFunc.
func AfterFunc(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// Queue is an ordered set of live notifications.
// Every item carries its own timer; items never affect each other.
type Queue struct {
	mu        sync.Mutex
	items     []Notification
	stops     map[int64]func()
	listeners []func(Notification)
	last      int64

	ttl      time.Duration
	schedule Scheduler
	now      func() time.Time
}

// Option configures a Queue.
type Option func(*Queue)

// WithTTL overrides the expiry delay.
func WithTTL(d time.Duration) Option {
	return func(q *Queue) { q.ttl = d }
}

// WithScheduler overrides how removals are scheduled (for testing).
func WithScheduler(s Scheduler) Option {
	return func(q *Queue) { q.schedule = s }
}

// WithClock overrides the timestamp source (for testing).
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// NewQueue creates an empty queue.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		stops:    make(map[int64]func()),
		ttl:      TTL,
		schedule: AfterFunc,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue stamps n with a fresh identity, appends it and schedules its
// removal. Listeners are called after the lock is released.
func (q *Queue) Enqueue(n Notification) Notification {
	q.mu.Lock()
	id := q.now().UnixNano()
	if id <= q.last {
		id = q.last + 1
	}
	q.last = id
	n.ID = id
	q.items = append(q.items, n)
	q.stops[id] = q.schedule(q.ttl, func() { q.remove(id) })
	listeners := append([]func(Notification){}, q.listeners...)
	q.mu.Unlock()

	for _, fn := range listeners {
		fn(n)
	}
	return n
}

// Pending returns a snapshot of the live notifications, oldest first.
func (q *Queue) Pending() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

// Len returns the number of live notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Subscribe registers fn to be called for every enqueued notification.
func (q *Queue) Subscribe(fn func(Notification)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.listeners = append(q.listeners, fn)
}

// Close cancels every outstanding timer and empties the queue.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for id, stop := range q.stops {
		stop()
		delete(q.stops, id)
	}
	q.items = nil
}

func (q *Queue) remove(id int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.stops, id)
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

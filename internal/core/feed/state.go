// Package feed republishes live-query results as observable view state.
// Snapshots are full replacements, never deltas: every publish hands
// observers the complete current list.
package feed

import (
	"sync"

	"github.com/orderdesk/order-management/internal/metrics"
)

// State holds the latest published snapshot for one feed and fans it out to
// subscribers. Publication is the single synchronization point: delivery
// callbacks arrive on arbitrary goroutines and meet observers only here.
type State[T any] struct {
	mu     sync.Mutex
	items  []T
	subs   map[int]chan []T
	nextID int
}

func NewState[T any]() *State[T] {
	return &State[T]{subs: make(map[int]chan []T)}
}

// Get returns the last published snapshot. The slice must not be mutated.
func (s *State[T]) Get() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items
}

// Publish atomically replaces the snapshot and notifies subscribers.
// Subscribers are conflated: one behind on delivery sees only the newest
// snapshot.
func (s *State[T]) Publish(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	for _, ch := range s.subs {
		select {
		case ch <- items:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- items
		}
	}
}

// Sub is a handle on a feed subscription. Cancel must be called when the
// observer stops listening.
type Sub[T any] struct {
	C      <-chan []T
	cancel func()
}

func (s *Sub[T]) Cancel() { s.cancel() }

// Subscribe attaches an observer. The current snapshot is delivered
// immediately.
func (s *State[T]) Subscribe() *Sub[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan []T, 1)
	ch <- s.items
	s.subs[id] = ch
	metrics.FeedSubscribers.Inc()

	var once sync.Once
	return &Sub[T]{
		C: ch,
		cancel: func() {
			once.Do(func() {
				s.mu.Lock()
				delete(s.subs, id)
				s.mu.Unlock()
				metrics.FeedSubscribers.Dec()
			})
		},
	}
}

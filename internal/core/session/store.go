// Package session holds the authentication state observed by navigation and
// screens. There is one logical writer per operation; concurrent writes are
// last-writer-wins on the whole snapshot, and there is no cross-field
// consistency requirement beyond that.
package session

import (
	"sync"

	"github.com/orderdesk/order-management/internal/core/ports"
)

// Outcome is the tri-state result of the last register/login attempt.
type Outcome int

const (
	OutcomeUnset Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

// Snapshot is an immutable view of the session state. Role stays empty until
// a successful login completes role resolution; observers must not assume a
// role is present before that.
type Snapshot struct {
	Outcome Outcome
	Err     error
	Role    string
	Session ports.Session
}

// Store is the observable session state. Watchers receive the latest snapshot
// with conflation: a slow watcher sees the newest state, not every
// intermediate one.
type Store struct {
	mu       sync.Mutex
	current  Snapshot
	watchers map[int]chan Snapshot
	nextID   int
}

func NewStore() *Store {
	return &Store{watchers: make(map[int]chan Snapshot)}
}

// Get returns the current snapshot.
func (s *Store) Get() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetSuccess records a successful authentication with its resolved role
// (empty when resolution failed) and publishes to watchers.
func (s *Store) SetSuccess(sess ports.Session, role string) {
	s.publish(Snapshot{Outcome: OutcomeSuccess, Role: role, Session: sess})
}

// SetFailure records a failed attempt with its cause.
func (s *Store) SetFailure(err error) {
	s.publish(Snapshot{Outcome: OutcomeFailure, Err: err})
}

// Reset clears the outcome back to unset, keeping watchers informed. Used
// after a completed navigation transition so a stale success cannot re-fire.
func (s *Store) Reset() {
	s.publish(Snapshot{})
}

func (s *Store) publish(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = snap
	for _, ch := range s.watchers {
		// Conflate: drop the stale buffered snapshot if the watcher is behind.
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

// Watch is a handle on the store's snapshot stream.
type Watch struct {
	C      <-chan Snapshot
	cancel func()
}

// Cancel detaches the watcher. Safe to call more than once.
func (w *Watch) Cancel() { w.cancel() }

// Watch registers an observer. The returned handle must be cancelled when the
// observer goes away.
func (s *Store) Watch() *Watch {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Snapshot, 1)
	ch <- s.current
	s.watchers[id] = ch

	var once sync.Once
	return &Watch{
		C: ch,
		cancel: func() {
			once.Do(func() {
				s.mu.Lock()
				delete(s.watchers, id)
				s.mu.Unlock()
			})
		},
	}
}

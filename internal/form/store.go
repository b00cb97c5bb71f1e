package form

import "sync"

// Store serialises actions against one State and notifies subscribers of
// every snapshot it produces, in dispatch order.
type Store struct {
	dispatchMu  sync.Mutex
	mu          sync.Mutex
	state       State
	nextID      int
	subscribers map[int]func(State)
}

// NewStore returns a Store holding the empty form.
func NewStore() *Store {
	return &Store{subscribers: make(map[int]func(State))}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies action and returns the resulting snapshot. Subscribers
// run before Dispatch returns and must not dispatch themselves.
func (s *Store) Dispatch(action Action) State {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	s.state = Reduce(s.state, action)
	next := s.state
	listeners := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next
}

// Subscribe registers fn for future snapshots. The returned func removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

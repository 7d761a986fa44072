package state

import (
	"log/slog"
	"sync"

	"github.com/derickschaefer/meteo/internal/model"
)

// Change describes one committed transition. Seq increases by one per
// dispatch, so listeners can discard notifications that arrive out of order.
type Change struct {
	Seq    uint64
	Action Action
	Prev   State
	Next   State
}

// PersistedChanged reports whether the transition touched settings or
// favorites.
func (c Change) PersistedChanged() bool {
	return !persistedEqual(c.Prev.Persisted(), c.Next.Persisted())
}

// Listener observes committed transitions. Listeners run on the dispatching
// goroutine after the store lock is released and may dispatch themselves.
type Listener func(Change)

// Store owns the current State. Dispatch is safe for concurrent use; each
// transition is applied as a single replace under the lock.
type Store struct {
	mu        sync.Mutex
	state     State
	seq       uint64
	listeners map[int]Listener
	nextID    int

	provider Provider
}

// NewStore creates a Store whose settings and favorites start from p.
// provider serves the fetch operations and may be nil when only local
// transitions are used.
func NewStore(provider Provider, p Persisted) *Store {
	return &Store{
		state:     Initial(p),
		listeners: make(map[int]Listener),
		provider:  provider,
	}
}

// State returns the current state. The returned value shares slices with the
// store but is never modified by later transitions.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a and returns the resulting state.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, a)
	s.state = next
	s.seq++
	change := Change{Seq: s.seq, Action: a, Prev: prev, Next: next}
	listeners := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	slog.Debug("dispatch", "action", a.Type(), "seq", change.Seq)
	for _, l := range listeners {
		l(change)
	}
	return next
}

// Subscribe registers l and returns a function that removes it. Listeners
// are called in subscription order.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func persistedEqual(a, b Persisted) bool {
	if a.Settings != b.Settings {
		return false
	}
	if len(a.Favorites.Cities) != len(b.Favorites.Cities) {
		return false
	}
	for i := range a.Favorites.Cities {
		if !favoriteEqual(a.Favorites.Cities[i], b.Favorites.Cities[i]) {
			return false
		}
	}
	return true
}

func favoriteEqual(a, b model.Favorite) bool {
	aw, bw := a.CurrentWeather, b.CurrentWeather
	a.CurrentWeather, b.CurrentWeather = nil, nil
	if a != b {
		return false
	}
	if aw == nil || bw == nil {
		return aw == bw
	}
	return ptrEqual(aw.Temperature, bw.Temperature) && ptrEqual(aw.WeatherCode, bw.WeatherCode)
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

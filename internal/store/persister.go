package store

import (
	"log/slog"
	"sync"

	"github.com/derickschaefer/meteo/internal/state"
)

// Saver is the write side of Store.
type Saver interface {
	Save(state.Persisted) error
}

// Persister mirrors every settings or favorites transition of a state.Store
// into a Saver. Writes happen on one background goroutine; when several
// transitions arrive while a write is in flight only the newest is written.
type Persister struct {
	saver       Saver
	unsubscribe func()

	mu      sync.Mutex
	pending *state.Persisted
	lastSeq uint64
	err     error

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

// NewPersister subscribes to s and starts the background writer.
// Close must be called to flush the final state and stop it.
func NewPersister(s *state.Store, saver Saver) *Persister {
	p := &Persister{
		saver: saver,
		wake:  make(chan struct{}, 1),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	p.unsubscribe = s.Subscribe(p.observe)
	go p.run()
	return p
}

func (p *Persister) observe(c state.Change) {
	if !c.PersistedChanged() {
		return
	}
	p.mu.Lock()
	if c.Seq <= p.lastSeq {
		p.mu.Unlock()
		return
	}
	p.lastSeq = c.Seq
	snapshot := c.Next.Persisted()
	p.pending = &snapshot
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Persister) run() {
	defer close(p.done)
	for {
		select {
		case <-p.wake:
			p.flush()
		case <-p.quit:
			p.flush()
			return
		}
	}
}

func (p *Persister) flush() {
	p.mu.Lock()
	next := p.pending
	p.pending = nil
	p.mu.Unlock()
	if next == nil {
		return
	}

	if err := p.saver.Save(*next); err != nil {
		slog.Error("persisting state failed", "err", err)
		p.mu.Lock()
		p.err = err
		p.mu.Unlock()
		return
	}
	slog.Debug("state persisted", "favorites", len(next.Favorites.Cities))
}

// Close stops observing the store, writes any pending state and waits for
// the writer to exit. It returns the last write error, if any.
func (p *Persister) Close() error {
	p.unsubscribe()
	close(p.quit)
	<-p.done

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

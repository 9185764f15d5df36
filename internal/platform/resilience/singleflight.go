package resilience

import "sync"

// SingleFlight collapses concurrent calls for the same key into one
// execution. Late arrivals block until the leader finishes and receive its
// result; the third return reports whether the result was shared.
type SingleFlight struct {
	mu       sync.Mutex
	inflight map[string]*flight
}

type flight struct {
	ready chan struct{}
	value any
	err   error
}

func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	g.mu.Lock()
	if g.inflight == nil {
		g.inflight = make(map[string]*flight)
	}

	if f, ok := g.inflight[key]; ok {
		g.mu.Unlock()
		<-f.ready
		return f.value, f.err, true
	}

	f := &flight{ready: make(chan struct{})}
	g.inflight[key] = f
	g.mu.Unlock()

	f.value, f.err = fn()

	g.mu.Lock()
	delete(g.inflight, key)
	g.mu.Unlock()
	close(f.ready)

	return f.value, f.err, false
}

// Package monitor tracks server reachability and reports online/offline
// transitions.
package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carechain/carechain/internal/logging"
)

// Pinger probes the server, typically the API client's health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor probes connectivity on a fixed interval and keeps a current
// boolean state. On every offline-to-online transition it invokes the
// registered callback exactly once; going offline only flips the state.
// The monitor never touches the local store or any record state itself.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	log      logging.Logger

	online atomic.Bool

	mu       sync.Mutex
	onOnline func(ctx context.Context)
}

func New(pinger Pinger, interval time.Duration, log logging.Logger) *Monitor {
	return &Monitor{pinger: pinger, interval: interval, log: log}
}

// OnOnline registers the callback fired on each offline-to-online
// transition (typically a sync engine pass).
func (m *Monitor) OnOnline(f func(ctx context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOnline = f
}

// Online reports the current connectivity state.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Start probes once synchronously to seed the initial state, then keeps
// probing every interval until ctx is cancelled. The seed probe sets state
// without firing the transition callback; callers that want an initial sync
// trigger one explicitly.
func (m *Monitor) Start(ctx context.Context) {
	m.online.Store(m.probe(ctx))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) probe(ctx context.Context) bool {
	return m.pinger.Ping(ctx) == nil
}

func (m *Monitor) tick(ctx context.Context) {
	now := m.probe(ctx)
	was := m.online.Swap(now)

	switch {
	case now && !was:
		m.log.Info(ctx, "connectivity restored")
		m.mu.Lock()
		f := m.onOnline
		m.mu.Unlock()
		if f != nil {
			f(ctx)
		}
	case !now && was:
		m.log.Warn(ctx, "connectivity lost")
	}
}

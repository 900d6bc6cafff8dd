// Package mux implements the Receive Multiplexer: a single background
// worker that drives every registered Reader Session's HandleRecv,
// either on OS read-readiness (UDP/TCP sessions, via the selector in
// selector.go) or on a timed poll of the session's byte counter
// (serial sessions), exactly mirroring
// transport_thread_manager.py's ReceiveThread loop.
package mux

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/uhfreader/sdk/reader"
	"github.com/uhfreader/sdk/rfidtrace"
	"github.com/uhfreader/sdk/transport"
)

// selectTimeout bounds one selector.wait() pass.
const selectTimeout = 10 * time.Millisecond

// serialCoalesceDelay is slept before draining a serial session that has
// bytes waiting, to let a few more bytes accumulate before the dialect
// codec scans the buffer.
const serialCoalesceDelay = 50 * time.Millisecond

// loopDelay is slept once per outer iteration, bounding CPU use the same
// way the reference loop's trailing time.sleep(0.01) does.
const loopDelay = 10 * time.Millisecond

// stopJoinBound is how long Stop waits for the worker to notice the
// running flag went false before giving up on a clean join.
const stopJoinBound = 2 * time.Second

// Multiplexer is a registry of Reader Sessions driven by one background
// receive loop. The zero value is not usable; build one with New.
type Multiplexer struct {
	mu       sync.Mutex
	sessions map[string]*reader.Session
	sel      *selector
	traceCtx context.Context

	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New builds an unstarted Multiplexer with its own selector.
func New() *Multiplexer {
	return &Multiplexer{
		sessions: make(map[string]*reader.Session),
		sel:      newSelector(),
		traceCtx: context.Background(),
	}
}

// SetTrace installs a rfidtrace.Trace that every subsequent HandleRecv
// call made by the background loop will report through.
func (m *Multiplexer) SetTrace(t *rfidtrace.Trace) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.traceCtx = rfidtrace.With(context.Background(), t)
}

var (
	defaultOnce sync.Once
	defaultMux  *Multiplexer
)

// Default returns the process-wide Multiplexer, lazily built and
// started on first use, matching TransportThreadManager.get_instance's
// lazy double-checked initialization.
func Default() *Multiplexer {
	defaultOnce.Do(func() {
		defaultMux = New()
		defaultMux.Start()
	})
	return defaultMux
}

// Add registers a connected session. If its Transport exposes a
// pollable file descriptor (UDP, TCP), it is registered with the
// selector for read-readiness; serial-backed sessions are only added to
// the session map and polled by BytesAvailable each loop pass.
func (m *Multiplexer) Add(s *reader.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.Key()] = s
	if p, ok := s.Transport().(transport.Pollable); ok {
		if fd, ok := p.File(); ok {
			m.sel.register(fd, s.Key())
		}
	}
}

// Remove unregisters a session by key, releasing its selector
// registration if any.
func (m *Multiplexer) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	m.sel.unregister(key)
}

// Count reports the number of sessions currently registered.
func (m *Multiplexer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Start launches the background receive loop. Calling Start on an
// already-running Multiplexer is a no-op.
func (m *Multiplexer) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.mu.Unlock()

	go m.run()
}

// Stop halts the receive loop, waiting up to stopJoinBound for it to
// exit, then releases every registered session's Transport and empties
// the registry. After Stop returns, the Multiplexer can be Start-ed
// again (spec.md §6's re-creation-after-stop requirement).
func (m *Multiplexer) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	done := m.doneCh
	m.mu.Unlock()

	select {
	case <-done:
	case <-time.After(stopJoinBound):
	}

	m.mu.Lock()
	for key, s := range m.sessions {
		if err := s.Release(); err != nil {
			log.Printf("mux: release %s: %v", key, err)
		}
	}
	m.sessions = make(map[string]*reader.Session)
	m.sel.reset()
	m.mu.Unlock()
}

func (m *Multiplexer) run() {
	defer close(m.doneCh)

	for {
		select {
		case <-m.stopCh:
			return
		default:
		}

		for _, key := range m.sel.wait(selectTimeout) {
			m.dispatch(key)
		}

		for _, s := range m.serialSessionsWithData() {
			time.Sleep(serialCoalesceDelay)
			m.dispatch(s.Key())
		}

		time.Sleep(loopDelay)
	}
}

func (m *Multiplexer) dispatch(key string) {
	m.mu.Lock()
	s, ok := m.sessions[key]
	ctx := m.traceCtx
	m.mu.Unlock()
	if !ok {
		return
	}
	if err := s.HandleRecv(ctx); err != nil {
		log.Printf("mux: handle_recv %s: %v", key, err)
	}
	if s.State() == reader.Faulted {
		m.Remove(key)
	}
}

func (m *Multiplexer) serialSessionsWithData() []*reader.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*reader.Session
	for _, s := range m.sessions {
		bc, ok := s.Transport().(transport.ByteCounter)
		if !ok {
			continue
		}
		if bc.BytesAvailable() > 0 {
			out = append(out, s)
		}
	}
	return out
}

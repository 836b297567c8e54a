// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package connmgr supervises the pool of peer sessions: it keeps up to a
// target number of healthy connections open, retries from the address
// manager's candidate pool as sessions fail, and hands out Ready peers
// for work assignment round-robin while respecting a per-peer work cap.
package connmgr

import (
	"sort"
	"sync"

	"github.com/btcnode/node/addrmgr"
	"github.com/btcnode/node/peer"
)

// Config controls the connection manager's target pool size and how it
// builds a new outbound peer for a candidate address.
type Config struct {
	TargetOutbound int
	NewPeer        func(addr string) *peer.Peer
}

// session tracks one managed peer alongside its work-assignment counter.
type session struct {
	p            *peer.Peer
	addr         string
	outstanding  int
}

// Manager owns the current set of peer sessions and the address pool they
// were drawn from.
type Manager struct {
	cfg   Config
	addrs *addrmgr.Manager

	mu       sync.Mutex
	sessions map[string]*session
	rrCursor int
}

// New creates a connection manager that will draw candidates from addrs.
func New(cfg Config, addrs *addrmgr.Manager) *Manager {
	return &Manager{
		cfg:      cfg,
		addrs:    addrs,
		sessions: make(map[string]*session),
	}
}

// Maintain tops the pool up to the configured target by dialing new
// candidates from the address manager. It is synchronous: each dial
// blocks on the peer's handshake (bounded by the peer's own connect
// timeout), so callers typically run it in a loop from a dedicated
// goroutine.
func (m *Manager) Maintain() {
	for {
		m.mu.Lock()
		need := m.cfg.TargetOutbound - len(m.sessions)
		m.mu.Unlock()
		if need <= 0 {
			return
		}

		candidates := m.addrs.NextCandidates(need)
		if len(candidates) == 0 {
			return
		}

		for _, addr := range candidates {
			m.dial(addr)
		}
		if len(candidates) < need {
			return
		}
	}
}

func (m *Manager) dial(addr string) {
	p := m.cfg.NewPeer(addr)
	if err := p.Connect(); err != nil {
		m.addrs.MarkNonRetryable(addr)
		return
	}

	m.mu.Lock()
	m.sessions[addr] = &session{p: p, addr: addr}
	m.mu.Unlock()
}

// Remove drops addr's session, releasing its address back to the pool if
// it closed cleanly or marking it non-retryable if it closed with an
// error.
func (m *Manager) Remove(addr string, closeErr error) {
	m.mu.Lock()
	delete(m.sessions, addr)
	m.mu.Unlock()

	if closeErr != nil {
		m.addrs.MarkNonRetryable(addr)
		return
	}
	m.addrs.Release(addr)
}

// Count returns the number of sessions currently tracked, regardless of
// handshake state.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// NextForWork returns the next Ready peer in round-robin order whose
// outstanding work count is below maxOutstanding, or nil if none
// qualifies.
func (m *Manager) NextForWork(maxOutstanding int) *peer.Peer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) == 0 {
		return nil
	}

	addrs := make([]string, 0, len(m.sessions))
	for addr := range m.sessions {
		addrs = append(addrs, addr)
	}
	// Deterministic ordering keeps the round-robin cursor meaningful
	// across calls despite Go's randomized map iteration.
	sort.Strings(addrs)

	for i := 0; i < len(addrs); i++ {
		idx := (m.rrCursor + i) % len(addrs)
		s := m.sessions[addrs[idx]]
		if s.p.State() != peer.StateReady {
			continue
		}
		if s.outstanding >= maxOutstanding {
			continue
		}
		m.rrCursor = (idx + 1) % len(addrs)
		s.outstanding++
		return s.p
	}
	return nil
}

// WorkDone decrements addr's outstanding work counter after a downloaded
// item is accounted for (delivered or timed out and requeued elsewhere).
func (m *Manager) WorkDone(addr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[addr]; ok && s.outstanding > 0 {
		s.outstanding--
	}
}

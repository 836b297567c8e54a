// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package addrmgr tracks candidate peer addresses supplied by a single
// configured source (a resolved DNS seed or a static IPv4 list) and their
// per-run retry eligibility. It does not perform DNS resolution itself;
// the core consumes whatever address list its configuration's resolver
// produced.
package addrmgr

import (
	"fmt"
	"net"
	"sync"
)

// Manager holds the candidate address pool for one run. It is not
// persisted across runs: a peer marked non-retryable stays that way only
// for the lifetime of the Manager.
type Manager struct {
	mu sync.Mutex

	candidates  []string // host:port, insertion order
	nonRetryable map[string]struct{}
	inUse        map[string]struct{}
}

// New returns an address manager seeded with addrs, which must already be
// "host:port" strings. Duplicate entries are discarded.
func New(addrs []string) *Manager {
	m := &Manager{
		nonRetryable: make(map[string]struct{}),
		inUse:        make(map[string]struct{}),
	}
	seen := make(map[string]struct{}, len(addrs))
	for _, a := range addrs {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		m.candidates = append(m.candidates, a)
	}
	return m
}

// NewFromIPs builds a Manager from a resolved DNS seed's A records, pairing
// each with defaultPort.
func NewFromIPs(ips []net.IP, defaultPort string) *Manager {
	addrs := make([]string, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, net.JoinHostPort(ip.String(), defaultPort))
	}
	return New(addrs)
}

// Len returns the total number of distinct candidates the manager knows
// about, retryable or not.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.candidates)
}

// NextCandidates returns up to n addresses that are neither already in use
// nor marked non-retryable, and marks them in use. Callers must call
// Release (on failure) or leave them in use for the session's lifetime.
func (m *Manager) NextCandidates(n int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string
	for _, addr := range m.candidates {
		if len(out) >= n {
			break
		}
		if _, bad := m.nonRetryable[addr]; bad {
			continue
		}
		if _, busy := m.inUse[addr]; busy {
			continue
		}
		m.inUse[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}

// Release marks addr as no longer in use, making it eligible for
// NextCandidates again (unless also marked non-retryable).
func (m *Manager) Release(addr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inUse, addr)
}

// MarkNonRetryable records that addr failed its handshake or closed with
// an error, excluding it from future NextCandidates calls for this run.
func (m *Manager) MarkNonRetryable(addr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inUse, addr)
	m.nonRetryable[addr] = struct{}{}
}

// RetryableCount reports how many known candidates remain eligible for
// connection (neither in use nor non-retryable).
func (m *Manager) RetryableCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, addr := range m.candidates {
		if _, bad := m.nonRetryable[addr]; bad {
			continue
		}
		if _, busy := m.inUse[addr]; busy {
			continue
		}
		count++
	}
	return count
}

// ErrNoSource describes a configuration that supplies neither a DNS seed
// nor a static address list. No function in this module returns it; config
// validation reports that case as a config.ConfigError.
var ErrNoSource = fmt.Errorf("addrmgr: no address source configured")

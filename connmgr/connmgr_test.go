// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package connmgr

import (
	"net"
	"testing"
	"time"

	"github.com/btcnode/node/addrmgr"
	"github.com/btcnode/node/chaincfg"
	"github.com/btcnode/node/peer"
	"github.com/btcnode/node/wire"
)

// listenAndHandshake starts a listener that accepts exactly one connection
// and completes the inbound side of the handshake, returning its address.
func listenAndHandshake(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		cfg := &peer.Config{
			ChainParams:     chaincfg.RegNetParams(),
			ProtocolVersion: wire.ProtocolVersion,
			UserAgent:       "/test-server:0.1.0/",
			ConnectTimeout:  2 * time.Second,
		}
		p := peer.NewInboundPeer(cfg, conn)
		_ = p.Accept()
	}()
	return ln.Addr().String()
}

func TestMaintainFillsTargetFromCandidates(t *testing.T) {
	addr := listenAndHandshake(t)
	am := addrmgr.New([]string{addr})

	cfg := Config{
		TargetOutbound: 1,
		NewPeer: func(a string) *peer.Peer {
			pc := &peer.Config{
				ChainParams:     chaincfg.RegNetParams(),
				ProtocolVersion: wire.ProtocolVersion,
				UserAgent:       "/test-client:0.1.0/",
				ConnectTimeout:  2 * time.Second,
			}
			return peer.NewOutboundPeer(pc, a)
		},
	}

	m := New(cfg, am)
	m.Maintain()

	if got := m.Count(); got != 1 {
		t.Fatalf("Count() = %d, want 1", got)
	}
}

func TestNextForWorkSkipsSaturatedPeers(t *testing.T) {
	addrA := listenAndHandshake(t)
	addrB := listenAndHandshake(t)
	am := addrmgr.New([]string{addrA, addrB})

	cfg := Config{
		TargetOutbound: 2,
		NewPeer: func(a string) *peer.Peer {
			pc := &peer.Config{
				ChainParams:     chaincfg.RegNetParams(),
				ProtocolVersion: wire.ProtocolVersion,
				UserAgent:       "/test-client:0.1.0/",
				ConnectTimeout:  2 * time.Second,
			}
			return peer.NewOutboundPeer(pc, a)
		},
	}
	m := New(cfg, am)
	m.Maintain()
	if m.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", m.Count())
	}

	m.mu.Lock()
	for _, s := range m.sessions {
		s.outstanding = 5
	}
	m.mu.Unlock()
	m.sessions[addrA].outstanding = 0

	p := m.NextForWork(1)
	if p == nil {
		t.Fatalf("expected the under-cap peer to be returned")
	}
	if p.Addr() != addrA {
		t.Fatalf("NextForWork returned %s, want the under-cap peer %s", p.Addr(), addrA)
	}
}

// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package netsync drives the two initial-block-download phases: headers-
// first synchronization of the header chain, and the parallel,
// sharded block downloader that follows it.
package netsync

import (
	"errors"
	"time"

	"github.com/btcnode/node/blockchain"
	"github.com/btcnode/node/event"
	"github.com/btcnode/node/peer"
	"github.com/btcnode/node/wire"
)

// ErrTimeout is returned when a peer does not answer a getheaders or
// getdata request within the configured timeout.
var ErrTimeout = errors.New("netsync: peer response timed out")

// HeaderSync drives repeated getheaders/headers round trips against a
// single assigned peer until the peer returns a short (non-full) batch,
// meaning the chain has caught up to that peer's tip.
type HeaderSync struct {
	chain *blockchain.HeaderChain
	bus   *event.Bus

	// PinSingle mirrors download_full_blockchain_from_single_node: when
	// true, a failure aborts the sync rather than asking the caller to
	// reassign to a different peer.
	PinSingle bool

	// ResponseTimeout bounds how long SyncWith waits for each headers
	// reply before giving up on the assigned peer.
	ResponseTimeout time.Duration
}

// NewHeaderSync returns a header synchronizer operating on chain,
// publishing progress events to bus.
func NewHeaderSync(chain *blockchain.HeaderChain, bus *event.Bus) *HeaderSync {
	return &HeaderSync{
		chain:           chain,
		bus:             bus,
		ResponseTimeout: 30 * time.Second,
	}
}

// SyncWith drives header sync against p, reading peer responses from
// headersCh (fed by the caller's OnHeaders listener for p specifically).
// It returns nil once a non-full batch is received, meaning the chain has
// reached p's reported tip. A validation failure returns a
// *blockchain.RuleError so the caller can disconnect and, unless
// PinSingle, reassign to a different peer and call SyncWith again.
func (hs *HeaderSync) SyncWith(p *peer.Peer, headersCh <-chan *wire.MsgHeaders) error {
	for {
		locator := hs.chain.BlockLocator()
		req := wire.NewMsgGetHeaders()
		req.BlockLocatorHashes = locator
		if err := p.QueueMessage(req); err != nil {
			return err
		}

		select {
		case msg := <-headersCh:
			_, full, err := hs.chain.ExtendHeaders(msg.Headers)
			if err != nil {
				return err
			}
			if hs.bus != nil {
				hs.bus.Publish(event.Event{Kind: event.HeaderSyncProgress, Height: hs.chain.Height()})
			}
			if !full {
				return nil
			}
		case <-time.After(hs.ResponseTimeout):
			return ErrTimeout
		}
	}
}

// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netsync

import (
	"fmt"
	"sync"
	"time"

	"github.com/btcnode/node/blockchain"
	"github.com/btcnode/node/chainhash"
	"github.com/btcnode/node/connmgr"
	"github.com/btcnode/node/event"
	"github.com/btcnode/node/mempool"
	"github.com/btcnode/node/wire"
)

// shard is one unit of work: a contiguous run of block hashes assigned as
// a single getdata request.
type shard struct {
	startHeight int64
	hashes      []chainhash.Hash
	have        map[chainhash.Hash]struct{}
}

func newShard(startHeight int64, hashes []chainhash.Hash) *shard {
	return &shard{startHeight: startHeight, hashes: hashes, have: make(map[chainhash.Hash]struct{})}
}

func (s *shard) remaining() int { return len(s.hashes) - len(s.have) }

func (s *shard) missingHashes() []chainhash.Hash {
	out := make([]chainhash.Hash, 0, s.remaining())
	for _, h := range s.hashes {
		if _, ok := s.have[h]; !ok {
			out = append(out, h)
		}
	}
	return out
}

// assignment records which peer a shard was handed to and when, so a
// stalled delivery can be detected and the unclaimed portion requeued.
type assignment struct {
	s          *shard
	peerAddr   string
	assignedAt time.Time
}

// BlockFromPeer tags an inbound block message with the session address
// that delivered it, so the downloader can credit that peer's work slot.
type BlockFromPeer struct {
	Addr  string
	Block *wire.MsgBlock
}

// BlockDownloader fetches the contiguous range of blocks between a
// starting height and the header chain's tip, applying each to the UTXO
// set and mempool strictly in ascending height order regardless of the
// order shards complete in.
type BlockDownloader struct {
	chain *blockchain.HeaderChain
	utxo  *blockchain.UtxoSet
	pool  *mempool.TxPool
	conns *connmgr.Manager
	bus   *event.Bus

	ShardSize      int
	IdleTimeout    time.Duration
	MaxOutstanding int

	mu        sync.Mutex
	pending   []*shard
	assigned  map[int64]*assignment // keyed by shard startHeight
	received  map[int64]*wire.MsgBlock
	byHash    map[chainhash.Hash]int64 // block hash -> height, for handleBlock lookups
	nextApply int64
	tip       int64
}

// NewBlockDownloader builds a downloader for the inclusive height range
// [firstHeight, chain.Height()].
func NewBlockDownloader(chain *blockchain.HeaderChain, utxo *blockchain.UtxoSet, pool *mempool.TxPool, conns *connmgr.Manager, bus *event.Bus, firstHeight int64, shardSize int) *BlockDownloader {
	d := &BlockDownloader{
		chain:          chain,
		utxo:           utxo,
		pool:           pool,
		conns:          conns,
		bus:            bus,
		ShardSize:      shardSize,
		IdleTimeout:    60 * time.Second,
		MaxOutstanding: 4,
		assigned:       make(map[int64]*assignment),
		received:       make(map[int64]*wire.MsgBlock),
		byHash:         make(map[chainhash.Hash]int64),
		nextApply:      firstHeight,
		tip:            chain.Height(),
	}
	d.buildShards(firstHeight, d.tip)
	return d
}

func (d *BlockDownloader) buildShards(first, tip int64) {
	for h := first; h <= tip; h += int64(d.ShardSize) {
		end := h + int64(d.ShardSize) - 1
		if end > tip {
			end = tip
		}
		hashes := make([]chainhash.Hash, 0, end-h+1)
		for height := h; height <= end; height++ {
			hdr, ok := d.chain.HeaderByHeight(height)
			if !ok {
				break
			}
			hash := hdr.BlockHash()
			hashes = append(hashes, hash)
			d.byHash[hash] = height
		}
		if len(hashes) > 0 {
			d.pending = append(d.pending, newShard(h, hashes))
		}
	}
}

// Done reports whether every height in the range has been applied.
func (d *BlockDownloader) Done() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending) == 0 && len(d.assigned) == 0 && len(d.received) == 0
}

// Run assigns shards to Ready peers and applies completed shards in
// height order until the range is exhausted. blockCh delivers inbound
// block messages tagged with the peer address that sent them; the
// caller wires each peer's OnBlock listener to forward here.
func (d *BlockDownloader) Run(blockCh <-chan BlockFromPeer) error {
	for !d.Done() {
		d.assignReadyShards()

		select {
		case bp := <-blockCh:
			d.handleBlock(bp)
		case <-time.After(d.IdleTimeout):
			d.requeueStale()
		}

		if err := d.applyReady(); err != nil {
			return err
		}
	}
	return nil
}

func (d *BlockDownloader) assignReadyShards() {
	for {
		d.mu.Lock()
		if len(d.pending) == 0 {
			d.mu.Unlock()
			return
		}
		next := d.pending[0]
		d.mu.Unlock()

		p := d.conns.NextForWork(d.MaxOutstanding)
		if p == nil {
			return
		}

		req := wire.NewMsgGetData()
		for i := range next.hashes {
			_ = req.AddInvVect(wire.NewInvVect(wire.InvTypeBlock, &next.hashes[i]))
		}
		if err := p.QueueMessage(req); err != nil {
			d.conns.WorkDone(p.Addr())
			return
		}

		d.mu.Lock()
		d.pending = d.pending[1:]
		d.assigned[next.startHeight] = &assignment{s: next, peerAddr: p.Addr(), assignedAt: timeNow()}
		d.mu.Unlock()
	}
}

func (d *BlockDownloader) handleBlock(bp BlockFromPeer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	hash := bp.Block.Header.BlockHash()
	height, ok := d.byHash[hash]
	if !ok {
		return
	}
	d.received[height] = bp.Block

	a := d.assignmentFor(height)
	if a == nil {
		return
	}
	a.s.have[hash] = struct{}{}
	if a.s.remaining() == 0 {
		delete(d.assigned, a.s.startHeight)
		d.conns.WorkDone(a.peerAddr)
	}
}

// assignmentFor returns the in-flight assignment whose shard covers
// height, if any. Caller holds d.mu.
func (d *BlockDownloader) assignmentFor(height int64) *assignment {
	for _, a := range d.assigned {
		if height >= a.s.startHeight && height < a.s.startHeight+int64(len(a.s.hashes)) {
			return a
		}
	}
	return nil
}

func (d *BlockDownloader) applyReady() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for {
		block, ok := d.received[d.nextApply]
		if !ok {
			return nil
		}
		if err := d.utxo.Apply(block, d.nextApply); err != nil {
			return fmt.Errorf("netsync: apply block at height %d: %w", d.nextApply, err)
		}
		d.pool.ApplyBlock(block, d.utxo)
		if d.bus != nil {
			d.bus.Publish(event.Event{Kind: event.BlockDownloaded, Height: d.nextApply, Hash: block.Header.BlockHash()})
		}
		delete(d.received, d.nextApply)
		d.nextApply++
	}
}

// requeueStale moves any shard whose assignment has been outstanding
// longer than IdleTimeout back to pending, keeping only the hashes that
// were not yet delivered.
func (d *BlockDownloader) requeueStale() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := timeNow()
	for height, a := range d.assigned {
		if now.Sub(a.assignedAt) < d.IdleTimeout {
			continue
		}
		d.conns.WorkDone(a.peerAddr)
		delete(d.assigned, height)

		missing := a.s.missingHashes()
		if len(missing) > 0 {
			d.pending = append(d.pending, newShard(a.s.startHeight, missing))
		}
	}
}

// timeNow is a seam so tests can avoid relying on wall-clock timing where
// possible; it is the standard library's clock in production.
func timeNow() time.Time { return time.Now() }

// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockchain maintains the header chain, validates blocks and
// transactions, and tracks the resulting unspent transaction output set.
package blockchain

import (
	"fmt"
	"sync"

	"github.com/btcnode/node/blockchain/standalone"
	"github.com/btcnode/node/chaincfg"
	"github.com/btcnode/node/chainhash"
	"github.com/btcnode/node/wire"
)

// ErrKind identifies the category of an error returned by the blockchain
// package, mirroring the node-wide error kinds named in the specification.
type ErrKind string

const (
	// ErrPersistence indicates the on-disk header prefix could not be read.
	ErrPersistence = ErrKind("Persistence")
	// ErrValidation indicates a header or block failed a consensus check.
	ErrValidation = ErrKind("Validation")
	// ErrUnsupported indicates a request the chain deliberately does not
	// support, such as a reorg deeper than one block.
	ErrUnsupported = ErrKind("Unsupported")
)

// RuleError wraps an ErrKind with a human-readable description.
type RuleError struct {
	Kind ErrKind
	Desc string
}

func (e *RuleError) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Desc) }

func ruleErr(kind ErrKind, desc string) *RuleError { return &RuleError{Kind: kind, Desc: desc} }

// maxHeadersPerGetheaders mirrors the protocol limit on a single headers
// response.
const maxHeadersPerGetheaders = wire.MaxHeadersPerMsg

// HeaderChain is an append-only, hash-indexed sequence of block headers
// forming the best known chain. It is safe for concurrent use; callers
// across the node acquire it before the UTXO set and mempool locks, per
// the lock ordering header-chain -> UTXO -> mempool.
type HeaderChain struct {
	params *chaincfg.Params

	mu     sync.RWMutex
	nodes  []*blockNode // indexed by height
	byHash map[chainhash.Hash]*blockNode
}

// NewHeaderChain creates a header chain seeded with the network's hard-coded
// genesis block.
func NewHeaderChain(params *chaincfg.Params) *HeaderChain {
	genesis := newBlockNode(&params.GenesisBlock.Header, nil)
	hc := &HeaderChain{
		params: params,
		nodes:  []*blockNode{genesis},
		byHash: map[chainhash.Hash]*blockNode{genesis.hash: genesis},
	}
	return hc
}

// Height returns the height of the current tip.
func (hc *HeaderChain) Height() int64 {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.nodes[len(hc.nodes)-1].height
}

// TipHash returns the hash of the current tip.
func (hc *HeaderChain) TipHash() chainhash.Hash {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.nodes[len(hc.nodes)-1].hash
}

// HeaderByHeight returns the header stored at the given height.
func (hc *HeaderChain) HeaderByHeight(height int64) (wire.BlockHeader, bool) {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	if height < 0 || height >= int64(len(hc.nodes)) {
		return wire.BlockHeader{}, false
	}
	return hc.nodes[height].Header(), true
}

// HeaderByHash returns the header and height for the given hash.
func (hc *HeaderChain) HeaderByHash(hash chainhash.Hash) (wire.BlockHeader, int64, bool) {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	node, ok := hc.byHash[hash]
	if !ok {
		return wire.BlockHeader{}, 0, false
	}
	return node.Header(), node.height, true
}

// Contains reports whether hash is part of the best chain.
func (hc *HeaderChain) Contains(hash chainhash.Hash) bool {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	_, ok := hc.byHash[hash]
	return ok
}

// BlockLocator builds a block locator for the current tip: the tip itself,
// then tip-1, tip-2, tip-4, tip-8, ..., down to and including genesis.
func (hc *HeaderChain) BlockLocator() []*chainhash.Hash {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	tip := hc.nodes[len(hc.nodes)-1]
	var locator []*chainhash.Hash

	step := int64(1)
	height := tip.height
	for {
		node := hc.nodes[height]
		hash := node.hash
		locator = append(locator, &hash)

		if height == 0 {
			break
		}
		height -= step
		if len(locator) >= 2 {
			step *= 2
		}
		if height < 0 {
			height = 0
		}
	}
	return locator
}

// ExtendHeaders validates and appends a batch of headers received from a
// peer in response to getheaders, in order. The entire batch is rejected
// (no headers appended) if any header fails validation; the caller is
// expected to disconnect the offending peer in that case.
//
// It returns the number of headers accepted and whether the response was a
// full batch (maxHeadersPerGetheaders headers), meaning the caller should
// request again starting from the new tip.
func (hc *HeaderChain) ExtendHeaders(headers []*wire.BlockHeader) (accepted int, full bool, err error) {
	if len(headers) == 0 {
		return 0, false, nil
	}

	hc.mu.Lock()
	defer hc.mu.Unlock()

	tip := hc.nodes[len(hc.nodes)-1]
	newNodes := make([]*blockNode, 0, len(headers))

	for _, h := range headers {
		if h.PrevBlock != tip.hash {
			return 0, false, ruleErr(ErrValidation,
				fmt.Sprintf("header %s does not connect to tip %s", h.BlockHash(), tip.hash))
		}
		if err := standalone.CheckProofOfWork(h.BlockHash(), h.Bits, hc.params.PowLimit); err != nil {
			return 0, false, ruleErr(ErrValidation, err.Error())
		}

		node := newBlockNode(h, tip)
		newNodes = append(newNodes, node)
		tip = node
	}

	for _, node := range newNodes {
		hc.nodes = append(hc.nodes, node)
		hc.byHash[node.hash] = node
	}

	return len(newNodes), len(headers) >= maxHeadersPerGetheaders, nil
}

// HeightAtOrAfterTime returns the height of the first header whose timestamp
// is greater than or equal to unixTime, or (chain height, false) if no such
// header exists yet.
func (hc *HeaderChain) HeightAtOrAfterTime(unixTime int64) (int64, bool) {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	for _, node := range hc.nodes {
		if node.timestamp >= unixTime {
			return node.height, true
		}
	}
	return hc.nodes[len(hc.nodes)-1].height, false
}

// ReplayPrefix seeds the header chain from a persisted prefix of headers
// (e.g. read from the headers store at startup), skipping PoW/parent-hash
// revalidation of the replayed headers since they were already validated
// before being written to disk. Returns a Persistence error if the first
// replayed header's PrevBlock does not match genesis.
func (hc *HeaderChain) ReplayPrefix(headers []*wire.BlockHeader) error {
	if len(headers) == 0 {
		return nil
	}

	hc.mu.Lock()
	defer hc.mu.Unlock()

	genesis := hc.nodes[0]
	if headers[0].PrevBlock != genesis.hash {
		return ruleErr(ErrPersistence, "persisted header prefix does not start after genesis")
	}

	tip := genesis
	for _, h := range headers {
		node := newBlockNode(h, tip)
		hc.nodes = append(hc.nodes, node)
		hc.byHash[node.hash] = node
		tip = node
	}
	return nil
}

// PersistablePrefix returns up to n headers from the start of the chain
// (after genesis), suitable for writing to the headers store.
func (hc *HeaderChain) PersistablePrefix(n int) []wire.BlockHeader {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	if n > len(hc.nodes)-1 {
		n = len(hc.nodes) - 1
	}
	if n <= 0 {
		return nil
	}
	out := make([]wire.BlockHeader, n)
	for i := 0; i < n; i++ {
		out[i] = hc.nodes[i+1].Header()
	}
	return out
}

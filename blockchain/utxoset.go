// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sync"

	"github.com/btcnode/node/wire"
)

// UtxoEntry is the state tracked for a single unspent output.
type UtxoEntry struct {
	Amount      int64
	PkScript    []byte
	BlockHeight int64
	IsCoinBase  bool
}

// UtxoSet tracks the set of outputs spendable after applying some prefix of
// the header chain's blocks. It is safe for concurrent use; per the node's
// lock ordering, callers take the header chain lock (if any) before this
// one, and this one before the mempool's.
type UtxoSet struct {
	mu      sync.RWMutex
	entries map[wire.OutPoint]*UtxoEntry
}

// NewUtxoSet returns an empty UTXO set.
func NewUtxoSet() *UtxoSet {
	return &UtxoSet{entries: make(map[wire.OutPoint]*UtxoEntry)}
}

// Contains reports whether outpoint is currently unspent.
func (s *UtxoSet) Contains(op wire.OutPoint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[op]
	return ok
}

// Get returns the entry for outpoint, if any.
func (s *UtxoSet) Get(op wire.OutPoint) (*UtxoEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[op]
	return e, ok
}

// Apply applies every transaction in block, in order, removing consumed
// outpoints and inserting the block's new outputs. It is atomic: if any
// non-coinbase input's outpoint is missing, no change is made and an error
// is returned, and the block must be treated as invalid by the caller.
func (s *UtxoSet) Apply(block *wire.MsgBlock, height int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate every spend is satisfiable before mutating anything, so a
	// missing input leaves the set untouched.
	spent := make(map[wire.OutPoint]struct{})
	for i, tx := range block.Transactions {
		if i == 0 {
			continue // coinbase has no real inputs to check
		}
		for _, in := range tx.TxIn {
			op := in.PreviousOutPoint
			if _, alreadySpentInBlock := spent[op]; alreadySpentInBlock {
				return ruleErr(ErrValidation, "block double-spends an outpoint within itself")
			}
			if _, ok := s.entries[op]; !ok {
				return ruleErr(ErrValidation, "missing UTXO for input "+op.Hash.String())
			}
			spent[op] = struct{}{}
		}
	}

	for op := range spent {
		delete(s.entries, op)
	}
	for i, tx := range block.Transactions {
		txHash := tx.TxHash()
		for vout, out := range tx.TxOut {
			op := wire.OutPoint{Hash: txHash, Index: uint32(vout)}
			s.entries[op] = &UtxoEntry{
				Amount:      out.Value,
				PkScript:    out.PkScript,
				BlockHeight: height,
				IsCoinBase:  i == 0,
			}
		}
	}
	return nil
}

// ScanResult pairs an outpoint with its current UTXO entry, returned by
// ScanForScripts for wallet balance/input-selection queries.
type ScanResult struct {
	OutPoint wire.OutPoint
	Entry    UtxoEntry
}

// ScanForScripts returns every unspent output whose locking script is a
// member of scripts, keyed by the exact byte representation of the script.
func (s *UtxoSet) ScanForScripts(scripts map[string]struct{}) []ScanResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []ScanResult
	for op, entry := range s.entries {
		if _, ok := scripts[string(entry.PkScript)]; ok {
			results = append(results, ScanResult{OutPoint: op, Entry: *entry})
		}
	}
	return results
}

// Len returns the number of tracked unspent outputs.
func (s *UtxoSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mempool tracks valid, unconfirmed transactions and the orphans
// that reference outputs the pool has not seen yet.
package mempool

import (
	"fmt"
	"sync"

	"github.com/btcnode/node/blockchain"
	"github.com/btcnode/node/chainhash"
	"github.com/btcnode/node/wire"
)

// TxPool is the set of valid unconfirmed transactions, keyed by txid, plus
// a pool of orphan transactions awaiting their missing inputs.
type TxPool struct {
	mu sync.RWMutex

	pool          map[chainhash.Hash]*wire.MsgTx
	outpointIndex map[wire.OutPoint]chainhash.Hash // outpoint -> spender txid in pool

	orphans       map[chainhash.Hash]*wire.MsgTx
	orphansByPrev map[wire.OutPoint][]chainhash.Hash
}

// New returns an empty transaction pool.
func New() *TxPool {
	return &TxPool{
		pool:          make(map[chainhash.Hash]*wire.MsgTx),
		outpointIndex: make(map[wire.OutPoint]chainhash.Hash),
		orphans:       make(map[chainhash.Hash]*wire.MsgTx),
		orphansByPrev: make(map[wire.OutPoint][]chainhash.Hash),
	}
}

// Has reports whether txid is currently in the accepted pool.
func (p *TxPool) Has(txid chainhash.Hash) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.pool[txid]
	return ok
}

// Get returns the pooled transaction for txid, if any.
func (p *TxPool) Get(txid chainhash.Hash) (*wire.MsgTx, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	tx, ok := p.pool[txid]
	return tx, ok
}

// Count returns the number of transactions currently accepted into the
// pool (excluding orphans).
func (p *TxPool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.pool)
}

// AcceptTx shallowly validates tx against utxo and the pool itself: it
// must be well-formed (not a coinbase, at least one input and output),
// every input must resolve to either the UTXO set or another pooled
// transaction's output, and it must not double-spend anything already
// claimed by the pool. A transaction whose inputs cannot yet be resolved
// is filed as an orphan and re-attempted once its missing parent arrives.
func (p *TxPool) AcceptTx(tx *wire.MsgTx, utxo *blockchain.UtxoSet) error {
	if tx.IsCoinBase() {
		return fmt.Errorf("mempool: coinbase transactions are not accepted directly")
	}
	if len(tx.TxIn) == 0 || len(tx.TxOut) == 0 {
		return fmt.Errorf("mempool: transaction has no inputs or outputs")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	txid := tx.TxHash()
	if _, ok := p.pool[txid]; ok {
		return nil // already accepted
	}

	missing := false
	for _, in := range tx.TxIn {
		op := in.PreviousOutPoint
		if spender, ok := p.outpointIndex[op]; ok && spender != txid {
			return fmt.Errorf("mempool: outpoint %v already spent by a pooled transaction", op)
		}
		if utxo.Contains(op) {
			continue
		}
		if _, ok := p.pool[op.Hash]; ok {
			continue
		}
		missing = true
	}

	if missing {
		p.addOrphan(tx)
		return nil
	}

	p.insert(tx, txid)
	return nil
}

func (p *TxPool) insert(tx *wire.MsgTx, txid chainhash.Hash) {
	p.pool[txid] = tx
	for _, in := range tx.TxIn {
		p.outpointIndex[in.PreviousOutPoint] = txid
	}
}

func (p *TxPool) addOrphan(tx *wire.MsgTx) {
	txid := tx.TxHash()
	if _, ok := p.orphans[txid]; ok {
		return
	}
	p.orphans[txid] = tx
	for _, in := range tx.TxIn {
		op := in.PreviousOutPoint
		p.orphansByPrev[op] = append(p.orphansByPrev[op], txid)
	}
}

// ApplyBlock removes every transaction confirmed by block from the pool,
// then evicts any remaining pooled or orphaned transaction that now
// double-spends one of the block's applied inputs, and finally promotes
// any orphan whose missing inputs the block just supplied.
func (p *TxPool) ApplyBlock(block *wire.MsgBlock, utxo *blockchain.UtxoSet) {
	p.mu.Lock()
	defer p.mu.Unlock()

	confirmed := make(map[chainhash.Hash]int, len(block.Transactions)) // txid -> output count
	spentOutpoints := make(map[wire.OutPoint]struct{})
	for i, tx := range block.Transactions {
		txid := tx.TxHash()
		confirmed[txid] = len(tx.TxOut)
		p.removeFromPool(txid)
		delete(p.orphans, txid)

		if i == 0 {
			continue
		}
		for _, in := range tx.TxIn {
			spentOutpoints[in.PreviousOutPoint] = struct{}{}
		}
	}

	for txid, tx := range p.pool {
		for _, in := range tx.TxIn {
			if _, ok := spentOutpoints[in.PreviousOutPoint]; ok {
				p.removeFromPool(txid)
				break
			}
		}
	}
	for txid, tx := range p.orphans {
		for _, in := range tx.TxIn {
			if _, ok := spentOutpoints[in.PreviousOutPoint]; ok {
				delete(p.orphans, txid)
				break
			}
		}
	}

	// Attempt to promote orphans whose parents were just confirmed.
	for txid, numOuts := range confirmed {
		for vout := uint32(0); vout < uint32(numOuts); vout++ {
			op := wire.OutPoint{Hash: txid, Index: vout}
			waiting, ok := p.orphansByPrev[op]
			if !ok {
				continue
			}
			delete(p.orphansByPrev, op)
			for _, orphanID := range waiting {
				if orphan, ok := p.orphans[orphanID]; ok {
					delete(p.orphans, orphanID)
					p.tryPromote(orphan, utxo)
				}
			}
		}
	}
}

// tryPromote re-attempts acceptance of a previously orphaned transaction
// now that one of its parents may have arrived. Caller holds p.mu.
func (p *TxPool) tryPromote(tx *wire.MsgTx, utxo *blockchain.UtxoSet) {
	for _, in := range tx.TxIn {
		op := in.PreviousOutPoint
		if !utxo.Contains(op) {
			if _, ok := p.pool[op.Hash]; !ok {
				p.addOrphan(tx)
				return
			}
		}
	}
	p.insert(tx, tx.TxHash())
}

func (p *TxPool) removeFromPool(txid chainhash.Hash) {
	tx, ok := p.pool[txid]
	if !ok {
		return
	}
	delete(p.pool, txid)
	for _, in := range tx.TxIn {
		if spender, ok := p.outpointIndex[in.PreviousOutPoint]; ok && spender == txid {
			delete(p.outpointIndex, in.PreviousOutPoint)
		}
	}
}

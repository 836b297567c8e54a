// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wallet implements the lightweight, P2PKH-only wallet layered on
// top of the node's header chain, UTXO set, and mempool: balance and coin
// selection queries, transaction construction and signing, broadcast, and
// merkle proof of inclusion.
package wallet

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/btcnode/node/blockchain"
	"github.com/btcnode/node/chainhash"
	"github.com/btcnode/node/event"
	"github.com/btcnode/node/mempool"
	"github.com/btcnode/node/txscript"
	"github.com/btcnode/node/wire"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Wallet answers balance/coin-selection/broadcast/proof queries against a
// running node's shared state. It holds no private keys of its own;
// callers supply a WIF per signing operation.
type Wallet struct {
	utxo *blockchain.UtxoSet
	pool *mempool.TxPool
	bus  *event.Bus

	broadcast func(tx *wire.MsgTx) error
}

// New returns a Wallet reading from utxo and pool, publishing nothing on
// its own; bus is used only to hand back a Subscription for the caller's
// asynchronous notification stream. broadcast is invoked by BroadcastTx to
// actually relay a signed transaction to the peer-to-peer network.
func New(utxo *blockchain.UtxoSet, pool *mempool.TxPool, bus *event.Bus, broadcast func(tx *wire.MsgTx) error) *Wallet {
	return &Wallet{utxo: utxo, pool: pool, bus: bus, broadcast: broadcast}
}

// Subscribe returns a subscription to the node's event bus for
// asynchronous wallet-facing notifications (PendingTx, ConfirmedTx, and
// so on).
func (w *Wallet) Subscribe() *event.Subscription {
	return w.bus.Subscribe()
}

func scriptSet(scripts [][]byte) map[string]struct{} {
	set := make(map[string]struct{}, len(scripts))
	for _, s := range scripts {
		set[string(s)] = struct{}{}
	}
	return set
}

// GetBalance sums the value of every unspent output locked by one of
// scripts.
func (w *Wallet) GetBalance(scripts [][]byte) int64 {
	results := w.utxo.ScanForScripts(scriptSet(scripts))
	var total int64
	for _, r := range results {
		total += r.Entry.Amount
	}
	return total
}

// SelectedInput is one output chosen by SelectInputs to fund a new
// transaction.
type SelectedInput struct {
	OutPoint wire.OutPoint
	Amount   int64
	PkScript []byte
}

// ErrInsufficientFunds is returned by SelectInputs when the scripts' total
// unspent value is less than targetAmount.
var ErrInsufficientFunds = fmt.Errorf("wallet: insufficient funds")

// SelectInputs greedily selects unspent outputs locked by scripts, largest
// first, until their total value is at least targetAmount. It returns the
// selected inputs and the change (selected total minus targetAmount).
func (w *Wallet) SelectInputs(scripts [][]byte, targetAmount int64) ([]SelectedInput, int64, error) {
	results := w.utxo.ScanForScripts(scriptSet(scripts))
	sort.Slice(results, func(i, j int) bool { return results[i].Entry.Amount > results[j].Entry.Amount })

	var selected []SelectedInput
	var total int64
	for _, r := range results {
		if total >= targetAmount {
			break
		}
		selected = append(selected, SelectedInput{
			OutPoint: r.OutPoint,
			Amount:   r.Entry.Amount,
			PkScript: r.Entry.PkScript,
		})
		total += r.Entry.Amount
	}
	if total < targetAmount {
		return nil, 0, ErrInsufficientFunds
	}
	return selected, total - targetAmount, nil
}

// BuildAndSignP2PKHTx constructs a transaction spending inputs to pay
// outputs, signing each input against its claimed previous output script
// with priv. Every input in inputs must be locked by the P2PKH script
// corresponding to priv's public key.
func BuildAndSignP2PKHTx(inputs []SelectedInput, outputs []*wire.TxOut, priv *WIF) (*wire.MsgTx, error) {
	tx := &wire.MsgTx{Version: 1}
	for _, in := range inputs {
		tx.TxIn = append(tx.TxIn, &wire.TxIn{
			PreviousOutPoint: in.OutPoint,
			Sequence:         wire.MaxTxInSequenceNum,
		})
	}
	tx.TxOut = outputs

	pubKeyHash := txscript.Hash160(priv.PubKey())
	for i, in := range inputs {
		wantHash := txscript.ExtractPubKeyHash(in.PkScript)
		if wantHash == nil || !bytes.Equal(wantHash, pubKeyHash) {
			return nil, fmt.Errorf("wallet: input %d is not locked by the signing key's P2PKH script", i)
		}

		sigHash, err := txscript.CalcSignatureHash(tx, i, in.PkScript, txscript.SigHashAll)
		if err != nil {
			return nil, err
		}
		sig := ecdsa.Sign(priv.privKey, sigHash[:])
		sigWithType := append(sig.Serialize(), byte(txscript.SigHashAll))
		tx.TxIn[i].SignatureScript = txscript.SignatureScript(sigWithType, priv.PubKey())
	}
	return tx, nil
}

// BroadcastTx submits tx to the local mempool (which holds it as an orphan
// if its inputs are not yet known) and, unless that returns an error,
// relays it to the network via the wallet's broadcast function. GetBalance
// reads only the UTXO set, so the spend does not show in it until the
// transaction is confirmed.
func (w *Wallet) BroadcastTx(tx *wire.MsgTx) error {
	if err := w.pool.AcceptTx(tx, w.utxo); err != nil {
		return err
	}
	if w.broadcast != nil {
		return w.broadcast(tx)
	}
	return nil
}

// ProofOfInclusion returns the merkle inclusion proof for txid within the
// block whose ordered transaction hashes are blockTxHashes, proving
// membership against blockMerkleRoot.
func ProofOfInclusion(blockTxHashes []chainhash.Hash, txid chainhash.Hash, blockMerkleRoot chainhash.Hash) (blockchain.MerkleProof, error) {
	idx := -1
	for i, h := range blockTxHashes {
		if h == txid {
			idx = i
			break
		}
	}
	if idx < 0 {
		return blockchain.MerkleProof{}, fmt.Errorf("wallet: %s is not among the supplied block transactions", txid)
	}

	proof, err := blockchain.MerkleProofForTx(blockTxHashes, idx)
	if err != nil {
		return blockchain.MerkleProof{}, err
	}
	if !blockchain.VerifyMerkleProof(txid, proof, blockMerkleRoot) {
		return blockchain.MerkleProof{}, fmt.Errorf("wallet: computed proof does not verify against the supplied merkle root")
	}
	return proof, nil
}

// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"testing"

	"github.com/btcnode/node/blockchain"
	"github.com/btcnode/node/chaincfg"
	"github.com/btcnode/node/chainhash"
	"github.com/btcnode/node/event"
	"github.com/btcnode/node/mempool"
	"github.com/btcnode/node/txscript"
	"github.com/btcnode/node/wire"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

func fundedWallet(t *testing.T, amount int64) (*Wallet, *WIF, []byte) {
	t.Helper()
	params := chaincfg.RegNetParams()
	priv, _ := secp256k1.GeneratePrivateKey()
	wif := NewWIF(priv, params)
	pkHash := txscript.Hash160(wif.PubKey())
	pkScript, err := txscript.PayToPubKeyHashScript(pkHash)
	if err != nil {
		t.Fatalf("PayToPubKeyHashScript: %v", err)
	}

	coinbase := &wire.MsgTx{
		Version: 1,
		TxIn:    []*wire.TxIn{{PreviousOutPoint: wire.OutPoint{Index: wire.CoinbaseIndex}}},
		TxOut:   []*wire.TxOut{{Value: amount, PkScript: pkScript}},
	}
	block := &wire.MsgBlock{Transactions: []*wire.MsgTx{coinbase}}

	utxo := blockchain.NewUtxoSet()
	if err := utxo.Apply(block, 1); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	pool := mempool.New()
	bus := event.New()
	w := New(utxo, pool, bus, func(tx *wire.MsgTx) error { return nil })
	return w, wif, pkScript
}

func TestGetBalanceSumsMatchingScripts(t *testing.T) {
	w, _, pkScript := fundedWallet(t, 12_3456_7890)
	got := w.GetBalance([][]byte{pkScript})
	if got != 12_3456_7890 {
		t.Fatalf("GetBalance() = %d, want 1234567890", got)
	}
}

func TestSelectInputsInsufficientFunds(t *testing.T) {
	w, _, pkScript := fundedWallet(t, 1000)
	if _, _, err := w.SelectInputs([][]byte{pkScript}, 5000); err != ErrInsufficientFunds {
		t.Fatalf("SelectInputs() err = %v, want ErrInsufficientFunds", err)
	}
}

func TestBuildSignAndBroadcastTx(t *testing.T) {
	w, wif, pkScript := fundedWallet(t, 50_0000_0000)

	selected, change, err := w.SelectInputs([][]byte{pkScript}, 10_0000_0000)
	if err != nil {
		t.Fatalf("SelectInputs: %v", err)
	}
	if change != 40_0000_0000 {
		t.Fatalf("change = %d, want 4000000000", change)
	}

	outputs := []*wire.TxOut{{Value: 10_0000_0000, PkScript: pkScript}}
	tx, err := BuildAndSignP2PKHTx(selected, outputs, wif)
	if err != nil {
		t.Fatalf("BuildAndSignP2PKHTx: %v", err)
	}

	if err := w.BroadcastTx(tx); err != nil {
		t.Fatalf("BroadcastTx: %v", err)
	}
	if !w.pool.Has(tx.TxHash()) {
		t.Fatalf("expected broadcast transaction to be in the local mempool")
	}
}

func TestProofOfInclusion(t *testing.T) {
	txHashes := []chainhash.Hash{{0x01}, {0x02}, {0x03}}
	root := merkleRootOf(txHashes)

	proof, err := ProofOfInclusion(txHashes, txHashes[1], root)
	if err != nil {
		t.Fatalf("ProofOfInclusion: %v", err)
	}
	if !blockchain.VerifyMerkleProof(txHashes[1], proof, root) {
		t.Fatalf("returned proof does not verify")
	}
}

func merkleRootOf(leaves []chainhash.Hash) chainhash.Hash {
	level := make([]chainhash.Hash, len(leaves))
	copy(level, leaves)
	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]chainhash.Hash, len(level)/2)
		for i := range next {
			var buf [2 * chainhash.HashSize]byte
			copy(buf[:chainhash.HashSize], level[2*i][:])
			copy(buf[chainhash.HashSize:], level[2*i+1][:])
			next[i] = chainhash.DoubleHashH(buf[:])
		}
		level = next
	}
	return level[0]
}

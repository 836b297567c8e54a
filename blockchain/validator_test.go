// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"
	"time"

	"github.com/btcnode/node/chaincfg"
	"github.com/btcnode/node/chainhash"
	"github.com/btcnode/node/txscript"
	"github.com/btcnode/node/wire"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

func coinbase(value int64, pkScript []byte) *wire.MsgTx {
	return &wire.MsgTx{
		Version: 1,
		TxIn: []*wire.TxIn{{
			PreviousOutPoint: wire.OutPoint{Index: wire.CoinbaseIndex},
			SignatureScript:  []byte{0, 0},
			Sequence:         wire.MaxTxInSequenceNum,
		}},
		TxOut: []*wire.TxOut{{Value: value, PkScript: pkScript}},
	}
}

func blockWithTxs(t *testing.T, params *chaincfg.Params, txs []*wire.MsgTx) (*wire.MsgBlock, *wire.BlockHeader) {
	t.Helper()
	leaves := make([]chainhash.Hash, len(txs))
	for i, tx := range txs {
		leaves[i] = tx.TxHash()
	}

	h := &wire.BlockHeader{
		Version:    1,
		PrevBlock:  params.GenesisHash,
		MerkleRoot: merkleRootOf(leaves),
		Timestamp:  time.Unix(1700000000, 0),
		Bits:       params.PowLimitBits,
	}
	block := &wire.MsgBlock{Header: *h, Transactions: txs}
	mineHeader(&block.Header, params.PowLimit)
	return block, &block.Header
}

func merkleRootOf(leaves []chainhash.Hash) chainhash.Hash {
	// Local helper mirroring standalone.CalcMerkleRoot's duplicate-last-node
	// rule, built on this package's hashPair; exercised indirectly via
	// CheckBlock below.
	level := make([]chainhash.Hash, len(leaves))
	copy(level, leaves)
	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]chainhash.Hash, len(level)/2)
		for i := range next {
			l, r := level[2*i], level[2*i+1]
			next[i] = hashPair(&l, &r)
		}
		level = next
	}
	return level[0]
}

func TestCheckBlockAcceptsValidSpend(t *testing.T) {
	params := chaincfg.RegNetParams()
	priv, _ := secp256k1.GeneratePrivateKey()
	pkHash := txscript.Hash160(priv.PubKey().SerializeCompressed())
	lockScript, _ := txscript.PayToPubKeyHashScript(pkHash)

	cb := coinbase(5000000000, lockScript)

	utxo := NewUtxoSet()
	cbBlock, cbHeader := blockWithTxs(t, params, []*wire.MsgTx{cb})
	v, err := NewValidator(params, 50)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	if err := v.CheckBlock(cbBlock, cbHeader, utxo); err != nil {
		t.Fatalf("CheckBlock(coinbase only): %v", err)
	}
	if err := utxo.Apply(cbBlock, 1); err != nil {
		t.Fatalf("Apply(coinbase block): %v", err)
	}

	cbHash := cb.TxHash()
	spend := &wire.MsgTx{
		Version: 1,
		TxIn: []*wire.TxIn{{
			PreviousOutPoint: wire.OutPoint{Hash: cbHash, Index: 0},
			Sequence:         wire.MaxTxInSequenceNum,
		}},
		TxOut: []*wire.TxOut{{Value: 4000000000, PkScript: lockScript}},
	}
	sigHash, _ := txscript.CalcSignatureHash(spend, 0, lockScript, txscript.SigHashAll)
	sig := ecdsa.Sign(priv, sigHash[:])
	sigBytes := append(sig.Serialize(), byte(txscript.SigHashAll))
	spend.TxIn[0].SignatureScript = txscript.SignatureScript(sigBytes, priv.PubKey().SerializeCompressed())

	spendCoinbase := coinbase(5000000000, lockScript)
	block, header := blockWithTxs(t, params, []*wire.MsgTx{spendCoinbase, spend})
	if err := v.CheckBlock(block, header, utxo); err != nil {
		t.Fatalf("CheckBlock(spend): %v", err)
	}
}

func TestCheckBlockRejectsMissingCoinbase(t *testing.T) {
	params := chaincfg.RegNetParams()
	nonCoinbase := &wire.MsgTx{
		Version: 1,
		TxIn:    []*wire.TxIn{{PreviousOutPoint: wire.OutPoint{Index: 0}}},
		TxOut:   []*wire.TxOut{{Value: 1}},
	}
	block, header := blockWithTxs(t, params, []*wire.MsgTx{nonCoinbase})

	v, _ := NewValidator(params, 10)
	if err := v.CheckBlock(block, header, NewUtxoSet()); err == nil {
		t.Fatalf("expected error for block without leading coinbase")
	}
}

func TestCheckBlockRejectsMerkleMismatch(t *testing.T) {
	params := chaincfg.RegNetParams()
	cb := coinbase(100, []byte{0x6a})
	block, header := blockWithTxs(t, params, []*wire.MsgTx{cb})
	header.MerkleRoot[0] ^= 0xff

	v, _ := NewValidator(params, 10)
	if err := v.CheckBlock(block, header, NewUtxoSet()); err == nil {
		t.Fatalf("expected merkle mismatch error")
	}
}

func TestMerkleProofRoundTrip(t *testing.T) {
	leaves := []chainhash.Hash{
		chainhash.HashH([]byte{1}),
		chainhash.HashH([]byte{2}),
		chainhash.HashH([]byte{3}),
		chainhash.HashH([]byte{4}),
		chainhash.HashH([]byte{5}),
	}
	root := merkleRootOf(leaves)

	for i, leaf := range leaves {
		proof, err := MerkleProofForTx(leaves, i)
		if err != nil {
			t.Fatalf("MerkleProofForTx(%d): %v", i, err)
		}
		if !VerifyMerkleProof(leaf, proof, root) {
			t.Fatalf("VerifyMerkleProof failed for leaf %d", i)
		}
	}
}

// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/btcnode/node/blockchain/standalone"
	"github.com/btcnode/node/chaincfg"
	"github.com/btcnode/node/chainhash"
	"github.com/btcnode/node/txscript"
	"github.com/btcnode/node/wire"
)

// Validator performs the per-block and per-transaction checks enumerated
// in the node's validation rules: proof of work, merkle root, the single
// leading coinbase rule, P2PKH signature verification, and the
// input-sum-covers-output-sum rule.
type Validator struct {
	params   *chaincfg.Params
	sigCache *txscript.SigCache
}

// NewValidator returns a Validator for params, backed by an ECDSA
// signature verification cache holding up to maxSigCacheEntries entries.
func NewValidator(params *chaincfg.Params, maxSigCacheEntries uint) (*Validator, error) {
	sc, err := txscript.NewSigCache(maxSigCacheEntries)
	if err != nil {
		return nil, err
	}
	return &Validator{params: params, sigCache: sc}, nil
}

// CheckHeader verifies a header's proof of work against the network's
// maximum target. Chain-position checks (parent linkage) are the header
// chain's responsibility.
func (v *Validator) CheckHeader(h *wire.BlockHeader) error {
	if err := standalone.CheckProofOfWork(h.BlockHash(), h.Bits, v.params.PowLimit); err != nil {
		return ruleErr(ErrValidation, err.Error())
	}
	return nil
}

// CheckBlock validates block against header (the already-validated header
// for this height) and utxo (the UTXO view as of the block directly
// preceding it). It does not mutate utxo; the caller applies the block
// separately once validation succeeds.
func (v *Validator) CheckBlock(block *wire.MsgBlock, header *wire.BlockHeader, utxo *UtxoSet) error {
	if err := v.CheckHeader(header); err != nil {
		return err
	}

	if len(block.Transactions) == 0 {
		return ruleErr(ErrValidation, "block has no transactions")
	}

	leaves := make([]chainhash.Hash, len(block.Transactions))
	for i, tx := range block.Transactions {
		leaves[i] = tx.TxHash()
	}
	root := standalone.CalcMerkleRoot(leaves)
	if root != header.MerkleRoot {
		return ruleErr(ErrValidation, "merkle root mismatch")
	}

	for i, tx := range block.Transactions {
		isCoinbase := tx.IsCoinBase()
		if i == 0 && !isCoinbase {
			return ruleErr(ErrValidation, "first transaction in block is not a coinbase")
		}
		if i != 0 && isCoinbase {
			return ruleErr(ErrValidation, "coinbase transaction found outside of block position 0")
		}
		if isCoinbase {
			continue
		}
		if err := v.checkTransaction(tx, utxo); err != nil {
			return err
		}
	}
	return nil
}

// checkTransaction applies the non-coinbase per-transaction checks: every
// input must reference an output present in utxo, P2PKH inputs must carry
// a valid signature, and total input value must be at least total output
// value. Non-P2PKH outputs are not consensus-enforced but do not block
// acceptance, matching the node's role as a participant rather than a
// full validator of every script form.
func (v *Validator) checkTransaction(tx *wire.MsgTx, utxo *UtxoSet) error {
	var totalIn int64
	for i, in := range tx.TxIn {
		entry, ok := utxo.Get(in.PreviousOutPoint)
		if !ok {
			return ruleErr(ErrValidation, "missing UTXO for input "+in.PreviousOutPoint.Hash.String())
		}
		totalIn += entry.Amount

		if txscript.IsPubKeyHashScript(entry.PkScript) {
			if err := txscript.VerifyP2PKHInput(tx, i, entry.PkScript, v.sigCache); err != nil {
				return ruleErr(ErrValidation, err.Error())
			}
		}
	}

	var totalOut int64
	for _, out := range tx.TxOut {
		totalOut += out.Value
	}
	if totalIn < totalOut {
		return ruleErr(ErrValidation, "transaction outputs exceed inputs")
	}
	return nil
}

// MerkleProof is the sibling-hash path and left/right bit-vector proving a
// leaf's inclusion in a merkle tree, per the merkle proof of inclusion
// operation.
type MerkleProof struct {
	Siblings []chainhash.Hash
	IsRight  []bool // IsRight[i] is true when Siblings[i] is the right-hand node
}

// MerkleProofForTx builds the inclusion proof for the transaction at index
// txIndex within a block containing the given ordered transaction hashes.
func MerkleProofForTx(txHashes []chainhash.Hash, txIndex int) (MerkleProof, error) {
	if txIndex < 0 || txIndex >= len(txHashes) {
		return MerkleProof{}, ruleErr(ErrValidation, "transaction index out of range")
	}

	level := make([]chainhash.Hash, len(txHashes))
	copy(level, txHashes)

	var proof MerkleProof
	idx := txIndex
	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}

		var siblingIdx int
		var isRight bool
		if idx%2 == 0 {
			siblingIdx = idx + 1
			isRight = true
		} else {
			siblingIdx = idx - 1
			isRight = false
		}
		proof.Siblings = append(proof.Siblings, level[siblingIdx])
		proof.IsRight = append(proof.IsRight, isRight)

		next := make([]chainhash.Hash, len(level)/2)
		for i := range next {
			left, right := level[2*i], level[2*i+1]
			next[i] = hashPair(&left, &right)
		}
		level = next
		idx /= 2
	}
	return proof, nil
}

// VerifyMerkleProof recomputes the merkle root from leaf and proof and
// reports whether it equals root.
func VerifyMerkleProof(leaf chainhash.Hash, proof MerkleProof, root chainhash.Hash) bool {
	cur := leaf
	for i, sibling := range proof.Siblings {
		if proof.IsRight[i] {
			cur = hashPair(&cur, &sibling)
		} else {
			cur = hashPair(&sibling, &cur)
		}
	}
	return cur == root
}

func hashPair(left, right *chainhash.Hash) chainhash.Hash {
	var buf [2 * chainhash.HashSize]byte
	copy(buf[:chainhash.HashSize], left[:])
	copy(buf[chainhash.HashSize:], right[:])
	return chainhash.DoubleHashH(buf[:])
}

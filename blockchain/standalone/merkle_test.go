// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import (
	"testing"

	"github.com/btcnode/node/chainhash"
)

func leaf(b byte) chainhash.Hash {
	return chainhash.HashH([]byte{b})
}

func TestCalcMerkleRootEmpty(t *testing.T) {
	if got := CalcMerkleRoot(nil); got != (chainhash.Hash{}) {
		t.Fatalf("expected zero hash for empty leaf set, got %v", got)
	}
}

func TestCalcMerkleRootSingle(t *testing.T) {
	l := leaf(1)
	if got := CalcMerkleRoot([]chainhash.Hash{l}); got != l {
		t.Fatalf("single leaf root should equal the leaf itself")
	}
}

func TestCalcMerkleRootOddDuplicatesLast(t *testing.T) {
	leaves := []chainhash.Hash{leaf(1), leaf(2), leaf(3)}
	got := CalcMerkleRoot(leaves)

	// Manually reproduce the duplicate-last-node rule for three leaves.
	level1 := []chainhash.Hash{
		hashMerkleBranches(&leaves[0], &leaves[1]),
		hashMerkleBranches(&leaves[2], &leaves[2]),
	}
	want := hashMerkleBranches(&level1[0], &level1[1])

	if got != want {
		t.Fatalf("odd-leaf merkle root mismatch: got %v want %v", got, want)
	}
}

func TestCalcMerkleRootDeterministic(t *testing.T) {
	leaves := []chainhash.Hash{leaf(1), leaf(2), leaf(3), leaf(4), leaf(5)}
	first := CalcMerkleRoot(leaves)
	second := CalcMerkleRoot(leaves)
	if first != second {
		t.Fatalf("merkle root calculation is not deterministic")
	}
}

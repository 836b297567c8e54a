// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import "github.com/btcnode/node/chainhash"

// hashMerkleBranches takes two hashes, treated as the left and right tree
// nodes, and returns the hash of their concatenation.
func hashMerkleBranches(left, right *chainhash.Hash) chainhash.Hash {
	var buf [2 * chainhash.HashSize]byte
	copy(buf[:chainhash.HashSize], left[:])
	copy(buf[chainhash.HashSize:], right[:])
	return chainhash.DoubleHashH(buf[:])
}

// CalcMerkleRoot creates a merkle tree from the slice of leaf hashes and
// returns the resulting root. It returns the zero hash if given an empty
// slice, and a single leaf's hash unmodified if given a slice with exactly
// one element. When a level has an odd number of nodes, the last node is
// duplicated before hashing, per the canonical rule.
func CalcMerkleRoot(leaves []chainhash.Hash) chainhash.Hash {
	if len(leaves) == 0 {
		return chainhash.Hash{}
	}

	level := make([]chainhash.Hash, len(leaves))
	copy(level, leaves)

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}

		next := make([]chainhash.Hash, len(level)/2)
		for i := range next {
			next[i] = hashMerkleBranches(&level[2*i], &level[2*i+1])
		}
		level = next
	}

	return level[0]
}

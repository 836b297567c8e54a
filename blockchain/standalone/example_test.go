// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone_test

import (
	"fmt"
	"math/big"

	"github.com/btcnode/node/blockchain/standalone"
	"github.com/btcnode/node/chainhash"
)

// This example demonstrates how to convert the compact "bits" in a block
// header which represent the target difficulty to a big integer and
// display it using the typical hex notation.
func ExampleCompactToBig() {
	bits := uint32(0x1d00ffff)
	targetDifficulty := standalone.CompactToBig(bits)

	fmt.Printf("%064x\n", targetDifficulty.Bytes())

	// Output:
	// 00000000ffff0000000000000000000000000000000000000000000000000000
}

// This example demonstrates how to convert a target difficulty into the
// compact "bits" in a block header which represent that target difficulty.
func ExampleBigToCompact() {
	t := "00000000ffff0000000000000000000000000000000000000000000000000000"
	targetDifficulty, success := new(big.Int).SetString(t, 16)
	if !success {
		fmt.Println("invalid target difficulty")
		return
	}
	bits := standalone.BigToCompact(targetDifficulty)

	fmt.Println(bits)

	// Output:
	// 486604799
}

// This example demonstrates calculating a merkle root from a slice of leaf
// hashes.
func ExampleCalcMerkleRoot() {
	leaves := make([]chainhash.Hash, 3)
	for i := range leaves {
		leaves[i] = chainhash.HashH([]byte{byte(i)})
	}

	merkleRoot := standalone.CalcMerkleRoot(leaves)
	fmt.Printf("non-zero root: %v\n", merkleRoot != chainhash.Hash{})

	// Output:
	// non-zero root: true
}

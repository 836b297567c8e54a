// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package standalone provides standalone proof-of-work and merkle-root
// functions that can be run without a full validation context.
package standalone

import (
	"math/big"

	"github.com/btcnode/node/chainhash"
)

// CompactToBig converts a compact representation of a whole number N used
// in block headers into an actual number.  The representation is similar
// to IEEE754 floating point numbers: a 3-byte mantissa, an 8-bit exponent,
// and a sign bit packed into a 32-bit unsigned integer.
func CompactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	isNegative := compact&0x00800000 != 0
	exponent := uint(compact >> 24)

	var bn *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		bn = big.NewInt(int64(mantissa))
	} else {
		bn = big.NewInt(int64(mantissa))
		bn.Lsh(bn, 8*(exponent-3))
	}

	if isNegative {
		bn = bn.Neg(bn)
	}
	return bn
}

// BigToCompact converts a whole number N to a compact representation using
// an unsigned 32-bit number. The compact representation only provides 23
// bits of precision, so values larger than (2^23 - 1) only encode the
// most significant digits of the number.
func BigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}

	var mantissa uint32
	exponent := uint(len(n.Bytes()))
	if exponent <= 3 {
		mantissa = uint32(n.Bits()[0])
		mantissa <<= 8 * (3 - exponent)
	} else {
		tn := new(big.Int).Set(n)
		mantissa = uint32(tn.Rsh(tn, 8*(exponent-3)).Bits()[0])
	}

	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	compact := uint32(exponent<<24) | mantissa
	if n.Sign() < 0 {
		compact |= 0x00800000
	}
	return compact
}

// HashToBig converts a chainhash.Hash into a big.Int treating the hash as a
// little-endian unsigned 256-bit number.
func HashToBig(hash chainhash.Hash) *big.Int {
	buf := hash
	blen := len(buf)
	for i := 0; i < blen/2; i++ {
		buf[i], buf[blen-1-i] = buf[blen-1-i], buf[i]
	}
	return new(big.Int).SetBytes(buf[:])
}

// CheckProofOfWork returns whether hash satisfies the target difficulty
// described by the compact representation bits, provided bits describes a
// target that itself does not exceed powLimit.
func CheckProofOfWork(hash chainhash.Hash, bits uint32, powLimit *big.Int) error {
	target := CompactToBig(bits)
	if target.Sign() <= 0 {
		return ruleError("block target difficulty is too low")
	}
	if target.Cmp(powLimit) > 0 {
		return ruleError("block target difficulty exceeds the network maximum")
	}

	hashNum := HashToBig(hash)
	if hashNum.Cmp(target) > 0 {
		return ruleError("block hash does not satisfy the claimed target difficulty")
	}
	return nil
}

type ruleError string

func (e ruleError) Error() string { return string(e) }

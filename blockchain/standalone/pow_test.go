// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import (
	"math/big"
	"testing"

	"github.com/btcnode/node/chainhash"
)

func TestCompactRoundTrip(t *testing.T) {
	tests := []uint32{0x1d00ffff, 0x1b0404cb, 0x207fffff}
	for _, bits := range tests {
		n := CompactToBig(bits)
		got := BigToCompact(n)
		if got != bits {
			t.Errorf("round trip for %x: got %x", bits, got)
		}
	}
}

func TestCheckProofOfWork(t *testing.T) {
	powLimit := CompactToBig(0x207fffff)
	easyBits := uint32(0x207fffff)

	// The zero hash trivially satisfies the easiest possible target.
	if err := CheckProofOfWork(chainhash.Hash{}, easyBits, powLimit); err != nil {
		t.Fatalf("expected zero hash to satisfy target: %v", err)
	}

	// A hash of all 0xff bytes exceeds any sane target.
	var maxHash chainhash.Hash
	for i := range maxHash {
		maxHash[i] = 0xff
	}
	if err := CheckProofOfWork(maxHash, easyBits, powLimit); err == nil {
		t.Fatalf("expected max hash to fail target check")
	}

	// A target above the network maximum is rejected outright.
	tooEasy := BigToCompact(new(big.Int).Lsh(powLimit, 8))
	if err := CheckProofOfWork(chainhash.Hash{}, tooEasy, powLimit); err == nil {
		t.Fatalf("expected target exceeding network maximum to be rejected")
	}
}

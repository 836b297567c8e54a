// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "testing"

// TestGenesisBlockHash verifies that each network's genesis block produces
// a merkle root and block hash consistent with its own serialization.
func TestGenesisBlockHash(t *testing.T) {
	tests := []struct {
		name   string
		params *Params
	}{
		{"mainnet", MainNetParams()},
		{"testnet3", TestNet3Params()},
		{"regtest", RegNetParams()},
	}

	for _, tc := range tests {
		gb := tc.params.GenesisBlock
		wantRoot := gb.Transactions[0].TxHash()
		if gb.Header.MerkleRoot != wantRoot {
			t.Errorf("%s: genesis merkle root mismatch: got %s want %s",
				tc.name, gb.Header.MerkleRoot, wantRoot)
		}
		if tc.params.GenesisHash != gb.BlockHash() {
			t.Errorf("%s: cached genesis hash does not match computed hash", tc.name)
		}
	}
}

// TestPowLimitBits verifies the compact-form PoW limit round-trips through
// bigToCompact consistently with the big.Int value stored alongside it.
func TestPowLimitBits(t *testing.T) {
	for _, params := range []*Params{MainNetParams(), TestNet3Params(), RegNetParams()} {
		if got := bigToCompact(params.PowLimit); got != params.PowLimitBits {
			t.Errorf("%s: PowLimitBits = %x, want %x", params.Name, got, params.PowLimitBits)
		}
	}
}

func TestLatestCheckpoint(t *testing.T) {
	params := MainNetParams()
	cp := params.LatestCheckpoint()
	if cp == nil || cp.Height != params.Checkpoints[len(params.Checkpoints)-1].Height {
		t.Fatalf("LatestCheckpoint returned unexpected checkpoint: %+v", cp)
	}

	empty := &Params{}
	if empty.LatestCheckpoint() != nil {
		t.Fatalf("LatestCheckpoint on empty params should be nil")
	}
}

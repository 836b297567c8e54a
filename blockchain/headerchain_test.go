// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"
	"testing"
	"time"

	"github.com/btcnode/node/blockchain/standalone"
	"github.com/btcnode/node/chaincfg"
	"github.com/btcnode/node/wire"
)

// easyParams returns test network parameters with the easiest possible
// difficulty so headers can be mined quickly in tests.
func easyParams() *chaincfg.Params {
	p := chaincfg.RegNetParams()
	return p
}

// mineHeader finds a nonce satisfying the network's PoW limit for the given
// header. Since PowLimit is maximal on regtest this typically succeeds
// immediately.
func mineHeader(h *wire.BlockHeader, powLimit *big.Int) {
	for nonce := uint32(0); ; nonce++ {
		h.Nonce = nonce
		if standalone.CheckProofOfWork(h.BlockHash(), h.Bits, powLimit) == nil {
			return
		}
	}
}

func buildChain(t *testing.T, params *chaincfg.Params, n int) *HeaderChain {
	t.Helper()
	hc := NewHeaderChain(params)

	tip := params.GenesisBlock.Header.BlockHash()
	for i := 0; i < n; i++ {
		h := &wire.BlockHeader{
			Version:    1,
			PrevBlock:  tip,
			MerkleRoot: tip,
			Timestamp:  time.Unix(int64(1600000000+i*600), 0),
			Bits:       params.PowLimitBits,
		}
		mineHeader(h, params.PowLimit)

		accepted, _, err := hc.ExtendHeaders([]*wire.BlockHeader{h})
		if err != nil {
			t.Fatalf("ExtendHeaders: %v", err)
		}
		if accepted != 1 {
			t.Fatalf("expected 1 header accepted, got %d", accepted)
		}
		tip = h.BlockHash()
	}
	return hc
}

func TestHeaderChainExtend(t *testing.T) {
	params := easyParams()
	hc := buildChain(t, params, 5)

	if got := hc.Height(); got != 5 {
		t.Fatalf("Height() = %d, want 5", got)
	}
}

func TestHeaderChainRejectsBadParent(t *testing.T) {
	params := easyParams()
	hc := NewHeaderChain(params)

	h := &wire.BlockHeader{
		Version:   1,
		PrevBlock: params.GenesisHash, // stale on purpose after mismatch below
		Bits:      params.PowLimitBits,
	}
	h.PrevBlock[0] ^= 0xff // corrupt so it no longer matches the tip
	mineHeader(h, params.PowLimit)

	if _, _, err := hc.ExtendHeaders([]*wire.BlockHeader{h}); err == nil {
		t.Fatalf("expected ExtendHeaders to reject a header with the wrong parent")
	}
	if hc.Height() != 0 {
		t.Fatalf("rejected batch must not mutate the chain")
	}
}

func TestHeaderChainRejectsBadPoW(t *testing.T) {
	params := chaincfg.MainNetParams()
	hc := NewHeaderChain(params)

	// mainnet's PowLimitBits is far from trivial; an unmined header will
	// essentially never satisfy it.
	h := &wire.BlockHeader{
		Version:   1,
		PrevBlock: params.GenesisHash,
		Bits:      params.PowLimitBits,
		Nonce:     1,
	}
	if _, _, err := hc.ExtendHeaders([]*wire.BlockHeader{h}); err == nil {
		t.Fatalf("expected ExtendHeaders to reject a header failing PoW")
	}
}

func TestBlockLocatorIncludesGenesis(t *testing.T) {
	params := easyParams()
	hc := buildChain(t, params, 20)

	locator := hc.BlockLocator()
	last := *locator[len(locator)-1]
	if last != params.GenesisHash {
		t.Fatalf("block locator must terminate at genesis")
	}
	if *locator[0] != hc.TipHash() {
		t.Fatalf("block locator must start at the tip")
	}
}

func TestReplayPrefix(t *testing.T) {
	params := easyParams()
	built := buildChain(t, params, 10)
	prefix := built.PersistablePrefix(10)

	hc := NewHeaderChain(params)
	if err := hc.ReplayPrefix(toPtrSlice(prefix)); err != nil {
		t.Fatalf("ReplayPrefix: %v", err)
	}
	if hc.Height() != 10 {
		t.Fatalf("Height() after replay = %d, want 10", hc.Height())
	}
	if hc.TipHash() != built.TipHash() {
		t.Fatalf("replayed chain tip does not match source chain tip")
	}
}

func toPtrSlice(hs []wire.BlockHeader) []*wire.BlockHeader {
	out := make([]*wire.BlockHeader, len(hs))
	for i := range hs {
		out[i] = &hs[i]
	}
	return out
}

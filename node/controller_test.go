// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"net"
	"testing"
	"time"

	"github.com/btcnode/node/chaincfg"
	"github.com/btcnode/node/chainhash"
	"github.com/btcnode/node/config"
	"github.com/btcnode/node/peer"
	"github.com/btcnode/node/wire"
	"github.com/davecgh/go-spew/spew"
)

// mineHeader brute-forces h.Nonce until its hash's top bit is clear, which
// satisfies regnet's near-maximal powLimit (2^255-1) in a handful of tries.
func mineHeader(h *wire.BlockHeader) {
	for nonce := uint32(0); ; nonce++ {
		h.Nonce = nonce
		hash := h.BlockHash()
		if hash[len(hash)-1]&0x80 == 0 {
			return
		}
	}
}

// buildRemoteChain mines n single-coinbase blocks atop params' genesis and
// returns their headers and full block bodies in height order.
func buildRemoteChain(params *chaincfg.Params, n int) ([]*wire.BlockHeader, []*wire.MsgBlock) {
	headers := make([]*wire.BlockHeader, 0, n)
	blocks := make([]*wire.MsgBlock, 0, n)
	tip := params.GenesisHash
	ts := time.Unix(1700000000, 0)

	for i := 0; i < n; i++ {
		cb := &wire.MsgTx{
			Version: 1,
			TxIn:    []*wire.TxIn{{PreviousOutPoint: wire.OutPoint{Index: wire.CoinbaseIndex}}},
			TxOut:   []*wire.TxOut{{Value: 50_0000_0000, PkScript: []byte{0x6a}}},
		}
		h := &wire.BlockHeader{
			Version:    1,
			PrevBlock:  tip,
			MerkleRoot: cb.TxHash(),
			Timestamp:  ts,
			Bits:       params.PowLimitBits,
		}
		mineHeader(h)

		headers = append(headers, h)
		blocks = append(blocks, &wire.MsgBlock{Header: *h, Transactions: []*wire.MsgTx{cb}})
		tip = h.BlockHash()
		ts = ts.Add(10 * time.Minute)
	}
	return headers, blocks
}

// startRemoteNode runs a listener that accepts a single inbound peer
// session and serves getheaders with headers and getdata with the matching
// blocks, standing in for a fully-synced remote node during header-first
// IBD and the subsequent block download.
func startRemoteNode(t *testing.T, params *chaincfg.Params, headers []*wire.BlockHeader, blocks []*wire.MsgBlock) string {
	t.Helper()

	blocksByHash := make(map[chainhash.Hash]*wire.MsgBlock, len(blocks))
	for _, b := range blocks {
		blocksByHash[b.Header.BlockHash()] = b
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		cfg := &peer.Config{
			ChainParams:     params,
			ProtocolVersion: wire.ProtocolVersion,
			UserAgent:       "/test-remote:0.1.0/",
			ConnectTimeout:  2 * time.Second,
		}
		cfg.Listeners.OnGetHeaders = func(p *peer.Peer, msg *wire.MsgGetHeaders) {
			resp := wire.NewMsgHeaders()
			for _, h := range headers {
				_ = resp.AddBlockHeader(h)
			}
			_ = p.QueueMessage(resp)
		}
		cfg.Listeners.OnGetData = func(p *peer.Peer, msg *wire.MsgGetData) {
			for _, inv := range msg.InvList {
				if block, ok := blocksByHash[inv.Hash]; ok {
					_ = p.QueueMessage(block)
				}
			}
		}
		p := peer.NewInboundPeer(cfg, conn)
		if err := p.Accept(); err != nil {
			return
		}
		p.WaitForDisconnect()
	}()

	return ln.Addr().String()
}

func TestControllerRunsHeaderAndBlockSync(t *testing.T) {
	params := chaincfg.RegNetParams()
	headers, blocks := buildRemoteChain(params, 4)
	addr := startRemoteNode(t, params, headers, blocks)

	cfg := &config.Config{
		NumberOfNodes:          1,
		ProtocolVersion:        wire.ProtocolVersion,
		UserAgent:              "/test-node:0.1.0/",
		ConnectTimeout:         2,
		BlocksDownloadPerNode:  2,
		HeightFirstBlock:       1,
		DownloadFromSingleNode: true,
	}

	ctrl, err := New(cfg, params, []string{addr}, 100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctrl.Conns.Maintain()
	if ctrl.Conns.Count() != 1 {
		t.Fatalf("expected one outbound session, got %d", ctrl.Conns.Count())
	}

	if err := ctrl.runHeaderSync(); err != nil {
		t.Fatalf("runHeaderSync: %v", err)
	}
	if ctrl.Chain.Height() != int64(len(headers)) {
		t.Fatalf("chain height = %d, want %d", ctrl.Chain.Height(), len(headers))
	}

	if err := ctrl.runBlockSync(); err != nil {
		t.Fatalf("runBlockSync: %v", err)
	}

	for i, b := range blocks {
		op := wire.OutPoint{Hash: b.Transactions[0].TxHash(), Index: 0}
		if !ctrl.Utxo.Contains(op) {
			t.Fatalf("expected UTXO for block %d's coinbase to be applied, outpoint: %s",
				i, spew.Sdump(op))
		}
	}
}

func TestPhaseString(t *testing.T) {
	cases := map[Phase]string{
		PhaseStarting:     "starting",
		PhaseHeaderSync:   "header-sync",
		PhaseBlockSync:    "block-sync",
		PhaseLive:         "live",
		PhaseShuttingDown: "shutting-down",
	}
	for phase, want := range cases {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}

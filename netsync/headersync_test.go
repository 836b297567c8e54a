// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netsync

import (
	"net"
	"testing"
	"time"

	"github.com/btcnode/node/blockchain"
	"github.com/btcnode/node/blockchain/standalone"
	"github.com/btcnode/node/chaincfg"
	"github.com/btcnode/node/event"
	"github.com/btcnode/node/peer"
	"github.com/btcnode/node/wire"
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

func TestHeaderSyncWith(t *testing.T) {
	params := chaincfg.RegNetParams()
	chain := blockchain.NewHeaderChain(params)
	bus := event.New()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	h1 := wire.BlockHeader{
		Version:   1,
		PrevBlock: params.GenesisHash,
		Timestamp: time.Unix(1600000000, 0),
		Bits:      params.PowLimitBits,
	}
	mineHeader(&h1)

	h2 := wire.BlockHeader{
		Version:   1,
		PrevBlock: h1.BlockHash(),
		Timestamp: time.Unix(1600000600, 0),
		Bits:      params.PowLimitBits,
	}
	mineHeader(&h2)

	for _, h := range []wire.BlockHeader{h1, h2} {
		if err := standalone.CheckProofOfWork(h.BlockHash(), h.Bits, params.PowLimit); err != nil {
			t.Fatalf("mined header fails PoW check: %v", err)
		}
	}

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		cfg := &peer.Config{
			ChainParams:     params,
			ProtocolVersion: wire.ProtocolVersion,
			UserAgent:       "/test-server:0.1.0/",
			ConnectTimeout:  2 * time.Second,
		}
		cfg.Listeners.OnGetHeaders = func(p *peer.Peer, msg *wire.MsgGetHeaders) {
			resp := wire.NewMsgHeaders()
			_ = resp.AddBlockHeader(&h1)
			_ = resp.AddBlockHeader(&h2)
			_ = p.QueueMessage(resp)
		}
		p := peer.NewInboundPeer(cfg, conn)
		if err := p.Accept(); err != nil {
			return
		}
		p.WaitForDisconnect()
	}()

	headersCh := make(chan *wire.MsgHeaders, 4)
	clientCfg := &peer.Config{
		ChainParams:     params,
		ProtocolVersion: wire.ProtocolVersion,
		UserAgent:       "/test-client:0.1.0/",
		ConnectTimeout:  2 * time.Second,
	}
	clientCfg.Listeners.OnHeaders = func(p *peer.Peer, msg *wire.MsgHeaders) {
		headersCh <- msg
	}
	client := peer.NewOutboundPeer(clientCfg, ln.Addr().String())
	if err := client.Connect(); err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer client.Disconnect(nil)

	hs := NewHeaderSync(chain, bus)
	hs.ResponseTimeout = 3 * time.Second
	if err := hs.SyncWith(client, headersCh); err != nil {
		t.Fatalf("SyncWith: %v", err)
	}

	if chain.Height() != 2 {
		t.Fatalf("chain height = %d, want 2", chain.Height())
	}
	if chain.TipHash() != h2.BlockHash() {
		t.Fatalf("tip hash mismatch after sync")
	}
}

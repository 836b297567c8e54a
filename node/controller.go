// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package node wires the header chain, UTXO set, mempool, peer pool, and
// event bus together into the controller's top-level state machine.
package node

import (
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/btcnode/node/addrmgr"
	"github.com/btcnode/node/blockchain"
	"github.com/btcnode/node/chaincfg"
	"github.com/btcnode/node/config"
	"github.com/btcnode/node/connmgr"
	"github.com/btcnode/node/event"
	"github.com/btcnode/node/mempool"
	"github.com/btcnode/node/netsync"
	"github.com/btcnode/node/peer"
	"github.com/btcnode/node/wallet"
	"github.com/btcnode/node/wire"
	"github.com/decred/go-socks/socks"
)

// Phase is the controller's position in its top-level state machine.
type Phase int32

const (
	PhaseStarting Phase = iota
	PhaseHeaderSync
	PhaseBlockSync
	PhaseLive
	PhaseShuttingDown
)

func (p Phase) String() string {
	switch p {
	case PhaseStarting:
		return "starting"
	case PhaseHeaderSync:
		return "header-sync"
	case PhaseBlockSync:
		return "block-sync"
	case PhaseLive:
		return "live"
	case PhaseShuttingDown:
		return "shutting-down"
	default:
		return "unknown"
	}
}

// Controller owns every piece of shared node state and mediates the
// header-chain -> UTXO -> mempool lock order by never holding more than
// one of those components' locks at a time itself; each component
// enforces its own internal locking.
type Controller struct {
	cfg    *config.Config
	params *chaincfg.Params

	Chain     *blockchain.HeaderChain
	Utxo      *blockchain.UtxoSet
	Mempool   *mempool.TxPool
	Validator *blockchain.Validator
	Bus       *event.Bus
	Addrs     *addrmgr.Manager
	Conns     *connmgr.Manager
	Wallet    *wallet.Wallet

	phase int32 // atomic Phase

	headersCh chan headersFromPeer
	blockCh   chan netsync.BlockFromPeer
}

type headersFromPeer struct {
	p   *peer.Peer
	msg *wire.MsgHeaders
}

// New builds a controller for params, with a fresh header chain, UTXO
// set, mempool, and event bus, and an address manager seeded from addrs
// (the caller's resolved DNS-seed or static IP list).
func New(cfg *config.Config, params *chaincfg.Params, addrs []string, maxSigCacheEntries uint) (*Controller, error) {
	validator, err := blockchain.NewValidator(params, maxSigCacheEntries)
	if err != nil {
		return nil, fmt.Errorf("node: %w", err)
	}

	chain := blockchain.NewHeaderChain(params)
	utxo := blockchain.NewUtxoSet()
	pool := mempool.New()
	bus := event.New()
	am := addrmgr.New(addrs)

	c := &Controller{
		cfg:       cfg,
		params:    params,
		Chain:     chain,
		Utxo:      utxo,
		Mempool:   pool,
		Validator: validator,
		Bus:       bus,
		Addrs:     am,
		headersCh: make(chan headersFromPeer, 16),
		blockCh:   make(chan netsync.BlockFromPeer, 256),
	}

	c.Conns = connmgr.New(connmgr.Config{
		TargetOutbound: cfg.NumberOfNodes,
		NewPeer:        c.newPeer,
	}, am)

	c.Wallet = wallet.New(utxo, pool, bus, c.broadcastTx)

	return c, nil
}

// Phase returns the controller's current top-level state.
func (c *Controller) Phase() Phase { return Phase(atomic.LoadInt32(&c.phase)) }

func (c *Controller) setPhase(p Phase) { atomic.StoreInt32(&c.phase, int32(p)) }

// proxyDialer builds a Dial func that routes outbound connections through
// a SOCKS5 proxy when cfg.Proxy is set, or nil to fall through to peer's
// own plain net.Dialer.
func proxyDialer(cfg *config.Config) func(network, addr string, timeout time.Duration) (net.Conn, error) {
	if cfg.Proxy == "" {
		return nil
	}
	p := &socks.Proxy{
		Addr:     cfg.Proxy,
		Username: cfg.ProxyUser,
		Password: cfg.ProxyPass,
	}
	return func(network, addr string, timeout time.Duration) (net.Conn, error) {
		return p.Dial(network, addr)
	}
}

func (c *Controller) newPeer(addr string) *peer.Peer {
	cfg := &peer.Config{
		ChainParams:     c.params,
		ProtocolVersion: c.cfg.ProtocolVersion,
		UserAgent:       c.cfg.UserAgent,
		ConnectTimeout:  time.Duration(c.cfg.ConnectTimeout) * time.Second,
		NewestBlock:     func() (int32, error) { return int32(c.Chain.Height()), nil },
		Dial:            proxyDialer(c.cfg),
	}
	cfg.Listeners.OnHeaders = func(p *peer.Peer, msg *wire.MsgHeaders) {
		select {
		case c.headersCh <- headersFromPeer{p: p, msg: msg}:
		default:
		}
	}
	cfg.Listeners.OnBlock = func(p *peer.Peer, msg *wire.MsgBlock) {
		select {
		case c.blockCh <- netsync.BlockFromPeer{Addr: p.Addr(), Block: msg}:
		default:
		}
	}
	cfg.Listeners.OnDisconnect = func(p *peer.Peer, err error) {
		c.Conns.Remove(p.Addr(), err)
	}
	return peer.NewOutboundPeer(cfg, addr)
}

func (c *Controller) broadcastTx(tx *wire.MsgTx) error {
	// Relaying to the network is advertising the tx via inv to every
	// Ready peer; the connection manager's accessors are sufficient
	// since this node does not maintain a separate announcement queue.
	inv := wire.NewMsgInv()
	hash := tx.TxHash()
	_ = inv.AddInvVect(wire.NewInvVect(wire.InvTypeTx, &hash))
	for i := 0; i < c.Conns.Count(); i++ {
		p := c.Conns.NextForWork(1 << 30)
		if p == nil {
			return nil
		}
		_ = p.QueueMessage(inv)
		c.Conns.WorkDone(p.Addr())
	}
	return nil
}

// Run drives the controller through Starting -> HeaderSync -> BlockSync ->
// Live. It returns early with the error if header or block sync fails.
// Once Live it processes header announcements for as long as the shared
// headers channel stays open; nothing closes that channel, so Shutdown
// does not make Run return.
func (c *Controller) Run() error {
	c.setPhase(PhaseStarting)
	c.Conns.Maintain()

	c.setPhase(PhaseHeaderSync)
	if err := c.runHeaderSync(); err != nil {
		return err
	}

	c.setPhase(PhaseBlockSync)
	if err := c.runBlockSync(); err != nil {
		return err
	}

	c.setPhase(PhaseLive)
	return c.runLive()
}

func (c *Controller) runHeaderSync() error {
	p := c.Conns.NextForWork(1 << 30)
	if p == nil {
		return fmt.Errorf("node: no peer available for header sync")
	}

	hs := netsync.NewHeaderSync(c.Chain, c.Bus)
	hs.PinSingle = c.cfg.DownloadFromSingleNode

	for {
		ch := make(chan *wire.MsgHeaders, 4)
		go c.forwardHeaders(p, ch)
		err := hs.SyncWith(p, ch)
		if err == nil {
			break
		}
		if hs.PinSingle {
			return err
		}
		p.Disconnect(err)
		p = c.Conns.NextForWork(1 << 30)
		if p == nil {
			return fmt.Errorf("node: header sync has no peer left to reassign to: %w", err)
		}
	}

	// Announce headers going forward rather than advertising new tips
	// via inv.
	_ = p.QueueMessage(wire.NewMsgSendHeaders())
	return nil
}

// forwardHeaders relays headersCh entries addressed to p into ch, so
// HeaderSync.SyncWith can wait on a peer-specific channel despite the
// controller's single shared headersCh.
func (c *Controller) forwardHeaders(p *peer.Peer, ch chan<- *wire.MsgHeaders) {
	for hp := range c.headersCh {
		if hp.p != p {
			continue
		}
		select {
		case ch <- hp.msg:
		default:
		}
		return
	}
}

func (c *Controller) runBlockSync() error {
	first, err := c.firstDownloadHeight()
	if err != nil {
		return err
	}

	d := netsync.NewBlockDownloader(c.Chain, c.Utxo, c.Mempool, c.Conns, c.Bus, first, c.cfg.BlocksDownloadPerNode)
	return d.Run(c.blockCh)
}

func (c *Controller) firstDownloadHeight() (int64, error) {
	if c.cfg.HeightFirstBlock >= 0 {
		return c.cfg.HeightFirstBlock, nil
	}
	date, err := c.cfg.FirstBlockDate()
	if err != nil {
		return 0, err
	}
	height, _ := c.Chain.HeightAtOrAfterTime(date.Unix())
	return height, nil
}

func (c *Controller) runLive() error {
	for hp := range c.headersCh {
		if _, _, err := c.Chain.ExtendHeaders(hp.msg.Headers); err != nil {
			hp.p.Disconnect(err)
			c.Bus.Publish(event.Event{Kind: event.ErrorEvent, ErrKind: "Validation", Detail: err.Error()})
			continue
		}
		c.Bus.Publish(event.Event{Kind: event.HeaderSyncProgress, Height: c.Chain.Height()})
	}
	return nil
}

// Shutdown sets the controller's phase to ShuttingDown. It does not
// disconnect peer sessions, drain their outbound queues, or stop Run.
func (c *Controller) Shutdown() {
	c.setPhase(PhaseShuttingDown)
}

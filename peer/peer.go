// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package peer implements one peer-to-peer connection's handshake state
// machine, send/receive loops, and message dispatch.
package peer

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/btcnode/node/chaincfg"
	"github.com/btcnode/node/wire"
)

// randomNonce returns a cryptographically random nonce for the version
// message's self-connection check.
func randomNonce() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b[:])
}

// State is a peer session's position in the handshake/lifecycle state
// machine: Init -> SentVersion -> RecvVersion -> SentVerack -> Ready, with
// Closed reachable from any state.
type State int32

const (
	StateInit State = iota
	StateSentVersion
	StateRecvVersion
	StateSentVerack
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateSentVersion:
		return "sent-version"
	case StateRecvVersion:
		return "recv-version"
	case StateSentVerack:
		return "sent-verack"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Listeners is the table of callbacks invoked as messages arrive on a
// Ready peer. Each is optional; a nil listener means the message is
// processed internally (ping/pong, handshake) but not surfaced further.
type Listeners struct {
	OnVersion    func(p *Peer, msg *wire.MsgVersion)
	OnVerAck     func(p *Peer)
	OnHeaders    func(p *Peer, msg *wire.MsgHeaders)
	OnGetHeaders func(p *Peer, msg *wire.MsgGetHeaders)
	OnBlock      func(p *Peer, msg *wire.MsgBlock)
	OnTx         func(p *Peer, msg *wire.MsgTx)
	OnInv        func(p *Peer, msg *wire.MsgInv)
	OnGetData    func(p *Peer, msg *wire.MsgGetData)
	OnNotFound   func(p *Peer, msg *wire.MsgNotFound)
	OnGetBlocks  func(p *Peer, msg *wire.MsgGetBlocks)
	// OnDisconnect fires once, when the peer transitions to Closed.
	OnDisconnect func(p *Peer, err error)
}

// Config carries everything a Peer needs to perform the handshake and
// dispatch messages, independent of any particular connection.
type Config struct {
	ChainParams      *chaincfg.Params
	ProtocolVersion  uint32
	Services         wire.ServiceFlag
	UserAgent        string
	Listeners        Listeners
	ConnectTimeout   time.Duration // default 5s if zero
	OutboundQueueSize int          // default 100 if zero

	// NewestBlock reports the current header chain tip, used to populate
	// the version message's start-height.
	NewestBlock func() (height int32, err error)

	// Dial opens an outbound connection. Defaults to a plain net.Dialer;
	// callers set this to a SOCKS5 proxy's Dial method to route outbound
	// peer connections through a proxy.
	Dial func(network, addr string, timeout time.Duration) (net.Conn, error)
}

func (cfg *Config) dial(network, addr string) (net.Conn, error) {
	if cfg.Dial != nil {
		return cfg.Dial(network, addr, cfg.connectTimeout())
	}
	dialer := net.Dialer{Timeout: cfg.connectTimeout()}
	return dialer.Dial(network, addr)
}

func (cfg *Config) connectTimeout() time.Duration {
	if cfg.ConnectTimeout > 0 {
		return cfg.ConnectTimeout
	}
	return 5 * time.Second
}

func (cfg *Config) outboundQueueSize() int {
	if cfg.OutboundQueueSize > 0 {
		return cfg.OutboundQueueSize
	}
	return 100
}

// Peer represents a single connection to a remote node together with its
// negotiated handshake parameters and outbound send queue.
type Peer struct {
	cfg  *Config
	conn net.Conn

	inbound bool
	addr    string

	state int32 // atomic State

	protocolVersion uint32
	services        wire.ServiceFlag
	userAgent       string
	lastBlock       int32

	sendQueue chan wire.Message
	quit      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	handshakeDone chan error
}

// NewOutboundPeer creates a Peer that will initiate the handshake once
// Connect is called.
func NewOutboundPeer(cfg *Config, addr string) *Peer {
	return &Peer{
		cfg:           cfg,
		inbound:       false,
		addr:          addr,
		sendQueue:     make(chan wire.Message, cfg.outboundQueueSize()),
		quit:          make(chan struct{}),
		handshakeDone: make(chan error, 1),
	}
}

// NewInboundPeer wraps an already-accepted connection; the handshake
// begins by waiting for the remote's version message.
func NewInboundPeer(cfg *Config, conn net.Conn) *Peer {
	return &Peer{
		cfg:           cfg,
		inbound:       true,
		addr:          conn.RemoteAddr().String(),
		conn:          conn,
		sendQueue:     make(chan wire.Message, cfg.outboundQueueSize()),
		quit:          make(chan struct{}),
		handshakeDone: make(chan error, 1),
	}
}

// State returns the peer's current lifecycle state.
func (p *Peer) State() State { return State(atomic.LoadInt32(&p.state)) }

func (p *Peer) setState(s State) { atomic.StoreInt32(&p.state, int32(s)) }

// Addr returns the remote address string this peer connects to or from.
func (p *Peer) Addr() string { return p.addr }

// ProtocolVersion returns the negotiated protocol version; valid once
// State() is StateReady or later.
func (p *Peer) ProtocolVersion() uint32 { return p.protocolVersion }

// Services returns the remote's advertised service flags.
func (p *Peer) Services() wire.ServiceFlag { return p.services }

// UserAgent returns the remote's advertised user agent string.
func (p *Peer) UserAgent() string { return p.userAgent }

// LastBlock returns the remote's reported chain height at handshake time.
func (p *Peer) LastBlock() int32 { return p.lastBlock }

// Connect dials an outbound peer, performs the handshake, and blocks until
// it completes, times out, or fails. On success the peer is left in
// StateReady with its read/write loops running.
func (p *Peer) Connect() error {
	conn, err := p.cfg.dial("tcp", p.addr)
	if err != nil {
		return fmt.Errorf("peer: dial %s: %w", p.addr, err)
	}
	p.conn = conn

	p.wg.Add(2)
	go p.readLoop()
	go p.writeLoop()

	if err := p.sendVersion(); err != nil {
		p.Disconnect(err)
		return err
	}
	p.setState(StateSentVersion)

	select {
	case err := <-p.handshakeDone:
		return err
	case <-time.After(p.cfg.connectTimeout()):
		err := fmt.Errorf("peer: handshake with %s timed out", p.addr)
		p.Disconnect(err)
		return err
	}
}

// Accept starts an inbound peer's read/write loops and waits for the
// handshake, which begins when the remote's version message arrives.
func (p *Peer) Accept() error {
	p.wg.Add(2)
	go p.readLoop()
	go p.writeLoop()

	select {
	case err := <-p.handshakeDone:
		return err
	case <-time.After(p.cfg.connectTimeout()):
		err := fmt.Errorf("peer: handshake from %s timed out", p.addr)
		p.Disconnect(err)
		return err
	}
}

func (p *Peer) sendVersion() error {
	height := int32(0)
	if p.cfg.NewestBlock != nil {
		h, err := p.cfg.NewestBlock()
		if err == nil {
			height = h
		}
	}

	me := wire.NetAddress{Services: p.cfg.Services}
	you := wire.NetAddress{}
	msg := wire.NewMsgVersion(&me, &you, randomNonce(), height)
	msg.ProtocolVersion = int32(p.cfg.ProtocolVersion)
	msg.Services = p.cfg.Services
	msg.UserAgent = p.cfg.UserAgent

	return p.queueMessage(msg)
}

// QueueMessage enqueues msg on the outbound queue, which the write loop
// drains in every state, so a message queued before the handshake has
// finished is sent at once rather than held until Ready. It fails once
// the peer is Closed, and blocks if the outbound queue is full, providing the cooperative
// backpressure described by the send queue's bounded-channel contract.
func (p *Peer) QueueMessage(msg wire.Message) error {
	if p.State() == StateClosed {
		return fmt.Errorf("peer: %s is closed", p.addr)
	}
	return p.queueMessage(msg)
}

func (p *Peer) queueMessage(msg wire.Message) error {
	select {
	case p.sendQueue <- msg:
		return nil
	case <-p.quit:
		return fmt.Errorf("peer: %s is shutting down", p.addr)
	}
}

func (p *Peer) writeLoop() {
	defer p.wg.Done()
	for {
		select {
		case msg := <-p.sendQueue:
			if err := wire.WriteMessage(p.conn, msg, p.cfg.ProtocolVersion, p.cfg.ChainParams.Net); err != nil {
				p.Disconnect(err)
				return
			}
		case <-p.quit:
			return
		}
	}
}

func (p *Peer) readLoop() {
	defer p.wg.Done()
	for {
		msg, _, err := wire.ReadMessage(p.conn, p.cfg.ProtocolVersion, p.cfg.ChainParams.Net)
		if err != nil {
			p.Disconnect(err)
			return
		}
		if err := p.handleMessage(msg); err != nil {
			p.Disconnect(err)
			return
		}
		select {
		case <-p.quit:
			return
		default:
		}
	}
}

func (p *Peer) handleMessage(msg wire.Message) error {
	state := p.State()

	switch m := msg.(type) {
	case *wire.MsgVersion:
		if state != StateInit && state != StateSentVersion {
			return fmt.Errorf("peer: unexpected version message in state %s", state)
		}
		if p.inbound {
			if err := p.sendVersion(); err != nil {
				return err
			}
		}
		p.protocolVersion = minUint32(p.cfg.ProtocolVersion, uint32(m.ProtocolVersion))
		p.services = m.Services
		p.userAgent = m.UserAgent
		p.lastBlock = m.LastBlock
		p.setState(StateRecvVersion)

		if err := p.queueMessage(wire.NewMsgVerAck()); err != nil {
			return err
		}
		p.setState(StateSentVerack)

		if p.cfg.Listeners.OnVersion != nil {
			p.cfg.Listeners.OnVersion(p, m)
		}

	case *wire.MsgVerAck:
		if state != StateSentVerack && state != StateRecvVersion {
			return fmt.Errorf("peer: unexpected verack in state %s", state)
		}
		p.setState(StateReady)
		p.signalHandshakeDone(nil)
		if p.cfg.Listeners.OnVerAck != nil {
			p.cfg.Listeners.OnVerAck(p)
		}

	default:
		if state != StateReady {
			return fmt.Errorf("peer: message %T before handshake completed", msg)
		}
		p.dispatchReady(msg)
	}
	return nil
}

func (p *Peer) dispatchReady(msg wire.Message) {
	l := p.cfg.Listeners
	switch m := msg.(type) {
	case *wire.MsgPing:
		_ = p.queueMessage(wire.NewMsgPong(m.Nonce))
	case *wire.MsgPong:
		// no-op: latency tracking is not part of this node's scope.
	case *wire.MsgHeaders:
		if l.OnHeaders != nil {
			l.OnHeaders(p, m)
		}
	case *wire.MsgGetHeaders:
		if l.OnGetHeaders != nil {
			l.OnGetHeaders(p, m)
		}
	case *wire.MsgBlock:
		if l.OnBlock != nil {
			l.OnBlock(p, m)
		}
	case *wire.MsgTx:
		if l.OnTx != nil {
			l.OnTx(p, m)
		}
	case *wire.MsgInv:
		if l.OnInv != nil {
			l.OnInv(p, m)
		}
	case *wire.MsgGetData:
		if l.OnGetData != nil {
			l.OnGetData(p, m)
		}
	case *wire.MsgNotFound:
		if l.OnNotFound != nil {
			l.OnNotFound(p, m)
		}
	case *wire.MsgGetBlocks:
		if l.OnGetBlocks != nil {
			l.OnGetBlocks(p, m)
		}
	case *wire.MsgSendHeaders:
		// Ignored: this node does not announce new blocks to its peers,
		// so the request changes nothing.
	}
}

func (p *Peer) signalHandshakeDone(err error) {
	select {
	case p.handshakeDone <- err:
	default:
	}
}

// Disconnect transitions the peer to Closed and closes the connection. It
// does not requeue work assigned to the peer: the controller's
// OnDisconnect listener only removes the session from the connection
// manager, and the block downloader returns a shard to its pending queue
// only after the assignment has been outstanding longer than IdleTimeout.
func (p *Peer) Disconnect(err error) {
	p.closeOnce.Do(func() {
		p.setState(StateClosed)
		close(p.quit)
		if p.conn != nil {
			p.conn.Close()
		}
		p.signalHandshakeDone(err)
		if p.cfg.Listeners.OnDisconnect != nil {
			p.cfg.Listeners.OnDisconnect(p, err)
		}
	})
}

// WaitForDisconnect blocks until both the read and write loops have
// exited.
func (p *Peer) WaitForDisconnect() {
	p.wg.Wait()
}

func minUint32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

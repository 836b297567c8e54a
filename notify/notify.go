// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package notify mirrors event bus traffic to connected websocket clients.
// It is a deliberately small stand-in for the teacher's JSON-RPC
// notification push: no command surface, one frame type, one topic.
package notify

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/btcnode/node/chainhash"
	"github.com/btcnode/node/event"
	"github.com/gorilla/websocket"
)

var zeroHash chainhash.Hash

// Frame is the JSON shape written to every connected client, one per
// published Event.
type Frame struct {
	Kind    string `json:"kind"`
	Height  int64  `json:"height,omitempty"`
	Hash    string `json:"hash,omitempty"`
	TxID    string `json:"txid,omitempty"`
	ErrKind string `json:"err_kind,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Missed  uint64 `json:"missed,omitempty"`
}

var kindNames = map[event.Kind]string{
	event.HeaderSyncProgress: "header_sync_progress",
	event.BlockDownloaded:    "block_downloaded",
	event.PendingTx:          "pending_tx",
	event.ConfirmedTx:        "confirmed_tx",
	event.ErrorEvent:         "error",
	event.Lagged:             "lagged",
}

func toFrame(ev event.Event) Frame {
	f := Frame{
		Kind:    kindNames[ev.Kind],
		Height:  ev.Height,
		ErrKind: ev.ErrKind,
		Detail:  ev.Detail,
		Missed:  ev.Missed,
	}
	if ev.Hash != zeroHash {
		f.Hash = ev.Hash.String()
	}
	if ev.TxID != zeroHash {
		f.TxID = ev.TxID.String()
	}
	return f
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Any origin is accepted: this mirror has no auth model of its own,
	// matching the teacher's notification websocket which relies on the
	// surrounding transport (TLS, firewall) rather than origin checks.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server upgrades incoming HTTP connections to websockets and relays every
// Bus event to each connected client until it disconnects or the server is
// closed.
type Server struct {
	bus *event.Bus

	mu      sync.Mutex
	clients map[*websocket.Conn]chan Frame
}

// New returns a Server that mirrors bus traffic.
func New(bus *event.Bus) *Server {
	return &Server{bus: bus, clients: make(map[*websocket.Conn]chan Frame)}
}

// ServeHTTP implements http.Handler, upgrading each request to a websocket
// and registering it as a client of the server, which then receives every
// frame Run relays from its bus subscription until the connection fails or
// the server is closed.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	out := make(chan Frame, 256)
	s.mu.Lock()
	s.clients[conn] = out
	s.mu.Unlock()

	go s.writeLoop(conn, out)
}

func (s *Server) writeLoop(conn *websocket.Conn, out chan Frame) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for f := range out {
		b, err := json.Marshal(f)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

// Run subscribes to the event bus and fans every event out to connected
// clients until sub's channel is closed (typically by calling Close).
func (s *Server) Run(sub *event.Subscription) {
	for ev := range sub.C {
		f := toFrame(ev)
		s.mu.Lock()
		for conn, out := range s.clients {
			select {
			case out <- f:
			default:
				delete(s.clients, conn)
				close(out)
				conn.Close()
			}
		}
		s.mu.Unlock()
	}
}

// Close disconnects every connected client.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn, out := range s.clients {
		delete(s.clients, conn)
		close(out)
		conn.Close()
	}
}

// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notify

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/btcnode/node/event"
	"github.com/gorilla/websocket"
)

func TestServerMirrorsEvents(t *testing.T) {
	bus := event.New()
	srv := New(bus)
	defer srv.Close()

	ts := httptest.NewServer(srv)
	defer ts.Close()

	sub := bus.Subscribe()
	go srv.Run(sub)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Give the server a moment to register the connection before
	// publishing, since registration happens asynchronously in
	// ServeHTTP's caller goroutine.
	time.Sleep(20 * time.Millisecond)

	bus.Publish(event.Event{Kind: event.HeaderSyncProgress, Height: 42})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if f.Kind != "header_sync_progress" || f.Height != 42 {
		t.Fatalf("got frame %+v, want kind=header_sync_progress height=42", f)
	}
}

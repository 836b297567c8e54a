// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package event implements the node's wallet-facing notification bus: a
// multi-producer, multi-consumer broadcast of node events where a slow
// subscriber is told how much it missed rather than stalling producers.
package event

import (
	"sync"
	"sync/atomic"

	"github.com/btcnode/node/chainhash"
)

// Kind identifies the category of a node notification.
type Kind int

const (
	// HeaderSyncProgress reports the header chain's current height.
	HeaderSyncProgress Kind = iota
	// BlockDownloaded reports a block applied to the chain.
	BlockDownloaded
	// PendingTx reports an unconfirmed transaction relevant to the
	// wallet's tracked scripts.
	PendingTx
	// ConfirmedTx reports a transaction that has been included in a
	// block.
	ConfirmedTx
	// ErrorEvent reports a node-level error.
	ErrorEvent
	// Lagged reports that the subscriber missed events because it could
	// not keep up with the producer.
	Lagged
)

// Event is a single notification delivered to subscribers. Only the
// fields relevant to Kind are populated.
type Event struct {
	Kind Kind

	Height  int64          // HeaderSyncProgress, BlockDownloaded
	Hash    chainhash.Hash // BlockDownloaded, ConfirmedTx (block hash)
	TxID    chainhash.Hash // PendingTx, ConfirmedTx
	Scripts [][]byte       // PendingTx: locking scripts the tx touches

	ErrKind string // ErrorEvent
	Detail  string // ErrorEvent

	Missed uint64 // Lagged
}

// subscriberQueueSize bounds the number of buffered events per subscriber
// before it is considered lagged.
const subscriberQueueSize = 256

// subscriber is one consumer's delivery channel and its miss counter.
type subscriber struct {
	ch     chan Event
	missed uint64
}

// Bus fans a sequence of events out to every current subscriber, in the
// order they were published. A subscriber whose channel is full has
// events dropped for it rather than blocking the publisher; it is told
// how many it missed via a Lagged event once its channel has room again.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]*subscriber
	nextID      int64
}

// New returns an empty event bus.
func New() *Bus {
	return &Bus{subscribers: make(map[int]*subscriber)}
}

// Subscription is a handle returned by Subscribe; call Unsubscribe when
// done to stop receiving events and release the channel.
type Subscription struct {
	bus *Bus
	id  int
	C   <-chan Event
}

// Subscribe registers a new subscriber and returns a handle to its event
// channel.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := int(atomic.AddInt64(&b.nextID, 1))
	sub := &subscriber{ch: make(chan Event, subscriberQueueSize)}
	b.subscribers[id] = sub
	return &Subscription{bus: b, id: id, C: sub.ch}
}

// Unsubscribe removes the subscription and closes its channel.
func (s *Subscription) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if sub, ok := s.bus.subscribers[s.id]; ok {
		close(sub.ch)
		delete(s.bus.subscribers, s.id)
	}
}

// Publish delivers ev to every current subscriber. Delivery never blocks:
// a subscriber whose buffer is full has this event counted as missed
// instead. The next event that does fit is preceded by a Lagged event
// reporting the miss count, then the miss count resets.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subscribers {
		deliver := ev
		if sub.missed > 0 {
			select {
			case sub.ch <- Event{Kind: Lagged, Missed: sub.missed}:
				sub.missed = 0
			default:
				sub.missed++
				continue
			}
		}
		select {
		case sub.ch <- deliver:
		default:
			sub.missed++
		}
	}
}

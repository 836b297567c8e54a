// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package headerstore persists a prefix of the header chain to an on-disk
// LevelDB database, so a restart can replay it instead of re-downloading
// every header from the network.
package headerstore

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcnode/node/wire"
	"github.com/syndtr/goleveldb/leveldb"
)

// Store is a LevelDB-backed table of headers keyed by their height after
// genesis (height 1 is the first non-genesis header).
type Store struct {
	db *leveldb.DB
}

// Open opens (creating if necessary) the LevelDB database at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("headerstore: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func heightKey(height int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(height))
	return key
}

// Save persists headers as a contiguous run starting at height 1, replacing
// anything previously stored at those heights.
func (s *Store) Save(headers []wire.BlockHeader) error {
	batch := new(leveldb.Batch)
	for i, h := range headers {
		var buf bytes.Buffer
		if err := h.Serialize(&buf); err != nil {
			return fmt.Errorf("headerstore: serialize header at index %d: %w", i, err)
		}
		batch.Put(heightKey(int64(i+1)), buf.Bytes())
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("headerstore: write batch: %w", err)
	}
	return nil
}

// Load reads back every persisted header in ascending height order.
func (s *Store) Load() ([]*wire.BlockHeader, error) {
	iter := s.db.NewIterator(nil, nil)
	defer iter.Release()

	var headers []*wire.BlockHeader
	for iter.Next() {
		h := new(wire.BlockHeader)
		if err := h.Deserialize(bytes.NewReader(iter.Value())); err != nil {
			return nil, fmt.Errorf("headerstore: deserialize header: %w", err)
		}
		headers = append(headers, h)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("headerstore: iterate: %w", err)
	}
	return headers, nil
}

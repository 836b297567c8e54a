// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/btcnode/node/chainhash"
)

// InvVectLen is the size of the serialized form of an inventory vector: a
// 4-byte type plus a 32-byte hash.
const InvVectLen = 4 + chainhash.HashSize

// InvVect defines a bitcoin inventory vector which is used to describe data,
// as specified by Type, that a peer either has or is requesting.
type InvVect struct {
	Type InvType
	Hash chainhash.Hash
}

// NewInvVect returns a new InvVect using the provided type and hash.
func NewInvVect(typ InvType, hash *chainhash.Hash) *InvVect {
	return &InvVect{Type: typ, Hash: *hash}
}

func readInvVect(r io.Reader, pver uint32, iv *InvVect) error {
	typ, err := binarySerializer.Uint32(r)
	if err != nil {
		return err
	}
	iv.Type = InvType(typ)
	return readElement(r, &iv.Hash)
}

func writeInvVect(w io.Writer, pver uint32, iv *InvVect) error {
	if err := binarySerializer.PutUint32(w, uint32(iv.Type)); err != nil {
		return err
	}
	return writeElement(w, &iv.Hash)
}

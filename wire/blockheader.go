// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"
	"time"

	"github.com/btcnode/node/chainhash"
)

// BlockHeaderLen is the number of bytes in a block header: previous block
// hash (32) + merkle root (32) + version (4) + timestamp (4) + nBits (4) +
// nonce (4).
const BlockHeaderLen = 80

// BlockHeader defines information about a block and is used in the bitcoin
// block (MsgBlock) and headers (MsgHeaders) messages.
type BlockHeader struct {
	// Version of the block.
	Version int32

	// Hash of the previous block header in the block chain.
	PrevBlock chainhash.Hash

	// Merkle tree reference to hash of all transactions for the block.
	MerkleRoot chainhash.Hash

	// Time the block was created.
	Timestamp time.Time

	// Difficulty target for the block, compact representation ("nBits").
	Bits uint32

	// Nonce used to generate the block.
	Nonce uint32
}

// BlockHash computes the block identifier hash for the given header.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	var buf bytes.Buffer
	buf.Grow(BlockHeaderLen)
	_ = writeBlockHeader(&buf, h)
	return chainhash.DoubleHashH(buf.Bytes())
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
// This is part of the Message interface implementation.
func (h *BlockHeader) BtcDecode(r io.Reader, pver uint32) error {
	return readBlockHeader(r, h)
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
// This is part of the Message interface implementation.
func (h *BlockHeader) BtcEncode(w io.Writer, pver uint32) error {
	return writeBlockHeader(w, h)
}

// Deserialize decodes a header from r into the receiver using a format
// suitable for long-term storage, identical to the wire encoding.
func (h *BlockHeader) Deserialize(r io.Reader) error {
	return readBlockHeader(r, h)
}

// Serialize encodes a header using a format suitable for long-term storage,
// identical to the wire encoding.
func (h *BlockHeader) Serialize(w io.Writer) error {
	return writeBlockHeader(w, h)
}

func readBlockHeader(r io.Reader, h *BlockHeader) error {
	version, err := binarySerializer.Uint32(r)
	if err != nil {
		return err
	}
	h.Version = int32(version)

	if _, err := io.ReadFull(r, h.PrevBlock[:]); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, h.MerkleRoot[:]); err != nil {
		return err
	}

	ts, err := binarySerializer.Uint32(r)
	if err != nil {
		return err
	}
	h.Timestamp = time.Unix(int64(ts), 0)

	bits, err := binarySerializer.Uint32(r)
	if err != nil {
		return err
	}
	h.Bits = bits

	nonce, err := binarySerializer.Uint32(r)
	if err != nil {
		return err
	}
	h.Nonce = nonce

	return nil
}

func writeBlockHeader(w io.Writer, h *BlockHeader) error {
	if err := binarySerializer.PutUint32(w, uint32(h.Version)); err != nil {
		return err
	}
	if _, err := w.Write(h.PrevBlock[:]); err != nil {
		return err
	}
	if _, err := w.Write(h.MerkleRoot[:]); err != nil {
		return err
	}
	if err := binarySerializer.PutUint32(w, uint32(h.Timestamp.Unix())); err != nil {
		return err
	}
	if err := binarySerializer.PutUint32(w, h.Bits); err != nil {
		return err
	}
	return binarySerializer.PutUint32(w, h.Nonce)
}

// NewBlockHeader returns a new BlockHeader using the provided fields and a
// zero nonce, ready to be mined.
func NewBlockHeader(version int32, prevBlock, merkleRoot *chainhash.Hash, bits uint32) *BlockHeader {
	return &BlockHeader{
		Version:    version,
		PrevBlock:  *prevBlock,
		MerkleRoot: *merkleRoot,
		Timestamp:  time.Now(),
		Bits:       bits,
	}
}

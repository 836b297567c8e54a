// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/btcnode/node/chainhash"
)

// MsgGetBlocks implements the Message interface and represents a bitcoin
// getblocks message.  It is used to request a list of blocks starting
// after the last known hash in the locator and ending with HashStop, or
// up to 500 block hashes, whichever comes first.  This node issues
// getheaders rather than getblocks during normal sync, but still needs to
// decode and respond to getblocks requests from peers.
type MsgGetBlocks struct {
	ProtocolVersion    uint32
	BlockLocatorHashes []*chainhash.Hash
	HashStop           chainhash.Hash
}

// AddBlockLocatorHash adds a new block locator hash to the message.
func (msg *MsgGetBlocks) AddBlockLocatorHash(hash *chainhash.Hash) error {
	if len(msg.BlockLocatorHashes)+1 > MaxBlockLocatorsPerMsg {
		return messageError("MsgGetBlocks.AddBlockLocatorHash", "too many block locator hashes")
	}
	msg.BlockLocatorHashes = append(msg.BlockLocatorHashes, hash)
	return nil
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
// This is part of the Message interface implementation.
func (msg *MsgGetBlocks) BtcDecode(r io.Reader, pver uint32) error {
	pv, err := binarySerializer.Uint32(r)
	if err != nil {
		return err
	}
	msg.ProtocolVersion = pv

	count, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if count > MaxBlockLocatorsPerMsg {
		return messageError("MsgGetBlocks.BtcDecode", "too many block locator hashes")
	}

	locatorHashes := make([]chainhash.Hash, count)
	msg.BlockLocatorHashes = make([]*chainhash.Hash, 0, count)
	for i := uint64(0); i < count; i++ {
		hash := &locatorHashes[i]
		if err := readElement(r, hash); err != nil {
			return err
		}
		msg.BlockLocatorHashes = append(msg.BlockLocatorHashes, hash)
	}

	return readElement(r, &msg.HashStop)
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
// This is part of the Message interface implementation.
func (msg *MsgGetBlocks) BtcEncode(w io.Writer, pver uint32) error {
	if len(msg.BlockLocatorHashes) > MaxBlockLocatorsPerMsg {
		return messageError("MsgGetBlocks.BtcEncode", "too many block locator hashes")
	}

	if err := binarySerializer.PutUint32(w, msg.ProtocolVersion); err != nil {
		return err
	}

	if err := WriteVarInt(w, pver, uint64(len(msg.BlockLocatorHashes))); err != nil {
		return err
	}
	for _, hash := range msg.BlockLocatorHashes {
		if err := writeElement(w, hash); err != nil {
			return err
		}
	}

	return writeElement(w, &msg.HashStop)
}

// Command returns the protocol command string for the message.  This is
// part of the Message interface implementation.
func (msg *MsgGetBlocks) Command() string {
	return CmdGetBlocks
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the Message interface implementation.
func (msg *MsgGetBlocks) MaxPayloadLength(pver uint32) uint32 {
	return 4 + uint32(VarIntSerializeSize(MaxBlockLocatorsPerMsg)) +
		MaxBlockLocatorsPerMsg*chainhash.HashSize + chainhash.HashSize
}

// NewMsgGetBlocks returns a new getblocks message that conforms to the
// Message interface.
func NewMsgGetBlocks(hashStop *chainhash.Hash) *MsgGetBlocks {
	return &MsgGetBlocks{
		ProtocolVersion:    ProtocolVersion,
		BlockLocatorHashes: make([]*chainhash.Hash, 0, MaxBlockLocatorsPerMsg),
		HashStop:           *hashStop,
	}
}

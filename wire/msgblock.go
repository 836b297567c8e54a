// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/btcnode/node/chainhash"
)

// maxTxPerBlock is a sanity bound on the claimed transaction count of an
// incoming block message, derived from the minimum possible transaction
// size.
const maxTxPerBlock = (MaxMessagePayload / 60) + 1

// MsgBlock implements the Message interface and represents a bitcoin block
// message.  It is used to deliver block and transaction information in
// response to a getdata message (MsgGetData) for a given block hash.
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx
}

// AddTransaction adds a transaction to the message.
func (msg *MsgBlock) AddTransaction(tx *MsgTx) {
	msg.Transactions = append(msg.Transactions, tx)
}

// BlockHash computes the block identifier hash for this block.
func (msg *MsgBlock) BlockHash() chainhash.Hash {
	return msg.Header.BlockHash()
}

// TxHashes returns a slice of hashes of all of the transactions in this
// block, in the same order the transactions appear.
func (msg *MsgBlock) TxHashes() []chainhash.Hash {
	hashes := make([]chainhash.Hash, len(msg.Transactions))
	for i, tx := range msg.Transactions {
		hashes[i] = tx.TxHash()
	}
	return hashes
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
// This is part of the Message interface implementation.
func (msg *MsgBlock) BtcDecode(r io.Reader, pver uint32) error {
	if err := readBlockHeader(r, &msg.Header); err != nil {
		return err
	}

	count, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if count > maxTxPerBlock {
		return messageError("MsgBlock.BtcDecode", "too many transactions to fit into a block")
	}

	msg.Transactions = make([]*MsgTx, 0, count)
	for i := uint64(0); i < count; i++ {
		tx := &MsgTx{}
		if err := tx.BtcDecode(r, pver); err != nil {
			return err
		}
		msg.Transactions = append(msg.Transactions, tx)
	}

	return nil
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
// This is part of the Message interface implementation.
func (msg *MsgBlock) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeBlockHeader(w, &msg.Header); err != nil {
		return err
	}

	if err := WriteVarInt(w, pver, uint64(len(msg.Transactions))); err != nil {
		return err
	}
	for _, tx := range msg.Transactions {
		if err := tx.BtcEncode(w, pver); err != nil {
			return err
		}
	}

	return nil
}

// Command returns the protocol command string for the message.  This is
// part of the Message interface implementation.
func (msg *MsgBlock) Command() string {
	return CmdBlock
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the Message interface implementation.
func (msg *MsgBlock) MaxPayloadLength(pver uint32) uint32 {
	return MaxMessagePayload
}

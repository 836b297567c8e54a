// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgPong implements the Message interface and represents a bitcoin pong
// message which is sent in response to a ping message (MsgPing), echoing
// its nonce back to the sender.
type MsgPong struct {
	Nonce uint64
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
// This is part of the Message interface implementation.
func (msg *MsgPong) BtcDecode(r io.Reader, pver uint32) error {
	nonce, err := binarySerializer.Uint64(r)
	if err != nil {
		return err
	}
	msg.Nonce = nonce
	return nil
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
// This is part of the Message interface implementation.
func (msg *MsgPong) BtcEncode(w io.Writer, pver uint32) error {
	return binarySerializer.PutUint64(w, msg.Nonce)
}

// Command returns the protocol command string for the message.  This is
// part of the Message interface implementation.
func (msg *MsgPong) Command() string {
	return CmdPong
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the Message interface implementation.
func (msg *MsgPong) MaxPayloadLength(pver uint32) uint32 {
	return 8
}

// NewMsgPong returns a new pong message that conforms to the Message
// interface.
func NewMsgPong(nonce uint64) *MsgPong {
	return &MsgPong{Nonce: nonce}
}

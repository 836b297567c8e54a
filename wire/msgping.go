// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgPing implements the Message interface and represents a bitcoin ping
// message.  It is used to confirm that a connection is still valid.  An
// expected pong is returned echoing the same nonce.
type MsgPing struct {
	Nonce uint64
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
// This is part of the Message interface implementation.
func (msg *MsgPing) BtcDecode(r io.Reader, pver uint32) error {
	nonce, err := binarySerializer.Uint64(r)
	if err != nil {
		return err
	}
	msg.Nonce = nonce
	return nil
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
// This is part of the Message interface implementation.
func (msg *MsgPing) BtcEncode(w io.Writer, pver uint32) error {
	return binarySerializer.PutUint64(w, msg.Nonce)
}

// Command returns the protocol command string for the message.  This is
// part of the Message interface implementation.
func (msg *MsgPing) Command() string {
	return CmdPing
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the Message interface implementation.
func (msg *MsgPing) MaxPayloadLength(pver uint32) uint32 {
	return 8
}

// NewMsgPing returns a new ping message that conforms to the Message
// interface.
func NewMsgPing(nonce uint64) *MsgPing {
	return &MsgPing{Nonce: nonce}
}

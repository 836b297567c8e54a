// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgHeaders implements the Message interface and represents a bitcoin
// headers message.  It is used to deliver block header information in
// response to a getheaders message (MsgGetHeaders).  The number of headers
// is limited to MaxHeadersPerMsg.
type MsgHeaders struct {
	Headers []*BlockHeader
}

// AddBlockHeader adds a new block header to the message.
func (msg *MsgHeaders) AddBlockHeader(bh *BlockHeader) error {
	if len(msg.Headers)+1 > MaxHeadersPerMsg {
		return messageError("MsgHeaders.AddBlockHeader", "too many block headers")
	}
	msg.Headers = append(msg.Headers, bh)
	return nil
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
// This is part of the Message interface implementation.
func (msg *MsgHeaders) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if count > MaxHeadersPerMsg {
		return messageError("MsgHeaders.BtcDecode", "too many headers for message")
	}

	headers := make([]BlockHeader, count)
	msg.Headers = make([]*BlockHeader, 0, count)
	for i := uint64(0); i < count; i++ {
		bh := &headers[i]
		if err := readBlockHeader(r, bh); err != nil {
			return err
		}

		// Every header in this message is followed by a transaction count
		// which is always zero for headers-only announcements; consume it.
		txCount, err := ReadVarInt(r, pver)
		if err != nil {
			return err
		}
		if txCount != 0 {
			return messageError("MsgHeaders.BtcDecode", "headers message indicates non-zero transaction count")
		}

		msg.Headers = append(msg.Headers, bh)
	}

	return nil
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
// This is part of the Message interface implementation.
func (msg *MsgHeaders) BtcEncode(w io.Writer, pver uint32) error {
	if len(msg.Headers) > MaxHeadersPerMsg {
		return messageError("MsgHeaders.BtcEncode", "too many headers for message")
	}

	if err := WriteVarInt(w, pver, uint64(len(msg.Headers))); err != nil {
		return err
	}
	for _, bh := range msg.Headers {
		if err := writeBlockHeader(w, bh); err != nil {
			return err
		}
		if err := WriteVarInt(w, pver, 0); err != nil {
			return err
		}
	}

	return nil
}

// Command returns the protocol command string for the message.  This is
// part of the Message interface implementation.
func (msg *MsgHeaders) Command() string {
	return CmdHeaders
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the Message interface implementation.
func (msg *MsgHeaders) MaxPayloadLength(pver uint32) uint32 {
	return uint32(VarIntSerializeSize(MaxHeadersPerMsg)) +
		MaxHeadersPerMsg*(BlockHeaderLen+1)
}

// NewMsgHeaders returns a new headers message that conforms to the Message
// interface.
func NewMsgHeaders() *MsgHeaders {
	return &MsgHeaders{Headers: make([]*BlockHeader, 0, MaxHeadersPerMsg)}
}

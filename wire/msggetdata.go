// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgGetData implements the Message interface and represents a bitcoin
// getdata message.  It is used to request data such as blocks and
// transactions from another peer, identified by inventory vectors
// previously advertised via MsgInv.
type MsgGetData struct {
	InvList []*InvVect
}

// AddInvVect adds an inventory vector to the message.
func (msg *MsgGetData) AddInvVect(iv *InvVect) error {
	if len(msg.InvList)+1 > MaxInvPerMsg {
		return messageError("MsgGetData.AddInvVect", "too many inv vectors")
	}
	msg.InvList = append(msg.InvList, iv)
	return nil
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
// This is part of the Message interface implementation.
func (msg *MsgGetData) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if count > MaxInvPerMsg {
		return messageError("MsgGetData.BtcDecode", "too many inv vectors")
	}

	invList := make([]InvVect, count)
	msg.InvList = make([]*InvVect, 0, count)
	for i := uint64(0); i < count; i++ {
		iv := &invList[i]
		if err := readInvVect(r, pver, iv); err != nil {
			return err
		}
		msg.InvList = append(msg.InvList, iv)
	}

	return nil
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
// This is part of the Message interface implementation.
func (msg *MsgGetData) BtcEncode(w io.Writer, pver uint32) error {
	if len(msg.InvList) > MaxInvPerMsg {
		return messageError("MsgGetData.BtcEncode", "too many inv vectors")
	}

	if err := WriteVarInt(w, pver, uint64(len(msg.InvList))); err != nil {
		return err
	}
	for _, iv := range msg.InvList {
		if err := writeInvVect(w, pver, iv); err != nil {
			return err
		}
	}

	return nil
}

// Command returns the protocol command string for the message.  This is
// part of the Message interface implementation.
func (msg *MsgGetData) Command() string {
	return CmdGetData
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the Message interface implementation.
func (msg *MsgGetData) MaxPayloadLength(pver uint32) uint32 {
	return uint32(VarIntSerializeSize(MaxInvPerMsg)) + MaxInvPerMsg*InvVectLen
}

// NewMsgGetData returns a new getdata message that conforms to the Message
// interface.
func NewMsgGetData() *MsgGetData {
	return &MsgGetData{InvList: make([]*InvVect, 0, defaultInvListAlloc)}
}

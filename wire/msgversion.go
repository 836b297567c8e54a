// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"time"
)

// MaxUserAgentLen is the maximum allowed length for the user agent field in
// a version message (MsgVersion).
const MaxUserAgentLen = 256

// DefaultUserAgent is used for the user agent string if the caller didn't
// specify one.
const DefaultUserAgent = "/btcnode:0.1.0/"

// MsgVersion implements the Message interface and represents a bitcoin
// version message.  It is sent and received before any other messages on a
// connection and is used to negotiate a common protocol version and other
// connection details.
type MsgVersion struct {
	// Version of the protocol the sender is using.
	ProtocolVersion int32

	// Bitmask of services advertised by the sender.
	Services ServiceFlag

	// Time the message was generated, as seen by the sender.
	Timestamp time.Time

	// Address of the remote peer as seen from the sender's perspective.
	AddrYou NetAddress

	// Address of the sending node.
	AddrMe NetAddress

	// Unique value associated with this message; used to detect self
	// connections.
	Nonce uint64

	// User agent string of the sender.
	UserAgent string

	// Last block height the sender knows about.
	LastBlock int32

	// Whether the remote peer should announce relayed transactions.
	DisableRelayTx bool
}

// HasService returns whether the peer supports the given service.
func (msg *MsgVersion) HasService(service ServiceFlag) bool {
	return msg.Services&service == service
}

// AddService adds service as a supported service by the peer generating the
// message.
func (msg *MsgVersion) AddService(service ServiceFlag) {
	msg.Services |= service
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
// This is part of the Message interface implementation.
func (msg *MsgVersion) BtcDecode(r io.Reader, pver uint32) error {
	pv, err := binarySerializer.Uint32(r)
	if err != nil {
		return err
	}
	msg.ProtocolVersion = int32(pv)

	services, err := binarySerializer.Uint64(r)
	if err != nil {
		return err
	}
	msg.Services = ServiceFlag(services)

	if err := readElement(r, &msg.Timestamp); err != nil {
		return err
	}

	if err := readNetAddress(r, pver, &msg.AddrYou, false); err != nil {
		return err
	}

	// The sender's address, nonce, user agent and last known block are
	// required; only the trailing relay flag may be absent.
	if err := readNetAddress(r, pver, &msg.AddrMe, false); err != nil {
		return err
	}

	nonce, err := binarySerializer.Uint64(r)
	if err != nil {
		return err
	}
	msg.Nonce = nonce

	userAgent, err := ReadVarString(r, pver)
	if err != nil {
		return err
	}
	if len(userAgent) > MaxUserAgentLen {
		return messageError("MsgVersion.BtcDecode", "user agent too long")
	}
	msg.UserAgent = userAgent

	lastBlock, err := binarySerializer.Uint32(r)
	if err != nil {
		return err
	}
	msg.LastBlock = int32(lastBlock)

	relay, err := binarySerializer.Uint8(r)
	if err != nil {
		// Relay flag is optional in earlier protocol versions.
		msg.DisableRelayTx = false
		return nil
	}
	msg.DisableRelayTx = relay == 0

	return nil
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
// This is part of the Message interface implementation.
func (msg *MsgVersion) BtcEncode(w io.Writer, pver uint32) error {
	if err := binarySerializer.PutUint32(w, uint32(msg.ProtocolVersion)); err != nil {
		return err
	}
	if err := binarySerializer.PutUint64(w, uint64(msg.Services)); err != nil {
		return err
	}
	if err := writeElement(w, msg.Timestamp); err != nil {
		return err
	}
	if err := writeNetAddress(w, pver, &msg.AddrYou, false); err != nil {
		return err
	}
	if err := writeNetAddress(w, pver, &msg.AddrMe, false); err != nil {
		return err
	}
	if err := binarySerializer.PutUint64(w, msg.Nonce); err != nil {
		return err
	}
	if err := WriteVarString(w, pver, msg.UserAgent); err != nil {
		return err
	}
	if err := binarySerializer.PutUint32(w, uint32(msg.LastBlock)); err != nil {
		return err
	}
	var relay uint8 = 1
	if msg.DisableRelayTx {
		relay = 0
	}
	return binarySerializer.PutUint8(w, relay)
}

// Command returns the protocol command string for the message.  This is
// part of the Message interface implementation.
func (msg *MsgVersion) Command() string {
	return CmdVersion
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the Message interface implementation.
func (msg *MsgVersion) MaxPayloadLength(pver uint32) uint32 {
	return 4 + 8 + 8 + 2*maxNetAddressPayload() + 8 + uint32(VarIntSerializeSize(MaxUserAgentLen)) + MaxUserAgentLen + 4 + 1
}

// NewMsgVersion returns a new version message using the provided parameters
// and sets the remaining fields to default values.
func NewMsgVersion(me, you *NetAddress, nonce uint64, lastBlock int32) *MsgVersion {
	return &MsgVersion{
		ProtocolVersion: int32(ProtocolVersion),
		Services:        0,
		Timestamp:       time.Now(),
		AddrYou:         *you,
		AddrMe:          *me,
		Nonce:           nonce,
		UserAgent:       DefaultUserAgent,
		LastBlock:       lastBlock,
		DisableRelayTx:  false,
	}
}

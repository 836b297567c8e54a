// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "strconv"

// BitcoinNet represents which bitcoin network a message belongs to.
type BitcoinNet uint32

// String returns the BitcoinNet in human-readable form.
func (n BitcoinNet) String() string {
	return "0x" + strconv.FormatUint(uint64(n), 16)
}

// Well-known network magic values.  Callers running a custom network supply
// their own value via configuration (start_string).
const (
	MainNet  BitcoinNet = 0xd9b4bef9
	TestNet3 BitcoinNet = 0x0709110b
	RegTest  BitcoinNet = 0xdab5bffa
)

// ServiceFlag identifies services supported by a bitcoin peer.
type ServiceFlag uint64

// Descriptions of the services supported by a peer advertised in its
// version message.
const (
	SFNodeNetwork ServiceFlag = 1 << iota
	SFNodeGetUTXO
	SFNodeBloom
	SFNodeWitness
)

// InvType represents the allowed types of inventory vectors.
type InvType uint32

// Inventory vector types recognized by this implementation.
const (
	InvTypeError InvType = iota
	InvTypeTx
	InvTypeBlock
	InvTypeFilteredBlock
)

// strings for InvType.String
var ivStrings = map[InvType]string{
	InvTypeError:         "ERROR",
	InvTypeTx:            "MSG_TX",
	InvTypeBlock:         "MSG_BLOCK",
	InvTypeFilteredBlock: "MSG_FILTERED_BLOCK",
}

// String returns the InvType in human-readable form.
func (i InvType) String() string {
	if s, ok := ivStrings[i]; ok {
		return s
	}
	return "Unknown InvType (" + strconv.Itoa(int(i)) + ")"
}

// ProtocolVersion is the latest protocol version this package supports.
const ProtocolVersion uint32 = 70015

// MaxInvPerMsg is the maximum number of inventory vectors that can be in a
// single bitcoin inv, getdata, or notfound message.
const MaxInvPerMsg = 50000

// MaxBlockLocatorsPerMsg is the maximum number of block locator hashes
// allowed per message.
const MaxBlockLocatorsPerMsg = 500

// MaxHeadersPerMsg is the maximum number of headers a getheaders response may
// carry.
const MaxHeadersPerMsg = 2000

// MaxVarIntPayload is the maximum payload size, in bytes, for a variable
// length integer.
const MaxVarIntPayload = 9

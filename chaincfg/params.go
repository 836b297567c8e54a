// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the chain parameters for the networks the node
// can operate on.  For main packages, a (typically global) var may be
// assigned the address of one of the standard Params vars for use as the
// application's "active" network.
package chaincfg

import (
	"math/big"

	"github.com/btcnode/node/chainhash"
	"github.com/btcnode/node/wire"
)

// DNSSeed identifies a DNS seed used to discover initial peers.
type DNSSeed struct {
	Host string
	// HasFiltering indicates whether the seed supports filtering by
	// service bit.
	HasFiltering bool
}

// Checkpoint identifies a known-good block by height and hash.  Headers at
// or below the latest checkpoint never need to be independently evaluated.
type Checkpoint struct {
	Height int64
	Hash   *chainhash.Hash
}

// Params defines the chain parameters for a Bitcoin-compatible network that
// the node is able to operate on.
type Params struct {
	// Name is a human-readable identifier for the network, e.g. "mainnet".
	Name string

	// Net is the magic number identifying the network on the wire.
	Net wire.BitcoinNet

	// DefaultPort is the default peer-to-peer port for the network.
	DefaultPort string

	// DNSSeeds identifies the DNS seeds used to discover initial peers.
	DNSSeeds []DNSSeed

	// GenesisBlock defines the first block of the chain.
	GenesisBlock *wire.MsgBlock

	// GenesisHash is the hash of the genesis block, cached for quick
	// comparisons.
	GenesisHash chainhash.Hash

	// PowLimit is the highest proof-of-work value (easiest difficulty)
	// a block can have for the network.
	PowLimit *big.Int

	// PowLimitBits is PowLimit in its compact "nBits" representation.
	PowLimitBits uint32

	// Checkpoints is a list of checkpoints ordered from oldest to
	// newest height.
	Checkpoints []Checkpoint

	// AcceptNonStdTxs governs whether non-standard transactions should
	// be relayed and accepted into the mempool.
	AcceptNonStdTxs bool

	// PubKeyHashAddrID is the identifier byte used for P2PKH addresses.
	PubKeyHashAddrID byte

	// ScriptHashAddrID is the identifier byte used for P2SH addresses.
	ScriptHashAddrID byte

	// PrivateKeyID is the identifier byte used for WIF-encoded private
	// keys.
	PrivateKeyID byte

	// HDPrivateKeyID and HDPublicKeyID are the identifier bytes used for
	// BIP32 extended keys. Unused by this node (no HD wallet), kept for
	// completeness of the address-magic table.
	HDPrivateKeyID [4]byte
	HDPublicKeyID  [4]byte
}

// LatestCheckpoint returns the checkpoint with the greatest height, or nil
// if the network has none.
func (p *Params) LatestCheckpoint() *Checkpoint {
	if len(p.Checkpoints) == 0 {
		return nil
	}
	return &p.Checkpoints[len(p.Checkpoints)-1]
}

var bigOne = big.NewInt(1)

func hexDecodeHash(s string) *chainhash.Hash {
	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		panic(err)
	}
	return h
}

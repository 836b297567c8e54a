// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math/big"
	"time"

	"github.com/btcnode/node/wire"
)

// MainNetParams returns the network parameters for the main network.
func MainNetParams() *Params {
	// powLimit is the highest proof of work value a block can have on
	// the main network.  It is the value 2^224 - 1.
	powLimit := new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)

	genesisBlock := newGenesisBlock(time.Unix(1231006505, 0), 0x1d00ffff, 2083236893)

	return &Params{
		Name:        "mainnet",
		Net:         wire.MainNet,
		DefaultPort: "8333",
		DNSSeeds: []DNSSeed{
			{"seed.bitcoin.sipa.be", true},
			{"dnsseed.bluematt.me", true},
			{"dnsseed.bitcoin.dashjr.org", false},
		},

		GenesisBlock: genesisBlock,
		GenesisHash:  genesisBlock.BlockHash(),
		PowLimit:     powLimit,
		PowLimitBits: bigToCompact(powLimit),

		// Checkpoints ordered from oldest to newest height.  With
		// headers-first syncing the latest checkpoint is discovered
		// before block syncing even starts.
		Checkpoints: []Checkpoint{
			{11111, hexDecodeHash("0000000069e244f73d78e8fd29ba2fd2ed618bd6fa2ee92559f542fdb26e7c1d")},
			{33333, hexDecodeHash("000000002dd5588a74784eaa7ab0507a18ad16a236e7b1ce69f00d7ddfb5d0a6")},
		},

		AcceptNonStdTxs: false,

		PubKeyHashAddrID: 0x00,
		ScriptHashAddrID: 0x05,
		PrivateKeyID:     0x80,
		HDPrivateKeyID:   [4]byte{0x04, 0x88, 0xad, 0xe4},
		HDPublicKeyID:    [4]byte{0x04, 0x88, 0xb2, 0x1e},
	}
}

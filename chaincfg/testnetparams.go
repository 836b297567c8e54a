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

// TestNet3Params returns the network parameters for the test network
// (version 3).
func TestNet3Params() *Params {
	powLimit := new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)

	genesisBlock := newGenesisBlock(time.Unix(1296688602, 0), 0x1d00ffff, 414098458)

	return &Params{
		Name:        "testnet3",
		Net:         wire.TestNet3,
		DefaultPort: "18333",
		DNSSeeds: []DNSSeed{
			{"testnet-seed.bitcoin.jonasschnelli.ch", true},
			{"seed.tbtc.petertodd.org", true},
		},

		GenesisBlock: genesisBlock,
		GenesisHash:  genesisBlock.BlockHash(),
		PowLimit:     powLimit,
		PowLimitBits: bigToCompact(powLimit),

		Checkpoints: []Checkpoint{
			{546, hexDecodeHash("000000002a936ca763904c3c35fce2f3556c559c0214345d31b1bcebf76acb70")},
		},

		AcceptNonStdTxs: true,

		PubKeyHashAddrID: 0x6f,
		ScriptHashAddrID: 0xc4,
		PrivateKeyID:     0xef,
		HDPrivateKeyID:   [4]byte{0x04, 0x35, 0x83, 0x94},
		HDPublicKeyID:    [4]byte{0x04, 0x35, 0x87, 0xcf},
	}
}

// Copyright (c) 2018-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math/big"
	"time"

	"github.com/btcnode/node/wire"
)

// RegNetParams returns the network parameters for the regression test
// network.  Difficulty is fixed at the easiest possible target so blocks
// can be produced on demand by test harnesses.
func RegNetParams() *Params {
	powLimit := new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

	genesisBlock := newGenesisBlock(time.Unix(1296688602, 0), 0x207fffff, 2)

	return &Params{
		Name:        "regtest",
		Net:         wire.RegTest,
		DefaultPort: "18444",
		DNSSeeds:    nil,

		GenesisBlock: genesisBlock,
		GenesisHash:  genesisBlock.BlockHash(),
		PowLimit:     powLimit,
		PowLimitBits: bigToCompact(powLimit),

		Checkpoints: nil,

		AcceptNonStdTxs: true,

		PubKeyHashAddrID: 0x6f,
		ScriptHashAddrID: 0xc4,
		PrivateKeyID:     0xef,
		HDPrivateKeyID:   [4]byte{0x04, 0x35, 0x83, 0x94},
		HDPublicKeyID:    [4]byte{0x04, 0x35, 0x87, 0xcf},
	}
}

// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"encoding/hex"
	"time"

	"github.com/btcnode/node/chainhash"
	"github.com/btcnode/node/wire"
)

func hexDecode(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// genesisCoinbaseScriptSig is the canonical coinbase signature script,
// embedding the Times headline used as a timestamp.
var genesisCoinbaseScriptSig = hexDecode("04ffff001d0104455468652054696d65732030332f4a616e2f32303039" +
	"204368616e63656c6c6f72206f6e206272696e6b206f66207365636f6e64206261696c6f75742066" +
	"6f722062616e6b73")

var genesisCoinbasePkScript = hexDecode("4104678afdb0fe5548271967f1a67130b7105cd6a828e03909a67962e0ea1f61deb" +
	"649f6bc3f4cef38c4f35504e51ec112de5c384df7ba0b8d578a4c702b6bf11d5fac")

// newGenesisBlock builds the genesis block shared by a network's params,
// keyed by timestamp, bits and nonce.
func newGenesisBlock(ts time.Time, bits uint32, nonce uint32) *wire.MsgBlock {
	block := &wire.MsgBlock{
		Header: wire.BlockHeader{
			Version:   1,
			PrevBlock: chainhash.Hash{},
			Timestamp: ts,
			Bits:      bits,
			Nonce:     nonce,
		},
		Transactions: []*wire.MsgTx{{
			Version: 1,
			TxIn: []*wire.TxIn{{
				PreviousOutPoint: wire.OutPoint{
					Hash:  chainhash.Hash{},
					Index: wire.CoinbaseIndex,
				},
				SignatureScript: genesisCoinbaseScriptSig,
				Sequence:        wire.MaxTxInSequenceNum,
			}},
			TxOut: []*wire.TxOut{{
				Value:    50 * 1e8,
				PkScript: genesisCoinbasePkScript,
			}},
			LockTime: 0,
		}},
	}
	block.Header.MerkleRoot = block.Transactions[0].TxHash()
	return block
}

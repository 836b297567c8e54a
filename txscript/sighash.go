// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"

	"github.com/btcnode/node/chainhash"
	"github.com/btcnode/node/wire"
)

// CalcSignatureHash computes the legacy (pre-segwit) signature hash for
// input idx of tx, given the previous output's locking script (subScript)
// and hashType. This is the digest a P2PKH signature is produced and
// verified over.
func CalcSignatureHash(tx *wire.MsgTx, idx int, subScript []byte, hashType SigHashType) (chainhash.Hash, error) {
	txCopy := &wire.MsgTx{
		Version:  tx.Version,
		LockTime: tx.LockTime,
	}
	for i, in := range tx.TxIn {
		script := []byte(nil)
		if i == idx {
			script = subScript
		}
		txCopy.TxIn = append(txCopy.TxIn, &wire.TxIn{
			PreviousOutPoint: in.PreviousOutPoint,
			SignatureScript:  script,
			Sequence:         in.Sequence,
		})
	}
	for _, out := range tx.TxOut {
		txCopy.TxOut = append(txCopy.TxOut, &wire.TxOut{
			Value:    out.Value,
			PkScript: out.PkScript,
		})
	}

	var buf bytes.Buffer
	if err := txCopy.Serialize(&buf); err != nil {
		return chainhash.Hash{}, err
	}
	var hashTypeBytes [4]byte
	binary.LittleEndian.PutUint32(hashTypeBytes[:], uint32(hashType))
	buf.Write(hashTypeBytes[:])

	return chainhash.DoubleHashH(buf.Bytes()), nil
}

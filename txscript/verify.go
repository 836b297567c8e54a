// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"fmt"

	"github.com/btcnode/node/wire"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// VerifyP2PKHInput checks that the unlocking script of input idx of tx
// satisfies the P2PKH locking script prevPkScript: the pushed public key's
// Hash160 must match the pushed pubkey hash, and the DER-encoded ECDSA
// signature must verify against the legacy sighash for this input. sc, if
// non-nil, is consulted and updated as a verification cache.
func VerifyP2PKHInput(tx *wire.MsgTx, idx int, prevPkScript []byte, sc *SigCache) error {
	pubKeyHash := ExtractPubKeyHash(prevPkScript)
	if pubKeyHash == nil {
		return fmt.Errorf("txscript: previous output is not a P2PKH script")
	}
	if idx < 0 || idx >= len(tx.TxIn) {
		return fmt.Errorf("txscript: input index %d out of range", idx)
	}

	sigWithType, pubKeyBytes, err := ExtractSignatureAndPubKey(tx.TxIn[idx].SignatureScript)
	if err != nil {
		return err
	}
	if len(sigWithType) == 0 {
		return fmt.Errorf("txscript: empty signature")
	}

	if !bytes.Equal(Hash160(pubKeyBytes), pubKeyHash) {
		return fmt.Errorf("txscript: pubkey does not match the locking script's pubkey hash")
	}

	pubKey, err := secp256k1.ParsePubKey(pubKeyBytes)
	if err != nil {
		return fmt.Errorf("txscript: invalid public key: %w", err)
	}

	hashType := SigHashType(sigWithType[len(sigWithType)-1])
	derSig := sigWithType[:len(sigWithType)-1]
	sig, err := ecdsa.ParseDERSignature(derSig)
	if err != nil {
		return fmt.Errorf("txscript: invalid signature encoding: %w", err)
	}

	sigHash, err := CalcSignatureHash(tx, idx, prevPkScript, hashType)
	if err != nil {
		return err
	}

	if sc != nil && sc.Exists(sigHash, sig, pubKey) {
		return nil
	}
	if !sig.Verify(sigHash[:], pubKey) {
		return fmt.Errorf("txscript: signature verification failed")
	}
	if sc != nil {
		sc.Add(sigHash, sig, pubKey, tx)
	}
	return nil
}

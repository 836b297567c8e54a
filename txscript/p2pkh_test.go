// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/btcnode/node/wire"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

func TestPayToPubKeyHashRoundTrip(t *testing.T) {
	hash := make([]byte, PubKeyHashLen)
	for i := range hash {
		hash[i] = byte(i)
	}

	script, err := PayToPubKeyHashScript(hash)
	if err != nil {
		t.Fatalf("PayToPubKeyHashScript: %v", err)
	}
	if !IsPubKeyHashScript(script) {
		t.Fatalf("expected script to be recognized as P2PKH")
	}
	got := ExtractPubKeyHash(script)
	if string(got) != string(hash) {
		t.Fatalf("extracted hash mismatch")
	}
}

func TestPayToPubKeyHashScriptRejectsBadLength(t *testing.T) {
	if _, err := PayToPubKeyHashScript(make([]byte, 19)); err == nil {
		t.Fatalf("expected error for short hash")
	}
}

func TestSignAndVerifyP2PKHInput(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	pubKeyBytes := priv.PubKey().SerializeCompressed()
	pkHash := Hash160(pubKeyBytes)
	prevScript, err := PayToPubKeyHashScript(pkHash)
	if err != nil {
		t.Fatalf("PayToPubKeyHashScript: %v", err)
	}

	tx := &wire.MsgTx{
		Version: 1,
		TxIn: []*wire.TxIn{{
			PreviousOutPoint: wire.OutPoint{Index: 0},
			Sequence:         wire.MaxTxInSequenceNum,
		}},
		TxOut: []*wire.TxOut{{Value: 1000, PkScript: prevScript}},
	}

	sigHash, err := CalcSignatureHash(tx, 0, prevScript, SigHashAll)
	if err != nil {
		t.Fatalf("CalcSignatureHash: %v", err)
	}
	sig := ecdsa.Sign(priv, sigHash[:])
	sigBytes := append(sig.Serialize(), byte(SigHashAll))
	tx.TxIn[0].SignatureScript = SignatureScript(sigBytes, pubKeyBytes)

	sc, err := NewSigCache(10)
	if err != nil {
		t.Fatalf("NewSigCache: %v", err)
	}

	if err := VerifyP2PKHInput(tx, 0, prevScript, sc); err != nil {
		t.Fatalf("VerifyP2PKHInput: %v", err)
	}
	// A second call should hit the cache rather than re-verify.
	if err := VerifyP2PKHInput(tx, 0, prevScript, sc); err != nil {
		t.Fatalf("VerifyP2PKHInput (cached): %v", err)
	}
}

func TestVerifyP2PKHInputRejectsWrongKey(t *testing.T) {
	priv, _ := secp256k1.GeneratePrivateKey()
	otherPriv, _ := secp256k1.GeneratePrivateKey()

	pkHash := Hash160(priv.PubKey().SerializeCompressed())
	prevScript, _ := PayToPubKeyHashScript(pkHash)

	tx := &wire.MsgTx{
		Version: 1,
		TxIn:    []*wire.TxIn{{PreviousOutPoint: wire.OutPoint{Index: 0}}},
		TxOut:   []*wire.TxOut{{Value: 1000, PkScript: prevScript}},
	}

	sigHash, _ := CalcSignatureHash(tx, 0, prevScript, SigHashAll)
	sig := ecdsa.Sign(otherPriv, sigHash[:])
	sigBytes := append(sig.Serialize(), byte(SigHashAll))
	tx.TxIn[0].SignatureScript = SignatureScript(sigBytes, otherPriv.PubKey().SerializeCompressed())

	if err := VerifyP2PKHInput(tx, 0, prevScript, nil); err == nil {
		t.Fatalf("expected verification to fail for mismatched pubkey hash")
	}
}

// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"testing"

	"github.com/btcnode/node/chaincfg"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

func TestWIFRoundTrip(t *testing.T) {
	priv, _ := secp256k1.GeneratePrivateKey()
	params := chaincfg.RegNetParams()

	w := NewWIF(priv, params)
	encoded := w.String()

	decoded, err := DecodeWIF(encoded)
	if err != nil {
		t.Fatalf("DecodeWIF: %v", err)
	}
	if !decoded.IsForNet(params) {
		t.Fatalf("decoded WIF reports the wrong network")
	}
	got, want := decoded.PrivKey().Serialize(), priv.Serialize()
	if len(got) != len(want) {
		t.Fatalf("serialized private key length mismatch: %d vs %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("decoded private key does not match original at byte %d", i)
		}
	}
}

func TestDecodeWIFRejectsBadChecksum(t *testing.T) {
	priv, _ := secp256k1.GeneratePrivateKey()
	params := chaincfg.RegNetParams()
	w := NewWIF(priv, params)
	encoded := w.String()

	corrupted := []byte(encoded)
	corrupted[len(corrupted)-1]++
	if _, err := DecodeWIF(string(corrupted)); err == nil {
		t.Fatalf("expected corrupted WIF to fail checksum verification")
	}
}

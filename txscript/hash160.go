// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"
)

// Hash160 computes RIPEMD160(SHA256(data)), the digest used by P2PKH
// pubkey-hash and WIF-derived addresses.
func Hash160(data []byte) []byte {
	sha := sha256.Sum256(data)
	ripe := ripemd160.New()
	ripe.Write(sha[:])
	return ripe.Sum(nil)
}

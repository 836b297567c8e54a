// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"bytes"
	"errors"

	"github.com/btcnode/node/chaincfg"
	"github.com/btcnode/node/chainhash"
	"github.com/decred/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ErrMalformedPrivateKey describes a WIF-encoded private key that cannot be
// decoded due to being improperly formatted.
var ErrMalformedPrivateKey = errors.New("wallet: malformed private key")

// ErrChecksumMismatch describes a WIF-encoded private key whose checksum
// does not match its payload.
var ErrChecksumMismatch = errors.New("wallet: checksum mismatch")

const (
	privKeyBytesLen = 32
	cksumBytesLen   = 4
)

// WIF is a Wallet Import Format encoding of a secp256k1 private key, always
// paired with its compressed public key since this node only ever
// constructs P2PKH addresses from compressed keys.
type WIF struct {
	privKey *secp256k1.PrivateKey
	netID   byte
}

// NewWIF wraps privKey for encoding against the given network.
func NewWIF(privKey *secp256k1.PrivateKey, params *chaincfg.Params) *WIF {
	return &WIF{privKey: privKey, netID: params.PrivateKeyID}
}

// PrivKey returns the wrapped private key.
func (w *WIF) PrivKey() *secp256k1.PrivateKey { return w.privKey }

// PubKey returns the compressed serialized public key for the private key.
func (w *WIF) PubKey() []byte { return w.privKey.PubKey().SerializeCompressed() }

// IsForNet reports whether the WIF was encoded for params's network.
func (w *WIF) IsForNet(params *chaincfg.Params) bool { return w.netID == params.PrivateKeyID }

// String encodes w as a compressed-pubkey WIF string: netID || 32-byte
// private key || 0x01 || 4-byte double-SHA256 checksum, base58-encoded.
func (w *WIF) String() string {
	a := make([]byte, 0, 1+privKeyBytesLen+1+cksumBytesLen)
	a = append(a, w.netID)
	a = append(a, w.privKey.Serialize()...)
	a = append(a, 0x01)

	cksum := chainhash.DoubleHashB(a)
	a = append(a, cksum[:cksumBytesLen]...)
	return base58.Encode(a)
}

// DecodeWIF decodes a compressed-pubkey WIF string produced by String.
func DecodeWIF(wif string) (*WIF, error) {
	decoded := base58.Decode(wif)
	if len(decoded) != 1+privKeyBytesLen+1+cksumBytesLen {
		return nil, ErrMalformedPrivateKey
	}
	if decoded[1+privKeyBytesLen] != 0x01 {
		return nil, ErrMalformedPrivateKey
	}

	payload := decoded[:1+privKeyBytesLen+1]
	cksum := chainhash.DoubleHashB(payload)
	if !bytes.Equal(cksum[:cksumBytesLen], decoded[len(decoded)-cksumBytesLen:]) {
		return nil, ErrChecksumMismatch
	}

	netID := decoded[0]
	privKeyBytes := decoded[1 : 1+privKeyBytesLen]
	priv := secp256k1.PrivKeyFromBytes(privKeyBytes)
	return &WIF{privKey: priv, netID: netID}, nil
}

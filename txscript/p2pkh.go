// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "fmt"

// PubKeyHashLen is the length in bytes of a HASH160(pubkey) value.
const PubKeyHashLen = 20

// ExtractPubKeyHash extracts the 20-byte public key hash from script if it
// is a standard pay-to-pubkey-hash-ecdsa-secp256k1 script of the form:
//
//	OP_DUP OP_HASH160 <20-byte hash> OP_EQUALVERIFY OP_CHECKSIG
//
// It returns nil for any other script.
func ExtractPubKeyHash(script []byte) []byte {
	if len(script) == 25 &&
		script[0] == OP_DUP &&
		script[1] == OP_HASH160 &&
		script[2] == OP_DATA_20 &&
		script[23] == OP_EQUALVERIFY &&
		script[24] == OP_CHECKSIG {

		return script[3:23]
	}
	return nil
}

// IsPubKeyHashScript reports whether script is a standard P2PKH locking
// script.
func IsPubKeyHashScript(script []byte) bool {
	return ExtractPubKeyHash(script) != nil
}

// PayToPubKeyHashScript builds a standard P2PKH locking script paying to
// pubKeyHash, which must be exactly PubKeyHashLen bytes.
func PayToPubKeyHashScript(pubKeyHash []byte) ([]byte, error) {
	if len(pubKeyHash) != PubKeyHashLen {
		return nil, fmt.Errorf("txscript: pubkey hash must be %d bytes, got %d",
			PubKeyHashLen, len(pubKeyHash))
	}

	script := make([]byte, 0, 25)
	script = append(script, OP_DUP, OP_HASH160, OP_DATA_20)
	script = append(script, pubKeyHash...)
	script = append(script, OP_EQUALVERIFY, OP_CHECKSIG)
	return script, nil
}

// canonicalPush returns the minimal-push encoding of data: a single opcode
// byte whose value equals len(data) for pushes up to 75 bytes, followed
// by OP_PUSHDATA1/2 length prefixes for longer data.
func canonicalPush(data []byte) []byte {
	n := len(data)
	switch {
	case n < OP_PUSHDATA1:
		return append([]byte{byte(n)}, data...)
	case n <= 0xff:
		return append([]byte{OP_PUSHDATA1, byte(n)}, data...)
	case n <= 0xffff:
		buf := []byte{OP_PUSHDATA2, byte(n), byte(n >> 8)}
		return append(buf, data...)
	default:
		buf := []byte{OP_PUSHDATA4, byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)}
		return append(buf, data...)
	}
}

// SignatureScript builds a standard P2PKH unlocking script: a push of the
// DER-encoded signature (with the trailing sighash-type byte) followed by
// a push of the serialized public key.
func SignatureScript(sig, pubKey []byte) []byte {
	out := make([]byte, 0, len(sig)+len(pubKey)+10)
	out = append(out, canonicalPush(sig)...)
	out = append(out, canonicalPush(pubKey)...)
	return out
}

// ExtractSignatureAndPubKey parses a standard P2PKH unlocking script into
// its signature and public key pushes. It returns an error if sigScript
// does not consist of exactly two data pushes.
func ExtractSignatureAndPubKey(sigScript []byte) (sig, pubKey []byte, err error) {
	pushes, err := extractDataPushes(sigScript)
	if err != nil {
		return nil, nil, err
	}
	if len(pushes) != 2 {
		return nil, nil, fmt.Errorf("txscript: expected 2 data pushes in P2PKH sigScript, got %d", len(pushes))
	}
	return pushes[0], pushes[1], nil
}

// extractDataPushes tokenizes a script consisting solely of data pushes
// (as produced by SignatureScript) and returns each pushed byte slice in
// order.
func extractDataPushes(script []byte) ([][]byte, error) {
	var pushes [][]byte
	i := 0
	for i < len(script) {
		op := script[i]
		i++

		var dataLen int
		switch {
		case op < OP_PUSHDATA1:
			dataLen = int(op)
		case op == OP_PUSHDATA1:
			if i+1 > len(script) {
				return nil, fmt.Errorf("txscript: truncated OP_PUSHDATA1")
			}
			dataLen = int(script[i])
			i++
		case op == OP_PUSHDATA2:
			if i+2 > len(script) {
				return nil, fmt.Errorf("txscript: truncated OP_PUSHDATA2")
			}
			dataLen = int(script[i]) | int(script[i+1])<<8
			i += 2
		case op == OP_PUSHDATA4:
			if i+4 > len(script) {
				return nil, fmt.Errorf("txscript: truncated OP_PUSHDATA4")
			}
			dataLen = int(script[i]) | int(script[i+1])<<8 | int(script[i+2])<<16 | int(script[i+3])<<24
			i += 4
		default:
			return nil, fmt.Errorf("txscript: unexpected non-push opcode 0x%02x", op)
		}

		if i+dataLen > len(script) {
			return nil, fmt.Errorf("txscript: truncated data push")
		}
		pushes = append(pushes, script[i:i+dataLen])
		i += dataLen
	}
	return pushes, nil
}

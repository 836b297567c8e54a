// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"errors"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/btcnode/node/chainhash"
)

// TestMessageRoundTrip exercises every supported command: encoding a message
// and decoding the result must reproduce the original value, and decoding a
// canonically-encoded payload and re-encoding it must reproduce the same
// bytes (spec invariant 5).
func TestMessageRoundTrip(t *testing.T) {
	pver := ProtocolVersion
	btcnet := TestNet3

	hash := chainhash.HashH([]byte("round trip"))

	msgs := []Message{
		&MsgVersion{
			ProtocolVersion: int32(ProtocolVersion),
			Services:        SFNodeNetwork,
			Timestamp:       time.Unix(1600000000, 0),
			AddrYou:         NetAddress{IP: net.ParseIP("127.0.0.1").To16()},
			AddrMe:          NetAddress{IP: net.ParseIP("127.0.0.2").To16()},
			Nonce:           1234567890,
			UserAgent:       DefaultUserAgent,
			LastBlock:       55,
		},
		NewMsgVerAck(),
		NewMsgPing(42),
		NewMsgPong(42),
		func() Message {
			m := NewMsgGetHeaders()
			m.AddBlockLocatorHash(&hash)
			return m
		}(),
		func() Message {
			m := NewMsgHeaders()
			m.AddBlockHeader(&BlockHeader{
				Version:    1,
				PrevBlock:  hash,
				MerkleRoot: hash,
				Timestamp:  time.Unix(1600000000, 0),
				Bits:       0x1d00ffff,
				Nonce:      7,
			})
			return m
		}(),
		func() Message {
			m := NewMsgGetData()
			m.AddInvVect(NewInvVect(InvTypeBlock, &hash))
			return m
		}(),
		&MsgBlock{
			Header: BlockHeader{
				Version:    1,
				PrevBlock:  hash,
				MerkleRoot: hash,
				Timestamp:  time.Unix(1600000000, 0),
				Bits:       0x1d00ffff,
				Nonce:      7,
			},
			Transactions: []*MsgTx{sampleCoinbaseTx()},
		},
		&MsgTx{Version: 1, TxIn: []*TxIn{{SignatureScript: []byte{}, Sequence: MaxTxInSequenceNum}}, TxOut: []*TxOut{{Value: 5000, PkScript: []byte{}}}},
		func() Message {
			m := NewMsgInv()
			m.AddInvVect(NewInvVect(InvTypeTx, &hash))
			return m
		}(),
		func() Message {
			m := NewMsgNotFound()
			m.AddInvVect(NewInvVect(InvTypeTx, &hash))
			return m
		}(),
		NewMsgSendHeaders(),
		NewMsgGetBlocks(&hash),
	}

	for _, msg := range msgs {
		var buf bytes.Buffer
		if err := WriteMessage(&buf, msg, pver, btcnet); err != nil {
			t.Fatalf("%T: WriteMessage failed: %v", msg, err)
		}

		gotMsg, _, err := ReadMessage(bytes.NewReader(buf.Bytes()), pver, btcnet)
		if err != nil {
			t.Fatalf("%T: ReadMessage failed: %v", msg, err)
		}
		if !reflect.DeepEqual(gotMsg, msg) {
			t.Fatalf("%T: round trip mismatch\ngot:  %+v\nwant: %+v", msg, gotMsg, msg)
		}

		var rebuf bytes.Buffer
		if err := WriteMessage(&rebuf, gotMsg, pver, btcnet); err != nil {
			t.Fatalf("%T: re-encode failed: %v", msg, err)
		}
		if !bytes.Equal(buf.Bytes(), rebuf.Bytes()) {
			t.Fatalf("%T: re-encoded bytes differ from original", msg)
		}
	}
}

func sampleCoinbaseTx() *MsgTx {
	return &MsgTx{
		Version: 1,
		TxIn: []*TxIn{{
			PreviousOutPoint: OutPoint{Index: CoinbaseIndex},
			SignatureScript:  []byte{0x01, 0x02},
			Sequence:         MaxTxInSequenceNum,
		}},
		TxOut: []*TxOut{{
			Value:    5000000000,
			PkScript: []byte{0x76, 0xa9, 0x14},
		}},
	}
}

// TestBadMagicDisconnect covers S2: an inbound envelope with the wrong
// network magic is rejected with ErrBadMagic.
func TestBadMagicDisconnect(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMessage(&buf, NewMsgPing(1), ProtocolVersion, BitcoinNet(0xdeadbeef)); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}

	_, _, err := ReadMessage(bytes.NewReader(buf.Bytes()), ProtocolVersion, TestNet3)
	var msgErr *MessageError
	if !errors.As(err, &msgErr) || msgErr.Kind != ErrBadMagic {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
}

// TestBadChecksumDisconnect corrupts a payload after encoding and verifies
// the checksum mismatch is detected and reported as ErrBadChecksum.
func TestBadChecksumDisconnect(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMessage(&buf, NewMsgPing(1), ProtocolVersion, TestNet3); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}

	raw := buf.Bytes()
	raw[len(raw)-1] ^= 0xff

	_, _, err := ReadMessage(bytes.NewReader(raw), ProtocolVersion, TestNet3)
	var msgErr *MessageError
	if !errors.As(err, &msgErr) || msgErr.Kind != ErrBadChecksum {
		t.Fatalf("expected ErrBadChecksum, got %v", err)
	}
}

// TestTruncatedMessage covers a stream that ends before a full message is
// available.
func TestTruncatedMessage(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMessage(&buf, NewMsgPing(1), ProtocolVersion, TestNet3); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}

	truncated := buf.Bytes()[:MessageHeaderSize-1]
	_, _, err := ReadMessage(bytes.NewReader(truncated), ProtocolVersion, TestNet3)
	var msgErr *MessageError
	if !errors.As(err, &msgErr) || msgErr.Kind != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

// TestOversizePayloadRejected covers a header that claims a payload larger
// than MaxMessagePayload.
func TestOversizePayloadRejected(t *testing.T) {
	var buf bytes.Buffer
	writeElement(&buf, uint32(TestNet3))
	var cmd [CommandSize]byte
	copy(cmd[:], CmdPing)
	buf.Write(cmd[:])
	writeElement(&buf, uint32(MaxMessagePayload+1))
	buf.Write([]byte{0, 0, 0, 0})

	_, _, err := ReadMessage(&buf, ProtocolVersion, TestNet3)
	var msgErr *MessageError
	if !errors.As(err, &msgErr) || msgErr.Kind != ErrOversizePayload {
		t.Fatalf("expected ErrOversizePayload, got %v", err)
	}
}

// TestUnknownCommandDropped covers an unrecognized command string; the
// caller is expected to log and drop it rather than treat it as fatal.
func TestUnknownCommandDropped(t *testing.T) {
	var buf bytes.Buffer
	writeElement(&buf, uint32(TestNet3))
	var cmd [CommandSize]byte
	copy(cmd[:], "bogus")
	buf.Write(cmd[:])
	writeElement(&buf, uint32(0))
	sum := chainhash.DoubleHashB(nil)
	buf.Write(sum[:4])

	_, _, _, err := ReadMessageN(&buf, ProtocolVersion, TestNet3)
	var msgErr *MessageError
	if !errors.As(err, &msgErr) || msgErr.Kind != ErrUnknownField {
		t.Fatalf("expected ErrUnknownField for unknown command, got %v", err)
	}
}

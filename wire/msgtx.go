// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"

	"github.com/btcnode/node/chainhash"
)

// TxVersion is the current latest supported transaction version.
const TxVersion = 1

// MaxTxInSequenceNum is the maximum sequence number a transaction input can
// have.
const MaxTxInSequenceNum uint32 = 0xffffffff

// CoinbaseIndex identifies the single input of a coinbase transaction.
const (
	// CoinbaseIndex is the previous outpoint index used by every coinbase
	// input.
	CoinbaseIndex uint32 = 0xffffffff
)

// defaultTxInOutAlloc is the default allocation size for transaction inputs
// and outputs, to avoid needless reallocation.
const (
	defaultTxInOutAlloc = 15
)

// maxTxInPerMessage and maxTxOutPerMessage bound the size of a claimed input
// or output count so a malicious peer can't force an over-large allocation.
const (
	maxTxInPerMessage  = (MaxMessagePayload / 41) + 1
	maxTxOutPerMessage = (MaxMessagePayload / 9) + 1
)

// OutPoint defines a bitcoin data type that is used to track previous
// transaction outputs.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new bitcoin transaction outpoint point with the
// provided hash and index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{Hash: *hash, Index: index}
}

// TxIn defines a bitcoin transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction input.
func (t *TxIn) SerializeSize() int {
	return 40 + VarIntSerializeSize(uint64(len(t.SignatureScript))) + len(t.SignatureScript)
}

// NewTxIn returns a new bitcoin transaction input with the provided previous
// outpoint and signature script with a default sequence of MaxTxInSequenceNum.
func NewTxIn(prevOut *OutPoint, signatureScript []byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Sequence:         MaxTxInSequenceNum,
	}
}

// TxOut defines a bitcoin transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// SerializeSize returns the number of bytes it would take to serialize the
// output.
func (t *TxOut) SerializeSize() int {
	return 8 + VarIntSerializeSize(uint64(len(t.PkScript))) + len(t.PkScript)
}

// NewTxOut returns a new bitcoin transaction output with the provided
// transaction value and public key script.
func NewTxOut(value int64, pkScript []byte) *TxOut {
	return &TxOut{Value: value, PkScript: pkScript}
}

// MsgTx implements the Message interface and represents a bitcoin tx
// message.  It is used to deliver transaction information in response to a
// getdata message (MsgGetData) for a given transaction, or relayed when
// accepted into the mempool.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// TxHash computes the double-sha256 hash of the transaction's canonical
// serialization.  It is the identifier used throughout the protocol.
func (msg *MsgTx) TxHash() chainhash.Hash {
	var buf bytes.Buffer
	_ = msg.Serialize(&buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// IsCoinBase determines whether the transaction is a coinbase transaction,
// i.e. its single input references the null outpoint.
func (msg *MsgTx) IsCoinBase() bool {
	if len(msg.TxIn) != 1 {
		return false
	}
	prevOut := &msg.TxIn[0].PreviousOutPoint
	return prevOut.Index == CoinbaseIndex && prevOut.Hash == zeroHash
}

var zeroHash chainhash.Hash

// BtcDecode decodes r using the wire protocol encoding into the receiver.
// This is part of the Message interface implementation.
func (msg *MsgTx) BtcDecode(r io.Reader, pver uint32) error {
	version, err := binarySerializer.Uint32(r)
	if err != nil {
		return err
	}
	msg.Version = int32(version)

	count, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if count > uint64(maxTxInPerMessage) {
		return messageError("MsgTx.BtcDecode", "too many input transactions")
	}

	txIns := make([]TxIn, count)
	msg.TxIn = make([]*TxIn, count)
	for i := uint64(0); i < count; i++ {
		ti := &txIns[i]
		if err := readTxIn(r, pver, ti); err != nil {
			return err
		}
		msg.TxIn[i] = ti
	}

	count, err = ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if count > uint64(maxTxOutPerMessage) {
		return messageError("MsgTx.BtcDecode", "too many output transactions")
	}

	txOuts := make([]TxOut, count)
	msg.TxOut = make([]*TxOut, count)
	for i := uint64(0); i < count; i++ {
		to := &txOuts[i]
		if err := readTxOut(r, pver, to); err != nil {
			return err
		}
		msg.TxOut[i] = to
	}

	lockTime, err := binarySerializer.Uint32(r)
	if err != nil {
		return err
	}
	msg.LockTime = lockTime

	return nil
}

// Deserialize is an alias for BtcDecode at protocol version 0, matching the
// storage serialization.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	return msg.BtcDecode(r, 0)
}

// BtcEncode encodes the receiver to w using the wire protocol encoding. This
// is part of the Message interface implementation.
func (msg *MsgTx) BtcEncode(w io.Writer, pver uint32) error {
	if err := binarySerializer.PutUint32(w, uint32(msg.Version)); err != nil {
		return err
	}

	if err := WriteVarInt(w, pver, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeTxIn(w, pver, ti); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, pver, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := writeTxOut(w, pver, to); err != nil {
			return err
		}
	}

	return binarySerializer.PutUint32(w, msg.LockTime)
}

// Serialize encodes the transaction using the storage serialization (no
// protocol version dependence), suitable for hashing.
func (msg *MsgTx) Serialize(w io.Writer) error {
	return msg.BtcEncode(w, 0)
}

// Command returns the protocol command string for the message.  This is
// part of the Message interface implementation.
func (msg *MsgTx) Command() string {
	return CmdTx
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the Message interface implementation.
func (msg *MsgTx) MaxPayloadLength(pver uint32) uint32 {
	return MaxMessagePayload
}

func readTxIn(r io.Reader, pver uint32, ti *TxIn) error {
	if err := readElement(r, &ti.PreviousOutPoint.Hash); err != nil {
		return err
	}
	index, err := binarySerializer.Uint32(r)
	if err != nil {
		return err
	}
	ti.PreviousOutPoint.Index = index

	script, err := ReadVarBytes(r, pver, MaxMessagePayload, "signature script")
	if err != nil {
		return err
	}
	ti.SignatureScript = script

	seq, err := binarySerializer.Uint32(r)
	if err != nil {
		return err
	}
	ti.Sequence = seq
	return nil
}

func writeTxIn(w io.Writer, pver uint32, ti *TxIn) error {
	if err := writeElement(w, &ti.PreviousOutPoint.Hash); err != nil {
		return err
	}
	if err := binarySerializer.PutUint32(w, ti.PreviousOutPoint.Index); err != nil {
		return err
	}
	if err := WriteVarBytes(w, pver, ti.SignatureScript); err != nil {
		return err
	}
	return binarySerializer.PutUint32(w, ti.Sequence)
}

func readTxOut(r io.Reader, pver uint32, to *TxOut) error {
	value, err := binarySerializer.Uint64(r)
	if err != nil {
		return err
	}
	to.Value = int64(value)

	script, err := ReadVarBytes(r, pver, MaxMessagePayload, "public key script")
	if err != nil {
		return err
	}
	to.PkScript = script
	return nil
}

func writeTxOut(w io.Writer, pver uint32, to *TxOut) error {
	if err := binarySerializer.PutUint64(w, uint64(to.Value)); err != nil {
		return err
	}
	return WriteVarBytes(w, pver, to.PkScript)
}

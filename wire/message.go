// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/btcnode/node/chainhash"
)

// MessageHeaderSize is the number of bytes in a bitcoin message header.
// Bitcoin network (magic) 4 bytes + command 12 bytes + payload length 4
// bytes + checksum 4 bytes.
const MessageHeaderSize = 24

// CommandSize is the fixed size of all commands in the common bitcoin
// message header.  Shorter commands must be zero padded.
const CommandSize = 12

// MaxMessagePayload is the maximum bytes a message payload can be, 32 MiB.
const MaxMessagePayload = 32 * 1024 * 1024

// Commands used in bitcoin message headers which describe the type of
// message.
const (
	CmdVersion     = "version"
	CmdVerAck      = "verack"
	CmdPing        = "ping"
	CmdPong        = "pong"
	CmdGetHeaders  = "getheaders"
	CmdHeaders     = "headers"
	CmdGetData     = "getdata"
	CmdBlock       = "block"
	CmdTx          = "tx"
	CmdInv         = "inv"
	CmdNotFound    = "notfound"
	CmdSendHeaders = "sendheaders"
	CmdGetBlocks   = "getblocks"
)

// Message is the interface that describes a bitcoin message.  A type that
// implements Message has complete control over the representation of its
// data and may therefore contain additional fields not present in the wire
// representation of that message type.
type Message interface {
	BtcDecode(io.Reader, uint32) error
	BtcEncode(io.Writer, uint32) error
	Command() string
	MaxPayloadLength(uint32) uint32
}

// makeEmptyMessage creates a message of the appropriate concrete type based
// on the command.
func makeEmptyMessage(command string) (Message, error) {
	switch command {
	case CmdVersion:
		return &MsgVersion{}, nil
	case CmdVerAck:
		return &MsgVerAck{}, nil
	case CmdPing:
		return &MsgPing{}, nil
	case CmdPong:
		return &MsgPong{}, nil
	case CmdGetHeaders:
		return &MsgGetHeaders{}, nil
	case CmdHeaders:
		return &MsgHeaders{}, nil
	case CmdGetData:
		return &MsgGetData{}, nil
	case CmdBlock:
		return &MsgBlock{}, nil
	case CmdTx:
		return &MsgTx{}, nil
	case CmdInv:
		return &MsgInv{}, nil
	case CmdNotFound:
		return &MsgNotFound{}, nil
	case CmdSendHeaders:
		return &MsgSendHeaders{}, nil
	case CmdGetBlocks:
		return &MsgGetBlocks{}, nil
	default:
		return nil, fmt.Errorf("unhandled command [%s]", command)
	}
}

// messageHeader defines the header structure for all bitcoin protocol
// messages.
type messageHeader struct {
	magic    BitcoinNet
	command  string
	length   uint32
	checksum [4]byte
}

// readMessageHeader reads a bitcoin message header from r.
func readMessageHeader(r io.Reader) (int, *messageHeader, error) {
	var headerBytes [MessageHeaderSize]byte
	n, err := io.ReadFull(r, headerBytes[:])
	if err != nil {
		return n, nil, &MessageError{Func: "readMessageHeader", Kind: ErrTruncated, Description: err.Error()}
	}
	hr := bytes.NewReader(headerBytes[:])

	var command [CommandSize]byte
	var magic uint32
	var length uint32
	var checksum [4]byte
	_ = readElement(hr, &magic)
	_, _ = hr.Read(command[:])
	_ = readElement(hr, &length)
	_, _ = hr.Read(checksum[:])

	commandString := string(bytes.TrimRight(command[:], "\x00"))

	hdr := &messageHeader{
		magic:    BitcoinNet(magic),
		command:  commandString,
		length:   length,
		checksum: checksum,
	}
	return n, hdr, nil
}

// discardInput reads and discards the remaining n bytes from r.
func discardInput(r io.Reader, n uint32) {
	maxSize := uint32(10 * 1024)
	numReads := n / maxSize
	bytesRemaining := n % maxSize
	if n > 0 {
		buf := make([]byte, maxSize)
		for i := uint32(0); i < numReads; i++ {
			io.ReadFull(r, buf)
		}
		if bytesRemaining > 0 {
			io.ReadFull(r, buf[:bytesRemaining])
		}
	}
}

// WriteMessageN writes a bitcoin Message to w including the necessary
// header information and returns the number of bytes written.
func WriteMessageN(w io.Writer, msg Message, pver uint32, btcnet BitcoinNet) (int, error) {
	totalBytes := 0

	var bw bytes.Buffer
	if err := msg.BtcEncode(&bw, pver); err != nil {
		return totalBytes, err
	}
	payload := bw.Bytes()
	lenp := len(payload)

	cmd := msg.Command()
	if len(cmd) > CommandSize {
		str := fmt.Sprintf("command [%s] is too long [max %v]", cmd, CommandSize)
		return totalBytes, &MessageError{Func: "WriteMessageN", Kind: ErrUnknownField, Description: str}
	}

	maxPayload := msg.MaxPayloadLength(pver)
	if uint32(lenp) > maxPayload {
		str := fmt.Sprintf("message payload is too large - encoded "+
			"%d bytes, but maximum message payload is %d bytes",
			lenp, maxPayload)
		return totalBytes, &MessageError{Func: "WriteMessageN", Kind: ErrOversizePayload, Description: str}
	}

	var hw bytes.Buffer
	writeElement(&hw, uint32(btcnet))

	var command [CommandSize]byte
	copy(command[:], cmd)
	hw.Write(command[:])

	writeElement(&hw, uint32(lenp))

	chksum := chainhash.DoubleHashB(payload)
	hw.Write(chksum[0:4])

	n, err := w.Write(hw.Bytes())
	totalBytes += n
	if err != nil {
		return totalBytes, err
	}

	n, err = w.Write(payload)
	totalBytes += n
	return totalBytes, err
}

// ReadMessageN reads, validates, and parses the next bitcoin Message from r
// for the provided protocol version and bitcoin network, returning the
// number of bytes read in addition to the parsed Message and raw bytes which
// comprise the message.
func ReadMessageN(r io.Reader, pver uint32, btcnet BitcoinNet) (int, Message, []byte, error) {
	totalBytes := 0
	n, hdr, err := readMessageHeader(r)
	totalBytes += n
	if err != nil {
		return totalBytes, nil, nil, err
	}

	if hdr.magic != btcnet {
		discardInput(r, hdr.length)
		str := fmt.Sprintf("message from other network [%v]", hdr.magic)
		return totalBytes, nil, nil, &MessageError{Func: "ReadMessageN", Kind: ErrBadMagic, Description: str}
	}

	for i, b := range []byte(hdr.command) {
		if b == 0 {
			hdr.command = hdr.command[:i]
			break
		}
	}

	if hdr.length > MaxMessagePayload {
		str := fmt.Sprintf("message payload is too large - header "+
			"indicates %d bytes, but max message payload is %d bytes",
			hdr.length, MaxMessagePayload)
		return totalBytes, nil, nil, &MessageError{Func: "ReadMessageN", Kind: ErrOversizePayload, Description: str}
	}

	msg, err := makeEmptyMessage(hdr.command)
	if err != nil {
		discardInput(r, hdr.length)
		return totalBytes, nil, nil, &MessageError{Func: "ReadMessageN", Kind: ErrUnknownField, Description: err.Error()}
	}

	mpl := msg.MaxPayloadLength(pver)
	if hdr.length > mpl {
		discardInput(r, hdr.length)
		str := fmt.Sprintf("payload exceeds max length - header "+
			"indicates %v bytes, but max payload size for "+
			"messages of type [%v] is %v", hdr.length, hdr.command, mpl)
		return totalBytes, nil, nil, &MessageError{Func: "ReadMessageN", Kind: ErrOversizePayload, Description: str}
	}

	payload := make([]byte, hdr.length)
	n, err = io.ReadFull(r, payload)
	totalBytes += n
	if err != nil {
		return totalBytes, nil, nil, &MessageError{Func: "ReadMessageN", Kind: ErrTruncated, Description: err.Error()}
	}

	checksum := chainhash.DoubleHashB(payload)
	if !bytes.Equal(checksum[0:4], hdr.checksum[:]) {
		str := fmt.Sprintf("payload checksum failed - header "+
			"indicates %x, but actual checksum is %x", hdr.checksum, checksum[0:4])
		return totalBytes, nil, nil, &MessageError{Func: "ReadMessageN", Kind: ErrBadChecksum, Description: str}
	}

	pr := bytes.NewReader(payload)
	if err = msg.BtcDecode(pr, pver); err != nil {
		return totalBytes, nil, nil, &MessageError{Func: "ReadMessageN", Kind: ErrTruncated, Description: err.Error()}
	}

	return totalBytes, msg, payload, nil
}

// WriteMessage is the same as WriteMessageN except it doesn't return the
// number of bytes written.
func WriteMessage(w io.Writer, msg Message, pver uint32, btcnet BitcoinNet) error {
	_, err := WriteMessageN(w, msg, pver, btcnet)
	return err
}

// ReadMessage is the same as ReadMessageN except it doesn't return the
// number of bytes read.
func ReadMessage(r io.Reader, pver uint32, btcnet BitcoinNet) (Message, []byte, error) {
	_, msg, buf, err := ReadMessageN(r, pver, btcnet)
	return msg, buf, err
}

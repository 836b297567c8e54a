// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/btcnode/node/chainhash"
)

// binaryFreeList houses a free list of byte slices used to reduce allocations
// when serializing and deserializing primitive number types.
type binaryFreeList chan *[8]byte

var binarySerializer binaryFreeList = make(chan *[8]byte, 16)

func (l binaryFreeList) Borrow() *[8]byte {
	var buf *[8]byte
	select {
	case buf = <-l:
	default:
		buf = new([8]byte)
	}
	return buf
}

func (l binaryFreeList) Return(buf *[8]byte) {
	select {
	case l <- buf:
	default:
	}
}

func (l binaryFreeList) Uint8(r io.Reader) (uint8, error) {
	buf := l.Borrow()[:1]
	defer l.Return((*[8]byte)(buf[:8:8]))
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (l binaryFreeList) Uint16(r io.Reader) (uint16, error) {
	buf := l.Borrow()[:2]
	defer l.Return((*[8]byte)(buf[:8:8]))
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

func (l binaryFreeList) Uint32(r io.Reader) (uint32, error) {
	buf := l.Borrow()[:4]
	defer l.Return((*[8]byte)(buf[:8:8]))
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

func (l binaryFreeList) Uint64(r io.Reader) (uint64, error) {
	buf := l.Borrow()[:8]
	defer l.Return((*[8]byte)(buf[:8:8]))
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

func (l binaryFreeList) PutUint8(w io.Writer, val uint8) error {
	buf := l.Borrow()[:1]
	defer l.Return((*[8]byte)(buf[:8:8]))
	buf[0] = val
	_, err := w.Write(buf)
	return err
}

func (l binaryFreeList) PutUint16(w io.Writer, val uint16) error {
	buf := l.Borrow()[:2]
	defer l.Return((*[8]byte)(buf[:8:8]))
	binary.LittleEndian.PutUint16(buf, val)
	_, err := w.Write(buf)
	return err
}

func (l binaryFreeList) PutUint32(w io.Writer, val uint32) error {
	buf := l.Borrow()[:4]
	defer l.Return((*[8]byte)(buf[:8:8]))
	binary.LittleEndian.PutUint32(buf, val)
	_, err := w.Write(buf)
	return err
}

func (l binaryFreeList) PutUint64(w io.Writer, val uint64) error {
	buf := l.Borrow()[:8]
	defer l.Return((*[8]byte)(buf[:8:8]))
	binary.LittleEndian.PutUint64(buf, val)
	_, err := w.Write(buf)
	return err
}

// Uint16BigEndian reads a big-endian uint16, used for the port field of a
// NetAddress (the one field of the wire protocol not sent little-endian).
func (l binaryFreeList) Uint16BigEndian(r io.Reader) (uint16, error) {
	buf := l.Borrow()[:2]
	defer l.Return((*[8]byte)(buf[:8:8]))
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf), nil
}

// PutUint16BigEndian writes val in big-endian order.
func (l binaryFreeList) PutUint16BigEndian(w io.Writer, val uint16) error {
	buf := l.Borrow()[:2]
	defer l.Return((*[8]byte)(buf[:8:8]))
	binary.BigEndian.PutUint16(buf, val)
	_, err := w.Write(buf)
	return err
}

// errNonCanonicalVarInt signals a var int that was encoded with more bytes
// than necessary.
func errNonCanonicalVarInt(count, discriminant uint64, min uint64) error {
	str := fmt.Sprintf("non-canonical varint %x - discriminant %x must "+
		"encode a value greater than %x", count, discriminant, min)
	return messageError("ReadVarInt", str)
}

// ReadVarInt reads a variable length integer from r and returns it as a
// uint64. The canonical 1/3/5/9-byte encoding is enforced.
func ReadVarInt(r io.Reader, pver uint32) (uint64, error) {
	discriminant, err := binarySerializer.Uint8(r)
	if err != nil {
		return 0, err
	}

	var rv uint64
	switch discriminant {
	case 0xff:
		sv, err := binarySerializer.Uint64(r)
		if err != nil {
			return 0, err
		}
		rv = sv

		const min = 0x100000000
		if rv < min {
			return 0, errNonCanonicalVarInt(rv, uint64(discriminant), min)
		}

	case 0xfe:
		sv, err := binarySerializer.Uint32(r)
		if err != nil {
			return 0, err
		}
		rv = uint64(sv)

		const min = 0x10000
		if rv < min {
			return 0, errNonCanonicalVarInt(rv, uint64(discriminant), min)
		}

	case 0xfd:
		sv, err := binarySerializer.Uint16(r)
		if err != nil {
			return 0, err
		}
		rv = uint64(sv)

		const min = 0xfd
		if rv < min {
			return 0, errNonCanonicalVarInt(rv, uint64(discriminant), min)
		}

	default:
		rv = uint64(discriminant)
	}

	return rv, nil
}

// WriteVarInt serializes val to w using the canonical 1/3/5/9-byte encoding.
func WriteVarInt(w io.Writer, pver uint32, val uint64) error {
	if val < 0xfd {
		return binarySerializer.PutUint8(w, uint8(val))
	}

	if val <= math.MaxUint16 {
		err := binarySerializer.PutUint8(w, 0xfd)
		if err != nil {
			return err
		}
		return binarySerializer.PutUint16(w, uint16(val))
	}

	if val <= math.MaxUint32 {
		err := binarySerializer.PutUint8(w, 0xfe)
		if err != nil {
			return err
		}
		return binarySerializer.PutUint32(w, uint32(val))
	}

	err := binarySerializer.PutUint8(w, 0xff)
	if err != nil {
		return err
	}
	return binarySerializer.PutUint64(w, val)
}

// VarIntSerializeSize returns the number of bytes it would take to serialize
// val as a variable length integer.
func VarIntSerializeSize(val uint64) int {
	if val < 0xfd {
		return 1
	}
	if val <= math.MaxUint16 {
		return 3
	}
	if val <= math.MaxUint32 {
		return 5
	}
	return 9
}

// ReadVarString reads a variable length string from r and returns it as a Go
// string.  A varint is used to prefix the string with its length.
func ReadVarString(r io.Reader, pver uint32) (string, error) {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return "", err
	}

	if count > MaxMessagePayload {
		str := fmt.Sprintf("variable length string is too long "+
			"[count %d, max %d]", count, MaxMessagePayload)
		return "", messageError("ReadVarString", str)
	}

	buf := make([]byte, count)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteVarString serializes str to w as a varint followed by the string's
// bytes.
func WriteVarString(w io.Writer, pver uint32, str string) error {
	err := WriteVarInt(w, pver, uint64(len(str)))
	if err != nil {
		return err
	}
	_, err = w.Write([]byte(str))
	return err
}

// ReadVarBytes reads a variable length byte array.  A varint is used to
// prefix the array with its length, which must not exceed maxAllowed.
func ReadVarBytes(r io.Reader, pver uint32, maxAllowed uint32, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return nil, err
	}

	if count > uint64(maxAllowed) {
		str := fmt.Sprintf("%s is larger than the max allowed size "+
			"[count %d, max %d]", fieldName, count, maxAllowed)
		return nil, messageError("ReadVarBytes", str)
	}

	b := make([]byte, count)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteVarBytes serializes a variable length byte array to w as a varint
// followed by the bytes themselves.
func WriteVarBytes(w io.Writer, pver uint32, bs []byte) error {
	err := WriteVarInt(w, pver, uint64(len(bs)))
	if err != nil {
		return err
	}
	_, err = w.Write(bs)
	return err
}

// readElement reads a single well-known element from r using little endian
// byte order as appropriate for the given destination type.
func readElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *int32:
		rv, err := binarySerializer.Uint32(r)
		if err != nil {
			return err
		}
		*e = int32(rv)
		return nil

	case *uint32:
		rv, err := binarySerializer.Uint32(r)
		if err != nil {
			return err
		}
		*e = rv
		return nil

	case *int64:
		rv, err := binarySerializer.Uint64(r)
		if err != nil {
			return err
		}
		*e = int64(rv)
		return nil

	case *uint64:
		rv, err := binarySerializer.Uint64(r)
		if err != nil {
			return err
		}
		*e = rv
		return nil

	case *bool:
		rv, err := binarySerializer.Uint8(r)
		if err != nil {
			return err
		}
		*e = rv != 0
		return nil

	case *time.Time:
		rv, err := binarySerializer.Uint32(r)
		if err != nil {
			return err
		}
		*e = time.Unix(int64(rv), 0)
		return nil

	case *chainhash.Hash:
		_, err := io.ReadFull(r, e[:])
		return err

	case *[4]byte:
		_, err := io.ReadFull(r, e[:])
		return err
	}

	return binary.Read(r, binary.LittleEndian, element)
}

// writeElement writes a single well-known element to w using little endian
// byte order as appropriate for the given source type.
func writeElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case int32:
		return binarySerializer.PutUint32(w, uint32(e))

	case uint32:
		return binarySerializer.PutUint32(w, e)

	case int64:
		return binarySerializer.PutUint64(w, uint64(e))

	case uint64:
		return binarySerializer.PutUint64(w, e)

	case bool:
		var v uint8
		if e {
			v = 1
		}
		return binarySerializer.PutUint8(w, v)

	case time.Time:
		return binarySerializer.PutUint32(w, uint32(e.Unix()))

	case chainhash.Hash:
		_, err := w.Write(e[:])
		return err

	case *chainhash.Hash:
		_, err := w.Write(e[:])
		return err

	case [4]byte:
		_, err := w.Write(e[:])
		return err
	}

	return binary.Write(w, binary.LittleEndian, element)
}

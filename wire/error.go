// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "fmt"

// ErrorKind identifies a kind of error from the codec.  It permits errors to
// be defined with the errors.Is predicate without callers having to know the
// specific concrete type that implements it.
type ErrorKind string

// These constants are the error kinds a caller can expect from a decode
// failure, matching the outcomes a peer session must act on by
// disconnecting.
const (
	// ErrBadMagic indicates a message's network magic did not match the
	// expected value for the configured network.
	ErrBadMagic = ErrorKind("ErrBadMagic")

	// ErrBadChecksum indicates a message's payload checksum did not match
	// the one recorded in its header.
	ErrBadChecksum = ErrorKind("ErrBadChecksum")

	// ErrTruncated indicates the stream ended before a complete message
	// could be read.
	ErrTruncated = ErrorKind("ErrTruncated")

	// ErrOversizePayload indicates a message declared a payload larger than
	// the protocol or message-specific maximum.
	ErrOversizePayload = ErrorKind("ErrOversizePayload")

	// ErrUnknownField indicates a message contained a field the decoder does
	// not understand how to interpret.
	ErrUnknownField = ErrorKind("ErrUnknownField")
)

// Error implements the error interface.
func (e ErrorKind) Error() string {
	return string(e)
}

// MessageError describes an issue encountered while decoding or encoding a
// wire message.  It carries the Kind so callers can test it with
// errors.Is(err, wire.ErrBadMagic) and the like.
type MessageError struct {
	Func        string
	Kind        ErrorKind
	Description string
}

// Error satisfies the error interface.
func (e *MessageError) Error() string {
	if e.Func != "" {
		return fmt.Sprintf("%s: %s", e.Func, e.Description)
	}
	return e.Description
}

// Unwrap returns the underlying error kind so errors.Is/As work against it.
func (e *MessageError) Unwrap() error {
	return e.Kind
}

// messageError creates a MessageError with ErrUnknownField as a catch-all
// kind; callers needing a specific Kind construct a MessageError literal
// directly.
func messageError(f, desc string) *MessageError {
	return &MessageError{Func: f, Kind: ErrUnknownField, Description: desc}
}

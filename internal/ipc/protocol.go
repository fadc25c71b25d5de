// Package ipc implements the loopback rendezvous used to keep a single instance:
// an exclusive TCP bind plus a one-shot length-prefixed envelope exchange.
package ipc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// HeaderSize is the byte length of the envelope length prefix.
const HeaderSize = 4

// DefaultMaxPayload bounds how much a single envelope may declare.
const DefaultMaxPayload = 1 << 20

var (
	// ErrTruncated reports a connection that closed or failed before a full envelope arrived.
	ErrTruncated = errors.New("truncated envelope")
	// ErrPayloadTooLarge reports a declared length above the reader's limit.
	ErrPayloadTooLarge = errors.New("envelope payload too large")
)

// Envelope is the single message a duplicate instance sends to the owner.
//
// Wire form: little-endian uint32 length, then exactly that many UTF-8 bytes.
type Envelope struct {
	Payload []byte
}

// MarshalBinary renders the envelope as one contiguous frame.
func (e Envelope) MarshalBinary() ([]byte, error) {
	if uint64(len(e.Payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(e.Payload))
	}
	frame := make([]byte, HeaderSize+len(e.Payload))
	binary.LittleEndian.PutUint32(frame[:HeaderSize], uint32(len(e.Payload)))
	copy(frame[HeaderSize:], e.Payload)
	return frame, nil
}

// WriteTo writes the framed envelope to w in a single call.
func (e Envelope) WriteTo(w io.Writer) (int64, error) {
	frame, err := e.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(frame)
	return int64(n), err
}

// ReadEnvelope reads exactly one envelope from r.
//
// A limit of zero applies DefaultMaxPayload.
func ReadEnvelope(r io.Reader, limit uint32) (Envelope, error) {
	if limit == 0 {
		limit = DefaultMaxPayload
	}

	var header [HeaderSize]byte
	if n, err := io.ReadFull(r, header[:]); err != nil {
		return Envelope{}, fmt.Errorf("%w: read length (%d/%d bytes): %w", ErrTruncated, n, HeaderSize, err)
	}

	length := binary.LittleEndian.Uint32(header[:])
	if length > limit {
		return Envelope{}, fmt.Errorf("%w: declared %d bytes, limit %d", ErrPayloadTooLarge, length, limit)
	}

	payload := make([]byte, length)
	if n, err := io.ReadFull(r, payload); err != nil {
		return Envelope{}, fmt.Errorf("%w: read payload (%d/%d bytes): %w", ErrTruncated, n, length, err)
	}

	return Envelope{Payload: payload}, nil
}

// Package protocol implements the framed TCP wire protocol the world
// core speaks with its clients: a length-prefixed frame codec, the
// handful of message types carried over it, and a hand-maintained
// dispatch table mapping wire codes to decoders and handlers.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrZeroLengthFrame is returned by DecodeFrame when a frame declares a
// payload length of zero — a framing error per §4.8, fatal to the
// connection.
var ErrZeroLengthFrame = errors.New("protocol: zero-length frame")

// ErrFrameTooLarge is returned when a frame's declared length exceeds
// the caller's configured maximum.
var ErrFrameTooLarge = errors.New("protocol: frame exceeds max message size")

const headerSize = 2 + 4 // u16 code, u32 length

// EncodeFrame writes one wire frame: big-endian u16 code, u32 length,
// then payload.
func EncodeFrame(w io.Writer, code uint16, payload []byte) error {
	var hdr [headerSize]byte
	binary.BigEndian.PutUint16(hdr[0:2], code)
	binary.BigEndian.PutUint32(hdr[2:6], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("protocol: write frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("protocol: write frame payload: %w", err)
	}
	return nil
}

// DecodeFrame reads one wire frame, refusing a zero-length payload or a
// payload longer than maxSize.
func DecodeFrame(r io.Reader, maxSize uint32) (code uint16, payload []byte, err error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, fmt.Errorf("protocol: read frame header: %w", err)
	}
	code = binary.BigEndian.Uint16(hdr[0:2])
	length := binary.BigEndian.Uint32(hdr[2:6])
	if length == 0 {
		return code, nil, ErrZeroLengthFrame
	}
	if length > maxSize {
		return code, nil, ErrFrameTooLarge
	}
	payload = make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return code, nil, fmt.Errorf("protocol: read frame payload: %w", err)
	}
	return code, payload, nil
}

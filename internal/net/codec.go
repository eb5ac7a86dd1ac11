package net

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFrame is the largest frame the 2-byte length header can describe.
const MaxFrame = 0xFFFF

// ErrFrameTooLarge is returned by WriteFrame for payloads that do not fit.
var ErrFrameTooLarge = errors.New("frame too large")

// ReadFrame reads one frame: [2 bytes LE total length incl. header][payload].
// Frames longer than limit are rejected; limit <= 0 means MaxFrame.
func ReadFrame(r io.Reader, limit int) ([]byte, error) {
	if limit <= 0 || limit > MaxFrame {
		limit = MaxFrame
	}
	var header [2]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	total := int(binary.LittleEndian.Uint16(header[:]))
	if total <= 2 || total > limit {
		return nil, fmt.Errorf("invalid frame length: %d", total)
	}

	payload := make([]byte, total-2)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload (%d bytes): %w", len(payload), err)
	}
	return payload, nil
}

// WriteFrame writes data as one frame with a single Write call.
func WriteFrame(w io.Writer, data []byte) error {
	total := len(data) + 2
	if total > MaxFrame {
		return fmt.Errorf("write frame (%d bytes): %w", len(data), ErrFrameTooLarge)
	}
	buf := make([]byte, 2, total)
	binary.LittleEndian.PutUint16(buf, uint16(total))
	buf = append(buf, data...)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

package packet

import (
	"encoding/binary"
	"errors"

	"golang.org/x/text/encoding/traditionalchinese"
)

// ErrShortPacket is reported by Reader.Err after a read ran past the end.
var ErrShortPacket = errors.New("packet: short read")

// Reader reads client packet fields. Byte 0 is always the opcode. Reads past
// the end return zero values and latch ErrShortPacket, so a handler can read
// every field first and check once.
type Reader struct {
	data  []byte
	off   int
	short bool
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data, off: 1} // skip opcode byte
}

func (r *Reader) Opcode() byte {
	if len(r.data) == 0 {
		return 0
	}
	return r.data[0]
}

func (r *Reader) need(n int) bool {
	if r.off+n > len(r.data) {
		r.short = true
		return false
	}
	return true
}

// ReadC reads 1 unsigned byte.
func (r *Reader) ReadC() byte {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

// ReadH reads 2 bytes as little-endian uint16.
func (r *Reader) ReadH() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

// ReadD reads 4 bytes as little-endian int32.
func (r *Reader) ReadD() int32 {
	if !r.need(4) {
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.off:]))
	r.off += 4
	return v
}

// ReadS reads a null-terminated Big5 string and returns UTF-8. A missing
// terminator counts as a short read.
func (r *Reader) ReadS() string {
	start := r.off
	for r.off < len(r.data) {
		if r.data[r.off] == 0 {
			raw := r.data[start:r.off]
			r.off++
			return big5ToUTF8(raw)
		}
		r.off++
	}
	r.short = true
	return big5ToUTF8(r.data[start:r.off])
}

func big5ToUTF8(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	ascii := true
	for _, b := range raw {
		if b >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(raw)
	}
	decoded, err := traditionalchinese.Big5.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Err returns ErrShortPacket if any read ran out of data.
func (r *Reader) Err() error {
	if r.short {
		return ErrShortPacket
	}
	return nil
}

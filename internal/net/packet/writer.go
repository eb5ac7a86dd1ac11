package packet

import (
	"encoding/binary"

	"golang.org/x/text/encoding/traditionalchinese"
)

// Writer builds a server packet. Multi-byte fields are little-endian and
// Bytes() pads the result to a 4-byte boundary.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

func NewWriterWithOpcode(opcode byte) *Writer {
	w := &Writer{buf: make([]byte, 0, 64)}
	w.WriteC(opcode)
	return w
}

// WriteC writes 1 byte.
func (w *Writer) WriteC(v byte) {
	w.buf = append(w.buf, v)
}

// WriteH writes 2 bytes.
func (w *Writer) WriteH(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// WriteD writes 4 bytes (signed or unsigned via cast).
func (w *Writer) WriteD(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

// WriteQ writes 8 bytes; used for instance ids.
func (w *Writer) WriteQ(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// WriteS writes a null-terminated string in MS950 (Big5), the client charset.
func (w *Writer) WriteS(s string) {
	if len(s) > 0 {
		encoded, err := traditionalchinese.Big5.NewEncoder().Bytes([]byte(s))
		if err != nil {
			// ASCII survives a raw copy
			w.buf = append(w.buf, s...)
		} else {
			w.buf = append(w.buf, encoded...)
		}
	}
	w.buf = append(w.buf, 0)
}

// WriteBytes writes raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// Bytes returns the packet padded to a 4-byte boundary.
func (w *Writer) Bytes() []byte {
	for len(w.buf)%4 != 0 {
		w.buf = append(w.buf, 0)
	}
	return w.buf
}

// RawBytes returns the packet without padding (init packet).
func (w *Writer) RawBytes() []byte {
	return w.buf
}

// Len returns the current unpadded length.
func (w *Writer) Len() int {
	return len(w.buf)
}

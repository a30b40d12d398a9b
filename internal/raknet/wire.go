package raknet

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// Magic is the fixed 16-byte RakNet constant present in every offline
// packet.
var Magic = [16]byte{
	0x00, 0xFF, 0xFF, 0x00, 0xFE, 0xFE, 0xFE, 0xFE,
	0xFD, 0xFD, 0xFD, 0xFD, 0x12, 0x34, 0x56, 0x78,
}

// Reader reads RakNet wire primitives off a byte slice, tracking an
// offset. Every method fails closed with a precise "need N, have M"
// error instead of panicking on short input.
type Reader struct {
	data   []byte
	offset int
}

// NewReader wraps data for sequential reading.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.offset
}

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return fmt.Errorf("raknet: short buffer: need %d, have %d", n, r.Remaining())
	}
	return nil
}

// Bytes reads n raw bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.data[r.offset : r.offset+n]
	r.offset += n
	return b, nil
}

// Byte reads a single byte.
func (r *Reader) Byte() (byte, error) {
	b, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Bool reads a single byte as a boolean (nonzero is true).
func (r *Reader) Bool() (bool, error) {
	b, err := r.Byte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// Uint16 reads a big-endian u16.
func (r *Reader) Uint16() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// Uint32 reads a big-endian u32.
func (r *Reader) Uint32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Uint64 reads a big-endian u64.
func (r *Reader) Uint64() (uint64, error) {
	b, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// Int64 reads a big-endian i64.
func (r *Reader) Int64() (int64, error) {
	v, err := r.Uint64()
	return int64(v), err
}

// Uint16LE reads a little-endian u16, the encoding RakNet uses for the
// address-family tag in IPv6 address records.
func (r *Reader) Uint16LE() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Uint24LE reads a 24-bit little-endian integer, the encoding RakNet uses
// for sequence numbers and reliability indices.
func (r *Reader) Uint24LE() (uint32, error) {
	b, err := r.Bytes(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, nil
}

// String reads a u16-BE length-prefixed UTF-8 string. Non-UTF-8 content is
// rejected.
func (r *Reader) String() (string, error) {
	n, err := r.Uint16()
	if err != nil {
		return "", err
	}
	b, err := r.Bytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("raknet: invalid UTF-8 in string field")
	}
	return string(b), nil
}

// Magic reads and validates the 16-byte magic constant.
func (r *Reader) Magic() error {
	b, err := r.Bytes(len(Magic))
	if err != nil {
		return err
	}
	for i, m := range Magic {
		if b[i] != m {
			return errInvalidMagic
		}
	}
	return nil
}

var errInvalidMagic = fmt.Errorf("raknet: invalid magic")

// IsInvalidMagic reports whether err came from a failed magic check, so
// callers can apply the "drop silently, no log" policy for it.
func IsInvalidMagic(err error) bool {
	return err == errInvalidMagic
}

// Writer builds a RakNet wire payload.
type Writer struct {
	data []byte
}

// NewWriter returns an empty Writer, optionally reserving capacity.
func NewWriter(sizeHint int) *Writer {
	return &Writer{data: make([]byte, 0, sizeHint)}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	return w.data
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.data)
}

// Byte appends a single byte.
func (w *Writer) Byte(b byte) {
	w.data = append(w.data, b)
}

// Bool appends a single byte, 1 for true and 0 for false.
func (w *Writer) Bool(v bool) {
	if v {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
}

// RawBytes appends raw bytes verbatim.
func (w *Writer) RawBytes(b []byte) {
	w.data = append(w.data, b...)
}

// Uint16 appends a big-endian u16.
func (w *Writer) Uint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.data = append(w.data, b[:]...)
}

// Uint32 appends a big-endian u32.
func (w *Writer) Uint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.data = append(w.data, b[:]...)
}

// Uint64 appends a big-endian u64.
func (w *Writer) Uint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.data = append(w.data, b[:]...)
}

// Int64 appends a big-endian i64.
func (w *Writer) Int64(v int64) {
	w.Uint64(uint64(v))
}

// Uint16LE appends a little-endian u16.
func (w *Writer) Uint16LE(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.data = append(w.data, b[:]...)
}

// Uint24LE appends a 24-bit little-endian integer.
func (w *Writer) Uint24LE(v uint32) {
	w.Byte(byte(v))
	w.Byte(byte(v >> 8))
	w.Byte(byte(v >> 16))
}

// String appends a u16-BE length-prefixed UTF-8 string.
func (w *Writer) String(s string) {
	w.Uint16(uint16(len(s)))
	w.data = append(w.data, s...)
}

// Magic appends the 16-byte magic constant.
func (w *Writer) Magic() {
	w.data = append(w.data, Magic[:]...)
}

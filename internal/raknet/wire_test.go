package raknet

import "testing"

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter(32)
	w.Byte(0x42)
	w.Uint16(1234)
	w.Uint32(567890)
	w.Uint24LE(0x123456)
	w.String("hello raknet")
	w.Magic()

	r := NewReader(w.Bytes())

	b, err := r.Byte()
	if err != nil || b != 0x42 {
		t.Errorf("Byte() = 0x%02X, %v, want 0x42, nil", b, err)
	}

	u16, err := r.Uint16()
	if err != nil || u16 != 1234 {
		t.Errorf("Uint16() = %d, %v, want 1234, nil", u16, err)
	}

	u32, err := r.Uint32()
	if err != nil || u32 != 567890 {
		t.Errorf("Uint32() = %d, %v, want 567890, nil", u32, err)
	}

	u24, err := r.Uint24LE()
	if err != nil || u24 != 0x123456 {
		t.Errorf("Uint24LE() = 0x%06X, %v, want 0x123456, nil", u24, err)
	}

	str, err := r.String()
	if err != nil || str != "hello raknet" {
		t.Errorf("String() = %q, %v, want %q, nil", str, err, "hello raknet")
	}

	if err := r.Magic(); err != nil {
		t.Errorf("Magic() = %v, want nil", err)
	}
}

func TestReaderShortBuffer(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.Uint32(); err == nil {
		t.Error("Uint32() on a 1-byte buffer succeeded, want short-buffer error")
	}
}

func TestReaderInvalidMagic(t *testing.T) {
	r := NewReader(make([]byte, 16))
	err := r.Magic()
	if err == nil {
		t.Fatal("Magic() on zeroed buffer succeeded, want errInvalidMagic")
	}
	if !IsInvalidMagic(err) {
		t.Errorf("IsInvalidMagic(%v) = false, want true", err)
	}
}

func TestReaderStringRejectsInvalidUTF8(t *testing.T) {
	w := NewWriter(8)
	w.Uint16(2)
	w.RawBytes([]byte{0xFF, 0xFE})
	r := NewReader(w.Bytes())
	if _, err := r.String(); err == nil {
		t.Error("String() accepted invalid UTF-8, want an error")
	}
}

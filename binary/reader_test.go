package binary

import (
	"bytes"
	"math"
	"testing"

	"github.com/d07RiV/d4data/errors"
)

func TestReaderFixedWidth(t *testing.T) {
	data := []byte{
		// bool, int8 -1, uint16 0x1234, int16 -2
		0x01, 0xff, 0x34, 0x12, 0xfe, 0xff,
		// uint32, int32 -3
		0x78, 0x56, 0x34, 0x12, 0xfd, 0xff, 0xff, 0xff,
		// uint64
		0x01, 0, 0, 0, 0x02, 0, 0, 0,
		// int64 -4
		0xfc, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	}
	r := NewReader(data)

	b, err := r.ReadBool()
	if err != nil || !b {
		t.Fatalf("ReadBool = %v, %v", b, err)
	}
	i8, err := r.ReadInt8()
	if err != nil || i8 != -1 {
		t.Fatalf("ReadInt8 = %v, %v", i8, err)
	}
	u16, err := r.ReadUint16()
	if err != nil || u16 != 0x1234 {
		t.Fatalf("ReadUint16 = %#x, %v", u16, err)
	}
	i16, err := r.ReadInt16()
	if err != nil || i16 != -2 {
		t.Fatalf("ReadInt16 = %v, %v", i16, err)
	}
	u32, err := r.ReadUint32()
	if err != nil || u32 != 0x12345678 {
		t.Fatalf("ReadUint32 = %#x, %v", u32, err)
	}
	i32, err := r.ReadInt32()
	if err != nil || i32 != -3 {
		t.Fatalf("ReadInt32 = %v, %v", i32, err)
	}
	u64, err := r.ReadUint64()
	if err != nil || u64 != 1+2<<32 {
		t.Fatalf("ReadUint64 = %v, %v", u64, err)
	}
	i64, err := r.ReadInt64()
	if err != nil || i64 != -4 {
		t.Fatalf("ReadInt64 = %v, %v", i64, err)
	}
	if !r.EOF() {
		t.Errorf("EOF = false at position %d of %d", r.Position(), r.Len())
	}
}

func TestReaderSingle(t *testing.T) {
	tests := []struct {
		in   float32
		want float64
	}{
		{0.1, 0.1},
		{1.5, 1.5},
		{-2.25, -2.25},
		{1234567.8, 1234568},
		{0, 0},
	}
	for _, tt := range tests {
		buf := make([]byte, 4)
		bits := math.Float32bits(tt.in)
		buf[0], buf[1], buf[2], buf[3] = byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24)
		got, err := NewReader(buf).ReadSingle()
		if err != nil {
			t.Fatalf("ReadSingle(%v): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ReadSingle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestReaderDoubleAdvancesEight(t *testing.T) {
	buf := make([]byte, 8)
	bits := math.Float64bits(2.5)
	for i := range buf {
		buf[i] = byte(bits >> (8 * i))
	}
	r := NewReader(buf)
	v, err := r.ReadDouble()
	if err != nil || v != 2.5 {
		t.Fatalf("ReadDouble = %v, %v", v, err)
	}
	if r.Position() != 8 {
		t.Errorf("position = %d, want 8", r.Position())
	}
}

func TestReaderString(t *testing.T) {
	r := NewReader([]byte("abc\x00\x00def"))

	s, err := r.ReadString(5)
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if s != "abc" {
		t.Errorf("ReadString = %q, want %q", s, "abc")
	}
	if r.Position() != 5 {
		t.Errorf("position = %d, want 5", r.Position())
	}

	s, err = r.ReadString(3)
	if err != nil || s != "def" {
		t.Errorf("ReadString = %q, %v; want def", s, err)
	}
}

func TestReaderCString(t *testing.T) {
	r := NewReader([]byte("hi\x00there\x00x"))
	s, err := r.ReadCString()
	if err != nil || s != "hi" {
		t.Fatalf("ReadCString = %q, %v", s, err)
	}
	s, err = r.ReadCString()
	if err != nil || s != "there" {
		t.Fatalf("ReadCString = %q, %v", s, err)
	}
	if r.Position() != 9 {
		t.Errorf("position = %d, want 9", r.Position())
	}
	if _, err := r.ReadCString(); err == nil {
		t.Error("expected error for unterminated string")
	}
}

func TestReaderHexAndBytes(t *testing.T) {
	data := []byte{0xde, 0xad, 0xbe, 0xef, 0x01}
	r := NewReader(data)
	h, err := r.ReadHex(4)
	if err != nil || h != "deadbeef" {
		t.Fatalf("ReadHex = %q, %v", h, err)
	}

	r.SetPosition(1)
	b, err := r.ReadBytes(2)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !bytes.Equal(b, []byte{0xad, 0xbe}) {
		t.Errorf("ReadBytes = %x", b)
	}
	if &b[0] != &data[1] {
		t.Error("ReadBytes should alias the base buffer")
	}
}

func TestReaderSkipAlign(t *testing.T) {
	r := NewReader(make([]byte, 16))
	if err := r.Skip(3); err != nil {
		t.Fatal(err)
	}
	r.Align(0)
	if r.Position() != 4 {
		t.Errorf("Align(0) from 3 = %d, want 4", r.Position())
	}
	r.Align(4)
	if r.Position() != 4 {
		t.Errorf("Align(4) when aligned moved to %d", r.Position())
	}
	_ = r.Skip(1)
	r.Align(8)
	if r.Position() != 8 {
		t.Errorf("Align(8) from 5 = %d, want 8", r.Position())
	}
	if err := r.Skip(-1); err == nil {
		t.Error("expected error for negative skip")
	}
}

func TestReaderOffset(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	r := NewReader(data)
	_ = r.Skip(7)

	sub, err := r.Offset(4)
	if err != nil {
		t.Fatalf("Offset: %v", err)
	}
	if sub.Position() != 0 {
		t.Errorf("re-based position = %d, want 0", sub.Position())
	}
	b, _ := sub.ReadByte()
	if b != 4 {
		t.Errorf("re-based read = %d, want 4", b)
	}
	if sub.Len() != 6 {
		t.Errorf("re-based Len = %d, want 6", sub.Len())
	}

	// Offsets are absolute within the original base, not the sub window.
	nested, err := sub.Offset(2)
	if err != nil {
		t.Fatalf("nested Offset: %v", err)
	}
	b, _ = nested.ReadByte()
	if b != 2 {
		t.Errorf("nested read = %d, want 2", b)
	}
	if r.Position() != 7 {
		t.Errorf("parent position changed to %d", r.Position())
	}
	if &sub.Base()[0] != &data[0] {
		t.Error("re-based reader must share the base buffer")
	}

	if _, err := r.Offset(11); err == nil {
		t.Error("expected error for offset past end")
	}
	if _, err := r.Offset(-1); err == nil {
		t.Error("expected error for negative offset")
	}
}

func TestReaderOutOfBounds(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	_, err := r.ReadUint32()
	if err == nil {
		t.Fatal("expected error reading past end")
	}
	if !isOutOfBounds(err) {
		t.Errorf("unexpected error kind: %v", err)
	}
	if r.Position() != 0 {
		t.Errorf("failed read moved position to %d", r.Position())
	}

	r.SetPosition(10)
	if !r.EOF() {
		t.Error("EOF should be true past the end")
	}
	if _, err := r.ReadByte(); err == nil {
		t.Error("expected error reading past end")
	}
}

func TestReaderPeek(t *testing.T) {
	r := NewReader([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0x2a, 0, 0, 0})
	v, err := r.PeekUint32At(8)
	if err != nil || v != 42 {
		t.Fatalf("PeekUint32At = %d, %v", v, err)
	}
	if r.Position() != 0 {
		t.Errorf("peek moved position to %d", r.Position())
	}
	if _, err := r.PeekUint32At(10); err == nil {
		t.Error("expected error peeking past end")
	}
	if r.Position() != 0 {
		t.Errorf("failed peek moved position to %d", r.Position())
	}
}

func isOutOfBounds(err error) bool {
	e, ok := err.(*errors.Error)
	return ok && e.Kind == errors.KindOutOfBounds
}

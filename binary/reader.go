// Package binary provides the positioned little-endian reader every resource
// decoder runs on.
//
// A Reader is a view over a shared, read-only base buffer. Offset re-bases a
// new view at an absolute offset of that base without copying, which is how
// the pointer-relative containers of the resource format are followed.
package binary

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"github.com/d07RiV/d4data/errors"
)

// Reader reads fixed-width values from a window of a shared base buffer.
// Positions are relative to the start of the window.
type Reader struct {
	base  []byte
	start int
	pos   int
}

// NewReader creates a Reader whose window is the whole of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{base: buf}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// SetPosition moves the read position. Positions past the end are allowed;
// the next read reports them.
func (r *Reader) SetPosition(pos int) {
	r.pos = pos
}

// Len returns the logical length of the window.
func (r *Reader) Len() int {
	return len(r.base) - r.start
}

// Base returns the shared base buffer.
func (r *Reader) Base() []byte {
	return r.base
}

// EOF reports whether the position has reached or passed the end of the window.
func (r *Reader) EOF() bool {
	return r.pos >= r.Len()
}

// Offset returns a new Reader whose window starts at the absolute offset pos
// of the base buffer, independent of r's own window and position.
func (r *Reader) Offset(pos int) (*Reader, error) {
	if pos < 0 || pos > len(r.base) {
		return nil, errors.OutOfBounds(errors.PhaseDecode, pos, 0, len(r.base))
	}
	return &Reader{base: r.base, start: pos}, nil
}

// Skip advances the position by n bytes without reading.
func (r *Reader) Skip(n int) error {
	if n < 0 {
		return errors.InvalidInput(errors.PhaseDecode, "negative skip "+strconv.Itoa(n))
	}
	r.pos += n
	return nil
}

// Align advances to the next multiple of n. n <= 0 aligns to 4.
func (r *Reader) Align(n int) {
	if n <= 0 {
		n = 4
	}
	if rem := r.pos % n; rem != 0 {
		r.pos += n - rem
	}
}

// take returns the next n bytes of the base buffer and advances the position.
func (r *Reader) take(n int) ([]byte, error) {
	abs := r.start + r.pos
	if n < 0 || r.pos < 0 || abs+n > len(r.base) {
		return nil, errors.OutOfBounds(errors.PhaseDecode, abs, n, len(r.base))
	}
	r.pos += n
	return r.base[abs : abs+n : abs+n], nil
}

// ReadBool reads one byte as a boolean.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.take(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint8 reads an unsigned byte.
func (r *Reader) ReadUint8() (uint8, error) {
	return r.ReadByte()
}

// ReadInt8 reads a signed byte.
func (r *Reader) ReadInt8() (int8, error) {
	b, err := r.ReadByte()
	return int8(b), err
}

// ReadUint16 reads a little-endian uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadInt16 reads a little-endian int16.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads a little-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadInt32 reads a little-endian int32.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads a little-endian uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadInt64 reads a little-endian int64.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadFloat32 reads an IEEE-754 single precision value.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadSingle reads a single precision value rounded to 7 significant digits.
func (r *Reader) ReadSingle() (float64, error) {
	f, err := r.ReadFloat32()
	if err != nil {
		return 0, err
	}
	return roundSingle(f), nil
}

func roundSingle(f float32) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', 7, 64), 64)
	if err != nil {
		// FormatFloat output always parses; keep the exact value otherwise.
		return float64(f)
	}
	return v
}

// ReadDouble reads an IEEE-754 double precision value.
func (r *Reader) ReadDouble() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

// PeekUint32At reads the uint32 at rel bytes past the current position
// without moving.
func (r *Reader) PeekUint32At(rel int) (uint32, error) {
	saved := r.pos
	r.pos += rel
	v, err := r.ReadUint32()
	r.pos = saved
	return v, err
}

// ReadBytes returns the next n bytes. The result aliases the base buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	return r.take(n)
}

// ReadString reads a fixed window of n bytes as UTF-8, truncated at the
// first zero byte.
func (r *Reader) ReadString(n int) (string, error) {
	b, err := r.take(n)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return strings.ToValidUTF8(string(b), "\uFFFD"), nil
}

// ReadCString reads a null-terminated string and consumes the terminator.
func (r *Reader) ReadCString() (string, error) {
	abs := r.start + r.pos
	if r.pos < 0 || abs > len(r.base) {
		return "", errors.OutOfBounds(errors.PhaseDecode, abs, 1, len(r.base))
	}
	i := bytes.IndexByte(r.base[abs:], 0)
	if i < 0 {
		return "", errors.OutOfBounds(errors.PhaseDecode, abs, len(r.base)-abs+1, len(r.base))
	}
	s := strings.ToValidUTF8(string(r.base[abs:abs+i]), "\uFFFD")
	r.pos += i + 1
	return s, nil
}

// ReadHex reads n bytes and renders them as lowercase hex.
func (r *Reader) ReadHex(n int) (string, error) {
	b, err := r.take(n)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

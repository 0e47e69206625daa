package sno

import (
	"encoding/json"
	"math"

	"github.com/d07RiV/d4data/binary"
)

// Float is a single precision value widened to float64. NaN and infinities
// render as JSON null.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// ReadFloat decodes a single precision value.
func ReadFloat(r *binary.Reader) (Float, error) {
	v, err := ReadFloat(r)
	return Float(v), err
}

// Vector2D is a two component float vector.
type Vector2D struct {
	X Float `json:"x"`
	Y Float `json:"y"`
}

// Vector3D is a three component float vector.
type Vector3D struct {
	X Float `json:"x"`
	Y Float `json:"y"`
	Z Float `json:"z"`
}

// Vector4D is a four component float vector.
type Vector4D struct {
	X Float `json:"x"`
	Y Float `json:"y"`
	Z Float `json:"z"`
	W Float `json:"w"`
}

// Color is an 8-bit per channel RGBA color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// ColorValue is a 32-bit per channel RGBA color.
type ColorValue struct {
	R uint32 `json:"r"`
	G uint32 `json:"g"`
	B uint32 `json:"b"`
	A uint32 `json:"a"`
}

// Optional is a value preceded by an uninterpreted tag word.
type Optional[T any] struct {
	Tag   int32 `json:"unk"`
	Value T     `json:"value"`
}

// Range is a pair of start and end values.
type Range[T any] struct {
	Start T `json:"start"`
	End   T `json:"end"`
}

// Pair is two consecutive values, encoded as a two element array.
type Pair[T any] [2]T

// StringFormula is a display string with its compiled binary formula.
// Only the display string is rendered.
type StringFormula struct {
	Value  string
	Binary []byte
}

func (f StringFormula) String() string {
	return f.Value
}

// MarshalJSON renders the display string.
func (f StringFormula) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Value)
}

// ReadVector2D decodes a Vector2D.
func ReadVector2D(r *binary.Reader) (Vector2D, error) {
	var v Vector2D
	var err error
	if v.X, err = ReadFloat(r); err != nil {
		return v, err
	}
	v.Y, err = ReadFloat(r)
	return v, err
}

// ReadVector3D decodes a Vector3D.
func ReadVector3D(r *binary.Reader) (Vector3D, error) {
	var v Vector3D
	var err error
	if v.X, err = ReadFloat(r); err != nil {
		return v, err
	}
	if v.Y, err = ReadFloat(r); err != nil {
		return v, err
	}
	v.Z, err = ReadFloat(r)
	return v, err
}

// ReadVector4D decodes a Vector4D.
func ReadVector4D(r *binary.Reader) (Vector4D, error) {
	var v Vector4D
	var err error
	if v.X, err = ReadFloat(r); err != nil {
		return v, err
	}
	if v.Y, err = ReadFloat(r); err != nil {
		return v, err
	}
	if v.Z, err = ReadFloat(r); err != nil {
		return v, err
	}
	v.W, err = ReadFloat(r)
	return v, err
}

// ReadColor decodes a Color.
func ReadColor(r *binary.Reader) (Color, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return Color{}, err
	}
	return Color{R: b[0], G: b[1], B: b[2], A: b[3]}, nil
}

// ReadColorValue decodes a ColorValue.
func ReadColorValue(r *binary.Reader) (ColorValue, error) {
	var c ColorValue
	for _, p := range []*uint32{&c.R, &c.G, &c.B, &c.A} {
		v, err := r.ReadUint32()
		if err != nil {
			return c, err
		}
		*p = v
	}
	return c, nil
}

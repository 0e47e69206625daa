package sno

import (
	"github.com/d07RiV/d4data/binary"
	"github.com/d07RiV/d4data/errors"
)

// ReadFunc decodes one value of T at the reader's position.
type ReadFunc[T any] func(r *binary.Reader) (T, error)

// DispatchFunc decodes a polymorphic element whose type tag is tag. It must
// return an UnknownTag error, without reading, when tag has no decoder.
type DispatchFunc[T any] func(r *binary.Reader, tag uint32) (T, error)

// polymorphicTagOffset is where the type tag sits inside a polymorphic element,
// after the two reserved words of the polymorphic base.
const polymorphicTagOffset = 8

// containerHeader is the shared prefix of every pointer-relative container.
type containerHeader struct {
	Offset int32
	Size   int32
}

func readContainerHeader(r *binary.Reader) (containerHeader, error) {
	var h containerHeader
	// Two reserved pointer words.
	if err := r.Skip(8); err != nil {
		return h, err
	}
	var err error
	if h.Offset, err = r.ReadInt32(); err != nil {
		return h, err
	}
	if h.Size, err = r.ReadInt32(); err != nil {
		return h, err
	}
	return h, nil
}

var errNoProgress = errors.InvalidInput(errors.PhaseDecode, "array element decoder consumed no bytes")

// UnknownTag returns the error a DispatchFunc reports for an unregistered tag.
func UnknownTag(tag uint32) error {
	return errors.UnknownTag(tag)
}

// ReadFixedArray decodes exactly n consecutive elements.
func ReadFixedArray[T any](r *binary.Reader, n int, fn ReadFunc[T]) ([]T, error) {
	out := make([]T, n)
	for i := range out {
		v, err := fn(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ReadTagMap decodes the fixed four-element tag map array.
func ReadTagMap[T any](r *binary.Reader, fn ReadFunc[T]) ([]T, error) {
	return ReadFixedArray(r, 4, fn)
}

// ReadVariableArray decodes a pointer-relative array. Elements are decoded
// from the header's offset until size bytes have been consumed; a negative
// offset or size yields an empty array.
func ReadVariableArray[T any](r *binary.Reader, fn ReadFunc[T]) ([]T, error) {
	h, err := readContainerHeader(r)
	if err != nil {
		return nil, err
	}
	if h.Offset < 0 || h.Size < 0 {
		return []T{}, nil
	}
	src, err := r.Offset(int(h.Offset))
	if err != nil {
		return nil, err
	}
	out := []T{}
	for src.Position() < int(h.Size) {
		start := src.Position()
		v, err := fn(src)
		if err != nil {
			return nil, err
		}
		if src.Position() == start {
			return nil, errNoProgress
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadCString decodes a pointer-relative string of size bytes, truncated at
// the first zero byte. A non-positive offset or size yields "".
func ReadCString(r *binary.Reader) (string, error) {
	h, err := readContainerHeader(r)
	if err != nil {
		return "", err
	}
	if h.Offset <= 0 || h.Size <= 0 {
		return "", nil
	}
	src, err := r.Offset(int(h.Offset))
	if err != nil {
		return "", err
	}
	return src.ReadString(int(h.Size))
}

// ReadBytes decodes a pointer-relative binary blob. The result aliases the
// payload buffer.
func ReadBytes(r *binary.Reader) ([]byte, error) {
	h, err := readContainerHeader(r)
	if err != nil {
		return nil, err
	}
	if h.Offset <= 0 || h.Size <= 0 {
		return []byte{}, nil
	}
	src, err := r.Offset(int(h.Offset))
	if err != nil {
		return nil, err
	}
	return src.ReadBytes(int(h.Size))
}

// ReadPolymorphicArray decodes a pointer-relative array whose elements carry
// their own type tag. The element region starts after count*8 bytes of index
// table; each element's tag is peeked and dispatch decodes the element from
// its start.
func ReadPolymorphicArray[T any](r *binary.Reader, dispatch DispatchFunc[T]) ([]T, error) {
	h, err := readContainerHeader(r)
	if err != nil {
		return nil, err
	}
	count, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	// pad
	if err := r.Skip(4); err != nil {
		return nil, err
	}
	if h.Offset < 0 || h.Size < 0 {
		return []T{}, nil
	}
	src, err := r.Offset(int(h.Offset))
	if err != nil {
		return nil, err
	}
	if count > 0 {
		if err := src.Skip(int(count) * 8); err != nil {
			return nil, err
		}
	}
	out := []T{}
	for src.Position() < int(h.Size) {
		tag, err := src.PeekUint32At(polymorphicTagOffset)
		if err != nil {
			return nil, err
		}
		start := src.Position()
		v, err := dispatch(src, tag)
		if err != nil {
			return nil, err
		}
		if src.Position() == start {
			return nil, errNoProgress
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadOptional decodes a tag word followed by the wrapped value. The value is
// always present in the stream.
func ReadOptional[T any](r *binary.Reader, fn ReadFunc[T]) (Optional[T], error) {
	var o Optional[T]
	var err error
	if o.Tag, err = r.ReadInt32(); err != nil {
		return o, err
	}
	if o.Value, err = fn(r); err != nil {
		return o, err
	}
	return o, nil
}

// ReadRange decodes two consecutive values of T.
func ReadRange[T any](r *binary.Reader, fn ReadFunc[T]) (Range[T], error) {
	var v Range[T]
	var err error
	if v.Start, err = fn(r); err != nil {
		return v, err
	}
	if v.End, err = fn(r); err != nil {
		return v, err
	}
	return v, nil
}

// ReadPair decodes two consecutive values of T.
func ReadPair[T any](r *binary.Reader, fn ReadFunc[T]) (Pair[T], error) {
	var p Pair[T]
	var err error
	if p[0], err = fn(r); err != nil {
		return p, err
	}
	if p[1], err = fn(r); err != nil {
		return p, err
	}
	return p, nil
}

// ReadStringFormula decodes a display string followed by its binary formula.
func ReadStringFormula(r *binary.Reader) (StringFormula, error) {
	var f StringFormula
	var err error
	if f.Value, err = ReadCString(r); err != nil {
		return f, err
	}
	if f.Binary, err = ReadBytes(r); err != nil {
		return f, err
	}
	return f, nil
}

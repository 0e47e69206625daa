package interp

import (
	"github.com/d07RiV/d4data/binary"
	"github.com/d07RiV/d4data/schema"
	"github.com/d07RiV/d4data/sno"
)

// DecodeFunc decodes one value of a catalog type.
type DecodeFunc func(in *Interpreter, r *binary.Reader, dt schema.DataType) (any, error)

func box[T any](v T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

func scalar[T any](read func(r *binary.Reader) (T, error)) DecodeFunc {
	return func(_ *Interpreter, r *binary.Reader, _ schema.DataType) (any, error) {
		return box(read(r))
	}
}

func pair[T any](read func(r *binary.Reader) (T, error)) DecodeFunc {
	return func(_ *Interpreter, r *binary.Reader, _ schema.DataType) (any, error) {
		return box(sno.ReadPair(r, read))
	}
}

// Catalog maps every schema catalog entry to its interpreted decoder.
// DT_NULL has no decoder: it never produces a value.
var Catalog = map[string]DecodeFunc{
	schema.DTFixedArray: func(in *Interpreter, r *binary.Reader, dt schema.DataType) (any, error) {
		return box(sno.ReadFixedArray(r, dt.Length, in.child(dt)))
	},
	schema.DTVariableArray: func(in *Interpreter, r *binary.Reader, dt schema.DataType) (any, error) {
		return box(sno.ReadVariableArray(r, in.child(dt)))
	},
	schema.DTCharArray: func(_ *Interpreter, r *binary.Reader, dt schema.DataType) (any, error) {
		return box(r.ReadString(dt.Length))
	},
	schema.DTCString:       scalar(sno.ReadCString),
	schema.DTStringFormula: scalar(sno.ReadStringFormula),
	schema.DTPolymorphicArray: func(in *Interpreter, r *binary.Reader, _ schema.DataType) (any, error) {
		return box(sno.ReadPolymorphicArray(r, in.element))
	},
	schema.DTEnum: scalar((*binary.Reader).ReadInt32),
	schema.DTGBID: scalar((*binary.Reader).ReadInt32),
	schema.DTSNO: func(_ *Interpreter, r *binary.Reader, dt schema.DataType) (any, error) {
		return box(sno.ReadRef(r, dt.Kind))
	},
	schema.DTChar:               scalar((*binary.Reader).ReadInt8),
	schema.DTByte:               scalar((*binary.Reader).ReadUint8),
	schema.DTUint:               scalar((*binary.Reader).ReadUint32),
	schema.DTInt:                scalar((*binary.Reader).ReadInt32),
	schema.DTUint64:             scalar((*binary.Reader).ReadUint64),
	schema.DTInt64:              scalar((*binary.Reader).ReadInt64),
	schema.DTWord:               scalar((*binary.Reader).ReadInt16),
	schema.DTFloat:              scalar(sno.ReadFloat),
	schema.DTStartLocName:       scalar((*binary.Reader).ReadUint32),
	schema.DTACDNetworkName:     scalar((*binary.Reader).ReadUint64),
	schema.DTSharedServerDataID: scalar((*binary.Reader).ReadUint64),
	schema.DTSNOName:            pair((*binary.Reader).ReadInt32),
	schema.DTBCVec2I:            pair((*binary.Reader).ReadUint32),
	schema.DTRGBAColor:          scalar(sno.ReadColor),
	schema.DTRGBAColorValue:     scalar(sno.ReadColorValue),
	schema.DTOptional: func(in *Interpreter, r *binary.Reader, dt schema.DataType) (any, error) {
		return box(sno.ReadOptional(r, in.child(dt)))
	},
	schema.DTVector2D: scalar(sno.ReadVector2D),
	schema.DTVector3D: scalar(sno.ReadVector3D),
	schema.DTVector4D: scalar(sno.ReadVector4D),
	schema.DTTagMap: func(in *Interpreter, r *binary.Reader, dt schema.DataType) (any, error) {
		return box(sno.ReadTagMap(r, in.child(dt)))
	},
	schema.DTRange: func(in *Interpreter, r *binary.Reader, dt schema.DataType) (any, error) {
		return box(sno.ReadRange(r, in.child(dt)))
	},
}

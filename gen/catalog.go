package gen

import (
	"fmt"

	"github.com/d07RiV/d4data/schema"
)

// GoType renders one catalog entry as Go source.
type GoType struct {
	// Type renders the Go type of a value. child is the rendered type of
	// the template argument, empty for non-templates.
	Type func(dt schema.DataType, child string) string
	// Read renders an expression of (value, error) that decodes one value
	// from the reader r. child is a rendered read function for the
	// template argument.
	Read func(dt schema.DataType, child string) string
	// Func is a read function value, set when the entry needs no
	// parameters from the data type.
	Func string
	// Runtime reports whether the rendered source refers to package sno.
	Runtime bool
}

func method(typ, name string) GoType {
	return GoType{
		Type: func(schema.DataType, string) string { return typ },
		Read: func(schema.DataType, string) string { return "r." + name + "()" },
		Func: "(*binary.Reader)." + name,
	}
}

func value(typ, fn string) GoType {
	return GoType{
		Type:    func(schema.DataType, string) string { return typ },
		Read:    func(schema.DataType, string) string { return fn + "(r)" },
		Func:    fn,
		Runtime: true,
	}
}

func container(wrap func(child string) string, fn string) GoType {
	return GoType{
		Type:    func(_ schema.DataType, child string) string { return wrap(child) },
		Read:    func(_ schema.DataType, child string) string { return fn + "(r, " + child + ")" },
		Runtime: true,
	}
}

func pair(elem, read string) GoType {
	return GoType{
		Type:    func(schema.DataType, string) string { return "sno.Pair[" + elem + "]" },
		Read:    func(schema.DataType, string) string { return "sno.ReadPair(r, (*binary.Reader)." + read + ")" },
		Runtime: true,
	}
}

func slice(child string) string { return "[]" + child }

// GoCatalog maps every schema catalog entry to its Go rendering.
// DT_NULL has no rendering: it never produces a field.
var GoCatalog = map[string]GoType{
	schema.DTFixedArray: {
		Type: func(_ schema.DataType, child string) string { return "[]" + child },
		Read: func(dt schema.DataType, child string) string {
			return fmt.Sprintf("sno.ReadFixedArray(r, %d, %s)", dt.Length, child)
		},
		Runtime: true,
	},
	schema.DTVariableArray: container(slice, "sno.ReadVariableArray"),
	schema.DTCharArray: {
		Type: func(schema.DataType, string) string { return "string" },
		Read: func(dt schema.DataType, _ string) string { return fmt.Sprintf("r.ReadString(%d)", dt.Length) },
	},
	schema.DTCString:       value("string", "sno.ReadCString"),
	schema.DTStringFormula: value("sno.StringFormula", "sno.ReadStringFormula"),
	schema.DTPolymorphicArray: {
		Type:    func(schema.DataType, string) string { return "[]" + polymorphicInterface },
		Read:    func(schema.DataType, string) string { return "sno.ReadPolymorphicArray(r, " + dispatchFunc + ")" },
		Runtime: true,
	},
	schema.DTEnum: method("int32", "ReadInt32"),
	schema.DTGBID: method("int32", "ReadInt32"),
	schema.DTSNO: {
		Type:    func(schema.DataType, string) string { return "sno.Ref" },
		Read:    func(dt schema.DataType, _ string) string { return fmt.Sprintf("sno.ReadRef(r, %q)", dt.Kind) },
		Runtime: true,
	},
	schema.DTChar:               method("int8", "ReadInt8"),
	schema.DTByte:               method("uint8", "ReadUint8"),
	schema.DTUint:               method("uint32", "ReadUint32"),
	schema.DTInt:                method("int32", "ReadInt32"),
	schema.DTUint64:             method("uint64", "ReadUint64"),
	schema.DTInt64:              method("int64", "ReadInt64"),
	schema.DTWord:               method("int16", "ReadInt16"),
	schema.DTFloat:              value("sno.Float", "sno.ReadFloat"),
	schema.DTStartLocName:       method("uint32", "ReadUint32"),
	schema.DTACDNetworkName:     method("uint64", "ReadUint64"),
	schema.DTSharedServerDataID: method("uint64", "ReadUint64"),
	schema.DTSNOName:            pair("int32", "ReadInt32"),
	schema.DTBCVec2I:            pair("uint32", "ReadUint32"),
	schema.DTRGBAColor:          value("sno.Color", "sno.ReadColor"),
	schema.DTRGBAColorValue:     value("sno.ColorValue", "sno.ReadColorValue"),
	schema.DTOptional:           container(func(c string) string { return "sno.Optional[" + c + "]" }, "sno.ReadOptional"),
	schema.DTVector2D:           value("sno.Vector2D", "sno.ReadVector2D"),
	schema.DTVector3D:           value("sno.Vector3D", "sno.ReadVector3D"),
	schema.DTVector4D:           value("sno.Vector4D", "sno.ReadVector4D"),
	schema.DTTagMap:             container(slice, "sno.ReadTagMap"),
	schema.DTRange:              container(func(c string) string { return "sno.Range[" + c + "]" }, "sno.ReadRange"),
}

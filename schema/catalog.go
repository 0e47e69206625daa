package schema

// Catalog type names.
const (
	DTFixedArray         = "DT_FIXEDARRAY"
	DTVariableArray      = "DT_VARIABLEARRAY"
	DTCharArray          = "DT_CHARARRAY"
	DTCString            = "DT_CSTRING"
	DTStringFormula      = "DT_STRING_FORMULA"
	DTPolymorphicArray   = "DT_POLYMORPHIC_VARIABLEARRAY"
	DTEnum               = "DT_ENUM"
	DTGBID               = "DT_GBID"
	DTSNO                = "DT_SNO"
	DTChar               = "DT_CHAR"
	DTByte               = "DT_BYTE"
	DTUint               = "DT_UINT"
	DTInt                = "DT_INT"
	DTUint64             = "DT_UINT64"
	DTInt64              = "DT_INT64"
	DTWord               = "DT_WORD"
	DTFloat              = "DT_FLOAT"
	DTStartLocName       = "DT_STARTLOC_NAME"
	DTACDNetworkName     = "DT_ACD_NETWORK_NAME"
	DTSharedServerDataID = "DT_SHARED_SERVER_DATA_ID"
	DTSNOName            = "DT_SNO_NAME"
	DTBCVec2I            = "DT_BCVEC2I"
	DTRGBAColor          = "DT_RGBACOLOR"
	DTRGBAColorValue     = "DT_RGBACOLORVALUE"
	DTOptional           = "DT_OPTIONAL"
	DTVector2D           = "DT_VECTOR2D"
	DTVector3D           = "DT_VECTOR3D"
	DTVector4D           = "DT_VECTOR4D"
	DTTagMap             = "DT_TAGMAP"
	DTRange              = "DT_RANGE"
	DTNull               = "DT_NULL"
)

// Primitive is a catalog type: a fixed-width scalar, a value type or a
// template parametrized by a child type.
type Primitive struct {
	Name     string
	Template bool // takes a child type ("=> <child>")
	Length   bool // takes an explicit length ("[N array size]")
	Ref      bool // record reference, resolved through a group annotation
	size     func(dt DataType) int
}

func (p *Primitive) TypeName() string { return p.Name }
func (p *Primitive) SizeOf(dt DataType) int { return p.size(dt) }
func (p *Primitive) IsTemplate() bool { return p.Template }
func (p *Primitive) HasLength() bool { return p.Length }
func (p *Primitive) IsRef() bool { return p.Ref }

func fixed(name string, n int) *Primitive {
	return &Primitive{Name: name, size: func(DataType) int { return n }}
}

func childSize(dt DataType) int {
	if dt.Child == nil {
		return 0
	}
	return dt.Child.Size()
}

var catalog = func() map[string]*Primitive {
	prims := []*Primitive{
		{Name: DTFixedArray, Template: true, Length: true, size: func(dt DataType) int { return childSize(dt) * dt.Length }},
		{Name: DTVariableArray, Template: true, size: func(DataType) int { return 16 }},
		{Name: DTCharArray, Length: true, size: func(dt DataType) int { return dt.Length }},
		fixed(DTCString, 16),
		fixed(DTStringFormula, 32),
		{Name: DTPolymorphicArray, Template: true, size: func(DataType) int { return 24 }},
		fixed(DTEnum, 4),
		fixed(DTGBID, 4),
		{Name: DTSNO, Ref: true, size: func(DataType) int { return 4 }},
		fixed(DTChar, 1),
		fixed(DTByte, 1),
		fixed(DTUint, 4),
		fixed(DTInt, 4),
		fixed(DTUint64, 8),
		fixed(DTInt64, 8),
		fixed(DTWord, 2),
		fixed(DTFloat, 4),
		fixed(DTStartLocName, 4),
		fixed(DTACDNetworkName, 8),
		fixed(DTSharedServerDataID, 8),
		fixed(DTSNOName, 8),
		fixed(DTBCVec2I, 8),
		fixed(DTRGBAColor, 4),
		fixed(DTRGBAColorValue, 16),
		{Name: DTOptional, Template: true, size: func(dt DataType) int { return 4 + childSize(dt) }},
		fixed(DTVector2D, 8),
		fixed(DTVector3D, 12),
		fixed(DTVector4D, 16),
		{Name: DTTagMap, Template: true, size: func(dt DataType) int { return 4 * childSize(dt) }},
		{Name: DTRange, Template: true, size: func(dt DataType) int { return 2 * childSize(dt) }},
		fixed(DTNull, 0),
	}
	m := make(map[string]*Primitive, len(prims))
	for _, p := range prims {
		m[p.Name] = p
	}
	return m
}()

// Lookup returns the catalog entry named name.
func Lookup(name string) (*Primitive, bool) {
	p, ok := catalog[name]
	return p, ok
}

// Primitives returns every catalog entry name.
func Primitives() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	return names
}

func prim(name string) *Primitive {
	return catalog[name]
}

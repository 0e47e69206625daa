package schema

import (
	"sort"
	"strconv"
)

// TypeDef is anything a field can be declared as: a catalog Primitive or a Class.
type TypeDef interface {
	TypeName() string
	SizeOf(dt DataType) int
	IsTemplate() bool
	HasLength() bool
	IsRef() bool
}

// DataType is a field's declared shape.
type DataType struct {
	Type   TypeDef
	Length int       // explicit length of fixed arrays and character buffers
	Child  *DataType // element or value type of templates and references
	Kind   string    // resource kind a reference points into
}

// Size returns the encoded size of dt in bytes.
func (dt DataType) Size() int {
	return dt.Type.SizeOf(dt)
}

// Class returns the class dt refers to directly, if any.
func (dt DataType) Class() (*Class, bool) {
	c, ok := dt.Type.(*Class)
	return c, ok
}

// Is reports whether dt is the catalog type named name.
func (dt DataType) Is(name string) bool {
	p, ok := dt.Type.(*Primitive)
	return ok && p.Name == name
}

// Equal reports whether dt and o have the same shape, recursively.
func (dt DataType) Equal(o DataType) bool {
	if dt.Type != o.Type || dt.Length != o.Length || dt.Kind != o.Kind {
		return false
	}
	if dt.Child != nil || o.Child != nil {
		if dt.Child == nil || o.Child == nil {
			return false
		}
		return dt.Child.Equal(*o.Child)
	}
	return true
}

// Field is one field of a record.
type Field struct {
	Offset int
	Name   string
	Type   DataType
	Opaque bool // declared with an unresolvable "unknown" type; skipped on decode
}

// End returns the offset just past the field.
func (f *Field) End() int {
	return f.Offset + f.Type.Size()
}

func sameField(a, b *Field) bool {
	return a.Name == b.Name && a.Offset == b.Offset && a.Type.Equal(b.Type)
}

// Class is the compiled layout of one record type.
type Class struct {
	ID        string
	Name      string
	File      string
	Size      int
	Fields    []*Field // declared here, minus exact copies of inherited fields
	Inherited []*Field // resolved fields of all ancestors, by offset
	Parent    *Class

	usedIn map[string]bool
}

func newClass(id, name, file string) *Class {
	return &Class{ID: id, Name: name, File: file, usedIn: make(map[string]bool)}
}

func (c *Class) TypeName() string { return c.Name }
func (c *Class) SizeOf(DataType) int { return c.Size }
func (c *Class) IsTemplate() bool { return false }
func (c *Class) HasLength() bool { return false }
func (c *Class) IsRef() bool { return false }

// Tag returns the class id as the 32-bit polymorphic type tag.
func (c *Class) Tag() (uint32, error) {
	v, err := strconv.ParseUint(c.ID, 16, 32)
	return uint32(v), err
}

// IsEmpty reports whether c is byte-identical to its parent.
func (c *Class) IsEmpty() bool {
	return c.Parent != nil && c.Size == c.Parent.Size && len(c.Fields) == 0
}

// InheritsFrom reports whether base is a strict ancestor of c.
func (c *Class) InheritsFrom(base *Class) bool {
	for p := c.Parent; p != nil; p = p.Parent {
		if p == base {
			return true
		}
	}
	return false
}

// UsedIn returns the sorted contexts c is used in.
func (c *Class) UsedIn() []string {
	out := make([]string, 0, len(c.usedIn))
	for k := range c.usedIn {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Shared reports whether c is used in more than one context.
func (c *Class) Shared() bool {
	return len(c.usedIn) > 1
}

// UsedTypes returns the data types c depends on: its parent, then every type
// along each own field's child chain. The chain stops at a record reference,
// whose target is never a dependency.
func (c *Class) UsedTypes() []DataType {
	var out []DataType
	if c.Parent != nil {
		out = append(out, DataType{Type: c.Parent})
	}
	for _, f := range c.Fields {
		for dt := &f.Type; dt != nil; dt = dt.Child {
			out = append(out, *dt)
			if dt.Type.IsRef() {
				break
			}
		}
	}
	return out
}

// AllFields returns inherited and own fields ordered by offset.
func (c *Class) AllFields() []*Field {
	out := make([]*Field, 0, len(c.Inherited)+len(c.Fields))
	out = append(out, c.Inherited...)
	out = append(out, c.Fields...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

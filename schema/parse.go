package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/d07RiV/d4data/errors"
)

var (
	definitionFile = regexp.MustCompile(`^(?:!(\w*)\.)?([0-9a-f]*)\.yml$`)
	inheritLine    = regexp.MustCompile(`^# Inherits: (?:(\w+) \([0-9a-f]+\)|([0-9a-f]+)$)`)
	fieldLine      = regexp.MustCompile(`^0x([0-9a-f]+): (\w+|null or eof) # (.*)$`)
	typeWord       = regexp.MustCompile(`^(\w+)`)
	unknownType    = regexp.MustCompile(`^unknown 0x([0-9a-f]+)`)
	childArrow     = regexp.MustCompile(`=>\s*(?:unknown 0x([0-9a-f]+)|(\w+))(?:\s|$)`)
	arraySize      = regexp.MustCompile(`\[(\d+) array size\]`)
	groupRef       = regexp.MustCompile(`\{group 0x[0-9a-f]+ "(\w+)"\}`)
)

const sizeMarker = "null or eof"

// classKey is the lookup name of the class with the given hex id.
func classKey(id string) string {
	return "t" + id
}

// parseFileName splits a definition file name into id and display name.
func parseFileName(fn string) (id, name string, ok bool) {
	m := definitionFile.FindStringSubmatch(fn)
	if m == nil {
		return "", "", false
	}
	name = m[1]
	if name == "" {
		name = classKey(m[2])
	}
	return m[2], name, true
}

// parser parses definition bodies against the discovered types.
type parser struct {
	types  map[string]TypeDef
	kindOf func(group string) string
	base   string
	log    *zap.Logger
}

func (p *parser) schemaErr(c *Class, field, format string, args ...any) error {
	detail := format
	if len(args) > 0 {
		detail = fmt.Sprintf(format, args...)
	}
	e := errors.Format(errors.PhaseSchema, c.File, detail)
	if field != "" {
		e.Path = []string{c.Name, field}
	}
	return e
}

func (p *parser) unresolved(c *Class, field, what, name string) error {
	var path []string
	if field != "" {
		path = []string{c.Name, field}
	}
	return errors.Unresolved(errors.PhaseSchema, c.File, path, what, name)
}

// parseBody parses the lines of c's definition file.
func (p *parser) parseBody(c *Class, text string) error {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := inheritLine.FindStringSubmatch(line); m != nil {
			if err := p.inherit(c, m); err != nil {
				return err
			}
		} else if strings.Contains(line, "# Inherits") {
			return p.schemaErr(c, "", "unknown inheritance %q", line)
		}
		if line[0] == '#' {
			continue
		}
		if err := p.parseField(c, line); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) inherit(c *Class, m []string) error {
	name := m[1]
	if name == "" {
		name = classKey(m[2])
	}
	parent, ok := p.types[name].(*Class)
	if !ok {
		return p.unresolved(c, "", "base type", name)
	}
	switch {
	case c.Parent == nil:
		c.Parent = parent
	case c.Parent != parent:
		return p.schemaErr(c, "", "conflicting base types %s and %s", c.Parent.Name, parent.Name)
	}
	return nil
}

func (p *parser) parseField(c *Class, line string) error {
	m := fieldLine.FindStringSubmatch(line)
	if m == nil {
		return p.schemaErr(c, "", "invalid field %q", line)
	}
	offset64, err := strconv.ParseInt(m[1], 16, 32)
	if err != nil {
		return p.schemaErr(c, "", "invalid offset in %q", line)
	}
	offset := int(offset64)
	if m[2] == sizeMarker {
		c.Size = offset
		return nil
	}
	name, desc := m[2], m[3]

	w := typeWord.FindStringSubmatch(desc)
	if w == nil {
		return p.schemaErr(c, name, "invalid field %q", line)
	}

	field := &Field{Offset: offset, Name: name}
	if w[1] == "unknown" {
		u := unknownType.FindStringSubmatch(desc)
		if u == nil {
			// No id to resolve: keep the bytes as an explicit gap.
			p.log.Debug("opaque field",
				zap.String("file", c.File),
				zap.String("field", name),
				zap.String("type", desc))
			field.Type = DataType{Type: prim(DTNull)}
			field.Opaque = true
			c.Fields = append(c.Fields, field)
			return nil
		}
		t, ok := p.types[classKey(u[1])]
		if !ok {
			return p.unresolved(c, name, "type", u[1])
		}
		field.Type.Type = t
	} else {
		t, ok := p.types[w[1]]
		if !ok {
			return p.unresolved(c, name, "type", w[1])
		}
		field.Type.Type = t
	}

	dt := &field.Type
	if dt.Type.IsTemplate() {
		if err := p.parseChild(c, name, desc, dt); err != nil {
			return err
		}
	}
	if dt.Type.HasLength() {
		a := arraySize.FindStringSubmatch(desc)
		if a == nil {
			return p.schemaErr(c, name, "no array size specified in %q", line)
		}
		dt.Length, _ = strconv.Atoi(a[1])
	}
	if dt.Child != nil {
		if dt.Child.Type.IsTemplate() {
			dt.Child.Child = &DataType{Type: prim(DTInt)}
		}
		if dt.Child.Type.HasLength() {
			return p.schemaErr(c, name, "unknown subarray length in %q", line)
		}
	}

	var ref *DataType
	switch {
	case dt.Type.IsRef():
		ref = dt
	case dt.Child != nil && dt.Child.Type.IsRef():
		ref = dt.Child
	}
	if ref != nil {
		p.bindRef(ref, desc)
	}

	c.Fields = append(c.Fields, field)
	return nil
}

func (p *parser) parseChild(c *Class, field, desc string, dt *DataType) error {
	a := childArrow.FindStringSubmatch(desc)
	if a == nil {
		dt.Child = &DataType{Type: prim(DTInt)}
		return nil
	}
	name := a[2]
	if a[1] != "" {
		name = classKey(a[1])
	}
	child, ok := p.types[name]
	if dt.Is(DTPolymorphicArray) {
		if _, isClass := child.(*Class); !isClass {
			child, ok = p.types[p.base]
			if _, isClass := child.(*Class); !isClass {
				return p.unresolved(c, field, "polymorphic base", p.base)
			}
		}
	}
	if !ok {
		return p.unresolved(c, field, "type", name)
	}
	dt.Child = &DataType{Type: child}
	return nil
}

// bindRef points a record reference at the definition of its group, or
// demotes it to a plain integer when the group is missing or unknown.
func (p *parser) bindRef(ref *DataType, desc string) {
	if g := groupRef.FindStringSubmatch(desc); g != nil {
		if target, ok := p.types[p.kindOf(g[1])].(*Class); ok {
			ref.Kind = g[1]
			ref.Child = &DataType{Type: target}
			return
		}
	}
	ref.Type = prim(DTInt)
	ref.Child = nil
}

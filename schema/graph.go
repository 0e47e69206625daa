package schema

import (
	"encoding/json"
	"sort"

	"github.com/d07RiV/d4data/errors"
)

// Graph is the resolved type graph of a set of definitions.
type Graph struct {
	Classes     []*Class // in definition file order
	Kinds       []*Class // resource kind definitions, renamed to their kind
	Base        *Class   // polymorphic base, nil when not defined
	Polymorphic []*Class // every class deriving from Base

	byName map[string]*Class
}

// Class returns the class named name.
func (g *Graph) Class(name string) (*Class, bool) {
	c, ok := g.byName[name]
	return c, ok
}

// Kind returns the definition bound to a resource kind.
func (g *Graph) Kind(kind string) (*Class, bool) {
	for _, c := range g.Kinds {
		if c.Name == kind {
			return c, true
		}
	}
	return nil, false
}

// Common returns the classes used in more than one context.
func (g *Graph) Common() []*Class {
	var out []*Class
	for _, c := range g.Classes {
		if c.Shared() {
			out = append(out, c)
		}
	}
	return out
}

// Dispatch returns the polymorphic dispatch table: type tag to class.
func (g *Graph) Dispatch() map[uint32]*Class {
	out := make(map[uint32]*Class, len(g.Polymorphic))
	for _, c := range g.Polymorphic {
		tag, _ := c.Tag()
		out[tag] = c
	}
	return out
}

// Validate checks the layout of every class.
func (g *Graph) Validate() error {
	var errs []error
	for _, c := range g.Classes {
		if _, err := c.Layout(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.New(errors.PhaseEmit, errors.KindFieldOverlap).
		Value(len(errs)).
		Cause(errs[0]).
		Detail("%d classes have overlapping fields", len(errs)).
		Build()
}

type jsonType struct {
	Type   string    `json:"type"`
	Length int       `json:"length,omitempty"`
	Kind   string    `json:"kind,omitempty"`
	Child  *jsonType `json:"child,omitempty"`
}

type jsonField struct {
	Offset int      `json:"offset"`
	Name   string   `json:"name"`
	Type   jsonType `json:"type"`
	Opaque bool     `json:"opaque,omitempty"`
}

type jsonClass struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	File      string      `json:"file"`
	Size      int         `json:"size"`
	Parent    string      `json:"parent,omitempty"`
	Fields    []jsonField `json:"fields"`
	Inherited []jsonField `json:"inherited,omitempty"`
	UsedIn    []string    `json:"usedIn,omitempty"`
}

type jsonGraph struct {
	Classes  []jsonClass       `json:"classes"`
	Kinds    []string          `json:"kinds"`
	Base     string            `json:"polymorphicBase,omitempty"`
	Dispatch map[string]string `json:"dispatch,omitempty"`
}

func toJSONType(dt DataType) jsonType {
	jt := jsonType{Type: dt.Type.TypeName(), Length: dt.Length, Kind: dt.Kind}
	if dt.Child != nil {
		c := toJSONType(*dt.Child)
		jt.Child = &c
	}
	return jt
}

func toJSONFields(fields []*Field) []jsonField {
	out := make([]jsonField, len(fields))
	for i, f := range fields {
		out[i] = jsonField{Offset: f.Offset, Name: f.Name, Type: toJSONType(f.Type), Opaque: f.Opaque}
	}
	return out
}

// MarshalJSON serializes the graph with types referenced by name.
func (g *Graph) MarshalJSON() ([]byte, error) {
	jg := jsonGraph{Classes: make([]jsonClass, len(g.Classes))}
	for i, c := range g.Classes {
		jc := jsonClass{
			ID:        c.ID,
			Name:      c.Name,
			File:      c.File,
			Size:      c.Size,
			Fields:    toJSONFields(c.Fields),
			Inherited: toJSONFields(c.Inherited),
			UsedIn:    c.UsedIn(),
		}
		if c.Parent != nil {
			jc.Parent = c.Parent.Name
		}
		jg.Classes[i] = jc
	}
	for _, k := range g.Kinds {
		jg.Kinds = append(jg.Kinds, k.Name)
	}
	if g.Base != nil {
		jg.Base = g.Base.Name
		jg.Dispatch = make(map[string]string, len(g.Polymorphic))
		for _, c := range g.Polymorphic {
			jg.Dispatch["0x"+c.ID] = c.Name
		}
	}
	sort.Strings(jg.Kinds)
	return json.Marshal(jg)
}

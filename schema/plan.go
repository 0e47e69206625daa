package schema

import "sort"

// Module is one unit of emitted decoders. Refs and Helpers describe what
// a module depends on outside its own classes; the Go emitter derives its
// imports from the rendered code instead, so they serve reports and other
// output targets.
type Module struct {
	Name    string
	Kind    *Class   // bound resource kind, nil for common and polymorphic
	Classes []*Class // defined here, dependencies first
	Imports []*Class // shared classes defined in the common module
	Refs    []*Class // referenced kinds that are not defined here
	Helpers []string // catalog types used by the classes defined here
}

// Defines reports whether c is defined in m.
func (m *Module) Defines(c *Class) bool {
	for _, d := range m.Classes {
		if d == c {
			return true
		}
	}
	return false
}

// Plan partitions the graph into the common module, the polymorphic module
// and one module per resource kind. Every emitted class is defined in exactly
// one module: shared classes in common, polymorphic classes used nowhere else
// in polymorphic, and every other class next to its only kind.
func (g *Graph) Plan() []*Module {
	mods := []*Module{
		g.module(CommonContext, nil, g.Common(), true),
	}

	var polySingle, polyShared []*Class
	for _, c := range g.Polymorphic {
		if c.Shared() {
			polyShared = append(polyShared, c)
		} else {
			polySingle = append(polySingle, c)
		}
	}
	poly := g.module(PolymorphicContext, nil, polySingle, false)
	// The dispatch table names every polymorphic class.
	poly.Imports = mergeClasses(poly.Imports, polyShared)
	mods = append(mods, poly)

	for _, k := range g.Kinds {
		mods = append(mods, g.module(k.Name, k, []*Class{k}, false))
	}
	return mods
}

func (g *Graph) module(name string, kind *Class, roots []*Class, common bool) *Module {
	m := &Module{Name: name, Kind: kind}
	helpers := make(map[string]bool)
	imports := make(map[*Class]bool)
	refs := make(map[*Class]bool)
	processed := make(map[*Class]bool)

	var process func(c *Class)
	process = func(c *Class) {
		if processed[c] {
			return
		}
		processed[c] = true
		for _, dt := range c.UsedTypes() {
			if p, ok := dt.Type.(*Primitive); ok {
				helpers[p.Name] = true
			}
			if dt.Type.IsRef() && dt.Child != nil {
				if target, ok := dt.Child.Class(); ok {
					refs[target] = true
				}
			}
			sub, ok := dt.Class()
			if !ok {
				continue
			}
			if common || !sub.Shared() {
				process(sub)
			} else {
				imports[sub] = true
			}
		}
		m.Classes = append(m.Classes, c)
	}
	for _, c := range roots {
		if !common && c.Shared() {
			imports[c] = true
			continue
		}
		process(c)
	}

	for _, c := range m.Classes {
		delete(refs, c)
	}
	m.Imports = sortedClasses(imports)
	m.Refs = sortedClasses(refs)
	for h := range helpers {
		m.Helpers = append(m.Helpers, h)
	}
	sort.Strings(m.Helpers)
	return m
}

func sortedClasses(set map[*Class]bool) []*Class {
	out := make([]*Class, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func mergeClasses(a, b []*Class) []*Class {
	set := make(map[*Class]bool, len(a)+len(b))
	for _, c := range a {
		set[c] = true
	}
	for _, c := range b {
		set[c] = true
	}
	return sortedClasses(set)
}

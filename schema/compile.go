package schema

import (
	"io/fs"
	"sort"

	"go.uber.org/zap"

	"github.com/d07RiV/d4data/errors"
)

const (
	// DefaultPolymorphicBase is the class every polymorphic element derives from.
	DefaultPolymorphicBase = "PolymorphicBase"
	// PolymorphicContext is the usage context of polymorphic classes.
	PolymorphicContext = "polymorphic"
	// CommonContext names the module of classes shared between contexts.
	CommonContext = "common"
)

// DefaultKindDefinitions maps the resource kinds whose definition is not
// named "<Kind>Definition".
var DefaultKindDefinitions = map[string]string{
	"UI":     "UIDialogDefinition",
	"Anim":   "AnimationDefinition",
	"Anim2D": "Animation2DDefinition",
}

// Compiler turns definition files into a Graph.
type Compiler struct {
	kindDefs map[string]string
	base     string
	log      *zap.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithKindDefinitions adds resource kind to definition name exceptions.
func WithKindDefinitions(m map[string]string) Option {
	return func(c *Compiler) {
		for k, v := range m {
			c.kindDefs[k] = v
		}
	}
}

// WithPolymorphicBase sets the name of the polymorphic base class.
func WithPolymorphicBase(name string) Option {
	return func(c *Compiler) {
		c.base = name
	}
}

// WithLogger sets the compiler's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Compiler) {
		c.log = l
	}
}

// NewCompiler creates a Compiler.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{
		kindDefs: make(map[string]string, len(DefaultKindDefinitions)),
		base:     DefaultPolymorphicBase,
	}
	for k, v := range DefaultKindDefinitions {
		c.kindDefs[k] = v
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = Logger()
	}
	return c
}

// DefinitionName returns the definition class name of a resource kind.
func (c *Compiler) DefinitionName(kind string) string {
	if name, ok := c.kindDefs[kind]; ok {
		return name
	}
	return kind + "Definition"
}

// Compile parses every definition file at the root of defs and resolves the
// graph for the given resource kinds.
func (c *Compiler) Compile(defs fs.FS, kinds []string) (*Graph, error) {
	entries, err := fs.ReadDir(defs, ".")
	if err != nil {
		return nil, errors.Wrap(errors.PhaseSchema, errors.KindNotFound, err, "read definitions")
	}

	types := make(map[string]TypeDef, len(catalog)+2*len(entries))
	for name, p := range catalog {
		types[name] = p
	}

	// Discovery: one empty class per definition file.
	var classes []*Class
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		id, name, ok := parseFileName(ent.Name())
		if !ok {
			continue
		}
		cls := newClass(id, name, ent.Name())
		classes = append(classes, cls)
		types[classKey(id)] = cls
		types[name] = cls
	}

	p := &parser{types: types, kindOf: c.DefinitionName, base: c.base, log: c.log}
	for _, cls := range classes {
		text, err := fs.ReadFile(defs, cls.File)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseSchema, errors.KindNotFound, err, "read "+cls.File)
		}
		if err := p.parseBody(cls, string(text)); err != nil {
			return nil, err
		}
	}

	ordered, err := parentFirst(classes)
	if err != nil {
		return nil, err
	}
	for _, cls := range ordered {
		dedupInherited(cls)
	}

	g := &Graph{Classes: classes, byName: make(map[string]*Class, len(classes))}
	if err := c.bindKinds(g, types, kinds); err != nil {
		return nil, err
	}

	if base, ok := types[c.base].(*Class); ok {
		g.Base = base
		for _, cls := range classes {
			if !cls.InheritsFrom(base) {
				continue
			}
			if _, err := cls.Tag(); err != nil {
				return nil, errors.New(errors.PhaseSchema, errors.KindFormat).
					File(cls.File).
					Path(cls.Name).
					Detail("polymorphic class id %q is not a 32-bit tag", cls.ID).
					Build()
			}
			g.Polymorphic = append(g.Polymorphic, cls)
		}
		for _, cls := range g.Polymorphic {
			register(cls, PolymorphicContext)
		}
	}

	for _, cls := range classes {
		g.byName[cls.Name] = cls
	}

	c.log.Info("compiled definitions",
		zap.Int("classes", len(classes)),
		zap.Int("kinds", len(g.Kinds)),
		zap.Int("polymorphic", len(g.Polymorphic)))
	return g, nil
}

// parentFirst orders classes so that every parent precedes its children.
func parentFirst(classes []*Class) ([]*Class, error) {
	const (
		visiting = iota + 1
		done
	)
	state := make(map[*Class]int, len(classes))
	out := make([]*Class, 0, len(classes))

	var visit func(c *Class) error
	visit = func(c *Class) error {
		switch state[c] {
		case visiting:
			return errors.New(errors.PhaseSchema, errors.KindUnresolved).
				File(c.File).
				Path(c.Name).
				Detail("inheritance cycle through %s", c.Name).
				Build()
		case done:
			return nil
		}
		state[c] = visiting
		if c.Parent != nil {
			if err := visit(c.Parent); err != nil {
				return err
			}
		}
		state[c] = done
		out = append(out, c)
		return nil
	}
	for _, c := range classes {
		if err := visit(c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// dedupInherited drops own fields that exactly repeat an inherited field and
// records the parent's resolved fields as inherited. The parent must already
// be resolved.
func dedupInherited(c *Class) {
	if c.Parent == nil {
		sortFields(c.Fields)
		return
	}
	for _, pf := range c.Parent.AllFields() {
		for i, f := range c.Fields {
			if sameField(f, pf) {
				c.Fields = append(c.Fields[:i], c.Fields[i+1:]...)
				break
			}
		}
		c.Inherited = append(c.Inherited, pf)
	}
	sortFields(c.Inherited)
	sortFields(c.Fields)
}

func sortFields(fields []*Field) {
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Offset < fields[j].Offset })
}

// bindKinds renames each kind's definition to the kind name and marks every
// class reachable from it as used in that kind.
func (c *Compiler) bindKinds(g *Graph, types map[string]TypeDef, kinds []string) error {
	for _, kind := range kinds {
		def := c.DefinitionName(kind)
		cls, ok := types[def].(*Class)
		if !ok {
			return errors.Unresolved(errors.PhaseSchema, "", nil, "definition for resource kind", kind+" ("+def+")")
		}
		switch prev := types[kind].(type) {
		case nil:
		case *Class:
			if prev != cls {
				prev.Name = prev.Name + "_" + prev.ID
			}
		default:
			return errors.New(errors.PhaseSchema, errors.KindFormat).
				Path(kind).
				Detail("resource kind %s conflicts with catalog type", kind).
				Build()
		}
		cls.Name = kind
		types[kind] = cls
		g.Kinds = append(g.Kinds, cls)
		register(cls, kind)
	}
	return nil
}

// register marks c and everything it depends on as used in ctx.
func register(c *Class, ctx string) {
	if c.usedIn[ctx] {
		return
	}
	c.usedIn[ctx] = true
	for _, dt := range c.UsedTypes() {
		if sub, ok := dt.Class(); ok {
			register(sub, ctx)
		}
	}
}

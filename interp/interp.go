package interp

import (
	"go.uber.org/zap"

	"github.com/d07RiV/d4data/binary"
	"github.com/d07RiV/d4data/errors"
	"github.com/d07RiV/d4data/schema"
	"github.com/d07RiV/d4data/sno"
)

// Interpreter decodes payloads by walking the layout of a compiled graph.
type Interpreter struct {
	graph    *schema.Graph
	plans    map[*schema.Class][]schema.Step
	dispatch map[uint32]*schema.Class
	catalog  map[string]DecodeFunc
	log      *zap.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the interpreter's logger.
func WithLogger(l *zap.Logger) Option {
	return func(in *Interpreter) {
		in.log = l
	}
}

// New prepares the decode plan of every class in g.
func New(g *schema.Graph, opts ...Option) (*Interpreter, error) {
	in := &Interpreter{
		graph:    g,
		plans:    make(map[*schema.Class][]schema.Step, len(g.Classes)),
		dispatch: g.Dispatch(),
		catalog:  Catalog,
		log:      Logger(),
	}
	for _, opt := range opts {
		opt(in)
	}
	for _, c := range g.Classes {
		steps, err := c.Layout()
		if err != nil {
			return nil, err
		}
		in.plans[c] = steps
	}
	return in, nil
}

// Decoders returns a decode function for every resource kind of the graph.
func (in *Interpreter) Decoders() map[string]sno.DecodeFunc {
	out := make(map[string]sno.DecodeFunc, len(in.graph.Kinds))
	for _, k := range in.graph.Kinds {
		out[k.Name] = func(r *binary.Reader) (any, error) {
			return in.Decode(k, r)
		}
	}
	return out
}

// Decode reads one instance of c at the reader's position.
func (in *Interpreter) Decode(c *schema.Class, r *binary.Reader) (*Record, error) {
	rec := newRecord(c.Name, len(c.Inherited)+len(c.Fields))
	if err := in.decodeInto(rec, c, r); err != nil {
		return nil, err
	}
	return rec, nil
}

func (in *Interpreter) decodeInto(rec *Record, c *schema.Class, r *binary.Reader) error {
	if c.Parent != nil {
		if err := in.decodeInto(rec, c.Parent, r); err != nil {
			return err
		}
	}
	steps, ok := in.plans[c]
	if !ok {
		return errors.NotFound(errors.PhaseDecode, "class", c.Name)
	}
	for _, st := range steps {
		if st.Skip > 0 {
			if err := r.Skip(st.Skip); err != nil {
				return errors.WithPath(err, c.Name)
			}
		}
		f := st.Field
		if f == nil || f.Opaque || f.Type.Is(schema.DTNull) {
			continue
		}
		v, err := in.value(r, f.Type)
		if err != nil {
			return errors.WithPath(err, c.Name, f.Name)
		}
		rec.Set(f.Name, v)
	}
	return nil
}

func (in *Interpreter) value(r *binary.Reader, dt schema.DataType) (any, error) {
	if c, ok := dt.Class(); ok {
		return in.Decode(c, r)
	}
	p, ok := dt.Type.(*schema.Primitive)
	if !ok {
		return nil, errors.Unresolved(errors.PhaseDecode, "", nil, "type", dt.Type.TypeName())
	}
	fn, ok := in.catalog[p.Name]
	if !ok {
		return nil, errors.Unresolved(errors.PhaseDecode, "", nil, "decoder for", p.Name)
	}
	return fn(in, r, dt)
}

// child returns a reader of the template argument of dt.
func (in *Interpreter) child(dt schema.DataType) sno.ReadFunc[any] {
	return func(r *binary.Reader) (any, error) {
		if dt.Child == nil {
			return r.ReadInt32()
		}
		return in.value(r, *dt.Child)
	}
}

// element decodes one polymorphic array element by its type tag.
func (in *Interpreter) element(r *binary.Reader, tag uint32) (any, error) {
	c, ok := in.dispatch[tag]
	if !ok {
		in.log.Debug("unknown polymorphic tag", zap.Uint32("tag", tag))
		return nil, sno.UnknownTag(tag)
	}
	return in.Decode(c, r)
}

package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/d07RiV/d4data/errors"
	"github.com/d07RiV/d4data/schema"
)

const (
	pkgBinary = "github.com/d07RiV/d4data/binary"
	pkgErrors = "github.com/d07RiV/d4data/errors"
	pkgSno    = "github.com/d07RiV/d4data/sno"

	polymorphicInterface = "Polymorphic"
	dispatchFunc         = "readPolymorphic"
	decodersVar          = "Decoders"

	header = "// Code generated by d4data. DO NOT EDIT.\n\n"
)

// DefaultPackage is the name of the generated package.
const DefaultPackage = "types"

// Generator renders a schema graph as Go source.
type Generator struct {
	graph *schema.Graph
	pkg   string
	log   *zap.Logger
	names map[*schema.Class]string
}

// Option configures a Generator.
type Option func(*Generator)

// WithPackage sets the generated package name.
func WithPackage(name string) Option {
	return func(g *Generator) {
		if name != "" {
			g.pkg = name
		}
	}
}

// WithLogger sets the generator's logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		g.log = l
	}
}

// New returns a generator for graph.
func New(graph *schema.Graph, opts ...Option) *Generator {
	g := &Generator{graph: graph, pkg: DefaultPackage, log: Logger()}
	for _, opt := range opts {
		opt(g)
	}
	g.names = typeNames(graph.Classes)
	return g
}

// TypeName returns the Go type name of c.
func (g *Generator) TypeName(c *schema.Class) string {
	return g.names[c]
}

// typeNames assigns every class a unique exported identifier. A name that is
// taken, or whose constructor name is, gets the class id appended.
func typeNames(classes []*schema.Class) map[*schema.Class]string {
	used := map[string]bool{
		polymorphicInterface: true,
		decodersVar:          true,
	}
	names := make(map[*schema.Class]string, len(classes))
	for _, c := range classes {
		name := exported(c.Name)
		if used[name] || used["Read"+name] {
			name = name + "_" + c.ID
		}
		used[name] = true
		used["Read"+name] = true
		names[c] = name
	}
	return names
}

func exported(s string) string {
	if s == "" {
		return "X"
	}
	r := []rune(s)
	if !unicode.IsLetter(r[0]) {
		return "X" + s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// file accumulates the body of one generated source file.
type file struct {
	name    string
	body    bytes.Buffer
	imports map[string]bool
}

func newFile(name string) *file {
	return &file{name: name, imports: make(map[string]bool)}
}

func (f *file) printf(format string, args ...any) {
	fmt.Fprintf(&f.body, format, args...)
}

func (f *file) use(pkg string) {
	f.imports[pkg] = true
}

func (f *file) source(pkg string) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(header)
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	if len(f.imports) > 0 {
		paths := make([]string, 0, len(f.imports))
		for p := range f.imports {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		b.WriteString("import (\n")
		for _, p := range paths {
			fmt.Fprintf(&b, "\t%q\n", p)
		}
		b.WriteString(")\n\n")
	}
	b.Write(f.body.Bytes())
	src, err := format.Source(b.Bytes())
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEmit, errors.KindFormat, err, "format "+f.name)
	}
	return src, nil
}

// Files renders the graph and returns the formatted sources by file name.
// Modules that define no classes produce no file.
func (g *Generator) Files() (map[string][]byte, error) {
	var files []*file
	mods := g.graph.Plan()
	taken := map[string]bool{"decoders.go": true}

	for _, m := range mods {
		name := fileName(m, taken)
		taken[name] = true
		f := newFile(name)
		for _, c := range m.Classes {
			if err := g.class(f, c); err != nil {
				return nil, err
			}
		}
		if m.Name == schema.PolymorphicContext && g.hasPolymorphic() {
			if err := g.polymorphic(f); err != nil {
				return nil, err
			}
		}
		if f.body.Len() == 0 {
			continue
		}
		files = append(files, f)
	}
	files = append(files, g.decoders())

	out := make(map[string][]byte, len(files))
	for _, f := range files {
		src, err := f.source(g.pkg)
		if err != nil {
			return nil, err
		}
		out[f.name] = src
		g.log.Debug("rendered file", zap.String("file", f.name), zap.Int("bytes", len(src)))
	}
	return out, nil
}

func fileName(m *schema.Module, taken map[string]bool) string {
	name := strings.ToLower(m.Name) + ".go"
	if m.Kind != nil && (taken[name] || name == schema.CommonContext+".go" || name == schema.PolymorphicContext+".go") {
		name = strings.ToLower(m.Name) + "_kind.go"
	}
	return name
}

// Write renders the graph into dir, creating it when missing.
func (g *Generator) Write(dir string) error {
	files, err := g.Files()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.PhaseEmit, errors.KindNotFound, err, "create "+dir)
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), files[name], 0o644); err != nil {
			return errors.Wrap(errors.PhaseEmit, errors.KindNotFound, err, "write "+name)
		}
	}
	g.log.Info("generated decoders",
		zap.String("dir", dir),
		zap.String("package", g.pkg),
		zap.Int("files", len(files)))
	return nil
}

// fieldNames assigns Go names to c's own fields, avoiding the embedded
// parent's name and each other.
func (g *Generator) fieldNames(c *schema.Class) map[*schema.Field]string {
	used := make(map[string]bool)
	if c.Parent != nil {
		used[g.names[c.Parent]] = true
	}
	out := make(map[*schema.Field]string, len(c.Fields))
	for _, f := range c.Fields {
		name := exported(f.Name)
		if used[name] {
			name = fmt.Sprintf("%s_%x", name, f.Offset)
		}
		used[name] = true
		out[f] = name
	}
	return out
}

func skipped(f *schema.Field) bool {
	return f.Opaque || f.Type.Is(schema.DTNull)
}

func (g *Generator) class(f *file, c *schema.Class) error {
	steps, err := c.Layout()
	if err != nil {
		return err
	}
	name := g.names[c]
	fields := g.fieldNames(c)
	f.use(pkgBinary)

	f.printf("// %s is decoded from %s.\n", name, c.File)
	f.printf("type %s struct {\n", name)
	if c.Parent != nil {
		f.printf("%s\n", g.names[c.Parent])
	}
	for _, fd := range c.Fields {
		if skipped(fd) {
			continue
		}
		typ, err := g.goType(f, c, fd.Type)
		if err != nil {
			return err
		}
		f.printf("%s %s `json:%q`\n", fields[fd], typ, fd.Name)
	}
	f.printf("}\n\n")

	f.printf("// Read%s decodes a %s at the reader's position.\n", name, name)
	f.printf("func Read%s(r *binary.Reader) (*%s, error) {\n", name, name)
	f.printf("v := new(%s)\n", name)
	f.printf("if err := v.read(r); err != nil {\nreturn nil, err\n}\n")
	f.printf("return v, nil\n}\n\n")

	var body bytes.Buffer
	reads := 0
	if c.Parent != nil {
		fmt.Fprintf(&body, "if err := v.%s.read(r); err != nil {\nreturn err\n}\n", g.names[c.Parent])
	}
	for _, st := range steps {
		if st.Skip > 0 {
			f.use(pkgErrors)
			fmt.Fprintf(&body, "if err := r.Skip(%d); err != nil {\nreturn errors.WithPath(err, %q)\n}\n", st.Skip, c.Name)
		}
		if st.Field == nil || skipped(st.Field) {
			continue
		}
		call, err := g.readCall(f, c, st.Field.Type)
		if err != nil {
			return err
		}
		f.use(pkgErrors)
		reads++
		fmt.Fprintf(&body, "if v.%s, err = %s; err != nil {\nreturn errors.WithPath(err, %q, %q)\n}\n",
			fields[st.Field], call, c.Name, st.Field.Name)
	}

	f.printf("func (v *%s) read(r *binary.Reader) error {\n", name)
	if reads > 0 {
		f.printf("var err error\n")
	}
	f.body.Write(body.Bytes())
	f.printf("return nil\n}\n\n")
	return nil
}

func (g *Generator) entry(c *schema.Class, dt schema.DataType) (*schema.Primitive, GoType, error) {
	p, ok := dt.Type.(*schema.Primitive)
	if !ok {
		return nil, GoType{}, errors.Unresolved(errors.PhaseEmit, c.File, []string{c.Name}, "type", dt.Type.TypeName())
	}
	gt, ok := GoCatalog[p.Name]
	if !ok {
		return nil, GoType{}, errors.Unresolved(errors.PhaseEmit, c.File, []string{c.Name}, "Go rendering for", p.Name)
	}
	if p.Name == schema.DTPolymorphicArray && g.graph.Base == nil {
		return nil, GoType{}, errors.New(errors.PhaseEmit, errors.KindUnresolved).
			File(c.File).
			Path(c.Name).
			Detail("polymorphic array without a polymorphic base").
			Build()
	}
	return p, gt, nil
}

func (g *Generator) goType(f *file, c *schema.Class, dt schema.DataType) (string, error) {
	if sub, ok := dt.Class(); ok {
		return "*" + g.names[sub], nil
	}
	p, gt, err := g.entry(c, dt)
	if err != nil {
		return "", err
	}
	var child string
	if p.Template && dt.Child != nil {
		if child, err = g.goType(f, c, *dt.Child); err != nil {
			return "", err
		}
	}
	if gt.Runtime {
		f.use(pkgSno)
	}
	return gt.Type(dt, child), nil
}

func (g *Generator) readCall(f *file, c *schema.Class, dt schema.DataType) (string, error) {
	if sub, ok := dt.Class(); ok {
		return "Read" + g.names[sub] + "(r)", nil
	}
	p, gt, err := g.entry(c, dt)
	if err != nil {
		return "", err
	}
	var child string
	if p.Template && dt.Child != nil && p.Name != schema.DTPolymorphicArray {
		if child, err = g.readFunc(f, c, *dt.Child); err != nil {
			return "", err
		}
	}
	if gt.Runtime {
		f.use(pkgSno)
	}
	return gt.Read(dt, child), nil
}

// readFunc renders a function value of type func(*binary.Reader) (T, error).
func (g *Generator) readFunc(f *file, c *schema.Class, dt schema.DataType) (string, error) {
	if sub, ok := dt.Class(); ok {
		return "Read" + g.names[sub], nil
	}
	_, gt, err := g.entry(c, dt)
	if err != nil {
		return "", err
	}
	if gt.Func != "" {
		if gt.Runtime {
			f.use(pkgSno)
		}
		return gt.Func, nil
	}
	typ, err := g.goType(f, c, dt)
	if err != nil {
		return "", err
	}
	call, err := g.readCall(f, c, dt)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("func(r *binary.Reader) (%s, error) { return %s }", typ, call), nil
}

// hasPolymorphic reports whether the polymorphic base is emitted at all.
func (g *Generator) hasPolymorphic() bool {
	return g.graph.Base != nil && len(g.graph.Base.UsedIn()) > 0
}

// polymorphic renders the interface every polymorphic class implements and
// the tag switch that decodes an element by its type tag.
func (g *Generator) polymorphic(f *file) error {
	base := g.names[g.graph.Base]
	f.use(pkgBinary)
	f.use(pkgSno)

	f.printf("// %s is an element of a polymorphic array.\n", polymorphicInterface)
	f.printf("type %s interface {\npolymorphicBase() *%s\n}\n\n", polymorphicInterface, base)
	f.printf("func (v *%s) polymorphicBase() *%s { return v }\n\n", base, base)

	dispatch := g.graph.Dispatch()
	tags := make([]uint32, 0, len(dispatch))
	for tag := range dispatch {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	f.printf("func %s(r *binary.Reader, tag uint32) (%s, error) {\n", dispatchFunc, polymorphicInterface)
	f.printf("switch tag {\n")
	for _, tag := range tags {
		f.printf("case 0x%08x:\nreturn Read%s(r)\n", tag, g.names[dispatch[tag]])
	}
	f.printf("}\n")
	f.printf("return nil, sno.UnknownTag(tag)\n}\n")
	return nil
}

func (g *Generator) decoders() *file {
	f := newFile("decoders.go")
	f.use(pkgSno)
	if len(g.graph.Kinds) > 0 {
		f.use(pkgBinary)
	}

	kinds := append([]*schema.Class(nil), g.graph.Kinds...)
	sort.Slice(kinds, func(i, j int) bool { return kinds[i].Name < kinds[j].Name })

	f.printf("// %s maps every resource kind to the decoder of its payload.\n", decodersVar)
	f.printf("var %s = map[string]sno.DecodeFunc{\n", decodersVar)
	for _, k := range kinds {
		f.printf("%q: func(r *binary.Reader) (any, error) { return Read%s(r) },\n", k.Name, g.names[k])
	}
	f.printf("}\n")
	return f
}

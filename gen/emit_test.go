package gen

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/d07RiV/d4data/errors"
	"github.com/d07RiV/d4data/schema"
)

var fixture = map[string]string{
	"!PolymorphicBase.00000001.yml": `
0x00: dwPtr # DT_UINT64
0x08: dwType # DT_UINT
0x0c: null or eof # DT_NULL
`,
	"!Effect.00000002.yml": `
# Inherits: PolymorphicBase (00000001)
0x0c: flValue # DT_FLOAT
0x10: null or eof # DT_NULL
`,
	"!Trigger.00000003.yml": `
# Inherits: PolymorphicBase (00000001)
0x10: szName # DT_CHARARRAY [8 array size]
0x18: null or eof # DT_NULL
`,
	"!Shared.00000010.yml": `
0x00: id # DT_INT
0x04: Id # DT_INT
0x08: null or eof # DT_NULL
`,
	"!PowerDefinition.00000020.yml": `
0x00: tShared # unknown 0x00000010
0x08: arEffects # DT_POLYMORPHIC_VARIABLEARRAY => PolymorphicBase
0x20: snoActor # DT_SNO {group 0x1 "Actor"}
0x24: arNames # DT_VARIABLEARRAY => DT_CSTRING
0x38: tRange # DT_RANGE => DT_FLOAT
0x40: unk_1 # unknown
0x48: tColor # DT_RGBACOLOR
0x4c: null or eof # DT_NULL
`,
	"!ActorDefinition.00000021.yml": `
0x00: tShared # unknown 0x00000010
0x08: aName # DT_SNO_NAME
0x10: tOpt # DT_OPTIONAL => DT_VARIABLEARRAY
0x24: null or eof # DT_NULL
`,
}

func compileFixture(t *testing.T, files map[string]string, kinds ...string) *schema.Graph {
	t.Helper()
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(strings.TrimSpace(body) + "\n")}
	}
	g, err := schema.NewCompiler().Compile(fsys, kinds)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return g
}

func render(t *testing.T, opts ...Option) map[string][]byte {
	t.Helper()
	files, err := New(compileFixture(t, fixture, "Actor", "Power"), opts...).Files()
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	return files
}

func parse(t *testing.T, name string, src []byte) *ast.File {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), name, src, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse %s: %v\n%s", name, err, src)
	}
	return f
}

func imports(f *ast.File) []string {
	var out []string
	for _, spec := range f.Imports {
		p, _ := strconv.Unquote(spec.Path.Value)
		out = append(out, p)
	}
	return out
}

// referenced returns the package names used as selector qualifiers in f.
func referenced(f *ast.File) map[string]bool {
	out := make(map[string]bool)
	ast.Inspect(f, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok {
				out[id.Name] = true
			}
		}
		return true
	})
	return out
}

func typeSpec(t *testing.T, f *ast.File, name string) *ast.StructType {
	t.Helper()
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok {
			continue
		}
		for _, spec := range gd.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok && ts.Name.Name == name {
				st, ok := ts.Type.(*ast.StructType)
				if !ok {
					t.Fatalf("%s is not a struct", name)
				}
				return st
			}
		}
	}
	t.Fatalf("type %s not declared", name)
	return nil
}

func funcDecl(f *ast.File, name string) *ast.FuncDecl {
	for _, decl := range f.Decls {
		if fd, ok := decl.(*ast.FuncDecl); ok && fd.Name.Name == name && fd.Recv == nil {
			return fd
		}
	}
	return nil
}

func TestFilesPartition(t *testing.T) {
	files := render(t)

	var names []string
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	want := []string{"actor.go", "common.go", "decoders.go", "polymorphic.go", "power.go"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("files = %v, want %v", names, want)
	}

	defined := map[string]string{}
	for name, src := range files {
		f := parse(t, name, src)
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				if prev, dup := defined[ts.Name.Name]; dup {
					t.Errorf("%s defined in %s and %s", ts.Name.Name, prev, name)
				}
				defined[ts.Name.Name] = name
			}
		}
	}

	wantDefs := map[string]string{
		"PolymorphicBase": "common.go",
		"Shared":          "common.go",
		"Effect":          "polymorphic.go",
		"Trigger":         "polymorphic.go",
		"Polymorphic":     "polymorphic.go",
		"Actor":           "actor.go",
		"Power":           "power.go",
	}
	if !reflect.DeepEqual(defined, wantDefs) {
		t.Errorf("definitions = %v, want %v", defined, wantDefs)
	}
}

func TestFilesImportOnlyUsedPackages(t *testing.T) {
	for name, src := range render(t) {
		f := parse(t, name, src)
		used := referenced(f)
		for _, p := range imports(f) {
			if !used[filepath.Base(p)] {
				t.Errorf("%s imports %s without using it", name, p)
			}
		}
	}

	f := parse(t, "common.go", render(t)["common.go"])
	got := imports(f)
	want := []string{pkgBinary, pkgErrors}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("common.go imports = %v, want %v", got, want)
	}
}

func TestFilesHeaderAndPackage(t *testing.T) {
	for name, src := range render(t, WithPackage("d4")) {
		if !strings.HasPrefix(string(src), "// Code generated by d4data. DO NOT EDIT.") {
			t.Errorf("%s: missing generated header", name)
		}
		if f := parse(t, name, src); f.Name.Name != "d4" {
			t.Errorf("%s: package = %s, want d4", name, f.Name.Name)
		}
	}
}

func TestStructEmbedsParent(t *testing.T) {
	files := render(t)
	st := typeSpec(t, parse(t, "polymorphic.go", files["polymorphic.go"]), "Trigger")

	first := st.Fields.List[0]
	if len(first.Names) != 0 {
		t.Fatalf("first field is named %v, want embedded parent", first.Names)
	}
	if id, ok := first.Type.(*ast.Ident); !ok || id.Name != "PolymorphicBase" {
		t.Errorf("embedded type = %#v, want PolymorphicBase", first.Type)
	}
	if got := len(st.Fields.List); got != 2 {
		t.Errorf("Trigger has %d fields, want 2", got)
	}
	if tag := st.Fields.List[1].Tag.Value; tag != "`json:\"szName\"`" {
		t.Errorf("tag = %s", tag)
	}
}

func TestFieldNameCollision(t *testing.T) {
	files := render(t)
	st := typeSpec(t, parse(t, "common.go", files["common.go"]), "Shared")

	var got []string
	for _, f := range st.Fields.List {
		got = append(got, f.Names[0].Name+" "+f.Tag.Value)
	}
	want := []string{"Id `json:\"id\"`", "Id_4 `json:\"Id\"`"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("fields = %v, want %v", got, want)
	}
}

func TestReadExpressions(t *testing.T) {
	files := render(t)
	tests := []struct {
		file string
		want string
	}{
		{"power.go", `v.TShared, err = ReadShared(r)`},
		{"power.go", `sno.ReadPolymorphicArray(r, readPolymorphic)`},
		{"power.go", `sno.ReadRef(r, "Actor")`},
		{"power.go", `sno.ReadVariableArray(r, sno.ReadCString)`},
		{"power.go", `sno.ReadRange(r, sno.ReadFloat)`},
		{"power.go", `sno.ReadColor(r)`},
		{"power.go", `r.Skip(4)`},
		{"power.go", `r.Skip(8)`},
		{"actor.go", `sno.ReadPair(r, (*binary.Reader).ReadInt32)`},
		{"actor.go", `sno.ReadOptional(r, func(r *binary.Reader) ([]int32, error) { return sno.ReadVariableArray(r, (*binary.Reader).ReadInt32) })`},
		{"polymorphic.go", `r.ReadString(8)`},
		{"polymorphic.go", `v.FlValue, err = sno.ReadFloat(r)`},
		{"polymorphic.go", `v.PolymorphicBase.read(r)`},
		{"common.go", `v.DwPtr, err = r.ReadUint64()`},
	}
	for _, tt := range tests {
		if !strings.Contains(string(files[tt.file]), tt.want) {
			t.Errorf("%s: missing %q", tt.file, tt.want)
		}
	}
	if strings.Contains(string(files["power.go"]), "unk_1") {
		t.Error("opaque field rendered")
	}
}

func TestDispatchSwitch(t *testing.T) {
	files := render(t)
	f := parse(t, "polymorphic.go", files["polymorphic.go"])
	fd := funcDecl(f, dispatchFunc)
	if fd == nil {
		t.Fatalf("%s not declared", dispatchFunc)
	}

	cases := map[string]string{}
	ast.Inspect(fd, func(n ast.Node) bool {
		cc, ok := n.(*ast.CaseClause)
		if !ok {
			return true
		}
		ret := cc.Body[0].(*ast.ReturnStmt)
		call := ret.Results[0].(*ast.CallExpr)
		cases[cc.List[0].(*ast.BasicLit).Value] = call.Fun.(*ast.Ident).Name
		return false
	})
	want := map[string]string{
		"0x00000002": "ReadEffect",
		"0x00000003": "ReadTrigger",
	}
	if !reflect.DeepEqual(cases, want) {
		t.Errorf("cases = %v, want %v", cases, want)
	}
	if !strings.Contains(string(files["polymorphic.go"]), "return nil, sno.UnknownTag(tag)") {
		t.Error("unknown tags are not rejected")
	}
}

func TestDecodersTable(t *testing.T) {
	files := render(t)
	f := parse(t, "decoders.go", files["decoders.go"])

	var keys []string
	ast.Inspect(f, func(n ast.Node) bool {
		if kv, ok := n.(*ast.KeyValueExpr); ok {
			k, _ := strconv.Unquote(kv.Key.(*ast.BasicLit).Value)
			keys = append(keys, k)
		}
		return true
	})
	if want := []string{"Actor", "Power"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("decoders = %v, want %v", keys, want)
	}
}

func TestPolymorphicArrayWithoutBase(t *testing.T) {
	g := compileFixture(t, map[string]string{
		"!PowerDefinition.00000020.yml": `
0x00: ptList # DT_POLYMORPHIC_VARIABLEARRAY
0x18: null or eof # DT_NULL
`,
	}, "Power")
	_, err := New(g).Files()
	if !errors.IsUnresolved(err) {
		t.Fatalf("err = %v, want unresolved", err)
	}
}

func TestNoPolymorphicBase(t *testing.T) {
	g := compileFixture(t, map[string]string{
		"!PowerDefinition.00000020.yml": `
0x00: dwValue # DT_UINT
0x04: null or eof # DT_NULL
`,
	}, "Power")
	files, err := New(g).Files()
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if _, ok := files["polymorphic.go"]; ok {
		t.Error("polymorphic.go rendered without a polymorphic base")
	}
	if _, ok := files["common.go"]; ok {
		t.Error("common.go rendered without shared classes")
	}
}

func TestTypeNameCollision(t *testing.T) {
	g := compileFixture(t, map[string]string{
		"!Polymorphic.00000005.yml": `
0x00: dwValue # DT_UINT
0x04: null or eof # DT_NULL
`,
		"!value.00000006.yml": `
0x00: dwValue # DT_UINT
0x04: null or eof # DT_NULL
`,
		"!Value.00000007.yml": `
0x00: dwValue # DT_UINT
0x04: null or eof # DT_NULL
`,
	})
	emitter := New(g)
	tests := map[string]string{
		"Polymorphic": "Polymorphic_00000005",
		"Value":       "Value",
		"value":       "Value_00000006",
	}
	for name, want := range tests {
		c, ok := g.Class(name)
		if !ok {
			t.Fatalf("class %s not found", name)
		}
		if got := emitter.TypeName(c); got != want {
			t.Errorf("TypeName(%s) = %s, want %s", name, got, want)
		}
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "types")
	g := compileFixture(t, fixture, "Actor", "Power")
	if err := New(g).Write(dir); err != nil {
		t.Fatalf("Write: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 5 {
		t.Errorf("wrote %d files, want 5", len(entries))
	}
	src, err := os.ReadFile(filepath.Join(dir, "decoders.go"))
	if err != nil {
		t.Fatal(err)
	}
	parse(t, "decoders.go", src)
}

// typeCheck checks the rendered package against the runtime packages it
// imports, loaded from source.
func typeCheck(t *testing.T, pkg string, files map[string][]byte) *types.Package {
	t.Helper()
	fset := token.NewFileSet()
	var parsed []*ast.File
	for name, src := range files {
		f, err := parser.ParseFile(fset, name, src, 0)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		parsed = append(parsed, f)
	}
	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	p, err := conf.Check(pkg, fset, parsed, nil)
	if err != nil {
		t.Fatalf("type check: %v", err)
	}
	return p
}

func TestFilesTypeCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("loads runtime packages from source")
	}
	p := typeCheck(t, DefaultPackage, render(t))

	decoders := p.Scope().Lookup(decodersVar)
	if decoders == nil {
		t.Fatalf("%s not declared", decodersVar)
	}
	if got := decoders.Type().String(); got != "map[string]github.com/d07RiV/d4data/sno.DecodeFunc" {
		t.Errorf("%s type = %s", decodersVar, got)
	}

	poly, ok := p.Scope().Lookup(polymorphicInterface).Type().Underlying().(*types.Interface)
	if !ok {
		t.Fatalf("%s is not an interface", polymorphicInterface)
	}
	for _, name := range []string{"Effect", "Trigger"} {
		typ := p.Scope().Lookup(name).Type()
		if !types.Implements(types.NewPointer(typ), poly) {
			t.Errorf("*%s does not implement %s", name, polymorphicInterface)
		}
	}

	fn, ok := p.Scope().Lookup("ReadPower").(*types.Func)
	if !ok {
		t.Fatal("ReadPower not declared")
	}
	if got := fn.Type().String(); got != "func(r *github.com/d07RiV/d4data/binary.Reader) (*types.Power, error)" {
		t.Errorf("ReadPower type = %s", got)
	}
}

func TestFilesTypeCheckWithoutPolymorphicBase(t *testing.T) {
	if testing.Short() {
		t.Skip("loads runtime packages from source")
	}
	g := compileFixture(t, map[string]string{
		"!PowerDefinition.00000020.yml": `
0x00: dwValue # DT_UINT
0x04: vPos # DT_VECTOR2D
0x0c: null or eof # DT_NULL
`,
	}, "Power")
	files, err := New(g, WithPackage("d4")).Files()
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	typeCheck(t, "d4", files)
}

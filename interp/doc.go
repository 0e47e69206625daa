// Package interp decodes resource payloads straight from a compiled schema
// graph, without generating code.
//
// Every class is decoded into a Record whose fields keep layout order and
// render as JSON the way the generated structs do. Decoders returns one
// decode function per resource kind for use with sno.NewLibrary:
//
//	g, err := schema.NewCompiler().Compile(os.DirFS(defs), kinds)
//	in, err := interp.New(g)
//	lib := sno.NewLibrary(root, in.Decoders())
package interp

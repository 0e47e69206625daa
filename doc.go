// Package d4data decodes the binary resource files of an extracted game data
// tree and generates typed Go decoders for them from textual layout
// definitions.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct responsibilities:
//
//	d4data/
//	├── binary/          Bounds-checked little-endian reader over a shared buffer
//	├── sno/             Resource files, per-kind libraries, template decoders
//	├── schema/          Definition parser and resolved type graph
//	├── gen/             Go source emitter over the type graph
//	├── interp/          Decoding straight from the type graph
//	├── errors/          Structured error types for debugging
//	├── internal/config/ d4data.hcl project file
//	└── cmd/d4data/      generate, graph, dump and browse commands
//
// # Quick Start
//
// Compile the definitions and decode every file of a kind without
// generating code:
//
//	g, err := schema.NewCompiler().Compile(os.DirFS("definitions"), []string{"Power"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	in, err := interp.New(g)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	lib := sno.NewLibrary(sno.DefaultRoot, in.Decoders())
//	files, err := lib.Files("Power")
//
// Or write typed decoders once and use them instead:
//
//	err := gen.New(g, gen.WithPackage("types")).Write("types")
//
//	lib := sno.NewLibrary(sno.DefaultRoot, types.Decoders)
//	power, err := sno.Payload[*types.Power](file)
//
// # Resource Files
//
// Every file starts with a 16-byte header (magic 0xDEADBEEF, type id,
// reserved word, content hash) followed by the payload. The unique id is
// the first payload word. Payload decoding is lazy and happens at most once
// per file; references between files resolve through the Library, which
// scans each kind's directory on first use.
//
// # Thread Safety
//
// Library and File are safe for concurrent use. A binary.Reader is not and
// should be used by a single goroutine.
package d4data

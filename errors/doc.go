// Package errors provides structured error types for the d4data library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the offending schema or resource file, a field path and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseSchema, errors.KindUnresolved).
//		File("1a2b3c.yml").
//		Path("SkillKitDefinition", "arNodes").
//		Detail("unknown type %s", name).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Format(errors.PhaseSchema, file, "invalid field line")
//	err := errors.OutOfBounds(errors.PhaseDecode, pos, 4, size)
//
// The three failure classes of the decoder map onto Kind: format problems
// (IsFormat), unresolved references (IsUnresolved) and missing resource files
// (IsNotFound). All errors implement the standard error interface and support
// errors.Is/As.
package errors

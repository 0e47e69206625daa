package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseSchema Phase = "schema" // definition parsing and graph resolution
	PhaseEmit   Phase = "emit"   // decoder source generation
	PhaseDecode Phase = "decode" // resource payload decoding
	PhaseLoad   Phase = "load"   // resource file and directory loading
	PhaseConfig Phase = "config" // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindFormat           Kind = "format"
	KindInvalidSignature Kind = "invalid_signature"
	KindUnresolved       Kind = "unresolved"
	KindNotFound         Kind = "not_found"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindFieldOverlap     Kind = "field_overlap"
	KindUnknownTag       Kind = "unknown_tag"
	KindInvalidInput     Kind = "invalid_input"
)

// Error is the structured error type used throughout d4data
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	File   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.File != "" {
		b.WriteString(" [")
		b.WriteString(e.File)
		b.WriteByte(']')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// File sets the offending file name
func (b *Builder) File(name string) *Builder {
	b.err.File = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Format creates a malformed input error
func Format(phase Phase, file, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFormat,
		File:   file,
		Detail: detail,
	}
}

// InvalidSignature creates a bad magic error for a resource file header
func InvalidSignature(file string, got uint32) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidSignature,
		File:   file,
		Detail: fmt.Sprintf("invalid signature 0x%08x", got),
		Value:  got,
	}
}

// Unresolved creates an unresolved reference error
func Unresolved(phase Phase, file string, path []string, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnresolved,
		File:   file,
		Path:   path,
		Detail: fmt.Sprintf("unknown %s %s", what, name),
		Value:  name,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// OutOfBounds creates an out of bounds read error
func OutOfBounds(phase Phase, pos, want, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("read of %d bytes at position %d out of bounds (length %d)", want, pos, length),
		Value:  pos,
	}
}

// FieldOverlap creates an overlapping field error
func FieldOverlap(file, class, field string, offset, cursor int) *Error {
	return &Error{
		Phase:  PhaseEmit,
		Kind:   KindFieldOverlap,
		File:   file,
		Path:   []string{class, field},
		Detail: fmt.Sprintf("field at 0x%x overlaps previous data ending at 0x%x", offset, cursor),
		Value:  offset,
	}
}

// FieldOverrun creates an error for a field that ends past its record size
func FieldOverrun(file, class, field string, end, size int) *Error {
	return &Error{
		Phase:  PhaseEmit,
		Kind:   KindFieldOverlap,
		File:   file,
		Path:   []string{class, field},
		Detail: fmt.Sprintf("field ends at 0x%x past the record size 0x%x", end, size),
		Value:  end,
	}
}

// UnknownTag creates an unknown polymorphic tag error
func UnknownTag(tag uint32) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnknownTag,
		Detail: fmt.Sprintf("no decoder registered for polymorphic tag 0x%08x", tag),
		Value:  tag,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// WithPath returns err with path prepended when err is an *Error,
// so nested decoders can report where a failure happened.
func WithPath(err error, path ...string) error {
	var e *Error
	if !stderrors.As(err, &e) {
		return err
	}
	cp := *e
	cp.Path = append(append([]string(nil), path...), e.Path...)
	return &cp
}

func kindOf(err error) (Kind, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsFormat reports whether err is a format error: a bad signature,
// a malformed schema line or a missing annotation.
func IsFormat(err error) bool {
	k, ok := kindOf(err)
	return ok && (k == KindFormat || k == KindInvalidSignature || k == KindFieldOverlap)
}

// IsUnresolved reports whether err is an unresolved reference: an unknown type,
// inheritance target, resource kind or polymorphic tag.
func IsUnresolved(err error) bool {
	k, ok := kindOf(err)
	return ok && (k == KindUnresolved || k == KindUnknownTag)
}

// IsNotFound reports whether err is a missing resource error
func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNotFound
}

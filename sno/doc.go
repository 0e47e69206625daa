// Package sno is the runtime that generated and interpreted decoders run on.
//
// A File is one resource file: a 16-byte header followed by a payload that is
// decoded lazily, exactly once, by the decoder registered for its kind. A
// Library owns the per-kind caches mapping unique ids to files; it scans a
// kind's directory on first use and keeps the result for its lifetime.
//
// The template functions (ReadVariableArray, ReadPolymorphicArray, ...) decode
// the container constructs of the format. Variable-length containers share a
// header of two reserved words, an absolute offset into the payload and a
// byte size; the offset is followed with binary.Reader.Offset so the payload
// bytes are never copied.
//
// Ref is a lazy link to another resource file. It stores only the kind and
// id; Resolve looks the file up in a Library on demand, so records that refer
// to each other never own each other.
package sno

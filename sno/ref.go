package sno

import (
	"encoding/json"
	"strconv"

	"github.com/d07RiV/d4data/binary"
)

// Resolver looks up resource files by kind and unique id. *Library implements it.
type Resolver interface {
	Lookup(kind string, uid int32) (*File, error)
}

// Ref is a lazy link to a resource file of another kind.
type Ref struct {
	Kind string
	ID   int32
}

// ReadRef decodes a reference to a file of kind.
func ReadRef(r *binary.Reader, kind string) (Ref, error) {
	id, err := r.ReadInt32()
	return Ref{Kind: kind, ID: id}, err
}

// IsNull reports whether the reference points at no file.
func (ref Ref) IsNull() bool {
	return ref.ID == 0 || ref.ID == -1
}

// Resolve returns the referenced file, or nil for a null reference.
// The kind's directory is scanned on first use.
func (ref Ref) Resolve(res Resolver) (*File, error) {
	if ref.IsNull() {
		return nil, nil
	}
	return res.Lookup(ref.Kind, ref.ID)
}

func (ref Ref) String() string {
	return strconv.FormatInt(int64(ref.ID), 10)
}

// MarshalJSON renders the bare id.
func (ref Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(ref.ID)
}

package interp

import (
	"bytes"
	"encoding/json"
)

// Record is one decoded class instance. Fields keep layout order, inherited
// fields first.
type Record struct {
	Class  string
	names  []string
	values []any
}

func newRecord(class string, n int) *Record {
	return &Record{Class: class, names: make([]string, 0, n), values: make([]any, 0, n)}
}

// Set stores a field value. A name that is already present keeps its
// position and takes the new value.
func (r *Record) Set(name string, v any) {
	for i, n := range r.names {
		if n == name {
			r.values[i] = v
			return
		}
	}
	r.names = append(r.names, name)
	r.values = append(r.values, v)
}

// Get returns the value of the named field.
func (r *Record) Get(name string) (any, bool) {
	for i, n := range r.names {
		if n == name {
			return r.values[i], true
		}
	}
	return nil, false
}

// Names returns the field names in order.
func (r *Record) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.names)
}

// MarshalJSON renders the record as an object with fields in order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

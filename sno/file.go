package sno

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"

	bin "github.com/d07RiV/d4data/binary"
	"github.com/d07RiV/d4data/errors"
)

const (
	// Magic is the signature every resource file starts with.
	Magic uint32 = 0xDEADBEEF
	// HeaderSize is the offset at which the payload starts.
	HeaderSize = 16
	// headerRead is how many bytes the header parser reads. The unique id
	// word sits at the start of the payload.
	headerRead = 20
)

// DecodeFunc decodes the payload of one resource kind.
type DecodeFunc func(r *bin.Reader) (any, error)

var recordName = regexp.MustCompile(`^(.*)\.\w+$`)

// File is one resource file. The payload is decoded on first access.
type File struct {
	Type uint32
	Hash int32
	UID  int32
	Name string

	data    []byte
	decode  DecodeFunc
	once    sync.Once
	value   any
	err     error
	decodes atomic.Int32
}

// Parse validates the header of data and returns a File whose payload is
// decoded by decode on first access.
func Parse(name string, data []byte, decode DecodeFunc) (*File, error) {
	if len(data) < headerRead {
		return nil, errors.New(errors.PhaseLoad, errors.KindFormat).
			File(name).
			Detail("file is %d bytes, shorter than the %d byte header", len(data), headerRead).
			Build()
	}
	if magic := binary.LittleEndian.Uint32(data[0:]); magic != Magic {
		return nil, errors.InvalidSignature(name, magic)
	}
	// data[8:12] is reserved.
	return &File{
		Type:   binary.LittleEndian.Uint32(data[4:]),
		Hash:   int32(binary.LittleEndian.Uint32(data[12:])),
		UID:    int32(binary.LittleEndian.Uint32(data[16:])),
		Name:   name,
		data:   data,
		decode: decode,
	}, nil
}

// Open reads the resource file at path. The display name is the file name
// without its extension.
func Open(path string, decode DecodeFunc) (*File, error) {
	m := recordName.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return nil, errors.NotFound(errors.PhaseLoad, "resource file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		e := errors.NotFound(errors.PhaseLoad, "resource file", path)
		e.Cause = err
		return nil, e
	}
	return Parse(m[1], data, decode)
}

// Data returns the decoded payload, decoding it on the first call.
// The value and error of that call are returned on every later call.
func (f *File) Data() (any, error) {
	f.once.Do(func() {
		f.decodes.Add(1)
		if f.decode == nil {
			f.err = errors.NotFound(errors.PhaseDecode, "decoder for file", f.Name)
			return
		}
		r := bin.NewReader(f.data[HeaderSize:])
		f.value, f.err = f.decode(r)
		if f.err != nil {
			f.err = errors.WithPath(f.err, f.Name)
		}
	})
	return f.value, f.err
}

// Decodes reports how many times the payload decoder ran.
func (f *File) Decodes() int {
	return int(f.decodes.Load())
}

// Payload returns the decoded payload of f as T.
func Payload[T any](f *File) (T, error) {
	var zero T
	v, err := f.Data()
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, errors.New(errors.PhaseDecode, errors.KindInvalidInput).
			File(f.Name).
			Detail("payload is %T", v).
			Build()
	}
	return t, nil
}

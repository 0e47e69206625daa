package sno

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/d07RiV/d4data/errors"
)

// DefaultRoot is the directory holding one sub-directory per resource kind.
const DefaultRoot = "data/Base/meta"

// Library owns the per-kind file caches. Each kind's directory is scanned
// once, on first use; later calls return the same map, which callers must
// treat as read-only.
type Library struct {
	root     string
	decoders map[string]DecodeFunc
	ignore   map[string]bool
	log      *zap.Logger

	mu    sync.Mutex
	kinds map[string]*kindEntry
}

type kindEntry struct {
	once  sync.Once
	files map[int32]*File
	err   error
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the logger used for skipped entries.
func WithLogger(l *zap.Logger) Option {
	return func(lib *Library) {
		lib.log = l
	}
}

// WithIgnore adds directory entry names that are never treated as records or kinds.
func WithIgnore(names ...string) Option {
	return func(lib *Library) {
		for _, n := range names {
			lib.ignore[n] = true
		}
	}
}

// NewLibrary creates a Library reading kinds from root and decoding their
// payloads with decoders, keyed by kind name.
func NewLibrary(root string, decoders map[string]DecodeFunc, opts ...Option) *Library {
	lib := &Library{
		root:     root,
		decoders: decoders,
		ignore:   map[string]bool{".gitkeep": true},
		kinds:    make(map[string]*kindEntry),
	}
	for _, opt := range opts {
		opt(lib)
	}
	if lib.log == nil {
		lib.log = Logger()
	}
	return lib
}

// Root returns the directory the library reads from.
func (lib *Library) Root() string {
	return lib.root
}

// Kinds lists the resource kind directories under the root.
func (lib *Library) Kinds() ([]string, error) {
	entries, err := os.ReadDir(lib.root)
	if err != nil {
		e := errors.NotFound(errors.PhaseLoad, "resource directory", lib.root)
		e.Cause = err
		return nil, e
	}
	var kinds []string
	for _, ent := range entries {
		if ent.IsDir() && !lib.ignore[ent.Name()] {
			kinds = append(kinds, ent.Name())
		}
	}
	sort.Strings(kinds)
	return kinds, nil
}

func (lib *Library) entry(kind string) *kindEntry {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	e, ok := lib.kinds[kind]
	if !ok {
		e = &kindEntry{}
		lib.kinds[kind] = e
	}
	return e
}

// Files returns the files of kind keyed by unique id, scanning the kind's
// directory on the first call. Entries that cannot be opened are skipped.
func (lib *Library) Files(kind string) (map[int32]*File, error) {
	e := lib.entry(kind)
	e.once.Do(func() {
		e.files, e.err = lib.scan(kind)
	})
	return e.files, e.err
}

func (lib *Library) scan(kind string) (map[int32]*File, error) {
	decode, ok := lib.decoders[kind]
	if !ok {
		return nil, errors.Unresolved(errors.PhaseLoad, "", nil, "resource kind", kind)
	}
	dir := filepath.Join(lib.root, kind)
	entries, err := os.ReadDir(dir)
	if err != nil {
		e := errors.NotFound(errors.PhaseLoad, "resource directory", dir)
		e.Cause = err
		return nil, e
	}

	files := make(map[int32]*File, len(entries))
	for _, ent := range entries {
		if ent.IsDir() || lib.ignore[ent.Name()] {
			continue
		}
		f, err := Open(filepath.Join(dir, ent.Name()), decode)
		if err != nil {
			lib.log.Debug("skipping resource file",
				zap.String("kind", kind),
				zap.String("file", ent.Name()),
				zap.Error(err))
			continue
		}
		files[f.UID] = f
	}
	lib.log.Debug("loaded resource kind",
		zap.String("kind", kind),
		zap.Int("files", len(files)))
	return files, nil
}

// Lookup returns the file of kind with the given unique id.
func (lib *Library) Lookup(kind string, uid int32) (*File, error) {
	files, err := lib.Files(kind)
	if err != nil {
		return nil, err
	}
	f, ok := files[uid]
	if !ok {
		return nil, errors.New(errors.PhaseLoad, errors.KindNotFound).
			Path(kind).
			Value(uid).
			Detail("no %s file with uid %d", kind, uid).
			Build()
	}
	return f, nil
}

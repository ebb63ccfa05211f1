package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/notesd/internal/apperr"
	"github.com/starford/notesd/internal/models"
)

const (
	// DefaultSuffix is appended to a note name to form its file name.
	DefaultSuffix = ".txt"

	// MaxSuffixBytes bounds the suffix so names keep most of the file name limit.
	MaxSuffixBytes = 64

	tmpPattern = ".notesd-tmp-*"
)

// FS implements Store backed by the local file system.
//
// Create, Update and Delete on the same name are serialized so the
// existence check and the mutation happen as one step. Read relies on the
// rename in writeFile being atomic and takes no lock. List reads the
// directory without locking and may miss writes that are in flight.
type FS struct {
	root   string // absolute path to the notes directory
	suffix string
	perm   os.FileMode
	locks  *nameLocks
}

var _ Store = (*FS)(nil)

// Option configures an FS.
type Option func(*FS)

// WithSuffix sets the file name suffix used for note records.
func WithSuffix(suffix string) Option {
	return func(f *FS) {
		f.suffix = suffix
	}
}

// WithFileMode sets the permission bits of note files.
func WithFileMode(perm os.FileMode) Option {
	return func(f *FS) {
		f.perm = perm
	}
}

// NewFS creates a new FS store rooted at the given directory. The directory
// is not touched until Init is called.
func NewFS(root string, opts ...Option) (*FS, error) {
	if root == "" {
		return nil, errors.New("storage: root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	f := &FS{
		root:   abs,
		suffix: DefaultSuffix,
		perm:   0o644,
		locks:  newNameLocks(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.suffix == "" || strings.ContainsAny(f.suffix, `/\`) {
		return nil, fmt.Errorf("storage: invalid suffix %q", f.suffix)
	}
	if len(f.suffix) > MaxSuffixBytes {
		return nil, fmt.Errorf("storage: suffix longer than %d bytes", MaxSuffixBytes)
	}
	return f, nil
}

// Root returns the absolute path of the notes directory.
func (f *FS) Root() string {
	return f.root
}

// Suffix returns the file name suffix of note records.
func (f *FS) Suffix() string {
	return f.suffix
}

// Init creates the notes directory if it is absent.
func (f *FS) Init() error {
	if err := os.MkdirAll(f.root, 0o755); err != nil {
		return fmt.Errorf("storage: create root: %w", err)
	}
	info, err := os.Stat(f.root)
	if err != nil {
		return fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage: root is not a directory: %s", f.root)
	}
	return nil
}

// Exists reports whether the note is stored. Only an invalid name or an
// unexpected stat failure yields an error.
func (f *FS) Exists(name string) (bool, error) {
	p, err := f.keyPath(name)
	if err != nil {
		return false, err
	}
	return present(p)
}

// Read returns the text of a note.
func (f *FS) Read(name string) (string, error) {
	p, err := f.keyPath(name)
	if err != nil {
		return "", err
	}
	ok, err := present(p)
	if err != nil {
		return "", fmt.Errorf("storage: read %s: %w", name, err)
	}
	if !ok {
		return "", fmt.Errorf("storage: read %s: %w", name, apperr.ErrNotFound)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("storage: read %s: %w", name, apperr.ErrNotFound)
		}
		return "", fmt.Errorf("storage: read %s: %w", name, err)
	}
	return string(data), nil
}

// Create persists a new note. It fails if the name is already used.
func (f *FS) Create(name, text string) error {
	p, err := f.keyPath(name)
	if err != nil {
		return err
	}
	unlock := f.locks.lock(name)
	defer unlock()

	// Any entry occupying the key blocks creation, including directories
	// and symlinks that Read treats as absent.
	if _, err := os.Lstat(p); err == nil {
		return fmt.Errorf("storage: create %s: %w", name, apperr.ErrAlreadyExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: create %s: %w", name, err)
	}
	return f.writeFile(p, text)
}

// Update replaces the text of an existing note.
func (f *FS) Update(name, text string) error {
	p, err := f.keyPath(name)
	if err != nil {
		return err
	}
	unlock := f.locks.lock(name)
	defer unlock()

	ok, err := present(p)
	if err != nil {
		return fmt.Errorf("storage: update %s: %w", name, err)
	}
	if !ok {
		return fmt.Errorf("storage: update %s: %w", name, apperr.ErrNotFound)
	}
	return f.writeFile(p, text)
}

// Delete removes a note.
func (f *FS) Delete(name string) error {
	p, err := f.keyPath(name)
	if err != nil {
		return err
	}
	unlock := f.locks.lock(name)
	defer unlock()

	ok, err := present(p)
	if err != nil {
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	if !ok {
		return fmt.Errorf("storage: delete %s: %w", name, apperr.ErrNotFound)
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage: delete %s: %w", name, apperr.ErrNotFound)
		}
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	return nil
}

// List returns all notes found directly under the root. Entries that are not
// regular files with the configured suffix and a valid name are skipped, as
// are files removed or unreadable between the directory scan and the read.
func (f *FS) List() ([]models.Note, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	out := make([]models.Note, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name, ok := f.NameFromKey(e.Name())
		if !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(f.root, e.Name()))
		if err != nil {
			continue
		}
		out = append(out, models.Note{Name: name, Text: string(data)})
	}
	return out, nil
}

// writeFile atomically writes content: tmp file → fsync → rename.
func (f *FS) writeFile(p, text string) error {
	tmp, err := os.CreateTemp(f.root, tmpPattern)
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(text); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Chmod(f.perm); err != nil {
		return fmt.Errorf("storage: chmod temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// present reports whether p is a regular file. Symlinks and directories
// under a note key are treated as absent.
func present(p string) (bool, error) {
	info, err := os.Lstat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

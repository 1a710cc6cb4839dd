package store

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	perrors "github.com/pastries/pastries/pkg/errors"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Store is the filesystem as seen from a project directory. Relative
// segments resolve under the root; an absolute first segment is used as is.
// Every failure is returned as an IO error carrying the resolved path.
type Store interface {
	// Path returns the filesystem path for the given segments. Does not
	// create or verify the path.
	Path(segments ...string) string
	// Exists reports whether the path at the given segments exists.
	Exists(segments ...string) (bool, error)
	// Stat returns file info for the path at segments.
	Stat(segments ...string) (fs.FileInfo, error)
	// EnsureParent creates every missing parent directory of the path.
	EnsureParent(segments ...string) error
	// Open opens the file at segments for reading.
	Open(segments ...string) (io.ReadCloser, error)
	// Create truncates or creates the file at segments for writing.
	// Parent directories must already exist.
	Create(perm os.FileMode, segments ...string) (io.WriteCloser, error)
	// WriteFile writes data to the file at segments.
	// Parent directories must already exist.
	WriteFile(data []byte, perm os.FileMode, segments ...string) error
	// ReadFile reads the file at segments.
	ReadFile(segments ...string) ([]byte, error)
	// Rename atomically replaces to with from.
	Rename(from, to string) error
	// Remove deletes a single file. Fails if it does not exist.
	Remove(segments ...string) error
}

func New(root string) Store {
	return &store{root: root}
}

type store struct {
	root string
}

var _ Store = &store{}

func (s *store) Path(segments ...string) string {
	if len(segments) > 0 && filepath.IsAbs(segments[0]) {
		return filepath.Join(segments...)
	}
	return filepath.Join(append([]string{s.root}, segments...)...)
}

func (s *store) Exists(segments ...string) (bool, error) {
	p := s.Path(segments...)
	_, err := os.Stat(p)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, perrors.IO("stat", p, err)
}

func (s *store) Stat(segments ...string) (fs.FileInfo, error) {
	p := s.Path(segments...)
	info, err := os.Stat(p)
	if err != nil {
		return nil, perrors.IO("stat", p, err)
	}
	return info, nil
}

func (s *store) EnsureParent(segments ...string) error {
	dir := filepath.Dir(s.Path(segments...))
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return perrors.IO("create directory", dir, err)
	}
	return nil
}

func (s *store) Open(segments ...string) (io.ReadCloser, error) {
	p := s.Path(segments...)
	f, err := os.Open(p)
	if err != nil {
		return nil, perrors.IO("open", p, err)
	}
	return f, nil
}

func (s *store) Create(perm os.FileMode, segments ...string) (io.WriteCloser, error) {
	p := s.Path(segments...)
	if perm == 0 {
		perm = filePerm
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return nil, perrors.IO("create", p, err)
	}
	return f, nil
}

func (s *store) WriteFile(data []byte, perm os.FileMode, segments ...string) error {
	p := s.Path(segments...)
	if err := os.WriteFile(p, data, perm); err != nil {
		return perrors.IO("write", p, err)
	}
	return nil
}

func (s *store) ReadFile(segments ...string) ([]byte, error) {
	p := s.Path(segments...)
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, perrors.IO("read", p, err)
	}
	return data, nil
}

func (s *store) Rename(from, to string) error {
	src, dst := s.Path(from), s.Path(to)
	if err := os.Rename(src, dst); err != nil {
		return perrors.IO("rename", src, err)
	}
	return nil
}

func (s *store) Remove(segments ...string) error {
	p := s.Path(segments...)
	if err := os.Remove(p); err != nil {
		return perrors.IO("remove", p, err)
	}
	return nil
}

package source

import (
	"context"
	"errors"
	"os"

	perrors "github.com/pastries/pastries/pkg/errors"
	"github.com/pastries/pastries/pkg/store"
)

// LocalSource copies a file from the filesystem. Relative paths resolve
// against the store root.
type LocalSource struct {
	Path string
}

var _ Source = &LocalSource{}

func (l *LocalSource) URI() string {
	return l.Path
}

func (l *LocalSource) Fetch(ctx context.Context, st store.Store, target string) error {
	src := st.Path(l.Path)

	info, err := st.Stat(l.Path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return perrors.IO("copy", src, errors.New("source is not a regular file"))
	}

	// Copying a file onto itself would truncate it first.
	if dst, err := os.Stat(st.Path(target)); err == nil && os.SameFile(info, dst) {
		return nil
	}

	f, err := st.Open(l.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := &classifyReads{r: f, wrap: func(err error) error {
		return perrors.IO("read", src, err)
	}}
	return writeTarget(st, target, r, info.Mode().Perm())
}

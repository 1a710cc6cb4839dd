package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	perrors "github.com/pastries/pastries/pkg/errors"
	"github.com/pastries/pastries/pkg/store"
)

func TestLocalSourceFetch(t *testing.T) {
	tests := map[string]struct {
		setup   func(root string) (src string)
		target  string
		content string
		wantErr error
	}{
		"copies into existing directory": {
			setup: func(root string) string {
				os.WriteFile(filepath.Join(root, "a.txt"), []byte("alpha\r\n"), 0o644)
				return "a.txt"
			},
			target:  "b.txt",
			content: "alpha\r\n",
		},
		"creates missing parent directories": {
			setup: func(root string) string {
				os.WriteFile(filepath.Join(root, "a.txt"), []byte("alpha"), 0o644)
				return "a.txt"
			},
			target:  "deep/nested/dir/b.txt",
			content: "alpha",
		},
		"absolute source outside root": {
			setup: func(root string) string {
				p := filepath.Join(t.TempDir(), "outside.txt")
				os.WriteFile(p, []byte("outside"), 0o644)
				return p
			},
			target:  "copy.txt",
			content: "outside",
		},
		"nonexistent source": {
			setup: func(root string) string {
				return "does-not-exist.txt"
			},
			target:  "b.txt",
			wantErr: perrors.ErrIO,
		},
		"directory source": {
			setup: func(root string) string {
				os.MkdirAll(filepath.Join(root, "dir"), 0o755)
				return "dir"
			},
			target:  "b.txt",
			wantErr: perrors.ErrIO,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			st := store.New(root)
			src := &LocalSource{Path: tc.setup(root)}

			err := src.Fetch(context.Background(), st, tc.target)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Fetch() error = %v, want %v", err, tc.wantErr)
				}
				if _, statErr := os.Stat(filepath.Join(root, tc.target)); !os.IsNotExist(statErr) {
					t.Errorf("target %q was created despite the failure", tc.target)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() error: %v", err)
			}

			got, err := os.ReadFile(filepath.Join(root, tc.target))
			if err != nil {
				t.Fatalf("reading target: %v", err)
			}
			if string(got) != tc.content {
				t.Errorf("target content = %q, want %q", got, tc.content)
			}
		})
	}
}

func TestLocalSourceFetchOntoItself(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "same.txt"), []byte("keep me"), 0o644)

	src := &LocalSource{Path: "same.txt"}
	if err := src.Fetch(context.Background(), store.New(root), "same.txt"); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	got, _ := os.ReadFile(filepath.Join(root, "same.txt"))
	if string(got) != "keep me" {
		t.Errorf("content = %q, want it untouched", got)
	}
}

func TestLocalSourceFetchUnwritableTarget(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "a.txt"), []byte("alpha"), 0o644)
	os.WriteFile(filepath.Join(root, "blocker"), []byte("file, not dir"), 0o644)

	src := &LocalSource{Path: "a.txt"}
	err := src.Fetch(context.Background(), store.New(root), "blocker/b.txt")
	if !errors.Is(err, perrors.ErrIO) {
		t.Fatalf("Fetch() error = %v, want io error", err)
	}
}

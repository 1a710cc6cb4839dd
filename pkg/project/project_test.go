package project

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pastries/pastries/pkg/config"
)

func TestInit(t *testing.T) {
	dir := t.TempDir()

	path, err := Init(dir, config.RegistryFileName)
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if path != filepath.Join(dir, config.RegistryFileName) {
		t.Errorf("Init() path = %q", path)
	}

	reg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("loading created registry: %v", err)
	}
	if len(reg.Dependencies) != 0 {
		t.Errorf("new registry has %d dependencies", len(reg.Dependencies))
	}

	if _, err := Init(dir, config.RegistryFileName); err == nil {
		t.Error("second Init() succeeded, want error")
	}
}

func TestInitYAML(t *testing.T) {
	dir := t.TempDir()

	path, err := Init(dir, "deps/pastries.yaml")
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "dependencies: []\n" {
		t.Errorf("registry content = %q", data)
	}
}

func TestEnsureGitignore(t *testing.T) {
	tests := map[string]struct {
		existing  *string
		entries   []string
		wantAdded []string
		wantFile  string
	}{
		"creates file": {
			entries:   IgnoreEntries,
			wantAdded: []string{"pastries.local.toml", "*.tmp"},
			wantFile:  "pastries.local.toml\n*.tmp\n",
		},
		"skips present entries": {
			existing:  strp("node_modules/\n*.tmp\n"),
			entries:   IgnoreEntries,
			wantAdded: []string{"pastries.local.toml"},
			wantFile:  "node_modules/\n*.tmp\npastries.local.toml\n",
		},
		"adds missing newline": {
			existing:  strp("bin"),
			entries:   []string{"vendor/lib.js"},
			wantAdded: []string{"vendor/lib.js"},
			wantFile:  "bin\nvendor/lib.js\n",
		},
		"nothing to add": {
			existing: strp("a\nb\n"),
			entries:  []string{"a", "b", ""},
			wantFile: "a\nb\n",
		},
		"duplicate entries added once": {
			entries:   []string{"x", "x"},
			wantAdded: []string{"x"},
			wantFile:  "x\n",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, ".gitignore")
			if tc.existing != nil {
				if err := os.WriteFile(path, []byte(*tc.existing), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			added, err := EnsureGitignore(dir, tc.entries)
			if err != nil {
				t.Fatalf("EnsureGitignore() error: %v", err)
			}
			if !reflect.DeepEqual(added, tc.wantAdded) {
				t.Errorf("added = %v, want %v", added, tc.wantAdded)
			}

			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tc.wantFile {
				t.Errorf(".gitignore = %q, want %q", got, tc.wantFile)
			}
		})
	}
}

func strp(s string) *string { return &s }

package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pastries/pastries/pkg/config"
	perrors "github.com/pastries/pastries/pkg/errors"
)

// IgnoreEntries are the .gitignore lines init offers to add: developer-only
// settings and staging files left by an interrupted update.
var IgnoreEntries = []string{
	config.LocalSettingsFile,
	"*.tmp",
}

// Init creates an empty registry named registryFile in dir. Returns an error
// if the registry already exists.
func Init(dir, registryFile string) (string, error) {
	path := registryFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, registryFile)
	}

	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", registryFile)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", perrors.IO("creating directory", filepath.Dir(path), err)
	}
	if err := config.SaveFile(path, &config.Registry{}); err != nil {
		return "", err
	}
	return path, nil
}

// EnsureGitignore ensures that each entry appears somewhere in the .gitignore
// file within dir. Only entries not already present are appended. Returns the
// list of entries that were actually added.
func EnsureGitignore(dir string, entries []string) ([]string, error) {
	path := filepath.Join(dir, ".gitignore")

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, perrors.IO("reading", path, err)
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(existing), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var toAdd []string
	for _, entry := range entries {
		entry = filepath.ToSlash(strings.TrimSpace(entry))
		if entry == "" || present[entry] {
			continue
		}
		present[entry] = true
		toAdd = append(toAdd, entry)
	}

	if len(toAdd) == 0 {
		return nil, nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, perrors.IO("opening", path, err)
	}
	defer f.Close()

	// Start on a new line if the file doesn't end with one.
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		if _, err := f.WriteString("\n"); err != nil {
			return nil, perrors.IO("writing", path, err)
		}
	}

	for _, entry := range toAdd {
		if _, err := f.WriteString(entry + "\n"); err != nil {
			return nil, perrors.IO("writing", path, err)
		}
	}

	return toAdd, nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	perrors "github.com/pastries/pastries/pkg/errors"
	"sigs.k8s.io/yaml"
)

// RegistryFileName is the default registry filename inside a project.
const RegistryFileName = "pastries.json"

// Dependency is a named reference to a file that pastries materializes.
type Dependency struct {
	Name string `json:"name"`
	// URI is an http(s)/s3 URI, or a filesystem path when Local is set.
	URI string `json:"uri"`
	// Path is where the content is written, relative to the project dir
	// unless absolute.
	Path   string       `json:"path"`
	Local  bool         `json:"local"`
	Update UpdatePolicy `json:"update"`
}

// Registry is the ordered set of tracked dependencies. Names are unique and
// insertion order is kept for listing.
type Registry struct {
	Dependencies []Dependency `json:"dependencies"`
}

// Add tracks a new dependency, or re-points the URI of the existing one with
// the same name. Only the URI changes on an existing entry. Returns the entry
// as stored.
func (r *Registry) Add(dep Dependency) Dependency {
	for i := range r.Dependencies {
		if r.Dependencies[i].Name == dep.Name {
			r.Dependencies[i].URI = dep.URI
			return r.Dependencies[i]
		}
	}
	r.Dependencies = append(r.Dependencies, dep)
	return dep
}

// Remove drops the named dependency and returns it.
func (r *Registry) Remove(name string) (Dependency, bool) {
	for i, d := range r.Dependencies {
		if d.Name == name {
			r.Dependencies = append(r.Dependencies[:i], r.Dependencies[i+1:]...)
			return d, true
		}
	}
	return Dependency{}, false
}

// Get returns a copy of the named dependency.
func (r *Registry) Get(name string) (Dependency, bool) {
	for _, d := range r.Dependencies {
		if d.Name == name {
			return d, true
		}
	}
	return Dependency{}, false
}

// Names returns dependency names in insertion order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.Dependencies))
	for i, d := range r.Dependencies {
		names[i] = d.Name
	}
	return names
}

// Validate checks name uniqueness and that every entry has a uri and path.
func (r *Registry) Validate() error {
	seen := make(map[string]bool, len(r.Dependencies))
	for i, d := range r.Dependencies {
		if d.Name == "" {
			return fmt.Errorf("dependency %d has no name", i)
		}
		if seen[d.Name] {
			return fmt.Errorf("dependency %q is listed more than once", d.Name)
		}
		seen[d.Name] = true
		if d.URI == "" {
			return fmt.Errorf("dependency %q has no uri", d.Name)
		}
		if d.Path == "" {
			return fmt.Errorf("dependency %q has no path", d.Name)
		}
	}
	return nil
}

// UnmarshalRegistry decodes a registry in the format implied by path's
// extension: YAML for .yaml/.yml, JSON otherwise.
func UnmarshalRegistry(path string, data []byte) (*Registry, error) {
	reg := &Registry{}
	var err error
	if isYAML(path) {
		err = yaml.Unmarshal(data, reg)
	} else {
		err = json.Unmarshal(data, reg)
	}
	if err != nil {
		return nil, perrors.Serialization("decoding registry", path, err)
	}
	if err := reg.Validate(); err != nil {
		return nil, perrors.Serialization("validating registry", path, err)
	}
	return reg, nil
}

// Marshal encodes the registry in the format implied by path's extension.
func (r *Registry) Marshal(path string) ([]byte, error) {
	out := *r
	if out.Dependencies == nil {
		out.Dependencies = []Dependency{}
	}
	if isYAML(path) {
		return yaml.Marshal(out)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// LoadFile reads the registry at path. A missing file yields an empty
// registry.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Registry{}, nil
		}
		return nil, perrors.IO("reading registry", path, err)
	}
	return UnmarshalRegistry(path, data)
}

// SaveFile writes the registry to path.
func SaveFile(path string, reg *Registry) error {
	data, err := reg.Marshal(path)
	if err != nil {
		return perrors.Serialization("encoding registry", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return perrors.IO("writing registry", path, err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// All selects every dependency in Select.
const All = "all"

// Select returns the dependencies an update request names: every entry for
// All, otherwise the single named one.
func (r *Registry) Select(name string) ([]Dependency, error) {
	if name == All || name == "" {
		out := make([]Dependency, len(r.Dependencies))
		copy(out, r.Dependencies)
		return out, nil
	}
	d, ok := r.Get(name)
	if !ok {
		return nil, perrors.NotFound(name)
	}
	return []Dependency{d}, nil
}

package template

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry holds the built-in document templates loaded from embedded YAML.
// Uploaded templates live server-side and are merged in by the template
// service; the registry only covers the shipped defaults.
type Registry struct {
	templates map[string]*Template
	mu        sync.RWMutex
}

// NewRegistry loads every embedded template file.
func NewRegistry() (*Registry, error) {
	r := &Registry{templates: make(map[string]*Template)}

	entries, err := fs.Glob(configFiles, "config/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded templates: %w", err)
	}
	for _, path := range entries {
		data, err := configFiles.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		var t Template
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
		}
		if t.Name == "" {
			t.Name = strings.TrimSuffix(strings.TrimPrefix(path, "config/"), ".yaml")
		}
		r.templates[t.Name] = &t
	}
	return r, nil
}

// Get returns the named template.
func (r *Registry) Get(name string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("unknown template: %s", name)
	}
	return t, nil
}

// List returns all built-in templates sorted by name.
func (r *Registry) List() []*Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

package prefab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zeusync/sectors/internal/core/models"
	"github.com/zeusync/sectors/pkg/concurrent"
	"gopkg.in/yaml.v3"
)

// loadWorkers bounds concurrent prefab file reads.
const loadWorkers = 4

// ComponentFactory instantiates zero components by registered name.
type ComponentFactory interface {
	New(name string) (models.Component, error)
}

// Definition is the on-disk form of a prefab.
type Definition struct {
	Name      string `yaml:"name"`
	Parent    string `yaml:"parent,omitempty"`
	Persisted *bool  `yaml:"persisted,omitempty"`
	// Components maps component name to its fields. Kept as a raw node so
	// declaration order survives and each body decodes into its own type.
	Components yaml.Node `yaml:"components"`
}

type file struct {
	Prefabs []Definition `yaml:"prefabs"`
}

// Decode reads prefab definitions from a YAML document.
func Decode(r io.Reader) ([]Definition, error) {
	var f file
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return f.Prefabs, nil
}

// ReadFile reads prefab definitions from the YAML file at path.
func ReadFile(path string) ([]Definition, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open prefabs %s: %w", path, err)
	}
	defer func() { _ = fd.Close() }()

	defs, err := Decode(fd)
	if err != nil {
		return nil, fmt.Errorf("parse prefabs %s: %w", path, err)
	}
	return defs, nil
}

// LoadFiles reads every file concurrently and defines their prefabs in path order,
// so a later file may inherit from an earlier one.
func (l *Library) LoadFiles(ctx context.Context, factory ComponentFactory, paths ...string) error {
	perFile, err := concurrent.Map(ctx, paths, loadWorkers, func(_ context.Context, path string) ([]Definition, error) {
		return ReadFile(path)
	})
	if err != nil {
		return err
	}
	var defs []Definition
	for _, fileDefs := range perFile {
		defs = append(defs, fileDefs...)
	}
	return l.Define(factory, defs...)
}

// Define builds and registers prefabs from definitions. Parents may be other
// definitions in the same call or prefabs already in the library. Nothing is
// registered if any definition fails.
func (l *Library) Define(factory ComponentFactory, defs ...Definition) error {
	pending := make(map[string]Definition, len(defs))
	for _, def := range defs {
		if def.Name == "" {
			return ErrEmptyName
		}
		if _, ok := pending[def.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicate, def.Name)
		}
		if _, ok := l.Resolve(def.Name); ok {
			return fmt.Errorf("%w: %s", ErrDuplicate, def.Name)
		}
		pending[def.Name] = def
	}

	built := make(map[string]*Prefab, len(defs))
	visiting := make(map[string]bool)

	var build func(name string) (*Prefab, error)
	build = func(name string) (*Prefab, error) {
		if p, ok := built[name]; ok {
			return p, nil
		}
		def, ok := pending[name]
		if !ok {
			if p, ok := l.Resolve(name); ok {
				return p, nil
			}
			return nil, fmt.Errorf("%w: %s", ErrUnknownParent, name)
		}
		if visiting[name] {
			return nil, fmt.Errorf("%w: %s", ErrCycle, name)
		}
		visiting[name] = true
		defer delete(visiting, name)

		comps, err := def.decodeComponents(factory)
		if err != nil {
			return nil, err
		}
		persisted := def.Persisted == nil || *def.Persisted

		var p *Prefab
		if def.Parent != "" {
			parent, err := build(def.Parent)
			if err != nil {
				return nil, fmt.Errorf("prefab %s: %w", name, err)
			}
			p = parent.derive(name, persisted, comps)
		} else {
			p = New(name, comps...)
			p.persisted = persisted
		}
		built[name] = p
		return p, nil
	}

	for _, def := range defs {
		if _, err := build(def.Name); err != nil {
			return err
		}
	}
	ordered := make([]*Prefab, 0, len(defs))
	for _, def := range defs {
		ordered = append(ordered, built[def.Name])
	}
	return l.registerAll(ordered)
}

func (d Definition) decodeComponents(factory ComponentFactory) ([]models.Component, error) {
	node := d.Components
	if node.Kind == 0 || isNull(&node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("prefab %s: components must be a mapping", d.Name)
	}

	out := make([]models.Component, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name, body := node.Content[i].Value, node.Content[i+1]
		c, err := factory.New(name)
		if err != nil {
			return nil, fmt.Errorf("prefab %s: %w", d.Name, err)
		}
		if !isNull(body) {
			if err = body.Decode(c); err != nil {
				return nil, fmt.Errorf("prefab %s: component %s: %w", d.Name, name, err)
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

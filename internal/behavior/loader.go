package behavior

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// nodeSpec is one node in a tree file. Exactly one field must be set.
type nodeSpec struct {
	Sequence  []nodeSpec `yaml:"sequence,omitempty"`
	Selector  []nodeSpec `yaml:"selector,omitempty"`
	Targeting bool       `yaml:"targeting,omitempty"`
	Maneuver  string     `yaml:"maneuver,omitempty"`
	Ref       string     `yaml:"ref,omitempty"`
	Status    string     `yaml:"status,omitempty"`
}

// treeFile is the layout of a tree library file:
//
//	subtrees:
//	  engage:
//	    sequence:
//	      - targeting: true
//	      - maneuver: full_throttle
//	trees:
//	  hunter:
//	    selector:
//	      - ref: engage
//	      - maneuver: idle
type treeFile struct {
	Subtrees map[string]nodeSpec `yaml:"subtrees"`
	Trees    map[string]nodeSpec `yaml:"trees"`
}

// ErrTreeCycle is returned when subtree references form a cycle.
var ErrTreeCycle = errors.New("behavior: subtree reference cycle")

// LoadLibrary reads a YAML tree file and registers its trees into lib.
func LoadLibrary(path string, lib *Library, resolve EffectResolver) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read trees: %w", err)
	}
	if err := ParseLibrary(data, lib, resolve); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ParseLibrary parses YAML tree definitions and registers them into lib.
// Subtrees referenced more than once are built once and shared. Nothing is
// registered when any tree fails to build.
func ParseLibrary(data []byte, lib *Library, resolve EffectResolver) error {
	var f treeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse trees: %w", err)
	}
	if resolve == nil {
		resolve = Builtins
	}
	b := &builder{
		specs:    f.Subtrees,
		resolve:  resolve,
		built:    make(map[string]*Node),
		visiting: make(map[string]bool),
	}

	ids := make([]string, 0, len(f.Trees))
	for id := range f.Trees {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	roots := make(map[string]*Node, len(ids))
	for _, id := range ids {
		root, err := b.node(f.Trees[id], "trees."+id)
		if err != nil {
			return err
		}
		roots[id] = root
	}
	for _, id := range ids {
		lib.Register(id, roots[id])
	}
	return nil
}

type builder struct {
	specs    map[string]nodeSpec
	resolve  EffectResolver
	built    map[string]*Node
	visiting map[string]bool
}

func (b *builder) node(s nodeSpec, path string) (*Node, error) {
	set := 0
	for _, ok := range []bool{s.Sequence != nil, s.Selector != nil, s.Targeting, s.Maneuver != "", s.Ref != "", s.Status != ""} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("%s: node must set exactly one of sequence, selector, targeting, maneuver, ref, status", path)
	}

	switch {
	case s.Sequence != nil:
		children, err := b.children(s.Sequence, path+".sequence")
		if err != nil {
			return nil, err
		}
		return Sequence(children...), nil
	case s.Selector != nil:
		children, err := b.children(s.Selector, path+".selector")
		if err != nil {
			return nil, err
		}
		return Selector(children...), nil
	case s.Targeting:
		return Targeting(), nil
	case s.Maneuver != "":
		effect, ok := b.resolve(s.Maneuver)
		if !ok {
			return nil, fmt.Errorf("%s: unknown maneuver %q", path, s.Maneuver)
		}
		return Maneuver(s.Maneuver, effect), nil
	case s.Status != "":
		switch strings.ToLower(s.Status) {
		case "success":
			return Always(Success), nil
		case "failure":
			return Always(Failure), nil
		case "running":
			return Always(Running), nil
		}
		return nil, fmt.Errorf("%s: unknown status %q", path, s.Status)
	default:
		return b.ref(s.Ref, path)
	}
}

func (b *builder) children(specs []nodeSpec, path string) ([]*Node, error) {
	out := make([]*Node, 0, len(specs))
	for i, s := range specs {
		n, err := b.node(s, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (b *builder) ref(name, path string) (*Node, error) {
	if n, ok := b.built[name]; ok {
		return n, nil
	}
	spec, ok := b.specs[name]
	if !ok {
		return nil, fmt.Errorf("%s: unknown subtree %q", path, name)
	}
	if b.visiting[name] {
		return nil, fmt.Errorf("%s: %w via %q", path, ErrTreeCycle, name)
	}
	b.visiting[name] = true
	n, err := b.node(spec, "subtrees."+name)
	delete(b.visiting, name)
	if err != nil {
		return nil, err
	}
	b.built[name] = n
	return n, nil
}

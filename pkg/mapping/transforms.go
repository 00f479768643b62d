package mapping

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"ordernorm/pkg/normalize"
	"ordernorm/pkg/sanitizer"
	"ordernorm/pkg/value"
)

// TransformFactory builds a transform from the args given in a rule file.
type TransformFactory func(args []string) (TransformFunc, error)

// Registry resolves transform names used in rule files.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]TransformFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]TransformFactory)}
}

func (r *Registry) Register(name string, f TransformFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

func (r *Registry) Build(name string, args []string) (TransformFunc, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown transform %q", name)
	}
	return f(args)
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Leaf lifts a string transform to every string inside a value.
func Leaf(fn normalize.LeafFunc) TransformFunc {
	return func(v value.Value) value.Value {
		return normalize.WalkLeaves(v, fn)
	}
}

func stringLeaf(fn sanitizer.Strategy) TransformFunc {
	return Leaf(func(s string) value.Value { return value.String(fn(s)) })
}

func noArgs(name string, fn TransformFunc) TransformFactory {
	return func(args []string) (TransformFunc, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("transform %q takes no arguments", name)
		}
		return fn, nil
	}
}

// formatEU renders numbers European style and leaves everything else.
func formatEU(v value.Value) value.Value {
	f, ok := v.AsNumber()
	if !ok {
		return v
	}
	return value.String(normalize.FormatNumberEU(f))
}

// DefaultRegistry knows every transform shipped with the normalizers.
var DefaultRegistry = func() *Registry {
	r := NewRegistry()
	r.Register("money", noArgs("money", Leaf(normalize.NormalizeMoney)))
	r.Register("euro_amount", noArgs("euro_amount", Leaf(normalize.NormalizeEuroAmount)))
	r.Register("percentage", noArgs("percentage", Leaf(normalize.NormalizePercentage)))
	r.Register("numeric", noArgs("numeric", Leaf(normalize.CoerceNumeric)))
	r.Register("clean", noArgs("clean", normalize.Clean))
	r.Register("eu_number", noArgs("eu_number", formatEU))
	r.Register("upper", noArgs("upper", stringLeaf(strings.ToUpper)))
	r.Register("lower", noArgs("lower", stringLeaf(strings.ToLower)))
	r.Register("trim", noArgs("trim", stringLeaf(sanitizer.CollapseWhitespace)))
	r.Register("title", noArgs("title", stringLeaf(sanitizer.Title)))
	r.Register("date", func(args []string) (TransformFunc, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("transform \"date\" takes input and output formats, got %d args", len(args))
		}
		if _, err := normalize.Layout(args[0], true); err != nil {
			return nil, err
		}
		if _, err := normalize.Layout(args[1], false); err != nil {
			return nil, err
		}
		return Leaf(normalize.DateReformatter(args[0], args[1])), nil
	})
	r.Register("empty_dash", func(args []string) (TransformFunc, error) {
		placeholder := normalize.DefaultPlaceholder
		switch len(args) {
		case 0:
		case 1:
			placeholder = args[0]
		default:
			return nil, fmt.Errorf("transform \"empty_dash\" takes at most one argument")
		}
		return func(v value.Value) value.Value {
			return normalize.ReplaceEmpty(v, placeholder)
		}, nil
	})
	return r
}()

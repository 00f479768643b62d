package mapping

import "ordernorm/pkg/value"

// MergeSpec names the base keys a merge drops and the keys the named
// sub-objects are stored under.
type MergeSpec struct {
	Replaced []string
	Named    []string
}

// DefaultMergeSpec is the billing document layout: the lower-case source
// sections are dropped and the prepared ones added under their own names.
var DefaultMergeSpec = MergeSpec{
	Replaced: []string{"customer", "supplier", "order_lines"},
	Named:    []string{"Customer", "Supplier", "OrderLines"},
}

// MergeObjects returns a new object with base's entries minus replaced,
// followed by every entry of named in its order. base is not modified.
func MergeObjects(base *value.Object, replaced []string, named *value.Object) *value.Object {
	drop := make(map[string]struct{}, len(replaced))
	for _, k := range replaced {
		drop[k] = struct{}{}
	}

	out := value.NewObject()
	base.Range(func(k string, v value.Value) bool {
		if _, skip := drop[k]; !skip {
			out.Set(k, v)
		}
		return true
	})
	named.Range(func(k string, v value.Value) bool {
		out.Set(k, v)
		return true
	})
	return out
}

// Merge applies spec to base with parts given in the order of spec.Named.
// Missing parts are stored as null.
func (spec MergeSpec) Merge(base *value.Object, parts ...value.Value) *value.Object {
	named := value.NewObject()
	for i, key := range spec.Named {
		v := value.Null()
		if i < len(parts) {
			v = parts[i]
		}
		named.Set(key, v)
	}
	return MergeObjects(base, spec.Replaced, named)
}

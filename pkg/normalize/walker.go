package normalize

import "ordernorm/pkg/value"

// KeyFunc rewrites an object key.
type KeyFunc func(string) string

// LeafFunc rewrites a string scalar. Returning value.String(s) leaves it as is.
type LeafFunc func(string) value.Value

// Walk returns a copy of v with key applied to every object key and leaf
// applied to every string scalar, at any depth. A nil func is the identity.
// v itself is never modified.
func Walk(v value.Value, key KeyFunc, leaf LeafFunc) value.Value {
	switch v.Kind() {
	case value.KindObject:
		obj, _ := v.Object()
		out := value.NewObject()
		obj.Range(func(k string, item value.Value) bool {
			if key != nil {
				k = key(k)
			}
			out.Set(k, Walk(item, key, leaf))
			return true
		})
		return value.FromObject(out)
	case value.KindArray:
		items := v.Items()
		for i, item := range items {
			items[i] = Walk(item, key, leaf)
		}
		return value.Array(items...)
	case value.KindString:
		if leaf == nil {
			return v
		}
		s, _ := v.AsString()
		return leaf(s)
	}
	return v
}

// WalkKeys applies key to every object key and leaves scalars alone.
func WalkKeys(v value.Value, key KeyFunc) value.Value {
	return Walk(v, key, nil)
}

// WalkLeaves applies leaf to every string scalar and leaves keys alone.
func WalkLeaves(v value.Value, leaf LeafFunc) value.Value {
	return Walk(v, nil, leaf)
}

// Chain runs leaf functions in order, feeding each string result to the
// next one. The first non-string result ends the chain.
func Chain(fns ...LeafFunc) LeafFunc {
	return func(s string) value.Value {
		out := value.String(s)
		for _, fn := range fns {
			cur, ok := out.AsString()
			if !ok {
				break
			}
			out = fn(cur)
		}
		return out
	}
}

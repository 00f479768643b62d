package normalize

import "ordernorm/pkg/value"

// DefaultPlaceholder is what billing templates expect in place of a blank.
const DefaultPlaceholder = "-"

// ReplaceEmpty substitutes placeholder for every empty string and null, at
// any depth. Empty arrays and objects are kept.
func ReplaceEmpty(v value.Value, placeholder string) value.Value {
	switch v.Kind() {
	case value.KindNull:
		return value.String(placeholder)
	case value.KindString:
		if s, _ := v.AsString(); s == "" {
			return value.String(placeholder)
		}
		return v
	case value.KindArray:
		items := v.Items()
		for i, item := range items {
			items[i] = ReplaceEmpty(item, placeholder)
		}
		return value.Array(items...)
	case value.KindObject:
		obj, _ := v.Object()
		out := value.NewObject()
		obj.Range(func(k string, item value.Value) bool {
			out.Set(k, ReplaceEmpty(item, placeholder))
			return true
		})
		return value.FromObject(out)
	}
	return v
}

package value

// Object is a string-keyed map that remembers insertion order.
type Object struct {
	keys []string
	vals map[string]Value
}

func NewObject() *Object {
	return &Object{vals: make(map[string]Value)}
}

// ObjectOf builds an object from alternating key/value pairs.
func ObjectOf(pairs ...any) *Object {
	if len(pairs)%2 != 0 {
		panic("value: ObjectOf needs key/value pairs")
	}
	o := NewObject()
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic("value: ObjectOf key must be a string")
		}
		v, err := FromAny(pairs[i+1])
		if err != nil {
			panic(err)
		}
		o.Set(key, v)
	}
	return o
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Set stores v under key. An existing key keeps its position.
func (o *Object) Set(key string, v Value) {
	if _, exists := o.vals[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	v, ok := o.vals[key]
	return v, ok
}

func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

func (o *Object) Delete(key string) {
	if _, ok := o.vals[key]; !ok {
		return
	}
	delete(o.vals, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	cp := make([]string, len(o.keys))
	copy(cp, o.keys)
	return cp
}

// Range calls fn for each entry in order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.vals[k]) {
			return
		}
	}
}

// Clone is shallow: nested containers are shared, which is safe because
// values are never mutated in place.
func (o *Object) Clone() *Object {
	cp := &Object{
		keys: make([]string, 0, o.Len()),
		vals: make(map[string]Value, o.Len()),
	}
	o.Range(func(k string, v Value) bool {
		cp.Set(k, v)
		return true
	})
	return cp
}

func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	if o.Len() == 0 {
		return true
	}
	for i, k := range o.keys {
		if other.keys[i] != k {
			return false
		}
		if !Equal(o.vals[k], other.vals[k]) {
			return false
		}
	}
	return true
}

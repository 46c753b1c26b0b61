// Package taskcfg provides the configuration context injected into contextualized
// task invocations. A Context carries arbitrary configuration keys, supports
// value-independent cloning, and merges overrides in place.
package taskcfg

// Context carries configuration values for task invocations.
type Context struct {
	values map[string]any
}

// NewContext constructs an empty configuration context.
func NewContext() *Context {
	return &Context{values: make(map[string]any)}
}

// NewContextFromValues constructs a context seeded with copies of the provided values.
func NewContextFromValues(values map[string]any) *Context {
	seeded := NewContext()
	seeded.Update(values)
	return seeded
}

// Clone returns a value-independent copy of the context. Mutations applied to
// the clone never affect the receiver.
func (configurationContext *Context) Clone() *Context {
	cloned := NewContext()
	if configurationContext == nil {
		return cloned
	}
	for key, value := range configurationContext.values {
		cloned.values[key] = cloneValue(value)
	}
	return cloned
}

// Update merges the provided mapping into the context in place, overriding
// existing keys on conflict.
func (configurationContext *Context) Update(values map[string]any) {
	if configurationContext == nil {
		return
	}
	if configurationContext.values == nil {
		configurationContext.values = make(map[string]any, len(values))
	}
	for key, value := range values {
		configurationContext.values[key] = cloneValue(value)
	}
}

// Get looks up the value stored under the provided key.
func (configurationContext *Context) Get(key string) (any, bool) {
	if configurationContext == nil {
		return nil, false
	}
	value, exists := configurationContext.values[key]
	return value, exists
}

// Len reports the number of stored configuration keys.
func (configurationContext *Context) Len() int {
	if configurationContext == nil {
		return 0
	}
	return len(configurationContext.values)
}

// Snapshot returns a copy of the stored values keyed by configuration name.
func (configurationContext *Context) Snapshot() map[string]any {
	if configurationContext == nil {
		return map[string]any{}
	}
	snapshot := make(map[string]any, len(configurationContext.values))
	for key, value := range configurationContext.values {
		snapshot[key] = cloneValue(value)
	}
	return snapshot
}

func cloneValue(value any) any {
	switch typedValue := value.(type) {
	case map[string]any:
		clonedMap := make(map[string]any, len(typedValue))
		for nestedKey, nestedValue := range typedValue {
			clonedMap[nestedKey] = cloneValue(nestedValue)
		}
		return clonedMap
	case []any:
		clonedSlice := make([]any, len(typedValue))
		for elementIndex := range typedValue {
			clonedSlice[elementIndex] = cloneValue(typedValue[elementIndex])
		}
		return clonedSlice
	default:
		return value
	}
}

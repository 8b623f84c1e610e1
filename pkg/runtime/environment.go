package runtime

// Environment provides lexical scoping for APS runtime values. Scopes created
// through Heap.NewEnvironment are owned by the collector.
type Environment struct {
	gcHeader
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a scope that is not tracked by any heap.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Define inserts or overwrites a binding in this scope only.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Lookup retrieves a binding, searching outward through the scope chain.
func (e *Environment) Lookup(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (e *Environment) trace(visit func(heapObject)) {
	if e.parent != nil {
		visit(e.parent)
	}
	for _, v := range e.values {
		if obj := asObject(v); obj != nil {
			visit(obj)
		}
	}
}

func (e *Environment) release() {
	clear(e.values)
	e.parent = nil
}

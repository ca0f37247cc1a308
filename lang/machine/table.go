package machine

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// Table is a shared, mutable string-keyed mapping plus an optional registry
// of methods callable on it via CallMethod. It is the machine's
// representation of Lucerna's single compound "named entry" type.
type Table struct {
	fields  *swiss.Map[string, Value]
	methods map[string]tableMethod
}

// NewTable returns an empty table with initial capacity for at least size
// fields.
func NewTable(size int) *Table {
	return &Table{fields: swiss.NewMap[string, Value](uint32(size))}
}

func (t *Table) String() string { return fmt.Sprintf("table(%p)", t) }
func (*Table) Type() string     { return "table" }

// Get returns the value stored under name, if any.
func (t *Table) Get(name string) (Value, bool) {
	return t.fields.Get(name)
}

// Set stores v under name, overwriting any existing entry.
func (t *Table) Set(name string, v Value) {
	t.fields.Put(name, v)
}

// tableMethod is either a builtin method implemented in Go or a user-defined
// closure installed as a method on this particular table (e.g. a "__call"
// entry). Exactly one of the two fields is set.
type tableMethod struct {
	builtin func(rt *Runtime, recv *Table, args []Value) (Value, error)
	custom  *Closure
}

// SetMethod installs a user-defined closure as a method on t, reachable
// through CallMethod under name.
func (t *Table) SetMethod(name string, fn *Closure) {
	if t.methods == nil {
		t.methods = map[string]tableMethod{}
	}
	t.methods[name] = tableMethod{custom: fn}
}

func (t *Table) lookupMethod(name string) (tableMethod, bool) {
	if t.methods != nil {
		if m, ok := t.methods[name]; ok {
			return m, true
		}
	}
	m, ok := defaultTableMethods[name]
	return m, ok
}

// defaultTableMethods backs the handful of built-in table operations every
// table supports unless a table-specific method with the same name shadows
// it. Populated in methods.go.
var defaultTableMethods = map[string]tableMethod{}

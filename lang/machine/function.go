package machine

import (
	"fmt"

	"github.com/lucernalang/lucerna/lang/compiler"
)

// closureSeq hands out increasing structural ids so two Closures can be
// compared for identity without relying on pointer equality leaking through
// String().
var closureSeq int64

// Closure is a function value: captured cells bound at creation time, the
// parameter names used for arity checking, and a self-contained slice of
// bytecode forming its body.
type Closure struct {
	id     int64
	Params []string
	Caps   []*Cell
	Body   []compiler.Code
}

// NewClosure returns a Closure capturing caps, accepting params, and running
// body when called.
func NewClosure(params []string, caps []*Cell, body []compiler.Code) *Closure {
	closureSeq++
	return &Closure{id: closureSeq, Params: params, Caps: caps, Body: body}
}

func (c *Closure) String() string { return fmt.Sprintf("function(%d)", c.id) }
func (*Closure) Type() string     { return "function" }

// Arity is the number of parameters c expects.
func (c *Closure) Arity() int { return len(c.Params) }

// NativeFunction is a function implemented in Go, reachable from Lucerna
// code as an ordinary callable value (e.g. a builtin exposed through
// LoadNativeFunction).
type NativeFunction struct {
	Name string
	Fn   func(rt *Runtime, args []Value) (Value, error)
}

func (f *NativeFunction) String() string { return fmt.Sprintf("native_function(%s)", f.Name) }
func (*NativeFunction) Type() string     { return "function" }

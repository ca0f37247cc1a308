// Package machine implements the stack-based virtual machine that executes
// compiled Lucerna bytecode (lang/compiler.Code), together with the value
// model and flat per-invocation variable table the bytecode addresses.
package machine

import (
	"fmt"
	"strconv"
)

// Value is implemented by every runtime value the machine manipulates.
type Value interface {
	String() string
	Type() string
}

// Int is a signed 64-bit integer value.
type Int int64

func (v Int) String() string { return strconv.FormatInt(int64(v), 10) }
func (Int) Type() string     { return "int" }

// Float is a double-precision floating point value.
type Float float64

func (v Float) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (Float) Type() string     { return "float" }

// Bool is a boolean value.
type Bool bool

func (v Bool) String() string { return strconv.FormatBool(bool(v)) }
func (Bool) Type() string     { return "bool" }

// String is a string value.
type String string

func (v String) String() string { return string(v) }
func (String) Type() string     { return "string" }

// Nil is the unique nil value.
type Nil struct{}

func (Nil) String() string { return "nil" }
func (Nil) Type() string   { return "nil" }

// NilValue is the singleton Nil value; every Nil comparison or load uses it
// rather than constructing fresh Nil{} values.
var NilValue = Nil{}

var (
	_ Value = Int(0)
	_ Value = Float(0)
	_ Value = Bool(false)
	_ Value = String("")
	_ Value = Nil{}
)

// Equal reports whether a and b are equal under the machine's comparison
// rules: structural equality for primitives, numeric equality across
// Int/Float, and reference identity for Array and Table.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Int:
		switch y := b.(type) {
		case Int:
			return x == y
		case Float:
			return Float(x) == y
		}
		return false
	case Float:
		switch y := b.(type) {
		case Int:
			return x == Float(y)
		case Float:
			return x == y
		}
		return false
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Nil:
		_, ok := b.(Nil)
		return ok
	case *Array:
		y, ok := b.(*Array)
		return ok && x == y
	case *Table:
		y, ok := b.(*Table)
		return ok && x == y
	case *Closure:
		y, ok := b.(*Closure)
		return ok && x == y
	case *NativeFunction:
		y, ok := b.(*NativeFunction)
		return ok && x == y
	default:
		return false
	}
}

// compareNumeric implements Less/LessEq/Greater/GreaterEq: numeric operands
// only, with Int/Float cross-comparison done in Float.
func compareNumeric(a, b Value) (int, error) {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if !aok || !bok {
		return 0, fmt.Errorf("type mismatch: cannot compare %s and %s", a.Type(), b.Type())
	}
	switch {
	case af < bf:
		return -1, nil
	case af > bf:
		return 1, nil
	default:
		return 0, nil
	}
}

func asFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case Int:
		return float64(x), true
	case Float:
		return float64(x), true
	default:
		return 0, false
	}
}

// toConcatString coerces v to its canonical textual form for Concat:
// Int/Float/String/Bool/Nil convert, anything else is a coercion failure.
func toConcatString(v Value) (string, error) {
	switch v.(type) {
	case Int, Float, String, Bool, Nil:
		return v.String(), nil
	default:
		return "", fmt.Errorf("expected string or stringable value, but got %s", v.Type())
	}
}

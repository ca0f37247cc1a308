package machine

import "fmt"

// callMethod implements CallMethod(name, argc): dispatch by the receiver's
// runtime type. spec.md treats the full standard-method tables for
// primitive types as an external collaborator's concern; the tables below
// are a small, real, working subset (enough to exercise the dispatch path
// and its tests), not an exhaustive standard library.
func callMethod(rt *Runtime, recv Value, name string, args []Value) (Value, error) {
	switch r := recv.(type) {
	case Int:
		return runIntMethod(r, name, args)
	case Float:
		return runFloatMethod(r, name, args)
	case String:
		return runStringMethod(r, name, args)
	case Bool:
		return runBoolMethod(r, name, args)
	case Nil:
		return runNilMethod(name, args)
	case *Array:
		return runArrayMethod(r, name, args)
	case *Table:
		m, ok := r.lookupMethod(name)
		if !ok {
			return nil, &NoSuchMethodError{Receiver: "table", Name: name}
		}
		return invokeTableMethod(rt, r, m, args)
	case *Closure, *NativeFunction:
		return nil, fmt.Errorf("function does not have methods")
	default:
		return nil, &NoSuchMethodError{Receiver: recv.Type(), Name: name}
	}
}

func invokeTableMethod(rt *Runtime, recv *Table, m tableMethod, args []Value) (Value, error) {
	if m.builtin != nil {
		return m.builtin(rt, recv, args)
	}
	callArgs := append([]Value{Value(recv)}, args...)
	return callClosure(rt, m.custom, callArgs)
}

func runIntMethod(recv Int, name string, args []Value) (Value, error) {
	switch name {
	case "to_string":
		return String(recv.String()), nil
	case "to_float":
		return Float(recv), nil
	case "abs":
		if recv < 0 {
			return -recv, nil
		}
		return recv, nil
	default:
		return nil, &NoSuchMethodError{Receiver: "int", Name: name}
	}
}

func runFloatMethod(recv Float, name string, args []Value) (Value, error) {
	switch name {
	case "to_string":
		return String(recv.String()), nil
	case "to_int":
		return Int(recv), nil
	default:
		return nil, &NoSuchMethodError{Receiver: "float", Name: name}
	}
}

func runBoolMethod(recv Bool, name string, args []Value) (Value, error) {
	switch name {
	case "to_string":
		return String(recv.String()), nil
	default:
		return nil, &NoSuchMethodError{Receiver: "bool", Name: name}
	}
}

func runNilMethod(name string, args []Value) (Value, error) {
	switch name {
	case "to_string":
		return String("nil"), nil
	default:
		return nil, &NoSuchMethodError{Receiver: "nil", Name: name}
	}
}

func runStringMethod(recv String, name string, args []Value) (Value, error) {
	switch name {
	case "len":
		return Int(len([]rune(string(recv)))), nil
	case "to_string":
		return recv, nil
	default:
		return nil, &NoSuchMethodError{Receiver: "string", Name: name}
	}
}

func runArrayMethod(recv *Array, name string, args []Value) (Value, error) {
	switch name {
	case "len":
		return Int(recv.Len()), nil
	case "push":
		if len(args) != 1 {
			return nil, fmt.Errorf("expected 1 argument, but got %d arguments", len(args))
		}
		recv.Push(args[0])
		return NilValue, nil
	default:
		return nil, &NoSuchMethodError{Receiver: "array", Name: name}
	}
}

// runTableDefaultMethod backs the handful of built-in operations every
// table supports unless a table-specific method with the same name shadows
// it (see Table.lookupMethod).
func runTableDefaultMethod(rt *Runtime, recv *Table, name string, args []Value) (Value, error) {
	switch name {
	case "set":
		if len(args) != 2 {
			return nil, fmt.Errorf("expected 2 arguments, but got %d arguments", len(args))
		}
		key, ok := args[0].(String)
		if !ok {
			return nil, fmt.Errorf("type mismatch: expected a string key, but got %s", args[0].Type())
		}
		recv.Set(string(key), args[1])
		return NilValue, nil
	case "get":
		if len(args) != 1 {
			return nil, fmt.Errorf("expected 1 argument, but got %d arguments", len(args))
		}
		key, ok := args[0].(String)
		if !ok {
			return nil, fmt.Errorf("type mismatch: expected a string key, but got %s", args[0].Type())
		}
		v, ok := recv.Get(string(key))
		if !ok {
			return NilValue, nil
		}
		return v, nil
	default:
		return nil, &NoSuchMethodError{Receiver: "table", Name: name}
	}
}

func init() {
	defaultTableMethods["set"] = tableMethod{builtin: func(rt *Runtime, recv *Table, args []Value) (Value, error) {
		return runTableDefaultMethod(rt, recv, "set", args)
	}}
	defaultTableMethods["get"] = tableMethod{builtin: func(rt *Runtime, recv *Table, args []Value) (Value, error) {
		return runTableDefaultMethod(rt, recv, "get", args)
	}}
}

package machine

import (
	"fmt"

	"github.com/lucernalang/lucerna/lang/compiler"
)

// stackValue is an operand stack entry. Most entries are Value; namedPair
// is a transient form produced by MakeNamed and consumed by MakeTable, never
// observable outside that pair of instructions.
type stackValue = any

type namedPair struct {
	name  string
	value Value
}

// Execute runs code against rt and returns the value the program's Return
// or Exit instruction yields. code must be the output of a single
// lang/compiler.Compile call, or a closure body sliced out of one by
// BeginFuncCreation's absorption logic.
func Execute(code []compiler.Code, rt *Runtime) (Value, error) {
	pc := 0
	for {
		if rt.MaxSteps > 0 {
			rt.steps++
			if rt.steps > rt.MaxSteps {
				return nil, fmt.Errorf("machine: exceeded max step count (%d)", rt.MaxSteps)
			}
		}

		ins := code[pc]
		switch ins.Op {
		case compiler.OpNop:
			// no-op

		case compiler.OpLoadInt:
			rt.push(Int(ins.Int))
		case compiler.OpLoadFloat:
			rt.push(Float(ins.Float))
		case compiler.OpLoadBool:
			rt.push(Bool(ins.Bool))
		case compiler.OpLoadString:
			rt.push(String(ins.Str))
		case compiler.OpLoadNil:
			rt.push(NilValue)
		case compiler.OpLoadLocal:
			rt.push(rt.vars.Get(ins.ID))
		case compiler.OpLoadNativeFunction:
			fn, ok := nativeFunctions[ins.Str]
			if !ok {
				return nil, errAssertion("no native function registered as %q", ins.Str)
			}
			rt.push(fn)
		case compiler.OpUnloadTop:
			if _, err := rt.pop(); err != nil {
				return nil, err
			}

		case compiler.OpSetLocal:
			v, err := rt.popValue()
			if err != nil {
				return nil, err
			}
			rt.vars.Edit(ins.ID, v)
		case compiler.OpMakeLocal:
			v, err := rt.popValue()
			if err != nil {
				return nil, err
			}
			rt.vars.Push(v)
		case compiler.OpDropLocal:
			rt.vars.Drop(ins.Argc)

		case compiler.OpMakeArray:
			elems := make([]Value, ins.Argc)
			for i := ins.Argc - 1; i >= 0; i-- {
				v, err := rt.popValue()
				if err != nil {
					return nil, err
				}
				elems[i] = v
			}
			rt.push(NewArray(elems))
		case compiler.OpMakeNamed:
			name, err := rt.popValue()
			if err != nil {
				return nil, err
			}
			nameStr, ok := name.(String)
			if !ok {
				return nil, fmt.Errorf("type mismatch: expected string, but got %s", name.Type())
			}
			v, err := rt.popValue()
			if err != nil {
				return nil, err
			}
			rt.push(namedPair{name: string(nameStr), value: v})
		case compiler.OpMakeTable:
			t := NewTable(ins.Argc)
			for i := 0; i < ins.Argc; i++ {
				sv, err := rt.pop()
				if err != nil {
					return nil, err
				}
				pair, ok := sv.(namedPair)
				if !ok {
					return nil, errAssertion("expected a named pair on the stack")
				}
				t.Set(pair.name, pair.value)
			}
			rt.push(t)

		case compiler.OpJump:
			pc = jumpTarget(pc, ins.Offset)
			continue
		case compiler.OpJumpIfTrue:
			b, err := popBool(rt)
			if err != nil {
				return nil, err
			}
			if bool(b) {
				pc = jumpTarget(pc, ins.Offset)
				continue
			}
		case compiler.OpJumpIfFalse:
			b, err := popBool(rt)
			if err != nil {
				return nil, err
			}
			if !bool(b) {
				pc = jumpTarget(pc, ins.Offset)
				continue
			}

		case compiler.OpCall:
			args, err := popArgs(rt, ins.Argc)
			if err != nil {
				return nil, err
			}
			callee, err := rt.popValue()
			if err != nil {
				return nil, err
			}
			ret, err := callValue(rt, callee, args)
			if err != nil {
				return nil, err
			}
			rt.push(ret)
		case compiler.OpCallMethod:
			args, err := popArgs(rt, ins.Argc)
			if err != nil {
				return nil, err
			}
			recv, err := rt.popValue()
			if err != nil {
				return nil, err
			}
			ret, err := callMethod(rt, recv, ins.Str, args)
			if err != nil {
				return nil, err
			}
			rt.push(ret)

		case compiler.OpSetItem:
			index, err := rt.popValue()
			if err != nil {
				return nil, err
			}
			target, err := rt.popValue()
			if err != nil {
				return nil, err
			}
			value, err := rt.popValue()
			if err != nil {
				return nil, err
			}
			if err := setItem(target, index, value); err != nil {
				return nil, err
			}
			rt.push(target)
		case compiler.OpGetItem:
			index, err := rt.popValue()
			if err != nil {
				return nil, err
			}
			target, err := rt.popValue()
			if err != nil {
				return nil, err
			}
			item, err := getItem(target, index)
			if err != nil {
				return nil, err
			}
			rt.push(item)

		case compiler.OpAdd, compiler.OpSub, compiler.OpMul, compiler.OpDiv, compiler.OpMod, compiler.OpPow:
			if err := execArith(rt, ins.Op); err != nil {
				return nil, err
			}
		case compiler.OpUnm:
			v, err := rt.popValue()
			if err != nil {
				return nil, err
			}
			switch x := v.(type) {
			case Int:
				rt.push(-x)
			case Float:
				rt.push(-x)
			default:
				return nil, fmt.Errorf("type mismatch: expected int or float, but got %s", v.Type())
			}
		case compiler.OpEq:
			rhs, lhs, err := popPair(rt)
			if err != nil {
				return nil, err
			}
			rt.push(Bool(Equal(lhs, rhs)))
		case compiler.OpNotEq:
			rhs, lhs, err := popPair(rt)
			if err != nil {
				return nil, err
			}
			rt.push(Bool(!Equal(lhs, rhs)))
		case compiler.OpLess, compiler.OpLessEq, compiler.OpGreater, compiler.OpGreaterEq:
			if err := execCompare(rt, ins.Op); err != nil {
				return nil, err
			}
		case compiler.OpConcat:
			rhs, lhs, err := popPair(rt)
			if err != nil {
				return nil, err
			}
			lstr, err := toConcatString(lhs)
			if err != nil {
				return nil, err
			}
			rstr, err := toConcatString(rhs)
			if err != nil {
				return nil, err
			}
			rt.push(String(lstr + rstr))

		case compiler.OpBuiltin:
			if err := execBuiltin(rt, ins.Builtin, ins.Argc); err != nil {
				return nil, err
			}

		case compiler.OpBeginFuncCreation:
			closure, newPC, err := absorbFuncCreation(code, pc, rt)
			if err != nil {
				return nil, err
			}
			rt.push(closure)
			pc = newPC + 1
			continue
		case compiler.OpAddCapture, compiler.OpAddArgument, compiler.OpEndFuncCreation:
			return nil, errAssertion("%s encountered outside a BeginFuncCreation block", ins.Op)

		case compiler.OpReturn:
			return rt.popValue()
		case compiler.OpExit:
			return NilValue, nil

		default:
			return nil, errAssertion("unhandled opcode %s", ins.Op)
		}

		pc++
	}
}

func jumpTarget(pc, offset int) int { return pc + 1 + offset }

func popBool(rt *Runtime) (Bool, error) {
	v, err := rt.popValue()
	if err != nil {
		return false, err
	}
	b, ok := v.(Bool)
	if !ok {
		return false, fmt.Errorf("type mismatch: expected bool, but got %s", v.Type())
	}
	return b, nil
}

func popPair(rt *Runtime) (rhs, lhs Value, err error) {
	rhs, err = rt.popValue()
	if err != nil {
		return nil, nil, err
	}
	lhs, err = rt.popValue()
	if err != nil {
		return nil, nil, err
	}
	return rhs, lhs, nil
}

func popArgs(rt *Runtime, argc int) ([]Value, error) {
	args := make([]Value, argc)
	for i := argc - 1; i >= 0; i-- {
		v, err := rt.popValue()
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// absorbFuncCreation implements the BeginFuncCreation/AddCapture*/
// AddArgument*/body/EndFuncCreation protocol: it reads the capture and
// argument operands immediately following pc, then scans forward counting
// nesting depth to find the matching EndFuncCreation, slicing out everything
// between as the closure's self-contained body. It returns the built
// Closure and the pc of the matching EndFuncCreation (the caller advances
// past it).
func absorbFuncCreation(code []compiler.Code, pc int, rt *Runtime) (*Closure, int, error) {
	pc++ // past BeginFuncCreation

	var caps []*Cell
	for pc < len(code) && code[pc].Op == compiler.OpAddCapture {
		caps = append(caps, rt.vars.GetRef(code[pc].ID))
		pc++
	}

	var params []string
	for pc < len(code) && code[pc].Op == compiler.OpAddArgument {
		params = append(params, code[pc].Str)
		pc++
	}

	bodyStart := pc
	depth := 0
	for {
		if pc >= len(code) {
			return nil, 0, errAssertion("unterminated function creation block")
		}
		switch code[pc].Op {
		case compiler.OpBeginFuncCreation:
			depth++
		case compiler.OpEndFuncCreation:
			depth--
		}
		if depth < 0 {
			break
		}
		pc++
	}
	body := make([]compiler.Code, pc-bodyStart)
	copy(body, code[bodyStart:pc])

	return NewClosure(params, caps, body), pc, nil
}

// callValue dispatches Call(argc): callables are Closure, NativeFunction, or
// a Table with a __call method.
func callValue(rt *Runtime, callee Value, args []Value) (Value, error) {
	switch fn := callee.(type) {
	case *Closure:
		return callClosure(rt, fn, args)
	case *NativeFunction:
		return fn.Fn(rt, args)
	case *Table:
		m, ok := fn.lookupMethod("__call")
		if !ok {
			return nil, fmt.Errorf("__call is not defined")
		}
		return invokeTableMethod(rt, fn, m, args)
	default:
		return nil, fmt.Errorf("expected a callable value, but got %s", callee.Type())
	}
}

func callClosure(rt *Runtime, fn *Closure, args []Value) (Value, error) {
	if len(args) != len(fn.Params) {
		return nil, fmt.Errorf("expected %d arguments, but got %d arguments", len(fn.Params), len(args))
	}
	if rt.MaxCallDepth > 0 && rt.depth >= rt.MaxCallDepth {
		return nil, fmt.Errorf("machine: exceeded max call depth (%d)", rt.MaxCallDepth)
	}
	rt.depth++
	defer func() { rt.depth-- }()

	rt.vars.PushScope()
	for _, c := range fn.Caps {
		rt.vars.PushRef(c)
	}
	for _, a := range args {
		rt.vars.Push(a)
	}
	ret, err := Execute(fn.Body, rt)
	rt.vars.PopScope()
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func setItem(target, index, value Value) error {
	switch t := target.(type) {
	case *Array:
		i, ok := index.(Int)
		if !ok {
			return fmt.Errorf("type mismatch: array index must be an int, got %s", index.Type())
		}
		if !t.Set(int(i), value) {
			return fmt.Errorf("array index out of range: %d", i)
		}
		return nil
	case *Table:
		key, ok := index.(String)
		if !ok {
			return fmt.Errorf("type mismatch: table key must be a string, got %s", index.Type())
		}
		t.Set(string(key), value)
		return nil
	default:
		return fmt.Errorf("type mismatch: expected array or table, but got %s", target.Type())
	}
}

func getItem(target, index Value) (Value, error) {
	switch t := target.(type) {
	case *Array:
		i, ok := index.(Int)
		if !ok {
			return nil, fmt.Errorf("type mismatch: array index must be an int, got %s", index.Type())
		}
		v, ok := t.Get(int(i))
		if !ok {
			return NilValue, nil
		}
		return v, nil
	case *Table:
		key, ok := index.(String)
		if !ok {
			return nil, fmt.Errorf("type mismatch: table key must be a string, got %s", index.Type())
		}
		v, ok := t.Get(string(key))
		if !ok {
			return NilValue, nil
		}
		return v, nil
	case String:
		i, ok := index.(Int)
		if !ok {
			return nil, fmt.Errorf("type mismatch: string index must be an int, got %s", index.Type())
		}
		return indexString(t, int64(i)), nil
	default:
		return nil, fmt.Errorf("type mismatch: expected array, table or string, but got %s", target.Type())
	}
}

// indexString reproduces the original implementation's inverted convention
// for string indexing: a non-negative index is turned into the rune
// position len+i, while a negative index is used as the rune position
// itself. This is backwards from the usual "negative indexes from the end"
// idiom; it is kept deliberately rather than corrected, matching the
// accepted quirk in the system this was ported from. Both positions are
// always out of range (len+i is never below len, and a negative position is
// never valid), so every string index yields nil.
func indexString(s String, i int64) Value {
	runes := []rune(string(s))
	idx := i
	if i >= 0 {
		idx = int64(len(runes)) + i
	}
	if idx < 0 || idx >= int64(len(runes)) {
		return NilValue
	}
	return String(runes[idx])
}

package machine

import (
	"fmt"
	"math"

	"github.com/lucernalang/lucerna/lang/compiler"
)

// execArith implements Add/Sub/Mul/Div/Mod/Pow: Int op Int stays Int except
// for Pow (always Float once either operand escapes the Int/Int case), any
// Int/Float mix promotes to Float. Pow(Int, Int) is left unimplemented,
// matching the system this machine reproduces: it is a genuine gap there,
// not a rounding shortcut, so it fails loudly here too instead of silently
// picking a convention the original never committed to.
func execArith(rt *Runtime, op compiler.Op) error {
	rhs, lhs, err := popPair(rt)
	if err != nil {
		return err
	}

	li, liok := lhs.(Int)
	ri, riok := rhs.(Int)
	if liok && riok {
		if op == compiler.OpPow {
			return errAssertion("Pow(Int, Int) is not implemented")
		}
		result, err := intArith(op, li, ri)
		if err != nil {
			return err
		}
		rt.push(result)
		return nil
	}

	lf, lok := asFloat(lhs)
	rf, rok := asFloat(rhs)
	if !lok || !rok {
		return fmt.Errorf("type mismatch: expected int or float, but got %s and %s", lhs.Type(), rhs.Type())
	}
	rt.push(Float(floatArith(op, lf, rf)))
	return nil
}

func intArith(op compiler.Op, lhs, rhs Int) (Int, error) {
	switch op {
	case compiler.OpAdd:
		return lhs + rhs, nil
	case compiler.OpSub:
		return lhs - rhs, nil
	case compiler.OpMul:
		return lhs * rhs, nil
	case compiler.OpDiv:
		if rhs == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return lhs / rhs, nil
	case compiler.OpMod:
		if rhs == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return lhs % rhs, nil
	default:
		return 0, errAssertion("intArith: unhandled op %s", op)
	}
}

func floatArith(op compiler.Op, lhs, rhs float64) float64 {
	switch op {
	case compiler.OpAdd:
		return lhs + rhs
	case compiler.OpSub:
		return lhs - rhs
	case compiler.OpMul:
		return lhs * rhs
	case compiler.OpDiv:
		return lhs / rhs
	case compiler.OpMod:
		return math.Mod(lhs, rhs)
	case compiler.OpPow:
		return math.Pow(lhs, rhs)
	default:
		panic(fmt.Sprintf("machine: floatArith: unhandled op %s", op))
	}
}

// execCompare implements Less/LessEq/Greater/GreaterEq over numeric
// operands only.
func execCompare(rt *Runtime, op compiler.Op) error {
	rhs, lhs, err := popPair(rt)
	if err != nil {
		return err
	}
	cmp, err := compareNumeric(lhs, rhs)
	if err != nil {
		return err
	}
	var result bool
	switch op {
	case compiler.OpLess:
		result = cmp < 0
	case compiler.OpLessEq:
		result = cmp <= 0
	case compiler.OpGreater:
		result = cmp > 0
	case compiler.OpGreaterEq:
		result = cmp >= 0
	default:
		return errAssertion("execCompare: unhandled op %s", op)
	}
	rt.push(Bool(result))
	return nil
}

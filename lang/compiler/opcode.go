// Package compiler lowers a resolved AST into a flat sequence of Code units
// for lang/machine to execute. The lowering is built around a fragment
// assembler (fragment.go) that accumulates forward and backward jump
// placeholders independently of absolute code offsets, so that sub-fragments
// compiled in isolation (an if-branch, a loop body, a function body) can be
// spliced together afterwards without knowing their final position ahead of
// time.
package compiler

import "fmt"

// Op identifies one Code unit's operation.
type Op int32

//nolint:revive
const (
	OpNop Op = iota
	OpLoadInt
	OpLoadFloat
	OpLoadBool
	OpLoadString
	OpLoadNil
	OpLoadLocal
	OpLoadNativeFunction
	OpUnloadTop
	OpSetLocal
	OpMakeLocal
	OpMakeArray
	OpMakeNamed
	OpMakeTable
	OpDropLocal
	OpJump
	OpJumpIfTrue
	OpJumpIfFalse
	OpCall
	OpCallMethod
	OpSetItem
	OpGetItem
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpUnm
	OpEq
	OpNotEq
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpConcat
	OpBuiltin
	OpBeginFuncCreation
	OpAddCapture
	OpAddArgument
	OpEndFuncCreation
	OpReturn
	OpExit
)

var opNames = [...]string{
	OpNop:                "Nop",
	OpLoadInt:            "LoadInt",
	OpLoadFloat:          "LoadFloat",
	OpLoadBool:           "LoadBool",
	OpLoadString:         "LoadString",
	OpLoadNil:            "LoadNil",
	OpLoadLocal:          "LoadLocal",
	OpLoadNativeFunction: "LoadNativeFunction",
	OpUnloadTop:          "UnloadTop",
	OpSetLocal:           "SetLocal",
	OpMakeLocal:          "MakeLocal",
	OpMakeArray:          "MakeArray",
	OpMakeNamed:          "MakeNamed",
	OpMakeTable:          "MakeTable",
	OpDropLocal:          "DropLocal",
	OpJump:               "Jump",
	OpJumpIfTrue:         "JumpIfTrue",
	OpJumpIfFalse:        "JumpIfFalse",
	OpCall:               "Call",
	OpCallMethod:         "CallMethod",
	OpSetItem:            "SetItem",
	OpGetItem:            "GetItem",
	OpAdd:                "Add",
	OpSub:                "Sub",
	OpMul:                "Mul",
	OpDiv:                "Div",
	OpMod:                "Mod",
	OpPow:                "Pow",
	OpUnm:                "Unm",
	OpEq:                 "Eq",
	OpNotEq:              "NotEq",
	OpLess:               "Less",
	OpLessEq:             "LessEq",
	OpGreater:            "Greater",
	OpGreaterEq:          "GreaterEq",
	OpConcat:             "Concat",
	OpBuiltin:            "Builtin",
	OpBeginFuncCreation:  "BeginFuncCreation",
	OpAddCapture:         "AddCapture",
	OpAddArgument:        "AddArgument",
	OpEndFuncCreation:    "EndFuncCreation",
	OpReturn:             "Return",
	OpExit:               "Exit",
}

func (op Op) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", op)
}

// BuiltinOp identifies one of the VM's built-in I/O operations, invoked
// through OpBuiltin.
type BuiltinOp int32

//nolint:revive
const (
	BuiltinWrite BuiltinOp = iota
	BuiltinFlush
	BuiltinWriteError
	BuiltinFlushError
	BuiltinReadLine
	BuiltinReadFile
	BuiltinWriteFile
)

var builtinNames = [...]string{
	BuiltinWrite:      "write",
	BuiltinFlush:      "flush",
	BuiltinWriteError: "write_error",
	BuiltinFlushError: "flush_error",
	BuiltinReadLine:   "read_line",
	BuiltinReadFile:   "read_file",
	BuiltinWriteFile:  "write_file",
}

func (b BuiltinOp) String() string {
	if int(b) < len(builtinNames) && builtinNames[b] != "" {
		return builtinNames[b]
	}
	return fmt.Sprintf("BuiltinOp(%d)", b)
}

// Code is a single instruction. Not every field is meaningful for every Op;
// the field comments below say which Ops read them.
type Code struct {
	Op Op

	Int     int64
	Float   float64
	Bool    bool
	Str     string
	Builtin BuiltinOp

	// Offset carries the operand for Jump/JumpIfTrue/JumpIfFalse: a signed
	// displacement, in Code units, relative to the position immediately
	// after this instruction. A value of 0 is reserved to mean "not yet
	// patched"; into_code-style finalization must never see one.
	Offset int

	// ID carries the local/capture slot operand for LoadLocal, SetLocal and
	// AddCapture. (AddArgument carries its parameter name in Str.)
	ID int

	// Argc carries the argument count operand for Call, CallMethod and
	// MakeTable/MakeArray-style constructors where the element count isn't
	// implicit in the surrounding instruction stream, and the slot count
	// for DropLocal.
	Argc int
}

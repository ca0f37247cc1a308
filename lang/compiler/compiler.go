package compiler

import (
	"fmt"

	"github.com/lucernalang/lucerna/lang/ast"
	"github.com/lucernalang/lucerna/lang/resolver"
	"github.com/lucernalang/lucerna/lang/token"
)

// debugf gates development-time diagnostic printing. Always false in
// committed code, following the teacher's const-gated debug convention.
const debugf = false

// Program is the finalized output of Compile: a flat, fully-patched
// instruction sequence ready for lang/machine to execute.
type Program struct {
	Code []Code
}

// Compile lowers chunk into a Program, using res (the scope tracker's
// output for the same chunk) to resolve local ids and closure captures.
func Compile(chunk *ast.Chunk, res *resolver.Result) (*Program, error) {
	fc := newFuncCompiler(res)
	body, err := compileScopedBlock(fc, chunk.Block)
	if err != nil {
		return nil, err
	}
	body.append(Code{Op: OpExit})
	return &Program{Code: body.intoCode()}, nil
}

// funcCompiler tracks local-slot allocation for one function body (or the
// top-level chunk, treated as a parameterless function). Runtime scoping is
// flat per invocation (lang/machine's VariableTable has no nested block
// scopes), so compile-time nesting from if/while/block bodies is modeled
// here purely as shadowing over a monotonically increasing slot counter.
type funcCompiler struct {
	res         *resolver.Result
	env         map[string]int
	counter     int
	shadowStack []shadowEntry
}

type shadowEntry struct {
	name    string
	hadPrev bool
	prevID  int
}

func newFuncCompiler(res *resolver.Result) *funcCompiler {
	return &funcCompiler{res: res, env: map[string]int{}}
}

// define binds name to a freshly allocated slot id, recording the previous
// binding (if any) so a later unwind can restore it.
func (fc *funcCompiler) define(name string) int {
	prevID, hadPrev := fc.env[name]
	fc.shadowStack = append(fc.shadowStack, shadowEntry{name: name, hadPrev: hadPrev, prevID: prevID})
	id := fc.counter
	fc.env[name] = id
	fc.counter++
	return id
}

// trueCaptures is info.Captures filtered to names not also present in
// info.Definitions. The scope tracker always records a capture for a bare
// assignment target, even when that name is defined in the same function
// (see lang/resolver's package doc); such a name is satisfied entirely by
// the function's own locals and needs no capture slot from the enclosing
// function.
func trueCaptures(info *resolver.FuncInfo) []string {
	defined := make(map[string]bool, len(info.Definitions))
	for _, d := range info.Definitions {
		defined[d] = true
	}
	var out []string
	for _, c := range info.Captures {
		if !defined[c] {
			out = append(out, c)
		}
	}
	return out
}

// compileScopedBlock compiles b as a self-contained fragment, allocating
// slots for every var/let/func-statement/param definition encountered, then
// emits a trailing DropLocal releasing exactly those slots and restores the
// compiler's name bindings to what they were before the block. It is used
// uniformly for the top-level chunk body, function bodies, if/else branch
// bodies, and while bodies.
func compileScopedBlock(fc *funcCompiler, b *ast.Block) (*fragment, error) {
	shadowBefore := len(fc.shadowStack)
	counterBefore := fc.counter

	f := newFragment()
	if b != nil {
		for _, stmt := range b.Stmts {
			stmtFrag, err := compileStmt(fc, stmt)
			if err != nil {
				return nil, err
			}
			f.appendFragment(stmtFrag)
		}
	}

	numDefined := fc.counter - counterBefore
	if numDefined > 0 {
		f.append(Code{Op: OpDropLocal, Argc: numDefined})
	}

	for i := len(fc.shadowStack) - 1; i >= shadowBefore; i-- {
		e := fc.shadowStack[i]
		if e.hadPrev {
			fc.env[e.name] = e.prevID
		} else {
			delete(fc.env, e.name)
		}
	}
	fc.shadowStack = fc.shadowStack[:shadowBefore]
	fc.counter = counterBefore

	return f, nil
}

func compileStmt(fc *funcCompiler, stmt ast.Stmt) (*fragment, error) {
	switch s := stmt.(type) {
	case *ast.VarStmt:
		return compileDefine(fc, s.Name, s.Value)
	case *ast.LetStmt:
		return compileDefine(fc, s.Name, s.Value)
	case *ast.FuncStmt:
		return compileFuncStmt(fc, s)
	case *ast.AssignStmt:
		return compileAssign(fc, s)
	case *ast.ExprStmt:
		xFrag, err := compileExpr(fc, s.X)
		if err != nil {
			return nil, err
		}
		xFrag.append(Code{Op: OpUnloadTop})
		return xFrag, nil
	case *ast.IfStmt:
		return compileIf(fc, s)
	case *ast.WhileStmt:
		return compileWhile(fc, s)
	case *ast.ReturnStmt:
		return compileReturn(fc, s)
	default:
		return nil, fmt.Errorf("compiler: unhandled statement %T", stmt)
	}
}

// compileDefine compiles `var name = value` / `let name = value`. The slot
// is allocated before the value is compiled, matching the resolver's
// definition-before-rhs-analysis ordering: a self-referential initializer
// like `var x = x + 1` resolves the inner `x` as this new local (an
// uninitialized slot, read before MakeLocal runs) rather than as a capture,
// reproducing the original analyzer's behavior exactly.
func compileDefine(fc *funcCompiler, name string, value ast.Expr) (*fragment, error) {
	fc.define(name)
	f, err := compileExpr(fc, value)
	if err != nil {
		return nil, err
	}
	f.append(Code{Op: OpMakeLocal})
	return f, nil
}

func compileAssign(fc *funcCompiler, s *ast.AssignStmt) (*fragment, error) {
	switch t := s.Target.(type) {
	case *ast.NameTarget:
		id, ok := fc.env[t.Name]
		if !ok {
			return nil, fmt.Errorf("compiler: %s: assignment to undefined name %q", posString(t.Pos()), t.Name)
		}
		f, err := compileExpr(fc, s.Value)
		if err != nil {
			return nil, err
		}
		f.append(Code{Op: OpSetLocal, ID: id})
		return f, nil
	case *ast.IndexTarget:
		// SetItem pops, in order: accesser, target, value — so the push
		// order must be value, then target object, then index.
		f, err := compileExpr(fc, s.Value)
		if err != nil {
			return nil, err
		}
		objFrag, err := compileExpr(fc, t.Object)
		if err != nil {
			return nil, err
		}
		idxFrag, err := compileExpr(fc, t.Index)
		if err != nil {
			return nil, err
		}
		f.appendFragment(objFrag)
		f.appendFragment(idxFrag)
		f.append(Code{Op: OpSetItem})
		f.append(Code{Op: OpUnloadTop})
		return f, nil
	case *ast.FieldTarget:
		f, err := compileExpr(fc, s.Value)
		if err != nil {
			return nil, err
		}
		objFrag, err := compileExpr(fc, t.Object)
		if err != nil {
			return nil, err
		}
		f.appendFragment(objFrag)
		f.append(Code{Op: OpLoadString, Str: t.Name})
		f.append(Code{Op: OpSetItem})
		f.append(Code{Op: OpUnloadTop})
		return f, nil
	default:
		return nil, fmt.Errorf("compiler: unhandled assignment target %T", s.Target)
	}
}

func compileFuncStmt(fc *funcCompiler, s *ast.FuncStmt) (*fragment, error) {
	// The function's own name is bound before its body is compiled, so a
	// recursive call inside the body resolves through the normal capture
	// path instead of failing to find itself. The slot is pushed (as nil)
	// before the closure is created so that its AddCapture has a slot to
	// promote, and the closure is then stored into it through the shared cell.
	id := fc.define(s.Name)
	closureFrag, err := compileClosure(fc, s, s.Params, s.Body)
	if err != nil {
		return nil, err
	}
	f := newFragment().append(Code{Op: OpLoadNil}).append(Code{Op: OpMakeLocal})
	f.appendFragment(closureFrag)
	f.append(Code{Op: OpSetLocal, ID: id})
	return f, nil
}

func compileFuncLit(fc *funcCompiler, e *ast.FuncLit) (*fragment, error) {
	return compileClosure(fc, e, e.Params, e.Body)
}

// compileClosure emits the BeginFuncCreation/AddCapture*/AddArgument*/body/
// EndFuncCreation sequence the VM absorbs at dispatch time to materialize a
// closure. node is the resolver.Result key for this function's FuncInfo.
func compileClosure(fc *funcCompiler, node ast.Node, params []string, body *ast.Block) (*fragment, error) {
	info, ok := fc.res.Funcs[node]
	if !ok {
		return nil, fmt.Errorf("compiler: %s: no scope-tracker info for function literal", posString(node.Pos()))
	}
	caps := trueCaptures(info)

	f := newFragment()
	f.append(Code{Op: OpBeginFuncCreation})

	for _, name := range caps {
		capID, ok := fc.env[name]
		if !ok {
			return nil, fmt.Errorf("compiler: %s: capture of undefined name %q", posString(node.Pos()), name)
		}
		f.append(Code{Op: OpAddCapture, ID: capID})
	}
	for _, name := range params {
		f.append(Code{Op: OpAddArgument, Str: name})
	}

	// The callee's scope lays out captured cells first (ids 0..len(caps)-1,
	// pushed via push_ref at call time), then arguments (ids
	// len(caps)..len(caps)+len(params)-1, pushed via push), matching
	// execute_func's push order exactly.
	inner := newFuncCompiler(fc.res)
	for _, name := range caps {
		inner.define(name)
	}
	for _, name := range params {
		inner.define(name)
	}
	bodyFrag, err := compileScopedBlock(inner, body)
	if err != nil {
		return nil, err
	}
	bodyFrag.append(Code{Op: OpReturn})

	// The body is a fully independent, self-contained code slice: every
	// internal jump is already resolved to a relative offset that remains
	// valid regardless of where this slice is later embedded. It is
	// absorbed by the VM via nesting-depth scanning, not by the fragment's
	// own jump arithmetic, so it is appended raw rather than through
	// appendFragment.
	f.appendMany(bodyFrag.intoCode()...)
	f.append(Code{Op: OpEndFuncCreation})
	return f, nil
}

func compileIf(fc *funcCompiler, s *ast.IfStmt) (*fragment, error) {
	f, err := compileExpr(fc, s.Cond)
	if err != nil {
		return nil, err
	}
	f.appendForwardJumpOp(OpJumpIfFalse)

	thenFrag, err := compileScopedBlock(fc, s.Then)
	if err != nil {
		return nil, err
	}
	f.appendFragment(thenFrag)

	if s.Else == nil {
		f.patchForwardJump(0)
		return f, nil
	}

	// Patch the conditional jump to land one instruction past the current
	// end: the unconditional skip-jump below hasn't been appended yet, so
	// its landing spot (the start of the else block) is "current end + 1".
	f.patchForwardJump(1)
	f.appendForwardJump()
	elseFrag, err := compileScopedBlock(fc, s.Else)
	if err != nil {
		return nil, err
	}
	f.appendFragment(elseFrag)
	f.patchForwardJump(0)
	return f, nil
}

func compileWhile(fc *funcCompiler, s *ast.WhileStmt) (*fragment, error) {
	f := newFragment()
	loopStart := f.len()

	condFrag, err := compileExpr(fc, s.Cond)
	if err != nil {
		return nil, err
	}
	f.appendFragment(condFrag)
	f.appendForwardJumpOp(OpJumpIfFalse)

	bodyFrag, err := compileScopedBlock(fc, s.Body)
	if err != nil {
		return nil, err
	}
	f.appendFragment(bodyFrag)

	f.appendBackwardJump()
	f.patchBackwardJump(loopStart)
	f.patchForwardJump(0)
	return f, nil
}

func compileReturn(fc *funcCompiler, s *ast.ReturnStmt) (*fragment, error) {
	var f *fragment
	if s.Value != nil {
		var err error
		f, err = compileExpr(fc, s.Value)
		if err != nil {
			return nil, err
		}
	} else {
		f = newFragment().append(Code{Op: OpLoadNil})
	}
	f.append(Code{Op: OpReturn})
	return f, nil
}

func compileExpr(fc *funcCompiler, expr ast.Expr) (*fragment, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		return newFragment().append(Code{Op: OpLoadInt, Int: e.Value}), nil
	case *ast.FloatLit:
		return newFragment().append(Code{Op: OpLoadFloat, Float: e.Value}), nil
	case *ast.StringLit:
		return newFragment().append(Code{Op: OpLoadString, Str: e.Value}), nil
	case *ast.BoolLit:
		return newFragment().append(Code{Op: OpLoadBool, Bool: e.Value}), nil
	case *ast.NilLit:
		return newFragment().append(Code{Op: OpLoadNil}), nil
	case *ast.NameExpr:
		id, ok := fc.env[e.Name]
		if !ok {
			return nil, fmt.Errorf("compiler: %s: reference to undefined name %q", posString(e.Pos()), e.Name)
		}
		return newFragment().append(Code{Op: OpLoadLocal, ID: id}), nil
	case *ast.BinaryExpr:
		return compileBinary(fc, e)
	case *ast.UnaryExpr:
		return compileUnary(fc, e)
	case *ast.CallExpr:
		return compileCall(fc, e)
	case *ast.MethodCallExpr:
		return compileMethodCall(fc, e)
	case *ast.IndexExpr:
		objFrag, err := compileExpr(fc, e.Object)
		if err != nil {
			return nil, err
		}
		idxFrag, err := compileExpr(fc, e.Index)
		if err != nil {
			return nil, err
		}
		objFrag.appendFragment(idxFrag)
		objFrag.append(Code{Op: OpGetItem})
		return objFrag, nil
	case *ast.FieldExpr:
		objFrag, err := compileExpr(fc, e.Object)
		if err != nil {
			return nil, err
		}
		objFrag.append(Code{Op: OpLoadString, Str: e.Name})
		objFrag.append(Code{Op: OpGetItem})
		return objFrag, nil
	case *ast.ArrayLit:
		f := newFragment()
		for _, el := range e.Elems {
			elFrag, err := compileExpr(fc, el)
			if err != nil {
				return nil, err
			}
			f.appendFragment(elFrag)
		}
		f.append(Code{Op: OpMakeArray, Argc: len(e.Elems)})
		return f, nil
	case *ast.TableLit:
		return compileTableLit(fc, e)
	case *ast.FuncLit:
		return compileFuncLit(fc, e)
	default:
		return nil, fmt.Errorf("compiler: unhandled expression %T", expr)
	}
}

// compileTableLit compiles entries in reverse declaration order. MakeTable
// pops named pairs LIFO and inserts each into the map, so compiling in
// forward order would let an earlier-declared entry overwrite a
// later-declared one sharing its name; compiling in reverse order makes the
// later declaration the last one inserted, matching "later keys win".
func compileTableLit(fc *funcCompiler, e *ast.TableLit) (*fragment, error) {
	f := newFragment()
	for i := len(e.Entries) - 1; i >= 0; i-- {
		entry := e.Entries[i]
		valFrag, err := compileExpr(fc, entry.Value)
		if err != nil {
			return nil, err
		}
		f.appendFragment(valFrag)
		f.append(Code{Op: OpLoadString, Str: entry.Name})
		f.append(Code{Op: OpMakeNamed})
	}
	f.append(Code{Op: OpMakeTable, Argc: len(e.Entries)})
	return f, nil
}

func compileCall(fc *funcCompiler, e *ast.CallExpr) (*fragment, error) {
	f, err := compileExpr(fc, e.Callee)
	if err != nil {
		return nil, err
	}
	for _, a := range e.Args {
		aFrag, err := compileExpr(fc, a)
		if err != nil {
			return nil, err
		}
		f.appendFragment(aFrag)
	}
	f.append(Code{Op: OpCall, Argc: len(e.Args)})
	return f, nil
}

func compileMethodCall(fc *funcCompiler, e *ast.MethodCallExpr) (*fragment, error) {
	f, err := compileExpr(fc, e.Object)
	if err != nil {
		return nil, err
	}
	for _, a := range e.Args {
		aFrag, err := compileExpr(fc, a)
		if err != nil {
			return nil, err
		}
		f.appendFragment(aFrag)
	}
	f.append(Code{Op: OpCallMethod, Str: e.Method, Argc: len(e.Args)})
	return f, nil
}

var binaryOps = map[token.Token]Op{
	token.PLUS:    OpAdd,
	token.MINUS:   OpSub,
	token.STAR:    OpMul,
	token.SLASH:   OpDiv,
	token.PERCENT: OpMod,
	token.CARET:   OpPow,
	token.EQEQ:    OpEq,
	token.NEQ:     OpNotEq,
	token.LT:      OpLess,
	token.LE:      OpLessEq,
	token.GT:      OpGreater,
	token.GE:      OpGreaterEq,
	token.DOTDOT:  OpConcat,
}

func compileBinary(fc *funcCompiler, e *ast.BinaryExpr) (*fragment, error) {
	switch e.Op {
	case token.AND:
		return compileAnd(fc, e)
	case token.OR:
		return compileOr(fc, e)
	}
	op, ok := binaryOps[e.Op]
	if !ok {
		return nil, fmt.Errorf("compiler: %s: unhandled binary operator %s", posString(e.Pos()), e.Op)
	}
	left, err := compileExpr(fc, e.Left)
	if err != nil {
		return nil, err
	}
	right, err := compileExpr(fc, e.Right)
	if err != nil {
		return nil, err
	}
	left.appendFragment(right)
	left.append(Code{Op: op})
	return left, nil
}

// compileAnd compiles short-circuit `left and right`. JumpIfFalse/JumpIfTrue
// require a strict Bool operand (see lang/machine), so there is no
// general-truthiness value to fall back on: the pattern mirrors an if/else
// with no surface syntax, landing on a Bool literal instead of an
// alternate block.
//
//	Left; JumpIfFalse -> FALSE; Right; Jump -> END; FALSE: LoadBool(false); END:
func compileAnd(fc *funcCompiler, e *ast.BinaryExpr) (*fragment, error) {
	f, err := compileExpr(fc, e.Left)
	if err != nil {
		return nil, err
	}
	right, err := compileExpr(fc, e.Right)
	if err != nil {
		return nil, err
	}
	f.appendForwardJumpOp(OpJumpIfFalse)
	f.appendFragment(right)
	f.patchForwardJump(1)
	f.appendForwardJump()
	f.append(Code{Op: OpLoadBool, Bool: false})
	f.patchForwardJump(0)
	return f, nil
}

// compileOr is compileAnd's mirror image:
//
//	Left; JumpIfTrue -> TRUE; Right; Jump -> END; TRUE: LoadBool(true); END:
func compileOr(fc *funcCompiler, e *ast.BinaryExpr) (*fragment, error) {
	f, err := compileExpr(fc, e.Left)
	if err != nil {
		return nil, err
	}
	right, err := compileExpr(fc, e.Right)
	if err != nil {
		return nil, err
	}
	f.appendForwardJumpOp(OpJumpIfTrue)
	f.appendFragment(right)
	f.patchForwardJump(1)
	f.appendForwardJump()
	f.append(Code{Op: OpLoadBool, Bool: true})
	f.patchForwardJump(0)
	return f, nil
}

// compileUnary compiles MINUS as Unm. NOT has no dedicated opcode; it
// compiles to the same Bool-literal short-circuit shape as and/or, pivoting
// on whichever Bool the operand evaluates to.
//
//	Operand; JumpIfTrue -> FALSE; LoadBool(true); Jump -> END; FALSE: LoadBool(false); END:
func compileUnary(fc *funcCompiler, e *ast.UnaryExpr) (*fragment, error) {
	switch e.Op {
	case token.MINUS:
		f, err := compileExpr(fc, e.Operand)
		if err != nil {
			return nil, err
		}
		f.append(Code{Op: OpUnm})
		return f, nil
	case token.NOT:
		f, err := compileExpr(fc, e.Operand)
		if err != nil {
			return nil, err
		}
		f.appendForwardJumpOp(OpJumpIfTrue)
		f.append(Code{Op: OpLoadBool, Bool: true})
		f.patchForwardJump(1)
		f.appendForwardJump()
		f.append(Code{Op: OpLoadBool, Bool: false})
		f.patchForwardJump(0)
		return f, nil
	default:
		return nil, fmt.Errorf("compiler: %s: unhandled unary operator %s", posString(e.Pos()), e.Op)
	}
}

func posString(pos token.Pos) string {
	l, c := pos.LineCol()
	return fmt.Sprintf("%d:%d", l, c)
}

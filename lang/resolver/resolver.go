// Package resolver implements the scope tracker: a single pass over the
// parsed AST that classifies every name reference inside a function body as
// either a definition (introduced by this function) or a capture (must be
// reached through an enclosing function's shared environment).
//
// The classification is grounded directly on the original tree-walking
// analyzer: var/let/func introduce a definition for their own name; bare
// assignment always records a capture for its target's root name, even when
// that name is also defined in the current scope. This asymmetry is
// intentional (see DESIGN.md) and must not be "fixed". The compiler drops a
// capture of a name the same function also defines when it emits that
// function's AddCapture list, so such a name stays a plain local.
package resolver

import "github.com/lucernalang/lucerna/lang/ast"

// FuncInfo is the result of analyzing one function body (or the top-level
// chunk, treated as a parameterless function).
type FuncInfo struct {
	// Definitions is the set of names introduced directly in this function,
	// in first-occurrence order. Parameters come first, in declaration
	// order, followed by var/let/func-statement names in the order they are
	// encountered while walking the body.
	Definitions []string
	// Captures is the ordered, de-duplicated set of names this function
	// captures: the free names it references that it had not yet defined at
	// that point, plus the root name of every bare assignment target, even
	// when that name is also in Definitions. The compiler emits one
	// AddCapture instruction per entry that is not also in Definitions, in
	// this order, when constructing a closure for this function.
	Captures []string
}

// Result holds the FuncInfo for every function literal/statement body in a
// program plus the top-level chunk.
type Result struct {
	Top   *FuncInfo
	Funcs map[ast.Node]*FuncInfo
}

// Analyze walks chunk and returns the scope-tracking result for it and every
// nested function.
func Analyze(chunk *ast.Chunk) *Result {
	tr := newTracker()
	tr.analyzeBlock(chunk.Block)
	top := tr.popScope(nil)
	return &Result{Top: top, Funcs: tr.results}
}

type scope struct {
	defined      map[string]bool
	definedOrder []string
	captureSet   map[string]bool
	captureOrder []string
}

func newScope() *scope {
	return &scope{defined: map[string]bool{}, captureSet: map[string]bool{}}
}

func (s *scope) addDefinition(name string) {
	if !s.defined[name] {
		s.defined[name] = true
		s.definedOrder = append(s.definedOrder, name)
	}
}

func (s *scope) addCapture(name string) {
	if !s.captureSet[name] {
		s.captureSet[name] = true
		s.captureOrder = append(s.captureOrder, name)
	}
}

type tracker struct {
	stack   []*scope
	results map[ast.Node]*FuncInfo
}

func newTracker() *tracker {
	return &tracker{stack: []*scope{newScope()}, results: map[ast.Node]*FuncInfo{}}
}

func (t *tracker) current() *scope { return t.stack[len(t.stack)-1] }

func (t *tracker) addDefinition(name string) { t.current().addDefinition(name) }

func (t *tracker) addCapture(name string) { t.current().addCapture(name) }

// addReference records a plain (non-assignment) use of name: a local
// reference if the current function already defines it, a capture
// otherwise.
func (t *tracker) addReference(name string) {
	if t.current().defined[name] {
		return
	}
	t.addCapture(name)
}

func (t *tracker) pushScope() { t.stack = append(t.stack, newScope()) }

// popScope pops the current scope, bubbling any of its unresolved captures
// up into the new current scope (unless the parent itself defines the name,
// in which case the parent's copy will be exposed to the child via
// get_ref-style promotion at runtime rather than a further capture), and
// records a FuncInfo for node if node is non-nil.
func (t *tracker) popScope(node ast.Node) *FuncInfo {
	s := t.current()
	t.stack = t.stack[:len(t.stack)-1]
	if len(t.stack) > 0 {
		parent := t.current()
		for _, name := range s.captureOrder {
			// A name the popped scope also defines itself is satisfied
			// locally (the always-capture assignment quirk applies to this
			// scope's own classification, not to scopes further out) and
			// must not be demanded from an enclosing scope that may never
			// have heard of it.
			if s.defined[name] {
				continue
			}
			if !parent.defined[name] {
				parent.addCapture(name)
			}
		}
	}
	info := &FuncInfo{Definitions: s.definedOrder, Captures: s.captureOrder}
	if node != nil {
		t.results[node] = info
	}
	return info
}

func (t *tracker) analyzeBlock(b *ast.Block) {
	if b == nil {
		return
	}
	for _, stmt := range b.Stmts {
		t.analyzeStmt(stmt)
	}
}

func (t *tracker) analyzeStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.VarStmt:
		t.addDefinition(s.Name)
		t.analyzeExpr(s.Value)
	case *ast.LetStmt:
		t.addDefinition(s.Name)
		t.analyzeExpr(s.Value)
	case *ast.FuncStmt:
		t.addDefinition(s.Name)
		t.pushScope()
		for _, p := range s.Params {
			t.addDefinition(p)
		}
		t.analyzeBlock(s.Body)
		t.popScope(s)
	case *ast.AssignStmt:
		t.analyzeTarget(s.Target)
		t.analyzeExpr(s.Value)
	case *ast.ExprStmt:
		t.analyzeExpr(s.X)
	case *ast.IfStmt:
		t.analyzeExpr(s.Cond)
		t.analyzeBlock(s.Then)
		t.analyzeBlock(s.Else)
	case *ast.WhileStmt:
		t.analyzeExpr(s.Cond)
		t.analyzeBlock(s.Body)
	case *ast.ReturnStmt:
		if s.Value != nil {
			t.analyzeExpr(s.Value)
		}
	}
}

// analyzeTarget always records a capture for the target's root name, even
// when that name is already defined in the current scope. This reproduces
// the original analyzer's assignment handling verbatim (see DESIGN.md).
func (t *tracker) analyzeTarget(target ast.AssignTarget) {
	t.addCapture(target.Root())
	switch tt := target.(type) {
	case *ast.IndexTarget:
		t.analyzeExpr(tt.Object)
		t.analyzeExpr(tt.Index)
	case *ast.FieldTarget:
		t.analyzeExpr(tt.Object)
	}
}

func (t *tracker) analyzeExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case nil:
	case *ast.IntLit, *ast.FloatLit, *ast.StringLit, *ast.BoolLit, *ast.NilLit:
	case *ast.NameExpr:
		t.addReference(e.Name)
	case *ast.BinaryExpr:
		t.analyzeExpr(e.Left)
		t.analyzeExpr(e.Right)
	case *ast.UnaryExpr:
		t.analyzeExpr(e.Operand)
	case *ast.CallExpr:
		t.analyzeExpr(e.Callee)
		for _, a := range e.Args {
			t.analyzeExpr(a)
		}
	case *ast.MethodCallExpr:
		t.analyzeExpr(e.Object)
		for _, a := range e.Args {
			t.analyzeExpr(a)
		}
	case *ast.IndexExpr:
		t.analyzeExpr(e.Object)
		t.analyzeExpr(e.Index)
	case *ast.FieldExpr:
		t.analyzeExpr(e.Object)
	case *ast.ArrayLit:
		for _, el := range e.Elems {
			t.analyzeExpr(el)
		}
	case *ast.TableLit:
		for _, entry := range e.Entries {
			t.analyzeExpr(entry.Value)
		}
	case *ast.FuncLit:
		t.pushScope()
		for _, p := range e.Params {
			t.addDefinition(p)
		}
		t.analyzeBlock(e.Body)
		t.popScope(e)
	}
}

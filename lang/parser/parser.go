// Package parser implements a minimal recursive-descent parser that turns a
// token stream from lang/scanner into the lang/ast node shapes consumed by
// the scope tracker and compiler.
package parser

import (
	"fmt"

	"github.com/lucernalang/lucerna/lang/ast"
	"github.com/lucernalang/lucerna/lang/scanner"
	"github.com/lucernalang/lucerna/lang/token"
)

// Parser holds the state needed to parse one source unit.
type Parser struct {
	sc   *scanner.Scanner
	cur  scanner.Token
	peek scanner.Token
}

// Parse scans and parses src in one call, returning the resulting Chunk.
func Parse(src []byte) (*ast.Chunk, error) {
	p := &Parser{sc: scanner.New(src)}
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	block, err := p.parseBlock(token.EOF)
	if err != nil {
		return nil, err
	}
	return &ast.Chunk{Block: block}, nil
}

func (p *Parser) next() error {
	p.cur = p.peek
	tok, err := p.sc.Next()
	if err != nil {
		return err
	}
	p.peek = tok
	return nil
}

func (p *Parser) at(kinds ...token.Token) bool {
	for _, k := range kinds {
		if p.cur.Kind == k {
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind token.Token) (scanner.Token, error) {
	if p.cur.Kind != kind {
		return scanner.Token{}, fmt.Errorf("%s: expected %s, found %s", posString(p.cur.Pos), kind, p.cur.Kind)
	}
	tok := p.cur
	if err := p.next(); err != nil {
		return scanner.Token{}, err
	}
	return tok, nil
}

func posString(pos token.Pos) string {
	l, c := pos.LineCol()
	return fmt.Sprintf("%d:%d", l, c)
}

// parseBlock parses statements until it sees `end` (kind end) where end is
// one of the block-closing tokens (END or EOF).
func (p *Parser) parseBlock(closers ...token.Token) (*ast.Block, error) {
	block := &ast.Block{}
	for !p.at(closers...) && !p.at(token.EOF) {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	return block, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.cur.Kind {
	case token.VAR:
		return p.parseVarOrLet(true)
	case token.LET:
		return p.parseVarOrLet(false)
	case token.FUNC:
		return p.parseFuncStmt()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseVarOrLet(isVar bool) (ast.Stmt, error) {
	pos := p.cur.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.EQ); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if isVar {
		return &ast.VarStmt{Base: ast.Base{At: pos}, Name: name.Lit, Value: value}, nil
	}
	return &ast.LetStmt{Base: ast.Base{At: pos}, Name: name.Lit, Value: value}, nil
}

func (p *Parser) parseFuncStmt() (ast.Stmt, error) {
	pos := p.cur.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock(token.END)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.END); err != nil {
		return nil, err
	}
	return &ast.FuncStmt{Base: ast.Base{At: pos}, Name: name.Lit, Params: params, Body: body}, nil
}

func (p *Parser) parseParams() ([]string, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []string
	for p.cur.Kind != token.RPAREN {
		id, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		params = append(params, id.Lit)
		if p.cur.Kind == token.COMMA {
			if err := p.nextVoid(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) nextVoid() error { return p.next() }

func (p *Parser) parseIfStmt() (ast.Stmt, error) {
	pos := p.cur.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.THEN); err != nil {
		return nil, err
	}
	thenBlock, err := p.parseBlock(token.ELSE, token.END)
	if err != nil {
		return nil, err
	}
	var elseBlock *ast.Block
	if p.cur.Kind == token.ELSE {
		if err := p.next(); err != nil {
			return nil, err
		}
		elseBlock, err = p.parseBlock(token.END)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.END); err != nil {
		return nil, err
	}
	return &ast.IfStmt{Base: ast.Base{At: pos}, Cond: cond, Then: thenBlock, Else: elseBlock}, nil
}

func (p *Parser) parseWhileStmt() (ast.Stmt, error) {
	pos := p.cur.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DO); err != nil {
		return nil, err
	}
	body, err := p.parseBlock(token.END)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.END); err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Base: ast.Base{At: pos}, Cond: cond, Body: body}, nil
}

func (p *Parser) parseReturnStmt() (ast.Stmt, error) {
	pos := p.cur.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.at(token.END, token.ELSE, token.EOF) {
		return &ast.ReturnStmt{Base: ast.Base{At: pos}}, nil
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Base: ast.Base{At: pos}, Value: value}, nil
}

func (p *Parser) parseExprOrAssignStmt() (ast.Stmt, error) {
	pos := p.cur.Pos
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind == token.EQ {
		target, err := exprToTarget(x)
		if err != nil {
			return nil, err
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.AssignStmt{Base: ast.Base{At: pos}, Target: target, Value: value}, nil
	}
	return &ast.ExprStmt{Base: ast.Base{At: pos}, X: x}, nil
}

func exprToTarget(x ast.Expr) (ast.AssignTarget, error) {
	switch e := x.(type) {
	case *ast.NameExpr:
		return &ast.NameTarget{Base: ast.Base{At: e.Pos()}, Name: e.Name}, nil
	case *ast.IndexExpr:
		return &ast.IndexTarget{Base: ast.Base{At: e.Pos()}, Object: e.Object, Index: e.Index}, nil
	case *ast.FieldExpr:
		return &ast.FieldTarget{Base: ast.Base{At: e.Pos()}, Object: e.Object, Name: e.Name}, nil
	default:
		return nil, fmt.Errorf("invalid assignment target")
	}
}

// Expression grammar, lowest to highest precedence:
//
//	or
//	and
//	equality        == !=
//	comparison      < <= > >=
//	concat          ..
//	additive        + -
//	multiplicative  * / %
//	unary           - not
//	power           ^           (right-associative)
//	postfix         call, index, field, method-call
//	primary

func (p *Parser) parseExpr() (ast.Expr, error) { return p.parseOr() }

func (p *Parser) parseOr() (ast.Expr, error) {
	return p.parseBinaryLevel([]token.Token{token.OR}, p.parseAnd)
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	return p.parseBinaryLevel([]token.Token{token.AND}, p.parseEquality)
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	return p.parseBinaryLevel([]token.Token{token.EQEQ, token.NEQ}, p.parseComparison)
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	return p.parseBinaryLevel([]token.Token{token.LT, token.LE, token.GT, token.GE}, p.parseConcat)
}

func (p *Parser) parseConcat() (ast.Expr, error) {
	return p.parseBinaryLevel([]token.Token{token.DOTDOT}, p.parseAdditive)
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	return p.parseBinaryLevel([]token.Token{token.PLUS, token.MINUS}, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	return p.parseBinaryLevel([]token.Token{token.STAR, token.SLASH, token.PERCENT}, p.parseUnary)
}

func (p *Parser) parseBinaryLevel(ops []token.Token, next func() (ast.Expr, error)) (ast.Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.at(ops...) {
		opTok := p.cur
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: ast.Base{At: opTok.Pos}, Op: opTok.Kind, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.at(token.MINUS, token.NOT) {
		opTok := p.cur
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: ast.Base{At: opTok.Pos}, Op: opTok.Kind, Operand: operand}, nil
	}
	return p.parsePower()
}

func (p *Parser) parsePower() (ast.Expr, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind == token.CARET {
		opTok := p.cur
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary() // right-associative
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Base: ast.Base{At: opTok.Pos}, Op: opTok.Kind, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur.Kind {
		case token.LPAREN:
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			x = &ast.CallExpr{Base: ast.Base{At: x.Pos()}, Callee: x, Args: args}
		case token.LBRACK:
			pos := p.cur.Pos
			if err := p.next(); err != nil {
				return nil, err
			}
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACK); err != nil {
				return nil, err
			}
			x = &ast.IndexExpr{Base: ast.Base{At: pos}, Object: x, Index: idx}
		case token.DOT:
			pos := p.cur.Pos
			if err := p.next(); err != nil {
				return nil, err
			}
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			x = &ast.FieldExpr{Base: ast.Base{At: pos}, Object: x, Name: name.Lit}
		case token.COLON:
			pos := p.cur.Pos
			if err := p.next(); err != nil {
				return nil, err
			}
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			x = &ast.MethodCallExpr{Base: ast.Base{At: pos}, Object: x, Method: name.Lit, Args: args}
		default:
			return x, nil
		}
	}
}

func (p *Parser) parseArgs() ([]ast.Expr, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for p.cur.Kind != token.RPAREN {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur.Kind == token.COMMA {
			if err := p.next(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.INT:
		lit := p.cur.Lit
		if err := p.next(); err != nil {
			return nil, err
		}
		v, err := scanner.ParseInt(lit)
		if err != nil {
			return nil, err
		}
		return &ast.IntLit{Base: ast.Base{At: pos}, Value: v}, nil
	case token.FLOAT:
		lit := p.cur.Lit
		if err := p.next(); err != nil {
			return nil, err
		}
		v, err := scanner.ParseFloat(lit)
		if err != nil {
			return nil, err
		}
		return &ast.FloatLit{Base: ast.Base{At: pos}, Value: v}, nil
	case token.STRING:
		lit := p.cur.Lit
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.StringLit{Base: ast.Base{At: pos}, Value: lit}, nil
	case token.TRUE, token.FALSE:
		v := p.cur.Kind == token.TRUE
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.BoolLit{Base: ast.Base{At: pos}, Value: v}, nil
	case token.NIL:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.NilLit{Base: ast.Base{At: pos}}, nil
	case token.IDENT:
		name := p.cur.Lit
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.NameExpr{Base: ast.Base{At: pos}, Name: name}, nil
	case token.LPAREN:
		if err := p.next(); err != nil {
			return nil, err
		}
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return x, nil
	case token.LBRACK:
		return p.parseArrayLit(pos)
	case token.LBRACE:
		return p.parseTableLit(pos)
	case token.FUNC:
		return p.parseFuncLit(pos)
	default:
		return nil, fmt.Errorf("%s: unexpected token %s", posString(pos), p.cur.Kind)
	}
}

func (p *Parser) parseArrayLit(pos token.Pos) (ast.Expr, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	var elems []ast.Expr
	for p.cur.Kind != token.RBRACK {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.cur.Kind == token.COMMA {
			if err := p.next(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(token.RBRACK); err != nil {
		return nil, err
	}
	return &ast.ArrayLit{Base: ast.Base{At: pos}, Elems: elems}, nil
}

func (p *Parser) parseTableLit(pos token.Pos) (ast.Expr, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	var entries []ast.TableEntry
	for p.cur.Kind != token.RBRACE {
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.EQ); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.TableEntry{Name: name.Lit, Value: value})
		if p.cur.Kind == token.COMMA {
			if err := p.next(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.TableLit{Base: ast.Base{At: pos}, Entries: entries}, nil
}

func (p *Parser) parseFuncLit(pos token.Pos) (ast.Expr, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock(token.END)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.END); err != nil {
		return nil, err
	}
	return &ast.FuncLit{Base: ast.Base{At: pos}, Params: params, Body: body}, nil
}

// Package parser implements a recursive-descent parser that turns a token
// stream into the ast.Program shape described in spec.md §3.2/§4.3.
package parser

import (
	"fmt"

	"github.com/nilstack/minic/lang/ast"
	"github.com/nilstack/minic/lang/scanner"
	"github.com/nilstack/minic/lang/token"
)

// ParseFile tokenizes and parses the source file named filename with
// contents src, returning the resulting ast.Program. The error, if
// non-nil, is a scanner.ErrorList aggregating every error found (scan and
// parse errors alike).
func ParseFile(filename string, src []byte) (*ast.Program, error) {
	file, toks, scanErr := scanner.ScanAll(filename, src)

	p := &parser{file: file, toks: toks}
	prog := ast.NewProgram()

	for p.cur().Token != token.EOF {
		fn, err := p.parseFuncDecl()
		if err != nil {
			p.errs.Add(p.file.Position(p.cur().Pos), err.Error())
			p.syncToNextFunc()
			continue
		}
		if err := prog.Declare(fn); err != nil {
			p.errs.Add(p.file.Position(fn.Pos), err.Error())
		}
	}

	var errs scanner.ErrorList
	if el, ok := scanErr.(scanner.ErrorList); ok {
		errs = append(errs, el...)
	}
	errs = append(errs, p.errs...)
	return prog, errs.Err()
}

type parser struct {
	file *token.File
	toks []scanner.TokenAndValue
	pos  int
	errs scanner.ErrorList
}

func (p *parser) cur() scanner.TokenAndValue {
	if p.pos >= len(p.toks) {
		return scanner.TokenAndValue{Token: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *parser) advance() scanner.TokenAndValue {
	tv := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tv
}

func (p *parser) expect(tok token.Token) (scanner.TokenAndValue, error) {
	tv := p.cur()
	if tv.Token != tok {
		return tv, fmt.Errorf("expected %s, got %s %q", tok, tv.Token, tv.Lit)
	}
	return p.advance(), nil
}

// syncToNextFunc skips tokens until it finds a type keyword that plausibly
// starts the next function declaration, so one malformed function does not
// prevent the rest of the file from being checked.
func (p *parser) syncToNextFunc() {
	for p.cur().Token != token.EOF && !p.cur().Token.IsType() {
		p.advance()
	}
}

func (p *parser) parseType() (ast.Type, error) {
	tv := p.cur()
	typ, ok := ast.TypeFromToken(tv.Token)
	if !ok {
		return 0, fmt.Errorf("expected a type, got %s %q", tv.Token, tv.Lit)
	}
	p.advance()
	return typ, nil
}

func (p *parser) parseFuncDecl() (*ast.FunctionDefinition, error) {
	pos := p.cur().Pos
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var params []ast.Parameter
	for p.cur().Token != token.RPAREN {
		if len(params) > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
		}
		ptyp, err := p.parseType()
		if err != nil {
			return nil, err
		}
		pname, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Parameter{Name: pname.Lit, Type: ptyp})
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}

	var body []*ast.Statement
	for p.cur().Token != token.RBRACE && p.cur().Token != token.EOF {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}

	return &ast.FunctionDefinition{
		Name:             name.Lit,
		Params:           params,
		ReturnsSomething: typ != ast.VOID,
		Body:             body,
		Pos:              pos,
	}, nil
}

func (p *parser) parseStmt() (*ast.Statement, error) {
	if p.cur().Token == token.WHILE {
		return p.parseWhile()
	}
	if p.cur().Token.IsType() {
		return p.parseVarDecl()
	}
	if p.cur().Token == token.IDENT && p.cur().Lit == "return" && p.peekToken(1) != token.LPAREN {
		return p.parseReturnStmt()
	}
	return p.parseExprStmt()
}

// parseReturnStmt parses "return expr;". Unlike an ordinary call, return
// reads as a keyword directly followed by its single argument, with no
// enclosing parentheses; it still lowers to the same FUNCTION_CALL shape
// the resolver and codegen treat as the return intrinsic.
func (p *parser) parseReturnStmt() (*ast.Statement, error) {
	name, _ := p.expect(token.IDENT)
	arg, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.Statement{Kind: ast.FUNCTION_CALL, Name: name.Lit, Pos: name.Pos, Children: []*ast.Statement{arg}}, nil
}

func (p *parser) parseVarDecl() (*ast.Statement, error) {
	pos := p.cur().Pos
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	stmt := &ast.Statement{Kind: ast.VARIABLE_DECLARATION, Name: name.Lit, Type: typ, Pos: pos}
	if p.cur().Token == token.ASSIGN {
		p.advance()
		init, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Children = []*ast.Statement{init}
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) parseWhile() (*ast.Statement, error) {
	pos := p.cur().Pos
	p.advance() // 'while'
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}

	children := []*ast.Statement{cond}
	for p.cur().Token != token.RBRACE && p.cur().Token != token.EOF {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		children = append(children, stmt)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}

	return &ast.Statement{Kind: ast.WHILE_LOOP, Pos: pos, Children: children}, nil
}

// parseExprStmt parses either an assignment ("x = expr;") or a bare
// expression statement (a function call, "f(args);"), followed by ';'.
func (p *parser) parseExprStmt() (*ast.Statement, error) {
	if p.cur().Token == token.IDENT && p.peekToken(1) == token.ASSIGN {
		pos := p.cur().Pos
		name, _ := p.expect(token.IDENT)
		p.advance() // '='
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		lhs := &ast.Statement{Kind: ast.VARIABLE_NAME, Name: name.Lit, Pos: name.Pos}
		return &ast.Statement{Kind: ast.OPERATOR_CALL, Name: "=", Pos: pos, Children: []*ast.Statement{lhs, rhs}}, nil
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *parser) peekToken(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return token.EOF
	}
	return p.toks[p.pos+n].Token
}

// parseExpr parses a left-associative chain of '+'/'<' operator calls over
// operands; this is the entire expression grammar spec.md needs (§4.3).
func (p *parser) parseExpr() (*ast.Statement, error) {
	lhs, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	for p.cur().Token == token.PLUS || p.cur().Token == token.LSS {
		opTok := p.advance()
		rhs, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		op := "+"
		if opTok.Token == token.LSS {
			op = "<"
		}
		lhs = &ast.Statement{Kind: ast.OPERATOR_CALL, Name: op, Pos: opTok.Pos, Children: []*ast.Statement{lhs, rhs}}
	}
	return lhs, nil
}

func (p *parser) parseOperand() (*ast.Statement, error) {
	tv := p.cur()
	switch tv.Token {
	case token.INT:
		p.advance()
		return &ast.Statement{Kind: ast.LITERAL, Name: tv.Lit, Type: ast.INT32, Pos: tv.Pos}, nil
	case token.LPAREN:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case token.IDENT:
		if p.peekToken(1) == token.LPAREN {
			return p.parseCall()
		}
		p.advance()
		return &ast.Statement{Kind: ast.VARIABLE_NAME, Name: tv.Lit, Pos: tv.Pos}, nil
	}
	return nil, fmt.Errorf("expected an expression, got %s %q", tv.Token, tv.Lit)
}

func (p *parser) parseCall() (*ast.Statement, error) {
	name, _ := p.expect(token.IDENT)
	p.advance() // '('
	var args []*ast.Statement
	for p.cur().Token != token.RPAREN {
		if len(args) > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.Statement{Kind: ast.FUNCTION_CALL, Name: name.Lit, Pos: name.Pos, Children: args}, nil
}

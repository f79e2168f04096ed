// Package ast defines the tagged-statement abstract syntax tree produced by
// lang/parser and consumed by lang/resolver and lang/compiler.
package ast

import (
	"fmt"

	"github.com/nilstack/minic/lang/token"
)

// Kind identifies the shape of a Statement, per spec.md §3.2.
type Kind uint8

const (
	VARIABLE_DECLARATION Kind = iota
	FUNCTION_CALL
	LITERAL
	OPERATOR_CALL
	VARIABLE_NAME
	WHILE_LOOP

	kindCount
)

var kindNames = [...]string{
	VARIABLE_DECLARATION: "VARIABLE_DECLARATION",
	FUNCTION_CALL:         "FUNCTION_CALL",
	LITERAL:               "LITERAL",
	OPERATOR_CALL:         "OPERATOR_CALL",
	VARIABLE_NAME:         "VARIABLE_NAME",
	WHILE_LOOP:            "WHILE_LOOP",
}

func (k Kind) String() string {
	if int(k) >= len(kindNames) || kindNames[k] == "" {
		return fmt.Sprintf("<invalid Kind %d>", k)
	}
	return kindNames[k]
}

// Type is a declared type, per spec.md §3.1. Only INT32 carries runtime
// behavior; the rest are reserved placeholders.
type Type uint8

const (
	VOID Type = iota
	INT8
	UINT8
	INT32
	UINT32
	DOUBLE
	STRUCT
)

var typeNames = [...]string{
	VOID:   "void",
	INT8:   "int8",
	UINT8:  "uint8",
	INT32:  "int32",
	UINT32: "uint32",
	DOUBLE: "double",
	STRUCT: "struct",
}

func (t Type) String() string {
	if int(t) >= len(typeNames) {
		return fmt.Sprintf("<invalid Type %d>", t)
	}
	return typeNames[t]
}

// TypeFromToken maps a scanned type keyword to its ast.Type.
func TypeFromToken(tok token.Token) (Type, bool) {
	switch tok {
	case token.VOID:
		return VOID, true
	case token.INT8:
		return INT8, true
	case token.UINT8:
		return UINT8, true
	case token.INT32:
		return INT32, true
	case token.UINT32:
		return UINT32, true
	case token.DOUBLE:
		return DOUBLE, true
	case token.STRUCT:
		return STRUCT, true
	}
	return 0, false
}

// Statement is a single node of the AST: a tagged union over Kind, per
// spec.md §3.2/§4.3. The interpretation of Name, Type and Children depends
// on Kind:
//
//   - VARIABLE_DECLARATION: Name is the variable, Type its declared type,
//     Children is empty or holds one initializer expression.
//   - LITERAL: Name is the literal's textual form, Type its declared type.
//   - VARIABLE_NAME: Name identifies a local or parameter.
//   - OPERATOR_CALL: Name is "+", "<" or "=", Children holds exactly two
//     operands (for "=" the first must be a VARIABLE_NAME).
//   - FUNCTION_CALL: Name is the callee, Children are argument expressions.
//   - WHILE_LOOP: Children[0] is the condition, Children[1:] is the body.
type Statement struct {
	Kind     Kind
	Name     string
	Type     Type
	Children []*Statement
	Pos      token.Pos
}

// Parameter is one entry of a FunctionDefinition's parameter list.
type Parameter struct {
	Name string
	Type Type
}

// FunctionDefinition is a single function's signature and body.
type FunctionDefinition struct {
	Name             string
	Params           []Parameter
	ReturnsSomething bool
	Body             []*Statement
	Pos              token.Pos
}

// Program is a parsed source file: a set of function definitions plus the
// order they appeared in, per spec.md §3.2 ("a program is a mapping
// function-name -> FunctionDefinition").
type Program struct {
	Functions map[string]*FunctionDefinition
	Order     []string // declaration order, for deterministic dumps
}

// NewProgram returns an empty Program ready for Declare.
func NewProgram() *Program {
	return &Program{Functions: make(map[string]*FunctionDefinition)}
}

// Declare adds fn to the program. It returns an error if a function with
// the same name was already declared.
func (p *Program) Declare(fn *FunctionDefinition) error {
	if _, ok := p.Functions[fn.Name]; ok {
		return fmt.Errorf("function %q redeclared", fn.Name)
	}
	p.Functions[fn.Name] = fn
	p.Order = append(p.Order, fn.Name)
	return nil
}

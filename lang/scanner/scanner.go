// Package scanner tokenizes minic source files for lang/parser.
package scanner

import (
	"fmt"
	"strings"

	"github.com/nilstack/minic/lang/token"
)

// Error is a single scan error, tied to a source position.
type Error struct {
	Pos token.Position
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// ErrorList aggregates every Error found while scanning a file, mirroring
// how the parser and resolver also report "all errors found", not just the
// first.
type ErrorList []*Error

func (el *ErrorList) Add(pos token.Position, msg string) {
	*el = append(*el, &Error{Pos: pos, Msg: msg})
}

func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	}
	var b strings.Builder
	for i, e := range el {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

// Err returns el as an error, or nil if el is empty.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

// TokenAndValue pairs a scanned Token with its literal text and position.
type TokenAndValue struct {
	Token token.Token
	Lit   string
	Pos   token.Pos
}

// Scanner tokenizes a single source file.
type Scanner struct {
	file   *token.File
	src    []byte
	offset int
	errs   *ErrorList
}

// Init prepares s to scan src, associated with file for position reporting.
// Errors encountered while scanning are appended to errs.
func (s *Scanner) Init(file *token.File, src []byte, errs *ErrorList) {
	s.file = file
	s.src = src
	s.offset = 0
	s.errs = errs
}

func (s *Scanner) error(pos token.Pos, msg string) {
	s.errs.Add(s.file.Position(pos), msg)
}

func isSpace(b byte) bool  { return b == ' ' || b == '\t' || b == '\r' || b == '\n' }
func isDigit(b byte) bool  { return b >= '0' && b <= '9' }
func isLetter(b byte) bool { return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }

func (s *Scanner) peek() byte {
	if s.offset >= len(s.src) {
		return 0
	}
	return s.src[s.offset]
}

func (s *Scanner) peekAt(n int) byte {
	if s.offset+n >= len(s.src) {
		return 0
	}
	return s.src[s.offset+n]
}

func (s *Scanner) skipIgnored() {
	for s.offset < len(s.src) {
		b := s.src[s.offset]
		if isSpace(b) {
			s.offset++
			continue
		}
		if b == '/' && s.peekAt(1) == '/' {
			for s.offset < len(s.src) && s.src[s.offset] != '\n' {
				s.offset++
			}
			continue
		}
		break
	}
}

// Scan returns the next token, its literal text (the scanned lexeme, for
// every token except EOF) and its starting position. At end of input it returns token.EOF forever.
func (s *Scanner) Scan() TokenAndValue {
	s.skipIgnored()
	start := token.Pos(s.offset)

	if s.offset >= len(s.src) {
		return TokenAndValue{Token: token.EOF, Pos: start}
	}

	b := s.src[s.offset]
	switch {
	case isLetter(b):
		begin := s.offset
		for s.offset < len(s.src) && (isLetter(s.src[s.offset]) || isDigit(s.src[s.offset])) {
			s.offset++
		}
		lit := string(s.src[begin:s.offset])
		return TokenAndValue{Token: token.Lookup(lit), Lit: lit, Pos: start}

	case isDigit(b):
		begin := s.offset
		for s.offset < len(s.src) && isDigit(s.src[s.offset]) {
			s.offset++
		}
		lit := string(s.src[begin:s.offset])
		return TokenAndValue{Token: token.INT, Lit: lit, Pos: start}
	}

	s.offset++
	switch b {
	case '(':
		return TokenAndValue{Token: token.LPAREN, Lit: "(", Pos: start}
	case ')':
		return TokenAndValue{Token: token.RPAREN, Lit: ")", Pos: start}
	case '{':
		return TokenAndValue{Token: token.LBRACE, Lit: "{", Pos: start}
	case '}':
		return TokenAndValue{Token: token.RBRACE, Lit: "}", Pos: start}
	case ';':
		return TokenAndValue{Token: token.SEMI, Lit: ";", Pos: start}
	case ',':
		return TokenAndValue{Token: token.COMMA, Lit: ",", Pos: start}
	case '+':
		return TokenAndValue{Token: token.PLUS, Lit: "+", Pos: start}
	case '<':
		return TokenAndValue{Token: token.LSS, Lit: "<", Pos: start}
	case '=':
		return TokenAndValue{Token: token.ASSIGN, Lit: "=", Pos: start}
	}

	s.error(start, fmt.Sprintf("unexpected character %q", b))
	return TokenAndValue{Token: token.ILLEGAL, Lit: string(b), Pos: start}
}

// ScanAll tokenizes src in full and returns every token, including the
// trailing EOF, along with any scan errors.
func ScanAll(filename string, src []byte) (*token.File, []TokenAndValue, error) {
	file := token.NewFile(filename, src)
	var errs ErrorList
	var s Scanner
	s.Init(file, src, &errs)

	var toks []TokenAndValue
	for {
		tv := s.Scan()
		toks = append(toks, tv)
		if tv.Token == token.EOF {
			break
		}
	}
	return file, toks, errs.Err()
}

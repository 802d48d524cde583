// Package parser builds the LLQ tree (lists, literals, quoted names) that
// the macro expander and evaluator consume. The parser is a small
// recursive-descent walk over the lexer's token stream: brackets open
// nested lists, literals map to their data values, and identifiers become
// quoted names.
package parser

import (
	"fmt"
	"strconv"

	"github.com/cwbudde/go-lisplang/internal/lexer"
	"github.com/cwbudde/go-lisplang/internal/value"
)

// Error is a syntax error with its source position.
type Error struct {
	Message string
	Pos     lexer.Position
}

// Error implements the error interface.
func (e Error) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

// Parser parses a token stream into an LLQ value tree.
type Parser struct {
	l      *lexer.Lexer
	errors []Error
	cur    lexer.Token
}

// New creates a Parser reading from the given lexer.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	return p
}

// Errors returns the syntax errors found during parsing, including the
// lexical errors the underlying lexer reported.
func (p *Parser) Errors() []Error {
	merged := make([]Error, 0, len(p.errors)+len(p.l.Errors()))
	for _, le := range p.l.Errors() {
		merged = append(merged, Error{Message: le.Message, Pos: le.Pos})
	}
	merged = append(merged, p.errors...)
	return merged
}

func (p *Parser) next() {
	p.cur = p.l.NextToken()
}

func (p *Parser) addError(pos lexer.Position, format string, args ...any) {
	p.errors = append(p.errors, Error{Message: fmt.Sprintf(format, args...), Pos: pos})
}

// ParseProgram parses the whole input and returns it as a List of top-level
// forms. Check Errors() before using the result.
func (p *Parser) ParseProgram() value.List {
	items := p.parseSequence(lexer.EOF)
	return value.NewList(items)
}

// parseSequence parses items until the given terminator token type.
func (p *Parser) parseSequence(until lexer.TokenType) []value.Value {
	var items []value.Value
	for {
		switch p.cur.Type {
		case until:
			return items
		case lexer.EOF:
			// Only reachable when looking for RBRACKET.
			p.addError(p.cur.Pos, "unclosed list, expected %q", "]")
			return items
		default:
			if item, ok := p.parseItem(); ok {
				items = append(items, item)
			}
		}
	}
}

// parseItem parses a single atom or bracketed list. It reports false when
// the current token cannot start an item; the token is consumed either way.
func (p *Parser) parseItem() (value.Value, bool) {
	tok := p.cur
	switch tok.Type {
	case lexer.LBRACKET:
		p.next()
		items := p.parseSequence(lexer.RBRACKET)
		if p.cur.Type == lexer.RBRACKET {
			p.next()
		}
		return value.NewList(items), true

	case lexer.RBRACKET:
		p.addError(tok.Pos, "unexpected %q", "]")
		p.next()
		return nil, false

	case lexer.NUMBER:
		p.next()
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.addError(tok.Pos, "invalid number literal %q", tok.Literal)
			return nil, false
		}
		return value.NewNumber(f), true

	case lexer.STRING:
		p.next()
		// A string literal is sugar for the list-building invocation
		// [list [c… c…]], keeping string internals visible to macros.
		return value.NewList([]value.Value{
			value.NewQuotedName("list"),
			value.StringToList(tok.Literal),
		}), true

	case lexer.CHAR:
		p.next()
		runes := []rune(tok.Literal)
		return value.NewChar(runes[0]), true

	case lexer.IDENT, lexer.SYMBOL:
		p.next()
		switch tok.Literal {
		case value.TrueKeyword:
			return value.NewBoolean(true), true
		case value.FalseKeyword:
			return value.NewBoolean(false), true
		case value.UnitKeyword:
			return value.NewUnit(), true
		default:
			return value.NewQuotedName(tok.Literal), true
		}

	case lexer.ILLEGAL:
		// The lexer already recorded the underlying error.
		p.next()
		return nil, false

	default:
		p.addError(tok.Pos, "unexpected token %s", tok.Type)
		p.next()
		return nil, false
	}
}

// Parse is a convenience wrapper that lexes and parses source in one call,
// returning the program tree or the accumulated syntax errors.
func Parse(source string) (value.List, []Error) {
	p := New(lexer.New(source))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return value.List{}, errs
	}
	return program, nil
}

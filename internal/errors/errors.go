// Package errors provides error types and formatting for the lisplang
// interpreter: parse errors rendered with source context and a caret
// pointing at the offending position, and evaluation errors rendered with
// the interpreter stack trace.
package errors

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-lisplang/internal/lexer"
)

// ANSI escape sequences used for terminal output.
const (
	ansiReset   = "\033[0m"
	ansiBold    = "\033[1m"
	ansiRedBold = "\033[1;31m"
	ansiRed     = "\033[31m"
)

// ParseError represents a single parse or lex error with position and the
// source it occurred in.
type ParseError struct {
	Message string
	Source  string
	File    string
	Pos     lexer.Position
}

// NewParseError creates a new parse error.
func NewParseError(pos lexer.Position, message, source, file string) *ParseError {
	return &ParseError{
		Pos:     pos,
		Message: message,
		Source:  source,
		File:    file,
	}
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return e.Format(false)
}

// Format formats the error message with the source line and a caret
// indicator. If color is true, ANSI color codes are used.
func (e *ParseError) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "Error in %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "Error at line %d:%d\n", e.Pos.Line, e.Pos.Column)
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		lineNum := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(lineNum)
		sb.WriteString(line)
		sb.WriteString("\n")

		col := e.Pos.Column
		if col < 1 {
			col = 1
		}
		sb.WriteString(strings.Repeat(" ", len(lineNum)+col-1))
		if color {
			sb.WriteString(ansiRedBold)
		}
		sb.WriteString("^")
		if color {
			sb.WriteString(ansiReset)
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString(ansiBold)
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString(ansiReset)
	}

	return sb.String()
}

// sourceLine extracts a 1-indexed line from the source code.
func (e *ParseError) sourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatParseErrors formats multiple parse errors.
func FormatParseErrors(errs []*ParseError, color bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(color)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Parsing failed with %d error(s):\n\n", len(errs))
	for i, err := range errs {
		fmt.Fprintf(&sb, "[Error %d of %d]\n", i+1, len(errs))
		sb.WriteString(err.Format(color))
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

// EvalError is a fatal runtime evaluation error. It carries the error
// message and the frame trace rendered at the throw site, bottom-up, one
// entry per live stack frame.
type EvalError struct {
	Message string
	Trace   []string
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	return e.Message
}

// Format renders the error with its stack trace. If color is true the
// output is colored red the way the interpreter prints fatal errors.
func (e *EvalError) Format(color bool) string {
	var sb strings.Builder
	writeLine := func(s string) {
		if color {
			sb.WriteString(ansiRed)
		}
		sb.WriteString(s)
		if color {
			sb.WriteString(ansiReset)
		}
		sb.WriteString("\n")
	}
	writeLine("Error while evaluating code.")
	writeLine(e.Message)
	for _, entry := range e.Trace {
		writeLine("\tat: " + entry)
	}
	return sb.String()
}

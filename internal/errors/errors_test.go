package errors

import (
	"strings"
	"testing"

	"github.com/cwbudde/go-lisplang/internal/lexer"
)

func TestParseErrorFormat(t *testing.T) {
	source := "[let x\n  [sum 1 ?]\n]"
	err := NewParseError(lexer.Position{Line: 2, Column: 10}, "unexpected character '?'", source, "test.lisp")

	out := err.Format(false)
	if !strings.Contains(out, "Error in test.lisp:2:10") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "[sum 1 ?]") {
		t.Errorf("missing source line:\n%s", out)
	}
	caretLine := ""
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "^") {
			caretLine = line
		}
	}
	if caretLine == "" {
		t.Fatalf("no caret line in:\n%s", out)
	}
	// "   2 | " is 7 runes wide, the caret sits at column 10 of the line.
	if got := strings.Index(caretLine, "^"); got != 7+10-1 {
		t.Errorf("caret at offset %d, want %d:\n%s", got, 7+10-1, out)
	}
}

func TestParseErrorWithoutFile(t *testing.T) {
	err := NewParseError(lexer.Position{Line: 1, Column: 1}, "boom", "x", "")
	out := err.Format(false)
	if !strings.Contains(out, "Error at line 1:1") {
		t.Errorf("unexpected header:\n%s", out)
	}
}

func TestFormatParseErrorsPlural(t *testing.T) {
	errs := []*ParseError{
		NewParseError(lexer.Position{Line: 1, Column: 1}, "first", "a\nb", "f"),
		NewParseError(lexer.Position{Line: 2, Column: 1}, "second", "a\nb", "f"),
	}
	out := FormatParseErrors(errs, false)
	if !strings.Contains(out, "2 error(s)") {
		t.Errorf("missing error count:\n%s", out)
	}
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Errorf("missing individual errors:\n%s", out)
	}
}

func TestEvalErrorFormat(t *testing.T) {
	err := &EvalError{
		Message: "could not find reference foo",
		Trace:   []string{"( outer )", "( *foo 1.0 )"},
	}
	if err.Error() != "could not find reference foo" {
		t.Errorf("Error() = %q", err.Error())
	}

	plain := err.Format(false)
	wantLines := []string{
		"Error while evaluating code.",
		"could not find reference foo",
		"\tat: ( outer )",
		"\tat: ( *foo 1.0 )",
	}
	for _, want := range wantLines {
		if !strings.Contains(plain, want) {
			t.Errorf("formatted error missing %q:\n%s", want, plain)
		}
	}

	colored := err.Format(true)
	if !strings.Contains(colored, "\033[31m") {
		t.Errorf("colored output has no red escape:\n%q", colored)
	}
}

package interp

import (
	"bytes"
	"strings"
	"testing"

	liberrors "github.com/cwbudde/go-lisplang/internal/errors"
	"github.com/cwbudde/go-lisplang/internal/parser"
	"github.com/cwbudde/go-lisplang/internal/value"
)

// errFormat renders an evaluation error with its stack trace.
func errFormat(err error) string {
	if ee, ok := err.(*liberrors.EvalError); ok {
		return ee.Format(false)
	}
	return err.Error()
}

// parseProgram parses test source or fails the test.
func parseProgram(t *testing.T, src string) value.List {
	t.Helper()
	program, errs := parser.Parse(src)
	if len(errs) > 0 {
		t.Fatalf("parse of %q failed: %v", src, errs)
	}
	return program
}

// runProgram runs source through the full pipeline and returns the result,
// the captured print output and the interpreter.
func runProgram(t *testing.T, src string) (value.Value, string, *Interp) {
	t.Helper()
	var out bytes.Buffer
	in := New(&out)
	result, err := in.Run(parseProgram(t, src), nil)
	if err != nil {
		t.Fatalf("evaluation of %q failed: %v", src, err)
	}
	return result, out.String(), in
}

// runExpectError runs source and returns the evaluation error, failing the
// test when evaluation succeeds.
func runExpectError(t *testing.T, src string) error {
	t.Helper()
	var out bytes.Buffer
	in := New(&out)
	result, err := in.Run(parseProgram(t, src), nil)
	if err == nil {
		t.Fatalf("evaluation of %q succeeded with %s, expected an error", src, result.ErrorDump())
	}
	return err
}

func assertNumber(t *testing.T, v value.Value, want float64) {
	t.Helper()
	n, ok := v.(value.Number)
	if !ok {
		t.Fatalf("got %s, want the number %v", v.ErrorDump(), want)
	}
	if n.Val != want {
		t.Fatalf("got %v, want %v", n.Val, want)
	}
}

func assertString(t *testing.T, v value.Value, want string) {
	t.Helper()
	list, ok := v.(value.List)
	if !ok || !list.IsString() {
		t.Fatalf("got %s, want the string %q", v.ErrorDump(), want)
	}
	if list.AsString() != want {
		t.Fatalf("got %q, want %q", list.AsString(), want)
	}
}

func TestArithmetic(t *testing.T) {
	result, _, _ := runProgram(t, "[sum 1 2]")
	assertNumber(t, result, 3)
}

func TestConditional(t *testing.T) {
	result, _, _ := runProgram(t, `[cond [equals 1 1] "yes" "no"]`)
	assertString(t, result, "yes")

	result, _, _ = runProgram(t, `[cond [equals 1 2] "yes" "no"]`)
	assertString(t, result, "no")
}

func TestCondDoesNotEvaluateOtherBranch(t *testing.T) {
	result, output, _ := runProgram(t,
		`[cond [equals 1 2] [ignore [print "then"] 1] [ignore [print "else"] 2]]`)
	assertNumber(t, result, 2)
	if output != "else\n" {
		t.Errorf("output = %q, want only the else branch effect", output)
	}
}

func TestClosure(t *testing.T) {
	result, _, _ := runProgram(t, "[[lambda [x] [lambda [y] [sum x y]]] 3 4]")
	assertNumber(t, result, 7)
}

func TestClosureCapturesDefinitionScope(t *testing.T) {
	result, _, _ := runProgram(t, `
		[let a 10
		[let f [lambda [x] [sum a x]]
		[let a 99
		[f 1]]]]`)
	assertNumber(t, result, 11)
}

func TestListEvaluation(t *testing.T) {
	result, _, _ := runProgram(t, "[list [[sum 1 2] 3 4]]")
	expected := value.NewList([]value.Value{
		value.NewNumber(3), value.NewNumber(3), value.NewNumber(4),
	})
	eq, err := result.Equals(expected)
	if err != nil || !eq {
		t.Errorf("got %s, want %s", result.ErrorDump(), expected.ErrorDump())
	}
}

func TestListEvaluatesLeftToRight(t *testing.T) {
	_, output, _ := runProgram(t, `
		[list [[ignore [print "a"] 1] [ignore [print "b"] 2] [ignore [print "c"] 3]]]`)
	if output != "a\nb\nc\n" {
		t.Errorf("output = %q, want effects in list order", output)
	}
}

func TestArgumentsEvaluateLeftToRight(t *testing.T) {
	_, output, _ := runProgram(t, `
		[sum [ignore [print "first"] 1] [ignore [print "second"] 2]]`)
	if output != "first\nsecond\n" {
		t.Errorf("output = %q, want left-to-right argument effects", output)
	}
}

func TestQuote(t *testing.T) {
	result, _, _ := runProgram(t, "[quote [sum 1 2]]")
	expected := value.NewList([]value.Value{
		value.NewQuotedName("sum"), value.NewNumber(1), value.NewNumber(2),
	})
	eq, err := result.Equals(expected)
	if err != nil || !eq {
		t.Errorf("got %s, want %s", result.ErrorDump(), expected.ErrorDump())
	}
}

func TestQuoteSingleName(t *testing.T) {
	result, _, _ := runProgram(t, "[quote someName]")
	eq, err := result.Equals(value.NewQuotedName("someName"))
	if err != nil || !eq {
		t.Errorf("got %s, want someName", result.ErrorDump())
	}
}

func TestLetBindsSequentially(t *testing.T) {
	result, _, _ := runProgram(t, "[let x 1 [let y [sum x 1] [sum x y]]]")
	assertNumber(t, result, 3)
}

func TestIgnoreDiscardsResult(t *testing.T) {
	result, output, _ := runProgram(t, `[ignore [print "effect"] 42]`)
	assertNumber(t, result, 42)
	if output != "effect\n" {
		t.Errorf("output = %q", output)
	}
}

func TestUserCanShadowSpecialForm(t *testing.T) {
	// Regular bindings are resolved before special form keywords.
	result, _, _ := runProgram(t, "[let cond [lambda [x] [sum x 1]] [cond 5]]")
	assertNumber(t, result, 6)
}

func TestTailCallsRunInConstantStack(t *testing.T) {
	result, _, _ := runProgram(t, `
		[let loop
			[lambda [n] [cond [equals n 0.0] 0.0 [loop [sum n -1.0]]]]
			[loop 1000000.0]]`)
	assertNumber(t, result, 0)
}

func TestStdlibPrimitives(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{"head", `[head [quote [a b c]]]`, "a"},
		{"tail", `[tail [quote [a b c]]]`, "[ b c ]"},
		{"concat", `[concat [quote [a]] [quote [b]]]`, "[ a b ]"},
		{"equals true", `[equals [quote [1 2]] [quote [1 2]]]`, "true"},
		{"equals false", `[equals 1 2]`, "false"},
		{"isString on string", `[isString "abc"]`, "true"},
		{"isString on list", `[isString [quote [1]]]`, "false"},
		{"sum", `[sum 2.5 0.5]`, "3.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _, _ := runProgram(t, tt.src)
			got, err := result.Serialize()
			if err != nil {
				t.Fatalf("result not serializable: %v", err)
			}
			if got != tt.expected {
				t.Errorf("got %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestGensymProducesFreshNames(t *testing.T) {
	result, _, _ := runProgram(t, "[list [[gensym unit] [gensym unit]]]")
	list := result.(value.List)
	a := list.Items[0].(value.QuotedName).Name
	b := list.Items[1].(value.QuotedName).Name
	if !strings.HasPrefix(a, "generatedSymbol_") || !strings.HasPrefix(b, "generatedSymbol_") {
		t.Fatalf("unexpected gensym names %q, %q", a, b)
	}
	if a == b {
		t.Errorf("gensym returned the same name twice: %q", a)
	}
}

func TestPrintFormats(t *testing.T) {
	_, output, _ := runProgram(t, `[ignore [print 3] [ignore [print true] [print "hi"]]]`)
	if output != "3.0\ntrue\nhi\n" {
		t.Errorf("output = %q", output)
	}
}

func TestNoInterpreterValuesLeakIntoResults(t *testing.T) {
	sources := []string{
		"[sum 1 2]",
		"[list [[sum 1 2] 3 4]]",
		"[quote [a [b c]]]",
		`[cond true "a" "b"]`,
		"[[lambda [x] [list [x x]]] 1]",
	}
	for _, src := range sources {
		result, _, _ := runProgram(t, src)
		if !IsSerializable(result) {
			t.Errorf("result of %q is not a pure data value: %s", src, result.ErrorDump())
		}
	}
}

func TestEvaluationErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{"unknown reference", "[foo 1]", "could not find reference foo"},
		{"reserved keyword rebinding", "[let currentScope 5 1]", "reserved keyword"},
		{"head of empty list", "[head [quote []]]", "empty list"},
		{"sum on non-numbers", `[sum "a" 1]`, "sum can only add numbers"},
		{"cond on non-boolean", "[cond 1 2 3]", "boolean"},
		{"apply a number", "[1 2]", "cannot apply"},
		{"short special form", "[cond true 1]", "must have at least"},
		{"empty expression", "[let x 5]", "no items"},
		{"special form as bare reference", "[ignore cond 1]", "bare reference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runExpectError(t, tt.src)
			if tt.expected != "" && !strings.Contains(err.Error(), tt.expected) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.expected)
			}
		})
	}
}

func TestCurrentScopeResolves(t *testing.T) {
	result, _, _ := runProgram(t, "[ignore currentScope 5]")
	assertNumber(t, result, 5)
}

func TestErrorsCarryStackTraces(t *testing.T) {
	var out bytes.Buffer
	in := New(&out)
	_, err := in.Run(parseProgram(t, "[sum 1 [foo]]"), nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	formatted := errFormat(err)
	if !strings.Contains(formatted, "at: ") {
		t.Errorf("formatted error has no stack trace:\n%s", formatted)
	}
}

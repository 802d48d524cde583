package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-lisplang/internal/errors"
	"github.com/cwbudde/go-lisplang/internal/imports"
	"github.com/cwbudde/go-lisplang/internal/interp"
	"github.com/cwbudde/go-lisplang/internal/lexer"
	"github.com/cwbudde/go-lisplang/internal/parser"
	"github.com/cwbudde/go-lisplang/internal/value"
)

// parseSource lexes and parses source, pretty-printing any syntax errors
// to stderr with carets and color.
func parseSource(source, filename string) (value.List, error) {
	p := parser.New(lexer.New(source))
	program := p.ParseProgram()

	if errs := p.Errors(); len(errs) > 0 {
		parseErrors := make([]*errors.ParseError, len(errs))
		for i, e := range errs {
			parseErrors[i] = errors.NewParseError(e.Pos, e.Message, source, filename)
		}
		fmt.Fprint(os.Stderr, errors.FormatParseErrors(parseErrors, true))
		fmt.Fprintln(os.Stderr)
		return value.List{}, fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}
	return program, nil
}

// newCompiler wires the full pipeline as the leaf compiler of the import
// resolver: every imported file is read, parsed, macro-expanded and
// evaluated by the same interpreter instance.
func newCompiler(in *interp.Interp) imports.CompileFunc {
	return func(leaf *imports.Leaf) (value.Value, error) {
		data, err := os.ReadFile(leaf.Path())
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", leaf.Path(), err)
		}
		program, err := parseSource(string(data), leaf.Path())
		if err != nil {
			return nil, err
		}
		return in.Run(program, leaf)
	}
}

// reportResult prints an evaluation outcome: the serialized result on
// success, the colored evaluation stack trace on a runtime error.
func reportResult(result value.Value, err error) error {
	if err != nil {
		var evalErr *errors.EvalError
		if asEvalError(err, &evalErr) {
			fmt.Fprint(os.Stderr, evalErr.Format(true))
			return fmt.Errorf("execution failed")
		}
		return err
	}
	serialized, serr := result.Serialize()
	if serr != nil {
		// Interpreter-only results (a lambda, say) still get shown.
		serialized = result.ErrorDump()
	}
	fmt.Println(serialized)
	return nil
}

func asEvalError(err error, target **errors.EvalError) bool {
	ee, ok := err.(*errors.EvalError)
	if ok {
		*target = ee
	}
	return ok
}

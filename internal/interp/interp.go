// Package interp implements the lisplang evaluator: the immutable stack
// frame and scope model, the trampolined stepper, the special forms, the
// algebraic effect handler machinery and the macro expansion pre-pass.
//
// Evaluation never recurses on the host stack: the evaluator holds a single
// current frame and loops, so language-level tail calls run in constant
// space. Fatal errors unwind to the public entry points via panic and are
// returned as *errors.EvalError.
package interp

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/cwbudde/go-lisplang/internal/errors"
	"github.com/cwbudde/go-lisplang/internal/value"
)

// Interp drives evaluation and owns the handler state registry. One
// interpreter evaluates one program at a time; independent interpreters are
// fully isolated from each other.
type Interp struct {
	output   io.Writer
	traceOut io.Writer
	registry handlerStateRegistry
	rand     *rand.Rand
	gensymN  int
	steps    int
	tracing  bool
}

// Option configures an interpreter.
type Option func(*Interp)

// WithTrace enables step tracing to the given writer.
func WithTrace(out io.Writer) Option {
	return func(in *Interp) {
		in.tracing = true
		in.traceOut = out
	}
}

// New creates an interpreter whose print effect writes to output.
func New(output io.Writer, opts ...Option) *Interp {
	in := &Interp{
		output: output,
		rand:   rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// LiveHandlerStates returns the number of handler state entries currently
// registered. Zero after every completed evaluation.
func (in *Interp) LiveHandlerStates() int {
	return in.registry.size()
}

// capture converts an EvalError panic into an error return. Foreign panics
// keep propagating.
func capture(err *error) {
	if r := recover(); r != nil {
		if ee, ok := r.(*errors.EvalError); ok {
			*err = ee
			return
		}
		panic(r)
	}
}

// Eval evaluates the frame to completion and returns the root result.
func (in *Interp) Eval(frame *StackFrame) (result value.Value, err error) {
	defer capture(&err)
	return in.run(frame), nil
}

// Demacro expands all macro invocations in the LLQ tree held by the frame
// and returns the rewritten tree.
func (in *Interp) Demacro(frame *StackFrame) (result value.Value, err error) {
	defer capture(&err)
	return in.demacroTop(frame), nil
}

// Run performs the full pipeline on a parsed program: macro expansion in a
// fresh macro-phase frame, conversion to the evaluator representation, then
// evaluation in a fresh runtime frame. file may be nil when the program
// does not import anything.
func (in *Interp) Run(program value.List, file SourceFile) (result value.Value, err error) {
	defer capture(&err)

	expanded := in.demacroTop(in.NewMacroFrame(file).WithExecutionState(program))
	ast := ToAST(expanded)
	return in.run(in.NewRuntimeFrame(file).CreateChild(ast)), nil
}

// run is the trampoline: it steps the current frame until the root frame
// delivers a result. Errors leave via panic.
func (in *Interp) run(frame *StackFrame) value.Value {
	for {
		if in.tracing {
			in.steps++
			fmt.Fprintf(in.traceOut, "[%d] %s\n", in.steps, frame.ExecutionState.ErrorDump())
		}
		done, next, result := in.step(frame)
		if done {
			return result
		}
		frame = next
	}
}

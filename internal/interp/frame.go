package interp

import (
	"fmt"

	"github.com/cwbudde/go-lisplang/internal/errors"
	"github.com/cwbudde/go-lisplang/internal/value"
)

// StackFrame is one link of the interpreter's execution stack. Frames are
// immutable: every state transition copies the frame, so continuations
// captured by effect handlers stay valid however evaluation proceeds
// afterwards.
type StackFrame struct {
	// ExecutionState is the value currently being reduced in this frame.
	ExecutionState value.Value
	// Parent receives this frame's result; nil at the root.
	Parent *StackFrame
	// Scope is the lexical scope of the code in this frame.
	Scope *Scope
	// Handlers is the nearest enclosing handler chain, or nil.
	Handlers HandlerFrame
	// childReturn holds the result a completed child delivered, read when
	// a StackReturnValue placeholder is dereferenced.
	childReturn value.Value
}

// NewStackFrame creates a root frame around the given execution state with
// an empty scope owned by file (which may be nil).
func NewStackFrame(executionState value.Value, file SourceFile) *StackFrame {
	return &StackFrame{
		ExecutionState: executionState,
		Scope:          NewScope(file),
	}
}

func (f *StackFrame) shallowCopy() *StackFrame {
	c := *f
	return &c
}

// WithExecutionState returns a copy of the frame reducing the given value.
func (f *StackFrame) WithExecutionState(v value.Value) *StackFrame {
	c := f.shallowCopy()
	c.ExecutionState = v
	return c
}

// CreateChild returns a new frame evaluating the given state with this
// frame as parent. The child inherits scope and handler chain; its child
// return slot starts empty.
func (f *StackFrame) CreateChild(v value.Value) *StackFrame {
	c := f.shallowCopy()
	c.ExecutionState = v
	c.Parent = f
	c.childReturn = nil
	return c
}

// WithChildReturnValue returns a copy of the frame with the child result
// slot filled.
func (f *StackFrame) WithChildReturnValue(v value.Value) *StackFrame {
	c := f.shallowCopy()
	c.childReturn = v
	return c
}

// ChildReturnValue reads the result the completed child delivered.
func (f *StackFrame) ChildReturnValue() value.Value {
	if f.childReturn == nil {
		f.ThrowError("no child return value present (engine bug)")
	}
	return f.childReturn
}

// WithScope returns a copy of the frame using the given scope.
func (f *StackFrame) WithScope(s *Scope) *StackFrame {
	c := f.shallowCopy()
	c.Scope = s
	return c
}

// WithHandlerFrame returns a copy of the frame whose nearest handler chain
// is the given one.
func (f *StackFrame) WithHandlerFrame(h HandlerFrame) *StackFrame {
	c := f.shallowCopy()
	c.Handlers = h
	return c
}

// Scope shortcuts. Scope lookups never consult parent frames: a parent can
// be an outer scope the current code did not capture.

// HasRegular reports whether name is bound as a regular value in scope.
func (f *StackFrame) HasRegular(name string) bool {
	return f.Scope.HasRegular(name)
}

// RetrieveRegular returns the regular value bound to name.
func (f *StackFrame) RetrieveRegular(name string) value.Value {
	return f.Scope.RetrieveRegular(f, name)
}

// HasMacro reports whether name is bound as a macro in scope.
func (f *StackFrame) HasMacro(name string) bool {
	return f.Scope.HasMacro(name)
}

// RetrieveMacro returns the macro bound to name.
func (f *StackFrame) RetrieveMacro(name string) value.Value {
	return f.Scope.RetrieveMacro(f, name)
}

// AddRegular returns a copy of the frame with name bound as a regular value.
func (f *StackFrame) AddRegular(name string, v value.Value) *StackFrame {
	c := f.shallowCopy()
	c.Scope = f.Scope.AddRegular(f, name, v)
	return c
}

// AddMacro returns a copy of the frame with name bound as a macro.
func (f *StackFrame) AddMacro(name string, v value.Value) *StackFrame {
	c := f.shallowCopy()
	c.Scope = f.Scope.AddMacro(f, name, v)
	return c
}

// HasHandler reports whether the handler chain can handle the named effect.
func (f *StackFrame) HasHandler(name string) bool {
	return f.Handlers != nil && f.Handlers.HasHandler(name)
}

// IsFullyEvaluated reports whether the i-th slot of the frame's
// s-expression holds a plain value: not code and not an indirection.
func (f *StackFrame) IsFullyEvaluated(i int) bool {
	sexpr, ok := f.ExecutionState.(SExpression)
	if !ok {
		f.ThrowError("tried to inspect a subitem of a value that is not an s-expression (engine bug)")
	}
	if i >= len(sexpr.Items) {
		f.ThrowError("tried to inspect a subitem out of range (engine bug)")
	}
	item := sexpr.Items[i]
	return item.Kind() != value.KindSExpression && !item.Kind().IsIndirection()
}

// ThrowError aborts evaluation with a fatal runtime error. The error
// carries a stack trace built by walking parent links, each frame rendered
// through its execution state's error dump.
func (f *StackFrame) ThrowError(format string, args ...any) {
	trace := f.stackTrace()
	panic(&errors.EvalError{
		Message: fmt.Sprintf(format, args...),
		Trace:   trace,
	})
}

// stackTrace renders the frame chain root-first.
func (f *StackFrame) stackTrace() []string {
	var frames []*StackFrame
	for fr := f; fr != nil; fr = fr.Parent {
		frames = append(frames, fr)
	}
	trace := make([]string, 0, len(frames))
	for i := len(frames) - 1; i >= 0; i-- {
		trace = append(trace, frames[i].ExecutionState.ErrorDump())
	}
	return trace
}

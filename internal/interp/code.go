package interp

import (
	"strings"

	"github.com/cwbudde/go-lisplang/internal/value"
)

// This file defines the interpreter-level value variants: code being
// evaluated, names awaiting lookup, and the placeholder values that occupy a
// slot in a parent frame until a child frame delivers its result. None of
// these are serializable and none survive into a fully evaluated result.

// SExpression is a list of values interpreted as code to evaluate.
type SExpression struct {
	Items []value.Value
}

// NewSExpression wraps a slice of values as code. The slice is not copied.
func NewSExpression(items []value.Value) SExpression {
	return SExpression{Items: items}
}

func (SExpression) Kind() value.Kind { return value.KindSExpression }

func (s SExpression) Serialize() (string, error) {
	return "", notSerializable(s)
}

func (s SExpression) ErrorDump() string {
	parts := make([]string, len(s.Items))
	for i, item := range s.Items {
		parts[i] = item.ErrorDump()
	}
	return "( " + strings.Join(parts, " ") + " )"
}

func (s SExpression) Equals(value.Value) (bool, error) {
	return false, notComparable(s)
}

// Reference is a name awaiting lookup in the current scope.
type Reference struct {
	Name string
}

// NewReference wraps an identifier as a Reference.
func NewReference(name string) Reference { return Reference{Name: name} }

func (Reference) Kind() value.Kind { return value.KindReference }

func (r Reference) Serialize() (string, error) {
	return "", notSerializable(r)
}

func (r Reference) ErrorDump() string { return "*" + r.Name }

func (r Reference) Equals(value.Value) (bool, error) {
	return false, notComparable(r)
}

// MacroReference is a name that resolved to a macro binding. It appears when
// a Reference dereferences into the macro namespace and triggers macro
// sub-evaluation when it reaches the head of an s-expression.
type MacroReference struct {
	Name string
}

func (MacroReference) Kind() value.Kind { return value.KindMacroReference }

func (m MacroReference) Serialize() (string, error) {
	return "", notSerializable(m)
}

func (m MacroReference) ErrorDump() string { return "macro*" + m.Name }

func (m MacroReference) Equals(value.Value) (bool, error) {
	return false, notComparable(m)
}

// StackReturnValue is the placeholder occupying the slot of a parent frame's
// expression while a child frame computes the slot's value.
type StackReturnValue struct{}

func (StackReturnValue) Kind() value.Kind { return value.KindStackReturnValue }

func (s StackReturnValue) Serialize() (string, error) {
	return "", notSerializable(s)
}

func (StackReturnValue) ErrorDump() string { return "StackReturnValue" }

func (s StackReturnValue) Equals(value.Value) (bool, error) {
	return false, notComparable(s)
}

// MacroReturnValue is the placeholder left where a macro invocation was cut
// out of an expression. Dereferencing it converts the macro's returned list
// back into code and re-enters it.
type MacroReturnValue struct{}

func (MacroReturnValue) Kind() value.Kind { return value.KindMacroReturnValue }

func (m MacroReturnValue) Serialize() (string, error) {
	return "", notSerializable(m)
}

func (MacroReturnValue) ErrorDump() string { return "MacroReturnValue" }

func (m MacroReturnValue) Equals(value.Value) (bool, error) {
	return false, notComparable(m)
}

// HandleReturnValue is the placeholder a handle block leaves in its parent
// frame. Dereferencing it yields the [result finalState] pair and releases
// the block's state registry entry.
type HandleReturnValue struct {
	HandlerID int
}

func (HandleReturnValue) Kind() value.Kind { return value.KindHandleReturnValue }

func (h HandleReturnValue) Serialize() (string, error) {
	return "", notSerializable(h)
}

func (h HandleReturnValue) ErrorDump() string {
	return "HandleReturnValue<" + itoa(h.HandlerID) + ">"
}

func (h HandleReturnValue) Equals(value.Value) (bool, error) {
	return false, notComparable(h)
}

// HandleBranchPoint is the sentinel frame state interposed between a handle
// invocation and the body being evaluated. When a handler body's
// ContinueStop result arrives, the branch point either resumes the saved
// continuation or unwinds with the carried value.
type HandleBranchPoint struct {
	HandlerID int
	// ContinueBranch is the frame to resume when the handler chooses to
	// continue; nil on the pristine branch point that receives the body's
	// ordinary result.
	ContinueBranch *StackFrame
}

func (HandleBranchPoint) Kind() value.Kind { return value.KindHandleBranchPoint }

func (h HandleBranchPoint) Serialize() (string, error) {
	return "", notSerializable(h)
}

func (h HandleBranchPoint) ErrorDump() string {
	if h.ContinueBranch != nil {
		return "HandleBranchPoint with continue branch: " + h.ContinueBranch.ExecutionState.ErrorDump()
	}
	return "HandleBranchPoint without continue branch"
}

func (h HandleBranchPoint) Equals(value.Value) (bool, error) {
	return false, notComparable(h)
}

// ContinueStop is the only legal return shape of a user handler body: a
// resume-or-stop decision with the value to carry and the handler's new
// state.
type ContinueStop struct {
	IsContinue  bool
	ReturnValue value.Value
	NewState    value.Value
}

func (ContinueStop) Kind() value.Kind { return value.KindContinueStop }

func (c ContinueStop) Serialize() (string, error) {
	return "", notSerializable(c)
}

func (c ContinueStop) ErrorDump() string {
	keyword := value.StopKeyword
	if c.IsContinue {
		keyword = value.ContinueKeyword
	}
	return "( *" + keyword + " " + c.ReturnValue.ErrorDump() + " " + c.NewState.ErrorDump() + " )"
}

func (c ContinueStop) Equals(value.Value) (bool, error) {
	return false, notComparable(c)
}

func notSerializable(v value.Value) error {
	return errKind("cannot serialize a ", v.Kind())
}

func notComparable(v value.Value) error {
	return errKind("cannot compare a ", v.Kind())
}

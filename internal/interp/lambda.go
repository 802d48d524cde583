package interp

import (
	"strings"

	"github.com/cwbudde/go-lisplang/internal/value"
)

// Lambda is the capability set shared by everything that can sit at the
// head of an application: user closures, host functions and effectful
// function invocations. Application proceeds one argument at a time; Bind
// produces a new lambda, and once CanRun reports true the evaluator asks
// the lambda for the frame that computes its result.
type Lambda interface {
	value.Value
	// Bind attaches one argument, returning the partially applied lambda.
	Bind(arg value.Value, calling *StackFrame) Lambda
	// CanRun reports whether all arguments are bound.
	CanRun() bool
	// CreateEvaluationFrame returns a new frame in which the fully bound
	// lambda computes its result, parented to the calling frame.
	CreateEvaluationFrame(in *Interp, calling *StackFrame) *StackFrame
}

// UserLambda is a closure: argument names, a body expression and the scope
// captured at creation. Binding extends the captured scope; the enclosing
// handler chain is deliberately not captured, so effects raised by the body
// resolve through the caller's chain.
type UserLambda struct {
	bindings  []string
	body      value.Value
	scope     *Scope
	bindIndex int
}

// NewUserLambda creates a closure over the given argument names, body and
// captured scope.
func NewUserLambda(bindings []string, body value.Value, scope *Scope) *UserLambda {
	return &UserLambda{bindings: bindings, body: body, scope: scope}
}

func (*UserLambda) Kind() value.Kind { return value.KindLambda }

func (l *UserLambda) Serialize() (string, error) { return "", notSerializable(l) }

func (l *UserLambda) ErrorDump() string { return "UserLambda" }

func (l *UserLambda) Equals(value.Value) (bool, error) { return false, notComparable(l) }

func (l *UserLambda) bindFinished() bool {
	return l.bindIndex >= len(l.bindings)
}

// Bind binds the next argument name to the given value in the captured
// scope.
func (l *UserLambda) Bind(arg value.Value, calling *StackFrame) Lambda {
	if l.bindFinished() {
		calling.ThrowError("tried to bind an argument to a fully bound lambda (engine bug)")
	}
	bound := l.scope.AddRegular(calling, l.bindings[l.bindIndex], arg)
	return &UserLambda{
		bindings:  l.bindings,
		body:      l.body,
		scope:     bound,
		bindIndex: l.bindIndex + 1,
	}
}

func (l *UserLambda) CanRun() bool { return l.bindFinished() }

// CreateEvaluationFrame returns the frame evaluating the body in the bound
// scope. The handler chain is inherited from the calling frame.
func (l *UserLambda) CreateEvaluationFrame(_ *Interp, calling *StackFrame) *StackFrame {
	if !l.CanRun() {
		calling.ThrowError("tried to run a lambda that still needs arguments bound (engine bug)")
	}
	return calling.CreateChild(l.body).WithScope(l.scope)
}

// HostFunc is the signature of a host-implemented primitive. It receives
// the calling frame for error reporting and its fully bound arguments, and
// returns the result value directly.
type HostFunc func(calling *StackFrame, args []value.Value) value.Value

// SystemFunction is an opaque host callable with a fixed arity.
type SystemFunction struct {
	name  string
	fn    HostFunc
	arity int
	args  []value.Value
}

// NewSystemFunction wraps a host function under the given name and arity.
func NewSystemFunction(name string, arity int, fn HostFunc) *SystemFunction {
	return &SystemFunction{name: name, fn: fn, arity: arity}
}

// Name returns the primitive's name.
func (s *SystemFunction) Name() string { return s.name }

// Arity returns the number of arguments the primitive expects.
func (s *SystemFunction) Arity() int { return s.arity }

func (*SystemFunction) Kind() value.Kind { return value.KindLambda }

func (s *SystemFunction) Serialize() (string, error) { return "", notSerializable(s) }

func (s *SystemFunction) ErrorDump() string { return "SystemFunction<" + s.name + ">" }

func (s *SystemFunction) Equals(value.Value) (bool, error) { return false, notComparable(s) }

func (s *SystemFunction) Bind(arg value.Value, calling *StackFrame) Lambda {
	if len(s.args) >= s.arity {
		calling.ThrowError("tried to bind an argument to the fully bound system function %q", s.name)
	}
	args := make([]value.Value, len(s.args), len(s.args)+1)
	copy(args, s.args)
	args = append(args, arg)
	return &SystemFunction{name: s.name, fn: s.fn, arity: s.arity, args: args}
}

func (s *SystemFunction) CanRun() bool { return len(s.args) >= s.arity }

// CreateEvaluationFrame invokes the host function and wraps its result in a
// child frame of the caller.
func (s *SystemFunction) CreateEvaluationFrame(_ *Interp, calling *StackFrame) *StackFrame {
	if !s.CanRun() {
		calling.ThrowError("tried to run the system function %q with unbound arguments (engine bug)", s.name)
	}
	return calling.CreateChild(s.fn(calling, s.args))
}

// UnfinishedHandlerInvocation is an effectful function in the process of
// accumulating arguments. It acts as the type declaration of an effect:
// once fully bound, invoking it searches the dynamic handler chain for a
// handler with its name.
type UnfinishedHandlerInvocation struct {
	name  string
	arity int
	args  []value.Value
}

// NewUnfinishedHandlerInvocation declares an effectful function of the
// given name and arity.
func NewUnfinishedHandlerInvocation(name string, arity int) *UnfinishedHandlerInvocation {
	return &UnfinishedHandlerInvocation{name: name, arity: arity}
}

// EffectName returns the handler name the invocation resolves through.
func (u *UnfinishedHandlerInvocation) EffectName() string { return u.name }

func (*UnfinishedHandlerInvocation) Kind() value.Kind { return value.KindLambda }

func (u *UnfinishedHandlerInvocation) Serialize() (string, error) {
	return "", notSerializable(u)
}

func (u *UnfinishedHandlerInvocation) ErrorDump() string {
	parts := make([]string, len(u.args))
	for i, a := range u.args {
		parts[i] = a.ErrorDump()
	}
	return "UnfinishedHandlerInvocation<" + u.name + ", with: " + strings.Join(parts, ", ") + ">"
}

func (u *UnfinishedHandlerInvocation) Equals(value.Value) (bool, error) {
	return false, notComparable(u)
}

func (u *UnfinishedHandlerInvocation) Bind(arg value.Value, calling *StackFrame) Lambda {
	if u.CanRun() {
		calling.ThrowError("too many arguments added to the unfinished handler invocation %q", u.name)
	}
	args := make([]value.Value, len(u.args), len(u.args)+1)
	copy(args, u.args)
	args = append(args, arg)
	return &UnfinishedHandlerInvocation{name: u.name, arity: u.arity, args: args}
}

func (u *UnfinishedHandlerInvocation) CanRun() bool {
	return len(u.args) >= u.arity
}

// CreateEvaluationFrame resolves the effect through the caller's handler
// chain and returns the frame computing the handler's answer.
func (u *UnfinishedHandlerInvocation) CreateEvaluationFrame(in *Interp, calling *StackFrame) *StackFrame {
	if !u.CanRun() {
		calling.ThrowError("not enough arguments added for invocation of %q", u.name)
	}
	if !calling.HasHandler(u.name) {
		calling.ThrowError("tried to invoke the effectful function %q, but no handler for it was found", u.name)
	}
	return calling.Handlers.Invoke(in, calling, u.name, u.args)
}

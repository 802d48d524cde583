package interp

import (
	"sort"
	"strings"

	"github.com/cwbudde/go-lisplang/internal/value"
)

// HandlerFrame is a mapping from effect name to handler function. Handler
// frames form their own chain alongside the stack frames: a frame only
// records the nearest one, and inner user handlers delegate unknown names
// to outer ones.
type HandlerFrame interface {
	value.Value
	// HasHandler reports whether the chain can handle the named effect.
	HasHandler(name string) bool
	// Invoke resolves the named effect with the given arguments and
	// returns the frame computing the handler's answer.
	Invoke(in *Interp, calling *StackFrame, name string, args []value.Value) *StackFrame
}

// SystemHandlerFrame holds host-provided handlers. They carry no state and
// no branch point: the host callable's result continues the computation
// directly.
type SystemHandlerFrame struct {
	handlers map[string]*SystemFunction
}

// NewSystemHandlerFrame creates an empty system handler frame.
func NewSystemHandlerFrame() *SystemHandlerFrame {
	return &SystemHandlerFrame{handlers: map[string]*SystemFunction{}}
}

// AddHandler returns a new frame that also handles name with fn.
func (h *SystemHandlerFrame) AddHandler(name string, fn *SystemFunction) *SystemHandlerFrame {
	handlers := make(map[string]*SystemFunction, len(h.handlers)+1)
	for k, v := range h.handlers {
		handlers[k] = v
	}
	handlers[name] = fn
	return &SystemHandlerFrame{handlers: handlers}
}

func (h *SystemHandlerFrame) HasHandler(name string) bool {
	_, ok := h.handlers[name]
	return ok
}

func (h *SystemHandlerFrame) Invoke(in *Interp, calling *StackFrame, name string, args []value.Value) *StackFrame {
	fn, ok := h.handlers[name]
	if !ok {
		calling.ThrowError("handler for function %q not found", name)
	}
	var bound Lambda = fn
	for _, arg := range args {
		bound = bound.Bind(arg, calling)
	}
	return bound.CreateEvaluationFrame(in, calling)
}

func (*SystemHandlerFrame) Kind() value.Kind { return value.KindHandlerFrame }

func (h *SystemHandlerFrame) Serialize() (string, error) { return "", notSerializable(h) }

func (h *SystemHandlerFrame) ErrorDump() string {
	names := make([]string, 0, len(h.handlers))
	for name := range h.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return "SystemHandlerFrame<" + strings.Join(names, ", ") + ">"
}

func (h *SystemHandlerFrame) Equals(value.Value) (bool, error) {
	return false, notComparable(h)
}

// UserHandlerFrame holds the handlers a handle block installed. It carries
// the block's handler ID into the state registry and the branch point frame
// that receives handler-body results. Unknown names delegate to the parent
// chain, so inner handlers can pass effects outward.
type UserHandlerFrame struct {
	handlers    map[string]Lambda
	parent      HandlerFrame
	handlerID   int
	branchPoint *StackFrame
}

// NewUserHandlerFrame creates a handler frame for the handle block with the
// given ID and branch point, chained onto parent (which may be nil).
func NewUserHandlerFrame(handlerID int, branchPoint *StackFrame, parent HandlerFrame) *UserHandlerFrame {
	return &UserHandlerFrame{
		handlers:    map[string]Lambda{},
		parent:      parent,
		handlerID:   handlerID,
		branchPoint: branchPoint,
	}
}

// AddHandler returns a new frame that also handles name with fn. Reserved
// keywords cannot name handlers.
func (h *UserHandlerFrame) AddHandler(calling *StackFrame, name string, fn Lambda) *UserHandlerFrame {
	checkReservedKeyword(calling, name)
	handlers := make(map[string]Lambda, len(h.handlers)+1)
	for k, v := range h.handlers {
		handlers[k] = v
	}
	handlers[name] = fn
	return &UserHandlerFrame{
		handlers:    handlers,
		parent:      h.parent,
		handlerID:   h.handlerID,
		branchPoint: h.branchPoint,
	}
}

func (h *UserHandlerFrame) HasHandler(name string) bool {
	if _, ok := h.handlers[name]; ok {
		return true
	}
	return h.parent != nil && h.parent.HasHandler(name)
}

// Invoke binds the block's current state and the invocation arguments to
// the handler body and parents its evaluation frame to a clone of the
// branch point carrying the calling frame as the continue branch. The
// body's ContinueStop result then flows into the branch point, which
// decides between resuming the continuation and unwinding.
func (h *UserHandlerFrame) Invoke(in *Interp, calling *StackFrame, name string, args []value.Value) *StackFrame {
	fn, ok := h.handlers[name]
	if !ok {
		if h.parent == nil {
			calling.ThrowError("handler for %q does not exist", name)
		}
		return h.parent.Invoke(in, calling, name, args)
	}

	bound := fn.Bind(in.registry.state(calling, h.handlerID), calling)
	for _, arg := range args {
		if bound.CanRun() {
			calling.ThrowError("too many arguments in the handler %q invocation", name)
		}
		bound = bound.Bind(arg, calling)
	}
	if !bound.CanRun() {
		calling.ThrowError("too few arguments for handler %q invocation", name)
	}

	branchPoint := h.branchPoint.WithExecutionState(HandleBranchPoint{
		HandlerID:      h.handlerID,
		ContinueBranch: calling,
	})
	return bound.CreateEvaluationFrame(in, branchPoint)
}

func (*UserHandlerFrame) Kind() value.Kind { return value.KindHandlerFrame }

func (h *UserHandlerFrame) Serialize() (string, error) { return "", notSerializable(h) }

func (h *UserHandlerFrame) ErrorDump() string { return "<captured handler frame>" }

func (h *UserHandlerFrame) Equals(value.Value) (bool, error) {
	return false, notComparable(h)
}

package interp

import "github.com/cwbudde/go-lisplang/internal/value"

// step advances evaluation by one transition. It returns either done=true
// with the program's result, or the next frame to step. Only operates on
// demacroed code; the macro expansion pre-pass has its own driver in
// macro.go and reuses this stepper for macro bodies.
func (in *Interp) step(fr *StackFrame) (done bool, next *StackFrame, result value.Value) {
	state := fr.ExecutionState

	sexpr, ok := state.(SExpression)
	if !ok {
		return in.evalTopLevelValue(fr)
	}

	switch len(sexpr.Items) {
	case 0:
		fr.ThrowError("cannot evaluate an s-expression with no items in it")
	case 1:
		// Nested single item: unwrap and continue.
		return false, fr.WithExecutionState(sexpr.Items[0]), nil
	}

	head := sexpr.Items[0]
	tail := sexpr.Items[1:]

	switch head.Kind() {
	case value.KindReference:
		return false, in.evalReferenceAtHead(fr), nil

	case value.KindMacroReference:
		return false, in.subEvaluateMacro(fr), nil

	case value.KindSExpression:
		// Evaluate the head in a child frame; its result lands in the
		// placeholder and is dereferenced on resumption.
		old := fr.WithExecutionState(prepend(StackReturnValue{}, tail))
		return false, old.CreateChild(head), nil

	case value.KindLambda:
		return false, in.evalLambda(fr), nil

	default:
		if head.Kind().IsIndirection() {
			// A resumed frame: the placeholder (or a leftover reference)
			// sits at the head. Dereference it in place.
			resolved := in.dereference(fr.WithExecutionState(head))
			return false, fr.WithExecutionState(replaceItem(sexpr, 0, resolved)), nil
		}
		fr.ThrowError("cannot apply arguments to a %s at the head of an s-expression", head.Kind())
	}
	panic("unreachable")
}

// evalTopLevelValue handles a frame whose execution state is not an
// s-expression: branch points decide handler resumption, indirections
// dereference and re-enter, and everything else completes the frame.
func (in *Interp) evalTopLevelValue(fr *StackFrame) (bool, *StackFrame, value.Value) {
	state := fr.ExecutionState

	if point, ok := state.(HandleBranchPoint); ok {
		return in.evalBranchPoint(fr, point)
	}

	if state.Kind().IsIndirection() {
		return false, fr.WithExecutionState(in.dereference(fr)), nil
	}

	if fr.Parent == nil {
		return true, nil, state
	}
	return false, fr.Parent.WithChildReturnValue(state), nil
}

// evalBranchPoint inspects the value that flowed into a handle branch
// point. A pristine branch point passes the body's result through; one
// cloned by a handler invocation requires a ContinueStop, updates the
// block's state and either resumes the saved continuation or unwinds with
// the stop value.
func (in *Interp) evalBranchPoint(fr *StackFrame, point HandleBranchPoint) (bool, *StackFrame, value.Value) {
	var result value.Value

	if point.ContinueBranch != nil {
		returned := fr.ChildReturnValue()
		cs, ok := returned.(ContinueStop)
		if !ok {
			fr.ThrowError("a handler body returned a value that is not a continue or stop")
		}
		in.registry.setState(fr, point.HandlerID, cs.NewState)
		if cs.IsContinue {
			return false, point.ContinueBranch.CreateChild(cs.ReturnValue), nil
		}
		// Stopping discards the rest of the body, including any handle
		// blocks live inside it; their states are released here since
		// their placeholders will never be dereferenced.
		in.registry.releaseAbove(fr, point.HandlerID)
		result = cs.ReturnValue
	} else {
		result = fr.ChildReturnValue()
	}

	if fr.Parent == nil {
		return true, nil, result
	}
	return false, fr.Parent.WithChildReturnValue(result), nil
}

// evalReferenceAtHead resolves a reference heading an s-expression. Regular
// bindings shadow special forms, so user code can locally rebind a form
// keyword.
func (in *Interp) evalReferenceAtHead(fr *StackFrame) *StackFrame {
	sexpr := fr.ExecutionState.(SExpression)
	head := sexpr.Items[0].(Reference)

	if fr.HasRegular(head.Name) {
		resolved := fr.RetrieveRegular(head.Name)
		return fr.WithExecutionState(replaceItem(sexpr, 0, resolved))
	}
	if fr.HasMacro(head.Name) {
		return in.subEvaluateMacro(fr)
	}
	if form, ok := specialForms[head.Name]; ok {
		return form.handler(in, fr)
	}

	fr.ThrowError("could not find reference %s", head.Name)
	panic("unreachable")
}

// evalLambda applies one argument to the lambda at the head. Once the
// lambda is fully bound, its evaluation frame replaces the application; a
// call in tail position skips the exhausted caller frame entirely.
func (in *Interp) evalLambda(fr *StackFrame) *StackFrame {
	if !fr.IsFullyEvaluated(1) {
		return in.subEvaluate(fr, 1)
	}

	sexpr := fr.ExecutionState.(SExpression)
	head := sexpr.Items[0].(Lambda)
	arg := sexpr.Items[1]
	rest := sexpr.Items[2:]

	applied := head.Bind(arg, fr)
	if !applied.CanRun() {
		return fr.WithExecutionState(prepend(applied, rest))
	}

	old := fr.WithExecutionState(prepend(StackReturnValue{}, rest))
	child := applied.CreateEvaluationFrame(in, old)

	// Tail-call discipline: with no trailing work the caller frame would
	// only forward its child's result, so the callee is parented past it.
	// Handler invocations are exempt: the caller frame is the continuation
	// a continue resumes into.
	if _, isEffect := applied.(*UnfinishedHandlerInvocation); !isEffect && len(rest) == 0 {
		child.Parent = old.Parent
	}
	return child
}

// dereference resolves the indirection value held by the frame to the value
// it stands for.
func (in *Interp) dereference(fr *StackFrame) value.Value {
	switch v := fr.ExecutionState.(type) {
	case Reference:
		if fr.HasRegular(v.Name) {
			return fr.RetrieveRegular(v.Name)
		}
		if fr.HasMacro(v.Name) {
			return MacroReference{Name: v.Name}
		}
		if isSpecialFormKeyword(v.Name) {
			fr.ThrowError("tried to use the special form %s as a bare reference outside an s-expression", v.Name)
		}
		fr.ThrowError("could not find reference %s", v.Name)

	case StackReturnValue:
		return fr.ChildReturnValue()

	case MacroReturnValue:
		// The child frame ran a macro; its returned list is spliced back
		// in as code.
		returned := fr.ChildReturnValue()
		list, ok := returned.(value.List)
		if !ok {
			fr.ThrowError("a macro must return a list of forms, got a %s", returned.Kind())
		}
		return ToAST(list)

	case HandleReturnValue:
		// The handle block finished: pair the body's result with the
		// final state and release the registry entry.
		result := fr.ChildReturnValue()
		finalState := in.registry.state(fr, v.HandlerID)
		in.registry.unregister(fr, v.HandlerID)
		return value.NewList([]value.Value{result, finalState})

	default:
		fr.ThrowError("cannot dereference a %s (engine bug)", v.Kind())
	}
	panic("unreachable")
}

// subEvaluate forces the i-th slot of the frame's s-expression: code spawns
// a child frame behind a placeholder, an indirection is dereferenced in
// place. Callers check IsFullyEvaluated first.
func (in *Interp) subEvaluate(fr *StackFrame, i int) *StackFrame {
	if fr.IsFullyEvaluated(i) {
		fr.ThrowError("subitem is already fully evaluated (engine bug)")
	}
	sexpr := fr.ExecutionState.(SExpression)
	item := sexpr.Items[i]

	if inner, ok := item.(SExpression); ok {
		old := fr.WithExecutionState(replaceItem(sexpr, i, StackReturnValue{}))
		return old.CreateChild(inner)
	}

	resolved := in.dereference(fr.WithExecutionState(item))
	return fr.WithExecutionState(replaceItem(sexpr, i, resolved))
}

// subEvaluateMacro expands a macro invocation encountered at the head of an
// s-expression during evaluation. The items after the head are handed to
// the macro as data; a MacroReturnValue placeholder marks the site, and its
// dereference splices the returned list back in as code.
func (in *Interp) subEvaluateMacro(fr *StackFrame) *StackFrame {
	sexpr := fr.ExecutionState.(SExpression)

	var name string
	switch head := sexpr.Items[0].(type) {
	case Reference:
		name = head.Name
	case MacroReference:
		name = head.Name
	default:
		fr.ThrowError("macro sub-evaluation on a %s head (engine bug)", head.Kind())
	}
	macroFn := fr.RetrieveMacro(name)

	tail := make([]value.Value, 0, len(sexpr.Items)-1)
	for _, item := range sexpr.Items[1:] {
		tail = append(tail, QuoteCode(fr, item))
	}

	invocation := NewSExpression([]value.Value{
		macroFn,
		fr.Scope,
		value.NewList(tail),
	})
	old := fr.WithExecutionState(NewSExpression([]value.Value{MacroReturnValue{}}))
	return old.CreateChild(invocation)
}

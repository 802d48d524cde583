package interp

import "github.com/cwbudde/go-lisplang/internal/value"

// The demacro pass rewrites an LLQ tree so that no macro invocations
// remain. It walks lists of code-as-data, not s-expressions: only the let,
// macro and quote forms get special treatment, everything else recurses.
// Macro bodies themselves run on the ordinary evaluator, which is why the
// expansion lives on the interpreter.

// demacroTop expands the LLQ tree held by the frame. The frame's scope
// accumulates macro definitions and let bindings as the walk proceeds.
func (in *Interp) demacroTop(fr *StackFrame) value.Value {
	if fr.ExecutionState.Kind() != value.KindList {
		return in.demacroAtom(fr)
	}
	return in.demacroList(fr)
}

// demacroAtom handles a non-list node. A bare macro name with no invocation
// tail is invalid; every other atom passes through.
func (in *Interp) demacroAtom(fr *StackFrame) value.Value {
	if name, ok := fr.ExecutionState.(value.QuotedName); ok {
		if fr.HasMacro(name.Name) {
			fr.ThrowError("found the macro %s without any code behind it, invalid macro usage", name.Name)
		}
	}
	return fr.ExecutionState
}

// demacroList dispatches on the head of a list node.
func (in *Interp) demacroList(fr *StackFrame) value.Value {
	list := fr.ExecutionState.(value.List)
	if len(list.Items) == 0 {
		return list
	}
	if head, ok := list.Items[0].(value.QuotedName); ok {
		return in.demacroNamedHead(fr, head.Name)
	}
	return value.NewList(in.demacroChildren(fr))
}

// demacroNamedHead expands a list whose head is a name: a macro binding
// invokes the macro, the let/macro/quote forms thread scope and protect
// quoted payloads, and anything else recurses into the children.
func (in *Interp) demacroNamedHead(fr *StackFrame, head string) value.Value {
	switch {
	case fr.HasRegular(head):
		return value.NewList(in.demacroChildren(fr))
	case fr.HasMacro(head):
		return in.demacroMacroInvocation(fr)
	case head == "let":
		return in.demacroLet(fr)
	case head == "macro":
		return in.demacroMacroDefinition(fr)
	case head == "quote":
		// The quoted payload must not be expanded.
		list := fr.ExecutionState.(value.List)
		form := specialForms["quote"]
		if len(list.Items) < form.length {
			fr.ThrowError("special form quote must have at least %d items, only has %d",
				form.length, len(list.Items))
		}
		kept := list.Items[:form.length]
		tailFrame := fr.WithExecutionState(value.NewList(list.Items[form.length:]))
		expandedTail := in.demacroChildren(tailFrame)
		return value.NewList(append(append([]value.Value{}, kept...), expandedTail...))
	default:
		return value.NewList(in.demacroChildren(fr))
	}
}

// demacroChildren expands every child of the current list node. A child in
// a non-head position may not be a bare macro name.
func (in *Interp) demacroChildren(fr *StackFrame) []value.Value {
	list := fr.ExecutionState.(value.List)
	out := make([]value.Value, len(list.Items))
	for i, item := range list.Items {
		child := fr.CreateChild(item)
		if item.Kind() == value.KindList {
			out[i] = in.demacroTop(child)
			continue
		}
		if name, ok := item.(value.QuotedName); ok && fr.HasMacro(name.Name) {
			child.ThrowError("the element in this position may not be a macro")
		}
		out[i] = item
	}
	return out
}

// demacroMacroInvocation runs the macro bound to the head over the
// remaining siblings and re-expands the returned list in place of the
// whole node.
func (in *Interp) demacroMacroInvocation(fr *StackFrame) value.Value {
	list := fr.ExecutionState.(value.List)
	head := list.Items[0].(value.QuotedName)
	tail := list.Items[1:]

	macroFn := fr.RetrieveMacro(head.Name)
	invocation := NewSExpression([]value.Value{
		macroFn,
		NewReference(value.CurrentScopeKeyword),
		value.NewList(tail),
	})
	macroFrame := NewStackFrame(invocation, fr.Scope.File()).
		WithScope(fr.Scope).
		WithHandlerFrame(fr.Handlers)
	result := in.run(macroFrame)

	if !IsSerializable(result) {
		fr.ThrowError("the macro %s returned something that is not code-as-data", head.Name)
	}
	return in.demacroTop(fr.WithExecutionState(result))
}

// demacroLet expands the bound value, evaluates it, and makes the binding
// visible to the macros in the remaining forms. The let node itself stays
// in the output for the runtime pass.
func (in *Interp) demacroLet(fr *StackFrame) value.Value {
	list := fr.ExecutionState.(value.List)
	form := specialForms["let"]
	if len(list.Items) < form.length {
		fr.ThrowError("special form let must have at least %d items, only has %d",
			form.length, len(list.Items))
	}
	letWord, name, body := list.Items[0], list.Items[1], list.Items[2]
	tail := list.Items[form.length:]
	MustBeKind(fr, name, "the first arg after a let must be a name", value.KindQuotedName)

	expandedBody := in.demacroTop(fr.CreateChild(body))
	valueFrame := NewStackFrame(ToAST(expandedBody), fr.Scope.File()).
		WithScope(fr.Scope).
		WithHandlerFrame(fr.Handlers)
	bound := tieLetRecursion(fr, name.(value.QuotedName).Name, in.run(valueFrame))

	newFrame := fr.AddRegular(name.(value.QuotedName).Name, bound)
	expandedTail := in.demacroTop(newFrame.WithExecutionState(value.NewList(tail)))
	tailList, ok := expandedTail.(value.List)
	if !ok {
		fr.ThrowError("macro expansion of a let tail produced a %s instead of a list (engine bug)", expandedTail.Kind())
	}

	return value.NewList([]value.Value{letWord, name, expandedBody}).Concat(tailList)
}

// demacroMacroDefinition expands a macro definition's body, binds the macro
// for the remaining forms, and keeps the (expanded) definition in the
// output so the runtime pass binds it as well.
func (in *Interp) demacroMacroDefinition(fr *StackFrame) value.Value {
	list := fr.ExecutionState.(value.List)
	form := specialForms["macro"]
	if len(list.Items) < form.length {
		fr.ThrowError("special form macro must have at least %d items, only has %d",
			form.length, len(list.Items))
	}
	macroWord, name, callingScope, input, body :=
		list.Items[0], list.Items[1], list.Items[2], list.Items[3], list.Items[4]
	tail := list.Items[form.length:]

	MustBeKind(fr, name, "the first arg after a macro def must be a name", value.KindQuotedName)
	MustBeKind(fr, callingScope, "the second arg after a macro def is the calling scope holder, must be a name", value.KindQuotedName)
	MustBeKind(fr, input, "the third arg after a macro def is the input holder, must be a name", value.KindQuotedName)
	MustBeKind(fr, body, "a macro body must be a list", value.KindList)

	expandedBody := in.demacroTop(fr.CreateChild(body))
	fn := NewUserLambda(
		[]string{callingScope.(value.QuotedName).Name, input.(value.QuotedName).Name},
		ToAST(expandedBody),
		fr.Scope,
	)
	newFrame := fr.AddMacro(name.(value.QuotedName).Name, fn)
	expandedTail := in.demacroTop(newFrame.WithExecutionState(value.NewList(tail)))
	tailList, ok := expandedTail.(value.List)
	if !ok {
		fr.ThrowError("macro expansion of a macro definition tail produced a %s instead of a list (engine bug)", expandedTail.Kind())
	}

	return value.NewList([]value.Value{macroWord, name, callingScope, input, expandedBody}).Concat(tailList)
}

package interp

import "github.com/cwbudde/go-lisplang/internal/value"

// specialForm describes one special form: its keyword, the fixed number of
// slots it consumes from the containing s-expression, and its handler.
type specialForm struct {
	keyword string
	length  int
	handler func(in *Interp, fr *StackFrame) *StackFrame
}

// specialForms is the dispatch table consulted after scope lookup fails, so
// regular bindings can shadow form keywords.
var specialForms map[string]specialForm

func init() {
	forms := []specialForm{
		{"lambda", 3, formLambda}, // lambda args body
		{"let", 3, formLet},       // let name value
		{"quote", 2, formQuote},   // quote value
		{"list", 2, formList},     // list (a b c)
		{"cond", 4, formCond},     // cond test truePath falsePath
		{"macro", 5, formMacro},   // macro name callingScope input body
		{"ignore", 2, formIgnore}, // ignore value
		{"handle", 4, formHandle}, // handle code [[name handler]…] stateSeed
		{"import", 3, formImport}, // import [path elements] alias
	}
	specialForms = make(map[string]specialForm, len(forms))
	for _, f := range forms {
		specialForms[f.keyword] = f
	}
}

// isSpecialFormKeyword reports whether name is a special form keyword.
func isSpecialFormKeyword(name string) bool {
	_, ok := specialForms[name]
	return ok
}

// formLambda builds a UserLambda capturing the current scope. The argument
// list must be a flat s-expression of references.
func formLambda(_ *Interp, fr *StackFrame) *StackFrame {
	prefix, rest := sliceForm(fr, specialForms["lambda"])
	args, body := prefix[1], prefix[2]

	const argsErr = "the first arg of a lambda must be a flat list of names"
	MustBeKind(fr, args, argsErr, value.KindSExpression)
	argExpr := args.(SExpression)
	bindings := make([]string, len(argExpr.Items))
	for i, item := range argExpr.Items {
		MustBeKind(fr, item, argsErr, value.KindReference)
		bindings[i] = item.(Reference).Name
	}
	MustBeKind(fr, body, "the body of a lambda must be an s-expression or a single name",
		value.KindSExpression, value.KindReference)

	fn := NewUserLambda(bindings, body, fr.Scope)
	return fr.WithExecutionState(prepend(fn, rest))
}

// formLet fully evaluates the value, binds it as a regular value and
// continues with the remaining forms in the extended scope.
func formLet(in *Interp, fr *StackFrame) *StackFrame {
	prefix, tail := sliceForm(fr, specialForms["let"])
	name := prefix[1]
	MustBeKind(fr, name, "the first arg after a let must be a name", value.KindReference)
	if !fr.IsFullyEvaluated(2) {
		return in.subEvaluate(fr, 2)
	}
	bound := tieLetRecursion(fr, name.(Reference).Name, fr.ExecutionState.(SExpression).Items[2])
	return fr.
		AddRegular(name.(Reference).Name, bound).
		WithExecutionState(NewSExpression(tail))
}

// tieLetRecursion makes a let-bound closure visible to its own body, so
// (let loop (lambda (n) … (loop …))) recurses. The closure is copied
// before its captured scope is extended, leaving other references to the
// same lambda untouched.
func tieLetRecursion(fr *StackFrame, name string, v value.Value) value.Value {
	ul, ok := v.(*UserLambda)
	if !ok {
		return v
	}
	c := *ul
	c.scope = ul.scope.AddRegular(fr, name, &c)
	return &c
}

// formQuote converts the quoted slot from code to data and substitutes it.
func formQuote(_ *Interp, fr *StackFrame) *StackFrame {
	prefix, tail := sliceForm(fr, specialForms["quote"])
	quoted := QuoteCode(fr, prefix[1])
	return fr.WithExecutionState(prepend(quoted, tail))
}

// formCond evaluates the test to a boolean and replaces the whole quadruple
// with the chosen branch. The other branch is never evaluated.
func formCond(in *Interp, fr *StackFrame) *StackFrame {
	prefix, tail := sliceForm(fr, specialForms["cond"])
	if !fr.IsFullyEvaluated(1) {
		return in.subEvaluate(fr, 1)
	}
	test := fr.ExecutionState.(SExpression).Items[1]
	MustBeKind(fr, test, "the condition of a cond must evaluate to a boolean", value.KindBoolean)
	path := prefix[3]
	if test.(value.Boolean).Val {
		path = prefix[2]
	}
	return fr.WithExecutionState(prepend(path, tail))
}

// formIgnore evaluates its slot for effect and drops the result.
func formIgnore(in *Interp, fr *StackFrame) *StackFrame {
	_, tail := sliceForm(fr, specialForms["ignore"])
	if fr.IsFullyEvaluated(1) {
		return fr.WithExecutionState(NewSExpression(tail))
	}
	return in.subEvaluate(fr, 1)
}

// formMacro binds a macro in scope at runtime. The macro lambda takes the
// calling scope and the invocation tail as its two arguments.
func formMacro(_ *Interp, fr *StackFrame) *StackFrame {
	prefix, rest := sliceForm(fr, specialForms["macro"])
	name, callingScope, input, body := prefix[1], prefix[2], prefix[3], prefix[4]

	MustBeKind(fr, name, "the first arg after a macro def must be a name", value.KindReference)
	MustBeKind(fr, callingScope, "the second arg after a macro def is the calling scope holder, must be a name", value.KindReference)
	MustBeKind(fr, input, "the third arg after a macro def is the input holder, must be a name", value.KindReference)
	MustBeKind(fr, body, "a macro body must be an s-expression", value.KindSExpression)

	fn := NewUserLambda(
		[]string{callingScope.(Reference).Name, input.(Reference).Name},
		body,
		fr.Scope,
	)
	return fr.
		AddMacro(name.(Reference).Name, fn).
		WithExecutionState(NewSExpression(rest))
}

// formList evaluates the payload elements left to right and replaces the
// form with the resulting list. One pending element is evaluated per child
// frame, marked by a placeholder in the payload.
func formList(in *Interp, fr *StackFrame) *StackFrame {
	prefix, tail := sliceForm(fr, specialForms["list"])
	listWord, payload := prefix[0], prefix[1]
	MustBeKind(fr, payload, "the item after list must be a list", value.KindSExpression)

	var pending SExpression
	havePending := false
	items := make([]value.Value, 0, len(payload.(SExpression).Items))

	for _, item := range payload.(SExpression).Items {
		switch {
		case item.Kind() == value.KindSExpression:
			if !havePending {
				// First unevaluated element: evaluate it next, leave a
				// placeholder at its position.
				items = append(items, StackReturnValue{})
				pending = item.(SExpression)
				havePending = true
			} else {
				items = append(items, item)
			}
		case item.Kind().IsIndirection():
			items = append(items, in.dereference(fr.WithExecutionState(item)))
		default:
			items = append(items, item)
		}
	}

	if havePending {
		rebuilt := make([]value.Value, 0, len(tail)+2)
		rebuilt = append(rebuilt, listWord, NewSExpression(items))
		rebuilt = append(rebuilt, tail...)
		return fr.WithExecutionState(NewSExpression(rebuilt)).CreateChild(pending)
	}
	return fr.WithExecutionState(prepend(value.NewList(items), tail))
}

// formHandle sets up a handle block: it registers the seed state, leaves a
// HandleReturnValue placeholder in the current frame, interposes a branch
// point frame, and evaluates the handled code under a new user handler
// frame chained onto the enclosing one.
func formHandle(in *Interp, fr *StackFrame) *StackFrame {
	prefix, tail := sliceForm(fr, specialForms["handle"])

	if !fr.IsFullyEvaluated(2) { // handler pairs
		return in.subEvaluate(fr, 2)
	}
	if !fr.IsFullyEvaluated(3) { // state seed
		return in.subEvaluate(fr, 3)
	}

	sexpr := fr.ExecutionState.(SExpression)
	code, pairs, stateSeed := prefix[1], sexpr.Items[2], sexpr.Items[3]
	verifyHandlerPairs(fr, pairs)

	handlerID := in.registry.register(stateSeed)

	parentFrame := fr.WithExecutionState(prepend(HandleReturnValue{HandlerID: handlerID}, tail))
	branchFrame := parentFrame.CreateChild(HandleBranchPoint{HandlerID: handlerID})

	handlers := NewUserHandlerFrame(handlerID, branchFrame, fr.Handlers)
	for _, pair := range pairs.(value.List).Items {
		kv := pair.(value.List)
		handlers = handlers.AddHandler(fr, kv.Items[0].(value.QuotedName).Name, kv.Items[1].(Lambda))
	}

	return branchFrame.CreateChild(code).WithHandlerFrame(handlers)
}

// verifyHandlerPairs checks the evaluated handler table: a list of
// [quotedName lambda] pairs.
func verifyHandlerPairs(fr *StackFrame, pairs value.Value) {
	const errMessage = "handlers must be key value pairs of a quoted name and a function"
	MustBeKind(fr, pairs, errMessage, value.KindList)
	for _, pair := range pairs.(value.List).Items {
		MustBeKind(fr, pair, errMessage, value.KindList)
		kv := pair.(value.List)
		if len(kv.Items) != 2 {
			fr.ThrowError(errMessage)
		}
		MustBeKind(fr, kv.Items[0], errMessage, value.KindQuotedName)
		MustBeKind(fr, kv.Items[1], errMessage, value.KindLambda)
	}
}

// formImport resolves an import path through the file the current scope
// belongs to and binds the result under the alias.
func formImport(in *Interp, fr *StackFrame) *StackFrame {
	prefix, tail := sliceForm(fr, specialForms["import"])

	if !fr.IsFullyEvaluated(1) { // the path list
		return in.subEvaluate(fr, 1)
	}
	what := fr.ExecutionState.(SExpression).Items[1]
	alias := prefix[2]
	MustBeKind(fr, alias, "the import target name must be a name", value.KindReference)

	const pathErr = "an import target must be a list of strings"
	MustBeKind(fr, what, pathErr, value.KindList)
	pathList := what.(value.List)
	path := make([]string, len(pathList.Items))
	for i, elem := range pathList.Items {
		MustBeString(fr, elem, pathErr)
		path[i] = elem.(value.List).AsString()
	}

	file := fr.Scope.File()
	if file == nil {
		fr.ThrowError("cannot import %s: the current code does not belong to a source tree", renderPath(path))
	}
	found, ok, err := file.Find(path)
	if err != nil {
		fr.ThrowError("import of %s failed: %v", renderPath(path), err)
	}
	if !ok {
		fr.ThrowError("could not find %s", renderPath(path))
	}
	return fr.
		AddRegular(alias.(Reference).Name, found).
		WithExecutionState(NewSExpression(tail))
}

package interp

import (
	"fmt"
	"math"

	"github.com/cwbudde/go-lisplang/internal/value"
)

// This file is the host bridge: the primitive functions and the
// host-implemented effect handlers every program starts with.

func builtinHead(fr *StackFrame, args []value.Value) value.Value {
	MustBeKind(fr, args[0], "head can only operate on lists", value.KindList)
	list := args[0].(value.List)
	if len(list.Items) == 0 {
		fr.ThrowError("cannot take the head of an empty list")
	}
	return list.Items[0]
}

func builtinTail(fr *StackFrame, args []value.Value) value.Value {
	MustBeKind(fr, args[0], "tail can only operate on lists", value.KindList)
	list := args[0].(value.List)
	if len(list.Items) == 0 {
		fr.ThrowError("cannot take the tail of an empty list")
	}
	return value.NewList(list.Items[1:])
}

func builtinConcat(fr *StackFrame, args []value.Value) value.Value {
	MustBeKind(fr, args[0], "concat can only operate on lists", value.KindList)
	MustBeKind(fr, args[1], "concat can only operate on lists", value.KindList)
	return args[0].(value.List).Concat(args[1].(value.List))
}

func builtinEquals(fr *StackFrame, args []value.Value) value.Value {
	eq, err := args[0].Equals(args[1])
	if err != nil {
		fr.ThrowError("equals: %v", err)
	}
	return value.NewBoolean(eq)
}

func builtinSum(fr *StackFrame, args []value.Value) value.Value {
	MustBeKind(fr, args[0], "sum can only add numbers", value.KindNumber)
	MustBeKind(fr, args[1], "sum can only add numbers", value.KindNumber)
	return value.NewNumber(args[0].(value.Number).Val + args[1].(value.Number).Val)
}

func builtinIsString(_ *StackFrame, args []value.Value) value.Value {
	list, ok := args[0].(value.List)
	return value.NewBoolean(ok && list.IsString())
}

// continueStop builds the continue and stop primitives, the only legal
// return shapes of a handler body.
func continueStop(isContinue bool) HostFunc {
	return func(_ *StackFrame, args []value.Value) value.Value {
		return ContinueStop{
			IsContinue:  isContinue,
			ReturnValue: args[0],
			NewState:    args[1],
		}
	}
}

// builtinDeclareEffectful turns a quoted name and an arity into an
// effectful function declaration.
func builtinDeclareEffectful(fr *StackFrame, args []value.Value) value.Value {
	MustBeKind(fr, args[0],
		"declareEffectfulFunction needs the handled name as a quoted name for its first argument",
		value.KindQuotedName)
	MustBeKind(fr, args[1],
		"declareEffectfulFunction needs its arity as a number for its second argument",
		value.KindNumber)
	arity := args[1].(value.Number).Val
	if arity < 1 {
		fr.ThrowError("the arity of an effectful function must be 1 or higher")
	}
	if arity != math.Trunc(arity) {
		fr.ThrowError("the arity of an effectful function must be a whole number")
	}
	return NewUnfinishedHandlerInvocation(args[0].(value.QuotedName).Name, int(arity))
}

// hostPrint implements the print effect: numbers and booleans print their
// canonical form, strings print their characters.
func (in *Interp) hostPrint(fr *StackFrame, args []value.Value) value.Value {
	v := args[0]
	switch {
	case v.Kind() == value.KindNumber || v.Kind() == value.KindBoolean:
		fmt.Fprintln(in.output, v.ErrorDump())
	case v.Kind() == value.KindList && v.(value.List).IsString():
		fmt.Fprintln(in.output, v.(value.List).AsString())
	default:
		fr.ThrowError("unsupported type to print: %s", v.Kind())
	}
	return value.NewUnit()
}

// hostGensym yields a fresh quoted name, unique within this interpreter.
func (in *Interp) hostGensym(_ *StackFrame, _ []value.Value) value.Value {
	in.gensymN++
	return value.NewQuotedName(fmt.Sprintf("generatedSymbol_%d_%08x", in.gensymN, in.rand.Uint32()))
}

// standardLibrary returns the primitive functions bound in every starting
// scope.
func (in *Interp) standardLibrary() []*SystemFunction {
	return []*SystemFunction{
		NewSystemFunction("head", 1, builtinHead),
		NewSystemFunction("tail", 1, builtinTail),
		NewSystemFunction("concat", 2, builtinConcat),
		NewSystemFunction("equals", 2, builtinEquals),
		NewSystemFunction("sum", 2, builtinSum),
		NewSystemFunction("isString", 1, builtinIsString),
		NewSystemFunction(value.ContinueKeyword, 2, continueStop(true)),
		NewSystemFunction(value.StopKeyword, 2, continueStop(false)),
		NewSystemFunction("declareEffectfulFunction", 2, builtinDeclareEffectful),
	}
}

// hostHandlers returns the host-implemented effect handlers; baseFrame
// installs them in the system handler frame.
func (in *Interp) hostHandlers() []*SystemFunction {
	return []*SystemFunction{
		NewSystemFunction("print", 1, in.hostPrint),
		NewSystemFunction("gensym", 1, in.hostGensym),
	}
}

// baseFrame builds a root frame with the standard library in scope, the
// host effects pre-declared as effectful functions, and the system handler
// frame installed.
func (in *Interp) baseFrame(file SourceFile) *StackFrame {
	frame := NewStackFrame(StackReturnValue{}, file)

	for _, fn := range in.standardLibrary() {
		frame = frame.AddRegular(fn.Name(), fn)
	}

	handlers := NewSystemHandlerFrame()
	for _, fn := range in.hostHandlers() {
		frame = frame.AddRegular(fn.Name(), NewUnfinishedHandlerInvocation(fn.Name(), fn.Arity()))
		handlers = handlers.AddHandler(fn.Name(), fn)
	}
	return frame.WithHandlerFrame(handlers)
}

// NewRuntimeFrame builds the starting frame for program evaluation.
func (in *Interp) NewRuntimeFrame(file SourceFile) *StackFrame {
	return in.baseFrame(file)
}

// NewMacroFrame builds the starting frame for the macro expansion phase.
// Macro bodies run with the same standard library and host effects as
// runtime code.
func (in *Interp) NewMacroFrame(file SourceFile) *StackFrame {
	return in.baseFrame(file)
}

package value

// Kind identifies the variant of a runtime value. Every Value carries exactly
// one Kind, and a value's Kind uniquely determines its representation.
type Kind int

const (
	// Data-level kinds. These are serializable and may appear anywhere in
	// user-visible data.
	KindNumber Kind = iota
	KindBoolean
	KindChar
	KindList
	KindQuotedName
	KindUnit

	// Interpreter-level kinds. These only occur while code is being
	// evaluated or expanded and never appear in a fully evaluated result.
	KindSExpression
	KindReference
	KindMacroReference
	KindLambda
	KindContinueStop
	KindStackReturnValue
	KindMacroReturnValue
	KindHandleReturnValue
	KindHandleBranchPoint
	KindScope
	KindHandlerFrame
)

// String returns the kind name as used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "Number"
	case KindBoolean:
		return "Boolean"
	case KindChar:
		return "Char"
	case KindList:
		return "List"
	case KindQuotedName:
		return "QuotedName"
	case KindUnit:
		return "Unit"
	case KindSExpression:
		return "sExpression"
	case KindReference:
		return "Reference"
	case KindMacroReference:
		return "MacroReference"
	case KindLambda:
		return "Lambda"
	case KindContinueStop:
		return "ContinueStop"
	case KindStackReturnValue:
		return "StackReturnValue"
	case KindMacroReturnValue:
		return "MacroReturnValue"
	case KindHandleReturnValue:
		return "HandleReturnValue"
	case KindHandleBranchPoint:
		return "HandleBranchPoint"
	case KindScope:
		return "Scope"
	case KindHandlerFrame:
		return "HandlerFrame"
	default:
		return "Unknown"
	}
}

// IsData reports whether the kind belongs to the serializable data level.
func (k Kind) IsData() bool {
	switch k {
	case KindNumber, KindBoolean, KindChar, KindList, KindQuotedName, KindUnit:
		return true
	default:
		return false
	}
}

// IsIndirection reports whether a value of this kind stands for another value
// that must be retrieved by dereferencing: a name awaiting lookup, or a
// placeholder slot awaiting a child frame's result.
func (k Kind) IsIndirection() bool {
	switch k {
	case KindReference, KindStackReturnValue, KindMacroReturnValue, KindHandleReturnValue:
		return true
	default:
		return false
	}
}

package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/go-lisplang/internal/value"
)

func errKind(prefix string, k value.Kind) error {
	return fmt.Errorf("%s%s", prefix, k)
}

func itoa(i int) string { return strconv.Itoa(i) }

// ToAST converts an LLQ data tree into the evaluator's representation:
// lists become s-expressions and quoted names become references. Literals
// pass through unchanged.
func ToAST(llq value.Value) value.Value {
	switch v := llq.(type) {
	case value.List:
		items := make([]value.Value, len(v.Items))
		for i, item := range v.Items {
			items[i] = ToAST(item)
		}
		return NewSExpression(items)
	case value.QuotedName:
		return NewReference(v.Name)
	default:
		return llq
	}
}

// QuoteCode converts code into data: s-expressions become lists and
// references become quoted names. Lambdas, scopes and the other
// interpreter-only values cannot be quoted.
func QuoteCode(fr *StackFrame, expr value.Value) value.Value {
	switch v := expr.(type) {
	case SExpression:
		items := make([]value.Value, len(v.Items))
		for i, item := range v.Items {
			items[i] = QuoteCode(fr, item)
		}
		return value.NewList(items)
	case Reference:
		return value.NewQuotedName(v.Name)
	default:
		if !expr.Kind().IsData() {
			fr.ThrowError("a %s cannot be quoted", expr.Kind())
		}
		return expr
	}
}

// MustBeKind throws through the frame unless the expression has one of the
// allowed kinds. The message is prefixed to the kind report.
func MustBeKind(fr *StackFrame, expr value.Value, message string, kinds ...value.Kind) {
	for _, k := range kinds {
		if expr.Kind() == k {
			return
		}
	}
	fr.ThrowError("%s\nIt has type %s", message, expr.Kind())
}

// MustBeString throws through the frame unless the expression is a list of
// chars.
func MustBeString(fr *StackFrame, expr value.Value, message string) {
	list, ok := expr.(value.List)
	if !ok {
		fr.ThrowError("%s\nIt has type %s", message, expr.Kind())
	}
	for _, item := range list.Items {
		if item.Kind() != value.KindChar {
			fr.ThrowError("%s\nIt contains type %s", message, item.Kind())
		}
	}
}

// IsSerializable reports whether the value belongs entirely to the data
// level.
func IsSerializable(v value.Value) bool {
	_, err := v.Serialize()
	return err == nil
}

// sliceForm splits the frame's s-expression into a form's fixed prefix and
// the remaining tail, throwing when the expression is shorter than the form
// requires.
func sliceForm(fr *StackFrame, form specialForm) (prefix, tail []value.Value) {
	sexpr := fr.ExecutionState.(SExpression)
	if len(sexpr.Items) < form.length {
		fr.ThrowError("special form %s must have at least %d items, only has %d",
			form.keyword, form.length, len(sexpr.Items))
	}
	return sexpr.Items[:form.length], sexpr.Items[form.length:]
}

// replaceItem returns a copy of the s-expression with the i-th slot
// replaced.
func replaceItem(sexpr SExpression, i int, v value.Value) SExpression {
	items := make([]value.Value, len(sexpr.Items))
	copy(items, sexpr.Items)
	items[i] = v
	return NewSExpression(items)
}

// prepend builds an s-expression from a head value and a tail slice.
func prepend(head value.Value, tail []value.Value) SExpression {
	items := make([]value.Value, 0, len(tail)+1)
	items = append(items, head)
	items = append(items, tail...)
	return NewSExpression(items)
}

// renderPath joins import path elements for error messages.
func renderPath(path []string) string {
	return strings.Join(path, ".")
}

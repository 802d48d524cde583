// Package value defines the data-level value universe of the lisplang
// interpreter: the Kind enumeration for every runtime variant, the Value
// interface all variants implement, and the serializable data values
// (numbers, booleans, chars, lists, quoted names, unit).
//
// Interpreter-only variants (s-expressions, references, lambdas, handler
// machinery) live in internal/interp; they implement the same Value
// interface but are not serializable.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Value represents any runtime term. Every term is tagged by a Kind.
type Value interface {
	// Kind returns the variant tag of the value.
	Kind() Kind
	// Serialize returns the canonical text form of a data-level value.
	// Interpreter-only values return an error.
	Serialize() (string, error)
	// ErrorDump returns a representation for stack traces and diagnostics.
	// Unlike Serialize it is available on every kind.
	ErrorDump() string
	// Equals reports structural equality with another value. Equality is
	// only defined on data-level kinds; interpreter-only kinds return an
	// error.
	Equals(other Value) (bool, error)
}

// notSerializable is the shared error for Serialize on interpreter kinds.
func notSerializable(k Kind) error {
	return fmt.Errorf("cannot serialize a %s", k)
}

// notComparable is the shared error for Equals on interpreter kinds.
func notComparable(k Kind) error {
	return fmt.Errorf("cannot compare a %s for equality", k)
}

// Number is a 64-bit floating point number, the sole numeric type.
type Number struct {
	Val float64
}

// NewNumber wraps a float64 as a Number value.
func NewNumber(v float64) Number { return Number{Val: v} }

func (Number) Kind() Kind { return KindNumber }

// Serialize renders the number. Integral values keep a trailing ".0" so that
// serialized numbers always parse back as numbers, never as integers of a
// different type.
func (n Number) Serialize() (string, error) {
	return n.ErrorDump(), nil
}

func (n Number) ErrorDump() string {
	s := strconv.FormatFloat(n.Val, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func (n Number) Equals(other Value) (bool, error) {
	o, ok := other.(Number)
	return ok && o.Val == n.Val, nil
}

// Boolean is the true/false value.
type Boolean struct {
	Val bool
}

// NewBoolean wraps a bool as a Boolean value.
func NewBoolean(v bool) Boolean { return Boolean{Val: v} }

func (Boolean) Kind() Kind { return KindBoolean }

func (b Boolean) Serialize() (string, error) { return b.ErrorDump(), nil }

func (b Boolean) ErrorDump() string {
	if b.Val {
		return "true"
	}
	return "false"
}

func (b Boolean) Equals(other Value) (bool, error) {
	o, ok := other.(Boolean)
	return ok && o.Val == b.Val, nil
}

// Char is a single code point. Strings are lists of Chars.
type Char struct {
	Val rune
}

// NewChar wraps a rune as a Char value.
func NewChar(r rune) Char { return Char{Val: r} }

func (Char) Kind() Kind { return KindChar }

func (c Char) Serialize() (string, error) { return c.ErrorDump(), nil }

func (c Char) ErrorDump() string {
	return `c"` + EscapeString(string(c.Val)) + `"`
}

func (c Char) Equals(other Value) (bool, error) {
	o, ok := other.(Char)
	return ok && o.Val == c.Val, nil
}

// List is an ordered sequence of values, the sole data-level collection.
// A list whose every element is a Char is a string.
type List struct {
	Items []Value
}

// NewList wraps a slice of values as a List. The slice is not copied.
func NewList(items []Value) List { return List{Items: items} }

func (List) Kind() Kind { return KindList }

// IsString reports whether the list is a string, i.e. every element is a
// Char. The empty list counts as a string.
func (l List) IsString() bool {
	for _, item := range l.Items {
		if item.Kind() != KindChar {
			return false
		}
	}
	return true
}

// AsString joins the chars of a string list into a Go string. Only valid
// when IsString reports true.
func (l List) AsString() string {
	var sb strings.Builder
	for _, item := range l.Items {
		sb.WriteRune(item.(Char).Val)
	}
	return sb.String()
}

// Concat returns a new list holding this list's items followed by other's.
func (l List) Concat(other List) List {
	items := make([]Value, 0, len(l.Items)+len(other.Items))
	items = append(items, l.Items...)
	items = append(items, other.Items...)
	return NewList(items)
}

func (l List) Serialize() (string, error) {
	return l.render(func(v Value) (string, error) { return v.Serialize() })
}

func (l List) ErrorDump() string {
	s, _ := l.render(func(v Value) (string, error) { return v.ErrorDump(), nil })
	return s
}

// render produces either the string-literal form (for lists of chars) or the
// bracketed form, using the given per-element serializer.
func (l List) render(elem func(Value) (string, error)) (string, error) {
	if l.IsString() {
		var sb strings.Builder
		sb.WriteByte('"')
		for _, item := range l.Items {
			sb.WriteString(EscapeString(string(item.(Char).Val)))
		}
		sb.WriteByte('"')
		return sb.String(), nil
	}
	parts := make([]string, len(l.Items))
	for i, item := range l.Items {
		s, err := elem(item)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return "[ " + strings.Join(parts, " ") + " ]", nil
}

func (l List) Equals(other Value) (bool, error) {
	o, ok := other.(List)
	if !ok || len(o.Items) != len(l.Items) {
		return false, nil
	}
	for i, item := range l.Items {
		eq, err := item.Equals(o.Items[i])
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}

// QuotedName is an identifier held as data, produced by quote and consumed
// by macros.
type QuotedName struct {
	Name string
}

// NewQuotedName wraps an identifier as a QuotedName value.
func NewQuotedName(name string) QuotedName { return QuotedName{Name: name} }

func (QuotedName) Kind() Kind { return KindQuotedName }

func (q QuotedName) Serialize() (string, error) { return q.Name, nil }

func (q QuotedName) ErrorDump() string { return q.Name }

func (q QuotedName) Equals(other Value) (bool, error) {
	o, ok := other.(QuotedName)
	return ok && o.Name == q.Name, nil
}

// Unit is the unit value.
type Unit struct{}

// NewUnit returns the unit value.
func NewUnit() Unit { return Unit{} }

func (Unit) Kind() Kind { return KindUnit }

func (Unit) Serialize() (string, error) { return UnitKeyword, nil }

func (Unit) ErrorDump() string { return UnitKeyword }

func (Unit) Equals(other Value) (bool, error) {
	return other.Kind() == KindUnit, nil
}

// StringToList converts a Go string into the list-of-chars representation.
func StringToList(s string) List {
	items := make([]Value, 0, len(s))
	for _, r := range s {
		items = append(items, NewChar(r))
	}
	return NewList(items)
}

// EscapeString escapes the characters of a string payload for serialization
// inside double quotes. The escapes mirror the ones the lexer accepts.
func EscapeString(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

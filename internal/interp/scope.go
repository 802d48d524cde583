package interp

import "github.com/cwbudde/go-lisplang/internal/value"

// VarKind distinguishes the two namespaces a scope entry can live in.
type VarKind int

const (
	// VarRegular is an ordinary value binding.
	VarRegular VarKind = iota
	// VarMacro is a macro binding, only invocable during macro expansion
	// or through macro sub-evaluation.
	VarMacro
)

// String returns the namespace name for error messages.
func (k VarKind) String() string {
	if k == VarMacro {
		return "macro"
	}
	return "regular"
}

// SourceFile is the resolver-side handle of the file a scope belongs to.
// Import resolution starts from it and walks upward through the containing
// packages. Implemented by internal/imports.
type SourceFile interface {
	// Find resolves an import path to a value: a compiled file's export
	// list, or a single export when the path reaches into a file. The
	// second result is false when nothing was found.
	Find(path []string) (value.Value, bool, error)
	// Path returns the file path for error messages.
	Path() string
}

// Scope is the immutable mapping from identifier to scoped value. Mutation
// produces a new Scope holding copies of the original's maps, so captured
// scopes are unaffected by later bindings.
type Scope struct {
	names  map[string]VarKind
	values map[string]value.Value
	// file is the source file this scope's code came from, consulted by
	// the import special form. Nil for synthetic scopes (tests, inline
	// evaluation).
	file SourceFile
}

// NewScope creates an empty scope owned by the given source file.
func NewScope(file SourceFile) *Scope {
	return &Scope{
		names:  map[string]VarKind{},
		values: map[string]value.Value{},
		file:   file,
	}
}

// File returns the source file this scope belongs to, or nil.
func (s *Scope) File() SourceFile { return s.file }

func (s *Scope) shallowCopy() *Scope {
	names := make(map[string]VarKind, len(s.names)+1)
	for k, v := range s.names {
		names[k] = v
	}
	values := make(map[string]value.Value, len(s.values)+1)
	for k, v := range s.values {
		values[k] = v
	}
	return &Scope{names: names, values: values, file: s.file}
}

// HasRegular reports whether name is bound as a regular value. The
// currentScope keyword always resolves.
func (s *Scope) HasRegular(name string) bool {
	if name == value.CurrentScopeKeyword {
		return true
	}
	kind, ok := s.names[name]
	return ok && kind == VarRegular
}

// RetrieveRegular returns the regular value bound to name, throwing through
// the calling frame when the name is missing or bound in the macro
// namespace.
func (s *Scope) RetrieveRegular(calling *StackFrame, name string) value.Value {
	if name == value.CurrentScopeKeyword {
		return s
	}
	if !s.HasRegular(name) {
		if kind, ok := s.names[name]; ok {
			calling.ThrowError("tried to retrieve regular value %s, but it is a %s value", name, kind)
		}
		calling.ThrowError("tried to retrieve regular value %s, value was not found in scope", name)
	}
	return s.values[name]
}

// HasMacro reports whether name is bound as a macro.
func (s *Scope) HasMacro(name string) bool {
	kind, ok := s.names[name]
	return ok && kind == VarMacro
}

// RetrieveMacro returns the macro lambda bound to name, throwing through the
// calling frame when absent.
func (s *Scope) RetrieveMacro(calling *StackFrame, name string) value.Value {
	if !s.HasMacro(name) {
		calling.ThrowError("tried to retrieve macro %q, macro not found in scope", name)
	}
	return s.values[name]
}

// AddRegular returns a new scope with name bound as a regular value.
// Reserved keywords cannot be rebound.
func (s *Scope) AddRegular(calling *StackFrame, name string, v value.Value) *Scope {
	checkReservedKeyword(calling, name)
	c := s.shallowCopy()
	c.names[name] = VarRegular
	c.values[name] = v
	return c
}

// AddMacro returns a new scope with name bound as a macro.
func (s *Scope) AddMacro(calling *StackFrame, name string, v value.Value) *Scope {
	checkReservedKeyword(calling, name)
	c := s.shallowCopy()
	c.names[name] = VarMacro
	c.values[name] = v
	return c
}

func checkReservedKeyword(calling *StackFrame, name string) {
	if value.IsReservedWord(name) {
		calling.ThrowError("tried to override the reserved keyword %q", name)
	}
}

// Scope is itself a value so that the currentScope keyword can resolve to it
// and macros can receive it as an argument.

func (*Scope) Kind() value.Kind { return value.KindScope }

func (s *Scope) Serialize() (string, error) {
	return "", notSerializable(s)
}

func (*Scope) ErrorDump() string { return "<captured scope>" }

func (s *Scope) Equals(value.Value) (bool, error) {
	return false, notComparable(s)
}

// Package imports resolves import paths to compiled lisp files. A source
// tree maps to a Searchable hierarchy of files, folders and packages
// rooted in a Library; name resolution walks upward from the importing
// file's container, so shared code can live at any level above and sibling
// packages act as if they were global. Library chains fall back from a
// primary tree to one or more fallback trees.
//
// Leaves compile exactly once through an injected CompileFunc and memoize
// their export list; reentrant compilation is the circular-import error.
// The package deliberately does not depend on the interpreter: the
// interpreter's SourceFile interface is satisfied structurally by *Leaf.
package imports

import (
	"errors"
	"fmt"

	"github.com/cwbudde/go-lisplang/internal/value"
)

// ErrNotFound reports that a path does not resolve to anything.
var ErrNotFound = errors.New("not found")

// CompileFunc compiles a lisp source file into its export value, a list of
// [name value] pairs. Wired by the caller so this package stays free of an
// evaluator dependency.
type CompileFunc func(leaf *Leaf) (value.Value, error)

// Searchable is a node of the import tree: a file, folder, package or
// library root.
type Searchable interface {
	// Name is the node's name within its parent.
	Name() string
	// byPath descends from this node along the path and returns the file
	// node it ends at, plus a trailing export name when the path reaches
	// one element into a file. Wraps ErrNotFound when nothing matches.
	byPath(path []string) (fileNode, []string, error)
	// findUpward resolves a path using this node's containing package as
	// the base, climbing containers until the first path element matches.
	findUpward(path []string) (fileNode, []string, error)

	setParent(p Searchable)
}

// fileNode is a node a path can terminate at: a lisp file or a host
// package entry. Both expose a memoized export list.
type fileNode interface {
	// Exports compiles the node if needed and returns its export list.
	Exports() (value.Value, error)
	// Location renders the node's position for error messages.
	Location() string
}

// compileStatus tracks a leaf's compilation lifecycle.
type compileStatus int

const (
	statusUncompiled compileStatus = iota
	statusCompiling
	statusCompiled
)

// Leaf is a lisp source file awaiting lazy compilation.
type Leaf struct {
	name    string
	file    string // absolute path on disk
	parent  Searchable
	status  compileStatus
	exports value.Value
	compile CompileFunc
}

// NewLeaf creates a leaf for the given file path. The name is the file
// name without extension.
func NewLeaf(name, file string, compile CompileFunc) *Leaf {
	return &Leaf{name: name, file: file, compile: compile}
}

// Name returns the leaf's name within its container.
func (l *Leaf) Name() string { return l.name }

// Path returns the file path on disk. Together with Find this satisfies
// the interpreter's SourceFile interface.
func (l *Leaf) Path() string { return l.file }

// Location implements fileNode.
func (l *Leaf) Location() string { return l.file }

func (l *Leaf) setParent(p Searchable) { l.parent = p }

func (l *Leaf) byPath(path []string) (fileNode, []string, error) {
	switch len(path) {
	case 0:
		return l, nil, nil
	case 1:
		// The final element names an export inside this file.
		return l, path, nil
	default:
		return nil, nil, fmt.Errorf("%s is a file, cannot resolve %s inside it", l.name, renderPath(path))
	}
}

func (l *Leaf) findUpward(path []string) (fileNode, []string, error) {
	if l.parent == nil {
		return nil, nil, fmt.Errorf("file %s has no containing library: %w", l.file, ErrNotFound)
	}
	return l.parent.findUpward(path)
}

// Exports compiles the file on first use and memoizes the result. A leaf
// that is asked for its exports while compiling is a circular import.
func (l *Leaf) Exports() (value.Value, error) {
	switch l.status {
	case statusCompiled:
		return l.exports, nil
	case statusCompiling:
		return nil, fmt.Errorf("circular dependency detected while compiling %s", l.file)
	}
	if l.compile == nil {
		return nil, fmt.Errorf("no compiler wired for %s", l.file)
	}
	l.status = statusCompiling
	result, err := l.compile(l)
	if err != nil {
		l.status = statusUncompiled
		return nil, err
	}
	l.exports = result
	l.status = statusCompiled
	return result, nil
}

// Find resolves an import path from this file's position: the export list
// of the target file, or a single export when the path reaches into it.
// ok=false when nothing matches.
func (l *Leaf) Find(path []string) (value.Value, bool, error) {
	if len(path) == 0 {
		return nil, false, nil
	}
	node, remaining, err := l.findUpward(path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	exports, err := node.Exports()
	if err != nil {
		return nil, false, err
	}
	if len(remaining) == 0 {
		return exports, true, nil
	}
	v, ok, err := lookupExport(node, exports, remaining[0])
	return v, ok, err
}

// lookupExport retrieves a single named entry from a file's export list.
func lookupExport(node fileNode, exports value.Value, name string) (value.Value, bool, error) {
	list, ok := exports.(value.List)
	if !ok {
		return nil, false, fmt.Errorf("%s did not return a list of [name value] pairs", node.Location())
	}
	for _, pair := range list.Items {
		kv, ok := pair.(value.List)
		if !ok || len(kv.Items) != 2 {
			return nil, false, fmt.Errorf("%s did not return a list of [name value] pairs", node.Location())
		}
		key, ok := kv.Items[0].(value.List)
		if !ok || !key.IsString() {
			return nil, false, fmt.Errorf("%s did not return a list of [name value] pairs", node.Location())
		}
		if key.AsString() == name {
			return kv.Items[1], true, nil
		}
	}
	return nil, false, nil
}

func renderPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}

package imports

import (
	"fmt"

	"github.com/cwbudde/go-lisplang/internal/value"
)

// container is the shared child-map behavior of folders, packages and
// library roots.
type container struct {
	name     string
	parent   Searchable
	children map[string]Searchable
}

func newContainer(name string, children []Searchable) container {
	m := make(map[string]Searchable, len(children))
	for _, c := range children {
		m[c.Name()] = c
	}
	return container{name: name, children: m}
}

// Name returns the container's name within its parent.
func (c *container) Name() string { return c.name }

func (c *container) setParent(p Searchable) { c.parent = p }

// adopt points every child back at the given self node.
func (c *container) adopt(self Searchable) {
	for _, child := range c.children {
		child.setParent(self)
	}
}

func (c *container) hasChild(name string) bool {
	_, ok := c.children[name]
	return ok
}

func (c *container) byPath(path []string) (fileNode, []string, error) {
	if len(path) == 0 {
		return nil, nil, fmt.Errorf("path ends at %s, which is not a file", c.name)
	}
	child, ok := c.children[path[0]]
	if !ok {
		return nil, nil, fmt.Errorf("%s not found in %s: %w", path[0], c.name, ErrNotFound)
	}
	return child.byPath(path[1:])
}

// Folder is a plain directory: it groups files but takes no part in upward
// name resolution.
type Folder struct {
	container
}

// NewFolder creates a folder node over its children.
func NewFolder(name string, children []Searchable) *Folder {
	f := &Folder{container: newContainer(name, children)}
	f.adopt(f)
	return f
}

func (f *Folder) findUpward(path []string) (fileNode, []string, error) {
	if f.parent == nil {
		return nil, nil, fmt.Errorf("folder %s has no containing library: %w", f.name, ErrNotFound)
	}
	return f.parent.findUpward(path)
}

// Package is a directory marked by a package file. Packages are the unit
// of upward resolution: a path whose first element matches one of the
// package's children resolves inside it, anything else climbs further up.
type Package struct {
	container
}

// NewPackage creates a package node over its children.
func NewPackage(name string, children []Searchable) *Package {
	p := &Package{container: newContainer(name, children)}
	p.adopt(p)
	return p
}

func (p *Package) findUpward(path []string) (fileNode, []string, error) {
	if len(path) > 0 && p.hasChild(path[0]) {
		return p.children[path[0]].byPath(path[1:])
	}
	if p.parent == nil {
		return nil, nil, fmt.Errorf("package %s has no containing library: %w", p.name, ErrNotFound)
	}
	return p.parent.findUpward(path)
}

// HostPackage is a container of host-provided export tables, letting
// host-implemented libraries take part in resolution exactly like lisp
// packages.
type HostPackage struct {
	container
}

// NewHostPackage creates a host package whose entries map names to
// pre-built export lists of [name value] pairs.
func NewHostPackage(name string, entries map[string]value.Value) *HostPackage {
	children := make([]Searchable, 0, len(entries))
	for entryName, exports := range entries {
		children = append(children, &hostLeaf{name: entryName, exports: exports})
	}
	p := &HostPackage{container: newContainer(name, children)}
	p.adopt(p)
	return p
}

func (p *HostPackage) findUpward(path []string) (fileNode, []string, error) {
	if p.parent == nil {
		return nil, nil, fmt.Errorf("host package %s has no containing library: %w", p.name, ErrNotFound)
	}
	return p.parent.findUpward(path)
}

// hostLeaf is a host-provided export table, pre-compiled by construction.
type hostLeaf struct {
	name    string
	parent  Searchable
	exports value.Value
}

func (h *hostLeaf) Name() string { return h.name }

func (h *hostLeaf) setParent(p Searchable) { h.parent = p }

func (h *hostLeaf) Location() string { return "host:" + h.name }

func (h *hostLeaf) Exports() (value.Value, error) { return h.exports, nil }

func (h *hostLeaf) byPath(path []string) (fileNode, []string, error) {
	switch len(path) {
	case 0:
		return h, nil, nil
	case 1:
		return h, path, nil
	default:
		return nil, nil, fmt.Errorf("%s is a host file, cannot resolve %s inside it", h.name, renderPath(path))
	}
}

func (h *hostLeaf) findUpward(path []string) (fileNode, []string, error) {
	if h.parent == nil {
		return nil, nil, fmt.Errorf("host file %s has no containing library: %w", h.name, ErrNotFound)
	}
	return h.parent.findUpward(path)
}

// Library is the root of one source tree.
type Library struct {
	container
}

// NewLibrary creates a library root over its children.
func NewLibrary(children []Searchable) *Library {
	l := &Library{container: newContainer("", children)}
	l.adopt(l)
	return l
}

func (l *Library) findUpward(path []string) (fileNode, []string, error) {
	if l.parent == nil {
		return l.byPath(path)
	}
	if len(path) > 0 && l.hasChild(path[0]) {
		return l.byPath(path)
	}
	return l.parent.findUpward(path)
}

// LibraryWithFallback chains a primary library in front of a fallback
// tree. Lookups go to the primary when its top level knows the first path
// element and to the fallback otherwise.
type LibraryWithFallback struct {
	primary  *Library
	fallback Searchable
}

// NewLibraryWithFallback chains primary onto fallback (a Library or
// another LibraryWithFallback).
func NewLibraryWithFallback(primary *Library, fallback Searchable) *LibraryWithFallback {
	lf := &LibraryWithFallback{primary: primary, fallback: fallback}
	primary.setParent(lf)
	return lf
}

// Name implements Searchable; the chain itself is anonymous.
func (lf *LibraryWithFallback) Name() string { return "" }

func (lf *LibraryWithFallback) setParent(Searchable) {}

func (lf *LibraryWithFallback) byPath(path []string) (fileNode, []string, error) {
	if len(path) > 0 && lf.primary.hasChild(path[0]) {
		return lf.primary.byPath(path)
	}
	return lf.fallback.byPath(path)
}

func (lf *LibraryWithFallback) findUpward(path []string) (fileNode, []string, error) {
	return lf.byPath(path)
}

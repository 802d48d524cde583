package imports

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cwbudde/go-lisplang/internal/value"
)

// This file maps directory trees on disk into the Searchable hierarchy.

// sourceExtension is the file suffix of lisp sources, including the dot.
const sourceExtension = "." + value.FileExtension

// packageMarker is the file whose presence makes a directory a package.
const packageMarker = value.PackageFileName + sourceExtension

// MapLibrary maps the directory at root into a Library. Every *.lisp file
// becomes a lazily compiled leaf using the given compiler; directories
// containing a package.lisp file become packages, other directories plain
// folders.
func MapLibrary(root string, compile CompileFunc) (*Library, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	children, err := mapFolder(abs, compile)
	if err != nil {
		return nil, err
	}
	return NewLibrary(children), nil
}

// MapLibraryChain maps a primary source tree plus an ordered chain of
// fallback library roots. The last root becomes the innermost library.
func MapLibraryChain(primary string, fallbacks []string, compile CompileFunc) (Searchable, error) {
	if len(fallbacks) == 0 {
		return MapLibrary(primary, compile)
	}
	inner, err := MapLibraryChain(fallbacks[0], fallbacks[1:], compile)
	if err != nil {
		return nil, err
	}
	lib, err := MapLibrary(primary, compile)
	if err != nil {
		return nil, err
	}
	return NewLibraryWithFallback(lib, inner), nil
}

// mapFolder builds the child nodes of one directory.
func mapFolder(dir string, compile CompileFunc) ([]Searchable, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot map library folder %s: %w", dir, err)
	}
	// Deterministic tree shape regardless of the directory listing order.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var children []Searchable
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			sub, err := mapFolder(full, compile)
			if err != nil {
				return nil, err
			}
			if isPackageDir(full) {
				children = append(children, NewPackage(entry.Name(), sub))
			} else {
				children = append(children, NewFolder(entry.Name(), sub))
			}
			continue
		}
		if strings.HasSuffix(entry.Name(), sourceExtension) {
			name := strings.TrimSuffix(entry.Name(), sourceExtension)
			children = append(children, NewLeaf(name, full, compile))
		}
	}
	return children, nil
}

// isPackageDir reports whether the directory carries the package marker
// file.
func isPackageDir(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, packageMarker))
	return err == nil
}

// FindLeaf returns the leaf with the given path elements from the library
// root, for locating a program's main file.
func FindLeaf(root Searchable, path []string) (*Leaf, error) {
	node, remaining, err := root.byPath(path)
	if err != nil {
		return nil, err
	}
	if len(remaining) != 0 {
		return nil, fmt.Errorf("%s does not name a file", renderPath(path))
	}
	leaf, ok := node.(*Leaf)
	if !ok {
		return nil, fmt.Errorf("%s is not a lisp source file", renderPath(path))
	}
	return leaf, nil
}

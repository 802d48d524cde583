// Package config loads the lisplang run configuration: where the source
// tree lives, which file is the program entry point, and the chain of
// fallback libraries import resolution falls through to.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the configuration file looked up when no explicit
// path is given.
const DefaultFileName = "lisplang.yaml"

// Config is the run configuration of a lisplang program.
type Config struct {
	// SourceFolder is the root of the primary source tree, relative to
	// the config file unless absolute.
	SourceFolder string `yaml:"sourceFolder"`
	// MainFile names the entry point file inside the source folder,
	// without extension. Nested files use path elements: pkg/main.
	MainFile string `yaml:"mainFile"`
	// LibraryFallback optionally chains fallback libraries.
	LibraryFallback *Fallback `yaml:"libraryFallback,omitempty"`

	// baseDir anchors relative paths; the directory of the config file.
	baseDir string
}

// Fallback is one link of the fallback library chain.
type Fallback struct {
	// Path is the library root, relative to the config file.
	Path string `yaml:"path,omitempty"`
	// AbsPath is the library root as an absolute path; wins over Path.
	AbsPath string `yaml:"abspath,omitempty"`
	// LibraryFallback chains a further fallback behind this one.
	LibraryFallback *Fallback `yaml:"libraryFallback,omitempty"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	cfg.baseDir = filepath.Dir(abs)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SourceFolder == "" {
		return fmt.Errorf("sourceFolder must be set")
	}
	if c.MainFile == "" {
		return fmt.Errorf("mainFile must be set")
	}
	for fb := c.LibraryFallback; fb != nil; fb = fb.LibraryFallback {
		if fb.Path == "" && fb.AbsPath == "" {
			return fmt.Errorf("a libraryFallback entry needs path or abspath")
		}
	}
	return nil
}

// SourceRoot returns the absolute path of the primary source tree.
func (c *Config) SourceRoot() string {
	return c.resolve(c.SourceFolder)
}

// FallbackRoots returns the absolute paths of the fallback library chain,
// outermost first.
func (c *Config) FallbackRoots() []string {
	var roots []string
	for fb := c.LibraryFallback; fb != nil; fb = fb.LibraryFallback {
		if fb.AbsPath != "" {
			roots = append(roots, fb.AbsPath)
		} else {
			roots = append(roots, c.resolve(fb.Path))
		}
	}
	return roots
}

// MainPath returns the main file as import path elements.
func (c *Config) MainPath() []string {
	return splitPathElements(c.MainFile)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.baseDir, path)
}

// splitPathElements splits "pkg/main" or "pkg.main" into path elements.
func splitPathElements(path string) []string {
	var elems []string
	current := ""
	for _, r := range path {
		if r == '/' || r == '.' {
			if current != "" {
				elems = append(elems, current)
				current = ""
			}
			continue
		}
		current += string(r)
	}
	if current != "" {
		elems = append(elems, current)
	}
	return elems
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/go-lisplang/internal/config"
	"github.com/cwbudde/go-lisplang/internal/imports"
	"github.com/cwbudde/go-lisplang/internal/interp"
	"github.com/spf13/cobra"
)

var (
	evalExpr   string
	configPath string
	trace      bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a lisplang file or expression",
	Long: `Execute a lisplang program from a file, an inline expression or a
project configuration.

Examples:
  # Run a script file
  lisplang run script.lisp

  # Evaluate an inline expression
  lisplang run -e "[sum 1 2]"

  # Run the main file of a configured project
  lisplang run --config lisplang.yaml

  # Run with evaluator step tracing
  lisplang run --trace script.lisp`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().StringVar(&configPath, "config", "", "run the project described by a lisplang.yaml")
	runCmd.Flags().BoolVar(&trace, "trace", false, "trace evaluator steps (for debugging)")
}

func newInterpreter() *interp.Interp {
	var opts []interp.Option
	if trace {
		opts = append(opts, interp.WithTrace(os.Stderr))
	}
	return interp.New(os.Stdout, opts...)
}

func runScript(_ *cobra.Command, args []string) error {
	switch {
	case evalExpr != "":
		return runInline(evalExpr)
	case configPath != "":
		return runProject(configPath)
	case len(args) == 1:
		return runFile(args[0])
	default:
		if _, err := os.Stat(config.DefaultFileName); err == nil {
			return runProject(config.DefaultFileName)
		}
		return fmt.Errorf("provide a file path, use -e for inline code, or add a %s", config.DefaultFileName)
	}
}

// runInline evaluates an expression with no surrounding source tree.
func runInline(source string) error {
	program, err := parseSource(source, "<eval>")
	if err != nil {
		return err
	}
	in := newInterpreter()
	result, err := in.Run(program, nil)
	return reportResult(result, err)
}

// runFile executes a single source file. The file's directory becomes the
// library root so sibling files are importable.
func runFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Running %s\n", abs)
	}

	in := newInterpreter()
	library, err := imports.MapLibrary(filepath.Dir(abs), newCompiler(in))
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	leaf, err := imports.FindLeaf(library, []string{name})
	if err != nil {
		return fmt.Errorf("cannot locate %s in its library: %w", path, err)
	}
	return reportLeaf(leaf)
}

// runProject executes the main file of a configured project with its
// fallback library chain.
func runProject(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	in := newInterpreter()
	compile := newCompiler(in)
	root, err := imports.MapLibraryChain(cfg.SourceRoot(), cfg.FallbackRoots(), compile)
	if err != nil {
		return err
	}
	leaf, err := imports.FindLeaf(root, cfg.MainPath())
	if err != nil {
		return fmt.Errorf("cannot locate main file %s: %w", cfg.MainFile, err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Running %s\n", leaf.Path())
	}
	return reportLeaf(leaf)
}

func reportLeaf(leaf *imports.Leaf) error {
	result, err := leaf.Exports()
	return reportResult(result, err)
}

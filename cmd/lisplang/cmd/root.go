package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "lisplang",
	Short: "lisplang interpreter",
	Long: `go-lisplang is a Go implementation of the lisplang scripting language.

lisplang is a small homoiconic s-expression language with:
  - User-defined macros expanded in a dedicated pre-pass
  - Algebraic effect handlers with explicit state threading
  - Immutable data and a trampolined, stackless evaluator
  - Lazily compiled imports resolved across library chains`,
	Version: Version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

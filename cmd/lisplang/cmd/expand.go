package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-lisplang/internal/errors"
	"github.com/spf13/cobra"
)

var expandExpression bool

var expandCmd = &cobra.Command{
	Use:   "expand [file]",
	Short: "Macro-expand lisplang source code and display the result",
	Long: `Run the macro expansion pre-pass over lisplang source code and display
the expanded program. Useful for inspecting what a macro rewrites to.

If no file is provided, reads from stdin.
Use -e to expand a single expression from the command line.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExpand,
}

func init() {
	rootCmd.AddCommand(expandCmd)

	expandCmd.Flags().BoolVarP(&expandExpression, "expression", "e", false, "expand an expression from the command line")
}

func runExpand(_ *cobra.Command, args []string) error {
	input, filename, err := readInput(args, expandExpression)
	if err != nil {
		return err
	}
	program, err := parseSource(input, filename)
	if err != nil {
		return err
	}

	in := newInterpreter()
	expanded, err := in.Demacro(in.NewMacroFrame(nil).WithExecutionState(program))
	if err != nil {
		var evalErr *errors.EvalError
		if asEvalError(err, &evalErr) {
			fmt.Fprint(os.Stderr, evalErr.Format(true))
			return fmt.Errorf("macro expansion failed")
		}
		return err
	}
	serialized, err := expanded.Serialize()
	if err != nil {
		return err
	}
	fmt.Println(serialized)
	return nil
}

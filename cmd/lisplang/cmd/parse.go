package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var parseExpression bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse lisplang source code and display the LLQ tree",
	Long: `Parse lisplang source code and display the parsed list/literal/quoted-name
tree in its canonical serialization.

If no file is provided, reads from stdin.
Use -e to parse a single expression from the command line.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVarP(&parseExpression, "expression", "e", false, "parse an expression from the command line")
}

func runParse(_ *cobra.Command, args []string) error {
	input, filename, err := readInput(args, parseExpression)
	if err != nil {
		return err
	}
	program, err := parseSource(input, filename)
	if err != nil {
		return err
	}
	serialized, err := program.Serialize()
	if err != nil {
		return err
	}
	fmt.Println(serialized)
	return nil
}

// readInput resolves the common input conventions: inline expression, file
// argument, or stdin.
func readInput(args []string, inline bool) (input, filename string, err error) {
	if inline {
		if len(args) == 0 {
			return "", "", fmt.Errorf("no expression provided")
		}
		return args[0], "<expression>", nil
	}
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("error reading file: %w", err)
		}
		return string(data), args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", fmt.Errorf("error reading stdin: %w", err)
	}
	return string(data), "<stdin>", nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/igfraga/go-conflake/internal/ast"
	"github.com/igfraga/go-conflake/pkg/conflake"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a Conflake file and print the top-level units",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(_ *cobra.Command, args []string) error {
	source, err := readSource(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return err
	}

	top, err := conflake.Parse(source)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	fmt.Print(ast.Print(top))
	return nil
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/igfraga/go-conflake/internal/lexer"
)

var lexPreserveComments bool

var lexCmd = &cobra.Command{
	Use:   "lex <file>",
	Short: "Tokenize a Conflake file and print the token stream",
	Args:  cobra.ExactArgs(1),
	RunE:  runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().BoolVar(&lexPreserveComments, "comments", false, "keep comment tokens in the output")
}

func runLex(_ *cobra.Command, args []string) error {
	source, err := readSource(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return err
	}

	var opts []lexer.Option
	if lexPreserveComments {
		opts = append(opts, lexer.WithPreserveComments(true))
	}
	tokens, err := lexer.Lex(source, opts...)
	if err != nil {
		fmt.Printf("Lexer error: %v\n", err)
		return err
	}

	var sb strings.Builder
	lexer.Print(&sb, tokens)
	fmt.Print(sb.String())
	return nil
}

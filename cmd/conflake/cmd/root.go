// Package cmd implements the conflake command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/igfraga/go-conflake/pkg/conflake"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	sourceFile string
	dumpIR     bool
)

var rootCmd = &cobra.Command{
	Use:   "conflake -f <file>",
	Short: "Conflake compiler and JIT",
	Long: `conflake compiles and runs programs in the Conflake expression
language: a source file is lexed, parsed, type checked, lowered to IR,
optimized and JIT-evaluated. The value of the final top-level expression
is printed as the program's result.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runFile,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.Flags().StringVarP(&sourceFile, "file", "f", "", "path to the source file to run")
	rootCmd.Flags().BoolVar(&dumpIR, "dump-ir", false, "print the optimized IR module before evaluating")
}

func runFile(_ *cobra.Command, _ []string) error {
	if sourceFile == "" {
		fmt.Println("Error: no input file; use -f <file>")
		return fmt.Errorf("missing --file")
	}

	source, err := readSource(sourceFile)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return err
	}

	var opts []conflake.Option
	if dumpIR {
		opts = append(opts, conflake.WithDumpWriter(os.Stderr))
	}

	result, err := conflake.Run(source, opts...)
	if err != nil {
		// One line, stage-prefixed, on standard output.
		fmt.Println(err.Error())
		return err
	}

	fmt.Println(result.String())
	return nil
}

func readSource(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return string(content), nil
}

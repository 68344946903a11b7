package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vc8/codegen"
	"vc8/lex"
	"vc8/parse"
)

func newCompileCmd() *cobra.Command {
	var output string
	var trace bool

	cmd := &cobra.Command{
		Use:   "compile <source.c8>",
		Short: "translate a C-like source file into assembly text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("vc8: reading %s: %w", args[0], err)
			}

			log := logger()
			if trace {
				log.Verbose = true
			}

			tokens, err := lex.Lex(string(source))
			if err != nil {
				return err
			}
			if trace {
				log.Stage("lexer", fmt.Sprintf("%d tokens", len(tokens)))
			}

			tree, err := parse.Parse(tokens)
			if err != nil {
				return err
			}
			if trace {
				log.Stage("parser", fmt.Sprintf("%d top-level statements", len(tree.Statements)))
			}

			asmText, err := codegen.Generate(tree)
			if err != nil {
				return err
			}
			if trace {
				log.Stage("codegen", asmText)
			}

			if output == "" {
				fmt.Print(asmText)
				return nil
			}
			return os.WriteFile(output, []byte(asmText), 0o644)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write assembly to this file instead of stdout")
	cmd.Flags().BoolVar(&trace, "trace", false, "print each pipeline stage to stderr")
	return cmd
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vc8/asm"
)

func newAssembleCmd() *cobra.Command {
	var output string
	var lineComments bool

	cmd := &cobra.Command{
		Use:   "assemble <source.asm>",
		Short: "pack assembly text into a binary image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("vc8: reading %s: %w", args[0], err)
			}

			result, err := asm.Assemble(string(source), asm.Options{LineComments: lineComments})
			if err != nil {
				return err
			}

			logger().Tracef("assembled %d bytes from %s", len(result.Image), args[0])

			if output == "" {
				output = args[0] + ".bin"
			}
			return os.WriteFile(output, result.Image, 0o644)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (defaults to <input>.bin)")
	cmd.Flags().BoolVar(&lineComments, "symbols", false, "collect source-line debug symbols while assembling (they are not written to the output file)")
	return cmd
}

package main

import (
	"github.com/spf13/cobra"

	"vc8/internal/diag"
)

var verbose bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vc8",
		Short: "toolchain for the 8-bit virtual computer: compile, assemble, run, debug",
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline trace output to stderr")

	root.AddCommand(newCompileCmd())
	root.AddCommand(newAssembleCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newDebugCmd())
	return root
}

func logger() *diag.Logger {
	return diag.New(verbose)
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vc8/vm"
)

func newRunCmd() *cobra.Command {
	var portsDir string

	cmd := &cobra.Command{
		Use:   "run <program>",
		Short: "run a .c8, .asm, or binary image to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, symbols, err := loadImage(args[0])
			if err != nil {
				return err
			}
			logger().Tracef("loaded %d bytes from %s", len(image), args[0])

			opts := []vm.Option{vm.WithSymbols(symbols)}
			if portsDir != "" {
				fp, err := newFilePorts(context.Background(), portsDir)
				if err != nil {
					return err
				}
				opts = append(opts, vm.WithPorts(fp))
			}

			machine, err := vm.New(image, opts...)
			if err != nil {
				return err
			}
			if err := machine.Run(); err != nil {
				return fmt.Errorf("vc8: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&portsDir, "ports-dir", "", "back the eight I/O ports with files in this directory")
	return cmd
}

// Command vc8 is the toolchain entry point: compile .c8 source to assembly,
// assemble assembly to a binary image, run or interactively debug an image.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"vc8/asm"
	"vc8/codegen"
	"vc8/lex"
	"vc8/parse"
)

// loadImage runs a file through as much of the pipeline as its extension
// requires: .c8 source goes through lex/parse/codegen/assemble, .asm goes
// through assemble only, anything else is treated as an already-assembled
// binary image.
func loadImage(path string) ([]byte, map[uint8]string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("vc8: reading %s: %w", path, err)
	}

	switch filepath.Ext(path) {
	case ".c8":
		tokens, err := lex.Lex(string(contents))
		if err != nil {
			return nil, nil, err
		}
		tree, err := parse.Parse(tokens)
		if err != nil {
			return nil, nil, err
		}
		asmText, err := codegen.Generate(tree)
		if err != nil {
			return nil, nil, err
		}
		result, err := asm.Assemble(asmText, asm.Options{LineComments: true})
		if err != nil {
			return nil, nil, err
		}
		return result.Image, result.Symbols, nil

	case ".asm":
		result, err := asm.Assemble(string(contents), asm.Options{LineComments: true})
		if err != nil {
			return nil, nil, err
		}
		return result.Image, result.Symbols, nil

	default:
		return contents, nil, nil
	}
}

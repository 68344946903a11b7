package asm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vc8/asm"
	"vc8/isa"
)

func TestAssembleBasicProgram(t *testing.T) {
	src := `
; load two values and add them
MOV R0, 3
MOV R1, 4
ADD R0, R1
OUT R0
HALT
`
	res, err := asm.Assemble(src, asm.Options{})
	require.NoError(t, err)

	var window [2]byte
	copy(window[:], res.Image)
	instr, err := isa.Decode(window)
	require.NoError(t, err)
	assert.Equal(t, isa.MOV, instr.Mnemonic)
	assert.Equal(t, uint8(3), instr.Imm.ToUint8())
}

func TestAssignDirective(t *testing.T) {
	src := `
%ASSIGN LIMIT 200
MOV R0, LIMIT
HALT
`
	res, err := asm.Assemble(src, asm.Options{})
	require.NoError(t, err)

	var window [2]byte
	copy(window[:], res.Image)
	instr, err := isa.Decode(window)
	require.NoError(t, err)
	assert.Equal(t, uint8(200), instr.Imm.ToUint8())
}

func TestOperandForms(t *testing.T) {
	cases := map[string]uint8{
		"#00001010": 10,
		"0x0A":      10,
		"10":        10,
	}
	for operand, want := range cases {
		src := "MOV R0, " + operand + "\nHALT\n"
		res, err := asm.Assemble(src, asm.Options{})
		require.NoError(t, err)
		var window [2]byte
		copy(window[:], res.Image)
		instr, err := isa.Decode(window)
		require.NoError(t, err)
		assert.Equal(t, want, instr.Imm.ToUint8(), operand)
	}
}

func TestPortOutOfRangeIsRejected(t *testing.T) {
	_, err := asm.Assemble("WPRT R0, 9\nHALT\n", asm.Options{})
	assert.Error(t, err)
}

func TestUnknownMnemonicIsRejected(t *testing.T) {
	_, err := asm.Assemble("FROB R0, R1\nHALT\n", asm.Options{})
	assert.Error(t, err)
}

func TestLineCommentsRecordSymbols(t *testing.T) {
	res, err := asm.Assemble("MOV R0, 1\nHALT\n", asm.Options{LineComments: true})
	require.NoError(t, err)
	assert.Equal(t, "MOV R0, 1", res.Symbols[0])
}

package isa_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vc8/bitbyte"
	"vc8/cpu"
	"vc8/isa"
)

func roundTrip(t *testing.T, in isa.Instruction) isa.Instruction {
	t.Helper()
	bytes, err := isa.Encode(in)
	require.NoError(t, err)
	require.Len(t, bytes, isa.Width(in.Mnemonic))

	var window [2]byte
	copy(window[:], bytes)
	out, err := isa.Decode(window)
	require.NoError(t, err)
	return out
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []isa.Instruction{
		{Mnemonic: isa.ADD, Reg: cpu.R0, Reg2: cpu.R1},
		{Mnemonic: isa.SUB, Reg: cpu.R2, Reg2: cpu.R3},
		{Mnemonic: isa.AND, Reg: cpu.R1, Reg2: cpu.R0},
		{Mnemonic: isa.NOT, Reg: cpu.R3},
		{Mnemonic: isa.RPRT, Reg: cpu.R0, Port: 3},
		{Mnemonic: isa.WPRT, Reg: cpu.R1, Port: 7},
		{Mnemonic: isa.STR, Reg: cpu.R2, Addr: 200},
		{Mnemonic: isa.LDR, Reg: cpu.R0, Addr: 5},
		{Mnemonic: isa.MOV, Reg: cpu.R1, Imm: bitbyte.FromUint8(42)},
		{Mnemonic: isa.CPY, Reg: cpu.R0, Reg2: cpu.R3},
		{Mnemonic: isa.SHL, Reg: cpu.R2, Imm: bitbyte.FromUint8(3)},
		{Mnemonic: isa.SHR, Reg: cpu.R2, Imm: bitbyte.FromUint8(3)},
		{Mnemonic: isa.OUT, Reg: cpu.R1},
		{Mnemonic: isa.MSG, Reg: cpu.R1},
		{Mnemonic: isa.INC, Reg: cpu.R3},
		{Mnemonic: isa.DEC, Reg: cpu.R3},
		{Mnemonic: isa.JMP, Addr: 10},
		{Mnemonic: isa.JMPNEG, Addr: 11},
		{Mnemonic: isa.JMPZRO, Addr: 12},
		{Mnemonic: isa.JMPABV, Addr: 13},
		{Mnemonic: isa.CMPNEG, Reg: cpu.R0},
		{Mnemonic: isa.CMPZRO, Reg: cpu.R1},
		{Mnemonic: isa.CMPABV, Reg: cpu.R2},
		{Mnemonic: isa.HALT},
	}

	for _, c := range cases {
		c := c
		t.Run(string(c.Mnemonic), func(t *testing.T) {
			out := roundTrip(t, c)
			assert.Equal(t, c.Mnemonic, out.Mnemonic)
			assert.Equal(t, c.Reg, out.Reg)
			if isa.TakesRegister2(c.Mnemonic) {
				assert.Equal(t, c.Reg2, out.Reg2)
			}
			assert.Equal(t, isa.Width(c.Mnemonic), out.Width)
		})
	}
}

func TestPortOutOfRangeRejected(t *testing.T) {
	_, err := isa.Encode(isa.Instruction{Mnemonic: isa.WPRT, Reg: cpu.R0, Port: 8})
	assert.Error(t, err)
}

func TestHaltIsAllOnes(t *testing.T) {
	bytes, err := isa.Encode(isa.Instruction{Mnemonic: isa.HALT})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF}, bytes)
}

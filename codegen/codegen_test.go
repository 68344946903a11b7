package codegen_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vc8/asm"
	"vc8/codegen"
	"vc8/lex"
	"vc8/parse"
	"vc8/vm"
)

func compileAndRun(t *testing.T, source string) string {
	t.Helper()
	tokens, err := lex.Lex(source)
	require.NoError(t, err)
	tree, err := parse.Parse(tokens)
	require.NoError(t, err)
	asmText, err := codegen.Generate(tree)
	require.NoError(t, err)
	result, err := asm.Assemble(asmText, asm.Options{})
	require.NoErrorf(t, err, "generated assembly:\n%s", asmText)

	var stdout bytes.Buffer
	machine, err := vm.New(result.Image, vm.WithOutput(&stdout))
	require.NoError(t, err)
	require.NoErrorf(t, machine.Run(), "generated assembly:\n%s", asmText)
	return stdout.String()
}

func TestArithmeticAndOut(t *testing.T) {
	out := compileAndRun(t, `
uint8 x = 3;
uint8 y = 4;
out(x + y);
`)
	assert.Equal(t, "00000111", out)
}

func TestIfWithoutElseSkipsBody(t *testing.T) {
	out := compileAndRun(t, `
uint8 x = 1;
if (x == 0) {
	out(99);
}
out(x);
`)
	assert.Equal(t, "00000001", out)
}

func TestIfBodyRuns(t *testing.T) {
	out := compileAndRun(t, `
uint8 x = 0;
if (x == 0) {
	out(42);
}
`)
	assert.Equal(t, "00101010", out)
}

func TestWhileLoopCountsDown(t *testing.T) {
	out := compileAndRun(t, `
uint8 i = 3;
while (i != 0) {
	out(i);
	i = i - 1;
}
`)
	assert.Equal(t, "000000110000001000000001", out)
}

func TestArrayLiteralIndexing(t *testing.T) {
	out := compileAndRun(t, `
uint8[] arr = { 10, 20, 30 };
out(arr[1]);
`)
	assert.Equal(t, "00010100", out)
}

func TestComparisonOperators(t *testing.T) {
	out := compileAndRun(t, `
uint8 a = 5;
uint8 b = 3;
out(a > b);
out(a < b);
out(a >= 5);
out(a <= 4);
`)
	assert.Equal(t, "11111111000000001111111100000000", out)
}

func TestPostIncrement(t *testing.T) {
	out := compileAndRun(t, `
uint8 x = 5;
x++;
out(x);
`)
	assert.Equal(t, "00000110", out)
}

func TestToCharBuiltinConvertsDigitToAscii(t *testing.T) {
	out := compileAndRun(t, `
uint8 c = 7;
print(to_char(c));
`)
	assert.Equal(t, "7", out)
}

func TestBoolDeclType(t *testing.T) {
	out := compileAndRun(t, `
bool flag = true;
out(flag);
`)
	assert.Equal(t, "11111111", out)
}

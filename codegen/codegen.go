// Package codegen lowers a parse.Node tree into assembly text for package
// asm. It runs in a single pass: each statement is translated and appended
// to a running line buffer, and a statement that needs to know its own byte
// address (for an if/while jump target) gets it by re-assembling everything
// emitted so far and measuring the resulting image length, rather than
// carrying a separate address-tracking pass.
package codegen

import (
	"fmt"
	"strings"

	"vc8/asm"
	"vc8/cpu"
	"vc8/parse"
)

type variable struct {
	addr    uint8
	isArray bool
	size    int
}

// Generator holds the state threaded through one source-to-assembly pass.
type Generator struct {
	vars     map[string]*variable
	nextAddr int // descends from 254; goes negative when variables run out
	lines    []string
	free     []cpu.Register // scratch register pool, used as a small stack
}

// New returns a Generator ready to translate a program.
func New() *Generator {
	return &Generator{
		vars:     map[string]*variable{},
		nextAddr: 254,
		free:     []cpu.Register{cpu.R3, cpu.R2, cpu.R1, cpu.R0},
	}
}

// Generate lowers a full program into assembly source text terminated by
// HALT.
func Generate(tree *parse.Node) (string, error) {
	g := New()
	for _, stmt := range tree.Statements {
		if err := g.genStmt(stmt); err != nil {
			return "", err
		}
	}
	g.emit("HALT")
	return strings.Join(g.lines, "\n") + "\n", nil
}

func (g *Generator) emit(format string, args ...any) {
	g.lines = append(g.lines, fmt.Sprintf(format, args...))
}

// cursor reports the byte address the next emitted instruction will land at,
// by assembling everything emitted so far and measuring the image. Forward
// jump targets are written as numeric placeholders first and patched once
// the jump's destination is known; a placeholder's value never changes how
// many bytes the operand occupies, so measuring while a placeholder is still
// in place yields the same length the final patched program will have.
func (g *Generator) cursor() (uint8, error) {
	res, err := asm.Assemble(strings.Join(g.lines, "\n"), asm.Options{})
	if err != nil {
		return 0, fmt.Errorf("codegen: internal: re-assembling emitted code: %w", err)
	}
	return uint8(len(res.Image)), nil
}

func (g *Generator) alloc() (cpu.Register, error) {
	if len(g.free) == 0 {
		return 0, fmt.Errorf("codegen: expression too complex, ran out of scratch registers")
	}
	r := g.free[len(g.free)-1]
	g.free = g.free[:len(g.free)-1]
	return r, nil
}

func (g *Generator) release(r cpu.Register) {
	g.free = append(g.free, r)
}

func (g *Generator) allocVariable(name string, size int) (*variable, error) {
	if g.nextAddr-size+1 < 0 {
		return nil, fmt.Errorf("codegen: out of RAM allocating %q", name)
	}
	base := g.nextAddr - size + 1
	g.nextAddr -= size
	v := &variable{addr: uint8(base), isArray: size > 1, size: size}
	g.vars[name] = v
	return v, nil
}

func (g *Generator) genStmt(node *parse.Node) error {
	switch node.Kind {
	case parse.KindBlock:
		for _, stmt := range node.Statements {
			if err := g.genStmt(stmt); err != nil {
				return err
			}
		}
		return nil

	case parse.KindDecl:
		return g.genDecl(node)

	case parse.KindAssign:
		return g.genAssign(node)

	case parse.KindIf:
		return g.genIf(node)

	case parse.KindWhile:
		return g.genWhile(node)

	case parse.KindCall:
		return g.genVoidCall(node)

	case parse.KindUnary:
		var r cpu.Register
		var err error
		if node.Op == "post++" || node.Op == "post--" {
			r, err = g.genIncDec(node)
		} else {
			r, err = g.genExpr(node)
		}
		if err != nil {
			return err
		}
		g.release(r)
		return nil

	default:
		r, err := g.genExpr(node)
		if err != nil {
			return err
		}
		g.release(r)
		return nil
	}
}

func (g *Generator) genDecl(node *parse.Node) error {
	if node.IsArray {
		elements := node.Init.Elements
		v, err := g.allocVariable(node.Name, len(elements))
		if err != nil {
			return err
		}
		for i, elem := range elements {
			if elem.Kind == parse.KindLiteral {
				if err := checkLiteralType(node.TypeName, elem); err != nil {
					return err
				}
			}
			r, err := g.genExpr(elem)
			if err != nil {
				return err
			}
			g.emit("STR %s, %d", r, v.addr+uint8(i))
			g.release(r)
		}
		return nil
	}

	v, err := g.allocVariable(node.Name, 1)
	if err != nil {
		return err
	}
	if node.Init == nil {
		return nil
	}
	if node.Init.Kind == parse.KindLiteral {
		if err := checkLiteralType(node.TypeName, node.Init); err != nil {
			return err
		}
	}
	r, err := g.genExpr(node.Init)
	if err != nil {
		return err
	}
	g.emit("STR %s, %d", r, v.addr)
	g.release(r)
	return nil
}

// checkLiteralType enforces the one type check this single-pass compiler
// can make statically: a literal initializer whose own written form
// (number, char or bool) disagrees with the declared type is a fatal
// mismatch. Non-literal initializers aren't checked — following their
// value back to a type would need data-flow analysis this pass doesn't do.
func checkLiteralType(typeName string, lit *parse.Node) error {
	switch typeName {
	case "bool":
		if lit.LiteralKind != "bool" {
			return fmt.Errorf("codegen: line %d: type mismatch: %s literal assigned to a bool", lit.Line, lit.LiteralKind)
		}
	case "char", "uint8":
		if lit.LiteralKind == "bool" {
			return fmt.Errorf("codegen: line %d: type mismatch: bool literal assigned to a %s", lit.Line, typeName)
		}
	}
	return nil
}

// lvalueAddr resolves the concrete RAM address an Ident or Index node
// refers to. Subscripts must be literal constants: the instruction set has
// no indexed-addressing mode, so only compile-time-known offsets can be
// turned into a fixed STR/LDR address.
func (g *Generator) lvalueAddr(node *parse.Node) (uint8, error) {
	switch node.Kind {
	case parse.KindIdent:
		v, ok := g.vars[node.Name]
		if !ok {
			return 0, fmt.Errorf("codegen: line %d: undeclared variable %q", node.Line, node.Name)
		}
		return v.addr, nil

	case parse.KindIndex:
		if node.Array.Kind != parse.KindIdent {
			return 0, fmt.Errorf("codegen: line %d: subscript target must be a variable", node.Line)
		}
		v, ok := g.vars[node.Array.Name]
		if !ok {
			return 0, fmt.Errorf("codegen: line %d: undeclared variable %q", node.Line, node.Array.Name)
		}
		if node.Subscript.Kind != parse.KindLiteral {
			return 0, fmt.Errorf("codegen: line %d: array subscripts must be constant", node.Line)
		}
		offset := int(node.Subscript.NumberValue)
		if offset >= v.size {
			return 0, fmt.Errorf("codegen: line %d: index %d out of bounds for array of size %d", node.Line, offset, v.size)
		}
		return v.addr + uint8(offset), nil

	default:
		return 0, fmt.Errorf("codegen: line %d: not an assignable expression", node.Line)
	}
}

func (g *Generator) genAssign(node *parse.Node) error {
	addr, err := g.lvalueAddr(node.Target)
	if err != nil {
		return err
	}
	r, err := g.genExpr(node.Value)
	if err != nil {
		return err
	}
	g.emit("STR %s, %d", r, addr)
	g.release(r)
	return nil
}

func (g *Generator) genIncDec(node *parse.Node) (cpu.Register, error) {
	addr, err := g.lvalueAddr(node.Operand)
	if err != nil {
		return 0, err
	}
	r, err := g.alloc()
	if err != nil {
		return 0, err
	}
	g.emit("LDR %s, %d", r, addr)
	if node.Op == "post++" {
		g.emit("INC %s", r)
	} else {
		g.emit("DEC %s", r)
	}
	g.emit("STR %s, %d", r, addr)
	return r, nil
}

// genIf and genWhile both need a jump instruction whose target address isn't
// known until the body has been generated. Each reserves a placeholder line,
// generates the body (whose own internal jumps see a correct, growing
// cursor because the placeholder already occupies its final width), then
// rewrites the placeholder once the real address is known.
func (g *Generator) genIf(node *parse.Node) error {
	if err := g.genCondition(node.Cond); err != nil {
		return err
	}
	jmpLine := len(g.lines)
	g.emit("JMP_ZRO %d", 0)

	if err := g.genStmt(node.Body); err != nil {
		return err
	}

	end, err := g.cursor()
	if err != nil {
		return err
	}
	g.lines[jmpLine] = fmt.Sprintf("JMP_ZRO %d", end)
	return nil
}

func (g *Generator) genWhile(node *parse.Node) error {
	loopStart, err := g.cursor()
	if err != nil {
		return err
	}

	if err := g.genCondition(node.Cond); err != nil {
		return err
	}
	jmpLine := len(g.lines)
	g.emit("JMP_ZRO %d", 0)

	if err := g.genStmt(node.Body); err != nil {
		return err
	}
	g.emit("JMP %d", loopStart)

	end, err := g.cursor()
	if err != nil {
		return err
	}
	g.lines[jmpLine] = fmt.Sprintf("JMP_ZRO %d", end)
	return nil
}

// genCondition evaluates cond into a register and sets the zero flag to
// reflect whether it was false (0), via a throwaway subtraction against a
// zero register. The caller follows immediately with a JMP_ZRO.
func (g *Generator) genCondition(cond *parse.Node) error {
	r, err := g.genExpr(cond)
	if err != nil {
		return err
	}
	zero, err := g.alloc()
	if err != nil {
		return err
	}
	g.emit("MOV %s, 0", zero)
	g.emit("SUB %s, %s", r, zero)
	g.release(zero)
	g.release(r)
	return nil
}

// logicalNot complements a boolean value in place. Every boolean vc8
// produces is canonically all-zero or all-one bits (bool true literals,
// CMP_ZRO/CMP_NEG/CMP_ABV results), so the ISA's bitwise NOT instruction
// doubles as logical negation with no extra register needed.
func (g *Generator) logicalNot(r cpu.Register) (cpu.Register, error) {
	g.emit("NOT %s", r)
	return r, nil
}

func (g *Generator) genExpr(node *parse.Node) (cpu.Register, error) {
	switch node.Kind {
	case parse.KindLiteral:
		r, err := g.alloc()
		if err != nil {
			return 0, err
		}
		g.emit("MOV %s, %d", r, node.NumberValue)
		return r, nil

	case parse.KindIdent:
		addr, err := g.lvalueAddr(node)
		if err != nil {
			return 0, err
		}
		r, err := g.alloc()
		if err != nil {
			return 0, err
		}
		g.emit("LDR %s, %d", r, addr)
		return r, nil

	case parse.KindIndex:
		addr, err := g.lvalueAddr(node)
		if err != nil {
			return 0, err
		}
		r, err := g.alloc()
		if err != nil {
			return 0, err
		}
		g.emit("LDR %s, %d", r, addr)
		return r, nil

	case parse.KindUnary:
		return g.genUnary(node)

	case parse.KindBinary:
		return g.genBinary(node)

	case parse.KindCall:
		return g.genValueCall(node)
	}
	return 0, fmt.Errorf("codegen: line %d: expression kind %v cannot be evaluated", node.Line, node.Kind)
}

func (g *Generator) genUnary(node *parse.Node) (cpu.Register, error) {
	switch node.Op {
	case "post++", "post--":
		return g.genIncDec(node)
	case "!":
		r, err := g.genExpr(node.Operand)
		if err != nil {
			return 0, err
		}
		return g.logicalNot(r)
	case "-":
		r, err := g.genExpr(node.Operand)
		if err != nil {
			return 0, err
		}
		zero, err := g.alloc()
		if err != nil {
			return 0, err
		}
		g.emit("MOV %s, 0", zero)
		g.emit("SUB %s, %s", zero, r)
		g.release(r)
		return zero, nil
	}
	return 0, fmt.Errorf("codegen: line %d: unknown unary operator %q", node.Line, node.Op)
}

func (g *Generator) genBinary(node *parse.Node) (cpu.Register, error) {
	switch node.Op {
	case "+":
		return g.genArith(node, "ADD")
	case "-":
		return g.genArith(node, "SUB")
	case "*":
		return g.genArith(node, "MUL")
	case "/":
		return g.genArith(node, "DIV")
	case "&", "&&":
		return g.genArith(node, "AND")
	case "|", "||":
		return g.genArith(node, "OR")
	case "^":
		return g.genArith(node, "XOR")
	case "<<", ">>":
		return g.genShift(node)
	case "==", "!=", "<", "<=", ">", ">=":
		return g.genCompare(node)
	}
	return 0, fmt.Errorf("codegen: line %d: unknown binary operator %q", node.Line, node.Op)
}

func (g *Generator) genArith(node *parse.Node, mnemonic string) (cpu.Register, error) {
	l, err := g.genExpr(node.Left)
	if err != nil {
		return 0, err
	}
	r, err := g.genExpr(node.Right)
	if err != nil {
		return 0, err
	}
	g.emit("%s %s, %s", mnemonic, l, r)
	g.release(r)
	return l, nil
}

func (g *Generator) genShift(node *parse.Node) (cpu.Register, error) {
	if node.Right.Kind != parse.KindLiteral {
		return 0, fmt.Errorf("codegen: line %d: shift amount must be a constant", node.Line)
	}
	l, err := g.genExpr(node.Left)
	if err != nil {
		return 0, err
	}
	mnemonic := "SHL"
	if node.Op == ">>" {
		mnemonic = "SHR"
	}
	g.emit("%s %s, %d", mnemonic, l, node.Right.NumberValue)
	return l, nil
}

func (g *Generator) genCompare(node *parse.Node) (cpu.Register, error) {
	l, err := g.genExpr(node.Left)
	if err != nil {
		return 0, err
	}
	r, err := g.genExpr(node.Right)
	if err != nil {
		return 0, err
	}
	g.emit("SUB %s, %s", l, r)
	g.release(r)

	dst, err := g.alloc()
	if err != nil {
		return 0, err
	}
	g.release(l)

	switch node.Op {
	case "==":
		g.emit("CMP_ZRO %s", dst)
		return dst, nil
	case "!=":
		g.emit("CMP_ZRO %s", dst)
		return g.logicalNot(dst)
	case "<":
		g.emit("CMP_NEG %s", dst)
		return dst, nil
	case ">=":
		g.emit("CMP_NEG %s", dst)
		return g.logicalNot(dst)
	case ">":
		g.emit("CMP_ABV %s", dst)
		return dst, nil
	case "<=":
		g.emit("CMP_ABV %s", dst)
		return g.logicalNot(dst)
	}
	return 0, fmt.Errorf("codegen: line %d: unknown comparison operator %q", node.Line, node.Op)
}

// genVoidCall handles builtins used as statements: print, out and
// write_port all perform I/O and produce no usable value. to_char and
// read_port are value-producing (see genValueCall) but may also appear as a
// bare statement, in which case their result is computed and discarded.
func (g *Generator) genVoidCall(node *parse.Node) error {
	switch node.Name {
	case "print":
		if len(node.Args) != 1 {
			return fmt.Errorf("codegen: line %d: print takes exactly one argument", node.Line)
		}
		r, err := g.genExpr(node.Args[0])
		if err != nil {
			return err
		}
		g.emit("MSG %s", r)
		g.release(r)
		return nil

	case "out":
		if len(node.Args) != 1 {
			return fmt.Errorf("codegen: line %d: out takes exactly one argument", node.Line)
		}
		r, err := g.genExpr(node.Args[0])
		if err != nil {
			return err
		}
		g.emit("OUT %s", r)
		g.release(r)
		return nil

	case "write_port":
		if len(node.Args) != 2 || node.Args[0].Kind != parse.KindLiteral {
			return fmt.Errorf("codegen: line %d: write_port(port, value) needs a constant port", node.Line)
		}
		r, err := g.genExpr(node.Args[1])
		if err != nil {
			return err
		}
		g.emit("WPRT %s, %d", r, node.Args[0].NumberValue)
		g.release(r)
		return nil

	case "read_port", "to_char":
		r, err := g.genValueCall(node)
		if err != nil {
			return err
		}
		g.release(r)
		return nil
	}
	return fmt.Errorf("codegen: line %d: unknown builtin %q", node.Line, node.Name)
}

// genValueCall handles builtins used in expression position. read_port
// reads an I/O port into a register; to_char converts a single decimal
// digit (0..9) to its ASCII code point by adding the '0' offset.
func (g *Generator) genValueCall(node *parse.Node) (cpu.Register, error) {
	switch node.Name {
	case "read_port":
		if len(node.Args) != 1 || node.Args[0].Kind != parse.KindLiteral {
			return 0, fmt.Errorf("codegen: line %d: read_port(port) needs a constant port", node.Line)
		}
		r, err := g.alloc()
		if err != nil {
			return 0, err
		}
		g.emit("RPRT %s, %d", r, node.Args[0].NumberValue)
		return r, nil

	case "to_char":
		if len(node.Args) != 1 {
			return 0, fmt.Errorf("codegen: line %d: to_char takes exactly one argument", node.Line)
		}
		digit, err := g.genExpr(node.Args[0])
		if err != nil {
			return 0, err
		}
		base, err := g.alloc()
		if err != nil {
			g.release(digit)
			return 0, err
		}
		g.emit("MOV %s, 48", base)
		g.emit("ADD %s, %s", base, digit)
		g.release(digit)
		return base, nil
	}
	return 0, fmt.Errorf("codegen: line %d: %q has no return value", node.Line, node.Name)
}

package vm

import (
	"bytes"
	"strings"
	"testing"
)

func mustDef(t *testing.T, name string) *Def {
	t.Helper()
	d, ok := Lookup(name)
	if !ok {
		t.Fatalf("no such opcode %q", name)
	}
	return d
}

func in(t *testing.T, opcode string, args ...Arg) Instruction {
	d := mustDef(t, opcode)
	return Instruction{Opcode: d.Name, Args: args, Def: d}
}

func runProgram(t *testing.T, prog []Instruction, input string) (*Context, string, error) {
	t.Helper()
	var out bytes.Buffer
	ctx := NewContext(prog, strings.NewReader(input), &out)
	err := ctx.Run()
	return ctx, out.String(), err
}

func TestRunMoveAndWrite(t *testing.T) {
	prog := []Instruction{
		in(t, "DEFVAR", VarArg("GF", "x")),
		in(t, "MOVE", VarArg("GF", "x"), ConstArg(IntValue(42))),
		in(t, "WRITE", VarArg("GF", "x")),
	}
	_, out, err := runProgram(t, prog, "")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if out != "42" {
		t.Errorf("got %q, want %q", out, "42")
	}
}

func TestRunForwardJumpSkipsInstructions(t *testing.T) {
	prog := []Instruction{
		in(t, "DEFVAR", VarArg("GF", "x")),
		in(t, "MOVE", VarArg("GF", "x"), ConstArg(IntValue(1))),
		in(t, "JUMP", LabelArg("skip")),
		in(t, "MOVE", VarArg("GF", "x"), ConstArg(IntValue(99))),
		in(t, "LABEL", LabelArg("skip")),
		in(t, "WRITE", VarArg("GF", "x")),
	}
	_, out, err := runProgram(t, prog, "")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if out != "1" {
		t.Errorf("got %q, want %q (the jump must have skipped the second MOVE)", out, "1")
	}
}

func TestRunBackwardJumpLoop(t *testing.T) {
	prog := []Instruction{
		in(t, "DEFVAR", VarArg("GF", "i")),
		in(t, "MOVE", VarArg("GF", "i"), ConstArg(IntValue(0))),
		in(t, "LABEL", LabelArg("loop")),
		in(t, "WRITE", VarArg("GF", "i")),
		in(t, "ADD", VarArg("GF", "i"), VarArg("GF", "i"), ConstArg(IntValue(1))),
		in(t, "JUMPIFNEQ", LabelArg("loop"), VarArg("GF", "i"), ConstArg(IntValue(3))),
	}
	_, out, err := runProgram(t, prog, "")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if out != "012" {
		t.Errorf("got %q, want %q", out, "012")
	}
}

func TestRunCallReturn(t *testing.T) {
	prog := []Instruction{
		in(t, "JUMP", LabelArg("main")),
		in(t, "LABEL", LabelArg("sub")),
		in(t, "DEFVAR", VarArg("GF", "seen")),
		in(t, "MOVE", VarArg("GF", "seen"), ConstArg(IntValue(1))),
		in(t, "RETURN"),
		in(t, "LABEL", LabelArg("main")),
		in(t, "CALL", LabelArg("sub")),
		in(t, "WRITE", VarArg("GF", "seen")),
	}
	_, out, err := runProgram(t, prog, "")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if out != "1" {
		t.Errorf("got %q, want %q", out, "1")
	}
}

func TestRunDivisionByZeroExit57(t *testing.T) {
	prog := []Instruction{
		in(t, "DEFVAR", VarArg("GF", "r")),
		in(t, "DIV", VarArg("GF", "r"), ConstArg(IntValue(1)), ConstArg(IntValue(0))),
	}
	_, _, err := runProgram(t, prog, "")
	assertExit(t, err, ExitInvalidValue)
}

func TestRunOperandTypeMismatchExit53(t *testing.T) {
	prog := []Instruction{
		in(t, "DEFVAR", VarArg("GF", "r")),
		in(t, "ADD", VarArg("GF", "r"), ConstArg(IntValue(1)), ConstArg(StrValue("x"))),
	}
	_, _, err := runProgram(t, prog, "")
	assertExit(t, err, ExitOperandType)
}

func TestRunMissingValueExit56(t *testing.T) {
	prog := []Instruction{
		in(t, "DEFVAR", VarArg("GF", "x")),
		in(t, "DEFVAR", VarArg("GF", "y")),
		in(t, "MOVE", VarArg("GF", "y"), VarArg("GF", "x")),
	}
	_, _, err := runProgram(t, prog, "")
	assertExit(t, err, ExitMissingValue)
}

func TestRunStackVariantPopOrder(t *testing.T) {
	// push 10 then 3, SUBS computes left - right with right (3) on top: 10 - 3.
	prog := []Instruction{
		in(t, "DEFVAR", VarArg("GF", "r")),
		in(t, "PUSHS", ConstArg(IntValue(10))),
		in(t, "PUSHS", ConstArg(IntValue(3))),
		in(t, "SUBS"),
		in(t, "POPS", VarArg("GF", "r")),
		in(t, "WRITE", VarArg("GF", "r")),
	}
	_, out, err := runProgram(t, prog, "")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if out != "7" {
		t.Errorf("got %q, want %q", out, "7")
	}
}

func TestRunJumpIfEqSRestoresOperandsWhenNotTaken(t *testing.T) {
	prog := []Instruction{
		in(t, "PUSHS", ConstArg(IntValue(1))),
		in(t, "PUSHS", ConstArg(IntValue(2))),
		in(t, "JUMPIFEQS", LabelArg("never")),
		in(t, "DEFVAR", VarArg("GF", "a")),
		in(t, "DEFVAR", VarArg("GF", "b")),
		in(t, "POPS", VarArg("GF", "b")),
		in(t, "POPS", VarArg("GF", "a")),
		in(t, "LABEL", LabelArg("never")),
	}
	ctx, _, err := runProgram(t, prog, "")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	a, _ := ctx.GF.Get("a")
	b, _ := ctx.GF.Get("b")
	if a.Int() != 1 || b.Int() != 2 {
		t.Errorf("expected the untaken JUMPIFEQS to restore both operands, got a=%v b=%v", a, b)
	}
}

func TestRunExitSetsCode(t *testing.T) {
	prog := []Instruction{
		in(t, "EXIT", ConstArg(IntValue(7))),
	}
	ctx, _, err := runProgram(t, prog, "")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	code, ok := ctx.ExitCode()
	if !ok || code != 7 {
		t.Errorf("got (%v, %v), want (7, true)", code, ok)
	}
}

func assertExit(t *testing.T, err error, want ExitCode) {
	t.Helper()
	re, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("expected a *RuntimeError, got %T: %v", err, err)
	}
	if re.Code != want {
		t.Errorf("got exit %d, want %d", re.Code, want)
	}
}

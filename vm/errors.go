package vm

import "fmt"

// ExitCode is one of the exit codes from the interpreter's error taxonomy
// (§4.6 of the specification).
type ExitCode int

// Exit codes. 0 and the CLI-level codes (10, 11) are not produced by this
// package; they belong to the calling command.
const (
	ExitXMLMalformed       ExitCode = 31
	ExitXMLFormat          ExitCode = 32
	ExitSemantic           ExitCode = 52 // redefined/undefined label or variable
	ExitOperandType        ExitCode = 53
	ExitUndefinedVariable  ExitCode = 54
	ExitUndefinedFrame     ExitCode = 55
	ExitMissingValue       ExitCode = 56
	ExitInvalidValue       ExitCode = 57
	ExitStringOperation    ExitCode = 58
	ExitInternal           ExitCode = 99
)

// RuntimeError is the closed error kind raised while interpreting a loaded
// program. It always carries an exit code and, once attributed by Run, the
// program counter of the instruction that triggered it.
type RuntimeError struct {
	Code ExitCode
	Msg  string
	PC   int // -1 until attributed
}

func (e *RuntimeError) Error() string {
	if e.PC < 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s (instruction #%d)", e.Msg, e.PC)
}

func newRuntimeError(code ExitCode, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Code: code, Msg: fmt.Sprintf(format, args...), PC: -1}
}

func errRedefinedVariable(name string) error {
	return newRuntimeError(ExitSemantic, "variable is already defined: %s", name)
}

func errUndefinedVariable(name string) error {
	return newRuntimeError(ExitUndefinedVariable, "variable is not defined: %s", name)
}

func errRedefinedLabel(name string) error {
	return newRuntimeError(ExitSemantic, "label is already defined: %s", name)
}

func errUndefinedLabel(name string) error {
	return newRuntimeError(ExitSemantic, "label is not defined: %s", name)
}

func errUndefinedFrame(frame string) error {
	return newRuntimeError(ExitUndefinedFrame, "frame is not defined: %s", frame)
}

func errCallStackEmpty() error {
	return newRuntimeError(ExitMissingValue, "call stack is empty, invalid RETURN")
}

func errOperandStackEmpty() error {
	return newRuntimeError(ExitMissingValue, "not enough values on the operand stack")
}

func errMissingValue(name string) error {
	return newRuntimeError(ExitMissingValue, "variable has no value: %s", name)
}

func errOperandType(instr string, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return newRuntimeError(ExitOperandType, "%s: invalid operand: %s", instr, msg)
}

func errInvalidValue(instr, msg string) error {
	return newRuntimeError(ExitInvalidValue, "%s: %s", instr, msg)
}

func errStringOperation(instr, msg string) error {
	return newRuntimeError(ExitStringOperation, "%s: %s", instr, msg)
}

// LexicalError is raised while parsing a literal or variable identifier,
// either during program loading or while constructing an instruction
// argument. It always carries exit code 32.
type LexicalError struct {
	Literal string
	Want    string
	Opcode  string
}

func (e *LexicalError) Error() string {
	if e.Opcode != "" {
		return fmt.Sprintf("invalid %s literal: %q (in %s)", e.Want, e.Literal, e.Opcode)
	}
	return fmt.Sprintf("invalid %s literal: %q", e.Want, e.Literal)
}

// ExitCode reports the exit code this error should terminate the process
// with, implementing the CodedError interface.
func (e *LexicalError) ExitCode() ExitCode { return ExitXMLFormat }

// ExitCode reports the exit code this error should terminate the process
// with, implementing the CodedError interface.
func (e *RuntimeError) ExitCode() ExitCode { return e.Code }

// CodedError is implemented by every error kind in this package's taxonomy
// that carries a process exit code: LexicalError and RuntimeError, plus the
// loader's XML errors.
type CodedError interface {
	error
	ExitCode() ExitCode
}

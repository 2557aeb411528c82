// Package vm implements the IPPcode21 virtual machine.
//
// An IPPcode21 program is a flat sequence of three-address instructions
// (see the opcode table in instructions.go) operating on named variables
// kept in one of three frames (GF/LF/TF, see frame.go), a parallel operand
// stack and a call stack of saved program counters (stack.go). Labels may be
// referenced before they are defined; Context.Run resolves them with a
// forward-scan lookup rather than a full pre-pass — see the "scan mode"
// doc comment on Context.Run in run.go for the full state machine.
//
// This package does not parse the source XML; see package loader for that.
// Loader output (a []Instruction in program order) is handed directly to
// NewContext.
package vm

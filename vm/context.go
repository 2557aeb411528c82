package vm

import (
	"bufio"
	"io"
)

// Context holds the full mutable state of one interpreted program: its
// frames, stacks, program counter, label cache, jump-lookup state and exit
// code. NewContext wires it to an instruction sequence and its I/O streams;
// Run drives it to completion.
type Context struct {
	GF *Frame
	TF *Frame // nil when absent
	LS FrameStack
	Operands OperandStack
	Calls    CallStack

	Instructions []Instruction
	PC           int

	labels map[string]int

	jumpTarget   string
	haveJump     bool
	jumpStartPC  int
	lookupJump   bool

	exitCode    int
	exitIsSet   bool

	Input  *bufio.Reader
	Output io.Writer
}

// NewContext creates a Context ready to run prog against the given program
// input and output streams.
func NewContext(prog []Instruction, input io.Reader, output io.Writer) *Context {
	return &Context{
		GF:           NewFrame(),
		Instructions: prog,
		labels:       make(map[string]int),
		Input:        bufio.NewReader(input),
		Output:       output,
	}
}

// LF returns the current local frame, or nil if the frame stack is empty.
func (c *Context) LF() *Frame { return c.LS.Top() }

// Frame resolves a frame name ("GF", "LF" or "TF") to its Frame. An error is
// returned if the frame is currently absent (LF with an empty frame stack,
// or TF before CREATEFRAME).
func (c *Context) Frame(name string) (*Frame, error) {
	switch name {
	case "GF":
		return c.GF, nil
	case "LF":
		if f := c.LF(); f != nil {
			return f, nil
		}
		return nil, errUndefinedFrame("LF")
	case "TF":
		if c.TF != nil {
			return c.TF, nil
		}
		return nil, errUndefinedFrame("TF")
	default:
		return nil, errUndefinedFrame(name)
	}
}

// CreateFrame resets TF to a new, empty frame, discarding any prior content.
func (c *Context) CreateFrame() {
	c.TF = NewFrame()
}

// PushFrame requires TF present, moves it onto the frame stack as the new
// LF, and clears TF.
func (c *Context) PushFrame() error {
	if c.TF == nil {
		return errUndefinedFrame("TF")
	}
	c.LS.Push(c.TF)
	c.TF = nil
	return nil
}

// PopFrame requires LF present, moves the top of the frame stack into TF.
func (c *Context) PopFrame() error {
	f, ok := c.LS.Pop()
	if !ok {
		return errUndefinedFrame("LF")
	}
	c.TF = f
	return nil
}

// Call pushes the given return address onto the call stack and initiates a
// jump to label.
func (c *Context) Call(returnPC int, label string) {
	c.Calls.Push(returnPC)
	c.Jump(label)
}

// Return pops the call stack and sets PC to the saved address.
func (c *Context) Return() error {
	pc, err := c.Calls.Pop()
	if err != nil {
		return err
	}
	c.PC = pc
	return nil
}

// AddLabel registers the current PC under name. Registering the same label
// at the same PC twice is a no-op; at a different PC it is an error.
func (c *Context) AddLabel(name string) error {
	if pc, ok := c.labels[name]; ok && pc != c.PC {
		return errRedefinedLabel(name)
	}
	c.labels[name] = c.PC
	if c.haveJump && c.jumpTarget == name {
		c.haveJump = false
	}
	return nil
}

// Jump sets PC to the cached address of label if known, otherwise starts an
// unconditional forward-scan lookup (CALL and JUMP use this directly; a
// taken JUMPIF... uses it too).
func (c *Context) Jump(label string) {
	if pc, ok := c.labels[label]; ok {
		c.PC = pc
		return
	}
	c.jumpStartPC = c.PC
	c.jumpTarget = label
	c.haveJump = true
}

// LookupLabel starts a lookup-only forward scan for label: used when a
// conditional jump's condition was false but the label cache has not been
// warmed yet. When the label is found, control resumes at the instruction
// right after the one that started the lookup.
func (c *Context) LookupLabel(label string) {
	if _, ok := c.labels[label]; ok {
		return
	}
	c.jumpTarget = label
	c.jumpStartPC = c.PC
	c.haveJump = true
	c.lookupJump = true
}

// Terminate sets the program's exit code. code must be in [0, 49].
func (c *Context) Terminate(code int64) error {
	if code < 0 || code > 49 {
		return errInvalidValue("EXIT", "invalid exit code value")
	}
	c.exitCode = int(code)
	c.exitIsSet = true
	return nil
}

// ExitCode returns the exit code set by EXIT and whether one was set.
func (c *Context) ExitCode() (int, bool) { return c.exitCode, c.exitIsSet }

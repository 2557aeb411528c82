package vm

import (
	"fmt"
	"io"
	"strconv"

	"github.com/ondryaso/ipp21vm/internal/diag"
)

// describeValue renders a Value's payload the way BREAK and DPRINT show it:
// as close to its IPPcode21 source-text form as the type allows.
func describeValue(v Value) string {
	switch v.Type {
	case Undefined:
		return "<undefined>"
	case Nil:
		return "nil"
	case Int:
		return strconv.FormatInt(v.n, 10)
	case Bool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case Float:
		return strconv.FormatFloat(v.f, 'x', -1, 64)
	case Str:
		return v.s
	case Label:
		return v.s
	case Type:
		return v.dt.String()
	}
	return ""
}

// Dump writes a full diagnostic snapshot of the context — every frame, both
// stacks, the program counter, any in-flight label lookup and the label
// cache — to w. It is invoked by the BREAK instruction and by the top-level
// driver after a runtime error.
func (c *Context) Dump(w io.Writer) {
	ew := diag.NewErrWriter(w)

	fmt.Fprintln(ew, "-- Global frame GF --")
	c.GF.Dump(ew)

	fmt.Fprintln(ew, "\n-- Frame stack --")
	lf := c.LF()
	for i, f := range c.LS.Frames() {
		if f == lf {
			fmt.Fprintf(ew, "-- #%d (current LF)\n", i)
		} else {
			fmt.Fprintf(ew, "-- #%d\n", i)
		}
		f.Dump(ew)
	}

	fmt.Fprintln(ew, "\n-- Temporary frame TF --")
	if c.TF == nil {
		fmt.Fprintln(ew, "the frame is undefined.")
	} else {
		c.TF.Dump(ew)
	}

	fmt.Fprintf(ew, "\nProgram counter: %d\n", c.PC)
	if c.haveJump {
		fmt.Fprintf(ew, "Current jump started at PC value: %d\n", c.jumpStartPC)
		fmt.Fprintf(ew, "Current jump target: %s\n", c.jumpTarget)
	}

	fmt.Fprintln(ew, "Call stack:\n-- Bottom --")
	for _, pc := range c.Calls.PCs() {
		fmt.Fprintln(ew, pc)
	}
	fmt.Fprintln(ew, "-- Top --")

	fmt.Fprintln(ew, "\nOperand stack\n-- Bottom --")
	for _, v := range c.Operands.Values() {
		fmt.Fprintf(ew, "%s: %q\n", v.Type, describeValue(v))
	}
	fmt.Fprintln(ew, "-- Top --")

	fmt.Fprintln(ew, "\nDefined labels:")
	for label, pc := range c.labels {
		fmt.Fprintf(ew, "%s at instruction %d\n", label, pc)
	}
}

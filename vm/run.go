package vm

import (
	"strings"
)

// Run drives the context to completion: an EXIT, falling off the end of the
// instruction list, or an error. It never runs the toolchain's own panics
// past this boundary — any panic from an Exec function (index-out-of-range
// bugs, nil maps) is recovered and reported as ExitInternal so a malformed
// program can never crash the host process.
//
// A jump whose target label has not been scanned yet, whether taken or a
// JUMPIF... that turned out false, switches the loop into scan mode: every instruction except LABEL is skipped until the
// target is registered, at which point normal dispatch resumes either at
// the label (CALL, JUMP, a taken JUMPIF...) or right after the instruction
// that started the lookup (a JUMPIF... that turned out false, checking
// ahead to warm the label cache for next time).
func (c *Context) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newRuntimeError(ExitInternal, "panic while executing instruction: %v", r)
		}
		if re, ok := err.(*RuntimeError); ok && re.PC < 0 {
			re.PC = c.PC
		}
	}()

	for {
		if _, done := c.ExitCode(); done {
			return nil
		}
		if c.PC >= len(c.Instructions) {
			if c.haveJump {
				le := errUndefinedLabel(c.jumpTarget)
				le.(*RuntimeError).PC = c.jumpStartPC
				return le
			}
			return nil
		}

		instr := c.Instructions[c.PC]

		if c.haveJump {
			if !strings.EqualFold(instr.Opcode, "LABEL") {
				c.PC++
				continue
			}
			if err := instr.Def.Exec(c, instr.Args); err != nil {
				return err
			}
			if c.haveJump {
				c.PC++
				continue
			}
			if c.lookupJump {
				c.lookupJump = false
				c.PC = c.jumpStartPC + 1
			} else {
				c.PC++
			}
			continue
		}

		startPC := c.PC
		if err := instr.Def.Exec(c, instr.Args); err != nil {
			return err
		}
		if _, done := c.ExitCode(); done {
			return nil
		}
		if c.PC == startPC {
			c.PC++
		}
	}
}

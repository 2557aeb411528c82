package vm

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ArgKind is the static shape an instruction requires of one of its source
// arguments: a destination variable, a value (variable or constant), a
// jump target, or a type-name literal.
type ArgKind int

// Argument shapes.
const (
	KindVar ArgKind = iota
	KindSymb
	KindLabel
	KindType
)

// Arg is one resolved instruction argument: either a frame-qualified
// variable reference or a literal constant. Label arguments are carried as
// a constant of type Label.
type Arg struct {
	Kind  ArgKind
	Frame string // set when Kind == KindVar
	Name  string // set when Kind == KindVar
	Value Value  // set when Kind == KindSymb or KindLabel
}

// VarArg builds a variable-reference argument.
func VarArg(frame, name string) Arg { return Arg{Kind: KindVar, Frame: frame, Name: name} }

// ConstArg builds a constant-value argument.
func ConstArg(v Value) Arg { return Arg{Kind: KindSymb, Value: v} }

// LabelArg builds a jump-target argument.
func LabelArg(name string) Arg { return Arg{Kind: KindLabel, Value: LabelValue(name)} }

// Def is an opcode's static shape and runtime behaviour: the table the
// loader validates instructions against, and run.go dispatches through.
type Def struct {
	Name     string
	ArgKinds []ArgKind
	Exec     func(ctx *Context, args []Arg) error
}

// Instruction is one loaded program instruction: an opcode resolved to its
// Def, bound to a concrete set of arguments.
type Instruction struct {
	Opcode string
	Args   []Arg
	Def    *Def
}

var table = make(map[string]*Def)

func define(name string, kinds []ArgKind, exec func(ctx *Context, args []Arg) error) {
	table[name] = &Def{Name: name, ArgKinds: kinds, Exec: exec}
}

// Lookup resolves opcode (case-insensitively) to its Def.
func Lookup(opcode string) (*Def, bool) {
	d, ok := table[strings.ToUpper(opcode)]
	return d, ok
}

// readValue resolves an argument to its current Value: a constant's own
// Value, or the live contents of the variable it names.
func (c *Context) readValue(a Arg) (Value, error) {
	if a.Kind != KindVar {
		return a.Value, nil
	}
	fr, err := c.Frame(a.Frame)
	if err != nil {
		return Value{}, err
	}
	slot, err := fr.Get(a.Name)
	if err != nil {
		return Value{}, err
	}
	return *slot, nil
}

// writeValue stores v into the variable named by a. a must be a KindVar
// argument.
func (c *Context) writeValue(a Arg, v Value) error {
	if a.Kind != KindVar {
		return errors.Errorf("internal error: write target is not a variable")
	}
	fr, err := c.Frame(a.Frame)
	if err != nil {
		return err
	}
	slot, err := fr.Get(a.Name)
	if err != nil {
		return err
	}
	*slot = v
	return nil
}

func (c *Context) readDefined(instr string, a Arg) (Value, error) {
	v, err := c.readValue(a)
	if err != nil {
		return v, err
	}
	if v.Type == Undefined {
		return v, errMissingValue(describeArg(a))
	}
	return v, nil
}

func describeArg(a Arg) string {
	if a.Kind == KindVar {
		return a.Frame + "@" + a.Name
	}
	return describeValue(a.Value)
}

// formatWriteValue renders a value the way WRITE puts it on the program's
// output stream: nil prints as the empty string, everything else as its
// source-text form.
func formatWriteValue(v Value) string {
	if v.Type == Nil {
		return ""
	}
	return describeValue(v)
}

func init() {
	define("MOVE", []ArgKind{KindVar, KindSymb}, func(c *Context, a []Arg) error {
		v, err := c.readValue(a[1])
		if err != nil {
			return err
		}
		if v.Type == Undefined {
			return errMissingValue(describeArg(a[1]))
		}
		return c.writeValue(a[0], v)
	})

	define("CREATEFRAME", nil, func(c *Context, a []Arg) error {
		c.CreateFrame()
		return nil
	})

	define("PUSHFRAME", nil, func(c *Context, a []Arg) error {
		return c.PushFrame()
	})

	define("POPFRAME", nil, func(c *Context, a []Arg) error {
		return c.PopFrame()
	})

	define("DEFVAR", []ArgKind{KindVar}, func(c *Context, a []Arg) error {
		fr, err := c.Frame(a[0].Frame)
		if err != nil {
			return err
		}
		_, err = fr.Define(a[0].Name)
		return err
	})

	define("CALL", []ArgKind{KindLabel}, func(c *Context, a []Arg) error {
		c.Call(c.PC+1, a[0].Value.Str())
		return nil
	})

	define("RETURN", nil, func(c *Context, a []Arg) error {
		return c.Return()
	})

	define("PUSHS", []ArgKind{KindSymb}, func(c *Context, a []Arg) error {
		v, err := c.readDefined("PUSHS", a[0])
		if err != nil {
			return err
		}
		return c.Operands.Push(v)
	})

	define("POPS", []ArgKind{KindVar}, func(c *Context, a []Arg) error {
		v, err := c.Operands.Pop()
		if err != nil {
			return err
		}
		return c.writeValue(a[0], v)
	})

	define("CLEARS", nil, func(c *Context, a []Arg) error {
		c.Operands.Clear()
		return nil
	})

	defineArith("ADD", addValues)
	defineArith("SUB", subValues)
	defineArith("MUL", mulValues)
	defineArith("DIV", divValues)
	defineArithStack("ADDS", addValues)
	defineArithStack("SUBS", subValues)
	defineArithStack("MULS", mulValues)
	defineArithStack("DIVS", divValues)

	define("IDIV", []ArgKind{KindVar, KindSymb, KindSymb}, func(c *Context, a []Arg) error {
		x, y, err := c.readBinaryOperands("IDIV", a[1], a[2])
		if err != nil {
			return err
		}
		v, err := idivValues("IDIV", x, y)
		if err != nil {
			return err
		}
		return c.writeValue(a[0], v)
	})
	define("IDIVS", nil, func(c *Context, a []Arg) error {
		x, y, err := c.popBinaryOperands("IDIVS")
		if err != nil {
			return err
		}
		v, err := idivValues("IDIVS", x, y)
		if err != nil {
			return err
		}
		return c.Operands.Push(v)
	})

	defineCompare("LT", ltValues)
	defineCompare("GT", gtValues)
	defineCompare("EQ", eqValues)
	defineCompareStack("LTS", ltValues)
	defineCompareStack("GTS", gtValues)
	defineCompareStack("EQS", eqValues)

	define("AND", []ArgKind{KindVar, KindSymb, KindSymb}, func(c *Context, a []Arg) error {
		x, y, err := c.readBinaryOperands("AND", a[1], a[2])
		if err != nil {
			return err
		}
		v, err := andValues("AND", x, y)
		if err != nil {
			return err
		}
		return c.writeValue(a[0], v)
	})
	define("OR", []ArgKind{KindVar, KindSymb, KindSymb}, func(c *Context, a []Arg) error {
		x, y, err := c.readBinaryOperands("OR", a[1], a[2])
		if err != nil {
			return err
		}
		v, err := orValues("OR", x, y)
		if err != nil {
			return err
		}
		return c.writeValue(a[0], v)
	})
	define("NOT", []ArgKind{KindVar, KindSymb}, func(c *Context, a []Arg) error {
		x, err := c.readDefined("NOT", a[1])
		if err != nil {
			return err
		}
		if x.Type != Bool {
			return errOperandType("NOT", "expected bool, got %s", x.Type)
		}
		return c.writeValue(a[0], BoolValue(!x.Bool()))
	})
	define("ANDS", nil, func(c *Context, a []Arg) error {
		x, y, err := c.popBinaryOperands("ANDS")
		if err != nil {
			return err
		}
		v, err := andValues("ANDS", x, y)
		if err != nil {
			return err
		}
		return c.Operands.Push(v)
	})
	define("ORS", nil, func(c *Context, a []Arg) error {
		x, y, err := c.popBinaryOperands("ORS")
		if err != nil {
			return err
		}
		v, err := orValues("ORS", x, y)
		if err != nil {
			return err
		}
		return c.Operands.Push(v)
	})
	define("NOTS", nil, func(c *Context, a []Arg) error {
		x, err := c.Operands.Pop()
		if err != nil {
			return err
		}
		if x.Type != Bool {
			return errOperandType("NOTS", "expected bool, got %s", x.Type)
		}
		return c.Operands.Push(BoolValue(!x.Bool()))
	})

	define("INT2CHAR", []ArgKind{KindVar, KindSymb}, func(c *Context, a []Arg) error {
		x, err := c.readDefined("INT2CHAR", a[1])
		if err != nil {
			return err
		}
		if x.Type != Int {
			return errOperandType("INT2CHAR", "expected int, got %s", x.Type)
		}
		s, err := int2char(x.Int())
		if err != nil {
			return err
		}
		return c.writeValue(a[0], StrValue(s))
	})
	define("INT2CHARS", nil, func(c *Context, a []Arg) error {
		x, err := c.Operands.Pop()
		if err != nil {
			return err
		}
		if x.Type != Int {
			return errOperandType("INT2CHARS", "expected int, got %s", x.Type)
		}
		s, err := int2char(x.Int())
		if err != nil {
			return err
		}
		return c.Operands.Push(StrValue(s))
	})

	define("STRI2INT", []ArgKind{KindVar, KindSymb, KindSymb}, func(c *Context, a []Arg) error {
		s, i, err := c.readStringIndex("STRI2INT", a[1], a[2])
		if err != nil {
			return err
		}
		r, err := runeAt("STRI2INT", s, i)
		if err != nil {
			return err
		}
		return c.writeValue(a[0], IntValue(int64(r)))
	})
	define("STRI2INTS", nil, func(c *Context, a []Arg) error {
		i, s, err := c.popStringIndex("STRI2INTS")
		if err != nil {
			return err
		}
		r, err := runeAt("STRI2INTS", s, i)
		if err != nil {
			return err
		}
		return c.Operands.Push(IntValue(int64(r)))
	})

	define("READ", []ArgKind{KindVar, KindType}, func(c *Context, a []Arg) error {
		t, err := c.readValue(a[1])
		if err != nil {
			return err
		}
		if t.Type != Type {
			return errOperandType("READ", "expected a type literal, got %s", t.Type)
		}
		return c.writeValue(a[0], c.readInput(t.TypeTag()))
	})

	define("WRITE", []ArgKind{KindSymb}, func(c *Context, a []Arg) error {
		v, err := c.readDefined("WRITE", a[0])
		if err != nil {
			return err
		}
		fmt.Fprint(c.Output, formatWriteValue(v))
		return nil
	})

	define("CONCAT", []ArgKind{KindVar, KindSymb, KindSymb}, func(c *Context, a []Arg) error {
		x, y, err := c.readStringPair("CONCAT", a[1], a[2])
		if err != nil {
			return err
		}
		return c.writeValue(a[0], StrValue(x.Str()+y.Str()))
	})

	define("STRLEN", []ArgKind{KindVar, KindSymb}, func(c *Context, a []Arg) error {
		x, err := c.readDefined("STRLEN", a[1])
		if err != nil {
			return err
		}
		if x.Type != Str {
			return errOperandType("STRLEN", "expected string, got %s", x.Type)
		}
		return c.writeValue(a[0], IntValue(int64(utf8.RuneCountInString(x.Str()))))
	})

	define("GETCHAR", []ArgKind{KindVar, KindSymb, KindSymb}, func(c *Context, a []Arg) error {
		s, i, err := c.readStringIndex("GETCHAR", a[1], a[2])
		if err != nil {
			return err
		}
		r, err := runeAt("GETCHAR", s, i)
		if err != nil {
			return err
		}
		return c.writeValue(a[0], StrValue(string(r)))
	})

	define("SETCHAR", []ArgKind{KindVar, KindSymb, KindSymb}, func(c *Context, a []Arg) error {
		dest, err := c.readDefined("SETCHAR", a[0])
		if err != nil {
			return err
		}
		if dest.Type != Str {
			return errOperandType("SETCHAR", "destination must already hold a string, got %s", dest.Type)
		}
		idx, err := c.readDefined("SETCHAR", a[1])
		if err != nil {
			return err
		}
		if idx.Type != Int {
			return errOperandType("SETCHAR", "expected int index, got %s", idx.Type)
		}
		ch, err := c.readDefined("SETCHAR", a[2])
		if err != nil {
			return err
		}
		if ch.Type != Str {
			return errOperandType("SETCHAR", "expected string, got %s", ch.Type)
		}
		runes := []rune(dest.Str())
		i := idx.Int()
		if i < 0 || i >= int64(len(runes)) {
			return errStringOperation("SETCHAR", "index out of bounds")
		}
		src := []rune(ch.Str())
		if len(src) == 0 {
			return errStringOperation("SETCHAR", "replacement string is empty")
		}
		runes[i] = src[0]
		return c.writeValue(a[0], StrValue(string(runes)))
	})

	define("TYPE", []ArgKind{KindVar, KindSymb}, func(c *Context, a []Arg) error {
		v, err := c.readValue(a[1])
		if err != nil {
			return err
		}
		return c.writeValue(a[0], StrValue(v.Type.String()))
	})

	define("LABEL", []ArgKind{KindLabel}, func(c *Context, a []Arg) error {
		return c.AddLabel(a[0].Value.Str())
	})

	define("JUMP", []ArgKind{KindLabel}, func(c *Context, a []Arg) error {
		c.Jump(a[0].Value.Str())
		return nil
	})

	define("JUMPIFEQ", []ArgKind{KindLabel, KindSymb, KindSymb}, func(c *Context, a []Arg) error {
		return c.condJump("JUMPIFEQ", a[0].Value.Str(), a[1], a[2], true)
	})
	define("JUMPIFNEQ", []ArgKind{KindLabel, KindSymb, KindSymb}, func(c *Context, a []Arg) error {
		return c.condJump("JUMPIFNEQ", a[0].Value.Str(), a[1], a[2], false)
	})
	define("JUMPIFEQS", []ArgKind{KindLabel}, func(c *Context, a []Arg) error {
		return c.condJumpStack("JUMPIFEQS", a[0].Value.Str(), true)
	})
	define("JUMPIFNEQS", []ArgKind{KindLabel}, func(c *Context, a []Arg) error {
		return c.condJumpStack("JUMPIFNEQS", a[0].Value.Str(), false)
	})

	define("EXIT", []ArgKind{KindSymb}, func(c *Context, a []Arg) error {
		v, err := c.readDefined("EXIT", a[0])
		if err != nil {
			return err
		}
		if v.Type != Int {
			return errOperandType("EXIT", "expected int, got %s", v.Type)
		}
		return c.Terminate(v.Int())
	})

	define("DPRINT", []ArgKind{KindSymb}, func(c *Context, a []Arg) error {
		v, err := c.readValue(a[0])
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stderr, formatWriteValue(v))
		return nil
	})

	define("BREAK", nil, func(c *Context, a []Arg) error {
		c.Dump(os.Stderr)
		return nil
	})

	define("INT2FLOAT", []ArgKind{KindVar, KindSymb}, func(c *Context, a []Arg) error {
		x, err := c.readDefined("INT2FLOAT", a[1])
		if err != nil {
			return err
		}
		if x.Type != Int {
			return errOperandType("INT2FLOAT", "expected int, got %s", x.Type)
		}
		return c.writeValue(a[0], FloatValue(float64(x.Int())))
	})
	define("INT2FLOATS", nil, func(c *Context, a []Arg) error {
		x, err := c.Operands.Pop()
		if err != nil {
			return err
		}
		if x.Type != Int {
			return errOperandType("INT2FLOATS", "expected int, got %s", x.Type)
		}
		return c.Operands.Push(FloatValue(float64(x.Int())))
	})
	define("FLOAT2INT", []ArgKind{KindVar, KindSymb}, func(c *Context, a []Arg) error {
		x, err := c.readDefined("FLOAT2INT", a[1])
		if err != nil {
			return err
		}
		if x.Type != Float {
			return errOperandType("FLOAT2INT", "expected float, got %s", x.Type)
		}
		return c.writeValue(a[0], IntValue(int64(x.Float())))
	})
	define("FLOAT2INTS", nil, func(c *Context, a []Arg) error {
		x, err := c.Operands.Pop()
		if err != nil {
			return err
		}
		if x.Type != Float {
			return errOperandType("FLOAT2INTS", "expected float, got %s", x.Type)
		}
		return c.Operands.Push(IntValue(int64(x.Float())))
	})
}

func defineArith(name string, op func(instr string, a, b Value) (Value, error)) {
	define(name, []ArgKind{KindVar, KindSymb, KindSymb}, func(c *Context, a []Arg) error {
		x, y, err := c.readBinaryOperands(name, a[1], a[2])
		if err != nil {
			return err
		}
		v, err := op(name, x, y)
		if err != nil {
			return err
		}
		return c.writeValue(a[0], v)
	})
}

func defineArithStack(name string, op func(instr string, a, b Value) (Value, error)) {
	define(name, nil, func(c *Context, a []Arg) error {
		x, y, err := c.popBinaryOperands(name)
		if err != nil {
			return err
		}
		v, err := op(name, x, y)
		if err != nil {
			return err
		}
		return c.Operands.Push(v)
	})
}

func defineCompare(name string, op func(instr string, a, b Value) (Value, error)) {
	define(name, []ArgKind{KindVar, KindSymb, KindSymb}, func(c *Context, a []Arg) error {
		x, y, err := c.readBinaryOperands(name, a[1], a[2])
		if err != nil {
			return err
		}
		v, err := op(name, x, y)
		if err != nil {
			return err
		}
		return c.writeValue(a[0], v)
	})
}

func defineCompareStack(name string, op func(instr string, a, b Value) (Value, error)) {
	define(name, nil, func(c *Context, a []Arg) error {
		x, y, err := c.popBinaryOperands(name)
		if err != nil {
			return err
		}
		v, err := op(name, x, y)
		if err != nil {
			return err
		}
		return c.Operands.Push(v)
	})
}

// readBinaryOperands reads and defined-checks two symb arguments, in their
// source order (left, right).
func (c *Context) readBinaryOperands(instr string, a, b Arg) (Value, Value, error) {
	x, err := c.readDefined(instr, a)
	if err != nil {
		return Value{}, Value{}, err
	}
	y, err := c.readDefined(instr, b)
	if err != nil {
		return Value{}, Value{}, err
	}
	return x, y, nil
}

// popBinaryOperands pops the two top operand-stack values for a "...S"
// instruction. The right-hand operand is on top, so it comes off first; the
// return order matches the instruction's (left, right) convention.
func (c *Context) popBinaryOperands(instr string) (Value, Value, error) {
	y, err := c.Operands.Pop()
	if err != nil {
		return Value{}, Value{}, err
	}
	x, err := c.Operands.Pop()
	if err != nil {
		return Value{}, Value{}, err
	}
	return x, y, nil
}

func (c *Context) readStringPair(instr string, a, b Arg) (Value, Value, error) {
	x, y, err := c.readBinaryOperands(instr, a, b)
	if err != nil {
		return x, y, err
	}
	if x.Type != Str || y.Type != Str {
		return x, y, errOperandType(instr, "expected two strings, got %s and %s", x.Type, y.Type)
	}
	return x, y, nil
}

func (c *Context) readStringIndex(instr string, strArg, idxArg Arg) (Value, int64, error) {
	s, err := c.readDefined(instr, strArg)
	if err != nil {
		return Value{}, 0, err
	}
	if s.Type != Str {
		return s, 0, errOperandType(instr, "expected string, got %s", s.Type)
	}
	i, err := c.readDefined(instr, idxArg)
	if err != nil {
		return s, 0, err
	}
	if i.Type != Int {
		return s, 0, errOperandType(instr, "expected int index, got %s", i.Type)
	}
	return s, i.Int(), nil
}

func (c *Context) popStringIndex(instr string) (int64, Value, error) {
	i, err := c.Operands.Pop()
	if err != nil {
		return 0, Value{}, err
	}
	s, err := c.Operands.Pop()
	if err != nil {
		return 0, Value{}, err
	}
	if s.Type != Str {
		return 0, s, errOperandType(instr, "expected string, got %s", s.Type)
	}
	if i.Type != Int {
		return 0, s, errOperandType(instr, "expected int index, got %s", i.Type)
	}
	return i.Int(), s, nil
}

func runeAt(instr string, s Value, idx int64) (rune, error) {
	runes := []rune(s.Str())
	if idx < 0 || idx >= int64(len(runes)) {
		return 0, errStringOperation(instr, "index out of bounds")
	}
	return runes[idx], nil
}

func int2char(n int64) (string, error) {
	if n < 0 || n > utf8.MaxRune || !utf8.ValidRune(rune(n)) {
		return "", errStringOperation("INT2CHAR", "value is not a valid unicode code point")
	}
	return string(rune(n)), nil
}

func addValues(instr string, a, b Value) (Value, error) {
	if a.Type != b.Type {
		return Value{}, errOperandType(instr, "operand type mismatch: %s vs %s", a.Type, b.Type)
	}
	switch a.Type {
	case Int:
		return IntValue(a.Int() + b.Int()), nil
	case Float:
		return FloatValue(a.Float() + b.Float()), nil
	default:
		return Value{}, errOperandType(instr, "expected int or float operands, got %s", a.Type)
	}
}

func subValues(instr string, a, b Value) (Value, error) {
	if a.Type != b.Type {
		return Value{}, errOperandType(instr, "operand type mismatch: %s vs %s", a.Type, b.Type)
	}
	switch a.Type {
	case Int:
		return IntValue(a.Int() - b.Int()), nil
	case Float:
		return FloatValue(a.Float() - b.Float()), nil
	default:
		return Value{}, errOperandType(instr, "expected int or float operands, got %s", a.Type)
	}
}

func mulValues(instr string, a, b Value) (Value, error) {
	if a.Type != b.Type {
		return Value{}, errOperandType(instr, "operand type mismatch: %s vs %s", a.Type, b.Type)
	}
	switch a.Type {
	case Int:
		return IntValue(a.Int() * b.Int()), nil
	case Float:
		return FloatValue(a.Float() * b.Float()), nil
	default:
		return Value{}, errOperandType(instr, "expected int or float operands, got %s", a.Type)
	}
}

// divValues implements DIV: type-preserving division over int or float
// operands, following the host's truncated-toward-zero convention for ints
// and plain IEEE 754 division (including non-finite results) for floats.
func divValues(instr string, a, b Value) (Value, error) {
	if a.Type != b.Type {
		return Value{}, errOperandType(instr, "operand type mismatch: %s vs %s", a.Type, b.Type)
	}
	switch a.Type {
	case Int:
		if b.Int() == 0 {
			return Value{}, errInvalidValue(instr, "division by zero")
		}
		return IntValue(a.Int() / b.Int()), nil
	case Float:
		return FloatValue(a.Float() / b.Float()), nil
	default:
		return Value{}, errOperandType(instr, "expected int or float operands, got %s", a.Type)
	}
}

// idivValues implements IDIV: integer-only division, truncated toward zero,
// division by zero is exit 57.
func idivValues(instr string, a, b Value) (Value, error) {
	if a.Type != Int || b.Type != Int {
		return Value{}, errOperandType(instr, "expected two ints, got %s and %s", a.Type, b.Type)
	}
	if b.Int() == 0 {
		return Value{}, errInvalidValue(instr, "division by zero")
	}
	return IntValue(a.Int() / b.Int()), nil
}

func ltValues(instr string, a, b Value) (Value, error) {
	if a.Type != b.Type {
		return Value{}, errOperandType(instr, "operand type mismatch: %s vs %s", a.Type, b.Type)
	}
	switch a.Type {
	case Int:
		return BoolValue(a.Int() < b.Int()), nil
	case Float:
		return BoolValue(a.Float() < b.Float()), nil
	case Str:
		return BoolValue(a.Str() < b.Str()), nil
	case Bool:
		return BoolValue(!a.Bool() && b.Bool()), nil
	default:
		return Value{}, errOperandType(instr, "type %s is not ordered", a.Type)
	}
}

func gtValues(instr string, a, b Value) (Value, error) {
	if a.Type != b.Type {
		return Value{}, errOperandType(instr, "operand type mismatch: %s vs %s", a.Type, b.Type)
	}
	switch a.Type {
	case Int:
		return BoolValue(a.Int() > b.Int()), nil
	case Float:
		return BoolValue(a.Float() > b.Float()), nil
	case Str:
		return BoolValue(a.Str() > b.Str()), nil
	case Bool:
		return BoolValue(a.Bool() && !b.Bool()), nil
	default:
		return Value{}, errOperandType(instr, "type %s is not ordered", a.Type)
	}
}

// eqValues implements EQ: like LT/GT but additionally permits nil on either
// side, with the comparison true only when both operands are nil.
func eqValues(instr string, a, b Value) (Value, error) {
	if a.Type == Nil || b.Type == Nil {
		return BoolValue(a.Type == Nil && b.Type == Nil), nil
	}
	if a.Type != b.Type {
		return Value{}, errOperandType(instr, "operand type mismatch: %s vs %s", a.Type, b.Type)
	}
	switch a.Type {
	case Int, Float, Str, Bool:
		return BoolValue(a.Equal(b)), nil
	default:
		return Value{}, errOperandType(instr, "type %s is not comparable", a.Type)
	}
}

func andValues(instr string, a, b Value) (Value, error) {
	if a.Type != Bool || b.Type != Bool {
		return Value{}, errOperandType(instr, "expected two bools, got %s and %s", a.Type, b.Type)
	}
	return BoolValue(a.Bool() && b.Bool()), nil
}

func orValues(instr string, a, b Value) (Value, error) {
	if a.Type != Bool || b.Type != Bool {
		return Value{}, errOperandType(instr, "expected two bools, got %s and %s", a.Type, b.Type)
	}
	return BoolValue(a.Bool() || b.Bool()), nil
}

// condJump implements JUMPIFEQ/JUMPIFNEQ: compare two symb arguments with
// EQ's rules and jump to label if the comparison result matches wantEqual.
func (c *Context) condJump(instr, label string, a, b Arg, wantEqual bool) error {
	x, y, err := c.readBinaryOperands(instr, a, b)
	if err != nil {
		return err
	}
	eq, err := eqValues(instr, x, y)
	if err != nil {
		return err
	}
	if eq.Bool() == wantEqual {
		c.Jump(label)
	} else {
		c.LookupLabel(label)
	}
	return nil
}

// condJumpStack implements JUMPIFEQS/JUMPIFNEQS: both operands are popped
// unconditionally; if the jump is not taken they are pushed back so the
// instruction is stack-neutral in the not-taken case, matching the
// non-stack form's behaviour of leaving its symb arguments untouched.
func (c *Context) condJumpStack(instr, label string, wantEqual bool) error {
	x, y, err := c.popBinaryOperands(instr)
	if err != nil {
		return err
	}
	eq, err := eqValues(instr, x, y)
	if err != nil {
		return err
	}
	if eq.Bool() == wantEqual {
		c.Jump(label)
		return nil
	}
	c.LookupLabel(label)
	if err := c.Operands.Push(x); err != nil {
		return err
	}
	return c.Operands.Push(y)
}

// readInput reads one line from the program's input stream and parses it as
// t. A missing or malformed value yields Nil, matching READ's documented
// fallback for int/float/bool.
func (c *Context) readInput(t DataType) Value {
	line, err := c.Input.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err != nil && line == "" {
		return NilValue()
	}
	switch t {
	case Int:
		v, err := ParseLiteral("int", line)
		if err != nil {
			return NilValue()
		}
		return v
	case Float:
		v, err := ParseLiteral("float", line)
		if err != nil {
			return NilValue()
		}
		return v
	case Bool:
		v, err := ParseLiteral("bool", strings.ToLower(line))
		if err != nil {
			return NilValue()
		}
		return v
	case Str:
		return StrValue(line)
	default:
		return NilValue()
	}
}

package vm

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// DataType is the tag of a Value.
type DataType int

// IPPcode21 data types.
const (
	Undefined DataType = iota
	Nil
	Int
	Str
	Bool
	Float
	Label
	Type
)

var typeNames = [...]string{
	Undefined: "",
	Nil:       "nil",
	Int:       "int",
	Str:       "string",
	Bool:      "bool",
	Float:     "float",
	Label:     "label",
	Type:      "type",
}

// String returns the IPPcode21 literal name of the type, the empty string
// for Undefined.
func (t DataType) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return ""
	}
	return typeNames[t]
}

// TypeByName returns the DataType whose literal name is s, compared
// case-sensitively, and ok == true. If s names no type, ok is false.
func TypeByName(s string) (t DataType, ok bool) {
	for i, n := range typeNames {
		if i != 0 && n == s {
			return DataType(i), true
		}
	}
	return Undefined, false
}

// Value is a tagged union holding one IPPcode21 runtime value. The zero
// Value is Undefined, matching a freshly DEFVAR'd variable.
type Value struct {
	Type DataType
	n    int64  // Int payload, and Bool payload (0/1)
	f    float64
	s    string // Str and Label payload
	dt   DataType // Type payload
}

// Undef returns an Undefined value.
func Undef() Value { return Value{} }

// NilValue returns a Nil value.
func NilValue() Value { return Value{Type: Nil} }

// IntValue returns an Int value.
func IntValue(n int64) Value { return Value{Type: Int, n: n} }

// FloatValue returns a Float value.
func FloatValue(f float64) Value { return Value{Type: Float, f: f} }

// StrValue returns a Str value.
func StrValue(s string) Value { return Value{Type: Str, s: s} }

// BoolValue returns a Bool value.
func BoolValue(b bool) Value {
	v := Value{Type: Bool}
	if b {
		v.n = 1
	}
	return v
}

// LabelValue returns a Label value (only ever produced by literal arguments).
func LabelValue(name string) Value { return Value{Type: Label, s: name} }

// TypeValue returns a Type value wrapping the given type tag.
func TypeValue(t DataType) Value { return Value{Type: Type, dt: t} }

// Int returns the Int payload.
func (v Value) Int() int64 { return v.n }

// Float returns the Float payload.
func (v Value) Float() float64 { return v.f }

// Str returns the Str/Label payload.
func (v Value) Str() string { return v.s }

// Bool returns the Bool payload.
func (v Value) Bool() bool { return v.n != 0 }

// TypeTag returns the Type payload.
func (v Value) TypeTag() DataType { return v.dt }

// Equal reports whether v and o hold the same type and payload. Two Nil
// values are always equal.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case Nil, Undefined:
		return true
	case Int:
		return v.n == o.n
	case Bool:
		return v.n == o.n
	case Float:
		return v.f == o.f
	case Str, Label:
		return v.s == o.s
	case Type:
		return v.dt == o.dt
	}
	return false
}

// varNameIdentChars is the identifier character class from the IPPcode21
// specification (beyond plain letters/digits).
const varNameIdentChars = "a-zA-Z_$&%*!?-"

// varNameRE matches a frame-qualified variable identifier: GF@name, LF@name
// or TF@name.
var varNameRE = regexp.MustCompile(`^(GF|TF|LF)@([` + varNameIdentChars + `][a-zA-Z0-9` + varNameIdentChars + `]*)$`)

// ParseVarName splits a frame-qualified identifier into its frame name
// ("GF", "LF" or "TF") and local variable name. ok is false if ident does
// not match the required shape.
func ParseVarName(ident string) (frame, name string, ok bool) {
	m := varNameRE.FindStringSubmatch(ident)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// ParseLiteral parses the textual literal of the given type name into a
// Value, following the rules in §4.1 of the specification. Invalid input is
// reported as a *LexicalError, which carries ExitXMLFormat (32).
func ParseLiteral(typeName, text string) (Value, error) {
	t, ok := TypeByName(typeName)
	if !ok {
		return Value{}, &LexicalError{Literal: text, Want: "variable type"}
	}
	switch t {
	case Label:
		return LabelValue(text), nil
	case Nil:
		if text != "nil" {
			return Value{}, &LexicalError{Literal: text, Want: "nil"}
		}
		return NilValue(), nil
	case Int:
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return Value{}, &LexicalError{Literal: text, Want: "int"}
		}
		return IntValue(n), nil
	case Float:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return Value{}, &LexicalError{Literal: text, Want: "float"}
		}
		return FloatValue(f), nil
	case Bool:
		switch text {
		case "true":
			return BoolValue(true), nil
		case "false":
			return BoolValue(false), nil
		default:
			return Value{}, &LexicalError{Literal: text, Want: "bool"}
		}
	case Str:
		s, err := parseStringLiteral(text)
		if err != nil {
			return Value{}, &LexicalError{Literal: text, Want: "string"}
		}
		return StrValue(s), nil
	case Type:
		tt, ok := TypeByName(text)
		if !ok || tt == Nil || tt == Label || tt == Type || tt == Undefined {
			return Value{}, &LexicalError{Literal: text, Want: "type"}
		}
		return TypeValue(tt), nil
	case Undefined:
		return Value{}, &LexicalError{Literal: typeName, Want: "variable type"}
	}
	return Value{}, errors.Errorf("internal error: unhandled literal type %q", typeName)
}

// parseStringLiteral decodes \ddd escapes (three decimal digits, encoding a
// single UTF-8 byte) in place; every other rune passes through unchanged. A
// missing literal is the empty string.
func parseStringLiteral(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	var out strings.Builder
	var raw []byte
	flush := func() error {
		if len(raw) == 0 {
			return nil
		}
		if !utf8.Valid(raw) {
			return errors.Errorf("invalid utf-8 byte escape sequence")
		}
		out.Write(raw)
		raw = raw[:0]
		return nil
	}
	i := 0
	for i < len(s) {
		if s[i] == '\\' && i+4 <= len(s) && isDecimalDigit(s[i+1]) && isDecimalDigit(s[i+2]) && isDecimalDigit(s[i+3]) {
			n, err := strconv.Atoi(s[i+1 : i+4])
			if err != nil {
				return "", err
			}
			raw = append(raw, byte(n))
			i += 4
			continue
		}
		if err := flush(); err != nil {
			return "", err
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		out.WriteRune(r)
		i += size
	}
	if err := flush(); err != nil {
		return "", err
	}
	return out.String(), nil
}

func isDecimalDigit(b byte) bool { return b >= '0' && b <= '9' }

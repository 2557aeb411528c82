// Package loader parses an IPPcode21 XML source document into a sequence of
// vm.Instruction values ready for vm.NewContext, statically validating
// everything the virtual machine itself does not re-check at run time:
// document shape, instruction ordering and arity, opcode names, and the
// shape (not the run-time type) of every argument.
package loader

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ondryaso/ipp21vm/vm"
)

// MalformedError wraps a document that is not well-formed XML at all: a
// missing closing tag, invalid UTF-8, and the like. It carries exit 31.
type MalformedError struct{ Msg string }

func (e *MalformedError) Error() string    { return e.Msg }
func (e *MalformedError) ExitCode() vm.ExitCode { return vm.ExitXMLMalformed }

// FormatError is a well-formed document that violates the program schema:
// a bad root attribute, an unknown opcode, a gap in arg1/arg2/arg3, a wrong
// argument count. It carries exit 32.
type FormatError struct{ Msg string }

func (e *FormatError) Error() string    { return e.Msg }
func (e *FormatError) ExitCode() vm.ExitCode { return vm.ExitXMLFormat }

func malformedf(format string, args ...interface{}) error {
	return &MalformedError{Msg: fmt.Sprintf(format, args...)}
}

func formatf(format string, args ...interface{}) error {
	return &FormatError{Msg: fmt.Sprintf(format, args...)}
}

// xmlArg is the wire shape of an <argN> element: a required type attribute
// and its text content, with no sub-elements permitted.
type xmlArg struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
	Extra []any_ `xml:",any"`
}

type any_ struct {
	XMLName xml.Name
}

type xmlInstruction struct {
	Attrs []xml.Attr `xml:",any,attr"`
	Arg1  *xmlArg    `xml:"arg1"`
	Arg2  *xmlArg    `xml:"arg2"`
	Arg3  *xmlArg    `xml:"arg3"`
	Extra []any_     `xml:",any"`
}

type xmlProgram struct {
	XMLName      xml.Name         `xml:"program"`
	Attrs        []xml.Attr       `xml:",any,attr"`
	Instructions []xmlInstruction `xml:"instruction"`
}

var rootAttrs = map[string]bool{"language": true, "name": true, "description": true}
var instrAttrs = map[string]bool{"order": true, "opcode": true}

// Load reads a complete IPPcode21 XML document from r, validates it, and
// returns its instructions sorted by ascending order.
func Load(r io.Reader) ([]vm.Instruction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &MalformedError{Msg: fmt.Sprintf("reading source: %v", err)}
	}

	var doc xmlProgram
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedError{Msg: fmt.Sprintf("parsing XML: %v", err)}
	}

	if err := validateAttrs(doc.Attrs, rootAttrs, "program"); err != nil {
		return nil, err
	}
	lang, ok := attrValue(doc.Attrs, "language")
	if !ok || lang != "IPPcode21" {
		return nil, formatf(`root element must carry language="IPPcode21"`)
	}

	type ordered struct {
		order int
		instr vm.Instruction
	}
	seen := make(map[int]bool, len(doc.Instructions))
	out := make([]ordered, 0, len(doc.Instructions))

	for i, xi := range doc.Instructions {
		if err := validateAttrs(xi.Attrs, instrAttrs, "instruction"); err != nil {
			return nil, err
		}
		if len(xi.Extra) != 0 {
			return nil, formatf("instruction #%d: unexpected child element %q", i, xi.Extra[0].XMLName.Local)
		}
		opcodeName, ok := attrValue(xi.Attrs, "opcode")
		if !ok {
			return nil, formatf("instruction #%d: missing opcode attribute", i)
		}
		orderStr, ok := attrValue(xi.Attrs, "order")
		if !ok {
			return nil, formatf("instruction #%d: missing order attribute", i)
		}
		order, err := strconv.Atoi(strings.TrimSpace(orderStr))
		if err != nil || order <= 0 {
			return nil, formatf("instruction #%d: order must be a positive integer, got %q", i, orderStr)
		}
		if seen[order] {
			return nil, formatf("duplicate instruction order %d", order)
		}
		seen[order] = true

		def, ok := vm.Lookup(opcodeName)
		if !ok {
			return nil, formatf("instruction #%d: unknown opcode %q", i, opcodeName)
		}

		// buildArg and collectArgs already return CodedError values (either a
		// FormatError or a vm.LexicalError); they are returned as-is rather
		// than wrapped, so a caller's type assertion to vm.CodedError keeps
		// working all the way up.
		argXMLs, err := collectArgs(xi)
		if err != nil {
			return nil, err
		}
		if len(argXMLs) != len(def.ArgKinds) {
			return nil, formatf("%s at order %d: expected %d argument(s), got %d", def.Name, order, len(def.ArgKinds), len(argXMLs))
		}

		args := make([]vm.Arg, len(argXMLs))
		for j, ax := range argXMLs {
			a, err := buildArg(def.Name, def.ArgKinds[j], ax)
			if err != nil {
				return nil, err
			}
			args[j] = a
		}

		out = append(out, ordered{order: order, instr: vm.Instruction{Opcode: def.Name, Args: args, Def: def}})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].order < out[j].order })

	result := make([]vm.Instruction, len(out))
	for i, o := range out {
		result[i] = o.instr
	}
	return result, nil
}

// collectArgs returns an instruction's present arg1..arg3 elements in order,
// rejecting gaps (arg2 present without arg1, etc).
func collectArgs(xi xmlInstruction) ([]*xmlArg, error) {
	slots := [3]*xmlArg{xi.Arg1, xi.Arg2, xi.Arg3}
	var args []*xmlArg
	gapped := false
	for _, s := range slots {
		if s == nil {
			gapped = true
			continue
		}
		if gapped {
			return nil, formatf("argument gap: a later argN is present without an earlier one")
		}
		args = append(args, s)
	}
	return args, nil
}

func buildArg(opcode string, kind vm.ArgKind, ax *xmlArg) (vm.Arg, error) {
	if len(ax.Extra) != 0 {
		return vm.Arg{}, formatf("argument elements may not contain sub-elements")
	}
	if ax.Type == "var" {
		if kind != vm.KindVar && kind != vm.KindSymb {
			return vm.Arg{}, formatf("%s does not accept a variable in this position", opcode)
		}
		frame, name, ok := vm.ParseVarName(strings.TrimSpace(ax.Value))
		if !ok {
			return vm.Arg{}, &vm.LexicalError{Literal: ax.Value, Want: "variable identifier", Opcode: opcode}
		}
		return vm.VarArg(frame, name), nil
	}

	val, err := vm.ParseLiteral(ax.Type, ax.Value)
	if err != nil {
		if le, ok := err.(*vm.LexicalError); ok {
			le.Opcode = opcode
		}
		return vm.Arg{}, err
	}
	switch kind {
	case vm.KindVar:
		return vm.Arg{}, formatf("%s requires a variable in this position, got a constant", opcode)
	case vm.KindLabel:
		if val.Type != vm.Label {
			return vm.Arg{}, formatf("%s requires a label argument, got type %q", opcode, ax.Type)
		}
		return vm.LabelArg(val.Str()), nil
	case vm.KindType:
		if val.Type != vm.Type {
			return vm.Arg{}, formatf("%s requires a type-name argument, got type %q", opcode, ax.Type)
		}
		return vm.ConstArg(val), nil
	default:
		// The "Any" descriptor (KindSymb) admits int, string, bool, float and
		// nil constants, not label or type literals.
		if val.Type == vm.Label || val.Type == vm.Type {
			return vm.Arg{}, formatf("%s does not accept a %s literal in this position", opcode, ax.Type)
		}
		return vm.ConstArg(val), nil
	}
}

func attrValue(attrs []xml.Attr, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func validateAttrs(attrs []xml.Attr, allowed map[string]bool, elem string) error {
	seen := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		if !allowed[a.Name.Local] {
			return formatf("%s: unexpected attribute %q", elem, a.Name.Local)
		}
		if seen[a.Name.Local] {
			return formatf("%s: duplicate attribute %q", elem, a.Name.Local)
		}
		seen[a.Name.Local] = true
	}
	return nil
}

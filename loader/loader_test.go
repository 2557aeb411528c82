package loader

import (
	"strings"
	"testing"

	"github.com/ondryaso/ipp21vm/vm"
)

const validProgram = `<?xml version="1.0" encoding="UTF-8"?>
<program language="IPPcode21">
  <instruction order="3" opcode="write">
    <arg1 type="var">GF@x</arg1>
  </instruction>
  <instruction order="2" opcode="MOVE">
    <arg1 type="var">GF@x</arg1>
    <arg2 type="int">42</arg2>
  </instruction>
  <instruction order="1" opcode="defvar">
    <arg1 type="var">GF@x</arg1>
  </instruction>
</program>`

func TestLoadSortsByOrder(t *testing.T) {
	instrs, err := Load(strings.NewReader(validProgram))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if len(instrs) != 3 {
		t.Fatalf("got %d instructions, want 3", len(instrs))
	}
	want := []string{"DEFVAR", "MOVE", "WRITE"}
	for i, w := range want {
		if instrs[i].Opcode != w {
			t.Errorf("instruction %d: got %q, want %q", i, instrs[i].Opcode, w)
		}
	}
}

func TestLoadRejectsWrongLanguage(t *testing.T) {
	src := `<program language="notIPP"></program>`
	if _, err := Load(strings.NewReader(src)); err == nil {
		t.Error("expected a format error for the wrong language attribute")
	} else if ce, ok := err.(vm.CodedError); !ok || ce.ExitCode() != vm.ExitXMLFormat {
		t.Errorf("got %v, want ExitXMLFormat", err)
	}
}

func TestLoadRejectsUnknownRootAttribute(t *testing.T) {
	src := `<program language="IPPcode21" bogus="x"></program>`
	if _, err := Load(strings.NewReader(src)); err == nil {
		t.Error("expected a format error for the unknown root attribute")
	}
}

func TestLoadRejectsDuplicateOrder(t *testing.T) {
	src := `<program language="IPPcode21">
  <instruction order="1" opcode="createframe"></instruction>
  <instruction order="1" opcode="pushframe"></instruction>
</program>`
	if _, err := Load(strings.NewReader(src)); err == nil {
		t.Error("expected a format error for the duplicate order")
	}
}

func TestLoadRejectsUnknownOpcode(t *testing.T) {
	src := `<program language="IPPcode21">
  <instruction order="1" opcode="FROBNICATE"></instruction>
</program>`
	if _, err := Load(strings.NewReader(src)); err == nil {
		t.Error("expected a format error for the unknown opcode")
	}
}

func TestLoadRejectsArgGap(t *testing.T) {
	src := `<program language="IPPcode21">
  <instruction order="1" opcode="add">
    <arg1 type="var">GF@r</arg1>
    <arg3 type="int">1</arg3>
  </instruction>
</program>`
	if _, err := Load(strings.NewReader(src)); err == nil {
		t.Error("expected a format error for the arg2 gap")
	}
}

func TestLoadRejectsWrongArity(t *testing.T) {
	src := `<program language="IPPcode21">
  <instruction order="1" opcode="createframe">
    <arg1 type="int">1</arg1>
  </instruction>
</program>`
	if _, err := Load(strings.NewReader(src)); err == nil {
		t.Error("expected a format error: CREATEFRAME takes no arguments")
	}
}

func TestLoadRejectsBadLiteral(t *testing.T) {
	src := `<program language="IPPcode21">
  <instruction order="1" opcode="move">
    <arg1 type="var">GF@r</arg1>
    <arg2 type="int">not-a-number</arg2>
  </instruction>
</program>`
	if _, err := Load(strings.NewReader(src)); err == nil {
		t.Error("expected a lexical error for the malformed int literal")
	}
}

func TestLoadRejectsMalformedXML(t *testing.T) {
	src := `<program language="IPPcode21">`
	if _, err := Load(strings.NewReader(src)); err == nil {
		t.Error("expected a malformed-XML error for the unclosed root element")
	} else if ce, ok := err.(vm.CodedError); !ok || ce.ExitCode() != vm.ExitXMLMalformed {
		t.Errorf("got %v, want ExitXMLMalformed", err)
	}
}

func TestLoadRejectsLabelLiteralInSymbPosition(t *testing.T) {
	src := `<program language="IPPcode21">
  <instruction order="1" opcode="move">
    <arg1 type="var">GF@r</arg1>
    <arg2 type="label">somewhere</arg2>
  </instruction>
</program>`
	if _, err := Load(strings.NewReader(src)); err == nil {
		t.Error("expected a format error: MOVE's source does not accept a label literal")
	}
}

func TestLoadRejectsTypeLiteralInSymbPosition(t *testing.T) {
	src := `<program language="IPPcode21">
  <instruction order="1" opcode="write">
    <arg1 type="type">int</arg1>
  </instruction>
</program>`
	if _, err := Load(strings.NewReader(src)); err == nil {
		t.Error("expected a format error: WRITE's argument does not accept a type literal")
	}
}

func TestLoadBuildsLabelArgument(t *testing.T) {
	src := `<program language="IPPcode21">
  <instruction order="1" opcode="jump">
    <arg1 type="label">target</arg1>
  </instruction>
  <instruction order="2" opcode="label">
    <arg1 type="label">target</arg1>
  </instruction>
</program>`
	instrs, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if instrs[0].Args[0].Value.Str() != "target" {
		t.Errorf("got %q, want %q", instrs[0].Args[0].Value.Str(), "target")
	}
}

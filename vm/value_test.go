package vm

import (
	"testing"

	"github.com/pkg/errors"
)

func TestParseLiteralInt(t *testing.T) {
	v, err := ParseLiteral("int", "-42")
	if err != nil {
		t.Errorf("%+v", errors.Wrap(err, "unexpected error"))
	}
	if v.Type != Int || v.Int() != -42 {
		t.Errorf("got %v, want int -42", v)
	}
	if _, err := ParseLiteral("int", "not-a-number"); err == nil {
		t.Error("expected a lexical error")
	}
}

func TestParseLiteralFloat(t *testing.T) {
	cases := []struct {
		text string
		want float64
	}{
		{"0x1.8p+1", 3},
		{"1.5", 1.5},
	}
	for _, c := range cases {
		v, err := ParseLiteral("float", c.text)
		if err != nil {
			t.Errorf("%+v", errors.Wrapf(err, "parsing %q", c.text))
			continue
		}
		if v.Type != Float || v.Float() != c.want {
			t.Errorf("parsing %q: got %v, want float %v", c.text, v, c.want)
		}
	}
}

func TestParseLiteralBool(t *testing.T) {
	if v, err := ParseLiteral("bool", "true"); err != nil || !v.Bool() {
		t.Errorf("got %v, %v", v, err)
	}
	if v, err := ParseLiteral("bool", "false"); err != nil || v.Bool() {
		t.Errorf("got %v, %v", v, err)
	}
	if _, err := ParseLiteral("bool", "True"); err == nil {
		t.Error("expected a lexical error for non-lowercase bool literal")
	}
}

func TestParseLiteralString(t *testing.T) {
	v, err := ParseLiteral("string", `a\032b`)
	if err != nil {
		t.Errorf("%+v", err)
	}
	if v.Str() != "a b" {
		t.Errorf("got %q, want %q", v.Str(), "a b")
	}
	v, err = ParseLiteral("string", "")
	if err != nil || v.Str() != "" {
		t.Errorf("empty literal: got %q, %v", v.Str(), err)
	}
}

func TestParseLiteralNil(t *testing.T) {
	if v, err := ParseLiteral("nil", "nil"); err != nil || v.Type != Nil {
		t.Errorf("got %v, %v", v, err)
	}
	if _, err := ParseLiteral("nil", "null"); err == nil {
		t.Error("expected a lexical error")
	}
}

func TestParseLiteralType(t *testing.T) {
	v, err := ParseLiteral("type", "int")
	if err != nil || v.TypeTag() != Int {
		t.Errorf("got %v, %v", v, err)
	}
	for _, bad := range []string{"nil", "label", "type", "undefined"} {
		if _, err := ParseLiteral("type", bad); err == nil {
			t.Errorf("expected %q to be rejected as a type literal", bad)
		}
	}
}

func TestParseVarName(t *testing.T) {
	frame, name, ok := ParseVarName("GF@counter")
	if !ok || frame != "GF" || name != "counter" {
		t.Errorf("got (%q, %q, %v)", frame, name, ok)
	}
	if _, _, ok := ParseVarName("XX@counter"); ok {
		t.Error("expected an unknown frame prefix to be rejected")
	}
	if _, _, ok := ParseVarName("GF@"); ok {
		t.Error("expected an empty variable name to be rejected")
	}
}

func TestValueEqual(t *testing.T) {
	if !NilValue().Equal(NilValue()) {
		t.Error("two nils must be equal")
	}
	if IntValue(1).Equal(IntValue(2)) {
		t.Error("1 must not equal 2")
	}
	if IntValue(1).Equal(FloatValue(1)) {
		t.Error("values of different types must never be equal")
	}
}

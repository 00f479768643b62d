package normalize

import (
	"testing"

	"ordernorm/pkg/value"
)

func TestCapitalizeKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "order", want: "Order"},
		{input: "Order", want: "Order"},
		{input: "order id", want: "Order id"},
		{input: "éclair", want: "Éclair"},
		{input: "1st", want: "1st"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CapitalizeKey(tt.input); got != tt.want {
				t.Errorf("CapitalizeKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestUnderscoreKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "Order id", want: "Order_id"},
		{input: "a  b", want: "a__b"},
		{input: "already_ok", want: "already_ok"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := UnderscoreKey(tt.input); got != tt.want {
				t.Errorf("UnderscoreKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestKeyPasses_Idempotent(t *testing.T) {
	inputs := []string{
		`{"order id":{"customer name":"x","lines":[{"unit price":"1"}]}}`,
		`[{"a":1},{"b c":[{"d e":null}]}]`,
		`{"":{"x":1}}`,
	}

	passes := map[string]func(value.Value) value.Value{
		"capitalize": CapitalizeKeys,
		"underscore": UnderscoreKeys,
	}

	for name, pass := range passes {
		for _, input := range inputs {
			t.Run(name+" "+input, func(t *testing.T) {
				once := pass(mustParse(t, input))
				twice := pass(once)
				if !value.Equal(once, twice) {
					t.Errorf("not idempotent: once=%s twice=%s", mustJSON(t, once), mustJSON(t, twice))
				}
			})
		}
	}
}

package normalize

import (
	"testing"

	"ordernorm/pkg/value"
)

func TestNormalizePercentage(t *testing.T) {
	tests := []struct {
		input string
		want  value.Value
	}{
		{input: "21%", want: value.Int(21)},
		{input: "21.9%", want: value.Int(21)},
		{input: " 6% ", want: value.Int(6)},
		{input: "0%", want: value.Int(0)},
		{input: "abc", want: value.String("abc")},
		{input: "21 %", want: value.String("21 %")},
		{input: "-5%", want: value.String("-5%")},
		{input: "21%%", want: value.String("21%%")},
		{input: "21", want: value.String("21")},
		{input: "99999999999999999999%", want: value.String("99999999999999999999%")},
		{input: "9223372036854775807%", want: value.String("9223372036854775807%")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizePercentage(tt.input)
			if !value.Equal(got, tt.want) {
				t.Errorf("NormalizePercentage(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestVATPercentage(t *testing.T) {
	got, err := VATPercentage("12.5%")
	if err != nil || got != 12 {
		t.Errorf("VATPercentage(12.5%%) = %d, %v; want 12, nil", got, err)
	}

	if _, err := VATPercentage("twelve"); err == nil {
		t.Error("expected error for non-percentage input")
	}
}

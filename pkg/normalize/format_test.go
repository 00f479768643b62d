package normalize

import "testing"

func TestFormatNumberEU(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{input: 11560, want: "11 560,00"},
		{input: 1234567.891, want: "1 234 567,89"},
		{input: 999, want: "999,00"},
		{input: 0, want: "0,00"},
		{input: 0.5, want: "0,50"},
		{input: -1500.5, want: "-1 500,50"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatNumberEU(tt.input); got != tt.want {
				t.Errorf("FormatNumberEU(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

package sanitizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistinct(t *testing.T) {
	tests := []struct {
		name     string
		items    []string
		strategy Strategy
		want     []string
	}{
		{name: "folds country names", items: []string{"Belgium", " BELGIUM ", "France"}, strategy: FoldKey, want: []string{"belgium", "france"}},
		{name: "drops blanks", items: []string{"€", "", "  ", "EUR"}, strategy: strings.TrimSpace, want: []string{"€", "EUR"}},
		{name: "first seen wins", items: []string{"b", "a", "B"}, strategy: FoldKey, want: []string{"b", "a"}},
		{name: "nil input", items: nil, strategy: FoldKey, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Distinct(tt.items, tt.strategy))
		})
	}
}

package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ten digits", "5415550134", "(541) 555-0134"},
		{"already formatted", "(541) 555-0134", "(541) 555-0134"},
		{"dashed", "541-555-0134", "(541) 555-0134"},
		{"leading country code dropped", "15415550134", "(541) 555-0134"},
		{"plus one prefix", "+1 541 555 0134", "(541) 555-0134"},
		{"too few digits passes through", "555-0134", "555-0134"},
		{"empty passes through", "", ""},
		{"letters stripped before count", "ext. 555-0134", "ext. 555-0134"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPhone(tt.in))
		})
	}
}

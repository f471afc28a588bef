package money

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{25.0, "€25.00"},
		{0, "€0.00"},
		{-5.0, "-€5.00"},
		{2.505, "€2.51"},
	}
	for _, tt := range tests {
		if got := Format(tt.amount); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

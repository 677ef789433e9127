package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSanitize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"10,50", "10,50"},
		{"R$ 10.5", "10.5"},
		{"abc", ""},
		{"-3", "3"},
		{"1 234,5x", "1234,5"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"10,50", "10.5", true},
		{"10.50", "10.5", true},
		{"9", "9", true},
		{"0,99", "0.99", true},
		{",5", "0.5", true},
		{"7.", "7", true},
		{"10,5,3", "10.5", true},
		{"", "0", false},
		{"abc", "0", false},
	}
	for _, tt := range tests {
		got, ok := ParsePrice(tt.in)
		if ok != tt.wantOK {
			t.Errorf("ParsePrice(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParsePrice(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"3", 3, true},
		{"12abc", 12, true},
		{"3,5", 3, true},
		{"", 0, false},
		{"x1", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseQuantity(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseQuantity(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestTotal(t *testing.T) {
	tests := []struct {
		price, qty string
		want       string
	}{
		{"10,50", "3", "R$ 31,50"},
		{"9.9", "2", "R$ 19,80"},
		{"0,333", "3", "R$ 1,00"},
		{"1,005", "1", "R$ 1,01"},
		{"", "3", "R$ 0,00"},
		{"10", "", "R$ 0,00"},
	}
	for _, tt := range tests {
		if got := FormatBRL(Total(tt.price, tt.qty)); got != tt.want {
			t.Errorf("Total(%q, %q) = %q, want %q", tt.price, tt.qty, got, tt.want)
		}
	}
}

func TestFormatField(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{10.5, "10,5"},
		{10, "10"},
		{9.99, "9,99"},
	}
	for _, tt := range tests {
		if got := FormatField(tt.in); got != tt.want {
			t.Errorf("FormatField(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := Plain(9.9); got != "9.9" {
		t.Errorf("Plain(9.9) = %q, want 9.9", got)
	}
}

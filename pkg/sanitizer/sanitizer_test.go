package sanitizer

import (
	"reflect"
	"testing"
)

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid E.164 format", "+972541234567", "+972541234567"},
		{"with spaces", "+972 54 123 4567", "+972541234567"},
		{"with dashes", "+972-54-123-4567", "+972541234567"},
		{"us with parentheses", "+1 (650) 253-0000", "+16502530000"},
		{"leading and trailing spaces", "  +972541234567  ", "+972541234567"},
		{"empty string", "", ""},
		{"only whitespace", "   ", ""},
		{"garbage is kept for validation", " not-a-phone ", "not-a-phone"},
		{"too short is kept for validation", "+1 650", "+1 650"},
		{"israeli mobile with dashes", "+972-52-765-4321", "+972527654321"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizePhone(tt.input); got != tt.want {
				t.Errorf("SanitizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim spaces", "  Dana Scully  ", "Dana Scully"},
		{"multiple spaces between words", "Dana    Scully", "Dana Scully"},
		{"tabs and newlines", "Stage\t\nLeft", "Stage Left"},
		{"only whitespace", "   \t\n  ", ""},
		{"preserve special characters", " Café & Grip™ ", "Café & Grip™"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := SanitizeText(SanitizeText(tt.input)); again != tt.want {
				t.Errorf("SanitizeText is not idempotent for %q", tt.input)
			}
		})
	}
}

func TestSanitizeRoleAndEmail(t *testing.T) {
	if got := SanitizeRole("  Key   Grip "); got != "key grip" {
		t.Errorf("SanitizeRole = %q", got)
	}
	if got := SanitizeEmail(" Gaffer@Example.COM "); got != "gaffer@example.com" {
		t.Errorf("SanitizeEmail = %q", got)
	}
}

func TestSanitizeIDs(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"trims and dedupes", []string{" a", "b ", "a", ""}, []string{"a", "b"}},
		{"keeps order", []string{"c", "a", "b"}, []string{"c", "a", "b"}},
		{"nil input", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeIDs(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SanitizeIDs(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

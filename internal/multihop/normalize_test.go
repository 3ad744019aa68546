package multihop

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Aamir KHAN", "aamir khan"},
		{"collapses whitespace", "a  b\t\nc", "a b c"},
		{"trims", "  padded  ", "padded"},
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"The Director  of LAGAAN",
		"  mixed \t Case\nwith   runs ",
		"already normalized",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim spaces", input: "  Green Arena  ", want: "Green Arena"},
		{name: "multiple spaces between words", input: "Green    Arena", want: "Green Arena"},
		{name: "tabs and newlines", input: "Green\t\nArena", want: "Green Arena"},
		{name: "empty string", input: "", want: ""},
		{name: "only whitespace", input: "   \t\n  ", want: ""},
		{name: "preserve special characters", input: " Café & Turf ", want: "Café & Turf"},
		{name: "devanagari", input: " खेल  मैदान ", want: "खेल मैदान"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if got := TrimAndNormalize(TrimAndNormalize(tt.input)); got != tt.want {
				t.Errorf("TrimAndNormalize is not idempotent for %q", tt.input)
			}
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Football", "football"},
		{"  BADMINTON ", "badminton"},
		{"Box  Cricket", "box cricket"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeLabel(tt.input); got != tt.want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	if got := NormalizeBaseURL(" https://play.example.com/ "); got != "https://play.example.com" {
		t.Errorf("NormalizeBaseURL() = %q", got)
	}
}

package sanitizer

import (
	"reflect"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "9876543210", want: "9876543210"},
		{name: "spaces", input: " 98765 43210 ", want: "9876543210"},
		{name: "dashes and parentheses", input: "(987) 654-3210", want: "9876543210"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.input); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsLocalPhone(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"9876543210", true},
		{"987654321", false},
		{"98765432100", false},
		{"98765a3210", false},
		{"+919876543210", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsLocalPhone(tt.input); got != tt.want {
			t.Errorf("IsLocalPhone(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestWhatsAppRecipient(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "local number", input: "9876543210", want: "919876543210", wantOK: true},
		{name: "already prefixed with plus", input: "+919876543210", want: "919876543210", wantOK: true},
		{name: "with spaces", input: "98765 43210", want: "919876543210", wantOK: true},
		{name: "too short", input: "12345", wantOK: false},
		{name: "letters", input: "not-a-phone", wantOK: false},
		{name: "empty", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := WhatsAppRecipient(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("WhatsAppRecipient(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("WhatsAppRecipient(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWhatsAppRecipients(t *testing.T) {
	got := WhatsAppRecipients([]string{"9876543210", "12345", "98765 43210", "9876543211"})
	want := []string{"919876543210", "919876543211"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WhatsAppRecipients() = %v, want %v", got, want)
	}
}

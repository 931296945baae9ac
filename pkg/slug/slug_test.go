package slug

import (
	"testing"
	"time"
)

func TestForEvent(t *testing.T) {
	date := time.Date(2025, 5, 4, 0, 0, 0, 0, time.UTC)

	got := ForEvent("Green Arena", "Indiranagar", date, "6-7 PM")
	want := "green-arena-indiranagar-2025-05-04-6-7-pm"
	if got != want {
		t.Errorf("ForEvent() = %q, want %q", got, want)
	}

	if again := ForEvent("Green Arena", "Indiranagar", date, "6-7 PM"); again != got {
		t.Errorf("ForEvent() not deterministic: %q vs %q", again, got)
	}
}

func TestForEvent_UsesUTCDate(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	date := time.Date(2025, 5, 4, 2, 0, 0, 0, ist)

	got := ForEvent("Arena", "Koramangala", date, "Morning")
	want := "arena-koramangala-2025-05-03-morning"
	if got != want {
		t.Errorf("ForEvent() = %q, want %q", got, want)
	}
}

func TestDisambiguate(t *testing.T) {
	tests := []struct {
		base, id, want string
	}{
		{"arena-x", "663a1f0b2c3d4e5f60718293", "arena-x-18293"},
		{"arena-x", "abc", "arena-x-abc"},
	}
	for _, tt := range tests {
		if got := Disambiguate(tt.base, tt.id); got != tt.want {
			t.Errorf("Disambiguate(%q, %q) = %q, want %q", tt.base, tt.id, got, tt.want)
		}
	}
}

func TestPathDecoding(t *testing.T) {
	if got := SpacedName("green-arena"); got != "green arena" {
		t.Errorf("SpacedName() = %q", got)
	}
	if got := SlotFromPath("6.00-PM_7.00-PM"); got != "6:00 PM - 7:00 PM" {
		t.Errorf("SlotFromPath() = %q", got)
	}
}

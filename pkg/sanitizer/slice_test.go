package sanitizer

import (
	"reflect"
	"testing"
)

func TestNormalizeAmenities(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "trim whitespace",
			input: []string{" Parking ", "  Washroom  "},
			want:  []string{"Parking", "Washroom"},
		},
		{
			name:  "remove duplicates",
			input: []string{"Parking", " Parking", "Parking "},
			want:  []string{"Parking"},
		},
		{
			name:  "filter empty strings",
			input: []string{"Parking", "", "  ", "Drinking Water"},
			want:  []string{"Parking", "Drinking Water"},
		},
		{
			name:  "empty input",
			input: []string{},
			want:  []string{},
		},
		{
			name:  "nil input",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAmenities(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeAmenities(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

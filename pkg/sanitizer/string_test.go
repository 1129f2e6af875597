package sanitizer

import (
	"reflect"
	"testing"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  deep clean  ",
			want:  "deep clean",
		},
		{
			name:  "multiple spaces between words",
			input: "pipe    leak",
			want:  "pipe leak",
		},
		{
			name:  "tabs and newlines",
			input: "owner\t\nstay",
			want:  "owner stay",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "control characters dropped",
			input: "renovation\x00\x07",
			want:  "renovation",
		},
		{
			name:  "preserve unicode",
			input: " Rénovation ™ ",
			want:  "Rénovation ™",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeRoomNumber(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"101", "101"},
		{" 101 ", "101"},
		{"12a", "12a"},
		{"B 204", "B204"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeRoomNumber(tt.input); got != tt.want {
			t.Errorf("NormalizeRoomNumber(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeRoomNumbersDedup(t *testing.T) {
	got := NormalizeRoomNumbers([]string{"101", " 101", "", "B 204", "B204", "102"})
	want := []string{"101", "B204", "102"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeRoomNumbers() = %v, want %v", got, want)
	}

	if got := NormalizeRoomNumbers(nil); len(got) != 0 || got == nil {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

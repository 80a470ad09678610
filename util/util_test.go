package util

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"10MB", 10 * 1024 * 1024},
		{"512KB", 512 * 1024},
		{"2GB", 2 * 1024 * 1024 * 1024},
		{"1024", 1024},
		{"  10MB  ", 10 * 1024 * 1024},
		{"10mb", 10 * 1024 * 1024},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := ParseSize(tc.input, 0); got != tc.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseSizeDefault(t *testing.T) {
	defaultVal := int64(5 * 1024 * 1024)
	if got := ParseSize("", defaultVal); got != defaultVal {
		t.Errorf("expected default %d, got %d", defaultVal, got)
	}
	if got := ParseSize("not-a-size", defaultVal); got != defaultVal {
		t.Errorf("expected default %d for garbage, got %d", defaultVal, got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Jane Doe", "Jane_Doe"},
		{"  jane  ", "jane"},
		{"a/b\\c", "a_b_c"},
		{"???", "entry"},
		{"", "entry"},
		{"call-42.final", "call-42.final"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := SanitizeFilename(tc.input, "entry"); got != tc.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

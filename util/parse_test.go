package util

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 64},
		{"1MB", 1 << 20},
		{" 512kb ", 512 << 10},
		{"2GB", 2 << 30},
		{"100B", 100},
		{"4096", 4096},
		{"10 MB", 10 << 20},
		{"abc", 64},
		{"-1MB", 64},
		{"0", 64},
	}
	for _, tc := range tests {
		if got := ParseSize(tc.in, 64); got != tc.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	if got := MaskSecret("sk-abcdef123", 4); got != "sk-a***" {
		t.Errorf("got %q", got)
	}
	if got := MaskSecret("abc", 4); got != "***" {
		t.Errorf("short secret leaked: %q", got)
	}
	if got := MaskSecret("", 4); got != "" {
		t.Errorf("empty secret = %q", got)
	}
}

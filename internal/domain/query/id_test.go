package query

import "testing"

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "B0B5HMJ3W9", "B0B5HMJ3W9"},
		{"whitespace", "  B0B5HMJ3W9\n", "B0B5HMJ3W9"},
		{"quoted", `"B0B5HMJ3W9"`, "B0B5HMJ3W9"},
		{"single quoted", "'B0B5HMJ3W9'", "B0B5HMJ3W9"},
		{"trailing encoded newline", "B0B5HMJ3W9%0A", "B0B5HMJ3W9"},
		{"trailing encoded crlf", "B0B5HMJ3W9%0D%0A", "B0B5HMJ3W9"},
		{"case-insensitive encoding", "B0B5HMJ3W9%0a", "B0B5HMJ3W9"},
		{"url-encoded space", "B0B5%20HMJ3W9", "B0B5 HMJ3W9"},
		{"zero-width space", "B0B5\u200bHMJ3W9", "B0B5HMJ3W9"},
		{"bom", "\ufeffB0B5HMJ3W9", "B0B5HMJ3W9"},
		{"control chars", "B0B5\x01HMJ3W9", "B0B5HMJ3W9"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeID(tt.raw); got != tt.want {
				t.Errorf("NormalizeID(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestAlternateID(t *testing.T) {
	// Double-encoded newline: NormalizeID decodes %250A to %0A and leaves it.
	raw := "B0B5HMJ3W9%250A"
	normalized := NormalizeID(raw)
	alt := AlternateID(raw, normalized)
	if alt != "B0B5HMJ3W9" {
		t.Errorf("AlternateID(%q, %q) = %q, want %q", raw, normalized, alt, "B0B5HMJ3W9")
	}
}

func TestAlternateID_NoNewForm(t *testing.T) {
	raw := "B0B5HMJ3W9"
	normalized := NormalizeID(raw)
	if alt := AlternateID(raw, normalized); alt != "" {
		t.Errorf("expected empty alternate for clean id, got %q", alt)
	}
}

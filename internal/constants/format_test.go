package constants

import "testing"

func TestOutputFormat_Valid(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   bool
	}{
		{FormatPNG, true},
		{FormatArrow, true},
		{FormatHTML, true},
		{FormatTerminal, true},
		{"", false},
		{"gif", false},
		{"PNG", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := tt.format.Valid(); got != tt.want {
				t.Errorf("OutputFormat(%q).Valid() = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestAllFormats_AreValid(t *testing.T) {
	for _, f := range AllFormats {
		if !f.Valid() {
			t.Errorf("AllFormats contains invalid format %q", f)
		}
	}
}

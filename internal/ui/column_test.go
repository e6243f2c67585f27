package ui

import "testing"

func TestColumnString(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"testmetest", 0, ""},
		{"testmetest", 1, "."},
		{"testmetest", 2, ".."},
		{"testmetest", 3, "..."},
		{"testmetest", 4, "t..."},
		{"", 6, "      "},
		{"test", 6, "test  "},
		{"testme", 6, "testme"},
		{"testmetest", 6, "tes..."},
		{"héllo wörld", 8, "héllo..."},
		{"", 0, ""},
	}

	for _, tt := range tests {
		if got := ColumnString(tt.text, tt.width); got != tt.want {
			t.Errorf("ColumnString(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

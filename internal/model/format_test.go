package model

import "testing"

func TestOrDefault(t *testing.T) {
	if got := OrDefault("", "None"); got != "None" {
		t.Errorf("OrDefault(empty) = %q, want None", got)
	}
	if got := OrDefault("Robin", "None"); got != "Robin" {
		t.Errorf("OrDefault(Robin) = %q, want Robin", got)
	}
}

func TestFormatDateAndTime(t *testing.T) {
	tests := []struct {
		fn   func(string) string
		in   string
		want string
	}{
		{FormatDate, "2026-03-10", "March 10, 2026"},
		{FormatDate, "next tuesday", "next tuesday"},
		{FormatDate, "", ""},
		{FormatTime, "19:00", "7:00 PM"},
		{FormatTime, "7pm", "7pm"},
		{FormatTime, "", ""},
	}
	for _, tt := range tests {
		if got := tt.fn(tt.in); got != tt.want {
			t.Errorf("format(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package model

import "time"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// OrDefault returns s, or def when s is empty.
func OrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// FormatDate renders a YYYY-MM-DD date as "March 10, 2026". Values that do
// not parse are returned unchanged.
func FormatDate(date string) string {
	if date == "" {
		return ""
	}
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("January 2, 2006")
}

// FormatTime renders a 24h HH:MM time as "1:00 PM".
func FormatTime(clock string) string {
	if clock == "" {
		return ""
	}
	t, err := time.Parse(TimeLayout, clock)
	if err != nil {
		return clock
	}
	return t.Format("3:04 PM")
}

package model

import "time"

// Calendar names one of the two calendars appointments are filed in.
type Calendar string

const (
	CalendarActive  Calendar = "active"
	CalendarArchive Calendar = "archive"
)

// CalendarFor picks the calendar an appointment in status s belongs in.
func CalendarFor(s Status) Calendar {
	if s.Terminal() {
		return CalendarArchive
	}
	return CalendarActive
}

// CalendarEvent is an event held by the built-in calendar backend.
type CalendarEvent struct {
	ID            string    `json:"id"`
	Calendar      Calendar  `json:"calendar"`
	AppointmentID int64     `json:"appointment_id"`
	Summary       string    `json:"summary"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	Attendee      string    `json:"attendee"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Sequence      int       `json:"sequence"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

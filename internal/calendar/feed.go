package calendar

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/dukerupert/apptbook/internal/model"
)

const productID = "-//apptbook//appointments//EN"

// WriteFeed writes events as an RFC 5545 calendar named name. Times are
// written in UTC; loc only sets the calendar's display timezone.
func WriteFeed(w io.Writer, name string, events []model.CalendarEvent, loc *time.Location) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(name)
	if loc != nil {
		cal.SetXWRTimezone(loc.String())
	}

	for _, e := range events {
		ve := cal.AddEvent(e.ID + "@apptbook")
		ve.SetDtStampTime(e.UpdatedAt)
		ve.SetCreatedTime(e.CreatedAt)
		ve.SetModifiedAt(e.UpdatedAt)
		ve.SetSequence(e.Sequence)
		ve.SetStartAt(e.StartTime)
		ve.SetEndAt(e.EndTime)
		ve.SetSummary(e.Summary)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		if e.Attendee != "" {
			ve.AddAttendee(e.Attendee)
		}
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("serialize calendar: %w", err)
	}
	return nil
}

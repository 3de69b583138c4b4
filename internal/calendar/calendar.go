// Package calendar files appointments as events in an active and an archive
// calendar, and renders those calendars as subscribable ICS feeds.
package calendar

import (
	"context"
	"errors"

	"github.com/dukerupert/apptbook/internal/model"
)

// ErrEventNotFound is returned when the event id is not in the calendar.
var ErrEventNotFound = errors.New("calendar event not found")

// Adapter is a calendar backend.
type Adapter interface {
	// CreateEvent files a new event for appt and returns its id.
	CreateEvent(ctx context.Context, cal model.Calendar, appt *model.Appointment) (string, error)
	// UpdateEvent re-renders an existing event in place.
	UpdateEvent(ctx context.Context, cal model.Calendar, eventID string, appt *model.Appointment) error
	// MoveEvent moves an event between calendars. The returned id may differ
	// from eventID.
	MoveEvent(ctx context.Context, eventID string, from, to model.Calendar) (string, error)
}

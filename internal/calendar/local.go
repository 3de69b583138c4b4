package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/dukerupert/apptbook/internal/model"
	"github.com/dukerupert/apptbook/internal/store"
	"github.com/google/uuid"
)

// Local is the built-in calendar backend. Events live in SQLite and are
// published through the ICS feeds.
type Local struct {
	events *store.EventStore
	loc    *time.Location
}

func NewLocal(events *store.EventStore, loc *time.Location) *Local {
	if loc == nil {
		loc = time.UTC
	}
	return &Local{events: events, loc: loc}
}

func (l *Local) CreateEvent(ctx context.Context, cal model.Calendar, appt *model.Appointment) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e, err := Render(cal, appt, l.loc)
	if err != nil {
		return "", fmt.Errorf("render event: %w", err)
	}
	e.ID = uuid.NewString()

	if err := l.events.Insert(e); err != nil {
		return "", err
	}
	return e.ID, nil
}

func (l *Local) UpdateEvent(ctx context.Context, cal model.Calendar, eventID string, appt *model.Appointment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e, err := Render(cal, appt, l.loc)
	if err != nil {
		return fmt.Errorf("render event: %w", err)
	}
	e.ID = eventID

	ok, err := l.events.Update(cal, e)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s in %s", ErrEventNotFound, eventID, cal)
	}
	return nil
}

func (l *Local) MoveEvent(ctx context.Context, eventID string, from, to model.Calendar) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if from == to {
		return eventID, nil
	}

	existing, err := l.events.GetByID(eventID)
	if err != nil {
		return "", err
	}
	if existing == nil || existing.Calendar != from {
		return "", fmt.Errorf("%w: %s in %s", ErrEventNotFound, eventID, from)
	}

	moved, err := l.events.Move(eventID, to, uuid.NewString())
	if err != nil {
		return "", err
	}
	if moved == nil {
		return "", fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	return moved.ID, nil
}

// Events lists one calendar for the feed handler.
func (l *Local) Events(cal model.Calendar) ([]model.CalendarEvent, error) {
	return l.events.ListByCalendar(cal)
}

// Location is the timezone appointments are interpreted in.
func (l *Local) Location() *time.Location {
	return l.loc
}

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/apptbook/internal/model"
)

const calendarEventCols = `id, calendar, appointment_id, summary, description, location, attendee, start_time, end_time, sequence, created_at, updated_at`

func scanCalendarEvent(scanner interface{ Scan(...any) error }) (*model.CalendarEvent, error) {
	var e model.CalendarEvent
	err := scanner.Scan(&e.ID, &e.Calendar, &e.AppointmentID, &e.Summary, &e.Description, &e.Location,
		&e.Attendee, &e.StartTime, &e.EndTime, &e.Sequence, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// EventStore holds the events of the built-in calendars.
type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

// Insert stores e. The caller assigns e.ID.
func (s *EventStore) Insert(e *model.CalendarEvent) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO calendar_events (id, calendar, appointment_id, summary, description, location, attendee, start_time, end_time, sequence, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Calendar), e.AppointmentID, e.Summary, e.Description, e.Location, e.Attendee,
		e.StartTime.UTC(), e.EndTime.UTC(), e.Sequence, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert calendar event: %w", err)
	}
	e.CreatedAt, e.UpdatedAt = now, now
	return nil
}

func (s *EventStore) GetByID(id string) (*model.CalendarEvent, error) {
	e, err := scanCalendarEvent(s.db.QueryRow(
		`SELECT `+calendarEventCols+` FROM calendar_events WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query calendar event: %w", err)
	}
	return e, nil
}

// Update rewrites the event's content in place and bumps its sequence so
// feed subscribers pick up the change. It returns false when the event is
// not in calendar cal.
func (s *EventStore) Update(cal model.Calendar, e *model.CalendarEvent) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE calendar_events
		 SET summary = ?, description = ?, location = ?, attendee = ?, start_time = ?, end_time = ?,
		     sequence = sequence + 1, updated_at = ?
		 WHERE id = ? AND calendar = ?`,
		e.Summary, e.Description, e.Location, e.Attendee, e.StartTime.UTC(), e.EndTime.UTC(),
		time.Now().UTC(), e.ID, string(cal),
	)
	if err != nil {
		return false, fmt.Errorf("update calendar event: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Move copies the event into calendar to under newID and removes the
// original, the way a calendar service moves an event between calendars.
func (s *EventStore) Move(id string, to model.Calendar, newID string) (*model.CalendarEvent, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin move: %w", err)
	}
	defer tx.Rollback()

	e, err := scanCalendarEvent(tx.QueryRow(
		`SELECT `+calendarEventCols+` FROM calendar_events WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load calendar event: %w", err)
	}

	now := time.Now().UTC()
	_, err = tx.Exec(
		`INSERT INTO calendar_events (id, calendar, appointment_id, summary, description, location, attendee, start_time, end_time, sequence, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		newID, string(to), e.AppointmentID, e.Summary, e.Description, e.Location, e.Attendee,
		e.StartTime.UTC(), e.EndTime.UTC(), e.CreatedAt.UTC(), now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert moved event: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM calendar_events WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("delete original event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit move: %w", err)
	}

	e.ID = newID
	e.Calendar = to
	e.Sequence = 0
	e.UpdatedAt = now
	return e, nil
}

func (s *EventStore) Delete(id string) error {
	_, err := s.db.Exec("DELETE FROM calendar_events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	return nil
}

// ListByCalendar returns the events of one calendar ordered by start time.
func (s *EventStore) ListByCalendar(cal model.Calendar) ([]model.CalendarEvent, error) {
	rows, err := s.db.Query(
		`SELECT `+calendarEventCols+` FROM calendar_events WHERE calendar = ? ORDER BY start_time ASC`,
		string(cal),
	)
	if err != nil {
		return nil, fmt.Errorf("query calendar events: %w", err)
	}
	defer rows.Close()

	var events []model.CalendarEvent
	for rows.Next() {
		e, err := scanCalendarEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan calendar event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

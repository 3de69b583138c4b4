package store

import (
	"testing"
	"time"

	"github.com/dukerupert/apptbook/internal/database"
	"github.com/dukerupert/apptbook/internal/model"
)

func setupTestDB(t *testing.T) *EventStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewEventStore(db)
}

func sampleEvent(id string) *model.CalendarEvent {
	return &model.CalendarEvent{
		ID:            id,
		Calendar:      model.CalendarActive,
		AppointmentID: 7,
		Summary:       "📅 SCHEDULED: Alex - IN",
		Description:   "Client: Alex",
		Location:      "Fresno",
		StartTime:     time.Date(2026, 2, 5, 18, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2026, 2, 5, 19, 0, 0, 0, time.UTC),
	}
}

func TestInsertAndGetByID(t *testing.T) {
	s := setupTestDB(t)

	if err := s.Insert(sampleEvent("a")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.GetByID("a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected event, got nil")
	}
	if got.Summary != "📅 SCHEDULED: Alex - IN" {
		t.Errorf("summary = %q", got.Summary)
	}
	if got.Calendar != model.CalendarActive {
		t.Errorf("calendar = %q, want active", got.Calendar)
	}
	if !got.StartTime.Equal(time.Date(2026, 2, 5, 18, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", got.StartTime)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	s := setupTestDB(t)

	got, err := s.GetByID("missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing event")
	}
}

func TestUpdateBumpsSequence(t *testing.T) {
	s := setupTestDB(t)
	e := sampleEvent("a")
	s.Insert(e)

	e.Summary = "🔄 RESCHEDULED: Alex - IN"
	ok, err := s.Update(model.CalendarActive, e)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !ok {
		t.Fatal("expected update to find the event")
	}

	got, _ := s.GetByID("a")
	if got.Summary != "🔄 RESCHEDULED: Alex - IN" {
		t.Errorf("summary = %q", got.Summary)
	}
	if got.Sequence != 1 {
		t.Errorf("sequence = %d, want 1", got.Sequence)
	}

	ok, err = s.Update(model.CalendarArchive, e)
	if err != nil {
		t.Fatalf("update wrong calendar: %v", err)
	}
	if ok {
		t.Error("update in the wrong calendar should report false")
	}
}

func TestMoveEvent(t *testing.T) {
	s := setupTestDB(t)
	s.Insert(sampleEvent("a"))

	moved, err := s.Move("a", model.CalendarArchive, "b")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved == nil || moved.ID != "b" || moved.Calendar != model.CalendarArchive {
		t.Fatalf("moved = %+v", moved)
	}

	if old, _ := s.GetByID("a"); old != nil {
		t.Error("original event should be gone")
	}

	archive, _ := s.ListByCalendar(model.CalendarArchive)
	if len(archive) != 1 || archive[0].AppointmentID != 7 {
		t.Errorf("archive = %+v", archive)
	}
	active, _ := s.ListByCalendar(model.CalendarActive)
	if len(active) != 0 {
		t.Errorf("active has %d events, want 0", len(active))
	}

	missing, err := s.Move("nope", model.CalendarArchive, "c")
	if err != nil {
		t.Fatalf("move missing: %v", err)
	}
	if missing != nil {
		t.Error("moving a missing event should return nil")
	}
}

func TestListByCalendarOrder(t *testing.T) {
	s := setupTestDB(t)

	late := sampleEvent("late")
	late.StartTime = late.StartTime.Add(48 * time.Hour)
	late.EndTime = late.EndTime.Add(48 * time.Hour)
	s.Insert(late)
	s.Insert(sampleEvent("early"))

	events, err := s.ListByCalendar(model.CalendarActive)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 || events[0].ID != "early" || events[1].ID != "late" {
		t.Errorf("order = %v", events)
	}

	if err := s.Delete("early"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	events, _ = s.ListByCalendar(model.CalendarActive)
	if len(events) != 1 {
		t.Errorf("expected 1 event after delete, got %d", len(events))
	}
}

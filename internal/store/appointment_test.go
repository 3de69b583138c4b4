package store

import (
	"errors"
	"testing"

	"github.com/dukerupert/apptbook/internal/database"
	"github.com/dukerupert/apptbook/internal/lifecycle"
	"github.com/dukerupert/apptbook/internal/model"
	"github.com/dukerupert/apptbook/internal/revenue"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setupAppointmentTestDB(t *testing.T, opts lifecycle.Options) *AppointmentStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewAppointmentStore(db, opts)
}

func sampleInput() model.AppointmentInput {
	return model.AppointmentInput{
		ProviderRef:   "Sera",
		ClientName:    "Alex",
		ClientEmail:   "alex@example.com",
		CallType:      model.CallTypeIn,
		StartDate:     "2026-03-10",
		StartTime:     "19:00",
		GrossRevenue:  d("500"),
		DepositAmount: d("100"),
	}
}

func TestCreateDerivesRevenue(t *testing.T) {
	s := setupAppointmentTestDB(t, lifecycle.Options{})

	appt, err := s.Create(sampleInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if appt.ID == 0 {
		t.Fatal("expected non-zero id")
	}
	if !appt.RecognizedRevenue.Equal(d("500")) || !appt.DeferredRevenue.Equal(d("100")) || !appt.RealizedRevenue.Equal(d("100")) {
		t.Errorf("revenue = %s/%s/%s, want 500/100/100", appt.RecognizedRevenue, appt.DeferredRevenue, appt.RealizedRevenue)
	}
	if appt.Version != 1 {
		t.Errorf("version = %d, want 1", appt.Version)
	}
	if !appt.CreatedAt.Equal(appt.UpdatedAt) {
		t.Errorf("created_at %v != updated_at %v", appt.CreatedAt, appt.UpdatedAt)
	}
	if appt.CalendarEventID != nil {
		t.Errorf("calendar event id = %q, want nil", *appt.CalendarEventID)
	}
	if appt.SeeClientAgain != nil {
		t.Error("see_client_again should round-trip as nil")
	}
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	s := setupAppointmentTestDB(t, lifecycle.Options{})

	in := sampleInput()
	in.DispositionStatus = "Pending"
	_, err := s.Create(in)
	if !errors.Is(err, revenue.ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
	var storeErr *Error
	if errors.As(err, &storeErr) {
		t.Error("invalid input should not be reported as a storage error")
	}
}

func TestUpdateScenarios(t *testing.T) {
	s := setupAppointmentTestDB(t, lifecycle.Options{})

	appt, err := s.Create(sampleInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Complete with cash and digital collected
	updated, previous, err := s.Update(appt.ID, &model.Patch{
		DispositionStatus:     model.Some(model.StatusComplete),
		TotalCollectedCash:    model.Some(d("300")),
		TotalCollectedDigital: model.Some(d("100")),
	}, 0)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if previous.DispositionStatus != model.StatusUnset {
		t.Errorf("previous status = %q, want unset", previous.DispositionStatus)
	}
	if !updated.TotalCollected.Equal(d("400")) {
		t.Errorf("total collected = %s, want 400", updated.TotalCollected)
	}
	if !updated.RecognizedRevenue.Equal(d("500")) || !updated.DeferredRevenue.IsZero() || !updated.RealizedRevenue.Equal(d("500")) {
		t.Errorf("revenue = %s/%s/%s, want 500/0/500", updated.RecognizedRevenue, updated.DeferredRevenue, updated.RealizedRevenue)
	}
	if updated.Version != 2 {
		t.Errorf("version = %d, want 2", updated.Version)
	}

	// Cancel with part of the deposit returned
	updated, _, err = s.Update(appt.ID, &model.Patch{
		DispositionStatus:   model.Some(model.StatusCancel),
		DepositReturnAmount: model.Some(d("40")),
		WhoCanceled:         model.Some("client"),
	}, 0)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !updated.RecognizedRevenue.Equal(d("500")) || !updated.DeferredRevenue.Equal(d("100")) || !updated.RealizedRevenue.Equal(d("60")) {
		t.Errorf("revenue = %s/%s/%s, want 500/100/60", updated.RecognizedRevenue, updated.DeferredRevenue, updated.RealizedRevenue)
	}

	stored, err := s.GetByID(appt.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.RealizedRevenue.Equal(d("60")) || stored.WhoCanceled != "client" {
		t.Errorf("stored record not persisted: realized=%s who=%q", stored.RealizedRevenue, stored.WhoCanceled)
	}
	if stored.Version != 3 {
		t.Errorf("stored version = %d, want 3", stored.Version)
	}
}

func TestUpdateRescheduleCounter(t *testing.T) {
	s := setupAppointmentTestDB(t, lifecycle.Options{})

	appt, _ := s.Create(sampleInput())

	for i, clock := range []string{"18:00", "20:30"} {
		updated, _, err := s.Update(appt.ID, &model.Patch{
			DispositionStatus: model.Some(model.StatusReschedule),
			UpdatedStartTime:  model.Some(clock),
		}, 0)
		if err != nil {
			t.Fatalf("reschedule %d: %v", i, err)
		}
		if updated.RescheduleOccurrences != i+1 {
			t.Errorf("after patch %d occurrences = %d, want %d", i, updated.RescheduleOccurrences, i+1)
		}
	}

	stored, _ := s.GetByID(appt.ID)
	if stored.RescheduleOccurrences != 2 {
		t.Errorf("stored occurrences = %d, want 2", stored.RescheduleOccurrences)
	}
	if stored.UpdatedStartTime == nil || *stored.UpdatedStartTime != "20:30" {
		t.Errorf("updated start time = %v, want 20:30", stored.UpdatedStartTime)
	}
}

func TestUpdateNotFound(t *testing.T) {
	s := setupAppointmentTestDB(t, lifecycle.Options{})

	_, _, err := s.Update(999, &model.Patch{ClientName: model.Some("x")}, 0)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateVersionConflict(t *testing.T) {
	s := setupAppointmentTestDB(t, lifecycle.Options{})

	appt, _ := s.Create(sampleInput())
	if _, _, err := s.Update(appt.ID, &model.Patch{ClientNotes: model.Some("first")}, appt.Version); err != nil {
		t.Fatalf("first update: %v", err)
	}

	_, _, err := s.Update(appt.ID, &model.Patch{ClientNotes: model.Some("stale")}, appt.Version)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	stored, _ := s.GetByID(appt.ID)
	if stored.ClientNotes != "first" {
		t.Errorf("client notes = %q, want first", stored.ClientNotes)
	}
}

func TestUpdateStrictTerminal(t *testing.T) {
	s := setupAppointmentTestDB(t, lifecycle.Options{StrictTerminal: true})

	in := sampleInput()
	in.DispositionStatus = model.StatusComplete
	appt, _ := s.Create(in)

	_, _, err := s.Update(appt.ID, &model.Patch{DispositionStatus: model.Some(model.StatusReschedule)}, 0)
	if !errors.Is(err, lifecycle.ErrTerminal) {
		t.Fatalf("err = %v, want ErrTerminal", err)
	}
}

func TestUpdateClearsOptionalField(t *testing.T) {
	s := setupAppointmentTestDB(t, lifecycle.Options{})

	in := sampleInput()
	end := "21:00"
	again := true
	in.EndTime = &end
	in.SeeClientAgain = &again
	appt, _ := s.Create(in)
	if appt.EndTime == nil || *appt.EndTime != "21:00" || appt.SeeClientAgain == nil || !*appt.SeeClientAgain {
		t.Fatalf("create did not persist optional fields: %+v", appt.AppointmentInput)
	}

	_, _, err := s.Update(appt.ID, &model.Patch{EndTime: model.Null[string]()}, 0)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	stored, _ := s.GetByID(appt.ID)
	if stored.EndTime != nil {
		t.Errorf("end time = %q, want nil", *stored.EndTime)
	}
	if stored.SeeClientAgain == nil || !*stored.SeeClientAgain {
		t.Error("see_client_again should be retained")
	}
}

func TestDeleteAppointment(t *testing.T) {
	s := setupAppointmentTestDB(t, lifecycle.Options{})

	appt, _ := s.Create(sampleInput())

	ok, err := s.Delete(appt.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !ok {
		t.Error("expected delete to report success")
	}

	got, err := s.GetByID(appt.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}

	ok, err = s.Delete(appt.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if ok {
		t.Error("second delete should report false")
	}
}

func TestListFilters(t *testing.T) {
	s := setupAppointmentTestDB(t, lifecycle.Options{})

	a := sampleInput()
	b := sampleInput()
	b.ProviderRef = "Nova"
	b.StartDate = "2026-03-20"
	b.DispositionStatus = model.StatusComplete
	c := sampleInput()
	c.StartDate = "2026-04-01"
	c.DispositionStatus = model.StatusScheduled

	for _, in := range []model.AppointmentInput{a, b, c} {
		if _, err := s.Create(in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all, err := s.List(model.AppointmentFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 appointments, got %d", len(all))
	}

	byProvider, _ := s.List(model.AppointmentFilter{ProviderRef: "Nova"})
	if len(byProvider) != 1 || byProvider[0].StartDate != "2026-03-20" {
		t.Errorf("provider filter returned %d rows", len(byProvider))
	}

	scheduled := model.StatusScheduled
	open, _ := s.List(model.AppointmentFilter{Status: &scheduled})
	if len(open) != 2 {
		t.Errorf("scheduled filter returned %d rows, want 2 (unset counts as scheduled)", len(open))
	}

	march, _ := s.List(model.AppointmentFilter{From: "2026-03-01", To: "2026-03-31"})
	if len(march) != 2 {
		t.Errorf("date filter returned %d rows, want 2", len(march))
	}
}

func TestSetCalendarEventID(t *testing.T) {
	s := setupAppointmentTestDB(t, lifecycle.Options{})

	appt, _ := s.Create(sampleInput())
	if err := s.SetCalendarEventID(appt.ID, "evt-1"); err != nil {
		t.Fatalf("set event id: %v", err)
	}

	stored, _ := s.GetByID(appt.ID)
	if stored.CalendarEventID == nil || *stored.CalendarEventID != "evt-1" {
		t.Fatalf("calendar event id = %v, want evt-1", stored.CalendarEventID)
	}
	if stored.Version != appt.Version {
		t.Errorf("version = %d, want unchanged %d", stored.Version, appt.Version)
	}
	if !stored.UpdatedAt.Equal(appt.UpdatedAt) {
		t.Error("updated_at should not change")
	}

	if err := s.SetCalendarEventID(999, "evt-2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateChecksMergedRecordInTransaction(t *testing.T) {
	s := setupAppointmentTestDB(t, lifecycle.Options{})

	appt, _ := s.Create(sampleInput())
	requireAddress := func(in *model.AppointmentInput) error {
		if in.CallType == model.CallTypeOut && in.StreetAddress == "" {
			return errors.New("out-call appointments require street_address")
		}
		return nil
	}

	// Another writer turns the appointment into an out-call first.
	if _, _, err := s.Update(appt.ID, &model.Patch{
		CallType:      model.Some(model.CallTypeOut),
		StreetAddress: model.Some("12 Pine St"),
		City:          model.Some("Portland"),
	}, 0, requireAddress); err != nil {
		t.Fatalf("out-call update: %v", err)
	}

	// A patch built against the in-call read must be judged on the stored record.
	_, _, err := s.Update(appt.ID, &model.Patch{StreetAddress: model.Some("")}, 0, requireAddress)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}

	stored, _ := s.GetByID(appt.ID)
	if stored.StreetAddress != "12 Pine St" || stored.Version != 2 {
		t.Errorf("rejected patch was written: address = %q, version = %d", stored.StreetAddress, stored.Version)
	}
}

func TestUpdateCheckNotRunForMissingRecord(t *testing.T) {
	s := setupAppointmentTestDB(t, lifecycle.Options{})

	var ran bool
	_, _, err := s.Update(999, &model.Patch{}, 0, func(*model.AppointmentInput) error {
		ran = true
		return nil
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if ran {
		t.Error("check should not run without a stored record")
	}
}

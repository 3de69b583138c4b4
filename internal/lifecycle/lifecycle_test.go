package lifecycle

import (
	"errors"
	"testing"

	"github.com/dukerupert/apptbook/internal/model"
	"github.com/dukerupert/apptbook/internal/revenue"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func baseInput() model.AppointmentInput {
	return model.AppointmentInput{
		ProviderRef:    "Sera",
		ClientName:     "Alex",
		CallType:       model.CallTypeIn,
		StartDate:      "2026-03-10",
		StartTime:      "19:00",
		GrossRevenue:   d("500"),
		TravelExpense:  d("20"),
		HostingExpense: d("35.50"),
		DepositAmount:  d("100"),
	}
}

func TestNewDerivesFields(t *testing.T) {
	appt, err := New(baseInput())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !appt.TotalExpenses.Equal(d("55.50")) {
		t.Errorf("total expenses = %s, want 55.50", appt.TotalExpenses)
	}
	if !appt.DueToProvider.Equal(d("400")) {
		t.Errorf("due to provider = %s, want 400", appt.DueToProvider)
	}
	if !appt.TotalCollected.IsZero() {
		t.Errorf("total collected = %s, want 0 (deposit is not folded in)", appt.TotalCollected)
	}
	if !appt.RecognizedRevenue.Equal(d("500")) || !appt.DeferredRevenue.Equal(d("100")) || !appt.RealizedRevenue.Equal(d("100")) {
		t.Errorf("revenue = %s/%s/%s, want 500/100/100", appt.RecognizedRevenue, appt.DeferredRevenue, appt.RealizedRevenue)
	}
	if appt.RescheduleOccurrences != 0 {
		t.Errorf("reschedule occurrences = %d, want 0", appt.RescheduleOccurrences)
	}
}

func TestNewRejectsUnknownStatus(t *testing.T) {
	in := baseInput()
	in.DispositionStatus = "Archived"
	if _, err := New(in); !errors.Is(err, revenue.ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestNextKeepsAbsentFields(t *testing.T) {
	current, _ := New(baseInput())

	p := &model.Patch{TravelExpense: model.Some(d("5"))}
	next, err := Next(current, p, Options{})
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if !next.HostingExpense.Equal(d("35.50")) {
		t.Errorf("hosting expense = %s, want 35.50 retained", next.HostingExpense)
	}
	if !next.TotalExpenses.Equal(d("40.50")) {
		t.Errorf("total expenses = %s, want 40.50", next.TotalExpenses)
	}
	if current.TravelExpense.String() != "20" {
		t.Errorf("current was modified: travel = %s", current.TravelExpense)
	}
}

func TestNextNullClearsOptionalField(t *testing.T) {
	in := baseInput()
	end := "20:00"
	in.EndTime = &end
	current, _ := New(in)

	next, err := Next(current, &model.Patch{EndTime: model.Null[string]()}, Options{})
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if next.EndTime != nil {
		t.Errorf("end time = %q, want nil", *next.EndTime)
	}
	if current.EndTime == nil || *current.EndTime != "20:00" {
		t.Error("current end time should be untouched")
	}
}

func TestRescheduleCounter(t *testing.T) {
	appt, _ := New(baseInput())

	steps := []struct {
		name  string
		patch model.Patch
		want  int
	}{
		{"enter reschedule", model.Patch{
			DispositionStatus: model.Some(model.StatusReschedule),
			UpdatedStartDate:  model.Some("2026-03-12"),
			UpdatedStartTime:  model.Some("18:00"),
		}, 1},
		{"edit new time while rescheduled", model.Patch{UpdatedStartTime: model.Some("20:00")}, 2},
		{"money-only edit while rescheduled", model.Patch{GrossRevenue: model.Some(d("550"))}, 2},
		{"repeat status without schedule fields", model.Patch{DispositionStatus: model.Some(model.StatusReschedule)}, 2},
		{"complete", model.Patch{DispositionStatus: model.Some(model.StatusComplete)}, 2},
		{"schedule fields outside reschedule", model.Patch{UpdatedStartTime: model.Some("21:00")}, 2},
	}

	for _, step := range steps {
		next, err := Next(appt, &step.patch, Options{})
		if err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if next.RescheduleOccurrences != step.want {
			t.Errorf("%s: occurrences = %d, want %d", step.name, next.RescheduleOccurrences, step.want)
		}
		if next.RescheduleOccurrences < appt.RescheduleOccurrences {
			t.Errorf("%s: counter decreased", step.name)
		}
		appt = next
	}
}

func TestNextIdempotentDerivedFields(t *testing.T) {
	current, _ := New(baseInput())
	p := &model.Patch{
		DispositionStatus:     model.Some(model.StatusComplete),
		TotalCollectedCash:    model.Some(d("300")),
		TotalCollectedDigital: model.Some(d("100")),
	}

	once, err := Next(current, p, Options{})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	twice, err := Next(once, p, Options{})
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	for _, pair := range [][2]decimal.Decimal{
		{once.TotalExpenses, twice.TotalExpenses},
		{once.DueToProvider, twice.DueToProvider},
		{once.TotalCollected, twice.TotalCollected},
		{once.RecognizedRevenue, twice.RecognizedRevenue},
		{once.DeferredRevenue, twice.DeferredRevenue},
		{once.RealizedRevenue, twice.RealizedRevenue},
	} {
		if !pair[0].Equal(pair[1]) {
			t.Errorf("derived drifted: %s vs %s", pair[0], pair[1])
		}
	}
	if !twice.RealizedRevenue.Equal(d("500")) {
		t.Errorf("realized = %s, want 500", twice.RealizedRevenue)
	}
	if twice.RescheduleOccurrences != 0 {
		t.Errorf("occurrences = %d, want 0", twice.RescheduleOccurrences)
	}
}

func TestStrictTerminal(t *testing.T) {
	in := baseInput()
	in.DispositionStatus = model.StatusComplete
	current, _ := New(in)

	_, err := Next(current, &model.Patch{DispositionStatus: model.Some(model.StatusCancel)}, Options{StrictTerminal: true})
	if !errors.Is(err, ErrTerminal) {
		t.Fatalf("status change: err = %v, want ErrTerminal", err)
	}

	_, err = Next(current, &model.Patch{UpdatedStartDate: model.Some("2026-04-01")}, Options{StrictTerminal: true})
	if !errors.Is(err, ErrTerminal) {
		t.Fatalf("schedule change: err = %v, want ErrTerminal", err)
	}

	next, err := Next(current, &model.Patch{PaymentNotes: model.Some("paid in full")}, Options{StrictTerminal: true})
	if err != nil {
		t.Fatalf("notes edit: %v", err)
	}
	if next.PaymentNotes != "paid in full" {
		t.Errorf("payment notes = %q", next.PaymentNotes)
	}

	if _, err := Next(current, &model.Patch{DispositionStatus: model.Some(model.StatusCancel)}, Options{}); err != nil {
		t.Fatalf("lenient mode should allow the transition: %v", err)
	}
}

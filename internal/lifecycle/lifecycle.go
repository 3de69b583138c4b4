// Package lifecycle turns a stored appointment plus a partial update into the
// next consistent appointment: merged inputs, recomputed money fields and the
// reschedule counter.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/dukerupert/apptbook/internal/model"
	"github.com/dukerupert/apptbook/internal/revenue"
)

// ErrTerminal is returned in strict mode when a patch tries to move a
// completed or canceled appointment.
var ErrTerminal = errors.New("appointment is in a terminal status")

// Derive computes the derived money fields for in. It never reads any
// derived value back from a previous record.
func Derive(in model.AppointmentInput) (model.Derived, error) {
	collected := in.TotalCollectedCash.Add(in.TotalCollectedDigital)

	rev, err := revenue.Recognize(in.DispositionStatus, revenue.Amounts{
		Gross:         in.GrossRevenue,
		Deposit:       in.DepositAmount,
		Collected:     collected,
		DepositReturn: in.DepositReturnAmount,
	})
	if err != nil {
		return model.Derived{}, err
	}

	return model.Derived{
		TotalExpenses:     in.TravelExpense.Add(in.HostingExpense),
		DueToProvider:     in.GrossRevenue.Sub(in.DepositAmount),
		TotalCollected:    collected,
		RecognizedRevenue: rev.Recognized,
		DeferredRevenue:   rev.Deferred,
		RealizedRevenue:   rev.Realized,
	}, nil
}

// CountsAsReschedule decides whether a patch adds a reschedule occurrence:
// either it moves the appointment into Reschedule, or the appointment was
// already in Reschedule and the patch sent any updated_* schedule field.
func CountsAsReschedule(previous model.Status, next model.Status, p *model.Patch) bool {
	if next == model.StatusReschedule && previous != model.StatusReschedule {
		return true
	}
	return previous == model.StatusReschedule && p.TouchesReschedule()
}

// New builds the record for a fresh appointment. ID, version and timestamps
// are assigned by the store.
func New(in model.AppointmentInput) (model.Appointment, error) {
	derived, err := Derive(in)
	if err != nil {
		return model.Appointment{}, err
	}
	return model.Appointment{
		AppointmentInput:      in,
		Derived:               derived,
		RescheduleOccurrences: 0,
	}, nil
}

// Options tune Next.
type Options struct {
	// StrictTerminal rejects status or schedule changes once an appointment
	// is Complete or Cancel.
	StrictTerminal bool
}

// Next merges p onto current and returns the recomputed record. current is
// not modified.
func Next(current model.Appointment, p *model.Patch, opts Options) (model.Appointment, error) {
	if opts.StrictTerminal && current.DispositionStatus.Terminal() {
		if changesStatus(current.DispositionStatus, p) || p.TouchesSchedule() {
			return model.Appointment{}, fmt.Errorf("%w: %s", ErrTerminal, current.DispositionStatus)
		}
	}

	merged := p.Apply(current.AppointmentInput)

	derived, err := Derive(merged)
	if err != nil {
		return model.Appointment{}, err
	}

	next := current
	next.AppointmentInput = merged
	next.Derived = derived
	if CountsAsReschedule(current.DispositionStatus, merged.DispositionStatus, p) {
		next.RescheduleOccurrences = current.RescheduleOccurrences + 1
	}
	return next, nil
}

func changesStatus(current model.Status, p *model.Patch) bool {
	if !p.DispositionStatus.Set {
		return false
	}
	if p.DispositionStatus.Null {
		return current != model.StatusUnset
	}
	return p.DispositionStatus.Value != current
}

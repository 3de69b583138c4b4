// Package dispatch runs the side effects of a committed appointment write:
// the notification email and the calendar sync. Both run in a detached
// goroutine after the write has committed; their failures are logged and
// recorded, never returned to the writer.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/dukerupert/apptbook/internal/calendar"
	"github.com/dukerupert/apptbook/internal/model"
)

// Notifier sends lifecycle emails. Implementations report success and never
// return errors.
type Notifier interface {
	NotifyCreated(ctx context.Context, a *model.Appointment) bool
	NotifyStatusChanged(ctx context.Context, a *model.Appointment, previous model.Status) bool
}

// EventIDStore persists the calendar event id back onto the appointment.
type EventIDStore interface {
	SetCalendarEventID(id int64, eventID string) error
}

// AttemptLog records adapter attempts.
type AttemptLog interface {
	Record(a model.DispatchAttempt) error
}

// Event describes one committed write.
type Event struct {
	Record *model.Appointment
	// Previous is the record before the write; nil on create.
	Previous *model.Appointment
	// Patch is the update that produced Record; nil on create.
	Patch *model.Patch
}

func (e Event) created() bool {
	return e.Previous == nil
}

func (e Event) previousStatus() model.Status {
	if e.Previous == nil {
		return e.Record.DispositionStatus
	}
	return e.Previous.DispositionStatus
}

// statusChanged compares labels so unset and Scheduled count as the same
// status. Clearing a terminal status is a change.
func (e Event) statusChanged() bool {
	return e.Previous != nil &&
		e.Record.DispositionStatus.Label() != e.Previous.DispositionStatus.Label()
}

func (e Event) transition() string {
	if e.Previous == nil {
		return "none -> " + e.Record.DispositionStatus.Label()
	}
	return e.Previous.DispositionStatus.Label() + " -> " + e.Record.DispositionStatus.Label()
}

// ShouldDispatch reports whether the write qualifies for side effects: a
// create, a status change, or an edit of the new schedule while the
// appointment stays in Reschedule.
func ShouldDispatch(e Event) bool {
	if e.Record == nil {
		return false
	}
	if e.created() || e.statusChanged() {
		return true
	}
	return e.Record.DispositionStatus == model.StatusReschedule && e.Patch != nil && e.Patch.TouchesReschedule()
}

type Dispatcher struct {
	calendar calendar.Adapter
	notifier Notifier
	records  EventIDStore
	attempts AttemptLog
	logger   *slog.Logger
	timeout  time.Duration
	onSynced func(a *model.Appointment)

	wg sync.WaitGroup
}

type Option func(*Dispatcher)

// WithTimeout bounds each dispatch task. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(ds *Dispatcher) {
		ds.timeout = d
	}
}

// WithSyncHook is called with the updated record after a new calendar event
// id has been stored.
func WithSyncHook(fn func(a *model.Appointment)) Option {
	return func(ds *Dispatcher) {
		ds.onSynced = fn
	}
}

func New(cal calendar.Adapter, notifier Notifier, records EventIDStore, attempts AttemptLog, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		calendar: cal,
		notifier: notifier,
		records:  records,
		attempts: attempts,
		logger:   logger,
		timeout:  60 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OnCommitted starts the side effects for e in the background when it
// qualifies. It returns whether a task was started and never blocks on the
// adapters.
func (d *Dispatcher) OnCommitted(e Event) bool {
	if !ShouldDispatch(e) {
		return false
	}

	rec := *e.Record
	e.Record = &rec
	if e.Previous != nil {
		prev := *e.Previous
		e.Previous = &prev
	}

	d.wg.Add(1)
	go d.run(e)
	return true
}

// Wait blocks until all started tasks have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(e Event) {
	defer d.wg.Done()

	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	logger := d.logger.With("appointment_id", e.Record.ID, "transition", e.transition())

	d.guard(logger, e, model.AdapterNotification, func() { d.notify(ctx, logger, e) })
	d.guard(logger, e, model.AdapterCalendar, func() { d.syncCalendar(ctx, logger, e) })
}

// guard isolates a panicking adapter so the other one still runs.
func (d *Dispatcher) guard(logger *slog.Logger, e Event, adapter string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("dispatch panic", "adapter", adapter, "panic", r, "stack", string(debug.Stack()))
			d.record(logger, e, adapter, "panic", fmt.Errorf("panic: %v", r))
		}
	}()
	fn()
}

func (d *Dispatcher) notify(ctx context.Context, logger *slog.Logger, e Event) {
	var ok bool
	action := "status_changed"
	if e.created() {
		action = "created"
		ok = d.notifier.NotifyCreated(ctx, e.Record)
	} else {
		ok = d.notifier.NotifyStatusChanged(ctx, e.Record, e.Previous.DispositionStatus)
	}

	if !ok {
		logger.Warn("notification not delivered", "adapter", model.AdapterNotification, "action", action)
		d.record(logger, e, model.AdapterNotification, action, fmt.Errorf("no recipient accepted the %s notification", action))
		return
	}
	d.record(logger, e, model.AdapterNotification, action, nil)
}

func (d *Dispatcher) syncCalendar(ctx context.Context, logger *slog.Logger, e Event) {
	a := e.Record
	target := model.CalendarFor(a.DispositionStatus)

	if a.CalendarEventID == nil || *a.CalendarEventID == "" {
		id, err := d.calendar.CreateEvent(ctx, target, a)
		d.record(logger, e, model.AdapterCalendar, "create", err)
		if err != nil {
			logger.Error("calendar create failed", "adapter", model.AdapterCalendar, "action", "create", "calendar", target, "error", err)
			return
		}
		d.storeEventID(logger, e, id)
		return
	}

	eventID := *a.CalendarEventID
	from := model.CalendarFor(e.previousStatus())
	if from != target {
		newID, err := d.calendar.MoveEvent(ctx, eventID, from, target)
		d.record(logger, e, model.AdapterCalendar, "move", err)
		if err != nil {
			logger.Error("calendar move failed", "adapter", model.AdapterCalendar, "action", "move",
				"event_id", eventID, "from", from, "to", target, "error", err)
			return
		}
		if newID != "" && newID != eventID {
			eventID = newID
			d.storeEventID(logger, e, newID)
		}
	}

	err := d.calendar.UpdateEvent(ctx, target, eventID, a)
	d.record(logger, e, model.AdapterCalendar, "update", err)
	if err != nil {
		logger.Error("calendar update failed", "adapter", model.AdapterCalendar, "action", "update",
			"event_id", eventID, "calendar", target, "error", err)
	}
}

func (d *Dispatcher) storeEventID(logger *slog.Logger, e Event, eventID string) {
	if err := d.records.SetCalendarEventID(e.Record.ID, eventID); err != nil {
		logger.Error("store calendar event id", "event_id", eventID, "error", err)
		return
	}
	e.Record.CalendarEventID = &eventID
	if d.onSynced != nil {
		synced := *e.Record
		d.onSynced(&synced)
	}
}

func (d *Dispatcher) record(logger *slog.Logger, e Event, adapter, action string, err error) {
	a := model.DispatchAttempt{
		AppointmentID: e.Record.ID,
		Adapter:       adapter,
		Action:        action,
		Transition:    e.transition(),
		OK:            err == nil,
	}
	if err != nil {
		a.Error = err.Error()
	}
	if rerr := d.attempts.Record(a); rerr != nil {
		logger.Error("record dispatch attempt", "adapter", adapter, "action", action, "error", rerr)
	}
}

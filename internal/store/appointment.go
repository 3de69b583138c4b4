package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/apptbook/internal/lifecycle"
	"github.com/dukerupert/apptbook/internal/model"
)

var (
	// ErrNotFound is returned when the appointment does not exist.
	ErrNotFound = errors.New("appointment not found")
	// ErrConflict is returned when the stored version differs from the one
	// the caller read.
	ErrConflict = errors.New("appointment was modified concurrently")
	// ErrInvalid wraps a Check failure against the merged record.
	ErrInvalid = errors.New("invalid appointment")
)

// Check inspects a record with a patch applied before it is written.
type Check func(in *model.AppointmentInput) error

// Error wraps a persistence failure with the operation that hit it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// writableColumns are written on both insert and update, in the order
// returned by writableValues.
var writableColumns = []string{
	"provider_ref", "client_ref", "client_name", "phone_number", "client_email", "set_by", "marketing_channel",
	"call_type", "street_address", "address_line_2", "city", "state", "zip_code", "outcall_details",
	"start_date", "start_time", "end_date", "end_time",
	"gross_revenue", "travel_expense", "hosting_expense", "deposit_amount", "deposit_received_by",
	"payment_process_used", "total_collected_cash", "total_collected_digital", "deposit_return_amount",
	"total_expenses", "due_to_provider", "total_collected", "recognized_revenue", "deferred_revenue", "realized_revenue",
	"client_notes", "disposition_status", "reschedule_occurrences",
	"see_client_again", "payment_processor", "payment_notes", "appointment_notes",
	"updated_start_date", "updated_start_time", "updated_end_date", "updated_end_time",
	"who_canceled", "cancellation_details", "deposit_returned",
}

var (
	appointmentCols = "id, " + strings.Join(writableColumns, ", ") + ", calendar_event_id, version, created_at, updated_at"

	insertAppointmentSQL = "INSERT INTO appointments (" + strings.Join(writableColumns, ", ") +
		", version, created_at, updated_at) VALUES (" + strings.Repeat("?, ", len(writableColumns)) + "?, ?, ?)"

	updateAppointmentSQL = "UPDATE appointments SET " + strings.Join(writableColumns, " = ?, ") +
		" = ?, version = ?, updated_at = ? WHERE id = ? AND version = ?"
)

func writableValues(a *model.Appointment) []any {
	var seeAgain sql.NullBool
	if a.SeeClientAgain != nil {
		seeAgain = sql.NullBool{Bool: *a.SeeClientAgain, Valid: true}
	}
	var depositReturned int
	if a.DepositReturned {
		depositReturned = 1
	}

	return []any{
		a.ProviderRef, a.ClientRef, a.ClientName, a.PhoneNumber, a.ClientEmail, a.SetBy, a.MarketingChannel,
		string(a.CallType), a.StreetAddress, a.AddressLine2, a.City, a.State, a.ZipCode, a.OutcallDetails,
		a.StartDate, a.StartTime, a.EndDate, a.EndTime,
		a.GrossRevenue, a.TravelExpense, a.HostingExpense, a.DepositAmount, a.DepositReceivedBy,
		a.PaymentProcessUsed, a.TotalCollectedCash, a.TotalCollectedDigital, a.DepositReturnAmount,
		a.TotalExpenses, a.DueToProvider, a.TotalCollected, a.RecognizedRevenue, a.DeferredRevenue, a.RealizedRevenue,
		a.ClientNotes, string(a.DispositionStatus), a.RescheduleOccurrences,
		seeAgain, a.PaymentProcessor, a.PaymentNotes, a.AppointmentNotes,
		a.UpdatedStartDate, a.UpdatedStartTime, a.UpdatedEndDate, a.UpdatedEndTime,
		a.WhoCanceled, a.CancellationDetails, depositReturned,
	}
}

func scanAppointment(scanner interface{ Scan(...any) error }) (*model.Appointment, error) {
	var a model.Appointment
	var seeAgain sql.NullBool
	var depositReturned int

	err := scanner.Scan(
		&a.ID,
		&a.ProviderRef, &a.ClientRef, &a.ClientName, &a.PhoneNumber, &a.ClientEmail, &a.SetBy, &a.MarketingChannel,
		&a.CallType, &a.StreetAddress, &a.AddressLine2, &a.City, &a.State, &a.ZipCode, &a.OutcallDetails,
		&a.StartDate, &a.StartTime, &a.EndDate, &a.EndTime,
		&a.GrossRevenue, &a.TravelExpense, &a.HostingExpense, &a.DepositAmount, &a.DepositReceivedBy,
		&a.PaymentProcessUsed, &a.TotalCollectedCash, &a.TotalCollectedDigital, &a.DepositReturnAmount,
		&a.TotalExpenses, &a.DueToProvider, &a.TotalCollected, &a.RecognizedRevenue, &a.DeferredRevenue, &a.RealizedRevenue,
		&a.ClientNotes, &a.DispositionStatus, &a.RescheduleOccurrences,
		&seeAgain, &a.PaymentProcessor, &a.PaymentNotes, &a.AppointmentNotes,
		&a.UpdatedStartDate, &a.UpdatedStartTime, &a.UpdatedEndDate, &a.UpdatedEndTime,
		&a.WhoCanceled, &a.CancellationDetails, &depositReturned,
		&a.CalendarEventID, &a.Version, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if seeAgain.Valid {
		a.SeeClientAgain = &seeAgain.Bool
	}
	a.DepositReturned = depositReturned != 0
	return &a, nil
}

// AppointmentStore is the appointment repository. Every write recomputes the
// derived fields through the lifecycle package before it is persisted.
type AppointmentStore struct {
	db   *sql.DB
	opts lifecycle.Options
	now  func() time.Time
}

func NewAppointmentStore(db *sql.DB, opts lifecycle.Options) *AppointmentStore {
	return &AppointmentStore{db: db, opts: opts, now: time.Now}
}

// Create derives the money fields from in alone and inserts the record.
func (s *AppointmentStore) Create(in model.AppointmentInput) (*model.Appointment, error) {
	appt, err := lifecycle.New(in)
	if err != nil {
		return nil, fmt.Errorf("derive appointment: %w", err)
	}

	now := s.now().UTC()
	args := append(writableValues(&appt), 1, now, now)

	result, err := s.db.Exec(insertAppointmentSQL, args...)
	if err != nil {
		return nil, &Error{Op: "insert appointment", Err: err}
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, &Error{Op: "last insert id", Err: err}
	}

	created, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, &Error{Op: "reload appointment", Err: sql.ErrNoRows}
	}
	return created, nil
}

// GetByID returns nil, nil when no appointment has the id.
func (s *AppointmentStore) GetByID(id int64) (*model.Appointment, error) {
	a, err := scanAppointment(s.db.QueryRow(
		`SELECT `+appointmentCols+` FROM appointments WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Op: "get appointment", Err: err}
	}
	return a, nil
}

// Update merges p onto the stored record, recomputes derived fields and
// writes the result in one transaction. It returns the new record and the
// record as it was before the write. A non-zero expectedVersion must match
// the stored version or ErrConflict is returned. Each check sees the patch
// applied to the record read inside the transaction; a failure is wrapped in
// ErrInvalid and nothing is written.
func (s *AppointmentStore) Update(id int64, p *model.Patch, expectedVersion int64, checks ...Check) (updated, previous *model.Appointment, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, &Error{Op: "begin update", Err: err}
	}
	defer tx.Rollback()

	current, err := scanAppointment(tx.QueryRow(
		`SELECT `+appointmentCols+` FROM appointments WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, &Error{Op: "load appointment", Err: err}
	}

	if expectedVersion != 0 && expectedVersion != current.Version {
		return nil, nil, fmt.Errorf("%w: have version %d, stored %d", ErrConflict, expectedVersion, current.Version)
	}

	merged := p.Apply(current.AppointmentInput)
	for _, check := range checks {
		if err := check(&merged); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}

	next, err := lifecycle.Next(*current, p, s.opts)
	if err != nil {
		return nil, nil, fmt.Errorf("derive appointment: %w", err)
	}
	next.Version = current.Version + 1
	next.UpdatedAt = s.now().UTC()

	args := append(writableValues(&next), next.Version, next.UpdatedAt, id, current.Version)
	result, err := tx.Exec(updateAppointmentSQL, args...)
	if err != nil {
		return nil, nil, &Error{Op: "update appointment", Err: err}
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, nil, &Error{Op: "rows affected", Err: err}
	}
	if n == 0 {
		return nil, nil, ErrConflict
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, &Error{Op: "commit update", Err: err}
	}

	return &next, current, nil
}

// Delete removes the appointment. It reports false when nothing was deleted.
func (s *AppointmentStore) Delete(id int64) (bool, error) {
	result, err := s.db.Exec("DELETE FROM appointments WHERE id = ?", id)
	if err != nil {
		return false, &Error{Op: "delete appointment", Err: err}
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, &Error{Op: "rows affected", Err: err}
	}
	return n > 0, nil
}

// List returns appointments ordered by their original start.
func (s *AppointmentStore) List(f model.AppointmentFilter) ([]model.Appointment, error) {
	query := `SELECT ` + appointmentCols + ` FROM appointments WHERE 1=1`
	var args []any

	if f.ProviderRef != "" {
		query += " AND provider_ref = ?"
		args = append(args, f.ProviderRef)
	}
	if f.Status != nil {
		if *f.Status == model.StatusUnset || *f.Status == model.StatusScheduled {
			query += " AND disposition_status IN ('', 'Scheduled')"
		} else {
			query += " AND disposition_status = ?"
			args = append(args, string(*f.Status))
		}
	}
	if f.From != "" {
		query += " AND start_date >= ?"
		args = append(args, f.From)
	}
	if f.To != "" {
		query += " AND start_date <= ?"
		args = append(args, f.To)
	}
	query += " ORDER BY start_date, start_time, id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, &Error{Op: "list appointments", Err: err}
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, &Error{Op: "scan appointment", Err: err}
		}
		appts = append(appts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "list appointments", Err: err}
	}
	return appts, nil
}

// SetCalendarEventID records the event id returned by the calendar. It does
// not bump the version or updated_at; it is bookkeeping, not an edit.
func (s *AppointmentStore) SetCalendarEventID(id int64, eventID string) error {
	var v sql.NullString
	if eventID != "" {
		v = sql.NullString{String: eventID, Valid: true}
	}

	result, err := s.db.Exec("UPDATE appointments SET calendar_event_id = ? WHERE id = ?", v, id)
	if err != nil {
		return &Error{Op: "set calendar event id", Err: err}
	}
	n, err := result.RowsAffected()
	if err != nil {
		return &Error{Op: "rows affected", Err: err}
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is an appointment's disposition status. The zero value means the
// appointment is scheduled and nothing has happened to it yet.
type Status string

const (
	StatusUnset      Status = ""
	StatusScheduled  Status = "Scheduled"
	StatusReschedule Status = "Reschedule"
	StatusComplete   Status = "Complete"
	StatusCancel     Status = "Cancel"
)

// Valid reports whether s is one of the known disposition values.
func (s Status) Valid() bool {
	switch s {
	case StatusUnset, StatusScheduled, StatusReschedule, StatusComplete, StatusCancel:
		return true
	}
	return false
}

// Terminal reports whether s ends the appointment lifecycle.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusCancel
}

// Label returns the display name, mapping unset to Scheduled.
func (s Status) Label() string {
	if s == StatusUnset {
		return string(StatusScheduled)
	}
	return string(s)
}

type CallType string

const (
	CallTypeIn  CallType = "in-call"
	CallTypeOut CallType = "out-call"
)

// AppointmentInput is the client-authoritative part of an appointment.
// Derived money fields and the reschedule counter are never part of it.
type AppointmentInput struct {
	ProviderRef      string  `json:"provider_ref"`
	ClientRef        *string `json:"client_ref"`
	ClientName       string  `json:"client_name"`
	PhoneNumber      string  `json:"phone_number"`
	ClientEmail      string  `json:"client_email"`
	SetBy            string  `json:"set_by"`
	MarketingChannel string  `json:"marketing_channel"`

	CallType       CallType `json:"call_type"`
	StreetAddress  string   `json:"street_address"`
	AddressLine2   string   `json:"address_line_2"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	ZipCode        string   `json:"zip_code"`
	OutcallDetails string   `json:"outcall_details"`

	StartDate string  `json:"start_date"`
	StartTime string  `json:"start_time"`
	EndDate   *string `json:"end_date"`
	EndTime   *string `json:"end_time"`

	GrossRevenue          decimal.Decimal `json:"gross_revenue"`
	TravelExpense         decimal.Decimal `json:"travel_expense"`
	HostingExpense        decimal.Decimal `json:"hosting_expense"`
	DepositAmount         decimal.Decimal `json:"deposit_amount"`
	DepositReceivedBy     string          `json:"deposit_received_by"`
	PaymentProcessUsed    string          `json:"payment_process_used"`
	TotalCollectedCash    decimal.Decimal `json:"total_collected_cash"`
	TotalCollectedDigital decimal.Decimal `json:"total_collected_digital"`
	DepositReturnAmount   decimal.Decimal `json:"deposit_return_amount"`

	ClientNotes string `json:"client_notes"`

	DispositionStatus Status `json:"disposition_status"`

	SeeClientAgain   *bool  `json:"see_client_again"`
	PaymentProcessor string `json:"payment_processor"`
	PaymentNotes     string `json:"payment_notes"`
	AppointmentNotes string `json:"appointment_notes"`

	UpdatedStartDate *string `json:"updated_start_date"`
	UpdatedStartTime *string `json:"updated_start_time"`
	UpdatedEndDate   *string `json:"updated_end_date"`
	UpdatedEndTime   *string `json:"updated_end_time"`

	WhoCanceled         string `json:"who_canceled"`
	CancellationDetails string `json:"cancellation_details"`
	DepositReturned     bool   `json:"deposit_returned"`
}

// Derived holds the fields recomputed on every write.
type Derived struct {
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	DueToProvider     decimal.Decimal `json:"due_to_provider"`
	TotalCollected    decimal.Decimal `json:"total_collected"`
	RecognizedRevenue decimal.Decimal `json:"recognized_revenue"`
	DeferredRevenue   decimal.Decimal `json:"deferred_revenue"`
	RealizedRevenue   decimal.Decimal `json:"realized_revenue"`
}

type Appointment struct {
	ID int64 `json:"id"`
	AppointmentInput
	Derived
	RescheduleOccurrences int       `json:"reschedule_occurrences"`
	CalendarEventID       *string   `json:"calendar_event_id"`
	Version               int64     `json:"version"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// EffectiveStart returns the schedule currently in force: the rescheduled
// date and time when present, otherwise the original ones.
func (a *Appointment) EffectiveStart() (date, clock string) {
	date, clock = a.StartDate, a.StartTime
	if a.UpdatedStartDate != nil && *a.UpdatedStartDate != "" {
		date = *a.UpdatedStartDate
	}
	if a.UpdatedStartTime != nil && *a.UpdatedStartTime != "" {
		clock = *a.UpdatedStartTime
	}
	return date, clock
}

// EffectiveEnd is EffectiveStart for the end of the appointment. Either
// value may be empty when no end was ever recorded.
func (a *Appointment) EffectiveEnd() (date, clock string) {
	if a.EndDate != nil {
		date = *a.EndDate
	}
	if a.EndTime != nil {
		clock = *a.EndTime
	}
	if a.UpdatedEndDate != nil && *a.UpdatedEndDate != "" {
		date = *a.UpdatedEndDate
	}
	if a.UpdatedEndTime != nil && *a.UpdatedEndTime != "" {
		clock = *a.UpdatedEndTime
	}
	return date, clock
}

// Address joins the non-empty address parts with commas.
func (a *Appointment) Address() string {
	var out string
	for _, part := range []string{a.StreetAddress, a.AddressLine2, a.City, a.State, a.ZipCode} {
		if part == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += part
	}
	return out
}

// AppointmentFilter narrows List results. Zero fields are ignored.
type AppointmentFilter struct {
	ProviderRef string
	Status      *Status
	From        string // inclusive YYYY-MM-DD on start_date
	To          string // inclusive YYYY-MM-DD on start_date
}

package model

import "time"

// Side-effect adapters recorded in the dispatch log.
const (
	AdapterCalendar     = "calendar"
	AdapterNotification = "notification"
)

// DispatchAttempt records one adapter call made after a committed write.
type DispatchAttempt struct {
	ID            int64     `json:"id"`
	AppointmentID int64     `json:"appointment_id"`
	Adapter       string    `json:"adapter"`
	Action        string    `json:"action"`
	Transition    string    `json:"transition"`
	OK            bool      `json:"ok"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

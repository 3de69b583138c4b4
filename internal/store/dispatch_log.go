package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/apptbook/internal/model"
)

// DispatchLogStore records every side-effect attempt so failed ones can be
// retried by hand.
type DispatchLogStore struct {
	db *sql.DB
}

func NewDispatchLogStore(db *sql.DB) *DispatchLogStore {
	return &DispatchLogStore{db: db}
}

func (s *DispatchLogStore) Record(a model.DispatchAttempt) error {
	var ok int
	if a.OK {
		ok = 1
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO dispatch_attempts (appointment_id, adapter, action, transition, ok, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.AppointmentID, a.Adapter, a.Action, a.Transition, ok, a.Error, a.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert dispatch attempt: %w", err)
	}
	return nil
}

// ListByAppointment returns attempts oldest first.
func (s *DispatchLogStore) ListByAppointment(appointmentID int64) ([]model.DispatchAttempt, error) {
	rows, err := s.db.Query(
		`SELECT id, appointment_id, adapter, action, transition, ok, error, created_at
		 FROM dispatch_attempts WHERE appointment_id = ? ORDER BY id`,
		appointmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("query dispatch attempts: %w", err)
	}
	defer rows.Close()

	var attempts []model.DispatchAttempt
	for rows.Next() {
		var a model.DispatchAttempt
		var ok int
		if err := rows.Scan(&a.ID, &a.AppointmentID, &a.Adapter, &a.Action, &a.Transition, &ok, &a.Error, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dispatch attempt: %w", err)
		}
		a.OK = ok != 0
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// Package revenue computes how much of an appointment's value is recognized,
// deferred and realized for a given disposition status.
package revenue

import (
	"errors"
	"fmt"

	"github.com/dukerupert/apptbook/internal/model"
	"github.com/shopspring/decimal"
)

// ErrInvalidStatus is returned for a status outside the known set.
var ErrInvalidStatus = errors.New("invalid disposition status")

// Amounts are the inputs to Recognize. Zero values stand in for missing ones.
type Amounts struct {
	Gross         decimal.Decimal
	Deposit       decimal.Decimal
	Collected     decimal.Decimal
	DepositReturn decimal.Decimal
}

// Result is the revenue triple for one appointment.
type Result struct {
	Recognized decimal.Decimal `json:"recognized"`
	Deferred   decimal.Decimal `json:"deferred"`
	Realized   decimal.Decimal `json:"realized"`
}

// Recognize maps a status and its amounts to the revenue triple.
//
//	unset/Scheduled/Reschedule  gross  deposit  deposit
//	Complete                    gross  0        collected + deposit
//	Cancel                      gross  deposit  deposit - returned
func Recognize(status model.Status, a Amounts) (Result, error) {
	switch status {
	case model.StatusUnset, model.StatusScheduled, model.StatusReschedule:
		return Result{
			Recognized: a.Gross,
			Deferred:   a.Deposit,
			Realized:   a.Deposit,
		}, nil
	case model.StatusComplete:
		return Result{
			Recognized: a.Gross,
			Deferred:   decimal.Zero,
			Realized:   a.Collected.Add(a.Deposit),
		}, nil
	case model.StatusCancel:
		return Result{
			Recognized: a.Gross,
			Deferred:   a.Deposit,
			Realized:   a.Deposit.Sub(a.DepositReturn),
		}, nil
	}
	return Result{}, fmt.Errorf("%w: %q", ErrInvalidStatus, string(status))
}

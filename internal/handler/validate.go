package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/apptbook/internal/model"
	"github.com/shopspring/decimal"
)

// validateInput checks the shape of a complete appointment, either a new one
// or an existing record with a patch applied.
func validateInput(in *model.AppointmentInput) error {
	if strings.TrimSpace(in.ProviderRef) == "" {
		return fmt.Errorf("provider_ref is required")
	}

	switch in.CallType {
	case model.CallTypeIn:
	case model.CallTypeOut:
		if strings.TrimSpace(in.StreetAddress) == "" || strings.TrimSpace(in.City) == "" {
			return fmt.Errorf("out-call appointments require street_address and city")
		}
	case "":
		return fmt.Errorf("call_type is required")
	default:
		return fmt.Errorf("call_type must be in-call or out-call")
	}

	if !in.DispositionStatus.Valid() {
		return fmt.Errorf("unknown disposition_status %q", in.DispositionStatus)
	}

	if in.StartDate == "" || in.StartTime == "" {
		return fmt.Errorf("start_date and start_time are required")
	}
	dates := map[string]*string{
		"start_date":         &in.StartDate,
		"end_date":           in.EndDate,
		"updated_start_date": in.UpdatedStartDate,
		"updated_end_date":   in.UpdatedEndDate,
	}
	for name, v := range dates {
		if err := checkLayout(name, v, model.DateLayout, "YYYY-MM-DD"); err != nil {
			return err
		}
	}
	times := map[string]*string{
		"start_time":         &in.StartTime,
		"end_time":           in.EndTime,
		"updated_start_time": in.UpdatedStartTime,
		"updated_end_time":   in.UpdatedEndTime,
	}
	for name, v := range times {
		if err := checkLayout(name, v, model.TimeLayout, "HH:MM"); err != nil {
			return err
		}
	}

	money := map[string]decimal.Decimal{
		"gross_revenue":           in.GrossRevenue,
		"travel_expense":          in.TravelExpense,
		"hosting_expense":         in.HostingExpense,
		"deposit_amount":          in.DepositAmount,
		"total_collected_cash":    in.TotalCollectedCash,
		"total_collected_digital": in.TotalCollectedDigital,
		"deposit_return_amount":   in.DepositReturnAmount,
	}
	for name, v := range money {
		if v.IsNegative() {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

func checkLayout(name string, v *string, layout, human string) error {
	if v == nil || *v == "" {
		return nil
	}
	if _, err := time.Parse(layout, *v); err != nil {
		return fmt.Errorf("%s must be %s", name, human)
	}
	return nil
}

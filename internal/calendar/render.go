package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/apptbook/internal/model"
)

// Glyphs lead every event title. Existing calendars are filtered on them, so
// they must not change.
const (
	GlyphScheduled  = "📅"
	GlyphReschedule = "🔄"
	GlyphComplete   = "✅"
	GlyphCancel     = "❌"
)

// Glyph returns the title symbol for status s.
func Glyph(s model.Status) string {
	switch s {
	case model.StatusReschedule:
		return GlyphReschedule
	case model.StatusComplete:
		return GlyphComplete
	case model.StatusCancel:
		return GlyphCancel
	default:
		return GlyphScheduled
	}
}

// Title builds the event summary, e.g. "📅 SCHEDULED: Alex - IN".
func Title(a *model.Appointment) string {
	glyph := Glyph(a.DispositionStatus)
	name := model.OrDefault(a.ClientName, "Client")

	switch a.DispositionStatus {
	case model.StatusReschedule:
		date, _ := a.EffectiveStart()
		return fmt.Sprintf("%s RESCHEDULED: %s - moved to %s", glyph, name, model.FormatDate(date))
	case model.StatusComplete:
		return fmt.Sprintf("%s COMPLETE: %s - %s", glyph, name, model.FormatDate(a.StartDate))
	case model.StatusCancel:
		return fmt.Sprintf("%s CANCEL: %s - %s", glyph, name, model.FormatDate(a.StartDate))
	default:
		kind := "OUT"
		if a.CallType == model.CallTypeIn {
			kind = "IN"
		}
		return fmt.Sprintf("%s SCHEDULED: %s - %s", glyph, name, kind)
	}
}

// Location is "Office" for in-calls and the client address for out-calls.
func Location(a *model.Appointment) string {
	if a.CallType == model.CallTypeIn {
		return "Office"
	}
	return a.Address()
}

func timeRange(start, end *string) string {
	var s, e string
	if start != nil {
		s = model.FormatTime(*start)
	}
	if end != nil {
		e = model.FormatTime(*end)
	}
	return s + " - " + e
}

func writeLocation(b *strings.Builder, a *model.Appointment) {
	if a.CallType == model.CallTypeIn {
		b.WriteString("Location: INCALL AT YOUR LOCATION\n")
	} else {
		b.WriteString("Location: OUTCALL TO CLIENT\n")
	}
	if a.StreetAddress != "" {
		fmt.Fprintf(b, "Address: %s\n", a.Address())
	}
	if a.OutcallDetails != "" {
		fmt.Fprintf(b, "Location Notes: %s\n", a.OutcallDetails)
	}
}

func writeFinancials(b *strings.Builder, a *model.Appointment) {
	b.WriteString("\nFinancial Details:\n")
	fmt.Fprintf(b, "- Deposit Received: $%s via %s\n", a.DepositAmount.StringFixed(2), model.OrDefault(a.PaymentProcessUsed, "Not specified"))
	fmt.Fprintf(b, "- Balance Due: $%s\n", a.DueToProvider.StringFixed(2))
	fmt.Fprintf(b, "- Travel Expenses: $%s\n", a.TravelExpense.StringFixed(2))
	fmt.Fprintf(b, "- Hosting Expenses: $%s\n", a.HostingExpense.StringFixed(2))
}

// Description renders the plain-text event body for the appointment's
// current status.
func Description(a *model.Appointment) string {
	var b strings.Builder
	name := model.OrDefault(a.ClientName, "Not specified")
	phone := model.OrDefault(a.PhoneNumber, "Not provided")
	start, clock := a.StartDate, a.StartTime

	switch a.DispositionStatus {
	case model.StatusReschedule:
		b.WriteString("RESCHEDULED APPOINTMENT:\n")
		fmt.Fprintf(&b, "Client: %s\nPhone: %s\n\n", name, phone)
		b.WriteString("ORIGINAL SCHEDULE:\n")
		fmt.Fprintf(&b, "Date: %s\nTime: %s\n\n", model.FormatDate(start), timeRange(&clock, a.EndTime))
		b.WriteString("NEW SCHEDULE:\n")
		newDate, newClock := a.EffectiveStart()
		fmt.Fprintf(&b, "Date: %s\nTime: %s\n", model.FormatDate(newDate), timeRange(&newClock, a.UpdatedEndTime))
		fmt.Fprintf(&b, "Revenue: $%s\n\n", a.GrossRevenue.StringFixed(2))
		writeLocation(&b, a)
		writeFinancials(&b, a)

	case model.StatusComplete:
		b.WriteString("APPOINTMENT COMPLETED:\n")
		fmt.Fprintf(&b, "Client: %s\nPhone: %s\n", name, phone)
		fmt.Fprintf(&b, "Date: %s\nTime: %s\n\n", model.FormatDate(start), timeRange(&clock, a.EndTime))
		b.WriteString("Financial Summary:\n")
		fmt.Fprintf(&b, "- Total Collected: $%s\n", a.TotalCollected.StringFixed(2))
		fmt.Fprintf(&b, "- Cash Payment: $%s\n", a.TotalCollectedCash.StringFixed(2))
		fmt.Fprintf(&b, "- Digital Payment: $%s\n", a.TotalCollectedDigital.StringFixed(2))
		fmt.Fprintf(&b, "- Payment Method: %s\n", model.OrDefault(a.PaymentProcessor, "Not specified"))
		fmt.Fprintf(&b, "- Payment Notes: %s\n\n", model.OrDefault(a.PaymentNotes, "None"))
		b.WriteString("Appointment Outcome:\n")
		again := "NO"
		if a.SeeClientAgain != nil && *a.SeeClientAgain {
			again = "YES"
		}
		fmt.Fprintf(&b, "- See client again: %s\n", again)
		fmt.Fprintf(&b, "- Notes: %s\n", model.OrDefault(a.AppointmentNotes, "None"))

	case model.StatusCancel:
		b.WriteString("APPOINTMENT CANCELLED:\n")
		fmt.Fprintf(&b, "Client: %s\nPhone: %s\n", name, phone)
		fmt.Fprintf(&b, "Original Date: %s\nOriginal Time: %s\n\n", model.FormatDate(start), timeRange(&clock, a.EndTime))
		b.WriteString("Cancellation Information:\n")
		who := "Provider"
		if strings.EqualFold(a.WhoCanceled, "client") {
			who = "Client"
		}
		fmt.Fprintf(&b, "- Cancelled by: %s\n", who)
		fmt.Fprintf(&b, "- Reason: %s\n\n", model.OrDefault(a.CancellationDetails, "Not specified"))
		b.WriteString("Financial Resolution:\n")
		fmt.Fprintf(&b, "- Deposit amount: $%s\n", a.DepositAmount.StringFixed(2))
		fmt.Fprintf(&b, "- Deposit returned: $%s\n", a.DepositReturnAmount.StringFixed(2))
		fmt.Fprintf(&b, "- Deposit kept: $%s\n", a.RealizedRevenue.StringFixed(2))

	default:
		b.WriteString("APPOINTMENT DETAILS:\n")
		fmt.Fprintf(&b, "Client: %s\nPhone: %s\n", name, phone)
		fmt.Fprintf(&b, "Revenue: $%s\n", a.GrossRevenue.StringFixed(2))
		fmt.Fprintf(&b, "Marketing Channel: %s\n\n", model.OrDefault(a.MarketingChannel, "Not specified"))
		writeLocation(&b, a)
		writeFinancials(&b, a)
	}

	if a.DispositionStatus != model.StatusComplete && a.DispositionStatus != model.StatusCancel {
		if a.ClientNotes != "" {
			fmt.Fprintf(&b, "\nClient Notes: %s\n", a.ClientNotes)
		} else {
			b.WriteString("\nNo client notes provided\n")
		}
	}
	fmt.Fprintf(&b, "\nSet by: %s", a.SetBy)

	return b.String()
}

// Times returns the event start and end in loc. The rescheduled values win
// when present. A missing end date falls back to the start date and a
// missing end time to one hour after the start.
func Times(a *model.Appointment, loc *time.Location) (start, end time.Time, err error) {
	date, clock := a.EffectiveStart()
	start, err = time.ParseInLocation(model.DateLayout+" "+model.TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse start %q %q: %w", date, clock, err)
	}

	endDate, endClock := a.EffectiveEnd()
	if endDate == "" {
		endDate = date
	}
	if endClock == "" {
		return start, start.Add(time.Hour), nil
	}

	end, err = time.ParseInLocation(model.DateLayout+" "+model.TimeLayout, endDate+" "+endClock, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse end %q %q: %w", endDate, endClock, err)
	}
	if !end.After(start) {
		end = start.Add(time.Hour)
	}
	return start, end, nil
}

// Render builds the calendar event for a in calendar cal. The ID is left
// for the backend to assign.
func Render(cal model.Calendar, a *model.Appointment, loc *time.Location) (*model.CalendarEvent, error) {
	start, end, err := Times(a, loc)
	if err != nil {
		return nil, err
	}
	return &model.CalendarEvent{
		Calendar:      cal,
		AppointmentID: a.ID,
		Summary:       Title(a),
		Description:   Description(a),
		Location:      Location(a),
		Attendee:      a.ClientEmail,
		StartTime:     start,
		EndTime:       end,
	}, nil
}

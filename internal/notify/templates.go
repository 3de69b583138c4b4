package notify

import (
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/dukerupert/apptbook/internal/model"
)

// view is the flattened, display-ready appointment passed to templates.
type view struct {
	Status        string
	Client        string
	Phone         string
	Date          string
	Time          string
	NewDate       string
	NewTime       string
	LocationType  string
	Address       string
	LocationNotes string
	Revenue       string
	Deposit       string
	DepositVia    string
	BalanceDue    string
	Travel        string
	Hosting       string
	ClientNotes   string
	Collected     string
	Cash          string
	Digital       string
	Processor     string
	PaymentNotes  string
	SeeAgain      string
	Outcome       string
	CanceledBy    string
	Reason        string
	Returned      string
	Kept          string
	SetBy         string
}

// plusHour returns clock one hour later, or "" if clock does not parse.
func plusHour(clock string) string {
	t, err := time.Parse(model.TimeLayout, clock)
	if err != nil {
		return ""
	}
	return t.Add(time.Hour).Format(model.TimeLayout)
}

func timeRange(start string, end *string) string {
	e := ""
	if end != nil && *end != "" {
		e = *end
	} else {
		e = plusHour(start)
	}
	return model.FormatTime(start) + " - " + model.FormatTime(e)
}

func newView(a *model.Appointment) view {
	v := view{
		Status:        a.DispositionStatus.Label(),
		Client:        model.OrDefault(a.ClientName, "Not specified"),
		Phone:         model.OrDefault(a.PhoneNumber, "Not provided"),
		Date:          model.FormatDate(a.StartDate),
		Time:          timeRange(a.StartTime, a.EndTime),
		LocationType:  "INCALL AT YOUR LOCATION",
		Address:       model.OrDefault(a.Address(), "Not specified"),
		LocationNotes: model.OrDefault(a.OutcallDetails, "None"),
		Revenue:       a.GrossRevenue.StringFixed(2),
		Deposit:       a.DepositAmount.StringFixed(2),
		DepositVia:    model.OrDefault(a.PaymentProcessUsed, "Not specified"),
		BalanceDue:    a.DueToProvider.StringFixed(2),
		Travel:        a.TravelExpense.StringFixed(2),
		Hosting:       a.HostingExpense.StringFixed(2),
		ClientNotes:   model.OrDefault(a.ClientNotes, "No notes provided"),
		Collected:     a.TotalCollected.StringFixed(2),
		Cash:          a.TotalCollectedCash.StringFixed(2),
		Digital:       a.TotalCollectedDigital.StringFixed(2),
		Processor:     model.OrDefault(a.PaymentProcessor, "Not specified"),
		PaymentNotes:  model.OrDefault(a.PaymentNotes, "None"),
		SeeAgain:      "NO",
		Outcome:       model.OrDefault(a.AppointmentNotes, "None"),
		CanceledBy:    "Provider",
		Reason:        model.OrDefault(a.CancellationDetails, "Not specified"),
		Returned:      a.DepositReturnAmount.StringFixed(2),
		Kept:          a.RealizedRevenue.StringFixed(2),
		SetBy:         a.SetBy,
	}
	if a.CallType == model.CallTypeOut {
		v.LocationType = "OUTCALL TO CLIENT"
	}
	if a.SeeClientAgain != nil && *a.SeeClientAgain {
		v.SeeAgain = "YES"
	}
	if strings.EqualFold(a.WhoCanceled, "client") {
		v.CanceledBy = "Client"
	}

	newDate, newClock := a.EffectiveStart()
	v.NewDate = model.FormatDate(newDate)
	v.NewTime = timeRange(newClock, a.UpdatedEndTime)
	return v
}

const htmlLayout = `
{{define "box-location"}}<div style="background-color: #f8f9fa; padding: 15px; border-radius: 4px; margin: 20px 0;">
<h3 style="margin-top: 0; color: #2c3e50;">Location Information:</h3>
<p><strong>Location Type:</strong> {{.LocationType}}</p>
<p><strong>Address:</strong> {{.Address}}</p>
<p><strong>Location Notes:</strong> {{.LocationNotes}}</p>
</div>{{end}}
{{define "box-financial"}}<div style="background-color: #f8f9fa; padding: 15px; border-radius: 4px; margin: 20px 0;">
<h3 style="margin-top: 0; color: #2c3e50;">Financial Details:</h3>
<p><strong>Deposit Received:</strong> ${{.Deposit}} via {{.DepositVia}}</p>
<p><strong>Balance Due:</strong> ${{.BalanceDue}}</p>
<p><strong>Travel Expenses:</strong> ${{.Travel}}</p>
<p><strong>Hosting Expenses:</strong> ${{.Hosting}}</p>
</div>{{end}}
{{define "footer"}}<p><strong>Set by:</strong> {{.SetBy}}</p>
<p style="margin-top: 30px; font-size: 12px; color: #7f8c8d;">This is an automated message. Please do not reply to this email.</p>
</div>{{end}}

{{define "created"}}<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<h2 style="color: #2c3e50;">APPOINTMENT DETAILS:</h2>
<p><strong>Client:</strong> {{.Client}}</p>
<p><strong>Phone:</strong> {{.Phone}}</p>
<p><strong>Date:</strong> {{.Date}}</p>
<p><strong>Time:</strong> {{.Time}}</p>
<p><strong>Revenue:</strong> ${{.Revenue}}</p>
{{template "box-location" .}}
{{template "box-financial" .}}
<p><strong>Client Notes:</strong> {{.ClientNotes}}</p>
<p>This appointment has been added to your calendar. Please confirm receipt.</p>
{{template "footer" .}}{{end}}

{{define "Reschedule"}}<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<h2 style="color: #f39c12;">RESCHEDULED APPOINTMENT:</h2>
<p><strong>Client:</strong> {{.Client}}</p>
<p><strong>Phone:</strong> {{.Phone}}</p>
<h3 style="color: #e74c3c;">ORIGINAL SCHEDULE:</h3>
<p><strong>Date:</strong> {{.Date}}</p>
<p><strong>Time:</strong> {{.Time}}</p>
<h3 style="color: #27ae60;">NEW SCHEDULE:</h3>
<p><strong>Date:</strong> {{.NewDate}}</p>
<p><strong>Time:</strong> {{.NewTime}}</p>
<p><strong>Revenue:</strong> ${{.Revenue}}</p>
{{template "box-location" .}}
{{template "box-financial" .}}
<p>Your calendar has been updated with these changes. Please confirm receipt.</p>
{{template "footer" .}}{{end}}

{{define "Cancel"}}<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<h2 style="color: #e74c3c;">APPOINTMENT CANCELLED:</h2>
<p><strong>Client:</strong> {{.Client}}</p>
<p><strong>Phone:</strong> {{.Phone}}</p>
<p><strong>Original Date:</strong> {{.Date}}</p>
<p><strong>Original Time:</strong> {{.Time}}</p>
<h3>Cancellation Information:</h3>
<p><strong>Cancelled by:</strong> {{.CanceledBy}}</p>
<p><strong>Reason:</strong> {{.Reason}}</p>
<h3>Financial Resolution:</h3>
<p><strong>Deposit amount:</strong> ${{.Deposit}}</p>
<p><strong>Deposit returned:</strong> ${{.Returned}}</p>
<p><strong>Deposit kept:</strong> ${{.Kept}}</p>
<p>This appointment has been moved to your archive calendar.</p>
{{template "footer" .}}{{end}}

{{define "Complete"}}<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<h2 style="color: #27ae60;">APPOINTMENT COMPLETED:</h2>
<p><strong>Client:</strong> {{.Client}}</p>
<p><strong>Phone:</strong> {{.Phone}}</p>
<p><strong>Date:</strong> {{.Date}}</p>
<p><strong>Time:</strong> {{.Time}}</p>
<h3>Financial Summary:</h3>
<p><strong>Total Collected:</strong> ${{.Collected}}</p>
<p><strong>Cash Payment:</strong> ${{.Cash}}</p>
<p><strong>Digital Payment:</strong> ${{.Digital}}</p>
<p><strong>Payment Method:</strong> {{.Processor}}</p>
<p><strong>Payment Notes:</strong> {{.PaymentNotes}}</p>
<h3>Appointment Outcome:</h3>
<p><strong>See client again:</strong> {{.SeeAgain}}</p>
<p><strong>Notes:</strong> {{.Outcome}}</p>
{{template "footer" .}}{{end}}

{{define "status"}}<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<h2 style="color: #2c3e50;">APPOINTMENT {{.Status}}:</h2>
<p><strong>Client:</strong> {{.Client}}</p>
<p><strong>Date:</strong> {{.Date}}</p>
<p><strong>Time:</strong> {{.Time}}</p>
{{template "footer" .}}{{end}}
`

const textLayout = `
{{define "footer"}}
Set by: {{.SetBy}}
This is an automated message. Please do not reply to this email.{{end}}

{{define "created"}}APPOINTMENT DETAILS:
Client: {{.Client}}
Phone: {{.Phone}}
Date: {{.Date}}
Time: {{.Time}}
Revenue: ${{.Revenue}}
Location: {{.LocationType}}
Address: {{.Address}}
Deposit Received: ${{.Deposit}} via {{.DepositVia}}
Balance Due: ${{.BalanceDue}}
Client Notes: {{.ClientNotes}}
{{template "footer" .}}{{end}}

{{define "Reschedule"}}RESCHEDULED APPOINTMENT:
Client: {{.Client}}
Phone: {{.Phone}}
ORIGINAL SCHEDULE: {{.Date}} {{.Time}}
NEW SCHEDULE: {{.NewDate}} {{.NewTime}}
Location: {{.LocationType}}
Address: {{.Address}}
Balance Due: ${{.BalanceDue}}
{{template "footer" .}}{{end}}

{{define "Cancel"}}APPOINTMENT CANCELLED:
Client: {{.Client}}
Original: {{.Date}} {{.Time}}
Cancelled by: {{.CanceledBy}}
Reason: {{.Reason}}
Deposit amount: ${{.Deposit}}
Deposit returned: ${{.Returned}}
Deposit kept: ${{.Kept}}
{{template "footer" .}}{{end}}

{{define "Complete"}}APPOINTMENT COMPLETED:
Client: {{.Client}}
Date: {{.Date}} {{.Time}}
Total Collected: ${{.Collected}} (cash ${{.Cash}}, digital ${{.Digital}})
Payment Method: {{.Processor}}
See client again: {{.SeeAgain}}
Notes: {{.Outcome}}
{{template "footer" .}}{{end}}

{{define "status"}}APPOINTMENT {{.Status}}:
Client: {{.Client}}
Date: {{.Date}} {{.Time}}
{{template "footer" .}}{{end}}
`

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.New("email").Parse(htmlLayout))
	textTemplates = texttemplate.Must(texttemplate.New("email").Parse(textLayout))
)

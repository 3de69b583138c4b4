package model

import "github.com/shopspring/decimal"

// Patch is a partial update to an appointment. Only fields with Set == true
// are applied; the merge is shallow, field by field.
type Patch struct {
	ProviderRef      Field[string] `json:"provider_ref"`
	ClientRef        Field[string] `json:"client_ref"`
	ClientName       Field[string] `json:"client_name"`
	PhoneNumber      Field[string] `json:"phone_number"`
	ClientEmail      Field[string] `json:"client_email"`
	SetBy            Field[string] `json:"set_by"`
	MarketingChannel Field[string] `json:"marketing_channel"`

	CallType       Field[CallType] `json:"call_type"`
	StreetAddress  Field[string]   `json:"street_address"`
	AddressLine2   Field[string]   `json:"address_line_2"`
	City           Field[string]   `json:"city"`
	State          Field[string]   `json:"state"`
	ZipCode        Field[string]   `json:"zip_code"`
	OutcallDetails Field[string]   `json:"outcall_details"`

	StartDate Field[string] `json:"start_date"`
	StartTime Field[string] `json:"start_time"`
	EndDate   Field[string] `json:"end_date"`
	EndTime   Field[string] `json:"end_time"`

	GrossRevenue          Field[decimal.Decimal] `json:"gross_revenue"`
	TravelExpense         Field[decimal.Decimal] `json:"travel_expense"`
	HostingExpense        Field[decimal.Decimal] `json:"hosting_expense"`
	DepositAmount         Field[decimal.Decimal] `json:"deposit_amount"`
	DepositReceivedBy     Field[string]          `json:"deposit_received_by"`
	PaymentProcessUsed    Field[string]          `json:"payment_process_used"`
	TotalCollectedCash    Field[decimal.Decimal] `json:"total_collected_cash"`
	TotalCollectedDigital Field[decimal.Decimal] `json:"total_collected_digital"`
	DepositReturnAmount   Field[decimal.Decimal] `json:"deposit_return_amount"`

	ClientNotes Field[string] `json:"client_notes"`

	DispositionStatus Field[Status] `json:"disposition_status"`

	SeeClientAgain   Field[bool]   `json:"see_client_again"`
	PaymentProcessor Field[string] `json:"payment_processor"`
	PaymentNotes     Field[string] `json:"payment_notes"`
	AppointmentNotes Field[string] `json:"appointment_notes"`

	UpdatedStartDate Field[string] `json:"updated_start_date"`
	UpdatedStartTime Field[string] `json:"updated_start_time"`
	UpdatedEndDate   Field[string] `json:"updated_end_date"`
	UpdatedEndTime   Field[string] `json:"updated_end_time"`

	WhoCanceled         Field[string] `json:"who_canceled"`
	CancellationDetails Field[string] `json:"cancellation_details"`
	DepositReturned     Field[bool]   `json:"deposit_returned"`
}

// TouchesReschedule reports whether any of the updated_* schedule fields
// were sent, including explicit nulls.
func (p *Patch) TouchesReschedule() bool {
	return p.UpdatedStartDate.Set || p.UpdatedStartTime.Set ||
		p.UpdatedEndDate.Set || p.UpdatedEndTime.Set
}

// TouchesSchedule is TouchesReschedule widened to the original schedule.
func (p *Patch) TouchesSchedule() bool {
	return p.TouchesReschedule() || p.StartDate.Set || p.StartTime.Set ||
		p.EndDate.Set || p.EndTime.Set
}

// Apply returns in with every sent field of p written over it. in is not
// modified.
func (p *Patch) Apply(in AppointmentInput) AppointmentInput {
	out := in

	p.ProviderRef.apply(&out.ProviderRef)
	p.ClientRef.applyPtr(&out.ClientRef)
	p.ClientName.apply(&out.ClientName)
	p.PhoneNumber.apply(&out.PhoneNumber)
	p.ClientEmail.apply(&out.ClientEmail)
	p.SetBy.apply(&out.SetBy)
	p.MarketingChannel.apply(&out.MarketingChannel)

	p.CallType.apply(&out.CallType)
	p.StreetAddress.apply(&out.StreetAddress)
	p.AddressLine2.apply(&out.AddressLine2)
	p.City.apply(&out.City)
	p.State.apply(&out.State)
	p.ZipCode.apply(&out.ZipCode)
	p.OutcallDetails.apply(&out.OutcallDetails)

	p.StartDate.apply(&out.StartDate)
	p.StartTime.apply(&out.StartTime)
	p.EndDate.applyPtr(&out.EndDate)
	p.EndTime.applyPtr(&out.EndTime)

	p.GrossRevenue.apply(&out.GrossRevenue)
	p.TravelExpense.apply(&out.TravelExpense)
	p.HostingExpense.apply(&out.HostingExpense)
	p.DepositAmount.apply(&out.DepositAmount)
	p.DepositReceivedBy.apply(&out.DepositReceivedBy)
	p.PaymentProcessUsed.apply(&out.PaymentProcessUsed)
	p.TotalCollectedCash.apply(&out.TotalCollectedCash)
	p.TotalCollectedDigital.apply(&out.TotalCollectedDigital)
	p.DepositReturnAmount.apply(&out.DepositReturnAmount)

	p.ClientNotes.apply(&out.ClientNotes)

	p.DispositionStatus.apply(&out.DispositionStatus)

	p.SeeClientAgain.applyPtr(&out.SeeClientAgain)
	p.PaymentProcessor.apply(&out.PaymentProcessor)
	p.PaymentNotes.apply(&out.PaymentNotes)
	p.AppointmentNotes.apply(&out.AppointmentNotes)

	p.UpdatedStartDate.applyPtr(&out.UpdatedStartDate)
	p.UpdatedStartTime.applyPtr(&out.UpdatedStartTime)
	p.UpdatedEndDate.applyPtr(&out.UpdatedEndDate)
	p.UpdatedEndTime.applyPtr(&out.UpdatedEndTime)

	p.WhoCanceled.apply(&out.WhoCanceled)
	p.CancellationDetails.apply(&out.CancellationDetails)
	p.DepositReturned.apply(&out.DepositReturned)

	return out
}

package revenue

import (
	"github.com/dukerupert/apptbook/internal/model"
	"github.com/shopspring/decimal"
)

// Totals aggregates stored revenue figures over a set of appointments.
type Totals struct {
	Count      int             `json:"count"`
	Gross      decimal.Decimal `json:"gross"`
	Collected  decimal.Decimal `json:"collected"`
	Recognized decimal.Decimal `json:"recognized"`
	Deferred   decimal.Decimal `json:"deferred"`
	Realized   decimal.Decimal `json:"realized"`
	Expenses   decimal.Decimal `json:"expenses"`
	ByStatus   map[string]int  `json:"by_status"`
}

// Summarize adds up the derived fields as persisted. It does not recompute
// them; they are kept consistent by every write.
func Summarize(appts []model.Appointment) Totals {
	t := Totals{ByStatus: make(map[string]int)}
	for _, a := range appts {
		t.Count++
		t.Gross = t.Gross.Add(a.GrossRevenue)
		t.Collected = t.Collected.Add(a.TotalCollected)
		t.Recognized = t.Recognized.Add(a.RecognizedRevenue)
		t.Deferred = t.Deferred.Add(a.DeferredRevenue)
		t.Realized = t.Realized.Add(a.RealizedRevenue)
		t.Expenses = t.Expenses.Add(a.TotalExpenses)
		t.ByStatus[a.DispositionStatus.Label()]++
	}
	return t
}

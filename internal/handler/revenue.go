package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/apptbook/internal/model"
	"github.com/dukerupert/apptbook/internal/revenue"
	"github.com/dukerupert/apptbook/internal/store"
)

type RevenueHandler struct {
	store  *store.AppointmentStore
	logger *slog.Logger
}

func NewRevenueHandler(as *store.AppointmentStore, logger *slog.Logger) *RevenueHandler {
	return &RevenueHandler{store: as, logger: logger}
}

type summaryResponse struct {
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Provider string `json:"provider,omitempty"`
	revenue.Totals
}

// Summary totals the stored revenue figures for appointments starting in
// [from, to], optionally for one provider.
func (h *RevenueHandler) Summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.AppointmentFilter{
		ProviderRef: q.Get("provider"),
		From:        q.Get("from"),
		To:          q.Get("to"),
	}
	for name, v := range map[string]*string{"from": &filter.From, "to": &filter.To} {
		if err := checkLayout(name, v, model.DateLayout, "YYYY-MM-DD"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if filter.From != "" && filter.To != "" && filter.From > filter.To {
		writeError(w, http.StatusBadRequest, "from must not be after to")
		return
	}

	appts, err := h.store.List(filter)
	if err != nil {
		h.logger.Error("list appointments for summary", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to summarize revenue")
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		From:     filter.From,
		To:       filter.To,
		Provider: filter.ProviderRef,
		Totals:   revenue.Summarize(appts),
	})
}

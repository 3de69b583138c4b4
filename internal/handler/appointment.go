package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukerupert/apptbook/internal/dispatch"
	"github.com/dukerupert/apptbook/internal/lifecycle"
	"github.com/dukerupert/apptbook/internal/model"
	"github.com/dukerupert/apptbook/internal/revenue"
	"github.com/dukerupert/apptbook/internal/store"
	"github.com/dukerupert/apptbook/internal/websocket"
)

type AppointmentHandler struct {
	store      *store.AppointmentStore
	attempts   *store.DispatchLogStore
	dispatcher *dispatch.Dispatcher
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewAppointmentHandler(as *store.AppointmentStore, attempts *store.DispatchLogStore, d *dispatch.Dispatcher, hub *websocket.Hub, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{store: as, attempts: attempts, dispatcher: d, hub: hub, logger: logger}
}

func (h *AppointmentHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *AppointmentHandler) committed(e dispatch.Event) {
	if h.dispatcher == nil {
		return
	}
	if h.dispatcher.OnCommitted(e) {
		h.logger.Debug("side effects dispatched", "appointment_id", e.Record.ID)
	}
}

// writeStoreError maps repository and lifecycle errors onto HTTP statuses.
func (h *AppointmentHandler) writeStoreError(w http.ResponseWriter, err error, action string) {
	var storeErr *store.Error
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "appointment not found")
	case errors.Is(err, store.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "appointment was modified by another request; reload and retry")
	case errors.Is(err, lifecycle.ErrTerminal):
		writeError(w, http.StatusConflict, "appointment is complete or cancelled and can no longer change")
	case errors.Is(err, revenue.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "unknown disposition_status")
	case errors.As(err, &storeErr):
		h.logger.Error("storage failure", "action", action, "op", storeErr.Op, "error", storeErr.Err)
		writeError(w, http.StatusInternalServerError, "failed to "+action)
	default:
		h.logger.Error("unexpected error", "action", action, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

func setETag(w http.ResponseWriter, a *model.Appointment) {
	w.Header().Set("ETag", `"`+strconv.FormatInt(a.Version, 10)+`"`)
}

// parseIfMatch reads the expected version from an If-Match header. A missing
// header or "*" means any version.
func parseIfMatch(r *http.Request) (int64, error) {
	v := strings.TrimSpace(r.Header.Get("If-Match"))
	if v == "" || v == "*" {
		return 0, nil
	}
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, `"`)
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 1 {
		return 0, errors.New("If-Match must be a version number")
	}
	return n, nil
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.AppointmentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := validateInput(&in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	appt, err := h.store.Create(in)
	if err != nil {
		h.writeStoreError(w, err, "create appointment")
		return
	}

	h.broadcast(websocket.AppointmentMessage(websocket.ActionCreated, appt.ID, appt))
	h.committed(dispatch.Event{Record: appt})

	setETag(w, appt)
	writeJSON(w, http.StatusCreated, appt)
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.AppointmentFilter{
		ProviderRef: q.Get("provider"),
		From:        q.Get("from"),
		To:          q.Get("to"),
	}
	if q.Has("status") {
		s := model.Status(q.Get("status"))
		if !s.Valid() {
			writeError(w, http.StatusBadRequest, "unknown status")
			return
		}
		filter.Status = &s
	}
	if err := checkLayout("from", &filter.From, model.DateLayout, "YYYY-MM-DD"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := checkLayout("to", &filter.To, model.DateLayout, "YYYY-MM-DD"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	appts, err := h.store.List(filter)
	if err != nil {
		h.writeStoreError(w, err, "list appointments")
		return
	}
	if appts == nil {
		appts = []model.Appointment{}
	}
	writeJSON(w, http.StatusOK, appts)
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	appt, err := h.store.GetByID(id)
	if err != nil {
		h.writeStoreError(w, err, "get appointment")
		return
	}
	if appt == nil {
		writeError(w, http.StatusNotFound, "appointment not found")
		return
	}

	setETag(w, appt)
	writeJSON(w, http.StatusOK, appt)
}

// Update applies a partial update. Keys absent from the body are left alone;
// keys sent as null clear the field.
func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	version, err := parseIfMatch(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var p model.Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	updated, previous, err := h.store.Update(id, &p, version, validateInput)
	if err != nil {
		h.writeStoreError(w, err, "update appointment")
		return
	}

	h.broadcast(websocket.AppointmentMessage(websocket.ActionUpdated, updated.ID, updated))
	h.committed(dispatch.Event{Record: updated, Previous: previous, Patch: &p})

	setETag(w, updated)
	writeJSON(w, http.StatusOK, updated)
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	deleted, err := h.store.Delete(id)
	if err != nil {
		h.writeStoreError(w, err, "delete appointment")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "appointment not found")
		return
	}

	h.broadcast(websocket.AppointmentMessage(websocket.ActionDeleted, id, nil))

	w.WriteHeader(http.StatusNoContent)
}

// Dispatches lists the recorded side-effect attempts for an appointment,
// oldest first.
func (h *AppointmentHandler) Dispatches(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	attempts, err := h.attempts.ListByAppointment(id)
	if err != nil {
		h.logger.Error("list dispatch attempts", "appointment_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list dispatch attempts")
		return
	}
	if attempts == nil {
		attempts = []model.DispatchAttempt{}
	}
	writeJSON(w, http.StatusOK, attempts)
}

package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/apptbook/internal/calendar"
	"github.com/dukerupert/apptbook/internal/model"
)

// CalendarHandler publishes the built-in calendars, as ICS feeds for
// calendar apps and as JSON for the dashboard.
type CalendarHandler struct {
	local  *calendar.Local
	names  map[model.Calendar]string
	logger *slog.Logger
}

// NewCalendarHandler takes the display names of the active and archive
// calendars.
func NewCalendarHandler(local *calendar.Local, activeName, archiveName string, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{
		local: local,
		names: map[model.Calendar]string{
			model.CalendarActive:  activeName,
			model.CalendarArchive: archiveName,
		},
		logger: logger,
	}
}

func (h *CalendarHandler) calendarParam(r *http.Request, name string) (model.Calendar, bool) {
	cal := model.Calendar(r.PathValue(name))
	_, ok := h.names[cal]
	return cal, ok
}

// Feed serves GET /calendars/{file} where file is active.ics or archive.ics.
func (h *CalendarHandler) Feed(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	slug, ok := strings.CutSuffix(file, ".ics")
	if !ok {
		http.NotFound(w, r)
		return
	}
	cal := model.Calendar(slug)
	name, ok := h.names[cal]
	if !ok {
		http.NotFound(w, r)
		return
	}

	events, err := h.local.Events(cal)
	if err != nil {
		h.logger.Error("list calendar events", "calendar", cal, "error", err)
		http.Error(w, "failed to load calendar", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := calendar.WriteFeed(&buf, name, events, h.local.Location()); err != nil {
		h.logger.Error("write calendar feed", "calendar", cal, "error", err)
		http.Error(w, "failed to render calendar", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="`+file+`"`)
	w.Write(buf.Bytes())
}

// Events lists one calendar's events as JSON.
func (h *CalendarHandler) Events(w http.ResponseWriter, r *http.Request) {
	cal, ok := h.calendarParam(r, "calendar")
	if !ok {
		writeError(w, http.StatusNotFound, "unknown calendar")
		return
	}

	events, err := h.local.Events(cal)
	if err != nil {
		h.logger.Error("list calendar events", "calendar", cal, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.CalendarEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

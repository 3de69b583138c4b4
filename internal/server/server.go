package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/dukerupert/apptbook/internal/calendar"
	"github.com/dukerupert/apptbook/internal/config"
	"github.com/dukerupert/apptbook/internal/dispatch"
	"github.com/dukerupert/apptbook/internal/email"
	"github.com/dukerupert/apptbook/internal/handler"
	"github.com/dukerupert/apptbook/internal/lifecycle"
	"github.com/dukerupert/apptbook/internal/middleware"
	"github.com/dukerupert/apptbook/internal/model"
	"github.com/dukerupert/apptbook/internal/notify"
	"github.com/dukerupert/apptbook/internal/store"
	ws "github.com/dukerupert/apptbook/internal/websocket"
)

type Server struct {
	hub          *ws.Hub
	appointmentH *handler.AppointmentHandler
	revenueH     *handler.RevenueHandler
	calendarH    *handler.CalendarHandler
	dispatcher   *dispatch.Dispatcher
	rateLimiter  *middleware.RateLimiter
	wsOrigins    []string
	logger       *slog.Logger
}

// New wires the stores, adapters and handlers. mailer may be nil, in which
// case a Postmark client is built from cfg.
func New(db *sql.DB, cfg *config.Config, mailer notify.Mailer, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	appointmentStore := store.NewAppointmentStore(db, lifecycle.Options{StrictTerminal: cfg.StrictTerminal})
	eventStore := store.NewEventStore(db)
	attemptStore := store.NewDispatchLogStore(db)

	if mailer == nil {
		mailer = email.NewClient(cfg.Postmark.Token, cfg.Postmark.From)
	}
	notifier := notify.New(mailer, cfg.OperatorEmail, logger.With("component", "notify"))
	local := calendar.NewLocal(eventStore, cfg.Location())

	dispatcher := dispatch.New(local, notifier, appointmentStore, attemptStore,
		logger.With("component", "dispatch"),
		dispatch.WithTimeout(cfg.DispatchTimeout),
		dispatch.WithSyncHook(func(a *model.Appointment) {
			hub.Broadcast(ws.AppointmentMessage(ws.ActionCalendarSynced, a.ID, a))
		}),
	)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Requests > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	return &Server{
		hub:          hub,
		appointmentH: handler.NewAppointmentHandler(appointmentStore, attemptStore, dispatcher, hub, logger.With("component", "appointment")),
		revenueH:     handler.NewRevenueHandler(appointmentStore, logger.With("component", "revenue")),
		calendarH:    handler.NewCalendarHandler(local, cfg.Calendars.Active, cfg.Calendars.Archive, logger.With("component", "calendar")),
		dispatcher:   dispatcher,
		rateLimiter:  limiter,
		wsOrigins:    cfg.WebSocketOrigins,
		logger:       logger,
	}
}

// Dispatcher returns the side-effect dispatcher so shutdown can wait on it.
func (s *Server) Dispatcher() *dispatch.Dispatcher {
	return s.dispatcher
}

// RateLimiter returns the write limiter, or nil when limiting is disabled.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.Health)

	// Appointments
	mux.HandleFunc("POST /api/appointments", s.appointmentH.Create)
	mux.HandleFunc("GET /api/appointments", s.appointmentH.List)
	mux.HandleFunc("GET /api/appointments/{id}", s.appointmentH.Get)
	mux.HandleFunc("PATCH /api/appointments/{id}", s.appointmentH.Update)
	mux.HandleFunc("DELETE /api/appointments/{id}", s.appointmentH.Delete)
	mux.HandleFunc("GET /api/appointments/{id}/dispatches", s.appointmentH.Dispatches)

	// Reporting
	mux.HandleFunc("GET /api/revenue/summary", s.revenueH.Summary)

	// Calendars
	mux.HandleFunc("GET /api/calendars/{calendar}/events", s.calendarH.Events)
	mux.HandleFunc("GET /calendars/{file}", s.calendarH.Feed)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.wsOrigins))

	var h http.Handler = mux
	if s.rateLimiter != nil {
		h = middleware.LimitWrites(s.rateLimiter)(h)
	}
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	return middleware.Recover(s.logger.With("component", "http"))(h)
}

// Package notify emails the operator and the client about appointment
// lifecycle changes.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukerupert/apptbook/internal/email"
	"github.com/dukerupert/apptbook/internal/model"
)

// Mailer sends one email.
type Mailer interface {
	Send(ctx context.Context, m email.Message) error
}

type Notifier struct {
	mailer   Mailer
	operator string
	logger   *slog.Logger
}

// New returns a Notifier that always copies operator (when set) and the
// appointment's client email (when present).
func New(mailer Mailer, operator string, logger *slog.Logger) *Notifier {
	return &Notifier{mailer: mailer, operator: operator, logger: logger}
}

// NotifyCreated announces a new appointment.
func (n *Notifier) NotifyCreated(ctx context.Context, a *model.Appointment) bool {
	subject := fmt.Sprintf("NEW APPOINTMENT: %s on %s at %s",
		model.OrDefault(a.ClientName, "Client"), model.FormatDate(a.StartDate), model.FormatTime(a.StartTime))
	return n.deliver(ctx, a, "created", subject)
}

// NotifyStatusChanged announces the appointment's current status. previous
// is only used for logging.
func (n *Notifier) NotifyStatusChanged(ctx context.Context, a *model.Appointment, previous model.Status) bool {
	name := model.OrDefault(a.ClientName, "Client")
	date := model.FormatDate(a.StartDate)

	var subject, tmpl string
	switch a.DispositionStatus {
	case model.StatusReschedule:
		newDate, _ := a.EffectiveStart()
		subject = fmt.Sprintf("RESCHEDULED: %s moved from %s to %s", name, date, model.FormatDate(newDate))
		tmpl = string(model.StatusReschedule)
	case model.StatusCancel:
		subject = fmt.Sprintf("CANCELLED: %s appointment on %s at %s", name, date, model.FormatTime(a.StartTime))
		tmpl = string(model.StatusCancel)
	case model.StatusComplete:
		subject = fmt.Sprintf("COMPLETED: %s appointment on %s", name, date)
		tmpl = string(model.StatusComplete)
	default:
		subject = fmt.Sprintf("Appointment %s Notification", a.DispositionStatus.Label())
		tmpl = "status"
	}

	n.logger.Debug("status notification", "appointment_id", a.ID, "from", previous.Label(), "to", a.DispositionStatus.Label())
	return n.deliver(ctx, a, tmpl, subject)
}

func (n *Notifier) recipients(a *model.Appointment) []string {
	var out []string
	if n.operator != "" {
		out = append(out, n.operator)
	}
	if a.ClientEmail != "" && !strings.EqualFold(a.ClientEmail, n.operator) {
		out = append(out, a.ClientEmail)
	}
	return out
}

// deliver renders tmpl and sends it to each recipient separately. It
// reports whether at least one send succeeded.
func (n *Notifier) deliver(ctx context.Context, a *model.Appointment, tmpl, subject string) bool {
	to := n.recipients(a)
	if len(to) == 0 {
		n.logger.Warn("no recipients for notification", "appointment_id", a.ID, "template", tmpl)
		return false
	}

	v := newView(a)
	var htmlBody, textBody bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&htmlBody, tmpl, v); err != nil {
		n.logger.Error("render html email", "appointment_id", a.ID, "template", tmpl, "error", err)
		return false
	}
	if err := textTemplates.ExecuteTemplate(&textBody, tmpl, v); err != nil {
		n.logger.Error("render text email", "appointment_id", a.ID, "template", tmpl, "error", err)
		return false
	}

	sent := false
	for _, addr := range to {
		err := n.mailer.Send(ctx, email.Message{
			To:       addr,
			Subject:  subject,
			HTMLBody: htmlBody.String(),
			TextBody: textBody.String(),
			Tag:      tmpl,
		})
		if err != nil {
			n.logger.Error("send notification", "appointment_id", a.ID, "to", addr, "template", tmpl, "error", err)
			continue
		}
		n.logger.Info("notification sent", "appointment_id", a.ID, "to", addr, "template", tmpl)
		sent = true
	}
	return sent
}

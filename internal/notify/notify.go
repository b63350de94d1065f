// Package notify tells the back office when an accident report is complete.
package notify

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"

	"gopkg.in/gomail.v2"

	"accidentapi/internal/config"
	"accidentapi/internal/model"
)

// Notifier is called once a ticket reaches the complete phase.
type Notifier interface {
	TicketCompleted(ctx context.Context, t *model.Ticket) error
}

// Noop discards notifications. It is used when SMTP is not configured.
type Noop struct{}

func (Noop) TicketCompleted(context.Context, *model.Ticket) error { return nil }

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTP mails a ticket summary to a fixed back-office address.
type SMTP struct {
	sender mailSender
	from   string
	to     string
}

// New returns an SMTP notifier, or Noop when cfg.Host is empty.
func New(cfg config.SMTPConfig) Notifier {
	if cfg.Host == "" || cfg.To == "" {
		return Noop{}
	}
	return NewSMTP(cfg)
}

func NewSMTP(cfg config.SMTPConfig) *SMTP {
	return &SMTP{
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		to:     cfg.To,
	}
}

// TicketCompleted sends the summary mail. gomail has no context support, so
// the send runs in its own goroutine and is abandoned once ctx is done.
func (s *SMTP) TicketCompleted(ctx context.Context, t *model.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := s.message(t)
	done := make(chan error, 1)
	go func() { done <- s.sender.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send email: %w", ctx.Err())
	}
}

func (s *SMTP) message(t *model.Ticket) *gomail.Message {
	keys := make([]string, 0, len(t.ExtractedData))
	for k := range t.ExtractedData {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var plain, rich strings.Builder
	fmt.Fprintf(&plain, "Accident report %s is complete.\n\n", t.ID)
	fmt.Fprintf(&rich, "<h2>Accident report %s is complete</h2><ul>", html.EscapeString(t.ID))
	for _, k := range keys {
		v := fmt.Sprint(t.ExtractedData[k])
		fmt.Fprintf(&plain, "%s: %s\n", k, v)
		fmt.Fprintf(&rich, "<li><b>%s</b>: %s</li>", html.EscapeString(k), html.EscapeString(v))
	}
	fmt.Fprintf(&plain, "\nAttachments: %d\n", len(t.Attachments))
	fmt.Fprintf(&rich, "</ul><p>Attachments: %d</p>", len(t.Attachments))

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to)
	m.SetHeader("Subject", "Accident report "+t.ID+" completed")
	m.SetBody("text/plain", plain.String())
	m.AddAlternative("text/html", rich.String())
	return m
}

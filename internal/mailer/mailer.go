// Package mailer renders the weekly digest and hands it to an email
// provider.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"morfi-plan/internal/config"
	"morfi-plan/internal/planner"
)

// ErrNotConfigured is reported when no provider credentials are set.
var ErrNotConfigured = errors.New("email provider not configured")

// Message is a provider-neutral email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Digest is the content of one weekly email.
type Digest struct {
	Recipients   []string
	WeekStart    time.Time
	Plan         []planner.PlanRow
	ShoppingList []string
}

// Result never carries a Go error; faults are described in Error.
type Result struct {
	Success    bool
	Recipients int
	Error      string
}

// Service sends weekly digests.
type Service struct {
	sender Sender
	from   string
}

// NewService creates a Service. A nil sender yields an unconfigured
// service whose sends always fail.
func NewService(sender Sender, from string) *Service {
	return &Service{sender: sender, from: from}
}

// NewFromConfig wires the Resend provider when an API key is present.
func NewFromConfig(cfg *config.Config) *Service {
	if cfg.ResendAPIKey == "" {
		return NewService(nil, cfg.EmailFrom)
	}
	return NewService(NewResendSender(cfg.ResendAPIKey), cfg.EmailFrom)
}

// IsConfigured reports whether a provider is available.
func (s *Service) IsConfigured() bool {
	return s.sender != nil
}

// SendWeeklyDigest sends one email addressed to every valid recipient.
func (s *Service) SendWeeklyDigest(ctx context.Context, d Digest) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("email send panicked", "panic", r)
			res = Result{Error: fmt.Sprint(r)}
		}
	}()

	if !s.IsConfigured() {
		return Result{Error: ErrNotConfigured.Error()}
	}

	recipients := filterRecipients(d.Recipients)
	if len(recipients) == 0 {
		return Result{Error: planner.ErrNoRecipients.Error()}
	}

	msg, err := s.compose(d, recipients)
	if err != nil {
		return Result{Error: err.Error()}
	}

	start := time.Now()
	if err := s.sender.Send(ctx, msg); err != nil {
		slog.Warn("email provider rejected digest", "error", err, "recipients", len(recipients))
		return Result{Error: err.Error()}
	}
	slog.Info("weekly digest sent", "recipients", len(recipients), "latency", time.Since(start))

	return Result{Success: true, Recipients: len(recipients)}
}

func (s *Service) compose(d Digest, recipients []string) (Message, error) {
	label := planner.WeekLabel(d.WeekStart)

	html, err := renderHTML(label, d.Plan, d.ShoppingList)
	if err != nil {
		return Message{}, fmt.Errorf("failed to render digest: %w", err)
	}
	text, err := plainText(html)
	if err != nil {
		return Message{}, fmt.Errorf("failed to derive plain text: %w", err)
	}

	return Message{
		From:    s.from,
		To:      recipients,
		Subject: Subject(d.WeekStart),
		HTML:    html,
		Text:    text,
	}, nil
}

// Subject returns the digest subject line for the given week.
func Subject(weekStart time.Time) string {
	return "🍽️ Menú Semanal - Semana del " + planner.WeekLabel(weekStart)
}

func filterRecipients(in []string) []string {
	var out []string
	for _, r := range in {
		r = strings.TrimSpace(r)
		if r == "" || planner.ValidateEmail(r) != nil {
			continue
		}
		out = append(out, r)
	}
	return out
}

package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"morfi-plan/internal/planner"
)

type mockSender struct {
	sent  []Message
	err   error
	panic bool
}

func (m *mockSender) Send(_ context.Context, msg Message) error {
	if m.panic {
		panic("provider exploded")
	}
	m.sent = append(m.sent, msg)
	return m.err
}

var weekStart = time.Date(2024, time.October, 14, 0, 0, 0, 0, time.UTC)

func sampleDigest() Digest {
	return Digest{
		Recipients: []string{"ana@example.com", " ", "not-an-email", "bob@example.com"},
		WeekStart:  weekStart,
		Plan: []planner.PlanRow{
			{Day: planner.Monday, MealType: planner.Lunch, MenuName: "Milanesas"},
			{Day: planner.Wednesday, MealType: planner.Dinner, MenuName: "Tarta <de> jamón"},
		},
		ShoppingList: []string{"huevos", "jamón", "pan rallado"},
	}
}

func TestSendWeeklyDigest(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		sender := &mockSender{}
		svc := NewService(sender, "Morfi-Plan <noreply@morfi-plan.resend.dev>")

		res := svc.SendWeeklyDigest(ctx, sampleDigest())
		if !res.Success {
			t.Fatalf("Expected success, got error %q", res.Error)
		}
		if res.Recipients != 2 {
			t.Errorf("Expected 2 recipients, got %d", res.Recipients)
		}
		if len(sender.sent) != 1 {
			t.Fatalf("Expected one message, got %d", len(sender.sent))
		}

		msg := sender.sent[0]
		if strings.Join(msg.To, ",") != "ana@example.com,bob@example.com" {
			t.Errorf("Unexpected recipients: %v", msg.To)
		}
		if !strings.HasPrefix(msg.Subject, "🍽️ Menú Semanal - Semana del 14 de ") {
			t.Errorf("Unexpected subject: %q", msg.Subject)
		}
		if msg.From != "Morfi-Plan <noreply@morfi-plan.resend.dev>" {
			t.Errorf("Unexpected sender: %q", msg.From)
		}
	})

	t.Run("NoValidRecipients", func(t *testing.T) {
		sender := &mockSender{}
		svc := NewService(sender, "x@example.com")

		d := sampleDigest()
		d.Recipients = []string{"", "nope"}
		res := svc.SendWeeklyDigest(ctx, d)

		if res.Success {
			t.Error("Expected failure")
		}
		if len(sender.sent) != 0 {
			t.Error("Provider must not be called without recipients")
		}
	})

	t.Run("NotConfigured", func(t *testing.T) {
		svc := NewService(nil, "x@example.com")
		if svc.IsConfigured() {
			t.Error("Expected unconfigured service")
		}
		res := svc.SendWeeklyDigest(ctx, sampleDigest())
		if res.Success || res.Error != ErrNotConfigured.Error() {
			t.Errorf("Expected not configured failure, got %+v", res)
		}
	})

	t.Run("ProviderError", func(t *testing.T) {
		svc := NewService(&mockSender{err: errors.New("domain not verified")}, "x@example.com")
		res := svc.SendWeeklyDigest(ctx, sampleDigest())
		if res.Success || res.Error != "domain not verified" {
			t.Errorf("Expected provider error text, got %+v", res)
		}
	})

	t.Run("ProviderPanic", func(t *testing.T) {
		svc := NewService(&mockSender{panic: true}, "x@example.com")
		res := svc.SendWeeklyDigest(ctx, sampleDigest())
		if res.Success || !strings.Contains(res.Error, "provider exploded") {
			t.Errorf("Expected panic converted to failure, got %+v", res)
		}
	})
}

func TestRenderHTML(t *testing.T) {
	d := sampleDigest()
	html, err := renderHTML("14 de octubre", d.Plan, d.ShoppingList)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Failed to parse rendered HTML: %v", err)
	}

	if got := doc.Find("h1").Text(); !strings.Contains(got, "14 de octubre") {
		t.Errorf("Expected week label in title, got %q", got)
	}

	rows := doc.Find("tbody tr")
	if rows.Length() != 2 {
		t.Fatalf("Expected 2 plan rows, got %d", rows.Length())
	}
	cells := rows.Eq(1).Find("td")
	if cells.Eq(0).Text() != "Miércoles" || cells.Eq(1).Text() != "Cena" || cells.Eq(2).Text() != "Tarta <de> jamón" {
		t.Errorf("Unexpected second row: %q", rows.Eq(1).Text())
	}
	if strings.Contains(html, "<de>") {
		t.Error("Menu names must be escaped")
	}

	items := doc.Find("li")
	if items.Length() != 3 {
		t.Fatalf("Expected 3 shopping items, got %d", items.Length())
	}
	if items.Eq(2).Text() != "3. pan rallado" {
		t.Errorf("Expected numbered item, got %q", items.Eq(2).Text())
	}

	t.Run("WithoutPlan", func(t *testing.T) {
		html, err := renderHTML("14 de octubre", nil, []string{"sal"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if strings.Contains(html, "<table") {
			t.Error("Expected no plan table when the plan is empty")
		}
	})
}

func TestPlainText(t *testing.T) {
	d := sampleDigest()
	html, err := renderHTML("14 de octubre", d.Plan, d.ShoppingList)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	text, err := plainText(html)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, want := range []string{
		"🍽️ Menú Semanal - 14 de octubre",
		"Lunes - Almuerzo - Milanesas",
		"1. huevos",
		"Generado automáticamente por Morfi-Plan",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected plain text to contain %q, got:\n%s", want, text)
		}
	}
	if strings.Contains(text, "<") && !strings.Contains(text, "Tarta <de> jamón") {
		t.Errorf("Plain text must not contain markup:\n%s", text)
	}
}

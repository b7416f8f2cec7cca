package planner

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCurrentWeekStart(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"Sunday", time.Date(2024, 1, 14, 18, 30, 0, 0, loc), time.Date(2024, 1, 8, 0, 0, 0, 0, loc)},
		{"Wednesday", time.Date(2024, 1, 10, 9, 15, 0, 0, loc), time.Date(2024, 1, 8, 0, 0, 0, 0, loc)},
		{"Monday", time.Date(2024, 1, 8, 0, 0, 1, 0, loc), time.Date(2024, 1, 8, 0, 0, 0, 0, loc)},
		{"Saturday", time.Date(2024, 1, 13, 23, 59, 0, 0, loc), time.Date(2024, 1, 8, 0, 0, 0, 0, loc)},
		{"AcrossMonth", time.Date(2024, 3, 1, 12, 0, 0, 0, loc), time.Date(2024, 2, 26, 0, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CurrentWeekStart(tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}

	next := NextWeekStart(time.Date(2024, 1, 10, 9, 0, 0, 0, loc))
	if !next.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, loc)) {
		t.Errorf("Expected next week to start on 2024-01-15, got %v", next)
	}
}

func TestWeekDays(t *testing.T) {
	start := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	days := WeekDays(start)
	if len(days) != 5 {
		t.Fatalf("Expected 5 days, got %d", len(days))
	}
	if days[0].Day != Monday || days[0].Label != "Lun" || days[0].FullLabel != "Lunes" {
		t.Errorf("Unexpected first day: %+v", days[0])
	}
	if days[2].FullLabel != "Miércoles" {
		t.Errorf("Expected 'Miércoles', got '%s'", days[2].FullLabel)
	}
	if !days[4].Date.Equal(time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected Friday 2024-01-12, got %v", days[4].Date)
	}
}

func assign(id, menuID string, day DayOfWeek, meal MealType) Assignment {
	return Assignment{ID: id, MenuID: menuID, Day: day, MealType: meal}
}

func TestNextMeal(t *testing.T) {
	menus := []Menu{{ID: "m1", Name: "Milanesas"}, {ID: "m2", Name: "Ñoquis"}}
	assignments := []Assignment{
		assign("a1", "m1", Monday, Lunch),
		assign("a2", "m2", Monday, Dinner),
		assign("a3", "m1", Wednesday, Dinner),
		assign("a4", "gone", Thursday, Lunch),
	}
	// 2024-01-08 is a Monday.
	at := func(day, hour int) time.Time { return time.Date(2024, 1, 7+day, hour, 0, 0, 0, time.UTC) }

	t.Run("MorningPicksTodaysLunch", func(t *testing.T) {
		r := NextMeal(assignments, menus, at(1, 9))
		if r == nil || r.Assignment.ID != "a1" || r.MealType != Lunch {
			t.Fatalf("Expected Monday lunch, got %+v", r)
		}
		if r.Menu == nil || r.Menu.Name != "Milanesas" {
			t.Errorf("Expected menu 'Milanesas', got %+v", r.Menu)
		}
	})

	t.Run("AfternoonPicksTodaysDinner", func(t *testing.T) {
		r := NextMeal(assignments, menus, at(1, 15))
		if r == nil || r.Assignment.ID != "a2" {
			t.Fatalf("Expected Monday dinner, got %+v", r)
		}
	})

	t.Run("LateNightScansForward", func(t *testing.T) {
		r := NextMeal(assignments, menus, at(1, 22))
		if r == nil || r.Assignment.ID != "a3" || r.Day != Wednesday {
			t.Fatalf("Expected Wednesday dinner, got %+v", r)
		}
	})

	t.Run("DanglingMenuStillReturned", func(t *testing.T) {
		r := NextMeal(assignments, menus, at(3, 22))
		if r == nil || r.Assignment.ID != "a4" {
			t.Fatalf("Expected Thursday lunch, got %+v", r)
		}
		if r.Menu != nil {
			t.Errorf("Expected nil menu for dangling reference, got %+v", r.Menu)
		}
	})

	t.Run("WeekendYieldsNothing", func(t *testing.T) {
		if r := NextMeal(assignments, menus, at(6, 10)); r != nil {
			t.Errorf("Expected nil on Saturday, got %+v", r)
		}
		if r := NextMeal(assignments, menus, at(0, 10)); r != nil {
			t.Errorf("Expected nil on Sunday, got %+v", r)
		}
	})

	// Documented behavior: the scan ends at Friday and does not wrap to
	// next Monday even though Monday has assignments.
	t.Run("NoWrapPastFriday", func(t *testing.T) {
		if r := NextMeal(assignments, menus, at(5, 10)); r != nil {
			t.Errorf("Expected nil on Friday with nothing left, got %+v", r)
		}
	})
}

func TestCurrentDayMeal(t *testing.T) {
	menus := []Menu{{ID: "m1", Name: "Tarta"}}
	assignments := []Assignment{assign("a1", "m1", Tuesday, Dinner)}

	morning := CurrentDayMeal(assignments, menus, time.Date(2024, 1, 9, 11, 59, 0, 0, time.UTC))
	if morning == nil || morning.MealType != Lunch || morning.Label != "Almuerzo" {
		t.Fatalf("Expected lunch result, got %+v", morning)
	}
	if morning.Menu != nil {
		t.Errorf("Expected empty lunch slot, got %+v", morning.Menu)
	}

	evening := CurrentDayMeal(assignments, menus, time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC))
	if evening == nil || evening.MealType != Dinner || evening.Menu == nil || evening.Menu.Name != "Tarta" {
		t.Fatalf("Expected dinner 'Tarta', got %+v", evening)
	}

	if r := CurrentDayMeal(assignments, menus, time.Date(2024, 1, 13, 12, 0, 0, 0, time.UTC)); r != nil {
		t.Errorf("Expected nil on Saturday, got %+v", r)
	}
}

func TestNewMenu(t *testing.T) {
	now := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)

	if _, err := NewMenu("   ", nil, nil, now); !errors.Is(err, ErrInvalidMenu) {
		t.Fatalf("Expected ErrInvalidMenu, got %v", err)
	}

	blank := " "
	m, err := NewMenu(" Guiso ", []string{"Papa", "  ", "Carne"}, &blank, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if m.ID == "" || m.Name != "Guiso" || len(m.Ingredients) != 2 || m.Image != nil {
		t.Errorf("Unexpected menu: %+v", m)
	}

	later := now.Add(time.Hour)
	edited, err := m.Edit("Guiso de lentejas", []string{"Lentejas"}, nil, later)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if edited.ID != m.ID || edited.CreatedAt != m.CreatedAt {
		t.Error("Edit must keep ID and CreatedAt")
	}
	if edited.UpdatedAt == m.UpdatedAt {
		t.Error("Edit must refresh UpdatedAt")
	}
}

func TestNewAssignment(t *testing.T) {
	now := time.Now()
	if _, err := NewAssignment("m1", "sabado", Lunch, 0, now); !errors.Is(err, ErrInvalidAssignment) {
		t.Errorf("Expected ErrInvalidAssignment for weekend day, got %v", err)
	}
	if _, err := NewAssignment("m1", Monday, "desayuno", 0, now); !errors.Is(err, ErrInvalidAssignment) {
		t.Errorf("Expected ErrInvalidAssignment for unknown meal, got %v", err)
	}
	a, err := NewAssignment("m1", Friday, Dinner, 0, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if a.Slot() != (Slot{Day: Friday, MealType: Dinner}) {
		t.Errorf("Unexpected slot %+v", a.Slot())
	}
}

func TestPlanRows(t *testing.T) {
	d := AppData{
		Menus: []Menu{{ID: "m1", Name: "Pizza"}},
		Assignments: []Assignment{
			assign("a2", "m1", Tuesday, Dinner),
			assign("a1", "x", Monday, Lunch),
			{ID: "a3", MenuID: "m1", Day: Monday, MealType: Dinner, WeekOffset: 1},
		},
	}
	rows := d.PlanRows(0)
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].Day != Monday || rows[0].MenuName != UnknownMenuName {
		t.Errorf("Unexpected first row %+v", rows[0])
	}
	if rows[1].MenuName != "Pizza" {
		t.Errorf("Expected 'Pizza', got '%s'", rows[1].MenuName)
	}
}

func TestSettings(t *testing.T) {
	t.Run("LegacyDocument", func(t *testing.T) {
		var s Settings
		if err := json.Unmarshal([]byte(`{"email":"a@b.com","sendDay":"sunday"}`), &s); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(s.Emails) != 1 || s.Emails[0] != "a@b.com" {
			t.Errorf("Expected legacy email folded in, got %v", s.Emails)
		}
		if s.SendHour != DefaultSendHour {
			t.Errorf("Expected default hour %d, got %d", DefaultSendHour, s.SendHour)
		}
	})

	t.Run("ExplicitZeroHour", func(t *testing.T) {
		var s Settings
		_ = json.Unmarshal([]byte(`{"emails":[],"sendDay":"monday","sendHour":0}`), &s)
		if s.SendHour != 0 {
			t.Errorf("Expected hour 0, got %d", s.SendHour)
		}
	})

	t.Run("AddEmail", func(t *testing.T) {
		s := Settings{Emails: []string{"a@b.com"}}
		if _, err := s.AddEmail("not-an-email"); !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("Expected ErrInvalidEmail, got %v", err)
		}
		if _, err := s.AddEmail(" a@b.com "); !errors.Is(err, ErrDuplicateEmail) {
			t.Errorf("Expected ErrDuplicateEmail, got %v", err)
		}
		out, err := s.AddEmail("c@d.org")
		if err != nil || len(out.Emails) != 2 || len(s.Emails) != 1 {
			t.Errorf("Unexpected result %v / %v (err %v)", out.Emails, s.Emails, err)
		}
	})

	t.Run("Normalize", func(t *testing.T) {
		_, err := Settings{Emails: []string{"", " "}, SendDay: SendSunday}.Normalize()
		if !errors.Is(err, ErrNoRecipients) {
			t.Errorf("Expected ErrNoRecipients, got %v", err)
		}
		_, err = Settings{Emails: []string{"x@y"}, SendDay: SendSunday}.Normalize()
		if !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("Expected ErrInvalidEmail, got %v", err)
		}
		_, err = Settings{Emails: []string{"x@y.z"}, SendDay: "domingo"}.Normalize()
		if !errors.Is(err, ErrInvalidSendDay) {
			t.Errorf("Expected ErrInvalidSendDay, got %v", err)
		}
		_, err = Settings{Emails: []string{"x@y.z"}, SendDay: SendSunday, SendHour: 24}.Normalize()
		if !errors.Is(err, ErrInvalidHour) {
			t.Errorf("Expected ErrInvalidHour, got %v", err)
		}
		out, err := Settings{Emails: []string{" x@y.z ", ""}, SendDay: SendFriday, SendHour: 7}.Normalize()
		if err != nil || len(out.Emails) != 1 || out.Emails[0] != "x@y.z" {
			t.Errorf("Unexpected normalized settings %+v (err %v)", out, err)
		}
	})

	t.Run("ValidRecipients", func(t *testing.T) {
		s := Settings{Emails: []string{"", "bad", " ok@mail.com "}}
		got := s.ValidRecipients()
		if len(got) != 1 || got[0] != "ok@mail.com" {
			t.Errorf("Expected only 'ok@mail.com', got %v", got)
		}
	})
}

func TestWeekLabel(t *testing.T) {
	got := strings.ToLower(WeekLabel(time.Date(2024, time.October, 14, 0, 0, 0, 0, time.UTC)))
	if got != "14 de octubre" {
		t.Errorf("Expected '14 de octubre', got %q", got)
	}
}

package schedule

import (
	"testing"
	"time"

	"morfi-plan/internal/planner"
)

func TestEvaluate(t *testing.T) {
	settings := planner.Settings{SendDay: planner.SendSunday, SendHour: 12, UTCMigrated: true}
	// 2024-01-07 is a Sunday.
	sunday := func(h, m int) time.Time { return time.Date(2024, 1, 7, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name          string
		now           time.Time
		authenticated bool
		trigger       Trigger
		want          bool
	}{
		{"ExactMatch", sunday(12, 0), true, TriggerScheduled, true},
		{"SameHourLater", sunday(12, 59), true, TriggerScheduled, true},
		{"OneMinuteEarly", sunday(11, 59), true, TriggerScheduled, false},
		{"WrongDay", time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC), true, TriggerScheduled, false},
		{"ManualIgnoresClock", sunday(3, 0), true, TriggerManual, true},
		{"AnonymousAlwaysSends", time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC), false, TriggerScheduled, true},
		{"LocalZoneConvertedToUTC", time.Date(2024, 1, 7, 9, 0, 0, 0, time.FixedZone("ART", -3*3600)), true, TriggerScheduled, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.now, settings, tt.authenticated, tt.trigger)
			if d.Proceed != tt.want {
				t.Errorf("Expected proceed=%v, got %+v", tt.want, d)
			}
		})
	}

	d := Evaluate(sunday(11, 0), settings, true, TriggerScheduled)
	if d.Reason != "Not time yet. Current: 0:11, Config: 0:12" {
		t.Errorf("Unexpected skip reason '%s'", d.Reason)
	}
}

func TestEvaluateAllWeekdays(t *testing.T) {
	// 2024-01-08 is a Monday.
	days := []planner.SendDay{
		planner.SendMonday, planner.SendTuesday, planner.SendWednesday, planner.SendThursday,
		planner.SendFriday, planner.SendSaturday, planner.SendSunday,
	}
	for i, day := range days {
		now := time.Date(2024, 1, 8+i, 20, 0, 0, 0, time.UTC)
		s := planner.Settings{SendDay: day, SendHour: 20, UTCMigrated: true}
		if d := Evaluate(now, s, true, TriggerScheduled); !d.Proceed {
			t.Errorf("Expected %s 20:00 to proceed, got %+v", day, d)
		}
	}
}

func TestParseTrigger(t *testing.T) {
	if ParseTrigger("") != TriggerScheduled {
		t.Error("Expected empty trigger to default to scheduled")
	}
	if ParseTrigger(" Manual ") != TriggerManual {
		t.Error("Expected 'Manual' to parse as manual")
	}
	if ParseTrigger("whatever") != TriggerScheduled {
		t.Error("Expected unknown trigger to default to scheduled")
	}
}

func TestMigrateLegacyHour(t *testing.T) {
	t.Run("LegacyHourConverted", func(t *testing.T) {
		s, changed := MigrateLegacyHour(planner.Settings{SendHour: 9})
		if !changed || s.SendHour != 12 || !s.UTCMigrated {
			t.Fatalf("Expected 12 UTC and flagged, got %+v (changed=%v)", s, changed)
		}

		again, changed := MigrateLegacyHour(s)
		if changed || again.SendHour != 12 {
			t.Errorf("Expected idempotent migration, got %+v (changed=%v)", again, changed)
		}
	})

	t.Run("AfternoonHourUntouched", func(t *testing.T) {
		s, changed := MigrateLegacyHour(planner.Settings{SendHour: 15})
		if changed || s.SendHour != 15 || s.UTCMigrated {
			t.Errorf("Expected untouched settings, got %+v", s)
		}
	})

	t.Run("AlreadyMigrated", func(t *testing.T) {
		s, changed := MigrateLegacyHour(planner.Settings{SendHour: 2, UTCMigrated: true})
		if changed || s.SendHour != 2 {
			t.Errorf("Expected untouched settings, got %+v", s)
		}
	})
}

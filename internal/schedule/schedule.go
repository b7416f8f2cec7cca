// Package schedule decides whether an automated digest send fires now.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"morfi-plan/internal/planner"
)

// Trigger is the mode requested by the external scheduler.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// ParseTrigger maps a request value onto a Trigger. Anything other than
// "manual" is treated as scheduled.
func ParseTrigger(s string) Trigger {
	if strings.EqualFold(strings.TrimSpace(s), string(TriggerManual)) {
		return TriggerManual
	}
	return TriggerScheduled
}

// Decision is the outcome of Evaluate.
type Decision struct {
	Proceed bool
	Reason  string
}

// Evaluate gates a send request. Requests that did not authenticate with
// the scheduler secret come from the UI and always proceed. Authenticated
// manual triggers proceed too. Authenticated scheduled triggers proceed
// only when the UTC weekday and hour equal the configured ones.
func Evaluate(now time.Time, s planner.Settings, authenticated bool, trigger Trigger) Decision {
	if !authenticated {
		return Decision{Proceed: true, Reason: "on-demand request"}
	}
	if trigger == TriggerManual {
		return Decision{Proceed: true, Reason: "manual trigger"}
	}

	now = now.UTC()
	currentDay, currentHour := now.Weekday(), now.Hour()

	configDay, ok := s.SendDay.Weekday()
	if !ok {
		configDay = time.Sunday
	}
	configHour := s.SendHour

	if currentDay != configDay || currentHour != configHour {
		return Decision{
			Reason: fmt.Sprintf("Not time yet. Current: %d:%d, Config: %d:%d",
				int(currentDay), currentHour, int(configDay), configHour),
		}
	}
	return Decision{Proceed: true, Reason: "scheduled time reached"}
}

// LegacyOffsetHours is the fixed offset (UTC-3) older documents stored
// their send hour in.
const LegacyOffsetHours = 3

// MigrateLegacyHour converts an unflagged send hour below 12 from the
// legacy local offset to UTC and sets the flag. It reports whether the
// settings changed. Flagged settings, and unflagged hours of 12 or more,
// are returned untouched.
func MigrateLegacyHour(s planner.Settings) (planner.Settings, bool) {
	if s.UTCMigrated || s.SendHour >= 12 {
		return s, false
	}
	out := s
	out.SendHour = (s.SendHour + LegacyOffsetHours) % 24
	out.UTCMigrated = true
	return out, true
}

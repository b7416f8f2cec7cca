package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrDuplicateEmail = errors.New("email already in the list")
	ErrNoRecipients   = errors.New("at least one email is required")
	ErrInvalidSendDay = errors.New("invalid send day")
	ErrInvalidHour    = errors.New("send hour must be between 0 and 23")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks addr against the accepted address shape.
func ValidateEmail(addr string) error {
	if !emailPattern.MatchString(addr) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, addr)
	}
	return nil
}

// SendDay is the weekday of the automated digest.
type SendDay string

const (
	SendMonday    SendDay = "monday"
	SendTuesday   SendDay = "tuesday"
	SendWednesday SendDay = "wednesday"
	SendThursday  SendDay = "thursday"
	SendFriday    SendDay = "friday"
	SendSaturday  SendDay = "saturday"
	SendSunday    SendDay = "sunday"
)

var sendDays = map[SendDay]time.Weekday{
	SendSunday:    time.Sunday,
	SendMonday:    time.Monday,
	SendTuesday:   time.Tuesday,
	SendWednesday: time.Wednesday,
	SendThursday:  time.Thursday,
	SendFriday:    time.Friday,
	SendSaturday:  time.Saturday,
}

// Weekday maps the send day onto time.Weekday.
func (s SendDay) Weekday() (time.Weekday, bool) {
	wd, ok := sendDays[s]
	return wd, ok
}

// DefaultSendHour is 09:00 in the legacy UTC-3 zone, expressed in UTC.
const DefaultSendHour = 12

// Settings is the notification configuration stored in the document.
// SendHour is in UTC once UTCMigrated is set.
type Settings struct {
	Emails      []string `json:"emails"`
	SendDay     SendDay  `json:"sendDay"`
	SendHour    int      `json:"sendHour"`
	UTCMigrated bool     `json:"_utcMigrated,omitempty"`
}

// UnmarshalJSON applies the defaults of older document revisions: a
// missing hour means DefaultSendHour and a lone "email" field becomes
// the recipient list.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var raw struct {
		Emails      []string `json:"emails"`
		Email       string   `json:"email"`
		SendDay     SendDay  `json:"sendDay"`
		SendHour    *int     `json:"sendHour"`
		UTCMigrated bool     `json:"_utcMigrated"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Settings{
		Emails:      raw.Emails,
		SendDay:     raw.SendDay,
		SendHour:    DefaultSendHour,
		UTCMigrated: raw.UTCMigrated,
	}
	if raw.SendHour != nil {
		s.SendHour = *raw.SendHour
	}
	if len(s.Emails) == 0 && strings.TrimSpace(raw.Email) != "" {
		s.Emails = []string{raw.Email}
	}
	if s.SendDay == "" {
		s.SendDay = SendSunday
	}
	return nil
}

// ValidRecipients returns the trimmed addresses that pass ValidateEmail.
func (s Settings) ValidRecipients() []string {
	var out []string
	for _, e := range s.Emails {
		e = strings.TrimSpace(e)
		if e == "" || ValidateEmail(e) != nil {
			continue
		}
		out = append(out, e)
	}
	return out
}

// AddEmail appends addr after validating it.
func (s Settings) AddEmail(addr string) (Settings, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return s, fmt.Errorf("%w: empty", ErrInvalidEmail)
	}
	if err := ValidateEmail(addr); err != nil {
		return s, err
	}
	for _, e := range s.Emails {
		if strings.TrimSpace(e) == addr {
			return s, fmt.Errorf("%w: %s", ErrDuplicateEmail, addr)
		}
	}
	out := s
	out.Emails = append(append([]string(nil), s.Emails...), addr)
	return out, nil
}

// Normalize drops blank addresses and rejects malformed ones, returning
// settings ready to be stored.
func (s Settings) Normalize() (Settings, error) {
	var emails []string
	var invalid []string
	seen := make(map[string]bool)
	for _, e := range s.Emails {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if ValidateEmail(e) != nil {
			invalid = append(invalid, e)
			continue
		}
		if seen[e] {
			return s, fmt.Errorf("%w: %s", ErrDuplicateEmail, e)
		}
		seen[e] = true
		emails = append(emails, e)
	}
	if len(invalid) > 0 {
		return s, fmt.Errorf("%w: %s", ErrInvalidEmail, strings.Join(invalid, ", "))
	}
	if len(emails) == 0 {
		return s, ErrNoRecipients
	}
	if _, ok := s.SendDay.Weekday(); !ok {
		return s, fmt.Errorf("%w: %q", ErrInvalidSendDay, s.SendDay)
	}
	if s.SendHour < 0 || s.SendHour > 23 {
		return s, fmt.Errorf("%w: %d", ErrInvalidHour, s.SendHour)
	}
	out := s
	out.Emails = emails
	return out, nil
}

package store

import (
	"context"
	"errors"
	"log/slog"

	"morfi-plan/internal/planner"
	"morfi-plan/internal/schedule"
)

// ErrMenuNotFound is returned by UpdateMenu for an unknown identifier.
var ErrMenuNotFound = errors.New("menu not found")

// Every operation below is a read-modify-write of the whole document.

// Menus returns the menu catalog.
func (s *DocumentStore) Menus(ctx context.Context) []planner.Menu {
	return s.Load(ctx).Menus
}

// AddMenu appends a menu.
func (s *DocumentStore) AddMenu(ctx context.Context, menu planner.Menu) ([]planner.Menu, error) {
	if menu.Name == "" {
		return nil, planner.ErrInvalidMenu
	}
	doc := s.Load(ctx)
	doc.Menus = append(doc.Menus, menu)
	return s.Replace(ctx, doc).Menus, nil
}

// UpdateMenu replaces the menu with the same identifier.
func (s *DocumentStore) UpdateMenu(ctx context.Context, menu planner.Menu) ([]planner.Menu, error) {
	if menu.Name == "" {
		return nil, planner.ErrInvalidMenu
	}
	doc := s.Load(ctx)
	for i := range doc.Menus {
		if doc.Menus[i].ID == menu.ID {
			doc.Menus[i] = menu
			return s.Replace(ctx, doc).Menus, nil
		}
	}
	return doc.Menus, ErrMenuNotFound
}

// DeleteMenu removes a menu and every assignment that references it.
func (s *DocumentStore) DeleteMenu(ctx context.Context, menuID string) []planner.Menu {
	doc := s.Load(ctx)

	menus := doc.Menus[:0]
	for _, m := range doc.Menus {
		if m.ID != menuID {
			menus = append(menus, m)
		}
	}
	doc.Menus = menus

	assignments := doc.Assignments[:0]
	for _, a := range doc.Assignments {
		if a.MenuID != menuID {
			assignments = append(assignments, a)
		}
	}
	doc.Assignments = assignments

	return s.Replace(ctx, doc).Menus
}

// Assignments returns every stored assignment.
func (s *DocumentStore) Assignments(ctx context.Context) []planner.Assignment {
	return s.Load(ctx).Assignments
}

// AddAssignment inserts a, first evicting whatever occupies its slot.
func (s *DocumentStore) AddAssignment(ctx context.Context, a planner.Assignment) ([]planner.Assignment, error) {
	if !a.Day.Valid() || !a.MealType.Valid() || a.MenuID == "" {
		return nil, planner.ErrInvalidAssignment
	}
	doc := s.Load(ctx)

	slot := a.Slot()
	kept := doc.Assignments[:0]
	for _, existing := range doc.Assignments {
		if existing.Slot() != slot {
			kept = append(kept, existing)
		}
	}
	doc.Assignments = append(kept, a)

	return s.Replace(ctx, doc).Assignments, nil
}

// RemoveAssignment deletes one assignment by identifier.
func (s *DocumentStore) RemoveAssignment(ctx context.Context, id string) []planner.Assignment {
	doc := s.Load(ctx)
	kept := doc.Assignments[:0]
	for _, a := range doc.Assignments {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	doc.Assignments = kept
	return s.Replace(ctx, doc).Assignments
}

// Settings returns the notification configuration, migrating a legacy
// send hour first.
func (s *DocumentStore) Settings(ctx context.Context) planner.Settings {
	return s.MigrateSettings(ctx, s.Load(ctx)).Config
}

// MigrateSettings applies the legacy-hour migration to doc and persists
// the document when it changed.
func (s *DocumentStore) MigrateSettings(ctx context.Context, doc planner.AppData) planner.AppData {
	migrated, changed := schedule.MigrateLegacyHour(doc.Config)
	if !changed {
		return doc
	}
	slog.Info("migrated legacy send hour to UTC", "from", doc.Config.SendHour, "to", migrated.SendHour)
	doc.Config = migrated
	return s.Replace(ctx, doc)
}

// UpdateSettings validates and stores a new configuration. The hour is
// taken as UTC.
func (s *DocumentStore) UpdateSettings(ctx context.Context, settings planner.Settings) (planner.Settings, error) {
	normalized, err := settings.Normalize()
	if err != nil {
		return planner.Settings{}, err
	}
	normalized.UTCMigrated = true

	doc := s.Load(ctx)
	doc.Config = normalized
	return s.Replace(ctx, doc).Config, nil
}

// AddRecipient appends one address to the configured recipients.
func (s *DocumentStore) AddRecipient(ctx context.Context, addr string) (planner.Settings, error) {
	doc := s.MigrateSettings(ctx, s.Load(ctx))
	updated, err := doc.Config.AddEmail(addr)
	if err != nil {
		return planner.Settings{}, err
	}
	doc.Config = updated
	return s.Replace(ctx, doc).Config, nil
}

package shopping

import (
	"sort"
	"strings"

	"morfi-plan/internal/planner"
)

// Derive builds the shopping list for a set of assignments: every
// ingredient of every referenced menu, lower-cased and trimmed, once,
// sorted. Assignments whose menu is gone are skipped, as are blank
// ingredient lines.
func Derive(menus []planner.Menu, assignments []planner.Assignment) []string {
	byID := make(map[string]planner.Menu, len(menus))
	for _, m := range menus {
		byID[m.ID] = m
	}

	set := make(map[string]struct{})
	for _, a := range assignments {
		m, ok := byID[a.MenuID]
		if !ok {
			continue
		}
		for _, ing := range m.Ingredients {
			item := strings.ToLower(strings.TrimSpace(ing))
			if item == "" {
				continue
			}
			set[item] = struct{}{}
		}
	}

	items := make([]string, 0, len(set))
	for ing := range set {
		items = append(items, ing)
	}
	sort.Strings(items)
	return items
}

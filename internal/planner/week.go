package planner

import "time"

const (
	lunchEndHour  = 14
	dinnerEndHour = 21
	middayHour    = 12
)

// WeekDay is one column of the weekly board.
type WeekDay struct {
	Day       DayOfWeek `json:"day"`
	Label     string    `json:"label"`
	FullLabel string    `json:"fullLabel"`
	Date      time.Time `json:"date"`
}

// CurrentWeekStart returns local midnight of the Monday of the week
// containing now. Sunday belongs to the week that started six days
// earlier.
func CurrentWeekStart(now time.Time) time.Time {
	offset := 1 - int(now.Weekday())
	if now.Weekday() == time.Sunday {
		offset = -6
	}
	y, m, d := now.Date()
	return time.Date(y, m, d+offset, 0, 0, 0, 0, now.Location())
}

// NextWeekStart returns the Monday after CurrentWeekStart(now).
func NextWeekStart(now time.Time) time.Time {
	return CurrentWeekStart(now).AddDate(0, 0, 7)
}

// WeekDays enumerates Monday to Friday starting at weekStart.
func WeekDays(weekStart time.Time) []WeekDay {
	days := make([]WeekDay, 0, len(Weekdays))
	for i, d := range Weekdays {
		days = append(days, WeekDay{
			Day:       d,
			Label:     d.Label(),
			FullLabel: d.FullLabel(),
			Date:      weekStart.AddDate(0, 0, i),
		})
	}
	return days
}

// DayFromWeekday maps a calendar weekday to a plannable day.
func DayFromWeekday(wd time.Weekday) (DayOfWeek, bool) {
	if wd < time.Monday || wd > time.Friday {
		return "", false
	}
	return Weekdays[int(wd)-1], true
}

// NextMealResult is the upcoming filled slot. Menu is nil when the
// assignment points at a deleted menu.
type NextMealResult struct {
	Assignment Assignment `json:"assignment"`
	Menu       *Menu      `json:"menu"`
	Day        DayOfWeek  `json:"day"`
	MealType   MealType   `json:"mealType"`
}

// NextMeal finds the next assigned meal from now. Lunch runs until
// 14:00 and dinner until 21:00 local time. Weekends yield nil, and the
// scan stops at Friday without wrapping to the following Monday.
func NextMeal(assignments []Assignment, menus []Menu, now time.Time) *NextMealResult {
	today, ok := DayFromWeekday(now.Weekday())
	if !ok {
		return nil
	}

	hour := now.Hour()
	isLunchTime := hour < lunchEndHour
	isDinnerTime := hour >= lunchEndHour && hour < dinnerEndHour

	if isLunchTime {
		if r := mealAt(assignments, menus, today, Lunch); r != nil {
			return r
		}
	}
	if isLunchTime || isDinnerTime {
		if r := mealAt(assignments, menus, today, Dinner); r != nil {
			return r
		}
	}

	for i := today.Index() + 1; i < len(Weekdays); i++ {
		day := Weekdays[i]
		for _, meal := range MealTypes {
			if r := mealAt(assignments, menus, day, meal); r != nil {
				return r
			}
		}
	}
	return nil
}

func mealAt(assignments []Assignment, menus []Menu, day DayOfWeek, meal MealType) *NextMealResult {
	a, ok := findAssignment(assignments, day, meal)
	if !ok {
		return nil
	}
	r := &NextMealResult{Assignment: a, Day: day, MealType: meal}
	if m, ok := findMenu(menus, a.MenuID); ok {
		r.Menu = &m
	}
	return r
}

// DayMeal is the meal that applies right now on a weekday.
type DayMeal struct {
	Menu     *Menu     `json:"menu"`
	Day      DayOfWeek `json:"day"`
	MealType MealType  `json:"mealType"`
	Label    string    `json:"label"`
}

// CurrentDayMeal picks lunch before noon and dinner afterwards. It
// returns nil on weekends; on weekdays it always returns a value, with
// Menu nil when the slot is empty.
func CurrentDayMeal(assignments []Assignment, menus []Menu, now time.Time) *DayMeal {
	today, ok := DayFromWeekday(now.Weekday())
	if !ok {
		return nil
	}
	meal := Dinner
	if now.Hour() < middayHour {
		meal = Lunch
	}
	dm := &DayMeal{Day: today, MealType: meal, Label: meal.Label()}
	if r := mealAt(assignments, menus, today, meal); r != nil {
		dm.Menu = r.Menu
	}
	return dm
}

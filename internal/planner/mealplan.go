package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidMenu       = errors.New("menu name must not be empty")
	ErrInvalidAssignment = errors.New("invalid assignment")
)

// DayOfWeek is a plannable weekday. Values match the stored documents.
type DayOfWeek string

const (
	Monday    DayOfWeek = "lunes"
	Tuesday   DayOfWeek = "martes"
	Wednesday DayOfWeek = "miercoles"
	Thursday  DayOfWeek = "jueves"
	Friday    DayOfWeek = "viernes"
)

// Weekdays lists the plannable days in calendar order.
var Weekdays = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday}

// MealType is one of the two daily meals.
type MealType string

const (
	Lunch  MealType = "almuerzo"
	Dinner MealType = "cena"
)

// MealTypes lists the meals in chronological order.
var MealTypes = []MealType{Lunch, Dinner}

var dayLabels = map[DayOfWeek][2]string{
	Monday:    {"Lun", "Lunes"},
	Tuesday:   {"Mar", "Martes"},
	Wednesday: {"Mié", "Miércoles"},
	Thursday:  {"Jue", "Jueves"},
	Friday:    {"Vie", "Viernes"},
}

var mealLabels = map[MealType]string{
	Lunch:  "Almuerzo",
	Dinner: "Cena",
}

// Valid reports whether d is one of the five plannable days.
func (d DayOfWeek) Valid() bool {
	_, ok := dayLabels[d]
	return ok
}

// Label returns the short display label ("Lun").
func (d DayOfWeek) Label() string { return dayLabels[d][0] }

// FullLabel returns the long display label ("Lunes").
func (d DayOfWeek) FullLabel() string { return dayLabels[d][1] }

// Index returns the 0-based position of d in the week, or -1.
func (d DayOfWeek) Index() int {
	for i, day := range Weekdays {
		if day == d {
			return i
		}
	}
	return -1
}

// Valid reports whether m is lunch or dinner.
func (m MealType) Valid() bool {
	_, ok := mealLabels[m]
	return ok
}

// Label returns the display label of the meal type.
func (m MealType) Label() string { return mealLabels[m] }

// Menu is a reusable meal definition.
type Menu struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
	Image       *string  `json:"image"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

// NewMenu builds a menu with a fresh identifier.
func NewMenu(name string, ingredients []string, image *string, now time.Time) (Menu, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Menu{}, ErrInvalidMenu
	}
	ts := now.UTC().Format(time.RFC3339Nano)
	return Menu{
		ID:          uuid.NewString(),
		Name:        name,
		Ingredients: cleanIngredients(ingredients),
		Image:       cleanImage(image),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}, nil
}

// Edit returns a copy of m with new contents. ID and CreatedAt are kept.
func (m Menu) Edit(name string, ingredients []string, image *string, now time.Time) (Menu, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Menu{}, ErrInvalidMenu
	}
	m.Name = name
	m.Ingredients = cleanIngredients(ingredients)
	m.Image = cleanImage(image)
	m.UpdatedAt = now.UTC().Format(time.RFC3339Nano)
	return m, nil
}

func cleanIngredients(in []string) []string {
	out := make([]string, 0, len(in))
	for _, ing := range in {
		if strings.TrimSpace(ing) == "" {
			continue
		}
		out = append(out, ing)
	}
	return out
}

func cleanImage(image *string) *string {
	if image == nil {
		return nil
	}
	s := strings.TrimSpace(*image)
	if s == "" {
		return nil
	}
	return &s
}

// Slot identifies a (day, meal type, week offset) cell of the board.
type Slot struct {
	Day        DayOfWeek
	MealType   MealType
	WeekOffset int
}

// Assignment places a menu in a slot.
type Assignment struct {
	ID         string    `json:"id"`
	MenuID     string    `json:"menuId"`
	Day        DayOfWeek `json:"day"`
	MealType   MealType  `json:"mealType"`
	WeekOffset int       `json:"weekOffset"`
	CreatedAt  string    `json:"createdAt"`
}

// NewAssignment builds an assignment with a fresh identifier.
func NewAssignment(menuID string, day DayOfWeek, mealType MealType, weekOffset int, now time.Time) (Assignment, error) {
	if strings.TrimSpace(menuID) == "" {
		return Assignment{}, fmt.Errorf("%w: menu id is required", ErrInvalidAssignment)
	}
	if !day.Valid() {
		return Assignment{}, fmt.Errorf("%w: unknown day %q", ErrInvalidAssignment, day)
	}
	if !mealType.Valid() {
		return Assignment{}, fmt.Errorf("%w: unknown meal type %q", ErrInvalidAssignment, mealType)
	}
	return Assignment{
		ID:         uuid.NewString(),
		MenuID:     menuID,
		Day:        day,
		MealType:   mealType,
		WeekOffset: weekOffset,
		CreatedAt:  now.UTC().Format(time.RFC3339Nano),
	}, nil
}

// Slot returns the board cell the assignment occupies.
func (a Assignment) Slot() Slot {
	return Slot{Day: a.Day, MealType: a.MealType, WeekOffset: a.WeekOffset}
}

// AppData is the single application document.
type AppData struct {
	Menus       []Menu       `json:"menus"`
	Assignments []Assignment `json:"assignments"`
	Config      Settings     `json:"config"`
}

// UnmarshalJSON keeps nil collections out of decoded documents and
// gives a missing config the default schedule.
func (d *AppData) UnmarshalJSON(data []byte) error {
	type alias AppData
	a := alias{Config: Settings{SendDay: SendSunday, SendHour: DefaultSendHour}}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Menus == nil {
		a.Menus = []Menu{}
	}
	if a.Assignments == nil {
		a.Assignments = []Assignment{}
	}
	*d = AppData(a)
	return nil
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (d AppData) Clone() AppData {
	out := AppData{
		Menus:       make([]Menu, len(d.Menus)),
		Assignments: make([]Assignment, len(d.Assignments)),
		Config:      d.Config,
	}
	for i, m := range d.Menus {
		m.Ingredients = append([]string(nil), m.Ingredients...)
		out.Menus[i] = m
	}
	copy(out.Assignments, d.Assignments)
	out.Config.Emails = append([]string(nil), d.Config.Emails...)
	return out
}

// FindMenu returns the menu with the given ID.
func (d AppData) FindMenu(id string) (Menu, bool) {
	return findMenu(d.Menus, id)
}

func findMenu(menus []Menu, id string) (Menu, bool) {
	for _, m := range menus {
		if m.ID == id {
			return m, true
		}
	}
	return Menu{}, false
}

// Week returns the assignments stored for the given week offset.
func (d AppData) Week(offset int) []Assignment {
	var out []Assignment
	for _, a := range d.Assignments {
		if a.WeekOffset == offset {
			out = append(out, a)
		}
	}
	return out
}

// CurrentWeek returns the assignments of week offset 0.
func (d AppData) CurrentWeek() []Assignment {
	return d.Week(0)
}

// UnknownMenuName is shown for assignments whose menu no longer exists.
const UnknownMenuName = "Menú desconocido"

// PlanRow is one filled cell of the board, resolved for display.
type PlanRow struct {
	Day      DayOfWeek
	MealType MealType
	MenuName string
}

// PlanRows returns the filled slots of a week in day then meal order.
func (d AppData) PlanRows(weekOffset int) []PlanRow {
	var rows []PlanRow
	week := d.Week(weekOffset)
	for _, day := range Weekdays {
		for _, meal := range MealTypes {
			a, ok := findAssignment(week, day, meal)
			if !ok {
				continue
			}
			name := UnknownMenuName
			if m, ok := d.FindMenu(a.MenuID); ok {
				name = m.Name
			}
			rows = append(rows, PlanRow{Day: day, MealType: meal, MenuName: name})
		}
	}
	return rows
}

func findAssignment(assignments []Assignment, day DayOfWeek, meal MealType) (Assignment, bool) {
	for _, a := range assignments {
		if a.Day == day && a.MealType == meal {
			return a, true
		}
	}
	return Assignment{}, false
}

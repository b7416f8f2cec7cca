package shopping

import "time"

// ShoppingList is a delivered shopping list for one week.
type ShoppingList struct {
	ID        int64     `json:"id"`
	WeekStart time.Time `json:"week_start"`
	Items     []string  `json:"items"`
	Channel   string    `json:"channel"`
	CreatedAt time.Time `json:"created_at"`
}

package planner

import (
	"time"

	"github.com/goodsign/monday"
)

// WeekLabel renders weekStart the way the digests title a week, e.g.
// "15 de octubre".
func WeekLabel(weekStart time.Time) string {
	return monday.Format(weekStart, "2 de January", monday.LocaleEsES)
}

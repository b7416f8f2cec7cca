package metrics

import (
	"fmt"
	"strings"
)

// FormatReport renders usage and health as a short text report.
func FormatReport(usage []DailyUsage, health SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 Usage & Health Report\n\n")

	sb.WriteString("🗓 Recent deliveries\n")
	if len(usage) == 0 {
		sb.WriteString("  no data yet\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("  %s: %d sent, %d failed, %d recipients (avg %dms)\n",
			d.Date, d.Sent, d.Failed, d.Recipients, d.AvgLatency))
	}

	sb.WriteString("\n🧠 System\n")
	sb.WriteString(fmt.Sprintf("  RAM: %s (alloc) / %s (sys)\n", health.Alloc, health.Sys))
	sb.WriteString(fmt.Sprintf("  Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("  Disk data: %s\n", health.DataDiskSize))
	return sb.String()
}

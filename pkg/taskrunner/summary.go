package taskrunner

import (
	"fmt"
	"strings"
	"time"
)

// RenderSummaryLine returns the summary line printed after multi-task runs.
func RenderSummaryLine(outcome Outcome) string {
	if outcome.TaskCount <= 1 {
		return ""
	}

	parts := []string{fmt.Sprintf("Summary: total.tasks=%d", outcome.TaskCount)}

	duration := outcome.Duration
	if duration < 0 {
		duration = 0
	}
	parts = append(parts, fmt.Sprintf("duration_human=%s", duration.Round(time.Millisecond)))
	parts = append(parts, fmt.Sprintf("duration_ms=%d", duration.Milliseconds()))

	return strings.Join(parts, " ")
}

package scanner

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// RelativeTime renders a timestamp as a human-readable recency label:
//
//	> 7 days       "Mar 4" (abbreviated month + day)
//	1-7 days       "N day(s) ago"
//	> 1 hour       "N hour(s) ago"
//	> 1 minute     "N minute(s) ago"
//	otherwise      "Just now"
//
// A zero timestamp (a stat that never succeeded) yields "Unknown".
func RelativeTime(ts, now time.Time) string {
	if ts.IsZero() {
		return "Unknown"
	}

	diff := now.Sub(ts)
	days := int(diff / day)
	residual := int((diff % day) / time.Second)

	switch {
	case days > 7:
		return ts.Format("Jan 2")
	case days > 0:
		return plural(days, "day")
	case residual > 3600:
		return plural(residual/3600, "hour")
	case residual > 60:
		return plural(residual/60, "minute")
	default:
		return "Just now"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

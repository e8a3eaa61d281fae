package human

import (
	"fmt"
	"math"
	"time"
)

func plural(n float64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%v %ss", n, unit)
}

// Relative describes t as seen from now, like "5 mins ago". Times more than two weeks
// away are printed as dates.
func Relative(now, t time.Time) string {
	sgnDiff := t.Sub(now)
	neg := sgnDiff < 0
	diff := sgnDiff
	if neg {
		diff = -diff
	}

	if diff < time.Second {
		return "now"
	}

	agoIn := func(s string) string {
		if neg {
			return s + " ago"
		}
		return "in " + s
	}

	switch {
	case diff <= 90*time.Second:
		return agoIn(plural(math.Round(diff.Seconds()), "sec"))
	case diff <= 90*time.Minute:
		return agoIn(plural(math.Round(diff.Minutes()), "min"))
	case diff <= 36*time.Hour:
		return agoIn(plural(math.Round(diff.Hours()), "hr"))
	case diff <= 14*24*time.Hour:
		return agoIn(plural(math.Round(diff.Hours()/24), "day"))
	}
	return t.Local().Format(time.DateTime)
}

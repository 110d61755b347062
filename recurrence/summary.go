package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// Summary renders a normalized rule as the one-line description shown on
// event pages, e.g. "Every 2 weeks on Tuesday and Thursday at 7:00 PM, 6
// sessions".
func Summary(rule Rule) string {
	var b strings.Builder
	b.WriteString(frequencyPhrase(rule))
	b.WriteString(" at ")
	b.WriteString(clockPhrase(rule))

	switch rule.EndType {
	case EndAfterCount:
		if rule.EndCount == 1 {
			b.WriteString(", 1 session")
		} else {
			fmt.Fprintf(&b, ", %d sessions", rule.EndCount)
		}
	case EndOnDate:
		fmt.Fprintf(&b, " until %s", rule.EndDate.Format("January 2, 2006"))
	}
	return b.String()
}

func frequencyPhrase(rule Rule) string {
	switch rule.Frequency {
	case FreqDaily:
		if rule.Interval == 1 {
			return "Every day"
		}
		return fmt.Sprintf("Every %d days", rule.Interval)
	case FreqWeekly:
		if rule.Interval == 1 {
			return "Every " + dayList(rule.DaysOfWeek)
		}
		return fmt.Sprintf("Every %d weeks on %s", rule.Interval, dayList(rule.DaysOfWeek))
	case FreqBiweekly:
		if rule.Interval == 1 {
			return "Every other week on " + dayList(rule.DaysOfWeek)
		}
		return fmt.Sprintf("Every %d weeks on %s", rule.Interval*2, dayList(rule.DaysOfWeek))
	case FreqMonthly:
		phrase := fmt.Sprintf("Monthly on the %s", ordinal(rule.DayOfMonth))
		if rule.Interval > 1 {
			phrase = fmt.Sprintf("Every %d months on the %s", rule.Interval, ordinal(rule.DayOfMonth))
		}
		if rule.DayOfMonth > 28 {
			phrase += " (or last day)"
		}
		return phrase
	case FreqYearly:
		if rule.Interval == 1 {
			return "Every year"
		}
		return fmt.Sprintf("Every %d years", rule.Interval)
	}
	return string(rule.Frequency)
}

func clockPhrase(rule Rule) string {
	t := time.Date(0, 1, 1, rule.Hour, rule.Minute, 0, 0, time.UTC)
	return t.Format("3:04 PM")
}

func dayList(days []time.Weekday) string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

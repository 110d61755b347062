package ics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/townbeat/eventseries/recurrence"
)

// ImportedSeries is what a VEVENT contributes when an organizer bulk-imports
// an existing calendar into the directory. The RawRule still has to pass
// Normalize; import only translates, it does not validate.
type ImportedSeries struct {
	UID         string
	Title       string
	Description string
	Venue       string
	StartDate   time.Time
	Raw         recurrence.RawRule
}

// ImportEvent extracts a series draft from a recurring VEVENT component.
// Non-recurring components are rejected; standalone events take a different
// path in the application.
func ImportEvent(comp *ical.Component) (ImportedSeries, error) {
	var out ImportedSeries

	if uidProp := comp.Props.Get(ical.PropUID); uidProp != nil {
		out.UID = uidProp.Value
	}
	if summaryProp := comp.Props.Get(ical.PropSummary); summaryProp != nil {
		out.Title = summaryProp.Value
	}
	if descProp := comp.Props.Get(ical.PropDescription); descProp != nil {
		out.Description = descProp.Value
	}
	if locProp := comp.Props.Get(ical.PropLocation); locProp != nil {
		out.Venue = locProp.Value
	}

	start, err := comp.Props.DateTime(ical.PropDateTimeStart, nil)
	if err != nil {
		return out, fmt.Errorf("event has no usable DTSTART: %w", err)
	}
	out.StartDate = start
	out.Raw.Time = start.Format("15:04")
	if name := start.Location().String(); name != "Local" && name != "UTC" {
		out.Raw.Timezone = name
	}

	if end, err := comp.Props.DateTime(ical.PropDateTimeEnd, nil); err == nil && end.After(start) {
		out.Raw.DurationMinutes = int(end.Sub(start) / time.Minute)
	}

	rruleProp := comp.Props.Get(ical.PropRecurrenceRule)
	if rruleProp == nil || rruleProp.Value == "" {
		return out, fmt.Errorf("event %q has no RRULE", out.UID)
	}
	if err := parseRRuleInto(rruleProp.Value, &out.Raw, start.Location()); err != nil {
		return out, fmt.Errorf("event %q: %w", out.UID, err)
	}

	return out, nil
}

var icalDayIndex = map[string]int{
	"SU": 0, "MO": 1, "TU": 2, "WE": 3, "TH": 4, "FR": 5, "SA": 6,
}

// parseRRuleInto translates an RFC 5545 RRULE value into RawRule fields.
// WEEKLY with an even interval becomes the directory's biweekly frequency.
func parseRRuleInto(value string, raw *recurrence.RawRule, loc *time.Location) error {
	freq := ""
	interval := 1
	var monthDays []int

	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return fmt.Errorf("malformed RRULE part %q", part)
		}

		switch strings.ToUpper(key) {
		case "FREQ":
			freq = strings.ToUpper(val)
		case "INTERVAL":
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("bad INTERVAL %q", val)
			}
			interval = n
		case "BYDAY":
			for _, day := range strings.Split(val, ",") {
				idx, ok := icalDayIndex[strings.ToUpper(strings.TrimSpace(day))]
				if !ok {
					return fmt.Errorf("unsupported BYDAY value %q", day)
				}
				raw.DaysOfWeek = append(raw.DaysOfWeek, idx)
			}
		case "BYMONTHDAY":
			for _, day := range strings.Split(val, ",") {
				n, err := strconv.Atoi(strings.TrimSpace(day))
				if err != nil {
					return fmt.Errorf("bad BYMONTHDAY %q", day)
				}
				monthDays = append(monthDays, n)
			}
		case "COUNT":
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("bad COUNT %q", val)
			}
			raw.EndType = string(recurrence.EndAfterCount)
			raw.EndCount = n
		case "UNTIL":
			until, err := parseUntil(val, loc)
			if err != nil {
				return err
			}
			raw.EndType = string(recurrence.EndOnDate)
			raw.EndDate = until.In(loc).Format(recurrence.DateLayout)
		case "BYSETPOS", "WKST":
			// BYSETPOS=-1 over a month-day run is how exports spell the
			// month-length clamp; the max of BYMONTHDAY recovers the day.
		default:
			return fmt.Errorf("unsupported RRULE part %q", key)
		}
	}

	raw.Interval = interval
	switch freq {
	case "DAILY":
		raw.Frequency = string(recurrence.FreqDaily)
	case "WEEKLY":
		if interval%2 == 0 {
			raw.Frequency = string(recurrence.FreqBiweekly)
			raw.Interval = interval / 2
		} else {
			raw.Frequency = string(recurrence.FreqWeekly)
		}
	case "MONTHLY":
		raw.Frequency = string(recurrence.FreqMonthly)
		for _, d := range monthDays {
			if d > raw.DayOfMonth {
				raw.DayOfMonth = d
			}
		}
	case "YEARLY":
		raw.Frequency = string(recurrence.FreqYearly)
	case "":
		return fmt.Errorf("RRULE has no FREQ")
	default:
		return fmt.Errorf("unsupported FREQ %q", freq)
	}

	if raw.EndType == "" {
		raw.EndType = string(recurrence.EndNever)
	}
	return nil
}

func parseUntil(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse("20060102T150405Z", value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("20060102", value, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("bad UNTIL %q", value)
}

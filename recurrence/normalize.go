package recurrence

import (
	"fmt"
	"slices"
	"time"

	"github.com/samber/mo"
)

// Normalize validates a RawRule and produces its canonical form. It is pure:
// no clock reads, and the same input always yields the same result. All
// problems are collected into one ValidationErrors value rather than stopping
// at the first.
func Normalize(raw RawRule) mo.Result[Rule] {
	var errs ValidationErrors
	rule := Rule{Interval: raw.Interval}

	switch Frequency(raw.Frequency) {
	case FreqDaily, FreqWeekly, FreqBiweekly, FreqMonthly, FreqYearly:
		rule.Frequency = Frequency(raw.Frequency)
	case "":
		errs = append(errs, ValidationError{
			Field: "frequency", Kind: ErrMissingField,
			Message: "frequency is required",
		})
	default:
		errs = append(errs, ValidationError{
			Field: "frequency", Kind: ErrOutOfRange,
			Message: fmt.Sprintf("unknown frequency %q", raw.Frequency),
		})
	}

	if raw.Interval < 1 {
		errs = append(errs, ValidationError{
			Field: "interval", Kind: ErrOutOfRange,
			Message: "interval must be at least 1",
		})
	}

	switch rule.Frequency {
	case FreqWeekly, FreqBiweekly:
		rule.DaysOfWeek, errs = normalizeDays(raw.DaysOfWeek, errs)
	case FreqMonthly:
		switch {
		case raw.DayOfMonth == 0:
			errs = append(errs, ValidationError{
				Field: "day_of_month", Kind: ErrMissingField,
				Message: "day_of_month is required for monthly rules",
			})
		case raw.DayOfMonth < 1 || raw.DayOfMonth > 31:
			errs = append(errs, ValidationError{
				Field: "day_of_month", Kind: ErrOutOfRange,
				Message: "day_of_month must be between 1 and 31",
			})
		default:
			rule.DayOfMonth = raw.DayOfMonth
		}
	}

	rule.Hour, rule.Minute, errs = normalizeTime(raw.Time, errs)

	if raw.DurationMinutes < 0 {
		errs = append(errs, ValidationError{
			Field: "duration_minutes", Kind: ErrOutOfRange,
			Message: "duration_minutes must not be negative",
		})
	} else {
		rule.Duration = time.Duration(raw.DurationMinutes) * time.Minute
	}

	rule.Location = time.UTC
	if raw.Timezone != "" {
		loc, err := time.LoadLocation(raw.Timezone)
		if err != nil {
			errs = append(errs, ValidationError{
				Field: "timezone", Kind: ErrOutOfRange,
				Message: fmt.Sprintf("unknown timezone %q", raw.Timezone),
			})
		} else {
			rule.Location = loc
		}
	}

	rule, errs = normalizeEndPolicy(raw, rule, errs)

	if len(errs) > 0 {
		return mo.Err[Rule](errs)
	}
	return mo.Ok(rule)
}

func normalizeDays(days []int, errs ValidationErrors) ([]time.Weekday, ValidationErrors) {
	if len(days) == 0 {
		return nil, append(errs, ValidationError{
			Field: "days_of_week", Kind: ErrMissingField,
			Message: "days_of_week is required for weekly and biweekly rules",
		})
	}

	seen := make(map[int]bool, len(days))
	var out []time.Weekday
	for _, d := range days {
		if d < 0 || d > 6 {
			errs = append(errs, ValidationError{
				Field: "days_of_week", Kind: ErrOutOfRange,
				Message: fmt.Sprintf("weekday %d outside 0..6", d),
			})
			continue
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, time.Weekday(d))
	}
	slices.Sort(out)
	return out, errs
}

func normalizeTime(value string, errs ValidationErrors) (hour, minute int, _ ValidationErrors) {
	if value == "" {
		return 0, 0, append(errs, ValidationError{
			Field: "time", Kind: ErrMissingField,
			Message: "time is required",
		})
	}
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, append(errs, ValidationError{
			Field: "time", Kind: ErrOutOfRange,
			Message: fmt.Sprintf("time %q is not HH:MM", value),
		})
	}
	return t.Hour(), t.Minute(), errs
}

func normalizeEndPolicy(raw RawRule, rule Rule, errs ValidationErrors) (Rule, ValidationErrors) {
	switch EndType(raw.EndType) {
	case EndOnDate:
		rule.EndType = EndOnDate
		if raw.EndCount != 0 {
			errs = append(errs, ValidationError{
				Field: "end_count", Kind: ErrContradictoryEndPolicy,
				Message: "end_count must not be set when end_type is date",
			})
		}
		if raw.EndDate == "" {
			errs = append(errs, ValidationError{
				Field: "end_date", Kind: ErrMissingField,
				Message: "end_date is required when end_type is date",
			})
			break
		}
		d, err := time.ParseInLocation("2006-01-02", raw.EndDate, rule.Location)
		if err != nil {
			errs = append(errs, ValidationError{
				Field: "end_date", Kind: ErrOutOfRange,
				Message: fmt.Sprintf("end_date %q is not YYYY-MM-DD", raw.EndDate),
			})
			break
		}
		rule.EndDate = d
	case EndAfterCount:
		rule.EndType = EndAfterCount
		if raw.EndDate != "" {
			errs = append(errs, ValidationError{
				Field: "end_date", Kind: ErrContradictoryEndPolicy,
				Message: "end_date must not be set when end_type is count",
			})
		}
		switch {
		case raw.EndCount == 0:
			errs = append(errs, ValidationError{
				Field: "end_count", Kind: ErrMissingField,
				Message: "end_count is required when end_type is count",
			})
		case raw.EndCount < 0:
			errs = append(errs, ValidationError{
				Field: "end_count", Kind: ErrOutOfRange,
				Message: "end_count must be at least 1",
			})
		default:
			rule.EndCount = raw.EndCount
		}
	case EndNever:
		rule.EndType = EndNever
		if raw.EndDate != "" || raw.EndCount != 0 {
			errs = append(errs, ValidationError{
				Field: "end_type", Kind: ErrContradictoryEndPolicy,
				Message: "end_date and end_count must not be set when end_type is never",
			})
		}
	case "":
		errs = append(errs, ValidationError{
			Field: "end_type", Kind: ErrMissingField,
			Message: "end_type is required",
		})
	default:
		errs = append(errs, ValidationError{
			Field: "end_type", Kind: ErrOutOfRange,
			Message: fmt.Sprintf("unknown end_type %q", raw.EndType),
		})
	}
	return rule, errs
}

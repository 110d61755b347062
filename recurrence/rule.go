package recurrence

import (
	"time"
)

// Frequency is the base unit a rule repeats on.
type Frequency string

const (
	FreqDaily    Frequency = "daily"
	FreqWeekly   Frequency = "weekly"
	FreqBiweekly Frequency = "biweekly"
	FreqMonthly  Frequency = "monthly"
	FreqYearly   Frequency = "yearly"
)

// EndType selects the termination policy of a rule. Exactly one applies.
type EndType string

const (
	EndOnDate    EndType = "date"
	EndAfterCount EndType = "count"
	EndNever     EndType = "never"
)

// RawRule is the untrusted recurrence description as submitted by an
// organizer (typically decoded from a form or a JSON blob). Zero values mean
// "absent" for the optional fields. Pass it through Normalize before handing
// anything to the Engine.
type RawRule struct {
	Frequency string `json:"frequency"`
	Interval  int    `json:"interval"`

	// DaysOfWeek uses 0=Sunday .. 6=Saturday. Required for weekly/biweekly,
	// ignored for every other frequency.
	DaysOfWeek []int `json:"days_of_week,omitempty"`

	// DayOfMonth is required for monthly rules. Months shorter than the
	// requested day clamp to their last day.
	DayOfMonth int `json:"day_of_month,omitempty"`

	// Time is the wall-clock start of each occurrence, "HH:MM".
	Time string `json:"time"`

	// Timezone is the IANA zone name the series is declared in.
	// Empty means UTC.
	Timezone string `json:"timezone,omitempty"`

	DurationMinutes int `json:"duration_minutes"`

	EndType  string `json:"end_type"`
	EndDate  string `json:"end_date,omitempty"` // "2006-01-02"
	EndCount int    `json:"end_count,omitempty"`
}

// Rule is the canonical, validated form of a recurrence description.
// It is immutable once produced by Normalize; the Engine accepts nothing else.
type Rule struct {
	Frequency Frequency
	Interval  int

	// DaysOfWeek is sorted and deduplicated; empty unless Frequency is
	// weekly or biweekly.
	DaysOfWeek []time.Weekday

	// DayOfMonth is set only for monthly rules.
	DayOfMonth int

	Hour     int
	Minute   int
	Location *time.Location
	Duration time.Duration

	EndType EndType
	// EndDate is midnight of the last permitted occurrence date in Location;
	// zero unless EndType is EndOnDate.
	EndDate  time.Time
	EndCount int
}

// StartOn combines the rule's wall-clock time with the given anchor date,
// in the rule's timezone. The anchor is usually the series start date.
func (r Rule) StartOn(anchor time.Time) time.Time {
	y, m, d := anchor.In(r.Location).Date()
	return time.Date(y, m, d, r.Hour, r.Minute, 0, 0, r.Location)
}

// TimeOfDay renders the rule's start time back as "HH:MM".
func (r Rule) TimeOfDay() string {
	return time.Date(0, 1, 1, r.Hour, r.Minute, 0, 0, time.UTC).Format("15:04")
}

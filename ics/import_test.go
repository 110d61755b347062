package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townbeat/eventseries/recurrence"
	"github.com/townbeat/eventseries/series"
)

func decodeFirstEvent(t *testing.T, ics string) *ical.Component {
	t.Helper()
	cal, err := ical.NewDecoder(strings.NewReader(ics)).Decode()
	require.NoError(t, err)
	events := cal.Events()
	require.NotEmpty(t, events)
	return events[0].Component
}

const weeklyICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:quiz-night\r\n" +
	"DTSTAMP:20250101T000000Z\r\n" +
	"SUMMARY:Pub Quiz\r\n" +
	"LOCATION:The Anchor\r\n" +
	"DTSTART:20250107T190000Z\r\n" +
	"DTEND:20250107T210000Z\r\n" +
	"RRULE:FREQ=WEEKLY;BYDAY=TU;COUNT=6\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestImportEvent_Weekly(t *testing.T) {
	comp := decodeFirstEvent(t, weeklyICS)

	imported, err := ImportEvent(comp)
	require.NoError(t, err)

	assert.Equal(t, "quiz-night", imported.UID)
	assert.Equal(t, "Pub Quiz", imported.Title)
	assert.Equal(t, "The Anchor", imported.Venue)
	assert.Equal(t, "19:00", imported.Raw.Time)
	assert.Equal(t, 120, imported.Raw.DurationMinutes)
	assert.Equal(t, "weekly", imported.Raw.Frequency)
	assert.Equal(t, []int{2}, imported.Raw.DaysOfWeek)
	assert.Equal(t, "count", imported.Raw.EndType)
	assert.Equal(t, 6, imported.Raw.EndCount)

	// The translated rule must survive validation.
	result := recurrence.Normalize(imported.Raw)
	assert.True(t, result.IsOk(), "%v", result.Error())
}

func TestImportEvent_NoRRule(t *testing.T) {
	plain := strings.Replace(weeklyICS, "RRULE:FREQ=WEEKLY;BYDAY=TU;COUNT=6\r\n", "", 1)
	comp := decodeFirstEvent(t, plain)

	_, err := ImportEvent(comp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no RRULE")
}

func TestParseRRuleInto(t *testing.T) {
	tests := []struct {
		name  string
		rrule string
		check func(*testing.T, recurrence.RawRule)
	}{
		{
			name:  "even weekly interval becomes biweekly",
			rrule: "FREQ=WEEKLY;INTERVAL=2;BYDAY=TU,TH",
			check: func(t *testing.T, raw recurrence.RawRule) {
				assert.Equal(t, "biweekly", raw.Frequency)
				assert.Equal(t, 1, raw.Interval)
				assert.Equal(t, []int{2, 4}, raw.DaysOfWeek)
				assert.Equal(t, "never", raw.EndType)
			},
		},
		{
			name:  "odd weekly interval stays weekly",
			rrule: "FREQ=WEEKLY;INTERVAL=3;BYDAY=MO",
			check: func(t *testing.T, raw recurrence.RawRule) {
				assert.Equal(t, "weekly", raw.Frequency)
				assert.Equal(t, 3, raw.Interval)
			},
		},
		{
			name:  "clamped monthly recovers day 31",
			rrule: "FREQ=MONTHLY;BYMONTHDAY=28,29,30,31;BYSETPOS=-1",
			check: func(t *testing.T, raw recurrence.RawRule) {
				assert.Equal(t, "monthly", raw.Frequency)
				assert.Equal(t, 31, raw.DayOfMonth)
			},
		},
		{
			name:  "until becomes end date",
			rrule: "FREQ=DAILY;UNTIL=20250615T235959Z",
			check: func(t *testing.T, raw recurrence.RawRule) {
				assert.Equal(t, "date", raw.EndType)
				assert.Equal(t, "2025-06-15", raw.EndDate)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw recurrence.RawRule
			err := parseRRuleInto(tt.rrule, &raw, time.UTC)
			require.NoError(t, err)
			tt.check(t, raw)
		})
	}
}

func TestParseRRuleInto_Unsupported(t *testing.T) {
	var raw recurrence.RawRule
	err := parseRRuleInto("FREQ=HOURLY", &raw, time.UTC)
	require.Error(t, err)

	err = parseRRuleInto("FREQ=WEEKLY;BYHOUR=9", &raw, time.UTC)
	require.Error(t, err)
}

// An exported feed must be importable by this module itself, through the
// real encoder and decoder rather than in-memory structs.
func TestExportImportRoundTrip(t *testing.T) {
	rule := weeklyRule(t)
	sr := series.Series{
		ID:        "series-1",
		Title:     "Pub Quiz",
		Venue:     "The Anchor",
		StartDate: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSeries(&buf, sr, rule, nil))

	imported, err := ImportEvent(decodeFirstEvent(t, buf.String()))
	require.NoError(t, err)
	assert.Equal(t, "Pub Quiz", imported.Title)
	assert.Equal(t, "19:00", imported.Raw.Time)

	result := recurrence.Normalize(imported.Raw)
	require.True(t, result.IsOk(), "%v", result.Error())

	back := result.MustGet()
	assert.Equal(t, rule.Frequency, back.Frequency)
	assert.Equal(t, rule.DaysOfWeek, back.DaysOfWeek)
	assert.Equal(t, rule.EndType, back.EndType)
	assert.Equal(t, rule.EndCount, back.EndCount)
	assert.Equal(t, rule.Duration, back.Duration)
}

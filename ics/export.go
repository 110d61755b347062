// Package ics bridges series to the iCalendar format: organizers export a
// series as a feed their subscribers can follow, and bulk imports pull rules
// out of VEVENT components.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/townbeat/eventseries/recurrence"
	"github.com/townbeat/eventseries/series"
)

const productID = "-//townbeat//eventseries//EN"

// ExportSeries renders a series as a VCALENDAR: one master VEVENT carrying
// the recurrence rule, an EXDATE per cancelled instance, and one child VEVENT
// with RECURRENCE-ID per manual override.
func ExportSeries(sr series.Series, rule recurrence.Rule, instances []series.EventInstance) (*ical.Calendar, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	master := ical.NewEvent()
	master.Props.SetText(ical.PropUID, sr.ID)
	master.Props.SetText(ical.PropSummary, sr.Title)
	if sr.Description != "" {
		master.Props.SetText(ical.PropDescription, sr.Description)
	}
	if sr.Venue != "" {
		master.Props.SetText(ical.PropLocation, sr.Venue)
	}

	start := rule.StartOn(sr.StartDate)
	master.Props.SetDateTime(ical.PropDateTimeStart, start)
	master.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(rule.Duration))
	// DTSTAMP is mandatory for VEVENTs; deriving it from the series start
	// keeps exports reproducible.
	master.Props.SetDateTime(ical.PropDateTimeStamp, start)
	// RRULE is a RECUR value; SetText would escape the semicolons, so the
	// property is added raw.
	rruleProp := ical.NewProp(ical.PropRecurrenceRule)
	rruleProp.Value = RRuleString(rule)
	master.Props.Add(rruleProp)

	for _, inst := range instances {
		if inst.Status != series.StatusCancelled || inst.IsManualOverride {
			continue
		}
		exdate := ical.NewProp(ical.PropExceptionDates)
		exdate.SetDateTime(originalStart(rule, inst))
		master.Props.Add(exdate)
	}

	cal.Children = append(cal.Children, master.Component)

	for _, inst := range instances {
		if !inst.IsManualOverride {
			continue
		}
		override := ical.NewEvent()
		override.Props.SetText(ical.PropUID, sr.ID)
		override.Props.SetText(ical.PropSummary, sr.Title)
		override.Props.SetDateTime(ical.PropRecurrenceID, originalStart(rule, inst))
		override.Props.SetDateTime(ical.PropDateTimeStart, inst.Start)
		override.Props.SetDateTime(ical.PropDateTimeEnd, inst.End)
		override.Props.SetDateTime(ical.PropDateTimeStamp, start)
		cal.Children = append(cal.Children, override.Component)
	}

	return cal, nil
}

// WriteSeries encodes the series feed to w in iCalendar wire format.
func WriteSeries(w io.Writer, sr series.Series, rule recurrence.Rule, instances []series.EventInstance) error {
	cal, err := ExportSeries(sr, rule, instances)
	if err != nil {
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

// originalStart is the occurrence time the rule implied for the instance's
// date, which is what EXDATE and RECURRENCE-ID must reference even when the
// instance itself was moved.
func originalStart(rule recurrence.Rule, inst series.EventInstance) time.Time {
	d, err := time.ParseInLocation(recurrence.DateLayout, inst.InstanceDate, rule.Location)
	if err != nil {
		return inst.Start
	}
	return rule.StartOn(d)
}

// RRuleString renders a normalized rule as an RFC 5545 RRULE value
// (without the "RRULE:" prefix).
func RRuleString(rule recurrence.Rule) string {
	var parts []string

	interval := rule.Interval
	switch rule.Frequency {
	case recurrence.FreqDaily:
		parts = append(parts, "FREQ=DAILY")
	case recurrence.FreqWeekly:
		parts = append(parts, "FREQ=WEEKLY")
	case recurrence.FreqBiweekly:
		parts = append(parts, "FREQ=WEEKLY")
		interval *= 2
	case recurrence.FreqMonthly:
		parts = append(parts, "FREQ=MONTHLY")
	case recurrence.FreqYearly:
		parts = append(parts, "FREQ=YEARLY")
	}
	if interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", interval))
	}

	if len(rule.DaysOfWeek) > 0 {
		days := make([]string, len(rule.DaysOfWeek))
		for i, d := range rule.DaysOfWeek {
			days[i] = icalDayNames[int(d)]
		}
		parts = append(parts, "BYDAY="+strings.Join(days, ","))
	}

	if rule.DayOfMonth > 0 {
		if rule.DayOfMonth <= 28 {
			parts = append(parts, fmt.Sprintf("BYMONTHDAY=%d", rule.DayOfMonth))
		} else {
			days := make([]string, 0, rule.DayOfMonth-27)
			for d := 28; d <= rule.DayOfMonth; d++ {
				days = append(days, fmt.Sprintf("%d", d))
			}
			parts = append(parts, "BYMONTHDAY="+strings.Join(days, ","), "BYSETPOS=-1")
		}
	}

	switch rule.EndType {
	case recurrence.EndAfterCount:
		parts = append(parts, fmt.Sprintf("COUNT=%d", rule.EndCount))
	case recurrence.EndOnDate:
		y, m, d := rule.EndDate.Date()
		until := time.Date(y, m, d, 23, 59, 59, 0, rule.Location).UTC()
		parts = append(parts, "UNTIL="+until.Format("20060102T150405Z"))
	}

	return strings.Join(parts, ";")
}

var icalDayNames = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

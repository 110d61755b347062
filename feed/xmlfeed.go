// Package feed ingests bulk listings into the directory: XML event feeds
// published by partner venues and the venue CSV exports organizers upload.
package feed

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/townbeat/eventseries/recurrence"
)

// SeriesDraft is one entry of a partner feed, ready to be validated and
// handed to the planner. The RawRule still has to pass Normalize.
type SeriesDraft struct {
	Title       string
	Description string
	Venue       string
	StartDate   time.Time
	Raw         recurrence.RawRule
}

// ParseEventsFeed reads a partner XML feed. The expected shape is:
//
//	<events>
//	  <event>
//	    <title>Pub Quiz</title>
//	    <venue>The Anchor</venue>
//	    <start>2025-03-04</start>
//	    <recurrence frequency="weekly" interval="1" time="19:00"
//	                duration="120" end="count" count="6">
//	      <day>2</day>
//	    </recurrence>
//	  </event>
//	</events>
//
// Entries with structural problems fail the whole parse; rule-level problems
// surface later through Normalize so the review UI can show field errors.
func ParseEventsFeed(r io.Reader) ([]SeriesDraft, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}

	// etree tolerates non-XML garbage and just produces no root element, so
	// a nil root is a read failure too.
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("failed to read feed: no root element")
	}
	if root.Tag != "events" {
		return nil, fmt.Errorf("invalid root tag: %s", root.Tag)
	}

	var drafts []SeriesDraft
	for i, el := range root.SelectElements("event") {
		draft, err := parseEvent(el)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i+1, err)
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

func parseEvent(el *etree.Element) (SeriesDraft, error) {
	var draft SeriesDraft

	if title := el.SelectElement("title"); title != nil {
		draft.Title = strings.TrimSpace(title.Text())
	}
	if draft.Title == "" {
		return draft, fmt.Errorf("missing title")
	}
	if venue := el.SelectElement("venue"); venue != nil {
		draft.Venue = strings.TrimSpace(venue.Text())
	}
	if desc := el.SelectElement("description"); desc != nil {
		draft.Description = strings.TrimSpace(desc.Text())
	}

	start := el.SelectElement("start")
	if start == nil {
		return draft, fmt.Errorf("missing start date")
	}
	d, err := time.Parse(recurrence.DateLayout, strings.TrimSpace(start.Text()))
	if err != nil {
		return draft, fmt.Errorf("bad start date %q", start.Text())
	}
	draft.StartDate = d

	rec := el.SelectElement("recurrence")
	if rec == nil {
		return draft, fmt.Errorf("missing recurrence element")
	}
	draft.Raw, err = parseRecurrence(rec)
	if err != nil {
		return draft, err
	}
	return draft, nil
}

func parseRecurrence(el *etree.Element) (recurrence.RawRule, error) {
	raw := recurrence.RawRule{
		Frequency: el.SelectAttrValue("frequency", ""),
		Time:      el.SelectAttrValue("time", ""),
		Timezone:  el.SelectAttrValue("timezone", ""),
		EndType:   el.SelectAttrValue("end", string(recurrence.EndNever)),
		EndDate:   el.SelectAttrValue("until", ""),
		Interval:  1,
	}

	if v := el.SelectAttrValue("interval", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return raw, fmt.Errorf("bad interval %q", v)
		}
		raw.Interval = n
	}
	if v := el.SelectAttrValue("duration", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return raw, fmt.Errorf("bad duration %q", v)
		}
		raw.DurationMinutes = n
	}
	if v := el.SelectAttrValue("count", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return raw, fmt.Errorf("bad count %q", v)
		}
		raw.EndCount = n
	}
	if v := el.SelectAttrValue("monthday", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return raw, fmt.Errorf("bad monthday %q", v)
		}
		raw.DayOfMonth = n
	}

	for _, day := range el.SelectElements("day") {
		n, err := strconv.Atoi(strings.TrimSpace(day.Text()))
		if err != nil {
			return raw, fmt.Errorf("bad day %q", day.Text())
		}
		raw.DaysOfWeek = append(raw.DaysOfWeek, n)
	}

	return raw, nil
}

package recurrence

import (
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/teambition/rrule-go"
)

// Engine expands normalized rules into concrete occurrences. It is stateless
// apart from an optional result cache, so repeated expansion of the same
// (rule, anchor, window) triple is byte-identical.
type Engine struct {
	cache  *expansionCache
	config EngineConfig
}

// NewEngine creates an engine with DefaultEngineConfig.
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultEngineConfig)
}

// NewEngineWithConfig creates an engine with custom configuration.
func NewEngineWithConfig(config EngineConfig) *Engine {
	e := &Engine{config: config}
	if config.CacheEnabled {
		e.cache = newExpansionCache(config.Cache)
	}
	return e
}

// Close stops the cache maintenance goroutine, if any.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.close()
	}
}

// Expand materializes every occurrence the rule implies within the window,
// in ascending order. The anchor is the series start date; if it does not
// itself match the pattern, the first occurrence is the next matching date.
//
// Rules must come from Normalize. A rule that bypassed validation is a
// programming error and panics.
func (e *Engine) Expand(rule Rule, anchor time.Time, w Window) []Occurrence {
	mustGeneratable(rule, w)

	if e.cache != nil {
		if cached, ok := e.cache.get(rule, anchor, w); ok {
			return slices.Clone(cached)
		}
	}

	var out []Occurrence
	for occ := range e.Iterate(rule, anchor, w) {
		out = append(out, occ)
	}

	if e.cache != nil {
		e.cache.set(rule, anchor, w, slices.Clone(out))
	}
	return out
}

// Iterate lazily yields occurrences in ascending order. The sequence is
// restartable: ranging over it twice walks the rule from scratch both times.
func (e *Engine) Iterate(rule Rule, anchor time.Time, w Window) iter.Seq[Occurrence] {
	mustGeneratable(rule, w)
	return func(yield func(Occurrence) bool) {
		next := buildRRule(rule, anchor).Iterator()
		emitted := 0
		for {
			start, ok := next()
			if !ok {
				return
			}
			start = start.In(rule.Location)
			if w.Bounded() && start.After(w.End) {
				return
			}
			if start.Before(w.Start) {
				continue
			}
			if !yield(occurrenceAt(rule, start)) {
				return
			}
			emitted++
			if max := e.config.MaxOccurrences; max > 0 && emitted >= max {
				return
			}
		}
	}
}

func occurrenceAt(rule Rule, start time.Time) Occurrence {
	return Occurrence{
		Start:        start,
		End:          start.Add(rule.Duration),
		InstanceDate: start.Format(DateLayout),
	}
}

// rrule-go numbers weekdays from Monday; rules use 0=Sunday.
var rruleWeekdays = [7]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

func buildRRule(rule Rule, anchor time.Time) *rrule.RRule {
	opt := rrule.ROption{
		Dtstart:  rule.StartOn(anchor),
		Interval: rule.Interval,
	}

	switch rule.Frequency {
	case FreqDaily:
		opt.Freq = rrule.DAILY
	case FreqWeekly, FreqBiweekly:
		opt.Freq = rrule.WEEKLY
		if rule.Frequency == FreqBiweekly {
			opt.Interval = rule.Interval * 2
		}
		for _, d := range rule.DaysOfWeek {
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[int(d)])
		}
	case FreqMonthly:
		opt.Freq = rrule.MONTHLY
		if rule.DayOfMonth <= 28 {
			opt.Bymonthday = []int{rule.DayOfMonth}
		} else {
			// Short months clamp to their last day instead of skipping:
			// ask for every day from 28 up and keep the latest one.
			for d := 28; d <= rule.DayOfMonth; d++ {
				opt.Bymonthday = append(opt.Bymonthday, d)
			}
			opt.Bysetpos = []int{-1}
		}
	case FreqYearly:
		opt.Freq = rrule.YEARLY
	}

	switch rule.EndType {
	case EndAfterCount:
		opt.Count = rule.EndCount
	case EndOnDate:
		// End dates are inclusive: the occurrence on the end date itself
		// is still generated.
		y, m, d := rule.EndDate.Date()
		opt.Until = time.Date(y, m, d, 23, 59, 59, 0, rule.Location)
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		panic(fmt.Sprintf("recurrence: normalized rule rejected by rrule: %v", err))
	}
	return r
}

// mustGeneratable enforces the Normalize-before-generate contract. A rule
// that bypassed validation is an internal bug, not user input, so this
// panics instead of returning an error.
func mustGeneratable(rule Rule, w Window) {
	switch {
	case rule.Location == nil:
		panic("recurrence: rule has no timezone; use Normalize")
	case rule.Interval < 1:
		panic("recurrence: rule has invalid interval; use Normalize")
	}

	switch rule.Frequency {
	case FreqDaily, FreqYearly:
	case FreqWeekly, FreqBiweekly:
		if len(rule.DaysOfWeek) == 0 {
			panic("recurrence: weekly rule without days_of_week; use Normalize")
		}
	case FreqMonthly:
		if rule.DayOfMonth < 1 || rule.DayOfMonth > 31 {
			panic("recurrence: monthly rule without day_of_month; use Normalize")
		}
	default:
		panic(fmt.Sprintf("recurrence: unknown frequency %q; use Normalize", rule.Frequency))
	}

	switch rule.EndType {
	case EndOnDate, EndAfterCount:
	case EndNever:
		if !w.Bounded() {
			panic("recurrence: end_type=never requires a bounded window")
		}
	default:
		panic(fmt.Sprintf("recurrence: unknown end_type %q; use Normalize", rule.EndType))
	}
}

// Package planner drives the scheduling core against a storage backend: it
// normalizes the rule, expands occurrences, reconciles them with what is
// already materialized, applies the diff and renumbers the surviving
// sessions. It is the only layer in this module that performs I/O.
package planner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/townbeat/eventseries/recurrence"
	"github.com/townbeat/eventseries/series"
	"github.com/townbeat/eventseries/storage"
)

// Planner synchronizes a series' materialized instances with its recurrence
// rule.
type Planner struct {
	store  storage.Storage
	engine *recurrence.Engine
	logger *slog.Logger
}

// New creates a Planner on top of the given storage backend.
func New(store storage.Storage, opts ...Option) *Planner {
	p := &Planner{
		store:  store,
		engine: recurrence.NewEngine(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Option represents a configuration option for the Planner
type Option func(*Planner)

// WithLogger sets the logger for the planner
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithEngine replaces the default expansion engine.
func WithEngine(engine *recurrence.Engine) Option {
	return func(p *Planner) {
		if engine != nil {
			p.engine = engine
		}
	}
}

// Sync brings a series' instances in line with its rule within the window.
// New occurrences are created as drafts, instances the rule no longer implies
// are retired, manual overrides are left alone, and session numbers are
// recomputed. The returned diff describes what was applied.
func (p *Planner) Sync(ctx context.Context, seriesID string, raw recurrence.RawRule, w recurrence.Window) (series.Diff, error) {
	rule, err := recurrence.Normalize(raw).Get()
	if err != nil {
		return series.Diff{}, fmt.Errorf("invalid recurrence rule: %w", err)
	}

	sr, err := p.store.GetSeries(ctx, seriesID)
	if err != nil {
		return series.Diff{}, fmt.Errorf("failed to load series %s: %w", seriesID, err)
	}

	existing, err := p.store.ListInstances(ctx, seriesID)
	if err != nil {
		return series.Diff{}, fmt.Errorf("failed to list instances of series %s: %w", seriesID, err)
	}

	occurrences := p.engine.Expand(rule, sr.StartDate, w)
	diff := series.Reconcile(occurrences, existing)

	p.logger.Info("reconciled series",
		"series_id", seriesID,
		"occurrences", len(occurrences),
		"to_create", len(diff.ToCreate),
		"to_retire", len(diff.ToRetire),
		"unchanged", len(diff.Unchanged))

	if err := p.apply(ctx, sr, diff); err != nil {
		return series.Diff{}, err
	}
	if err := p.renumber(ctx, seriesID); err != nil {
		return series.Diff{}, err
	}
	return diff, nil
}

// Preview computes the diff Sync would apply, without writing anything.
func (p *Planner) Preview(ctx context.Context, seriesID string, raw recurrence.RawRule, w recurrence.Window) (series.Diff, error) {
	rule, err := recurrence.Normalize(raw).Get()
	if err != nil {
		return series.Diff{}, fmt.Errorf("invalid recurrence rule: %w", err)
	}

	sr, err := p.store.GetSeries(ctx, seriesID)
	if err != nil {
		return series.Diff{}, fmt.Errorf("failed to load series %s: %w", seriesID, err)
	}

	existing, err := p.store.ListInstances(ctx, seriesID)
	if err != nil {
		return series.Diff{}, fmt.Errorf("failed to list instances of series %s: %w", seriesID, err)
	}

	return series.Reconcile(p.engine.Expand(rule, sr.StartDate, w), existing), nil
}

func (p *Planner) apply(ctx context.Context, sr *series.Series, diff series.Diff) error {
	for _, occ := range diff.ToCreate {
		inst := &series.EventInstance{
			SeriesID:     sr.ID,
			InstanceDate: occ.InstanceDate,
			Start:        occ.Start,
			End:          occ.End,
			Status:       series.StatusDraft,
		}
		if err := p.store.CreateInstance(ctx, inst); err != nil {
			return fmt.Errorf("failed to create instance on %s: %w", occ.InstanceDate, err)
		}
		p.logger.Debug("created instance",
			"series_id", sr.ID,
			"instance_date", occ.InstanceDate)
	}

	for _, inst := range diff.ToRetire {
		if err := p.store.RetireInstance(ctx, inst.ID); err != nil {
			return fmt.Errorf("failed to retire instance %s: %w", inst.ID, err)
		}
		p.logger.Debug("retired instance",
			"series_id", sr.ID,
			"instance_id", inst.ID,
			"instance_date", inst.InstanceDate)
	}
	return nil
}

func (p *Planner) renumber(ctx context.Context, seriesID string) error {
	instances, err := p.store.ListInstances(ctx, seriesID)
	if err != nil {
		return fmt.Errorf("failed to reload instances of series %s: %w", seriesID, err)
	}

	renumbered := series.Renumber(instances)
	changed := renumbered[:0:0]
	byID := make(map[string]int, len(instances))
	for _, inst := range instances {
		byID[inst.ID] = inst.SeriesSequence
	}
	for _, inst := range renumbered {
		if byID[inst.ID] != inst.SeriesSequence {
			changed = append(changed, inst)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	if err := p.store.UpdateSequences(ctx, changed); err != nil {
		return fmt.Errorf("failed to update sequences of series %s: %w", seriesID, err)
	}
	p.logger.Debug("renumbered series", "series_id", seriesID, "updated", len(changed))
	return nil
}

// DefaultWindow builds the generation window a nightly re-sync job uses:
// from the series start (or now, whichever is earlier) to horizon ahead of
// now. The caller supplies now so the planner stays replayable.
func DefaultWindow(now time.Time, start time.Time, horizon time.Duration) recurrence.Window {
	if start.IsZero() {
		start = now
	}
	return recurrence.Window{Start: start, End: now.Add(horizon)}
}

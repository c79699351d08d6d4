// Package encounter runs the analysis pipeline over decoded combat logs:
// accumulate, evaluate, classify and assemble.
package encounter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/blackwell-systems/combatlens/internal/analyzer"
	"github.com/blackwell-systems/combatlens/internal/combatlog"
	"github.com/blackwell-systems/combatlens/internal/logging"
	"github.com/blackwell-systems/combatlens/internal/profile"
	"github.com/blackwell-systems/combatlens/internal/report"
	"github.com/blackwell-systems/combatlens/internal/suggest"
	"golang.org/x/sync/errgroup"
)

// Driver analyzes encounters against one profile. It holds no per-encounter
// state and may be used from several goroutines.
type Driver struct {
	profile *profile.Profile
	engine  *suggest.Engine
	logger  *slog.Logger
	limit   int
}

// Option configures a Driver.
type Option func(*Driver)

// WithRules replaces the default suggestion rules.
func WithRules(rules ...suggest.Rule) Option {
	return func(d *Driver) { d.engine = suggest.NewEngine(rules...) }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithConcurrency caps how many encounters AnalyzeAll runs at once.
func WithConcurrency(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.limit = n
		}
	}
}

// New validates p and returns a driver for it.
func New(p *profile.Profile, opts ...Option) (*Driver, error) {
	if p == nil {
		return nil, fmt.Errorf("encounter driver: nil profile")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	d := &Driver{
		profile: p,
		engine:  suggest.NewEngine(),
		logger:  logging.Discard(),
		limit:   runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Profile returns the profile the driver was built with.
func (d *Driver) Profile() *profile.Profile { return d.profile }

// Analyze runs one encounter through the pipeline. On an ordering violation
// it returns a partial report together with the wrapped error.
func (d *Driver) Analyze(log *combatlog.Log) (*report.Report, error) {
	enc := log.Encounter
	logger := d.logger.With("encounter", enc.ID, "profile", d.profile.Name)

	acc := analyzer.NewAccumulator(enc.Start, d.profile.ResourceModels()...)
	for _, e := range log.Events {
		if err := acc.Ingest(e); err != nil {
			logger.Warn("stopping analysis", "err", err)
			return report.Partial(enc, d.profile.Name, log.Skipped, err),
				fmt.Errorf("analyzing encounter %s: %w", enc.ID, err)
		}
	}
	if err := acc.End(enc.End); err != nil {
		logger.Warn("stopping analysis", "err", err)
		return report.Partial(enc, d.profile.Name, log.Skipped, err),
			fmt.Errorf("ending encounter %s: %w", enc.ID, err)
	}

	logger.Debug("encounter accumulated",
		"events", acc.Ingested(),
		"skipped", log.Skipped,
		"orphan_removals", acc.OrphanRemovals(),
		"duration_ms", acc.Context().DurationMs,
	)

	signals := d.Signals(acc, enc)
	for _, w := range d.profile.Windows {
		for _, ws := range analyzer.WindowBreakdown(acc, w.BuffID, w.AbilityID) {
			logger.Debug("window",
				"name", w.Name,
				"start", ws.Interval.Start,
				"end", ws.Interval.End,
				"casts", ws.Casts,
				"damage", ws.Damage,
			)
		}
	}
	issues := d.engine.Run(signals)
	logger.Debug("suggestions evaluated", "issues", len(issues))

	return report.Assemble(report.Input{
		Encounter:   enc,
		Profile:     d.profile,
		Accumulator: acc,
		Signals:     signals,
		Issues:      issues,
		Skipped:     log.Skipped,
	}), nil
}

// AnalyzeAll analyzes independent encounters concurrently. Reports come
// back in the order of logs. A failed encounter does not affect the others:
// its partial report is kept and its error is joined into the result. Only
// cancellation of ctx stops scheduling; encounters not started are left nil.
func (d *Driver) AnalyzeAll(ctx context.Context, logs []*combatlog.Log) ([]*report.Report, error) {
	reports := make([]*report.Report, len(logs))
	errs := make([]error, len(logs))

	var g errgroup.Group
	g.SetLimit(d.limit)
	for i, log := range logs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			reports[i], errs[i] = d.Analyze(log)
			return nil
		})
	}
	_ = g.Wait()

	return reports, errors.Join(append(errs, ctx.Err())...)
}

// Signals gathers everything the suggestion rules evaluate from an ended
// accumulator. Windows gated on a talent the combatant lacks are left out.
func (d *Driver) Signals(acc *analyzer.Accumulator, enc combatlog.Encounter) *suggest.Context {
	p := d.profile
	duration := acc.Context().DurationMs

	ctx := &suggest.Context{
		Efficiency: analyzer.EvaluateAll(p.Abilities, acc),
		Abilities:  p.AbilityIndex(),
		Offsets:    p.Offsets,
	}

	for _, u := range p.Uptimes {
		ctx.Uptimes = append(ctx.Uptimes, suggest.UptimeSignal{
			BuffID:     u.BuffID,
			Name:       u.Name,
			Uptime:     analyzer.Ratio(float64(acc.UptimeOf(u.BuffID)), float64(duration)),
			Target:     u.Target,
			Thresholds: u.Thresholds,
		})
	}

	for _, w := range p.Windows {
		if w.RequiresTalent != 0 && !enc.HasTalent(w.RequiresTalent) {
			continue
		}
		ctx.Windows = append(ctx.Windows, suggest.WindowSignal{
			Name:        w.Name,
			AbilityName: w.AbilityName,
			BuffName:    w.BuffName,
			Actual:      analyzer.CastsWhile(acc, w.BuffID, w.AbilityID),
			Possible:    len(acc.Intervals(w.BuffID)) * w.ExpectedPerWindow,
			Target:      w.Target,
			Thresholds:  w.Thresholds,
		})
	}

	for _, r := range p.Resources {
		ledger, ok := acc.Resource(r.Model.Type)
		if !ok {
			continue
		}
		ctx.Resources = append(ctx.Resources, suggest.ResourceSignal{
			Ledger:     ledger,
			Target:     r.OvercapTarget,
			Thresholds: r.Thresholds,
		})
	}

	return ctx
}

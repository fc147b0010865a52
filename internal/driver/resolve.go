package driver

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/quoteforge/quoteforge/internal/browser"
	"github.com/quoteforge/quoteforge/internal/domain"
)

// Resolve walks the target's strategy chain top-to-bottom, polling each
// strategy alone for up to perStrategy before moving on, and returns the
// first visible match. Exhausting the chain yields NotFound; the caller
// decides whether that is fatal.
func (d *Driver) Resolve(ctx context.Context, t Target, perStrategy time.Duration) (browser.Element, error) {
	if t.IsResolved() {
		return t.handle, nil
	}
	if perStrategy <= 0 {
		perStrategy = d.timeouts.Strategy
	}

	chain := t.Strategies()
	for _, strat := range chain {
		d.attempt(t, strat)

		deadline := time.Now().Add(perStrategy)
		for {
			if el := d.tryStrategy(strat); el != nil {
				d.hit(t, strat)
				return el, nil
			}
			if time.Now().After(deadline) {
				break
			}
			if err := sleep(ctx, d.timeouts.Poll); err != nil {
				return nil, domain.TimeoutError("resolve "+t.String(), perStrategy)
			}
		}
	}

	return nil, domain.NotFoundError(t.String(), len(chain))
}

// resolveOnce makes a single top-to-bottom pass with no per-strategy wait.
// Wait primitives poll this so visibility budgets stay with the caller.
func (d *Driver) resolveOnce(t Target) (browser.Element, bool) {
	if t.IsResolved() {
		return t.handle, true
	}
	for _, strat := range t.Strategies() {
		d.attempt(t, strat)
		if el := d.tryStrategy(strat); el != nil {
			d.hit(t, strat)
			return el, true
		}
	}
	return nil, false
}

// tryStrategy runs one strategy once and returns a visible match or nil
func (d *Driver) tryStrategy(strat Strategy) browser.Element {
	el, err := d.session.Find(strat.Selector)
	if err != nil {
		if !errors.Is(err, browser.ErrNoMatch) {
			d.logger.Debug("strategy lookup error",
				zap.String("strategy", strat.Name),
				zap.Error(err))
		}
		return nil
	}
	visible, err := el.IsVisible()
	if err != nil || !visible {
		return nil
	}
	return el
}

func (d *Driver) attempt(t Target, strat Strategy) {
	if d.metrics != nil {
		d.metrics.StrategyAttempts.WithLabelValues(strat.Name).Inc()
	}
	d.emit(Event{Kind: EventStrategyAttempt, Target: t.String(), Detail: strat.Name})
}

// hit logs which strategy won, for diagnosability of fallback behaviour
func (d *Driver) hit(t Target, strat Strategy) {
	if d.metrics != nil {
		d.metrics.StrategyHits.WithLabelValues(strat.Name).Inc()
	}
	d.emit(Event{Kind: EventStrategyHit, Target: t.String(), Detail: strat.Name})
	d.logger.Debug("target resolved",
		zap.String("target", t.String()),
		zap.String("strategy", strat.Name))
}

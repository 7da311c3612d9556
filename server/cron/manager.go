package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// CronTriggerManager runs several triggers parsed from one spec.
type CronTriggerManager struct {
	triggers []*CronTrigger
	specs    []TriggerSpec
	logger   *slog.Logger
}

// NewCronTriggerManager creates a trigger for each entry of spec. See
// ParseTriggerSpecs for the format.
func NewCronTriggerManager(spec string, jobs map[string]Job, logger *slog.Logger) (*CronTriggerManager, error) {
	specs, err := ParseTriggerSpecs(spec, jobs)
	if err != nil {
		return nil, err
	}

	triggers := make([]*CronTrigger, 0, len(specs))
	for _, ts := range specs {
		trigger, err := NewCronTrigger(ts.CronSpec, sequence(ts.Jobs, jobs), logger)
		if err != nil {
			return nil, fmt.Errorf("creating trigger for '%s:%s': %w", strings.Join(ts.Jobs, ","), ts.CronSpec, err)
		}
		triggers = append(triggers, trigger)
		logger.Info("trigger registered",
			"jobs", ts.Jobs,
			"schedule", ts.CronSpec,
			"next_run", trigger.NextRun(),
		)
	}

	return &CronTriggerManager{
		triggers: triggers,
		specs:    specs,
		logger:   logger,
	}, nil
}

// sequence runs the named jobs in order. A failing job doesn't stop the
// ones after it.
func sequence(names []string, jobs map[string]Job) Job {
	return func(ctx context.Context) error {
		var errs []error
		for _, name := range names {
			if err := jobs[name](ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
		}
		return errors.Join(errs...)
	}
}

// Start launches every trigger.
func (m *CronTriggerManager) Start(ctx context.Context) {
	for _, trigger := range m.triggers {
		trigger.Start(ctx)
	}
}

// Specs returns the parsed triggers.
func (m *CronTriggerManager) Specs() []TriggerSpec {
	return m.specs
}

// NextRun returns the earliest next run across all triggers, or the zero
// time without triggers.
func (m *CronTriggerManager) NextRun() time.Time {
	var earliest time.Time
	for _, trigger := range m.triggers {
		if next := trigger.NextRun(); earliest.IsZero() || next.Before(earliest) {
			earliest = next
		}
	}
	return earliest
}

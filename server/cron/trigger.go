// Package cron runs simulation jobs, such as taking a snapshot, on cron
// schedules.
//
//	trigger, err := cron.NewCronTrigger("*/5 * * * *", takeSnapshot, logger)
//	if err != nil {
//	    return err
//	}
//	trigger.Start(ctx) // returns immediately, stops when ctx is done
package cron

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrInvalidCronSpec is returned when the cron specification cannot be parsed.
var ErrInvalidCronSpec = errors.New("invalid cron spec")

// Job is work triggered by a schedule.
type Job func(ctx context.Context) error

// scheduleParser accepts five-field specs and descriptors such as @hourly.
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func parseSchedule(spec string) (cron.Schedule, error) {
	schedule, err := scheduleParser.Parse(spec)
	if err != nil {
		return nil, errors.Join(ErrInvalidCronSpec, err)
	}
	return schedule, nil
}

// CronTrigger runs a Job according to a cron schedule.
type CronTrigger struct {
	spec     string
	schedule cron.Schedule
	job      Job
	logger   *slog.Logger
}

// NewCronTrigger returns ErrInvalidCronSpec if spec cannot be parsed.
func NewCronTrigger(spec string, job Job, logger *slog.Logger) (*CronTrigger, error) {
	schedule, err := parseSchedule(spec)
	if err != nil {
		return nil, err
	}
	return &CronTrigger{
		spec:     spec,
		schedule: schedule,
		job:      job,
		logger:   logger.With("component", "cron", "schedule", spec),
	}, nil
}

// Start runs the schedule in a goroutine until ctx is cancelled.
func (ct *CronTrigger) Start(ctx context.Context) {
	go ct.loop(ctx)
}

// NextRun returns the next scheduled time from now.
func (ct *CronTrigger) NextRun() time.Time {
	return ct.schedule.Next(time.Now())
}

func (ct *CronTrigger) loop(ctx context.Context) {
	for {
		next := ct.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		ct.logger.Debug("waiting for next scheduled run", "next_run", next)

		select {
		case <-ctx.Done():
			timer.Stop()
			ct.logger.Info("cron trigger shutting down")
			return
		case <-timer.C:
			ct.fire(ctx)
		}
	}
}

func (ct *CronTrigger) fire(ctx context.Context) {
	if err := ct.job(ctx); err != nil {
		ct.logger.Warn("scheduled job failed", "error", err)
		return
	}
	ct.logger.Debug("scheduled job completed")
}

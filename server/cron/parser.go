package cron

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

const (
	triggerSeparator = ";"
	jobSeparator     = ":"
	jobListSeparator = ","
)

// TriggerSpec is one schedule and the jobs it runs, in order.
type TriggerSpec struct {
	Jobs     []string
	CronSpec string
}

// ParseTriggerSpecs parses "job1,job2:cron;job3:cron2". Every job must be
// a key of available, and may appear only once per trigger.
//
//	"snapshot:*/5 * * * *;step:@every 1s"
func ParseTriggerSpecs(spec string, available map[string]Job) ([]TriggerSpec, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, errors.New("cron spec cannot be empty")
	}

	var specs []TriggerSpec
	for _, part := range strings.Split(spec, triggerSeparator) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ts, err := parseSingleTrigger(part, available)
		if err != nil {
			return nil, err
		}
		specs = append(specs, ts)
	}
	if len(specs) == 0 {
		return nil, errors.New("no valid triggers found in cron spec")
	}
	return specs, nil
}

func parseSingleTrigger(trigger string, available map[string]Job) (TriggerSpec, error) {
	jobsStr, cronSpec, ok := strings.Cut(trigger, jobSeparator)
	if !ok {
		return TriggerSpec{}, fmt.Errorf("invalid trigger spec: expected format 'jobs:cron', got '%s'", trigger)
	}
	jobsStr = strings.TrimSpace(jobsStr)
	cronSpec = strings.TrimSpace(cronSpec)
	if jobsStr == "" {
		return TriggerSpec{}, fmt.Errorf("invalid trigger spec: missing jobs in '%s'", trigger)
	}
	if cronSpec == "" {
		return TriggerSpec{}, fmt.Errorf("invalid trigger spec: missing cron schedule in '%s'", trigger)
	}

	var jobs []string
	for _, name := range strings.Split(jobsStr, jobListSeparator) {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if slices.Contains(jobs, name) {
			return TriggerSpec{}, fmt.Errorf("invalid trigger spec: duplicate job '%s' in '%s'", name, trigger)
		}
		if _, ok := available[name]; !ok {
			return TriggerSpec{}, fmt.Errorf("invalid trigger spec: unknown job '%s' in '%s' (available: %s)",
				name, trigger, strings.Join(slices.Sorted(maps.Keys(available)), ", "))
		}
		jobs = append(jobs, name)
	}
	if len(jobs) == 0 {
		return TriggerSpec{}, fmt.Errorf("invalid trigger spec: no valid jobs in '%s'", trigger)
	}

	if _, err := parseSchedule(cronSpec); err != nil {
		return TriggerSpec{}, fmt.Errorf("invalid trigger spec: invalid cron expression in '%s': %w", trigger, err)
	}
	return TriggerSpec{Jobs: jobs, CronSpec: cronSpec}, nil
}

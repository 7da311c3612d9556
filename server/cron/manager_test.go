package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCronTriggerManager(t *testing.T) {
	m, err := NewCronTriggerManager("snapshot:0 2 * * *;step,stop:0 3 * * *", testJobs, discard)
	require.NoError(t, err)
	assert.Len(t, m.triggers, 2)
	assert.Len(t, m.Specs(), 2)

	next := m.NextRun()
	assert.True(t, next.After(time.Now()))
	assert.Equal(t, 0, next.Minute())
}

func TestNewCronTriggerManagerInvalid(t *testing.T) {
	for _, spec := range []string{"", "snapshot", "snapshot:invalid", "unknown:0 2 * * *", "step,step:0 2 * * *"} {
		t.Run(spec, func(t *testing.T) {
			m, err := NewCronTriggerManager(spec, testJobs, discard)
			require.Error(t, err)
			assert.Nil(t, m)
		})
	}
}

func TestCronTriggerManagerNextRunEmpty(t *testing.T) {
	m := &CronTriggerManager{}
	assert.True(t, m.NextRun().IsZero())
}

func TestSequenceRunsEveryJob(t *testing.T) {
	var order []string
	jobs := map[string]Job{
		"a": func(context.Context) error { order = append(order, "a"); return errors.New("a failed") },
		"b": func(context.Context) error { order = append(order, "b"); return nil },
	}

	err := sequence([]string{"a", "b"}, jobs)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a: a failed")
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestCronTriggerManagerStart(t *testing.T) {
	job := &countingJob{}
	m, err := NewCronTriggerManager("snapshot:0 0 1 1 *", map[string]Job{"snapshot": job.Run}, discard)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	cancel()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), job.runs.Load())
}

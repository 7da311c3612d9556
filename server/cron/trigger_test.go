package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// countingJob counts its runs and fails with err.
type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestNewCronTrigger(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{name: "daily at 2am", spec: "0 2 * * *"},
		{name: "every hour", spec: "0 * * * *"},
		{name: "descriptor", spec: "@hourly"},
		{name: "every", spec: "@every 30s"},
		{name: "empty", spec: "", wantErr: true},
		{name: "wrong format", spec: "not a cron spec", wantErr: true},
		{name: "too few fields", spec: "0 2 *", wantErr: true},
		{name: "invalid value", spec: "60 2 * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &countingJob{}
			trigger, err := NewCronTrigger(tt.spec, job.Run, discard)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidCronSpec)
				assert.Nil(t, trigger)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.spec, trigger.spec)
		})
	}
}

func TestCronTriggerNextRun(t *testing.T) {
	job := &countingJob{}
	trigger, err := NewCronTrigger("0 2 * * *", job.Run, discard)
	require.NoError(t, err)

	next := trigger.NextRun()
	assert.True(t, next.After(time.Now()))
	assert.Equal(t, 2, next.Hour())
	assert.Equal(t, 0, next.Minute())
}

func TestCronTriggerFire(t *testing.T) {
	job := &countingJob{err: errors.New("disk full")}
	trigger, err := NewCronTrigger("* * * * *", job.Run, discard)
	require.NoError(t, err)

	trigger.fire(context.Background())
	trigger.fire(context.Background())
	assert.Equal(t, int32(2), job.runs.Load(), "errors don't stop the trigger")
}

func TestCronTriggerCancellationStopsLoop(t *testing.T) {
	job := &countingJob{}
	trigger, err := NewCronTrigger("0 0 1 1 *", job.Run, discard)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	trigger.Start(ctx)
	time.Sleep(10 * time.Millisecond)
	cancel()
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, int32(0), job.runs.Load())
}

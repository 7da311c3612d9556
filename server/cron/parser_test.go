package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context) error { return nil }

var testJobs = map[string]Job{
	"snapshot": noop,
	"step":     noop,
	"stop":     noop,
}

func TestParseTriggerSpecs(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want []TriggerSpec
	}{
		{
			name: "single",
			spec: "snapshot:0 2 * * *",
			want: []TriggerSpec{{Jobs: []string{"snapshot"}, CronSpec: "0 2 * * *"}},
		},
		{
			name: "several jobs",
			spec: "stop,snapshot:0 2 * * *",
			want: []TriggerSpec{{Jobs: []string{"stop", "snapshot"}, CronSpec: "0 2 * * *"}},
		},
		{
			name: "several triggers with whitespace",
			spec: "  snapshot , stop : 0 2 * * * ; step : @every 1s ;",
			want: []TriggerSpec{
				{Jobs: []string{"snapshot", "stop"}, CronSpec: "0 2 * * *"},
				{Jobs: []string{"step"}, CronSpec: "@every 1s"},
			},
		},
		{
			name: "empty job names skipped",
			spec: "snapshot,,:*/5 * * * *",
			want: []TriggerSpec{{Jobs: []string{"snapshot"}, CronSpec: "*/5 * * * *"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs, err := ParseTriggerSpecs(tt.spec, testJobs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, specs)
		})
	}
}

func TestParseTriggerSpecsErrors(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr string
	}{
		{"empty", "   ", "cannot be empty"},
		{"only separators", ";;", "no valid triggers"},
		{"missing colon", "snapshot", "expected format"},
		{"missing jobs", ":0 2 * * *", "missing jobs"},
		{"missing schedule", "snapshot:", "missing cron schedule"},
		{"unknown job", "backup:0 2 * * *", "unknown job 'backup'"},
		{"duplicate job", "step,step:0 2 * * *", "duplicate job"},
		{"no jobs", ",:0 2 * * *", "no valid jobs"},
		{"bad cron", "step:61 * * * *", "invalid cron expression"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTriggerSpecs(tt.spec, testJobs)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseTriggerSpecsListsAvailableJobs(t *testing.T) {
	_, err := ParseTriggerSpecs("nope:* * * * *", testJobs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: snapshot, step, stop")
}

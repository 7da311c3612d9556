package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomis52/turnact/activity"
	"github.com/nomis52/turnact/server/runner"
	"github.com/nomis52/turnact/server/types"
	"github.com/nomis52/turnact/snapshot"
)

type mockStatusProvider struct {
	next      *time.Time
	latest    snapshot.Summary
	latestErr error
}

func (m *mockStatusProvider) Status() runner.RunStatus {
	return runner.RunStatus{State: runner.RunStateRunning, Turns: 12, LastTurn: 40}
}

func (m *mockStatusProvider) NextSnapshot() *time.Time { return m.next }
func (m *mockStatusProvider) Turn() int64            { return 40 }
func (m *mockStatusProvider) ActorCount() int        { return 2 }

func (m *mockStatusProvider) Progress() map[string]activity.Status {
	return map[string]activity.Status{"a1": {Kind: "ACT_WAIT", Message: "waiting…"}}
}

func (m *mockStatusProvider) Properties() types.ServerProperties {
	return types.ServerProperties{Hostname: "sim-1", StartedAt: time.Now().Add(-time.Hour)}
}

func (m *mockStatusProvider) LatestSnapshot() (snapshot.Summary, error) {
	return m.latest, m.latestErr
}

func TestAPIStatusHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := time.Date(2026, 10, 16, 3, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		provider      *mockStatusProvider
		wantScheduled bool
		wantLatest    bool
	}{
		{
			name:          "scheduled with snapshot",
			provider:      &mockStatusProvider{next: &next, latest: snapshot.Summary{ID: "abc", Turn: 39}},
			wantScheduled: true,
			wantLatest:    true,
		},
		{
			name:     "no schedule no snapshots",
			provider: &mockStatusProvider{latestErr: snapshot.ErrNotFound},
		},
		{
			name:     "store error",
			provider: &mockStatusProvider{latestErr: errors.New("database is locked")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, NewAPIStatusHandler(logger, tt.provider), http.MethodGet, "/api/status", nil)
			require.Equal(t, http.StatusOK, rec.Code)

			var resp APIStatusResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, "sim-1", resp.Server.Hostname)
			assert.NotEmpty(t, resp.Uptime)
			assert.Equal(t, int64(40), resp.Turn)
			assert.Equal(t, 2, resp.Actors)
			assert.Equal(t, int64(12), resp.Run.Turns)
			assert.Equal(t, "waiting…", resp.Progress["a1"].Message)
			assert.Equal(t, tt.wantScheduled, resp.NextSnapshot.Scheduled)
			if tt.wantLatest {
				require.NotNil(t, resp.LatestSnapshot)
				assert.Equal(t, "abc", resp.LatestSnapshot.ID)
			} else {
				assert.Nil(t, resp.LatestSnapshot)
			}
		})
	}
}

package iometrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gnames/gncat/internal/iometrics"
	"github.com/gnames/gncat/pkg/sector"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const finishedMetric = `
# HELP gncat_syncs_finished_total Sector syncs finished, by final state.
# TYPE gncat_syncs_finished_total counter
gncat_syncs_finished_total{sector="1",state="finished"} 1
gncat_syncs_finished_total{sector="2",state="failed"} 1
`

func TestObserver(t *testing.T) {
	assert := assert.New(t)
	obs := iometrics.New()

	obs.QueueSize(3)
	obs.SyncStarted(1)
	obs.SyncStarted(2)
	obs.SyncFinished(1, sector.Finished, 2*time.Second)
	obs.SyncFinished(2, sector.Failed, time.Second)
	obs.QueueSize(1)

	err := testutil.GatherAndCompare(obs.Registry(),
		strings.NewReader(finishedMetric), "gncat_syncs_finished_total")
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(obs.Registry(),
		"gncat_syncs_running", "gncat_syncs_queued", "gncat_sync_duration_seconds")
	require.NoError(t, err)
	assert.Equal(4, n)

	mfs, err := obs.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		switch mf.GetName() {
		case "gncat_syncs_running":
			assert.Equal(0.0, mf.GetMetric()[0].GetGauge().GetValue())
		case "gncat_syncs_queued":
			assert.Equal(1.0, mf.GetMetric()[0].GetGauge().GetValue())
		}
	}
}

func TestHandler(t *testing.T) {
	obs := iometrics.New()
	obs.SyncStarted(7)

	srv := httptest.NewServer(obs.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `gncat_syncs_started_total{sector="7"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestStatusHandler(t *testing.T) {
	status := func() any {
		return map[string][]int{"running": {7}}
	}
	srv := httptest.NewServer(iometrics.StatusHandler(status))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"running"`)
}

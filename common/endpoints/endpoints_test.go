package endpoints_test

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/twitter/speculator/common/endpoints"
	"github.com/twitter/speculator/common/stats"
	"github.com/twitter/speculator/speculator/domain"
	"github.com/twitter/speculator/speculator/engine"
)

type fakeSpeculator struct {
	scans   int32
	entries []engine.LedgerEntry
}

func (f *fakeSpeculator) ScanNow()                     { atomic.AddInt32(&f.scans, 1) }
func (f *fakeSpeculator) Ledger() []engine.LedgerEntry { return f.entries }

func setup() (*httptest.Server, *fakeSpeculator, stats.StatsRegistry) {
	reg := stats.NewFinagleStatsRegistry()
	stat := stats.NewCustomStatsReceiver(func() stats.StatsRegistry { return reg })
	spec := &fakeSpeculator{entries: []engine.LedgerEntry{
		{Task: domain.TaskID{Job: "j", Type: domain.MapTask, Index: 3}, Reason: domain.SlowMapPath},
	}}
	server := httptest.NewServer(endpoints.NewAdminServer("", stat, spec).Handler())
	return server, spec, reg
}

func get(t *testing.T, url string) (int, string) {
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := ioutil.ReadAll(resp.Body)
	return resp.StatusCode, string(data)
}

func Test_Health(t *testing.T) {
	server, _, _ := setup()
	defer server.Close()

	code, body := get(t, server.URL+"/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)

	code, _ = get(t, server.URL+"/")
	assert.Equal(t, 501, code)
}

func Test_Scan(t *testing.T) {
	server, spec, reg := setup()
	defer server.Close()

	resp, err := http.Post(server.URL+"/admin/scan", "text/plain", nil)
	if !assert.NoError(t, err) {
		return
	}
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&spec.scans))
	stats.VerifyStats("scan", reg, t, map[string]stats.Rule{
		stats.SpeculatorAdminScanCounter: {Checker: stats.Int64EqTest, Value: 1},
	})

	// Scans are only accepted as POST.
	code, _ := get(t, server.URL+"/admin/scan")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&spec.scans))
}

func Test_Ledger(t *testing.T) {
	server, _, _ := setup()
	defer server.Close()

	code, body := get(t, server.URL+"/admin/ledger")
	assert.Equal(t, http.StatusOK, code)
	var entries []map[string]interface{}
	assert.NoError(t, json.Unmarshal([]byte(body), &entries))
	assert.JSONEq(t, `[{"task": {"job": "j", "type": "map", "index": 3}, "reason": "slow_map_path"}]`, body)
}

func Test_Metrics(t *testing.T) {
	server, _, reg := setup()
	defer server.Close()

	reg.GetOrRegister(stats.SpeculatorScanCounter, stats.NewCounter).(stats.Counter).Inc(4)
	code, body := get(t, server.URL+"/admin/metrics.json")
	assert.Equal(t, http.StatusOK, code)
	var rendered map[string]interface{}
	assert.NoError(t, json.Unmarshal([]byte(body), &rendered))
	assert.EqualValues(t, 4, rendered[stats.SpeculatorScanCounter])

	get(t, server.URL+"/health")
	code, body = get(t, server.URL+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, strings.Contains(body, "speculator_ledger_size 1"), body)
	assert.True(t, strings.Contains(body, `speculator_admin_requests_total{route="health"} 1`), body)
}

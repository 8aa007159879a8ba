package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/liveresults/liveresults/internal/api"
	"github.com/liveresults/liveresults/internal/cycle"
	"github.com/liveresults/liveresults/internal/diff"
	"github.com/liveresults/liveresults/internal/hub"
	"github.com/liveresults/liveresults/internal/results"
	"github.com/liveresults/liveresults/internal/store"
)

// --- test helpers -----------------------------------------------------------

type fakeHub struct {
	count int
	stats hub.Stats
}

func (f fakeHub) Count() int       { return f.count }
func (f fakeHub) Stats() hub.Stats { return f.stats }

type fakeCycle struct {
	stats cycle.Stats
	opts  diff.Options
}

func (f fakeCycle) Stats() cycle.Stats    { return f.stats }
func (f fakeCycle) Options() diff.Options { return f.opts }

func sampleState() *results.State {
	b := results.NewBuilder("Sprint Cup")
	b.AddDistance(results.DistanceMeta{ID: "d1", Name: "500 meter", HeatGroups: []results.HeatGroup{}},
		[]results.CompetitorEntry{
			{ID: "a", DistanceID: "d1", Position: 1, TotalTime: "00:00:40.000"},
			{ID: "b", DistanceID: "d1", Position: 2},
		})
	return b.Build()
}

func newHandler(st *store.Store) http.Handler {
	return api.New(api.Deps{
		Store: st,
		Hub:   fakeHub{count: 3, stats: hub.Stats{Broadcasts: 10, Deliveries: 28, Evictions: 2}},
		Cycle: fakeCycle{
			stats: cycle.Stats{Cycles: 7, Published: 2, Unchanged: 4, FetchErrors: 1, Messages: 9},
			opts:  diff.DefaultOptions(),
		},
		Status: func() results.StatusInfo {
			return results.StatusInfo{DataSourceURL: "http://timing/api/data", DataSourceInterval: 1}
		},
	})
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON: %v (body: %s)", err, rr.Body.String())
	}
}

// --- /api/v1/status ---------------------------------------------------------

func TestStatus_Empty(t *testing.T) {
	rr := do(t, newHandler(store.New()), http.MethodGet, "/api/v1/status")
	if rr.Code != http.StatusOK {
		t.Fatalf("status code: got %d, want 200", rr.Code)
	}
	var resp api.StatusResponse
	decode(t, rr, &resp)

	if resp.HasState {
		t.Error("has_state: want false")
	}
	if resp.DataSourceURL != "http://timing/api/data" {
		t.Errorf("data_source_url: got %q", resp.DataSourceURL)
	}
	if resp.Subscribers != 3 {
		t.Errorf("subscribers: got %d, want 3", resp.Subscribers)
	}
	if !resp.SuppressUntimedRepeats {
		t.Error("suppress_untimed_repeats: want true")
	}
	if resp.Cycles.Total != 7 || resp.Cycles.FetchErrors != 1 {
		t.Errorf("cycles: got %+v", resp.Cycles)
	}
}

func TestStatus_WithState(t *testing.T) {
	st := store.New()
	st.Swap(sampleState())

	var resp api.StatusResponse
	decode(t, do(t, newHandler(st), http.MethodGet, "/api/v1/status"), &resp)

	if !resp.HasState {
		t.Fatal("has_state: want true")
	}
	if resp.EventName != "Sprint Cup" {
		t.Errorf("event_name: got %q", resp.EventName)
	}
	if resp.Distances != 1 || resp.Competitors != 2 {
		t.Errorf("counts: got %d distances, %d competitors", resp.Distances, resp.Competitors)
	}
	if resp.PublishedAt == "" {
		t.Error("published_at: want non-empty")
	}
}

// --- /api/v1/state ----------------------------------------------------------

func TestState_NotFoundWhenEmpty(t *testing.T) {
	rr := do(t, newHandler(store.New()), http.MethodGet, "/api/v1/state")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status code: got %d, want 404", rr.Code)
	}
}

func TestState_ReturnsPublishedState(t *testing.T) {
	st := store.New()
	st.Swap(sampleState())

	rr := do(t, newHandler(st), http.MethodGet, "/api/v1/state")
	if rr.Code != http.StatusOK {
		t.Fatalf("status code: got %d, want 200", rr.Code)
	}
	var body struct {
		Name        string           `json:"name"`
		Distances   []map[string]any `json:"distances"`
		Competitors []map[string]any `json:"competitors"`
	}
	decode(t, rr, &body)
	if body.Name != "Sprint Cup" {
		t.Errorf("name: got %q", body.Name)
	}
	if len(body.Distances) != 1 || len(body.Competitors) != 2 {
		t.Errorf("body: got %d distances, %d competitors", len(body.Distances), len(body.Competitors))
	}
}

// --- /api/v1/reset ----------------------------------------------------------

func TestReset_ClearsState(t *testing.T) {
	st := store.New()
	st.Swap(sampleState())
	h := newHandler(st)

	rr := do(t, h, http.MethodPost, "/api/v1/reset")
	if rr.Code != http.StatusOK {
		t.Fatalf("status code: got %d, want 200", rr.Code)
	}
	if st.Load() != nil {
		t.Error("store: want empty after reset")
	}
	if rr := do(t, h, http.MethodGet, "/api/v1/state"); rr.Code != http.StatusNotFound {
		t.Errorf("state after reset: got %d, want 404", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newHandler(store.New())
	tests := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/v1/reset"},
		{http.MethodPost, "/api/v1/status"},
		{http.MethodDelete, "/api/v1/state"},
		{http.MethodPost, "/metrics"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			if rr := do(t, h, tt.method, tt.path); rr.Code != http.StatusMethodNotAllowed {
				t.Errorf("got %d, want 405", rr.Code)
			}
		})
	}
}

// --- /metrics ---------------------------------------------------------------

func TestMetrics_Exposition(t *testing.T) {
	st := store.New()
	st.Swap(sampleState())

	rr := do(t, newHandler(st), http.MethodGet, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("status code: got %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type: got %q", ct)
	}

	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(rr.Body)
	if err != nil {
		t.Fatalf("parse exposition: %v", err)
	}

	want := map[string]float64{
		"liveresults_cycles_total":             7,
		"liveresults_cycles_published_total":   2,
		"liveresults_fetch_errors_total":       1,
		"liveresults_messages_published_total": 9,
		"liveresults_evictions_total":          2,
		"liveresults_subscribers":              3,
		"liveresults_state_competitors":        2,
		"liveresults_state_distances":          1,
	}
	for name, v := range want {
		mf, ok := mfs[name]
		if !ok {
			t.Errorf("missing family %s", name)
			continue
		}
		if got := value(mf); got != v {
			t.Errorf("%s: got %v, want %v", name, got, v)
		}
	}
	if mfs["liveresults_cycles_total"].GetType() != dto.MetricType_COUNTER {
		t.Error("cycles_total: want counter")
	}
	if mfs["liveresults_subscribers"].GetType() != dto.MetricType_GAUGE {
		t.Error("subscribers: want gauge")
	}
	if value(mfs["liveresults_last_publish_timestamp_seconds"]) <= 0 {
		t.Error("last_publish_timestamp_seconds: want positive with a published state")
	}
}

func value(mf *dto.MetricFamily) float64 {
	if mf == nil || len(mf.GetMetric()) == 0 {
		return 0
	}
	m := mf.GetMetric()[0]
	switch {
	case m.Counter != nil:
		return m.Counter.GetValue()
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	}
	return 0
}

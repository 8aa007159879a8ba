package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"sort"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

const metricPrefix = "liveresults_"

// metrics returns GET /metrics in the Prometheus text exposition format.
func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var buf bytes.Buffer
	for _, mf := range h.families() {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			slog.Error("api: encode metrics", "family", mf.GetName(), "err", err)
			jsonErr(w, http.StatusInternalServerError, "encode metrics")
			return
		}
	}

	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}

// families snapshots the service counters as metric families sorted by name.
func (h *Handler) families() []*dto.MetricFamily {
	cs := h.deps.Cycle.Stats()
	hs := h.deps.Hub.Stats()

	var distances, competitors, publishedAt float64
	if e, ok := h.deps.Store.Get(); ok {
		distances = float64(len(e.State.DistanceIDs()))
		competitors = float64(e.State.CompetitorCount())
		publishedAt = float64(e.PublishedAt.UnixNano()) / 1e9
	}

	out := []*dto.MetricFamily{
		counter("cycles_total", "Polling cycles started.", float64(cs.Cycles)),
		counter("cycles_published_total", "Cycles that published at least one change.", float64(cs.Published)),
		counter("cycles_unchanged_total", "Cycles skipped because nothing changed.", float64(cs.Unchanged)),
		counter("fetch_errors_total", "Cycles skipped because the source fetch failed.", float64(cs.FetchErrors)),
		counter("messages_published_total", "Entity messages published by the polling loop.", float64(cs.Messages)),
		counter("broadcasts_total", "Messages fanned out to subscribers.", float64(hs.Broadcasts)),
		counter("deliveries_total", "Successful per-subscriber deliveries.", float64(hs.Deliveries)),
		counter("evictions_total", "Subscribers dropped after a failed delivery.", float64(hs.Evictions)),
		gauge("subscribers", "Connected subscribers.", float64(h.deps.Hub.Count())),
		gauge("state_distances", "Distances in the published state.", distances),
		gauge("state_competitors", "Competitors in the published state.", competitors),
		gauge("last_publish_timestamp_seconds", "Unix time of the last published state, 0 when empty.", publishedAt),
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}

func counter(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(metricPrefix + name),
		Help:   proto.String(help),
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{{Counter: &dto.Counter{Value: proto.Float64(v)}}},
	}
}

func gauge(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(metricPrefix + name),
		Help:   proto.String(help),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(v)}}},
	}
}

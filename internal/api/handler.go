package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/liveresults/liveresults/internal/cycle"
	"github.com/liveresults/liveresults/internal/diff"
	"github.com/liveresults/liveresults/internal/hub"
	"github.com/liveresults/liveresults/internal/results"
	"github.com/liveresults/liveresults/internal/store"
)

// StateStore is the published-state cache.
type StateStore interface {
	Get() (store.Entry, bool)
	Reset()
}

// Subscribers reports the live viewer registry.
type Subscribers interface {
	Count() int
	Stats() hub.Stats
}

// Cycles reports the polling loop.
type Cycles interface {
	Stats() cycle.Stats
	Options() diff.Options
}

// Deps wires the handler to the running service.
type Deps struct {
	Store  StateStore
	Hub    Subscribers
	Cycle  Cycles
	Status func() results.StatusInfo
}

// Handler serves the admin endpoints under /api/v1/ and the Prometheus
// exposition at /metrics.
type Handler struct {
	deps Deps
	mux  *http.ServeMux
}

// New creates a Handler and registers all routes.
func New(d Deps) http.Handler {
	if d.Status == nil {
		d.Status = func() results.StatusInfo { return results.StatusInfo{} }
	}
	h := &Handler{deps: d, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/status", h.status)
	h.mux.HandleFunc("/api/v1/state", h.state)
	h.mux.HandleFunc("/api/v1/reset", h.reset)
	h.mux.HandleFunc("/metrics", h.metrics)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// status returns GET /api/v1/status.
func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	info := h.deps.Status()
	resp := StatusResponse{
		DataSourceURL:          info.DataSourceURL,
		DataSourceInterval:     info.DataSourceInterval,
		Subscribers:            h.deps.Hub.Count(),
		SuppressUntimedRepeats: h.deps.Cycle.Options().SuppressUntimedRepeats,
		Cycles:                 toCycleStats(h.deps.Cycle.Stats()),
	}
	if e, ok := h.deps.Store.Get(); ok {
		resp.HasState = true
		resp.EventName = e.State.Name
		resp.Distances = len(e.State.DistanceIDs())
		resp.Competitors = e.State.CompetitorCount()
		resp.PublishedAt = e.PublishedAt.UTC().Format(time.RFC3339)
	}
	jsonResp(w, http.StatusOK, resp)
}

// state returns GET /api/v1/state: the cached state, or 404 before the first
// publish and after a reset.
func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	e, ok := h.deps.Store.Get()
	if !ok {
		jsonErr(w, http.StatusNotFound, "no published state")
		return
	}
	jsonResp(w, http.StatusOK, e.State)
}

// reset handles POST /api/v1/reset: drops the cached state so new joiners
// get no replay until the next cycle publishes.
func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.deps.Store.Reset()
	slog.Info("api: published state reset", "remote", r.RemoteAddr)
	jsonResp(w, http.StatusOK, ResetResponse{Reset: true})
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

func toCycleStats(s cycle.Stats) CycleStats {
	return CycleStats{
		Total:       s.Cycles,
		Published:   s.Published,
		Unchanged:   s.Unchanged,
		FetchErrors: s.FetchErrors,
		Messages:    s.Messages,
	}
}

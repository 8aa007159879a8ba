package api

// StatusResponse is the payload for GET /api/v1/status.
type StatusResponse struct {
	DataSourceURL          string     `json:"data_source_url"`
	DataSourceInterval     float64    `json:"data_source_interval"`
	Subscribers            int        `json:"subscribers"`
	SuppressUntimedRepeats bool       `json:"suppress_untimed_repeats"`
	HasState               bool       `json:"has_state"`
	EventName              string     `json:"event_name,omitempty"`
	Distances              int        `json:"distances"`
	Competitors            int        `json:"competitors"`
	PublishedAt            string     `json:"published_at,omitempty"` // RFC3339
	Cycles                 CycleStats `json:"cycles"`
}

// CycleStats are the polling loop counters.
type CycleStats struct {
	Total       uint64 `json:"total"`
	Published   uint64 `json:"published"`
	Unchanged   uint64 `json:"unchanged"`
	FetchErrors uint64 `json:"fetch_errors"`
	Messages    uint64 `json:"messages"`
}

// ResetResponse is the payload for POST /api/v1/reset.
type ResetResponse struct {
	Reset bool `json:"reset"`
}

type errorResponse struct {
	Error string `json:"error"`
}

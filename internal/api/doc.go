// Package api implements the admin HTTP endpoints.
//
// Routes:
//
//	GET  /api/v1/status  source, subscriber count and cycle counters
//	GET  /api/v1/state   the published state as JSON (404 when empty)
//	POST /api/v1/reset   drop the published state
//	GET  /metrics        Prometheus text exposition
//
// All JSON responses set Content-Type: application/json. Errors use
// {"error": "..."}.
package api

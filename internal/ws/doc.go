// Package ws is the WebSocket transport for live viewers.
//
// NewHandler(registry, sendBuffer) creates a Handler.
// Handler.ServeHTTP upgrades an HTTP connection, registers it with the hub
// (which sends the status notice and replays the current state), then streams
// broadcasts until the connection closes.
// Handler.Run(ctx) blocks until ctx is cancelled, then closes all active
// connections.
//
// Each client has a buffered outgoing queue drained by its own write pump.
// Send waits briefly for queue space and then fails, so one stalled viewer
// is evicted instead of holding up a broadcast.
//
// Frames are JSON text messages:
//
//	{"type": "competitor_update", "data": { ... }}
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. The endpoint is mounted at /ws by the server.
package ws

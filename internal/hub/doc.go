// Package hub is the subscriber registry and broadcaster.
//
// New(states, status, workers) creates a Hub.
// Hub.Connect registers a subscriber, sends the status notice and replays the
// last published state (event name, every distance, every competitor).
// Hub.Broadcast delivers one message to a snapshot of the current
// subscribers in parallel; a subscriber whose delivery fails is evicted and
// the others are unaffected.
// Hub.Publish broadcasts one cycle's diff in the fixed order name, distances,
// competitors. Publish and Connect are serialized, so a joiner's replay is
// never delivered after deltas of a newer cycle.
//
// Subscribers are transport-agnostic; the WebSocket adapter lives in
// package ws.
package hub

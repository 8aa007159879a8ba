// Package results defines the processed race state shared by the processor,
// the diff engine and the broadcaster.
//
// A State is built once through a Builder and never modified afterwards, so
// two States can be compared by value (State.Equal) and an old State can be
// read safely while a new one is being published.
//
// Message types sent to subscribers:
//
//	status            connect-time configuration summary
//	event_name        {"name": ...}
//	error             human-readable string
//	distance_meta     DistanceMeta
//	competitor_update CompetitorEntry
package results

// Package poller fetches the raw event payload from the timing source over
// HTTP.
//
// New(cfg) builds one client with the configured timeout and optional API key
// header. Poller.Fetch(ctx) performs a single GET; a non-200 status, an
// undecodable body or a payload flagged success=false is an error, which the
// cycle coordinator treats as "no new cycle this tick".
package poller

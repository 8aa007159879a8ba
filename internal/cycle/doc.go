// Package cycle drives the polling loop: fetch the raw payload, process it
// into a State, diff it against the cached state, swap the cache and publish
// the changes.
//
// A cycle whose fetch fails publishes nothing and keeps the cache. A cycle
// whose state equals the cached one publishes nothing.
package cycle

// Package diff computes the minimal set of changed distances and competitors
// between two processed states.
//
// Compute(prev, curr, opts) compares entities by value, id by id. Unchanged
// entities are never reported, so the outbound volume is bounded by what
// actually changed rather than by roster size.
package diff

package diff

import "github.com/liveresults/liveresults/internal/results"

// Options controls which changes are reported.
type Options struct {
	// SuppressUntimedRepeats drops a changed competitor that still has no
	// recorded time when the competitor was already present in the previous
	// state. First appearances are always reported.
	SuppressUntimedRepeats bool
}

// DefaultOptions returns the default diff policy.
func DefaultOptions() Options {
	return Options{SuppressUntimedRepeats: true}
}

// Result is the set of entities that changed between two states.
type Result struct {
	Distances   []results.DistanceMeta
	Competitors []results.CompetitorEntry
	NameChanged bool
}

// Empty reports whether there is nothing to publish.
func (r Result) Empty() bool {
	return !r.NameChanged && len(r.Distances) == 0 && len(r.Competitors) == 0
}

// Compute returns the entities of curr that are new or differ from prev.
// prev may be nil on the first cycle, in which case everything in curr is
// reported and NameChanged is set. Output order follows curr: distances in
// order, then competitors distance by distance.
func Compute(prev, curr *results.State, opts Options) Result {
	var res Result
	if curr == nil {
		return res
	}
	res.NameChanged = prev == nil || prev.Name != curr.Name

	for _, distID := range curr.DistanceIDs() {
		d, _ := curr.Distance(distID)
		if old, ok := prev.Distance(distID); !ok || !old.Equal(d) {
			res.Distances = append(res.Distances, d)
		}

		for _, c := range curr.Competitors(distID) {
			old, existed := prev.Competitor(distID, c.ID)
			if existed && old.Equal(c) {
				continue
			}
			if opts.SuppressUntimedRepeats && existed && !c.HasTime() {
				continue
			}
			res.Competitors = append(res.Competitors, c)
		}
	}
	return res
}

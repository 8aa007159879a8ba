package results

import "encoding/json"

// State is one fully processed event. A State is never mutated after it has
// been built; each cycle produces a new one.
//
// Distances and competitors keep the source's arrival order, which is also
// the order used for diff emission and replay.
type State struct {
	Name string

	distanceIDs []string
	distances   map[string]DistanceMeta

	competitorIDs map[string][]string
	competitors   map[string]map[string]CompetitorEntry
}

// Builder assembles a State. The zero value is not usable; call NewBuilder.
type Builder struct {
	s *State
}

// NewBuilder starts a State for the named event.
func NewBuilder(name string) *Builder {
	return &Builder{s: &State{
		Name:          name,
		distances:     make(map[string]DistanceMeta),
		competitorIDs: make(map[string][]string),
		competitors:   make(map[string]map[string]CompetitorEntry),
	}}
}

// AddDistance appends a distance with its competitors in arrival order.
// A repeated distance id replaces the earlier one in place.
func (b *Builder) AddDistance(meta DistanceMeta, entries []CompetitorEntry) {
	if _, ok := b.s.distances[meta.ID]; !ok {
		b.s.distanceIDs = append(b.s.distanceIDs, meta.ID)
	}
	b.s.distances[meta.ID] = meta

	ids := make([]string, 0, len(entries))
	byID := make(map[string]CompetitorEntry, len(entries))
	for _, e := range entries {
		if _, dup := byID[e.ID]; !dup {
			ids = append(ids, e.ID)
		}
		byID[e.ID] = e
	}
	b.s.competitorIDs[meta.ID] = ids
	b.s.competitors[meta.ID] = byID
}

// Build returns the finished State. The Builder must not be used afterwards.
func (b *Builder) Build() *State {
	s := b.s
	b.s = nil
	return s
}

// DistanceIDs returns the distance ids in arrival order.
func (s *State) DistanceIDs() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.distanceIDs...)
}

// Distance looks up a distance by id.
func (s *State) Distance(id string) (DistanceMeta, bool) {
	if s == nil {
		return DistanceMeta{}, false
	}
	d, ok := s.distances[id]
	return d, ok
}

// Distances returns every distance in arrival order.
func (s *State) Distances() []DistanceMeta {
	if s == nil {
		return nil
	}
	out := make([]DistanceMeta, 0, len(s.distanceIDs))
	for _, id := range s.distanceIDs {
		out = append(out, s.distances[id])
	}
	return out
}

// Competitor looks up a competitor entry within a distance.
func (s *State) Competitor(distanceID, id string) (CompetitorEntry, bool) {
	if s == nil {
		return CompetitorEntry{}, false
	}
	c, ok := s.competitors[distanceID][id]
	return c, ok
}

// Competitors returns the entries of one distance in arrival order.
func (s *State) Competitors(distanceID string) []CompetitorEntry {
	if s == nil {
		return nil
	}
	ids := s.competitorIDs[distanceID]
	out := make([]CompetitorEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.competitors[distanceID][id])
	}
	return out
}

// AllCompetitors returns every entry, distance by distance.
func (s *State) AllCompetitors() []CompetitorEntry {
	var out []CompetitorEntry
	for _, id := range s.DistanceIDs() {
		out = append(out, s.Competitors(id)...)
	}
	return out
}

// CompetitorCount returns the number of entries across all distances.
func (s *State) CompetitorCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, ids := range s.competitorIDs {
		n += len(ids)
	}
	return n
}

// Equal reports whether two states carry the same values. Map iteration order
// plays no part; distance and competitor order do.
func (s *State) Equal(o *State) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Name != o.Name || len(s.distanceIDs) != len(o.distanceIDs) {
		return false
	}
	for i, id := range s.distanceIDs {
		if o.distanceIDs[i] != id {
			return false
		}
		if !s.distances[id].Equal(o.distances[id]) {
			return false
		}
		a, b := s.competitorIDs[id], o.competitorIDs[id]
		if len(a) != len(b) {
			return false
		}
		for j, cid := range a {
			if b[j] != cid {
				return false
			}
			if !s.competitors[id][cid].Equal(o.competitors[id][cid]) {
				return false
			}
		}
	}
	return true
}

type stateJSON struct {
	Name        string            `json:"name"`
	Distances   []DistanceMeta    `json:"distances"`
	Competitors []CompetitorEntry `json:"competitors"`
}

// MarshalJSON encodes the state as ordered lists of distances and competitors.
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		Name:        s.Name,
		Distances:   s.Distances(),
		Competitors: s.AllCompetitors(),
	})
}

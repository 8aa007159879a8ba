package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liveresults/liveresults/internal/diff"
	"github.com/liveresults/liveresults/internal/results"
)

type comp struct {
	id   string
	laps int
	time string
}

func state(name string, dists map[string][]comp, order ...string) *results.State {
	b := results.NewBuilder(name)
	for _, id := range order {
		var entries []results.CompetitorEntry
		for i, c := range dists[id] {
			entries = append(entries, results.CompetitorEntry{
				ID: c.id, DistanceID: id, LapsCount: c.laps, TotalTime: c.time, Position: i + 1,
			})
		}
		b.AddDistance(results.DistanceMeta{ID: id, Name: id, HeatGroups: []results.HeatGroup{}}, entries)
	}
	return b.Build()
}

func ids(cs []results.CompetitorEntry) []string {
	out := []string{}
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestCompute_FirstCycleReportsEverything(t *testing.T) {
	curr := state("Cup", map[string][]comp{
		"d1": {{"a", 1, "00:00:10"}, {"b", 0, ""}},
		"d2": {{"c", 2, "00:00:20"}},
	}, "d1", "d2")

	res := diff.Compute(nil, curr, diff.DefaultOptions())
	assert.True(t, res.NameChanged)
	require.Len(t, res.Distances, 2)
	assert.Equal(t, "d1", res.Distances[0].ID)
	assert.Equal(t, "d2", res.Distances[1].ID)
	// Untimed competitors are announced on first appearance.
	assert.Equal(t, []string{"a", "b", "c"}, ids(res.Competitors))
}

func TestCompute_IdenticalStatesAreEmpty(t *testing.T) {
	mk := func() *results.State {
		return state("Cup", map[string][]comp{"d1": {{"a", 3, "00:00:30"}}}, "d1")
	}
	res := diff.Compute(mk(), mk(), diff.DefaultOptions())
	assert.True(t, res.Empty())
	assert.False(t, res.NameChanged)
}

func TestCompute_OnlyChangedCompetitor(t *testing.T) {
	prev := state("Cup", map[string][]comp{"d1": {{"a", 3, "00:00:30"}, {"b", 2, "00:00:25"}}}, "d1")
	curr := state("Cup", map[string][]comp{"d1": {{"a", 4, "00:00:40"}, {"b", 2, "00:00:25"}}}, "d1")

	res := diff.Compute(prev, curr, diff.DefaultOptions())
	assert.Empty(t, res.Distances)
	assert.Equal(t, []string{"a"}, ids(res.Competitors))
	assert.False(t, res.NameChanged)
}

func TestCompute_NewDistanceAndNameChange(t *testing.T) {
	prev := state("Cup", map[string][]comp{"d1": {{"a", 1, "00:00:10"}}}, "d1")
	curr := state("Final", map[string][]comp{
		"d1": {{"a", 1, "00:00:10"}},
		"d2": {{"z", 1, "00:00:11"}},
	}, "d1", "d2")

	res := diff.Compute(prev, curr, diff.DefaultOptions())
	assert.True(t, res.NameChanged)
	require.Len(t, res.Distances, 1)
	assert.Equal(t, "d2", res.Distances[0].ID)
	assert.Equal(t, []string{"z"}, ids(res.Competitors))
}

func TestCompute_SuppressUntimedRepeats(t *testing.T) {
	prev := state("Cup", map[string][]comp{"d1": {{"a", 0, ""}, {"b", 0, ""}}}, "d1")
	// Both still untimed; positions swap so both entries differ by value.
	curr := state("Cup", map[string][]comp{"d1": {{"b", 0, ""}, {"a", 0, ""}, {"new", 0, ""}}}, "d1")

	res := diff.Compute(prev, curr, diff.DefaultOptions())
	assert.Equal(t, []string{"new"}, ids(res.Competitors))

	res = diff.Compute(prev, curr, diff.Options{SuppressUntimedRepeats: false})
	assert.Equal(t, []string{"b", "a", "new"}, ids(res.Competitors))
}

func TestCompute_TimedUpdateNotSuppressed(t *testing.T) {
	prev := state("Cup", map[string][]comp{"d1": {{"a", 0, ""}}}, "d1")
	curr := state("Cup", map[string][]comp{"d1": {{"a", 1, "00:00:09"}}}, "d1")
	res := diff.Compute(prev, curr, diff.DefaultOptions())
	assert.Equal(t, []string{"a"}, ids(res.Competitors))
}

func TestCompute_ChangedDistanceMeta(t *testing.T) {
	prev := state("Cup", map[string][]comp{"d1": {{"a", 1, "00:00:10"}}}, "d1")
	b := results.NewBuilder("Cup")
	b.AddDistance(results.DistanceMeta{ID: "d1", Name: "d1", IsLive: true, HeatGroups: []results.HeatGroup{}},
		prev.Competitors("d1"))
	curr := b.Build()

	res := diff.Compute(prev, curr, diff.DefaultOptions())
	require.Len(t, res.Distances, 1)
	assert.True(t, res.Distances[0].IsLive)
	assert.Empty(t, res.Competitors)
}

func TestCompute_NilCurrent(t *testing.T) {
	assert.True(t, diff.Compute(nil, nil, diff.DefaultOptions()).Empty())
}

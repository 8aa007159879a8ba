package processor

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"

	"github.com/liveresults/liveresults/internal/results"
	"github.com/liveresults/liveresults/internal/timefmt"
)

// GroupGapSeconds is the largest time gap, in seconds, between two
// consecutive mass-start competitors on the same lap that keeps them in one
// standings group.
const GroupGapSeconds = 2.0

var (
	lapsPattern   = regexp.MustCompile(`(?i)(\d+)\s*(?:laps?|ronden?|rondes?)`)
	metersPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:m\b|meter)`)
)

// Process turns one raw payload into a ranked State. The result depends only
// on raw.
func Process(raw RawEvent) *results.State {
	return ProcessWithPrevious(raw, nil)
}

// ProcessWithPrevious is Process with position changes filled in relative to
// prev. A nil prev leaves every position change unset; a competitor whose
// position did not move keeps the marker it had in prev.
func ProcessWithPrevious(raw RawEvent, prev *results.State) *results.State {
	b := results.NewBuilder(raw.Name)
	for _, dist := range raw.Distances {
		meta, entries := processDistance(dist, prev)
		b.AddDistance(meta, entries)
	}
	return b.Build()
}

// IsMassStart reports whether races form a mass start: more than two races,
// all in the same heat.
func IsMassStart(races []RawRace) bool {
	if len(races) <= 2 {
		return false
	}
	heat := races[0].Heat
	for _, r := range races[1:] {
		if r.Heat != heat {
			return false
		}
	}
	return true
}

// uniqueRaces returns the distance's races with one row per id. A race without
// an id is keyed by its competitor id, or by its position in the distance when
// that is empty too. Later rows repeating an id are dropped.
func uniqueRaces(dist RawDistance) []RawRace {
	out := make([]RawRace, 0, len(dist.Races))
	seen := make(map[string]bool, len(dist.Races))
	for i, race := range dist.Races {
		if race.ID == "" {
			race.ID = race.Competitor.ID
		}
		if race.ID == "" {
			race.ID = fmt.Sprintf("%s-%d", dist.ID, i)
		}
		if seen[race.ID] {
			slog.Warn("processor: duplicate race dropped", "distance", dist.ID, "race", race.ID)
			continue
		}
		seen[race.ID] = true
		out = append(out, race)
	}
	return out
}

// TotalLaps extracts a lap count such as "20 rondes" from a distance name.
func TotalLaps(name string) *int {
	return firstNumber(lapsPattern, name)
}

// DistanceMeters extracts a length such as "500m" or "1000 meter".
func DistanceMeters(name string) *int {
	return firstNumber(metersPattern, name)
}

func firstNumber(re *regexp.Regexp, s string) *int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// ranked carries the per-competitor working values while a distance is
// being processed.
type ranked struct {
	entry   results.CompetitorEntry
	seconds float64
}

func processDistance(dist RawDistance, prev *results.State) (results.DistanceMeta, []results.CompetitorEntry) {
	races := uniqueRaces(dist)
	massStart := IsMassStart(races)

	meta := results.DistanceMeta{
		ID:          dist.ID,
		Name:        dist.Name,
		EventNumber: dist.EventNumber,
		IsLive:      dist.IsLive,
		IsMassStart: massStart,
	}
	if massStart {
		meta.TotalLaps = TotalLaps(dist.Name)
	} else {
		meta.DistanceMeters = DistanceMeters(dist.Name)
	}

	rows := make([]ranked, 0, len(races))
	for _, race := range races {
		rows = append(rows, normalize(dist.ID, race, massStart))
	}

	rank(rows)

	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].entry.HasTime() {
			id := rows[i].entry.ID
			meta.FinishingLineAfter = &id
			break
		}
	}

	if massStart && meta.TotalLaps != nil && *meta.TotalLaps > 0 {
		meta.AnyFinished = progress(rows, *meta.TotalLaps)
	}

	if massStart {
		meta.StandingsGroups = standings(rows)
	} else {
		meta.HeatGroups = heats(rows)
	}

	entries := make([]results.CompetitorEntry, len(rows))
	for i := range rows {
		e := rows[i].entry
		e.PositionChange = positionChange(prev, e)
		entries[i] = e
	}
	return meta, entries
}

// normalize builds the unranked entry for one race. The first lap of a mass
// start is a warm-up and is not counted.
func normalize(distanceID string, race RawRace, massStart bool) ranked {
	laps := race.Laps
	if massStart && len(laps) > 0 {
		laps = laps[1:]
	}

	var total string
	for _, l := range laps {
		if l.Time > total {
			total = l.Time
		}
	}

	lane := race.Lane
	if massStart || lane == "" {
		lane = results.LaneNeutral
	}

	display := results.NoTime
	if total != "" {
		display = timefmt.Format(total)
	}

	lapTimes := make([]results.LapTime, 0, len(laps))
	for i, l := range laps {
		lapTimes = append(lapTimes, results.LapTime{
			Lap:     i + 1,
			Time:    timefmt.Format(l.Time),
			LapTime: timefmt.Format(l.LapTime),
		})
	}

	pr := race.PersonalRecord
	if pr == "" {
		pr = race.Competitor.PersonalRecord
	}

	return ranked{
		entry: results.CompetitorEntry{
			ID:                 race.ID,
			DistanceID:         distanceID,
			StartNumber:        string(race.Competitor.StartNumber),
			Name:               race.Competitor.Name,
			Heat:               int(race.Heat),
			Lane:               lane,
			LapsCount:          len(laps),
			TotalTime:          total,
			FormattedTotalTime: display,
			LapTimes:           lapTimes,
			PersonalRecord:     optional(timefmt.Format(pr)),
			InvalidReason:      optional(race.InvalidReason),
			Remark:             optional(race.Remark),
		},
		seconds: timefmt.Parse(total),
	}
}

// rank orders rows by laps completed (descending) then total time
// (ascending), with untimed rows after every timed one, and assigns
// positions 1..N. Ties keep arrival order.
func rank(rows []ranked) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].entry, rows[j].entry
		if a.LapsCount != b.LapsCount {
			return a.LapsCount > b.LapsCount
		}
		if a.HasTime() != b.HasTime() {
			return a.HasTime()
		}
		if rows[i].seconds != rows[j].seconds {
			return rows[i].seconds < rows[j].seconds
		}
		return a.TotalTime < b.TotalTime
	})
	for i := range rows {
		rows[i].entry.Position = i + 1
	}
}

// progress fills laps remaining, final-lap and finished rank for a mass start
// of totalLaps laps. Finished ranks follow ranked order. It reports whether
// anyone has finished.
func progress(rows []ranked, totalLaps int) bool {
	next := 1
	for i := range rows {
		e := &rows[i].entry
		remaining := totalLaps - e.LapsCount
		if remaining < 0 {
			remaining = 0
		}
		e.LapsRemaining = &remaining
		e.IsFinalLap = remaining == 1
		if remaining == 0 {
			rank := next
			e.FinishedRank = &rank
			next++
		}
	}
	return next > 1
}

// standings clusters timed, unfinished mass-start rows into packs. A new pack
// starts on a lap-count change or when the gap to the previous member
// exceeds GroupGapSeconds.
func standings(rows []ranked) []results.StandingsGroup {
	groups := []results.StandingsGroup{}
	var (
		leaderSec float64 // first member of the first group
		lastSec   float64 // most recent member of the current group
	)
	for i := range rows {
		r := &rows[i]
		e := &r.entry
		if e.FinishedRank != nil || !e.HasTime() {
			continue
		}

		cur := len(groups) - 1
		if cur < 0 || groups[cur].Laps != e.LapsCount || r.seconds-lastSec > GroupGapSeconds {
			g := results.StandingsGroup{
				GroupNumber: len(groups) + 1,
				Laps:        e.LapsCount,
				LeaderTime:  e.FormattedTotalTime,
			}
			if cur < 0 {
				leaderSec = r.seconds
			} else {
				g.GapToGroupAhead = optional(timefmt.FormatGap(r.seconds - lastSec))
				g.TimeBehindLeader = optional(timefmt.FormatGap(r.seconds - leaderSec))
			}
			groups = append(groups, g)
			cur = len(groups) - 1
		} else {
			e.GapToAbove = optional(timefmt.FormatGap(r.seconds - lastSec))
		}

		groups[cur].CompetitorIDs = append(groups[cur].CompetitorIDs, e.ID)
		n := groups[cur].GroupNumber
		e.GroupNumber = &n
		lastSec = r.seconds
	}
	if len(groups) > 0 {
		groups[len(groups)-1].IsLastGroup = true
	}
	return groups
}

// heats partitions rows by heat, keeping ranked order inside each heat, and
// returns the heats in ascending order.
func heats(rows []ranked) []results.HeatGroup {
	byHeat := make(map[int][]string)
	var order []int
	for _, r := range rows {
		h := r.entry.Heat
		if _, ok := byHeat[h]; !ok {
			order = append(order, h)
		}
		byHeat[h] = append(byHeat[h], r.entry.ID)
	}
	sort.Ints(order)

	out := make([]results.HeatGroup, 0, len(order))
	for _, h := range order {
		out = append(out, results.HeatGroup{Heat: h, CompetitorIDs: byHeat[h]})
	}
	return out
}

// positionChange compares e with its entry in prev. An unchanged position
// keeps the previous marker so an identical payload yields an identical state.
func positionChange(prev *results.State, e results.CompetitorEntry) *string {
	old, ok := prev.Competitor(e.DistanceID, e.ID)
	if !ok {
		return nil
	}
	if old.Position == e.Position {
		return old.PositionChange
	}
	if e.Position < old.Position {
		return optional(results.PositionUp)
	}
	return optional(results.PositionDown)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package results

// Equal compares two distance metas field by field.
func (d DistanceMeta) Equal(o DistanceMeta) bool {
	if d.ID != o.ID || d.Name != o.Name || d.EventNumber != o.EventNumber ||
		d.IsLive != o.IsLive || d.IsMassStart != o.IsMassStart || d.AnyFinished != o.AnyFinished {
		return false
	}
	if !eqPtr(d.DistanceMeters, o.DistanceMeters) || !eqPtr(d.TotalLaps, o.TotalLaps) ||
		!eqPtr(d.FinishingLineAfter, o.FinishingLineAfter) {
		return false
	}
	if (d.HeatGroups == nil) != (o.HeatGroups == nil) || len(d.HeatGroups) != len(o.HeatGroups) {
		return false
	}
	for i := range d.HeatGroups {
		if d.HeatGroups[i].Heat != o.HeatGroups[i].Heat ||
			!eqStrings(d.HeatGroups[i].CompetitorIDs, o.HeatGroups[i].CompetitorIDs) {
			return false
		}
	}
	if (d.StandingsGroups == nil) != (o.StandingsGroups == nil) || len(d.StandingsGroups) != len(o.StandingsGroups) {
		return false
	}
	for i := range d.StandingsGroups {
		if !d.StandingsGroups[i].Equal(o.StandingsGroups[i]) {
			return false
		}
	}
	return true
}

// Equal compares two standings groups field by field.
func (g StandingsGroup) Equal(o StandingsGroup) bool {
	return g.GroupNumber == o.GroupNumber &&
		g.Laps == o.Laps &&
		g.LeaderTime == o.LeaderTime &&
		eqPtr(g.GapToGroupAhead, o.GapToGroupAhead) &&
		eqPtr(g.TimeBehindLeader, o.TimeBehindLeader) &&
		g.IsLastGroup == o.IsLastGroup &&
		eqStrings(g.CompetitorIDs, o.CompetitorIDs)
}

// Equal compares two competitor entries field by field.
func (c CompetitorEntry) Equal(o CompetitorEntry) bool {
	if c.ID != o.ID || c.DistanceID != o.DistanceID || c.StartNumber != o.StartNumber ||
		c.Name != o.Name || c.Heat != o.Heat || c.Lane != o.Lane {
		return false
	}
	if c.LapsCount != o.LapsCount || c.TotalTime != o.TotalTime ||
		c.FormattedTotalTime != o.FormattedTotalTime || c.Position != o.Position ||
		c.IsFinalLap != o.IsFinalLap {
		return false
	}
	if !eqPtr(c.PositionChange, o.PositionChange) || !eqPtr(c.GapToAbove, o.GapToAbove) ||
		!eqPtr(c.LapsRemaining, o.LapsRemaining) || !eqPtr(c.FinishedRank, o.FinishedRank) ||
		!eqPtr(c.GroupNumber, o.GroupNumber) {
		return false
	}
	if !eqPtr(c.PersonalRecord, o.PersonalRecord) || !eqPtr(c.InvalidReason, o.InvalidReason) ||
		!eqPtr(c.Remark, o.Remark) {
		return false
	}
	if len(c.LapTimes) != len(o.LapTimes) {
		return false
	}
	for i := range c.LapTimes {
		if c.LapTimes[i] != o.LapTimes[i] {
			return false
		}
	}
	return true
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package results

// LaneNeutral is the lane assigned when the source has none, and to every
// mass-start competitor.
const LaneNeutral = "black"

// NoTime is the display time of a competitor without a recorded lap.
const NoTime = "No Time"

// DistanceMeta holds the scalar fields and grouping of one distance.
// Exactly one of HeatGroups (lane races) and StandingsGroups (mass start) is
// non-nil.
type DistanceMeta struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	EventNumber float64 `json:"event_number"`
	IsLive      bool    `json:"is_live"`
	IsMassStart bool    `json:"is_mass_start"`

	DistanceMeters *int `json:"distance_meters"`
	TotalLaps      *int `json:"total_laps"`

	AnyFinished bool `json:"any_finished"`

	// FinishingLineAfter is the id of the last ranked competitor with a
	// recorded time.
	FinishingLineAfter *string `json:"finishing_line_after"`

	HeatGroups      []HeatGroup      `json:"heat_groups"`
	StandingsGroups []StandingsGroup `json:"standings_groups"`
}

// HeatGroup lists the competitors of one heat in ranked order.
type HeatGroup struct {
	Heat          int      `json:"heat"`
	CompetitorIDs []string `json:"race_ids"`
}

// StandingsGroup is one pack of mass-start competitors on the same lap.
type StandingsGroup struct {
	GroupNumber      int      `json:"group_number"`
	Laps             int      `json:"laps"`
	LeaderTime       string   `json:"leader_time"`
	GapToGroupAhead  *string  `json:"gap_to_group_ahead"`
	TimeBehindLeader *string  `json:"time_behind_leader"`
	IsLastGroup      bool     `json:"is_last_group"`
	CompetitorIDs    []string `json:"race_ids"`
}

// LapTime is one counted lap of a competitor.
type LapTime struct {
	Lap     int    `json:"lap"`
	Time    string `json:"time"`
	LapTime string `json:"lap_time"`
}

// CompetitorEntry is the fully ranked view of one race within a distance.
type CompetitorEntry struct {
	ID          string `json:"id"`
	DistanceID  string `json:"distance_id"`
	StartNumber string `json:"start_number"`
	Name        string `json:"name"`
	Heat        int    `json:"heat"`
	Lane        string `json:"lane"`

	LapsCount          int    `json:"laps_count"`
	TotalTime          string `json:"total_time"`
	FormattedTotalTime string `json:"formatted_total_time"`

	Position       int     `json:"position"`
	PositionChange *string `json:"position_change"`
	GapToAbove     *string `json:"gap_to_above"`

	LapsRemaining *int `json:"laps_remaining"`
	IsFinalLap    bool `json:"is_final_lap"`
	FinishedRank  *int `json:"finished_rank"`
	GroupNumber   *int `json:"group_number"`

	LapTimes []LapTime `json:"lap_times"`

	PersonalRecord *string `json:"personal_record"`
	InvalidReason  *string `json:"invalid_reason"`
	Remark         *string `json:"remark"`
}

// HasTime reports whether the competitor has a recorded total time.
func (c CompetitorEntry) HasTime() bool { return c.TotalTime != "" }

// Position change markers.
const (
	PositionUp   = "up"
	PositionDown = "down"
)

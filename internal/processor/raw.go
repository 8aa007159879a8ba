package processor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// RawEvent is the payload served by the timing source. Unknown fields are
// ignored and absent arrays decode as empty.
type RawEvent struct {
	Name      string        `json:"name"`
	Success   *bool         `json:"success"`
	Error     string        `json:"errorMessage"`
	Distances []RawDistance `json:"distances"`
}

// RawDistance is one distance of the event.
type RawDistance struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	EventNumber float64   `json:"eventNumber"`
	IsLive      bool      `json:"isLive"`
	Races       []RawRace `json:"races"`
}

// RawRace is one competitor's run in a distance.
type RawRace struct {
	ID             string        `json:"id"`
	Competitor     RawCompetitor `json:"competitor"`
	Heat           FlexInt       `json:"heat"`
	Lane           string        `json:"lane"`
	Remark         string        `json:"remark"`
	InvalidReason  string        `json:"invalidReason"`
	PersonalRecord string        `json:"personalRecord"`
	Laps           []RawLap      `json:"laps"`
}

// RawCompetitor identifies the athlete of a race.
type RawCompetitor struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	StartNumber    FlexString `json:"startNumber"`
	PersonalRecord string     `json:"personalRecord"`
}

// RawLap is one passing; Time is cumulative since the start.
type RawLap struct {
	Time    string `json:"time"`
	LapTime string `json:"lapTime"`
}

// Decode reads a RawEvent from r.
func Decode(r io.Reader) (*RawEvent, error) {
	var ev RawEvent
	if err := json.NewDecoder(r).Decode(&ev); err != nil {
		return nil, fmt.Errorf("processor: decode payload: %w", err)
	}
	return &ev, nil
}

// FlexString accepts a JSON string, number or null.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	*s = FlexString(b)
	return nil
}

// FlexInt accepts a JSON number, numeric string or null. Anything else
// decodes as zero.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		b = []byte(v)
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = FlexInt(int(f))
	return nil
}

package results

// Message types sent to subscribers.
const (
	TypeStatus     = "status"
	TypeEventName  = "event_name"
	TypeError      = "error"
	TypeDistance   = "distance_meta"
	TypeCompetitor = "competitor_update"
)

// Message is the envelope delivered to every subscriber.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// StatusInfo is the configuration summary sent when a subscriber connects.
type StatusInfo struct {
	DataSourceURL      string  `json:"data_source_url"`
	DataSourceInterval float64 `json:"data_source_interval"`
}

// EventName is the payload of an event_name message.
type EventName struct {
	Name string `json:"name"`
}

// StatusMessage builds the connect-time status notice.
func StatusMessage(info StatusInfo) Message {
	return Message{Type: TypeStatus, Data: info}
}

// EventNameMessage builds the event name notice.
func EventNameMessage(name string) Message {
	return Message{Type: TypeEventName, Data: EventName{Name: name}}
}

// ErrorMessage builds a human-readable error notice.
func ErrorMessage(text string) Message {
	return Message{Type: TypeError, Data: text}
}

// DistanceMessage wraps a distance meta.
func DistanceMessage(d DistanceMeta) Message {
	return Message{Type: TypeDistance, Data: d}
}

// CompetitorMessage wraps a competitor entry.
func CompetitorMessage(c CompetitorEntry) Message {
	return Message{Type: TypeCompetitor, Data: c}
}

// ReplayMessages returns the full-state sequence for a joining subscriber:
// the event name, every distance, then every competitor.
func ReplayMessages(s *State) []Message {
	if s == nil {
		return nil
	}
	out := make([]Message, 0, 1+len(s.distanceIDs)+s.CompetitorCount())
	out = append(out, EventNameMessage(s.Name))
	for _, d := range s.Distances() {
		out = append(out, DistanceMessage(d))
	}
	for _, c := range s.AllCompetitors() {
		out = append(out, CompetitorMessage(c))
	}
	return out
}

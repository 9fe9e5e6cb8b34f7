package analytics

import "time"

type EventType string

const (
	EventSearch     EventType = "search"
	EventZeroResult EventType = "zero_result"
	EventRejected   EventType = "rejected"
)

// SearchEvent is published once per served search request.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Letters   string    `json:"letters"`
	MinLength int       `json:"min_length"`
	MaxLength int       `json:"max_length,omitempty"`
	Total     int       `json:"total"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Key groups events for the same letters onto one partition.
func (e SearchEvent) Key() string {
	return e.Letters
}

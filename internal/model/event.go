package model

// Topic is the single channel name every presentation event is emitted on.
const Topic = "app-event"

// Event type tags.
const (
	EventWatcherStatus = "WatcherStatus"
	EventBatchUpdate   = "BatchUpdate"
)

// Event is a tagged payload handed to the presentation layer.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// WatcherStatus announces that watching has begun on Path.
type WatcherStatus struct {
	Active bool   `json:"active"`
	Path   string `json:"path"`
}

// BatchUpdate carries the entries and role states of one coalesced notification.
type BatchUpdate struct {
	Logs   []LogEntry  `json:"logs"`
	Agents []RoleState `json:"agents"`
}

func WatcherStatusEvent(active bool, path string) Event {
	return Event{Type: EventWatcherStatus, Payload: WatcherStatus{Active: active, Path: path}}
}

func BatchUpdateEvent(logs []LogEntry, agents []RoleState) Event {
	return Event{Type: EventBatchUpdate, Payload: BatchUpdate{Logs: logs, Agents: agents}}
}

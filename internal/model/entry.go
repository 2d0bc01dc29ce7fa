package model

import (
	"encoding/json"
	"fmt"
)

// EntryKind is the closed set of activity kinds a log line can describe.
type EntryKind int

const (
	KindMessage EntryKind = iota
	KindToolCall
	KindToolResult
	KindError
	KindTodoUpdate
	KindSessionStart
	KindSessionEnd
)

var kindNames = [...]string{
	KindMessage:      "message",
	KindToolCall:     "tool_call",
	KindToolResult:   "tool_result",
	KindError:        "error",
	KindTodoUpdate:   "todo_update",
	KindSessionStart: "session_start",
	KindSessionEnd:   "session_end",
}

func (k EntryKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("EntryKind(%d)", int(k))
	}
	return kindNames[k]
}

func (k EntryKind) MarshalJSON() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("unknown entry kind %d", int(k))
	}
	return json.Marshal(kindNames[k])
}

func (k *EntryKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, name := range kindNames {
		if name == s {
			*k = EntryKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown entry kind %q", s)
}

// LogEntry is one parsed unit of assistant activity.
// Values are never mutated after the parser returns them.
type LogEntry struct {
	Timestamp string    `json:"timestamp"` // as written in the log, may be empty
	Kind      EntryKind `json:"entry_type"`
	Content   string    `json:"content"`
	SourceID  *string   `json:"agent_id"` // originating session/agent, if known
	ToolName  *string   `json:"tool_name"`
}

// Tool returns the tool name, or "" when the entry names no tool.
func (e LogEntry) Tool() string {
	if e.ToolName == nil {
		return ""
	}
	return *e.ToolName
}

// HasTool reports whether the entry names a tool.
func (e LogEntry) HasTool() bool {
	return e.ToolName != nil
}

// Ptr returns a pointer to s. Used for the optional string fields.
func Ptr(s string) *string {
	return &s
}

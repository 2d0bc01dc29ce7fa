package parser

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/atikulmunna/deskwatch/internal/model"
)

// Parser converts one raw log line into a LogEntry.
// The boolean result is false when the line carries no entry.
type Parser interface {
	Parse(raw string) (model.LogEntry, bool)
}

// ForPath picks the dialect for a file by its extension.
// Structured session logs are .jsonl/.json; everything else is free text.
func ForPath(path string) Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".json":
		return NewJSONLParser()
	default:
		return NewTextParser()
	}
}

// ---------------------------------------------------------------------------
// Text Parser (debug logs)
// ---------------------------------------------------------------------------

// TextParser handles freeform debug log lines, optionally prefixed with a
// "YYYY-MM-DD HH:MM:SS" or ISO-8601 timestamp.
type TextParser struct{}

func NewTextParser() *TextParser { return &TextParser{} }

func (p *TextParser) Parse(raw string) (model.LogEntry, bool) {
	return ParseText(raw)
}

// ParseText parses a freeform line. Blank lines yield no entry.
func ParseText(raw string) (model.LogEntry, bool) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return model.LogEntry{}, false
	}

	ts, content := splitTimestamp(line)
	kind, tool := detectKind(content)

	return model.LogEntry{
		Timestamp: ts,
		Kind:      kind,
		Content:   content,
		ToolName:  tool,
	}, true
}

const timestampLen = 19

// splitTimestamp peels a leading date/time token off line.
func splitTimestamp(line string) (string, string) {
	if len(line) < timestampLen {
		return "", line
	}
	for i := 0; i < 4; i++ {
		if line[i] < '0' || line[i] > '9' {
			return "", line
		}
	}
	candidate := line[:timestampLen]
	if !strings.Contains(candidate, "-") {
		return "", line
	}
	if !strings.ContainsAny(candidate, ":T") {
		return "", line
	}
	// The byte after the token is its separator (space, or a zone like 'Z').
	rest := ""
	if len(line) > timestampLen+1 {
		rest = strings.TrimSpace(line[timestampLen+1:])
	}
	return candidate, rest
}

const (
	toolCallPrefix   = "Tool call: "
	toolResultPrefix = "Tool result: "
)

// errorMarkers are matched against lower-cased content.
var errorMarkers = []string{"[error]", "error:"}

var todoMarkers = []string{"TodoWrite", "Task:", "todo", "TODO"}

// knownTools is scanned in order; the first tool named anywhere in the
// content wins.
var knownTools = []string{
	"Read", "Write", "Edit", "Glob", "Grep", "Bash", "WebSearch", "WebFetch", "Task", "TodoWrite",
}

// detectKind classifies free text content by marker priority.
func detectKind(content string) (model.EntryKind, *string) {
	if rest, ok := strings.CutPrefix(content, toolCallPrefix); ok {
		return model.KindToolCall, firstToken(rest)
	}
	if rest, ok := strings.CutPrefix(content, toolResultPrefix); ok {
		return model.KindToolResult, firstToken(rest)
	}

	if containsAny(strings.ToLower(content), errorMarkers) {
		return model.KindError, nil
	}

	if containsAny(content, todoMarkers) {
		return model.KindTodoUpdate, model.Ptr("TodoWrite")
	}

	for _, tool := range knownTools {
		if strings.Contains(content, tool) {
			return model.KindToolCall, model.Ptr(tool)
		}
	}

	return model.KindMessage, nil
}

// ---------------------------------------------------------------------------
// JSONL Parser (session logs)
// ---------------------------------------------------------------------------

// JSONLParser handles one JSON object per line. Lines that are not a JSON
// object are handed to the text parser instead of being dropped.
type JSONLParser struct{}

func NewJSONLParser() *JSONLParser { return &JSONLParser{} }

func (p *JSONLParser) Parse(raw string) (model.LogEntry, bool) {
	return ParseStructured(raw)
}

// ParseStructured parses a session log record, falling back to ParseText
// when the line is not a JSON object.
func ParseStructured(raw string) (model.LogEntry, bool) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return model.LogEntry{}, false
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(line), &data); err != nil || data == nil {
		return ParseText(line)
	}

	entry := model.LogEntry{
		Kind: recordKind(data),
	}
	if v, ok := strField(data, "name", "tool"); ok {
		entry.ToolName = model.Ptr(v)
	}
	if v, ok := strField(data, "content", "message"); ok {
		entry.Content = v
	}
	if v, ok := strField(data, "timestamp"); ok {
		entry.Timestamp = v
	}
	if v, ok := strField(data, "agent_id", "sessionId", "session_id"); ok {
		entry.SourceID = model.Ptr(v)
	}

	return entry, true
}

// recordKind maps the record's "type" field onto an entry kind.
func recordKind(data map[string]any) model.EntryKind {
	t, _ := strField(data, "type")
	switch t {
	case "tool_use":
		return model.KindToolCall
	case "tool_result":
		return model.KindToolResult
	case "error":
		return model.KindError
	case "todo_update":
		return model.KindTodoUpdate
	case "session_start":
		return model.KindSessionStart
	case "session_end":
		return model.KindSessionEnd
	default:
		return model.KindMessage
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// strField looks up the first key present in data and reports its value if
// it is a string. A present key with a non-string value (including null)
// ends the lookup: {"content": [...]} yields nothing, not "message".
func strField(data map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		v, ok := data[k]
		if !ok {
			continue
		}
		s, ok := v.(string)
		return s, ok
	}
	return "", false
}

func firstToken(s string) *string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return model.Ptr(fields[0])
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/atikulmunna/deskwatch/internal/model"
)

func sampleBatch() model.Event {
	entry := model.LogEntry{
		Timestamp: "2024-01-01 10:00:00",
		Kind:      model.KindToolCall,
		Content:   "Tool call: Read",
		ToolName:  model.Ptr("Read"),
	}
	desk := model.NewRoleState(model.Reader)
	desk.Status = model.StatusWorking
	desk.CurrentTask = model.Ptr("Tool call: Read")
	return model.BatchUpdateEvent([]model.LogEntry{entry}, []model.RoleState{desk})
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	renderer := &JSONRenderer{enc: json.NewEncoder(&buf)}

	if err := renderer.Render(sampleBatch()); err != nil {
		t.Fatal(err)
	}

	var got struct {
		Type    string `json:"type"`
		Payload struct {
			Logs   []model.LogEntry  `json:"logs"`
			Agents []model.RoleState `json:"agents"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\nraw: %s", err, buf.String())
	}

	if got.Type != model.EventBatchUpdate {
		t.Errorf("expected BatchUpdate, got %s", got.Type)
	}
	if len(got.Payload.Logs) != 1 || got.Payload.Logs[0].Tool() != "Read" {
		t.Errorf("unexpected logs %+v", got.Payload.Logs)
	}
	if len(got.Payload.Agents) != 1 || got.Payload.Agents[0].ID != "reader" {
		t.Errorf("unexpected agents %+v", got.Payload.Agents)
	}
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	renderer := &TextRenderer{w: &buf}

	if err := renderer.Render(model.WatcherStatusEvent(true, "/home/u/.claude")); err != nil {
		t.Fatal(err)
	}
	if err := renderer.Render(sampleBatch()); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"/home/u/.claude", "2024-01-01 10:00:00", "tool_call", "Tool call: Read", "Reader", "working"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestTextRendererUnknownEvent(t *testing.T) {
	renderer := &TextRenderer{w: &bytes.Buffer{}}
	if err := renderer.Render(model.Event{Type: "Mystery"}); err == nil {
		t.Error("expected error for unknown event")
	}
}

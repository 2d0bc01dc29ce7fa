package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/atikulmunna/deskwatch/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// Renderer writes presentation events to an output stream.
type Renderer interface {
	Render(ev model.Event) error
}

// ---------------------------------------------------------------------------
// Text Renderer (colorized terminal output)
// ---------------------------------------------------------------------------

var (
	styleMessage = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
	styleTool    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))  // cyan
	styleResult  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))  // green
	styleTodo    = lipgloss.NewStyle().Foreground(lipgloss.Color("213")) // pink
	styleSession = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red bold
	styleDesk    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))            // yellow
	styleBanner  = lipgloss.NewStyle().Bold(true)
)

// TextRenderer prints one line per entry followed by the desks it moved.
type TextRenderer struct {
	w io.Writer
}

// NewTextRenderer returns a Renderer that writes colorized text to stdout.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{w: os.Stdout}
}

func (r *TextRenderer) Render(ev model.Event) error {
	switch p := ev.Payload.(type) {
	case model.WatcherStatus:
		state := "inactive"
		if p.Active {
			state = "active"
		}
		_, err := fmt.Fprintln(r.w, styleBanner.Render(fmt.Sprintf("watcher %s: %s", state, p.Path)))
		return err

	case model.BatchUpdate:
		for _, e := range p.Logs {
			if _, err := fmt.Fprintln(r.w, formatEntry(e)); err != nil {
				return err
			}
		}
		for _, s := range p.Agents {
			if _, err := fmt.Fprintln(r.w, formatDesk(s)); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
}

func formatEntry(e model.LogEntry) string {
	ts := e.Timestamp
	if ts == "" {
		ts = "-"
	}
	tag := styleKindTag(e.Kind)
	return fmt.Sprintf("%s %s %s", ts, tag, e.Content)
}

func formatDesk(s model.RoleState) string {
	task := ""
	if s.CurrentTask != nil {
		task = *s.CurrentTask
	}
	return styleDesk.Render(fmt.Sprintf("  ↳ %-8s %-8s %s", s.Category.Label(), s.Status, task))
}

func styleKindTag(kind model.EntryKind) string {
	padded := fmt.Sprintf("%-13s", kind)
	switch kind {
	case model.KindToolCall:
		return styleTool.Render(padded)
	case model.KindToolResult:
		return styleResult.Render(padded)
	case model.KindTodoUpdate:
		return styleTodo.Render(padded)
	case model.KindSessionStart, model.KindSessionEnd:
		return styleSession.Render(padded)
	case model.KindError:
		return styleError.Render(padded)
	default:
		return styleMessage.Render(padded)
	}
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

// JSONRenderer prints each event as a single JSON object per line.
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSONRenderer returns a Renderer that writes JSON lines to stdout.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(os.Stdout)}
}

func (r *JSONRenderer) Render(ev model.Event) error {
	return r.enc.Encode(ev)
}

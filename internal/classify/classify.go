// Package classify routes parsed log entries to role desks.
package classify

import (
	"strings"
	"unicode/utf8"

	"github.com/atikulmunna/deskwatch/internal/model"
)

// routes maps a lower-cased tool name to its desk. Bash is absent on
// purpose: it is split by command content in CategoryFor.
var routes = map[string]model.Category{
	"read": model.Reader,

	"glob":      model.Searcher,
	"grep":      model.Searcher,
	"websearch": model.Searcher,
	"webfetch":  model.Searcher,

	"write": model.Writer,

	"edit":         model.Editor,
	"notebookedit": model.Editor,
	"editnotebook": model.Editor,

	"todowrite": model.Planner,
	"task":      model.Planner,

	"askuserquestion": model.Support,
}

// testerKeywords move a bash command from the Runner to the Tester desk:
// version control, test runners and package managers.
var testerKeywords = []string{"git", "test", "npm", "pnpm", "yarn", "cargo"}

// DefaultCategory receives unknown tools and tool-less entries.
const DefaultCategory = model.Editor

// MaxTaskLen caps the current task summary, in runes.
const MaxTaskLen = 200

// CategoryFor returns the desk responsible for entry. It is total and pure.
func CategoryFor(entry model.LogEntry) model.Category {
	if !entry.HasTool() {
		if entry.Kind == model.KindError {
			return model.Support
		}
		return DefaultCategory
	}

	tool := strings.ToLower(strings.TrimSpace(entry.Tool()))
	if tool == "bash" {
		content := strings.ToLower(entry.Content)
		for _, kw := range testerKeywords {
			if strings.Contains(content, kw) {
				return model.Tester
			}
		}
		return model.Runner
	}

	if c, ok := routes[tool]; ok {
		return c
	}
	return DefaultCategory
}

// StatusFor derives the desk status from the entry kind.
func StatusFor(entry model.LogEntry) model.Status {
	switch entry.Kind {
	case model.KindToolCall:
		return model.StatusWorking
	case model.KindToolResult:
		return model.StatusIdle
	case model.KindError:
		return model.StatusError
	case model.KindMessage:
		return model.StatusThinking
	default:
		return model.StatusIdle
	}
}

// TaskSummary is the short human-readable label shown at the desk.
func TaskSummary(entry model.LogEntry) string {
	switch entry.Kind {
	case model.KindToolCall:
		return withTool("Tool call", entry)
	case model.KindToolResult:
		return withTool("Tool result", entry)
	case model.KindTodoUpdate:
		return "Todo update"
	case model.KindSessionStart:
		return "Session start"
	case model.KindSessionEnd:
		return "Session end"
	case model.KindError:
		return "Error"
	default:
		return truncate(entry.Content, MaxTaskLen)
	}
}

func withTool(verb string, entry model.LogEntry) string {
	if !entry.HasTool() {
		return verb
	}
	return verb + ": " + entry.Tool()
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// RoleStateFor classifies entry and builds the complete role state for its desk.
func RoleStateFor(entry model.LogEntry) model.RoleState {
	state := model.NewRoleState(CategoryFor(entry))
	state.Status = StatusFor(entry)
	state.CurrentTask = model.Ptr(truncate(TaskSummary(entry), MaxTaskLen))
	return state
}

// Roster returns an idle role state for every desk, in desk order.
func Roster() []model.RoleState {
	cats := model.AllCategories()
	out := make([]model.RoleState, 0, len(cats))
	for _, c := range cats {
		out = append(out, model.NewRoleState(c))
	}
	return out
}

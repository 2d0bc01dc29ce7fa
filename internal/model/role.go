package model

import (
	"encoding/json"
	"fmt"
)

// Category is a fixed role desk on the office floor. The set is closed:
// adding one means extending the table below and the classifier routes.
type Category int

const (
	Reader Category = iota
	Searcher
	Writer
	Editor
	Runner
	Tester
	Planner
	Support

	numCategories
)

// Position is a desk coordinate on the floor plan.
type Position struct {
	X float64
	Y float64
}

// MarshalJSON encodes a position as a [x, y] pair.
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var xy [2]float64
	if err := json.Unmarshal(data, &xy); err != nil {
		return err
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

const (
	deskLeft   = 60
	deskMiddle = 150
	deskRight  = 240

	rowA = 130
	rowB = 320
	rowC = 520
)

type categoryInfo struct {
	id    string
	label string
	pos   Position
}

var categories = [numCategories]categoryInfo{
	Reader:   {"reader", "Reader", Position{deskLeft, rowA}},
	Searcher: {"searcher", "Searcher", Position{deskMiddle, rowA}},
	Writer:   {"writer", "Writer", Position{deskRight, rowA}},
	Editor:   {"editor", "Editor", Position{deskLeft, rowB}},
	Runner:   {"runner", "Runner", Position{deskMiddle, rowB}},
	Tester:   {"tester", "Tester", Position{deskRight, rowB}},
	Planner:  {"planner", "Planner", Position{deskLeft, rowC}},
	Support:  {"support", "Support", Position{deskMiddle, rowC}},
}

// AllCategories returns every category in desk order.
func AllCategories() []Category {
	out := make([]Category, numCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

func (c Category) valid() bool { return c >= 0 && c < numCategories }

// ID is the stable identifier used as the role-state key.
func (c Category) ID() string {
	if !c.valid() {
		return ""
	}
	return categories[c].id
}

func (c Category) Label() string {
	if !c.valid() {
		return ""
	}
	return categories[c].label
}

// Position returns the fixed desk coordinate for c.
func (c Category) Position() Position {
	if !c.valid() {
		return Position{}
	}
	return categories[c].pos
}

func (c Category) String() string {
	if !c.valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categories[c].id
}

func (c Category) MarshalJSON() ([]byte, error) {
	if !c.valid() {
		return nil, fmt.Errorf("unknown category %d", int(c))
	}
	return json.Marshal(categories[c].id)
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	cat, ok := CategoryByID(s)
	if !ok {
		return fmt.Errorf("unknown category %q", s)
	}
	*c = cat
	return nil
}

// CategoryByID looks up a category by its stable identifier.
func CategoryByID(id string) (Category, bool) {
	for i, info := range categories {
		if info.id == id {
			return Category(i), true
		}
	}
	return 0, false
}

// Status is the activity status shown for a role.
type Status int

const (
	StatusIdle Status = iota
	StatusWorking
	StatusThinking
	StatusPassing
	StatusError
)

var statusNames = [...]string{
	StatusIdle:     "idle",
	StatusWorking:  "working",
	StatusThinking: "thinking",
	StatusPassing:  "passing",
	StatusError:    "error",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

func (s Status) MarshalJSON() ([]byte, error) {
	if s < 0 || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("unknown status %d", int(s))
	}
	return json.Marshal(statusNames[s])
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, n := range statusNames {
		if n == name {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", name)
}

// RoleState is the latest snapshot for one category. It is rebuilt from
// each classified entry rather than patched.
type RoleState struct {
	ID          string   `json:"id"`
	Category    Category `json:"agent_type"`
	Status      Status   `json:"status"`
	CurrentTask *string  `json:"current_task"`
	Position    Position `json:"desk_position"`
}

// NewRoleState returns an idle role state for c.
func NewRoleState(c Category) RoleState {
	return RoleState{
		ID:       c.ID(),
		Category: c,
		Status:   StatusIdle,
		Position: c.Position(),
	}
}

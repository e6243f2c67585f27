package models

import (
	"fmt"
	"strings"
)

// Status is the workflow state shared by epics and stories.
// It is persisted as the bare token, e.g. "InProgress".
type Status string

const (
	Open       Status = "Open"
	InProgress Status = "InProgress"
	Resolved   Status = "Resolved"
	Closed     Status = "Closed"
)

// Statuses returns all statuses in menu order (1..4).
func Statuses() []Status {
	return []Status{Open, InProgress, Resolved, Closed}
}

// Valid reports whether s is one of the four known tokens.
func (s Status) Valid() bool {
	switch s {
	case Open, InProgress, Resolved, Closed:
		return true
	default:
		return false
	}
}

// Label returns a human-readable form for menus and tables.
func (s Status) Label() string {
	switch s {
	case Open:
		return "OPEN"
	case InProgress:
		return "IN PROGRESS"
	case Resolved:
		return "RESOLVED"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ParseStatus accepts a status token (case-insensitive, "in_progress" and
// "in-progress" included) or its menu number "1".."4".
func ParseStatus(input string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.NewReplacer("_", "", "-", "", " ", "").Replace(normalized)

	switch normalized {
	case "1", "open":
		return Open, nil
	case "2", "inprogress":
		return InProgress, nil
	case "3", "resolved":
		return Resolved, nil
	case "4", "closed":
		return Closed, nil
	}
	return "", fmt.Errorf("unknown status %q (want Open, InProgress, Resolved or Closed)", input)
}

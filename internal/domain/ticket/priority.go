package ticket

import (
	"strings"

	"helpdesk/internal/errs"
)

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// DefaultPriority applies when a ticket is created without one.
const DefaultPriority = PriorityMedium

// Rank orders priorities for listings: 1 is the most urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

func (p Priority) String() string {
	return string(p)
}

func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

func ParsePriority(raw string) (Priority, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DefaultPriority, nil
	}
	for _, priority := range Priorities() {
		if strings.EqualFold(trimmed, string(priority)) {
			return priority, nil
		}
	}
	return "", errs.Validation("unknown priority %q", raw)
}

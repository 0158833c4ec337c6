package ticket

import (
	"strings"

	"helpdesk/internal/errs"
)

type Status string

const (
	StatusNew        Status = "New"
	StatusInProgress Status = "In Progress"
	StatusPending    Status = "Pending"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
)

var knownStatuses = []Status{
	StatusNew,
	StatusInProgress,
	StatusPending,
	StatusResolved,
	StatusClosed,
}

// Statuses lists every lifecycle status in workflow order.
func Statuses() []Status {
	out := make([]Status, len(knownStatuses))
	copy(out, knownStatuses)
	return out
}

// ArchivedStatuses is the terminal set that makes up the archived scope.
func ArchivedStatuses() []string {
	return []string{string(StatusResolved), string(StatusClosed)}
}

func (s Status) IsArchived() bool {
	return s == StatusResolved || s == StatusClosed
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus accepts the canonical names case-insensitively, plus
// snake/kebab spellings such as "in_progress".
func ParseStatus(raw string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)
	if normalized == "" {
		return "", errs.Validation("status is required")
	}

	for _, status := range knownStatuses {
		if strings.ToLower(string(status)) == normalized {
			return status, nil
		}
	}
	return "", errs.Validation("unknown status %q", raw)
}

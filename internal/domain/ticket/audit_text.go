package ticket

import "fmt"

// EventType tags an audit row.
type EventType string

const (
	EventTypeComment EventType = "comment"
	EventTypeEvent   EventType = "event"
)

const (
	DefaultSystemIdentity  = "System"
	DefaultUnassignedLabel = "Unassigned"

	CreatedText = "Ticket created."
)

func AssignedText(previous *string, next string, unassignedLabel string) string {
	from := unassignedLabel
	if previous != nil && *previous != "" {
		from = *previous
	}
	return fmt.Sprintf("Ticket assigned from '%s' to '%s'.", from, next)
}

func StatusChangedText(from Status, to Status) string {
	return fmt.Sprintf("Status changed from '%s' to '%s'.", from, to)
}

func ArticleLinkedText(articleID uint64, title string) string {
	return fmt.Sprintf("Knowledge base article #%d ('%s') linked.", articleID, title)
}

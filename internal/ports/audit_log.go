package ports

import (
	"context"

	"helpdesk/internal/domain/ticket"
)

type AuditEvent struct {
	EventID   uint64
	TicketID  uint64
	Author    string
	Text      string
	CreatedAt string
	EventType ticket.EventType
}

type AuditEventCreate struct {
	TicketID  uint64
	Author    string
	Text      string
	CreatedAt string
	EventType ticket.EventType
}

// AuditLog is append-only: there is no update or delete.
type AuditLog interface {
	Append(ctx context.Context, input AuditEventCreate) (AuditEvent, error)
	History(ctx context.Context, ticketID uint64) ([]AuditEvent, error)
	// LatestEventAt returns the newest created_at for the ticket, or ""
	// when it has no events.
	LatestEventAt(ctx context.Context, ticketID uint64) (string, error)
}

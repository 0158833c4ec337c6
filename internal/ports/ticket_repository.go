package ports

import (
	"context"

	"helpdesk/internal/domain/ticket"
)

// Ticket is the stored ticket row joined with the linked article title.
// SensitiveNotes is always ciphertext.
type Ticket struct {
	TicketID       uint64
	Title          string
	Description    string
	RequesterName  string
	RequesterEmail string
	RequesterPhone string
	Status         ticket.Status
	Priority       ticket.Priority
	CreatedAt      string
	UpdatedAt      string
	AssignedTo     *string
	SensitiveNotes *string
	KBArticleID    *uint64
	KBArticleTitle *string
}

type TicketCreate struct {
	Title          string
	Description    string
	RequesterName  string
	RequesterEmail string
	RequesterPhone string
	Status         ticket.Status
	Priority       ticket.Priority
	CreatedAt      string
	SensitiveNotes *string
}

// TicketListQuery carries already-parsed listing parameters. Identity is
// the caller, used only as a bound value for FilterMine.
type TicketListQuery struct {
	Scope    ticket.Scope
	FilterBy ticket.FilterBy
	Search   string
	SortBy   ticket.SortBy
	Identity string
}

// CountRow is one GROUP BY bucket. Key is nil for NULL groups.
type CountRow struct {
	Key   *string
	Count int64
}

type TicketReadRepository interface {
	GetTicket(ctx context.Context, ticketID uint64) (Ticket, error)
	ListTickets(ctx context.Context, query TicketListQuery) ([]Ticket, error)
	CountTicketsByArticle(ctx context.Context, articleID uint64) (int64, error)
	CountTicketsByStatus(ctx context.Context) ([]CountRow, error)
	CountTicketsByPriority(ctx context.Context) ([]CountRow, error)
	CountTicketsByAssignee(ctx context.Context) ([]CountRow, error)
}

type TicketRepository interface {
	TicketReadRepository
	CreateTicket(ctx context.Context, input TicketCreate) (Ticket, error)
	AssignTicket(ctx context.Context, ticketID uint64, assignee string, status ticket.Status, updatedAt string) error
	SetTicketStatus(ctx context.Context, ticketID uint64, status ticket.Status, updatedAt string) error
	SetTicketArticle(ctx context.Context, ticketID uint64, articleID uint64, updatedAt string) error
}

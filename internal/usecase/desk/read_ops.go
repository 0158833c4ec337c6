package desk

import (
	"context"
	"strings"

	"helpdesk/internal/domain/ticket"
	"helpdesk/internal/ports"
)

// GetTicket returns the ticket with its linked article title, if any.
func (s *Service) GetTicket(ctx context.Context, ticketID uint64) (ports.Ticket, error) {
	if err := s.checkReady(ctx); err != nil {
		return ports.Ticket{}, err
	}
	return s.tickets.GetTicket(ctx, ticketID)
}

// ListTickets parses raw listing parameters. Unknown scope is rejected;
// unknown filter and sort values fall back to their defaults.
func (s *Service) ListTickets(ctx context.Context, input ListTicketsInput) ([]ports.Ticket, error) {
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}

	scope, err := ticket.ParseScope(input.Scope)
	if err != nil {
		return nil, err
	}

	return s.tickets.ListTickets(ctx, ports.TicketListQuery{
		Scope:    scope,
		FilterBy: ticket.ParseFilterBy(input.FilterBy),
		Search:   strings.TrimSpace(input.Search),
		SortBy:   ticket.ParseSortBy(input.SortBy),
		Identity: strings.TrimSpace(input.Identity),
	})
}

// History returns the audit trail oldest first.
func (s *Service) History(ctx context.Context, ticketID uint64) ([]ports.AuditEvent, error) {
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}
	if _, err := s.tickets.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.audit.History(ctx, ticketID)
}

// OpenTicket loads everything a ticket page shows. A wrong or missing
// secret shows up as NotesFailed, never as an error.
func (s *Service) OpenTicket(ctx context.Context, ticketID uint64, secret []byte) (TicketDetail, error) {
	if err := s.checkReady(ctx); err != nil {
		return TicketDetail{}, err
	}

	current, err := s.tickets.GetTicket(ctx, ticketID)
	if err != nil {
		return TicketDetail{}, err
	}
	history, err := s.audit.History(ctx, ticketID)
	if err != nil {
		return TicketDetail{}, err
	}

	return TicketDetail{
		Ticket:  current,
		Notes:   s.openNotes(current.SensitiveNotes, secret),
		History: history,
	}, nil
}

func (s *Service) openNotes(ciphertext *string, secret []byte) Notes {
	if ciphertext == nil || *ciphertext == "" {
		return Notes{State: NotesNone}
	}
	if s.cipher == nil {
		return Notes{State: NotesFailed}
	}

	plaintext, ok := s.cipher.Decrypt(ciphertext, secret)
	if !ok {
		return Notes{State: NotesFailed, Text: plaintext}
	}
	return Notes{State: NotesDecrypted, Text: plaintext}
}

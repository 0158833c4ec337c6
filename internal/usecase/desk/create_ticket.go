package desk

import (
	"context"
	"log/slog"
	"strings"

	"helpdesk/internal/bootstrap/logging"
	"helpdesk/internal/domain/ticket"
	"helpdesk/internal/errs"
	"helpdesk/internal/ports"
	"helpdesk/internal/usecase/validate"
)

// CreateTicket stores a New ticket and its "Ticket created." event in one
// transaction. Notes are encrypted before anything is written.
func (s *Service) CreateTicket(ctx context.Context, input CreateTicketInput) (uint64, error) {
	if err := s.checkWritable(ctx); err != nil {
		return 0, err
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.RequesterName = strings.TrimSpace(input.RequesterName)
	input.RequesterEmail = strings.TrimSpace(input.RequesterEmail)
	input.RequesterPhone = strings.TrimSpace(input.RequesterPhone)
	if err := validate.Struct(input); err != nil {
		return 0, err
	}

	priority, err := ticket.ParsePriority(input.Priority)
	if err != nil {
		return 0, err
	}

	var notes *string
	if strings.TrimSpace(input.SensitiveNotes) != "" {
		if len(input.Secret) == 0 {
			return 0, errs.Validation("master secret is required to store sensitive notes")
		}
		if s.cipher == nil {
			return 0, errs.Validation("notes cipher is not configured")
		}
		notes, err = s.cipher.Encrypt(input.SensitiveNotes, input.Secret)
		if err != nil {
			return 0, errs.Wrap(err, "encrypt sensitive notes")
		}
	}

	now := s.stamp()
	var created ports.Ticket
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		created, err = s.tickets.CreateTicket(txCtx, ports.TicketCreate{
			Title:          input.Title,
			Description:    input.Description,
			RequesterName:  input.RequesterName,
			RequesterEmail: input.RequesterEmail,
			RequesterPhone: input.RequesterPhone,
			Status:         ticket.StatusNew,
			Priority:       priority,
			CreatedAt:      now,
			SensitiveNotes: notes,
		})
		if err != nil {
			return err
		}
		return s.appendEvent(txCtx, created.TicketID, s.opts.SystemIdentity, ticket.CreatedText, ticket.EventTypeEvent, now)
	}); err != nil {
		return 0, errs.Wrap(err, "create ticket")
	}

	s.dropReportCache(ctx)
	logging.Info(logCtx(ctx, created.TicketID), "ticket created", slog.String("priority", string(priority)))
	return created.TicketID, nil
}

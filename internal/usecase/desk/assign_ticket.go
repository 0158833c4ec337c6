package desk

import (
	"context"
	"log/slog"
	"strings"

	"helpdesk/internal/bootstrap/logging"
	"helpdesk/internal/domain/ticket"
	"helpdesk/internal/errs"
)

// AssignTicket hands the ticket to assignee and always reopens it as
// In Progress. The assignee authors the audit event.
func (s *Service) AssignTicket(ctx context.Context, ticketID uint64, assignee string) error {
	if err := s.checkWritable(ctx); err != nil {
		return err
	}
	if ticketID == 0 {
		return errs.Validation("ticket id is required")
	}
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return errs.Validation("assignee is required")
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.tickets.GetTicket(txCtx, ticketID)
		if err != nil {
			return err
		}

		now, err := s.eventStamp(txCtx, ticketID, current.UpdatedAt)
		if err != nil {
			return err
		}
		if err := s.tickets.AssignTicket(txCtx, ticketID, assignee, ticket.StatusInProgress, now); err != nil {
			return err
		}
		text := ticket.AssignedText(current.AssignedTo, assignee, s.opts.UnassignedLabel)
		return s.appendEvent(txCtx, ticketID, assignee, text, ticket.EventTypeEvent, now)
	}); err != nil {
		return errs.Wrapf(err, "assign ticket %s", ticket.FormatRef(ticketID))
	}

	s.dropReportCache(ctx)
	logging.Info(logCtx(ctx, ticketID), "ticket assigned", slog.String("assignee", assignee))
	return nil
}

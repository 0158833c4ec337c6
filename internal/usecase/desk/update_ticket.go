package desk

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"helpdesk/internal/bootstrap/logging"
	"helpdesk/internal/domain/ticket"
	"helpdesk/internal/errs"
	"helpdesk/internal/usecase/validate"
)

// UpdateTicket applies an optional status change and an optional comment.
// Each produces its own audit row; both commit together or not at all.
func (s *Service) UpdateTicket(ctx context.Context, input UpdateTicketInput) error {
	if err := s.checkWritable(ctx); err != nil {
		return err
	}

	input.Author = strings.TrimSpace(input.Author)
	input.Comment = strings.TrimSpace(input.Comment)
	if err := validate.Struct(input); err != nil {
		return err
	}
	if input.Comment != "" && input.CommentTemplateID != 0 {
		return errs.Validation("comment and comment_template_id are mutually exclusive")
	}

	var target ticket.Status
	if strings.TrimSpace(input.Status) != "" {
		parsed, err := ticket.ParseStatus(input.Status)
		if err != nil {
			return err
		}
		target = parsed
	}

	statusChanged := false
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.tickets.GetTicket(txCtx, input.TicketID)
		if err != nil {
			return err
		}

		comment := input.Comment
		if input.CommentTemplateID != 0 {
			if s.knowledge == nil {
				return errors.New("knowledge repository is required")
			}
			template, err := s.knowledge.GetTemplate(txCtx, input.CommentTemplateID)
			if err != nil {
				return err
			}
			comment = strings.TrimSpace(template.Content)
		}

		now, err := s.eventStamp(txCtx, input.TicketID, current.UpdatedAt)
		if err != nil {
			return err
		}
		if target != "" && target != current.Status {
			if err := s.tickets.SetTicketStatus(txCtx, input.TicketID, target, now); err != nil {
				return err
			}
			text := ticket.StatusChangedText(current.Status, target)
			if err := s.appendEvent(txCtx, input.TicketID, input.Author, text, ticket.EventTypeEvent, now); err != nil {
				return err
			}
			statusChanged = true
		}

		if comment != "" {
			return s.appendEvent(txCtx, input.TicketID, input.Author, comment, ticket.EventTypeComment, now)
		}
		return nil
	}); err != nil {
		return errs.Wrapf(err, "update ticket %s", ticket.FormatRef(input.TicketID))
	}

	if statusChanged {
		s.dropReportCache(ctx)
		logging.Info(logCtx(ctx, input.TicketID), "ticket status changed", slog.String("status", string(target)))
	}
	return nil
}

// AddComment records a comment without touching the status.
func (s *Service) AddComment(ctx context.Context, ticketID uint64, author string, text string) error {
	if strings.TrimSpace(text) == "" {
		return errs.Validation("comment is required")
	}
	return s.UpdateTicket(ctx, UpdateTicketInput{
		TicketID: ticketID,
		Comment:  text,
		Author:   author,
	})
}

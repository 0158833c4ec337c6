package desk

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"helpdesk/internal/bootstrap/logging"
	"helpdesk/internal/domain/ticket"
	"helpdesk/internal/errs"
)

func (s *Service) LinkKBArticle(ctx context.Context, ticketID uint64, articleID uint64, author string) error {
	if err := s.checkWritable(ctx); err != nil {
		return err
	}
	if s.knowledge == nil {
		return errors.New("knowledge repository is required")
	}
	if ticketID == 0 || articleID == 0 {
		return errs.Validation("ticket id and article id are required")
	}
	author = strings.TrimSpace(author)
	if author == "" {
		return errs.Validation("author is required")
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.tickets.GetTicket(txCtx, ticketID)
		if err != nil {
			return err
		}
		article, err := s.knowledge.GetArticle(txCtx, articleID)
		if err != nil {
			return err
		}

		now, err := s.eventStamp(txCtx, ticketID, current.UpdatedAt)
		if err != nil {
			return err
		}
		if err := s.tickets.SetTicketArticle(txCtx, ticketID, articleID, now); err != nil {
			return err
		}
		return s.appendEvent(txCtx, ticketID, author, ticket.ArticleLinkedText(articleID, article.Title), ticket.EventTypeEvent, now)
	}); err != nil {
		return errs.Wrapf(err, "link kb article to ticket %s", ticket.FormatRef(ticketID))
	}

	logging.Info(logCtx(ctx, ticketID), "kb article linked", slog.Uint64("article_id", articleID))
	return nil
}

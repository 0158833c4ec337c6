package knowledge

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"helpdesk/internal/bootstrap/logging"
	"helpdesk/internal/errs"
	"helpdesk/internal/ports"
)

// Service owns KB articles and comment templates.
type Service struct {
	repo     ports.KnowledgeRepository
	tickets  ports.TicketReadRepository
	uow      ports.UnitOfWork
	renderer ports.ArticleRenderer
	cache    ports.Cache
	now      func() time.Time
}

func NewService(
	repo ports.KnowledgeRepository,
	tickets ports.TicketReadRepository,
	uow ports.UnitOfWork,
	renderer ports.ArticleRenderer,
	cache ports.Cache,
) *Service {
	return &Service{
		repo:     repo,
		tickets:  tickets,
		uow:      uow,
		renderer: renderer,
		cache:    cache,
		now:      time.Now,
	}
}

type ArticleInput struct {
	Title    string `json:"title" toml:"title" validate:"required"`
	Category string `json:"category" toml:"category" validate:"required"`
	Content  string `json:"content" toml:"content" validate:"required"`
}

type TemplateInput struct {
	Title   string `json:"title" toml:"title" validate:"required"`
	Content string `json:"content" toml:"content" validate:"required"`
}

// CategoryGroup is one heading of the KB index.
type CategoryGroup struct {
	Category string
	Articles []ports.KBArticle
}

func (s *Service) checkReady(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errors.New("knowledge repository is required")
	}
	return nil
}

func (s *Service) checkWritable(ctx context.Context) error {
	if err := s.checkReady(ctx); err != nil {
		return err
	}
	if s.uow == nil {
		return errors.New("unit of work is required")
	}
	return nil
}

func (s *Service) dropCategoryCounts(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, ports.CacheKeyKBCategoryCounts); err != nil {
		logging.Warn(
			logging.WithComponent(ctx, "usecase.knowledge"),
			"drop report cache failed",
			slog.Any("err", errs.Loggable(err)),
		)
	}
}

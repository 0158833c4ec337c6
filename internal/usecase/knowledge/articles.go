package knowledge

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"helpdesk/internal/bootstrap/logging"
	"helpdesk/internal/errs"
	"helpdesk/internal/ports"
	"helpdesk/internal/usecase/validate"
)

func normalizeArticle(input ArticleInput) (ArticleInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Category = strings.TrimSpace(input.Category)
	input.Content = strings.TrimSpace(input.Content)
	if err := validate.Struct(input); err != nil {
		return ArticleInput{}, err
	}
	return input, nil
}

func (s *Service) CreateArticle(ctx context.Context, input ArticleInput) (uint64, error) {
	if err := s.checkWritable(ctx); err != nil {
		return 0, err
	}
	input, err := normalizeArticle(input)
	if err != nil {
		return 0, err
	}

	created, err := s.repo.CreateArticle(ctx, ports.KBArticleWrite{
		Title:     input.Title,
		Category:  input.Category,
		Content:   input.Content,
		Timestamp: ports.FormatTimestamp(s.now()),
	})
	if err != nil {
		return 0, errs.Wrap(err, "create kb article")
	}

	s.dropCategoryCounts(ctx)
	logging.Info(
		logging.WithComponent(ctx, "usecase.knowledge"),
		"kb article created",
		slog.Uint64("article_id", created.ArticleID),
		slog.String("category", created.Category),
	)
	return created.ArticleID, nil
}

func (s *Service) GetArticle(ctx context.Context, articleID uint64) (ports.KBArticle, error) {
	if err := s.checkReady(ctx); err != nil {
		return ports.KBArticle{}, err
	}
	return s.repo.GetArticle(ctx, articleID)
}

// ListArticles is ordered by category, then title.
func (s *Service) ListArticles(ctx context.Context) ([]ports.KBArticle, error) {
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListArticles(ctx)
}

func (s *Service) ArticlesByCategory(ctx context.Context) ([]CategoryGroup, error) {
	articles, err := s.ListArticles(ctx)
	if err != nil {
		return nil, err
	}

	groups := make([]CategoryGroup, 0)
	for _, article := range articles {
		if len(groups) == 0 || groups[len(groups)-1].Category != article.Category {
			groups = append(groups, CategoryGroup{Category: article.Category})
		}
		last := &groups[len(groups)-1]
		last.Articles = append(last.Articles, article)
	}
	return groups, nil
}

func (s *Service) UpdateArticle(ctx context.Context, articleID uint64, input ArticleInput) error {
	if err := s.checkWritable(ctx); err != nil {
		return err
	}
	input, err := normalizeArticle(input)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateArticle(ctx, articleID, ports.KBArticleWrite{
		Title:     input.Title,
		Category:  input.Category,
		Content:   input.Content,
		Timestamp: ports.FormatTimestamp(s.now()),
	}); err != nil {
		return errs.Wrapf(err, "update kb article %d", articleID)
	}

	s.dropCategoryCounts(ctx)
	return nil
}

// DeleteArticle refuses while any ticket still links the article. The
// check and the delete share one transaction.
func (s *Service) DeleteArticle(ctx context.Context, articleID uint64) error {
	if err := s.checkWritable(ctx); err != nil {
		return err
	}
	if s.tickets == nil {
		return errors.New("ticket repository is required")
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetArticle(txCtx, articleID); err != nil {
			return err
		}

		linked, err := s.tickets.CountTicketsByArticle(txCtx, articleID)
		if err != nil {
			return err
		}
		if linked > 0 {
			return errs.Conflict("kb article %d is linked to %d ticket(s)", articleID, linked)
		}

		return s.repo.DeleteArticle(txCtx, articleID)
	}); err != nil {
		return errs.Wrapf(err, "delete kb article %d", articleID)
	}

	s.dropCategoryCounts(ctx)
	logging.Info(
		logging.WithComponent(ctx, "usecase.knowledge"),
		"kb article deleted",
		slog.Uint64("article_id", articleID),
	)
	return nil
}

// RenderArticle returns the article body as sanitized HTML.
func (s *Service) RenderArticle(ctx context.Context, articleID uint64) (string, error) {
	if err := s.checkReady(ctx); err != nil {
		return "", err
	}
	if s.renderer == nil {
		return "", errors.New("article renderer is required")
	}

	article, err := s.repo.GetArticle(ctx, articleID)
	if err != nil {
		return "", err
	}

	html, err := s.renderer.Render(article.Content)
	if err != nil {
		return "", errs.Wrapf(err, "render kb article %d", articleID)
	}
	return html, nil
}

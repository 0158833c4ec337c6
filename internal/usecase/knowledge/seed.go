package knowledge

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"helpdesk/internal/bootstrap/logging"
	"helpdesk/internal/errs"
	"helpdesk/internal/ports"
)

const seedVersion = 1

// seedFile is the TOML layout accepted by ImportSeed:
//
//	version = 1
//
//	[[articles]]
//	title = "Clearing paper jams"
//	category = "Printers"
//	content = "Open tray 2 ..."
//
//	[[templates]]
//	title = "Waiting for requester"
//	content = "..."
type seedFile struct {
	Version   int             `toml:"version"`
	Articles  []ArticleInput  `toml:"articles"`
	Templates []TemplateInput `toml:"templates"`
}

type SeedResult struct {
	Articles  int
	Templates int
}

func (s *Service) ImportSeedFile(ctx context.Context, path string) (SeedResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return SeedResult{}, errs.Validation("seed file is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return SeedResult{}, errs.Wrapf(err, "read seed file %q", path)
	}
	return s.ImportSeed(ctx, raw)
}

// ImportSeed validates every entry first, then creates all of them in one
// transaction.
func (s *Service) ImportSeed(ctx context.Context, raw []byte) (SeedResult, error) {
	if err := s.checkWritable(ctx); err != nil {
		return SeedResult{}, err
	}

	var seed seedFile
	if err := toml.Unmarshal(raw, &seed); err != nil {
		return SeedResult{}, errs.Validation("parse seed: %v", err)
	}
	if seed.Version != seedVersion {
		return SeedResult{}, errs.Validation("unsupported seed version %d: expected version = %d", seed.Version, seedVersion)
	}

	articles := make([]ArticleInput, 0, len(seed.Articles))
	for i, article := range seed.Articles {
		normalized, err := normalizeArticle(article)
		if err != nil {
			return SeedResult{}, errs.Wrapf(err, "articles[%d]", i)
		}
		articles = append(articles, normalized)
	}
	templates := make([]TemplateInput, 0, len(seed.Templates))
	for i, template := range seed.Templates {
		normalized, err := normalizeTemplate(template)
		if err != nil {
			return SeedResult{}, errs.Wrapf(err, "templates[%d]", i)
		}
		templates = append(templates, normalized)
	}

	timestamp := ports.FormatTimestamp(s.now())
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		for _, article := range articles {
			if _, err := s.repo.CreateArticle(txCtx, ports.KBArticleWrite{
				Title:     article.Title,
				Category:  article.Category,
				Content:   article.Content,
				Timestamp: timestamp,
			}); err != nil {
				return err
			}
		}
		for _, template := range templates {
			if _, err := s.repo.CreateTemplate(txCtx, ports.TemplateWrite{Title: template.Title, Content: template.Content}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return SeedResult{}, errs.Wrap(err, "import seed")
	}

	result := SeedResult{Articles: len(articles), Templates: len(templates)}
	if result.Articles > 0 {
		s.dropCategoryCounts(ctx)
	}
	logging.Info(
		logging.WithComponent(ctx, "usecase.knowledge"),
		"seed imported",
		slog.Int("articles", result.Articles),
		slog.Int("templates", result.Templates),
	)
	return result, nil
}

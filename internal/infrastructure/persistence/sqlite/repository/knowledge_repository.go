package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"helpdesk/internal/errs"
	"helpdesk/internal/infrastructure/persistence/sqlite/model"
	"helpdesk/internal/ports"
)

// KnowledgeRepository stores KB articles and comment templates.
type KnowledgeRepository struct {
	db *gorm.DB
}

var _ ports.KnowledgeRepository = (*KnowledgeRepository)(nil)

func NewKnowledgeRepository(db *gorm.DB) *KnowledgeRepository {
	return &KnowledgeRepository{db: db}
}

func (r *KnowledgeRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	return dbFromContext(ctx, r.db)
}

func (r *KnowledgeRepository) CreateArticle(ctx context.Context, input ports.KBArticleWrite) (ports.KBArticle, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.KBArticle{}, err
	}

	row := model.KBArticle{
		Title:     input.Title,
		Category:  input.Category,
		Content:   input.Content,
		CreatedAt: input.Timestamp,
		UpdatedAt: input.Timestamp,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.KBArticle{}, errs.Storage(err, "insert kb article")
	}
	return mapArticle(row), nil
}

func (r *KnowledgeRepository) GetArticle(ctx context.Context, articleID uint64) (ports.KBArticle, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.KBArticle{}, err
	}

	var row model.KBArticle
	if err := db.Where("id = ?", articleID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.KBArticle{}, errs.NotFound("kb article", articleID)
		}
		return ports.KBArticle{}, errs.Storage(err, "query kb article")
	}
	return mapArticle(row), nil
}

func (r *KnowledgeRepository) ListArticles(ctx context.Context) ([]ports.KBArticle, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.KBArticle
	if err := db.Order("category asc").Order("title asc").Order("id asc").Find(&rows).Error; err != nil {
		return nil, errs.Storage(err, "query kb articles")
	}

	items := make([]ports.KBArticle, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapArticle(row))
	}
	return items, nil
}

func (r *KnowledgeRepository) UpdateArticle(ctx context.Context, articleID uint64, input ports.KBArticleWrite) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.KBArticle{}).Where("id = ?", articleID).Updates(map[string]any{
		"title":      input.Title,
		"category":   input.Category,
		"content":    input.Content,
		"updated_at": input.Timestamp,
	})
	if result.Error != nil {
		return errs.Storage(result.Error, "update kb article")
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("kb article", articleID)
	}
	return nil
}

// DeleteArticle does not check for linked tickets; the caller does that
// in the same transaction. The schema's ON DELETE SET NULL is the last
// line, not the rule.
func (r *KnowledgeRepository) DeleteArticle(ctx context.Context, articleID uint64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Where("id = ?", articleID).Delete(&model.KBArticle{})
	if result.Error != nil {
		return errs.Storage(result.Error, "delete kb article")
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("kb article", articleID)
	}
	return nil
}

func (r *KnowledgeRepository) CountArticlesByCategory(ctx context.Context) ([]ports.CountRow, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []countRow
	if err := db.Model(&model.KBArticle{}).
		Select("category AS bucket, COUNT(*) AS count").
		Group("category").
		Order("category ASC").
		Scan(&rows).Error; err != nil {
		return nil, errs.Storage(err, "count kb articles by category")
	}
	return mapCountRows(rows), nil
}

func (r *KnowledgeRepository) CreateTemplate(ctx context.Context, input ports.TemplateWrite) (ports.Template, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Template{}, err
	}

	row := model.Template{Title: input.Title, Content: input.Content}
	if err := db.Create(&row).Error; err != nil {
		return ports.Template{}, errs.Storage(err, "insert template")
	}
	return mapTemplate(row), nil
}

func (r *KnowledgeRepository) GetTemplate(ctx context.Context, templateID uint64) (ports.Template, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Template{}, err
	}

	var row model.Template
	if err := db.Where("id = ?", templateID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Template{}, errs.NotFound("template", templateID)
		}
		return ports.Template{}, errs.Storage(err, "query template")
	}
	return mapTemplate(row), nil
}

func (r *KnowledgeRepository) ListTemplates(ctx context.Context) ([]ports.Template, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Template
	if err := db.Order("title asc").Order("id asc").Find(&rows).Error; err != nil {
		return nil, errs.Storage(err, "query templates")
	}

	items := make([]ports.Template, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapTemplate(row))
	}
	return items, nil
}

func (r *KnowledgeRepository) UpdateTemplate(ctx context.Context, templateID uint64, input ports.TemplateWrite) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Template{}).Where("id = ?", templateID).Updates(map[string]any{
		"title":   input.Title,
		"content": input.Content,
	})
	if result.Error != nil {
		return errs.Storage(result.Error, "update template")
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("template", templateID)
	}
	return nil
}

func (r *KnowledgeRepository) DeleteTemplate(ctx context.Context, templateID uint64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Where("id = ?", templateID).Delete(&model.Template{})
	if result.Error != nil {
		return errs.Storage(result.Error, "delete template")
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("template", templateID)
	}
	return nil
}

func mapArticle(row model.KBArticle) ports.KBArticle {
	return ports.KBArticle{
		ArticleID: row.ArticleID,
		Title:     row.Title,
		Category:  row.Category,
		Content:   row.Content,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func mapTemplate(row model.Template) ports.Template {
	return ports.Template{
		TemplateID: row.TemplateID,
		Title:      row.Title,
		Content:    row.Content,
	}
}

package ports

import "context"

type KBArticle struct {
	ArticleID uint64
	Title     string
	Category  string
	Content   string
	CreatedAt string
	UpdatedAt string
}

type KBArticleWrite struct {
	Title     string
	Category  string
	Content   string
	Timestamp string
}

type Template struct {
	TemplateID uint64
	Title      string
	Content    string
}

type TemplateWrite struct {
	Title   string
	Content string
}

type KnowledgeRepository interface {
	CreateArticle(ctx context.Context, input KBArticleWrite) (KBArticle, error)
	GetArticle(ctx context.Context, articleID uint64) (KBArticle, error)
	ListArticles(ctx context.Context) ([]KBArticle, error)
	UpdateArticle(ctx context.Context, articleID uint64, input KBArticleWrite) error
	DeleteArticle(ctx context.Context, articleID uint64) error
	CountArticlesByCategory(ctx context.Context) ([]CountRow, error)

	CreateTemplate(ctx context.Context, input TemplateWrite) (Template, error)
	GetTemplate(ctx context.Context, templateID uint64) (Template, error)
	ListTemplates(ctx context.Context) ([]Template, error)
	UpdateTemplate(ctx context.Context, templateID uint64, input TemplateWrite) error
	DeleteTemplate(ctx context.Context, templateID uint64) error
}

package model

type KBArticle struct {
	ArticleID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Title     string `gorm:"column:title;type:text;not null"`
	Category  string `gorm:"column:category;type:text;not null;index:idx_kb_articles_category"`
	Content   string `gorm:"column:content;type:text;not null"`
	CreatedAt string `gorm:"column:created_at;type:text;not null"`
	UpdatedAt string `gorm:"column:updated_at;type:text;not null"`
}

func (KBArticle) TableName() string {
	return "kb_articles"
}

package model

type Template struct {
	TemplateID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Title      string `gorm:"column:title;type:text;not null"`
	Content    string `gorm:"column:content;type:text;not null"`
}

func (Template) TableName() string {
	return "templates"
}

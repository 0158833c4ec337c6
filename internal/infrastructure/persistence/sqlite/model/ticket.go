package model

type Ticket struct {
	TicketID       uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	Title          string     `gorm:"column:title;type:text;not null"`
	Description    string     `gorm:"column:description;type:text"`
	RequesterName  string     `gorm:"column:requester_name;type:text"`
	RequesterEmail string     `gorm:"column:requester_email;type:text"`
	RequesterPhone string     `gorm:"column:requester_phone;type:text"`
	Status         string     `gorm:"column:status;type:text;not null;index:idx_tickets_status"`
	Priority       string     `gorm:"column:priority;type:text;not null"`
	CreatedAt      string     `gorm:"column:created_at;type:text;index:idx_tickets_created_at"`
	UpdatedAt      string     `gorm:"column:updated_at;type:text"`
	AssignedTo     *string    `gorm:"column:assigned_to;type:text"`
	SensitiveNotes *string    `gorm:"column:sensitive_notes;type:text"`
	KBArticleID    *uint64    `gorm:"column:kb_article_id"`
	KBArticle      *KBArticle `gorm:"foreignKey:KBArticleID;references:ArticleID;constraint:OnDelete:SET NULL"`
}

func (Ticket) TableName() string {
	return "tickets"
}

// TicketWithArticle is the read shape of tickets LEFT JOIN kb_articles.
type TicketWithArticle struct {
	Ticket
	KBArticleTitle *string `gorm:"column:kb_article_title"`
}

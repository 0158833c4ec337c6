package model

// Comment is one audit row. The table keeps its historical name.
type Comment struct {
	CommentID uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	TicketID  uint64  `gorm:"column:ticket_id;not null;index:idx_comments_ticket_id"`
	Ticket    *Ticket `gorm:"foreignKey:TicketID;references:TicketID;constraint:OnDelete:CASCADE"`
	Author    string  `gorm:"column:author;type:text;not null"`
	Text      string  `gorm:"column:comment_text;type:text;not null"`
	CreatedAt string  `gorm:"column:created_at;type:text;not null"`
	EventType string  `gorm:"column:event_type;type:text;default:'comment'"`
}

func (Comment) TableName() string {
	return "comments"
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"helpdesk/internal/domain/ticket"
	"helpdesk/internal/errs"
	"helpdesk/internal/infrastructure/persistence/sqlite/model"
	"helpdesk/internal/ports"
)

// AuditLogRepository stores audit events in the comments table. It only
// inserts and reads.
type AuditLogRepository struct {
	db *gorm.DB
}

var _ ports.AuditLog = (*AuditLogRepository)(nil)

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Append(ctx context.Context, input ports.AuditEventCreate) (ports.AuditEvent, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.AuditEvent{}, err
	}

	eventType := input.EventType
	if eventType == "" {
		eventType = ticket.EventTypeEvent
	}

	row := model.Comment{
		TicketID:  input.TicketID,
		Author:    input.Author,
		Text:      input.Text,
		CreatedAt: input.CreatedAt,
		EventType: string(eventType),
	}
	if err := db.Omit("Ticket").Create(&row).Error; err != nil {
		return ports.AuditEvent{}, errs.Storage(err, "insert audit event")
	}
	return mapAuditEvent(row), nil
}

func (r *AuditLogRepository) History(ctx context.Context, ticketID uint64) ([]ports.AuditEvent, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.Comment
	if err := db.
		Where("ticket_id = ?", ticketID).
		Order("created_at asc").
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Storage(err, "query audit history")
	}

	items := make([]ports.AuditEvent, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapAuditEvent(row))
	}
	return items, nil
}

func (r *AuditLogRepository) LatestEventAt(ctx context.Context, ticketID uint64) (string, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return "", err
	}

	var rows []model.Comment
	if err := db.
		Select("created_at").
		Where("ticket_id = ?", ticketID).
		Order("created_at desc").
		Order("id desc").
		Limit(1).
		Find(&rows).Error; err != nil {
		return "", errs.Storage(err, "query latest audit event")
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].CreatedAt, nil
}

func mapAuditEvent(row model.Comment) ports.AuditEvent {
	return ports.AuditEvent{
		EventID:   row.CommentID,
		TicketID:  row.TicketID,
		Author:    row.Author,
		Text:      row.Text,
		CreatedAt: row.CreatedAt,
		EventType: ticket.EventType(row.EventType),
	}
}

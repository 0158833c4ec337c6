package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"helpdesk/internal/domain/ticket"
	"helpdesk/internal/errs"
	"helpdesk/internal/infrastructure/persistence/sqlite/model"
	"helpdesk/internal/infrastructure/persistence/sqlite/query"
	"helpdesk/internal/ports"
)

const (
	ticketColumns = "tickets.*, kb_articles.title AS kb_article_title"
	articleJoin   = "LEFT JOIN kb_articles ON kb_articles.id = tickets.kb_article_id"
)

type TicketRepository struct {
	db *gorm.DB
}

var _ ports.TicketRepository = (*TicketRepository)(nil)

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	return dbFromContext(ctx, r.db)
}

func (r *TicketRepository) GetTicket(ctx context.Context, ticketID uint64) (ports.Ticket, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Ticket{}, err
	}
	return getTicketByID(db, ticketID)
}

func (r *TicketRepository) ListTickets(ctx context.Context, q ports.TicketListQuery) ([]ports.Ticket, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	plan := query.BuildTicketList(q)
	var rows []model.TicketWithArticle
	if err := plan.Apply(db.Table("tickets").Select(ticketColumns).Joins(articleJoin)).Scan(&rows).Error; err != nil {
		return nil, errs.Storage(err, "query tickets")
	}

	items := make([]ports.Ticket, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapTicket(row))
	}
	return items, nil
}

func (r *TicketRepository) CountTicketsByArticle(ctx context.Context, articleID uint64) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.Ticket{}).Where("kb_article_id = ?", articleID).Count(&count).Error; err != nil {
		return 0, errs.Storage(err, "count tickets by article")
	}
	return count, nil
}

func (r *TicketRepository) CountTicketsByStatus(ctx context.Context) ([]ports.CountRow, error) {
	return r.countBy(ctx, "status")
}

func (r *TicketRepository) CountTicketsByPriority(ctx context.Context) ([]ports.CountRow, error) {
	return r.countBy(ctx, "priority")
}

func (r *TicketRepository) CountTicketsByAssignee(ctx context.Context) ([]ports.CountRow, error) {
	return r.countBy(ctx, "assigned_to")
}

// countBy only receives the constant column names above.
func (r *TicketRepository) countBy(ctx context.Context, column string) ([]ports.CountRow, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []countRow
	if err := db.Model(&model.Ticket{}).
		Select(column + " AS bucket, COUNT(*) AS count").
		Group(column).
		Order(column + " ASC").
		Scan(&rows).Error; err != nil {
		return nil, errs.Storage(err, "count tickets by "+column)
	}
	return mapCountRows(rows), nil
}

func (r *TicketRepository) CreateTicket(ctx context.Context, input ports.TicketCreate) (ports.Ticket, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Ticket{}, err
	}

	row := model.Ticket{
		Title:          input.Title,
		Description:    input.Description,
		RequesterName:  input.RequesterName,
		RequesterEmail: input.RequesterEmail,
		RequesterPhone: input.RequesterPhone,
		Status:         string(input.Status),
		Priority:       string(input.Priority),
		CreatedAt:      input.CreatedAt,
		UpdatedAt:      input.CreatedAt,
		SensitiveNotes: input.SensitiveNotes,
	}
	if err := db.Omit("KBArticle").Create(&row).Error; err != nil {
		return ports.Ticket{}, errs.Storage(err, "insert ticket")
	}

	return mapTicket(model.TicketWithArticle{Ticket: row}), nil
}

func (r *TicketRepository) AssignTicket(ctx context.Context, ticketID uint64, assignee string, status ticket.Status, updatedAt string) error {
	return r.updateTicket(ctx, ticketID, "assign ticket", map[string]any{
		"assigned_to": assignee,
		"status":      string(status),
		"updated_at":  updatedAt,
	})
}

func (r *TicketRepository) SetTicketStatus(ctx context.Context, ticketID uint64, status ticket.Status, updatedAt string) error {
	return r.updateTicket(ctx, ticketID, "update ticket status", map[string]any{
		"status":     string(status),
		"updated_at": updatedAt,
	})
}

func (r *TicketRepository) SetTicketArticle(ctx context.Context, ticketID uint64, articleID uint64, updatedAt string) error {
	return r.updateTicket(ctx, ticketID, "link kb article", map[string]any{
		"kb_article_id": articleID,
		"updated_at":    updatedAt,
	})
}

func (r *TicketRepository) updateTicket(ctx context.Context, ticketID uint64, op string, values map[string]any) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Ticket{}).Where("id = ?", ticketID).Updates(values)
	if result.Error != nil {
		return errs.Storage(result.Error, op)
	}
	if result.RowsAffected == 0 {
		return errs.NotFound("ticket", ticketID)
	}
	return nil
}

func getTicketByID(db *gorm.DB, ticketID uint64) (ports.Ticket, error) {
	var row model.TicketWithArticle
	if err := db.Table("tickets").
		Select(ticketColumns).
		Joins(articleJoin).
		Where("tickets.id = ?", ticketID).
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Ticket{}, errs.NotFound("ticket", ticketID)
		}
		return ports.Ticket{}, errs.Storage(err, "query ticket")
	}
	return mapTicket(row), nil
}

func mapTicket(row model.TicketWithArticle) ports.Ticket {
	return ports.Ticket{
		TicketID:       row.TicketID,
		Title:          row.Title,
		Description:    row.Description,
		RequesterName:  row.RequesterName,
		RequesterEmail: row.RequesterEmail,
		RequesterPhone: row.RequesterPhone,
		Status:         ticket.Status(row.Status),
		Priority:       ticket.Priority(row.Priority),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
		AssignedTo:     row.AssignedTo,
		SensitiveNotes: row.SensitiveNotes,
		KBArticleID:    row.KBArticleID,
		KBArticleTitle: row.KBArticleTitle,
	}
}

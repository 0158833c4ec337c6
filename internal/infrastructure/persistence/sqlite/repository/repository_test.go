package repository

import (
	"context"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"helpdesk/internal/domain/ticket"
	"helpdesk/internal/infrastructure/persistence/schema"
	"helpdesk/internal/ports"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "helpdesk.sqlite") + "?_pragma=foreign_keys(1)"
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := schema.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createTicket(t *testing.T, repo *TicketRepository, title string, description string, priority ticket.Priority, createdAt string) ports.Ticket {
	t.Helper()

	created, err := repo.CreateTicket(context.Background(), ports.TicketCreate{
		Title:       title,
		Description: description,
		Status:      ticket.StatusNew,
		Priority:    priority,
		CreatedAt:   createdAt,
	})
	if err != nil {
		t.Fatalf("CreateTicket(%q) error = %v", title, err)
	}
	return created
}

func ptr(value string) *string {
	return &value
}

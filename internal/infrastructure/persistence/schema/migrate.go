package schema

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"helpdesk/internal/bootstrap/logging"
	"helpdesk/internal/errs"
	"helpdesk/internal/infrastructure/persistence/sqlite/model"
)

// Version is bumped whenever an additive step is appended below.
const Version = 2

const versionKey = "schema_version"

type columnUpgrade struct {
	model  any
	table  string
	column string
}

// Columns added after the first release. Tables created by older builds
// lack them; fresh tables already have them.
var columnUpgrades = []columnUpgrade{
	{model: &model.Ticket{}, table: "tickets", column: "kb_article_id"},
	{model: &model.Comment{}, table: "comments", column: "event_type"},
}

type indexSpec struct {
	model any
	name  string
}

var indexes = []indexSpec{
	{model: &model.Ticket{}, name: "idx_tickets_status"},
	{model: &model.Ticket{}, name: "idx_tickets_created_at"},
	{model: &model.Comment{}, name: "idx_comments_ticket_id"},
	{model: &model.KBArticle{}, name: "idx_kb_articles_category"},
}

// Migrate brings the database to the current layout. Every step checks
// before it acts, so running it again is a no-op. Existing tables are
// never rebuilt or altered in place.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	logCtx := logging.WithComponent(ctx, "persistence.schema")
	migrator := db.WithContext(ctx).Migrator()

	// Referenced tables first so the foreign keys resolve.
	tables := []any{
		&model.KBArticle{},
		&model.Ticket{},
		&model.Comment{},
		&model.Template{},
		&model.CacheEntry{},
		&SchemaMeta{},
	}
	for _, table := range tables {
		if migrator.HasTable(table) {
			continue
		}
		if err := migrator.CreateTable(table); err != nil {
			return errs.Storage(err, "create table")
		}
		logging.Info(logCtx, "table created", slog.String("table", tableName(db, table)))
	}

	for _, upgrade := range columnUpgrades {
		if migrator.HasColumn(upgrade.model, upgrade.column) {
			continue
		}
		if err := migrator.AddColumn(upgrade.model, upgrade.column); err != nil {
			return errs.Storage(err, "add column "+upgrade.table+"."+upgrade.column)
		}
		logging.Info(logCtx, "column added", slog.String("table", upgrade.table), slog.String("column", upgrade.column))
	}

	for _, index := range indexes {
		if migrator.HasIndex(index.model, index.name) {
			continue
		}
		if err := migrator.CreateIndex(index.model, index.name); err != nil {
			return errs.Storage(err, "create index "+index.name)
		}
		logging.Info(logCtx, "index created", slog.String("index", index.name))
	}

	if err := recordVersion(ctx, db); err != nil {
		return err
	}

	logging.Info(logCtx, "schema up to date", slog.Int("version", Version))
	return nil
}

// AppliedVersion returns 0 when no version has been recorded.
func AppliedVersion(ctx context.Context, db *gorm.DB) (int, error) {
	var row SchemaMeta
	if err := db.WithContext(ctx).Where("key = ?", versionKey).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, errs.Storage(err, "query schema version")
	}

	version, err := strconv.Atoi(row.Value)
	if err != nil {
		return 0, errs.Wrapf(err, "parse schema version %q", row.Value)
	}
	return version, nil
}

func recordVersion(ctx context.Context, db *gorm.DB) error {
	row := SchemaMeta{Key: versionKey, Value: strconv.Itoa(Version)}
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return errs.Storage(err, "record schema version")
	}
	return nil
}

func tableName(db *gorm.DB, value any) string {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(value); err != nil {
		return "unknown"
	}
	return stmt.Schema.Table
}

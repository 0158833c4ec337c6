package bootstrap

import (
	"context"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"helpdesk/internal/bootstrap/config"
	"helpdesk/internal/bootstrap/database"
	"helpdesk/internal/bootstrap/logging"
	cacheinfra "helpdesk/internal/infrastructure/cache"
	cryptoinfra "helpdesk/internal/infrastructure/crypto"
	"helpdesk/internal/infrastructure/markdown"
	sqliterepo "helpdesk/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "helpdesk/internal/infrastructure/persistence/sqlite/uow"
	"helpdesk/internal/ports"
	"helpdesk/internal/usecase/desk"
	"helpdesk/internal/usecase/knowledge"
	"helpdesk/internal/usecase/report"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(sqliterepo.NewTicketRepository),
	fx.Provide(
		func(r *sqliterepo.TicketRepository) ports.TicketRepository { return r },
		func(r *sqliterepo.TicketRepository) ports.TicketReadRepository { return r },
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewAuditLogRepository,
			fx.As(new(ports.AuditLog)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewKnowledgeRepository,
			fx.As(new(ports.KnowledgeRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(
		fx.Annotate(
			provideNotesCipher,
			fx.As(new(ports.NotesCipher)),
		),
	),
	fx.Provide(
		fx.Annotate(
			markdown.NewRenderer,
			fx.As(new(ports.ArticleRenderer)),
		),
	),
	fx.Provide(provideDeskService),
	fx.Provide(knowledge.NewService),
	fx.Provide(provideReportService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithComponent(p.Ctx, "bootstrap.fx")
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithComponent(ctx, "bootstrap.fx")

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideNotesCipher(lc fx.Lifecycle, cfg config.Config) (*cryptoinfra.NotesCipher, error) {
	cipher, err := cryptoinfra.NewNotesCipher(cryptoinfra.Options{
		Iterations: cfg.Crypto.Iterations,
		CacheSize:  int64(cfg.Crypto.KeyCacheSize),
	})
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			cipher.Close()
			return nil
		},
	})
	return cipher, nil
}

type deskParams struct {
	fx.In

	Config    config.Config
	Tickets   ports.TicketRepository
	Audit     ports.AuditLog
	Knowledge ports.KnowledgeRepository
	UOW       ports.UnitOfWork
	Cipher    ports.NotesCipher
	Cache     ports.Cache
}

func provideDeskService(p deskParams) *desk.Service {
	return desk.NewService(p.Tickets, p.Audit, p.Knowledge, p.UOW, p.Cipher, p.Cache, desk.Options{
		SystemIdentity:  p.Config.Desk.SystemIdentity,
		UnassignedLabel: p.Config.Desk.UnassignedLabel,
	})
}

func provideReportService(cfg config.Config, tickets ports.TicketReadRepository, knowledgeRepo ports.KnowledgeRepository, cache ports.Cache) *report.Service {
	return report.NewService(tickets, knowledgeRepo, cache, report.Options{
		CacheTTL:        cfg.Report.CacheTTL,
		UnassignedLabel: cfg.Desk.UnassignedLabel,
	})
}

package knowledge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"helpdesk/internal/domain/ticket"
	"helpdesk/internal/errs"
	"helpdesk/internal/infrastructure/markdown"
	"helpdesk/internal/infrastructure/persistence/schema"
	sqliterepo "helpdesk/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "helpdesk/internal/infrastructure/persistence/sqlite/uow"
	"helpdesk/internal/ports"
)

type testCache struct {
	data map[string]string
}

func (c *testCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *testCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *testCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

type fixture struct {
	svc     *Service
	db      *gorm.DB
	tickets *sqliterepo.TicketRepository
	cache   *testCache
}

func setupService(t *testing.T) fixture {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "kb.sqlite") + "?_pragma=foreign_keys(1)"
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

	cache := &testCache{data: make(map[string]string)}
	tickets := sqliterepo.NewTicketRepository(db)
	svc := NewService(
		sqliterepo.NewKnowledgeRepository(db),
		tickets,
		sqliteuow.NewUnitOfWork(db),
		markdown.NewRenderer(),
		cache,
	)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }

	return fixture{svc: svc, db: db, tickets: tickets, cache: cache}
}

func countRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()

	var count int64
	if err := db.Table(table).Count(&count).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return count
}

func TestArticleCRUD(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	id, err := f.svc.CreateArticle(ctx, ArticleInput{Title: "  Clearing paper jams ", Category: "Printers", Content: "Open tray 2."})
	if err != nil {
		t.Fatalf("CreateArticle() error = %v", err)
	}

	got, err := f.svc.GetArticle(ctx, id)
	if err != nil {
		t.Fatalf("GetArticle() error = %v", err)
	}
	if got.Title != "Clearing paper jams" || got.CreatedAt != "2024-03-01T09:00:00.000000000Z" {
		t.Fatalf("GetArticle() = %+v", got)
	}

	if err := f.svc.UpdateArticle(ctx, id, ArticleInput{Title: "Paper jams", Category: "Printers", Content: "Open tray 3."}); err != nil {
		t.Fatalf("UpdateArticle() error = %v", err)
	}
	got, err = f.svc.GetArticle(ctx, id)
	if err != nil {
		t.Fatalf("GetArticle() error = %v", err)
	}
	if got.Title != "Paper jams" || got.Content != "Open tray 3." {
		t.Fatalf("GetArticle() after update = %+v", got)
	}

	if err := f.svc.DeleteArticle(ctx, id); err != nil {
		t.Fatalf("DeleteArticle() error = %v", err)
	}
	if _, err := f.svc.GetArticle(ctx, id); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("GetArticle() after delete error = %v, want ErrNotFound", err)
	}
}

func TestArticleValidationWritesNothing(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	testCases := []struct {
		name  string
		input ArticleInput
	}{
		{name: "missing title", input: ArticleInput{Title: " ", Category: "VPN", Content: "x"}},
		{name: "missing category", input: ArticleInput{Title: "VPN", Content: "x"}},
		{name: "missing content", input: ArticleInput{Title: "VPN", Category: "Network"}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if _, err := f.svc.CreateArticle(ctx, testCase.input); !errors.Is(err, errs.ErrValidation) {
				t.Fatalf("CreateArticle() error = %v, want ErrValidation", err)
			}
		})
	}
	if got := countRows(t, f.db, "kb_articles"); got != 0 {
		t.Fatalf("kb_articles rows = %d, want 0", got)
	}
	if err := f.svc.UpdateArticle(ctx, 404, ArticleInput{Title: "a", Category: "b", Content: "c"}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("UpdateArticle(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteArticleRefusesWhileLinked(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	articleID, err := f.svc.CreateArticle(ctx, ArticleInput{Title: "VPN reset", Category: "Network", Content: "Reset the token."})
	if err != nil {
		t.Fatalf("CreateArticle() error = %v", err)
	}
	created, err := f.tickets.CreateTicket(ctx, ports.TicketCreate{
		Title:          "VPN down",
		Description:    "No tunnel",
		RequesterName:  "Ann",
		RequesterEmail: "ann@example.com",
		Status:         ticket.StatusNew,
		Priority:       ticket.PriorityHigh,
		CreatedAt:      "2024-03-01T09:00:00.000000000Z",
	})
	if err != nil {
		t.Fatalf("CreateTicket() error = %v", err)
	}
	if err := f.tickets.SetTicketArticle(ctx, created.TicketID, articleID, "2024-03-01T09:01:00.000000000Z"); err != nil {
		t.Fatalf("SetTicketArticle() error = %v", err)
	}

	err = f.svc.DeleteArticle(ctx, articleID)
	if !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("DeleteArticle() error = %v, want ErrConflict", err)
	}
	if _, err := f.svc.GetArticle(ctx, articleID); err != nil {
		t.Fatalf("GetArticle() after refused delete error = %v", err)
	}

	if err := f.svc.DeleteArticle(ctx, 999); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("DeleteArticle(missing) error = %v, want ErrNotFound", err)
	}
}

func TestArticlesByCategoryGroupsInOrder(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	for _, input := range []ArticleInput{
		{Title: "Toner", Category: "Printers", Content: "x"},
		{Title: "VPN", Category: "Network", Content: "x"},
		{Title: "Jams", Category: "Printers", Content: "x"},
	} {
		if _, err := f.svc.CreateArticle(ctx, input); err != nil {
			t.Fatalf("CreateArticle(%q) error = %v", input.Title, err)
		}
	}

	groups, err := f.svc.ArticlesByCategory(ctx)
	if err != nil {
		t.Fatalf("ArticlesByCategory() error = %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	if groups[0].Category != "Network" || groups[1].Category != "Printers" {
		t.Fatalf("categories = %q, %q", groups[0].Category, groups[1].Category)
	}
	if len(groups[1].Articles) != 2 || groups[1].Articles[0].Title != "Jams" {
		t.Fatalf("Printers group = %+v", groups[1].Articles)
	}
}

func TestRenderArticleSanitizes(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	id, err := f.svc.CreateArticle(ctx, ArticleInput{
		Title:    "Toner",
		Category: "Printers",
		Content:  "**Shake** the cartridge.\n\n<script>alert(1)</script>",
	})
	if err != nil {
		t.Fatalf("CreateArticle() error = %v", err)
	}

	html, err := f.svc.RenderArticle(ctx, id)
	if err != nil {
		t.Fatalf("RenderArticle() error = %v", err)
	}
	if !strings.Contains(html, "<strong>Shake</strong>") {
		t.Fatalf("RenderArticle() = %q, want strong", html)
	}
	if strings.Contains(html, "<script") {
		t.Fatalf("RenderArticle() = %q, want script stripped", html)
	}
}

func TestWritesDropCategoryCounts(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	f.cache.data[ports.CacheKeyKBCategoryCounts] = `[]`

	if _, err := f.svc.CreateArticle(ctx, ArticleInput{Title: "a", Category: "b", Content: "c"}); err != nil {
		t.Fatalf("CreateArticle() error = %v", err)
	}
	if _, ok := f.cache.data[ports.CacheKeyKBCategoryCounts]; ok {
		t.Fatalf("category counts still cached after create")
	}
}

func TestTemplateCRUD(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	id, err := f.svc.CreateTemplate(ctx, TemplateInput{Title: "Waiting", Content: "We are waiting for your reply."})
	if err != nil {
		t.Fatalf("CreateTemplate() error = %v", err)
	}
	if _, err := f.svc.CreateTemplate(ctx, TemplateInput{Title: "Empty"}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("CreateTemplate(empty) error = %v, want ErrValidation", err)
	}

	if err := f.svc.UpdateTemplate(ctx, id, TemplateInput{Title: "Waiting", Content: "Still waiting."}); err != nil {
		t.Fatalf("UpdateTemplate() error = %v", err)
	}
	list, err := f.svc.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}
	if len(list) != 1 || list[0].Content != "Still waiting." {
		t.Fatalf("ListTemplates() = %+v", list)
	}

	if err := f.svc.DeleteTemplate(ctx, id); err != nil {
		t.Fatalf("DeleteTemplate() error = %v", err)
	}
	if _, err := f.svc.GetTemplate(ctx, id); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("GetTemplate() after delete error = %v, want ErrNotFound", err)
	}
}

func TestImportSeed(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	seed := `
version = 1

[[articles]]
title = "Clearing paper jams"
category = "Printers"
content = "Open tray 2."

[[articles]]
title = "VPN token reset"
category = "Network"
content = "Use the self-service portal."

[[templates]]
title = "Waiting for requester"
content = "We need more information."
`
	path := filepath.Join(t.TempDir(), "seed.toml")
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	result, err := f.svc.ImportSeedFile(ctx, path)
	if err != nil {
		t.Fatalf("ImportSeedFile() error = %v", err)
	}
	if result.Articles != 2 || result.Templates != 1 {
		t.Fatalf("ImportSeedFile() = %+v", result)
	}
	if got := countRows(t, f.db, "kb_articles"); got != 2 {
		t.Fatalf("kb_articles rows = %d, want 2", got)
	}
}

func TestImportSeedIsAllOrNothing(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	testCases := []struct {
		name string
		seed string
	}{
		{name: "bad toml", seed: "version = ["},
		{name: "wrong version", seed: "version = 2"},
		{name: "invalid entry", seed: "version = 1\n[[articles]]\ntitle = \"ok\"\ncategory = \"c\"\ncontent = \"x\"\n[[articles]]\ntitle = \"no content\"\ncategory = \"c\"\n"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if _, err := f.svc.ImportSeed(ctx, []byte(testCase.seed)); !errors.Is(err, errs.ErrValidation) {
				t.Fatalf("ImportSeed() error = %v, want ErrValidation", err)
			}
		})
	}
	if got := countRows(t, f.db, "kb_articles"); got != 0 {
		t.Fatalf("kb_articles rows = %d, want 0", got)
	}
	if _, err := f.svc.ImportSeedFile(ctx, " "); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("ImportSeedFile(blank) error = %v, want ErrValidation", err)
	}
}

package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"helpdesk/internal/domain/ticket"
	"helpdesk/internal/infrastructure/cache"
	"helpdesk/internal/infrastructure/persistence/schema"
	sqliterepo "helpdesk/internal/infrastructure/persistence/sqlite/repository"
	"helpdesk/internal/ports"
)

type fixture struct {
	svc       *Service
	tickets   *sqliterepo.TicketRepository
	knowledge *sqliterepo.KnowledgeRepository
	cache     *cache.SQLiteCache
}

func setupService(t *testing.T) fixture {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "report.sqlite") + "?_pragma=foreign_keys(1)"
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

	tickets := sqliterepo.NewTicketRepository(db)
	knowledge := sqliterepo.NewKnowledgeRepository(db)
	kv := cache.NewSQLiteCache(db)
	return fixture{
		svc:       NewService(tickets, knowledge, kv, Options{CacheTTL: time.Minute, UnassignedLabel: "Nobody"}),
		tickets:   tickets,
		knowledge: knowledge,
		cache:     kv,
	}
}

func (f fixture) addTicket(t *testing.T, status ticket.Status, priority ticket.Priority, assignee string) {
	t.Helper()

	ctx := context.Background()
	created, err := f.tickets.CreateTicket(ctx, ports.TicketCreate{
		Title:       "t",
		Description: "d",
		Status:      ticket.StatusNew,
		Priority:    priority,
		CreatedAt:   "2024-03-01T09:00:00.000000000Z",
	})
	if err != nil {
		t.Fatalf("CreateTicket() error = %v", err)
	}
	if assignee != "" {
		if err := f.tickets.AssignTicket(ctx, created.TicketID, assignee, ticket.StatusInProgress, "2024-03-01T09:01:00.000000000Z"); err != nil {
			t.Fatalf("AssignTicket() error = %v", err)
		}
	}
	if err := f.tickets.SetTicketStatus(ctx, created.TicketID, status, "2024-03-01T09:02:00.000000000Z"); err != nil {
		t.Fatalf("SetTicketStatus() error = %v", err)
	}
}

func TestSnapshotCounts(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.addTicket(t, ticket.StatusNew, ticket.PriorityHigh, "")
	f.addTicket(t, ticket.StatusInProgress, ticket.PriorityHigh, "alice")
	f.addTicket(t, ticket.StatusClosed, ticket.PriorityLow, "alice")
	if _, err := f.knowledge.CreateArticle(ctx, ports.KBArticleWrite{Title: "a", Category: "Network", Content: "x", Timestamp: "2024-03-01T09:00:00.000000000Z"}); err != nil {
		t.Fatalf("CreateArticle() error = %v", err)
	}

	snapshot, err := f.svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	wantStatus := []Bucket{{Label: "Closed", Count: 1}, {Label: "In Progress", Count: 1}, {Label: "New", Count: 1}}
	assertBuckets(t, "status", snapshot.Status, wantStatus)
	assertBuckets(t, "priority", snapshot.Priority, []Bucket{{Label: "High", Count: 2}, {Label: "Low", Count: 1}})
	assertBuckets(t, "assignment", snapshot.Assignment, []Bucket{{Label: "Nobody", Count: 1}, {Label: "alice", Count: 2}})
	assertBuckets(t, "kb_category", snapshot.KBCategory, []Bucket{{Label: "Network", Count: 1}})
}

func TestCountsServedFromCacheUntilDropped(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.addTicket(t, ticket.StatusNew, ticket.PriorityHigh, "")
	if _, err := f.svc.StatusCounts(ctx); err != nil {
		t.Fatalf("StatusCounts() error = %v", err)
	}

	f.addTicket(t, ticket.StatusNew, ticket.PriorityHigh, "")
	got, err := f.svc.StatusCounts(ctx)
	if err != nil {
		t.Fatalf("StatusCounts() error = %v", err)
	}
	assertBuckets(t, "cached status", got, []Bucket{{Label: "New", Count: 1}})

	if err := f.cache.Delete(ctx, ports.CacheKeyStatusCounts); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	got, err = f.svc.StatusCounts(ctx)
	if err != nil {
		t.Fatalf("StatusCounts() error = %v", err)
	}
	assertBuckets(t, "fresh status", got, []Bucket{{Label: "New", Count: 2}})
}

func TestMalformedCacheEntryIsRecomputed(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.addTicket(t, ticket.StatusNew, ticket.PriorityLow, "")
	if err := f.cache.Set(ctx, ports.CacheKeyPriorityCounts, "{not json", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := f.svc.PriorityCounts(ctx)
	if err != nil {
		t.Fatalf("PriorityCounts() error = %v", err)
	}
	assertBuckets(t, "priority", got, []Bucket{{Label: "Low", Count: 1}})
}

func assertBuckets(t *testing.T, name string, got []Bucket, want []Bucket) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("%s buckets = %+v, want %+v", name, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s buckets[%d] = %+v, want %+v", name, i, got[i], want[i])
		}
	}
}

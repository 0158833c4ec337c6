package repository

import (
	"context"
	"errors"
	"testing"

	"helpdesk/internal/domain/ticket"
	"helpdesk/internal/errs"
	"helpdesk/internal/ports"
)

func TestCreateAndGetTicket(t *testing.T) {
	repo := NewTicketRepository(setupDB(t))
	ctx := context.Background()

	created, err := repo.CreateTicket(ctx, ports.TicketCreate{
		Title:          "Printer jam",
		Description:    "Tray 2 keeps jamming",
		RequesterName:  "Ann",
		RequesterEmail: "ann@example.com",
		Status:         ticket.StatusNew,
		Priority:       ticket.PriorityHigh,
		CreatedAt:      "2024-03-01T09:00:00.000000000Z",
		SensitiveNotes: ptr("gAAAAAtoken"),
	})
	if err != nil {
		t.Fatalf("CreateTicket() error = %v", err)
	}
	if created.TicketID == 0 {
		t.Fatalf("CreateTicket() id = 0")
	}
	if created.UpdatedAt != created.CreatedAt {
		t.Fatalf("CreateTicket() updated_at = %q, want created_at", created.UpdatedAt)
	}

	got, err := repo.GetTicket(ctx, created.TicketID)
	if err != nil {
		t.Fatalf("GetTicket() error = %v", err)
	}
	if got.Title != "Printer jam" || got.Status != ticket.StatusNew || got.Priority != ticket.PriorityHigh {
		t.Fatalf("GetTicket() = %+v", got)
	}
	if got.AssignedTo != nil || got.KBArticleID != nil || got.KBArticleTitle != nil {
		t.Fatalf("GetTicket() expected no assignee/article, got %+v", got)
	}
	if got.SensitiveNotes == nil || *got.SensitiveNotes != "gAAAAAtoken" {
		t.Fatalf("GetTicket() sensitive notes = %v", got.SensitiveNotes)
	}

	if _, err := repo.GetTicket(ctx, created.TicketID+100); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("GetTicket(missing) error = %v, want ErrNotFound", err)
	}
}

func TestTicketMutationsReportMissingTicket(t *testing.T) {
	repo := NewTicketRepository(setupDB(t))
	ctx := context.Background()
	now := "2024-03-01T09:00:00.000000000Z"

	if err := repo.AssignTicket(ctx, 42, "bob", ticket.StatusInProgress, now); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("AssignTicket() error = %v, want ErrNotFound", err)
	}
	if err := repo.SetTicketStatus(ctx, 42, ticket.StatusClosed, now); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("SetTicketStatus() error = %v, want ErrNotFound", err)
	}
}

func TestAssignAndStatusUpdates(t *testing.T) {
	repo := NewTicketRepository(setupDB(t))
	ctx := context.Background()
	created := createTicket(t, repo, "VPN down", "no tunnel", ticket.PriorityMedium, "2024-03-01T09:00:00.000000000Z")

	if err := repo.AssignTicket(ctx, created.TicketID, "bob", ticket.StatusInProgress, "2024-03-01T10:00:00.000000000Z"); err != nil {
		t.Fatalf("AssignTicket() error = %v", err)
	}
	if err := repo.SetTicketStatus(ctx, created.TicketID, ticket.StatusPending, "2024-03-01T11:00:00.000000000Z"); err != nil {
		t.Fatalf("SetTicketStatus() error = %v", err)
	}

	got, err := repo.GetTicket(ctx, created.TicketID)
	if err != nil {
		t.Fatalf("GetTicket() error = %v", err)
	}
	if got.AssignedTo == nil || *got.AssignedTo != "bob" {
		t.Fatalf("assigned_to = %v, want bob", got.AssignedTo)
	}
	if got.Status != ticket.StatusPending {
		t.Fatalf("status = %q, want Pending", got.Status)
	}
	if got.UpdatedAt != "2024-03-01T11:00:00.000000000Z" {
		t.Fatalf("updated_at = %q", got.UpdatedAt)
	}
}

func TestLinkedArticleTitleAndDeleteSetsNull(t *testing.T) {
	db := setupDB(t)
	tickets := NewTicketRepository(db)
	knowledge := NewKnowledgeRepository(db)
	ctx := context.Background()

	article, err := knowledge.CreateArticle(ctx, ports.KBArticleWrite{
		Title: "Clearing paper jams", Category: "Printers", Content: "Open tray 2.", Timestamp: "2024-01-01T00:00:00.000000000Z",
	})
	if err != nil {
		t.Fatalf("CreateArticle() error = %v", err)
	}
	created := createTicket(t, tickets, "Printer jam", "tray 2", ticket.PriorityHigh, "2024-03-01T09:00:00.000000000Z")

	if err := tickets.SetTicketArticle(ctx, created.TicketID, article.ArticleID, "2024-03-01T09:05:00.000000000Z"); err != nil {
		t.Fatalf("SetTicketArticle() error = %v", err)
	}
	if err := tickets.SetTicketArticle(ctx, created.TicketID, article.ArticleID+50, "2024-03-01T09:06:00.000000000Z"); err == nil {
		t.Fatalf("SetTicketArticle(missing article) expected foreign key error")
	}

	got, err := tickets.GetTicket(ctx, created.TicketID)
	if err != nil {
		t.Fatalf("GetTicket() error = %v", err)
	}
	if got.KBArticleTitle == nil || *got.KBArticleTitle != "Clearing paper jams" {
		t.Fatalf("kb_article_title = %v", got.KBArticleTitle)
	}

	count, err := tickets.CountTicketsByArticle(ctx, article.ArticleID)
	if err != nil {
		t.Fatalf("CountTicketsByArticle() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("CountTicketsByArticle() = %d, want 1", count)
	}

	if err := knowledge.DeleteArticle(ctx, article.ArticleID); err != nil {
		t.Fatalf("DeleteArticle() error = %v", err)
	}
	got, err = tickets.GetTicket(ctx, created.TicketID)
	if err != nil {
		t.Fatalf("GetTicket() error = %v", err)
	}
	if got.KBArticleID != nil || got.KBArticleTitle != nil {
		t.Fatalf("article link survived delete: %+v", got)
	}
}

func TestListTicketsScopeFilterSearchSort(t *testing.T) {
	repo := NewTicketRepository(setupDB(t))
	ctx := context.Background()

	low := createTicket(t, repo, "Mouse broken", "left click", ticket.PriorityLow, "2024-03-01T09:00:00.000000000Z")
	high := createTicket(t, repo, "Server down", "100% outage", ticket.PriorityHigh, "2024-03-01T10:00:00.000000000Z")
	medium := createTicket(t, repo, "New laptop", "for_onboarding", ticket.PriorityMedium, "2024-03-01T11:00:00.000000000Z")
	closed := createTicket(t, repo, "Old request", "done", ticket.PriorityHigh, "2024-03-01T08:00:00.000000000Z")

	if err := repo.AssignTicket(ctx, high.TicketID, "bob", ticket.StatusInProgress, "2024-03-01T12:00:00.000000000Z"); err != nil {
		t.Fatalf("AssignTicket() error = %v", err)
	}
	if err := repo.AssignTicket(ctx, closed.TicketID, "bob", ticket.StatusInProgress, "2024-03-01T12:00:00.000000000Z"); err != nil {
		t.Fatalf("AssignTicket() error = %v", err)
	}
	if err := repo.SetTicketStatus(ctx, closed.TicketID, ticket.StatusClosed, "2024-03-01T13:00:00.000000000Z"); err != nil {
		t.Fatalf("SetTicketStatus() error = %v", err)
	}

	testCases := []struct {
		name  string
		query ports.TicketListQuery
		want  []uint64
	}{
		{
			name:  "active newest first",
			query: ports.TicketListQuery{Scope: ticket.ScopeActive, SortBy: ticket.SortCreatedDesc},
			want:  []uint64{medium.TicketID, high.TicketID, low.TicketID},
		},
		{
			name:  "active oldest first",
			query: ports.TicketListQuery{Scope: ticket.ScopeActive, SortBy: ticket.SortCreatedAsc},
			want:  []uint64{low.TicketID, high.TicketID, medium.TicketID},
		},
		{
			name:  "priority rank",
			query: ports.TicketListQuery{Scope: ticket.ScopeActive, SortBy: ticket.SortPriority},
			want:  []uint64{high.TicketID, medium.TicketID, low.TicketID},
		},
		{
			name:  "status lexicographic",
			query: ports.TicketListQuery{Scope: ticket.ScopeActive, SortBy: ticket.SortStatus},
			want:  []uint64{high.TicketID, medium.TicketID, low.TicketID},
		},
		{
			name:  "mine",
			query: ports.TicketListQuery{Scope: ticket.ScopeActive, FilterBy: ticket.FilterMine, Identity: "bob"},
			want:  []uint64{high.TicketID},
		},
		{
			name:  "unassigned",
			query: ports.TicketListQuery{Scope: ticket.ScopeActive, FilterBy: ticket.FilterUnassigned},
			want:  []uint64{medium.TicketID, low.TicketID},
		},
		{
			name:  "archived mine",
			query: ports.TicketListQuery{Scope: ticket.ScopeArchived, FilterBy: ticket.FilterMine, Identity: "bob"},
			want:  []uint64{closed.TicketID},
		},
		{
			name:  "search title",
			query: ports.TicketListQuery{Scope: ticket.ScopeActive, Search: "laptop"},
			want:  []uint64{medium.TicketID},
		},
		{
			name:  "search percent literal",
			query: ports.TicketListQuery{Scope: ticket.ScopeActive, Search: "100%"},
			want:  []uint64{high.TicketID},
		},
		{
			name:  "search underscore literal",
			query: ports.TicketListQuery{Scope: ticket.ScopeActive, Search: "_"},
			want:  []uint64{medium.TicketID},
		},
		{
			name:  "injection attempt matches nothing",
			query: ports.TicketListQuery{Scope: ticket.ScopeActive, FilterBy: ticket.FilterMine, Identity: "x' OR '1'='1"},
			want:  []uint64{},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			items, err := repo.ListTickets(ctx, testCase.query)
			if err != nil {
				t.Fatalf("ListTickets() error = %v", err)
			}
			got := make([]uint64, 0, len(items))
			for _, item := range items {
				got = append(got, item.TicketID)
			}
			if len(got) != len(testCase.want) {
				t.Fatalf("ListTickets() ids = %v, want %v", got, testCase.want)
			}
			for i := range got {
				if got[i] != testCase.want[i] {
					t.Fatalf("ListTickets() ids = %v, want %v", got, testCase.want)
				}
			}
		})
	}
}

func TestCountTicketsGroupsNullAssignee(t *testing.T) {
	repo := NewTicketRepository(setupDB(t))
	ctx := context.Background()

	first := createTicket(t, repo, "a", "a", ticket.PriorityLow, "2024-03-01T09:00:00.000000000Z")
	createTicket(t, repo, "b", "b", ticket.PriorityLow, "2024-03-01T09:01:00.000000000Z")
	if err := repo.AssignTicket(ctx, first.TicketID, "bob", ticket.StatusInProgress, "2024-03-01T09:02:00.000000000Z"); err != nil {
		t.Fatalf("AssignTicket() error = %v", err)
	}

	byAssignee, err := repo.CountTicketsByAssignee(ctx)
	if err != nil {
		t.Fatalf("CountTicketsByAssignee() error = %v", err)
	}
	if len(byAssignee) != 2 || byAssignee[0].Key != nil || byAssignee[0].Count != 1 || *byAssignee[1].Key != "bob" {
		t.Fatalf("CountTicketsByAssignee() = %+v", byAssignee)
	}

	byStatus, err := repo.CountTicketsByStatus(ctx)
	if err != nil {
		t.Fatalf("CountTicketsByStatus() error = %v", err)
	}
	if len(byStatus) != 2 || *byStatus[0].Key != "In Progress" || *byStatus[1].Key != "New" {
		t.Fatalf("CountTicketsByStatus() = %+v", byStatus)
	}

	byPriority, err := repo.CountTicketsByPriority(ctx)
	if err != nil {
		t.Fatalf("CountTicketsByPriority() error = %v", err)
	}
	if len(byPriority) != 1 || byPriority[0].Count != 2 {
		t.Fatalf("CountTicketsByPriority() = %+v", byPriority)
	}
}

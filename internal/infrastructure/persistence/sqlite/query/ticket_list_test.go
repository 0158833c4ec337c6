package query

import (
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"helpdesk/internal/domain/ticket"
	"helpdesk/internal/infrastructure/persistence/sqlite/model"
	"helpdesk/internal/ports"
)

func TestBuildTicketListScopes(t *testing.T) {
	active := BuildTicketList(ports.TicketListQuery{Scope: ticket.ScopeActive})
	require.Len(t, active.Predicates, 1)
	assert.Equal(t, "tickets.status NOT IN ?", active.Predicates[0].SQL)
	assert.Equal(t, []any{[]string{"Resolved", "Closed"}}, active.Predicates[0].Args)

	archived := BuildTicketList(ports.TicketListQuery{Scope: ticket.ScopeArchived})
	require.Len(t, archived.Predicates, 1)
	assert.Equal(t, "tickets.status IN ?", archived.Predicates[0].SQL)
}

func TestBuildTicketListFilters(t *testing.T) {
	testCases := []struct {
		name     string
		filterBy ticket.FilterBy
		want     []Predicate
	}{
		{name: "all", filterBy: ticket.FilterAll, want: nil},
		{name: "unrecognized", filterBy: ticket.FilterBy("everything"), want: nil},
		{
			name:     "mine binds identity",
			filterBy: ticket.FilterMine,
			want:     []Predicate{{SQL: "tickets.assigned_to = ?", Args: []any{"bob' OR '1'='1"}}},
		},
		{
			name:     "unassigned",
			filterBy: ticket.FilterUnassigned,
			want:     []Predicate{{SQL: "tickets.assigned_to IS NULL"}},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			plan := BuildTicketList(ports.TicketListQuery{
				Scope:    ticket.ScopeActive,
				FilterBy: testCase.filterBy,
				Identity: "bob' OR '1'='1",
			})
			assert.Equal(t, testCase.want, plan.Predicates[1:])
		})
	}
}

func TestBuildTicketListSearchWrapsEscapedTerm(t *testing.T) {
	plan := BuildTicketList(ports.TicketListQuery{Search: "  50%_off\\x  "})

	require.Len(t, plan.Predicates, 2)
	search := plan.Predicates[1]
	assert.Contains(t, search.SQL, "tickets.title LIKE ?")
	assert.Contains(t, search.SQL, "tickets.description LIKE ?")
	assert.Equal(t, []any{`%50\%\_off\\x%`, `%50\%\_off\\x%`}, search.Args)

	blank := BuildTicketList(ports.TicketListQuery{Search: "   "})
	assert.Len(t, blank.Predicates, 1)
}

func TestBuildTicketListOrdering(t *testing.T) {
	testCases := []struct {
		sortBy ticket.SortBy
		first  string
	}{
		{sortBy: ticket.SortCreatedDesc, first: "tickets.created_at DESC"},
		{sortBy: ticket.SortCreatedAsc, first: "tickets.created_at ASC"},
		{sortBy: ticket.SortPriority, first: priorityRank},
		{sortBy: ticket.SortStatus, first: "tickets.status ASC"},
		{sortBy: ticket.SortBy("DROP TABLE tickets"), first: "tickets.created_at DESC"},
	}

	for _, testCase := range testCases {
		t.Run(string(testCase.sortBy), func(t *testing.T) {
			plan := BuildTicketList(ports.TicketListQuery{SortBy: testCase.sortBy})
			require.NotEmpty(t, plan.OrderBy)
			assert.Equal(t, testCase.first, plan.OrderBy[0])
			assert.Contains(t, plan.OrderBy[len(plan.OrderBy)-1], "tickets.id")
		})
	}
}

func TestApplyKeepsUserInputOutOfSQL(t *testing.T) {
	db, err := gorm.Open(gormsqlite.Open(":memory:"), &gorm.Config{DryRun: true})
	require.NoError(t, err)

	plan := BuildTicketList(ports.TicketListQuery{
		Scope:    ticket.ScopeActive,
		FilterBy: ticket.FilterMine,
		Identity: "mallory",
		Search:   "'; DROP TABLE tickets; --",
		SortBy:   ticket.SortPriority,
	})

	var rows []model.Ticket
	stmt := plan.Apply(db.Model(&model.Ticket{})).Find(&rows).Statement

	sql := stmt.SQL.String()
	assert.NotContains(t, sql, "DROP TABLE")
	assert.NotContains(t, sql, "mallory")
	assert.Contains(t, sql, "ORDER BY CASE tickets.priority")
	assert.Contains(t, stmt.Vars, "mallory")
	assert.Contains(t, stmt.Vars, `%'; DROP TABLE tickets; --%`)
}

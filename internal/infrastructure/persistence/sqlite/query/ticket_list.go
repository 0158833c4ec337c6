// Package query turns listing parameters into parameterized SQL fragments.
// User input only ever reaches the database as bound arguments; every SQL
// string in a plan is a constant chosen by a switch.
package query

import (
	"strings"

	"gorm.io/gorm"

	"helpdesk/internal/domain/ticket"
	"helpdesk/internal/ports"
)

// Predicate is one AND-ed WHERE fragment with its bound arguments.
type Predicate struct {
	SQL  string
	Args []any
}

type TicketListPlan struct {
	Predicates []Predicate
	OrderBy    []string
}

const priorityRank = "CASE tickets.priority WHEN 'High' THEN 1 WHEN 'Medium' THEN 2 WHEN 'Low' THEN 3 END ASC"

// BuildTicketList expects already-parsed enums; anything else is treated
// like the defaults (active scope, no filter, newest first).
func BuildTicketList(q ports.TicketListQuery) TicketListPlan {
	plan := TicketListPlan{}

	archived := ticket.ArchivedStatuses()
	if q.Scope == ticket.ScopeArchived {
		plan.Predicates = append(plan.Predicates, Predicate{SQL: "tickets.status IN ?", Args: []any{archived}})
	} else {
		plan.Predicates = append(plan.Predicates, Predicate{SQL: "tickets.status NOT IN ?", Args: []any{archived}})
	}

	switch q.FilterBy {
	case ticket.FilterMine:
		plan.Predicates = append(plan.Predicates, Predicate{SQL: "tickets.assigned_to = ?", Args: []any{q.Identity}})
	case ticket.FilterUnassigned:
		plan.Predicates = append(plan.Predicates, Predicate{SQL: "tickets.assigned_to IS NULL"})
	}

	if term := strings.TrimSpace(q.Search); term != "" {
		pattern := "%" + EscapeLike(term) + "%"
		plan.Predicates = append(plan.Predicates, Predicate{
			SQL:  `(tickets.title LIKE ? ESCAPE '\' OR tickets.description LIKE ? ESCAPE '\')`,
			Args: []any{pattern, pattern},
		})
	}

	switch q.SortBy {
	case ticket.SortCreatedAsc:
		plan.OrderBy = []string{"tickets.created_at ASC", "tickets.id ASC"}
	case ticket.SortPriority:
		plan.OrderBy = []string{priorityRank, "tickets.created_at DESC", "tickets.id DESC"}
	case ticket.SortStatus:
		plan.OrderBy = []string{"tickets.status ASC", "tickets.created_at DESC", "tickets.id DESC"}
	default:
		plan.OrderBy = []string{"tickets.created_at DESC", "tickets.id DESC"}
	}

	return plan
}

func (p TicketListPlan) Apply(db *gorm.DB) *gorm.DB {
	for _, predicate := range p.Predicates {
		db = db.Where(predicate.SQL, predicate.Args...)
	}
	for _, order := range p.OrderBy {
		db = db.Order(order)
	}
	return db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike makes LIKE wildcards in term match literally under ESCAPE '\'.
func EscapeLike(term string) string {
	return likeEscaper.Replace(term)
}

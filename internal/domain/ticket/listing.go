package ticket

import (
	"strings"

	"helpdesk/internal/errs"
)

// Scope partitions tickets into the working queue and the archive.
type Scope string

const (
	ScopeActive   Scope = "active"
	ScopeArchived Scope = "archived"
)

func ParseScope(raw string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(ScopeActive):
		return ScopeActive, nil
	case string(ScopeArchived):
		return ScopeArchived, nil
	default:
		return "", errs.Validation("unknown scope %q", raw)
	}
}

type FilterBy string

const (
	FilterAll        FilterBy = "all"
	FilterMine       FilterBy = "mine"
	FilterUnassigned FilterBy = "unassigned"
)

// ParseFilterBy never fails; anything unrecognized means no restriction.
func ParseFilterBy(raw string) FilterBy {
	switch FilterBy(strings.ToLower(strings.TrimSpace(raw))) {
	case FilterMine:
		return FilterMine
	case FilterUnassigned:
		return FilterUnassigned
	default:
		return FilterAll
	}
}

type SortBy string

const (
	SortCreatedDesc SortBy = "created_at_desc"
	SortCreatedAsc  SortBy = "created_at_asc"
	SortPriority    SortBy = "priority"
	SortStatus      SortBy = "status"
)

// ParseSortBy falls back to newest-first for unknown values.
func ParseSortBy(raw string) SortBy {
	switch SortBy(strings.ToLower(strings.TrimSpace(raw))) {
	case SortCreatedAsc:
		return SortCreatedAsc
	case SortPriority:
		return SortPriority
	case SortStatus:
		return SortStatus
	default:
		return SortCreatedDesc
	}
}

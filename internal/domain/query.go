package domain

import (
	"strconv"
	"strings"
)

// TaskSortField names a sortable task attribute.
type TaskSortField string

// Sortable task attributes.
const (
	SortByCreatedAt   TaskSortField = "created_at"
	SortByUpdatedAt   TaskSortField = "updated_at"
	SortByDescription TaskSortField = "description"
	SortByCompleted   TaskSortField = "completed"
)

// sortFieldAliases accepts both the JSON names and the camelCase names
// older clients send.
var sortFieldAliases = map[string]TaskSortField{
	"created_at":  SortByCreatedAt,
	"createdAt":   SortByCreatedAt,
	"updated_at":  SortByUpdatedAt,
	"updatedAt":   SortByUpdatedAt,
	"description": SortByDescription,
	"completed":   SortByCompleted,
}

// TaskSort is a single field+direction ordering.
type TaskSort struct {
	Field      TaskSortField
	Descending bool
}

// TaskQuery carries the client-controlled list options. It has no owner
// field: the owner constraint is applied by the store from the session and
// cannot be overridden here.
type TaskQuery struct {
	// Completed filters on exact match when non-nil.
	Completed *bool
	// Sort is nil for the default ordering (creation time ascending).
	Sort *TaskSort
	// Limit of zero means unbounded.
	Limit int
	// Skip of zero means start at the first match.
	Skip int
}

// ParseTaskSort parses "field" or "field:asc|desc". Direction defaults to
// ascending; only an explicit "desc" sorts descending. Unknown fields yield
// nil so the default ordering applies.
func ParseTaskSort(raw string) *TaskSort {
	if raw == "" {
		return nil
	}
	name, dir, _ := strings.Cut(raw, ":")
	field, ok := sortFieldAliases[strings.TrimSpace(name)]
	if !ok {
		return nil
	}
	return &TaskSort{
		Field:      field,
		Descending: strings.TrimSpace(dir) == "desc",
	}
}

// ParseCompletedFilter maps the "completed" query value. An empty value
// means no filter; "true" matches completed tasks and anything else matches
// open ones.
func ParseCompletedFilter(raw string) *bool {
	if raw == "" {
		return nil
	}
	completed := raw == "true"
	return &completed
}

// ParsePageValue parses limit/skip values. Missing, non-numeric or negative
// input yields zero, which means unbounded for limit and no skip for skip.
func ParsePageValue(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

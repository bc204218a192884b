package store

import (
	"context"
	"errors"
	"time"

	"taskspace/internal/model"
)

// ErrNotFound is returned when a record does not exist or is owned by a
// different user; the two cases are indistinguishable on purpose.
var ErrNotFound = errors.New("record not found")

// TaskFilter controls filtering, sorting, and pagination for task queries.
// Every query is additionally scoped to UserID.
type TaskFilter struct {
	UserID      string
	NamespaceID *string
	Completed   *bool
	Priority    *string
	DueOn       *time.Time // matches the full calendar day in server-local time
	Search      *string    // case-insensitive substring over title, description, tags
	SortBy      string     // createdAt, updatedAt, dueDate, priority, title, order
	SortDesc    bool
	Limit       int
	Offset      int
}

// TaskCounts holds per-namespace task totals derived on read.
type TaskCounts struct {
	Total     int
	Completed int
}

// NamespaceStat is one row of the per-namespace task breakdown, joined with
// the namespace's display fields.
type NamespaceStat struct {
	NamespaceID string `json:"namespaceId" db:"namespace_id"`
	Name        string `json:"name" db:"name"`
	Color       string `json:"color" db:"color"`
	Count       int    `json:"count" db:"count"`
}

// Stats is the aggregate task summary for one user.
type Stats struct {
	Total         int
	Completed     int
	Pending       int
	Overdue       int
	DueToday      int
	CreatedLast7d int
	ByPriority    map[string]int
	ByNamespace   []NamespaceStat
}

// Store is the persistence boundary for users, namespaces, and tasks.
type Store interface {
	// === Users ===

	CreateUser(ctx context.Context, u model.User) error
	UpdateUser(ctx context.Context, u model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)

	// === Namespaces ===

	CreateNamespace(ctx context.Context, ns model.Namespace) error
	UpdateNamespace(ctx context.Context, ns model.Namespace) error
	DeleteNamespace(ctx context.Context, userID, id string) error
	GetNamespace(ctx context.Context, userID, id string) (*model.Namespace, error)
	GetNamespaces(ctx context.Context, userID string) ([]model.Namespace, error)
	GetNamespaceByName(ctx context.Context, userID, name string) (*model.Namespace, error)

	// SetNamespaceOrder assigns a manual order to one namespace. It reports
	// whether a row owned by userID matched; unowned ids are a no-op.
	SetNamespaceOrder(ctx context.Context, userID, id string, order int) (bool, error)

	// CountNamespaceTasks counts tasks owned by userID inside the namespace.
	CountNamespaceTasks(ctx context.Context, userID, namespaceID string) (TaskCounts, error)

	// === Tasks ===

	CreateTask(ctx context.Context, t model.Task) error
	UpdateTask(ctx context.Context, t model.Task) error
	DeleteTask(ctx context.Context, userID, id string) error
	GetTask(ctx context.Context, userID, id string) (*model.Task, error)
	GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	CountTasks(ctx context.Context, filter TaskFilter) (int, error)

	// GetTaskStats aggregates the summary counters relative to now.
	GetTaskStats(ctx context.Context, userID string, now time.Time) (*Stats, error)
}

package model

import "time"

// Defaults applied when a namespace is created without appearance fields.
const (
	DefaultNamespaceColor = "#1976d2"
	DefaultNamespaceIcon  = "FolderIcon"
)

// Namespace is a user-owned grouping container for tasks.
// (user_id, name) is unique per user.
type Namespace struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"userId" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Color       string    `json:"color" db:"color"`
	Icon        string    `json:"icon" db:"icon"`
	IsDefault   bool      `json:"isDefault" db:"is_default"`
	SortOrder   int       `json:"order" db:"sort_order"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// Task counts are derived on read by counting owned tasks, never stored.
	TaskCount      int `json:"taskCount" db:"-"`
	CompletedCount int `json:"completedCount" db:"-"`
	PendingCount   int `json:"pendingCount" db:"-"`
}

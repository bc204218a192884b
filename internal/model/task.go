package model

import (
	"math"
	"time"
)

// Task priority levels.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ChecklistItem is a sub-step of a task. It is only reachable through its
// parent task and is persisted as part of the task row; all mutations go
// through the parent's persistence operation.
type ChecklistItem struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	SortOrder   int        `json:"order"`
}

// NamespaceRef is the subset of namespace fields joined onto task responses
// for display purposes.
type NamespaceRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// Task is a titled unit of work belonging to exactly one namespace.
// The stored completed flag is the canonical completion state; the
// checklist-derived counters below are read-side annotations only.
type Task struct {
	ID          string          `json:"id" db:"id"`
	UserID      string          `json:"userId" db:"user_id"`
	NamespaceID string          `json:"namespaceId" db:"namespace_id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Completed   bool            `json:"completed" db:"completed"`
	CompletedAt *time.Time      `json:"completedAt,omitempty" db:"completed_at"`
	Priority    string          `json:"priority" db:"priority"`
	DueDate     *time.Time      `json:"dueDate,omitempty" db:"due_date"`
	Tags        []string        `json:"tags" db:"-"`
	Checklist   []ChecklistItem `json:"checklist" db:"-"`
	SortOrder   int             `json:"order" db:"sort_order"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`

	// Namespace is populated on read by joining the owning namespace.
	Namespace *NamespaceRef `json:"namespace,omitempty" db:"-"`

	// Derived checklist counters, computed by Annotate.
	ChecklistTotal     int `json:"checklistTotal"`
	ChecklistCompleted int `json:"checklistCompleted"`
	ChecklistProgress  int `json:"checklistProgress"`
}

// Annotate fills the derived checklist counters. Progress is the rounded
// percentage of completed items; an empty checklist has progress 0.
func (t *Task) Annotate() {
	t.ChecklistTotal = len(t.Checklist)

	done := 0
	for _, item := range t.Checklist {
		if item.Completed {
			done++
		}
	}
	t.ChecklistCompleted = done

	if t.ChecklistTotal == 0 {
		t.ChecklistProgress = 0
		return
	}
	t.ChecklistProgress = int(math.Round(float64(done) / float64(t.ChecklistTotal) * 100))
}

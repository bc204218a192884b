// Package task implements the task service: CRUD over namespace-scoped
// tasks, filtered and paginated listing, the embedded checklist, and the
// aggregate statistics summary.
package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskspace/internal/apperr"
	"taskspace/internal/model"
	"taskspace/internal/store"
)

const (
	maxTitleLen         = 100
	maxDescriptionLen   = 500
	maxTagLen           = 20
	maxChecklistTextLen = 200

	// DefaultPageSize is the task list page size when none is requested.
	DefaultPageSize = 50
)

// Service wraps the store with the task business rules.
type Service struct {
	store store.Store
	now   func() time.Time
}

// NewService returns a task service backed by st.
func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// ListParams holds the accepted task list query knobs.
type ListParams struct {
	NamespaceID *string
	Completed   *bool
	Priority    *string
	DueDate     *time.Time
	Search      string
	Page        int
	Limit       int
	SortBy      string
	SortDesc    bool
}

// ListResult is one page of matching tasks plus pagination totals.
type ListResult struct {
	Tasks []model.Task
	Page  int
	Limit int
	Total int
	Pages int
}

// List returns the page of tasks matching params, annotated with checklist
// progress and namespace display fields.
func (s *Service) List(ctx context.Context, userID string, params ListParams) (*ListResult, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	sortBy := params.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}

	filter := store.TaskFilter{
		UserID:      userID,
		NamespaceID: params.NamespaceID,
		Completed:   params.Completed,
		Priority:    params.Priority,
		DueOn:       params.DueDate,
		SortBy:      sortBy,
		SortDesc:    params.SortDesc,
		Limit:       limit,
		Offset:      (page - 1) * limit,
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		filter.Search = &search
	}

	tasks, err := s.store.GetTasks(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountTasks(ctx, filter)
	if err != nil {
		return nil, err
	}

	refs, err := s.namespaceRefs(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		annotate(&tasks[i], refs)
	}

	return &ListResult{
		Tasks: tasks,
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + limit - 1) / limit,
	}, nil
}

// Get returns one task owned by the caller.
func (s *Service) Get(ctx context.Context, userID, id string) (*model.Task, error) {
	t, err := s.store.GetTask(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Task not found")
	}
	if err != nil {
		return nil, err
	}
	return s.withNamespaceRef(ctx, t)
}

// ChecklistItemInput is one checklist entry supplied at task creation.
type ChecklistItemInput struct {
	Text      string
	Completed bool
	Order     int
}

// CreateInput holds the accepted fields for task creation.
type CreateInput struct {
	Title       string
	Description string
	NamespaceID string
	Priority    string
	DueDate     *time.Time
	Tags        []string
	Checklist   []ChecklistItemInput
	Order       int
}

// Create validates and persists a new task in a caller-owned namespace.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Invalid("Validation error", "Task title is required")
	}
	if len(title) > maxTitleLen {
		return nil, apperr.Invalid("Validation error",
			fmt.Sprintf("Task title must be at most %d characters", maxTitleLen))
	}
	description := strings.TrimSpace(in.Description)
	if len(description) > maxDescriptionLen {
		return nil, apperr.Invalid("Validation error",
			fmt.Sprintf("Task description must be at most %d characters", maxDescriptionLen))
	}
	if in.NamespaceID == "" {
		return nil, apperr.Invalid("Validation error", "Namespace is required")
	}
	if _, err := s.store.GetNamespace(ctx, userID, in.NamespaceID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errInvalidNamespace()
		}
		return nil, err
	}

	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !model.ValidPriority(priority) {
		return nil, apperr.Invalid("Validation error",
			"Priority must be one of low, medium, high")
	}

	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	checklist := make([]model.ChecklistItem, 0, len(in.Checklist))
	for _, item := range in.Checklist {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			return nil, apperr.Invalid("Validation error", "Checklist item text is required")
		}
		if len(text) > maxChecklistTextLen {
			return nil, apperr.Invalid("Validation error",
				fmt.Sprintf("Checklist item text must be at most %d characters", maxChecklistTextLen))
		}
		ci := model.ChecklistItem{
			ID:        uuid.New().String(),
			Text:      text,
			Completed: item.Completed,
			SortOrder: item.Order,
		}
		if ci.Completed {
			at := now
			ci.CompletedAt = &at
		}
		checklist = append(checklist, ci)
	}

	t := model.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		NamespaceID: in.NamespaceID,
		Title:       title,
		Description: description,
		Priority:    priority,
		DueDate:     in.DueDate,
		Tags:        tags,
		Checklist:   checklist,
		SortOrder:   in.Order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, err
	}
	return s.withNamespaceRef(ctx, &t)
}

// UpdateInput holds optional fields for a partial task update. Nil fields
// are left untouched. DueDateSet distinguishes "clear the due date" (set
// with a nil DueDate) from "leave it alone".
type UpdateInput struct {
	Title       *string
	Description *string
	Completed   *bool
	NamespaceID *string
	Priority    *string
	DueDate     *time.Time
	DueDateSet  bool
	Tags        *[]string
	Checklist   *[]model.ChecklistItem
	Order       *int
}

// Update applies the supplied fields to an owned task. Completion-flag
// transitions set or clear the completion timestamp; a namespace change
// re-checks ownership of the target namespace.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*model.Task, error) {
	t, err := s.store.GetTask(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Task not found")
	}
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperr.Invalid("Validation error", "Task title is required")
		}
		if len(title) > maxTitleLen {
			return nil, apperr.Invalid("Validation error",
				fmt.Sprintf("Task title must be at most %d characters", maxTitleLen))
		}
		t.Title = title
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if len(description) > maxDescriptionLen {
			return nil, apperr.Invalid("Validation error",
				fmt.Sprintf("Task description must be at most %d characters", maxDescriptionLen))
		}
		t.Description = description
	}
	if in.NamespaceID != nil && *in.NamespaceID != t.NamespaceID {
		if _, err := s.store.GetNamespace(ctx, userID, *in.NamespaceID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, errInvalidNamespace()
			}
			return nil, err
		}
		t.NamespaceID = *in.NamespaceID
	}
	if in.Completed != nil && *in.Completed != t.Completed {
		t.Completed = *in.Completed
		if t.Completed {
			at := now
			t.CompletedAt = &at
		} else {
			t.CompletedAt = nil
		}
	}
	if in.Priority != nil {
		if !model.ValidPriority(*in.Priority) {
			return nil, apperr.Invalid("Validation error",
				"Priority must be one of low, medium, high")
		}
		t.Priority = *in.Priority
	}
	if in.DueDateSet {
		t.DueDate = in.DueDate
	}
	if in.Tags != nil {
		tags, err := normalizeTags(*in.Tags)
		if err != nil {
			return nil, err
		}
		t.Tags = tags
	}
	if in.Checklist != nil {
		checklist, err := normalizeChecklist(*in.Checklist, now)
		if err != nil {
			return nil, err
		}
		t.Checklist = checklist
	}
	if in.Order != nil {
		t.SortOrder = *in.Order
	}
	t.UpdatedAt = now

	if err := s.store.UpdateTask(ctx, *t); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Task not found")
		}
		return nil, err
	}
	return s.withNamespaceRef(ctx, t)
}

// Delete removes an owned task and its embedded checklist as a unit.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	err := s.store.DeleteTask(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("Task not found")
	}
	return err
}

// Toggle flips the stored completed flag and its timestamp.
func (s *Service) Toggle(ctx context.Context, userID, id string) (*model.Task, error) {
	t, err := s.store.GetTask(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Task not found")
	}
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	t.Completed = !t.Completed
	if t.Completed {
		at := now
		t.CompletedAt = &at
	} else {
		t.CompletedAt = nil
	}
	t.UpdatedAt = now

	if err := s.store.UpdateTask(ctx, *t); err != nil {
		return nil, err
	}
	return s.withNamespaceRef(ctx, t)
}

// AddChecklistItem appends a new item to the task's embedded checklist.
// Order defaults to the current list length.
func (s *Service) AddChecklistItem(ctx context.Context, userID, taskID, text string, order *int) (*model.Task, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, apperr.Invalid("Validation error", "Checklist item text is required")
	}
	if len(trimmed) > maxChecklistTextLen {
		return nil, apperr.Invalid("Validation error",
			fmt.Sprintf("Checklist item text must be at most %d characters", maxChecklistTextLen))
	}

	t, err := s.store.GetTask(ctx, userID, taskID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Task not found")
	}
	if err != nil {
		return nil, err
	}

	item := model.ChecklistItem{
		ID:        uuid.New().String(),
		Text:      trimmed,
		SortOrder: len(t.Checklist),
	}
	if order != nil {
		item.SortOrder = *order
	}
	t.Checklist = append(t.Checklist, item)
	t.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateTask(ctx, *t); err != nil {
		return nil, err
	}
	return s.withNamespaceRef(ctx, t)
}

// ToggleChecklistItem flips one embedded item's completed flag and
// timestamp. The returned bool is the item's new state.
func (s *Service) ToggleChecklistItem(ctx context.Context, userID, taskID, itemID string) (*model.Task, bool, error) {
	t, err := s.store.GetTask(ctx, userID, taskID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, apperr.NotFound("Task not found")
	}
	if err != nil {
		return nil, false, err
	}

	now := s.now().UTC()
	completedNow := false
	found := false
	for i := range t.Checklist {
		if t.Checklist[i].ID != itemID {
			continue
		}
		found = true
		t.Checklist[i].Completed = !t.Checklist[i].Completed
		completedNow = t.Checklist[i].Completed
		if completedNow {
			at := now
			t.Checklist[i].CompletedAt = &at
		} else {
			t.Checklist[i].CompletedAt = nil
		}
		break
	}
	if !found {
		return nil, false, apperr.NotFound("Checklist item not found")
	}
	t.UpdatedAt = now

	if err := s.store.UpdateTask(ctx, *t); err != nil {
		return nil, false, err
	}
	annotated, err := s.withNamespaceRef(ctx, t)
	return annotated, completedNow, err
}

// DeleteChecklistItem removes one embedded item from the task's checklist.
func (s *Service) DeleteChecklistItem(ctx context.Context, userID, taskID, itemID string) (*model.Task, error) {
	t, err := s.store.GetTask(ctx, userID, taskID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Task not found")
	}
	if err != nil {
		return nil, err
	}

	kept := t.Checklist[:0:0]
	found := false
	for _, item := range t.Checklist {
		if item.ID == itemID {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return nil, apperr.NotFound("Checklist item not found")
	}
	t.Checklist = kept
	t.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateTask(ctx, *t); err != nil {
		return nil, err
	}
	return s.withNamespaceRef(ctx, t)
}

// StatsSummary is the aggregate statistics response for one user.
type StatsSummary struct {
	TotalTasks     int
	CompletedTasks int
	PendingTasks   int
	OverdueTasks   int
	TodayTasks     int
	ThisWeekTasks  int
	CompletionRate int
	ByPriority     map[string]int
	ByNamespace    []store.NamespaceStat
}

// Stats computes the caller's aggregate task summary.
func (s *Service) Stats(ctx context.Context, userID string) (*StatsSummary, error) {
	stats, err := s.store.GetTaskStats(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}

	summary := &StatsSummary{
		TotalTasks:     stats.Total,
		CompletedTasks: stats.Completed,
		PendingTasks:   stats.Pending,
		OverdueTasks:   stats.Overdue,
		TodayTasks:     stats.DueToday,
		ThisWeekTasks:  stats.CreatedLast7d,
		ByPriority:     stats.ByPriority,
		ByNamespace:    stats.ByNamespace,
	}
	if stats.Total > 0 {
		summary.CompletionRate = (stats.Completed*100 + stats.Total/2) / stats.Total
	}
	return summary, nil
}

// withNamespaceRef annotates t with checklist progress and the owning
// namespace's display fields.
func (s *Service) withNamespaceRef(ctx context.Context, t *model.Task) (*model.Task, error) {
	t.Annotate()
	ns, err := s.store.GetNamespace(ctx, t.UserID, t.NamespaceID)
	if errors.Is(err, store.ErrNotFound) {
		// The namespace vanished under us; the task still stands on its own.
		return t, nil
	}
	if err != nil {
		return nil, err
	}
	t.Namespace = &model.NamespaceRef{ID: ns.ID, Name: ns.Name, Color: ns.Color, Icon: ns.Icon}
	return t, nil
}

// namespaceRefs loads the caller's namespaces keyed by id for list
// annotation.
func (s *Service) namespaceRefs(ctx context.Context, userID string) (map[string]model.NamespaceRef, error) {
	namespaces, err := s.store.GetNamespaces(ctx, userID)
	if err != nil {
		return nil, err
	}
	refs := make(map[string]model.NamespaceRef, len(namespaces))
	for _, ns := range namespaces {
		refs[ns.ID] = model.NamespaceRef{ID: ns.ID, Name: ns.Name, Color: ns.Color, Icon: ns.Icon}
	}
	return refs, nil
}

func annotate(t *model.Task, refs map[string]model.NamespaceRef) {
	t.Annotate()
	if ref, ok := refs[t.NamespaceID]; ok {
		r := ref
		t.Namespace = &r
	}
}

// normalizeChecklist validates a full replacement checklist and keeps item
// identity and completion timestamps stable, so re-sending the same array
// is a no-op.
func normalizeChecklist(items []model.ChecklistItem, now time.Time) ([]model.ChecklistItem, error) {
	out := make([]model.ChecklistItem, 0, len(items))
	for _, item := range items {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			return nil, apperr.Invalid("Validation error", "Checklist item text is required")
		}
		if len(text) > maxChecklistTextLen {
			return nil, apperr.Invalid("Validation error",
				fmt.Sprintf("Checklist item text must be at most %d characters", maxChecklistTextLen))
		}
		item.Text = text
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		if item.Completed && item.CompletedAt == nil {
			at := now
			item.CompletedAt = &at
		}
		if !item.Completed {
			item.CompletedAt = nil
		}
		out = append(out, item)
	}
	return out, nil
}

func normalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if len(tag) > maxTagLen {
			return nil, apperr.Invalid("Validation error",
				fmt.Sprintf("Tags must be at most %d characters", maxTagLen))
		}
		out = append(out, tag)
	}
	return out, nil
}

func errInvalidNamespace() error {
	return apperr.Invalid("Invalid namespace", "Namespace not found or access denied")
}

package task_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"taskspace/internal/apperr"
	"taskspace/internal/model"
	"taskspace/internal/namespace"
	"taskspace/internal/store"
	"taskspace/internal/task"
	"taskspace/tests/testutil"
)

type fixture struct {
	store      *store.SQLiteStore
	tasks      *task.Service
	namespaces *namespace.Service
	home       *model.Namespace
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := testutil.NewTestStore(t)
	namespaces := namespace.NewService(st)

	home, err := namespaces.Create(context.Background(), "user-a", namespace.CreateInput{Name: "Home"})
	if err != nil {
		t.Fatalf("creating namespace: %v", err)
	}
	return &fixture{
		store:      st,
		tasks:      task.NewService(st),
		namespaces: namespaces,
		home:       home,
	}
}

func kindOf(t *testing.T, err error) apperr.Kind {
	t.Helper()
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("err = %v, want *apperr.Error", err)
	}
	return appErr.Kind
}

func TestCreateDefaultsAndAnnotation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.tasks.Create(ctx, "user-a", task.CreateInput{
		Title:       "  Buy milk  ",
		NamespaceID: f.home.ID,
		Tags:        []string{" errand ", "", "groceries"},
		Checklist: []task.ChecklistItemInput{
			{Text: "check fridge", Completed: true},
			{Text: "go to store"},
		},
	})
	if err != nil {
		t.Fatalf("creating task: %v", err)
	}

	if created.Title != "Buy milk" {
		t.Errorf("title = %q, want trimmed %q", created.Title, "Buy milk")
	}
	if created.Priority != model.PriorityMedium {
		t.Errorf("priority = %q, want default medium", created.Priority)
	}
	if len(created.Tags) != 2 || created.Tags[0] != "errand" {
		t.Errorf("tags = %v, want trimmed non-empty", created.Tags)
	}
	if len(created.Checklist) != 2 {
		t.Fatalf("checklist len = %d, want 2", len(created.Checklist))
	}
	for i, item := range created.Checklist {
		if item.ID == "" {
			t.Errorf("checklist[%d] missing generated id", i)
		}
	}
	if created.Checklist[0].CompletedAt == nil {
		t.Error("completed item missing timestamp")
	}
	if created.Checklist[1].CompletedAt != nil {
		t.Error("pending item has a timestamp")
	}
	if created.ChecklistTotal != 2 || created.ChecklistCompleted != 1 || created.ChecklistProgress != 50 {
		t.Errorf("progress = %d/%d %d%%, want 1/2 50%%",
			created.ChecklistCompleted, created.ChecklistTotal, created.ChecklistProgress)
	}
	if created.Namespace == nil || created.Namespace.Name != "Home" {
		t.Errorf("namespace ref = %+v", created.Namespace)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   task.CreateInput
		message string
	}{
		{"empty title", task.CreateInput{NamespaceID: f.home.ID}, "Task title is required"},
		{"title too long", task.CreateInput{
			Title:       strings.Repeat("x", 101),
			NamespaceID: f.home.ID,
		}, "Task title must be at most 100 characters"},
		{"missing namespace", task.CreateInput{Title: "ok"}, "Namespace is required"},
		{"bad priority", task.CreateInput{
			Title:       "ok",
			NamespaceID: f.home.ID,
			Priority:    "urgent",
		}, "Priority must be one of low, medium, high"},
		{"empty checklist text", task.CreateInput{
			Title:       "ok",
			NamespaceID: f.home.ID,
			Checklist:   []task.ChecklistItemInput{{Text: "  "}},
		}, "Checklist item text is required"},
		{"tag too long", task.CreateInput{
			Title:       "ok",
			NamespaceID: f.home.ID,
			Tags:        []string{strings.Repeat("x", 21)},
		}, "Tags must be at most 20 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tasks.Create(ctx, "user-a", tt.input)
			if kindOf(t, err) != apperr.KindInvalidInput {
				t.Fatalf("kind = %v, want KindInvalidInput", kindOf(t, err))
			}
			if err.Error() != tt.message {
				t.Errorf("message = %q, want %q", err.Error(), tt.message)
			}
		})
	}
}

func TestCreateInForeignNamespace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	theirs, err := f.namespaces.Create(ctx, "user-b", namespace.CreateInput{Name: "Theirs"})
	if err != nil {
		t.Fatalf("creating namespace: %v", err)
	}

	_, err = f.tasks.Create(ctx, "user-a", task.CreateInput{
		Title:       "sneaky",
		NamespaceID: theirs.ID,
	})
	if kindOf(t, err) != apperr.KindInvalidInput {
		t.Fatalf("kind = %v, want KindInvalidInput", kindOf(t, err))
	}
	if err.Error() != "Namespace not found or access denied" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestToggleRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.tasks.Create(ctx, "user-a", task.CreateInput{
		Title:       "flip me",
		NamespaceID: f.home.ID,
	})
	if err != nil {
		t.Fatalf("creating task: %v", err)
	}

	done, err := f.tasks.Toggle(ctx, "user-a", created.ID)
	if err != nil {
		t.Fatalf("toggling: %v", err)
	}
	if !done.Completed || done.CompletedAt == nil {
		t.Errorf("after first toggle: completed=%v completedAt=%v", done.Completed, done.CompletedAt)
	}

	reopened, err := f.tasks.Toggle(ctx, "user-a", created.ID)
	if err != nil {
		t.Fatalf("toggling back: %v", err)
	}
	if reopened.Completed || reopened.CompletedAt != nil {
		t.Errorf("after second toggle: completed=%v completedAt=%v",
			reopened.Completed, reopened.CompletedAt)
	}
}

func TestUpdateDueDateClearAndCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	due := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	created, err := f.tasks.Create(ctx, "user-a", task.CreateInput{
		Title:       "report",
		NamespaceID: f.home.ID,
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("creating task: %v", err)
	}

	// An update that does not mention dueDate leaves it alone.
	completed := true
	got, err := f.tasks.Update(ctx, "user-a", created.ID, task.UpdateInput{Completed: &completed})
	if err != nil {
		t.Fatalf("updating: %v", err)
	}
	if got.DueDate == nil {
		t.Error("dueDate cleared by an unrelated update")
	}
	if !got.Completed || got.CompletedAt == nil {
		t.Error("completion flag did not set its timestamp")
	}

	// DueDateSet with a nil value clears it.
	got, err = f.tasks.Update(ctx, "user-a", created.ID, task.UpdateInput{DueDateSet: true})
	if err != nil {
		t.Fatalf("clearing dueDate: %v", err)
	}
	if got.DueDate != nil {
		t.Errorf("dueDate = %v, want cleared", got.DueDate)
	}

	// Reopening clears the completion timestamp.
	completed = false
	got, err = f.tasks.Update(ctx, "user-a", created.ID, task.UpdateInput{Completed: &completed})
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	if got.Completed || got.CompletedAt != nil {
		t.Errorf("after reopen: completed=%v completedAt=%v", got.Completed, got.CompletedAt)
	}
}

func TestUpdateChecklistResendIsStable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.tasks.Create(ctx, "user-a", task.CreateInput{
		Title:       "with list",
		NamespaceID: f.home.ID,
		Checklist: []task.ChecklistItemInput{
			{Text: "first", Completed: true},
			{Text: "second"},
		},
	})
	if err != nil {
		t.Fatalf("creating task: %v", err)
	}

	// Re-sending the stored checklist keeps ids and timestamps untouched.
	resend := append([]model.ChecklistItem(nil), created.Checklist...)
	got, err := f.tasks.Update(ctx, "user-a", created.ID, task.UpdateInput{Checklist: &resend})
	if err != nil {
		t.Fatalf("updating: %v", err)
	}
	for i := range created.Checklist {
		if got.Checklist[i].ID != created.Checklist[i].ID {
			t.Errorf("checklist[%d] id changed on re-send", i)
		}
	}
	if before, after := created.Checklist[0].CompletedAt, got.Checklist[0].CompletedAt; after == nil || !after.Equal(*before) {
		t.Errorf("completion timestamp changed on re-send: %v -> %v", before, after)
	}

	// A new entry without an id gets one assigned.
	resend = append(resend, model.ChecklistItem{Text: "third"})
	got, err = f.tasks.Update(ctx, "user-a", created.ID, task.UpdateInput{Checklist: &resend})
	if err != nil {
		t.Fatalf("updating with new item: %v", err)
	}
	if len(got.Checklist) != 3 || got.Checklist[2].ID == "" {
		t.Errorf("checklist = %+v, want third item with generated id", got.Checklist)
	}
}

func TestChecklistItemLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.tasks.Create(ctx, "user-a", task.CreateInput{
		Title:       "shopping",
		NamespaceID: f.home.ID,
	})
	if err != nil {
		t.Fatalf("creating task: %v", err)
	}

	withItem, err := f.tasks.AddChecklistItem(ctx, "user-a", created.ID, "  milk  ", nil)
	if err != nil {
		t.Fatalf("adding item: %v", err)
	}
	if len(withItem.Checklist) != 1 || withItem.Checklist[0].Text != "milk" {
		t.Fatalf("checklist = %+v", withItem.Checklist)
	}
	itemID := withItem.Checklist[0].ID

	toggled, nowDone, err := f.tasks.ToggleChecklistItem(ctx, "user-a", created.ID, itemID)
	if err != nil {
		t.Fatalf("toggling item: %v", err)
	}
	if !nowDone || !toggled.Checklist[0].Completed || toggled.Checklist[0].CompletedAt == nil {
		t.Errorf("after toggle: nowDone=%v item=%+v", nowDone, toggled.Checklist[0])
	}
	if toggled.ChecklistProgress != 100 {
		t.Errorf("progress = %d, want 100", toggled.ChecklistProgress)
	}

	_, nowDone, err = f.tasks.ToggleChecklistItem(ctx, "user-a", created.ID, itemID)
	if err != nil {
		t.Fatalf("toggling item back: %v", err)
	}
	if nowDone {
		t.Error("second toggle reported the item as completed")
	}

	deleted, err := f.tasks.DeleteChecklistItem(ctx, "user-a", created.ID, itemID)
	if err != nil {
		t.Fatalf("deleting item: %v", err)
	}
	if len(deleted.Checklist) != 0 {
		t.Errorf("checklist = %+v, want empty", deleted.Checklist)
	}

	_, _, err = f.tasks.ToggleChecklistItem(ctx, "user-a", created.ID, itemID)
	if kindOf(t, err) != apperr.KindNotFound {
		t.Errorf("kind = %v, want KindNotFound", kindOf(t, err))
	}
}

func TestListPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		if _, err := f.tasks.Create(ctx, "user-a", task.CreateInput{
			Title:       fmt.Sprintf("task %02d", i),
			NamespaceID: f.home.ID,
		}); err != nil {
			t.Fatalf("creating task %d: %v", i, err)
		}
	}

	result, err := f.tasks.List(ctx, "user-a", task.ListParams{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(result.Tasks) != 5 {
		t.Errorf("len = %d, want 5", len(result.Tasks))
	}
	if result.Total != 15 || result.Pages != 2 || result.Page != 2 || result.Limit != 10 {
		t.Errorf("pagination = %+v", result)
	}
	for _, tk := range result.Tasks {
		if tk.Namespace == nil || tk.Namespace.ID != f.home.ID {
			t.Errorf("task %q missing namespace ref", tk.Title)
		}
	}
}

func TestForeignTaskIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.tasks.Create(ctx, "user-a", task.CreateInput{
		Title:       "private",
		NamespaceID: f.home.ID,
	})
	if err != nil {
		t.Fatalf("creating task: %v", err)
	}

	if _, err := f.tasks.Get(ctx, "user-b", created.ID); kindOf(t, err) != apperr.KindNotFound {
		t.Errorf("foreign get kind = %v, want KindNotFound", kindOf(t, err))
	}
	if _, err := f.tasks.Toggle(ctx, "user-b", created.ID); kindOf(t, err) != apperr.KindNotFound {
		t.Errorf("foreign toggle kind = %v, want KindNotFound", kindOf(t, err))
	}
	if err := f.tasks.Delete(ctx, "user-b", created.ID); kindOf(t, err) != apperr.KindNotFound {
		t.Errorf("foreign delete kind = %v, want KindNotFound", kindOf(t, err))
	}
}

func TestStatsCompletionRate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		created, err := f.tasks.Create(ctx, "user-a", task.CreateInput{
			Title:       fmt.Sprintf("task %d", i),
			NamespaceID: f.home.ID,
		})
		if err != nil {
			t.Fatalf("creating task: %v", err)
		}
		ids = append(ids, created.ID)
	}
	if _, err := f.tasks.Toggle(ctx, "user-a", ids[0]); err != nil {
		t.Fatalf("toggling: %v", err)
	}

	summary, err := f.tasks.Stats(ctx, "user-a")
	if err != nil {
		t.Fatalf("getting stats: %v", err)
	}
	if summary.TotalTasks != 3 || summary.CompletedTasks != 1 || summary.PendingTasks != 2 {
		t.Errorf("totals = %d/%d/%d, want 3/1/2",
			summary.TotalTasks, summary.CompletedTasks, summary.PendingTasks)
	}
	// 1 of 3 rounds to 33.
	if summary.CompletionRate != 33 {
		t.Errorf("completionRate = %d, want 33", summary.CompletionRate)
	}
	if summary.ByPriority[model.PriorityMedium] != 2 {
		t.Errorf("byPriority = %v", summary.ByPriority)
	}
	if len(summary.ByNamespace) != 1 || summary.ByNamespace[0].Count != 3 {
		t.Errorf("byNamespace = %+v", summary.ByNamespace)
	}
}

func TestStatsEmpty(t *testing.T) {
	f := newFixture(t)

	summary, err := f.tasks.Stats(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("getting stats: %v", err)
	}
	if summary.TotalTasks != 0 || summary.CompletionRate != 0 {
		t.Errorf("summary = %+v, want zeros", summary)
	}
}

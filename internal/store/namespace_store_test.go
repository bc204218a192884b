package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"taskspace/internal/model"
	"taskspace/internal/store"
	"taskspace/tests/testutil"
)

func newNamespace(userID, name string, order int) model.Namespace {
	now := time.Now().UTC()
	return model.Namespace{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Color:     model.DefaultNamespaceColor,
		Icon:      model.DefaultNamespaceIcon,
		SortOrder: order,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newTask(userID, namespaceID, title string) model.Task {
	now := time.Now().UTC()
	return model.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		NamespaceID: namespaceID,
		Title:       title,
		Priority:    model.PriorityMedium,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestNamespaceCRUD(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	ns := newNamespace("user-a", "Home", 0)
	if err := s.CreateNamespace(ctx, ns); err != nil {
		t.Fatalf("creating namespace: %v", err)
	}

	got, err := s.GetNamespace(ctx, "user-a", ns.ID)
	if err != nil {
		t.Fatalf("getting namespace: %v", err)
	}
	if got.Name != "Home" || got.Color != model.DefaultNamespaceColor {
		t.Errorf("got %+v", got)
	}

	got.Description = "chores"
	got.UpdatedAt = time.Now().UTC()
	if err := s.UpdateNamespace(ctx, *got); err != nil {
		t.Fatalf("updating namespace: %v", err)
	}

	got, err = s.GetNamespace(ctx, "user-a", ns.ID)
	if err != nil {
		t.Fatalf("re-getting namespace: %v", err)
	}
	if got.Description != "chores" {
		t.Errorf("description = %q, want %q", got.Description, "chores")
	}

	if err := s.DeleteNamespace(ctx, "user-a", ns.ID); err != nil {
		t.Fatalf("deleting namespace: %v", err)
	}
	if _, err := s.GetNamespace(ctx, "user-a", ns.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestNamespaceScopedToOwner(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	ns := newNamespace("user-a", "Home", 0)
	if err := s.CreateNamespace(ctx, ns); err != nil {
		t.Fatalf("creating namespace: %v", err)
	}

	if _, err := s.GetNamespace(ctx, "user-b", ns.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("foreign get err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteNamespace(ctx, "user-b", ns.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("foreign delete err = %v, want ErrNotFound", err)
	}
}

func TestNamespaceNameUniquePerUser(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if err := s.CreateNamespace(ctx, newNamespace("user-a", "Home", 0)); err != nil {
		t.Fatalf("creating namespace: %v", err)
	}
	if err := s.CreateNamespace(ctx, newNamespace("user-a", "Home", 1)); err == nil {
		t.Error("duplicate (user, name) accepted")
	}

	// The same name is free for a different user.
	if err := s.CreateNamespace(ctx, newNamespace("user-b", "Home", 0)); err != nil {
		t.Errorf("creating same-named namespace for another user: %v", err)
	}
}

func TestGetNamespacesOrdering(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for _, ns := range []model.Namespace{
		newNamespace("user-a", "Third", 2),
		newNamespace("user-a", "First", 0),
		newNamespace("user-a", "Second", 1),
		newNamespace("user-b", "Other", 0),
	} {
		if err := s.CreateNamespace(ctx, ns); err != nil {
			t.Fatalf("creating namespace %q: %v", ns.Name, err)
		}
	}

	namespaces, err := s.GetNamespaces(ctx, "user-a")
	if err != nil {
		t.Fatalf("listing namespaces: %v", err)
	}
	if len(namespaces) != 3 {
		t.Fatalf("len = %d, want 3", len(namespaces))
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if namespaces[i].Name != want {
			t.Errorf("namespaces[%d].Name = %q, want %q", i, namespaces[i].Name, want)
		}
	}
}

func TestSetNamespaceOrderSkipsForeign(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	mine := newNamespace("user-a", "Mine", 5)
	theirs := newNamespace("user-b", "Theirs", 5)
	for _, ns := range []model.Namespace{mine, theirs} {
		if err := s.CreateNamespace(ctx, ns); err != nil {
			t.Fatalf("creating namespace: %v", err)
		}
	}

	matched, err := s.SetNamespaceOrder(ctx, "user-a", mine.ID, 0)
	if err != nil || !matched {
		t.Errorf("own reorder = (%v, %v), want (true, nil)", matched, err)
	}
	matched, err = s.SetNamespaceOrder(ctx, "user-a", theirs.ID, 0)
	if err != nil || matched {
		t.Errorf("foreign reorder = (%v, %v), want (false, nil)", matched, err)
	}

	// The foreign namespace keeps its order.
	got, err := s.GetNamespace(ctx, "user-b", theirs.ID)
	if err != nil {
		t.Fatalf("getting foreign namespace: %v", err)
	}
	if got.SortOrder != 5 {
		t.Errorf("foreign SortOrder = %d, want 5", got.SortOrder)
	}
}

func TestCountNamespaceTasks(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	ns := newNamespace("user-a", "Home", 0)
	if err := s.CreateNamespace(ctx, ns); err != nil {
		t.Fatalf("creating namespace: %v", err)
	}

	done := newTask("user-a", ns.ID, "done")
	done.Completed = true
	for _, task := range []model.Task{
		newTask("user-a", ns.ID, "open one"),
		newTask("user-a", ns.ID, "open two"),
		done,
	} {
		if err := s.CreateTask(ctx, task); err != nil {
			t.Fatalf("creating task: %v", err)
		}
	}

	counts, err := s.CountNamespaceTasks(ctx, "user-a", ns.ID)
	if err != nil {
		t.Fatalf("counting: %v", err)
	}
	if counts.Total != 3 || counts.Completed != 1 {
		t.Errorf("counts = %+v, want {3 1}", counts)
	}
}

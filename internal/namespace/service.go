// Package namespace implements the namespace (workspace) service: CRUD over
// user-scoped grouping containers with per-user name uniqueness, manual
// ordering, and derived task counts.
package namespace

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
	maxNameLen        = 50
	maxDescriptionLen = 200
)

// Service wraps the store with the namespace business rules.
type Service struct {
	store store.Store
}

// NewService returns a namespace service backed by st.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// CreateInput holds the accepted fields for namespace creation.
type CreateInput struct {
	Name        string
	Description string
	Color       string
	Icon        string
	Order       int
}

// UpdateInput holds optional fields for a partial namespace update.
// Nil fields are left untouched.
type UpdateInput struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	IsDefault   *bool
	Order       *int
}

// List returns the caller's namespaces ordered by manual order then creation
// time, each annotated with task counts.
func (s *Service) List(ctx context.Context, userID string) ([]model.Namespace, error) {
	namespaces, err := s.store.GetNamespaces(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range namespaces {
		if err := s.annotate(ctx, &namespaces[i]); err != nil {
			return nil, err
		}
	}
	return namespaces, nil
}

// Get returns one namespace owned by the caller, with task counts.
func (s *Service) Get(ctx context.Context, userID, id string) (*model.Namespace, error) {
	ns, err := s.store.GetNamespace(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Namespace not found")
	}
	if err != nil {
		return nil, err
	}
	if err := s.annotate(ctx, ns); err != nil {
		return nil, err
	}
	return ns, nil
}

// Create validates and persists a new namespace for the caller.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*model.Namespace, error) {
	name := strings.TrimSpace(in.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	description := strings.TrimSpace(in.Description)
	if len(description) > maxDescriptionLen {
		return nil, apperr.Invalid("Validation error",
			fmt.Sprintf("Namespace description must be at most %d characters", maxDescriptionLen))
	}

	if _, err := s.store.GetNamespaceByName(ctx, userID, name); err == nil {
		return nil, errNameTaken()
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	ns := model.Namespace{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        name,
		Description: description,
		Color:       in.Color,
		Icon:        in.Icon,
		SortOrder:   in.Order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if ns.Color == "" {
		ns.Color = model.DefaultNamespaceColor
	}
	if ns.Icon == "" {
		ns.Icon = model.DefaultNamespaceIcon
	}

	if err := s.store.CreateNamespace(ctx, ns); err != nil {
		// The (user_id, name) unique index backs up the lookup above.
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, errNameTaken()
		}
		return nil, err
	}
	return &ns, nil
}

// Update applies the supplied fields to an owned namespace. A name change
// re-checks uniqueness excluding the namespace itself.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*model.Namespace, error) {
	ns, err := s.store.GetNamespace(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Namespace not found")
	}
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		if name != ns.Name {
			existing, err := s.store.GetNamespaceByName(ctx, userID, name)
			if err == nil && existing.ID != id {
				return nil, errNameTaken()
			}
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, err
			}
		}
		ns.Name = name
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if len(description) > maxDescriptionLen {
			return nil, apperr.Invalid("Validation error",
				fmt.Sprintf("Namespace description must be at most %d characters", maxDescriptionLen))
		}
		ns.Description = description
	}
	if in.Color != nil {
		ns.Color = *in.Color
	}
	if in.Icon != nil {
		ns.Icon = *in.Icon
	}
	if in.IsDefault != nil {
		ns.IsDefault = *in.IsDefault
	}
	if in.Order != nil {
		ns.SortOrder = *in.Order
	}
	ns.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateNamespace(ctx, *ns); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Namespace not found")
		}
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, errNameTaken()
		}
		return nil, err
	}
	if err := s.annotate(ctx, ns); err != nil {
		return nil, err
	}
	return ns, nil
}

// Delete removes an owned namespace. Deletion is forbidden while the
// namespace still owns tasks.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.store.GetNamespace(ctx, userID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Namespace not found")
		}
		return err
	}

	counts, err := s.store.CountNamespaceTasks(ctx, userID, id)
	if err != nil {
		return err
	}
	if counts.Total > 0 {
		return apperr.InvalidState("Cannot delete namespace",
			fmt.Sprintf("This namespace contains %d task(s). Please move or delete all tasks first.", counts.Total))
	}

	if err := s.store.DeleteNamespace(ctx, userID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Namespace not found")
		}
		return err
	}
	return nil
}

// Reorder assigns each namespace in ids a manual order equal to its
// position. Ids not owned by the caller are silently skipped; the set as a
// whole is not atomic.
func (s *Service) Reorder(ctx context.Context, userID string, ids []string) error {
	for i, id := range ids {
		if _, err := s.store.SetNamespaceOrder(ctx, userID, id, i); err != nil {
			return err
		}
	}
	return nil
}

// annotate fills the derived task counts on ns.
func (s *Service) annotate(ctx context.Context, ns *model.Namespace) error {
	counts, err := s.store.CountNamespaceTasks(ctx, ns.UserID, ns.ID)
	if err != nil {
		return err
	}
	ns.TaskCount = counts.Total
	ns.CompletedCount = counts.Completed
	ns.PendingCount = counts.Total - counts.Completed
	return nil
}

func validateName(name string) error {
	if name == "" {
		return apperr.Invalid("Validation error", "Namespace name is required")
	}
	if len(name) > maxNameLen {
		return apperr.Invalid("Validation error",
			fmt.Sprintf("Namespace name must be at most %d characters", maxNameLen))
	}
	return nil
}

func errNameTaken() error {
	return apperr.Conflict("Namespace already exists",
		"A namespace with this name already exists")
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskspace/internal/model"
)

// CreateNamespace inserts a new namespace.
func (s *SQLiteStore) CreateNamespace(ctx context.Context, ns model.Namespace) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO namespaces (
			id, user_id, name, description, color, icon,
			is_default, sort_order, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ns.ID, ns.UserID, ns.Name, ns.Description, ns.Color, ns.Icon,
		boolToInt(ns.IsDefault), ns.SortOrder, ns.CreatedAt.UTC(), ns.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating namespace: %w", err)
	}
	return nil
}

// UpdateNamespace updates an existing namespace, scoped to its owner.
func (s *SQLiteStore) UpdateNamespace(ctx context.Context, ns model.Namespace) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE namespaces SET
			name = ?, description = ?, color = ?, icon = ?,
			is_default = ?, sort_order = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		ns.Name, ns.Description, ns.Color, ns.Icon,
		boolToInt(ns.IsDefault), ns.SortOrder, ns.UpdatedAt.UTC(),
		ns.ID, ns.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating namespace %s: %w", ns.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteNamespace removes a namespace owned by userID.
func (s *SQLiteStore) DeleteNamespace(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM namespaces WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("deleting namespace %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetNamespace retrieves a single namespace owned by userID.
func (s *SQLiteStore) GetNamespace(
	ctx context.Context,
	userID, id string,
) (*model.Namespace, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT * FROM namespaces WHERE id = ? AND user_id = ?", id, userID)

	ns, err := scanNamespace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting namespace %s: %w", id, err)
	}
	return &ns, nil
}

// GetNamespaces retrieves all namespaces owned by userID, ordered by manual
// order then creation time.
func (s *SQLiteStore) GetNamespaces(
	ctx context.Context,
	userID string,
) ([]model.Namespace, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM namespaces WHERE user_id = ? ORDER BY sort_order, created_at",
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying namespaces: %w", err)
	}
	defer rows.Close()

	var namespaces []model.Namespace
	for rows.Next() {
		ns, err := scanNamespace(rows)
		if err != nil {
			return nil, err
		}
		namespaces = append(namespaces, ns)
	}
	return namespaces, rows.Err()
}

// GetNamespaceByName retrieves a namespace by its per-user unique name.
func (s *SQLiteStore) GetNamespaceByName(
	ctx context.Context,
	userID, name string,
) (*model.Namespace, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT * FROM namespaces WHERE user_id = ? AND name = ?", userID, name)

	ns, err := scanNamespace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting namespace %q: %w", name, err)
	}
	return &ns, nil
}

// SetNamespaceOrder assigns a manual order to one namespace. The ownership
// predicate lives in the WHERE clause, so unowned ids simply match no rows.
func (s *SQLiteStore) SetNamespaceOrder(
	ctx context.Context,
	userID, id string,
	order int,
) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE namespaces SET sort_order = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		order, time.Now().UTC(), id, userID)
	if err != nil {
		return false, fmt.Errorf("reordering namespace %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// CountNamespaceTasks counts total and completed tasks owned by userID
// inside the namespace.
func (s *SQLiteStore) CountNamespaceTasks(
	ctx context.Context,
	userID, namespaceID string,
) (TaskCounts, error) {
	var counts TaskCounts
	err := s.db.QueryRowxContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(completed), 0)
		FROM tasks WHERE user_id = ? AND namespace_id = ?`,
		userID, namespaceID,
	).Scan(&counts.Total, &counts.Completed)
	if err != nil {
		return TaskCounts{}, fmt.Errorf("counting namespace tasks: %w", err)
	}
	return counts, nil
}

// scanNamespace scans a namespace row.
func scanNamespace(row interface{ Scan(dest ...interface{}) error }) (model.Namespace, error) {
	var (
		ns         model.Namespace
		defaultInt int
	)
	err := row.Scan(
		&ns.ID, &ns.UserID, &ns.Name, &ns.Description,
		&ns.Color, &ns.Icon, &defaultInt, &ns.SortOrder,
		&ns.CreatedAt, &ns.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Namespace{}, err
		}
		return model.Namespace{}, fmt.Errorf("scanning namespace row: %w", err)
	}
	ns.IsDefault = defaultInt != 0
	return ns, nil
}

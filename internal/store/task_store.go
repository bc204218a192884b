package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskspace/internal/model"
)

// CreateTask inserts a new task. Tags and the embedded checklist are
// serialized into the task row, so the whole aggregate is written as a unit.
func (s *SQLiteStore) CreateTask(ctx context.Context, t model.Task) error {
	tags, checklist, err := marshalTaskBlobs(t)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, user_id, namespace_id, title, description,
			completed, completed_at, priority, due_date,
			tags, checklist, sort_order, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.NamespaceID, t.Title, t.Description,
		boolToInt(t.Completed), utcPtr(t.CompletedAt), t.Priority, utcPtr(t.DueDate),
		tags, checklist, t.SortOrder, t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return nil
}

// UpdateTask rewrites an existing task row, scoped to its owner.
func (s *SQLiteStore) UpdateTask(ctx context.Context, t model.Task) error {
	tags, checklist, err := marshalTaskBlobs(t)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			namespace_id = ?, title = ?, description = ?,
			completed = ?, completed_at = ?, priority = ?, due_date = ?,
			tags = ?, checklist = ?, sort_order = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		t.NamespaceID, t.Title, t.Description,
		boolToInt(t.Completed), utcPtr(t.CompletedAt), t.Priority, utcPtr(t.DueDate),
		tags, checklist, t.SortOrder, t.UpdatedAt.UTC(),
		t.ID, t.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", t.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTask removes a task owned by userID. The embedded checklist goes
// with the row.
func (s *SQLiteStore) DeleteTask(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM tasks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetTask retrieves a single task owned by userID.
func (s *SQLiteStore) GetTask(
	ctx context.Context,
	userID, id string,
) (*model.Task, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT * FROM tasks WHERE id = ? AND user_id = ?", id, userID)

	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return &task, nil
}

// GetTasks retrieves tasks matching the filter.
func (s *SQLiteStore) GetTasks(
	ctx context.Context,
	filter TaskFilter,
) ([]model.Task, error) {
	query, args := buildTaskQuery("SELECT *", filter, true)

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// CountTasks returns the count of tasks matching the filter, ignoring
// pagination.
func (s *SQLiteStore) CountTasks(ctx context.Context, filter TaskFilter) (int, error) {
	query, args := buildTaskQuery("SELECT COUNT(*)", filter, false)

	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("counting tasks: %w", err)
	}
	return count, nil
}

// GetTaskStats aggregates the summary counters for one user relative to now.
func (s *SQLiteStore) GetTaskStats(
	ctx context.Context,
	userID string,
	now time.Time,
) (*Stats, error) {
	stats := &Stats{ByPriority: map[string]int{}}

	err := s.db.QueryRowxContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(completed), 0) FROM tasks WHERE user_id = ?",
		userID,
	).Scan(&stats.Total, &stats.Completed)
	if err != nil {
		return nil, fmt.Errorf("counting tasks: %w", err)
	}
	stats.Pending = stats.Total - stats.Completed

	err = s.db.GetContext(ctx, &stats.Overdue, `
		SELECT COUNT(*) FROM tasks
		WHERE user_id = ? AND completed = 0 AND due_date IS NOT NULL AND due_date < ?`,
		userID, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("counting overdue tasks: %w", err)
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	err = s.db.GetContext(ctx, &stats.DueToday, `
		SELECT COUNT(*) FROM tasks
		WHERE user_id = ? AND completed = 0 AND due_date >= ? AND due_date < ?`,
		userID, dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		return nil, fmt.Errorf("counting tasks due today: %w", err)
	}

	err = s.db.GetContext(ctx, &stats.CreatedLast7d, `
		SELECT COUNT(*) FROM tasks
		WHERE user_id = ? AND completed = 0 AND created_at >= ?`,
		userID, now.UTC().AddDate(0, 0, -7))
	if err != nil {
		return nil, fmt.Errorf("counting recent tasks: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx, `
		SELECT priority, COUNT(*) FROM tasks
		WHERE user_id = ? AND completed = 0 GROUP BY priority`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("grouping tasks by priority: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			priority string
			count    int
		)
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, fmt.Errorf("scanning priority row: %w", err)
		}
		stats.ByPriority[priority] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	nsRows, err := s.db.QueryxContext(ctx, `
		SELECT t.namespace_id, n.name, n.color, COUNT(*) AS count
		FROM tasks t
		INNER JOIN namespaces n ON n.id = t.namespace_id
		WHERE t.user_id = ?
		GROUP BY t.namespace_id, n.name, n.color
		ORDER BY count DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("grouping tasks by namespace: %w", err)
	}
	defer nsRows.Close()
	for nsRows.Next() {
		var st NamespaceStat
		if err := nsRows.Scan(&st.NamespaceID, &st.Name, &st.Color, &st.Count); err != nil {
			return nil, fmt.Errorf("scanning namespace stat row: %w", err)
		}
		stats.ByNamespace = append(stats.ByNamespace, st)
	}
	return stats, nsRows.Err()
}

// buildTaskQuery constructs the SQL query and args for a TaskFilter.
func buildTaskQuery(selectClause string, filter TaskFilter, paginate bool) (string, []interface{}) {
	conditions := []string{"user_id = ?"}
	args := []interface{}{filter.UserID}

	if filter.NamespaceID != nil {
		conditions = append(conditions, "namespace_id = ?")
		args = append(args, *filter.NamespaceID)
	}
	if filter.Completed != nil {
		conditions = append(conditions, "completed = ?")
		args = append(args, boolToInt(*filter.Completed))
	}
	if filter.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, *filter.Priority)
	}
	if filter.DueOn != nil {
		d := *filter.DueOn
		start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
		conditions = append(conditions, "due_date >= ? AND due_date < ?")
		args = append(args, start.UTC(), start.AddDate(0, 0, 1).UTC())
	}
	if filter.Search != nil && *filter.Search != "" {
		// Tags are stored as a JSON array; the match runs per element so a
		// query cannot straddle element boundaries.
		conditions = append(conditions, `(LOWER(title) LIKE ? ESCAPE '\'
			OR LOWER(description) LIKE ? ESCAPE '\'
			OR EXISTS (SELECT 1 FROM json_each(tasks.tags)
				WHERE LOWER(json_each.value) LIKE ? ESCAPE '\'))`)
		q := "%" + escapeLike(strings.ToLower(*filter.Search)) + "%"
		args = append(args, q, q, q)
	}

	query := selectClause + " FROM tasks WHERE " + strings.Join(conditions, " AND ")

	if paginate {
		sortBy := "created_at"
		allowed := map[string]string{
			"createdAt": "created_at",
			"updatedAt": "updated_at",
			"dueDate":   "due_date",
			"priority":  "priority",
			"title":     "title",
			"order":     "sort_order",
		}
		if col, ok := allowed[filter.SortBy]; ok {
			sortBy = col
		}
		direction := "ASC"
		if filter.SortDesc {
			direction = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY %s %s", sortBy, direction)

		if filter.Limit > 0 {
			query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		}
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	return query, args
}

// escapeLike backslash-escapes LIKE metacharacters so user input matches
// literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// utcPtr normalizes an optional timestamp to UTC before it is bound to a
// column, keeping stored text comparable with the UTC query bounds.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// marshalTaskBlobs serializes the tags and checklist columns.
func marshalTaskBlobs(t model.Task) (tags string, checklist string, err error) {
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Checklist == nil {
		t.Checklist = []model.ChecklistItem{}
	}

	tagBytes, err := json.Marshal(t.Tags)
	if err != nil {
		return "", "", fmt.Errorf("marshaling tags for task %s: %w", t.ID, err)
	}
	listBytes, err := json.Marshal(t.Checklist)
	if err != nil {
		return "", "", fmt.Errorf("marshaling checklist for task %s: %w", t.ID, err)
	}
	return string(tagBytes), string(listBytes), nil
}

// scanTask scans a task row, decoding the tags and checklist columns.
func scanTask(row interface{ Scan(dest ...interface{}) error }) (model.Task, error) {
	var (
		task         model.Task
		completedInt int
		completedAt  *time.Time
		dueDate      *time.Time
		tags         string
		checklist    string
	)

	err := row.Scan(
		&task.ID, &task.UserID, &task.NamespaceID, &task.Title, &task.Description,
		&completedInt, &completedAt, &task.Priority, &dueDate,
		&tags, &checklist, &task.SortOrder, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, err
		}
		return model.Task{}, fmt.Errorf("scanning task row: %w", err)
	}

	task.Completed = completedInt != 0
	task.CompletedAt = completedAt
	task.DueDate = dueDate

	if err := json.Unmarshal([]byte(tags), &task.Tags); err != nil {
		return model.Task{}, fmt.Errorf("unmarshaling tags: %w", err)
	}
	if err := json.Unmarshal([]byte(checklist), &task.Checklist); err != nil {
		return model.Task{}, fmt.Errorf("unmarshaling checklist: %w", err)
	}

	return task, nil
}

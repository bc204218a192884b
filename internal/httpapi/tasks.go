package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskspace/internal/model"
	"taskspace/internal/store"
	"taskspace/internal/task"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	params, err := parseListParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	}

	result, err := s.tasks.List(r.Context(), identity.UID, params)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	tasks := result.Tasks
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tasks": tasks,
		"pagination": map[string]int{
			"page":  result.Page,
			"limit": result.Limit,
			"total": result.Total,
			"pages": result.Pages,
		},
	})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	t, err := s.tasks.Get(r.Context(), identity.UID, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": t})
}

type createTaskRequest struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	NamespaceID string                 `json:"namespaceId"`
	Priority    string                 `json:"priority"`
	DueDate     *time.Time             `json:"dueDate"`
	Tags        []string               `json:"tags"`
	Checklist   []checklistItemRequest `json:"checklist"`
	Order       int                    `json:"order"`
}

type checklistItemRequest struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Order     int    `json:"order"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	}

	in := task.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		NamespaceID: req.NamespaceID,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
		Order:       req.Order,
	}
	for _, item := range req.Checklist {
		in.Checklist = append(in.Checklist, task.ChecklistItemInput{
			Text:      item.Text,
			Completed: item.Completed,
			Order:     item.Order,
		})
	}

	t, err := s.tasks.Create(r.Context(), identity.UID, in)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Task created successfully",
		"task":    t,
	})
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	// Decode into raw form first so only the supplied fields are applied.
	var raw map[string]json.RawMessage
	if err := decodeJSON(r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	}

	var in task.UpdateInput
	if err := assignString(raw, "title", &in.Title); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", "title must be a string")
		return
	}
	if err := assignString(raw, "description", &in.Description); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", "description must be a string")
		return
	}
	if err := assignBool(raw, "completed", &in.Completed); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", "completed must be a boolean")
		return
	}
	if err := assignString(raw, "namespaceId", &in.NamespaceID); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", "namespaceId must be a string")
		return
	}
	if err := assignString(raw, "priority", &in.Priority); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", "priority must be a string")
		return
	}
	if err := assignInt(raw, "order", &in.Order); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", "order must be a number")
		return
	}
	if v, ok := raw["dueDate"]; ok {
		in.DueDateSet = true
		if string(v) != "null" {
			var due time.Time
			if err := json.Unmarshal(v, &due); err != nil {
				writeError(w, http.StatusBadRequest, "Validation error",
					"dueDate must be an RFC 3339 timestamp or null")
				return
			}
			in.DueDate = &due
		}
	}
	if v, ok := raw["tags"]; ok {
		var tags []string
		if err := json.Unmarshal(v, &tags); err != nil || string(v) == "null" {
			writeError(w, http.StatusBadRequest, "Validation error", "tags must be an array of strings")
			return
		}
		in.Tags = &tags
	}
	if v, ok := raw["checklist"]; ok {
		var checklist []model.ChecklistItem
		if err := json.Unmarshal(v, &checklist); err != nil || string(v) == "null" {
			writeError(w, http.StatusBadRequest, "Validation error", "checklist must be an array of items")
			return
		}
		in.Checklist = &checklist
	}

	t, err := s.tasks.Update(r.Context(), identity.UID, r.PathValue("id"), in)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Task updated successfully",
		"task":    t,
	})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	if err := s.tasks.Delete(r.Context(), identity.UID, r.PathValue("id")); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Task deleted successfully",
	})
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	t, err := s.tasks.Toggle(r.Context(), identity.UID, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	message := "Task reopened successfully"
	if t.Completed {
		message = "Task completed successfully"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"task":    t,
	})
}

type addChecklistItemRequest struct {
	Text  string `json:"text"`
	Order *int   `json:"order"`
}

func (s *Server) handleAddChecklistItem(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	var req addChecklistItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	}

	t, err := s.tasks.AddChecklistItem(r.Context(), identity.UID, r.PathValue("id"), req.Text, req.Order)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Checklist item added successfully",
		"task":    t,
	})
}

func (s *Server) handleToggleChecklistItem(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	t, completed, err := s.tasks.ToggleChecklistItem(
		r.Context(), identity.UID, r.PathValue("id"), r.PathValue("itemId"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	message := "Checklist item reopened successfully"
	if completed {
		message = "Checklist item completed successfully"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"task":    t,
	})
}

func (s *Server) handleDeleteChecklistItem(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	t, err := s.tasks.DeleteChecklistItem(
		r.Context(), identity.UID, r.PathValue("id"), r.PathValue("itemId"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Checklist item deleted successfully",
		"task":    t,
	})
}

func (s *Server) handleTaskStats(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	summary, err := s.tasks.Stats(r.Context(), identity.UID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	byNamespace := summary.ByNamespace
	if byNamespace == nil {
		byNamespace = []store.NamespaceStat{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary": map[string]int{
			"totalTasks":     summary.TotalTasks,
			"completedTasks": summary.CompletedTasks,
			"pendingTasks":   summary.PendingTasks,
			"overdueTasks":   summary.OverdueTasks,
			"todayTasks":     summary.TodayTasks,
			"thisWeekTasks":  summary.ThisWeekTasks,
			"completionRate": summary.CompletionRate,
		},
		"tasksByPriority":  summary.ByPriority,
		"tasksByNamespace": byNamespace,
	})
}

// parseListParams reads the task list query string.
func parseListParams(r *http.Request) (task.ListParams, error) {
	q := r.URL.Query()
	params := task.ListParams{
		Page:     1,
		Limit:    task.DefaultPageSize,
		Search:   q.Get("search"),
		SortBy:   q.Get("sortBy"),
		SortDesc: q.Get("sortOrder") != "asc",
	}

	if v := q.Get("namespaceId"); v != "" {
		params.NamespaceID = &v
	}
	if v := q.Get("completed"); v != "" {
		completed, err := parseBoolStrict(v)
		if err != nil {
			return task.ListParams{}, errors.New("completed must be true or false")
		}
		params.Completed = &completed
	}
	if v := q.Get("priority"); v != "" {
		params.Priority = &v
	}
	if v := q.Get("dueDate"); v != "" {
		day, err := parseDay(v)
		if err != nil {
			return task.ListParams{}, errors.New("dueDate must be YYYY-MM-DD")
		}
		params.DueDate = &day
	}
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return task.ListParams{}, errors.New("page must be a positive integer")
		}
		params.Page = page
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return task.ListParams{}, errors.New("limit must be a positive integer")
		}
		params.Limit = limit
	}

	return params, nil
}

func parseBoolStrict(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, errors.New("not a bool")
	}
}

// parseDay accepts a calendar day, or a full timestamp whose day is used.
// The day is interpreted in server-local time.
func parseDay(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.Local(), nil
}

package httpapi

import (
	"encoding/json"
	"net/http"

	"taskspace/internal/model"
	"taskspace/internal/namespace"
)

func (s *Server) handleListNamespaces(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	namespaces, err := s.namespaces.List(r.Context(), identity.UID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if namespaces == nil {
		namespaces = []model.Namespace{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"namespaces": namespaces,
		"total":      len(namespaces),
	})
}

func (s *Server) handleGetNamespace(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	ns, err := s.namespaces.Get(r.Context(), identity.UID, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"namespace": ns})
}

type createNamespaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Order       int    `json:"order"`
}

func (s *Server) handleCreateNamespace(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	var req createNamespaceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	}

	ns, err := s.namespaces.Create(r.Context(), identity.UID, namespace.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		Order:       req.Order,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "Namespace created successfully",
		"namespace": ns,
	})
}

func (s *Server) handleUpdateNamespace(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	// Decode into raw form first so only the supplied fields are applied.
	var raw map[string]json.RawMessage
	if err := decodeJSON(r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	}

	var in namespace.UpdateInput
	if err := assignString(raw, "name", &in.Name); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", "name must be a string")
		return
	}
	if err := assignString(raw, "description", &in.Description); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", "description must be a string")
		return
	}
	if err := assignString(raw, "color", &in.Color); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", "color must be a string")
		return
	}
	if err := assignString(raw, "icon", &in.Icon); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", "icon must be a string")
		return
	}
	if err := assignBool(raw, "isDefault", &in.IsDefault); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", "isDefault must be a boolean")
		return
	}
	if err := assignInt(raw, "order", &in.Order); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", "order must be a number")
		return
	}

	ns, err := s.namespaces.Update(r.Context(), identity.UID, r.PathValue("id"), in)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Namespace updated successfully",
		"namespace": ns,
	})
}

func (s *Server) handleDeleteNamespace(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	if err := s.namespaces.Delete(r.Context(), identity.UID, r.PathValue("id")); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Namespace deleted successfully",
	})
}

type reorderNamespacesRequest struct {
	NamespaceIDs []string `json:"namespaceIds"`
}

func (s *Server) handleReorderNamespaces(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	var req reorderNamespacesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	}
	if req.NamespaceIDs == nil {
		writeError(w, http.StatusBadRequest, "Invalid data", "namespaceIds must be an array")
		return
	}

	if err := s.namespaces.Reorder(r.Context(), identity.UID, req.NamespaceIDs); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Namespaces reordered successfully",
	})
}

// assignString sets *dst to a pointer of the decoded value when key is
// present; JSON null counts as absent.
func assignString(raw map[string]json.RawMessage, key string, dst **string) error {
	v, ok := raw[key]
	if !ok || string(v) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return err
	}
	*dst = &s
	return nil
}

func assignBool(raw map[string]json.RawMessage, key string, dst **bool) error {
	v, ok := raw[key]
	if !ok || string(v) == "null" {
		return nil
	}
	var b bool
	if err := json.Unmarshal(v, &b); err != nil {
		return err
	}
	*dst = &b
	return nil
}

func assignInt(raw map[string]json.RawMessage, key string, dst **int) error {
	v, ok := raw[key]
	if !ok || string(v) == "null" {
		return nil
	}
	var n int
	if err := json.Unmarshal(v, &n); err != nil {
		return err
	}
	*dst = &n
	return nil
}

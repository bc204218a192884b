package httpapi

import "net/http"

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	u, created, err := s.users.Register(r.Context(), identity)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	message := "User updated successfully"
	if created {
		status = http.StatusCreated
		message = "User registered successfully"
	}
	writeJSON(w, status, map[string]any{
		"message": message,
		"user":    u,
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	u, err := s.users.Get(r.Context(), identity.UID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

type updateProfileRequest struct {
	DisplayName *string `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation error", err.Error())
		return
	}

	u, err := s.users.UpdateProfile(r.Context(), identity.UID, req.DisplayName, req.AvatarURL)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    u,
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"user":  identity,
	})
}

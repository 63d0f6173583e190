package srv

import (
	"log/slog"
	"net/http"
	"strings"

	"coursemark.dev/srv/auth"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type editorResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// HandleAPIRegister creates a new editor account.
// POST /api/register
func (s *Server) HandleAPIRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid registration payload")
		return
	}

	editor, err := s.Auth.Register(r.Context(), strings.TrimSpace(req.Email), req.Password, strings.TrimSpace(req.Name))
	if err != nil {
		if err == auth.ErrEditorExists {
			writeError(w, http.StatusConflict, "an account with this email already exists")
			return
		}
		slog.Error("registration failed", "email", req.Email, "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, editorResponse{
		ID: editor.ID, Email: editor.Email, Name: editor.Name, Role: editor.Role,
	})
}

// HandleAPILogin authenticates an editor and sets the session cookie.
// POST /api/login
func (s *Server) HandleAPILogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid login payload")
		return
	}

	sessionID, editor, err := s.Auth.Login(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	auth.SetSessionCookie(w, sessionID)
	writeJSON(w, http.StatusOK, editorResponse{
		ID: editor.ID, Email: editor.Email, Name: editor.Name, Role: editor.Role,
	})
}

// HandleAPILogout clears the editor session.
// POST /api/logout
func (s *Server) HandleAPILogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
		s.Auth.Logout(r.Context(), cookie.Value)
	}
	auth.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Package auth provides editor authentication and session management.
package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	SessionCookieName = "session"
	SessionDuration   = 30 * 24 * time.Hour // 30 days
	bcryptCost        = 12
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEditorExists       = errors.New("editor already exists")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrSessionStorage     = errors.New("session storage error")
)

// Editor is an authenticated account allowed to modify routes and POIs.
type Editor struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// Manager handles authentication operations.
type Manager struct {
	db *sql.DB
}

// NewManager creates a new auth manager.
func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db}
}

// HashPassword creates a bcrypt hash of a password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies a password against a hash.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// SessionIDLength is the session ID length in bytes before hex encoding.
const SessionIDLength = 32

func generateSessionID() (string, error) {
	b := make([]byte, SessionIDLength)
	if _, err := rand.Read(b); err != nil {
		slog.Error("failed to generate session ID", "error", err)
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// isValidSessionID checks the session ID format before touching the
// database.
func isValidSessionID(sessionID string) bool {
	if len(sessionID) != SessionIDLength*2 { // hex encoding doubles the length
		return false
	}
	_, err := hex.DecodeString(sessionID)
	return err == nil
}

// Register creates a new editor account.
func (m *Manager) Register(ctx context.Context, email, password, name string) (*Editor, error) {
	var count int
	err := m.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM editors WHERE email = ?`, email).Scan(&count)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEditorExists
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	editor := &Editor{
		ID:    uuid.NewString(),
		Email: email,
		Name:  name,
		Role:  "editor",
	}
	_, err = m.db.ExecContext(ctx,
		`INSERT INTO editors (id, email, name, password_hash, role, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		editor.ID, editor.Email, editor.Name, passwordHash, editor.Role, time.Now())
	if err != nil {
		return nil, err
	}

	slog.Info("editor registered", "editor_id", editor.ID, "email", email)
	return editor, nil
}

// Login authenticates an editor and creates a session. Returns the
// session ID on success.
func (m *Manager) Login(ctx context.Context, email, password string) (string, *Editor, error) {
	var editor Editor
	var passwordHash string
	err := m.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, role FROM editors WHERE email = ?`, email).
		Scan(&editor.ID, &editor.Email, &editor.Name, &passwordHash, &editor.Role)
	if err != nil {
		if err != sql.ErrNoRows {
			slog.Error("database error during login", "email", email, "error", err)
		}
		return "", nil, ErrInvalidCredentials
	}

	if !CheckPassword(password, passwordHash) {
		return "", nil, ErrInvalidCredentials
	}

	sessionID, err := generateSessionID()
	if err != nil {
		return "", nil, ErrSessionStorage
	}

	now := time.Now()
	_, err = m.db.ExecContext(ctx,
		`INSERT INTO sessions (id, editor_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		sessionID, editor.ID, now, now.Add(SessionDuration))
	if err != nil {
		slog.Error("failed to create session", "editor_id", editor.ID, "error", err)
		return "", nil, ErrSessionStorage
	}

	slog.Info("editor logged in", "editor_id", editor.ID, "email", editor.Email)
	return sessionID, &editor, nil
}

// Logout invalidates a session. Returns nil if the session was deleted
// or didn't exist.
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	if !isValidSessionID(sessionID) {
		return nil
	}

	if _, err := m.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		slog.Error("failed to delete session during logout", "error", err)
		return err
	}
	return nil
}

// EditorFromSession retrieves the editor for a session ID. Returns
// ErrInvalidSession if the session doesn't exist or is expired.
func (m *Manager) EditorFromSession(ctx context.Context, sessionID string) (*Editor, error) {
	if !isValidSessionID(sessionID) {
		return nil, ErrInvalidSession
	}

	var editor Editor
	err := m.db.QueryRowContext(ctx,
		`SELECT e.id, e.email, e.name, e.role
		 FROM sessions s JOIN editors e ON e.id = s.editor_id
		 WHERE s.id = ? AND s.expires_at > ?`, sessionID, time.Now()).
		Scan(&editor.ID, &editor.Email, &editor.Name, &editor.Role)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidSession
		}
		slog.Error("database error retrieving session", "error", err)
		return nil, ErrSessionStorage
	}

	return &editor, nil
}

// EditorFromRequest extracts the editor from request cookies. Returns
// nil if no valid session is found.
func (m *Manager) EditorFromRequest(r *http.Request) *Editor {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}

	editor, err := m.EditorFromSession(r.Context(), cookie.Value)
	if err != nil {
		return nil
	}
	return editor
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionDuration.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// CleanupExpiredSessions removes expired sessions from the database.
func (m *Manager) CleanupExpiredSessions(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, time.Now()); err != nil {
		slog.Error("failed to cleanup expired sessions", "error", err)
		return err
	}
	return nil
}

// Package srv is the HTTP layer of the course marking service: route
// variant GPX files, POI documents, and the snap engine behind a JSON
// API.
package srv

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"coursemark.dev/db"
	"coursemark.dev/srv/auth"
	"coursemark.dev/srv/poi"
	"coursemark.dev/srv/routes"
)

type Server struct {
	DB     *sql.DB
	Routes *routes.Store
	POIs   *poi.Store
	Auth   *auth.Manager
}

// New creates a server backed by the sqlite database at dbPath and the
// route data directory at dataDir.
func New(dbPath, dataDir string) (*Server, error) {
	srv := &Server{
		Routes: routes.NewStore(dataDir),
		POIs:   poi.NewStore(dataDir),
	}
	if err := srv.setUpDatabase(dbPath); err != nil {
		return nil, err
	}
	srv.Auth = auth.NewManager(srv.DB)
	return srv, nil
}

func (s *Server) setUpDatabase(dbPath string) error {
	wdb, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	s.DB = wdb
	if err := db.RunMigrations(wdb); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Handler returns the configured route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Editor accounts
	mux.HandleFunc("POST /api/register", s.HandleAPIRegister)
	mux.HandleFunc("POST /api/login", s.HandleAPILogin)
	mux.HandleFunc("POST /api/logout", s.HandleAPILogout)

	// Route variants
	mux.HandleFunc("GET /api/routes/{group}/variants", s.HandleListVariants)
	mux.HandleFunc("GET /api/routes/{group}/variants/{label}/profile", s.HandleVariantProfile)
	mux.HandleFunc("PUT /api/routes/{group}/variants/{label}", s.RequireEditor(s.HandleUploadVariant))

	// POIs
	mux.HandleFunc("GET /api/routes/{group}/pois", s.HandleListPOIs)
	mux.HandleFunc("POST /api/routes/{group}/pois", s.RequireEditor(s.HandleCreatePOI))
	mux.HandleFunc("POST /api/routes/{group}/pois/{id}/snap", s.RequireEditor(s.HandleSnapPOI))
	mux.HandleFunc("PATCH /api/routes/{group}/pois/{id}", s.RequireEditor(s.HandleUpdatePOI))
	mux.HandleFunc("DELETE /api/routes/{group}/pois/{id}", s.RequireEditor(s.HandleDeletePOI))

	return mux
}

// Serve starts the HTTP server.
func (s *Server) Serve(addr string) error {
	slog.Info("starting server", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// RequireEditor is middleware that requires a valid editor session.
func (s *Server) RequireEditor(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		editor := s.Auth.EditorFromRequest(r)
		if editor == nil {
			writeError(w, http.StatusUnauthorized, "editor session required")
			return
		}
		next(w, r)
	}
}

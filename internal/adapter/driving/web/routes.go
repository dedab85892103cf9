package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all shell routes on the provided mux.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /{$}", h.Landing)
	mux.HandleFunc("GET /dashboard", h.requireSignIn(h.Dashboard))
	mux.HandleFunc("GET /dashboard/repos", h.requireSignIn(h.Repos))
	mux.HandleFunc("POST /dashboard/repos", h.requireSignIn(h.ConnectRepo))
	mux.HandleFunc("GET /dashboard/repos/{id}", h.requireSignIn(h.RepoDetail))
	mux.HandleFunc("POST /dashboard/repos/{id}/delete", h.requireSignIn(h.DisconnectRepo))
}

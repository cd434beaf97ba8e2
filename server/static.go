package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// handleStatic serves files from the static directory. Paths that do not
// name a file get index.html so client-side routes still load the page.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	clean := path.Clean("/" + r.URL.Path)
	if strings.HasPrefix(clean, "/api/") {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return
	}

	target := filepath.Join(s.staticDir, filepath.FromSlash(clean))
	if info, err := os.Stat(target); err != nil || info.IsDir() {
		target = filepath.Join(s.staticDir, "index.html")
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	http.ServeFile(w, r, target)
}

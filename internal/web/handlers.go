package web

import (
	"io/fs"
	"net/http"

	"github.com/JonMunkholm/sheetrelay/internal/logging"
	"github.com/JonMunkholm/sheetrelay/internal/sheet"
	"github.com/JonMunkholm/sheetrelay/internal/web/templates"
)

// handleIndex renders the landing page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := templates.Index(templates.IndexParams{
		Title:   s.cfg.Static.PageTitle,
		DataURL: "/data",
	})
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context(), s.logger).Error("render index", "error", err)
	}
}

// handleData fetches the sheet and relays it as a JSON array of records.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context(), s.logger)

	res := s.loader.Load(r.Context())
	if res.Kind == sheet.KindSuccess && res.Table != nil {
		writeJSON(w, logger, http.StatusOK, res.Table.Records)
		return
	}

	status, body := errorFor(res)
	writeJSON(w, logger, status, body)
}

// handleFavicon serves favicon.ico when the asset set has one.
func (s *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	if _, err := fs.Stat(s.static, "favicon.ico"); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFileFS(w, r, s.static, "favicon.ico")
}

// handleHealthz is the liveness probe. It never touches the upstream.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

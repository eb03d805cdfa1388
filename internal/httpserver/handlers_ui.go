package httpserver

import (
	"bytes"
	"html"
	"net/http"

	"statusboard/internal/config"
	"statusboard/internal/logger"
	"statusboard/internal/report"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Mode == config.ModeMinimal {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html.EscapeString(s.cfg.Greeting)))
		return
	}

	snap, err := s.sys.Collect(r.Context())
	if err != nil {
		logger.Errorf("collect snapshot: %v", err)
		http.Error(w, snapshotUnavailable, http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(report.RenderText(snap)))
		return
	}

	// render fully before writing so a template failure can still be a 500
	var buf bytes.Buffer
	if err := report.Render(&buf, snap); err != nil {
		logger.Errorf("%v", err)
		http.Error(w, "template render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

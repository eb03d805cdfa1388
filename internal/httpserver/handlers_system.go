package httpserver

import (
	"encoding/json"
	"net/http"

	"statusboard/internal/logger"
)

// snapshotUnavailable is the client-facing 500 body; the cause is only logged.
const snapshotUnavailable = "snapshot unavailable"

func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sys.Collect(r.Context())
	if err != nil {
		logger.Errorf("collect snapshot: %v", err)
		http.Error(w, snapshotUnavailable, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(snap)
}

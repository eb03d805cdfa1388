package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type healthResponse struct {
	Status string `json:"status"`
}

var healthBody, _ = json.Marshal(healthResponse{Status: "UP"})

// handleHealth is a liveness answer only; nothing is probed.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(healthBody)
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "statusboard %s (%s): a DevOps demo service that reports host, process and build details for each deployment.\n",
		s.cfg.Build.Version, s.cfg.Build.Environment)
}

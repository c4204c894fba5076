package api

import (
	"net/http"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.gen == nil || s.gen.Stats == nil {
		jsonError(w, "llm stats unavailable", "unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"provider":    s.gen.Name(),
		"model":       s.gen.Model(),
		"stats":       s.gen.Stats.Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
